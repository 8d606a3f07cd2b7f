// Stage §4.6: typeclass instance validation — argument shape, universe
// constraint, and overlap detection, registering each accepted instance
// into the environment's InstanceRegistry.
//
// Grounded on internal/symbols/symbol_table_traits.go's instance
// registration, with the dictionary-constructor bookkeeping dropped since
// amberc resolves instances statically at stage G rather than at runtime.
package analyzer

import (
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/env"
	"github.com/amber-lang/amberc/internal/types"
)

func (c *Checker) validateInstance(inst *ast.InstanceDecl) error {
	tcEntry, ok := lookupWithPrelude(c.Env, c.Module.Name, inst.TraitName)
	if !ok {
		return diagnostics.UnknownIdentifier(inst.TraitName)
	}
	tc, ok := tcEntry.Node.(*ast.TypeclassDecl)
	if !ok {
		return diagnostics.KindMismatch(inst.TraitName)
	}
	if len(tc.Typarams) != 1 {
		return diagnostics.MultiArgumentTypeclass(tc.Name)
	}

	regions := NewRegionScope()
	tp := NewTypeParser(c.Env, c.Module, nil, inst.Typarams, regions)
	argType, err := tp.Resolve(inst.Argument)
	if err != nil {
		return err
	}

	if !shapeIsValid(argType) {
		return diagnostics.BadInstanceArgumentShape(inst.TraitName)
	}
	if !types.UniverseCompatible(tc.AcceptedUniverse, argType.Universe()) {
		return diagnostics.InstanceUniverseViolation(inst.TraitName)
	}

	cand := env.InstanceDef{
		TraitName: inst.TraitName,
		Argument:  argType,
		Typarams:  typaramNames(inst.Typarams),
	}
	if existing, overlaps := c.Env.Instances().Overlaps(cand); overlaps {
		_ = existing
		return diagnostics.OverlappingInstances(inst.TraitName)
	}
	c.Env.Instances().Register(cand)
	return nil
}

// shapeIsValid rejects instance arguments too unconstrained to dispatch
// on: a bare, unconstrained type variable matching every type would make
// every future instance overlap it by construction (spec §4.6 "bad
// instance argument shape").
func shapeIsValid(t types.Type) bool {
	_, bare := t.(types.TyVar)
	return !bare
}
