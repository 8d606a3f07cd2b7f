// Package analyzer runs stages C through G of the pipeline (spec §4.1-§4.6)
// over a combined module: extraction into the environment, type parsing,
// expression/statement typing, linearity checking, instance validation,
// and monomorphization. Stage G is fused into the same call-site walk as
// stage E — both need the identical argument substitution, so computing
// it twice would be pure duplication; see DESIGN.md.
//
// Grounded on internal/analyzer/analyzer.go's orchestration of its own
// declarations/types/expressions passes, restaged for the spec's A-H
// pipeline.
package analyzer

import (
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/env"
	"github.com/amber-lang/amberc/internal/modules"
	"github.com/amber-lang/amberc/internal/types"
)

// Checker holds the state threaded through stages D-G for one module.
type Checker struct {
	Env    *env.Environment
	Module *modules.CombinedModule

	// TypeOf records the resolved type of every expression visited, keyed
	// by node identity — the spec's "type inference results" attached to
	// the AST (mirrors internal/modules/module.go's TypeMap field).
	TypeOf map[ast.Expression]types.Type
}

func NewChecker(e *env.Environment, cm *modules.CombinedModule) *Checker {
	return &Checker{Env: e, Module: cm, TypeOf: make(map[ast.Expression]types.Type)}
}

// CheckModule runs stages D-G over every function, typeclass default
// method, and instance method body in cm, plus stage §4.6 validation of
// every instance declaration. It stops at the first error, matching
// spec §5's abort-on-first-failure pipeline discipline.
func CheckModule(e *env.Environment, cm *modules.CombinedModule) (*Checker, error) {
	c := NewChecker(e, cm)

	for _, entry := range cm.Entries {
		switch d := entry.Decl.(type) {
		case *ast.FunctionDecl:
			if err := c.checkFunction(d, nil, types.TypeUniverse); err != nil {
				return c, err
			}
		case *ast.TypeclassDecl:
			for _, m := range d.Methods {
				if m.Body == nil {
					continue
				}
				if err := c.checkFunction(m, d.Typarams, d.AcceptedUniverse); err != nil {
					return c, err
				}
			}
		case *ast.InstanceDecl:
			if err := c.validateInstance(d); err != nil {
				return c, err
			}
			for _, m := range d.Methods {
				if err := c.checkFunction(m, nil, types.TypeUniverse); err != nil {
					return c, err
				}
			}
		}
	}
	return c, nil
}

// checkFunction runs stages D (parameter/return type resolution), E/G
// (body statement and call-site typing fused with monomorphization) and
// F (linearity) over one function body. classTyparams, when non-nil, are
// the enclosing typeclass's type parameters, visible to a typeclass
// default method body in addition to the function's own; CheckModule
// passes nil for instance method bodies.
func (c *Checker) checkFunction(fn *ast.FunctionDecl, classTyparams []ast.TypeParam, _ types.Universe) error {
	if fn.Body == nil {
		return nil // interface-only signature, or a typeclass method with no default
	}

	typarams := append(append([]ast.TypeParam{}, classTyparams...), fn.Typarams...)
	if err := checkDuplicateTypeParams(typarams); err != nil {
		return err
	}

	regions := NewRegionScope()
	tp := NewTypeParser(c.Env, c.Module, nil, typarams, regions)

	table := NewTable()
	for _, p := range fn.Params {
		t, err := tp.Resolve(p.Type)
		if err != nil {
			return err
		}
		table.Define(p.Name, t)
	}

	returnType, err := tp.Resolve(fn.ReturnType)
	if err != nil {
		return err
	}

	sw := &stmtWalker{checker: c, tp: tp, returnType: returnType}
	final, err := sw.walkBlock(fn.Body, table)
	if err != nil {
		return err
	}
	if diag := final.CheckForgottenAll(); diag != nil {
		return diag
	}
	return nil
}

func checkDuplicateTypeParams(typarams []ast.TypeParam) error {
	seen := make(map[string]bool, len(typarams))
	for _, tp := range typarams {
		if seen[tp.Name] {
			return diagnostics.DuplicateTypeParameter(tp.Name)
		}
		seen[tp.Name] = true
	}
	return nil
}
