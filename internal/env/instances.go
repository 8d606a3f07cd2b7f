package env

import (
	"github.com/amber-lang/amberc/internal/types"
)

// InstanceDef is one registered typeclass instance (spec §4.6). funxy's
// InstanceDef additionally carries a dictionary-constructor name for
// runtime dispatch (funxy's traits are resolved at evaluation time);
// amberc has no runtime dispatch — instances are fully resolved to a
// concrete monomorph at stage G — so ConstructorName is dropped and
// nothing in its place is needed.
//
// Grounded on internal/symbols/symbol_table_traits.go's per-trait
// instance-list registration.
type InstanceDef struct {
	TraitName string
	Argument  types.Type // the instance argument's type (concrete, or a generic applied to distinct typarams)
	Typarams  []string   // typarams the argument generalizes over, if any
}

// InstanceRegistry holds the per-typeclass instance lists of spec §4.6.
type InstanceRegistry struct {
	byTrait map[string][]InstanceDef
}

func newInstanceRegistry() *InstanceRegistry {
	return &InstanceRegistry{byTrait: make(map[string][]InstanceDef)}
}

// Overlaps reports whether cand overlaps with any instance already
// registered for its typeclass, per spec §4.6: "Two instances I(A) and
// I(B) overlap when there exists a substitution making A and B
// structurally equal."
func (r *InstanceRegistry) Overlaps(cand InstanceDef) (InstanceDef, bool) {
	for _, existing := range r.byTrait[cand.TraitName] {
		if overlaps(existing, cand) {
			return existing, true
		}
	}
	return InstanceDef{}, false
}

// Register adds cand to the registry. Callers must check Overlaps first;
// Register itself does not re-check (the overlap check needs the
// candidate available as a hypothetical before it is committed, so the
// two are split rather than fused the way a single AddInstance call in
// symbol_table_traits.go does it).
func (r *InstanceRegistry) Register(cand InstanceDef) {
	r.byTrait[cand.TraitName] = append(r.byTrait[cand.TraitName], cand)
}

// All returns every instance registered for trait, in registration order.
// Stage H's typeclass lowering walks the combined module's own
// *ast.InstanceDecl entries (it needs their method-override bodies, not
// just the resolved InstanceDef), so it uses All only as a count
// cross-check that every registered instance was reachable there.
func (r *InstanceRegistry) All(trait string) []InstanceDef {
	out := make([]InstanceDef, len(r.byTrait[trait]))
	copy(out, r.byTrait[trait])
	return out
}

// Resolve finds the instance of trait applicable to argType, by
// structural match (spec §9 Design Notes: "resolve by structural match
// against the argument type, with overlap rejected up-front so lookup is
// deterministic").
func (r *InstanceRegistry) Resolve(trait string, argType types.Type) (InstanceDef, bool) {
	stripped := types.Strip(argType)
	for _, inst := range r.byTrait[trait] {
		if matches(inst, stripped) {
			return inst, true
		}
	}
	return InstanceDef{}, false
}

// matches reports whether inst's argument structurally matches a
// concrete (already-stripped) argument type, allowing inst's own
// typarams to unify freely.
func matches(inst InstanceDef, argType types.Type) bool {
	subst := types.Subst{}
	return unifyShape(inst.Argument, argType, inst.Typarams, subst)
}

// overlaps reports whether two instance argument shapes can be unified
// against each other via a substitution over either side's typarams
// (spec §4.6). unifyShape only binds tyvars on its pattern side, so each
// argument is tried as the pattern in turn.
func overlaps(a, b InstanceDef) bool {
	names := append(append([]string{}, a.Typarams...), b.Typarams...)
	return unifyShape(a.Argument, b.Argument, names, types.Subst{}) ||
		unifyShape(b.Argument, a.Argument, names, types.Subst{})
}

// unifyShape is a one-directional structural-match helper: tyvars named
// in generalizeOver may bind to anything on the other side; anything
// else must match exactly (by kind and, for NamedType, by name with
// recursively-matching args).
func unifyShape(pattern, concrete types.Type, generalizeOver []string, subst types.Subst) bool {
	if tv, ok := pattern.(types.TyVar); ok && contains(generalizeOver, tv.Name) {
		if bound, ok := subst[tv.Name]; ok {
			return bound.Equal(concrete)
		}
		subst[tv.Name] = concrete
		return true
	}
	switch p := pattern.(type) {
	case types.NamedType:
		c, ok := concrete.(types.NamedType)
		if !ok || c.Name != p.Name || len(c.Args) != len(p.Args) {
			return false
		}
		for i := range p.Args {
			if !unifyShape(p.Args[i], c.Args[i], generalizeOver, subst) {
				return false
			}
		}
		return true
	case types.Array:
		c, ok := concrete.(types.Array)
		return ok && unifyShape(p.Element, c.Element, generalizeOver, subst)
	case types.ReadRef:
		c, ok := concrete.(types.ReadRef)
		return ok && unifyShape(p.Referent, c.Referent, generalizeOver, subst)
	case types.WriteRef:
		c, ok := concrete.(types.WriteRef)
		return ok && unifyShape(p.Referent, c.Referent, generalizeOver, subst)
	case types.RawPointer:
		c, ok := concrete.(types.RawPointer)
		return ok && unifyShape(p.Pointee, c.Pointee, generalizeOver, subst)
	default:
		return pattern.Equal(concrete)
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
