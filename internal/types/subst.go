package types

// Subst maps typaram names to concrete types, produced by unifying a
// function's formal parameters against call-site arguments (spec §4.3)
// and consumed by monomorphization (spec §4.5).
//
// Grounded on internal/typesystem/replace.go's Subst-map-plus-Apply
// postorder-rewrite shape (ApplyWithCycleCheck), simplified here because
// the spec's substitutions are produced already-total over a function's
// typarams (§4.3) so no cycle-breaking visited-set is needed — amberc's
// Apply is a straightforward postorder rebuild.
type Subst map[string]Type

// Apply substitutes every TyVar named in s, rebuilding the type tree in
// postorder (children first, mirroring replace.go's ApplyWithCycleCheck).
func Apply(t Type, s Subst) Type {
	if t == nil || len(s) == 0 {
		return t
	}
	switch tt := t.(type) {
	case TyVar:
		if repl, ok := s[tt.Name]; ok {
			return repl
		}
		return tt
	case Array:
		return Array{Element: Apply(tt.Element, s), Region: tt.Region}
	case ReadRef:
		return ReadRef{Referent: Apply(tt.Referent, s), Region: tt.Region}
	case WriteRef:
		return WriteRef{Referent: Apply(tt.Referent, s), Region: tt.Region}
	case RawPointer:
		return RawPointer{Pointee: Apply(tt.Pointee, s)}
	case NamedType:
		newArgs := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			newArgs[i] = Apply(a, s)
		}
		return NamedType{Name: tt.Name, Args: newArgs, DeclUniverse: tt.DeclUniverse}
	default:
		return t // Unit, Boolean, Integer, floats, Region: no children
	}
}

// IsTotal reports whether s assigns every name in typarams, the §4.3
// requirement that a call's substitution be total over the callee's
// typarams.
func IsTotal(s Subst, typarams []string) bool {
	for _, name := range typarams {
		if _, ok := s[name]; !ok {
			return false
		}
	}
	return true
}

// FreeTypeVars returns the TyVar names occurring in t, in first-occurrence
// order (used by the type parser to validate a specifier only refers to
// in-scope typarams).
func FreeTypeVars(t Type) []string {
	seen := map[string]bool{}
	var order []string
	var walk func(Type)
	walk = func(t Type) {
		switch tt := t.(type) {
		case TyVar:
			if !seen[tt.Name] {
				seen[tt.Name] = true
				order = append(order, tt.Name)
			}
		case Array:
			walk(tt.Element)
		case ReadRef:
			walk(tt.Referent)
		case WriteRef:
			walk(tt.Referent)
		case RawPointer:
			walk(tt.Pointee)
		case NamedType:
			for _, a := range tt.Args {
				walk(a)
			}
		}
	}
	walk(t)
	return order
}
