package types

// Strip implements region erasure (spec §4.4/§4.5): Array/ReadRef/WriteRef
// lose their region component (replaced with NoRegion), Region types are
// dropped entirely (replaced with Unit, since a stripped type must still
// be a Type and a region witness carries no runtime payload), RawPointer
// passes through, and a TyVar surviving to this point after substitution
// is an internal error per spec §4.5 ("TyVar after substitution is an
// internal error") — callers that reach monomorphization with unresolved
// type variables have a bug elsewhere in the pipeline, so Strip panics
// rather than silently producing a wrong stripped type; monomorphize.go
// is expected to never call Strip on a type with free variables.
//
// Grounded on internal/typesystem/replace.go's postorder rewrite shape,
// reused here with a different per-node rule (erase, not substitute).
func Strip(t Type) Type {
	switch tt := t.(type) {
	case Array:
		return Array{Element: Strip(tt.Element), Region: NoRegion}
	case ReadRef:
		return ReadRef{Referent: Strip(tt.Referent), Region: NoRegion}
	case WriteRef:
		return WriteRef{Referent: Strip(tt.Referent), Region: NoRegion}
	case RawPointer:
		return RawPointer{Pointee: Strip(tt.Pointee)}
	case RegionType:
		return Unit{}
	case NamedType:
		newArgs := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			newArgs[i] = Strip(a)
		}
		return NamedType{Name: tt.Name, Args: newArgs, DeclUniverse: tt.DeclUniverse}
	case TyVar:
		panic("types.Strip: TyVar " + tt.Name + " survived to monomorphization — substitution was not total")
	default:
		return t
	}
}

// StripKey renders a stripped type into a string suitable as part of a
// monomorphization table key (spec §4.5). Stripping is idempotent
// (Strip(Strip(t)) == Strip(t), spec §8 invariant 4) so StripKey is safe
// to call on an already-stripped type.
func StripKey(t Type) string {
	return Strip(t).String()
}
