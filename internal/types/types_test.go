package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEffectiveUniverse(t *testing.T) {
	cases := []struct {
		name string
		typ  Type
		want Universe
	}{
		{"plain free named type", NamedType{Name: NewQIdent("M", "R"), DeclUniverse: Free}, Free},
		{"plain linear named type", NamedType{Name: NewQIdent("M", "R"), DeclUniverse: Linear}, Linear},
		{
			"generic with no linear args",
			NamedType{
				Name:         NewQIdent("M", "Box"),
				DeclUniverse: TypeUniverse,
				Args:         []Type{Integer{Signedness: Signed, Width: 32}},
			},
			Free,
		},
		{
			"generic with one linear arg",
			NamedType{
				Name:         NewQIdent("M", "Box"),
				DeclUniverse: TypeUniverse,
				Args: []Type{
					Integer{Signedness: Signed, Width: 32},
					NamedType{Name: NewQIdent("M", "R"), DeclUniverse: Linear},
				},
			},
			Linear,
		},
		{"region always free", RegionType{ID: "r"}, Free},
		{"read ref always free", ReadRef{Referent: NamedType{Name: NewQIdent("M", "R"), DeclUniverse: Linear}, Region: "r"}, Free},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, c.typ.Universe())
		})
	}
}

func TestUniverseCompatible(t *testing.T) {
	require.True(t, UniverseCompatible(Free, Free))
	require.False(t, UniverseCompatible(Free, Linear))
	require.False(t, UniverseCompatible(Linear, Free))
	require.True(t, UniverseCompatible(TypeUniverse, Free))
	require.True(t, UniverseCompatible(TypeUniverse, Linear))
	require.True(t, UniverseCompatible(TypeUniverse, Region))
	require.True(t, UniverseCompatible(Region, Region))
	require.False(t, UniverseCompatible(Region, Free))
}

func TestStripIdempotent(t *testing.T) {
	inner := NamedType{Name: NewQIdent("M", "R"), DeclUniverse: Linear}
	ref := ReadRef{Referent: Array{Element: inner, Region: "r1"}, Region: "r2"}

	once := Strip(ref)
	twice := Strip(once)
	require.True(t, once.Equal(twice), "stripping should be idempotent: %s vs %s", once, twice)

	stripped := once.(ReadRef)
	require.Equal(t, NoRegion, stripped.Region)
	arr := stripped.Referent.(Array)
	require.Equal(t, NoRegion, arr.Region)
}

func TestStripUniverseInvariant(t *testing.T) {
	// spec §8 invariant 5: universe of a type is invariant under region erasure.
	linear := NamedType{Name: NewQIdent("M", "R"), DeclUniverse: Linear}
	arr := Array{Element: linear, Region: "r"}
	require.Equal(t, arr.Universe(), Strip(arr).Universe())
}

func TestStripPanicsOnSurvivingTyVar(t *testing.T) {
	require.Panics(t, func() {
		Strip(TyVar{Name: "t", Decl: TypeUniverse})
	})
}

func TestApplySubstitution(t *testing.T) {
	tv := TyVar{Name: "t", Decl: TypeUniverse}
	concrete := Integer{Signedness: Signed, Width: 32}
	s := Subst{"t": concrete}

	applied := Apply(Array{Element: tv, Region: "r"}, s)
	require.True(t, applied.Equal(Array{Element: concrete, Region: "r"}))
}

func TestIsTotal(t *testing.T) {
	s := Subst{"t": Integer{Signedness: Signed, Width: 32}}
	require.True(t, IsTotal(s, []string{"t"}))
	require.False(t, IsTotal(s, []string{"t", "u"}))
}
