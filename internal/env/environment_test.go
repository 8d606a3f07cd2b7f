package env

import (
	"testing"

	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/types"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentDefineLookup(t *testing.T) {
	e := New()
	e.AddModule("M")

	qi := types.NewQIdent("M", "R")
	entry := &DeclEntry{QIdent: qi, Kind: ast.DeclRecord, Vis: ast.Public, Universe: types.Linear}
	require.NoError(t, e.Define(entry))

	got, ok := e.LookupInModule("M", "R")
	require.True(t, ok)
	require.Equal(t, entry, got)

	_, ok = e.LookupInModule("M", "Missing")
	require.False(t, ok)
}

func TestEnvironmentDuplicateDefineIsError(t *testing.T) {
	e := New()
	qi := types.NewQIdent("M", "R")
	require.NoError(t, e.Define(&DeclEntry{QIdent: qi}))
	require.Error(t, e.Define(&DeclEntry{QIdent: qi}))
}

func TestMonomorphTableInternsOnce(t *testing.T) {
	tbl := newMonomorphTable()
	q := types.NewQIdent("M", "identity")
	args := []types.Type{types.Integer{Signedness: types.Signed, Width: 32}}

	id1, fresh1 := tbl.Intern(q, args)
	require.True(t, fresh1)

	id2, fresh2 := tbl.Intern(q, args)
	require.False(t, fresh2)
	require.Equal(t, id1, id2)

	lookedUp, ok := tbl.Lookup(q, args)
	require.True(t, ok)
	require.Equal(t, id1, lookedUp)
}

func TestInstanceOverlapDetection(t *testing.T) {
	reg := newInstanceRegistry()
	concreteInt := types.Integer{Signedness: types.Signed, Width: 32}

	a := InstanceDef{TraitName: "Show", Argument: concreteInt}
	reg.Register(a)

	// Exactly the same concrete type: overlaps.
	_, overlapsConcrete := reg.Overlaps(InstanceDef{TraitName: "Show", Argument: concreteInt})
	require.True(t, overlapsConcrete)

	// A distinct concrete type: no overlap.
	_, overlapsOther := reg.Overlaps(InstanceDef{
		TraitName: "Show",
		Argument:  types.Integer{Signedness: types.Signed, Width: 64},
	})
	require.False(t, overlapsOther)

	// A generic instance over a bare typaram always overlaps with any
	// existing instance of the same trait.
	generic := InstanceDef{
		TraitName: "Show",
		Argument:  types.TyVar{Name: "t", Decl: types.TypeUniverse},
		Typarams:  []string{"t"},
	}
	_, overlapsGeneric := reg.Overlaps(generic)
	require.True(t, overlapsGeneric)
}

func TestInstanceResolve(t *testing.T) {
	reg := newInstanceRegistry()
	boxName := types.NewQIdent("M", "Box")
	generic := InstanceDef{
		TraitName: "Show",
		Argument: types.NamedType{
			Name:         boxName,
			DeclUniverse: types.TypeUniverse,
			Args:         []types.Type{types.TyVar{Name: "t", Decl: types.TypeUniverse}},
		},
		Typarams: []string{"t"},
	}
	reg.Register(generic)

	arg := types.NamedType{
		Name:         boxName,
		DeclUniverse: types.TypeUniverse,
		Args:         []types.Type{types.Integer{Signedness: types.Signed, Width: 32}},
	}
	inst, ok := reg.Resolve("Show", arg)
	require.True(t, ok)
	require.Equal(t, "Show", inst.TraitName)
}
