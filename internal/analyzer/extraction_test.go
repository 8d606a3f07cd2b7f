package analyzer

import (
	"testing"

	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/env"
	"github.com/amber-lang/amberc/internal/modules"
	"github.com/amber-lang/amberc/internal/types"
	"github.com/stretchr/testify/require"
)

func TestExtractDefinesEveryDeclaration(t *testing.T) {
	e := env.New()
	record := &ast.RecordDecl{TypeVis: ast.TypeVisPublic, Name: "R", DeclaredUniverse: types.Free, Fields: []ast.RecordField{{Name: "x", Type: intSpec()}}}
	fn := &ast.FunctionDecl{Vis: ast.Public, Name: "f", ReturnType: ast.UnitTypeSpec{}}
	cm := newModule("M",
		modules.CombinedEntry{Decl: record, TypeVis: ast.TypeVisPublic},
		modules.CombinedEntry{Decl: fn, IsPublic: true},
	)

	require.NoError(t, Extract(e, cm))

	recEntry, ok := e.LookupInModule("M", "R")
	require.True(t, ok)
	require.Equal(t, ast.DeclRecord, recEntry.Kind)
	require.Equal(t, ast.Public, recEntry.Vis)

	fnEntry, ok := e.LookupInModule("M", "f")
	require.True(t, ok)
	require.Equal(t, ast.DeclFunction, fnEntry.Kind)
	require.True(t, e.HasModule("M"))
}

func TestExtractSkipsInstanceDeclarations(t *testing.T) {
	e := env.New()
	tc := &ast.TypeclassDecl{
		Vis:              ast.Public,
		Name:             "Show",
		Typarams:         []ast.TypeParam{{Name: "a", Universe: types.TypeUniverse}},
		AcceptedUniverse: types.TypeUniverse,
	}
	inst := &ast.InstanceDecl{Vis: ast.Public, TraitName: "Show", Argument: intSpec()}
	cm := newModule("M",
		modules.CombinedEntry{Decl: tc, IsPublic: true},
		modules.CombinedEntry{Decl: inst, IsPublic: true},
	)

	require.NoError(t, Extract(e, cm))

	_, ok := e.LookupInModule("M", "Show")
	require.True(t, ok)
	require.Len(t, e.AllDecls(), 1)
}

func TestExtractOpaqueTypeRecordsTypeVis(t *testing.T) {
	e := env.New()
	handle := &ast.RecordDecl{Name: "Handle", DeclaredUniverse: types.Linear}
	cm := newModule("M", modules.CombinedEntry{Decl: handle, TypeVis: ast.TypeVisOpaque})

	require.NoError(t, Extract(e, cm))

	entry, ok := e.LookupInModule("M", "Handle")
	require.True(t, ok)
	require.Equal(t, ast.TypeVisOpaque, entry.TypeVis)
	require.Equal(t, ast.Public, entry.Vis)
}
