package modules

import (
	"testing"

	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func intSpec() ast.TypeSpecifier { return ast.IntegerTypeSpec{Signed: true, Width: 32} }

func TestCombineModuleNameMismatch(t *testing.T) {
	iface := &ast.Program{Header: ast.Header{ModuleName: "Foo"}, IsInterface: true}
	body := &ast.Program{Header: ast.Header{ModuleName: "Bar"}}

	_, err := Combine(iface, body)
	require.Error(t, err)
	var diag *diagnostics.Diagnostic
	require.ErrorAs(t, err, &diag)
	require.Equal(t, diagnostics.CategoryDeclaration, diag.Category)
	require.Contains(t, diag.Error(), "module name mismatch")
}

func TestCombineMissingBody(t *testing.T) {
	iface := &ast.Program{
		Header: ast.Header{ModuleName: "M"},
		Decls: []ast.Declaration{
			&ast.ConstantDecl{Vis: ast.Public, Name: "k", Annotation: intSpec()},
		},
	}
	body := &ast.Program{Header: ast.Header{ModuleName: "M"}}

	_, err := Combine(iface, body)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing body")
}

func TestCombineKindMismatch(t *testing.T) {
	iface := &ast.Program{
		Header: ast.Header{ModuleName: "M"},
		Decls: []ast.Declaration{
			&ast.ConstantDecl{Vis: ast.Public, Name: "thing", Annotation: intSpec()},
		},
	}
	body := &ast.Program{
		Header: ast.Header{ModuleName: "M"},
		Decls: []ast.Declaration{
			&ast.RecordDecl{Name: "thing", DeclaredUniverse: types.Free},
		},
	}

	_, err := Combine(iface, body)
	require.Error(t, err)
	require.Contains(t, err.Error(), "declaration kind mismatch")
}

func TestCombineFunctionParameterMismatchAxis(t *testing.T) {
	iface := &ast.Program{
		Header: ast.Header{ModuleName: "M"},
		Decls: []ast.Declaration{
			&ast.FunctionDecl{
				Name:       "f",
				Params:     []ast.Param{{Name: "x", Type: intSpec()}},
				ReturnType: ast.UnitTypeSpec{},
			},
		},
	}
	body := &ast.Program{
		Header: ast.Header{ModuleName: "M"},
		Decls: []ast.Declaration{
			&ast.FunctionDecl{
				Name:       "f",
				Params:     []ast.Param{{Name: "x", Type: ast.BooleanTypeSpec{}}}, // differs
				ReturnType: ast.UnitTypeSpec{},
				Body:       []ast.Statement{},
			},
		},
	}

	_, err := Combine(iface, body)
	require.Error(t, err)
	require.Contains(t, err.Error(), "function parameter mismatch")
	require.Contains(t, err.Error(), "values")
}

func TestCombineMultiArgumentTypeclassRejected(t *testing.T) {
	iface := &ast.Program{
		Header: ast.Header{ModuleName: "M"},
		Decls: []ast.Declaration{
			&ast.TypeclassDecl{
				Name: "Convert",
				Typarams: []ast.TypeParam{
					{Name: "a", Universe: types.TypeUniverse},
					{Name: "b", Universe: types.TypeUniverse},
				},
			},
		},
	}
	body := &ast.Program{
		Header: ast.Header{ModuleName: "M"},
		Decls: []ast.Declaration{
			&ast.TypeclassDecl{
				Name: "Convert",
				Typarams: []ast.TypeParam{
					{Name: "a", Universe: types.TypeUniverse},
					{Name: "b", Universe: types.TypeUniverse},
				},
			},
		},
	}

	_, err := Combine(iface, body)
	require.Error(t, err)
	require.Contains(t, err.Error(), "multi-argument typeclass unsupported")
}

func TestCombineOpaqueTypeGetsOpaqueVisibility(t *testing.T) {
	iface := &ast.Program{
		Header: ast.Header{ModuleName: "M"},
		Decls: []ast.Declaration{
			&ast.OpaqueTypeDecl{Name: "Handle", DeclaredUniverse: types.Linear},
		},
	}
	body := &ast.Program{
		Header: ast.Header{ModuleName: "M"},
		Decls: []ast.Declaration{
			&ast.RecordDecl{Name: "Handle", DeclaredUniverse: types.Linear, Fields: []ast.RecordField{{Name: "fd", Type: intSpec()}}},
		},
	}

	cm, err := Combine(iface, body)
	require.NoError(t, err)
	require.Len(t, cm.Entries, 1)
	require.Equal(t, ast.TypeVisOpaque, cm.Entries[0].TypeVis)
}

func TestCombineBodyOnlyDeclIsPrivate(t *testing.T) {
	iface := &ast.Program{
		Header: ast.Header{ModuleName: "M"},
	}
	body := &ast.Program{
		Header: ast.Header{ModuleName: "M"},
		Decls: []ast.Declaration{
			&ast.FunctionDecl{Name: "helper", ReturnType: ast.UnitTypeSpec{}, Body: []ast.Statement{}},
		},
	}

	cm, err := Combine(iface, body)
	require.NoError(t, err)
	require.Len(t, cm.Entries, 1)
	require.False(t, cm.Entries[0].IsPublic)
}

// Round-trip property (spec §8): combining an interface and body followed
// by extraction yields the interface's declared signatures exactly. This
// test checks the combining half directly (the full round trip, through
// stage C extraction, is covered in internal/analyzer).
func TestCombineRoundTripPreservesInterfaceShape(t *testing.T) {
	ifaceFn := &ast.FunctionDecl{
		Name:       "add",
		Params:     []ast.Param{{Name: "a", Type: intSpec()}, {Name: "b", Type: intSpec()}},
		ReturnType: intSpec(),
	}
	bodyFn := &ast.FunctionDecl{
		Name:       "add",
		Params:     []ast.Param{{Name: "a", Type: intSpec()}, {Name: "b", Type: intSpec()}},
		ReturnType: intSpec(),
		Body:       []ast.Statement{&ast.ReturnStatement{}},
	}
	iface := &ast.Program{Header: ast.Header{ModuleName: "M"}, Decls: []ast.Declaration{ifaceFn}}
	body := &ast.Program{Header: ast.Header{ModuleName: "M"}, Decls: []ast.Declaration{bodyFn}}

	cm, err := Combine(iface, body)
	require.NoError(t, err)
	require.Len(t, cm.Entries, 1)

	combined := cm.Entries[0].Decl.(*ast.FunctionDecl)
	if diff := cmp.Diff(ifaceFn.Params, combined.Params); diff != "" {
		t.Fatalf("combined params diverged from interface (-want +got):\n%s", diff)
	}
	require.True(t, specEqual(ifaceFn.ReturnType, combined.ReturnType))
}
