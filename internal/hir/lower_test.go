package hir_test

import (
	"testing"

	"github.com/amber-lang/amberc/internal/analyzer"
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/config"
	"github.com/amber-lang/amberc/internal/env"
	"github.com/amber-lang/amberc/internal/hir"
	"github.com/amber-lang/amberc/internal/modules"
	"github.com/amber-lang/amberc/internal/types"
	"github.com/stretchr/testify/require"
)

func intSpec() ast.TypeSpecifier { return ast.IntegerTypeSpec{Signed: true, Width: 32} }

func rootCapSpec() ast.TypeSpecifier { return ast.NamedTypeSpec{Name: config.RootCapabilityTypeName} }

func newModule(name string, entries ...modules.CombinedEntry) *modules.CombinedModule {
	return &modules.CombinedModule{
		Name:    name,
		Imports: &modules.ImportMap{CurrentModule: name, ByLocalName: map[string]string{}},
		Entries: entries,
	}
}

func recordR() *ast.RecordDecl {
	return &ast.RecordDecl{
		TypeVis:          ast.TypeVisPublic,
		Name:             "R",
		DeclaredUniverse: types.Linear,
		Fields:           []ast.RecordField{{Name: "x", Type: intSpec()}},
	}
}

func mainFn(body []ast.Statement) *ast.FunctionDecl {
	return &ast.FunctionDecl{
		Vis:        ast.Public,
		Name:       config.MainFuncName,
		Params:     []ast.Param{{Name: "root", Type: rootCapSpec()}},
		ReturnType: rootCapSpec(),
		Body:       body,
	}
}

func TestLowerDestructureAndReturn(t *testing.T) {
	e := env.New()
	require.NoError(t, analyzer.Extract(e, modules.Prelude()))

	fn := mainFn([]ast.Statement{
		&ast.LetStatement{
			Binding: ast.IdentPattern{Name: "r"},
			Value:   ast.RecordLiteral{TypeName: "R", Fields: []ast.FieldInit{{Name: "x", Value: ast.IntLiteral{Value: 32}}}},
		},
		&ast.LetStatement{
			Binding: ast.RecordPattern{Slots: []ast.SlotPattern{{Slot: "x"}}},
			Value:   ast.IdentExpr{Name: "r"},
		},
		&ast.ReturnStatement{Value: ast.IdentExpr{Name: "root"}},
	})
	cm := newModule("M",
		modules.CombinedEntry{Decl: recordR(), TypeVis: ast.TypeVisPublic},
		modules.CombinedEntry{Decl: fn, IsPublic: true},
	)
	require.NoError(t, analyzer.Extract(e, cm))
	checker, err := analyzer.CheckModule(e, cm)
	require.NoError(t, err)

	prog, err := hir.Lower(checker, cm)
	require.NoError(t, err)

	require.Len(t, prog.Records, 1)
	require.Equal(t, "M_R", prog.Records[0].Symbol)
	require.Len(t, prog.Records[0].Fields, 1)
	require.Equal(t, "x", prog.Records[0].Fields[0].Name)

	require.Len(t, prog.Functions, 1)
	fnOut := prog.Functions[0]
	require.Equal(t, "M_"+config.MainFuncName, fnOut.Symbol)
	require.Len(t, fnOut.Params, 1)
	require.Equal(t, "root", fnOut.Params[0].Name)

	// let r = R(x => 32); let __t1 = r; let x = __t1.x; return root;
	require.Len(t, fnOut.Body, 4)
	letR, ok := fnOut.Body[0].(hir.LetStmt)
	require.True(t, ok)
	require.Equal(t, "r", letR.Name)
	recordLit, ok := letR.Value.(hir.RecordLit)
	require.True(t, ok)
	require.Equal(t, "M_R", recordLit.Symbol)

	tmpLet, ok := fnOut.Body[1].(hir.LetStmt)
	require.True(t, ok)
	xLet, ok := fnOut.Body[2].(hir.LetStmt)
	require.True(t, ok)
	require.Equal(t, "x", xLet.Name)
	fieldAccess, ok := xLet.Value.(hir.FieldAccess)
	require.True(t, ok)
	require.Equal(t, "x", fieldAccess.Slot)
	ident, ok := fieldAccess.Head.(hir.Ident)
	require.True(t, ok)
	require.Equal(t, tmpLet.Name, ident.Name)

	ret, ok := fnOut.Body[3].(hir.ReturnStmt)
	require.True(t, ok)
	retIdent, ok := ret.Value.(hir.Ident)
	require.True(t, ok)
	require.Equal(t, "root", retIdent.Name)
}

func TestLowerGenericCallMonomorphizes(t *testing.T) {
	e := env.New()
	require.NoError(t, analyzer.Extract(e, modules.Prelude()))

	identity := &ast.FunctionDecl{
		Vis:        ast.Public,
		Name:       "identity",
		Typarams:   []ast.TypeParam{{Name: "a", Universe: types.TypeUniverse}},
		Params:     []ast.Param{{Name: "v", Type: ast.NamedTypeSpec{Name: "a"}}},
		ReturnType: ast.NamedTypeSpec{Name: "a"},
		Body: []ast.Statement{
			&ast.ReturnStatement{Value: ast.IdentExpr{Name: "v"}},
		},
	}
	fn := mainFn([]ast.Statement{
		&ast.LetStatement{
			Binding: ast.IdentPattern{Name: "n"},
			Value:   ast.CallExpr{Callee: "identity", Args: []ast.Expression{ast.IntLiteral{Value: 7}}},
		},
		&ast.ReturnStatement{Value: ast.IdentExpr{Name: "root"}},
	})
	cm := newModule("M",
		modules.CombinedEntry{Decl: identity, IsPublic: true},
		modules.CombinedEntry{Decl: fn, IsPublic: true},
	)
	require.NoError(t, analyzer.Extract(e, cm))
	checker, err := analyzer.CheckModule(e, cm)
	require.NoError(t, err)

	prog, err := hir.Lower(checker, cm)
	require.NoError(t, err)

	require.Len(t, prog.Functions, 2)
	var identitySymbol string
	for _, f := range prog.Functions {
		if f.Symbol != "M_"+config.MainFuncName {
			identitySymbol = f.Symbol
		}
	}
	require.Equal(t, "M_identity$Int32", identitySymbol)
}
