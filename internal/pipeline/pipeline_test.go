package pipeline_test

import (
	"testing"

	"github.com/amber-lang/amberc/internal/analyzer"
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/config"
	"github.com/amber-lang/amberc/internal/env"
	"github.com/amber-lang/amberc/internal/modules"
	"github.com/amber-lang/amberc/internal/pipeline"
	"github.com/stretchr/testify/require"
)

func intSpec() ast.TypeSpecifier { return ast.IntegerTypeSpec{Signed: true, Width: 32} }

func rootCapSpec() ast.TypeSpecifier { return ast.NamedTypeSpec{Name: config.RootCapabilityTypeName} }

func mainBody() *ast.Program {
	return &ast.Program{
		Header: ast.Header{ModuleName: "M"},
		Decls: []ast.Declaration{
			&ast.FunctionDecl{
				Vis:        ast.Public,
				Name:       config.MainFuncName,
				Params:     []ast.Param{{Name: "root", Type: rootCapSpec()}},
				ReturnType: rootCapSpec(),
				Body: []ast.Statement{
					&ast.ReturnStatement{Value: ast.IdentExpr{Name: "root"}},
				},
			},
		},
	}
}

func TestStandardPipelineSucceeds(t *testing.T) {
	e := env.New()
	require.NoError(t, analyzer.Extract(e, modules.Prelude()))
	ctx := pipeline.NewContext(e, "M", nil, mainBody())

	out := pipeline.Standard().Run(ctx)

	require.True(t, out.Errors.Empty())
	require.NotNil(t, out.Module)
	require.NotNil(t, out.Checker)
	require.NotNil(t, out.Program)
	require.Len(t, out.Program.Functions, 1)
	require.Equal(t, "M_"+config.MainFuncName, out.Program.Functions[0].Symbol)
}

func TestStandardPipelineStopsAtFirstError(t *testing.T) {
	e := env.New()
	iface := &ast.Program{
		Header:      ast.Header{ModuleName: "M"},
		IsInterface: true,
		Decls: []ast.Declaration{
			&ast.ConstantDecl{Vis: ast.Public, Name: "k", Annotation: intSpec()},
		},
	}
	body := &ast.Program{Header: ast.Header{ModuleName: "M"}} // missing body for "k"

	ctx := pipeline.NewContext(e, "M", iface, body)
	out := pipeline.Standard().Run(ctx)

	require.False(t, out.Errors.Empty())
	require.Contains(t, out.Errors.First().Error(), "missing body")
	// Combining failed, so later stages never ran.
	require.Nil(t, out.Checker)
	require.Nil(t, out.Program)
}
