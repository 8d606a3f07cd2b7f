package buildcache_test

import (
	"testing"

	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/buildcache"
	"github.com/amber-lang/amberc/internal/modules"
	"github.com/amber-lang/amberc/internal/token"
	"github.com/stretchr/testify/require"
)

func combinedMain(t *testing.T, retName string) *modules.CombinedModule {
	t.Helper()
	body := &ast.Program{
		Header: ast.Header{ModuleName: "M"},
		Decls: []ast.Declaration{
			&ast.FunctionDecl{
				Vis:  ast.Public,
				Name: "main",
				Params: []ast.Param{
					{Name: "root", Type: ast.NamedTypeSpec{Name: "RootCapability"}},
				},
				ReturnType: ast.NamedTypeSpec{Name: "RootCapability"},
				Body: []ast.Statement{
					&ast.ReturnStatement{Value: ast.IdentExpr{Name: retName}},
				},
				Pos: token.Span{Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 3, Column: 4}},
			},
		},
	}
	cm, err := modules.Combine(nil, body)
	require.NoError(t, err)
	return cm
}

func TestFingerprintStableForIdenticalContent(t *testing.T) {
	a := buildcache.Fingerprint(combinedMain(t, "root"))
	b := buildcache.Fingerprint(combinedMain(t, "root"))
	require.Equal(t, a, b)
}

func TestFingerprintChangesWithDeclaredSpan(t *testing.T) {
	a := buildcache.Fingerprint(combinedMain(t, "root"))

	body := &ast.Program{
		Header: ast.Header{ModuleName: "M"},
		Decls: []ast.Declaration{
			&ast.FunctionDecl{
				Vis:  ast.Public,
				Name: "main",
				Params: []ast.Param{
					{Name: "root", Type: ast.NamedTypeSpec{Name: "RootCapability"}},
				},
				ReturnType: ast.NamedTypeSpec{Name: "RootCapability"},
				Body: []ast.Statement{
					&ast.ReturnStatement{Value: ast.IdentExpr{Name: "root"}},
				},
				// A later span simulates extra lines inserted earlier in the
				// same file shifting this declaration's position.
				Pos: token.Span{Start: token.Position{Line: 5, Column: 1}, End: token.Position{Line: 7, Column: 4}},
			},
		},
	}
	cm, err := modules.Combine(nil, body)
	require.NoError(t, err)
	b := buildcache.Fingerprint(cm)

	require.NotEqual(t, a, b)
}
