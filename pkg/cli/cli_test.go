package cli_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/config"
	"github.com/amber-lang/amberc/pkg/cli"
	"github.com/stretchr/testify/require"
)

func rootCapSpec() ast.TypeSpecifier { return ast.NamedTypeSpec{Name: config.RootCapabilityTypeName} }

func mainModule(name string) *ast.Program {
	return &ast.Program{
		Header: ast.Header{ModuleName: name},
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

// fakeLoader serves a fixed set of body-only modules, standing in for the
// out-of-scope lexer/parser (see cli.SourceLoader's doc comment).
type fakeLoader struct {
	bodies map[string]*ast.Program
}

func (f *fakeLoader) Load(name string) (iface, body *ast.Program, err error) {
	b, ok := f.bodies[name]
	if !ok {
		return nil, nil, &missingModuleError{name: name}
	}
	return nil, b, nil
}

type missingModuleError struct{ name string }

func (e *missingModuleError) Error() string { return "no such module: " + e.name }

func TestRunTypeCheckSucceeds(t *testing.T) {
	loader := &fakeLoader{bodies: map[string]*ast.Program{"M": mainModule("M")}}
	var stdout, stderr bytes.Buffer

	code := cli.Run([]string{"compile", "M", "--target=TypeCheck"}, &stdout, &stderr, loader)

	require.Equal(t, 0, code)
	require.Empty(t, stderr.String())
}

func TestRunUnknownTarget(t *testing.T) {
	loader := &fakeLoader{bodies: map[string]*ast.Program{"M": mainModule("M")}}
	var stdout, stderr bytes.Buffer

	code := cli.Run([]string{"compile", "M", "--target=Bogus", "--errors=plain"}, &stdout, &stderr, loader)

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "unknown target")
}

func TestRunRepeatedFlagIsError(t *testing.T) {
	loader := &fakeLoader{bodies: map[string]*ast.Program{"M": mainModule("M")}}
	var stdout, stderr bytes.Buffer

	code := cli.Run([]string{"compile", "M", "--target=TypeCheck", "--target=TypeCheck"}, &stdout, &stderr, loader)

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "repeated flag")
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := cli.Run([]string{"help"}, &stdout, &stderr, nil)

	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "Usage: amberc")
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := cli.Run([]string{"version"}, &stdout, &stderr, nil)

	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), config.Version)
}

func TestRunCompileHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := cli.Run([]string{"compile", "help"}, &stdout, &stderr, nil)

	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "Usage: amberc compile")
}

func TestRunCacheDirPopulatesAndIsReusedOnRepeatCompile(t *testing.T) {
	loader := &fakeLoader{bodies: map[string]*ast.Program{"M": mainModule("M")}}
	cacheDir := t.TempDir()
	args := []string{"compile", "M", "--target=TypeCheck",
		fmt.Sprintf("--cache_dir=%s", cacheDir), "--verbose"}

	var stdout1, stderr1 bytes.Buffer
	code := cli.Run(args, &stdout1, &stderr1, loader)
	require.Equal(t, 0, code)
	require.Contains(t, stdout1.String(), "1 entries")

	// A second compile of the identical module content hits the cache
	// instead of re-running the checker; the cache still reports exactly
	// one stored entry rather than accumulating a duplicate row.
	var stdout2, stderr2 bytes.Buffer
	code = cli.Run(args, &stdout2, &stderr2, loader)
	require.Equal(t, 0, code)
	require.Contains(t, stdout2.String(), "1 entries")
}

func TestRunMissingModuleIsError(t *testing.T) {
	loader := &fakeLoader{bodies: map[string]*ast.Program{}}
	var stdout, stderr bytes.Buffer

	code := cli.Run([]string{"compile", "Ghost", "--target=TypeCheck"}, &stdout, &stderr, loader)

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "no such module")
}
