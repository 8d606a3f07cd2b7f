package cli_test

import (
	"strings"
	"testing"

	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/pkg/cli"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

// txtarFixture parses an interface+body module pair encoded as a txtar
// archive (§10: "a standard pattern for multiple named text files in one
// test fixture"). The archive's file bodies are not lexed — there is no
// parser in scope — they're read only to confirm which named file is
// present; the actual *ast.Program each file stands for comes from the
// fixture table below, keyed by file name. This lets a test fixture read
// like a real two-file module layout (M.ami / M.am) while staying within
// the out-of-scope-parser boundary cli.SourceLoader documents.
type txtarFixture struct {
	archive *txtar.Archive
	build   map[string]func() *ast.Program
}

func parseTxtarFixture(t *testing.T, data string, build map[string]func() *ast.Program) *txtarFixture {
	t.Helper()
	return &txtarFixture{archive: txtar.Parse([]byte(data)), build: build}
}

func (f *txtarFixture) Load(name string) (iface, body *ast.Program, err error) {
	ifaceName, bodyName := name+".ami", name+".am"
	for _, file := range f.archive.Files {
		builder, ok := f.build[file.Name]
		if !ok {
			continue
		}
		switch file.Name {
		case ifaceName:
			iface = builder()
		case bodyName:
			body = builder()
		}
	}
	if body == nil {
		return nil, nil, &missingModuleError{name: name}
	}
	return iface, body, nil
}

func TestRunWithTxtarEncodedModuleFixture(t *testing.T) {
	archive := `
-- M.am --
Main: return root; end
`
	fixture := parseTxtarFixture(t, strings.TrimSpace(archive), map[string]func() *ast.Program{
		"M.am": func() *ast.Program { return mainModule("M") },
	})

	var stdout, stderr strings.Builder
	code := cli.Run([]string{"compile", "M", "--target=TypeCheck"}, &stdout, &stderr, fixture)

	require.Equal(t, 0, code)
	require.Empty(t, stderr.String())
}
