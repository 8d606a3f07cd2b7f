// Command amberc is the thin CLI wrapper: parse os.Args, hand off to
// pkg/cli.Run, exit with its result. Grounded on cmd/funxy/main.go's own
// main — a defer/recover turning any internal panic into a one-line
// "Internal error" message instead of a raw Go stack trace, then a
// sequence of subcommand dispatch — stripped of the backend-selection
// (VM vs tree-walk), ext-module host build, and embedded-bundle
// self-execution logic that amberc has no analog for.
package main

import (
	"fmt"
	"os"

	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/pkg/cli"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr, unimplementedLoader{}))
}

// unimplementedLoader is the production cli.SourceLoader: lexing and
// parsing source text are out of core scope (spec §1 Non-goals), so
// there is no real implementation to wire in yet. Every Load call fails
// with a clear message rather than silently returning an empty program.
type unimplementedLoader struct{}

func (unimplementedLoader) Load(name string) (iface, body *ast.Program, err error) {
	return nil, nil, fmt.Errorf("amberc: no source reader is wired in (lexing/parsing is out of core scope); %q cannot be loaded from disk", name)
}
