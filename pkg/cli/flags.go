// Package cli implements the command-line surface of spec §6.1: flag and
// subcommand parsing, target resolution, project manifest loading, and
// plain/JSON diagnostic rendering, wired together by Run.
//
// Grounded on funxy's pkg/cli/entry.go: a sequence of bool-returning
// handleX functions, each checking os.Args for its own subcommand and
// falling through to the next if it doesn't match. amberc's surface is far
// narrower (one pipeline, no VM/tree-walk choice, no ext-module host
// build, no self-executing embedded bundle) so Run collapses that chain
// down to the four subcommands spec §6.1 actually names.
package cli

import (
	"strings"

	"github.com/amber-lang/amberc/internal/diagnostics"
)

// flag is one parsed --name or --name=value argument.
type flag struct {
	Name  string
	Value string
	IsSet bool // value flags with "--name" alone (no "=value") have IsSet but empty Value
}

// parseFlags splits args into positional arguments and flags. A flag with
// no "=" is boolean (--embed); one with "=" carries a value (--target=...).
// Repeating the same flag name is a CliError, per spec §6.1 ("Repeated
// flags with the same name are errors").
func parseFlags(args []string) (positional []string, flags map[string]flag, err *diagnostics.Diagnostic) {
	flags = make(map[string]flag)
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			positional = append(positional, arg)
			continue
		}
		name := strings.TrimPrefix(arg, "--")
		value := ""
		if idx := strings.IndexByte(name, '='); idx >= 0 {
			value = name[idx+1:]
			name = name[:idx]
		}
		if name == "" {
			return nil, nil, diagnostics.UnknownFlag(arg)
		}
		if _, dup := flags[name]; dup {
			return nil, nil, diagnostics.RepeatedFlag(name)
		}
		flags[name] = flag{Name: name, Value: value, IsSet: true}
	}
	return positional, flags, nil
}

// requireValue returns the value of a flag that must carry one
// (--target=Executable, not bare --target).
func requireValue(flags map[string]flag, name string) (string, *diagnostics.Diagnostic) {
	f, ok := flags[name]
	if !ok {
		return "", nil
	}
	if f.Value == "" {
		return "", diagnostics.MissingFlagValue(name)
	}
	return f.Value, nil
}
