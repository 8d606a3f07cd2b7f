package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/amber-lang/amberc/internal/diagnostics"
)

// ErrorFormat selects plain-text or JSON diagnostic rendering (spec
// §6.1's "Error reporting mode: plain text or JSON").
type ErrorFormat string

const (
	FormatPlain ErrorFormat = "plain"
	FormatJSON  ErrorFormat = "json"
)

// resolveFormat honors an explicit --errors= flag; otherwise it
// auto-detects the way funxy's CLI decides whether to colorize output —
// a terminal gets the human-readable form, anything else (a pipe, a CI
// log) gets JSON so downstream tooling can parse it.
func resolveFormat(flags map[string]flag, stdout *os.File) ErrorFormat {
	if f, ok := flags["errors"]; ok && f.Value != "" {
		return ErrorFormat(f.Value)
	}
	if isatty.IsTerminal(stdout.Fd()) || isatty.IsCygwinTerminal(stdout.Fd()) {
		return FormatPlain
	}
	return FormatJSON
}

// invocationReport is the JSON-mode envelope: an invocation id (so
// multiple compiler runs in a CI log can be correlated, grounded on
// funxy's own use of github.com/google/uuid for session correlation)
// plus the diagnostics produced.
type invocationReport struct {
	InvocationID string                    `json:"invocation_id"`
	Diagnostics  []*diagnostics.Diagnostic `json:"diagnostics"`
}

// renderDiagnostics writes bag's contents to w in the selected format.
func renderDiagnostics(w io.Writer, bag *diagnostics.Bag, format ErrorFormat) error {
	switch format {
	case FormatJSON:
		report := invocationReport{
			InvocationID: uuid.New().String(),
			Diagnostics:  bag.All(),
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		for _, d := range bag.All() {
			fmt.Fprintln(w, d.Error())
		}
		return nil
	}
}
