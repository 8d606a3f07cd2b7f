package cli

import (
	"strings"

	"github.com/amber-lang/amberc/internal/diagnostics"
)

// Entrypoint is a module:identifier pair naming a function of signature
// (RootCapability) -> RootCapability or (RootCapability) -> ExitCode
// (spec §6.1).
type Entrypoint struct {
	Module     string
	Identifier string
}

func (e Entrypoint) String() string { return e.Module + ":" + e.Identifier }

// ParseEntrypoint splits "module:identifier", rejecting anything else as
// malformed (spec §6.1, §7 CliError).
func ParseEntrypoint(spec string) (Entrypoint, *diagnostics.Diagnostic) {
	idx := strings.IndexByte(spec, ':')
	if idx <= 0 || idx == len(spec)-1 {
		return Entrypoint{}, diagnostics.BadEntrypoint(spec)
	}
	module, ident := spec[:idx], spec[idx+1:]
	if strings.ContainsRune(ident, ':') {
		return Entrypoint{}, diagnostics.BadEntrypoint(spec)
	}
	return Entrypoint{Module: module, Identifier: ident}, nil
}

// TargetKind is the closed set of compile targets (spec §6.1).
type TargetKind string

const (
	TargetTypeCheck   TargetKind = "TypeCheck"
	TargetExecutable  TargetKind = "Executable"
	TargetCStandalone TargetKind = "CStandalone"
)

// Target is one resolved --target=... value, carrying the payload its
// kind requires.
type Target struct {
	Kind TargetKind

	// Executable
	BinPath    string
	Entrypoint Entrypoint

	// CStandalone
	OutputPath         string
	HasEntrypoint      bool
	OptionalEntrypoint Entrypoint
}

// ResolveTarget builds a Target from the parsed flag set. The entrypoint
// flag is required for Executable, optional for CStandalone, and absent
// for TypeCheck (a type-check-only run has nothing to execute).
func ResolveTarget(flags map[string]flag) (Target, *diagnostics.Diagnostic) {
	kind, err := requireValue(flags, "target")
	if err != nil {
		return Target{}, err
	}
	if kind == "" {
		return Target{}, diagnostics.MissingFlagValue("target")
	}

	switch TargetKind(kind) {
	case TargetTypeCheck:
		return Target{Kind: TargetTypeCheck}, nil

	case TargetExecutable:
		binPath, err := requireValue(flags, "bin_path")
		if err != nil {
			return Target{}, err
		}
		if binPath == "" {
			return Target{}, diagnostics.MissingFlagValue("bin_path")
		}
		epSpec, err := requireValue(flags, "entrypoint")
		if err != nil {
			return Target{}, err
		}
		if epSpec == "" {
			return Target{}, diagnostics.MissingFlagValue("entrypoint")
		}
		ep, perr := ParseEntrypoint(epSpec)
		if perr != nil {
			return Target{}, perr
		}
		return Target{Kind: TargetExecutable, BinPath: binPath, Entrypoint: ep}, nil

	case TargetCStandalone:
		outPath, err := requireValue(flags, "output_path")
		if err != nil {
			return Target{}, err
		}
		if outPath == "" {
			return Target{}, diagnostics.MissingFlagValue("output_path")
		}
		t := Target{Kind: TargetCStandalone, OutputPath: outPath}
		if f, ok := flags["entrypoint"]; ok {
			if f.Value == "" {
				return Target{}, diagnostics.MissingFlagValue("entrypoint")
			}
			ep, perr := ParseEntrypoint(f.Value)
			if perr != nil {
				return Target{}, perr
			}
			t.HasEntrypoint = true
			t.OptionalEntrypoint = ep
		}
		return t, nil

	default:
		return Target{}, diagnostics.UnknownTarget(kind)
	}
}
