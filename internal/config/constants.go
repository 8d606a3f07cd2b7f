// Package config holds build-time constants shared across the compiler:
// version string, recognized source file extensions, and the names of a
// handful of builtin declarations the prelude always provides.
package config

import "strings"

// Version is the current amberc version. Set at build time via
// -ldflags "-X github.com/amber-lang/amberc/internal/config.Version=...".
var Version = "0.1.0"

// SourceFileExt is the canonical body-file extension.
const SourceFileExt = ".am"

// InterfaceFileExt is the extension for interface-only files.
const InterfaceFileExt = ".ami"

// SourceFileExtensions are all recognized source file extensions, body and
// interface alike.
var SourceFileExtensions = []string{SourceFileExt, InterfaceFileExt}

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(name, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if path ends with any recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// IsTestMode is flipped by test harnesses that need deterministic
// formatting of anything environment-dependent.
var IsTestMode = false

// Builtin names: the types and union cases the prelude module always
// registers, plus the name of the program's entry-point function.
const (
	RootCapabilityTypeName = "RootCapability"
	ExitCodeTypeName       = "ExitCode"
	OptionalTypeName       = "Optional"
	SomeCtorName           = "Some"
	NoneCtorName           = "None"
	MainFuncName           = "Main"
)

// PreludeModuleName is the synthetic module name every user module
// implicitly imports.
const PreludeModuleName = "Prelude"
