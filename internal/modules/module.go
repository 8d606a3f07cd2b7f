// Package modules implements stage A (import resolution) and stage B
// (module combining) of the pipeline (spec §4.1), plus the synthetic
// prelude module every user module implicitly imports.
//
// Grounded on internal/modules/module.go's Module struct, trimmed of
// funxy's package-group / virtual-module / runtime-evaluator fields (no
// analog in an AOT-compiled, interface+body module system) and
// internal/analyzer/declarations_imports.go's import-resolution walk.
package modules

import (
	"github.com/amber-lang/amberc/internal/ast"
)

// ImportMap maps a local name (as it appears at use sites in this module)
// to the module name it refers to (spec §3.3 "Import map").
type ImportMap struct {
	CurrentModule string
	ByLocalName   map[string]string
}

func newImportMap(currentModule string) *ImportMap {
	return &ImportMap{CurrentModule: currentModule, ByLocalName: make(map[string]string)}
}

// Resolve returns the module a local name refers to, defaulting to the
// current module if local isn't an imported alias (spec §3.3: the import
// map "is consulted during qualification of every type specifier and
// every referenced identifier").
func (m *ImportMap) Resolve(local string) string {
	if mod, ok := m.ByLocalName[local]; ok {
		return mod
	}
	return m.CurrentModule
}

// CombinedEntry is one declaration as it appears in the combined module
// (spec §4.1): the declaration node itself plus its resolved visibility.
type CombinedEntry struct {
	Decl     ast.Declaration
	TypeVis  ast.TypeVisibility // meaningful only for Record/Union/OpaqueType
	IsPublic bool               // meaningful for everything else
}

// CombinedModule is the output of stage B: one declaration set embedding
// both interface signatures and body definitions, plus the import map
// produced by stage A.
type CombinedModule struct {
	Name    string
	Imports *ImportMap
	Entries []CombinedEntry
	Unsafe  bool
}
