// Package env implements the Environment of spec §3.4/§9 Design Notes:
// process-wide, append-only mutable state — a set of flat tables keyed by
// id (qualified name, typeclass name, or monomorph key) rather than an
// implicit reference graph. Modules are added in topological order of
// imports (spec §5); nothing is ever removed or mutated in place except
// inserts into the monomorphization table.
//
// Grounded on internal/symbols/symbol_table_core.go's Symbol/InstanceDef
// structs, generalized from a lexically-scoped symbol table (funxy needs
// nested scope chains for a dynamically-scoped interpreter) down to a
// single flat table: the spec's environment has no lexical scope chain,
// only module-qualified names.
package env

import (
	"fmt"
	"sort"

	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/types"
)

// DeclEntry is one declaration's signature as recorded by stage C
// (extraction, spec §4.1's combining output feeding into the env). Bodies
// stay on the AST node; the environment only ever needs signatures to
// resolve references from other modules.
type DeclEntry struct {
	QIdent   types.QIdent
	Kind     ast.DeclKind
	Vis      ast.Visibility
	TypeVis  ast.TypeVisibility
	Universe types.Universe // declared universe, U_decl in spec §3.2
	Typarams []ast.TypeParam
	Node     ast.Declaration // the combined declaration (signature + body)
}

// Environment is the process-wide mutable state threaded through every
// stage (spec §3.4).
type Environment struct {
	moduleOrder []string // topological order modules were added in
	modules     map[string]bool

	decls map[string]*DeclEntry // keyed by QIdent.Key()

	instances *InstanceRegistry
	monomorph *MonomorphTable
}

// New creates an empty Environment.
func New() *Environment {
	return &Environment{
		modules:   make(map[string]bool),
		decls:     make(map[string]*DeclEntry),
		instances: newInstanceRegistry(),
		monomorph: newMonomorphTable(),
	}
}

// AddModule records a module as loaded. Modules must be added in
// topological order of imports (spec §5); AddModule does not itself
// verify this, and records modules in whatever order its callers add
// them (internal/modules.Combine handles one module at a time and does
// not order modules).
func (e *Environment) AddModule(name string) {
	if e.modules[name] {
		return
	}
	e.modules[name] = true
	e.moduleOrder = append(e.moduleOrder, name)
}

func (e *Environment) HasModule(name string) bool { return e.modules[name] }

// ModuleOrder returns modules in the order they were added.
func (e *Environment) ModuleOrder() []string {
	out := make([]string, len(e.moduleOrder))
	copy(out, e.moduleOrder)
	return out
}

// Define appends a declaration entry to the environment. Per the
// append-only discipline, redefining an existing qualified name is an
// internal error — stage C (extraction) is expected to call Define
// exactly once per combined declaration.
func (e *Environment) Define(entry *DeclEntry) error {
	key := entry.QIdent.Key()
	if _, exists := e.decls[key]; exists {
		return fmt.Errorf("internal: duplicate definition of %s in environment", key)
	}
	e.decls[key] = entry
	return nil
}

// Lookup finds a declaration by its fully qualified (module, original
// name) key.
func (e *Environment) Lookup(qident types.QIdent) (*DeclEntry, bool) {
	entry, ok := e.decls[qident.Key()]
	return entry, ok
}

// LookupInModule finds a declaration by original name within a specific
// module, without requiring the caller to build a QIdent first.
func (e *Environment) LookupInModule(module, name string) (*DeclEntry, bool) {
	return e.Lookup(types.NewQIdent(module, name))
}

// Instances exposes the per-typeclass instance registry (spec §4.6).
func (e *Environment) Instances() *InstanceRegistry { return e.instances }

// Monomorph exposes the instantiation table (spec §4.5).
func (e *Environment) Monomorph() *MonomorphTable { return e.monomorph }

// AllDecls returns every defined entry, sorted by qualified name for
// deterministic iteration (used by analyzer's extraction tests).
func (e *Environment) AllDecls() []*DeclEntry {
	out := make([]*DeclEntry, 0, len(e.decls))
	for _, v := range e.decls {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QIdent.Key() < out[j].QIdent.Key() })
	return out
}
