// Package ast defines the raw (pre-qualification) AST the (out-of-scope)
// parser is expected to hand the analyzer: a module header, an import
// list, and a flat list of declarations, each carrying a source token.Span
// for diagnostics. Names here are plain strings; qualification into
// types.QIdent happens during stage B/E in internal/analyzer.
//
// Grounded on internal/ast/ast_core.go's struct-per-node-kind shape
// (Token/span field + TokenLiteral-style accessor on every node), adapted
// from funxy's dynamically-typed scripting grammar to the spec's
// declaration/type/expression/statement/pattern grammar.
package ast

import (
	"github.com/amber-lang/amberc/internal/token"
	"github.com/amber-lang/amberc/internal/types"
)

// Node is the base interface every AST node implements.
type Node interface {
	Span() token.Span
}

// Visibility is the general Public/Private tag of spec §9 Design Notes
// ("Vis = {Public, Private}"), used by constants, functions, typeclasses
// and instances.
type Visibility int

const (
	Private Visibility = iota
	Public
)

// TypeVisibility is the three-way tag spec §9 calls TypeVis, used only by
// record/union/opaque type declarations.
type TypeVisibility int

const (
	TypeVisPrivate TypeVisibility = iota
	TypeVisPublic
	TypeVisOpaque
)

// Identifier is a bare (unqualified) name occurrence.
type Identifier struct {
	Name string
	Pos  token.Span
}

func (id Identifier) Span() token.Span { return id.Pos }

// TypeParam is a formal type parameter (spec §3.3 typarams): an ordered,
// uniquely-named collection of (name, declared universe, constraints).
type TypeParam struct {
	Name        string
	Universe    types.Universe
	Constraints []string // typeclass names this parameter must satisfy
	Pos         token.Span
}

// DeclKind is the closed set of declaration kinds, spec §3.3.
type DeclKind int

const (
	DeclConstant DeclKind = iota
	DeclRecord
	DeclUnion
	DeclOpaqueType
	DeclFunction
	DeclTypeclass
	DeclInstance
)

func (k DeclKind) String() string {
	switch k {
	case DeclConstant:
		return "constant"
	case DeclRecord:
		return "record"
	case DeclUnion:
		return "union"
	case DeclOpaqueType:
		return "opaque type"
	case DeclFunction:
		return "function"
	case DeclTypeclass:
		return "typeclass"
	case DeclInstance:
		return "instance"
	default:
		return "?"
	}
}

// Declaration is the common interface of every top-level declaration kind
// (spec §3.3): constant, record, union, opaque type, function, typeclass,
// typeclass instance.
type Declaration interface {
	Node
	Kind() DeclKind
	DeclName() string
	DeclTyparams() []TypeParam
}

// ImportSpec names a module import, optionally with a renaming alias
// (spec §3.1: "the local name differs from the original only under
// renaming imports").
type ImportSpec struct {
	Path  string
	Alias string // "" if not renamed
	Pos   token.Span
}

func (i ImportSpec) Span() token.Span { return i.Pos }

// LocalName returns the name this import is visible under in the
// importing module: the alias if renamed, otherwise the module's own
// name.
func (i ImportSpec) LocalName() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.Path
}

// Header is the module header every source file begins with (spec §6.2):
// "Both begin with a module header naming the module; names must match."
type Header struct {
	ModuleName string
	Pos        token.Span
}

// Program is one parsed source file: either an interface file (IsInterface
// true, declarations carry signatures only) or a body file (definitions).
// A module is represented by either an (interface, body) pair or a
// body-only Program (spec §6.2).
type Program struct {
	File        string
	Header      Header
	Imports     []ImportSpec
	Decls       []Declaration
	IsInterface bool
	IsUnsafe    bool // true for modules permitted raw-pointer slot access (spec §4.3)
}

func (p *Program) Span() token.Span { return p.Header.Pos }
