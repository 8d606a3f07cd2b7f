package ast

import "github.com/amber-lang/amberc/internal/token"

// TypeSpecifier is an unresolved type occurrence as written in source: a
// name with optional type arguments, a reference, an array, a raw
// pointer, or one of the scalar keywords. Stage D (internal/analyzer's
// type parser) resolves one of these into a types.Type.
type TypeSpecifier interface {
	Node
	typeSpecNode()
}

type UnitTypeSpec struct{ Pos token.Span }

func (t UnitTypeSpec) Span() token.Span { return t.Pos }
func (UnitTypeSpec) typeSpecNode()       {}

type BooleanTypeSpec struct{ Pos token.Span }

func (t BooleanTypeSpec) Span() token.Span { return t.Pos }
func (BooleanTypeSpec) typeSpecNode()       {}

type IntegerTypeSpec struct {
	Signed bool
	Width  int
	Pos    token.Span
}

func (t IntegerTypeSpec) Span() token.Span { return t.Pos }
func (IntegerTypeSpec) typeSpecNode()       {}

type SingleFloatTypeSpec struct{ Pos token.Span }

func (t SingleFloatTypeSpec) Span() token.Span { return t.Pos }
func (SingleFloatTypeSpec) typeSpecNode()       {}

type DoubleFloatTypeSpec struct{ Pos token.Span }

func (t DoubleFloatTypeSpec) Span() token.Span { return t.Pos }
func (DoubleFloatTypeSpec) typeSpecNode()       {}

// NamedTypeSpec is `N[args...]`, resolved per spec §4.2's three-tier
// lookup order (typarams, local signatures, environment).
type NamedTypeSpec struct {
	Name string
	Args []TypeSpecifier
	Pos  token.Span
}

func (t NamedTypeSpec) Span() token.Span { return t.Pos }
func (NamedTypeSpec) typeSpecNode()       {}

// ArrayTypeSpec is `Array[T, r]`.
type ArrayTypeSpec struct {
	Element TypeSpecifier
	Region  string
	Pos     token.Span
}

func (t ArrayTypeSpec) Span() token.Span { return t.Pos }
func (ArrayTypeSpec) typeSpecNode()       {}

// RegionTypeSpec names a region directly as a type (spec §3.2 Region).
type RegionTypeSpec struct {
	Name string
	Pos  token.Span
}

func (t RegionTypeSpec) Span() token.Span { return t.Pos }
func (RegionTypeSpec) typeSpecNode()       {}

// ReadRefTypeSpec is `&T@r`.
type ReadRefTypeSpec struct {
	Referent TypeSpecifier
	Region   string
	Pos      token.Span
}

func (t ReadRefTypeSpec) Span() token.Span { return t.Pos }
func (ReadRefTypeSpec) typeSpecNode()       {}

// WriteRefTypeSpec is `&!T@r`.
type WriteRefTypeSpec struct {
	Referent TypeSpecifier
	Region   string
	Pos      token.Span
}

func (t WriteRefTypeSpec) Span() token.Span { return t.Pos }
func (WriteRefTypeSpec) typeSpecNode()       {}

// RawPointerTypeSpec is `*T`, valid only within unsafe modules (spec
// §3.2/§4.3).
type RawPointerTypeSpec struct {
	Pointee TypeSpecifier
	Pos     token.Span
}

func (t RawPointerTypeSpec) Span() token.Span { return t.Pos }
func (RawPointerTypeSpec) typeSpecNode()       {}
