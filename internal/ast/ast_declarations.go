package ast

import (
	"github.com/amber-lang/amberc/internal/token"
	"github.com/amber-lang/amberc/internal/types"
)

// UniverseSpec is the as-written declared universe of a record/union/
// typeclass-argument before resolution; the raw AST already knows the
// four closed tags, so there is nothing further to resolve about a bare
// universe keyword.
type UniverseSpec = types.Universe

// ConstantDecl is a constant binding; Value is nil in an interface file
// (signature only).
type ConstantDecl struct {
	Vis        Visibility
	Name       string
	Typarams   []TypeParam
	Annotation TypeSpecifier
	Value      Expression
	Pos        token.Span
}

func (d *ConstantDecl) Span() token.Span        { return d.Pos }
func (d *ConstantDecl) Kind() DeclKind           { return DeclConstant }
func (d *ConstantDecl) DeclName() string         { return d.Name }
func (d *ConstantDecl) DeclTyparams() []TypeParam { return d.Typarams }

// RecordField is one named slot of a record, or one slot of a union case.
type RecordField struct {
	Name string
	Type TypeSpecifier
}

// RecordDecl declares a record type (spec §3.3).
type RecordDecl struct {
	TypeVis          TypeVisibility
	Name             string
	Typarams         []TypeParam
	DeclaredUniverse UniverseSpec
	Fields           []RecordField
	Pos              token.Span
}

func (d *RecordDecl) Span() token.Span        { return d.Pos }
func (d *RecordDecl) Kind() DeclKind           { return DeclRecord }
func (d *RecordDecl) DeclName() string         { return d.Name }
func (d *RecordDecl) DeclTyparams() []TypeParam { return d.Typarams }

// UnionCase is one tagged case of a union type, carrying its own slots.
type UnionCase struct {
	Name  string
	Slots []RecordField
	Pos   token.Span
}

// UnionDecl declares a union (sum) type (spec §3.3).
type UnionDecl struct {
	TypeVis          TypeVisibility
	Name             string
	Typarams         []TypeParam
	DeclaredUniverse UniverseSpec
	Cases            []UnionCase
	Pos              token.Span
}

func (d *UnionDecl) Span() token.Span        { return d.Pos }
func (d *UnionDecl) Kind() DeclKind           { return DeclUnion }
func (d *UnionDecl) DeclName() string         { return d.Name }
func (d *UnionDecl) DeclTyparams() []TypeParam { return d.Typarams }

// OpaqueTypeDecl is an interface-only `opaque type Name[...]` declaration;
// module combining (spec §4.1) matches it against a body RecordDecl or
// UnionDecl of the same name and assigns TypeVisOpaque.
type OpaqueTypeDecl struct {
	Name             string
	Typarams         []TypeParam
	DeclaredUniverse UniverseSpec
	Pos              token.Span
}

func (d *OpaqueTypeDecl) Span() token.Span        { return d.Pos }
func (d *OpaqueTypeDecl) Kind() DeclKind           { return DeclOpaqueType }
func (d *OpaqueTypeDecl) DeclName() string         { return d.Name }
func (d *OpaqueTypeDecl) DeclTyparams() []TypeParam { return d.Typarams }

// Param is one formal value parameter of a function.
type Param struct {
	Name string
	Type TypeSpecifier
}

// FunctionDecl declares a function or (within a typeclass) a method
// signature/default body. Body is nil in an interface file or for a
// typeclass method with no default implementation.
type FunctionDecl struct {
	Vis        Visibility
	Name       string
	Typarams   []TypeParam
	Params     []Param
	ReturnType TypeSpecifier
	Body       []Statement
	Pos        token.Span
}

func (d *FunctionDecl) Span() token.Span        { return d.Pos }
func (d *FunctionDecl) Kind() DeclKind           { return DeclFunction }
func (d *FunctionDecl) DeclName() string         { return d.Name }
func (d *FunctionDecl) DeclTyparams() []TypeParam { return d.Typarams }

// TypeclassDecl declares a typeclass. Spec §4.6: typeclasses take exactly
// one type parameter; AcceptedUniverse is the universe the typeclass's
// instance argument must inhabit (spec §4.6 "universe constraint").
type TypeclassDecl struct {
	Vis              Visibility
	Name             string
	Typarams         []TypeParam // validated to have length 1 at combining time
	AcceptedUniverse UniverseSpec
	Methods          []*FunctionDecl
	Pos              token.Span
}

func (d *TypeclassDecl) Span() token.Span        { return d.Pos }
func (d *TypeclassDecl) Kind() DeclKind           { return DeclTypeclass }
func (d *TypeclassDecl) DeclName() string         { return d.Name }
func (d *TypeclassDecl) DeclTyparams() []TypeParam { return d.Typarams }

// InstanceDecl implements a typeclass for a concrete (or generic) type
// argument (spec §4.6).
type InstanceDecl struct {
	Vis       Visibility
	TraitName string
	Typarams  []TypeParam
	Argument  TypeSpecifier
	Methods   []*FunctionDecl
	Pos       token.Span
}

func (d *InstanceDecl) Span() token.Span        { return d.Pos }
func (d *InstanceDecl) Kind() DeclKind           { return DeclInstance }
func (d *InstanceDecl) DeclName() string         { return d.TraitName }
func (d *InstanceDecl) DeclTyparams() []TypeParam { return d.Typarams }
