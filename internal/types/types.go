package types

import (
	"fmt"
	"strings"
)

// RegionID names a region (borrow-scope witness, spec §3.2/§3.5). Regions
// have no runtime representation; the id exists only for the type checker
// and linearity pass to track scope nesting and is erased by Strip.
type RegionID string

// NoRegion is the sentinel used once a region has been erased (Strip) or
// for declarations that never had one (e.g. Region-universe typarams used
// before they're bound to a concrete region at a call site).
const NoRegion RegionID = ""

// Signedness of an Integer type (spec §3.2).
type Signedness int

const (
	Signed Signedness = iota
	Unsigned
)

// Type is the tagged union of spec §3.2. Each concrete case is a distinct
// Go struct implementing this interface, mirroring
// internal/typesystem/types.go's Type-interface-plus-structs shape.
type Type interface {
	String() string
	// Universe returns the effective universe of this type per spec §3.2's
	// universe computation rule.
	Universe() Universe
	// Equal reports structural equality, used for the structural-equality
	// checks of §4.1 module combining and §4.6 instance overlap.
	Equal(Type) bool
}

type Unit struct{}

func (Unit) String() string       { return "Unit" }
func (Unit) Universe() Universe   { return Free }
func (Unit) Equal(o Type) bool    { _, ok := o.(Unit); return ok }

type Boolean struct{}

func (Boolean) String() string     { return "Boolean" }
func (Boolean) Universe() Universe { return Free }
func (Boolean) Equal(o Type) bool  { _, ok := o.(Boolean); return ok }

// Integer(signedness, width), width in {8,16,32,64}.
type Integer struct {
	Signedness Signedness
	Width      int
}

func (t Integer) String() string {
	prefix := "Int"
	if t.Signedness == Unsigned {
		prefix = "UInt"
	}
	return fmt.Sprintf("%s%d", prefix, t.Width)
}
func (t Integer) Universe() Universe { return Free }
func (t Integer) Equal(o Type) bool {
	ot, ok := o.(Integer)
	return ok && ot.Signedness == t.Signedness && ot.Width == t.Width
}

type SingleFloat struct{}

func (SingleFloat) String() string     { return "Float32" }
func (SingleFloat) Universe() Universe { return Free }
func (SingleFloat) Equal(o Type) bool  { _, ok := o.(SingleFloat); return ok }

type DoubleFloat struct{}

func (DoubleFloat) String() string     { return "Float64" }
func (DoubleFloat) Universe() Universe { return Free }
func (DoubleFloat) Equal(o Type) bool  { _, ok := o.(DoubleFloat); return ok }

// Array(element_type, region). Always Free per spec §3.2.
type Array struct {
	Element Type
	Region  RegionID
}

func (t Array) String() string     { return fmt.Sprintf("Array[%s, %s]", t.Element, t.Region) }
func (t Array) Universe() Universe { return Free }
func (t Array) Equal(o Type) bool {
	ot, ok := o.(Array)
	return ok && ot.Region == t.Region && t.Element.Equal(ot.Element)
}

// Region(region_id). Always Free per spec §3.2.
type RegionType struct {
	ID RegionID
}

func (t RegionType) String() string     { return fmt.Sprintf("Region[%s]", t.ID) }
func (t RegionType) Universe() Universe { return Free }
func (t RegionType) Equal(o Type) bool {
	ot, ok := o.(RegionType)
	return ok && ot.ID == t.ID
}

// ReadRef(referent_type, region) — &T. Always Free per spec §3.2.
type ReadRef struct {
	Referent Type
	Region   RegionID
}

func (t ReadRef) String() string     { return fmt.Sprintf("&%s@%s", t.Referent, t.Region) }
func (t ReadRef) Universe() Universe { return Free }
func (t ReadRef) Equal(o Type) bool {
	ot, ok := o.(ReadRef)
	return ok && ot.Region == t.Region && t.Referent.Equal(ot.Referent)
}

// WriteRef(referent_type, region) — &!T. Always Free per spec §3.2.
type WriteRef struct {
	Referent Type
	Region   RegionID
}

func (t WriteRef) String() string     { return fmt.Sprintf("&!%s@%s", t.Referent, t.Region) }
func (t WriteRef) Universe() Universe { return Free }
func (t WriteRef) Equal(o Type) bool {
	ot, ok := o.(WriteRef)
	return ok && ot.Region == t.Region && t.Referent.Equal(ot.Referent)
}

// RawPointer(pointee_type) — only valid within unsafe modules (spec §3.2).
type RawPointer struct {
	Pointee Type
}

func (t RawPointer) String() string     { return fmt.Sprintf("*%s", t.Pointee) }
func (t RawPointer) Universe() Universe { return Free }
func (t RawPointer) Equal(o Type) bool {
	ot, ok := o.(RawPointer)
	return ok && t.Pointee.Equal(ot.Pointee)
}

// TyVar(name, universe, source_decl) — a type variable bound by some
// declaration's typarams.
type TyVar struct {
	Name       string
	Decl       Universe
	SourceDecl string
}

func (t TyVar) String() string     { return t.Name }
func (t TyVar) Universe() Universe { return t.Decl }
func (t TyVar) Equal(o Type) bool {
	ot, ok := o.(TyVar)
	return ok && ot.Name == t.Name
}

// NamedType(qident, type_arguments, universe) (spec §3.2). DeclUniverse is
// the declaring declaration's own universe tag (U_decl in the spec); the
// effective universe (what Universe() returns) is computed from it and
// from the arguments per the rule in §3.2.
type NamedType struct {
	Name        QIdent
	Args        []Type
	DeclUniverse Universe
}

// Universe implements spec §3.2's effective-universe computation rule:
// if the declaring universe isn't Type, the effective universe is the
// declaring universe; if it is Type, the effective universe is Linear if
// any argument's effective universe is Linear, else Free.
func (t NamedType) Universe() Universe {
	if t.DeclUniverse != TypeUniverse {
		return t.DeclUniverse
	}
	for _, a := range t.Args {
		if a.Universe() == Linear {
			return Linear
		}
	}
	return Free
}

func (t NamedType) String() string {
	if len(t.Args) == 0 {
		return t.Name.String()
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", t.Name, strings.Join(parts, ", "))
}

func (t NamedType) Equal(o Type) bool {
	ot, ok := o.(NamedType)
	if !ok || ot.Name != t.Name || len(ot.Args) != len(t.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(ot.Args[i]) {
			return false
		}
	}
	return true
}
