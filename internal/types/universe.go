// Package types implements the spec's type universe: the tagged union of
// types (§3.2), the four-universe discipline (Free/Linear/Type/Region),
// the effective-universe computation rule, universe compatibility (§4.2),
// and region stripping ahead of monomorphization (§4.4/§4.5).
//
// Grounded on internal/typesystem/kinds.go's closed Kind interface
// (KStar/KVar/KArrow/KWildcard) — Universe plays the same role kinds play
// there ("closed classification of types with one compatibility rule"),
// generalized from two tags to the spec's four.
package types

// Universe is the closed four-tag classification of spec §3.2.
type Universe int

const (
	Free Universe = iota
	Linear
	TypeUniverse // named TypeUniverse to avoid colliding with the Type interface
	Region
)

func (u Universe) String() string {
	switch u {
	case Free:
		return "Free"
	case Linear:
		return "Linear"
	case TypeUniverse:
		return "Type"
	case Region:
		return "Region"
	default:
		return "?"
	}
}

// UniverseCompatible implements spec §4.2's universe_compatible relation:
// Free only subsumes Free, Linear only subsumes Linear, Type matches any
// universe (generic parameter binding only), and every other pairing
// requires exact equality.
func UniverseCompatible(declared, use Universe) bool {
	switch declared {
	case TypeUniverse:
		return true
	case Free:
		return use == Free
	case Linear:
		return use == Linear
	default:
		return declared == use
	}
}
