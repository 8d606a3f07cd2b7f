package types

import "strings"

// QIdent is a qualified identifier (spec §3.1): the module where a name
// was declared, its original name, and the local name visible at a
// reference site (differs from Original only under a renaming import).
type QIdent struct {
	Module   string
	Original string
	Local    string
}

// NewQIdent builds a QIdent whose local name equals its original name,
// the common case for unrenamed references.
func NewQIdent(module, name string) QIdent {
	return QIdent{Module: module, Original: name, Local: name}
}

func (q QIdent) String() string {
	if q.Module == "" {
		return q.Original
	}
	return q.Module + "." + q.Original
}

// Key returns a value suitable as a map key identifying the declaration
// regardless of local renaming (the environment is keyed by the
// declaring module + original name, never the local alias).
func (q QIdent) Key() string {
	return q.Module + "." + q.Original
}

// ParseModuleName splits a dotted module name into its atoms (spec §3.1).
func ParseModuleName(name string) []string {
	if name == "" {
		return nil
	}
	return strings.Split(name, ".")
}
