package env

import (
	"strings"

	"github.com/amber-lang/amberc/internal/types"
)

// MonomorphID uniquely identifies one concrete instantiation of a generic
// declaration (spec §4.5 "Monomorph").
type MonomorphID int

// MonomorphTable implements the `(qident, [stripped_type]) -> monomorph_id`
// table of spec §3.4/§4.5. The first encounter of a key allocates a fresh
// id; subsequent encounters return the same id.
//
// Grounded on internal/typesystem/dispatch.go's dictionary-dispatch table
// shape, combined with the map-of-maps pattern in
// internal/symbols/symbol_table_advanced.go.
type MonomorphTable struct {
	byKey map[string]MonomorphID
	specs []MonomorphSpec
	next  MonomorphID
}

// MonomorphSpec records what a MonomorphID was instantiated for, so
// lowering (stage H) can name the emitted symbol.
type MonomorphSpec struct {
	ID       MonomorphID
	QIdent   types.QIdent
	Stripped []types.Type
}

func newMonomorphTable() *MonomorphTable {
	return &MonomorphTable{byKey: make(map[string]MonomorphID)}
}

func monomorphKey(q types.QIdent, stripped []types.Type) string {
	var b strings.Builder
	b.WriteString(q.Key())
	for _, t := range stripped {
		b.WriteString("|")
		b.WriteString(t.String())
	}
	return b.String()
}

// Intern returns the MonomorphID for (qident, stripped), allocating a
// fresh one on first encounter. The bool result is true when a new id was
// allocated (useful for the caller to know whether it must still schedule
// the generic body for rewriting).
func (t *MonomorphTable) Intern(q types.QIdent, stripped []types.Type) (MonomorphID, bool) {
	key := monomorphKey(q, stripped)
	if id, ok := t.byKey[key]; ok {
		return id, false
	}
	id := t.next
	t.next++
	t.byKey[key] = id
	t.specs = append(t.specs, MonomorphSpec{ID: id, QIdent: q, Stripped: stripped})
	return id, true
}

// Lookup reports whether (qident, stripped) has already been tabulated,
// without allocating (used by analyzer's Checker.InstantiationFor and by
// this package's tests).
func (t *MonomorphTable) Lookup(q types.QIdent, stripped []types.Type) (MonomorphID, bool) {
	id, ok := t.byKey[monomorphKey(q, stripped)]
	return id, ok
}

// Specs returns every tabulated instantiation, in allocation order.
func (t *MonomorphTable) Specs() []MonomorphSpec {
	out := make([]MonomorphSpec, len(t.specs))
	copy(out, t.specs)
	return out
}
