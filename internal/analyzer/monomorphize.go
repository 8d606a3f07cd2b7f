// Stage G: monomorphization (spec §4.5). Call sites intern their
// (qident, stripped_args) instantiation directly during stage E/typeCall
// (analyzer.go's doc comment explains why the two stages are fused); this
// file provides the stage's standalone query surface. Stage H (lowering)
// reads Monomorphs; InstantiationFor has no caller in this repository.
//
// Grounded on internal/typesystem/dispatch.go's pair-returning
// intern-or-fetch idiom, already generalized once in
// internal/env/monomorph_table.go — this file is the stage-level API over
// that table rather than a new walk.
package analyzer

import (
	"github.com/amber-lang/amberc/internal/env"
	"github.com/amber-lang/amberc/internal/types"
)

// Monomorphs returns every instantiation interned while checking a
// module, in allocation order.
func (c *Checker) Monomorphs() []env.MonomorphSpec {
	return c.Env.Monomorph().Specs()
}

// InstantiationFor reports the MonomorphID a generic call site resolved
// to, for callers that only have the raw (qident, type arguments) pair.
// Stage H does not use it: it names call symbols from the stripped
// arguments directly (hir's callInstantiation and mangleFunc).
func (c *Checker) InstantiationFor(q types.QIdent, args []types.Type) (env.MonomorphID, bool) {
	stripped := make([]types.Type, len(args))
	for i, a := range args {
		stripped[i] = types.Strip(a)
	}
	return c.Env.Monomorph().Lookup(q, stripped)
}
