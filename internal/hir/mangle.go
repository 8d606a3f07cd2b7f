package hir

import (
	"strings"

	"github.com/amber-lang/amberc/internal/types"
)

// sanitize rewrites s into a valid C identifier fragment: every run of
// characters outside [A-Za-z0-9_] collapses to a single underscore. Type
// strings like "Array[Int32, r]" or "&Int32@r" need this before they can
// appear inside a symbol name.
func sanitize(s string) string {
	var b strings.Builder
	prevUnderscore := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
			prevUnderscore = false
			continue
		}
		if !prevUnderscore {
			b.WriteByte('_')
			prevUnderscore = true
		}
	}
	return b.String()
}

// mangleType names a record/union layout's emission symbol: the
// declaring module and the type's own name, with no instantiation suffix
// (spec §4.5 only monomorphizes function calls; a record/union layout is
// shared shape across every instantiation, per hir.go's RecordLayout
// doc comment).
func mangleType(q types.QIdent) string {
	return sanitize(q.Module) + "_" + sanitize(q.Original)
}

// mangleFunc names a function's emission symbol: the declaring module
// and name, plus one `$`-separated, sanitized stripped-type-string
// segment per type argument for a monomorphized instantiation (empty for
// a non-generic function). Grounded in shape on
// internal/env/monomorph_table.go's monomorphKey, which already builds a
// very similar `qident.Key() + "|" + type.String()` lookup key — mangleFunc
// reuses that same "name plus joined type strings" idea, sanitized into a
// valid identifier instead of an internal map key.
func mangleFunc(q types.QIdent, args []types.Type) string {
	base := mangleType(q)
	if len(args) == 0 {
		return base
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = sanitize(a.String())
	}
	return base + "$" + strings.Join(parts, "$")
}

// mangleMethod names a typeclass method's emission symbol for one
// resolved instance: the trait and method name, plus the instance's
// argument type. Every method call resolves to exactly one such symbol
// (spec §4.6: overlapping instances are rejected up front).
func mangleMethod(traitName, methodName string, arg types.Type) string {
	return sanitize(traitName) + "_" + sanitize(methodName) + "$" + sanitize(arg.String())
}
