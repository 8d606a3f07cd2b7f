package buildcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/modules"
)

// Fingerprint returns the content-address of a combined module's
// declaration set, for use as the hash half of a (module name, content
// hash) cache key. cli.SourceLoader (the out-of-scope-lexer boundary,
// spec §1 Non-goals) hands the pipeline parsed *ast.Program values, not
// raw source bytes, so there is no byte stream to feed through Hash the
// way a real build tool would hash source files directly. Fingerprint
// instead walks the post-combine declaration list and hashes what
// distinguishes one version of a module's content from another: each
// declaration's kind, name, typarams, visibility and source span.
// Span positions shift under any edit that changes line/column counts
// earlier in the file, so an unrelated one-line edit inside one
// function's body still changes every later declaration's fingerprint
// contribution — a coarser approximation of "did the source change"
// than a true content hash, but the best available without a parser
// that preserves raw bytes.
func Fingerprint(cm *modules.CombinedModule) string {
	h := sha256.New()
	fmt.Fprintf(h, "module:%s unsafe:%t\n", cm.Name, cm.Unsafe)
	for _, entry := range cm.Entries {
		writeEntry(h, entry)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeEntry(h io.Writer, entry modules.CombinedEntry) {
	decl := entry.Decl
	fmt.Fprintf(h, "decl kind:%d name:%s vis:%d typevis:%d pub:%t\n",
		decl.Kind(), decl.DeclName(), visOf(decl), entry.TypeVis, entry.IsPublic)
	for _, tp := range decl.DeclTyparams() {
		fmt.Fprintf(h, "  typaram name:%s universe:%d constraints:%v\n",
			tp.Name, tp.Universe, tp.Constraints)
	}
	span := decl.Span()
	fmt.Fprintf(h, "  span:%d:%d-%d:%d\n",
		span.Start.Line, span.Start.Column, span.End.Line, span.End.Column)
}

// visOf reports the general Public/Private tag of a constant, function or
// typeclass declaration, or -1 for anything else: a record/union/opaque
// type (whose visibility lives entirely in entry.TypeVis, already hashed
// separately above) or an instance (whose IsPublic is hashed as pub).
func visOf(decl ast.Declaration) int {
	switch d := decl.(type) {
	case *ast.ConstantDecl:
		return int(d.Vis)
	case *ast.FunctionDecl:
		return int(d.Vis)
	case *ast.TypeclassDecl:
		return int(d.Vis)
	default:
		return -1
	}
}
