// Stage C: extraction (spec §4.1's combining output feeding the
// environment). Walks a combined module's entries and records one
// env.DeclEntry per declaration — signatures only, bodies stay attached to
// the AST node for stages E/F/G to walk later.
//
// Grounded on internal/analyzer/declarations.go's two-pass (signature,
// then body) declaration walk, collapsed to one pass since the spec's
// environment never needs a body before stage E runs.
package analyzer

import (
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/env"
	"github.com/amber-lang/amberc/internal/modules"
	"github.com/amber-lang/amberc/internal/types"
)

// Extract defines every declaration of cm into e, in source order. A name
// that is already defined in this module is reported as an InternalError
// diagnostic; internal/modules.Combine does not check for duplicate
// declaration names itself.
//
// Instance declarations are skipped here: an instance has no standalone
// name of its own (DeclName returns its typeclass's name, purely so it
// satisfies the Declaration interface) and is never looked up by
// qualified name — it is registered into the environment's per-typeclass
// InstanceRegistry instead, by stage §4.6's validateInstance, and found
// only by structural match against a type.
func Extract(e *env.Environment, cm *modules.CombinedModule) error {
	e.AddModule(cm.Name)
	for _, entry := range cm.Entries {
		decl := entry.Decl
		if _, ok := decl.(*ast.InstanceDecl); ok {
			continue
		}
		qid := types.NewQIdent(cm.Name, decl.DeclName())

		universe, err := declaredUniverse(decl)
		if err != nil {
			return err
		}

		de := &env.DeclEntry{
			QIdent:   qid,
			Kind:     decl.Kind(),
			Vis:      declVisibility(decl, entry),
			TypeVis:  entry.TypeVis,
			Universe: universe,
			Typarams: decl.DeclTyparams(),
			Node:     decl,
		}
		if err := e.Define(de); err != nil {
			return diagnostics.Internal(err.Error())
		}
	}
	return nil
}

// declaredUniverse returns U_decl (spec §3.2) for a declaration: the
// universe named on a record/union/opaque type, and Free for a constant,
// function or typeclass, which has no universe tag of its own (it has a
// universe only through its constituent types, and nothing in the
// environment needs a function's own "universe" beyond its type).
func declaredUniverse(decl ast.Declaration) (types.Universe, error) {
	switch d := decl.(type) {
	case *ast.RecordDecl:
		return d.DeclaredUniverse, nil
	case *ast.UnionDecl:
		return d.DeclaredUniverse, nil
	case *ast.OpaqueTypeDecl:
		return d.DeclaredUniverse, nil
	case *ast.ConstantDecl, *ast.FunctionDecl, *ast.TypeclassDecl:
		return types.Free, nil
	default:
		return 0, diagnostics.Internal("extraction: unhandled declaration kind")
	}
}

// declVisibility derives the general Public/Private tag (spec §9's Vis)
// from either the declaration's own Vis field or, for record/union/opaque
// types (which carry the three-way TypeVis instead), from TypeVis: a
// private-body type is invisible outside its module, an opaque or public
// one is visible by name.
func declVisibility(decl ast.Declaration, entry modules.CombinedEntry) ast.Visibility {
	switch d := decl.(type) {
	case *ast.ConstantDecl:
		return d.Vis
	case *ast.FunctionDecl:
		return d.Vis
	case *ast.TypeclassDecl:
		return d.Vis
	default:
		if entry.TypeVis == ast.TypeVisPrivate {
			return ast.Private
		}
		return ast.Public
	}
}
