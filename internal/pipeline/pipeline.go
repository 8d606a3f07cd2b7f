// Package pipeline threads one module's compilation state through stages
// A-H (import resolution/combining, extraction, type parsing, expression/
// statement typing, linearity checking, monomorphization, typeclass
// overlap, lowering).
//
// Grounded on internal/pipeline/pipeline.go's Processor/Pipeline shape:
// a fixed ordered list of named stages, each receiving and returning the
// same mutable context value. The teacher's Run always executes every
// processor (so its LSP can collect parse and semantic errors from one
// pass); this Run stops at the first stage that leaves an error behind,
// matching spec §5's abort-on-first-failure discipline.
package pipeline

import (
	"github.com/amber-lang/amberc/internal/analyzer"
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/env"
	"github.com/amber-lang/amberc/internal/hir"
	"github.com/amber-lang/amberc/internal/modules"
)

// Context is the value every Processor reads from and writes back into.
// Mirrors the teacher's PipelineContext role: one struct threaded
// linearly through the stage list, accumulating each stage's output for
// the next to consume.
type Context struct {
	ModuleName string
	Interface  *ast.Program
	Body       *ast.Program

	Env     *env.Environment
	Module  *modules.CombinedModule
	Checker *analyzer.Checker
	Program *hir.Program

	Errors *diagnostics.Bag
}

// NewContext builds the initial Context for one module compile: an
// environment (already seeded with Prelude by the caller), the module's
// parsed interface and body files, and an empty diagnostics bag.
func NewContext(e *env.Environment, moduleName string, iface, body *ast.Program) *Context {
	return &Context{
		ModuleName: moduleName,
		Interface:  iface,
		Body:       body,
		Env:        e,
		Errors:     &diagnostics.Bag{},
	}
}

// Processor is one named pipeline stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline runs a fixed sequence of Processors over one Context.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes each stage in order, stopping as soon as a stage leaves
// an error in ctx.Errors — later stages assume every earlier one
// succeeded (stage D's type resolution assumes stage C already defined
// every name, stage H's lowering assumes stage F already accepted every
// linear binding), so running them past a failure would only produce
// confusing cascading diagnostics.
func (p *Pipeline) Run(initial *Context) *Context {
	ctx := initial
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
		if !ctx.Errors.Empty() {
			break
		}
	}
	return ctx
}

// Standard returns the full A-H pipeline in spec order. Callers needing
// only a prefix (e.g. a language-server-style "check, don't lower" mode)
// can construct a shorter Pipeline directly from the named Processors
// instead.
func Standard() *Pipeline {
	return New(
		&CombineProcessor{},
		&ExtractProcessor{},
		&CheckProcessor{},
		&LowerProcessor{},
	)
}
