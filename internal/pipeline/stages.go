package pipeline

import (
	"github.com/amber-lang/amberc/internal/analyzer"
	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/hir"
	"github.com/amber-lang/amberc/internal/modules"
)

// recordErr appends err to ctx.Errors, wrapping it as a Diagnostic if some
// future stage ever returns a bare error instead of one of the
// diagnostics package's typed constructors (every stage wired in today
// only ever does the latter; this is a defensive fallback, not the
// expected path).
func recordErr(bag *diagnostics.Bag, err error) {
	if err == nil {
		return
	}
	if d, ok := err.(*diagnostics.Diagnostic); ok {
		bag.Add(d)
		return
	}
	bag.Add(diagnostics.Internal(err.Error()))
}

// CombineProcessor runs stages A (import resolution) and B (module
// combining, §4.1), fused the way modules.Combine already fuses them
// internally.
type CombineProcessor struct{}

func (p *CombineProcessor) Process(ctx *Context) *Context {
	cm, err := modules.Combine(ctx.Interface, ctx.Body)
	if err != nil {
		recordErr(ctx.Errors, err)
		return ctx
	}
	ctx.Module = cm
	return ctx
}

// ExtractProcessor runs stage C: defining every declaration into the
// environment.
type ExtractProcessor struct{}

func (p *ExtractProcessor) Process(ctx *Context) *Context {
	if err := analyzer.Extract(ctx.Env, ctx.Module); err != nil {
		recordErr(ctx.Errors, err)
	}
	return ctx
}

// CheckProcessor runs stages D-G: type parsing, expression/statement
// typing, linearity checking, monomorphization, and typeclass overlap
// validation — all fused into analyzer.CheckModule's single walk (see
// internal/analyzer's own package doc for why D-G aren't split across
// separate Processors here).
type CheckProcessor struct{}

func (p *CheckProcessor) Process(ctx *Context) *Context {
	c, err := analyzer.CheckModule(ctx.Env, ctx.Module)
	ctx.Checker = c
	if err != nil {
		recordErr(ctx.Errors, err)
	}
	return ctx
}

// LowerProcessor runs stage H: lowering the checked, monomorphic module
// into a flat target-emission-boundary hir.Program.
type LowerProcessor struct{}

func (p *LowerProcessor) Process(ctx *Context) *Context {
	prog, err := hir.Lower(ctx.Checker, ctx.Module)
	if err != nil {
		recordErr(ctx.Errors, err)
		return ctx
	}
	ctx.Program = prog
	return ctx
}
