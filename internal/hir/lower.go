// Stage H: lowering. Walks one already-checked module's declarations and
// produces a hir.Program: every non-generic function once, every generic
// function once per monomorph.Checker.Monomorphs() entry, and every
// typeclass method once per registered instance — substituting typarams
// throughout with types.Apply/types.Strip so nothing in the output
// carries a free type variable or a region.
//
// Grounded on internal/vm/compiler.go's top-level "compile every
// declaration in the analyzed module" driver loop, restaged from
// bytecode-chunk emission to building a hir.Program tree.
package hir

import (
	"fmt"

	"github.com/amber-lang/amberc/internal/analyzer"
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/modules"
	"github.com/amber-lang/amberc/internal/types"
)

// Lower runs stage H over cm, which must already have passed
// analyzer.CheckModule successfully (c.TypeOf must hold a type for every
// expression cm's function/method bodies contain).
func Lower(c *analyzer.Checker, cm *modules.CombinedModule) (*Program, error) {
	prog := &Program{}
	for _, entry := range cm.Entries {
		switch d := entry.Decl.(type) {
		case *ast.RecordDecl:
			layout, err := lowerRecordLayout(c, cm, d)
			if err != nil {
				return nil, err
			}
			prog.Records = append(prog.Records, layout)
		case *ast.UnionDecl:
			layout, err := lowerUnionLayout(c, cm, d)
			if err != nil {
				return nil, err
			}
			prog.Unions = append(prog.Unions, layout)
		case *ast.ConstantDecl:
			if d.Value == nil {
				continue // interface-only signature
			}
			fn, err := lowerConstant(c, cm, d)
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, fn)
		case *ast.FunctionDecl:
			fns, err := lowerFunction(c, cm, d)
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, fns...)
		case *ast.TypeclassDecl:
			fns, err := lowerTypeclassInstances(c, cm, d)
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, fns...)
		}
		// *ast.OpaqueTypeDecl carries no body of its own (module combining
		// already matched it to the RecordDecl/UnionDecl entry lowered
		// above); *ast.InstanceDecl is visited through its owning
		// TypeclassDecl, not here, since lowering needs the typeclass's
		// default bodies alongside every instance's overrides together.
	}
	return prog, nil
}

func lowerRecordLayout(c *analyzer.Checker, cm *modules.CombinedModule, d *ast.RecordDecl) (*RecordLayout, error) {
	regions := analyzer.NewRegionScope()
	tp := analyzer.NewTypeParser(c.Env, cm, nil, d.Typarams, regions)
	fields := make([]Field, len(d.Fields))
	for i, f := range d.Fields {
		t, err := tp.Resolve(f.Type)
		if err != nil {
			return nil, err
		}
		fields[i] = Field{Name: f.Name, Type: t}
	}
	return &RecordLayout{
		Symbol:   mangleType(types.NewQIdent(cm.Name, d.Name)),
		Typarams: typaramNamesList(d.Typarams),
		Fields:   fields,
	}, nil
}

func lowerUnionLayout(c *analyzer.Checker, cm *modules.CombinedModule, d *ast.UnionDecl) (*UnionLayout, error) {
	regions := analyzer.NewRegionScope()
	tp := analyzer.NewTypeParser(c.Env, cm, nil, d.Typarams, regions)
	cases := make([]CaseLayout, len(d.Cases))
	for i, cs := range d.Cases {
		slots := make([]Field, len(cs.Slots))
		for j, s := range cs.Slots {
			t, err := tp.Resolve(s.Type)
			if err != nil {
				return nil, err
			}
			slots[j] = Field{Name: s.Name, Type: t}
		}
		cases[i] = CaseLayout{Name: cs.Name, Tag: i, Slots: slots}
	}
	return &UnionLayout{
		Symbol:   mangleType(types.NewQIdent(cm.Name, d.Name)),
		Typarams: typaramNamesList(d.Typarams),
		Cases:    cases,
	}, nil
}

func lowerConstant(c *analyzer.Checker, cm *modules.CombinedModule, d *ast.ConstantDecl) (*Function, error) {
	l := &lowerer{c: c, module: cm}
	val, err := l.lowerExpr(d.Value)
	if err != nil {
		return nil, err
	}
	t, err := l.typeOf(d.Value)
	if err != nil {
		return nil, err
	}
	return &Function{
		Symbol:     mangleType(types.NewQIdent(cm.Name, d.Name)),
		ReturnType: t,
		Body:       []Stmt{ReturnStmt{Value: val}},
	}, nil
}

func lowerFunction(c *analyzer.Checker, cm *modules.CombinedModule, fn *ast.FunctionDecl) ([]*Function, error) {
	if fn.Body == nil {
		return nil, nil // interface-only signature: nothing to emit
	}
	qid := types.NewQIdent(cm.Name, fn.Name)
	if len(fn.Typarams) == 0 {
		f, err := lowerFunctionBody(c, cm, fn, nil, mangleFunc(qid, nil))
		if err != nil {
			return nil, err
		}
		return []*Function{f}, nil
	}

	names := typaramNamesList(fn.Typarams)
	var out []*Function
	for _, spec := range c.Monomorphs() {
		if spec.QIdent != qid {
			continue
		}
		subst := types.Subst{}
		for i, n := range names {
			if i < len(spec.Stripped) {
				subst[n] = spec.Stripped[i]
			}
		}
		f, err := lowerFunctionBody(c, cm, fn, subst, mangleFunc(qid, spec.Stripped))
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// lowerTypeclassInstances lowers tc's methods once per registered
// instance in cm: an instance's own override if it defines one, else the
// typeclass's default body, substituting the typeclass's single typaram
// (enforced at combining time, spec §4.6) with the instance's argument
// type (the same rule expressions.go's typeMethodCall uses to resolve a
// method call's return type).
func lowerTypeclassInstances(c *analyzer.Checker, cm *modules.CombinedModule, tc *ast.TypeclassDecl) ([]*Function, error) {
	if len(tc.Typarams) != 1 {
		return nil, diagnostics.Internal("hir: typeclass without exactly one type parameter reached lowering")
	}
	classTyparam := tc.Typarams[0].Name

	var out []*Function
	seen := 0
	for _, entry := range cm.Entries {
		inst, ok := entry.Decl.(*ast.InstanceDecl)
		if !ok || inst.TraitName != tc.Name {
			continue
		}
		seen++
		regions := analyzer.NewRegionScope()
		tp := analyzer.NewTypeParser(c.Env, cm, nil, inst.Typarams, regions)
		argType, err := tp.Resolve(inst.Argument)
		if err != nil {
			return nil, err
		}
		subst := types.Subst{classTyparam: argType}

		for _, m := range tc.Methods {
			body := m
			if override := findMethodOverride(inst, m.Name); override != nil {
				body = override
			}
			if body.Body == nil {
				continue // no default and no instance override: never called
			}
			fn, err := lowerFunctionBody(c, cm, body, subst, mangleMethod(tc.Name, m.Name, argType))
			if err != nil {
				return nil, err
			}
			out = append(out, fn)
		}
	}
	// cm.Entries and c.Env.Instances() are populated by two different
	// steps (combining, and analyzer.CheckModule's validateInstance); this
	// count cross-check
	// catches the two ever falling out of sync instead of silently lowering
	// a partial instance set.
	if reg := len(c.Env.Instances().All(tc.Name)); reg != seen {
		return nil, diagnostics.Internal(fmt.Sprintf("hir: %s has %d registered instances but %d reachable from combined entries", tc.Name, reg, seen))
	}
	return out, nil
}

func findMethodOverride(inst *ast.InstanceDecl, name string) *ast.FunctionDecl {
	for _, m := range inst.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func lowerFunctionBody(c *analyzer.Checker, cm *modules.CombinedModule, fn *ast.FunctionDecl, subst types.Subst, symbol string) (*Function, error) {
	l := &lowerer{c: c, module: cm, subst: subst}

	regions := analyzer.NewRegionScope()
	tp := analyzer.NewTypeParser(c.Env, cm, nil, fn.Typarams, regions)

	params := make([]Field, len(fn.Params))
	for i, p := range fn.Params {
		t, err := tp.Resolve(p.Type)
		if err != nil {
			return nil, err
		}
		params[i] = Field{Name: p.Name, Type: l.resolve(t)}
	}
	retT, err := tp.Resolve(fn.ReturnType)
	if err != nil {
		return nil, err
	}
	body, err := l.lowerStmts(fn.Body)
	if err != nil {
		return nil, err
	}
	return &Function{Symbol: symbol, Params: params, ReturnType: l.resolve(retT), Body: body}, nil
}

func typaramNamesList(typarams []ast.TypeParam) []string {
	out := make([]string, len(typarams))
	for i, tp := range typarams {
		out[i] = tp.Name
	}
	return out
}

func buildSubst(typarams []ast.TypeParam, args []types.Type) types.Subst {
	s := make(types.Subst, len(typarams))
	for i, tp := range typarams {
		if i < len(args) {
			s[tp.Name] = args[i]
		}
	}
	return s
}

// lowerer carries the per-function-instantiation state needed while
// walking one body: the checker (for TypeOf/Env access), the active
// typaram substitution (nil for a non-generic function or constant), and
// a counter for synthetic temporaries introduced by record-pattern
// destructuring.
type lowerer struct {
	c      *analyzer.Checker
	module *modules.CombinedModule
	subst  types.Subst
	tmp    int
}

func (l *lowerer) freshTemp() string {
	l.tmp++
	return fmt.Sprintf("__t%d", l.tmp)
}

// resolve applies this instantiation's substitution and strips regions,
// producing a type with no free variable and no region left for the
// emitter to reason about (spec §4.5's stripped form, reused here as
// stage H's own type vocabulary).
func (l *lowerer) resolve(t types.Type) types.Type {
	return types.Strip(types.Apply(t, l.subst))
}

func (l *lowerer) typeOf(e ast.Expression) (types.Type, error) {
	t, ok := l.c.TypeOf[e]
	if !ok {
		return nil, diagnostics.Internal("hir: no recorded type for expression reaching lowering")
	}
	return l.resolve(t), nil
}
