// Stage E (statement half) + stage F: walks a function body's statements,
// threading the linearity Table sequentially, forking it at branches and
// joining the results (spec §4.4).
//
// Grounded on the sequential-composition-with-fork/join walk shape of
// internal/typesystem/inference_control.go, adapted from a type-only walk
// to one that also threads consumption state.
package analyzer

import (
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/types"
)

// stmtWalker carries the per-function state needed while walking its
// body: the checker (for TypeOf/Env access), the type parser bound to
// this function's typarams/regions, and its declared return type (to
// check return statements against).
type stmtWalker struct {
	checker    *Checker
	tp         *TypeParser
	returnType types.Type
}

// walkBlock walks stmts sequentially, threading table in and returning
// the table as it stands after the last statement.
func (w *stmtWalker) walkBlock(stmts []ast.Statement, table *Table) (*Table, error) {
	for _, s := range stmts {
		next, err := w.walkStmt(s, table)
		if err != nil {
			return nil, err
		}
		table = next
	}
	return table, nil
}

func (w *stmtWalker) walkStmt(s ast.Statement, table *Table) (*Table, error) {
	switch st := s.(type) {
	case *ast.LetStatement:
		return w.walkLet(st, table)
	case ast.LetStatement:
		return w.walkLet(&st, table)
	case *ast.ExprStatement:
		if _, err := w.typeExpr(st.Value, table); err != nil {
			return nil, err
		}
		return table, nil
	case ast.ExprStatement:
		if _, err := w.typeExpr(st.Value, table); err != nil {
			return nil, err
		}
		return table, nil
	case *ast.ReturnStatement:
		return w.walkReturn(st, table)
	case ast.ReturnStatement:
		return w.walkReturn(&st, table)
	case *ast.SkipStatement, ast.SkipStatement:
		return table, nil
	case *ast.IfStatement:
		return w.walkIf(st, table)
	case ast.IfStatement:
		return w.walkIf(&st, table)
	case *ast.CaseStatement:
		return w.walkCaseStatement(st, table)
	case ast.CaseStatement:
		return w.walkCaseStatement(&st, table)
	case *ast.WhileStatement:
		return w.walkWhile(st, table)
	case ast.WhileStatement:
		return w.walkWhile(&st, table)
	case *ast.ForStatement:
		return w.walkFor(st, table)
	case ast.ForStatement:
		return w.walkFor(&st, table)
	case *ast.BorrowStatement:
		return w.walkBorrowStmt(st, table)
	case ast.BorrowStatement:
		return w.walkBorrowStmt(&st, table)
	case *ast.BlockStatement:
		return w.walkBlock(st.Statements, table)
	case ast.BlockStatement:
		return w.walkBlock(st.Statements, table)
	default:
		return nil, diagnostics.Internal("statements: unhandled statement kind")
	}
}

func (w *stmtWalker) walkLet(st *ast.LetStatement, table *Table) (*Table, error) {
	valType, err := w.typeExpr(st.Value, table)
	if err != nil {
		return nil, err
	}
	if st.Annotation != nil {
		annot, err := w.tp.Resolve(st.Annotation)
		if err != nil {
			return nil, err
		}
		if !annot.Equal(valType) {
			return nil, diagnostics.TypeMismatchExpr(annot.String(), valType.String())
		}
	}

	switch pat := st.Binding.(type) {
	case ast.IdentPattern:
		table.Define(pat.Name, valType)
	case *ast.IdentPattern:
		table.Define(pat.Name, valType)
	case ast.WildcardPattern, *ast.WildcardPattern:
		// value typed and (if linear) must already have been consumed by
		// evaluating st.Value; nothing further to bind.
	case ast.RecordPattern:
		return w.bindRecordPattern(pat, valType, table)
	case *ast.RecordPattern:
		return w.bindRecordPattern(*pat, valType, table)
	default:
		return nil, diagnostics.Internal("statements: unhandled let pattern")
	}
	return table, nil
}

// bindRecordPattern destructures a record, consuming the whole and
// introducing each named slot as a fresh binding (spec §4.4 rule 7).
func (w *stmtWalker) bindRecordPattern(pat ast.RecordPattern, valType types.Type, table *Table) (*Table, error) {
	named, ok := valType.(types.NamedType)
	if !ok {
		return nil, diagnostics.TypeMismatchExpr("record", valType.String())
	}
	record, fieldTypes, err := w.lookupRecordFields(named)
	if err != nil {
		return nil, err
	}
	_ = record
	for _, slot := range pat.Slots {
		ft, ok := fieldTypes[slot.Slot]
		if !ok {
			return nil, diagnostics.UnknownIdentifier(slot.Slot)
		}
		name := slot.Bind
		if name == "" {
			name = slot.Slot
		}
		table.Define(name, ft)
	}
	return table, nil
}

func (w *stmtWalker) walkReturn(st *ast.ReturnStatement, table *Table) (*Table, error) {
	var got types.Type = types.Unit{}
	if st.Value != nil {
		t, err := w.typeExpr(st.Value, table)
		if err != nil {
			return nil, err
		}
		got = t
	}
	if !w.returnType.Equal(got) {
		return nil, diagnostics.TypeMismatchExpr(w.returnType.String(), got.String())
	}
	return table, nil
}

func (w *stmtWalker) walkIf(st *ast.IfStatement, table *Table) (*Table, error) {
	condType, err := w.typeExpr(st.Cond, table)
	if err != nil {
		return nil, err
	}
	if _, ok := condType.(types.Boolean); !ok {
		return nil, diagnostics.TypeMismatchExpr("Boolean", condType.String())
	}

	thenTable, err := w.walkBlock(st.Then, table.Clone())
	if err != nil {
		return nil, err
	}
	elseTable, err := w.walkBlock(st.Else, table.Clone())
	if err != nil {
		return nil, err
	}
	joined, diag := Join(table, thenTable, elseTable)
	if diag != nil {
		return nil, diag
	}
	return joined, nil
}

func (w *stmtWalker) walkCaseStatement(st *ast.CaseStatement, table *Table) (*Table, error) {
	joined, _, err := w.walkCaseArms(st.Scrutinee, st.Arms, table)
	return joined, err
}

// walkCaseArms is shared by CaseStatement and CaseExpr: it checks
// exhaustiveness and no-double-cover (spec §4.3), binds each arm's slots,
// walks each arm's body, and joins all arms' outgoing tables pairwise.
func (w *stmtWalker) walkCaseArms(scrutinee ast.Expression, arms []ast.CaseArm, table *Table) (*Table, []types.Type, error) {
	scrutType, err := w.typeExpr(scrutinee, table)
	if err != nil {
		return nil, nil, err
	}
	named, ok := scrutType.(types.NamedType)
	if !ok {
		return nil, nil, diagnostics.TypeMismatchExpr("union", scrutType.String())
	}
	union, err := w.lookupUnion(named)
	if err != nil {
		return nil, nil, err
	}

	covered := make(map[string]bool, len(union.Cases))
	var joined *Table
	var lastTypes []types.Type
	for _, arm := range arms {
		if covered[arm.CaseName] {
			return nil, nil, diagnostics.DuplicateCase(arm.CaseName)
		}
		covered[arm.CaseName] = true

		armTable := table.Clone()
		slots := caseSlots(union, arm.CaseName)
		subst := buildTyparamSubst(union.Typarams, named.Args)
		itp := NewTypeParser(w.checker.Env, w.checker.Module, nil, union.Typarams, w.tp.Regions)
		for i, bindName := range arm.Bindings {
			if i >= len(slots) {
				break
			}
			slotType, err := itp.Resolve(slots[i].Type)
			if err != nil {
				return nil, nil, err
			}
			armTable.Define(bindName, types.Apply(slotType, subst))
		}
		outTable, err := w.walkBlock(arm.Body, armTable)
		if err != nil {
			return nil, nil, err
		}
		if diag := outTable.CheckForgotten(arm.Bindings); diag != nil {
			return nil, nil, diag
		}
		for _, bindName := range arm.Bindings {
			outTable.Undefine(bindName)
		}
		if joined == nil {
			joined = outTable
		} else {
			j, diag := Join(table, joined, outTable)
			if diag != nil {
				return nil, nil, diag
			}
			joined = j
		}
	}
	for _, c := range union.Cases {
		if !covered[c.Name] {
			return nil, nil, diagnostics.NonExhaustiveCase(union.Name)
		}
	}
	if joined == nil {
		joined = table
	}
	return joined, lastTypes, nil
}

func caseSlots(union *ast.UnionDecl, caseName string) []ast.RecordField {
	for _, c := range union.Cases {
		if c.Name == caseName {
			return c.Slots
		}
	}
	return nil
}

func (w *stmtWalker) walkWhile(st *ast.WhileStatement, table *Table) (*Table, error) {
	condType, err := w.typeExpr(st.Cond, table)
	if err != nil {
		return nil, err
	}
	if _, ok := condType.(types.Boolean); !ok {
		return nil, diagnostics.TypeMismatchExpr("Boolean", condType.String())
	}
	// Spec §4.4 loop rule: a linear binding declared outside the loop may
	// not be consumed inside it (each iteration would consume it at most
	// once, but the loop may run zero or many times). Detect this by
	// diffing the outer table's states against the body's resulting
	// states for every name that existed before the loop.
	before := table.Clone()
	after, err := w.walkBlock(st.Body, table)
	if err != nil {
		return nil, err
	}
	for name, pre := range before.bindings {
		if !pre.Linear() || pre.State != Available {
			continue
		}
		post, ok := after.bindings[name]
		if ok && post.State == Consumed {
			return nil, diagnostics.LinearConsumedInLoop(name)
		}
	}
	return after, nil
}

func (w *stmtWalker) walkFor(st *ast.ForStatement, table *Table) (*Table, error) {
	iterType, err := w.typeExpr(st.Iterable, table)
	if err != nil {
		return nil, err
	}
	arr, ok := iterType.(types.Array)
	if !ok {
		return nil, diagnostics.TypeMismatchExpr("Array", iterType.String())
	}
	bodyTable := table.Clone()
	bodyTable.Define(st.Binding, arr.Element)
	after, err := w.walkBlock(st.Body, bodyTable)
	if err != nil {
		return nil, err
	}
	after.Undefine(st.Binding)
	for name, pre := range table.bindings {
		if !pre.Linear() || pre.State != Available {
			continue
		}
		if post, ok := after.bindings[name]; ok && post.State == Consumed {
			return nil, diagnostics.LinearConsumedInLoop(name)
		}
	}
	return after, nil
}

func (w *stmtWalker) walkBorrowStmt(st *ast.BorrowStatement, table *Table) (*Table, error) {
	kind := BorrowKindRead
	if st.Kind == ast.BorrowWrite {
		kind = BorrowKindWrite
	}
	if diag := table.Borrow(st.Original, kind); diag != nil {
		return nil, diag
	}
	orig, _ := table.Lookup(st.Original)

	region := w.tp.Regions.Define(st.Region)
	var boundType types.Type
	if kind == BorrowKindRead {
		boundType = types.ReadRef{Referent: orig.Type, Region: region}
	} else {
		boundType = types.WriteRef{Referent: orig.Type, Region: region}
	}
	table.Define(st.Bound, boundType)

	after, err := w.walkBlock(st.Body, table)
	if err != nil {
		return nil, err
	}
	after.Undefine(st.Bound)
	after.Release(st.Original)
	return after, nil
}

func (w *stmtWalker) lookupRecordFields(named types.NamedType) (*ast.RecordDecl, map[string]types.Type, error) {
	entry, ok := w.checker.Env.Lookup(named.Name)
	if !ok {
		return nil, nil, diagnostics.UnknownType(named.Name.String())
	}
	record, ok := entry.Node.(*ast.RecordDecl)
	if !ok {
		return nil, nil, diagnostics.TypeMismatchExpr("record", named.String())
	}
	subst := buildTyparamSubst(record.Typarams, named.Args)
	out := make(map[string]types.Type, len(record.Fields))
	itp := NewTypeParser(w.checker.Env, w.checker.Module, nil, record.Typarams, w.tp.Regions)
	for _, f := range record.Fields {
		t, err := itp.Resolve(f.Type)
		if err != nil {
			return nil, nil, err
		}
		out[f.Name] = types.Apply(t, subst)
	}
	return record, out, nil
}

func (w *stmtWalker) lookupUnion(named types.NamedType) (*ast.UnionDecl, error) {
	entry, ok := w.checker.Env.Lookup(named.Name)
	if !ok {
		return nil, diagnostics.UnknownType(named.Name.String())
	}
	union, ok := entry.Node.(*ast.UnionDecl)
	if !ok {
		return nil, diagnostics.TypeMismatchExpr("union", named.String())
	}
	return union, nil
}

func buildTyparamSubst(typarams []ast.TypeParam, args []types.Type) types.Subst {
	s := make(types.Subst, len(typarams))
	for i, tp := range typarams {
		if i < len(args) {
			s[tp.Name] = args[i]
		}
	}
	return s
}
