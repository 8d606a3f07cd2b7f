package hir

import (
	"github.com/amber-lang/amberc/internal/analyzer"
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/types"
)

func (l *lowerer) lowerStmts(stmts []ast.Statement) ([]Stmt, error) {
	var out []Stmt
	for _, s := range stmts {
		lowered, err := l.lowerStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered...)
	}
	return out, nil
}

func (l *lowerer) lowerStmt(s ast.Statement) ([]Stmt, error) {
	switch st := s.(type) {
	case *ast.LetStatement:
		return l.lowerLet(st)
	case ast.LetStatement:
		return l.lowerLet(&st)
	case *ast.ExprStatement:
		v, err := l.lowerExpr(st.Value)
		if err != nil {
			return nil, err
		}
		return []Stmt{ExprStmt{Value: v}}, nil
	case ast.ExprStatement:
		return l.lowerStmt(&st)
	case *ast.ReturnStatement:
		return l.lowerReturn(st)
	case ast.ReturnStatement:
		return l.lowerReturn(&st)
	case *ast.SkipStatement, ast.SkipStatement:
		return nil, nil
	case *ast.IfStatement:
		return l.lowerIf(st)
	case ast.IfStatement:
		return l.lowerIf(&st)
	case *ast.CaseStatement:
		return l.lowerCaseStatement(st)
	case ast.CaseStatement:
		return l.lowerCaseStatement(&st)
	case *ast.WhileStatement:
		return l.lowerWhile(st)
	case ast.WhileStatement:
		return l.lowerWhile(&st)
	case *ast.ForStatement:
		return l.lowerFor(st)
	case ast.ForStatement:
		return l.lowerFor(&st)
	case *ast.BorrowStatement:
		return l.lowerBorrowStmt(st)
	case ast.BorrowStatement:
		return l.lowerBorrowStmt(&st)
	case *ast.BlockStatement:
		return l.lowerStmts(st.Statements)
	case ast.BlockStatement:
		return l.lowerStmts(st.Statements)
	default:
		return nil, diagnostics.Internal("hir: unhandled statement kind")
	}
}

func (l *lowerer) lowerLet(st *ast.LetStatement) ([]Stmt, error) {
	val, err := l.lowerExpr(st.Value)
	if err != nil {
		return nil, err
	}
	valType, err := l.typeOf(st.Value)
	if err != nil {
		return nil, err
	}

	switch pat := st.Binding.(type) {
	case ast.IdentPattern:
		return []Stmt{LetStmt{Name: pat.Name, Type: valType, Value: val}}, nil
	case *ast.IdentPattern:
		return []Stmt{LetStmt{Name: pat.Name, Type: valType, Value: val}}, nil
	case ast.WildcardPattern:
		return []Stmt{ExprStmt{Value: val}}, nil
	case *ast.WildcardPattern:
		return []Stmt{ExprStmt{Value: val}}, nil
	case ast.RecordPattern:
		return l.lowerRecordPattern(pat, val, valType)
	case *ast.RecordPattern:
		return l.lowerRecordPattern(*pat, val, valType)
	default:
		return nil, diagnostics.Internal("hir: unhandled let pattern")
	}
}

// lowerRecordPattern lowers a destructuring let into a temporary holding
// the whole record followed by one field-access let per bound slot (spec
// §4.4 rule 7's "introduce each slot fresh", expressed at this stage as
// plain field extraction since linearity bookkeeping is already done).
func (l *lowerer) lowerRecordPattern(pat ast.RecordPattern, val Expr, valType types.Type) ([]Stmt, error) {
	named, ok := valType.(types.NamedType)
	if !ok {
		return nil, diagnostics.Internal("hir: record pattern against non-record type")
	}
	fieldTypes, err := l.recordFieldTypes(named)
	if err != nil {
		return nil, err
	}

	tmp := l.freshTemp()
	out := []Stmt{LetStmt{Name: tmp, Type: valType, Value: val}}
	for _, slot := range pat.Slots {
		ft, ok := fieldTypes[slot.Slot]
		if !ok {
			return nil, diagnostics.UnknownIdentifier(slot.Slot)
		}
		name := slot.Bind
		if name == "" {
			name = slot.Slot
		}
		access := FieldAccess{base: base{T: ft}, Head: Ident{base: base{T: valType}, Name: tmp}, Slot: slot.Slot}
		out = append(out, LetStmt{Name: name, Type: ft, Value: access})
	}
	return out, nil
}

func (l *lowerer) lowerReturn(st *ast.ReturnStatement) ([]Stmt, error) {
	if st.Value == nil {
		return []Stmt{ReturnStmt{Value: nil}}, nil
	}
	v, err := l.lowerExpr(st.Value)
	if err != nil {
		return nil, err
	}
	return []Stmt{ReturnStmt{Value: v}}, nil
}

func (l *lowerer) lowerIf(st *ast.IfStatement) ([]Stmt, error) {
	cond, err := l.lowerExpr(st.Cond)
	if err != nil {
		return nil, err
	}
	then, err := l.lowerStmts(st.Then)
	if err != nil {
		return nil, err
	}
	els, err := l.lowerStmts(st.Else)
	if err != nil {
		return nil, err
	}
	return []Stmt{IfStmt{Cond: cond, Then: then, Else: els}}, nil
}

func (l *lowerer) lowerWhile(st *ast.WhileStatement) ([]Stmt, error) {
	cond, err := l.lowerExpr(st.Cond)
	if err != nil {
		return nil, err
	}
	body, err := l.lowerStmts(st.Body)
	if err != nil {
		return nil, err
	}
	return []Stmt{WhileStmt{Cond: cond, Body: body}}, nil
}

func (l *lowerer) lowerFor(st *ast.ForStatement) ([]Stmt, error) {
	iter, err := l.lowerExpr(st.Iterable)
	if err != nil {
		return nil, err
	}
	body, err := l.lowerStmts(st.Body)
	if err != nil {
		return nil, err
	}
	return []Stmt{ForStmt{Binding: st.Binding, Iterable: iter, Body: body}}, nil
}

// lowerBorrowStmt erases the borrow down to its bound name aliasing an
// address-of expression: region scoping and the read/write distinction
// exist only to drive stage F's checking (spec §4.3/§4.4), and carry no
// runtime representation once that check has passed.
func (l *lowerer) lowerBorrowStmt(st *ast.BorrowStatement) ([]Stmt, error) {
	origType, err := l.identType(st.Original)
	if err != nil {
		return nil, err
	}
	addr := AddressOf{base: base{T: origType}, Target: Ident{base: base{T: origType}, Name: st.Original}}
	body, err := l.lowerStmts(st.Body)
	if err != nil {
		return nil, err
	}
	boundLet := LetStmt{Name: st.Bound, Type: addr.T, Value: addr}
	return append([]Stmt{boundLet}, body...), nil
}

// identType recovers a bound name's type from any expression TypeOf
// already recorded it against — used where the source AST has no
// expression node of its own for the name (a borrow's Original) but an
// IdentExpr referencing it appears somewhere else in the same function,
// which is always true for a name that's ever borrowed.
func (l *lowerer) identType(name string) (types.Type, error) {
	for e, t := range l.c.TypeOf {
		if id, ok := e.(ast.IdentExpr); ok && id.Name == name {
			return l.resolve(t), nil
		}
	}
	return nil, diagnostics.Internal("hir: could not recover type of borrowed name " + name)
}

func (l *lowerer) lowerCaseStatement(st *ast.CaseStatement) ([]Stmt, error) {
	return l.lowerCaseArms(st.Scrutinee, st.Arms)
}

func (l *lowerer) lowerCaseArms(scrutinee ast.Expression, arms []ast.CaseArm) ([]Stmt, error) {
	scrut, err := l.lowerExpr(scrutinee)
	if err != nil {
		return nil, err
	}
	scrutType, err := l.typeOf(scrutinee)
	if err != nil {
		return nil, err
	}
	named, ok := scrutType.(types.NamedType)
	if !ok {
		return nil, diagnostics.Internal("hir: case scrutinee is not a union type")
	}
	union, recordSubst, err := l.unionDecl(named)
	if err != nil {
		return nil, err
	}

	hirArms := make([]CaseArm, len(arms))
	for i, arm := range arms {
		tag, slots, err := l.caseTagAndSlots(union, arm.CaseName, recordSubst)
		if err != nil {
			return nil, err
		}
		for j := range slots {
			if j < len(arm.Bindings) {
				slots[j].Name = arm.Bindings[j]
			}
		}
		body, err := l.lowerStmts(arm.Body)
		if err != nil {
			return nil, err
		}
		hirArms[i] = CaseArm{CaseName: arm.CaseName, Tag: tag, Slots: slots, Body: body}
	}
	return []Stmt{CaseStmt{Scrutinee: scrut, Arms: hirArms}}, nil
}

func (l *lowerer) caseTagAndSlots(union *ast.UnionDecl, caseName string, recordSubst types.Subst) (int, []Field, error) {
	regions := analyzer.NewRegionScope()
	tp := analyzer.NewTypeParser(l.c.Env, l.module, nil, union.Typarams, regions)
	for i, c := range union.Cases {
		if c.Name != caseName {
			continue
		}
		slots := make([]Field, len(c.Slots))
		for j, s := range c.Slots {
			t, err := tp.Resolve(s.Type)
			if err != nil {
				return 0, nil, err
			}
			slots[j] = Field{Name: s.Name, Type: l.resolve(types.Apply(t, recordSubst))}
		}
		return i, slots, nil
	}
	return 0, nil, diagnostics.Internal("hir: unknown union case " + caseName)
}

func (l *lowerer) unionDecl(named types.NamedType) (*ast.UnionDecl, types.Subst, error) {
	entry, ok := l.c.Env.Lookup(named.Name)
	if !ok {
		return nil, nil, diagnostics.UnknownType(named.Name.String())
	}
	union, ok := entry.Node.(*ast.UnionDecl)
	if !ok {
		return nil, nil, diagnostics.Internal("hir: expected union declaration for " + named.Name.String())
	}
	return union, buildSubst(union.Typarams, named.Args), nil
}

func (l *lowerer) recordFieldTypes(named types.NamedType) (map[string]types.Type, error) {
	entry, ok := l.c.Env.Lookup(named.Name)
	if !ok {
		return nil, diagnostics.UnknownType(named.Name.String())
	}
	record, ok := entry.Node.(*ast.RecordDecl)
	if !ok {
		return nil, diagnostics.Internal("hir: expected record declaration for " + named.Name.String())
	}
	subst := buildSubst(record.Typarams, named.Args)
	regions := analyzer.NewRegionScope()
	tp := analyzer.NewTypeParser(l.c.Env, l.module, nil, record.Typarams, regions)
	out := make(map[string]types.Type, len(record.Fields))
	for _, f := range record.Fields {
		t, err := tp.Resolve(f.Type)
		if err != nil {
			return nil, err
		}
		out[f.Name] = l.resolve(types.Apply(t, subst))
	}
	return out, nil
}
