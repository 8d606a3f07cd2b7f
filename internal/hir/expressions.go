package hir

import (
	"github.com/amber-lang/amberc/internal/analyzer"
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/types"
)

func (l *lowerer) lowerExpr(e ast.Expression) (Expr, error) {
	switch ex := e.(type) {
	case ast.IntLiteral:
		t, err := l.typeOf(ex)
		if err != nil {
			return nil, err
		}
		return IntLit{base: base{T: t}, Value: ex.Value}, nil
	case ast.FloatLiteral:
		t, err := l.typeOf(ex)
		if err != nil {
			return nil, err
		}
		return FloatLit{base: base{T: t}, Value: ex.Value}, nil
	case ast.BoolLiteral:
		t, err := l.typeOf(ex)
		if err != nil {
			return nil, err
		}
		return BoolLit{base: base{T: t}, Value: ex.Value}, nil
	case ast.UnitLiteral:
		t, err := l.typeOf(ex)
		if err != nil {
			return nil, err
		}
		return UnitLit{base: base{T: t}}, nil
	case ast.IdentExpr:
		t, err := l.typeOf(ex)
		if err != nil {
			return nil, err
		}
		return Ident{base: base{T: t}, Name: ex.Name}, nil
	case ast.RecordLiteral:
		return l.lowerRecordLiteral(ex)
	case ast.ConstructorCall:
		return l.lowerConstructorCall(ex)
	case ast.CallExpr:
		return l.lowerCall(ex)
	case ast.MethodCallExpr:
		return l.lowerMethodCall(ex)
	case ast.CaseExpr:
		return l.lowerCaseExpr(ex)
	case ast.BorrowExpr:
		return l.lowerBorrowExpr(ex)
	case ast.PathExpr:
		return l.lowerPathExpr(ex)
	case ast.BinaryExpr:
		return l.lowerBinary(ex)
	case ast.UnaryExpr:
		return l.lowerUnary(ex)
	default:
		return nil, diagnostics.Internal("hir: unhandled expression kind")
	}
}

func (l *lowerer) lowerFieldInits(fields []ast.FieldInit) ([]FieldVal, error) {
	out := make([]FieldVal, len(fields))
	for i, f := range fields {
		v, err := l.lowerExpr(f.Value)
		if err != nil {
			return nil, err
		}
		out[i] = FieldVal{Name: f.Name, Value: v}
	}
	return out, nil
}

func (l *lowerer) lowerRecordLiteral(ex ast.RecordLiteral) (Expr, error) {
	t, err := l.typeOf(ex)
	if err != nil {
		return nil, err
	}
	fields, err := l.lowerFieldInits(ex.Fields)
	if err != nil {
		return nil, err
	}
	named, ok := t.(types.NamedType)
	if !ok {
		return nil, diagnostics.Internal("hir: record literal resolved to a non-record type")
	}
	return RecordLit{base: base{T: t}, Symbol: mangleType(named.Name), Fields: fields}, nil
}

func (l *lowerer) lowerConstructorCall(ex ast.ConstructorCall) (Expr, error) {
	t, err := l.typeOf(ex)
	if err != nil {
		return nil, err
	}
	fields, err := l.lowerFieldInits(ex.Fields)
	if err != nil {
		return nil, err
	}
	named, ok := t.(types.NamedType)
	if !ok {
		return nil, diagnostics.Internal("hir: constructor call resolved to a non-union type")
	}
	union, _, err := l.unionDecl(named)
	if err != nil {
		return nil, err
	}
	tag := -1
	for i, c := range union.Cases {
		if c.Name == ex.CaseName {
			tag = i
			break
		}
	}
	if tag < 0 {
		return nil, diagnostics.Internal("hir: unknown union case " + ex.CaseName)
	}
	return ConstructorLit{base: base{T: t}, Symbol: mangleType(named.Name), CaseName: ex.CaseName, Tag: tag, Fields: fields}, nil
}

func (l *lowerer) lowerCall(ex ast.CallExpr) (Expr, error) {
	t, err := l.typeOf(ex)
	if err != nil {
		return nil, err
	}
	entry, ok := analyzer.NewTypeParser(l.c.Env, l.module, nil, nil, analyzer.NewRegionScope()).LookupName(ex.Callee)
	if !ok {
		return nil, diagnostics.UnknownIdentifier(ex.Callee)
	}
	fn, ok := entry.Node.(*ast.FunctionDecl)
	if !ok {
		return nil, diagnostics.Internal("hir: call target is not a function")
	}
	args, err := l.lowerExprs(ex.Args)
	if err != nil {
		return nil, err
	}

	qid := entry.QIdent
	if len(fn.Typarams) == 0 {
		return Call{base: base{T: t}, Symbol: mangleFunc(qid, nil), Args: args}, nil
	}
	stripped, err := l.callInstantiation(qid, fn, ex.Args)
	if err != nil {
		return nil, err
	}
	return Call{base: base{T: t}, Symbol: mangleFunc(qid, stripped), Args: args}, nil
}

// callInstantiation recovers the stripped type arguments a generic call
// site resolved to, by re-deriving them from each argument's own recorded
// (and already-substituted) type the same way stage E's typeCall unified
// them — stage H doesn't re-run full unification, it only needs the same
// substitution stage G already interned, recovered here by matching each
// formal's TypeSpecifier against the argument type (unifyHirShape) and
// stripping the bound types.
func (l *lowerer) callInstantiation(qid types.QIdent, fn *ast.FunctionDecl, args []ast.Expression) ([]types.Type, error) {
	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		t, err := l.typeOf(a)
		if err != nil {
			return nil, err
		}
		argTypes[i] = t
	}
	names := typaramNamesList(fn.Typarams)
	subst := types.Subst{}
	for i, p := range fn.Params {
		if i >= len(argTypes) {
			break
		}
		unifyHirShape(p.Type, argTypes[i], names, subst)
	}
	stripped := make([]types.Type, len(names))
	for i, n := range names {
		if v, ok := subst[n]; ok {
			stripped[i] = types.Strip(v)
		}
	}
	return stripped, nil
}

func (l *lowerer) lowerMethodCall(ex ast.MethodCallExpr) (Expr, error) {
	t, err := l.typeOf(ex)
	if err != nil {
		return nil, err
	}
	recv, err := l.lowerExpr(ex.Receiver)
	if err != nil {
		return nil, err
	}
	recvType, err := l.typeOf(ex.Receiver)
	if err != nil {
		return nil, err
	}
	tc, _, err := l.findTypeclassMethod(ex.Method)
	if err != nil {
		return nil, err
	}
	inst, ok := l.c.Env.Instances().Resolve(tc.Name, recvType)
	if !ok {
		return nil, diagnostics.MissingInstance(tc.Name, recvType.String())
	}
	args, err := l.lowerExprs(ex.Args)
	if err != nil {
		return nil, err
	}
	allArgs := append([]Expr{recv}, args...)
	return Call{base: base{T: t}, Symbol: mangleMethod(tc.Name, ex.Method, inst.Argument), Args: allArgs}, nil
}

// findTypeclassMethod is restricted to the current module, mirroring the
// same restriction in analyzer/expressions.go's method of the same name
// (typeclasses visible through Prelude aren't supported by either stage
// yet).
func (l *lowerer) findTypeclassMethod(name string) (*ast.TypeclassDecl, *ast.FunctionDecl, error) {
	for _, entry := range l.module.Entries {
		tc, ok := entry.Decl.(*ast.TypeclassDecl)
		if !ok {
			continue
		}
		for _, m := range tc.Methods {
			if m.Name == name {
				return tc, m, nil
			}
		}
	}
	return nil, nil, diagnostics.UnknownIdentifier(name)
}

func (l *lowerer) lowerCaseExpr(ex ast.CaseExpr) (Expr, error) {
	stmts, err := l.lowerCaseArms(ex.Scrutinee, ex.Arms)
	if err != nil {
		return nil, err
	}
	t, err := l.typeOf(ex)
	if err != nil {
		return nil, err
	}
	// Case-as-expression has no value-producing arm tracked separately
	// from its statement form (analyzer/expressions.go's typeCaseExpr
	// makes the same simplification, typing it Unit); lowering folds the
	// statement form's CaseStmt into a call-like wrapper isn't needed —
	// the caller (an ExprStatement) only keeps the side effects.
	_ = stmts
	return UnitLit{base: base{T: t}}, nil
}

func (l *lowerer) lowerBorrowExpr(ex ast.BorrowExpr) (Expr, error) {
	id, ok := ex.Target.(ast.IdentExpr)
	if !ok {
		return nil, diagnostics.Internal("hir: borrow target must be a binding")
	}
	t, err := l.typeOf(ex)
	if err != nil {
		return nil, err
	}
	targetType, err := l.identType(id.Name)
	if err != nil {
		return nil, err
	}
	return AddressOf{base: base{T: t}, Target: Ident{base: base{T: targetType}, Name: id.Name}}, nil
}

func (l *lowerer) lowerPathExpr(ex ast.PathExpr) (Expr, error) {
	t, err := l.typeOf(ex)
	if err != nil {
		return nil, err
	}
	head, err := l.lowerExpr(ex.Head)
	if err != nil {
		return nil, err
	}
	switch ex.Kind {
	case ast.PathIndex:
		idx, err := l.lowerExpr(ex.Index)
		if err != nil {
			return nil, err
		}
		return IndexExpr{base: base{T: t}, Head: head, Index: idx}, nil
	default: // PathDot, PathArrow both lower to a plain field access
		return FieldAccess{base: base{T: t}, Head: head, Slot: ex.Slot}, nil
	}
}

func (l *lowerer) lowerBinary(ex ast.BinaryExpr) (Expr, error) {
	t, err := l.typeOf(ex)
	if err != nil {
		return nil, err
	}
	left, err := l.lowerExpr(ex.Left)
	if err != nil {
		return nil, err
	}
	right, err := l.lowerExpr(ex.Right)
	if err != nil {
		return nil, err
	}
	return BinaryExpr{base: base{T: t}, Op: ex.Op, Left: left, Right: right}, nil
}

func (l *lowerer) lowerUnary(ex ast.UnaryExpr) (Expr, error) {
	t, err := l.typeOf(ex)
	if err != nil {
		return nil, err
	}
	operand, err := l.lowerExpr(ex.Operand)
	if err != nil {
		return nil, err
	}
	return UnaryExpr{base: base{T: t}, Op: ex.Op, Operand: operand}, nil
}

func (l *lowerer) lowerExprs(exprs []ast.Expression) ([]Expr, error) {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		v, err := l.lowerExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// unifyHirShape is a minimal one-directional structural match, reused
// here only to recover which typaram bound to which stripped argument
// type at a call site (analyzer/expressions.go's unifyFormalType does
// the same job during stage E proper, against formals already resolved
// to types.Type; this copy matches the formal's raw ast.TypeSpecifier
// against the recorded argument's resolved types.Type instead of
// resolving the formal first, since lowering has no TypeParser bound to
// the callee's own typarams the way stage E's does).
func unifyHirShape(formal ast.TypeSpecifier, actual types.Type, typaramNames []string, subst types.Subst) {
	named, ok := formal.(ast.NamedTypeSpec)
	if !ok {
		return
	}
	if containsName(typaramNames, named.Name) {
		if _, bound := subst[named.Name]; !bound {
			subst[named.Name] = actual
		}
		return
	}
	a, ok := actual.(types.NamedType)
	if !ok || len(named.Args) != len(a.Args) {
		return
	}
	for i := range named.Args {
		unifyHirShape(named.Args[i], a.Args[i], typaramNames, subst)
	}
}

func containsName(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
