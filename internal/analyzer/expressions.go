// Stage E (expression half) + stage G (monomorphization, fused at call
// sites — see analyzer.go). Resolves every expression's type, records it
// into Checker.TypeOf, and threads the linearity Table for consumption
// side effects (spec §4.3/§4.4).
//
// Grounded on internal/analyzer/expressions.go's expression-typing walk,
// adapted from funxy's dynamic-dispatch evaluation to a resolved-Type
// return value plus linearity bookkeeping.
package analyzer

import (
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/types"
)

func (w *stmtWalker) record(e ast.Expression, t types.Type) types.Type {
	w.checker.TypeOf[e] = t
	return t
}

func (w *stmtWalker) typeExpr(e ast.Expression, table *Table) (types.Type, error) {
	switch ex := e.(type) {
	case ast.IntLiteral:
		return w.record(e, types.Integer{Signedness: types.Signed, Width: 32}), nil
	case ast.FloatLiteral:
		if ex.Double {
			return w.record(e, types.DoubleFloat{}), nil
		}
		return w.record(e, types.SingleFloat{}), nil
	case ast.BoolLiteral:
		return w.record(e, types.Boolean{}), nil
	case ast.UnitLiteral:
		return w.record(e, types.Unit{}), nil
	case ast.IdentExpr:
		return w.typeIdent(ex, table)
	case ast.RecordLiteral:
		return w.typeRecordLiteral(ex, table)
	case ast.ConstructorCall:
		return w.typeConstructorCall(ex, table)
	case ast.CallExpr:
		return w.typeCall(ex, table)
	case ast.MethodCallExpr:
		return w.typeMethodCall(ex, table)
	case ast.CaseExpr:
		return w.typeCaseExpr(ex, table)
	case ast.BorrowExpr:
		return w.typeBorrowExpr(ex, table)
	case ast.PathExpr:
		return w.typePathExpr(ex, table)
	case ast.BinaryExpr:
		return w.typeBinary(ex, table)
	case ast.UnaryExpr:
		return w.typeUnary(ex, table)
	default:
		return nil, diagnostics.Internal("expressions: unhandled expression kind")
	}
}

func (w *stmtWalker) typeIdent(ex ast.IdentExpr, table *Table) (types.Type, error) {
	if b, ok := table.Lookup(ex.Name); ok {
		if diag := table.Consume(ex.Name); diag != nil {
			return nil, diag
		}
		return w.record(ex, b.Type), nil
	}
	entry, ok := w.tp.LookupName(ex.Name)
	if !ok {
		return nil, diagnostics.UnknownIdentifier(ex.Name)
	}
	switch d := entry.Node.(type) {
	case *ast.ConstantDecl:
		t, err := w.tp.Resolve(d.Annotation)
		if err != nil {
			return nil, err
		}
		return w.record(ex, t), nil
	default:
		return nil, diagnostics.UnknownIdentifier(ex.Name)
	}
}

func (w *stmtWalker) typeRecordLiteral(ex ast.RecordLiteral, table *Table) (types.Type, error) {
	entry, ok := w.tp.LookupName(ex.TypeName)
	if !ok {
		return nil, diagnostics.UnknownType(ex.TypeName)
	}
	record, ok := entry.Node.(*ast.RecordDecl)
	if !ok {
		return nil, diagnostics.TypeMismatchExpr("record", ex.TypeName)
	}

	itp := NewTypeParser(w.checker.Env, w.checker.Module, nil, record.Typarams, w.tp.Regions)
	subst := types.Subst{}
	for _, init := range ex.Fields {
		field := findField(record.Fields, init.Name)
		if field == nil {
			return nil, diagnostics.UnknownIdentifier(init.Name)
		}
		fieldType, err := itp.Resolve(field.Type)
		if err != nil {
			return nil, err
		}
		valType, err := w.typeExpr(init.Value, table)
		if err != nil {
			return nil, err
		}
		if !unifyFormalType(fieldType, valType, typaramNames(record.Typarams), subst) {
			return nil, diagnostics.TypeMismatchExpr(fieldType.String(), valType.String())
		}
	}
	if !types.IsTotal(subst, typaramNames(record.Typarams)) {
		return nil, diagnostics.NonTotalSubstitution(ex.TypeName)
	}
	args := make([]types.Type, len(record.Typarams))
	for i, tp := range record.Typarams {
		args[i] = subst[tp.Name]
	}
	return w.record(ex, types.NamedType{Name: entry.QIdent, Args: args, DeclUniverse: entry.Universe}), nil
}

func (w *stmtWalker) typeConstructorCall(ex ast.ConstructorCall, table *Table) (types.Type, error) {
	entry, ok := w.tp.LookupName(ex.UnionName)
	if !ok {
		return nil, diagnostics.UnknownType(ex.UnionName)
	}
	union, ok := entry.Node.(*ast.UnionDecl)
	if !ok {
		return nil, diagnostics.TypeMismatchExpr("union", ex.UnionName)
	}
	slots := caseSlots(union, ex.CaseName)

	itp := NewTypeParser(w.checker.Env, w.checker.Module, nil, union.Typarams, w.tp.Regions)
	subst := types.Subst{}
	for _, init := range ex.Fields {
		slot := findField(slots, init.Name)
		if slot == nil {
			return nil, diagnostics.UnknownIdentifier(init.Name)
		}
		slotType, err := itp.Resolve(slot.Type)
		if err != nil {
			return nil, err
		}
		valType, err := w.typeExpr(init.Value, table)
		if err != nil {
			return nil, err
		}
		if !unifyFormalType(slotType, valType, typaramNames(union.Typarams), subst) {
			return nil, diagnostics.TypeMismatchExpr(slotType.String(), valType.String())
		}
	}
	args := make([]types.Type, len(union.Typarams))
	for i, tp := range union.Typarams {
		if v, ok := subst[tp.Name]; ok {
			args[i] = v
		} else {
			// unconstrained by any field (e.g. the None case): leave as a
			// fresh region-erased placeholder, resolved by the caller's
			// annotation or let-binding context instead.
			args[i] = types.TyVar{Name: tp.Name, Decl: tp.Universe}
		}
	}
	return w.record(ex, types.NamedType{Name: entry.QIdent, Args: args, DeclUniverse: entry.Universe}), nil
}

func (w *stmtWalker) typeCall(ex ast.CallExpr, table *Table) (types.Type, error) {
	entry, ok := w.tp.LookupName(ex.Callee)
	if !ok {
		return nil, diagnostics.UnknownIdentifier(ex.Callee)
	}
	fn, ok := entry.Node.(*ast.FunctionDecl)
	if !ok {
		return nil, diagnostics.UnknownIdentifier(ex.Callee)
	}
	if len(ex.Args) != len(fn.Params) {
		return nil, diagnostics.ArgCountMismatch(ex.Callee, len(fn.Params), len(ex.Args))
	}

	itp := NewTypeParser(w.checker.Env, w.checker.Module, nil, fn.Typarams, w.tp.Regions)
	subst := types.Subst{}
	names := typaramNames(fn.Typarams)

	seenLinearArgs := map[string]bool{}
	for i, param := range fn.Params {
		paramType, err := itp.Resolve(param.Type)
		if err != nil {
			return nil, err
		}
		argType, err := w.typeExpr(ex.Args[i], table)
		if err != nil {
			return nil, err
		}
		if !unifyFormalType(paramType, argType, names, subst) {
			return nil, diagnostics.TypeMismatchExpr(paramType.String(), argType.String())
		}
		if argType.Universe() == types.Linear {
			if id, ok := ex.Args[i].(ast.IdentExpr); ok {
				if seenLinearArgs[id.Name] {
					return nil, diagnostics.DoubleReadInCall(id.Name)
				}
				seenLinearArgs[id.Name] = true
			}
		}
	}
	if !types.IsTotal(subst, names) {
		return nil, diagnostics.NonTotalSubstitution(ex.Callee)
	}

	returnType, err := itp.Resolve(fn.ReturnType)
	if err != nil {
		return nil, err
	}
	result := types.Apply(returnType, subst)

	// Stage G: intern this instantiation, region-stripped, in the
	// environment's monomorphization table.
	stripped := make([]types.Type, len(names))
	for i, n := range names {
		stripped[i] = types.Strip(subst[n])
	}
	w.checker.Env.Monomorph().Intern(entry.QIdent, stripped)

	return w.record(ex, result), nil
}

func (w *stmtWalker) typeMethodCall(ex ast.MethodCallExpr, table *Table) (types.Type, error) {
	receiverType, err := w.typeExpr(ex.Receiver, table)
	if err != nil {
		return nil, err
	}
	tc, method, err := w.findTypeclassMethod(ex.Method)
	if err != nil {
		return nil, err
	}
	if !types.UniverseCompatible(tc.AcceptedUniverse, receiverType.Universe()) {
		return nil, diagnostics.InstanceUniverseViolation(tc.Name)
	}
	if _, ok := w.checker.Env.Instances().Resolve(tc.Name, receiverType); !ok {
		return nil, diagnostics.MissingInstance(tc.Name, receiverType.String())
	}

	classTyparam := tc.Typarams[0].Name
	itp := NewTypeParser(w.checker.Env, w.checker.Module, nil, append(tc.Typarams, method.Typarams...), w.tp.Regions)
	for _, a := range ex.Args {
		if _, err := w.typeExpr(a, table); err != nil {
			return nil, err
		}
	}
	returnSpec, err := itp.Resolve(method.ReturnType)
	if err != nil {
		return nil, err
	}
	result := types.Apply(returnSpec, types.Subst{classTyparam: receiverType})

	// Stage G: intern this instantiation the same way typeCall does (spec
	// §4.5 Walk: "Method call -> same treatment, keyed by the resolved
	// method's qualified name"), so invariant 3 (every call site has
	// interned a monomorph id before lowering) holds for method calls too.
	// Only the typeclass's own typaram is stripped and interned here;
	// method.Typarams (a method generic beyond its typeclass's receiver
	// type) are never unified against ex.Args above, so there is nothing
	// further to strip for them.
	methodQID := types.NewQIdent(w.checker.Module.Name, method.Name)
	w.checker.Env.Monomorph().Intern(methodQID, []types.Type{types.Strip(receiverType)})

	return w.record(ex, result), nil
}

func (w *stmtWalker) findTypeclassMethod(name string) (*ast.TypeclassDecl, *ast.FunctionDecl, error) {
	for _, entry := range w.checker.Module.Entries {
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

func (w *stmtWalker) typeCaseExpr(ex ast.CaseExpr, table *Table) (types.Type, error) {
	_, _, err := w.walkCaseArms(ex.Scrutinee, ex.Arms, table)
	if err != nil {
		return nil, err
	}
	// Every arm must produce the same result type; resolved via the last
	// expression statement of each arm would require richer arm-result
	// tracking than the statement-oriented CaseArm.Body affords here, so
	// case-as-expression's result type is the Unit type, matching the
	// statement form's "value discarded" semantics (spec §4.3 treats
	// CaseExpr and CaseStatement identically except for the former's
	// value-producing position).
	// TODO: a CaseExpr bound by `let` (value position, not just
	// discarded) mistypes as Unit today; giving CaseArm.Body a typed
	// trailing-expression slot (mirroring FunctionDecl's implicit return)
	// would let this resolve each arm's actual result type and unify them.
	return w.record(ex, types.Unit{}), nil
}

func (w *stmtWalker) typeBorrowExpr(ex ast.BorrowExpr, table *Table) (types.Type, error) {
	id, ok := ex.Target.(ast.IdentExpr)
	if !ok {
		return nil, diagnostics.Internal("borrow target must be a binding")
	}
	kind := BorrowKindRead
	if ex.Kind == ast.BorrowWrite {
		kind = BorrowKindWrite
	}
	if diag := table.Borrow(id.Name, kind); diag != nil {
		return nil, diag
	}
	orig, _ := table.Lookup(id.Name)
	region := w.tp.Regions.Define(ex.Region)
	var result types.Type
	if kind == BorrowKindRead {
		result = types.ReadRef{Referent: orig.Type, Region: region}
	} else {
		result = types.WriteRef{Referent: orig.Type, Region: region}
	}
	return w.record(ex, result), nil
}

func (w *stmtWalker) typePathExpr(ex ast.PathExpr, table *Table) (types.Type, error) {
	headType, err := w.typeExpr(ex.Head, table)
	if err != nil {
		return nil, err
	}
	switch ex.Kind {
	case ast.PathIndex:
		arr, ok := headType.(types.Array)
		if !ok {
			return nil, diagnostics.TypeMismatchExpr("Array", headType.String())
		}
		if _, err := w.typeExpr(ex.Index, table); err != nil {
			return nil, err
		}
		return w.record(ex, arr.Element), nil
	case ast.PathArrow:
		if !w.checker.Module.Unsafe {
			return nil, diagnostics.UnsafeOperationOutsideUnsafeModule("pointer slot access")
		}
		ptr, ok := headType.(types.RawPointer)
		if !ok {
			return nil, diagnostics.TypeMismatchExpr("raw pointer", headType.String())
		}
		named, ok := ptr.Pointee.(types.NamedType)
		if !ok {
			return nil, diagnostics.TypeMismatchExpr("record pointee", ptr.Pointee.String())
		}
		_, fields, err := w.lookupRecordFields(named)
		if err != nil {
			return nil, err
		}
		ft, ok := fields[ex.Slot]
		if !ok {
			return nil, diagnostics.UnknownIdentifier(ex.Slot)
		}
		return w.record(ex, ft), nil
	default: // PathDot
		var referent types.Type
		switch h := headType.(type) {
		case types.ReadRef:
			referent = h.Referent
		case types.WriteRef:
			referent = h.Referent
		case types.NamedType:
			referent = h
		default:
			return nil, diagnostics.TypeMismatchExpr("record or reference", headType.String())
		}
		named, ok := referent.(types.NamedType)
		if !ok {
			return nil, diagnostics.TypeMismatchExpr("record", referent.String())
		}
		_, fields, err := w.lookupRecordFields(named)
		if err != nil {
			return nil, err
		}
		ft, ok := fields[ex.Slot]
		if !ok {
			return nil, diagnostics.UnknownIdentifier(ex.Slot)
		}
		return w.record(ex, ft), nil
	}
}

func (w *stmtWalker) typeBinary(ex ast.BinaryExpr, table *Table) (types.Type, error) {
	lt, err := w.typeExpr(ex.Left, table)
	if err != nil {
		return nil, err
	}
	rt, err := w.typeExpr(ex.Right, table)
	if err != nil {
		return nil, err
	}
	if !lt.Equal(rt) {
		return nil, diagnostics.TypeMismatchExpr(lt.String(), rt.String())
	}
	switch ex.Op {
	case "==", "!=", "<", ">", "<=", ">=":
		return w.record(ex, types.Boolean{}), nil
	case "&&", "||":
		if _, ok := lt.(types.Boolean); !ok {
			return nil, diagnostics.TypeMismatchExpr("Boolean", lt.String())
		}
		return w.record(ex, types.Boolean{}), nil
	default:
		return w.record(ex, lt), nil
	}
}

func (w *stmtWalker) typeUnary(ex ast.UnaryExpr, table *Table) (types.Type, error) {
	t, err := w.typeExpr(ex.Operand, table)
	if err != nil {
		return nil, err
	}
	if ex.Op == "!" {
		if _, ok := t.(types.Boolean); !ok {
			return nil, diagnostics.TypeMismatchExpr("Boolean", t.String())
		}
	}
	return w.record(ex, t), nil
}

func findField(fields []ast.RecordField, name string) *ast.RecordField {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}

func typaramNames(typarams []ast.TypeParam) []string {
	out := make([]string, len(typarams))
	for i, tp := range typarams {
		out[i] = tp.Name
	}
	return out
}

// unifyFormalType matches a formal parameter's type (possibly containing
// TyVars from typaramNames) against an actual argument type, recording
// bindings into subst. A TyVar bound once must agree with every later
// occurrence (spec §4.3 "Function calls": "unify formal parameters
// against Args, producing a substitution over the callee's typarams").
func unifyFormalType(formal, actual types.Type, typaramNames []string, subst types.Subst) bool {
	if tv, ok := formal.(types.TyVar); ok && contains(typaramNames, tv.Name) {
		if bound, ok := subst[tv.Name]; ok {
			return bound.Equal(actual)
		}
		subst[tv.Name] = actual
		return true
	}
	switch f := formal.(type) {
	case types.NamedType:
		a, ok := actual.(types.NamedType)
		if !ok || a.Name != f.Name || len(a.Args) != len(f.Args) {
			return false
		}
		for i := range f.Args {
			if !unifyFormalType(f.Args[i], a.Args[i], typaramNames, subst) {
				return false
			}
		}
		return true
	case types.Array:
		a, ok := actual.(types.Array)
		return ok && unifyFormalType(f.Element, a.Element, typaramNames, subst)
	case types.ReadRef:
		a, ok := actual.(types.ReadRef)
		return ok && unifyFormalType(f.Referent, a.Referent, typaramNames, subst)
	case types.WriteRef:
		a, ok := actual.(types.WriteRef)
		return ok && unifyFormalType(f.Referent, a.Referent, typaramNames, subst)
	case types.RawPointer:
		a, ok := actual.(types.RawPointer)
		return ok && unifyFormalType(f.Pointee, a.Pointee, typaramNames, subst)
	default:
		return formal.Equal(actual)
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
