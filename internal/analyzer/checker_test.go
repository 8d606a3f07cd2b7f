package analyzer

import (
	"testing"

	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/config"
	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/env"
	"github.com/amber-lang/amberc/internal/modules"
	"github.com/amber-lang/amberc/internal/types"
	"github.com/stretchr/testify/require"
)

func intSpec() ast.TypeSpecifier { return ast.IntegerTypeSpec{Signed: true, Width: 32} }

func rootCapSpec() ast.TypeSpecifier { return ast.NamedTypeSpec{Name: config.RootCapabilityTypeName} }

func newModule(name string, entries ...modules.CombinedEntry) *modules.CombinedModule {
	return &modules.CombinedModule{
		Name:    name,
		Imports: &modules.ImportMap{CurrentModule: name, ByLocalName: map[string]string{}},
		Entries: entries,
	}
}

func newEnvWithPrelude(t *testing.T) *env.Environment {
	t.Helper()
	e := env.New()
	require.NoError(t, Extract(e, modules.Prelude()))
	return e
}

// recordR is the linear record used by spec §8 scenarios 1-5.
func recordR() *ast.RecordDecl {
	return &ast.RecordDecl{
		TypeVis:          ast.TypeVisPublic,
		Name:             "R",
		DeclaredUniverse: types.Linear,
		Fields:           []ast.RecordField{{Name: "x", Type: intSpec()}},
	}
}

func mainFn(body []ast.Statement) *ast.FunctionDecl {
	return &ast.FunctionDecl{
		Vis:        ast.Public,
		Name:       config.MainFuncName,
		Params:     []ast.Param{{Name: "root", Type: rootCapSpec()}},
		ReturnType: rootCapSpec(),
		Body:       body,
	}
}

// Scenario 1: destructure a linear record — accepted.
func TestScenarioDestructureLinearRecord(t *testing.T) {
	e := newEnvWithPrelude(t)
	fn := mainFn([]ast.Statement{
		&ast.LetStatement{
			Binding: ast.IdentPattern{Name: "r"},
			Value:   ast.RecordLiteral{TypeName: "R", Fields: []ast.FieldInit{{Name: "x", Value: ast.IntLiteral{Value: 32}}}},
		},
		&ast.LetStatement{
			Binding: ast.RecordPattern{Slots: []ast.SlotPattern{{Slot: "x"}}},
			Value:   ast.IdentExpr{Name: "r"},
		},
		&ast.ReturnStatement{Value: ast.IdentExpr{Name: "root"}},
	})
	cm := newModule("M",
		modules.CombinedEntry{Decl: recordR(), TypeVis: ast.TypeVisPublic},
		modules.CombinedEntry{Decl: fn, IsPublic: true},
	)
	require.NoError(t, Extract(e, cm))
	_, err := CheckModule(e, cm)
	require.NoError(t, err)
}

// Scenario 2: forget a linear record — LinearityError.
func TestScenarioForgetLinearRecord(t *testing.T) {
	e := newEnvWithPrelude(t)
	fn := mainFn([]ast.Statement{
		&ast.LetStatement{
			Binding: ast.IdentPattern{Name: "r"},
			Value:   ast.RecordLiteral{TypeName: "R", Fields: []ast.FieldInit{{Name: "x", Value: ast.IntLiteral{Value: 32}}}},
		},
		&ast.ReturnStatement{Value: ast.IdentExpr{Name: "root"}},
	})
	cm := newModule("M",
		modules.CombinedEntry{Decl: recordR(), TypeVis: ast.TypeVisPublic},
		modules.CombinedEntry{Decl: fn, IsPublic: true},
	)
	require.NoError(t, Extract(e, cm))
	_, err := CheckModule(e, cm)
	require.Error(t, err)
	var diag *diagnostics.Diagnostic
	require.ErrorAs(t, err, &diag)
	require.Equal(t, diagnostics.CategoryLinearity, diag.Category)
	require.Contains(t, diag.Error(), "value forgotten")
}

func destructureStmts(name string) []ast.Statement {
	return []ast.Statement{
		&ast.LetStatement{
			Binding: ast.RecordPattern{Slots: []ast.SlotPattern{{Slot: "x"}}},
			Value:   ast.IdentExpr{Name: name},
		},
	}
}

// Scenario 3: consume in both branches of if — accepted.
func TestScenarioConsumeBothBranches(t *testing.T) {
	e := newEnvWithPrelude(t)
	fn := mainFn([]ast.Statement{
		&ast.LetStatement{
			Binding: ast.IdentPattern{Name: "r"},
			Value:   ast.RecordLiteral{TypeName: "R", Fields: []ast.FieldInit{{Name: "x", Value: ast.IntLiteral{Value: 32}}}},
		},
		&ast.IfStatement{
			Cond: ast.BoolLiteral{Value: true},
			Then: destructureStmts("r"),
			Else: destructureStmts("r"),
		},
		&ast.ReturnStatement{Value: ast.IdentExpr{Name: "root"}},
	})
	cm := newModule("M",
		modules.CombinedEntry{Decl: recordR(), TypeVis: ast.TypeVisPublic},
		modules.CombinedEntry{Decl: fn, IsPublic: true},
	)
	require.NoError(t, Extract(e, cm))
	_, err := CheckModule(e, cm)
	require.NoError(t, err)
}

// Scenario 4: asymmetric consume — LinearityError.
func TestScenarioAsymmetricConsumption(t *testing.T) {
	e := newEnvWithPrelude(t)
	fn := mainFn([]ast.Statement{
		&ast.LetStatement{
			Binding: ast.IdentPattern{Name: "r"},
			Value:   ast.RecordLiteral{TypeName: "R", Fields: []ast.FieldInit{{Name: "x", Value: ast.IntLiteral{Value: 32}}}},
		},
		&ast.IfStatement{
			Cond: ast.BoolLiteral{Value: true},
			Then: destructureStmts("r"),
			Else: []ast.Statement{&ast.SkipStatement{}},
		},
		&ast.ReturnStatement{Value: ast.IdentExpr{Name: "root"}},
	})
	cm := newModule("M",
		modules.CombinedEntry{Decl: recordR(), TypeVis: ast.TypeVisPublic},
		modules.CombinedEntry{Decl: fn, IsPublic: true},
	)
	require.NoError(t, Extract(e, cm))
	_, err := CheckModule(e, cm)
	require.Error(t, err)
	require.Contains(t, err.Error(), "asymmetric consumption")
}

// Scenario 5: consume twice by call — LinearityError: value used after
// being consumed.
func TestScenarioConsumeTwiceByCall(t *testing.T) {
	e := newEnvWithPrelude(t)
	consumeFn := &ast.FunctionDecl{
		Vis:        ast.Public,
		Name:       "Consume",
		Params:     []ast.Param{{Name: "v", Type: ast.NamedTypeSpec{Name: "R"}}},
		ReturnType: ast.UnitTypeSpec{},
		Body:       append(destructureStmts("v"), &ast.ReturnStatement{}),
	}
	fn := mainFn([]ast.Statement{
		&ast.LetStatement{
			Binding: ast.IdentPattern{Name: "r"},
			Value:   ast.RecordLiteral{TypeName: "R", Fields: []ast.FieldInit{{Name: "x", Value: ast.IntLiteral{Value: 32}}}},
		},
		&ast.ExprStatement{Value: ast.CallExpr{Callee: "Consume", Args: []ast.Expression{ast.IdentExpr{Name: "r"}}}},
		&ast.ExprStatement{Value: ast.CallExpr{Callee: "Consume", Args: []ast.Expression{ast.IdentExpr{Name: "r"}}}},
		&ast.ReturnStatement{Value: ast.IdentExpr{Name: "root"}},
	})
	cm := newModule("M",
		modules.CombinedEntry{Decl: recordR(), TypeVis: ast.TypeVisPublic},
		modules.CombinedEntry{Decl: consumeFn, IsPublic: true},
		modules.CombinedEntry{Decl: fn, IsPublic: true},
	)
	require.NoError(t, Extract(e, cm))
	_, err := CheckModule(e, cm)
	require.Error(t, err)
	require.Contains(t, err.Error(), "value used after being consumed")
}

// Scenario 6: forget a case binding — LinearityError: value forgotten.
func TestScenarioForgetCaseBinding(t *testing.T) {
	e := newEnvWithPrelude(t)
	optArg := ast.NamedTypeSpec{Name: "Optional", Args: []ast.TypeSpecifier{ast.NamedTypeSpec{Name: "R"}}}
	fn := mainFn([]ast.Statement{
		&ast.LetStatement{
			Binding: ast.IdentPattern{Name: "r"},
			Value:   ast.RecordLiteral{TypeName: "R", Fields: []ast.FieldInit{{Name: "x", Value: ast.IntLiteral{Value: 32}}}},
		},
		&ast.LetStatement{
			Binding:    ast.IdentPattern{Name: "o"},
			Annotation: optArg,
			Value:      ast.ConstructorCall{UnionName: "Optional", CaseName: "Some", Fields: []ast.FieldInit{{Name: "value", Value: ast.IdentExpr{Name: "r"}}}},
		},
		&ast.CaseStatement{
			Scrutinee: ast.IdentExpr{Name: "o"},
			Arms: []ast.CaseArm{
				{CaseName: "Some", Bindings: []string{"value"}, Body: []ast.Statement{}},
				{CaseName: "None", Bindings: nil, Body: []ast.Statement{}},
			},
		},
		&ast.ReturnStatement{Value: ast.IdentExpr{Name: "root"}},
	})
	cm := newModule("M",
		modules.CombinedEntry{Decl: recordR(), TypeVis: ast.TypeVisPublic},
		modules.CombinedEntry{Decl: fn, IsPublic: true},
	)
	require.NoError(t, Extract(e, cm))
	_, err := CheckModule(e, cm)
	require.Error(t, err)
	require.Contains(t, err.Error(), "value forgotten")
}

// Scenario 9: overlapping instances — InstanceError.
func TestScenarioOverlappingInstances(t *testing.T) {
	e := newEnvWithPrelude(t)
	tc := &ast.TypeclassDecl{
		Vis:              ast.Public,
		Name:             "Show",
		Typarams:         []ast.TypeParam{{Name: "a", Universe: types.TypeUniverse}},
		AcceptedUniverse: types.TypeUniverse,
		Methods: []*ast.FunctionDecl{
			{Name: "show", Params: []ast.Param{{Name: "self", Type: ast.NamedTypeSpec{Name: "a"}}}, ReturnType: ast.UnitTypeSpec{}},
		},
	}
	instA := &ast.InstanceDecl{Vis: ast.Public, TraitName: "Show", Argument: intSpec()}
	instB := &ast.InstanceDecl{Vis: ast.Public, TraitName: "Show", Argument: intSpec()}

	cm := newModule("M",
		modules.CombinedEntry{Decl: tc, IsPublic: true},
		modules.CombinedEntry{Decl: instA, IsPublic: true},
	)
	require.NoError(t, Extract(e, cm))
	_, err := CheckModule(e, cm)
	require.NoError(t, err)

	cm2 := newModule("M",
		modules.CombinedEntry{Decl: instB, IsPublic: true},
	)
	checker2 := NewChecker(e, cm2)
	err = checker2.validateInstance(instB)
	require.Error(t, err)
	var diag *diagnostics.Diagnostic
	require.ErrorAs(t, err, &diag)
	require.Equal(t, diagnostics.CategoryInstance, diag.Category)
	require.Contains(t, diag.Error(), "overlapping instances")
}
