package modules

import (
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/config"
	"github.com/amber-lang/amberc/internal/types"
)

// Prelude returns the synthetic builtin module every user module
// implicitly imports: the root capability type, an exit code type, and
// the Optional union used throughout the linearity scenarios of spec §8.
//
// Grounded on internal/modules/virtual_init.go's pattern of a synthesized
// builtin module registered before user modules; funxy's other
// virtual_packages_*.go files (stdlib shims for a dynamically-typed
// language: string/io/web/grpc modules) have no analog in this spec's
// core and are not carried forward — see DESIGN.md.
func Prelude() *CombinedModule {
	cm := &CombinedModule{
		Name:    config.PreludeModuleName,
		Imports: newImportMap(config.PreludeModuleName),
	}

	rootCap := &ast.RecordDecl{
		TypeVis:          ast.TypeVisOpaque,
		Name:             config.RootCapabilityTypeName,
		DeclaredUniverse: types.Linear,
	}
	exitCode := &ast.RecordDecl{
		TypeVis:          ast.TypeVisPublic,
		Name:             config.ExitCodeTypeName,
		DeclaredUniverse: types.Free,
		Fields:           []ast.RecordField{{Name: "code", Type: ast.IntegerTypeSpec{Signed: true, Width: 32}}},
	}
	optional := &ast.UnionDecl{
		TypeVis:          ast.TypeVisPublic,
		Name:             config.OptionalTypeName,
		DeclaredUniverse: types.TypeUniverse,
		Typarams:         []ast.TypeParam{{Name: "t", Universe: types.TypeUniverse}},
		Cases: []ast.UnionCase{
			{Name: config.SomeCtorName, Slots: []ast.RecordField{{Name: "value", Type: ast.NamedTypeSpec{Name: "t"}}}},
			{Name: config.NoneCtorName},
		},
	}

	cm.Entries = []CombinedEntry{
		{Decl: rootCap, TypeVis: ast.TypeVisOpaque},
		{Decl: exitCode, TypeVis: ast.TypeVisPublic},
		{Decl: optional, TypeVis: ast.TypeVisPublic},
	}
	return cm
}
