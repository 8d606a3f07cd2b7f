// Stage D: type parsing & universe inference (spec §4.2).
//
// Grounded on internal/analyzer/declarations_types.go + types_builder.go's
// specifier-to-Type resolution walk, re-keyed to the spec's three-tier
// lookup (typarams, local signatures, environment) instead of funxy's
// single lexical scope chain.
package analyzer

import (
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/config"
	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/env"
	"github.com/amber-lang/amberc/internal/modules"
	"github.com/amber-lang/amberc/internal/types"
)

// LocalSig is a locally declared (same module, not yet committed to the
// environment) record/union signature — needed because stage D may run
// before stage C has finished defining every declaration of the module
// being processed (spec §4.2 "a list of locally declared type signatures
// (which may not yet be in the environment because we are still
// processing the same module)").
type LocalSig struct {
	Name     string
	Typarams []ast.TypeParam
	Universe types.Universe
}

// RegionScope is a scope-structured mapping from region identifiers to
// opaque region tokens (spec §4.2).
type RegionScope struct {
	parent *RegionScope
	names  map[string]types.RegionID
}

func NewRegionScope() *RegionScope {
	return &RegionScope{names: make(map[string]types.RegionID)}
}

func (s *RegionScope) Child() *RegionScope {
	return &RegionScope{parent: s, names: make(map[string]types.RegionID)}
}

func (s *RegionScope) Define(name string) types.RegionID {
	id := types.RegionID(name)
	s.names[name] = id
	return id
}

func (s *RegionScope) Resolve(name string) (types.RegionID, bool) {
	if id, ok := s.names[name]; ok {
		return id, true
	}
	if s.parent != nil {
		return s.parent.Resolve(name)
	}
	return types.NoRegion, false
}

// TypeParser resolves spec §4.2 type specifiers into types.Type.
type TypeParser struct {
	Env      *env.Environment
	Module   *modules.CombinedModule
	Locals   map[string]LocalSig
	Typarams map[string]ast.TypeParam
	Regions  *RegionScope
}

func NewTypeParser(e *env.Environment, cm *modules.CombinedModule, locals map[string]LocalSig, typarams []ast.TypeParam, regions *RegionScope) *TypeParser {
	tpMap := make(map[string]ast.TypeParam, len(typarams))
	for _, tp := range typarams {
		tpMap[tp.Name] = tp
	}
	return &TypeParser{Env: e, Module: cm, Locals: locals, Typarams: tpMap, Regions: regions}
}

// Resolve implements the spec §4.2 resolution order for `N[args...]` and
// the scalar/array/reference/pointer forms.
func (p *TypeParser) Resolve(spec ast.TypeSpecifier) (types.Type, error) {
	switch s := spec.(type) {
	case ast.UnitTypeSpec:
		return types.Unit{}, nil
	case ast.BooleanTypeSpec:
		return types.Boolean{}, nil
	case ast.IntegerTypeSpec:
		sign := types.Unsigned
		if s.Signed {
			sign = types.Signed
		}
		return types.Integer{Signedness: sign, Width: s.Width}, nil
	case ast.SingleFloatTypeSpec:
		return types.SingleFloat{}, nil
	case ast.DoubleFloatTypeSpec:
		return types.DoubleFloat{}, nil
	case ast.RegionTypeSpec:
		id, ok := p.Regions.Resolve(s.Name)
		if !ok {
			return nil, diagnostics.UnknownType(s.Name)
		}
		return types.RegionType{ID: id}, nil
	case ast.ArrayTypeSpec:
		elem, err := p.Resolve(s.Element)
		if err != nil {
			return nil, err
		}
		region, ok := p.Regions.Resolve(s.Region)
		if !ok {
			return nil, diagnostics.UnknownType(s.Region)
		}
		return types.Array{Element: elem, Region: region}, nil
	case ast.ReadRefTypeSpec:
		referent, err := p.Resolve(s.Referent)
		if err != nil {
			return nil, err
		}
		region, ok := p.Regions.Resolve(s.Region)
		if !ok {
			return nil, diagnostics.UnknownType(s.Region)
		}
		return types.ReadRef{Referent: referent, Region: region}, nil
	case ast.WriteRefTypeSpec:
		referent, err := p.Resolve(s.Referent)
		if err != nil {
			return nil, err
		}
		region, ok := p.Regions.Resolve(s.Region)
		if !ok {
			return nil, diagnostics.UnknownType(s.Region)
		}
		return types.WriteRef{Referent: referent, Region: region}, nil
	case ast.RawPointerTypeSpec:
		if !p.Module.Unsafe {
			return nil, diagnostics.UnsafeOperationOutsideUnsafeModule("raw pointer type")
		}
		pointee, err := p.Resolve(s.Pointee)
		if err != nil {
			return nil, err
		}
		return types.RawPointer{Pointee: pointee}, nil
	case ast.NamedTypeSpec:
		return p.resolveNamed(s)
	default:
		return nil, diagnostics.Internal("typeparsing: unhandled type specifier")
	}
}

func (p *TypeParser) resolveNamed(s ast.NamedTypeSpec) (types.Type, error) {
	// 1. in-scope typarams.
	if tp, ok := p.Typarams[s.Name]; ok {
		if len(s.Args) != 0 {
			return nil, diagnostics.ArgCountMismatch(s.Name, 0, len(s.Args))
		}
		return types.TyVar{Name: tp.Name, Decl: tp.Universe, SourceDecl: p.Module.Name}, nil
	}

	// 2. local type signatures (same module, not yet in the environment).
	if local, ok := p.Locals[s.Name]; ok {
		args, err := p.resolveArgs(s.Args, local.Typarams, s.Name)
		if err != nil {
			return nil, err
		}
		return types.NamedType{
			Name:         types.NewQIdent(p.Module.Name, s.Name),
			Args:         args,
			DeclUniverse: local.Universe,
		}, nil
	}

	// 3. the environment (possibly through an imported alias, or the
	// implicitly-imported prelude).
	entry, ok := p.LookupName(s.Name)
	if !ok {
		return nil, diagnostics.UnknownType(s.Name)
	}
	args, err := p.resolveArgs(s.Args, entry.Typarams, s.Name)
	if err != nil {
		return nil, err
	}
	return types.NamedType{
		Name:         entry.QIdent,
		Args:         args,
		DeclUniverse: entry.Universe,
	}, nil
}

func (p *TypeParser) resolveArgs(specs []ast.TypeSpecifier, declTyparams []ast.TypeParam, name string) ([]types.Type, error) {
	if len(specs) != len(declTyparams) {
		return nil, diagnostics.ArgCountMismatch(name, len(declTyparams), len(specs))
	}
	out := make([]types.Type, len(specs))
	for i, spec := range specs {
		t, err := p.Resolve(spec)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// splitQualified splits "Alias.Name" into (resolved module, bare name),
// or, for an unqualified name, resolves it against the current module.
func (p *TypeParser) splitQualified(name string) (module, bare string) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			alias := name[:i]
			bare = name[i+1:]
			return p.Module.Imports.Resolve(alias), bare
		}
	}
	return p.Module.Name, name
}

// LookupName resolves a possibly-qualified name against the environment:
// the module it is explicitly or implicitly (via the import map) bound
// to, falling back to the synthetic prelude module every user module
// implicitly imports (spec §9's builtin root capability, exit code, and
// Optional type).
func (p *TypeParser) LookupName(name string) (*env.DeclEntry, bool) {
	moduleName, bareName := p.splitQualified(name)
	return lookupWithPrelude(p.Env, moduleName, bareName)
}

// lookupWithPrelude is the shared module-then-prelude lookup used both by
// type specifier resolution and by plain identifier/trait lookups that
// don't go through a TypeParser (e.g. instance validation's typeclass
// lookup).
func lookupWithPrelude(e *env.Environment, moduleName, bareName string) (*env.DeclEntry, bool) {
	if entry, ok := e.LookupInModule(moduleName, bareName); ok {
		return entry, true
	}
	if moduleName != config.PreludeModuleName {
		if entry, ok := e.LookupInModule(config.PreludeModuleName, bareName); ok {
			return entry, true
		}
	}
	return nil, false
}
