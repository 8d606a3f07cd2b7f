package modules

import (
	"github.com/amber-lang/amberc/internal/ast"
	"github.com/amber-lang/amberc/internal/diagnostics"
)

// Combine implements spec §4.1: given a concrete interface module and a
// concrete body module (either may be nil, but not both), produce one
// CombinedModule. iface and body, when both present, must declare the
// same module name.
func Combine(iface, body *ast.Program) (*CombinedModule, error) {
	if iface == nil && body == nil {
		return nil, diagnostics.Internal("combine: both interface and body are nil")
	}

	var name string
	switch {
	case iface != nil && body != nil:
		if iface.Header.ModuleName != body.Header.ModuleName {
			return nil, diagnostics.ModuleNameMismatch(iface.Header.ModuleName, body.Header.ModuleName)
		}
		name = iface.Header.ModuleName
	case iface != nil:
		name = iface.Header.ModuleName
	default:
		name = body.Header.ModuleName
	}

	imports := resolveImports(name, iface, body)
	unsafe := (iface != nil && iface.IsUnsafe) || (body != nil && body.IsUnsafe)

	cm := &CombinedModule{Name: name, Imports: imports, Unsafe: unsafe}

	if iface == nil {
		// Body-only module (spec §6.2): no interface/body matching to
		// perform. Constants, functions, typeclasses and instances keep
		// their declared visibility; records and unions go through
		// privateTypeVis like any other body-only type.
		for _, d := range body.Decls {
			if tc, ok := d.(*ast.TypeclassDecl); ok && len(tc.Typarams) != 1 {
				return nil, diagnostics.MultiArgumentTypeclass(tc.Name)
			}
			cm.Entries = append(cm.Entries, bodyOnlyEntry(d))
		}
		return cm, nil
	}

	bodyByName := indexByName(body)
	matchedInBody := make(map[string]bool)

	for _, ifaceDecl := range iface.Decls {
		bodyDecl, ok := bodyByName[ifaceDecl.DeclName()]
		if !ok {
			return nil, diagnostics.MissingBody(ifaceDecl.DeclName())
		}
		matchedInBody[ifaceDecl.DeclName()] = true

		entry, err := matchDeclaration(ifaceDecl, bodyDecl)
		if err != nil {
			return nil, err
		}
		cm.Entries = append(cm.Entries, entry)
	}

	if body != nil {
		for _, d := range body.Decls {
			if matchedInBody[d.DeclName()] {
				continue
			}
			// Instance bodies matching an interface instance declaration
			// were already consumed above (matched by TraitName, via
			// DeclName() on InstanceDecl); anything left here is a
			// genuine body-only definition, private.
			if tc, ok := d.(*ast.TypeclassDecl); ok && len(tc.Typarams) != 1 {
				return nil, diagnostics.MultiArgumentTypeclass(tc.Name)
			}
			entry := bodyOnlyEntry(d)
			entry.IsPublic = false
			cm.Entries = append(cm.Entries, entry)
		}
	}

	return cm, nil
}

func bodyOnlyEntry(d ast.Declaration) CombinedEntry {
	switch dd := d.(type) {
	case *ast.RecordDecl:
		return CombinedEntry{Decl: d, TypeVis: privateTypeVis(dd.TypeVis)}
	case *ast.UnionDecl:
		return CombinedEntry{Decl: d, TypeVis: privateTypeVis(dd.TypeVis)}
	case *ast.OpaqueTypeDecl:
		return CombinedEntry{Decl: d, TypeVis: ast.TypeVisOpaque}
	case *ast.ConstantDecl:
		return CombinedEntry{Decl: d, IsPublic: dd.Vis == ast.Public}
	case *ast.FunctionDecl:
		return CombinedEntry{Decl: d, IsPublic: dd.Vis == ast.Public}
	case *ast.TypeclassDecl:
		return CombinedEntry{Decl: d, IsPublic: dd.Vis == ast.Public}
	case *ast.InstanceDecl:
		return CombinedEntry{Decl: d, IsPublic: dd.Vis == ast.Public}
	default:
		return CombinedEntry{Decl: d}
	}
}

// privateTypeVis downgrades a body-only type's visibility: a type
// declared transparently in the body but never mentioned in the
// interface is Private, regardless of what keyword the body used.
func privateTypeVis(declared ast.TypeVisibility) ast.TypeVisibility {
	if declared == ast.TypeVisOpaque {
		return ast.TypeVisOpaque
	}
	return ast.TypeVisPrivate
}

func indexByName(p *ast.Program) map[string]ast.Declaration {
	if p == nil {
		return map[string]ast.Declaration{}
	}
	out := make(map[string]ast.Declaration, len(p.Decls))
	for _, d := range p.Decls {
		out[d.DeclName()] = d
	}
	return out
}

// matchDeclaration implements the per-declaration-kind agreement checks
// of spec §4.1.
func matchDeclaration(ifaceDecl, bodyDecl ast.Declaration) (CombinedEntry, error) {
	if ifaceDecl.Kind() != bodyDecl.Kind() {
		// An opaque type in the interface legitimately pairs with a
		// Record or Union body (spec §4.1: "Types declared in the
		// interface as opaque become TypeVisOpaque").
		if opq, ok := ifaceDecl.(*ast.OpaqueTypeDecl); ok {
			return matchOpaque(opq, bodyDecl)
		}
		return CombinedEntry{}, diagnostics.KindMismatch(ifaceDecl.DeclName())
	}

	switch iface := ifaceDecl.(type) {
	case *ast.ConstantDecl:
		body := bodyDecl.(*ast.ConstantDecl)
		if !typaramsEqual(iface.Typarams, body.Typarams) {
			return CombinedEntry{}, diagnostics.FunctionParameterMismatch(iface.Name, "typarams")
		}
		if iface.Annotation != nil && !specEqual(iface.Annotation, body.Annotation) {
			return CombinedEntry{}, diagnostics.TypeMismatch(iface.Name)
		}
		return CombinedEntry{Decl: body, IsPublic: true}, nil

	case *ast.RecordDecl:
		body := bodyDecl.(*ast.RecordDecl)
		if !typaramsEqual(iface.Typarams, body.Typarams) {
			return CombinedEntry{}, diagnostics.FunctionParameterMismatch(iface.Name, "typarams")
		}
		if iface.DeclaredUniverse != body.DeclaredUniverse {
			return CombinedEntry{}, diagnostics.UniverseMismatch(iface.Name)
		}
		vis := ast.TypeVisPublic
		if iface.TypeVis == ast.TypeVisOpaque {
			vis = ast.TypeVisOpaque
		}
		return CombinedEntry{Decl: body, TypeVis: vis}, nil

	case *ast.UnionDecl:
		body := bodyDecl.(*ast.UnionDecl)
		if !typaramsEqual(iface.Typarams, body.Typarams) {
			return CombinedEntry{}, diagnostics.FunctionParameterMismatch(iface.Name, "typarams")
		}
		if iface.DeclaredUniverse != body.DeclaredUniverse {
			return CombinedEntry{}, diagnostics.UniverseMismatch(iface.Name)
		}
		vis := ast.TypeVisPublic
		if iface.TypeVis == ast.TypeVisOpaque {
			vis = ast.TypeVisOpaque
		}
		return CombinedEntry{Decl: body, TypeVis: vis}, nil

	case *ast.FunctionDecl:
		body := bodyDecl.(*ast.FunctionDecl)
		if axis, ok := functionSignatureMismatch(iface, body); !ok {
			return CombinedEntry{}, diagnostics.FunctionParameterMismatch(iface.Name, axis)
		}
		return CombinedEntry{Decl: body, IsPublic: true}, nil

	case *ast.TypeclassDecl:
		body := bodyDecl.(*ast.TypeclassDecl)
		if len(iface.Typarams) != 1 {
			return CombinedEntry{}, diagnostics.MultiArgumentTypeclass(iface.Name)
		}
		if !typaramsEqual(iface.Typarams, body.Typarams) {
			return CombinedEntry{}, diagnostics.FunctionParameterMismatch(iface.Name, "typarams")
		}
		merged := mergeTypeclassMethods(iface, body)
		return CombinedEntry{Decl: merged, IsPublic: true}, nil

	case *ast.InstanceDecl:
		body := bodyDecl.(*ast.InstanceDecl)
		if iface.TraitName != body.TraitName {
			return CombinedEntry{}, diagnostics.KindMismatch(iface.TraitName)
		}
		if !typaramsEqual(iface.Typarams, body.Typarams) {
			return CombinedEntry{}, diagnostics.FunctionParameterMismatch(iface.TraitName, "typarams")
		}
		if !specEqual(iface.Argument, body.Argument) {
			return CombinedEntry{}, diagnostics.TypeMismatch(iface.TraitName)
		}
		return CombinedEntry{Decl: body, IsPublic: true}, nil

	case *ast.OpaqueTypeDecl:
		return matchOpaque(iface, bodyDecl)

	default:
		return CombinedEntry{}, diagnostics.Internal("combine: unhandled declaration kind")
	}
}

func matchOpaque(iface *ast.OpaqueTypeDecl, bodyDecl ast.Declaration) (CombinedEntry, error) {
	switch body := bodyDecl.(type) {
	case *ast.RecordDecl:
		if !typaramsEqual(iface.Typarams, body.Typarams) {
			return CombinedEntry{}, diagnostics.FunctionParameterMismatch(iface.Name, "typarams")
		}
		if iface.DeclaredUniverse != body.DeclaredUniverse {
			return CombinedEntry{}, diagnostics.UniverseMismatch(iface.Name)
		}
		return CombinedEntry{Decl: body, TypeVis: ast.TypeVisOpaque}, nil
	case *ast.UnionDecl:
		if !typaramsEqual(iface.Typarams, body.Typarams) {
			return CombinedEntry{}, diagnostics.FunctionParameterMismatch(iface.Name, "typarams")
		}
		if iface.DeclaredUniverse != body.DeclaredUniverse {
			return CombinedEntry{}, diagnostics.UniverseMismatch(iface.Name)
		}
		return CombinedEntry{Decl: body, TypeVis: ast.TypeVisOpaque}, nil
	default:
		return CombinedEntry{}, diagnostics.KindMismatch(iface.Name)
	}
}

// mergeTypeclassMethods combines interface method signatures with body
// default implementations, keeping the body's version of any method it
// provides a default for.
func mergeTypeclassMethods(iface, body *ast.TypeclassDecl) *ast.TypeclassDecl {
	bodyMethods := make(map[string]*ast.FunctionDecl, len(body.Methods))
	for _, m := range body.Methods {
		bodyMethods[m.Name] = m
	}
	merged := &ast.TypeclassDecl{
		Vis:              ast.Public,
		Name:             iface.Name,
		Typarams:         iface.Typarams,
		AcceptedUniverse: iface.AcceptedUniverse,
		Pos:              iface.Pos,
	}
	for _, m := range iface.Methods {
		if def, ok := bodyMethods[m.Name]; ok {
			merged.Methods = append(merged.Methods, def)
		} else {
			merged.Methods = append(merged.Methods, m)
		}
	}
	return merged
}

// functionSignatureMismatch implements spec §4.1's "check typarams, value
// parameters, and return type are structurally equal prior to
// qualification. Report the first axis that differs." Returns the
// differing axis name and ok=false, or ok=true if all match.
func functionSignatureMismatch(iface, body *ast.FunctionDecl) (string, bool) {
	if !typaramsEqual(iface.Typarams, body.Typarams) {
		return "typarams", false
	}
	if len(iface.Params) != len(body.Params) {
		return "values", false
	}
	for i := range iface.Params {
		if !specEqual(iface.Params[i].Type, body.Params[i].Type) {
			return "values", false
		}
	}
	if !specEqual(iface.ReturnType, body.ReturnType) {
		return "return", false
	}
	return "", true
}

func typaramsEqual(a, b []ast.TypeParam) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Universe != b[i].Universe {
			return false
		}
		if len(a[i].Constraints) != len(b[i].Constraints) {
			return false
		}
		for j := range a[i].Constraints {
			if a[i].Constraints[j] != b[i].Constraints[j] {
				return false
			}
		}
	}
	return true
}

// specEqual compares two type specifiers structurally, ignoring source
// spans — the pre-qualification equality check spec §4.1 calls for
// ("structurally equal prior to qualification").
func specEqual(a, b ast.TypeSpecifier) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case ast.UnitTypeSpec:
		_, ok := b.(ast.UnitTypeSpec)
		return ok
	case ast.BooleanTypeSpec:
		_, ok := b.(ast.BooleanTypeSpec)
		return ok
	case ast.IntegerTypeSpec:
		bv, ok := b.(ast.IntegerTypeSpec)
		return ok && av.Signed == bv.Signed && av.Width == bv.Width
	case ast.SingleFloatTypeSpec:
		_, ok := b.(ast.SingleFloatTypeSpec)
		return ok
	case ast.DoubleFloatTypeSpec:
		_, ok := b.(ast.DoubleFloatTypeSpec)
		return ok
	case ast.NamedTypeSpec:
		bv, ok := b.(ast.NamedTypeSpec)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !specEqual(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case ast.ArrayTypeSpec:
		bv, ok := b.(ast.ArrayTypeSpec)
		return ok && av.Region == bv.Region && specEqual(av.Element, bv.Element)
	case ast.RegionTypeSpec:
		bv, ok := b.(ast.RegionTypeSpec)
		return ok && av.Name == bv.Name
	case ast.ReadRefTypeSpec:
		bv, ok := b.(ast.ReadRefTypeSpec)
		return ok && av.Region == bv.Region && specEqual(av.Referent, bv.Referent)
	case ast.WriteRefTypeSpec:
		bv, ok := b.(ast.WriteRefTypeSpec)
		return ok && av.Region == bv.Region && specEqual(av.Referent, bv.Referent)
	case ast.RawPointerTypeSpec:
		bv, ok := b.(ast.RawPointerTypeSpec)
		return ok && specEqual(av.Pointee, bv.Pointee)
	default:
		return false
	}
}

// resolveImports implements stage A: build the (local name -> module
// name) import map from whichever of iface/body declares imports (spec
// §3.3). A module pair's imports are the union of both files' import
// lists. When the same local name is imported more than once, the later
// import (body after interface, later after earlier) replaces the
// earlier mapping; no error is reported for differing targets.
func resolveImports(currentModule string, iface, body *ast.Program) *ImportMap {
	im := newImportMap(currentModule)
	add := func(p *ast.Program) {
		if p == nil {
			return
		}
		for _, imp := range p.Imports {
			im.ByLocalName[imp.LocalName()] = imp.Path
		}
	}
	add(iface)
	add(body)
	return im
}
