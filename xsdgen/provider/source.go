package provider

import (
	"cmp"
	"context"
	"go/ast"
	"go/token"
	"go/types"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/packages"

	"github.com/broady/magickxsd/internal/directive"
	"github.com/broady/magickxsd/xsdgen/grammar"
	"github.com/broady/magickxsd/xsdgen/ir"
)

// ErrInvalidSource marks a Go package that cannot be described.
var ErrInvalidSource = errors.New("invalid source package")

// SourceProvider serves the API surface of Go packages:
//   - exported struct fields are properties
//   - exported methods are overloads, grouped by //magick:name
//   - functions New<Type>... returning Type or *Type are constructors of
//     Type, as are functions marked //magick:ctor Type
//   - functions New<Type>... returning an interface that Type implements
//     are constructors of Type
//   - a named type with at least two constants in one parenthesized const
//     declaration is an enum of those constants
//   - an interface type names a family of the types implementing it
//
// Type names are unqualified and must be unique across the loaded packages.
type SourceProvider struct {
	imageType  string
	methods    map[string][]ir.MethodGroup
	properties map[string][]ir.Property
	ctors      map[string][]ir.MethodGroup
	families   map[string][]string
	enums      []ir.Enum
}

var _ Provider = (*SourceProvider)(nil)

// LoadSource loads and analyzes the packages matching patterns, relative to
// dir (the current directory if empty).
func LoadSource(ctx context.Context, dir string, patterns []string, opts ...Option) (*SourceProvider, error) {
	if len(patterns) == 0 {
		return nil, errors.Mark(errors.New("no packages to load"), ErrInvalidSource)
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo,
		Dir: dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "load packages")
	}
	if len(pkgs) == 0 {
		return nil, errors.Mark(errors.Newf("no packages found matching %q", patterns), ErrInvalidSource)
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, errors.Mark(errors.Newf("package %s: %v", pkg.PkgPath, pkg.Errors[0]), ErrInvalidSource)
		}
	}
	slices.SortFunc(pkgs, func(a, b *packages.Package) int {
		return cmp.Compare(a.PkgPath, b.PkgPath)
	})

	s, err := newSourceScan(pkgs)
	if err != nil {
		return nil, errors.Mark(err, ErrInvalidSource)
	}
	return s.provider(applyOptions(opts))
}

// sourceScan holds the objects of the loaded packages, each list in
// package then declaration order.
type sourceScan struct {
	pkgs       map[*types.Package]bool
	directives map[*types.Package]*directive.Set
	typeNames  []*types.TypeName
	funcs      []*types.Func
	consts     []*types.Const
	enumTypes  map[*types.TypeName]bool
	enumConsts map[*types.Const]bool
	// constGroup maps the identifier of a constant declared in a
	// parenthesized const declaration to the position of its "(".
	constGroup map[token.Pos]token.Pos
}

func newSourceScan(pkgs []*packages.Package) (*sourceScan, error) {
	s := &sourceScan{
		pkgs:       make(map[*types.Package]bool),
		directives: make(map[*types.Package]*directive.Set),
		enumTypes:  make(map[*types.TypeName]bool),
		enumConsts: make(map[*types.Const]bool),
		constGroup: make(map[token.Pos]token.Pos),
	}

	seen := make(map[string]string)
	for _, pkg := range pkgs {
		set, err := directive.ParseFiles(pkg.Fset, pkg.Syntax)
		if err != nil {
			return nil, err
		}
		s.pkgs[pkg.Types] = true
		s.directives[pkg.Types] = set
		s.groupConsts(pkg.Syntax)

		scope := pkg.Types.Scope()
		var objs []types.Object
		for _, name := range scope.Names() {
			if obj := scope.Lookup(name); obj.Exported() {
				objs = append(objs, obj)
			}
		}
		slices.SortFunc(objs, func(a, b types.Object) int {
			return cmp.Compare(a.Pos(), b.Pos())
		})

		for _, obj := range objs {
			switch obj := obj.(type) {
			case *types.TypeName:
				if obj.IsAlias() {
					continue
				}
				if other, dup := seen[obj.Name()]; dup {
					return nil, errors.Newf("type %s declared in both %s and %s", obj.Name(), other, pkg.PkgPath)
				}
				seen[obj.Name()] = pkg.PkgPath
				s.typeNames = append(s.typeNames, obj)
			case *types.Func:
				s.funcs = append(s.funcs, obj)
			case *types.Const:
				s.consts = append(s.consts, obj)
			}
		}
	}

	s.classifyEnums()
	return s, nil
}

func (s *sourceScan) groupConsts(files []*ast.File) {
	for _, f := range files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.CONST || !gd.Lparen.IsValid() {
				continue
			}
			for _, spec := range gd.Specs {
				for _, name := range spec.(*ast.ValueSpec).Names {
					s.constGroup[name.Pos()] = gd.Lparen
				}
			}
		}
	}
}

// classifyEnums marks the local types declared at least twice in one
// const group, and the constants of those groups. A lone typed constant
// such as a maximum value does not make its type an enum.
func (s *sourceScan) classifyEnums() {
	type key struct {
		tn    *types.TypeName
		group token.Pos
	}
	counts := make(map[key]int)
	for _, c := range s.consts {
		tn := s.localType(c.Type())
		group, ok := s.constGroup[c.Pos()]
		if tn == nil || !ok {
			continue
		}
		counts[key{tn, group}]++
	}
	for _, c := range s.consts {
		tn := s.localType(c.Type())
		if counts[key{tn, s.constGroup[c.Pos()]}] >= 2 {
			s.enumTypes[tn] = true
			s.enumConsts[c] = true
		}
	}
}

// localType returns the type name of t (through one pointer) when it is
// declared in a loaded package.
func (s *sourceScan) localType(t types.Type) *types.TypeName {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || !s.pkgs[named.Obj().Pkg()] {
		return nil
	}
	return named.Obj()
}

func (s *sourceScan) lookup(obj types.Object, kind directive.Kind) (directive.Directive, bool) {
	return s.directives[obj.Pkg()].Lookup(obj.Pos(), kind)
}

func (s *sourceScan) provider(o options) (*SourceProvider, error) {
	p := &SourceProvider{
		imageType:  o.imageType,
		methods:    make(map[string][]ir.MethodGroup),
		properties: make(map[string][]ir.Property),
		ctors:      make(map[string][]ir.MethodGroup),
		families:   make(map[string][]string),
	}

	p.enums = s.enums()

	prefixes, err := s.families(p.families)
	if err != nil {
		return nil, err
	}

	for _, tn := range s.typeNames {
		named := tn.Type().(*types.Named)
		if st, ok := named.Underlying().(*types.Struct); ok {
			p.properties[tn.Name()] = s.properties(tn.Name(), st)
		}

		methods, err := s.methods(tn.Name(), named)
		if err != nil {
			return nil, err
		}
		if len(methods) > 0 {
			p.methods[tn.Name()] = ir.GroupMembers(methods)
		}
	}

	ctors, err := s.constructors(prefixes)
	if err != nil {
		return nil, err
	}
	for typeName, members := range ctors {
		p.ctors[typeName] = ir.GroupMembers(members)
	}

	return p, nil
}

func (s *sourceScan) enums() []ir.Enum {
	index := make(map[*types.TypeName]int)
	var enums []ir.Enum
	for _, c := range s.consts {
		if !s.enumConsts[c] {
			continue
		}
		tn := s.localType(c.Type())
		i, ok := index[tn]
		if !ok {
			i = len(enums)
			index[tn] = i
			enums = append(enums, ir.Enum{Name: tn.Name()})
		}
		enums[i].Members = append(enums[i].Members, enumMemberName(tn.Name(), c.Name()))
	}
	return enums
}

// enumMemberName strips the type name from a constant name,
// e.g. GravityCenter of type Gravity becomes Center.
func enumMemberName(typeName, constName string) string {
	if rest, ok := strings.CutPrefix(constName, typeName); ok && rest != "" {
		return rest
	}
	return constName
}

// families fills families with the implementers of every non-empty
// interface and returns each member's script name prefix.
func (s *sourceScan) families(families map[string][]string) (map[string]string, error) {
	prefixes := make(map[string]string)
	for _, iface := range s.typeNames {
		it, ok := iface.Type().Underlying().(*types.Interface)
		if !ok || it.NumMethods() == 0 {
			continue
		}

		prefix := ""
		if d, ok := s.lookup(iface, directive.KindPrefix); ok {
			prefix = d.Arg
		}

		var members []string
		for _, tn := range s.typeNames {
			if types.IsInterface(tn.Type()) {
				continue
			}
			if !types.Implements(tn.Type(), it) && !types.Implements(types.NewPointer(tn.Type()), it) {
				continue
			}
			if other, ok := prefixes[tn.Name()]; ok && other != prefix {
				return nil, errors.Newf("type %s belongs to families with different prefixes", tn.Name())
			}
			prefixes[tn.Name()] = prefix
			members = append(members, tn.Name())
		}
		families[iface.Name()] = members
	}
	return prefixes, nil
}

func (s *sourceScan) properties(owner string, st *types.Struct) []ir.Property {
	var props []ir.Property
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Exported() || f.Embedded() {
			continue
		}
		props = append(props, ir.Property{
			Owner: owner,
			Name:  f.Name(),
			Type:  s.typeRef(f.Type()),
		})
	}
	return props
}

func (s *sourceScan) methods(owner string, named *types.Named) ([]ir.Member, error) {
	var fns []*types.Func
	for i := 0; i < named.NumMethods(); i++ {
		fn := named.Method(i)
		if fn.Exported() && !s.directives[fn.Pkg()].Has(fn.Pos(), directive.KindSkip) {
			fns = append(fns, fn)
		}
	}
	slices.SortFunc(fns, func(a, b *types.Func) int {
		return cmp.Compare(a.Pos(), b.Pos())
	})

	members := make([]ir.Member, 0, len(fns))
	for _, fn := range fns {
		name := fn.Name()
		if d, ok := s.lookup(fn, directive.KindName); ok {
			name = d.Arg
		}
		params, err := s.params(owner+"."+fn.Name(), fn.Type().(*types.Signature))
		if err != nil {
			return nil, err
		}
		members = append(members, ir.Member{
			Kind:   ir.KindMethod,
			Owner:  owner,
			Name:   name,
			Params: params,
		})
	}
	return members, nil
}

// constructors returns the constructor overloads of each type, in
// declaration order.
func (s *sourceScan) constructors(prefixes map[string]string) (map[string][]ir.Member, error) {
	byName := make(map[string]*types.TypeName, len(s.typeNames))
	for _, tn := range s.typeNames {
		byName[tn.Name()] = tn
	}

	ctors := make(map[string][]ir.Member)
	for _, fn := range s.funcs {
		if s.directives[fn.Pkg()].Has(fn.Pos(), directive.KindSkip) {
			continue
		}
		sig := fn.Type().(*types.Signature)

		var owner *types.TypeName
		if d, ok := s.lookup(fn, directive.KindCtor); ok {
			owner = byName[d.Arg]
			if owner == nil {
				return nil, errors.Newf("%s: //magick:ctor names unknown type %s", fn.Name(), d.Arg)
			}
		} else if sig.Results().Len() > 0 {
			tn := s.localType(sig.Results().At(0).Type())
			switch {
			case tn == nil:
			case types.IsInterface(tn.Type()):
				owner = s.implementerNamed(fn.Name(), tn)
			case strings.HasPrefix(fn.Name(), "New"+tn.Name()):
				owner = tn
			}
		}
		if owner == nil {
			continue
		}

		params, err := s.params(fn.Name(), sig)
		if err != nil {
			return nil, err
		}
		ctors[owner.Name()] = append(ctors[owner.Name()], ir.Member{
			Kind:   ir.KindConstructor,
			Owner:  owner.Name(),
			Name:   scriptName(owner.Name(), prefixes[owner.Name()]),
			Params: params,
		})
	}
	return ctors, nil
}

// implementerNamed returns the concrete type T with the longest name such
// that fnName starts with New<T> and T or *T implements iface.
func (s *sourceScan) implementerNamed(fnName string, iface *types.TypeName) *types.TypeName {
	it := iface.Type().Underlying().(*types.Interface)
	var best *types.TypeName
	for _, tn := range s.typeNames {
		if types.IsInterface(tn.Type()) || !strings.HasPrefix(fnName, "New"+tn.Name()) {
			continue
		}
		if !types.Implements(tn.Type(), it) && !types.Implements(types.NewPointer(tn.Type()), it) {
			continue
		}
		if best == nil || len(tn.Name()) > len(best.Name()) {
			best = tn
		}
	}
	return best
}

func (s *sourceScan) params(what string, sig *types.Signature) ([]ir.Parameter, error) {
	params := make([]ir.Parameter, sig.Params().Len())
	for i := range params {
		v := sig.Params().At(i)
		if !grammar.ValidTag(v.Name()) {
			return nil, errors.Newf("%s: parameter %d name %q is not a valid XML name", what, i, v.Name())
		}
		params[i] = ir.Parameter{Name: v.Name(), Type: s.typeRef(v.Type())}
	}
	return params, nil
}

// typeRef converts a Go type to its canonical host type reference.
// Pointers are transparent; slices and arrays are collections; types from
// packages that were not loaded keep their package qualifier.
func (s *sourceScan) typeRef(t types.Type) ir.TypeRef {
	switch t := types.Unalias(t).(type) {
	case *types.Pointer:
		return s.typeRef(t.Elem())
	case *types.Slice:
		return ir.Collection(s.typeRef(t.Elem()))
	case *types.Array:
		return ir.Collection(s.typeRef(t.Elem()))
	case *types.Basic:
		return ir.Named(basicName(t))
	case *types.Named:
		obj := t.Obj()
		switch {
		case s.enumTypes[obj]:
			return ir.EnumRef(obj.Name())
		case obj.Pkg() == nil || s.pkgs[obj.Pkg()]:
			return ir.Named(obj.Name())
		default:
			return ir.Named(obj.Pkg().Name() + "." + obj.Name())
		}
	case *types.Interface:
		if t.Empty() {
			return ir.Named("any")
		}
	}
	return ir.Named(t.String())
}

func basicName(t *types.Basic) string {
	switch t.Kind() {
	case types.Bool, types.UntypedBool:
		return "bool"
	case types.String, types.UntypedString:
		return "string"
	case types.Int, types.Int8, types.Int16, types.Int32, types.Int64, types.UntypedInt:
		return "int"
	case types.Uint8:
		return "byte"
	case types.Uint, types.Uint16, types.Uint32, types.Uint64, types.Uintptr:
		return "uint"
	case types.Float32:
		return "float"
	case types.Float64, types.UntypedFloat:
		return "double"
	default:
		return t.Name()
	}
}

func (p *SourceProvider) ImageType() string { return p.imageType }

func (p *SourceProvider) ListMethodGroups(typeName string) []ir.MethodGroup {
	return slices.Clone(p.methods[typeName])
}

func (p *SourceProvider) ListProperties(typeName string) []ir.Property {
	return slices.Clone(p.properties[typeName])
}

func (p *SourceProvider) ListConstructorGroups(typeName string) []ir.MethodGroup {
	return slices.Clone(p.ctors[typeName])
}

func (p *SourceProvider) ListFamily(family string) []string {
	return slices.Clone(p.families[family])
}

func (p *SourceProvider) ListEnumTypes() []ir.Enum {
	return slices.Clone(p.enums)
}
