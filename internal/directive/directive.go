// Package directive parses magick directives from Go source files.
//
// Directives are line comments in the doc comment of a declaration:
//
//	//magick:name <Name>
//	//magick:ctor <Type>
//	//magick:skip
//	//magick:prefix <Prefix>
//
// The name directive gives a method or function its script name; overloads
// share one name. The ctor directive marks a function as a constructor of
// Type regardless of its result type. The skip directive hides a method or
// function from the scriptable surface.
//
// The prefix directive belongs on an interface type that names a family.
// It is stripped from member type names to form their script names.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"
)

const prefix = "//magick:"

// Kind represents the type of directive.
type Kind string

const (
	KindName   Kind = "name"
	KindCtor   Kind = "ctor"
	KindSkip   Kind = "skip"
	KindPrefix Kind = "prefix"
)

// Directive represents a parsed magick directive.
type Directive struct {
	Kind   Kind
	Arg    string         // argument, empty for skip
	Target string         // name of the declaration the directive is attached to
	Pos    token.Position // source location of the comment
}

// Set holds the directives of a package, keyed by the position of the
// declared identifier. That position matches types.Object.Pos for objects
// type-checked from the same syntax.
type Set struct {
	byPos map[token.Pos][]Directive
}

// Lookup returns the directive of the given kind attached to the
// declaration whose identifier is at pos.
func (s *Set) Lookup(pos token.Pos, kind Kind) (Directive, bool) {
	if s == nil {
		return Directive{}, false
	}
	for _, d := range s.byPos[pos] {
		if d.Kind == kind {
			return d, true
		}
	}
	return Directive{}, false
}

// Has reports whether a directive of the given kind is attached at pos.
func (s *Set) Has(pos token.Pos, kind Kind) bool {
	_, ok := s.Lookup(pos, kind)
	return ok
}

// Len returns the number of directives in the set.
func (s *Set) Len() int {
	n := 0
	for _, ds := range s.byPos {
		n += len(ds)
	}
	return n
}

// ParseFiles extracts directives from parsed files. The files must have
// been parsed with comments.
//
// Returns an error if:
//   - A directive kind is unknown
//   - A directive is missing its argument, or skip has one
//   - A directive is not part of the doc comment of a matching declaration
//   - The same kind appears twice on one declaration
func ParseFiles(fset *token.FileSet, files []*ast.File) (*Set, error) {
	s := &Set{byPos: make(map[token.Pos][]Directive)}
	for _, f := range files {
		if err := s.parseFile(fset, f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// parseFile extracts directives from a single file.
func (s *Set) parseFile(fset *token.FileSet, f *ast.File) error {
	// Directives are collected per comment group and matched against the
	// doc comment of the following declaration.
	pending := make(map[*ast.CommentGroup][]Directive)

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if !strings.HasPrefix(c.Text, prefix) {
				continue
			}

			parts := strings.Fields(strings.TrimPrefix(c.Text, prefix))
			pos := fset.Position(c.Pos())
			if len(parts) == 0 {
				return fmt.Errorf("%s: empty //magick: directive", pos)
			}

			d := Directive{Kind: Kind(parts[0]), Pos: pos}
			switch d.Kind {
			case KindName, KindCtor, KindPrefix:
				if len(parts) != 2 {
					return fmt.Errorf("%s: //magick:%s takes exactly one argument", pos, d.Kind)
				}
				d.Arg = parts[1]
			case KindSkip:
				if len(parts) != 1 {
					return fmt.Errorf("%s: //magick:skip takes no arguments", pos)
				}
			default:
				return fmt.Errorf("%s: unknown directive //magick:%s", pos, parts[0])
			}
			pending[cg] = append(pending[cg], d)
		}
	}

	attach := func(doc *ast.CommentGroup, ident *ast.Ident, allowed func(Kind) bool, what string) error {
		ds, ok := pending[doc]
		if !ok {
			return nil
		}
		delete(pending, doc)

		seen := make(map[Kind]bool)
		for _, d := range ds {
			if !allowed(d.Kind) {
				return fmt.Errorf("%s: //magick:%s directive cannot be applied to %s %s", d.Pos, d.Kind, what, ident.Name)
			}
			if seen[d.Kind] {
				return fmt.Errorf("%s: duplicate //magick:%s directive on %s", d.Pos, d.Kind, ident.Name)
			}
			seen[d.Kind] = true
			d.Target = ident.Name
			s.byPos[ident.Pos()] = append(s.byPos[ident.Pos()], d)
		}
		return nil
	}

	funcKinds := func(k Kind) bool { return k != KindPrefix }
	typeKinds := func(k Kind) bool { return k == KindPrefix }

	for _, decl := range f.Decls {
		switch decl := decl.(type) {
		case *ast.FuncDecl:
			if decl.Doc == nil {
				continue
			}
			what := "function"
			if decl.Recv != nil {
				what = "method"
			}
			if err := attach(decl.Doc, decl.Name, funcKinds, what); err != nil {
				return err
			}
		case *ast.GenDecl:
			if decl.Tok != token.TYPE {
				continue
			}
			for _, spec := range decl.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(decl.Specs) == 1 {
					doc = decl.Doc
				}
				if doc == nil {
					continue
				}
				if err := attach(doc, ts.Name, typeKinds, "type"); err != nil {
					return err
				}
			}
		}
	}

	// Check for unmatched directives
	for _, ds := range pending {
		d := ds[0]
		return fmt.Errorf("%s: //magick:%s directive must be in the doc comment of a declaration", d.Pos, d.Kind)
	}

	return nil
}
