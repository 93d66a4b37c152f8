package directive

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"
)

func parse(t *testing.T, files map[string]string) (*token.FileSet, []*ast.File) {
	t.Helper()
	fset := token.NewFileSet()
	var parsed []*ast.File
	for name, src := range files {
		f, err := parser.ParseFile(fset, name, src, parser.ParseComments)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		parsed = append(parsed, f)
	}
	return fset, parsed
}

// identPos finds the position of the named top-level declaration.
func identPos(files []*ast.File, name string) token.Pos {
	for _, f := range files {
		for _, decl := range f.Decls {
			switch decl := decl.(type) {
			case *ast.FuncDecl:
				if decl.Name.Name == name {
					return decl.Name.Pos()
				}
			case *ast.GenDecl:
				for _, spec := range decl.Specs {
					if ts, ok := spec.(*ast.TypeSpec); ok && ts.Name.Name == name {
						return ts.Name.Pos()
					}
				}
			}
		}
	}
	return token.NoPos
}

func TestParseFiles(t *testing.T) {
	type want struct {
		target string
		kind   Kind
		arg    string
	}

	tests := []struct {
		name    string
		files   map[string]string
		want    []want
		wantErr string
	}{
		{
			name: "name on method",
			files: map[string]string{
				"image.go": `package magick

type Image struct{}

// ResizeGeometry resizes to a geometry.
//magick:name Resize
func (i *Image) ResizeGeometry(g string) {}
`,
			},
			want: []want{{"ResizeGeometry", KindName, "Resize"}},
		},
		{
			name: "skip and name together",
			files: map[string]string{
				"image.go": `package magick

type Image struct{}

//magick:name Write
//magick:skip
func (i *Image) WriteStream() {}
`,
			},
			want: []want{
				{"WriteStream", KindName, "Write"},
				{"WriteStream", KindSkip, ""},
			},
		},
		{
			name: "ctor on function",
			files: map[string]string{
				"coord.go": `package magick

type Coordinate struct{ X, Y float64 }

//magick:ctor Coordinate
func Point(x, y float64) Coordinate { return Coordinate{x, y} }
`,
			},
			want: []want{{"Point", KindCtor, "Coordinate"}},
		},
		{
			name: "prefix on single type",
			files: map[string]string{
				"draw.go": `package magick

// Drawable is drawn by Draw.
//magick:prefix Drawable
type Drawable interface{ draw() }
`,
			},
			want: []want{{"Drawable", KindPrefix, "Drawable"}},
		},
		{
			name: "prefix in grouped type decl",
			files: map[string]string{
				"path.go": `package magick

type (
	//magick:prefix Path
	PathBase interface{ path() }

	PathArc struct{}
)
`,
			},
			want: []want{{"PathBase", KindPrefix, "Path"}},
		},
		{
			name: "directives across files",
			files: map[string]string{
				"a.go": `package magick

//magick:skip
func Helper() {}
`,
				"b.go": `package magick

//magick:name Blur
func GaussianBlur() {}
`,
			},
			want: []want{
				{"Helper", KindSkip, ""},
				{"GaussianBlur", KindName, "Blur"},
			},
		},
		{
			name: "directive not on declaration",
			files: map[string]string{
				"a.go": `package magick

//magick:skip
var x = 1
`,
			},
			wantErr: "must be in the doc comment of a declaration",
		},
		{
			name: "unknown directive",
			files: map[string]string{
				"a.go": `package magick

//magick:export
func foo() {}
`,
			},
			wantErr: "unknown directive //magick:export",
		},
		{
			name: "name without argument",
			files: map[string]string{
				"a.go": `package magick

//magick:name
func foo() {}
`,
			},
			wantErr: "takes exactly one argument",
		},
		{
			name: "skip with argument",
			files: map[string]string{
				"a.go": `package magick

//magick:skip now
func foo() {}
`,
			},
			wantErr: "takes no arguments",
		},
		{
			name: "prefix on function",
			files: map[string]string{
				"a.go": `package magick

//magick:prefix Foo
func foo() {}
`,
			},
			wantErr: "cannot be applied to function foo",
		},
		{
			name: "name on type",
			files: map[string]string{
				"a.go": `package magick

//magick:name Foo
type foo struct{}
`,
			},
			wantErr: "cannot be applied to type foo",
		},
		{
			name: "duplicate kind",
			files: map[string]string{
				"a.go": `package magick

//magick:name A
//magick:name B
func foo() {}
`,
			},
			wantErr: "duplicate //magick:name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fset, files := parse(t, tt.files)

			set, err := ParseFiles(fset, files)

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %q", tt.wantErr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if set.Len() != len(tt.want) {
				t.Fatalf("got %d directives, want %d", set.Len(), len(tt.want))
			}

			for _, w := range tt.want {
				pos := identPos(files, w.target)
				d, ok := set.Lookup(pos, w.kind)
				if !ok {
					t.Errorf("missing //magick:%s on %s", w.kind, w.target)
					continue
				}
				if d.Arg != w.arg {
					t.Errorf("%s //magick:%s: got arg %q, want %q", w.target, w.kind, d.Arg, w.arg)
				}
				if d.Target != w.target {
					t.Errorf("got target %q, want %q", d.Target, w.target)
				}
			}
		})
	}
}

func TestSet_NilLookup(t *testing.T) {
	var s *Set
	if s.Has(token.Pos(1), KindSkip) {
		t.Error("nil set should have no directives")
	}
}

func TestParseFiles_IgnoresOrdinaryComments(t *testing.T) {
	fset, files := parse(t, map[string]string{
		"a.go": `package magick

// magick:name is not a directive because of the space.
func foo() {}

//go:generate echo hi
func bar() {}
`,
	})

	set, err := ParseFiles(fset, files)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("got %d directives, want 0", set.Len())
	}
}
