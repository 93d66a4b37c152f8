package xsdgen

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/cockroachdb/errors"

	"github.com/broady/magickxsd/xsdgen/grammar"
)

const (
	xsdNamespace   = "http://www.w3.org/2001/XMLSchema"
	defaultPrefix  = "xs"
	xmlDeclaration = `version="1.0" encoding="utf-8"`
)

// document is one working copy of the grammar template. Each variant gets
// its own copy.
type document struct {
	doc *etree.Document

	// prefix is the namespace prefix bound to the XML Schema namespace,
	// empty when it is the default namespace.
	prefix string
}

// parseTemplate parses the template and strips its comments.
func parseTemplate(data []byte) (*document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse template"), ErrInvalidTemplate)
	}

	root := doc.Root()
	if root == nil {
		return nil, errors.Mark(errors.New("template has no root element"), ErrInvalidTemplate)
	}

	d := &document{doc: doc, prefix: schemaPrefix(root)}
	if root.Tag != "schema" || root.Space != d.prefix {
		return nil, errors.Mark(errors.Newf("template root is <%s>, want <%s>", root.FullTag(), d.qualify("schema")), ErrInvalidTemplate)
	}

	removeComments(&doc.Element)
	return d, nil
}

// schemaPrefix returns the prefix the root binds to the XML Schema
// namespace, falling back to "xs".
func schemaPrefix(root *etree.Element) string {
	for _, a := range root.Attr {
		if a.Value != xsdNamespace {
			continue
		}
		switch {
		case a.Space == "xmlns":
			return a.Key
		case a.Space == "" && a.Key == "xmlns":
			return ""
		}
	}
	return defaultPrefix
}

func removeComments(e *etree.Element) {
	for i := len(e.Child) - 1; i >= 0; i-- {
		switch t := e.Child[i].(type) {
		case *etree.Comment:
			e.RemoveChildAt(i)
		case *etree.Element:
			removeComments(t)
		}
	}
}

// qualify returns the schema tag for a local name.
func (d *document) qualify(local string) string {
	if d.prefix == "" {
		return local
	}
	return d.prefix + ":" + local
}

// qualifyRef rebinds a built-in type reference such as "xs:int" to the
// document's prefix.
func (d *document) qualifyRef(ref string) string {
	if local, ok := strings.CutPrefix(ref, defaultPrefix+":"); ok {
		return d.qualify(local)
	}
	return ref
}

// isSchema reports whether e is the schema construct with the given local name.
func (d *document) isSchema(e *etree.Element, local string) bool {
	return e.Tag == local && e.Space == d.prefix
}

// schemaElements returns every schema element with the given local name,
// in document order.
func (d *document) schemaElements(local string) []*etree.Element {
	var found []*etree.Element
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			if d.isSchema(c, local) {
				found = append(found, c)
			}
			walk(c)
		}
	}
	walk(&d.doc.Element)
	return found
}

// element converts a grammar node to a schema element.
func (d *document) element(n *grammar.Node) *etree.Element {
	e := etree.NewElement(d.qualify(n.Kind.Tag()))
	for _, a := range n.Attrs() {
		value := a.Value
		if a.Key == "type" || a.Key == "base" {
			value = d.qualifyRef(value)
		}
		e.CreateAttr(a.Key, value)
	}
	for _, c := range n.Children {
		e.AddChild(d.element(c))
	}
	return e
}

// replace substitutes nodes for target at its position in its parent.
func (d *document) replace(target *etree.Element, nodes []*grammar.Node) {
	parent := target.Parent()
	at := target.Index()
	parent.RemoveChildAt(at)
	for i, n := range nodes {
		parent.InsertChildAt(at+i, d.element(n))
	}
}
