package xsdgen

import (
	"github.com/beevik/etree"
	"github.com/cockroachdb/errors"

	"github.com/broady/magickxsd/xsdgen/ir"
)

// SchemaFile is the file name of every generated schema.
const SchemaFile = "MagickScript.xsd"

// OutputPath returns the sink path of the schema for a depth,
// e.g. "ReleaseQ16/MagickScript.xsd".
func OutputPath(d ir.Depth) string {
	return "Release" + d.String() + "/" + SchemaFile
}

// bytes serializes the document with a UTF-8 XML declaration, indented
// with tabs.
func (d *document) bytes() ([]byte, error) {
	d.ensureDeclaration()
	d.doc.IndentTabs()
	out, err := d.doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(err, "serialize schema")
	}
	return out, nil
}

// ensureDeclaration makes the XML declaration the first token of the document.
func (d *document) ensureDeclaration() {
	for i, t := range d.doc.Child {
		if pi, ok := t.(*etree.ProcInst); ok && pi.Target == "xml" {
			pi.Inst = xmlDeclaration
			if i != 0 {
				d.doc.RemoveChildAt(i)
				d.doc.InsertChildAt(0, pi)
			}
			return
		}
	}

	pi := d.doc.CreateProcInst("xml", xmlDeclaration)
	d.doc.RemoveChildAt(pi.Index())
	d.doc.InsertChildAt(0, pi)
}
