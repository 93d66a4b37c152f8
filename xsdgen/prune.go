package xsdgen

// prune removes named simple types that no attribute references and returns
// their names in document order. Anonymous simple types are kept.
func (d *document) prune() []string {
	refs := make(map[string]int)
	for _, attr := range d.schemaElements("attribute") {
		if typ := attr.SelectAttrValue("type", ""); typ != "" {
			refs[typ]++
		}
	}

	var removed []string
	for _, st := range d.schemaElements("simpleType") {
		name := st.SelectAttrValue("name", "")
		if name == "" || refs[name] > 0 {
			continue
		}
		st.Parent().RemoveChildAt(st.Index())
		removed = append(removed, name)
	}
	return removed
}
