package xsdgen

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/magickxsd/xsdgen/grammar"
	"github.com/broady/magickxsd/xsdgen/ir"
	"github.com/broady/magickxsd/xsdgen/provider"
)

// Families whose constructors are script elements.
const (
	FamilyDrawable = "Drawable"
	FamilyPath     = "PathBase"
)

// Placeholders lists the placeholder ids a template may use.
var Placeholders = []string{
	"actions",
	"color",
	"coordinate",
	"drawables",
	"enums",
	"geometry",
	"imageProfile",
	"pathArc",
	"pathCurveto",
	"pathQuadraticCurveto",
	"paths",
	"quantum",
}

// handler builds the replacement for one placeholder.
type handler func(x *expander) ([]*grammar.Node, error)

var handlers = map[string]handler{
	"enums":                (*expander).enums,
	"actions":              (*expander).actions,
	"drawables":            familyHandler(FamilyDrawable),
	"paths":                familyHandler(FamilyPath),
	"coordinate":           argumentsHandler("Coordinate"),
	"imageProfile":         argumentsHandler("ImageProfile"),
	"pathArc":              argumentsHandler("PathArc"),
	"pathCurveto":          argumentsHandler("PathCurveto"),
	"pathQuadraticCurveto": argumentsHandler("PathQuadraticCurveto"),
	"geometry":             argumentsHandler("MagickGeometry"),
	"color":                (*expander).color,
	"quantum":              (*expander).quantum,
}

func init() {
	if len(handlers) != len(Placeholders) {
		panic(fmt.Sprintf("xsdgen: %d placeholder handlers for %d placeholders", len(handlers), len(Placeholders)))
	}
	for _, id := range Placeholders {
		if handlers[id] == nil {
			panic("xsdgen: no handler for placeholder " + id)
		}
	}
}

// expander fills the placeholders of one document for one depth.
type expander struct {
	provider provider.Provider
	builder  *grammar.Builder
	depth    ir.Depth
	logger   *zap.Logger
}

// placeholder is an annotation to be replaced.
type placeholder struct {
	id string
	el *etree.Element
}

// placeholders returns the annotations carrying an id, in document order.
// It fails on an unknown or repeated id before anything is changed.
func (d *document) placeholders() ([]placeholder, error) {
	var found []placeholder
	seen := make(map[string]bool)
	for _, el := range d.schemaElements("annotation") {
		attr := el.SelectAttr("id")
		if attr == nil {
			continue
		}
		id := attr.Value
		if handlers[id] == nil {
			err := errors.Newf("unknown placeholder %q", id)
			err = errors.WithHintf(err, "known placeholders: %s", strings.Join(Placeholders, ", "))
			return nil, errors.Mark(err, ErrUnknownPlaceholder)
		}
		if seen[id] {
			return nil, errors.Mark(errors.Newf("duplicate placeholder %q", id), ErrDuplicatePlaceholder)
		}
		seen[id] = true
		found = append(found, placeholder{id: id, el: el})
	}
	return found, nil
}

// expand replaces every placeholder. All replacements are built before the
// first splice, so on error the document is unchanged.
func (x *expander) expand(d *document) (int, error) {
	phs, err := d.placeholders()
	if err != nil {
		return 0, err
	}

	replacements := make([][]*grammar.Node, len(phs))
	for i, ph := range phs {
		nodes, err := handlers[ph.id](x)
		if err != nil {
			return 0, errors.Wrapf(err, "placeholder %q", ph.id)
		}
		replacements[i] = nodes
		x.logger.Debug("expanded placeholder", zap.String("id", ph.id), zap.Int("nodes", len(nodes)))
	}

	for i, ph := range phs {
		d.replace(ph.el, replacements[i])
	}
	return len(phs), nil
}

func (x *expander) enums() ([]*grammar.Node, error) {
	var nodes []*grammar.Node
	seen := make(map[string]bool)
	for _, e := range x.provider.ListEnumTypes() {
		if seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		nodes = append(nodes, x.builder.Enum(e))
	}
	return nodes, nil
}

func (x *expander) actions() ([]*grammar.Node, error) {
	imageType := x.provider.ImageType()

	var nodes []*grammar.Node
	for _, p := range x.provider.ListProperties(imageType) {
		el, ok, err := x.builder.Property(p)
		if err != nil {
			return nil, err
		}
		if !ok {
			x.logger.Debug("skipped property", zap.String("property", p.Name), zap.Stringer("type", p.Type))
			continue
		}
		nodes = append(nodes, el)
	}

	groups, err := x.elements(x.provider.ListMethodGroups(imageType))
	if err != nil {
		return nil, err
	}
	return append(nodes, groups...), nil
}

func (x *expander) elements(groups []ir.MethodGroup) ([]*grammar.Node, error) {
	nodes := make([]*grammar.Node, 0, len(groups))
	for _, g := range groups {
		el, err := x.builder.Element(g)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, el)
	}
	return nodes, nil
}

func familyHandler(family string) handler {
	return func(x *expander) ([]*grammar.Node, error) {
		return x.elements(provider.FamilyMembers(x.provider, family))
	}
}

// argumentsHandler splices the arguments of a type's constructors in place
// of the placeholder, completing the complex type that contains it.
func argumentsHandler(typeName string) handler {
	return func(x *expander) ([]*grammar.Node, error) {
		var members []ir.Member
		for _, g := range x.provider.ListConstructorGroups(typeName) {
			members = append(members, g.Members...)
		}
		if len(members) == 0 {
			x.logger.Debug("type has no constructors", zap.String("type", typeName))
			return nil, nil
		}

		group := ir.MethodGroup{
			Name:    typeName,
			Kind:    ir.KindConstructor,
			Owner:   typeName,
			Members: members,
		}
		nodes, err := x.builder.Arguments(group)
		if err != nil {
			return nil, errors.Wrapf(err, "constructor %s", typeName)
		}
		return nodes, nil
	}
}

func (x *expander) color() ([]*grammar.Node, error) {
	n, err := x.builder.Color(x.depth)
	if err != nil {
		return nil, err
	}
	return []*grammar.Node{n}, nil
}

func (x *expander) quantum() ([]*grammar.Node, error) {
	n, err := x.builder.Quantum(x.depth)
	if err != nil {
		return nil, err
	}
	return []*grammar.Node{n}, nil
}
