package ir

import "fmt"

// ProfileParameter is the parameter name that marks an embedded profile payload.
const ProfileParameter = "profile"

// MethodGroup is a set of overloads sharing one logical name, kind and owner.
type MethodGroup struct {
	Name    string
	Kind    MemberKind
	Owner   string
	Members []Member
}

// NewMethodGroup builds a group from overloads, checking that the set is
// non-empty and that every member has the same name and kind.
func NewMethodGroup(members ...Member) (MethodGroup, error) {
	if len(members) == 0 {
		return MethodGroup{}, fmt.Errorf("method group is empty")
	}
	first := members[0]
	for _, m := range members[1:] {
		if m.Name != first.Name || m.Kind != first.Kind {
			return MethodGroup{}, fmt.Errorf("method group %s: member %s %s does not match %s %s",
				first.Name, m.Kind, m.Name, first.Kind, first.Name)
		}
	}
	return MethodGroup{
		Name:    first.Name,
		Kind:    first.Kind,
		Owner:   first.Owner,
		Members: members,
	}, nil
}

// GroupMembers groups overloads by name, keeping the order in which each name
// was first seen.
func GroupMembers(members []Member) []MethodGroup {
	index := make(map[string]int)
	var groups []MethodGroup
	for _, m := range members {
		key := m.Kind.String() + "." + m.Name
		i, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, MethodGroup{Name: m.Name, Kind: m.Kind, Owner: m.Owner})
			i = len(groups) - 1
		}
		groups[i].Members = append(groups[i].Members, m)
	}
	return groups
}

// Params returns every parameter of every overload, in order, including duplicates.
func (g MethodGroup) Params() []Parameter {
	var params []Parameter
	for _, m := range g.Members {
		params = append(params, m.Params...)
	}
	return params
}

// RequiredParams returns the names present in every overload of the group.
func (g MethodGroup) RequiredParams() map[string]bool {
	counts := make(map[string]int)
	for _, m := range g.Members {
		for _, p := range m.Params {
			counts[p.Name]++
		}
	}

	required := make(map[string]bool)
	for name, n := range counts {
		if n == len(g.Members) {
			required[name] = true
		}
	}
	return required
}

// AllParams returns the distinct parameters of the group in first-seen order.
// Each carries the type declared at its first occurrence.
func (g MethodGroup) AllParams() []Parameter {
	seen := make(map[string]bool)
	var params []Parameter
	for _, p := range g.Params() {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		params = append(params, p)
	}
	return params
}

// DirectlyTyped reports whether the group is a pass-through construct: a single
// overload whose single parameter is a collection or an embedded profile.
// Such groups reference a type directly instead of synthesizing one.
func (g MethodGroup) DirectlyTyped() (Parameter, bool) {
	if len(g.Members) != 1 {
		return Parameter{}, false
	}
	params := g.Members[0].Params
	if len(params) != 1 {
		return Parameter{}, false
	}

	p := params[0]
	if p.Type.IsCollection() || p.Name == ProfileParameter {
		return p, true
	}
	return Parameter{}, false
}
