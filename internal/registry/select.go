package registry

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// selection accumulates the symbol names required by features and
// extensions before they are resolved against the document.
type selection struct {
	types mapset.Set[string]
	enums mapset.Set[string]
	cmds  mapset.Set[string]
}

func newSelection() *selection {
	return &selection{
		types: mapset.NewThreadUnsafeSet[string](),
		enums: mapset.NewThreadUnsafeSet[string](),
		cmds:  mapset.NewThreadUnsafeSet[string](),
	}
}

func (s *selection) require(in xmlInterfaces) {
	for _, t := range in.Type {
		s.types.Add(t.Name)
	}
	for _, e := range in.Enum {
		s.enums.Add(e.Name)
	}
	for _, c := range in.Command {
		s.cmds.Add(c.Name)
	}
}

func (s *selection) remove(in xmlInterfaces) {
	for _, t := range in.Type {
		s.types.Remove(t.Name)
	}
	for _, e := range in.Enum {
		s.enums.Remove(e.Name)
	}
	for _, c := range in.Command {
		s.cmds.Remove(c.Name)
	}
}

// applies reports whether a <require> or <remove> block is relevant to f.
func applies(in xmlInterfaces, f Filter) bool {
	if in.API != "" && in.API != f.API {
		return false
	}
	return in.Profile == "" || in.Profile == f.Profile
}

// Select resolves f against the document.
func (d *Document) Select(f Filter) (*Registry, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	sel := newSelection()
	reg := &Registry{
		Namespace: f.Namespace,
		Filter:    f,
		Aliases:   make(map[string][]string),
	}

	for _, feat := range d.Features {
		if feat.API != f.API {
			continue
		}
		if !f.Full {
			v, err := ParseVersion(feat.Number)
			if err != nil {
				return nil, fmt.Errorf("feature %s: %w", feat.Name, err)
			}
			if f.Version.Less(v) {
				continue
			}
		}
		reg.Features = append(reg.Features, feat.Name)
		for _, req := range feat.Require {
			if applies(req, f) {
				sel.require(req)
			}
		}
		if f.Full {
			continue
		}
		for _, rem := range feat.Remove {
			if applies(rem, f) {
				sel.remove(rem)
			}
		}
	}

	if err := d.selectExtensions(f, sel, reg); err != nil {
		return nil, err
	}

	enums, err := d.resolveEnums(f, sel.enums)
	if err != nil {
		return nil, err
	}
	reg.Enums = enums

	cmds, err := d.resolveCmds(sel.cmds)
	if err != nil {
		return nil, err
	}
	reg.Cmds = cmds

	for _, cmd := range cmds {
		if cmd.Proto.PType != "" {
			sel.types.Add(cmd.Proto.PType)
		}
		for _, p := range cmd.Params {
			if p.PType != "" {
				sel.types.Add(p.PType)
			}
		}
	}
	if sel.enums.Contains("GL_TRUE") || sel.enums.Contains("GL_FALSE") {
		sel.types.Add("GLboolean")
	}
	reg.Types = d.resolveTypes(f, sel.types)

	d.resolveAliases(reg)
	sort.Strings(reg.Extensions)
	return reg, nil
}

func (d *Document) selectExtensions(f Filter, sel *selection, reg *Registry) error {
	requested := f.Extensions
	if f.Full {
		requested = d.SupportedExtensions(f.API, f.Profile)
	}
	if len(requested) == 0 {
		return nil
	}

	byName := make(map[string]*xmlExtension, len(d.Extensions))
	for i := range d.Extensions {
		byName[d.Extensions[i].Name] = &d.Extensions[i]
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	for _, name := range requested {
		if !seen.Add(name) {
			continue
		}
		ext, ok := byName[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownExtension, name)
		}
		if !supports(ext.Supported, f.API, f.Profile) {
			return fmt.Errorf("%w: %s (api %s)", ErrUnsupportedExtension, name, f.API)
		}
		reg.Extensions = append(reg.Extensions, name)
		for _, req := range ext.Require {
			if applies(req, f) {
				sel.require(req)
			}
		}
		if f.Full {
			continue
		}
		for _, rem := range ext.Remove {
			if applies(rem, f) {
				sel.remove(rem)
			}
		}
	}
	return nil
}

func (d *Document) resolveEnums(f Filter, names mapset.Set[string]) ([]Enum, error) {
	defs := make(map[string]Enum)
	for _, block := range d.Enums {
		for _, e := range block.Enum {
			if e.API != "" && e.API != f.API {
				continue
			}
			if prev, ok := defs[e.Name]; ok && prev.API != "" {
				continue
			}
			group := e.Group
			if group == "" {
				group = block.Group
			}
			defs[e.Name] = Enum{
				Name:  e.Name,
				Value: e.Value,
				Type:  e.Type,
				Alias: e.Alias,
				API:   e.API,
				Group: group,
			}
		}
	}

	sorted := names.ToSlice()
	sort.Strings(sorted)
	enums := make([]Enum, 0, len(sorted))
	for _, name := range sorted {
		e, ok := defs[name]
		if !ok {
			return nil, fmt.Errorf("%w: enum %s", ErrMissingSymbol, name)
		}
		enums = append(enums, e)
	}
	return enums, nil
}

func (d *Document) resolveCmds(names mapset.Set[string]) ([]Cmd, error) {
	defs := make(map[string]*xmlCommand, len(d.Commands))
	for i := range d.Commands {
		defs[d.Commands[i].Proto.Name] = &d.Commands[i]
	}

	sorted := names.ToSlice()
	sort.Strings(sorted)
	cmds := make([]Cmd, 0, len(sorted))
	for _, name := range sorted {
		c, ok := defs[name]
		if !ok {
			return nil, fmt.Errorf("%w: command %s", ErrMissingSymbol, name)
		}
		cmd := Cmd{
			Name:     name,
			Proto:    newBinding(c.Proto),
			Alias:    c.Alias.Name,
			Vecequiv: c.Vecequiv.Name,
		}
		for _, p := range c.Param {
			cmd.Params = append(cmd.Params, newBinding(p))
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// resolveTypes returns the requested types and everything they require.
// Names the document does not define are kept with an empty definition;
// the generator decides whether it knows them.
func (d *Document) resolveTypes(f Filter, names mapset.Set[string]) []Type {
	defs := make(map[string]xmlType)
	for _, t := range d.Types {
		if t.API != "" && t.API != f.API {
			continue
		}
		name := t.TypeName()
		if prev, ok := defs[name]; ok && prev.API != "" {
			continue
		}
		defs[name] = t
	}

	queue := names.ToSlice()
	seen := mapset.NewThreadUnsafeSet[string]()
	var types []Type
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if !seen.Add(name) {
			continue
		}
		t, ok := defs[name]
		if !ok {
			types = append(types, Type{Name: name})
			continue
		}
		types = append(types, Type{
			Name:       name,
			API:        t.API,
			Requires:   t.Requires,
			Definition: strings.Join(strings.Fields(tagPattern.ReplaceAllString(t.InnerXML, "")), " "),
		})
		if t.Requires != "" {
			queue = append(queue, t.Requires)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types
}

// resolveAliases links every selected command to the commands it is
// interchangeable with: its alias target, commands aliasing it, and
// commands sharing its target.
func (d *Document) resolveAliases(reg *Registry) {
	target := make(map[string]string)
	aliasedBy := make(map[string][]string)
	for _, c := range d.Commands {
		if c.Alias.Name == "" {
			continue
		}
		target[c.Proto.Name] = c.Alias.Name
		aliasedBy[c.Alias.Name] = append(aliasedBy[c.Alias.Name], c.Proto.Name)
	}

	for _, cmd := range reg.Cmds {
		set := mapset.NewThreadUnsafeSet[string](aliasedBy[cmd.Name]...)
		if t, ok := target[cmd.Name]; ok {
			set.Add(t)
			for _, sibling := range aliasedBy[t] {
				set.Add(sibling)
			}
		}
		set.Remove(cmd.Name)
		if set.Cardinality() == 0 {
			continue
		}
		fallbacks := set.ToSlice()
		sort.Strings(fallbacks)
		reg.Aliases[cmd.Name] = fallbacks
	}
}

func newBinding(p xmlProtoOrParam) Binding {
	decl := p.InnerXML
	if i := strings.Index(decl, "<name>"); i >= 0 {
		suffix := ""
		if j := strings.Index(decl, "</name>"); j >= 0 {
			suffix = decl[j+len("</name>"):]
		}
		decl = decl[:i] + " " + suffix
	}
	decl = tagPattern.ReplaceAllString(decl, "")
	return Binding{
		Name:  p.Name,
		Type:  strings.Join(strings.Fields(decl), " "),
		PType: p.PType,
		Len:   p.Len,
		Group: p.Group,
	}
}
