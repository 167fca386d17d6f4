package arch

import (
	"github.com/archview/archview/pkg/xmltree"
)

// mapBlockType converts one <pb_type> element, recursing into nested
// children. Bodiless children (name attribute only, no child elements) are
// kept as references for Build to resolve against the top-level definitions.
func mapBlockType(el *xmltree.Element) (*BlockType, error) {
	r := readAttrs(el)
	name, err := r.str("name")
	if err != nil {
		return nil, err
	}
	numPB, err := r.intOr("num_pb", 1)
	if err != nil {
		return nil, err
	}
	if numPB < 1 {
		return nil, &SchemaError{Element: el.Name, Attribute: "num_pb", RawValue: r.strOr("num_pb", ""), Line: el.Line, Col: el.Col}
	}

	b := &BlockType{
		Name:      name,
		NumPB:     numPB,
		BlifModel: r.strOr("blif_model", ""),
		Class:     r.strOr("class", ""),
	}
	b.ExtraAttrs = r.rest()

	if len(el.Children) == 0 && b.BlifModel == "" && b.Class == "" {
		b.refOnly = true
		return b, nil
	}

	// Children split three ways: ports, declared modes, and the direct
	// child set that forms the implicit mode when no <mode> is declared.
	implicit := &Mode{}
	for _, c := range el.Children {
		switch c.Name {
		case "input", "output", "clock":
			p, err := mapPort(c)
			if err != nil {
				return nil, err
			}
			b.Ports = append(b.Ports, p)
		case "mode":
			m, err := mapMode(c)
			if err != nil {
				return nil, err
			}
			b.Modes = append(b.Modes, m)
		case "pb_type":
			child, err := mapBlockType(c)
			if err != nil {
				return nil, err
			}
			implicit.Children = append(implicit.Children, child)
		case "interconnect":
			ics, exts, err := mapInterconnects(c)
			if err != nil {
				return nil, err
			}
			implicit.Interconnects = append(implicit.Interconnects, ics...)
			implicit.Extensions = append(implicit.Extensions, exts...)
		default:
			b.Extensions = append(b.Extensions, c)
		}
	}

	if len(b.Modes) > 0 {
		// Declared modes own all children; a bare child next to a <mode>
		// has no well-defined mode membership.
		if len(implicit.Children) > 0 || len(implicit.Interconnects) > 0 {
			return nil, &SchemaError{Element: "pb_type", Attribute: "mode", RawValue: name, Line: el.Line, Col: el.Col}
		}
	} else {
		b.Modes = []*Mode{implicit}
	}

	if err := indexBlock(b); err != nil {
		return nil, err
	}
	return b, nil
}

// indexBlock builds the block's lookup maps and enforces name uniqueness
// for ports, modes, and children within each mode.
func indexBlock(b *BlockType) error {
	b.portByName = make(map[string]*Port, len(b.Ports))
	for _, p := range b.Ports {
		if _, dup := b.portByName[p.Name]; dup {
			return &DuplicateNameError{Kind: "port", Name: p.Name, Scope: "pb_type " + b.Name}
		}
		b.portByName[p.Name] = p
	}
	b.modeByName = make(map[string]*Mode, len(b.Modes))
	for _, m := range b.Modes {
		if m.Name != "" {
			if _, dup := b.modeByName[m.Name]; dup {
				return &DuplicateNameError{Kind: "mode", Name: m.Name, Scope: "pb_type " + b.Name}
			}
			b.modeByName[m.Name] = m
		}
		seen := make(map[string]bool, len(m.Children))
		for _, c := range m.Children {
			if seen[c.Name] {
				return &DuplicateNameError{Kind: "pb_type", Name: c.Name, Scope: "pb_type " + b.Name}
			}
			seen[c.Name] = true
		}
	}
	return nil
}

func mapMode(el *xmltree.Element) (*Mode, error) {
	r := readAttrs(el)
	name, err := r.str("name")
	if err != nil {
		return nil, err
	}
	m := &Mode{Name: name}
	for _, c := range el.Children {
		switch c.Name {
		case "pb_type":
			child, err := mapBlockType(c)
			if err != nil {
				return nil, err
			}
			m.Children = append(m.Children, child)
		case "interconnect":
			ics, exts, err := mapInterconnects(c)
			if err != nil {
				return nil, err
			}
			m.Interconnects = append(m.Interconnects, ics...)
			m.Extensions = append(m.Extensions, exts...)
		default:
			m.Extensions = append(m.Extensions, c)
		}
	}
	return m, nil
}

func mapPort(el *xmltree.Element) (*Port, error) {
	r := readAttrs(el)
	name, err := r.str("name")
	if err != nil {
		return nil, err
	}
	width, err := r.intAttr("num_pins")
	if err != nil {
		return nil, err
	}
	if width < 1 {
		return nil, &SchemaError{Element: el.Name, Attribute: "num_pins", RawValue: r.strOr("num_pins", ""), Line: el.Line, Col: el.Col}
	}
	global, err := r.boolOr("is_non_clock_global", false)
	if err != nil {
		return nil, err
	}

	var dir PortDir
	switch el.Name {
	case "input":
		dir = DirInput
	case "output":
		dir = DirOutput
	case "clock":
		dir = DirClock
	}

	p := &Port{
		Name:           name,
		Dir:            dir,
		Width:          width,
		Equivalent:     r.strOr("equivalent", ""),
		Class:          r.strOr("port_class", ""),
		NonClockGlobal: global,
	}
	p.ExtraAttrs = r.rest()
	for _, c := range el.Children {
		if isTimingElement(c.Name) {
			p.Timing = append(p.Timing, mapTiming(c))
		} else {
			p.Extensions = append(p.Extensions, c)
		}
	}
	return p, nil
}

// mapInterconnects converts the children of one <interconnect> element.
// Unrecognized children are returned so the owning mode keeps them in its
// extension bag.
func mapInterconnects(el *xmltree.Element) ([]*Interconnect, []*xmltree.Element, error) {
	var out []*Interconnect
	var exts []*xmltree.Element
	for _, c := range el.Children {
		var kind InterconnectKind
		switch c.Name {
		case "direct":
			kind = KindDirect
		case "mux":
			kind = KindMux
		case "complete":
			kind = KindComplete
		default:
			exts = append(exts, c)
			continue
		}
		ic, err := mapInterconnect(c, kind)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, ic)
	}
	return out, exts, nil
}

func mapInterconnect(el *xmltree.Element, kind InterconnectKind) (*Interconnect, error) {
	r := readAttrs(el)
	name, err := r.str("name")
	if err != nil {
		return nil, err
	}
	input, err := r.str("input")
	if err != nil {
		return nil, err
	}
	output, err := r.str("output")
	if err != nil {
		return nil, err
	}

	ic := &Interconnect{
		Kind:   kind,
		Name:   name,
		Input:  input,
		Output: output,
		Line:   el.Line,
	}
	ic.ExtraAttrs = r.rest()
	for _, c := range el.Children {
		switch {
		case c.Name == "pack_pattern":
			pp := PackPattern{}
			pp.Name, _ = c.Attr("name")
			pp.InPort, _ = c.Attr("in_port")
			pp.OutPort, _ = c.Attr("out_port")
			ic.PackPatterns = append(ic.PackPatterns, pp)
		case isTimingElement(c.Name):
			ic.Timing = append(ic.Timing, mapTiming(c))
		default:
			ic.Extensions = append(ic.Extensions, c)
		}
	}
	return ic, nil
}
