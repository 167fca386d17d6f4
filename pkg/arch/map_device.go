package arch

import (
	"strings"

	"github.com/archview/archview/pkg/xmltree"
)

func mapDevice(el *xmltree.Element) (Device, error) {
	var d Device
	for _, c := range el.Children {
		r := readAttrs(c)
		var err error
		switch c.Name {
		case "sizing":
			d.RMinWNMOS, err = r.floatOr("R_minW_nmos", 0)
			if err == nil {
				d.RMinWPMOS, err = r.floatOr("R_minW_pmos", 0)
			}
		case "area":
			d.GridLogicTileArea, err = r.floatOr("grid_logic_tile_area", 0)
		case "chan_width_distr":
			for _, axis := range c.Children {
				distr, derr := mapDistr(axis)
				if derr != nil {
					return Device{}, derr
				}
				switch axis.Name {
				case "x":
					d.ChanWidthDistrX = distr
				case "y":
					d.ChanWidthDistrY = distr
				}
			}
		case "switch_block":
			d.SwitchBlockType = r.strOr("type", "")
			d.SwitchBlockFS, err = r.intOr("fs", 0)
		case "connection_block":
			d.InputSwitchName = r.strOr("input_switch_name", "")
		default:
			d.Extensions = append(d.Extensions, c)
			continue
		}
		if err != nil {
			return Device{}, err
		}
		d.ExtraAttrs = append(d.ExtraAttrs, r.rest()...)
	}
	return d, nil
}

func mapDistr(el *xmltree.Element) (Distr, error) {
	r := readAttrs(el)
	var d Distr
	var err error
	d.Kind = r.strOr("distr", "uniform")
	if d.Peak, err = r.floatOr("peak", 1); err != nil {
		return Distr{}, err
	}
	if d.Width, err = r.floatOr("width", 0); err != nil {
		return Distr{}, err
	}
	if d.Xpeak, err = r.floatOr("xpeak", 0); err != nil {
		return Distr{}, err
	}
	if d.DC, err = r.floatOr("dc", 0); err != nil {
		return Distr{}, err
	}
	d.ExtraAttrs = r.rest()
	return d, nil
}

func mapModels(el *xmltree.Element) ([]Model, error) {
	var models []Model
	seen := make(map[string]bool)
	for _, c := range el.ChildrenNamed("model") {
		r := readAttrs(c)
		name, err := r.str("name")
		if err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, &DuplicateNameError{Kind: "model", Name: name}
		}
		seen[name] = true

		m := Model{Name: name}
		if in := c.FirstChild("input_ports"); in != nil {
			m.Inputs = portNames(in)
		}
		if out := c.FirstChild("output_ports"); out != nil {
			m.Outputs = portNames(out)
		}
		models = append(models, m)
	}
	return models, nil
}

func portNames(el *xmltree.Element) []string {
	var names []string
	for _, p := range el.ChildrenNamed("port") {
		if n, ok := p.Attr("name"); ok {
			names = append(names, n)
		}
	}
	return names
}

func mapSwitches(el *xmltree.Element) ([]Switch, error) {
	var switches []Switch
	for _, c := range el.ChildrenNamed("switch") {
		r := readAttrs(c)
		name, err := r.str("name")
		if err != nil {
			return nil, err
		}
		s := Switch{Name: name, Type: r.strOr("type", "")}
		if s.R, err = r.floatOr("R", 0); err != nil {
			return nil, err
		}
		if s.CIn, err = r.floatOr("Cin", 0); err != nil {
			return nil, err
		}
		if s.COut, err = r.floatOr("Cout", 0); err != nil {
			return nil, err
		}
		if s.Tdel, err = r.floatOr("Tdel", 0); err != nil {
			return nil, err
		}
		s.ExtraAttrs = r.rest()
		switches = append(switches, s)
	}
	return switches, nil
}

func mapSegments(el *xmltree.Element) ([]Segment, error) {
	var segments []Segment
	for _, c := range el.ChildrenNamed("segment") {
		r := readAttrs(c)
		s := Segment{Name: r.strOr("name", "")}
		var err error
		if s.Length, err = segmentLength(r); err != nil {
			return nil, err
		}
		s.Type = r.strOr("type", "")
		if s.Freq, err = r.floatOr("freq", 0); err != nil {
			return nil, err
		}
		if s.RMetal, err = r.floatOr("Rmetal", 0); err != nil {
			return nil, err
		}
		if s.CMetal, err = r.floatOr("Cmetal", 0); err != nil {
			return nil, err
		}
		s.ExtraAttrs = r.rest()
		s.Extensions = c.Children
		segments = append(segments, s)
	}
	return segments, nil
}

// segmentLength handles the "longline" spelling, which means the segment
// spans the whole channel; 0 encodes that.
func segmentLength(r *attrReader) (int, error) {
	raw := r.strOr("length", "1")
	if strings.EqualFold(raw, "longline") {
		return 0, nil
	}
	n, err := r.intOr("length", 1)
	if err != nil {
		return 0, err
	}
	return n, nil
}
