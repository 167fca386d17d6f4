package arch

import (
	"github.com/archview/archview/pkg/xmltree"
)

// mapLayouts converts the <layout> section into its named variants.
func mapLayouts(el *xmltree.Element) ([]*Layout, error) {
	var layouts []*Layout
	seen := make(map[string]bool)
	for _, c := range el.Children {
		var l *Layout
		var err error
		switch c.Name {
		case "fixed_layout":
			l, err = mapFixedLayout(c)
		case "auto_layout":
			l, err = mapAutoLayout(c)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		if seen[l.Name] {
			return nil, &DuplicateNameError{Kind: "layout", Name: l.Name}
		}
		seen[l.Name] = true
		layouts = append(layouts, l)
	}
	return layouts, nil
}

func mapFixedLayout(el *xmltree.Element) (*Layout, error) {
	r := readAttrs(el)
	name, err := r.str("name")
	if err != nil {
		return nil, err
	}
	width, err := r.intAttr("width")
	if err != nil {
		return nil, err
	}
	height, err := r.intAttr("height")
	if err != nil {
		return nil, err
	}
	l := &Layout{Kind: FixedLayout, Name: name, Width: width, Height: height}
	l.ExtraAttrs = r.rest()
	if err := mapPlaces(el, l); err != nil {
		return nil, err
	}
	return l, nil
}

func mapAutoLayout(el *xmltree.Element) (*Layout, error) {
	r := readAttrs(el)
	aspect, err := r.floatOr("aspect_ratio", 1.0)
	if err != nil {
		return nil, err
	}
	if aspect <= 0 {
		return nil, &SchemaError{Element: el.Name, Attribute: "aspect_ratio", RawValue: r.strOr("aspect_ratio", ""), Line: el.Line, Col: el.Col}
	}
	l := &Layout{Kind: AutoLayout, Name: r.strOr("name", "auto"), AspectRatio: aspect}
	l.ExtraAttrs = r.rest()
	if err := mapPlaces(el, l); err != nil {
		return nil, err
	}
	return l, nil
}

// placeKinds maps grid-location element names to their placement rules.
var placeKinds = map[string]PlaceKind{
	"fill":      PlaceFill,
	"perimeter": PlacePerimeter,
	"corners":   PlaceCorners,
	"single":    PlaceSingle,
	"col":       PlaceCol,
	"row":       PlaceRow,
	"region":    PlaceRegion,
}

func mapPlaces(el *xmltree.Element, l *Layout) error {
	for _, c := range el.Children {
		kind, ok := placeKinds[c.Name]
		if !ok {
			continue
		}
		p, err := mapPlace(c, kind)
		if err != nil {
			return err
		}
		l.Places = append(l.Places, p)
	}
	return nil
}

func mapPlace(el *xmltree.Element, kind PlaceKind) (Place, error) {
	r := readAttrs(el)
	tile, err := r.str("type")
	if err != nil {
		return Place{}, err
	}
	priority, err := r.intAttr("priority")
	if err != nil {
		return Place{}, err
	}

	p := Place{
		Kind:     kind,
		TileName: tile,
		Priority: priority,
		X:        r.strOr("x", ""),
		Y:        r.strOr("y", ""),
		StartX:   r.strOr("startx", ""),
		StartY:   r.strOr("starty", ""),
		EndX:     r.strOr("endx", ""),
		EndY:     r.strOr("endy", ""),
		IncrX:    r.strOr("incrx", ""),
		IncrY:    r.strOr("incry", ""),
		RepeatX:  r.strOr("repeatx", ""),
		RepeatY:  r.strOr("repeaty", ""),
	}
	p.ExtraAttrs = r.rest()

	// Positional rules need their coordinates up front; range rules default
	// them at placement time.
	if kind == PlaceSingle {
		if p.X == "" || p.Y == "" {
			return Place{}, &SchemaError{Element: el.Name, Attribute: "x", Line: el.Line, Col: el.Col}
		}
	}
	if kind == PlaceCol && p.StartX == "" {
		return Place{}, &SchemaError{Element: el.Name, Attribute: "startx", Line: el.Line, Col: el.Col}
	}
	if kind == PlaceRow && p.StartY == "" {
		return Place{}, &SchemaError{Element: el.Name, Attribute: "starty", Line: el.Line, Col: el.Col}
	}
	return p, nil
}
