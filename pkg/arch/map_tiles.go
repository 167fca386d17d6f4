package arch

import (
	"github.com/archview/archview/pkg/xmltree"
)

// mapTiles converts the <tiles> section and enforces global tile-name
// uniqueness.
func mapTiles(el *xmltree.Element) ([]*Tile, error) {
	var tiles []*Tile
	seen := make(map[string]bool)
	for _, c := range el.ChildrenNamed("tile") {
		t, err := mapTile(c)
		if err != nil {
			return nil, err
		}
		if seen[t.Name] {
			return nil, &DuplicateNameError{Kind: "tile", Name: t.Name}
		}
		seen[t.Name] = true
		tiles = append(tiles, t)
	}
	return tiles, nil
}

func mapTile(el *xmltree.Element) (*Tile, error) {
	r := readAttrs(el)
	name, err := r.str("name")
	if err != nil {
		return nil, err
	}
	width, err := r.intOr("width", 1)
	if err != nil {
		return nil, err
	}
	height, err := r.intOr("height", 1)
	if err != nil {
		return nil, err
	}
	area, err := r.floatOr("area", 0)
	if err != nil {
		return nil, err
	}
	if width < 1 || height < 1 {
		return nil, &SchemaError{Element: el.Name, Attribute: "width", RawValue: r.strOr("width", r.strOr("height", "")), Line: el.Line, Col: el.Col}
	}

	t := &Tile{Name: name, Width: width, Height: height, Area: area}
	t.ExtraAttrs = r.rest()

	for _, c := range el.Children {
		switch c.Name {
		case "sub_tile":
			st, err := mapSubTile(c)
			if err != nil {
				return nil, err
			}
			t.SubTiles = append(t.SubTiles, st)
		case "equivalent_sites":
			// Single-site shorthand: a tile with sites but no sub_tile
			// wrapper acts as one sub-tile of capacity 1.
			st := &SubTile{Name: name, Capacity: 1}
			if err := mapSites(c, st); err != nil {
				return nil, err
			}
			t.SubTiles = append(t.SubTiles, st)
		default:
			t.Extensions = append(t.Extensions, c)
		}
	}
	return t, nil
}

func mapSubTile(el *xmltree.Element) (*SubTile, error) {
	r := readAttrs(el)
	name, err := r.str("name")
	if err != nil {
		return nil, err
	}
	capacity, err := r.intOr("capacity", 1)
	if err != nil {
		return nil, err
	}

	st := &SubTile{Name: name, Capacity: capacity}
	st.ExtraAttrs = r.rest()

	for _, c := range el.Children {
		switch c.Name {
		case "equivalent_sites":
			if err := mapSites(c, st); err != nil {
				return nil, err
			}
		case "input", "output", "clock":
			p, err := mapPort(c)
			if err != nil {
				return nil, err
			}
			st.Ports = append(st.Ports, p)
		default:
			st.Extensions = append(st.Extensions, c)
		}
	}
	return st, nil
}

func mapSites(el *xmltree.Element, st *SubTile) error {
	for _, c := range el.ChildrenNamed("site") {
		r := readAttrs(c)
		pb, err := r.str("pb_type")
		if err != nil {
			return err
		}
		site := &Site{BlockName: pb}
		site.ExtraAttrs = r.rest()
		site.Extensions = c.Children
		st.Sites = append(st.Sites, site)
	}
	return nil
}
