package arch

import (
	"fmt"

	"github.com/archview/archview/pkg/xmltree"
)

// build converts the generic element tree into a fully linked Arch. It maps
// every recognized section, resolves name-based block references into
// clones, binds tile sites to their block roots, and constructs the lookup
// indexes. The returned model is complete or the error names the first
// violation found in document order.
func build(root *xmltree.Element) (*Arch, error) {
	if root.Name != "architecture" {
		return nil, &SchemaError{Element: root.Name, Attribute: "architecture", RawValue: root.Name, Line: root.Line, Col: root.Col}
	}

	a := &Arch{}
	var err error
	for _, c := range root.Children {
		switch c.Name {
		case "models":
			a.Models, err = mapModels(c)
		case "tiles":
			a.Tiles, err = mapTiles(c)
		case "layout":
			a.Layouts, err = mapLayouts(c)
		case "device":
			a.Device, err = mapDevice(c)
		case "switchlist":
			a.Switches, err = mapSwitches(c)
		case "segmentlist":
			a.Segments, err = mapSegments(c)
		case "complexblocklist":
			for _, pb := range c.ChildrenNamed("pb_type") {
				var b *BlockType
				b, err = mapBlockType(pb)
				if err != nil {
					break
				}
				a.Blocks = append(a.Blocks, b)
			}
		default:
			a.Extensions = append(a.Extensions, c)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := link(a); err != nil {
		return nil, err
	}
	return a, nil
}

// link resolves every deferred name and builds the Arch lookup maps.
func link(a *Arch) error {
	a.blockByName = make(map[string]*BlockType, len(a.Blocks))
	for _, b := range a.Blocks {
		if b.refOnly {
			return &UnresolvedReferenceError{Kind: "pb_type", Name: b.Name, Referrer: "complexblocklist"}
		}
		if _, dup := a.blockByName[b.Name]; dup {
			return &DuplicateNameError{Kind: "pb_type", Name: b.Name}
		}
		a.blockByName[b.Name] = b
	}

	// Child references resolve against the top-level definitions. The
	// in-progress set catches definitions that reach themselves again
	// through any chain of references.
	res := &resolver{defs: a.blockByName, active: make(map[string]bool)}
	for _, b := range a.Blocks {
		res.active[b.Name] = true
		err := res.resolveBlock(b, []string{b.Name})
		delete(res.active, b.Name)
		if err != nil {
			return err
		}
	}

	a.tileByName = make(map[string]*Tile, len(a.Tiles))
	for _, t := range a.Tiles {
		a.tileByName[t.Name] = t
		for _, st := range t.SubTiles {
			for _, s := range st.Sites {
				blk, ok := a.blockByName[s.BlockName]
				if !ok {
					return &UnresolvedReferenceError{Kind: "pb_type", Name: s.BlockName, Referrer: "tile " + t.Name}
				}
				s.Block = blk
			}
		}
	}

	a.layoutByName = make(map[string]*Layout, len(a.Layouts))
	for _, l := range a.Layouts {
		a.layoutByName[l.Name] = l
		for _, p := range l.Places {
			if p.TileName == "EMPTY" {
				continue
			}
			if _, ok := a.tileByName[p.TileName]; !ok {
				return &UnresolvedReferenceError{Kind: "tile", Name: p.TileName, Referrer: "layout " + l.Name}
			}
		}
	}
	return nil
}

type resolver struct {
	defs   map[string]*BlockType
	active map[string]bool
}

// resolveBlock walks one block's modes depth-first, replacing refOnly
// children with clones of their definitions. path carries the reference
// chain for cycle reporting; active holds the definition names currently
// being expanded on this walk.
func (r *resolver) resolveBlock(b *BlockType, path []string) error {
	for _, m := range b.Modes {
		for i, c := range m.Children {
			wasRef := c.refOnly
			if wasRef {
				def, ok := r.defs[c.Name]
				if !ok {
					return &UnresolvedReferenceError{Kind: "pb_type", Name: c.Name, Referrer: referrer(b, m)}
				}
				if r.active[c.Name] {
					return &CyclicHierarchyError{Path: append(append([]string(nil), path...), c.Name)}
				}
				clone := cloneBlock(def)
				clone.NumPB = c.NumPB
				m.Children[i] = clone
				c = clone
			}
			// Only expanded references can re-enter a definition, so only
			// they join the active set; inline children just recurse.
			if wasRef {
				r.active[c.Name] = true
			}
			err := r.resolveBlock(c, append(path, c.Name))
			if wasRef {
				delete(r.active, c.Name)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func referrer(b *BlockType, m *Mode) string {
	if m.Name == "" {
		return fmt.Sprintf("pb_type %s", b.Name)
	}
	return fmt.Sprintf("pb_type %s mode %s", b.Name, m.Name)
}

// cloneBlock deep-copies a block definition so every instantiation owns its
// subtree. Ports and modes are copied; timing values and extension elements
// are shared because they are never mutated.
func cloneBlock(src *BlockType) *BlockType {
	dst := &BlockType{
		Name:       src.Name,
		NumPB:      src.NumPB,
		BlifModel:  src.BlifModel,
		Class:      src.Class,
		ExtraAttrs: src.ExtraAttrs,
		Extensions: src.Extensions,
	}
	dst.Ports = make([]*Port, len(src.Ports))
	dst.portByName = make(map[string]*Port, len(src.Ports))
	for i, p := range src.Ports {
		cp := *p
		dst.Ports[i] = &cp
		dst.portByName[cp.Name] = &cp
	}
	dst.Modes = make([]*Mode, len(src.Modes))
	dst.modeByName = make(map[string]*Mode, len(src.Modes))
	for i, m := range src.Modes {
		cm := &Mode{
			Name:          m.Name,
			Interconnects: m.Interconnects,
			Extensions:    m.Extensions,
		}
		cm.Children = make([]*BlockType, len(m.Children))
		for j, c := range m.Children {
			if c.refOnly {
				ref := *c
				cm.Children[j] = &ref
			} else {
				cm.Children[j] = cloneBlock(c)
			}
		}
		dst.Modes[i] = cm
		if cm.Name != "" {
			dst.modeByName[cm.Name] = cm
		}
	}
	return dst
}
