// Package geometry computes a renderer-agnostic layout for one block
// hierarchy: bounding rectangles for every visible block, pin anchor
// positions on block boundaries, and a routing plan of wire segments with
// synthetic mux nodes and crossing-reduced attachment orders.
//
// All coordinates are zoom-independent logical units; scaling to pixels is
// the rendering collaborator's concern. Building is a pure function of
// (block, presentation state): the model is never mutated and identical
// inputs produce identical plans, so output can be cached by content key.
package geometry

import (
	"fmt"

	"github.com/archview/archview/pkg/arch"
	"github.com/archview/archview/pkg/netgraph"
)

// Logical-unit constants for block measurement. A collapsed block shows
// only its header; an expanded leaf must leave room for one slot per pin.
const (
	Padding       = 50.0
	HeaderHeight  = 35.0
	MinBlockW     = 80.0
	MinBlockH     = 120.0
	MinPinSpacing = 25.0
	MuxGutter     = 70.0
)

// DefaultPasses bounds the crossing-reduction sweeps per side.
const DefaultPasses = 4

// Point is a position in logical units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle, origin at the top-left.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PinAnchor is the boundary position of one pin. Anchors are listed in
// port declaration order, pin index ascending within each port.
type PinAnchor struct {
	Port  string `json:"port"`
	Index int    `json:"index"`
	Dir   string `json:"dir"` // input, output, clock
	At    Point  `json:"at"`
}

// Block is the placed geometry of one block instance. Children are present
// only when the block is expanded; a collapsed block is a header-height
// placeholder regardless of its internal complexity.
type Block struct {
	Path      string      `json:"path"` // dotted instance path from the root
	Type      string      `json:"type"` // block type name
	Instance  string      `json:"instance"`
	Mode      string      `json:"mode,omitempty"`
	Collapsed bool        `json:"collapsed,omitempty"`
	Rect      Rect        `json:"rect"`
	Pins      []PinAnchor `json:"pins,omitempty"`
	Children  []*Block    `json:"children,omitempty"`

	block *arch.BlockType
}

// Pin returns the anchor of one pin, or false when the block has no such
// pin on its boundary.
func (b *Block) Pin(port string, index int) (PinAnchor, bool) {
	for _, p := range b.Pins {
		if p.Port == port && p.Index == index {
			return p, true
		}
	}
	return PinAnchor{}, false
}

// Mux is a synthetic selector node produced by one mux declaration for one
// sink pin.
type Mux struct {
	Block string `json:"block"` // path of the block whose mode declared it
	Name  string `json:"name"`  // interconnect name
	Sink  string `json:"sink"`  // sink pin, reference syntax
	At    Point  `json:"at"`
}

// Segment is one straight wire piece of the routing plan.
type Segment struct {
	Kind string `json:"kind"` // direct, mux, complete
	Name string `json:"name"` // interconnect name
	From Point  `json:"from"`
	To   Point  `json:"to"`
}

// Ordering records the crossing-reduced left-to-right attachment order of
// one mux or complete bundle, for renderers that draw bus-style fans.
type Ordering struct {
	Block   string   `json:"block"`
	Name    string   `json:"name"`
	Sources []string `json:"sources"`
	Sinks   []string `json:"sinks"`
}

// Plan is the complete immutable geometry of one build.
type Plan struct {
	Root   *Block     `json:"root"`
	Muxes  []Mux      `json:"muxes,omitempty"`
	Wires  []Segment  `json:"wires,omitempty"`
	Orders []Ordering `json:"orders,omitempty"`
}

// State is the presentation state a build is computed against. The zero
// value expands everything with default modes.
type State struct {
	// Modes selects the active mode per instance path; unlisted paths use
	// the default mode.
	Modes map[string]string
	// Collapsed marks instance paths rendered as placeholders.
	Collapsed map[string]bool
	// Passes bounds the crossing-reduction sweeps; 0 means DefaultPasses.
	Passes int
}

func (s State) mode(path string) string {
	return s.Modes[path]
}

func (s State) collapsed(path string) bool {
	return s.Collapsed[path]
}

func (s State) passes() int {
	if s.Passes <= 0 {
		return DefaultPasses
	}
	return s.Passes
}

// Build computes the full plan for one block hierarchy root. Mode names in
// the state are validated against the model; an unknown mode or a failing
// interconnect resolution aborts the build with the resolver's error, never
// a partial plan.
func Build(b *arch.BlockType, state State) (*Plan, error) {
	eng := &engine{state: state, sizes: make(map[string]Point)}

	root, err := eng.layout(b, b.Name, b.Name, Point{})
	if err != nil {
		return nil, err
	}
	plan := &Plan{Root: root}
	if err := eng.route(root, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

type engine struct {
	state State
	sizes map[string]Point // measurement memo keyed by instance path
}

// layout measures and places one block instance and, when expanded, its
// children: a single child type stacks vertically, several types form
// columns, replicas always stack within their column.
func (e *engine) layout(b *arch.BlockType, path, instance string, at Point) (*Block, error) {
	m, ok := b.Mode(e.state.mode(path))
	if !ok {
		return nil, &arch.UnresolvedReferenceError{Kind: "mode", Name: e.state.mode(path), Referrer: "pb_type " + b.Name}
	}

	size := e.measure(b, path)
	blk := &Block{
		Path:      path,
		Type:      b.Name,
		Instance:  instance,
		Mode:      m.Name,
		Collapsed: e.state.collapsed(path) && len(m.Children) > 0,
		Rect:      Rect{X: at.X, Y: at.Y, Width: size.X, Height: size.Y},
		block:     b,
	}
	anchorPins(blk)
	if blk.Collapsed {
		return blk, nil
	}

	cursorX := at.X + Padding
	startY := at.Y + HeaderHeight + Padding
	for _, c := range m.Children {
		cursorY := startY
		colW := 0.0
		for i := 0; i < c.NumPB; i++ {
			inst := netgraph.InstanceName(c.Name, i, c.NumPB)
			childPath := path + "." + inst
			child, err := e.layout(c, childPath, inst, Point{X: cursorX, Y: cursorY})
			if err != nil {
				return nil, err
			}
			blk.Children = append(blk.Children, child)
			if child.Rect.Width > colW {
				colW = child.Rect.Width
			}
			cursorY += child.Rect.Height + Padding
		}
		if len(m.Children) > 1 {
			cursorX += colW + Padding
		}
	}
	return blk, nil
}

// measure computes the size of one instance without placing it, honoring
// the collapse state. Sizes are memoized per path.
func (e *engine) measure(b *arch.BlockType, path string) Point {
	if s, ok := e.sizes[path]; ok {
		return s
	}
	s := e.measureUncached(b, path)
	e.sizes[path] = s
	return s
}

func (e *engine) measureUncached(b *arch.BlockType, path string) Point {
	m, ok := b.Mode(e.state.mode(path))
	if !ok {
		m = b.Modes[0]
	}

	if e.state.collapsed(path) && len(m.Children) > 0 {
		return Point{X: max(MinBlockW, headerWidth(b)), Y: HeaderHeight}
	}

	if len(m.Children) == 0 {
		in, out, clk := pinCounts(b)
		h := HeaderHeight
		if n := max(in, out); n > 0 {
			h += float64(n+1) * MinPinSpacing
		}
		w := max(MinBlockW, headerWidth(b))
		if clk > 0 {
			w = max(w, float64(clk+1)*MinPinSpacing)
		}
		return Point{X: w, Y: max(h, MinBlockH)}
	}

	// Vertical when a single child type, columns otherwise; replicas of a
	// child always stack.
	var totalW, totalH float64
	for ci, c := range m.Children {
		var instW, instH float64
		for i := 0; i < c.NumPB; i++ {
			inst := netgraph.InstanceName(c.Name, i, c.NumPB)
			s := e.measure(c, path+"."+inst)
			instW = max(instW, s.X)
			instH = max(instH, s.Y)
		}
		stackH := instH*float64(c.NumPB) + Padding*float64(c.NumPB-1)
		if len(m.Children) == 1 {
			totalW = instW
			totalH = stackH
		} else {
			if ci > 0 {
				totalW += Padding
			}
			totalW += instW
			totalH = max(totalH, stackH)
		}
	}

	gutter := 0.0
	if muxCount(m) > 0 {
		gutter = MuxGutter
	}
	in, out, _ := pinCounts(b)
	minPortH := float64(max(in, out)+1) * MinPinSpacing

	w := max(totalW+2*Padding+gutter, max(MinBlockW, headerWidth(b)))
	h := max(HeaderHeight+2*Padding+totalH, max(MinBlockH, minPortH))
	return Point{X: w, Y: h}
}

func muxCount(m *arch.Mode) int {
	n := 0
	for _, ic := range m.Interconnects {
		if ic.Kind == arch.KindMux {
			n++
		}
	}
	return n
}

func pinCounts(b *arch.BlockType) (in, out, clk int) {
	for _, p := range b.Ports {
		switch p.Dir {
		case arch.DirInput:
			in += p.Width
		case arch.DirOutput:
			out += p.Width
		case arch.DirClock:
			clk += p.Width
		}
	}
	return in, out, clk
}

// headerWidth approximates the label footprint of the block header.
func headerWidth(b *arch.BlockType) float64 {
	label := b.Name
	if b.BlifModel != "" && len(b.BlifModel) > len(label) {
		label = b.BlifModel
	}
	return float64(len(label))*8.5 + 30
}

// anchorPins distributes the block's pins along its boundary: inputs down
// the left edge, outputs down the right, clocks along the bottom. Order is
// port declaration order, pin index ascending.
func anchorPins(blk *Block) {
	in, out, clk := pinCounts(blk.block)
	body := blk.Rect.Height - HeaderHeight
	if body < 0 {
		body = blk.Rect.Height
	}
	top := blk.Rect.Y + blk.Rect.Height - body

	ii, oi, ci := 0, 0, 0
	for _, p := range blk.block.Ports {
		for i := 0; i < p.Width; i++ {
			var a PinAnchor
			switch p.Dir {
			case arch.DirInput:
				ii++
				a = PinAnchor{Port: p.Name, Index: i, Dir: "input", At: Point{
					X: blk.Rect.X,
					Y: top + body*float64(ii)/float64(in+1),
				}}
			case arch.DirOutput:
				oi++
				a = PinAnchor{Port: p.Name, Index: i, Dir: "output", At: Point{
					X: blk.Rect.X + blk.Rect.Width,
					Y: top + body*float64(oi)/float64(out+1),
				}}
			case arch.DirClock:
				ci++
				a = PinAnchor{Port: p.Name, Index: i, Dir: "clock", At: Point{
					X: blk.Rect.X + blk.Rect.Width*float64(ci)/float64(clk+1),
					Y: blk.Rect.Y + blk.Rect.Height,
				}}
			}
			blk.Pins = append(blk.Pins, a)
		}
	}
}

func pinKey(p netgraph.Pin) string {
	return fmt.Sprintf("%s.%s[%d]", p.Instance, p.Port, p.Index)
}
