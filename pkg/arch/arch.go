package arch

import (
	"github.com/archview/archview/pkg/xmltree"
)

// PortDir is the direction of a block port.
type PortDir int

const (
	DirInput PortDir = iota
	DirOutput
	DirClock
)

// String returns the dialect's element name for the direction.
func (d PortDir) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirClock:
		return "clock"
	}
	return "unknown"
}

// Port is a named bundle of pins on a block type. Width is always >= 1;
// the port defines pins indexed 0..Width-1.
type Port struct {
	Name  string
	Dir   PortDir
	Width int

	// Equivalent, Class, and NonClockGlobal are VTR annotations stored
	// verbatim; the core does not interpret them.
	Equivalent     string
	Class          string
	NonClockGlobal bool

	Timing     []Timing
	ExtraAttrs []xmltree.Attr
	Extensions []*xmltree.Element
}

// InterconnectKind distinguishes the three canonical wiring patterns.
type InterconnectKind int

const (
	// KindDirect wires source pins to sink pins one-to-one, index-aligned.
	KindDirect InterconnectKind = iota
	// KindMux selects one of N source pins per sink pin.
	KindMux
	// KindComplete is a full crossbar between the source and sink sets.
	KindComplete
)

// String returns the dialect's element name for the kind.
func (k InterconnectKind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindMux:
		return "mux"
	case KindComplete:
		return "complete"
	}
	return "unknown"
}

// PackPattern is a packing hint attached to an interconnect; stored verbatim.
type PackPattern struct {
	Name    string
	InPort  string
	OutPort string
}

// Interconnect is a wiring declaration inside one mode of one block type.
// Input and Output hold the symbolic port-range text exactly as written
// (e.g. "ble[9:0].out"); package netgraph expands and validates them.
type Interconnect struct {
	Kind   InterconnectKind
	Name   string
	Input  string
	Output string

	PackPatterns []PackPattern
	Timing       []Timing
	ExtraAttrs   []xmltree.Attr
	Extensions   []*xmltree.Element

	// Line locates the declaration for diagnostics.
	Line int
}

// Timing is an opaque delay/capacitance annotation. Values holds every
// attribute that parses as a number; Attrs holds the rest (port references,
// matrix types) verbatim. The core never interprets either.
type Timing struct {
	Kind   string // element name, e.g. "delay_constant"
	Values map[string]float64
	Attrs  map[string]string
}

// Mode is a named partition of a block type's children and interconnects.
// Modes are mutually exclusive alternatives under the same parent; selecting
// one is a presentation-time choice and never mutates the model. A block
// type whose source declares no <mode> elements gets a single implicit mode
// with an empty name.
type Mode struct {
	Name          string
	Children      []*BlockType
	Interconnects []*Interconnect
	Extensions    []*xmltree.Element
}

// BlockType is a node in the recursive logic-block hierarchy (a pb_type in
// the source dialect). After Build returns, the hierarchy reachable from any
// tile root is a finite tree: every BlockType has exactly one parent and
// name-based child references have been instantiated in place.
type BlockType struct {
	Name      string
	NumPB     int // replication count; instances are Name[0..NumPB-1]
	BlifModel string
	Class     string

	Ports []*Port
	Modes []*Mode // never empty after Build; index 0 is the default

	ExtraAttrs []xmltree.Attr
	Extensions []*xmltree.Element

	portByName map[string]*Port
	modeByName map[string]*Mode

	// refOnly marks a bodiless child that names a top-level definition;
	// Build replaces it with a clone of that definition.
	refOnly bool
}

// Port returns the named port and whether it exists.
func (b *BlockType) Port(name string) (*Port, bool) {
	p, ok := b.portByName[name]
	return p, ok
}

// Mode returns the named mode. The empty string selects the default mode
// (the implicit mode, or the first declared one).
func (b *BlockType) Mode(name string) (*Mode, bool) {
	if name == "" {
		if len(b.Modes) == 0 {
			return nil, false
		}
		return b.Modes[0], true
	}
	m, ok := b.modeByName[name]
	return m, ok
}

// ModeNames lists the declared mode names in declaration order. A block
// with only the implicit mode yields a single empty string.
func (b *BlockType) ModeNames() []string {
	names := make([]string, len(b.Modes))
	for i, m := range b.Modes {
		names[i] = m.Name
	}
	return names
}

// SubTile is a placeable site group within a tile. Each equivalent site
// references one block-type root by name; Build resolves the references.
type SubTile struct {
	Name     string
	Capacity int
	Sites    []*Site
	Ports    []*Port

	ExtraAttrs []xmltree.Attr
	Extensions []*xmltree.Element
}

// Site links a sub-tile to the root block type it can implement.
type Site struct {
	BlockName string
	Block     *BlockType // resolved by Build

	ExtraAttrs []xmltree.Attr
	Extensions []*xmltree.Element
}

// Tile is a grid-placeable unit. Width and Height give its footprint in
// grid cells.
type Tile struct {
	Name     string
	Width    int
	Height   int
	Area     float64 // 0 when undeclared
	SubTiles []*SubTile

	ExtraAttrs []xmltree.Attr
	Extensions []*xmltree.Element
}

// RootBlock returns the block type implemented by the first site of the
// first sub-tile, which is what the geometry and export layers visualize.
func (t *Tile) RootBlock() (*BlockType, bool) {
	for _, st := range t.SubTiles {
		for _, s := range st.Sites {
			if s.Block != nil {
				return s.Block, true
			}
		}
	}
	return nil, false
}

// LayoutKind distinguishes fixed-size and aspect-ratio layout variants.
type LayoutKind int

const (
	FixedLayout LayoutKind = iota
	AutoLayout
)

// PlaceKind is the placement rule of one grid-location directive.
type PlaceKind int

const (
	PlaceFill PlaceKind = iota
	PlacePerimeter
	PlaceCorners
	PlaceSingle
	PlaceCol
	PlaceRow
	PlaceRegion
)

// Place is one grid-location directive of a layout variant. The coordinate
// fields hold arithmetic expressions over W/H (grid size) and w/h (tile
// size), evaluated by pkg/arch/expr at placement time. Empty fields mean
// "use the rule's default".
type Place struct {
	Kind     PlaceKind
	TileName string // "EMPTY" clears cells instead of placing a tile
	Priority int

	X, Y             string // single
	StartX, StartY   string // col/row/region
	EndX, EndY       string // region
	IncrX, IncrY     string
	RepeatX, RepeatY string

	ExtraAttrs []xmltree.Attr
}

// Layout is one named layout variant. A FixedLayout carries concrete
// dimensions; an AutoLayout carries an aspect ratio and is sized by the
// caller at query time.
type Layout struct {
	Kind        LayoutKind
	Name        string
	Width       int     // fixed only
	Height      int     // fixed only
	AspectRatio float64 // auto only (width / height)
	Places      []Place

	ExtraAttrs []xmltree.Attr
}

// Distr is one channel-width distribution function (device metadata).
type Distr struct {
	Kind  string // uniform, gaussian, pulse, delta
	Peak  float64
	Width float64
	Xpeak float64
	DC    float64

	ExtraAttrs []xmltree.Attr
}

// Device holds the global device parameters. All values are stored as
// declared; the core performs no sizing analysis.
type Device struct {
	RMinWNMOS         float64
	RMinWPMOS         float64
	GridLogicTileArea float64
	ChanWidthDistrX   Distr
	ChanWidthDistrY   Distr
	SwitchBlockType   string
	SwitchBlockFS     int
	InputSwitchName   string

	ExtraAttrs []xmltree.Attr
	Extensions []*xmltree.Element
}

// Model is a user-declared primitive model (blif model) with its port names.
type Model struct {
	Name    string
	Inputs  []string
	Outputs []string

	Extensions []*xmltree.Element
}

// Switch is a routing switch declaration; timing attributes are parsed as
// floats, everything else is preserved.
type Switch struct {
	Name string
	Type string
	R    float64
	CIn  float64
	COut float64
	Tdel float64

	ExtraAttrs []xmltree.Attr
}

// Segment is a routing segment declaration.
type Segment struct {
	Name   string
	Length int
	Type   string
	Freq   float64
	RMetal float64
	CMetal float64

	ExtraAttrs []xmltree.Attr
	Extensions []*xmltree.Element
}

// Arch is the fully built, immutable architecture model: the output of
// Parse and the sole input of the resolver, grid, and geometry layers.
// It must never be mutated after Build returns; re-parsing produces an
// entirely new model.
type Arch struct {
	Device   Device
	Layouts  []*Layout
	Tiles    []*Tile
	Models   []Model
	Switches []Switch
	Segments []Segment
	Blocks   []*BlockType // root complex blocks in declaration order

	// Extensions collects unknown top-level sections (e.g. <power>).
	Extensions []*xmltree.Element

	tileByName   map[string]*Tile
	blockByName  map[string]*BlockType
	layoutByName map[string]*Layout
}

// Tile returns the named tile and whether it exists.
func (a *Arch) Tile(name string) (*Tile, bool) {
	t, ok := a.tileByName[name]
	return t, ok
}

// Block returns the named root block type and whether it exists.
func (a *Arch) Block(name string) (*BlockType, bool) {
	b, ok := a.blockByName[name]
	return b, ok
}

// Layout returns the named layout variant. The empty string selects the
// first declared variant.
func (a *Arch) Layout(name string) (*Layout, bool) {
	if name == "" {
		if len(a.Layouts) == 0 {
			return nil, false
		}
		return a.Layouts[0], true
	}
	l, ok := a.layoutByName[name]
	return l, ok
}
