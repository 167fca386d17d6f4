// Package grid turns a layout variant into a concrete device grid: a
// width-by-height matrix of cells occupied by tiles. Placement follows the
// rule kinds of the layout section (fill, perimeter, corners, single, col,
// row, region), applied in declaration order with priority arbitration: a
// placement proceeds only when its priority is at least the highest
// priority it would overlap, ties going to the later declaration, and every
// tile it overlaps is cleared whole.
package grid

import (
	"fmt"
	"math"

	"github.com/archview/archview/pkg/arch"
	"github.com/archview/archview/pkg/arch/expr"
)

// Cell is one grid position. A multi-cell tile occupies a rectangle of
// cells that all name the tile and point at the anchor (its top-left cell).
type Cell struct {
	Tile    string `json:"tile,omitempty"` // empty when unoccupied
	AnchorX int    `json:"anchor_x"`
	AnchorY int    `json:"anchor_y"`
}

// Empty reports whether the cell holds no tile.
func (c Cell) Empty() bool { return c.Tile == "" }

// Anchor reports whether the cell is the top-left cell of its tile.
func (c Cell) Anchor(x, y int) bool { return !c.Empty() && c.AnchorX == x && c.AnchorY == y }

// DeviceGrid is the placed device: immutable once built.
type DeviceGrid struct {
	Width  int
	Height int

	cells      []Cell
	priorities []int
	sizes      map[string][2]int
}

// At returns the cell at (x, y), false outside the grid.
func (g *DeviceGrid) At(x, y int) (Cell, bool) {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return Cell{}, false
	}
	return g.cells[y*g.Width+x], true
}

// Tiles counts the anchors per tile name, a cheap occupancy summary.
func (g *DeviceGrid) Tiles() map[string]int {
	counts := make(map[string]int)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.cells[y*g.Width+x]
			if c.Anchor(x, y) {
				counts[c.Tile]++
			}
		}
	}
	return counts
}

// FromFixed builds the grid of a fixed layout variant. The empty name
// selects the first declared variant.
func FromFixed(a *arch.Arch, layoutName string) (*DeviceGrid, error) {
	l, ok := a.Layout(layoutName)
	if !ok {
		return nil, &arch.UnresolvedReferenceError{Kind: "layout", Name: layoutName}
	}
	if l.Kind != arch.FixedLayout {
		return nil, fmt.Errorf("layout %q is not fixed, use FromAuto", l.Name)
	}
	return build(a, l, l.Width, l.Height)
}

// FromAuto builds the grid of an auto layout variant at caller-supplied
// dimensions. A zero width or height is derived from the declared aspect
// ratio (width / height); both zero is an error.
func FromAuto(a *arch.Arch, layoutName string, width, height int) (*DeviceGrid, error) {
	l, ok := a.Layout(layoutName)
	if !ok {
		return nil, &arch.UnresolvedReferenceError{Kind: "layout", Name: layoutName}
	}
	if l.Kind != arch.AutoLayout {
		return nil, fmt.Errorf("layout %q is not auto, use FromFixed", l.Name)
	}
	switch {
	case width <= 0 && height <= 0:
		return nil, fmt.Errorf("auto layout %q needs a width or height", l.Name)
	case width <= 0:
		width = int(math.Round(float64(height) * l.AspectRatio))
	case height <= 0:
		height = int(math.Round(float64(width) / l.AspectRatio))
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return build(a, l, width, height)
}

func build(a *arch.Arch, l *arch.Layout, width, height int) (*DeviceGrid, error) {
	g := &DeviceGrid{
		Width:      width,
		Height:     height,
		cells:      make([]Cell, width*height),
		priorities: make([]int, width*height),
		sizes:      make(map[string][2]int, len(a.Tiles)),
	}
	for i := range g.priorities {
		g.priorities[i] = math.MinInt
	}
	for _, t := range a.Tiles {
		g.sizes[t.Name] = [2]int{t.Width, t.Height}
	}

	for i := range l.Places {
		if err := g.apply(&l.Places[i]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *DeviceGrid) tileSize(name string) (int, int) {
	if s, ok := g.sizes[name]; ok {
		return s[0], s[1]
	}
	return 1, 1
}

// place attempts one tile placement with (x, y) as the anchor. It fails
// when the footprint leaves the grid or a strictly higher priority already
// occupies part of it; otherwise every overlapped tile is cleared whole and
// the footprint is claimed.
func (g *DeviceGrid) place(x, y int, tile string, priority int) bool {
	tw, th := g.tileSize(tile)
	if x < 0 || y < 0 || x+tw > g.Width || y+th > g.Height {
		return false
	}

	maxPriority := math.MinInt
	for dy := 0; dy < th; dy++ {
		for dx := 0; dx < tw; dx++ {
			if p := g.priorities[(y+dy)*g.Width+x+dx]; p > maxPriority {
				maxPriority = p
			}
		}
	}
	// Ties overwrite: later declarations win.
	if priority < maxPriority {
		return false
	}

	for dy := 0; dy < th; dy++ {
		for dx := 0; dx < tw; dx++ {
			g.clearTileAt(x+dx, y+dy)
		}
	}

	for dy := 0; dy < th; dy++ {
		for dx := 0; dx < tw; dx++ {
			i := (y+dy)*g.Width + x + dx
			if tile == "EMPTY" {
				g.cells[i] = Cell{}
			} else {
				g.cells[i] = Cell{Tile: tile, AnchorX: x, AnchorY: y}
			}
			g.priorities[i] = priority
		}
	}
	return true
}

// clearTileAt removes the whole tile covering (x, y), not just that cell,
// resetting the footprint's priorities.
func (g *DeviceGrid) clearTileAt(x, y int) {
	c := g.cells[y*g.Width+x]
	if c.Empty() {
		return
	}
	tw, th := g.tileSize(c.Tile)
	ax, ay := c.AnchorX, c.AnchorY
	for dy := 0; dy < th; dy++ {
		for dx := 0; dx < tw; dx++ {
			cx, cy := ax+dx, ay+dy
			if cx < g.Width && cy < g.Height {
				g.cells[cy*g.Width+cx] = Cell{}
				g.priorities[cy*g.Width+cx] = math.MinInt
			}
		}
	}
}

func (g *DeviceGrid) apply(p *arch.Place) error {
	tw, th := g.tileSize(p.TileName)
	env := expr.Env{W: g.Width, H: g.Height, TW: tw, TH: th}

	switch p.Kind {
	case arch.PlaceFill:
		for y := 0; y < g.Height; y += th {
			for x := 0; x < g.Width; {
				if g.place(x, y, p.TileName, p.Priority) {
					x += tw
				} else {
					x++
				}
			}
		}

	case arch.PlacePerimeter:
		rows := []int{0}
		if g.Height > 1 {
			rows = append(rows, g.Height-1)
		}
		for _, y := range rows {
			for x := 0; x < g.Width; {
				if g.place(x, y, p.TileName, p.Priority) {
					x += tw
				} else {
					x++
				}
			}
		}
		cols := []int{0}
		if g.Width > 1 {
			cols = append(cols, g.Width-1)
		}
		for _, x := range cols {
			for y := 0; y < g.Height; {
				if g.place(x, y, p.TileName, p.Priority) {
					y += th
				} else {
					y++
				}
			}
		}

	case arch.PlaceCorners:
		for _, c := range [][2]int{{0, 0}, {g.Width - 1, 0}, {0, g.Height - 1}, {g.Width - 1, g.Height - 1}} {
			if c[0] >= 0 && c[1] >= 0 {
				g.place(c[0], c[1], p.TileName, p.Priority)
			}
		}

	case arch.PlaceSingle:
		x, err := expr.Eval(p.X, env)
		if err != nil {
			return err
		}
		y, err := expr.Eval(p.Y, env)
		if err != nil {
			return err
		}
		if x >= 0 && y >= 0 && x < g.Width && y < g.Height {
			g.place(x, y, p.TileName, p.Priority)
		}

	case arch.PlaceCol:
		startX, err := expr.Eval(p.StartX, env)
		if err != nil {
			return err
		}
		startY, err := expr.EvalOr(p.StartY, 0, env)
		if err != nil {
			return err
		}
		incrY, err := expr.EvalOr(p.IncrY, th, env)
		if err != nil {
			return err
		}
		repeatX, err := expr.EvalOr(p.RepeatX, g.Width, env)
		if err != nil {
			return err
		}
		if incrY < 1 {
			incrY = th
		}
		if repeatX < 1 {
			repeatX = g.Width
		}
		for x := startX; x >= 0 && x < g.Width; x += repeatX {
			for y := startY; y >= 0 && y < g.Height; y += incrY {
				g.place(x, y, p.TileName, p.Priority)
			}
		}

	case arch.PlaceRow:
		startY, err := expr.Eval(p.StartY, env)
		if err != nil {
			return err
		}
		startX, err := expr.EvalOr(p.StartX, 0, env)
		if err != nil {
			return err
		}
		incrX, err := expr.EvalOr(p.IncrX, tw, env)
		if err != nil {
			return err
		}
		repeatY, err := expr.EvalOr(p.RepeatY, g.Height, env)
		if err != nil {
			return err
		}
		if incrX < 1 {
			incrX = tw
		}
		if repeatY < 1 {
			repeatY = g.Height
		}
		for y := startY; y >= 0 && y < g.Height; y += repeatY {
			for x := startX; x >= 0 && x < g.Width; x += incrX {
				g.place(x, y, p.TileName, p.Priority)
			}
		}

	case arch.PlaceRegion:
		startX, err := expr.EvalOr(p.StartX, 0, env)
		if err != nil {
			return err
		}
		startY, err := expr.EvalOr(p.StartY, 0, env)
		if err != nil {
			return err
		}
		endX, err := expr.EvalOr(p.EndX, g.Width-1, env)
		if err != nil {
			return err
		}
		endY, err := expr.EvalOr(p.EndY, g.Height-1, env)
		if err != nil {
			return err
		}
		incrX, err := expr.EvalOr(p.IncrX, endX-startX+1, env)
		if err != nil {
			return err
		}
		incrY, err := expr.EvalOr(p.IncrY, endY-startY+1, env)
		if err != nil {
			return err
		}
		if incrX < 1 {
			incrX = 1
		}
		if incrY < 1 {
			incrY = 1
		}
		endX = min(endX, g.Width-1)
		endY = min(endY, g.Height-1)
		for y := startY; y >= 0 && y <= endY; y += incrY {
			for x := startX; x >= 0 && x <= endX; x += incrX {
				g.place(x, y, p.TileName, p.Priority)
			}
		}
	}
	return nil
}
