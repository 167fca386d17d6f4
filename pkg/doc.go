// Package pkg provides the core libraries for Archview FPGA architecture
// inspection.
//
// # Overview
//
// Archview parses FPGA architecture description files and turns them into
// inspectable models: a block hierarchy, a pin-level interconnect graph, a
// placed device grid, and drawable geometry. The pkg directory is organized
// along that pipeline:
//
//  1. [xmltree] - Position-tracking XML element tree
//  2. [arch] - Semantic model of the architecture file
//  3. [netgraph] - Pin-level interconnect resolution
//  4. [grid] - Device grid placement from layout variants
//  5. [geometry] - Drawable block rectangles, pin anchors, and wires
//  6. [export] - Graphviz DOT and SVG output
//  7. [cache] - Content-addressed result caching
//
// # Architecture
//
// The typical data flow through Archview:
//
//	Architecture XML
//	         ↓
//	    [xmltree] package (element tree with positions)
//	         ↓
//	    [arch] package (block types, tiles, layouts, device)
//	         ↓
//	    [netgraph] package (port ranges → pin edges)
//	         ↓
//	    [geometry] / [grid] / [export] (drawable output)
//
// # Quick Start
//
// Parse a file and lay out a tile's block hierarchy:
//
//	a, err := arch.ParseFile("arch.xml")
//	if err != nil {
//	    return err
//	}
//	tile, _ := a.Tile("clb_tile")
//	block, _ := tile.RootBlock()
//	plan, err := geometry.Build(block, geometry.State{})
//
// Resolve one level of interconnect and emit DOT:
//
//	g, err := netgraph.Resolve(block, "")
//	dot := export.ToDOT(g, export.Options{})
//
// [xmltree]: https://pkg.go.dev/github.com/archview/archview/pkg/xmltree
// [arch]: https://pkg.go.dev/github.com/archview/archview/pkg/arch
// [netgraph]: https://pkg.go.dev/github.com/archview/archview/pkg/netgraph
// [grid]: https://pkg.go.dev/github.com/archview/archview/pkg/grid
// [geometry]: https://pkg.go.dev/github.com/archview/archview/pkg/geometry
// [export]: https://pkg.go.dev/github.com/archview/archview/pkg/export
// [cache]: https://pkg.go.dev/github.com/archview/archview/pkg/cache
package pkg
