package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archview/archview/pkg/arch"
	"github.com/archview/archview/pkg/grid"
)

// gridOpts holds the command-line flags for the grid command.
type gridOpts struct {
	layout string // layout variant name (first declared if empty)
	width  int    // grid width for auto layouts
	height int    // grid height for auto layouts
	output string // output file path (stdout if empty)
	asJSON bool   // emit the grid as JSON instead of a map
}

// newGridCmd creates the grid command. It places tiles onto the device grid
// of a layout variant and prints the result.
func newGridCmd() *cobra.Command {
	var opts gridOpts

	cmd := &cobra.Command{
		Use:   "grid <file>",
		Short: "Build the device grid of a layout variant",
		Long: `Build the device grid of a layout variant by applying its placement
rules in declaration order.

For auto layouts, --width or --height fixes one dimension and the other is
derived from the declared aspect ratio.

Examples:
  archview grid arch.xml                      # First declared layout
  archview grid arch.xml --layout large       # Named variant
  archview grid arch.xml --width 40 --json    # Auto layout as JSON`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrid(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.layout, "layout", "", "layout variant (first declared if empty)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "grid width for auto layouts")
	cmd.Flags().IntVar(&opts.height, "height", 0, "grid height for auto layouts")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "emit the grid as JSON")

	return cmd
}

func runGrid(cmd *cobra.Command, path string, opts *gridOpts) error {
	logger := loggerFromContext(cmd.Context())
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.width == 0 {
		opts.width = cfg.GridWidth
	}
	if opts.height == 0 {
		opts.height = cfg.GridHeight
	}

	a, err := parseFile(path)
	if err != nil {
		return err
	}
	l, ok := a.Layout(opts.layout)
	if !ok {
		return &arch.UnresolvedReferenceError{Kind: "layout", Name: opts.layout}
	}

	prog := newProgress(logger)
	var g *grid.DeviceGrid
	if l.Kind == arch.FixedLayout {
		g, err = grid.FromFixed(a, l.Name)
	} else {
		g, err = grid.FromAuto(a, l.Name, opts.width, opts.height)
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Placed %dx%d grid", g.Width, g.Height))

	if opts.asJSON {
		data, err := json.MarshalIndent(gridJSON(l.Name, g), "", "  ")
		if err != nil {
			return fmt.Errorf("encode grid: %w", err)
		}
		return writeOutput(opts.output, append(data, '\n'))
	}

	printGrid(l.Name, g)
	return nil
}

// gridView is the JSON shape of a placed grid: rows of tile names, top row
// first, empty string for unoccupied cells.
type gridView struct {
	Layout string         `json:"layout,omitempty"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Rows   [][]string     `json:"rows"`
	Tiles  map[string]int `json:"tiles"`
}

func gridJSON(layout string, g *grid.DeviceGrid) gridView {
	v := gridView{
		Layout: layout,
		Width:  g.Width,
		Height: g.Height,
		Rows:   make([][]string, g.Height),
		Tiles:  g.Tiles(),
	}
	for y := 0; y < g.Height; y++ {
		row := make([]string, g.Width)
		for x := 0; x < g.Width; x++ {
			c, _ := g.At(x, y)
			row[x] = c.Tile
		}
		v.Rows[y] = row
	}
	return v
}

// printGrid prints a character map of the grid plus a legend of tile counts.
// Each tile gets the first free letter of its name.
func printGrid(layout string, g *grid.DeviceGrid) {
	counts := g.Tiles()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	glyphs := make(map[string]byte, len(names))
	used := make(map[byte]bool)
	for _, name := range names {
		glyph := byte('?')
		for i := 0; i < len(name); i++ {
			if ch := name[i]; !used[ch] {
				glyph = ch
				break
			}
		}
		used[glyph] = true
		glyphs[name] = glyph
	}

	fmt.Println(StyleTitle.Render(layout) + StyleDim.Render(fmt.Sprintf(" %dx%d", g.Width, g.Height)))
	var row strings.Builder
	for y := 0; y < g.Height; y++ {
		row.Reset()
		for x := 0; x < g.Width; x++ {
			c, _ := g.At(x, y)
			if c.Empty() {
				row.WriteByte('.')
			} else {
				row.WriteByte(glyphs[c.Tile])
			}
		}
		fmt.Println("  " + row.String())
	}
	for _, name := range names {
		printDetail("%c = %s (%d)", glyphs[name], name, counts[name])
	}
}
