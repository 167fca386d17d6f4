package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archview/archview/pkg/arch"
	"github.com/archview/archview/pkg/cache"
	"github.com/archview/archview/pkg/geometry"
)

// geometryOpts holds the command-line flags for the geometry command.
type geometryOpts struct {
	tile     string   // tile whose root block is laid out
	block    string   // block type laid out directly (alternative to --tile)
	modes    []string // mode selections as path=mode
	collapse []string // instance paths rendered as placeholders
	passes   int      // crossing-reduction sweep bound (0 uses the default)
	noCache  bool     // bypass the result cache
	output   string   // output file path (stdout if empty)
}

// newGeometryCmd creates the geometry command. It computes the drawable
// layout plan of a block hierarchy: block rectangles, pin anchors, mux
// nodes, and wire segments.
func newGeometryCmd() *cobra.Command {
	var opts geometryOpts

	cmd := &cobra.Command{
		Use:   "geometry <file>",
		Short: "Compute the drawable geometry of a block hierarchy",
		Long: `Compute the drawable geometry of a block hierarchy as a JSON layout
plan: nested block rectangles, pin anchors, mux nodes, and wire segments.

Plans are cached under the document hash and the request parameters, so
repeated runs on an unchanged file are read back instead of recomputed.

Examples:
  archview geometry arch.xml --tile clb
  archview geometry arch.xml --block clb --mode clb.ble[0]=ff_mode
  archview geometry arch.xml --tile clb --collapse clb.ble[1] -o plan.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGeometry(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.tile, "tile", "", "tile whose root block is laid out")
	cmd.Flags().StringVar(&opts.block, "block", "", "block type laid out directly")
	cmd.Flags().StringArrayVar(&opts.modes, "mode", nil, "mode selection as path=mode (repeatable)")
	cmd.Flags().StringArrayVar(&opts.collapse, "collapse", nil, "instance path to collapse (repeatable)")
	cmd.Flags().IntVar(&opts.passes, "passes", 0, "crossing-reduction sweeps (0 uses the default)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the result cache")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func runGeometry(cmd *cobra.Command, path string, opts *geometryOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.passes == 0 {
		opts.passes = cfg.Passes
	}
	collapse := append(append([]string(nil), cfg.Collapse...), opts.collapse...)

	modes, err := parseModeFlags(opts.modes)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read architecture file: %w", err)
	}

	c, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer c.Close()

	target := opts.tile
	if target == "" {
		target = opts.block
	}
	key := cache.GeometryKey(cache.ModelKey(data), target, modes, collapse, opts.passes)
	if cached, ok, err := c.Get(ctx, key); err == nil && ok {
		logger.Debug("geometry cache hit", "key", key)
		printStats([]string{fmt.Sprintf("%d bytes", len(cached))}, true)
		return writeOutput(opts.output, cached)
	}

	a, err := arch.ParseBytes(data)
	if err != nil {
		return err
	}
	b, err := lookupBlock(a, opts.tile, opts.block)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	state := geometry.State{
		Modes:     modes,
		Collapsed: make(map[string]bool, len(collapse)),
		Passes:    opts.passes,
	}
	for _, p := range collapse {
		state.Collapsed[p] = true
	}
	plan, err := geometry.Build(b, state)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %s", b.Name))

	out, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	out = append(out, '\n')

	if err := c.Set(ctx, key, out, 0); err != nil {
		logger.Warnf("cache write failed: %v", err)
	}
	printStats([]string{fmt.Sprintf("%d wires", len(plan.Wires)), fmt.Sprintf("%d muxes", len(plan.Muxes))}, false)
	return writeOutput(opts.output, out)
}

// lookupBlock resolves the block hierarchy a command operates on: the root
// block of --tile when given, the named block type otherwise, and the first
// tile's root block when neither flag is set.
func lookupBlock(a *arch.Arch, tileName, blockName string) (*arch.BlockType, error) {
	switch {
	case tileName != "":
		t, ok := a.Tile(tileName)
		if !ok {
			return nil, &arch.UnresolvedReferenceError{Kind: "tile", Name: tileName}
		}
		b, ok := t.RootBlock()
		if !ok {
			return nil, fmt.Errorf("tile %q has no sites", tileName)
		}
		return b, nil

	case blockName != "":
		b, ok := a.Block(blockName)
		if !ok {
			return nil, &arch.UnresolvedReferenceError{Kind: "pb_type", Name: blockName}
		}
		return b, nil

	default:
		for _, t := range a.Tiles {
			if b, ok := t.RootBlock(); ok {
				return b, nil
			}
		}
		return nil, fmt.Errorf("no tile with a site, use --block")
	}
}

// parseModeFlags splits repeated path=mode selections into a map.
func parseModeFlags(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	modes := make(map[string]string, len(flags))
	for _, f := range flags {
		path, mode, ok := strings.Cut(f, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid --mode %q, want path=mode", f)
		}
		modes[path] = mode
	}
	return modes, nil
}
