package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archview/archview/pkg/arch"
	"github.com/archview/archview/pkg/cache"
	"github.com/archview/archview/pkg/export"
	"github.com/archview/archview/pkg/netgraph"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	tile     string // tile whose root block is exported
	block    string // block type exported directly
	mode     string // mode of the exported level (default mode if empty)
	engine   string // Graphviz layout engine for SVG output
	detailed bool   // label pins with the full instance.port reference
	noCache  bool   // bypass the SVG cache
	output   string // output file path (stdout if empty)
}

// newExportCmd creates the export command. It resolves one level of a block
// hierarchy to an interconnect graph and emits it as DOT, or as SVG when the
// output path ends in .svg.
func newExportCmd() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Emit the interconnect graph as DOT or SVG",
		Long: `Resolve one level of a block hierarchy to its pin-level interconnect
graph and emit it as Graphviz DOT. An output path ending in .svg renders
the graph through Graphviz instead.

Examples:
  archview export arch.xml --tile clb                 # DOT on stdout
  archview export arch.xml --block clb -o clb.svg     # Rendered SVG
  archview export arch.xml --block ble --mode ff_mode`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.tile, "tile", "", "tile whose root block is exported")
	cmd.Flags().StringVar(&opts.block, "block", "", "block type exported directly")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "mode to resolve (default mode if empty)")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "Graphviz layout engine for SVG (dot if empty)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label pins with the full reference")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the SVG cache")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func runExport(cmd *cobra.Command, path string, opts *exportOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.engine == "" {
		opts.engine = cfg.Engine
	}
	detailed := opts.detailed || cfg.Detailed

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read architecture file: %w", err)
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
	g, err := netgraph.Resolve(b, opts.mode)
	if err != nil {
		return err
	}
	renderOpts := export.Options{Detailed: detailed, Engine: opts.engine}
	dot := export.ToDOT(g, renderOpts)
	prog.done(fmt.Sprintf("Resolved %d connections", len(g.Edges)))

	if !strings.HasSuffix(opts.output, ".svg") {
		return writeOutput(opts.output, []byte(dot))
	}

	c, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer c.Close()

	key := cache.SVGKey(cache.ModelKey(data), b.Name, opts.mode, opts.engine, detailed)
	if svg, ok, err := c.Get(ctx, key); err == nil && ok {
		logger.Debug("svg cache hit", "key", key)
		if err := writeOutput(opts.output, svg); err != nil {
			return err
		}
		printFile(opts.output)
		return nil
	}

	svg, err := export.RenderSVG(ctx, dot, renderOpts)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, svg, 0); err != nil {
		logger.Warnf("cache write failed: %v", err)
	}
	if err := writeOutput(opts.output, svg); err != nil {
		return err
	}
	printFile(opts.output)
	return nil
}
