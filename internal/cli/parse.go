package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archview/archview/pkg/arch"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	output   string // output file path (stdout if empty)
	asJSON   bool   // emit the full model as JSON instead of a summary
	tileName string // summarize a single tile instead of the whole file
}

// newParseCmd creates the parse command. It reads an architecture file,
// builds the semantic model, and prints a summary or the model itself.
func newParseCmd() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse an architecture file and summarize its contents",
		Long: `Parse an architecture description file, resolve its block hierarchy,
and print a summary of the device it describes.

Examples:
  archview parse arch.xml                # Human-readable summary
  archview parse arch.xml --json         # Full model as JSON
  archview parse arch.xml --tile clb     # One tile's block hierarchy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "emit the full model as JSON")
	cmd.Flags().StringVar(&opts.tileName, "tile", "", "summarize a single tile")

	return cmd
}

func runParse(cmd *cobra.Command, path string, opts *parseOpts) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	a, err := parseFile(path)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Parsed %d block types", len(a.Blocks)))

	if opts.asJSON {
		data, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			return fmt.Errorf("encode model: %w", err)
		}
		return writeOutput(opts.output, append(data, '\n'))
	}

	if opts.tileName != "" {
		return printTile(a, opts.tileName)
	}

	printSummary(path, a)
	return nil
}

// parseFile reads and parses an architecture file.
func parseFile(path string) (*arch.Arch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read architecture file: %w", err)
	}
	return arch.ParseBytes(data)
}

// printSummary prints the per-section counts of the parsed model.
func printSummary(path string, a *arch.Arch) {
	fmt.Println(StyleTitle.Render(path))
	printKeyValue("tiles", fmt.Sprint(len(a.Tiles)))
	printKeyValue("blocks", fmt.Sprint(len(a.Blocks)))
	printKeyValue("layouts", fmt.Sprint(len(a.Layouts)))
	printKeyValue("models", fmt.Sprint(len(a.Models)))
	printKeyValue("switches", fmt.Sprint(len(a.Switches)))
	printKeyValue("segments", fmt.Sprint(len(a.Segments)))
	for _, l := range a.Layouts {
		switch l.Kind {
		case arch.FixedLayout:
			printDetail("layout %s: fixed %dx%d", l.Name, l.Width, l.Height)
		case arch.AutoLayout:
			printDetail("layout %s: auto, aspect %.2f", l.Name, l.AspectRatio)
		}
	}
}

// printTile prints the block hierarchy rooted at one tile.
func printTile(a *arch.Arch, name string) error {
	t, ok := a.Tile(name)
	if !ok {
		return &arch.UnresolvedReferenceError{Kind: "tile", Name: name}
	}
	fmt.Println(StyleTitle.Render(t.Name) + StyleDim.Render(fmt.Sprintf(" %dx%d", t.Width, t.Height)))
	for _, st := range t.SubTiles {
		printDetail("sub_tile %s capacity %d", st.Name, st.Capacity)
		for _, s := range st.Sites {
			if s.Block != nil {
				printBlockTree(s.Block, 1)
			}
		}
	}
	return nil
}

func printBlockTree(b *arch.BlockType, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	label := b.Name
	if b.NumPB > 1 {
		label = fmt.Sprintf("%s[%d]", b.Name, b.NumPB)
	}
	fmt.Println(indent + StyleValue.Render(label) + StyleDim.Render(fmt.Sprintf(" (%d ports)", len(b.Ports))))
	for _, m := range b.Modes {
		if m.Name != "" {
			fmt.Println(indent + "  " + StyleDim.Render("mode "+m.Name))
		}
		for _, c := range m.Children {
			printBlockTree(c, depth+2)
		}
	}
}
