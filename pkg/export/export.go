// Package export renders a resolved connection graph as Graphviz DOT, and
// optionally as SVG through the Graphviz layout engines. Pins become nodes
// clustered by instance; edges carry the interconnect kind.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/archview/archview/pkg/arch"
	"github.com/archview/archview/pkg/netgraph"
)

// Options configures DOT generation.
type Options struct {
	// Detailed labels pins with the full instance.port[index] reference;
	// otherwise nodes show just port[index].
	Detailed bool
	// Engine selects the Graphviz layout engine for RenderSVG; empty
	// means dot.
	Engine string
}

// ToDOT converts one resolved graph to DOT. Instances become clusters in
// declaration order; mux declarations contribute diamond selector nodes so
// the fan-in structure stays visible.
func ToDOT(g *netgraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	writeCluster(&buf, g.Block.Name, parentPins(g), opts)
	for i, inst := range g.Instances {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", inst.Name)
		for _, p := range instancePins(inst) {
			fmt.Fprintf(&buf, "    %q [label=%q];\n", pinID(p), pinLabel(p, opts))
		}
		buf.WriteString("  }\n")
	}
	buf.WriteString("\n")

	muxNodes := make(map[string]bool)
	for _, e := range g.Edges {
		switch e.Kind {
		case arch.KindMux:
			mux := fmt.Sprintf("mux:%s:%s", e.Name, e.To.String())
			if !muxNodes[mux] {
				muxNodes[mux] = true
				fmt.Fprintf(&buf, "  %q [shape=diamond, label=%q];\n", mux, e.Name)
				fmt.Fprintf(&buf, "  %q -> %q;\n", mux, pinID(e.To))
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", pinID(e.From), mux)
		case arch.KindComplete:
			fmt.Fprintf(&buf, "  %q -> %q [color=grey];\n", pinID(e.From), pinID(e.To))
		default:
			fmt.Fprintf(&buf, "  %q -> %q;\n", pinID(e.From), pinID(e.To))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeCluster(buf *bytes.Buffer, label string, pins []netgraph.Pin, opts Options) {
	buf.WriteString("  subgraph cluster_self {\n")
	fmt.Fprintf(buf, "    label=%q;\n", label)
	for _, p := range pins {
		fmt.Fprintf(buf, "    %q [label=%q];\n", pinID(p), pinLabel(p, opts))
	}
	buf.WriteString("  }\n")
}

func parentPins(g *netgraph.Graph) []netgraph.Pin {
	var pins []netgraph.Pin
	for _, port := range g.Block.Ports {
		for i := 0; i < port.Width; i++ {
			pins = append(pins, netgraph.Pin{Instance: g.Block.Name, Port: port.Name, Index: i})
		}
	}
	return pins
}

func instancePins(inst netgraph.Instance) []netgraph.Pin {
	var pins []netgraph.Pin
	for _, port := range inst.Block.Ports {
		for i := 0; i < port.Width; i++ {
			pins = append(pins, netgraph.Pin{Instance: inst.Name, Port: port.Name, Index: i})
		}
	}
	return pins
}

func pinID(p netgraph.Pin) string {
	return p.String()
}

func pinLabel(p netgraph.Pin, opts Options) string {
	if opts.Detailed {
		return p.String()
	}
	return fmt.Sprintf("%s[%d]", p.Port, p.Index)
}

// RenderSVG lays out a DOT graph with Graphviz and returns the SVG bytes.
func RenderSVG(ctx context.Context, dot string, opts Options) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if opts.Engine != "" {
		gv.SetLayout(graphviz.Layout(opts.Engine))
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
