// Package netgraph expands the symbolic interconnect declarations of one
// block mode into a concrete pin-level connection graph.
//
// Resolution works on a single hierarchy level at a time: the parent block's
// own ports on one side, the selected mode's child instances on the other.
// References are validated against that scope, port ranges are expanded pin
// by pin, and each interconnect kind contributes edges under its own wiring
// rule. The result is deterministic for a given model: instances, pins, and
// edges all follow declaration order.
package netgraph

import (
	"github.com/archview/archview/pkg/arch"
)

// Instance is one child replica visible in the resolved mode.
type Instance struct {
	Name    string // display name, e.g. "ble[2]"
	Child   string // declared child name, e.g. "ble"
	Ordinal int
	Block   *arch.BlockType
}

// Edge is one resolved pin-to-pin connection. Edges produced by the same
// mux declaration for the same sink pin share Name and To; a renderer
// groups them into one selector.
type Edge struct {
	Kind arch.InterconnectKind
	Name string // interconnect name, unique per declaration
	From Pin
	To   Pin
}

// Graph is the resolved connection graph of one block mode.
type Graph struct {
	Block     *arch.BlockType
	Mode      *arch.Mode
	Instances []Instance
	Edges     []Edge
}

// Resolve expands every interconnect of the named mode of b. The empty mode
// name selects the default mode. The model is never mutated; resolving the
// same mode twice yields identical graphs.
func Resolve(b *arch.BlockType, modeName string) (*Graph, error) {
	m, ok := b.Mode(modeName)
	if !ok {
		return nil, &arch.UnresolvedReferenceError{Kind: "mode", Name: modeName, Referrer: "pb_type " + b.Name}
	}

	g := &Graph{Block: b, Mode: m}
	for _, c := range m.Children {
		for i := 0; i < c.NumPB; i++ {
			g.Instances = append(g.Instances, Instance{
				Name:    InstanceName(c.Name, i, c.NumPB),
				Child:   c.Name,
				Ordinal: i,
				Block:   c,
			})
		}
	}

	sc := newScope(b, m)
	for _, ic := range m.Interconnects {
		edges, err := resolveInterconnect(sc, ic)
		if err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, edges...)
	}
	return g, nil
}

func resolveInterconnect(sc *scope, ic *arch.Interconnect) ([]Edge, error) {
	switch ic.Kind {
	case arch.KindDirect:
		return resolveDirect(sc, ic)
	case arch.KindMux:
		return resolveMux(sc, ic)
	default:
		return resolveComplete(sc, ic)
	}
}

// resolveDirect wires source to sink one-to-one. The expanded widths must
// match exactly; pairing follows expansion order on both sides.
func resolveDirect(sc *scope, ic *arch.Interconnect) ([]Edge, error) {
	src, err := sc.expand(ic.Input)
	if err != nil {
		return nil, err
	}
	dst, err := sc.expand(ic.Output)
	if err != nil {
		return nil, err
	}
	if len(src) != len(dst) {
		return nil, &CardinalityError{
			Interconnect: ic.Name,
			Kind:         ic.Kind.String(),
			Inputs:       len(src),
			Outputs:      len(dst),
			Line:         ic.Line,
		}
	}
	edges := make([]Edge, len(src))
	for i := range src {
		edges[i] = Edge{Kind: ic.Kind, Name: ic.Name, From: src[i], To: dst[i]}
	}
	return edges, nil
}

// resolveMux builds one selector per sink pin. A single-pin sink selects
// among every expanded source pin. A k-pin sink requires every source token
// to expand to exactly k pins; selector i then chooses among the i-th pin
// of each token.
func resolveMux(sc *scope, ic *arch.Interconnect) ([]Edge, error) {
	groups, err := sc.expandGroups(ic.Input)
	if err != nil {
		return nil, err
	}
	dst, err := sc.expand(ic.Output)
	if err != nil {
		return nil, err
	}

	if len(dst) == 1 {
		var edges []Edge
		for _, g := range groups {
			for _, p := range g {
				edges = append(edges, Edge{Kind: ic.Kind, Name: ic.Name, From: p, To: dst[0]})
			}
		}
		return edges, nil
	}

	total := 0
	for _, g := range groups {
		total += len(g)
		if len(g) != len(dst) {
			return nil, &CardinalityError{
				Interconnect: ic.Name,
				Kind:         ic.Kind.String(),
				Inputs:       len(g),
				Outputs:      len(dst),
				Line:         ic.Line,
			}
		}
	}
	edges := make([]Edge, 0, total)
	for i, d := range dst {
		for _, g := range groups {
			edges = append(edges, Edge{Kind: ic.Kind, Name: ic.Name, From: g[i], To: d})
		}
	}
	return edges, nil
}

// resolveComplete wires the full cross product of sources and sinks.
func resolveComplete(sc *scope, ic *arch.Interconnect) ([]Edge, error) {
	src, err := sc.expand(ic.Input)
	if err != nil {
		return nil, err
	}
	dst, err := sc.expand(ic.Output)
	if err != nil {
		return nil, err
	}
	edges := make([]Edge, 0, len(src)*len(dst))
	for _, s := range src {
		for _, d := range dst {
			edges = append(edges, Edge{Kind: ic.Kind, Name: ic.Name, From: s, To: d})
		}
	}
	return edges, nil
}
