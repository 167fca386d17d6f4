package geometry

import (
	"github.com/archview/archview/pkg/arch"
	"github.com/archview/archview/pkg/netgraph"
)

// route walks every expanded block whose mode declares interconnects,
// resolves them, and appends wire segments, mux nodes, and attachment
// orders to the plan. Each hierarchy level routes independently: its scope
// is the block's own pins plus its direct children's pins. A childless
// block still routes when its mode wires the block's own ports together.
func (e *engine) route(blk *Block, plan *Plan) error {
	m, ok := blk.block.Mode(e.state.mode(blk.Path))
	if blk.Collapsed || !ok || len(m.Interconnects) == 0 {
		return routeChildren(e, blk, plan)
	}

	g, err := netgraph.Resolve(blk.block, e.state.mode(blk.Path))
	if err != nil {
		return err
	}

	anchors := levelAnchors(blk)

	// Group edges by declaration so bundles stay intact; declaration order
	// is preserved by the resolver.
	type bundle struct {
		kind  arch.InterconnectKind
		edges []netgraph.Edge
	}
	var names []string
	bundles := make(map[string]*bundle)
	for _, edge := range g.Edges {
		bd, ok := bundles[edge.Name]
		if !ok {
			bd = &bundle{kind: edge.Kind}
			bundles[edge.Name] = bd
			names = append(names, edge.Name)
		}
		bd.edges = append(bd.edges, edge)
	}

	for _, name := range names {
		bd := bundles[name]
		switch bd.kind {
		case arch.KindDirect:
			for _, edge := range bd.edges {
				from, to := anchors[pinKey(edge.From)], anchors[pinKey(edge.To)]
				plan.Wires = append(plan.Wires, Segment{Kind: "direct", Name: name, From: from.At, To: to.At})
			}
		case arch.KindMux:
			e.routeMux(blk, name, bd.edges, anchors, plan)
		case arch.KindComplete:
			e.routeComplete(blk, name, bd.edges, anchors, plan)
		}
	}
	return routeChildren(e, blk, plan)
}

func routeChildren(e *engine, blk *Block, plan *Plan) error {
	for _, c := range blk.Children {
		if err := e.route(c, plan); err != nil {
			return err
		}
	}
	return nil
}

// routeMux emits one synthetic mux node per sink pin, a segment per source
// into it, and one segment out to the sink. The node sits one gutter to the
// left of its sink at the sink's height.
func (e *engine) routeMux(blk *Block, name string, edges []netgraph.Edge, anchors map[string]PinAnchor, plan *Plan) {
	var sinkOrder []netgraph.Pin
	bySink := make(map[string][]netgraph.Edge)
	for _, edge := range edges {
		k := pinKey(edge.To)
		if _, ok := bySink[k]; !ok {
			sinkOrder = append(sinkOrder, edge.To)
		}
		bySink[k] = append(bySink[k], edge)
	}

	for _, sink := range sinkOrder {
		group := bySink[pinKey(sink)]
		sinkAt := anchors[pinKey(sink)].At
		node := Point{X: sinkAt.X - MuxGutter, Y: sinkAt.Y}
		plan.Muxes = append(plan.Muxes, Mux{Block: blk.Path, Name: name, Sink: sink.String(), At: node})
		for _, edge := range group {
			from := anchors[pinKey(edge.From)]
			plan.Wires = append(plan.Wires, Segment{Kind: "mux", Name: name, From: from.At, To: node})
		}
		plan.Wires = append(plan.Wires, Segment{Kind: "mux", Name: name, From: node, To: sinkAt})
	}

	plan.Orders = append(plan.Orders, e.reducedOrder(blk.Path, name, edges, anchors))
}

// routeComplete emits the full cross product as straight segments and
// records the crossing-reduced attachment order of the bundle.
func (e *engine) routeComplete(blk *Block, name string, edges []netgraph.Edge, anchors map[string]PinAnchor, plan *Plan) {
	for _, edge := range edges {
		from, to := anchors[pinKey(edge.From)], anchors[pinKey(edge.To)]
		plan.Wires = append(plan.Wires, Segment{Kind: "complete", Name: name, From: from.At, To: to.At})
	}
	plan.Orders = append(plan.Orders, e.reducedOrder(blk.Path, name, edges, anchors))
}

// reducedOrder runs the greedy crossing reduction for one bundle. Sources
// and sinks enter in expansion order (the declaration order tie-break) and
// come out in the order that survived the bounded descent.
func (e *engine) reducedOrder(path, name string, edges []netgraph.Edge, anchors map[string]PinAnchor) Ordering {
	var srcPins, sinkPins []netgraph.Pin
	srcSlot := make(map[string]int)
	sinkSlot := make(map[string]int)
	idx := make([][2]int, len(edges))
	for i, edge := range edges {
		fk, tk := pinKey(edge.From), pinKey(edge.To)
		s, ok := srcSlot[fk]
		if !ok {
			s = len(srcPins)
			srcSlot[fk] = s
			srcPins = append(srcPins, edge.From)
		}
		t, ok := sinkSlot[tk]
		if !ok {
			t = len(sinkPins)
			sinkSlot[tk] = t
			sinkPins = append(sinkPins, edge.To)
		}
		idx[i] = [2]int{s, t}
	}

	srcPos, sinkPos := reduceCrossings(len(srcPins), len(sinkPins), idx, e.state.passes())

	ord := Ordering{Block: path, Name: name}
	ord.Sources = orderedNames(srcPins, srcPos)
	ord.Sinks = orderedNames(sinkPins, sinkPos)
	return ord
}

func orderedNames(pins []netgraph.Pin, pos []int) []string {
	out := make([]string, len(pins))
	for slot, p := range pos {
		out[p] = pins[slot].String()
	}
	return out
}

// levelAnchors indexes every pin reachable from one routing level: the
// block's own pins under the block type name, each child's pins under its
// instance name.
func levelAnchors(blk *Block) map[string]PinAnchor {
	anchors := make(map[string]PinAnchor)
	for _, p := range blk.Pins {
		anchors[keyOf(blk.Type, p)] = p
	}
	for _, c := range blk.Children {
		for _, p := range c.Pins {
			anchors[keyOf(c.Instance, p)] = p
		}
	}
	return anchors
}

func keyOf(instance string, p PinAnchor) string {
	return pinKey(netgraph.Pin{Instance: instance, Port: p.Port, Index: p.Index})
}
