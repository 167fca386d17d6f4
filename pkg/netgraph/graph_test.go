package netgraph

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/archview/archview/pkg/arch"
)

func ExampleInstanceName() {
	fmt.Println(InstanceName("ble", 2, 4))
	fmt.Println(InstanceName("lut", 0, 1))
	// Output:
	// ble[2]
	// lut
}

func mustBlock(t *testing.T, doc string, name string) *arch.BlockType {
	t.Helper()
	a, err := arch.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("arch.Parse() error = %v", err)
	}
	b, ok := a.Block(name)
	if !ok {
		t.Fatalf("Block(%s) not found", name)
	}
	return b
}

const bleDoc = `
<architecture>
  <complexblocklist>
    <pb_type name="clb">
      <input name="I" num_pins="4"/>
      <output name="O" num_pins="2"/>
      <clock name="clk" num_pins="1"/>
      <pb_type name="ble" num_pb="2">
        <input name="in" num_pins="3"/>
        <output name="out" num_pins="1"/>
      </pb_type>
      <interconnect>
        <complete name="xbar" input="clb.I" output="ble[1:0].in"/>
        <direct name="outs" input="ble[1:0].out" output="clb.O"/>
      </interconnect>
    </pb_type>
  </complexblocklist>
</architecture>`

func TestResolve_Instances(t *testing.T) {
	b := mustBlock(t, bleDoc, "clb")
	g, err := Resolve(b, "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(g.Instances) != 2 {
		t.Fatalf("len(Instances) = %d, want 2", len(g.Instances))
	}
	if g.Instances[0].Name != "ble[0]" || g.Instances[1].Name != "ble[1]" {
		t.Errorf("instances = %q, %q; want ble[0], ble[1]", g.Instances[0].Name, g.Instances[1].Name)
	}
}

func TestResolve_CompleteCrossProduct(t *testing.T) {
	b := mustBlock(t, bleDoc, "clb")
	g, err := Resolve(b, "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	var xbar []Edge
	for _, e := range g.Edges {
		if e.Name == "xbar" {
			xbar = append(xbar, e)
		}
	}
	// 4 source pins times 6 sink pins (2 instances of a 3-wide port).
	if len(xbar) != 24 {
		t.Fatalf("crossbar edges = %d, want 24", len(xbar))
	}
	// Explicit [1:0] expands msb first, then pins ascending.
	first := xbar[0]
	if first.From != (Pin{Instance: "clb", Port: "I", Index: 0}) {
		t.Errorf("first edge source = %v, want clb.I[0]", first.From)
	}
	if first.To != (Pin{Instance: "ble[1]", Port: "in", Index: 0}) {
		t.Errorf("first edge sink = %v, want ble[1].in[0]", first.To)
	}
}

func TestResolve_DirectPairing(t *testing.T) {
	b := mustBlock(t, bleDoc, "clb")
	g, err := Resolve(b, "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	var outs []Edge
	for _, e := range g.Edges {
		if e.Name == "outs" {
			outs = append(outs, e)
		}
	}
	if len(outs) != 2 {
		t.Fatalf("direct edges = %d, want 2", len(outs))
	}
	// ble[1:0].out pairs with clb.O[0], clb.O[1] in expansion order.
	if outs[0].From.Instance != "ble[1]" || outs[0].To != (Pin{Instance: "clb", Port: "O", Index: 0}) {
		t.Errorf("outs[0] = %v -> %v, want ble[1].out[0] -> clb.O[0]", outs[0].From, outs[0].To)
	}
	if outs[1].From.Instance != "ble[0]" || outs[1].To.Index != 1 {
		t.Errorf("outs[1] = %v -> %v, want ble[0].out[0] -> clb.O[1]", outs[1].From, outs[1].To)
	}
}

func TestResolve_DirectWidthMismatch(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="b">
      <input name="in" num_pins="3"/>
      <output name="out" num_pins="2"/>
      <pb_type name="c" blif_model=".names">
        <input name="x" num_pins="3"/>
        <output name="y" num_pins="2"/>
      </pb_type>
      <interconnect>
        <direct name="bad" input="b.in" output="c.x[1:0]"/>
      </interconnect>
    </pb_type>
  </complexblocklist>
</architecture>`
	b := mustBlock(t, doc, "b")
	_, err := Resolve(b, "")
	var cerr *CardinalityError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *CardinalityError", err)
	}
	if cerr.Inputs != 3 || cerr.Outputs != 2 {
		t.Errorf("cardinality = %d -> %d, want 3 -> 2", cerr.Inputs, cerr.Outputs)
	}
	if cerr.Line == 0 {
		t.Error("CardinalityError has no line position")
	}
}

func TestResolve_MuxSingleSink(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="b">
      <input name="a" num_pins="2"/>
      <input name="c" num_pins="3"/>
      <output name="o" num_pins="1"/>
      <interconnect>
        <mux name="sel" input="b.a b.c" output="b.o"/>
      </interconnect>
    </pb_type>
  </complexblocklist>
</architecture>`
	b := mustBlock(t, doc, "b")
	g, err := Resolve(b, "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	// A 1-pin sink takes every source pin into one selector.
	if len(g.Edges) != 5 {
		t.Fatalf("mux edges = %d, want 5", len(g.Edges))
	}
	for _, e := range g.Edges {
		if e.To != (Pin{Instance: "b", Port: "o", Index: 0}) {
			t.Errorf("edge sink = %v, want b.o[0]", e.To)
		}
		if e.Kind != arch.KindMux {
			t.Errorf("edge kind = %v, want mux", e.Kind)
		}
	}
}

func TestResolve_MuxWideSink(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="b">
      <input name="a" num_pins="2"/>
      <input name="c" num_pins="2"/>
      <output name="o" num_pins="2"/>
      <interconnect>
        <mux name="sel" input="b.a b.c" output="b.o"/>
      </interconnect>
    </pb_type>
  </complexblocklist>
</architecture>`
	b := mustBlock(t, doc, "b")
	g, err := Resolve(b, "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	// Two selectors, each choosing between the matching pin of a and c.
	if len(g.Edges) != 4 {
		t.Fatalf("mux edges = %d, want 4", len(g.Edges))
	}
	want := []Edge{
		{Kind: arch.KindMux, Name: "sel", From: Pin{"b", "a", 0}, To: Pin{"b", "o", 0}},
		{Kind: arch.KindMux, Name: "sel", From: Pin{"b", "c", 0}, To: Pin{"b", "o", 0}},
		{Kind: arch.KindMux, Name: "sel", From: Pin{"b", "a", 1}, To: Pin{"b", "o", 1}},
		{Kind: arch.KindMux, Name: "sel", From: Pin{"b", "c", 1}, To: Pin{"b", "o", 1}},
	}
	for i, w := range want {
		if g.Edges[i] != w {
			t.Errorf("edge %d = %v, want %v", i, g.Edges[i], w)
		}
	}
}

func TestResolve_MuxTokenWidthMismatch(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="b">
      <input name="a" num_pins="3"/>
      <output name="o" num_pins="2"/>
      <interconnect>
        <mux name="sel" input="b.a" output="b.o"/>
      </interconnect>
    </pb_type>
  </complexblocklist>
</architecture>`
	b := mustBlock(t, doc, "b")
	_, err := Resolve(b, "")
	var cerr *CardinalityError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *CardinalityError", err)
	}
}

func TestResolve_PinOutOfRange(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="b">
      <input name="in" num_pins="2"/>
      <output name="out" num_pins="2"/>
      <interconnect>
        <direct name="d" input="b.in[2]" output="b.out[0]"/>
      </interconnect>
    </pb_type>
  </complexblocklist>
</architecture>`
	b := mustBlock(t, doc, "b")
	_, err := Resolve(b, "")
	var perr *PinRangeError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *PinRangeError", err)
	}
	if perr.Index != 2 || perr.Width != 2 {
		t.Errorf("range = index %d width %d, want 2 and 2", perr.Index, perr.Width)
	}
}

func TestResolve_UndeclaredChild(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="b">
      <input name="in" num_pins="2"/>
      <output name="out" num_pins="2"/>
      <interconnect>
        <direct name="d" input="foo.x" output="b.out"/>
      </interconnect>
    </pb_type>
  </complexblocklist>
</architecture>`
	b := mustBlock(t, doc, "b")
	_, err := Resolve(b, "")
	var uerr *arch.UnresolvedReferenceError
	if !errors.As(err, &uerr) {
		t.Fatalf("error = %v, want *arch.UnresolvedReferenceError", err)
	}
	if uerr.Name != "foo" {
		t.Errorf("Name = %q, want foo", uerr.Name)
	}
}

func TestResolve_ChildOfOtherMode(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="b">
      <input name="in" num_pins="1"/>
      <output name="out" num_pins="1"/>
      <mode name="m1">
        <pb_type name="u1" blif_model=".names">
          <input name="x" num_pins="1"/>
          <output name="y" num_pins="1"/>
        </pb_type>
        <interconnect>
          <direct name="ok" input="b.in" output="u1.x"/>
        </interconnect>
      </mode>
      <mode name="m2">
        <pb_type name="u2" blif_model=".names">
          <input name="x" num_pins="1"/>
          <output name="y" num_pins="1"/>
        </pb_type>
        <interconnect>
          <direct name="bad" input="b.in" output="u1.x"/>
        </interconnect>
      </mode>
    </pb_type>
  </complexblocklist>
</architecture>`
	b := mustBlock(t, doc, "b")

	if _, err := Resolve(b, "m1"); err != nil {
		t.Fatalf("Resolve(m1) error = %v", err)
	}
	_, err := Resolve(b, "m2")
	var serr *ScopeViolationError
	if !errors.As(err, &serr) {
		t.Fatalf("Resolve(m2) error = %v, want *ScopeViolationError", err)
	}
	if !strings.Contains(serr.Error(), "m1") {
		t.Errorf("Error() = %q, want mention of the owning mode", serr.Error())
	}
}

func TestResolve_GrandchildReference(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="b">
      <input name="in" num_pins="1"/>
      <pb_type name="c">
        <input name="x" num_pins="1"/>
        <pb_type name="d" blif_model=".names">
          <input name="z" num_pins="1"/>
        </pb_type>
        <interconnect><direct name="i" input="c.x" output="d.z"/></interconnect>
      </pb_type>
      <interconnect>
        <direct name="bad" input="b.in" output="c.d.z"/>
      </interconnect>
    </pb_type>
  </complexblocklist>
</architecture>`
	b := mustBlock(t, doc, "b")
	_, err := Resolve(b, "")
	var serr *ScopeViolationError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *ScopeViolationError", err)
	}
}

func TestResolve_UnknownMode(t *testing.T) {
	b := mustBlock(t, bleDoc, "clb")
	_, err := Resolve(b, "nope")
	var uerr *arch.UnresolvedReferenceError
	if !errors.As(err, &uerr) {
		t.Fatalf("error = %v, want *arch.UnresolvedReferenceError", err)
	}
	if uerr.Kind != "mode" {
		t.Errorf("Kind = %q, want mode", uerr.Kind)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	b := mustBlock(t, bleDoc, "clb")
	g1, err := Resolve(b, "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	g2, err := Resolve(b, "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(g1.Edges) != len(g2.Edges) {
		t.Fatal("repeated resolution disagrees on edge count")
	}
	for i := range g1.Edges {
		if g1.Edges[i] != g2.Edges[i] {
			t.Errorf("edge %d differs between resolutions", i)
		}
	}
}

func TestResolve_BareTokenIsParentPort(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="b">
      <input name="in" num_pins="2"/>
      <output name="out" num_pins="2"/>
      <interconnect>
        <direct name="d" input="in" output="out"/>
      </interconnect>
    </pb_type>
  </complexblocklist>
</architecture>`
	b := mustBlock(t, doc, "b")
	g, err := Resolve(b, "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(g.Edges) != 2 {
		t.Fatalf("edges = %d, want 2 from bus auto-expansion", len(g.Edges))
	}
	if g.Edges[0].From != (Pin{Instance: "b", Port: "in", Index: 0}) {
		t.Errorf("first edge = %v, want b.in[0]", g.Edges[0].From)
	}
}
