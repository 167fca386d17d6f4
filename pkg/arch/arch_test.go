package arch

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/archview/archview/pkg/xmltree"
)

func ExampleParse() {
	a, err := Parse(strings.NewReader(`
<architecture>
  <complexblocklist>
    <pb_type name="clb">
      <input name="I" num_pins="8"/>
      <output name="O" num_pins="4"/>
    </pb_type>
  </complexblocklist>
</architecture>`))
	if err != nil {
		fmt.Println(err)
		return
	}
	b, _ := a.Block("clb")
	p, _ := b.Port("I")
	fmt.Println(b.Name, p.Width)
	// Output: clb 8
}

const minimalDoc = `
<architecture>
  <models>
    <model name="my_lut">
      <input_ports><port name="in"/></input_ports>
      <output_ports><port name="out"/></output_ports>
    </model>
  </models>
  <tiles>
    <tile name="clb_tile" width="1" height="1" area="53894">
      <sub_tile name="clb_sub" capacity="1">
        <equivalent_sites><site pb_type="clb"/></equivalent_sites>
        <input name="I" num_pins="10"/>
        <output name="O" num_pins="4"/>
        <clock name="clk" num_pins="1"/>
      </sub_tile>
    </tile>
  </tiles>
  <layout>
    <fixed_layout name="small" width="6" height="6">
      <fill type="clb_tile" priority="10"/>
    </fixed_layout>
    <auto_layout aspect_ratio="1.5">
      <perimeter type="clb_tile" priority="100"/>
      <fill type="clb_tile" priority="10"/>
    </auto_layout>
  </layout>
  <device>
    <sizing R_minW_nmos="8926" R_minW_pmos="16067"/>
    <area grid_logic_tile_area="0"/>
    <chan_width_distr>
      <x distr="uniform" peak="1.0"/>
      <y distr="uniform" peak="1.0"/>
    </chan_width_distr>
    <switch_block type="wilton" fs="3"/>
    <connection_block input_switch_name="ipin_cblock"/>
  </device>
  <switchlist>
    <switch name="ipin_cblock" type="mux" R="551" Cin=".77e-15" Cout="4e-15" Tdel="58e-12"/>
  </switchlist>
  <segmentlist>
    <segment name="L4" freq="1.0" length="4" type="unidir" Rmetal="101" Cmetal="22.5e-15"/>
  </segmentlist>
  <complexblocklist>
    <pb_type name="clb">
      <input name="I" num_pins="10" equivalent="full"/>
      <output name="O" num_pins="4"/>
      <clock name="clk" num_pins="1"/>
      <pb_type name="ble" num_pb="4">
        <input name="in" num_pins="4"/>
        <output name="out" num_pins="1"/>
        <clock name="clk" num_pins="1"/>
        <mode name="lut_mode">
          <pb_type name="lut4" blif_model=".names" class="lut">
            <input name="in" num_pins="4" port_class="lut_in"/>
            <output name="out" num_pins="1" port_class="lut_out"/>
          </pb_type>
          <interconnect>
            <direct name="lut_in" input="ble.in" output="lut4.in"/>
            <direct name="lut_out" input="lut4.out" output="ble.out"/>
          </interconnect>
        </mode>
        <mode name="ff_mode">
          <pb_type name="ff" blif_model=".latch" class="flipflop">
            <input name="D" num_pins="1" port_class="D"/>
            <output name="Q" num_pins="1" port_class="Q"/>
            <clock name="clk" num_pins="1" port_class="clock"/>
          </pb_type>
          <interconnect>
            <direct name="ff_in" input="ble.in[0]" output="ff.D"/>
            <direct name="ff_out" input="ff.Q" output="ble.out"/>
            <direct name="ff_clk" input="ble.clk" output="ff.clk"/>
          </interconnect>
        </mode>
      </pb_type>
      <interconnect>
        <complete name="crossbar" input="clb.I ble[3:0].out" output="ble[3:0].in"/>
        <direct name="outs" input="ble[3:0].out" output="clb.O"/>
        <complete name="clks" input="clb.clk" output="ble[3:0].clk"/>
      </interconnect>
    </pb_type>
  </complexblocklist>
</architecture>`

func parseMinimal(t *testing.T) *Arch {
	t.Helper()
	a, err := Parse(strings.NewReader(minimalDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return a
}

func TestParse_Sections(t *testing.T) {
	a := parseMinimal(t)

	if len(a.Models) != 1 || a.Models[0].Name != "my_lut" {
		t.Errorf("Models = %+v, want one model my_lut", a.Models)
	}
	if got := a.Models[0].Inputs; len(got) != 1 || got[0] != "in" {
		t.Errorf("model inputs = %v, want [in]", got)
	}
	if len(a.Switches) != 1 || a.Switches[0].Name != "ipin_cblock" {
		t.Errorf("Switches = %+v, want one switch ipin_cblock", a.Switches)
	}
	if a.Switches[0].R != 551 {
		t.Errorf("switch R = %v, want 551", a.Switches[0].R)
	}
	if len(a.Segments) != 1 || a.Segments[0].Length != 4 {
		t.Errorf("Segments = %+v, want one segment of length 4", a.Segments)
	}
	if a.Device.SwitchBlockType != "wilton" || a.Device.SwitchBlockFS != 3 {
		t.Errorf("switch block = %q fs=%d, want wilton fs=3", a.Device.SwitchBlockType, a.Device.SwitchBlockFS)
	}
	if a.Device.RMinWNMOS != 8926 {
		t.Errorf("R_minW_nmos = %v, want 8926", a.Device.RMinWNMOS)
	}
}

func TestParse_TileAndSiteResolution(t *testing.T) {
	a := parseMinimal(t)

	tile, ok := a.Tile("clb_tile")
	if !ok {
		t.Fatal("Tile(clb_tile) not found")
	}
	if tile.Width != 1 || tile.Height != 1 {
		t.Errorf("tile footprint = %dx%d, want 1x1", tile.Width, tile.Height)
	}
	if len(tile.SubTiles) != 1 {
		t.Fatalf("len(SubTiles) = %d, want 1", len(tile.SubTiles))
	}
	st := tile.SubTiles[0]
	if len(st.Ports) != 3 {
		t.Errorf("sub-tile ports = %d, want 3", len(st.Ports))
	}
	root, ok := tile.RootBlock()
	if !ok {
		t.Fatal("RootBlock() not resolved")
	}
	if root.Name != "clb" {
		t.Errorf("RootBlock().Name = %q, want clb", root.Name)
	}
}

func TestParse_LayoutVariants(t *testing.T) {
	a := parseMinimal(t)

	small, ok := a.Layout("small")
	if !ok {
		t.Fatal("Layout(small) not found")
	}
	if small.Kind != FixedLayout || small.Width != 6 || small.Height != 6 {
		t.Errorf("small = kind=%v %dx%d, want fixed 6x6", small.Kind, small.Width, small.Height)
	}
	auto, ok := a.Layout("auto")
	if !ok {
		t.Fatal("Layout(auto) not found")
	}
	if auto.Kind != AutoLayout || auto.AspectRatio != 1.5 {
		t.Errorf("auto = kind=%v aspect=%v, want auto 1.5", auto.Kind, auto.AspectRatio)
	}
	if len(auto.Places) != 2 || auto.Places[0].Kind != PlacePerimeter {
		t.Errorf("auto places = %+v, want perimeter then fill", auto.Places)
	}

	// Empty name selects the first declared variant.
	first, ok := a.Layout("")
	if !ok || first.Name != "small" {
		t.Errorf("Layout(\"\") = %v, want small", first)
	}
}

func TestParse_BlockHierarchy(t *testing.T) {
	a := parseMinimal(t)

	clb, ok := a.Block("clb")
	if !ok {
		t.Fatal("Block(clb) not found")
	}
	if got := clb.ModeNames(); len(got) != 1 || got[0] != "" {
		t.Errorf("clb.ModeNames() = %v, want the single implicit mode", got)
	}
	def, _ := clb.Mode("")
	if len(def.Children) != 1 || len(def.Interconnects) != 3 {
		t.Fatalf("clb default mode: %d children, %d interconnects; want 1 and 3", len(def.Children), len(def.Interconnects))
	}

	ble := def.Children[0]
	if ble.Name != "ble" || ble.NumPB != 4 {
		t.Errorf("ble = %q num_pb=%d, want ble num_pb=4", ble.Name, ble.NumPB)
	}
	if got := ble.ModeNames(); len(got) != 2 || got[0] != "lut_mode" || got[1] != "ff_mode" {
		t.Errorf("ble.ModeNames() = %v, want [lut_mode ff_mode]", got)
	}

	// The empty mode name on a block with declared modes selects the first.
	m, ok := ble.Mode("")
	if !ok || m.Name != "lut_mode" {
		t.Errorf("ble.Mode(\"\") = %v, want lut_mode", m)
	}
	ff, ok := ble.Mode("ff_mode")
	if !ok {
		t.Fatal("Mode(ff_mode) not found")
	}
	if ff.Children[0].BlifModel != ".latch" {
		t.Errorf("ff blif_model = %q, want .latch", ff.Children[0].BlifModel)
	}

	in, ok := ble.Port("in")
	if !ok || in.Width != 4 || in.Dir != DirInput {
		t.Errorf("ble.Port(in) = %+v, want 4-wide input", in)
	}
}

func TestParse_InterconnectText(t *testing.T) {
	a := parseMinimal(t)
	clb, _ := a.Block("clb")
	def, _ := clb.Mode("")

	xbar := def.Interconnects[0]
	if xbar.Kind != KindComplete || xbar.Name != "crossbar" {
		t.Fatalf("first interconnect = %v %q, want complete crossbar", xbar.Kind, xbar.Name)
	}
	if xbar.Input != "clb.I ble[3:0].out" {
		t.Errorf("crossbar input = %q, symbolic text must be preserved verbatim", xbar.Input)
	}
	if xbar.Line == 0 {
		t.Error("interconnect line position not recorded")
	}
}

func TestParse_ReferenceChildResolved(t *testing.T) {
	doc := `
<architecture>
  <tiles><tile name="t"><sub_tile name="s"><equivalent_sites><site pb_type="top"/></equivalent_sites></sub_tile></tile></tiles>
  <layout><fixed_layout name="f" width="2" height="2"><fill type="t" priority="1"/></fixed_layout></layout>
  <complexblocklist>
    <pb_type name="top">
      <input name="in" num_pins="2"/>
      <pb_type name="leaf" num_pb="3"/>
      <interconnect><direct name="d" input="top.in" output="leaf[1:0].x"/></interconnect>
    </pb_type>
    <pb_type name="leaf">
      <input name="x" num_pins="1"/>
      <output name="y" num_pins="1"/>
    </pb_type>
  </complexblocklist>
</architecture>`
	a, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	top, _ := a.Block("top")
	m, _ := top.Mode("")
	leaf := m.Children[0]
	if leaf.Name != "leaf" {
		t.Fatalf("child = %q, want leaf", leaf.Name)
	}
	if leaf.NumPB != 3 {
		t.Errorf("reference num_pb = %d, want 3 from the referencing site", leaf.NumPB)
	}
	if _, ok := leaf.Port("x"); !ok {
		t.Error("resolved reference is missing the definition's ports")
	}

	// The instantiated child must be a clone, not the shared definition.
	def, _ := a.Block("leaf")
	if leaf == def {
		t.Error("reference resolved to the shared definition instead of a clone")
	}
	if def.NumPB != 1 {
		t.Errorf("definition num_pb mutated to %d", def.NumPB)
	}
}

func TestParse_CyclicReference(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="a">
      <input name="i" num_pins="1"/>
      <pb_type name="b"/>
    </pb_type>
    <pb_type name="b">
      <input name="i" num_pins="1"/>
      <pb_type name="a"/>
    </pb_type>
  </complexblocklist>
</architecture>`
	_, err := Parse(strings.NewReader(doc))
	var cerr *CyclicHierarchyError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *CyclicHierarchyError", err)
	}
	if len(cerr.Path) < 3 {
		t.Errorf("cycle path = %v, want the full reference chain", cerr.Path)
	}
	if !strings.Contains(cerr.Error(), " -> ") {
		t.Errorf("Error() = %q, want arrow-joined chain", cerr.Error())
	}
}

func TestParse_SelfReference(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="a">
      <input name="i" num_pins="1"/>
      <pb_type name="a"/>
    </pb_type>
  </complexblocklist>
</architecture>`
	_, err := Parse(strings.NewReader(doc))
	var cerr *CyclicHierarchyError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *CyclicHierarchyError", err)
	}
}

func TestParse_UnresolvedSite(t *testing.T) {
	doc := `
<architecture>
  <tiles><tile name="t"><sub_tile name="s"><equivalent_sites><site pb_type="ghost"/></equivalent_sites></sub_tile></tile></tiles>
</architecture>`
	_, err := Parse(strings.NewReader(doc))
	var uerr *UnresolvedReferenceError
	if !errors.As(err, &uerr) {
		t.Fatalf("error = %v, want *UnresolvedReferenceError", err)
	}
	if uerr.Name != "ghost" || uerr.Kind != "pb_type" {
		t.Errorf("unresolved = %s %q, want pb_type ghost", uerr.Kind, uerr.Name)
	}
}

func TestParse_UnresolvedLayoutTile(t *testing.T) {
	doc := `
<architecture>
  <layout><fixed_layout name="f" width="2" height="2"><fill type="missing" priority="1"/></fixed_layout></layout>
</architecture>`
	_, err := Parse(strings.NewReader(doc))
	var uerr *UnresolvedReferenceError
	if !errors.As(err, &uerr) {
		t.Fatalf("error = %v, want *UnresolvedReferenceError", err)
	}
	if uerr.Kind != "tile" {
		t.Errorf("Kind = %q, want tile", uerr.Kind)
	}
}

func TestParse_EmptyClearsWithoutTile(t *testing.T) {
	doc := `
<architecture>
  <layout><fixed_layout name="f" width="2" height="2"><single type="EMPTY" x="0" y="0" priority="5"/></fixed_layout></layout>
</architecture>`
	if _, err := Parse(strings.NewReader(doc)); err != nil {
		t.Fatalf("EMPTY placement must not require a tile declaration: %v", err)
	}
}

func TestParse_DuplicateTile(t *testing.T) {
	doc := `
<architecture>
  <tiles><tile name="t"/><tile name="t"/></tiles>
</architecture>`
	_, err := Parse(strings.NewReader(doc))
	var derr *DuplicateNameError
	if !errors.As(err, &derr) {
		t.Fatalf("error = %v, want *DuplicateNameError", err)
	}
	if derr.Kind != "tile" || derr.Name != "t" {
		t.Errorf("duplicate = %s %q, want tile t", derr.Kind, derr.Name)
	}
}

func TestParse_DuplicatePort(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="b" blif_model=".names">
      <input name="p" num_pins="1"/>
      <output name="p" num_pins="1"/>
    </pb_type>
  </complexblocklist>
</architecture>`
	_, err := Parse(strings.NewReader(doc))
	var derr *DuplicateNameError
	if !errors.As(err, &derr) {
		t.Fatalf("error = %v, want *DuplicateNameError", err)
	}
	if derr.Kind != "port" {
		t.Errorf("Kind = %q, want port", derr.Kind)
	}
}

func TestParse_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			"missing pb_type name",
			`<architecture><complexblocklist><pb_type blif_model=".names"/></complexblocklist></architecture>`,
		},
		{
			"bad num_pins",
			`<architecture><complexblocklist><pb_type name="b" blif_model=".names"><input name="i" num_pins="four"/></pb_type></complexblocklist></architecture>`,
		},
		{
			"zero num_pins",
			`<architecture><complexblocklist><pb_type name="b" blif_model=".names"><input name="i" num_pins="0"/></pb_type></complexblocklist></architecture>`,
		},
		{
			"single without coordinates",
			`<architecture><layout><fixed_layout name="f" width="2" height="2"><single type="EMPTY" priority="1"/></fixed_layout></layout></architecture>`,
		},
		{
			"wrong root element",
			`<notarch/>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			var serr *SchemaError
			if !errors.As(err, &serr) {
				t.Fatalf("error = %v, want *SchemaError", err)
			}
			if serr.Line == 0 {
				t.Errorf("SchemaError has no line position: %v", serr)
			}
		})
	}
}

func TestParse_UnknownAttrsPreserved(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="b" blif_model=".names" vendor_hint="fast">
      <input name="i" num_pins="1" custom="x"/>
      <power method="ignore"/>
    </pb_type>
  </complexblocklist>
</architecture>`
	a, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	b, _ := a.Block("b")
	if len(b.ExtraAttrs) != 1 || b.ExtraAttrs[0].Name != "vendor_hint" {
		t.Errorf("ExtraAttrs = %v, want vendor_hint preserved", b.ExtraAttrs)
	}
	if len(b.Extensions) != 1 || b.Extensions[0].Name != "power" {
		t.Errorf("Extensions = %v, want the power element preserved", b.Extensions)
	}
	p, _ := b.Port("i")
	if len(p.ExtraAttrs) != 1 || p.ExtraAttrs[0].Name != "custom" {
		t.Errorf("port ExtraAttrs = %v, want custom preserved", p.ExtraAttrs)
	}
}

func TestParse_MixedModeAndBareChildren(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="b">
      <input name="i" num_pins="1"/>
      <mode name="m"><pb_type name="x" blif_model=".names"/></mode>
      <pb_type name="stray" blif_model=".names"/>
    </pb_type>
  </complexblocklist>
</architecture>`
	_, err := Parse(strings.NewReader(doc))
	var serr *SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *SchemaError for a child outside any mode", err)
	}
}

func TestParse_PortTiming(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="lut" blif_model=".names" class="lut">
      <input name="in" num_pins="4">
        <delay_constant max="2.4e-10" in_port="lut.in" out_port="lut.out"/>
      </input>
      <output name="out" num_pins="1"/>
    </pb_type>
  </complexblocklist>
</architecture>`
	a, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	b, _ := a.Block("lut")
	p, _ := b.Port("in")
	if len(p.Timing) != 1 {
		t.Fatalf("len(Timing) = %d, want 1", len(p.Timing))
	}
	d := p.Timing[0]
	if d.Kind != "delay_constant" {
		t.Errorf("Kind = %q, want delay_constant", d.Kind)
	}
	if d.Values["max"] != 2.4e-10 {
		t.Errorf("Values[max] = %v, want 2.4e-10", d.Values["max"])
	}
	if d.Attrs["in_port"] != "lut.in" {
		t.Errorf("Attrs[in_port] = %q, want lut.in", d.Attrs["in_port"])
	}
}

func TestParse_SegmentLongline(t *testing.T) {
	doc := `
<architecture>
  <segmentlist><segment name="long" length="longline" freq="0.1"/></segmentlist>
</architecture>`
	a, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if a.Segments[0].Length != 0 {
		t.Errorf("longline length = %d, want 0", a.Segments[0].Length)
	}
}

func TestParse_InterconnectUnknownChildrenPreserved(t *testing.T) {
	doc := `
<architecture>
  <complexblocklist>
    <pb_type name="clb">
      <input name="I" num_pins="1"/>
      <output name="O" num_pins="1"/>
      <interconnect>
        <direct name="d" input="clb.I" output="clb.O"/>
        <metadata scheme="custom"/>
      </interconnect>
    </pb_type>
  </complexblocklist>
</architecture>`
	a, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	b, _ := a.Block("clb")
	m, ok := b.Mode("")
	if !ok {
		t.Fatal("default mode missing")
	}
	if len(m.Interconnects) != 1 {
		t.Fatalf("interconnects = %d, want 1", len(m.Interconnects))
	}
	var ext *xmltree.Element
	for _, e := range m.Extensions {
		if e.Name == "metadata" {
			ext = e
		}
	}
	if ext == nil {
		t.Fatalf("metadata element not kept, extensions = %v", m.Extensions)
	}
	if v, _ := ext.Attr("scheme"); v != "custom" {
		t.Errorf("scheme = %q, want custom", v)
	}
}

func TestParse_DeviceUnknownAttrsPreserved(t *testing.T) {
	doc := `
<architecture>
  <device>
    <sizing R_minW_nmos="8926" custom="y"/>
    <chan_width_distr>
      <x distr="uniform" peak="1.0" taper="0.5"/>
      <y distr="uniform" peak="1.0"/>
    </chan_width_distr>
    <switch_block type="wilton" fs="3" sub_type="x"/>
  </device>
</architecture>`
	a, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := make(map[string]string)
	for _, attr := range a.Device.ExtraAttrs {
		got[attr.Name] = attr.Value
	}
	if got["custom"] != "y" || got["sub_type"] != "x" {
		t.Errorf("Device.ExtraAttrs = %v, want custom and sub_type kept", a.Device.ExtraAttrs)
	}
	x := a.Device.ChanWidthDistrX
	if len(x.ExtraAttrs) != 1 || x.ExtraAttrs[0].Name != "taper" {
		t.Errorf("x distr ExtraAttrs = %v, want taper kept", x.ExtraAttrs)
	}
	if len(a.Device.ChanWidthDistrY.ExtraAttrs) != 0 {
		t.Errorf("y distr ExtraAttrs = %v, want none", a.Device.ChanWidthDistrY.ExtraAttrs)
	}
}
