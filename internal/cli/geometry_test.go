package cli

import (
	"strings"
	"testing"

	"github.com/archview/archview/pkg/arch"
)

func TestParseModeFlags(t *testing.T) {
	modes, err := parseModeFlags([]string{"clb.ble[0]=ff_mode", "clb.ble[1]=lut_mode"})
	if err != nil {
		t.Fatalf("parseModeFlags() error: %v", err)
	}
	if modes["clb.ble[0]"] != "ff_mode" || modes["clb.ble[1]"] != "lut_mode" {
		t.Errorf("parseModeFlags() = %v", modes)
	}

	if _, err := parseModeFlags([]string{"no-equals"}); err == nil {
		t.Error("parseModeFlags() accepted a flag without =")
	}
	if modes, err := parseModeFlags(nil); err != nil || modes != nil {
		t.Errorf("parseModeFlags(nil) = %v, %v, want nil map", modes, err)
	}
}

func TestLookupBlock(t *testing.T) {
	doc := `
<architecture>
  <tiles>
    <tile name="clb_tile">
      <equivalent_sites><site pb_type="clb"/></equivalent_sites>
    </tile>
  </tiles>
  <complexblocklist>
    <pb_type name="clb">
      <input name="I" num_pins="1"/>
    </pb_type>
  </complexblocklist>
</architecture>`
	a, err := arch.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("arch.Parse() error: %v", err)
	}

	b, err := lookupBlock(a, "clb_tile", "")
	if err != nil || b.Name != "clb" {
		t.Errorf("lookupBlock(tile) = %v, %v, want clb", b, err)
	}
	b, err = lookupBlock(a, "", "clb")
	if err != nil || b.Name != "clb" {
		t.Errorf("lookupBlock(block) = %v, %v, want clb", b, err)
	}
	b, err = lookupBlock(a, "", "")
	if err != nil || b.Name != "clb" {
		t.Errorf("lookupBlock(default) = %v, %v, want first tile's block", b, err)
	}
	if _, err := lookupBlock(a, "ghost", ""); err == nil {
		t.Error("lookupBlock() with an unknown tile succeeded")
	}
	if _, err := lookupBlock(a, "", "ghost"); err == nil {
		t.Error("lookupBlock() with an unknown block succeeded")
	}
}
