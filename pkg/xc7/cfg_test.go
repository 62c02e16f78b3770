package xc7

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
)

func cfgCell(t *design.Tile, name, cellType string, params map[string]design.Property) *design.Cell {
	if params == nil {
		params = map[string]design.Property{}
	}
	return &design.Cell{
		Name:   name,
		Type:   cellType,
		Bel:    &design.Bel{Tile: t, Name: cellType, Site: "CFG_X0Y0"},
		Params: params,
		Attrs:  map[string]string{},
		Ports:  map[string]*design.Net{},
	}
}

func TestCfgPrimitives(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("CFG_CENTER_MID_X27Y55", "CFG_CENTER_MID", []string{"CFG_X0Y0"})
	d.AddTile(tile)
	d.AddCell(cfgCell(tile, "bscan0", "BSCAN", map[string]design.Property{
		"JTAG_CHAIN": design.IntProp(2),
	}))
	d.AddCell(cfgCell(tile, "dcireset0", "DCIRESET_DCIRESET", nil))
	d.AddCell(cfgCell(tile, "icap0", "ICAP_ICAP", map[string]design.Property{
		"ICAP_WIDTH": design.StringProp("X16"),
	}))

	b, buf, _ := newTestBackend(t, d)
	if err := b.writeCfg(); err != nil {
		t.Fatalf("writeCfg: %v", err)
	}
	lines := flushed(t, b, buf)

	prefix := "CFG_CENTER_MID_X27Y55."
	for _, want := range []string{
		"BSCAN.JTAG_CHAIN_2",
		"DCIRESET.ENABLED",
		"ICAP.ICAP_WIDTH_X16",
	} {
		if !hasLine(lines, prefix+want) {
			t.Fatalf("missing %s%s, got %v", prefix, want, lines)
		}
	}
}

func TestCfgStartupUsrcclko(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("CFG_CENTER_MID_X27Y55", "CFG_CENTER_MID", []string{"CFG_X0Y0"})
	d.AddTile(tile)
	startup := cfgCell(tile, "startup0", "STARTUP_STARTUP", map[string]design.Property{
		"PROG_USR": design.StringProp("FALSE"),
	})
	clk := &design.Net{Name: "spi_clk"}
	d.AddNet(clk)
	startup.Ports["USRCCLKO"] = clk
	d.AddCell(startup)

	b, buf, _ := newTestBackend(t, d)
	if err := b.writeCfg(); err != nil {
		t.Fatalf("writeCfg: %v", err)
	}
	lines := flushed(t, b, buf)

	if !hasLine(lines, "CFG_CENTER_MID_X27Y55.STARTUP.USRCCLKO_CONNECTED") {
		t.Fatalf("non-constant USRCCLKO marks the clock connected, got %v", lines)
	}
	if hasLine(lines, "CFG_CENTER_MID_X27Y55.STARTUP.PROG_USR") {
		t.Fatalf("PROG_USR FALSE must stay clear, got %v", lines)
	}
}

func TestCfgInvalidValues(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("CFG_CENTER_MID_X27Y55", "CFG_CENTER_MID", []string{"CFG_X0Y0"})
	d.AddTile(tile)

	cases := []*design.Cell{
		cfgCell(tile, "bscan_bad", "BSCAN", map[string]design.Property{
			"JTAG_CHAIN": design.IntProp(5),
		}),
		cfgCell(tile, "icap_bad", "ICAP_ICAP", map[string]design.Property{
			"ICAP_WIDTH": design.StringProp("X64"),
		}),
		cfgCell(tile, "startup_bad", "STARTUP_STARTUP", map[string]design.Property{
			"PROG_USR": design.StringProp("MAYBE"),
		}),
	}
	for _, ci := range cases {
		d2 := design.NewDesign(4, 4)
		t2 := buildTile(tile.Name, tile.Type, tile.Sites)
		d2.AddTile(t2)
		ci.Bel.Tile = t2
		d2.AddCell(ci)
		b, _, _ := newTestBackend(t, d2)
		if err := b.writeCfg(); err == nil {
			t.Fatalf("cell %s must fail validation", ci.Name)
		}
		if b.w.Depth() != 0 {
			t.Fatalf("prefix stack leaked after %s error", ci.Name)
		}
	}
}
