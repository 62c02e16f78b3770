package xc7

import (
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
)

func ramb18(t *design.Tile, site string, y int, params map[string]design.Property) *design.Cell {
	return &design.Cell{
		Name:   "bram_" + site,
		Type:   "RAMB18E1_RAMB18E1",
		Bel:    &design.Bel{Tile: t, Name: "RAMB18E1", Site: site, SiteY: y},
		Params: params,
		Attrs:  map[string]string{"X_ORIG_TYPE": "RAMB18E1"},
		Ports:  map[string]*design.Net{},
	}
}

func TestBramHalfConfig(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("BRAM_L_X6Y5", "BRAM_L", []string{"RAMB18_X0Y2"})
	d.AddTile(tile)

	init00 := make([]bool, 256)
	init00[0] = true
	d.AddCell(ramb18(tile, "RAMB18_X0Y2", 0, map[string]design.Property{
		"READ_WIDTH_A":  design.IntProp(36),
		"WRITE_WIDTH_B": design.IntProp(18),
		"DOA_REG":       design.IntProp(1),
		"WRITE_MODE_B":  design.StringProp("READ_FIRST"),
		"INIT_00":       design.BitsProp(init00),
	}))

	b, buf, _ := newTestBackend(t, d)
	if err := b.writeBram(); err != nil {
		t.Fatalf("writeBram: %v", err)
	}
	lines := flushed(t, b, buf)

	prefix := "BRAM_L_X6Y5.RAMB18_Y0."
	for _, want := range []string{
		"IN_USE",
		"SDP_READ_WIDTH_36",
		"READ_WIDTH_B_18",
		"WRITE_WIDTH_B_18",
		"DOA_REG",
		"WRITE_MODE_B_READ_FIRST",
		"ZINV_CLKARDCLK",
		"ZINV_RSTREGB",
		"ZINIT_A[17:0] = 18'b" + strings.Repeat("1", 18),
		"INIT_00[255:0] = 256'b" + strings.Repeat("0", 255) + "1",
	} {
		if !hasLine(lines, prefix+want) {
			t.Fatalf("missing %s%s, got %v", prefix, want, lines)
		}
	}
	// The upper half is empty.
	if hasLine(lines, "BRAM_L_X6Y5.RAMB18_Y1.IN_USE") {
		t.Fatalf("empty upper half must not be in use: %v", lines)
	}
	// No cascade pips were recorded.
	if hasLineWith(lines, "CASCOUT") {
		t.Fatalf("no cascade expected, got %v", lines)
	}
}

func TestBram36InterleavesInit(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("BRAM_R_X9Y0", "BRAM_R", []string{"RAMB36_X0Y0"})
	d.AddTile(tile)

	// Bit 0 of INIT_00 lands in the lower half; bit 1 in the upper.
	init00 := make([]bool, 256)
	init00[0] = true
	init00[1] = true
	cell := &design.Cell{
		Name: "bram36",
		Type: "RAMB36E1_RAMB36E1",
		Bel:  &design.Bel{Tile: tile, Name: "RAMB36E1", Site: "RAMB36_X0Y0"},
		Params: map[string]design.Property{
			"INIT_00": design.BitsProp(init00),
		},
		Attrs: map[string]string{"X_ORIG_TYPE": "RAMB36E1"},
		Ports: map[string]*design.Net{},
	}
	d.AddCell(cell)

	b, buf, _ := newTestBackend(t, d)
	if err := b.writeBram(); err != nil {
		t.Fatalf("writeBram: %v", err)
	}
	lines := flushed(t, b, buf)

	wantVec := " = 256'b" + strings.Repeat("0", 255) + "1"
	for _, half := range []string{"Y0", "Y1"} {
		want := "BRAM_R_X9Y0.RAMB18_" + half + ".INIT_00[255:0]" + wantVec
		if !hasLine(lines, want) {
			t.Fatalf("missing %q, got %v", want, lines)
		}
		if !hasLine(lines, "BRAM_R_X9Y0.RAMB18_"+half+".IN_USE") {
			t.Fatalf("both halves of a 36K block are in use")
		}
	}
}

func TestBramWidth72ReadA(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("BRAM_L_X6Y10", "BRAM_L", []string{"RAMB36_X0Y2"})
	d.AddTile(tile)
	cell := &design.Cell{
		Name: "bram72",
		Type: "RAMB36E1_RAMB36E1",
		Bel:  &design.Bel{Tile: tile, Name: "RAMB36E1", Site: "RAMB36_X0Y2"},
		Params: map[string]design.Property{
			"READ_WIDTH_A": design.IntProp(72),
		},
		Attrs: map[string]string{"X_ORIG_TYPE": "RAMB36E1"},
		Ports: map[string]*design.Net{},
	}
	d.AddCell(cell)

	b, buf, _ := newTestBackend(t, d)
	if err := b.writeBram(); err != nil {
		t.Fatalf("writeBram: %v", err)
	}
	lines := flushed(t, b, buf)

	// Width 72 halves to 36 per 18K half and marks the A port's extra
	// read width in both halves.
	for _, half := range []string{"Y0", "Y1"} {
		prefix := "BRAM_L_X6Y10.RAMB18_" + half + "."
		for _, want := range []string{"READ_WIDTH_A_18", "SDP_READ_WIDTH_36", "READ_WIDTH_B_18"} {
			if !hasLine(lines, prefix+want) {
				t.Fatalf("missing %s%s, got %v", prefix, want, lines)
			}
		}
	}
}

func TestBramCascadeFromRecordedPips(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("BRAM_L_X6Y15", "BRAM_L", []string{"RAMB18_X0Y6"},
		"SRC", "BRAM_CASCOUT_ADDRARDADDR0")
	pip := pipOn(tile, "SRC", "BRAM_CASCOUT_ADDRARDADDR0", design.PipTileRouting)
	d.AddTile(tile)
	d.AddCell(ramb18(tile, "RAMB18_X0Y6", 0, map[string]design.Property{}))

	b, buf, _ := newTestBackend(t, d)
	b.pipsByTile[tile.Index] = append(b.pipsByTile[tile.Index], pip)
	if err := b.writeBram(); err != nil {
		t.Fatalf("writeBram: %v", err)
	}
	lines := flushed(t, b, buf)
	if !hasLine(lines, "BRAM_L_X6Y15.CASCOUT_ARD_ACTIVE") {
		t.Fatalf("missing cascade bit, got %v", lines)
	}
	if hasLine(lines, "BRAM_L_X6Y15.CASCOUT_BWR_ACTIVE") {
		t.Fatalf("write-port cascade must stay clear, got %v", lines)
	}
}
