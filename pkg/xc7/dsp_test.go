package xc7

import (
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
)

func TestReversedBitVector(t *testing.T) {
	bits := reversedBitVector("10", 4)
	// s[len-1] is bit 0; bits beyond the string default to one.
	want := []bool{false, true, true, true}
	for i := range want {
		if bits[i] != want[i] {
			t.Fatalf("bit %d: got %v, want %v", i, bits[i], want[i])
		}
	}
	// Oversized strings truncate from the low end.
	bits = reversedBitVector("111100", 4)
	for i, w := range []bool{false, false, true, true} {
		if bits[i] != w {
			t.Fatalf("truncated bit %d: got %v, want %v", i, bits[i], w)
		}
	}
}

func dspCell(t *design.Tile, params map[string]design.Property, attrs map[string]string) *design.Cell {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &design.Cell{
		Name:   "dsp0",
		Type:   "DSP48E1_DSP48E1",
		Bel:    &design.Bel{Tile: t, Name: "DSP48E1", Site: "DSP48_X2Y1", SiteY: 0},
		Params: params,
		Attrs:  attrs,
		Ports:  map[string]*design.Net{},
	}
}

func TestDspCellConfig(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("DSP_L_X10Y2", "DSP_L", []string{"DSP48_X2Y1"})
	d.AddTile(tile)
	d.AddCell(dspCell(tile, map[string]design.Property{
		"AREG":     design.IntProp(2),
		"USE_SIMD": design.StringProp("FOUR12"),
		"A_INPUT":  design.StringProp("CASCADE"),
	}, nil))

	b, buf, _ := newTestBackend(t, d)
	if err := b.writeIP(); err != nil {
		t.Fatalf("writeIP: %v", err)
	}
	lines := flushed(t, b, buf)

	prefix := "DSP_L_X10Y2.DSP48.DSP_0."
	for _, want := range []string{
		"AREG_2",
		"A_INPUT[0]",
		"USE_SIMD_FOUR12",
		"ZALUMODEREG[0]",
		"ZIS_ALUMODE_INVERTED[0]",
		"ZIS_OPMODE_INVERTED[6]",
		"ZIS_CLK_INVERTED",
		"MASK[45:0] = 46'b" + strings.Repeat("1", 46),
	} {
		if !hasLine(lines, prefix+want) {
			t.Fatalf("missing %s%s, got %v", prefix, want, lines)
		}
	}
	// ADREG defaults on, so its bypass bit stays clear.
	if hasLine(lines, prefix+"ZADREG[0]") {
		t.Fatalf("ZADREG must stay clear by default: %v", lines)
	}
	// AREG=1 has no coding at all; only 0 and 2 emit.
	if hasLine(lines, prefix+"AREG_1") {
		t.Fatalf("AREG_1 must never be emitted: %v", lines)
	}
}

func TestDspMaskDefaultTruncated(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("DSP_R_X20Y4", "DSP_R", []string{"DSP48_X3Y2"})
	d.AddTile(tile)
	d.AddCell(dspCell(tile, map[string]design.Property{}, nil))

	b, buf, _ := newTestBackend(t, d)
	if err := b.writeIP(); err != nil {
		t.Fatalf("writeIP: %v", err)
	}
	lines := flushed(t, b, buf)

	// The default 48-bit mask 00111...1 loses its two zero MSBs in the
	// 46-bit feature.
	want := "DSP_R_X20Y4.DSP48.DSP_0.MASK[45:0] = 46'b" + strings.Repeat("1", 46)
	if !hasLine(lines, want) {
		t.Fatalf("missing %q, got %v", want, lines)
	}
}

func TestDspConstantPins(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("DSP_L_X10Y6", "DSP_L", []string{"DSP48_X2Y3"})
	d.AddTile(tile)
	d.AddCell(dspCell(tile, map[string]design.Property{
		"IS_ALUMODE_INVERTED": design.IntProp(1),
	}, map[string]string{
		"DSP_GND_PINS": "ALUMODE2 CARRYIN",
	}))

	b, buf, _ := newTestBackend(t, d)
	if err := b.writeIP(); err != nil {
		t.Fatalf("writeIP: %v", err)
	}
	lines := flushed(t, b, buf)

	// An inverted pin swaps the rail its tie-off names.
	if !hasLine(lines, "DSP_L_X10Y6.DSP_0_ALUMODE2.DSP_VCC_L") {
		t.Fatalf("inverted GND pin must tie to VCC, got %v", lines)
	}
	if !hasLine(lines, "DSP_L_X10Y6.DSP_0_CARRYIN.DSP_GND_L") {
		t.Fatalf("missing CARRYIN tie-off, got %v", lines)
	}
}
