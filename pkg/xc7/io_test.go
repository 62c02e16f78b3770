package xc7

import (
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
)

func TestDriveRuleMatching(t *testing.T) {
	rule := driveRule{stds: []string{"LVCMOS33", "LVTTL"}, drives: []int{8, 12}, feature: "F"}
	if !rule.matches("LVTTL", 12) {
		t.Fatalf("LVTTL/12 should match")
	}
	if rule.matches("LVCMOS33", 4) {
		t.Fatalf("drive 4 should not match")
	}
	if rule.matches("LVCMOS18", 8) {
		t.Fatalf("standard LVCMOS18 should not match")
	}
	anyDrive := driveRule{stds: []string{"SSTL15"}, feature: "F"}
	if !anyDrive.matches("SSTL15", 99) {
		t.Fatalf("nil drive list must match any drive")
	}
}

// padOn places a PAD cell with the given attrs and PAD net wiring.
func padOn(d *design.Design, tile *design.Tile, site string, y int, attrs map[string]string, driven, read bool) *design.Cell {
	pad := &design.Cell{
		Name:   "pad_" + site,
		Type:   "PAD",
		Bel:    &design.Bel{Tile: tile, Name: "PAD", Site: site, SiteY: y},
		Params: map[string]design.Property{},
		Attrs:  attrs,
		Ports:  map[string]*design.Net{},
	}
	net := &design.Net{Name: "pad_net_" + site}
	if driven {
		net.Driver = &design.PortRef{Cell: &design.Cell{Name: "obuf", Type: "OUTBUF"}, Port: "OUT"}
	}
	if read {
		net.Users = append(net.Users, design.PortRef{
			Cell: &design.Cell{Name: "ibuf", Type: "IOB33_INBUF_EN"}, Port: "PAD",
		})
	}
	d.AddNet(net)
	pad.Ports["PAD"] = net
	d.AddCell(pad)
	return pad
}

func TestIOOutputDriveAndSlew(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("LIOB33_X0Y43", "LIOB33", []string{"IOB_X0Y43"})
	d.AddTile(tile)
	padOn(d, tile, "IOB_X0Y43", 0, map[string]string{}, true, false)

	b, buf, _ := newTestBackend(t, d)
	if err := b.writeIO(); err != nil {
		t.Fatalf("writeIO: %v", err)
	}
	lines := flushed(t, b, buf)

	prefix := "LIOB33_X0Y43.IOB_Y1."
	for _, want := range []string{
		"LVCMOS33_LVTTL.DRIVE.I12_I8",
		"LVCMOS12_LVCMOS15_LVCMOS18_LVCMOS25_LVCMOS33_LVTTL_SSTL135_SSTL15.SLEW.SLOW",
		"PULLTYPE.NONE",
	} {
		if !hasLine(lines, prefix+want) {
			t.Fatalf("missing %s%s, got %v", prefix, want, lines)
		}
	}
	// An LVCMOS33 output pad contributes no bank flags.
	if hasLineWith(lines, "STEPDOWN") || hasLineWith(lines, "VREF") {
		t.Fatalf("no bank flags expected, got %v", lines)
	}
}

func TestIOSstlInputSetsBankFlags(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("LIOB33_X0Y21", "LIOB33", []string{"IOB_X0Y21"})
	d.AddTile(tile)
	padOn(d, tile, "IOB_X0Y21", 1,
		map[string]string{"IOSTANDARD": "SSTL15"}, false, true)

	b, buf, _ := newTestBackend(t, d)
	if err := b.writeIO(); err != nil {
		t.Fatalf("writeIO: %v", err)
	}
	lines := flushed(t, b, buf)

	prefix := "LIOB33_X0Y21.IOB_Y0."
	for _, want := range []string{
		"SSTL135_SSTL15.IN",
		"LVCMOS12_LVCMOS15_LVCMOS18_LVCMOS25_LVCMOS33_LVDS_25_LVTTL_SSTL135_SSTL15_TMDS_33.IN_ONLY",
		"LVCMOS12_LVCMOS15_LVCMOS18_SSTL135_SSTL15.STEPDOWN",
	} {
		if !hasLine(lines, prefix+want) {
			t.Fatalf("missing %s%s, got %v", prefix, want, lines)
		}
	}
	// The bank accumulator flushes after all pads, keyed by the
	// governing HCLK tile (the IO tile itself here).
	for _, want := range []string{
		"LIOB33_X0Y21.STEPDOWN",
		"LIOB33_X0Y21.VREF.V_675_MV",
	} {
		if !hasLine(lines, want) {
			t.Fatalf("missing bank flag %q, got %v", want, lines)
		}
	}
}

func TestIOHighPerformanceRejectsLvcmos33(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("RIOB18_X43Y21", "RIOB18", []string{"IOB18_X1Y21"})
	d.AddTile(tile)
	padOn(d, tile, "IOB18_X1Y21", 0,
		map[string]string{"IOSTANDARD": "LVCMOS33"}, true, false)

	b, _, _ := newTestBackend(t, d)
	err := b.writeIO()
	if err == nil {
		t.Fatalf("LVCMOS33 on a high performance bank must fail")
	}
	if !strings.Contains(err.Error(), "RIOB18") {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.w.Depth() != 0 {
		t.Fatalf("prefix stack leaked across the error return, depth %d", b.w.Depth())
	}
}

func TestIOSstl12RequiresHighPerformance(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("LIOB33_X0Y1", "LIOB33", []string{"IOB_X0Y1"})
	d.AddTile(tile)
	padOn(d, tile, "IOB_X0Y1", 0,
		map[string]string{"IOSTANDARD": "SSTL12"}, false, true)

	b, _, _ := newTestBackend(t, d)
	if err := b.writeIO(); err == nil {
		t.Fatalf("SSTL12 on a high range bank must fail")
	}
}

func TestIOInvalidDriveAttr(t *testing.T) {
	d := design.NewDesign(4, 4)
	tile := buildTile("LIOB33_X0Y2", "LIOB33", []string{"IOB_X0Y2"})
	d.AddTile(tile)
	padOn(d, tile, "IOB_X0Y2", 0,
		map[string]string{"DRIVE": "fast"}, true, false)

	b, _, _ := newTestBackend(t, d)
	if err := b.writeIO(); err == nil {
		t.Fatalf("non-numeric DRIVE must fail")
	}
}
