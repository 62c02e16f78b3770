package xc7

import (
	"bytes"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
	"github.com/OpenTraceLab/OpenTraceFASM/pkg/fasm"
)

// newTestBackend wires a backend to an in-memory buffer with warnings
// collected instead of printed.
func newTestBackend(t *testing.T, d *design.Design) (*Backend, *bytes.Buffer, *[]string) {
	t.Helper()
	buf := &bytes.Buffer{}
	b := NewBackend(d, fasm.NewWriter(buf))
	warnings := &[]string{}
	b.Warnf = func(format string, args ...any) {
		*warnings = append(*warnings, format)
	}
	return b, buf, warnings
}

func flushed(t *testing.T, b *Backend, buf *bytes.Buffer) []string {
	t.Helper()
	if err := b.w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	var lines []string
	for _, l := range strings.Split(buf.String(), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func hasLine(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

func hasLineWith(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// buildTile assembles an unregistered tile. Pips must be added with
// pipOn before the tile is handed to Design.AddTile, which links the
// uphill lists.
func buildTile(name, tileType string, sites []string, wireNames ...string) *design.Tile {
	t := &design.Tile{Name: name, Type: tileType, Sites: sites}
	for _, wn := range wireNames {
		t.Wires = append(t.Wires, &design.Wire{Name: wn})
	}
	return t
}

func wireOn(t *design.Tile, name string) *design.Wire {
	for _, w := range t.Wires {
		if w.Name == name {
			return w
		}
	}
	return nil
}

func pipOn(t *design.Tile, src, dst string, kind design.PipKind) *design.Pip {
	p := &design.Pip{Src: wireOn(t, src), Dst: wireOn(t, dst), Kind: kind}
	t.Pips = append(t.Pips, p)
	return p
}

// routeNet binds a single-pip net: the pip's source wire is the root.
func routeNet(d *design.Design, name string, pips ...*design.Pip) *design.Net {
	n := &design.Net{Name: name, Wires: map[*design.Wire]*design.Pip{}}
	for _, p := range pips {
		n.Wires[p.Src] = nil
		n.Wires[p.Dst] = p
	}
	return d.AddNet(n)
}

func allOnesInit() design.Property {
	bits := make([]bool, 64)
	for i := range bits {
		bits[i] = true
	}
	return design.BitsProp(bits)
}

// identityLUT6 places a 6-input LUT with one-to-one physical input
// mapping on the given slot of a logic tile.
func identityLUT6(t *design.Tile, site, slot string, init design.Property) *design.Cell {
	return &design.Cell{
		Name: "lut_" + slot,
		Type: "LUT6_LUT6",
		Bel:  &design.Bel{Tile: t, Name: slot + "6LUT", Site: site, SiteX: 0},
		Params: map[string]design.Property{
			"INIT": init,
		},
		Attrs: map[string]string{
			"X_ORIG_TYPE":    "LUT6",
			"X_ORIG_PORT_A1": "I0",
			"X_ORIG_PORT_A2": "I1",
			"X_ORIG_PORT_A3": "I2",
			"X_ORIG_PORT_A4": "I3",
			"X_ORIG_PORT_A5": "I4",
			"X_ORIG_PORT_A6": "I5",
		},
		Ports: map[string]*design.Net{},
	}
}

func placedFF(t *design.Tile, site, bel, origType string) *design.Cell {
	return &design.Cell{
		Name:   "ff_" + bel,
		Type:   "FF",
		Bel:    &design.Bel{Tile: t, Name: bel, Site: site, SiteX: 0},
		Params: map[string]design.Property{},
		Attrs:  map[string]string{"X_ORIG_TYPE": origType},
		Ports:  map[string]*design.Net{},
	}
}
