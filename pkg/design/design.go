// Package design models a placed-and-routed design and the device
// fabric it occupies: tiles, wires, pips, nets and placed cells. The
// model is a read-only input to configuration encoding; it is built
// once (programmatically or from a snapshot file) and queried, never
// mutated, during emission.
package design

import (
	"fmt"
	"sort"
)

// Design is the root of the placed-and-routed state.
type Design struct {
	// Width is the tile grid width; a tile's row is Index / Width.
	Width  int
	Height int

	Tiles []*Tile
	Nets  map[string]*Net
	Cells map[string]*Cell

	// hclkIoi / hclkIob map IO tiles to their governing clock-region
	// HCLK tile index.
	hclkIoi map[int]int
	hclkIob map[int]int

	pipNet  map[*Pip]*Net
	wireNet map[*Wire]*Net
}

// NewDesign returns an empty design with the given grid width.
func NewDesign(width, height int) *Design {
	return &Design{
		Width:   width,
		Height:  height,
		Nets:    make(map[string]*Net),
		Cells:   make(map[string]*Cell),
		hclkIoi: make(map[int]int),
		hclkIob: make(map[int]int),
		pipNet:  make(map[*Pip]*Net),
		wireNet: make(map[*Wire]*Net),
	}
}

// AddTile appends a tile and indexes its wires. Pips are linked to
// their endpoint wires.
func (d *Design) AddTile(t *Tile) *Tile {
	t.Index = len(d.Tiles)
	t.wireByName = make(map[string]*Wire, len(t.Wires))
	for _, w := range t.Wires {
		w.Tile = t
		t.wireByName[w.Name] = w
	}
	for _, p := range t.Pips {
		p.Tile = t
		if p.Dst != nil {
			p.Dst.uphill = append(p.Dst.uphill, p)
		}
	}
	d.Tiles = append(d.Tiles, t)
	return t
}

// AddNet registers a net and records its pip bindings for reverse
// lookup.
func (d *Design) AddNet(n *Net) *Net {
	d.Nets[n.Name] = n
	for w, pip := range n.Wires {
		d.wireNet[w] = n
		if pip != nil {
			d.pipNet[pip] = n
		}
	}
	return n
}

// AddCell registers a placed cell.
func (d *Design) AddCell(c *Cell) *Cell {
	d.Cells[c.Name] = c
	return c
}

// SetHclkForIoi binds an IO-logic tile to its clock-region HCLK tile.
func (d *Design) SetHclkForIoi(tile, hclk int) { d.hclkIoi[tile] = hclk }

// SetHclkForIob binds an IO-buffer tile to its clock-region HCLK tile.
func (d *Design) SetHclkForIob(tile, hclk int) { d.hclkIob[tile] = hclk }

// TileName returns the name of the tile at index i.
func (d *Design) TileName(i int) string { return d.Tiles[i].Name }

// Row returns the grid row of the tile at index i.
func (d *Design) Row(i int) int { return i / d.Width }

// HclkForIoi returns the HCLK tile index governing an IO-logic tile.
func (d *Design) HclkForIoi(tile int) int {
	if h, ok := d.hclkIoi[tile]; ok {
		return h
	}
	return tile
}

// HclkForIob returns the HCLK tile index governing an IO-buffer tile.
func (d *Design) HclkForIob(tile int) int {
	if h, ok := d.hclkIob[tile]; ok {
		return h
	}
	return tile
}

// PipNet returns the net a pip is bound to, or nil when unused.
func (d *Design) PipNet(p *Pip) *Net { return d.pipNet[p] }

// WireNet returns the net a wire is bound to, or nil when unused.
func (d *Design) WireNet(w *Wire) *Net { return d.wireNet[w] }

// BelPinWire returns the site wire attached to a bel pin, named
// <bel>_<pin> within the bel's site.
func (d *Design) BelPinWire(b *Bel, pin string) *Wire {
	return d.SiteWire(b.Tile, b.Site, b.Name+"_"+pin)
}

// SiteWire returns the wire with the given name belonging to the named
// site in tile t, or nil.
func (d *Design) SiteWire(t *Tile, site, name string) *Wire {
	for _, w := range t.Wires {
		if w.Site == site && w.Name == name {
			return w
		}
	}
	return nil
}

// SortedNets returns all nets ordered by name. Emission iterates this
// order so output is byte-reproducible across runs.
func (d *Design) SortedNets() []*Net {
	nets := make([]*Net, 0, len(d.Nets))
	for _, n := range d.Nets {
		nets = append(nets, n)
	}
	sort.Slice(nets, func(i, j int) bool { return nets[i].Name < nets[j].Name })
	return nets
}

// SortedCells returns all cells ordered by name.
func (d *Design) SortedCells() []*Cell {
	cells := make([]*Cell, 0, len(d.Cells))
	for _, c := range d.Cells {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Name < cells[j].Name })
	return cells
}

// SortedWires returns a net's bound wires in a stable order: by tile
// index, then wire name.
func (d *Design) SortedWires(n *Net) []*Wire {
	wires := make([]*Wire, 0, len(n.Wires))
	for w := range n.Wires {
		wires = append(wires, w)
	}
	sort.Slice(wires, func(i, j int) bool {
		if wires[i].Tile.Index != wires[j].Tile.Index {
			return wires[i].Tile.Index < wires[j].Tile.Index
		}
		return wires[i].Name < wires[j].Name
	})
	return wires
}

// FindTile returns the tile with the given name.
func (d *Design) FindTile(name string) (*Tile, error) {
	for _, t := range d.Tiles {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("no tile named %q", name)
}
