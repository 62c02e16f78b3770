// Package xc7 resolves a placed-and-routed xc7-family design into FASM
// configuration features. The backend walks the design exactly once,
// in a fixed encoder order, and emits every feature through a single
// fasm.Writer so the output is byte-reproducible.
package xc7

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
	"github.com/OpenTraceLab/OpenTraceFASM/pkg/fasm"
)

// Backend holds the per-run state of the configuration resolver: the
// writer, the pseudo-pip feature table, and the cross-encoder
// accumulators (pips grouped by tile, per-bank IO flags).
type Backend struct {
	d *design.Design
	w *fasm.Writer

	pp          pseudoPipTable
	pipsByTile  map[int][]*design.Pip
	banks       map[int]*bankConfig
	cellsByTile map[int][]*design.Cell

	// Warnf receives non-fatal anomalies. The run never aborts for a
	// warning.
	Warnf func(format string, args ...any)
}

// NewBackend prepares a backend writing to w. The feature table is
// built once here and never mutated afterwards.
func NewBackend(d *design.Design, w *fasm.Writer) *Backend {
	b := &Backend{
		d:           d,
		w:           w,
		pp:          buildPseudoPips(),
		pipsByTile:  make(map[int][]*design.Pip),
		banks:       make(map[int]*bankConfig),
		cellsByTile: make(map[int][]*design.Cell),
		Warnf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
		},
	}
	for _, c := range d.SortedCells() {
		if c.Bel != nil {
			b.cellsByTile[c.Bel.Tile.Index] = append(b.cellsByTile[c.Bel.Tile.Index], c)
		}
	}
	return b
}

// Write runs every encoder in fixed order and flushes the writer. The
// routing pass must precede the block-memory and clocking passes,
// which aggregate over the pips it records.
func (b *Backend) Write() error {
	steps := []func() error{
		b.writeLogic,
		b.writeCfg,
		b.writeIO,
		b.writeRouting,
		b.writeBram,
		b.writeClocking,
		b.writeIP,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return b.w.Flush()
}

// Write resolves the design into FASM text on out.
func Write(d *design.Design, out io.Writer) error {
	return NewBackend(d, fasm.NewWriter(out)).Write()
}

func (b *Backend) tileName(i int) string { return b.d.TileName(i) }

func (b *Backend) warnf(format string, args ...any) {
	if b.Warnf != nil {
		b.Warnf(format, args...)
	}
}

// usedWiresStartingWith lists wire names matching prefix among the
// pips recorded for a tile during the routing pass, on the source or
// destination side. Order follows the (deterministic) routing walk.
func (b *Backend) usedWiresStartingWith(tile int, prefix string, isSource bool) []string {
	var wires []string
	for _, pip := range b.pipsByTile[tile] {
		var w *design.Wire
		if isSource {
			w = pip.Src
		} else {
			w = pip.Dst
		}
		if strings.HasPrefix(w.Name, prefix) {
			wires = append(wires, w.Name)
		}
	}
	return wires
}

func isLogicTile(t *design.Tile) bool {
	return strings.HasPrefix(t.Type, "CLBLL") || strings.HasPrefix(t.Type, "CLBLM")
}

// sortedKeys returns the keys of an int-keyed map in ascending order,
// for deterministic accumulator emission.
func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// sortedSet returns set members in ascending order.
func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
