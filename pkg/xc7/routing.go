package xc7

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
)

// writeRouting walks every net's routing tree in a stable order and
// encodes each used pip. Nets are visited sorted by name and wires in
// tile/name order, so repeated runs produce byte-identical output.
func (b *Backend) writeRouting() error {
	for _, net := range b.d.SortedNets() {
		for _, wire := range b.d.SortedWires(net) {
			pip := net.Wires[wire]
			if pip == nil {
				continue // unrouted root
			}
			if err := b.writePip(pip); err != nil {
				return err
			}
		}
		b.w.Blank()
	}
	return nil
}

// isSingTile matches the single-row IO tiles whose feature and wire
// names need positional rewrites.
func isSingTile(name string) bool {
	return strings.HasPrefix(name, "RIOI3_SING") ||
		strings.HasPrefix(name, "LIOI3_SING") ||
		strings.HasPrefix(name, "RIOI_SING")
}

// isTopSing reports whether an IO tile sits above its clock-region
// HCLK row.
func (b *Backend) isTopSing(tile int) bool {
	return tile < b.d.HclkForIoi(tile)
}

func (b *Backend) writePip(pip *design.Pip) error {
	tile := pip.Tile.Index
	b.pipsByTile[tile] = append(b.pipsByTile[tile], pip)

	// Constant networks carry no explicit routing features.
	if pip.Dst.Intent == design.IntentPseudoGND || pip.Dst.Intent == design.IntentPseudoVCC {
		return nil
	}

	// Site-internal pips are configured by their owning primitive's
	// encoder, not here.
	if pip.Kind != design.PipTileRouting {
		return nil
	}

	src := pip.Src.Name
	dst := pip.Dst.Name

	if features, ok := b.pp.lookup(pip.Tile.Type, dst, src); ok {
		tileName := b.tileName(tile)
		flip := isSingTile(tileName) && b.isTopSing(tile)
		for _, feature := range features {
			if flip {
				feature = flipSingY(feature)
			}
			b.w.RawLine(tileName + "." + feature)
		}
		return nil
	}

	if pip.RouteThru {
		b.warnf("unprocessed route-thru %s.%s.%s", b.tileName(tile), dst, src)
	}

	tileName := b.tileName(tile)
	dstName := dst
	srcName := src

	// Pseudo-pip coverage is missing for DSP tiles; emitting the
	// generic triple would conflict with the primitive encoding.
	if strings.HasPrefix(tileName, "DSP_L") || strings.HasPrefix(tileName, "DSP_R") {
		return nil
	}

	origDstName := dstName
	if isSingTile(tileName) {
		if (strings.Contains(srcName, "IMUX") || strings.Contains(srcName, "CTRL0")) &&
			!strings.Contains(dstName, "CLK") {
			return nil
		}
		srcName = eraseSingInfix(srcName)
		if b.isTopSing(tile) {
			dstName, srcName = flipSingRow(dstName, srcName)
		}
	}
	if strings.Contains(tileName, "IOI") {
		if strings.Contains(dstName, "OCLKB") && strings.Contains(srcName, "IOI_OCLKM_") {
			return nil
		}
	}

	b.w.RawLine(tileName + "." + dstName + "." + srcName)

	// An output-clock route also configures the matching OCLKM mux
	// unless that wire is explicitly routed.
	if strings.Contains(tileName, "IOI") && strings.HasPrefix(dstName, "IOI_OCLK_") {
		dstName = insertOclkM(dstName)
		origDstName = insertOclkM(origDstName)

		wire := pip.Tile.Wire(origDstName)
		if wire == nil {
			return fmt.Errorf("tile %s has no wire %s for OCLKM encoding", tileName, origDstName)
		}
		if b.d.WireNet(wire) == nil {
			b.w.RawLine(tileName + "." + dstName + "." + srcName)
		}
	}

	return nil
}

// eraseSingInfix removes the _SING marker from a wire name, keeping
// the separator that follows it.
func eraseSingInfix(name string) string {
	if pos := strings.Index(name, "_SING_"); pos >= 0 {
		return name[:pos] + name[pos+5:]
	}
	return name
}

// flipSingRow is a positional rewrite rule for single-row IO tiles
// above their HCLK: the row-0 wire names map onto row 1.
func flipSingRow(dst, src string) (string, string) {
	if pos := strings.Index(dst, "_0"); pos >= 0 {
		dst = dst[:pos] + "_1" + dst[pos+2:]
	}
	if pos := strings.Index(dst, "OLOGIC0"); pos >= 0 {
		dst = dst[:pos] + "OLOGIC1" + dst[pos+7:]
		if spos := strings.Index(src, "_0"); spos >= 0 {
			src = src[:spos] + "_1" + src[spos+2:]
		}
	}
	return dst, src
}

// insertOclkM inserts the M qualifier after OCLK in a wire name.
func insertOclkM(name string) string {
	if pos := strings.Index(name, "OCLK"); pos >= 0 {
		return name[:pos+4] + "M" + name[pos+4:]
	}
	return name
}
