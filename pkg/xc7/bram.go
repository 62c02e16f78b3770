package xc7

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
)

// bramInvertiblePins are the clock and control inputs whose inversion
// is a configuration bit rather than routing.
var bramInvertiblePins = []string{
	"CLKARDCLK", "CLKBWRCLK",
	"ENARDEN", "ENBWREN",
	"RSTRAMARSTRAM", "RSTRAMB",
	"RSTREGARSTREG", "RSTREGB",
}

// writeBram encodes every block-memory tile. A RAMB36 occupies both
// 18K halves of its tile; RAMB18s land in one half each, selected by
// site Y parity.
func (b *Backend) writeBram() error {
	for tile, t := range b.d.Tiles {
		if t.Type != "BRAM_L" && t.Type != "BRAM_R" {
			continue
		}
		var lower, upper *design.Cell
		for _, ci := range b.cellsByTile[tile] {
			switch ci.Type {
			case "RAMB36E1_RAMB36E1":
				lower, upper = ci, ci
			case "RAMB18E1_RAMB18E1":
				if ci.Bel.SiteY&1 == 1 {
					upper = ci
				} else {
					lower = ci
				}
			}
		}
		b.writeBramHalf(tile, 0, lower)
		b.writeBramHalf(tile, 1, upper)
		b.w.Blank()
	}
	return nil
}

func (b *Backend) writeBramHalf(tile, half int, ci *design.Cell) {
	defer b.w.Enter(b.tileName(tile))()
	popHalf := b.w.Enter("RAMB18_Y" + strconv.Itoa(half))
	if ci != nil {
		is36 := ci.Type == "RAMB36E1_RAMB36E1"
		b.w.WriteBit("IN_USE", true)
		b.writeBramWidth(ci, "READ_WIDTH_A", is36, half == 1)
		b.writeBramWidth(ci, "READ_WIDTH_B", is36, half == 1)
		b.writeBramWidth(ci, "WRITE_WIDTH_A", is36, half == 1)
		b.writeBramWidth(ci, "WRITE_WIDTH_B", is36, half == 1)
		b.w.WriteBit("DOA_REG", ci.ParamBool("DOA_REG", false))
		b.w.WriteBit("DOB_REG", ci.ParamBool("DOB_REG", false))
		for _, pin := range bramInvertiblePins {
			b.w.WriteBit("ZINV_"+pin, !ci.ParamBool("IS_"+pin+"_INVERTED", false))
		}
		for _, wrmode := range []string{"WRITE_MODE_A", "WRITE_MODE_B"} {
			if mode := ci.ParamStr(wrmode, "WRITE_FIRST"); mode != "WRITE_FIRST" {
				b.w.WriteBit(wrmode+"_"+mode, true)
			}
		}
		allOnes := make([]bool, 18)
		for i := range allOnes {
			allOnes[i] = true
		}
		b.w.WriteVector("ZINIT_A[17:0]", allOnes, false)
		b.w.WriteVector("ZINIT_B[17:0]", allOnes, false)
		b.w.WriteVector("ZSRVAL_A[17:0]", allOnes, false)
		b.w.WriteVector("ZSRVAL_B[17:0]", allOnes, false)

		b.writeBramInit(half, ci, is36)
	}
	popHalf()
	if half == 0 {
		rdCasc := b.usedWiresStartingWith(tile, "BRAM_CASCOUT_ADDRARDADDR", false)
		wrCasc := b.usedWiresStartingWith(tile, "BRAM_CASCOUT_ADDRBWRADDR", false)
		b.w.WriteBit("CASCOUT_ARD_ACTIVE", len(rdCasc) > 0)
		b.w.WriteBit("CASCOUT_BWR_ACTIVE", len(wrCasc) > 0)
	}
}

// writeBramWidth encodes one port-width parameter. A 36K block's width
// parameter is halved per 18K half, and width 36 engages simple
// dual-port mode across both data ports.
func (b *Backend) writeBramWidth(ci *design.Cell, name string, is36, isY1 bool) {
	width := int(ci.ParamInt(name, 0))
	if width == 0 {
		return
	}
	actual := width
	if is36 && width != 1 {
		actual = width / 2
	}
	if ((is36 && width == 72) || (isY1 && actual == 36)) && name == "READ_WIDTH_A" {
		b.w.WriteBit(name+"_18", true)
	}
	if actual == 36 {
		b.w.WriteBit("SDP_"+name[:len(name)-2]+"_36", true)
		switch {
		case strings.HasPrefix(name, "WRITE"):
			b.w.WriteBit(name[:len(name)-1]+"A_18", true)
			b.w.WriteBit(name[:len(name)-1]+"B_18", true)
		case strings.HasPrefix(name, "READ"):
			b.w.WriteBit(name[:len(name)-1]+"B_18", true)
		}
	} else {
		b.w.WriteBit(name+"_"+strconv.Itoa(actual), true)
	}
}

// writeBramInit emits the data ("") and parity ("P") initialisation
// vectors. A 36K block interleaves its contents across both 18K
// halves, so each half takes every other bit of two source parameters.
func (b *Backend) writeBramInit(half int, ci *design.Cell, is36 bool) {
	for _, mode := range []string{"", "P"} {
		count := 64
		if mode == "P" {
			count = 8
		}
		for i := 0; i < count; i++ {
			hasInit := false
			initData := make([]bool, 256)
			if is36 {
				for j := 0; j < 2; j++ {
					param := fmt.Sprintf("INIT%s_%02X", mode, i*2+j)
					if !ci.HasParam(param) {
						continue
					}
					hasInit = true
					bits := ci.Params[param].Extract(0, 256)
					for k := half; k < 256; k += 2 {
						initData[j*128+k/2] = bits[k]
					}
				}
			} else {
				param := fmt.Sprintf("INIT%s_%02X", mode, i)
				if ci.HasParam(param) {
					hasInit = true
					copy(initData, ci.Params[param].Extract(0, 256))
				}
			}
			if hasInit {
				b.w.WriteVector(fmt.Sprintf("INIT%s_%02X[255:0]", mode, i), initData, false)
			}
		}
	}
}
