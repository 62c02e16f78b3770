package xc7

import (
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
)

// writeIP encodes the hard arithmetic blocks.
func (b *Backend) writeIP() error {
	for _, ci := range b.d.SortedCells() {
		if ci.Type == "DSP48E1_DSP48E1" {
			b.writeDspCell(ci)
			b.w.Blank()
		}
	}
	return nil
}

// reversedBitVector reads a binary digit string into an LSB-first
// vector of the given size. Missing high bits default to one, matching
// the all-ones reset value of the pattern and mask registers.
func reversedBitVector(s string, size int) []bool {
	bits := make([]bool, size)
	for i := range bits {
		bits[i] = true
	}
	for i := 0; i < size && i < len(s); i++ {
		bits[i] = s[len(s)-1-i] == '1'
	}
	return bits
}

func (b *Backend) writeDspCell(ci *design.Cell) {
	tileName := b.tileName(ci.Bel.Tile.Index)
	tileSide := tileName[4]
	defer b.w.Enter(tileName)()
	dsp := "DSP_" + strconv.Itoa(ci.Bel.SiteY)
	popDsp := b.w.Enter("DSP48", dsp)

	writeBusZinv := func(name string, width int) {
		for i := 0; i < width; i++ {
			bit := "[" + strconv.Itoa(i) + "]"
			inv := (ci.ParamInt("IS_"+name+"_INVERTED", 0)>>uint(i))&1 != 0
			inv = inv || ci.ParamBool("IS_"+name+bit+"_INVERTED", false)
			b.w.WriteBit("ZIS_"+name+"_INVERTED"+bit, !inv)
		}
	}

	// The input register depth 1 is documented as equivalent to 2, but
	// the vendor tool only ever sets the 0 and 2 codings.
	areg := ci.ParamInt("AREG", 1)
	if areg == 0 || areg == 2 {
		b.w.WriteBit("AREG_"+strconv.FormatInt(areg, 10), true)
	}
	if ci.ParamStr("A_INPUT", "DIRECT") == "CASCADE" {
		b.w.WriteBit("A_INPUT[0]", true)
	}
	breg := ci.ParamInt("BREG", 1)
	if breg == 0 || breg == 2 {
		b.w.WriteBit("BREG_"+strconv.FormatInt(breg, 10), true)
	}
	if ci.ParamStr("B_INPUT", "DIRECT") == "CASCADE" {
		b.w.WriteBit("B_INPUT[0]", true)
	}

	if ci.ParamStr("USE_DPORT", "FALSE") == "TRUE" {
		b.w.WriteBit("USE_DPORT[0]", true)
	}
	switch ci.ParamStr("USE_SIMD", "ONE48") {
	case "TWO24":
		b.w.WriteBit("USE_SIMD_FOUR12_TWO24", true)
	case "FOUR12":
		b.w.WriteBit("USE_SIMD_FOUR12", true)
	}

	if pattern := ci.ParamStr("PATTERN", ""); pattern != "" {
		b.w.WriteVector("PATTERN[47:0]", reversedBitVector(pattern, 48), false)
	}

	switch ci.ParamStr("AUTORESET_PATDET", "NO_RESET") {
	case "RESET_MATCH":
		b.w.WriteBit("AUTORESET_PATDET_RESET", true)
	case "RESET_NOT_MATCH":
		b.w.WriteBit("AUTORESET_PATDET_RESET_NOT_MATCH", true)
	}

	// Synthesis hands over 48 mask bits but only 46 are configurable;
	// the top two are always zero and get truncated.
	mask := ci.ParamStr("MASK", "001111111111111111111111111111111111111111111111")
	b.w.WriteVector("MASK[45:0]", reversedBitVector(mask, 46), false)

	switch ci.ParamStr("SEL_MASK", "MASK") {
	case "C":
		b.w.WriteBit("SEL_MASK_C", true)
	case "ROUNDING_MODE1":
		b.w.WriteBit("SEL_MASK_ROUNDING_MODE1", true)
	case "ROUNDING_MODE2":
		b.w.WriteBit("SEL_MASK_ROUNDING_MODE2", true)
	}

	b.w.WriteBit("ZADREG[0]", !ci.ParamBool("ADREG", true))
	b.w.WriteBit("ZALUMODEREG[0]", !ci.ParamBool("ALUMODEREG", false))
	b.w.WriteBit("ZAREG_2_ACASCREG_1", !ci.ParamBool("ACASCREG", false))
	b.w.WriteBit("ZBREG_2_BCASCREG_1", !ci.ParamBool("BCASCREG", false))
	b.w.WriteBit("ZCARRYINREG[0]", !ci.ParamBool("CARRYINREG", false))
	b.w.WriteBit("ZCARRYINSELREG[0]", !ci.ParamBool("CARRYINSELREG", false))
	b.w.WriteBit("ZCREG[0]", !ci.ParamBool("CREG", true))
	b.w.WriteBit("ZDREG[0]", !ci.ParamBool("DREG", true))
	b.w.WriteBit("ZINMODEREG[0]", !ci.ParamBool("INMODEREG", false))
	writeBusZinv("ALUMODE", 4)
	writeBusZinv("INMODE", 5)
	writeBusZinv("OPMODE", 7)
	b.w.WriteBit("ZMREG[0]", !ci.ParamBool("MREG", false))
	b.w.WriteBit("ZOPMODEREG[0]", !ci.ParamBool("OPMODEREG", false))
	b.w.WriteBit("ZPREG[0]", !ci.ParamBool("PREG", false))
	b.w.WriteBit("USE_DPORT[0]", ci.ParamStr("USE_DPORT", "FALSE") == "TRUE")
	b.w.WriteBit("ZIS_CLK_INVERTED", !ci.ParamBool("IS_CLK_INVERTED", false))
	b.w.WriteBit("ZIS_CARRYIN_INVERTED", !ci.ParamBool("IS_CARRYIN_INVERTED", false))
	popDsp()

	// Pins tied to a constant are listed in packer attributes; an
	// inverted pin swaps which rail the tie-off feature names.
	writeConstPins := func(constNet string) {
		for _, pin := range strings.Fields(ci.Attr("DSP_"+constNet+"_PINS", "")) {
			basename := strings.Map(func(r rune) rune {
				if r >= '0' && r <= '9' {
					return -1
				}
				return r
			}, pin)
			net := constNet
			if ci.ParamBool("IS_"+basename+"_INVERTED", false) {
				if constNet == "GND" {
					net = "VCC"
				} else {
					net = "GND"
				}
			}
			b.w.WriteBit(dsp+"_"+pin+".DSP_"+net+"_"+string(tileSide), true)
		}
	}
	writeConstPins("GND")
	writeConstPins("VCC")
}
