package xc7

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
)

// clkoutCounter is the shared high/low-time counter calculation for
// PLL and MMCM output dividers. The divide value may be fractional;
// the fractional part is expressed in eighths.
type clkoutCounter struct {
	high, low int
	phaseMux  int
	delayTime int
	frac      int
	noCount   bool
	edge      bool
}

func computeCounter(divide, phase float64, fractional bool) clkoutCounter {
	c := clkoutCounter{high: 1, low: 1}
	if divide <= 1 {
		c.noCount = true
		return c
	}
	c.high = int(math.Floor(divide / 2))
	c.low = int(math.Floor(divide)) - c.high
	c.edge = c.high != c.low
	if fractional {
		c.frac = int(math.Floor(divide*8)) - int(math.Floor(divide))*8
	}
	phaseEighths := int(math.Floor((phase / 360) * divide * 8))
	c.phaseMux = phaseEighths % 8
	c.delayTime = phaseEighths / 8
	return c
}

func (b *Backend) writePllClkout(name string, ci *design.Cell) {
	divParam := name + "_DIVIDE"
	if name == "CLKFBOUT" {
		divParam = name + "_MULT"
	}
	divide := ci.ParamFloat(divParam, 1)
	phase := ci.ParamFloat(name+"_PHASE", 1)
	c := computeCounter(divide, phase, name == "CLKOUT1" || name == "CLKFBOUT")

	used := name == "DIVCLK" || name == "CLKFBOUT" || ci.Net(name) != nil

	if name == "DIVCLK" {
		b.w.WriteIntVector("DIVCLK_DIVCLK_HIGH_TIME[5:0]", uint64(c.high), 6, false)
		b.w.WriteIntVector("DIVCLK_DIVCLK_LOW_TIME[5:0]", uint64(c.low), 6, false)
		b.w.WriteBit("DIVCLK_DIVCLK_EDGE[0]", c.edge)
		b.w.WriteBit("DIVCLK_DIVCLK_NO_COUNT[0]", c.noCount)
		return
	}
	if !used {
		return
	}
	b.w.WriteBit(name+"_CLKOUT1_OUTPUT_ENABLE[0]", true)
	b.w.WriteIntVector(name+"_CLKOUT1_HIGH_TIME[5:0]", uint64(c.high), 6, false)
	b.w.WriteIntVector(name+"_CLKOUT1_LOW_TIME[5:0]", uint64(c.low), 6, false)
	b.w.WriteIntVector(name+"_CLKOUT1_PHASE_MUX[2:0]", uint64(c.phaseMux), 3, false)
	b.w.WriteBit(name+"_CLKOUT2_EDGE[0]", c.edge)
	b.w.WriteBit(name+"_CLKOUT2_NO_COUNT[0]", c.noCount)
	b.w.WriteIntVector(name+"_CLKOUT2_DELAY_TIME[5:0]", uint64(c.delayTime), 6, false)
	if c.frac != 0 {
		b.w.WriteBit(name+"_CLKOUT2_FRAC_EN[0]", c.edge)
		b.w.WriteIntVector(name+"_CLKOUT2_FRAC[2:0]", uint64(c.frac), 3, false)
	}
}

func (b *Backend) writePll(ci *design.Cell) error {
	defer b.w.Enter(b.tileName(ci.Bel.Tile.Index), "PLLE2_ADV")()
	b.w.WriteBit("IN_USE", true)
	// The PWRDWN and RST features are named ZINV_ but behave as INV_
	// in the bitstream database, so the parameter goes in uninverted.
	b.w.WriteBit("ZINV_PWRDWN", ci.ParamBool("IS_PWRDWN_INVERTED", false))
	b.w.WriteBit("ZINV_RST", ci.ParamBool("IS_RST_INVERTED", false))
	b.w.WriteBit("INV_CLKINSEL", ci.ParamBool("IS_CLKINSEL_INVERTED", false))
	for _, name := range []string{
		"DIVCLK", "CLKFBOUT",
		"CLKOUT0", "CLKOUT1", "CLKOUT2", "CLKOUT3", "CLKOUT4", "CLKOUT5",
	} {
		b.writePllClkout(name, ci)
	}

	comp := ci.ParamStr("COMPENSATION", "INTERNAL")
	if comp != "INTERNAL" {
		return fmt.Errorf("PLLE2_ADV %s: unsupported COMPENSATION %q", ci.Name, comp)
	}
	b.w.WriteBit("COMPENSATION.Z_ZHOLD_OR_CLKIN_BUF", true)

	b.w.WriteIntVector("FILTREG1_RESERVED[11:0]", 0x8, 12, false)
	b.w.WriteIntVector("LKTABLE[39:0]", 0xB5BE8FA401, 40, false)
	b.w.WriteBit("LOCKREG3_RESERVED[0]", true)
	b.w.WriteIntVector("TABLE[9:0]", 0x3B4, 10, false)
	return nil
}

func (b *Backend) writeMmcmClkout(name string, ci *design.Cell) {
	divParam := name + "_DIVIDE"
	switch name {
	case "CLKFBOUT":
		divParam = name + "_MULT_F"
	case "CLKOUT0":
		divParam = name + "_DIVIDE_F"
	}
	divide := ci.ParamFloat(divParam, 1)
	phase := ci.ParamFloat(name+"_PHASE", 1)
	c := computeCounter(divide, phase, name == "CLKOUT0" || name == "CLKFBOUT")

	used := name == "DIVCLK" || name == "CLKFBOUT" || ci.Net(name) != nil

	if name == "DIVCLK" {
		b.w.WriteIntVector("DIVCLK_DIVCLK_HIGH_TIME[5:0]", uint64(c.high), 6, false)
		b.w.WriteIntVector("DIVCLK_DIVCLK_LOW_TIME[5:0]", uint64(c.low), 6, false)
		b.w.WriteBit("DIVCLK_DIVCLK_EDGE[0]", c.edge)
		b.w.WriteBit("DIVCLK_DIVCLK_NO_COUNT[0]", c.noCount)
		return
	}
	if !used {
		return
	}

	isClkout56 := name == "CLKOUT5" || name == "CLKOUT6"
	isClkout0 := name == "CLKOUT0"
	isClkfbout := name == "CLKFBOUT"

	if (isClkout0 || isClkfbout) && c.frac != 0 {
		c.high--
		c.low--

		// CLKOUT0's fractional half-cycle lives in the CLKOUT5 counter
		// space; CLKFBOUT's lives in CLKOUT6's.
		fracConf := "CLKOUT6_CLKOUT2_"
		if isClkout0 {
			fracConf = "CLKOUT5_CLKOUT2_"
		}
		if shifted := c.frac >> 1; shifted >= 1 {
			b.w.WriteBit(fracConf+"FRACTIONAL_FRAC_WF_F[0]", true)
			b.w.WriteIntVector(fracConf+"FRACTIONAL_PHASE_MUX_F[1:0]", uint64(shifted), 2, false)
		}
	}

	b.w.WriteBit(name+"_CLKOUT1_OUTPUT_ENABLE[0]", true)
	b.w.WriteIntVector(name+"_CLKOUT1_HIGH_TIME[5:0]", uint64(c.high), 6, false)
	b.w.WriteIntVector(name+"_CLKOUT1_LOW_TIME[5:0]", uint64(c.low), 6, false)
	b.w.WriteIntVector(name+"_CLKOUT1_PHASE_MUX[2:0]", uint64(c.phaseMux), 3, false)

	suffix := func(plain, fractional string) string {
		if isClkout56 {
			return name + fractional
		}
		return name + plain
	}
	b.w.WriteBit(suffix("_CLKOUT2_EDGE[0]", "_CLKOUT2_FRACTIONAL_EDGE[0]"), c.edge)
	b.w.WriteBit(suffix("_CLKOUT2_NO_COUNT[0]", "_CLKOUT2_FRACTIONAL_NO_COUNT[0]"), c.noCount)
	b.w.WriteIntVector(suffix("_CLKOUT2_DELAY_TIME[5:0]", "_CLKOUT2_FRACTIONAL_DELAY_TIME[5:0]"),
		uint64(c.delayTime), 6, false)

	if !isClkout56 && c.frac != 0 {
		b.w.WriteBit(name+"_CLKOUT2_FRAC_EN[0]", true)
		b.w.WriteBit(name+"_CLKOUT2_FRAC_WF_R[0]", true)
		b.w.WriteIntVector(name+"_CLKOUT2_FRAC[2:0]", uint64(c.frac), 3, false)
	}
}

// mmcmLockTable is indexed by CLKFBOUT_MULT_F - 1. Each entry packs
// LockRefDly(5) LockFBDly(5) LockCnt(10) LockSatHigh(10) UnlockCnt(10).
var mmcmLockTable = [63]uint64{
	0b0011000110111110100011111010010000000001,
	0b0011000110111110100011111010010000000001,
	0b0100001000111110100011111010010000000001,
	0b0101101011111110100011111010010000000001,
	0b0111001110111110100011111010010000000001,
	0b1000110001111110100011111010010000000001,
	0b1001110011111110100011111010010000000001,
	0b1011010110111110100011111010010000000001,
	0b1100111001111110100011111010010000000001,
	0b1110011100111110100011111010010000000001,
	0b1111111111111000010011111010010000000001,
	0b1111111111110011100111111010010000000001,
	0b1111111111101110111011111010010000000001,
	0b1111111111101011110011111010010000000001,
	0b1111111111101000101011111010010000000001,
	0b1111111111100111000111111010010000000001,
	0b1111111111100011111111111010010000000001,
	0b1111111111100010011011111010010000000001,
	0b1111111111100000110111111010010000000001,
	0b1111111111011111010011111010010000000001,
	0b1111111111011101101111111010010000000001,
	0b1111111111011100001011111010010000000001,
	0b1111111111011010100111111010010000000001,
	0b1111111111011001000011111010010000000001,
	0b1111111111011001000011111010010000000001,
	0b1111111111010111011111111010010000000001,
	0b1111111111010101111011111010010000000001,
	0b1111111111010101111011111010010000000001,
	0b1111111111010100010111111010010000000001,
	0b1111111111010100010111111010010000000001,
	0b1111111111010010110011111010010000000001,
	0b1111111111010010110011111010010000000001,
	0b1111111111010010110011111010010000000001,
	0b1111111111010001001111111010010000000001,
	0b1111111111010001001111111010010000000001,
	0b1111111111010001001111111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
	0b1111111111001111101011111010010000000001,
}

// Loop filter settings per CLKFBOUT_MULT_F - 1, one table per
// BANDWIDTH setting.
var mmcmFilterLow = [64]uint16{
	0b0010111100,
	0b0010111100,
	0b0010111100,
	0b0010111100,
	0b0010011100,
	0b0010101100,
	0b0010110100,
	0b0010001100,
	0b0010010100,
	0b0010010100,
	0b0010100100,
	0b0010111000,
	0b0010111000,
	0b0010111000,
	0b0010111000,
	0b0010000100,
	0b0010000100,
	0b0010000100,
	0b0010011000,
	0b0010011000,
	0b0010011000,
	0b0010011000,
	0b0010011000,
	0b0010011000,
	0b0010011000,
	0b0010101000,
	0b0010101000,
	0b0010101000,
	0b0010101000,
	0b0010101000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010110000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
	0b0010001000,
}

var mmcmFilterLowSS = [64]uint16{
	0b0010111111,
	0b0010111111,
	0b0010111111,
	0b0010111111,
	0b0010011111,
	0b0010101111,
	0b0010110111,
	0b0010001111,
	0b0010010111,
	0b0010010111,
	0b0010100111,
	0b0010111011,
	0b0010111011,
	0b0010111011,
	0b0010111011,
	0b0010000111,
	0b0010000111,
	0b0010000111,
	0b0010011011,
	0b0010011011,
	0b0010011011,
	0b0010011011,
	0b0010011011,
	0b0010011011,
	0b0010011011,
	0b0010101011,
	0b0010101011,
	0b0010101011,
	0b0010101011,
	0b0010101011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010110011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
	0b0010001011,
}

var mmcmFilterHigh = [64]uint16{
	0b0010111100,
	0b0100111100,
	0b0101101100,
	0b0111011100,
	0b1101011100,
	0b1110101100,
	0b1110110100,
	0b1111001100,
	0b1110010100,
	0b1111010100,
	0b1111100100,
	0b1101000100,
	0b1111100100,
	0b1111100100,
	0b1111100100,
	0b1111100100,
	0b1111010100,
	0b1111010100,
	0b1100000100,
	0b1100000100,
	0b1100000100,
	0b0101110000,
	0b0101110000,
	0b0101110000,
	0b0101110000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0011010000,
	0b0010100000,
	0b0010100000,
	0b0010100000,
	0b0010100000,
	0b0010100000,
	0b0111000100,
	0b0111000100,
	0b0100110000,
	0b0100110000,
	0b0100110000,
	0b0100110000,
	0b0110000100,
	0b0110000100,
	0b0101011000,
	0b0101011000,
	0b0101011000,
	0b0010010000,
	0b0010010000,
	0b0010010000,
	0b0010010000,
	0b0100101000,
	0b0011110000,
	0b0011110000,
}

// The OPTIMIZED bandwidth setting resolves to the same filter values
// as HIGH.
var mmcmFilterOptimized = mmcmFilterHigh

func (b *Backend) writeMmcm(ci *design.Cell) error {
	defer b.w.Enter(b.tileName(ci.Bel.Tile.Index), "MMCME2_ADV")()
	b.w.WriteBit("IN_USE", true)
	// Same uninverted-parameter quirk as the PLL control inversions.
	b.w.WriteBit("ZINV_PWRDWN", ci.ParamBool("IS_PWRDWN_INVERTED", false))
	b.w.WriteBit("ZINV_RST", ci.ParamBool("IS_RST_INVERTED", false))
	b.w.WriteBit("ZINV_PSEN", ci.ParamBool("IS_PSEN_INVERTED", false))
	b.w.WriteBit("ZINV_PSINCDEC", ci.ParamBool("IS_PSINCDEC_INVERTED", false))
	b.w.WriteBit("INV_CLKINSEL", ci.ParamBool("IS_CLKINSEL_INVERTED", false))
	for _, name := range []string{
		"DIVCLK", "CLKFBOUT",
		"CLKOUT0", "CLKOUT1", "CLKOUT2", "CLKOUT3", "CLKOUT4", "CLKOUT5", "CLKOUT6",
	} {
		b.writeMmcmClkout(name, ci)
	}

	comp := ci.ParamStr("COMPENSATION", "INTERNAL")
	if comp != "INTERNAL" && comp != "ZHOLD" {
		return fmt.Errorf("MMCME2_ADV %s: unsupported COMPENSATION %q", ci.Name, comp)
	}
	// INTERNAL and ZHOLD configure the same compensation bit.
	b.w.WriteBit("COMP.Z_ZHOLD", true)

	mult := int(ci.ParamFloat("CLKFBOUT_MULT_F", 5.000))
	if mult > 63 {
		return fmt.Errorf("MMCME2_ADV %s: CLKFBOUT_MULT_F must not be greater than 63", ci.Name)
	}
	if mult == 0 {
		return fmt.Errorf("MMCME2_ADV %s: CLKFBOUT_MULT_F must not be 0", ci.Name)
	}
	b.w.WriteIntVector("LKTABLE[39:0]", mmcmLockTable[mult-1], 40, false)

	var filter [64]uint16
	switch ci.ParamStr("BANDWIDTH", "OPTIMIZED") {
	case "LOW":
		filter = mmcmFilterLow
	case "LOW_SS":
		filter = mmcmFilterLowSS
	case "HIGH":
		filter = mmcmFilterHigh
	default:
		filter = mmcmFilterOptimized
	}
	b.w.WriteIntVector("FILTREG1_RESERVED[11:0]", uint64(filter[mult-1]), 12, false)

	// 0xffff matches what the vendor tool emits; it also powers the
	// fractional counters.
	b.w.WriteIntVector("POWER_REG_POWER_REG_POWER_REG[15:0]", 0xffff, 16, false)
	b.w.WriteBit("LOCKREG3_RESERVED[0]", true)
	b.w.WriteIntVector("TABLE[9:0]", 0x3d4, 10, false)
	return nil
}
