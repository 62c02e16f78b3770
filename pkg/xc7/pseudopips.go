package xc7

import (
	"strconv"
	"strings"
)

// pipKey identifies a primitive-internal ("pseudo") pip by tile type
// and endpoint wire names. Lookup is tile-type scoped: the same key
// resolves identically at every location, except for the enumerated
// positional rewrite rules below.
type pipKey struct {
	TileType string
	Dst      string
	Src      string
}

// pseudoPipTable maps recognised pseudo pips to the configuration
// features asserted when the pip is used. An entry with an empty
// feature list still counts as recognised and suppresses the generic
// fallback encoding.
type pseudoPipTable map[pipKey][]string

func (t pseudoPipTable) lookup(tileType, dst, src string) ([]string, bool) {
	features, ok := t[pipKey{TileType: tileType, Dst: dst, Src: src}]
	return features, ok
}

// flipSingY is a positional rewrite rule: single-row IO tiles above
// their clock-region HCLK use the Y1 variant of per-site features.
// The rule is kept isolated because the underlying device behaviour is
// undocumented; it must be reproduced exactly.
func flipSingY(feature string) string {
	return strings.Replace(feature, "Y0", "Y1", 1)
}

// buildPseudoPips enumerates the known device-family naming patterns
// for primitive-internal connections. The table is built once and is
// read-only thereafter.
func buildPseudoPips() pseudoPipTable {
	pp := make(pseudoPipTable)

	set := func(tileType, dst, src string, features ...string) {
		pp[pipKey{TileType: tileType, Dst: dst, Src: src}] = features
	}

	// High-range IO logic (IOI3) on both left and right columns,
	// including the byte-group and single-row tile variants.
	for _, s := range []string{"L", "R"} {
		for _, s2 := range []string{"", "_TBYTESRC", "_TBYTETERM", "_SING"} {
			indices := []string{"0", "1"}
			if s2 == "_SING" {
				indices = []string{"", "0", "1"}
			}
			for _, i := range indices {
				tt := s + "IOI3" + s2
				set(tt, s+"IOI_OLOGIC"+i+"_OQ", "IOI_OLOGIC"+i+"_D1",
					"OLOGIC_Y"+i+".OMUX.D1",
					"OLOGIC_Y"+i+".OQUSED",
					"OLOGIC_Y"+i+".OSERDES.DATA_RATE_TQ.BUF")
				set(tt, "IOI_ILOGIC"+i+"_O", s+"IOI_ILOGIC"+i+"_D",
					"IDELAY_Y"+i+".IDELAY_TYPE_FIXED",
					"ILOGIC_Y"+i+".ZINV_D")
				set(tt, "IOI_ILOGIC"+i+"_O", s+"IOI_ILOGIC"+i+"_DDLY",
					"ILOGIC_Y"+i+".IDELMUXE3.P0",
					"ILOGIC_Y"+i+".ZINV_D")
				set(tt, s+"IOI_OLOGIC"+i+"_TQ", "IOI_OLOGIC"+i+"_T1",
					"OLOGIC_Y"+i+".ZINV_T1")
				if i == "0" {
					tb := s + "IOB33" + s2
					set(tb, "IOB_O_IN1", "IOB_O_OUT0")
					set(tb, "IOB_O_OUT0", "IOB_O0")
					set(tb, "IOB_T_IN1", "IOB_T_OUT0")
					set(tb, "IOB_T_OUT0", "IOB_T0")
					set(tb, "IOB_DIFFI_IN0", "IOB_PADOUT1")
				}
			}
		}
	}

	// High-performance IO logic (RIOI).
	for _, s2 := range []string{"", "_TBYTESRC", "_TBYTETERM", "_SING"} {
		indices := []string{"0", "1"}
		if s2 == "_SING" {
			indices = []string{"0"}
		}
		for _, i := range indices {
			tt := "RIOI" + s2
			set(tt, "RIOI_OLOGIC"+i+"_OQ", "IOI_OLOGIC"+i+"_D1",
				"OLOGIC_Y"+i+".OMUX.D1",
				"OLOGIC_Y"+i+".OQUSED",
				"OLOGIC_Y"+i+".OSERDES.DATA_RATE_TQ.BUF")
			set(tt, "RIOI_OLOGIC"+i+"_OFB", "RIOI_OLOGIC"+i+"_OQ")
			set(tt, "RIOI_O"+i, "RIOI_ODELAY"+i+"_DATAOUT")
			set(tt, "RIOI_OLOGIC"+i+"_OFB", "IOI_OLOGIC"+i+"_D1",
				"OLOGIC_Y"+i+".OMUX.D1",
				"OLOGIC_Y"+i+".OSERDES.DATA_RATE_TQ.BUF")
			set(tt, "IOI_ILOGIC"+i+"_O", "RIOI_ILOGIC"+i+"_D",
				"ILOGIC_Y"+i+".ZINV_D")
			set(tt, "IOI_ILOGIC"+i+"_O", "RIOI_ILOGIC"+i+"_DDLY",
				"ILOGIC_Y"+i+".IDELMUXE3.P0",
				"ILOGIC_Y"+i+".ZINV_D")
			set(tt, "RIOI_OLOGIC"+i+"_TQ", "IOI_OLOGIC"+i+"_T1",
				"OLOGIC_Y"+i+".ZINV_T1")
			set(tt, "RIOI_OLOGIC"+i+"_OFB", "RIOI_ODELAY"+i+"_ODATAIN",
				"OLOGIC_Y"+i+".ZINV_ODATAIN")
			if i == "0" {
				tb := "RIOB18" + s2
				set(tb, "IOB_O_IN1", "IOB_O_OUT0")
				set(tb, "IOB_O_OUT0", "IOB_O0")
				set(tb, "IOB_T_IN1", "IOB_T_OUT0")
				set(tb, "IOB_T_OUT0", "IOB_T0")
				set(tb, "IOB_DIFFI_IN0", "IOB_PADOUT1")
			}
		}
	}

	// Horizontal clock row buffers (BUFHCE) and global buffers
	// (BUFGCTRL).
	for _, s1 := range []string{"TOP", "BOT"} {
		for _, s2 := range []string{"L", "R"} {
			for i := 0; i < 12; i++ {
				ii := strconv.Itoa(i)
				hck := s2 + ii
				buf := "X0Y" + ii
				if s2 == "R" {
					buf = "X1Y" + ii
				}
				set("CLK_HROW_"+s1+"_R",
					"CLK_HROW_CK_HCLK_OUT_"+hck, "CLK_HROW_CK_MUX_OUT_"+hck,
					"BUFHCE.BUFHCE_"+buf+".IN_USE",
					"BUFHCE.BUFHCE_"+buf+".ZINV_CE")
			}
		}

		for i := 0; i < 16; i++ {
			ii := strconv.Itoa(i)
			set("CLK_BUFG_"+s1+"_R",
				"CLK_BUFG_BUFGCTRL"+ii+"_O", "CLK_BUFG_BUFGCTRL"+ii+"_I0",
				"BUFGCTRL.BUFGCTRL_X0Y"+ii+".IN_USE",
				"BUFGCTRL.BUFGCTRL_X0Y"+ii+".IS_IGNORE1_INVERTED",
				"BUFGCTRL.BUFGCTRL_X0Y"+ii+".ZINV_CE0",
				"BUFGCTRL.BUFGCTRL_X0Y"+ii+".ZINV_S0")
			set("CLK_BUFG_"+s1+"_R",
				"CLK_BUFG_BUFGCTRL"+ii+"_O", "CLK_BUFG_BUFGCTRL"+ii+"_I1",
				"BUFGCTRL.BUFGCTRL_X0Y"+ii+".IN_USE",
				"BUFGCTRL.BUFGCTRL_X0Y"+ii+".IS_IGNORE0_INVERTED",
				"BUFGCTRL.BUFGCTRL_X0Y"+ii+".ZINV_CE1",
				"BUFGCTRL.BUFGCTRL_X0Y"+ii+".ZINV_S1")
		}
	}

	// Regional clock buffers: the BUFR site row order does not match
	// the RCLK wire index.
	rclkYToI := [4]int{2, 3, 0, 1}
	for y := 0; y < 4; y++ {
		yy := strconv.Itoa(y)
		ii := strconv.Itoa(rclkYToI[y])
		for _, tt := range []string{"HCLK_IOI3", "HCLK_IOI"} {
			set(tt, "HCLK_IOI_RCLK_OUT"+ii, "HCLK_IOI_RCLK_BEFORE_DIV"+ii,
				"BUFR_Y"+yy+".IN_USE",
				"BUFR_Y"+yy+".BUFR_DIVIDE.BYPASS")
		}
	}

	// Interface-tile output buffers carry no configuration but must be
	// recognised so the generic fallback is suppressed.
	for _, s := range []string{"L", "R"} {
		for i := 0; i < 24; i++ {
			ii := strconv.Itoa(i)
			set("INT_INTERFACE_"+s,
				"INT_INTERFACE_LOGIC_OUTS_"+s+ii,
				"INT_INTERFACE_LOGIC_OUTS_"+s+"_B"+ii)
		}
	}

	return pp
}
