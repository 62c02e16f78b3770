package xc7

import (
	"strconv"
	"strings"
)

// writeClocking encodes the global clocking resources: BUFGCTRL
// buffers, PLL/MMCM blocks, and the row buffer enables that the
// routing pass recorded into pipsByTile.
func (b *Backend) writeClocking() error {
	allGclk := map[string]struct{}{}
	hclkByRow := map[int]map[string]struct{}{}
	markHclk := func(row int, name string) {
		if hclkByRow[row] == nil {
			hclkByRow[row] = map[string]struct{}{}
		}
		hclkByRow[row][name] = struct{}{}
	}

	for _, ci := range b.d.SortedCells() {
		switch ci.Type {
		case "BUFGCTRL":
			pop := b.w.Enter(b.tileName(ci.Bel.Tile.Index),
				"BUFGCTRL.BUFGCTRL_X"+strconv.Itoa(ci.Bel.SiteX)+"Y"+strconv.Itoa(ci.Bel.SiteY))
			b.w.WriteBit("IN_USE", true)
			b.w.WriteBit("INIT_OUT", ci.ParamBool("INIT_OUT", false))
			b.w.WriteBit("IS_IGNORE0_INVERTED", ci.ParamBool("IS_IGNORE0_INVERTED", false))
			b.w.WriteBit("IS_IGNORE1_INVERTED", ci.ParamBool("IS_IGNORE1_INVERTED", false))
			b.w.WriteBit("ZINV_CE0", !ci.ParamBool("IS_CE0_INVERTED", false))
			b.w.WriteBit("ZINV_CE1", !ci.ParamBool("IS_CE1_INVERTED", false))
			b.w.WriteBit("ZINV_S0", !ci.ParamBool("IS_S0_INVERTED", false))
			b.w.WriteBit("ZINV_S1", !ci.ParamBool("IS_S1_INVERTED", false))
			pop()
		case "PLLE2_ADV_PLLE2_ADV":
			if err := b.writePll(ci); err != nil {
				return err
			}
		case "MMCME2_ADV_MMCME2_ADV":
			if err := b.writeMmcm(ci); err != nil {
				return err
			}
		}
		b.w.Blank()
	}

	for tile, t := range b.d.Tiles {
		pop := b.w.Enter(t.Name)
		switch {
		case t.Type == "HCLK_L" || t.Type == "HCLK_R" ||
			t.Type == "HCLK_L_BOT_UTURN" || t.Type == "HCLK_R_BOT_UTURN":
			sources := b.usedWiresStartingWith(tile, "HCLK_CK_", true)
			inner := b.w.Enter("ENABLE_BUFFER")
			for _, s := range sources {
				if idx := strings.Index(s, "BUFHCLK"); idx >= 0 {
					b.w.WriteBit(s, true)
					markHclk(b.d.Row(tile), s[idx:])
				}
			}
			inner()
		case strings.HasPrefix(t.Type, "CLK_HROW"):
			for _, s := range b.usedWiresStartingWith(tile, "CLK_HROW_R_CK_GCLK", true) {
				b.w.WriteBit(s+"_ACTIVE", true)
				if idx := strings.Index(s, "GCLK"); idx >= 0 {
					allGclk[s[idx:]] = struct{}{}
				}
			}
			for _, s := range b.usedWiresStartingWith(tile, "CLK_HROW_CK_IN", true) {
				if strings.Contains(s, "HROW_CK_INT") {
					continue
				}
				b.w.WriteBit(s+"_ACTIVE", true)
			}
		case strings.HasPrefix(t.Type, "HCLK_CMT"):
			for _, s := range b.usedWiresStartingWith(tile, "HCLK_CMT_CCIO", true) {
				b.w.WriteBit(s+"_ACTIVE", true)
				b.w.WriteBit(s+"_USED", true)
			}
			for _, s := range b.usedWiresStartingWith(tile, "HCLK_CMT_CK_", true) {
				if idx := strings.Index(s, "BUFHCLK"); idx >= 0 {
					b.w.WriteBit(s+"_USED", true)
					markHclk(b.d.Row(tile), s[idx:])
				}
			}
		}
		pop()
		b.w.Blank()
	}

	// Global buffer rebuf rows and CMT rows see every clock that was
	// activated anywhere, so emit them in a second pass.
	for tile, t := range b.d.Tiles {
		pop := b.w.Enter(t.Name)
		if t.Type == "CLK_BUFG_REBUF" {
			for _, gclk := range sortedSet(allGclk) {
				b.w.WriteBit(gclk+"_ENABLE_ABOVE", true)
				b.w.WriteBit(gclk+"_ENABLE_BELOW", true)
			}
		} else if strings.HasPrefix(t.Type, "HCLK_CMT") {
			for _, hclk := range sortedSet(hclkByRow[b.d.Row(tile)]) {
				b.w.WriteBit("HCLK_CMT_CK_"+hclk+"_USED", true)
			}
		}
		pop()
		b.w.Blank()
	}
	return nil
}
