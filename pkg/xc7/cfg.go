package xc7

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
)

// writeCfg encodes the configuration-center primitives: boundary scan,
// DCI reset, internal configuration access and startup behaviour.
func (b *Backend) writeCfg() error {
	for _, ci := range b.d.SortedCells() {
		tileName := b.tileName(ci.Bel.Tile.Index)
		if !strings.HasPrefix(tileName, "CFG_CENTER_") {
			continue
		}
		if err := b.writeCfgCell(ci, tileName); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) writeCfgCell(ci *design.Cell, tileName string) error {
	defer b.w.Enter(tileName)()

	switch ci.Type {
	case "BSCAN":
		chain := int(ci.ParamInt("JTAG_CHAIN", 1))
		if chain < 1 || chain > 4 {
			return fmt.Errorf("invalid JTAG_CHAIN number %d on cell %s (allowed: 1-4)", chain, ci.Name)
		}
		pop := b.w.Enter("BSCAN")
		b.w.WriteBit("JTAG_CHAIN_"+strconv.Itoa(chain), true)
		pop()

	case "DCIRESET_DCIRESET":
		b.w.WriteBit("DCIRESET.ENABLED", true)

	case "ICAP_ICAP":
		width := ci.ParamStr("ICAP_WIDTH", "X32")
		if width != "X32" && width != "X16" && width != "X8" {
			return fmt.Errorf("unknown ICAP_WIDTH %q on cell %s (allowed: X32, X16, X8)", width, ci.Name)
		}
		pop := b.w.Enter("ICAP")
		b.w.WriteBit("ICAP_WIDTH_X16", width == "X16")
		b.w.WriteBit("ICAP_WIDTH_X8", width == "X8")
		pop()

	case "STARTUP_STARTUP":
		progUsr := ci.ParamStr("PROG_USR", "FALSE")
		if progUsr != "TRUE" && progUsr != "FALSE" {
			return fmt.Errorf("invalid PROG_USR value %q in STARTUPE2 cell %s (allowed: TRUE, FALSE)", progUsr, ci.Name)
		}
		b.w.WriteBit("STARTUP.PROG_USR", progUsr == "TRUE")
		_, usrcclkoConst := ci.Net("USRCCLKO").IsConstant()
		b.w.WriteBit("STARTUP.USRCCLKO_CONNECTED", !usrcclkoConst)
	}
	return nil
}
