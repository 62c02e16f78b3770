package xc7

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
)

// iolCellTypes is the closed set of IO-logic primitives this encoder
// supports. Anything else placed in an IOI tile is a fatal condition.
var iolCellTypes = map[string]bool{
	"ILOGICE3_IFF":        true,
	"OLOGICE2_OUTFF":      true,
	"OLOGICE3_OUTFF":      true,
	"OSERDESE2_OSERDESE2": true,
	"ISERDESE2_ISERDESE2": true,
	"IDELAYE2_IDELAYE2":   true,
	"ODELAYE2_ODELAYE2":   true,
}

func (b *Backend) writeIOLConfig(ci *design.Cell) error {
	tile := b.tileName(ci.Bel.Tile.Index)
	isSing := strings.Contains(tile, "_SING_")
	isTopSing := ci.Bel.Tile.Index < b.d.HclkForIoi(ci.Bel.Tile.Index)

	site := ci.Bel.Site
	siteType := site
	if pos := strings.IndexByte(site, '_'); pos >= 0 {
		siteType = site[:pos]
	}
	y := 1 - ci.Bel.SiteY
	if isSing {
		if isTopSing {
			y = 1
		} else {
			y = 0
		}
	}

	defer b.w.Enter(tile, siteType+"_Y"+strconv.Itoa(y))()

	switch ci.Type {
	case "ILOGICE3_IFF":
		return b.writeIddr(ci, site)
	case "OLOGICE2_OUTFF", "OLOGICE3_OUTFF":
		b.writeOddr(ci)
	case "OSERDESE2_OSERDESE2":
		b.writeOserdes(ci)
	case "ISERDESE2_ISERDESE2":
		b.writeIserdes(ci)
	case "IDELAYE2_IDELAYE2":
		b.writeIdelay(ci)
	case "ODELAYE2_ODELAYE2":
		b.writeOdelay(ci)
	default:
		return fmt.Errorf("unsupported IO-logic primitive %s on cell %s", ci.Type, ci.Name)
	}
	return nil
}

func (b *Backend) writeIddr(ci *design.Cell, site string) error {
	b.w.WriteBit("IDDR.IN_USE", true)
	b.w.WriteBit("IDDR_OR_ISERDES.IN_USE", true)
	b.w.WriteBit("ISERDES.MODE.MASTER", true)
	b.w.WriteBit("ISERDES.NUM_CE.N1", true)

	// The input delay mux includes the IDELAY element when an IDELAYE2
	// drives D.
	d := ci.Net("D")
	if d == nil || d.Driver == nil || d.Driver.Cell == nil {
		return fmt.Errorf("%s %q has disconnected D input", ci.Type, ci.Name)
	}
	if strings.Contains(d.Driver.Cell.Type, "IDELAYE2") {
		b.w.WriteBit("IDELMUXE3.P0", true)
	} else {
		b.w.WriteBit("IDELMUXE3.P1", true)
	}

	edge := ci.ParamStr("DDR_CLK_EDGE", "OPPOSITE_EDGE")
	switch edge {
	case "SAME_EDGE":
		b.w.WriteBit("IFF.DDR_CLK_EDGE.SAME_EDGE", true)
	case "OPPOSITE_EDGE":
		b.w.WriteBit("IFF.DDR_CLK_EDGE.OPPOSITE_EDGE", true)
	default:
		return fmt.Errorf("unsupported clock edge parameter for cell %q at %s: %s (supported: SAME_EDGE, OPPOSITE_EDGE)",
			ci.Name, site, edge)
	}

	if ci.ParamStr("SRTYPE", "SYNC") == "SYNC" {
		b.w.WriteBit("IFF.SRTYPE.SYNC", true)
	} else {
		b.w.WriteBit("IFF.SRTYPE.ASYNC", true)
	}

	b.w.WriteBit("IFF.ZINV_C", !ci.ParamBool("IS_CLK_INVERTED", false))
	b.w.WriteBit("ZINV_D", !ci.ParamBool("IS_D_INVERTED", false))

	b.w.WriteBit("IFF.ZINIT_Q1", ci.ParamInt("INIT_Q1", 0) == 0)
	b.w.WriteBit("IFF.ZINIT_Q2", ci.ParamInt("INIT_Q2", 0) == 0)

	if ci.Attr("X_ORIG_PORT_SR", "R") == "R" {
		b.w.WriteBit("IFF.ZSRVAL_Q1", true)
		b.w.WriteBit("IFF.ZSRVAL_Q2", true)
	}
	return nil
}

func (b *Backend) writeOddr(ci *design.Cell) {
	if ci.ParamStr("DDR_CLK_EDGE", "OPPOSITE_EDGE") == "SAME_EDGE" {
		b.w.WriteBit("ODDR.DDR_CLK_EDGE.SAME_EDGE", true)
	}

	b.w.WriteBit("ODDR_TDDR.IN_USE", true)
	b.w.WriteBit("OQUSED", true)
	b.w.WriteBit("OSERDES.DATA_RATE_OQ.DDR", true)
	b.w.WriteBit("OSERDES.DATA_RATE_TQ.BUF", true)

	if ci.ParamStr("SRTYPE", "SYNC") == "SYNC" {
		b.w.WriteBit("OSERDES.SRTYPE.SYNC", true)
	}

	for _, d := range []string{"D1", "D2"} {
		b.w.WriteBit("IS_"+d+"_INVERTED", ci.ParamBool("IS_"+d+"_INVERTED", false))
	}

	if ci.ParamInt("INIT", 1) == 0 {
		b.w.WriteBit("ZINIT_OQ", true)
	}

	b.w.WriteBit("ODDR.SRUSED", ci.Net("SR") != nil)
	if ci.Attr("X_ORIG_PORT_SR", "R") == "R" {
		b.w.WriteBit("ZSRVAL_OQ", true)
	}

	if !ci.ParamBool("IS_CLK_INVERTED", false) {
		b.w.WriteBit("ZINV_CLK", true)
	}
}

func (b *Backend) writeOserdes(ci *design.Cell) {
	b.w.WriteBit("ODDR.DDR_CLK_EDGE.SAME_EDGE", true)
	b.w.WriteBit("ODDR.SRUSED", true)
	b.w.WriteBit("ODDR_TDDR.IN_USE", true)
	b.w.WriteBit("OQUSED", ci.Net("OQ") != nil)
	b.w.WriteBit("ZINV_CLK", !ci.ParamBool("IS_CLK_INVERTED", false))
	for _, t := range []string{"T1", "T2", "T3", "T4"} {
		b.w.WriteBit("ZINV_"+t, (ci.Net(t) != nil || t == "T1") &&
			!ci.ParamBool("IS_"+t+"_INVERTED", false))
	}
	for _, d := range []string{"D1", "D2", "D3", "D4", "D5", "D6", "D7", "D8"} {
		b.w.WriteBit("IS_"+d+"_INVERTED", ci.ParamBool("IS_"+d+"_INVERTED", false))
	}
	b.w.WriteBit("ZINIT_OQ", !ci.ParamBool("INIT_OQ", false))
	b.w.WriteBit("ZINIT_TQ", !ci.ParamBool("INIT_TQ", false))
	b.w.WriteBit("ZSRVAL_OQ", !ci.ParamBool("SRVAL_OQ", false))
	b.w.WriteBit("ZSRVAL_TQ", !ci.ParamBool("SRVAL_TQ", false))

	defer b.w.Enter("OSERDES")()
	b.w.WriteBit("IN_USE", true)
	rate := ci.ParamStr("DATA_RATE_OQ", "DDR")
	oqRate := "DDR"
	if ci.Net("OQ") != nil {
		oqRate = rate
	}
	b.w.WriteBit("DATA_RATE_OQ."+oqRate, true)
	tqRate := "BUF"
	if ci.Net("TQ") != nil {
		tqRate = ci.ParamStr("DATA_RATE_TQ", "DDR")
	}
	b.w.WriteBit("DATA_RATE_TQ."+tqRate, true)
	width := strconv.FormatInt(ci.ParamInt("DATA_WIDTH", 8), 10)
	switch rate {
	case "DDR":
		b.w.WriteBit("DATA_WIDTH.DDR.W"+width, true)
	case "SDR":
		b.w.WriteBit("DATA_WIDTH.SDR.W"+width, true)
	default:
		b.w.WriteBit("DATA_WIDTH.W"+width, true)
	}
	b.w.WriteBit("SRTYPE.SYNC", true)
	b.w.WriteBit("TSRTYPE.SYNC", true)
}

func (b *Backend) writeIserdes(ci *design.Cell) {
	dataRate := ci.ParamStr("DATA_RATE", "")
	b.w.WriteBit("IDDR_OR_ISERDES.IN_USE", true)
	if dataRate == "DDR" {
		b.w.WriteBit("IDDR.IN_USE", true)
	}
	b.w.WriteBit("IFF.DDR_CLK_EDGE.OPPOSITE_EDGE", true)
	b.w.WriteBit("IFF.SRTYPE.SYNC", true)
	for i := 1; i <= 4; i++ {
		q := strconv.Itoa(i)
		b.w.WriteBit("IFF.ZINIT_Q"+q, !ci.ParamBool("INIT_Q"+q, false))
		b.w.WriteBit("IFF.ZSRVAL_Q"+q, !ci.ParamBool("SRVAL_Q"+q, false))
	}
	b.w.WriteBit("IFF.ZINV_C", !ci.ParamBool("IS_CLK_INVERTED", false))
	b.w.WriteBit("IFF.ZINV_OCLK", !ci.ParamBool("IS_OCLK_INVERTED", false))

	iobdelay := ci.ParamStr("IOBDELAY", "NONE")
	b.w.WriteBit("IFFDELMUXE3.P0", iobdelay == "IFD")
	b.w.WriteBit("ZINV_D", !ci.ParamBool("IS_D_INVERTED", false) && iobdelay != "IFD")

	defer b.w.Enter("ISERDES")()
	b.w.WriteBit("IN_USE", true)
	b.w.WriteBit("OFB_USED", ci.ParamStr("OFB_USED", "FALSE") == "TRUE")
	width := strconv.FormatInt(ci.ParamInt("DATA_WIDTH", 8), 10)
	mode := ci.ParamStr("INTERFACE_TYPE", "NETWORKING")
	rate := ci.ParamStr("DATA_RATE", "DDR")
	b.w.WriteBit(mode+"."+rate+".W"+width, true)
	b.w.WriteBit("MODE."+ci.ParamStr("SERDES_MODE", "MASTER"), true)
	b.w.WriteBit("NUM_CE.N"+strconv.FormatInt(ci.ParamInt("NUM_CE", 1), 10), true)
}

func (b *Backend) writeIdelay(ci *design.Cell) {
	b.w.WriteBit("IN_USE", true)
	b.w.WriteBit("CINVCTRL_SEL", ci.ParamStr("CINVCTRL_SEL", "FALSE") == "TRUE")
	b.w.WriteBit("PIPE_SEL", ci.ParamStr("PIPE_SEL", "FALSE") == "TRUE")
	b.w.WriteBit("HIGH_PERFORMANCE_MODE", ci.ParamStr("HIGH_PERFORMANCE_MODE", "FALSE") == "TRUE")
	b.w.WriteBit("DELAY_SRC_"+ci.ParamStr("DELAY_SRC", "IDATAIN"), true)
	b.w.WriteBit("IDELAY_TYPE_"+ci.ParamStr("IDELAY_TYPE", "FIXED"), true)
	value := uint64(ci.ParamInt("IDELAY_VALUE", 0))
	b.w.WriteIntVector("IDELAY_VALUE[4:0]", value, 5, false)
	b.w.WriteIntVector("ZIDELAY_VALUE[4:0]", value, 5, true)
	b.w.WriteBit("IS_DATAIN_INVERTED", ci.ParamBool("IS_DATAIN_INVERTED", false))
	b.w.WriteBit("IS_IDATAIN_INVERTED", ci.ParamBool("IS_IDATAIN_INVERTED", false))
}

func (b *Backend) writeOdelay(ci *design.Cell) {
	b.w.WriteBit("IN_USE", true)
	b.w.WriteBit("CINVCTRL_SEL", ci.ParamStr("CINVCTRL_SEL", "FALSE") == "TRUE")
	b.w.WriteBit("HIGH_PERFORMANCE_MODE", ci.ParamStr("HIGH_PERFORMANCE_MODE", "FALSE") == "TRUE")
	if t := ci.ParamStr("ODELAY_TYPE", "FIXED"); t != "FIXED" {
		b.w.WriteBit("ODELAY_TYPE_"+t, true)
	}
	value := uint64(ci.ParamInt("ODELAY_VALUE", 0))
	b.w.WriteIntVector("ODELAY_VALUE[4:0]", value, 5, false)
	b.w.WriteIntVector("ZODELAY_VALUE[4:0]", value, 5, true)
	b.w.WriteBit("ZINV_ODATAIN", !ci.ParamBool("IS_ODATAIN_INVERTED", false))
}
