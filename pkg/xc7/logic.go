package xc7

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
)

// Slot indices within a logic half follow the A..D lettering.
const slotLetters = "ABCD"

// logicHalf gathers the cells placed in one half of a logic tile,
// keyed by slot letter.
type logicHalf struct {
	luts6 [4]*design.Cell
	luts5 [4]*design.Cell
	ffs   [4]*design.Cell
	ffs2  [4]*design.Cell
	carry *design.Cell
	site  string
}

// logicState indexes a logic tile's placed cells by half and slot.
type logicState struct {
	halves [2]logicHalf
	any    bool
}

func (b *Backend) logicState(t *design.Tile) *logicState {
	ls := &logicState{}
	for x, site := range t.Sites {
		if x < 2 {
			ls.halves[x].site = site
		}
	}
	for _, cell := range b.cellsByTile[t.Index] {
		bel := cell.Bel
		if bel.SiteX < 0 || bel.SiteX > 1 {
			continue
		}
		half := &ls.halves[bel.SiteX]
		if half.site == "" {
			half.site = bel.Site
		}
		name := bel.Name
		slot := strings.IndexByte(slotLetters, name[0])
		switch {
		case name == "CARRY4":
			half.carry = cell
		case slot >= 0 && strings.HasSuffix(name, "6LUT"):
			half.luts6[slot] = cell
		case slot >= 0 && strings.HasSuffix(name, "5LUT"):
			half.luts5[slot] = cell
		case slot >= 0 && strings.HasSuffix(name, "5FF"):
			half.ffs2[slot] = cell
		case slot >= 0 && strings.HasSuffix(name, "FF"):
			half.ffs[slot] = cell
		}
		ls.any = true
	}
	return ls
}

// writeLogic encodes every used logic tile: LUT contents and modes,
// input muxes, flip-flop control bits and the carry chain.
func (b *Backend) writeLogic() error {
	used := make(map[int]*design.Tile)
	for _, cell := range b.d.SortedCells() {
		if cell.Bel != nil && isLogicTile(cell.Bel.Tile) {
			used[cell.Bel.Tile.Index] = cell.Bel.Tile
		}
	}
	indexes := make([]int, 0, len(used))
	for i := range used {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	for _, idx := range indexes {
		t := used[idx]
		ls := b.logicState(t)
		for half := 0; half < 2; half++ {
			if err := b.writeLutsConfig(t, ls, half); err != nil {
				return err
			}
		}
		for half := 0; half < 2; half++ {
			if err := b.writeFFsConfig(t, ls, half); err != nil {
				return err
			}
		}
		for half := 0; half < 2; half++ {
			b.writeCarryConfig(t, ls, half)
		}
		b.w.Blank()
	}
	return nil
}

// halfName names a half-tile context. Only the low half of an M tile
// is a SLICEM.
func halfName(half int, isM bool) string {
	if half == 1 {
		return "SLICEL_X1"
	}
	if isM {
		return "SLICEM_X0"
	}
	return "SLICEL_X0"
}

// lutPhysInputs are the physical input pins of a 6-input LUT site.
var lutPhysInputs = [6]string{"A1", "A2", "A3", "A4", "A5", "A6"}

// lutLogicalInputs returns the logical input ports of a LUT-type cell
// by its pre-mapping type.
func lutLogicalInputs(cell *design.Cell) ([]string, error) {
	switch cell.OrigType() {
	case "LUT1":
		return []string{"I0"}, nil
	case "LUT2":
		return []string{"I0", "I1"}, nil
	case "LUT3":
		return []string{"I0", "I1", "I2"}, nil
	case "LUT4":
		return []string{"I0", "I1", "I2", "I3"}, nil
	case "LUT5":
		return []string{"I0", "I1", "I2", "I3", "I4"}, nil
	case "LUT6":
		return []string{"I0", "I1", "I2", "I3", "I4", "I5"}, nil
	case "RAMD64E":
		return []string{"RADR0", "RADR1", "RADR2", "RADR3", "RADR4", "RADR5"}, nil
	case "SRL16E":
		return []string{"A0", "A1", "A2", "A3"}, nil
	case "SRLC32E":
		return []string{"A[0]", "A[1]", "A[2]", "A[3]", "A[4]"}, nil
	case "RAMD32":
		return []string{"RADR0", "RADR1", "RADR2", "RADR3", "RADR4"}, nil
	}
	return nil, fmt.Errorf("unsupported LUT-type cell %s (original type %q)", cell.Name, cell.OrigType())
}

// lutInit rebuilds the 64-bit physical truth table for a (possibly
// fractured) LUT pair. Each physical input index is translated to the
// logical input indices mapped onto it upstream; a physical pin
// fanning into several logical pins contributes the OR of their
// positions.
func lutInit(lut6, lut5 *design.Cell) ([]bool, error) {
	bits := make([]bool, 64)

	for pass, lut := range [2]*design.Cell{lut6, lut5} {
		if lut == nil {
			continue
		}
		inputs, err := lutLogicalInputs(lut)
		if err != nil {
			return nil, err
		}
		logToBit := make(map[string]int, len(inputs))
		for j, name := range inputs {
			logToBit[name] = j
		}
		var physToLog [6][]string
		for j := 0; j < 6; j++ {
			attr := "X_ORIG_PORT_" + lutPhysInputs[j]
			if !lut.HasAttr(attr) {
				continue
			}
			physToLog[j] = strings.Fields(lut.Attr(attr, ""))
		}
		lbound, ubound := 0, 64
		// Fractured pairs split the table: the 5LUT owns the lower
		// half, the 6LUT the upper.
		if lut5 != nil && lut6 != nil {
			if pass == 1 {
				lbound, ubound = 0, 32
			} else {
				lbound, ubound = 32, 64
			}
		}
		init := lut.Params["INIT"].Extract(0, 64)
		for j := lbound; j < ubound; j++ {
			logIndex := 0
			for k := 0; k < 6; k++ {
				if j&(1<<uint(k)) == 0 {
					continue
				}
				for _, logical := range physToLog[k] {
					logIndex |= 1 << uint(logToBit[logical])
				}
			}
			bits[j] = init[logIndex]
		}
	}
	return bits, nil
}

// writeRoutingBel emits the feature for the bound site pip feeding a
// routing-bel output wire.
func (b *Backend) writeRoutingBel(dstWire *design.Wire) {
	if dstWire == nil {
		return
	}
	for _, pip := range dstWire.UphillPips() {
		if b.d.PipNet(pip) == nil {
			continue
		}
		belName := pip.Bel
		pinName := pip.BelPin
		skipPin := false

		// The write-enable mux default has no associated bit.
		if belName == "WEMUX" && pinName == "WE" {
			continue
		}
		if len(belName) > 1 && belName[1:] == "DI1MUX" {
			belName = "DI1MUX"
		}
		if len(belName) > 1 && belName[1:] == "CY0" {
			if len(pinName) > 1 && pinName[1:] == "5" {
				skipPin = true
			} else {
				continue
			}
		}

		if skipPin {
			b.w.WriteBit(belName, true)
		} else {
			b.w.WriteBit(belName+"."+pinName, true)
		}
	}
}

func (b *Backend) writeLutsConfig(t *design.Tile, ls *logicState, half int) error {
	if !ls.any {
		return nil
	}
	tname := t.Name
	isM := strings.Contains(tname, "CLBLM")
	isSliceM := isM && half == 0
	h := &ls.halves[half]

	defer b.w.Enter(tname, halfName(half, isM))()

	wa7Used, wa8Used := false, false
	for i := 0; i < 4; i++ {
		lut6 := h.luts6[i]
		lut5 := h.luts5[i]
		letter := string(slotLetters[i])
		if lut6 != nil || lut5 != nil {
			release := b.w.Enter(letter + "LUT")
			init, err := lutInit(lut6, lut5)
			if err != nil {
				release()
				return err
			}
			b.w.WriteVector("INIT[63:0]", init, false)

			isSmall, isRAM, isSRL := false, false, false
			for _, lut := range [2]*design.Cell{lut6, lut5} {
				if lut == nil {
					continue
				}
				switch lut.OrigType() {
				case "RAMD64E", "RAMS64E":
					isRAM = true
				case "RAMD32", "RAMS32":
					isRAM = true
					isSmall = true
				case "SRL16E":
					isSRL = true
					isSmall = true
				case "SRLC32E":
					isSRL = true
				}
				wa7Used = wa7Used || lut.Net("WA7") != nil
				wa8Used = wa8Used || lut.Net("WA8") != nil
			}
			if isSliceM && i != 3 {
				b.writeRoutingBel(b.d.SiteWire(t, h.site, letter+"DI1MUX_OUT"))
			}
			b.w.WriteBit("SMALL", isSmall)
			b.w.WriteBit("RAM", isRAM)
			b.w.WriteBit("SRL", isSRL)
			release()
		}
		b.writeRoutingBel(b.d.SiteWire(t, h.site, letter+"MUX"))
	}
	b.w.WriteBit("WA7USED", wa7Used)
	b.w.WriteBit("WA8USED", wa8Used)
	if isSliceM {
		b.writeRoutingBel(b.d.SiteWire(t, h.site, "WEMUX_OUT"))
	}
	return nil
}

// ffClass captures the control-bit classification of one flip-flop
// type. All supported types are registers; latch modes are packed
// elsewhere upstream.
type ffClass struct {
	zrst    bool
	negedge bool
	sync    bool
}

var ffClasses = map[string]ffClass{
	"FDRE":   {zrst: true, negedge: false, sync: true},
	"FDRE_1": {zrst: true, negedge: true, sync: true},
	"FDSE":   {zrst: false, negedge: false, sync: true},
	"FDSE_1": {zrst: false, negedge: true, sync: true},
	"FDCE":   {zrst: true, negedge: false, sync: false},
	"FDCE_1": {zrst: true, negedge: true, sync: false},
	"FDPE":   {zrst: false, negedge: false, sync: false},
	"FDPE_1": {zrst: false, negedge: true, sync: false},
}

func (b *Backend) writeFFsConfig(t *design.Tile, ls *logicState, half int) error {
	if !ls.any {
		return nil
	}
	tname := t.Name
	h := &ls.halves[half]

	foundFF := false
	var negedgeFF, isLatch, isSync, isClkinv, isSRUsed, isCEUsed bool

	// One physical bit serves every flip-flop in the half-tile, so all
	// instances must agree on each shared control value.
	setCheck := func(name string, dst *bool, v bool, cell *design.Cell) error {
		if foundFF && *dst != v {
			return fmt.Errorf("tile %s: flip-flops disagree on shared control bit %s (cell %s)",
				tname, name, cell.Name)
		}
		*dst = v
		return nil
	}

	defer b.w.Enter(tname, halfName(half, strings.Contains(tname, "CLBLM")))()

	for i := 0; i < 4; i++ {
		for _, ff := range [2]*design.Cell{h.ffs[i], h.ffs2[i]} {
			if ff == nil {
				continue
			}
			class, ok := ffClasses[ff.OrigType()]
			if !ok {
				return fmt.Errorf("unsupported FF type %q on cell %s", ff.OrigType(), ff.Name)
			}
			if err := setCheck("CLK_EDGE", &negedgeFF, class.negedge, ff); err != nil {
				return err
			}
			if err := setCheck("LATCH", &isLatch, false, ff); err != nil {
				return err
			}
			if err := setCheck("FFSYNC", &isSync, class.sync, ff); err != nil {
				return err
			}

			zinit := ff.ParamInt("INIT", 0) != 1

			release := b.w.Enter(ff.Bel.Name)
			b.w.WriteBit("ZINI", zinit)
			b.w.WriteBit("ZRST", class.zrst)
			release()

			clkinv := negedgeFF || ff.ParamInt("IS_CLK_INVERTED", 0) == 1
			if err := setCheck("CLKINV", &isClkinv, clkinv, ff); err != nil {
				return err
			}

			sr, ce := ff.Net("SR"), ff.Net("CE")
			srUsed := sr != nil && sr.Name != design.GndNetName
			ceUsed := ce != nil && ce.Name != design.VccNetName
			if err := setCheck("SRUSEDMUX", &isSRUsed, srUsed, ff); err != nil {
				return err
			}
			if err := setCheck("CEUSEDMUX", &isCEUsed, ceUsed, ff); err != nil {
				return err
			}

			// Input mux
			b.writeRoutingBel(b.d.BelPinWire(ff.Bel, "D"))

			foundFF = true
		}
	}
	b.w.WriteBit("LATCH", isLatch)
	b.w.WriteBit("FFSYNC", isSync)
	b.w.WriteBit("CLKINV", isClkinv)
	b.w.WriteBit("NOCLKINV", !isClkinv)
	b.w.WriteBit("SRUSEDMUX", isSRUsed)
	b.w.WriteBit("CEUSEDMUX", isCEUsed)
	return nil
}

func (b *Backend) writeCarryConfig(t *design.Tile, ls *logicState, half int) {
	if !ls.any {
		return
	}
	h := &ls.halves[half]
	carry := h.carry
	if carry == nil {
		return
	}
	tname := t.Name

	defer b.w.Enter(tname, halfName(half, strings.Contains(tname, "CLBLM")))()

	b.writeRoutingBel(b.d.SiteWire(t, carry.Bel.Site, "PRECYINIT_OUT"))
	if carry.Net("CIN") != nil {
		b.w.WriteBit("PRECYINIT.CIN", true)
	}
	release := b.w.Enter("CARRY4")
	for _, letter := range []string{"A", "B", "C", "D"} {
		b.writeRoutingBel(b.d.SiteWire(t, carry.Bel.Site, letter+"CY0_OUT"))
	}
	release()
}
