package xc7

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
)

// bankConfig accumulates clock-region-wide IO flags as the union of
// the per-pad flags, emitted once per bank after all pads are visited.
type bankConfig struct {
	stepdown bool
	vref     bool
	tmds33   bool
	lvds25   bool
	onlyDiff bool
}

func (b *Backend) bank(hclk int) *bankConfig {
	cfg, ok := b.banks[hclk]
	if !ok {
		cfg = &bankConfig{}
		b.banks[hclk] = cfg
	}
	return cfg
}

// driveRule selects the output drive feature for one combination of
// electrical standard and drive strength. Rules are evaluated in
// order; the first match wins.
type driveRule struct {
	stds    []string
	drives  []int // nil matches any drive
	feature string
}

func (r *driveRule) matches(std string, drive int) bool {
	found := false
	for _, s := range r.stds {
		if s == std {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	if r.drives == nil {
		return true
	}
	for _, d := range r.drives {
		if d == drive {
			return true
		}
	}
	return false
}

// High-range (IOB33) bank drive decision table.
var iob33DriveRules = []driveRule{
	{stds: []string{"LVCMOS15"}, drives: []int{16}, feature: "LVCMOS15_SSTL15.DRIVE.I16_I_FIXED"},
	{stds: []string{"SSTL15"}, feature: "LVCMOS15_SSTL15.DRIVE.I16_I_FIXED"},
	{stds: []string{"LVCMOS18"}, drives: []int{12, 8}, feature: "LVCMOS18.DRIVE.I12_I8"},
	{stds: []string{"LVCMOS33", "LVTTL"}, drives: []int{16}, feature: "LVCMOS33_LVTTL.DRIVE.I12_I16"},
	{stds: []string{"LVCMOS33", "LVTTL"}, drives: []int{8, 12}, feature: "LVCMOS33_LVTTL.DRIVE.I12_I8"},
	{stds: []string{"LVCMOS33", "LVTTL"}, drives: []int{4}, feature: "LVCMOS33_LVTTL.DRIVE.I4"},
	{stds: []string{"LVCMOS12", "LVCMOS25"}, drives: []int{8}, feature: "LVCMOS12_LVCMOS25.DRIVE.I8"},
	{stds: []string{"LVCMOS15", "LVCMOS18", "LVCMOS25"}, drives: []int{4}, feature: "LVCMOS15_LVCMOS18_LVCMOS25.DRIVE.I4"},
}

// High-performance (RIOB18) bank drive decision table.
var riob18DriveRules = []driveRule{
	{stds: []string{"LVCMOS18", "LVCMOS15"}, feature: "LVCMOS15_LVCMOS18.DRIVE.I12_I16_I2_I4_I6_I8"},
	{stds: []string{"LVCMOS12"}, feature: "LVCMOS12.DRIVE.I2_I4_I6_I8"},
	{stds: []string{"LVDS"}, feature: "LVDS.DRIVE.I_FIXED"},
	{stds: []string{"SSTL12", "SSTL135", "SSTL15"}, feature: "SSTL.DRIVE.I_FIXED"},
}

func isSSTL(std string) bool {
	return std == "SSTL12" || std == "SSTL135" || std == "SSTL15"
}

// writeIO encodes every pad and IO-logic primitive, then flushes the
// accumulated per-bank flags.
func (b *Backend) writeIO() error {
	for _, ci := range b.d.SortedCells() {
		switch {
		case ci.Type == "PAD":
			if err := b.writeIOConfig(ci); err != nil {
				return err
			}
			b.w.Blank()
		case iolCellTypes[ci.Type]:
			if err := b.writeIOLConfig(ci); err != nil {
				return err
			}
			b.w.Blank()
		}
	}

	for _, hclk := range sortedKeys(b.banks) {
		cfg := b.banks[hclk]
		release := b.w.Enter(b.tileName(hclk))
		b.w.WriteBit("STEPDOWN", cfg.stepdown)
		b.w.WriteBit("VREF.V_675_MV", cfg.vref)
		b.w.WriteBit("ONLY_DIFF_IN_USE", cfg.onlyDiff)
		b.w.WriteBit("TMDS_33_IN_USE", cfg.tmds33)
		b.w.WriteBit("LVDS_25_IN_USE", cfg.lvds25)
		release()
	}
	return nil
}

func (b *Backend) writeIOConfig(pad *design.Cell) error {
	padNet := pad.Net("PAD")
	if padNet == nil {
		return fmt.Errorf("pad cell %s has no PAD net", pad.Name)
	}

	padY := pad.Bel.SiteY
	isOutput := padNet.Driver != nil
	isInput := false
	for _, usr := range padNet.Users {
		if strings.Contains(usr.Cell.Type, "INBUF") {
			isInput = true
		}
	}

	tile := b.tileName(pad.Bel.Tile.Index)
	defer b.w.Enter(tile)()

	isRiob18 := strings.HasPrefix(tile, "RIOB18_")
	isSing := strings.Contains(tile, "_SING_")
	isTopSing := pad.Bel.Tile.Index < b.d.HclkForIob(pad.Bel.Tile.Index)

	yLoc := 1 - padY
	if isSing {
		if isTopSing {
			yLoc = 1
		} else {
			yLoc = 0
		}
	}

	isStepdown, err := b.writePadBits(pad, yLoc, isOutput, isInput, isRiob18)
	if err != nil {
		return err
	}

	// An occupied input-inverter bel marks the slave side of a
	// differential output pair.
	if b.findCellOnBel(pad.Bel.Tile, pad.Bel.Site, "O_ININV") != nil {
		b.w.WriteBit("OUT_DIFF", true)
	}

	if isStepdown && !isSing {
		b.w.WriteBit("IOB_Y"+strconv.Itoa(padY)+".LVCMOS12_LVCMOS15_LVCMOS18_SSTL135_SSTL15.STEPDOWN", true)
	}

	return nil
}

// writePadBits emits the per-pad features scoped under the IOB_Y
// prefix and reports whether the pad engaged the bank stepdown.
func (b *Backend) writePadBits(pad *design.Cell, yLoc int, isOutput, isInput, isRiob18 bool) (bool, error) {
	defer b.w.Enter("IOB_Y" + strconv.Itoa(yLoc))()

	iostandard := pad.Attr("IOSTANDARD", "LVCMOS33")
	pulltype := pad.Attr("PULLTYPE", "NONE")
	slew := pad.Attr("SLEW", "SLOW")
	isStepdown := false
	isLvcmos := strings.HasPrefix(iostandard, "LVCMOS")
	isLowVoltLvcmos := iostandard == "LVCMOS12" || iostandard == "LVCMOS15" || iostandard == "LVCMOS18"

	hasDiffPrefix := strings.HasPrefix(iostandard, "DIFF_")
	isTmds33 := iostandard == "TMDS_33"
	isLvds25 := iostandard == "LVDS_25"
	isLvds := strings.HasPrefix(iostandard, "LVDS")
	onlyDiff := isTmds33 || isLvds
	isDiff := onlyDiff || hasDiffPrefix
	if hasDiffPrefix {
		iostandard = iostandard[5:]
	}
	sstl := isSSTL(iostandard)

	hclk := b.d.HclkForIob(pad.Bel.Tile.Index)
	if onlyDiff {
		b.bank(hclk).onlyDiff = true
	}
	if isTmds33 {
		b.bank(hclk).tmds33 = true
	}
	if isLvds25 {
		b.bank(hclk).lvds25 = true
	}

	if isOutput {
		// DRIVE
		defaultDrive := 12
		if isRiob18 && iostandard == "LVCMOS12" {
			defaultDrive = 8
		}
		drive := defaultDrive
		if pad.HasAttr("DRIVE") {
			v, err := strconv.Atoi(pad.Attr("DRIVE", ""))
			if err != nil {
				return false, fmt.Errorf("pad %s: invalid DRIVE attribute %q", pad.Name, pad.Attr("DRIVE", ""))
			}
			drive = v
		}

		if isRiob18 && (iostandard == "LVCMOS33" || iostandard == "LVTTL") {
			return false, fmt.Errorf("pad %s: high performance banks (RIOB18) do not support IO standard %s", pad.Name, iostandard)
		}

		switch {
		case iostandard == "SSTL135":
			b.w.WriteBit("SSTL135.DRIVE.I_FIXED", true)
		case isRiob18:
			for _, rule := range riob18DriveRules {
				if rule.matches(iostandard, drive) {
					feature := rule.feature
					if strings.HasPrefix(feature, "SSTL.") {
						feature = iostandard + feature[4:]
					}
					b.w.WriteBit(feature, true)
					break
				}
			}
		default: // IOB33
			switch {
			case iostandard == "TMDS_33" && yLoc == 0:
				b.w.WriteBit("TMDS_33.DRIVE.I_FIXED", true)
				b.w.WriteBit("TMDS_33.OUT", true)
			case iostandard == "LVDS_25" && yLoc == 0:
				b.w.WriteBit("LVDS_25.DRIVE.I_FIXED", true)
				b.w.WriteBit("LVDS_25.OUT", true)
			default:
				matched := false
				for _, rule := range iob33DriveRules {
					if rule.matches(iostandard, drive) {
						b.w.WriteBit(rule.feature, true)
						matched = true
						break
					}
				}
				if !matched && (isLvcmos || iostandard == "LVTTL") {
					b.w.WriteBit(iostandard+".DRIVE.I"+strconv.Itoa(drive), true)
				}
			}
		}

		// SSTL output used
		if isRiob18 && sstl {
			b.w.WriteBit(iostandard+".IN_USE", true)
		}

		// SLEW
		switch {
		case isRiob18 && slew == "SLOW":
			switch iostandard {
			case "SSTL135":
				b.w.WriteBit("SSTL135.SLEW.SLOW", true)
			case "SSTL15":
				b.w.WriteBit("SSTL15.SLEW.SLOW", true)
			default:
				b.w.WriteBit("LVCMOS12_LVCMOS15_LVCMOS18.SLEW.SLOW", true)
			}
		case slew == "SLOW":
			if iostandard != "LVDS_25" && iostandard != "TMDS_33" {
				b.w.WriteBit("LVCMOS12_LVCMOS15_LVCMOS18_LVCMOS25_LVCMOS33_LVTTL_SSTL135_SSTL15.SLEW.SLOW", true)
			}
		case isRiob18:
			b.w.WriteBit(iostandard+".SLEW.FAST", true)
		case iostandard == "SSTL135" || iostandard == "SSTL15":
			b.w.WriteBit("SSTL135_SSTL15.SLEW.FAST", true)
		default:
			b.w.WriteBit("LVCMOS12_LVCMOS15_LVCMOS18_LVCMOS25_LVCMOS33_LVTTL.SLEW.FAST", true)
		}
	}

	if isInput {
		if !isDiff {
			if iostandard == "LVCMOS33" || iostandard == "LVTTL" || iostandard == "LVCMOS25" {
				if isRiob18 {
					return false, fmt.Errorf("pad %s: high performance banks (RIOB18) do not support IO standard %s", pad.Name, iostandard)
				}
				b.w.WriteBit("LVCMOS25_LVCMOS33_LVTTL.IN", true)
			}

			if sstl {
				b.bank(hclk).vref = true
				if isRiob18 {
					b.w.WriteBit("SSTL12_SSTL135_SSTL15.IN", true)
				} else {
					b.w.WriteBit("SSTL135_SSTL15.IN", true)
					if pad.HasAttr("IN_TERM") {
						b.w.WriteBit("IN_TERM."+pad.Attr("IN_TERM", ""), true)
					}
				}
			}

			if isLowVoltLvcmos {
				b.w.WriteBit("LVCMOS12_LVCMOS15_LVCMOS18.IN", true)
			}
		} else {
			if isRiob18 {
				// The vendor tool generates these bits only for Y0 of
				// a differential pair.
				if yLoc == 0 {
					b.w.WriteBit("LVDS_SSTL12_SSTL135_SSTL15.IN_DIFF", true)
					if iostandard == "LVDS" {
						b.w.WriteBit("LVDS.IN_USE", true)
					}
				}
			} else {
				if iostandard == "TDMS_33" {
					b.w.WriteBit("TDMS_33.IN_DIFF", true)
				} else {
					b.w.WriteBit("LVDS_25_SSTL135_SSTL15.IN_DIFF", true)
				}
			}

			if pad.HasAttr("IN_TERM") {
				b.w.WriteBit("IN_TERM."+pad.Attr("IN_TERM", ""), true)
			}
		}

		// IN_ONLY
		if !isOutput {
			if isRiob18 {
				// The vendor tool also sets this bit for DIFF_SSTL.
				if isDiff && yLoc == 0 {
					b.w.WriteBit("LVDS.IN_ONLY", true)
				} else {
					b.w.WriteBit("LVCMOS12_LVCMOS15_LVCMOS18_SSTL12_SSTL135_SSTL15.IN_ONLY", true)
				}
			} else {
				b.w.WriteBit("LVCMOS12_LVCMOS15_LVCMOS18_LVCMOS25_LVCMOS33_LVDS_25_LVTTL_SSTL135_SSTL15_TMDS_33.IN_ONLY", true)
			}
		}
	}

	if !isRiob18 && (isLowVoltLvcmos || sstl) {
		if iostandard == "SSTL12" {
			return false, fmt.Errorf("pad %s: SSTL12 is only available on high performance banks", pad.Name)
		}
		b.w.WriteBit("LVCMOS12_LVCMOS15_LVCMOS18_SSTL135_SSTL15.STEPDOWN", true)
		b.bank(hclk).stepdown = true
		isStepdown = true
	}

	if isInput && isOutput && !isDiff && yLoc == 1 {
		if isRiob18 && strings.HasPrefix(iostandard, "SSTL") {
			b.w.WriteBit("SSTL12_SSTL135_SSTL15.IN", true)
		}
	}

	b.w.WriteBit("PULLTYPE."+pulltype, true)
	return isStepdown, nil
}

// findCellOnBel returns the cell bound to the named bel in a site, or
// nil.
func (b *Backend) findCellOnBel(t *design.Tile, site, belName string) *design.Cell {
	for _, c := range b.cellsByTile[t.Index] {
		if c.Bel.Site == site && c.Bel.Name == belName {
			return c
		}
	}
	return nil
}
