package design

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// The snapshot format is a YAML description of a placed-and-routed
// design as handed over by the place-and-route engine: the tile grid
// with wires and pips, the HCLK region bindings, placed cells with
// parameters and attributes, and per-net routing bindings.

type snapshotFile struct {
	Device snapshotDevice   `yaml:"device"`
	Tiles  []snapshotTile   `yaml:"tiles"`
	Hclk   snapshotHclk     `yaml:"hclk"`
	Cells  []snapshotCell   `yaml:"cells"`
	Nets   []snapshotNet    `yaml:"nets"`
}

type snapshotDevice struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type snapshotTile struct {
	Name  string         `yaml:"name"`
	Type  string         `yaml:"type"`
	Sites []string       `yaml:"sites"`
	Wires []snapshotWire `yaml:"wires"`
	Pips  []snapshotPip  `yaml:"pips"`
}

type snapshotWire struct {
	Name   string `yaml:"name"`
	Site   string `yaml:"site"`
	Intent string `yaml:"intent"`
}

type snapshotPip struct {
	Src       string `yaml:"src"`
	Dst       string `yaml:"dst"`
	Kind      string `yaml:"kind"`
	RouteThru bool   `yaml:"route_thru"`
	Bel       string `yaml:"bel"`
	Pin       string `yaml:"pin"`
}

type snapshotHclk struct {
	Ioi map[string]string `yaml:"ioi"`
	Iob map[string]string `yaml:"iob"`
}

type snapshotCell struct {
	Name   string                   `yaml:"name"`
	Type   string                   `yaml:"type"`
	Bel    snapshotBel              `yaml:"bel"`
	Params map[string]snapshotParam `yaml:"params"`
	Attrs  map[string]string        `yaml:"attrs"`
}

type snapshotBel struct {
	Tile string `yaml:"tile"`
	Name string `yaml:"name"`
	Site string `yaml:"site"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

type snapshotNet struct {
	Name    string            `yaml:"name"`
	Driver  *snapshotPort     `yaml:"driver"`
	Users   []snapshotPort    `yaml:"users"`
	Routing []snapshotBinding `yaml:"routing"`
}

type snapshotPort struct {
	Cell string `yaml:"cell"`
	Port string `yaml:"port"`
}

type snapshotBinding struct {
	Tile string `yaml:"tile"`
	Wire string `yaml:"wire"`
	// Src names the source wire of the pip driving this wire; empty
	// for routing roots.
	Src string `yaml:"src"`
}

// snapshotParam accepts a plain integer, a plain string, or a mapping
// {bits: "MSB-first digits"} for bit-vector parameters.
type snapshotParam struct {
	prop Property
}

func (p *snapshotParam) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!int":
			var v int64
			if err := node.Decode(&v); err != nil {
				return err
			}
			p.prop = IntProp(v)
			return nil
		case "!!bool":
			var v bool
			if err := node.Decode(&v); err != nil {
				return err
			}
			if v {
				p.prop = IntProp(1)
			} else {
				p.prop = IntProp(0)
			}
			return nil
		default:
			var s string
			if err := node.Decode(&s); err != nil {
				return err
			}
			p.prop = StringProp(s)
			return nil
		}
	case yaml.MappingNode:
		var m struct {
			Bits string `yaml:"bits"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		prop, err := BitsFromString(m.Bits)
		if err != nil {
			return err
		}
		p.prop = prop
		return nil
	}
	return fmt.Errorf("unsupported parameter value at line %d", node.Line)
}

// LoadSnapshot reads a design snapshot file and resolves all name
// references into a linked Design.
func LoadSnapshot(path string) (*Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	return ParseSnapshot(data)
}

// ParseSnapshot builds a Design from snapshot YAML bytes.
func ParseSnapshot(data []byte) (*Design, error) {
	var sf snapshotFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if sf.Device.Width <= 0 {
		return nil, fmt.Errorf("snapshot device width must be positive, got %d", sf.Device.Width)
	}

	d := NewDesign(sf.Device.Width, sf.Device.Height)

	for _, st := range sf.Tiles {
		t := &Tile{Name: st.Name, Type: st.Type, Sites: st.Sites}
		for _, sw := range st.Wires {
			w := &Wire{Name: sw.Name, Site: sw.Site}
			switch sw.Intent {
			case "":
			case "gnd":
				w.Intent = IntentPseudoGND
			case "vcc":
				w.Intent = IntentPseudoVCC
			default:
				return nil, fmt.Errorf("tile %s wire %s: unknown intent %q", st.Name, sw.Name, sw.Intent)
			}
			t.Wires = append(t.Wires, w)
		}
		byName := make(map[string]*Wire, len(t.Wires))
		for _, w := range t.Wires {
			byName[w.Name] = w
		}
		for _, sp := range st.Pips {
			src, ok := byName[sp.Src]
			if !ok {
				return nil, fmt.Errorf("tile %s: pip source wire %q not declared", st.Name, sp.Src)
			}
			dst, ok := byName[sp.Dst]
			if !ok {
				return nil, fmt.Errorf("tile %s: pip destination wire %q not declared", st.Name, sp.Dst)
			}
			pip := &Pip{Src: src, Dst: dst, RouteThru: sp.RouteThru, Bel: sp.Bel, BelPin: sp.Pin}
			switch sp.Kind {
			case "", "routing":
				pip.Kind = PipTileRouting
			case "site":
				pip.Kind = PipSiteInternal
			default:
				return nil, fmt.Errorf("tile %s: unknown pip kind %q", st.Name, sp.Kind)
			}
			t.Pips = append(t.Pips, pip)
		}
		d.AddTile(t)
	}

	tileByName := make(map[string]*Tile, len(d.Tiles))
	for _, t := range d.Tiles {
		tileByName[t.Name] = t
	}
	resolveHclk := func(m map[string]string, set func(tile, hclk int)) error {
		for tile, hclk := range m {
			tt, ok := tileByName[tile]
			if !ok {
				return fmt.Errorf("hclk binding references unknown tile %q", tile)
			}
			ht, ok := tileByName[hclk]
			if !ok {
				return fmt.Errorf("hclk binding references unknown HCLK tile %q", hclk)
			}
			set(tt.Index, ht.Index)
		}
		return nil
	}
	if err := resolveHclk(sf.Hclk.Ioi, d.SetHclkForIoi); err != nil {
		return nil, err
	}
	if err := resolveHclk(sf.Hclk.Iob, d.SetHclkForIob); err != nil {
		return nil, err
	}

	for _, sc := range sf.Cells {
		t, ok := tileByName[sc.Bel.Tile]
		if !ok {
			return nil, fmt.Errorf("cell %s placed on unknown tile %q", sc.Name, sc.Bel.Tile)
		}
		cell := &Cell{
			Name: sc.Name,
			Type: sc.Type,
			Bel: &Bel{
				Tile:  t,
				Name:  sc.Bel.Name,
				Site:  sc.Bel.Site,
				SiteX: sc.Bel.X,
				SiteY: sc.Bel.Y,
			},
			Params: make(map[string]Property, len(sc.Params)),
			Attrs:  sc.Attrs,
			Ports:  make(map[string]*Net),
		}
		if cell.Attrs == nil {
			cell.Attrs = make(map[string]string)
		}
		for name, sp := range sc.Params {
			cell.Params[name] = sp.prop
		}
		d.AddCell(cell)
	}

	for _, sn := range sf.Nets {
		net := &Net{Name: sn.Name, Wires: make(map[*Wire]*Pip)}
		resolvePort := func(sp snapshotPort) (*PortRef, error) {
			cell, ok := d.Cells[sp.Cell]
			if !ok {
				return nil, fmt.Errorf("net %s references unknown cell %q", sn.Name, sp.Cell)
			}
			cell.Ports[sp.Port] = net
			return &PortRef{Cell: cell, Port: sp.Port}, nil
		}
		if sn.Driver != nil {
			ref, err := resolvePort(*sn.Driver)
			if err != nil {
				return nil, err
			}
			net.Driver = ref
		}
		for _, su := range sn.Users {
			ref, err := resolvePort(su)
			if err != nil {
				return nil, err
			}
			net.Users = append(net.Users, *ref)
		}
		for _, sb := range sn.Routing {
			t, ok := tileByName[sb.Tile]
			if !ok {
				return nil, fmt.Errorf("net %s routed through unknown tile %q", sn.Name, sb.Tile)
			}
			wire := t.Wire(sb.Wire)
			if wire == nil {
				return nil, fmt.Errorf("net %s: tile %s has no wire %q", sn.Name, sb.Tile, sb.Wire)
			}
			if sb.Src == "" {
				net.Wires[wire] = nil
				continue
			}
			var pip *Pip
			for _, p := range wire.UphillPips() {
				if p.Src.Name == sb.Src {
					pip = p
					break
				}
			}
			if pip == nil {
				return nil, fmt.Errorf("net %s: no pip %s.%s <- %s", sn.Name, sb.Tile, sb.Wire, sb.Src)
			}
			net.Wires[wire] = pip
		}
		d.AddNet(net)
	}

	return d, nil
}
