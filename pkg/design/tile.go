package design

// WireIntent tags a wire with a constant-network role. Wires feeding
// the pseudo ground/power networks never receive explicit routing
// features.
type WireIntent int

const (
	IntentNone WireIntent = iota
	IntentPseudoGND
	IntentPseudoVCC
)

// PipKind distinguishes plain tile routing switches from site-internal
// pips that are configured through their owning routing bel instead of
// the wire graph.
type PipKind int

const (
	PipTileRouting PipKind = iota
	PipSiteInternal
)

// Tile is one addressable unit of the device fabric. Tiles are
// read-only inputs; the encoder never mutates them.
type Tile struct {
	Index int
	Name  string
	Type  string
	// Sites lists the site names hosted by the tile, indexed by the
	// site's x position within the tile.
	Sites []string

	Wires []*Wire
	Pips  []*Pip

	wireByName map[string]*Wire
}

// Wire returns the named wire in the tile, or nil.
func (t *Tile) Wire(name string) *Wire { return t.wireByName[name] }

// Wire is a named routing node local to one tile.
type Wire struct {
	Tile   *Tile
	Name   string
	Site   string // owning site for intra-site wires, empty otherwise
	Intent WireIntent

	uphill []*Pip
}

// UphillPips returns the pips whose destination is this wire.
func (w *Wire) UphillPips() []*Pip { return w.uphill }

// Pip is a directed, tile-local edge between two wires.
type Pip struct {
	Tile *Tile
	Src  *Wire
	Dst  *Wire
	Kind PipKind

	// RouteThru marks a pip that passes through a primitive site
	// without dedicated routing features of its own.
	RouteThru bool

	// Bel and BelPin identify the owning routing bel and selected pin
	// for site-internal pips.
	Bel    string
	BelPin string
}

// Bel is a placeable primitive site within a tile.
type Bel struct {
	Tile *Tile
	Name string // leaf bel name, e.g. A6LUT, AFF, CARRY4
	Site string // full site name, e.g. SLICE_X10Y20
	// SiteX and SiteY locate the site within its tile. For logic tiles
	// SiteX selects the half; for IO tiles SiteY selects the pad slot.
	SiteX, SiteY int
}
