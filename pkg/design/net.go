package design

// Names of the constant networks introduced by the packer. Routing
// bound to these nets carries no explicit configuration.
const (
	GndNetName = "$PACKER_GND_NET"
	VccNetName = "$PACKER_VCC_NET"
)

// PortRef names one cell port attached to a net.
type PortRef struct {
	Cell *Cell
	Port string
}

// Net is a signal: one driver, a set of users, and the wire/pip
// bindings realising its routing. The encoder reads nets during
// traversal and never mutates them.
type Net struct {
	Name   string
	Driver *PortRef
	Users  []PortRef

	// Wires maps each wire bound to this net to the pip that drives
	// it. Routing roots (source wires) map to nil.
	Wires map[*Wire]*Pip
}

// IsConstant reports whether the net is one of the packer's constant
// networks, and if so whether it is the power net.
func (n *Net) IsConstant() (value, ok bool) {
	if n == nil {
		return false, false
	}
	switch n.Name {
	case GndNetName:
		return false, true
	case VccNetName:
		return true, true
	}
	return false, false
}
