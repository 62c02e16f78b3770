package design

// Cell is a primitive placed on exactly one bel. Params carry the
// typed configuration values; Attrs preserve pre-technology-mapping
// metadata such as the original primitive type (X_ORIG_TYPE) and the
// logical-to-physical port correspondence (X_ORIG_PORT_*).
type Cell struct {
	Name   string
	Type   string
	Bel    *Bel
	Params map[string]Property
	Attrs  map[string]string
	Ports  map[string]*Net
}

// Net returns the net attached to the named port, or nil when the
// port is unconnected.
func (c *Cell) Net(port string) *Net { return c.Ports[port] }

// ParamStr returns the named parameter as a string, or def when absent.
func (c *Cell) ParamStr(name, def string) string {
	p, ok := c.Params[name]
	if !ok {
		return def
	}
	return p.AsString()
}

// ParamInt returns the named parameter as an integer, or def when
// absent or not numeric.
func (c *Cell) ParamInt(name string, def int64) int64 {
	p, ok := c.Params[name]
	if !ok {
		return def
	}
	v, ok := p.AsInt()
	if !ok {
		return def
	}
	return v
}

// ParamBool returns the named parameter as a boolean, or def when
// absent.
func (c *Cell) ParamBool(name string, def bool) bool {
	p, ok := c.Params[name]
	if !ok {
		return def
	}
	v, ok := p.AsInt()
	if !ok {
		return def
	}
	return v != 0
}

// ParamFloat returns the named parameter as a float, or def when
// absent. String parameters are parsed; integer parameters convert.
func (c *Cell) ParamFloat(name string, def float64) float64 {
	p, ok := c.Params[name]
	if !ok {
		return def
	}
	v, ok := p.AsFloat()
	if !ok {
		return def
	}
	return v
}

// HasParam reports whether the named parameter is present.
func (c *Cell) HasParam(name string) bool {
	_, ok := c.Params[name]
	return ok
}

// Attr returns the named attribute, or def when absent.
func (c *Cell) Attr(name, def string) string {
	if v, ok := c.Attrs[name]; ok {
		return v
	}
	return def
}

// HasAttr reports whether the named attribute is present.
func (c *Cell) HasAttr(name string) bool {
	_, ok := c.Attrs[name]
	return ok
}

// OrigType returns the pre-technology-mapping primitive type.
func (c *Cell) OrigType() string { return c.Attr("X_ORIG_TYPE", "") }
