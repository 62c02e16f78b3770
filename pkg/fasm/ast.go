package fasm

import (
	"fmt"
	"strconv"
	"strings"
)

// File is a parsed FASM document.
type File struct {
	Lines []*Line `parser:"@@*"`
}

// Line is a single feature assertion, either scalar or vector valued.
type Line struct {
	Segments []*Segment `parser:"@@ ( Dot @@ )*"`
	Value    *Vector    `parser:"( Eq @Vector )?"`
}

// Segment is one dot-separated path element, optionally carrying a bit
// range such as INIT[63:0].
type Segment struct {
	Name  string `parser:"@Ident"`
	Range string `parser:"@Range?"`
}

// Vector is a sized binary literal of the form <width>'b<bits>.
type Vector struct {
	Width int
	Bits  []bool // index 0 is the least significant bit
}

// Capture implements participle's Capture for vector literals.
func (v *Vector) Capture(values []string) error {
	raw := values[0]
	sep := strings.Index(raw, "'b")
	if sep < 0 {
		return fmt.Errorf("malformed vector literal %q", raw)
	}
	width, err := strconv.Atoi(raw[:sep])
	if err != nil {
		return fmt.Errorf("malformed vector width in %q: %w", raw, err)
	}
	digits := raw[sep+2:]
	if len(digits) != width {
		return fmt.Errorf("vector %q declares %d bits but has %d digits", raw, width, len(digits))
	}
	v.Width = width
	v.Bits = make([]bool, width)
	for i := 0; i < width; i++ {
		// Leftmost digit is the most significant bit.
		v.Bits[width-1-i] = digits[i] == '1'
	}
	return nil
}

// Path returns the dotted feature path of the line.
func (l *Line) Path() string {
	parts := make([]string, len(l.Segments))
	for i, seg := range l.Segments {
		parts[i] = seg.Name + seg.Range
	}
	return strings.Join(parts, ".")
}
