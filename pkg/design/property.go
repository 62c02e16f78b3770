package design

import (
	"fmt"
	"strconv"
)

// PropertyKind discriminates the typed value held by a Property.
type PropertyKind int

const (
	PropString PropertyKind = iota
	PropInt
	PropBits
)

// Property is a typed parameter value on a placed cell: a string, an
// integer, or a bit vector with index 0 as the least significant bit.
type Property struct {
	Kind PropertyKind
	Str  string
	Int  int64
	Bits []bool
}

// StringProp returns a string-valued property.
func StringProp(s string) Property { return Property{Kind: PropString, Str: s} }

// IntProp returns an integer-valued property.
func IntProp(v int64) Property { return Property{Kind: PropInt, Int: v} }

// BitsProp returns a bit-vector property. bits[0] is the LSB.
func BitsProp(bits []bool) Property { return Property{Kind: PropBits, Bits: bits} }

// BitsFromString parses an MSB-first binary digit string into a
// bit-vector property.
func BitsFromString(s string) (Property, error) {
	bits := make([]bool, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			bits[len(s)-1-i] = false
		case '1':
			bits[len(s)-1-i] = true
		default:
			return Property{}, fmt.Errorf("invalid binary digit %q in %q", s[i], s)
		}
	}
	return BitsProp(bits), nil
}

// AsString renders the property the way a parameter map consumer reads
// it: strings verbatim, integers in decimal, bit vectors MSB first.
func (p Property) AsString() string {
	switch p.Kind {
	case PropInt:
		return strconv.FormatInt(p.Int, 10)
	case PropBits:
		buf := make([]byte, len(p.Bits))
		for i, b := range p.Bits {
			if b {
				buf[len(p.Bits)-1-i] = '1'
			} else {
				buf[len(p.Bits)-1-i] = '0'
			}
		}
		return string(buf)
	default:
		return p.Str
	}
}

// AsInt interprets the property as an integer. String properties are
// parsed in decimal; bit vectors are read LSB first.
func (p Property) AsInt() (int64, bool) {
	switch p.Kind {
	case PropInt:
		return p.Int, true
	case PropBits:
		var v int64
		for i, b := range p.Bits {
			if i >= 64 {
				break
			}
			if b {
				v |= 1 << uint(i)
			}
		}
		return v, true
	default:
		v, err := strconv.ParseInt(p.Str, 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
}

// AsFloat interprets the property as a floating point number.
func (p Property) AsFloat() (float64, bool) {
	switch p.Kind {
	case PropString:
		v, err := strconv.ParseFloat(p.Str, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		v, ok := p.AsInt()
		return float64(v), ok
	}
}

// Extract returns width bits starting at bit lo, LSB first, padding
// with zeros past the end of the stored value. String properties made
// of binary digits are interpreted MSB first, as upstream tools emit
// initialisation strings that way.
func (p Property) Extract(lo, width int) []bool {
	out := make([]bool, width)
	switch p.Kind {
	case PropInt:
		for i := 0; i < width; i++ {
			n := lo + i
			if n < 64 && p.Int&(1<<uint(n)) != 0 {
				out[i] = true
			}
		}
	case PropBits:
		for i := 0; i < width; i++ {
			n := lo + i
			if n < len(p.Bits) {
				out[i] = p.Bits[n]
			}
		}
	case PropString:
		if bp, err := BitsFromString(p.Str); err == nil {
			return bp.Extract(lo, width)
		}
	}
	return out
}
