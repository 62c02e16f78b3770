package design

import "testing"

func TestIntPropExtract(t *testing.T) {
	p := IntProp(0b1101)
	bits := p.Extract(0, 6)
	want := []bool{true, false, true, true, false, false}
	for i := range want {
		if bits[i] != want[i] {
			t.Fatalf("bit %d = %v, want %v", i, bits[i], want[i])
		}
	}
}

func TestBitsFromStringIsMSBFirst(t *testing.T) {
	p, err := BitsFromString("1100")
	if err != nil {
		t.Fatalf("BitsFromString returned error: %v", err)
	}
	// "1100" MSB first means bit 0 and bit 1 clear, bits 2 and 3 set.
	want := []bool{false, false, true, true}
	for i := range want {
		if p.Bits[i] != want[i] {
			t.Fatalf("bit %d = %v, want %v", i, p.Bits[i], want[i])
		}
	}
	if got := p.AsString(); got != "1100" {
		t.Fatalf("AsString = %q, want %q", got, "1100")
	}
}

func TestBitsFromStringRejectsNonBinary(t *testing.T) {
	if _, err := BitsFromString("10x1"); err == nil {
		t.Fatal("expected error for non-binary digit, got nil")
	}
}

func TestExtractPadsPastEnd(t *testing.T) {
	p := BitsProp([]bool{true, true})
	bits := p.Extract(0, 4)
	want := []bool{true, true, false, false}
	for i := range want {
		if bits[i] != want[i] {
			t.Fatalf("bit %d = %v, want %v", i, bits[i], want[i])
		}
	}
}

func TestExtractWithOffset(t *testing.T) {
	p := IntProp(0b110100)
	bits := p.Extract(2, 3)
	want := []bool{true, false, true}
	for i := range want {
		if bits[i] != want[i] {
			t.Fatalf("bit %d = %v, want %v", i, bits[i], want[i])
		}
	}
}

func TestStringPropBinaryExtract(t *testing.T) {
	// Upstream tools hand initialisation content as MSB-first digit
	// strings.
	p := StringProp("0110")
	bits := p.Extract(0, 4)
	want := []bool{false, true, true, false}
	for i := range want {
		if bits[i] != want[i] {
			t.Fatalf("bit %d = %v, want %v", i, bits[i], want[i])
		}
	}
}

func TestPropertyConversions(t *testing.T) {
	if v, ok := StringProp("3.125").AsFloat(); !ok || v != 3.125 {
		t.Fatalf("AsFloat = %v %v, want 3.125 true", v, ok)
	}
	if v, ok := IntProp(7).AsFloat(); !ok || v != 7 {
		t.Fatalf("AsFloat = %v %v, want 7 true", v, ok)
	}
	if v, ok := BitsProp([]bool{true, false, true}).AsInt(); !ok || v != 5 {
		t.Fatalf("AsInt = %v %v, want 5 true", v, ok)
	}
	if got := IntProp(42).AsString(); got != "42" {
		t.Fatalf("AsString = %q, want %q", got, "42")
	}
}
