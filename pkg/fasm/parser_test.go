package fasm

import (
	"strings"
	"testing"
)

func TestParseScalarLine(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser returned error: %v", err)
	}
	file, err := p.ParseString("CLBLL_L_X2Y3.SLICEL_X0.ALUT.SMALL\n")
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	if len(file.Lines) != 1 {
		t.Fatalf("parsed %d lines, want 1", len(file.Lines))
	}
	line := file.Lines[0]
	if got, want := line.Path(), "CLBLL_L_X2Y3.SLICEL_X0.ALUT.SMALL"; got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
	if line.Value != nil {
		t.Fatalf("scalar line has vector value %v", line.Value)
	}
}

func TestParseVectorLine(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser returned error: %v", err)
	}
	file, err := p.ParseString("T.ALUT.INIT[7:0] = 8'b10010110\n")
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	line := file.Lines[0]
	if line.Value == nil {
		t.Fatal("vector line parsed without value")
	}
	if line.Value.Width != 8 {
		t.Fatalf("width = %d, want 8", line.Value.Width)
	}
	// 8'b10010110: bit 0 is the rightmost digit.
	want := []bool{false, true, true, false, true, false, false, true}
	for i, b := range want {
		if line.Value.Bits[i] != b {
			t.Fatalf("bit %d = %v, want %v", i, line.Value.Bits[i], b)
		}
	}
	if got := line.Segments[2].Range; got != "[7:0]" {
		t.Fatalf("range = %q, want %q", got, "[7:0]")
	}
}

func TestParseSkipsBlanksAndComments(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser returned error: %v", err)
	}
	input := "# header comment\nA.B\n\n\nC.D = 2'b01\n"
	file, err := p.ParseString(input)
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	if len(file.Lines) != 2 {
		t.Fatalf("parsed %d lines, want 2", len(file.Lines))
	}
}

func TestParseRejectsWidthMismatch(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser returned error: %v", err)
	}
	if _, err := p.ParseString("A.B = 4'b101\n"); err == nil {
		t.Fatal("expected error for width mismatch, got nil")
	}
}

func TestVectorRoundTripThroughWriter(t *testing.T) {
	value := []bool{
		true, false, true, true, false, false, true, false,
		true, true, true, false, false, true, false, true,
	}
	var sb strings.Builder
	w := NewWriter(&sb)
	w.Push("RAMB18_Y0")
	w.WriteVector("INIT_00[15:0]", value, false)
	w.Pop()
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser returned error: %v", err)
	}
	file, err := p.ParseString(sb.String())
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	got := file.Lines[0].Value
	if got == nil || got.Width != len(value) {
		t.Fatalf("round-trip width = %v, want %d", got, len(value))
	}
	for i := range value {
		if got.Bits[i] != value[i] {
			t.Fatalf("round-trip bit %d = %v, want %v", i, got.Bits[i], value[i])
		}
	}
}
