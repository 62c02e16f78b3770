// Package fasm provides a line-oriented writer and a parser for the FASM
// (FPGA Assembly) text format: dot-separated feature paths, optionally
// assigned a sized binary vector value.
package fasm

import (
	"bufio"
	"io"
	"strconv"
)

// Writer emits FASM feature lines under a hierarchical path prefix.
// The prefix is managed as a stack of segments; callers are expected to
// scope pushed segments with Enter so the stack is balanced on every
// exit path. A Writer buffers its output; call Flush before the
// underlying stream is used.
type Writer struct {
	out       *bufio.Writer
	ctx       []string
	lastBlank bool
}

// NewWriter returns a Writer emitting to w. No leading blank line is
// ever produced.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		out:       bufio.NewWriter(w),
		lastBlank: true,
	}
}

// Push appends a path segment to the prefix stack.
func (w *Writer) Push(segment string) { w.ctx = append(w.ctx, segment) }

// Pop removes the most recently pushed segment.
func (w *Writer) Pop() { w.ctx = w.ctx[:len(w.ctx)-1] }

// PopN removes the n most recently pushed segments.
func (w *Writer) PopN(n int) { w.ctx = w.ctx[:len(w.ctx)-n] }

// Enter pushes the given segments and returns a release function that
// pops exactly what was pushed. Use with defer so the prefix stack
// cannot leak across early returns.
func (w *Writer) Enter(segments ...string) func() {
	n := len(segments)
	w.ctx = append(w.ctx, segments...)
	return func() { w.ctx = w.ctx[:len(w.ctx)-n] }
}

// Depth returns the current prefix stack depth.
func (w *Writer) Depth() int { return len(w.ctx) }

func (w *Writer) writePrefix() {
	for _, seg := range w.ctx {
		w.out.WriteString(seg)
		w.out.WriteByte('.')
	}
	w.lastBlank = false
}

// WriteBit emits the current prefix followed by name if value is true.
// A false value emits nothing and changes no state.
func (w *Writer) WriteBit(name string, value bool) {
	if !value {
		return
	}
	w.writePrefix()
	w.out.WriteString(name)
	w.out.WriteByte('\n')
}

// WriteVector emits `prefix.name = N'b<bits>` with bits[N-1] rendered
// first (most significant bit leftmost). Each bit is XORed with invert.
func (w *Writer) WriteVector(name string, bits []bool, invert bool) {
	w.writePrefix()
	w.out.WriteString(name)
	w.out.WriteString(" = ")
	w.out.WriteString(strconv.Itoa(len(bits)))
	w.out.WriteString("'b")
	for i := len(bits) - 1; i >= 0; i-- {
		if bits[i] != invert {
			w.out.WriteByte('1')
		} else {
			w.out.WriteByte('0')
		}
	}
	w.out.WriteByte('\n')
}

// WriteIntVector emits the low width bits of value as a vector.
func (w *Writer) WriteIntVector(name string, value uint64, width int, invert bool) {
	bits := make([]bool, width)
	for i := 0; i < width; i++ {
		bits[i] = value&(1<<uint(i)) != 0
	}
	w.WriteVector(name, bits, invert)
}

// RawLine emits a complete line without the prefix stack. The routing
// resolver uses this for tile-prefixed pip features.
func (w *Writer) RawLine(line string) {
	w.out.WriteString(line)
	w.out.WriteByte('\n')
	w.lastBlank = false
}

// Blank emits one blank separator line unless the previous emission
// already was one. Consecutive calls collapse to a single blank.
func (w *Writer) Blank() {
	if w.lastBlank {
		return
	}
	w.out.WriteByte('\n')
	w.lastBlank = true
}

// Flush writes buffered output to the underlying stream and reports
// the first I/O error encountered, if any.
func (w *Writer) Flush() error { return w.out.Flush() }
