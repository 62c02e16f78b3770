package fasm

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer defines the token structure for FASM text. The format is
// line-oriented but whitespace-insensitive within a line, so blank
// lines and comments are simply elided.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments run to end of line.
	{Name: "Comment", Pattern: `#[^\n]*`},

	// Whitespace, including the newlines separating feature lines.
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},

	// Sized binary vector literal, e.g. 64'b1010. Must precede Ident.
	{Name: "Vector", Pattern: `[0-9]+'b[01]+`},

	// Bit range suffix on a path segment, e.g. [63:0] or [5].
	{Name: "Range", Pattern: `\[[0-9]+(:[0-9]+)?\]`},

	// Path segment names: tile, bel and feature identifiers.
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},

	{Name: "Dot", Pattern: `\.`},
	{Name: "Eq", Pattern: `=`},
})
