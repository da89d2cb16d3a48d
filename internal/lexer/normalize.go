package lexer

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Normalize applies the source-file boundary transform requires:
// strip a leading UTF-8 BOM, then apply Unicode NFC normalization so that
// lexically equivalent source (e.g. identifiers written in NFC vs NFD)
// produces identical token streams regardless of how the editor encoded it.
//
// Call this once per file before constructing a Lexer.
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}
	return src
}
