package mapper

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"go.lsp.dev/protocol"
)

// PositionOffset converts a UTF-16 LSP position into a byte offset within content.
// A character past the end of its line is clamped to the line end.
func PositionOffset(content []byte, pos protocol.Position) (int, error) {
	start := 0
	for line := uint32(0); line < pos.Line; line++ {
		i := bytes.IndexByte(content[start:], '\n')
		if i < 0 {
			return 0, fmt.Errorf("line %d is beyond end of document (%d lines)", pos.Line, line+1)
		}
		start += i + 1
	}

	end := len(content)
	if i := bytes.IndexByte(content[start:], '\n'); i >= 0 {
		end = start + i
	}

	offset := start
	for units := uint32(0); units < pos.Character && offset < end; {
		r, size := utf8.DecodeRune(content[offset:end])
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		offset += size
	}
	return offset, nil
}
