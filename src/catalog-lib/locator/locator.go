// Package locator finds the textual position of catalog entries and their fields.
package locator

import (
	"strings"
	"unicode"
	"unicode/utf16"

	"go.lsp.dev/protocol"
)

// Locate returns the position of entryName in text, or of fieldName within that entry when given.
// Matching is purely textual: a line matches when, after leading whitespace, it starts with "<name>:".
// An entry ends at the next non-blank line that does not start with a space.
func Locate(text string, entryName string, fieldName ...string) (protocol.Position, bool) {
	field := ""
	if len(fieldName) > 0 {
		field = fieldName[0]
	}

	entryPrefix := entryName + ":"
	fieldPrefix := field + ":"
	inEntry := false

	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)

		if strings.HasPrefix(trimmed, entryPrefix) {
			inEntry = true
			if field == "" {
				return position(i, line, trimmed), true
			}
		} else if inEntry {
			if field != "" && strings.HasPrefix(trimmed, fieldPrefix) {
				return position(i, line, trimmed), true
			} else if trimmed != "" && !strings.HasPrefix(line, " ") {
				inEntry = false
			}
		}
	}
	return protocol.Position{}, false
}

// LocateKey tries entryName as written and then in its quoted forms.
func LocateKey(text string, entryName string) (protocol.Position, bool) {
	rng, ok := LocateKeyRange(text, entryName)
	return rng.Start, ok
}

// LocateKeyRange is LocateKey returning the range of the key token as written, quotes included.
func LocateKeyRange(text string, entryName string) (protocol.Range, bool) {
	for _, candidate := range []string{entryName, `"` + entryName + `"`, `'` + entryName + `'`} {
		if pos, ok := Locate(text, candidate); ok {
			return NameRange(pos, candidate), true
		}
	}
	return protocol.Range{}, false
}

// NameRange is the range covering name when it starts at pos.
func NameRange(pos protocol.Position, name string) protocol.Range {
	end := pos
	end.Character += uint32(len(utf16.Encode([]rune(name))))
	return protocol.Range{Start: pos, End: end}
}

func position(line int, raw, trimmed string) protocol.Position {
	return protocol.Position{
		Line:      uint32(line),
		Character: uint32(len(utf16.Encode([]rune(raw[:len(raw)-len(trimmed)])))),
	}
}
