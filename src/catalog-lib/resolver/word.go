package resolver

import (
	"path"
	"strings"
)

// ParamsPrefix marks a reference to the parameter tree.
const ParamsPrefix = "params:"

func isWordByte(b byte) bool {
	return b == '_' || b == ':' || b == '.' ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

// WordAt returns the run of [A-Za-z0-9_:.] surrounding the byte offset in text.
func WordAt(text string, offset int) string {
	if offset < 0 || offset > len(text) {
		return ""
	}
	start := offset
	for start > 0 && isWordByte(text[start-1]) {
		start--
	}
	end := offset
	for end < len(text) && isWordByte(text[end]) {
		end++
	}
	return text[start:end]
}

// IsPipelineFile reports whether the base name of a path or URI mentions "pipeline".
func IsPipelineFile(p string) bool {
	return strings.Contains(path.Base(p), "pipeline")
}
