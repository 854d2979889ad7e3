package mapper

import (
	"fmt"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/resolver"
	"go.lsp.dev/protocol"
)

// WordAtPosition returns the dataset or parameter word under a UTF-16 position.
func WordAtPosition(text string, pos protocol.Position) (string, error) {
	offset, err := PositionOffset([]byte(text), pos)
	if err != nil {
		return "", fmt.Errorf("locating word: %w", err)
	}
	return resolver.WordAt(text, offset), nil
}

// LineRange covers a whole line, ending at the start of the next one.
func LineRange(line uint32) protocol.Range {
	return PositionsToRange(
		protocol.Position{Line: line},
		protocol.Position{Line: line + 1},
	)
}
