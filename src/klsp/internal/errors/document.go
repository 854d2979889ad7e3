package errors

import (
	"fmt"

	"go.lsp.dev/protocol"
)

// DocumentNotFoundError reports a document that is neither open nor readable from disk.
type DocumentNotFoundError struct {
	Document protocol.TextDocumentIdentifier
}

func (n *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", n.Document.URI)
}

// DocumentSizeLimitError reports a file above the configured maxFileSizeBytes.
type DocumentSizeLimitError struct {
	Size int64
}

func (n *DocumentSizeLimitError) Error() string {
	return fmt.Sprintf("size of %d bytes exceeds permitted limit", n.Size)
}
