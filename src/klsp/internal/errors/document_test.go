package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"
)

func TestDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "document not found",
			err:  &DocumentNotFoundError{Document: protocol.TextDocumentIdentifier{URI: "file:///p/conf/base/catalog.yml"}},
			want: `document "file:///p/conf/base/catalog.yml" not found`,
		},
		{
			name: "document size limit",
			err:  &DocumentSizeLimitError{Size: 2048},
			want: "size of 2048 bytes exceeds permitted limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}
