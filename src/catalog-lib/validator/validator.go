// Package validator checks catalog configuration and reports editor diagnostics.
package validator

import (
	"context"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/locator"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"go.lsp.dev/protocol"
)

// Source is attached to every diagnostic produced by this package.
const Source = "Kedro LSP"

// Validator inspects a provenance-free catalog tree and the text it was parsed from.
// Validators do not mutate the tree and may run concurrently.
type Validator interface {
	Name() string
	Validate(ctx context.Context, tree *model.Mapping, text string) ([]*protocol.Diagnostic, error)
}

// NewDiagnostic creates a diagnostic with this package's source.
func NewDiagnostic(rng protocol.Range, message string, severity protocol.DiagnosticSeverity) *protocol.Diagnostic {
	return &protocol.Diagnostic{
		Range:    rng,
		Message:  message,
		Severity: severity,
		Source:   Source,
	}
}

// entryDiagnostic anchors a diagnostic at the entry name, or returns nil when the name cannot be found in text.
func entryDiagnostic(text string, name string, message string, severity protocol.DiagnosticSeverity) *protocol.Diagnostic {
	rng, ok := locator.LocateKeyRange(text, name)
	if !ok {
		return nil
	}
	return NewDiagnostic(rng, message, severity)
}
