package validator

import (
	"context"
	"errors"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/dataset"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"go.lsp.dev/protocol"
)

// FullCatalog constructs the whole catalog at once and reports a single file-level failure.
type FullCatalog struct {
	Provider dataset.Provider
}

// Name implements Validator.
func (v *FullCatalog) Name() string {
	return "full_catalog"
}

// Validate implements Validator.
func (v *FullCatalog) Validate(ctx context.Context, tree *model.Mapping, text string) ([]*protocol.Diagnostic, error) {
	filtered := model.NewMapping()
	for _, entry := range tree.Entries() {
		if entry.IsPrivate() {
			continue
		}
		if entry.IsFactoryPattern() && entry.HasInterpolation() {
			continue
		}
		filtered.Set(entry.Name, entry.Body)
	}

	_, err := v.Provider.Construct(ctx, filtered)
	if err == nil {
		return nil, nil
	}
	var constructionErr *dataset.ConstructionError
	if !errors.As(err, &constructionErr) {
		return nil, err
	}
	return []*protocol.Diagnostic{
		NewDiagnostic(protocol.Range{}, "Catalog validation error: "+err.Error(), protocol.DiagnosticSeverityError),
	}, nil
}
