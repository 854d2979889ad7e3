package validator

import (
	"context"
	"errors"
	"fmt"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/dataset"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"go.lsp.dev/protocol"
)

// DatasetConfig constructs each entry on its own and reports entries the provider rejects.
type DatasetConfig struct {
	Provider dataset.Provider
}

// Name implements Validator.
func (v *DatasetConfig) Name() string {
	return "dataset_config"
}

// Validate implements Validator.
// Any provider failure is reported on the entry it occurred for; only cancellation aborts validation.
func (v *DatasetConfig) Validate(ctx context.Context, tree *model.Mapping, text string) ([]*protocol.Diagnostic, error) {
	var diagnostics []*protocol.Diagnostic

	for _, entry := range tree.Entries() {
		if entry.IsPrivate() {
			continue
		}
		if entry.IsFactoryPattern() && entry.HasInterpolation() {
			continue
		}

		err := v.construct(ctx, entry)
		if err == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return diagnostics, ctxErr
		}
		var constructionErr *dataset.ConstructionError
		if !errors.As(err, &constructionErr) {
			err = fmt.Errorf("constructing %q: %w", entry.Name, err)
		}
		if d := entryDiagnostic(text, entry.Name, err.Error(), protocol.DiagnosticSeverityError); d != nil {
			diagnostics = append(diagnostics, d)
		}
	}
	return diagnostics, nil
}

func (v *DatasetConfig) construct(ctx context.Context, entry model.ConfigEntry) error {
	single := model.NewMapping()
	single.Set(entry.Name, entry.Body)

	catalog, err := v.Provider.Construct(ctx, single)
	if err != nil {
		return err
	}
	return catalog.Dataset(ctx, entry.Name)
}
