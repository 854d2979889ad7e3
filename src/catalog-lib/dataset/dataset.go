// Package dataset defines how catalog trees are handed to a dataset-construction provider.
package dataset

import (
	"context"
	"fmt"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
)

// Provider constructs catalogs from provenance-free configuration trees.
// Rejections are reported as *ConstructionError; any other error means the provider itself failed.
type Provider interface {
	Construct(ctx context.Context, tree *model.Mapping) (Catalog, error)
}

// Catalog is a constructed catalog.
type Catalog interface {
	// Dataset materializes the named dataset.
	Dataset(ctx context.Context, name string) error
}

// ConstructionError reports that a dataset or catalog configuration was rejected.
type ConstructionError struct {
	// Dataset is empty for catalog-level failures.
	Dataset string
	Msg     string
}

func (e *ConstructionError) Error() string {
	if e.Dataset == "" {
		return e.Msg
	}
	return fmt.Sprintf("An exception occurred when parsing config for dataset '%s':\n%s", e.Dataset, e.Msg)
}

// NewConstructionError builds a ConstructionError with a formatted message.
func NewConstructionError(dataset string, format string, args ...interface{}) *ConstructionError {
	return &ConstructionError{Dataset: dataset, Msg: fmt.Sprintf(format, args...)}
}
