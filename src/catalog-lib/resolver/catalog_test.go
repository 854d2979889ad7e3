package resolver

import (
	"testing"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) *model.Mapping {
	t.Helper()
	m, err := parser.Parse(text)
	require.NoError(t, err)
	return m
}

func TestCatalog(t *testing.T) {
	c := NewCatalog(
		mustParse(t, "companies:\n  type: pandas.CSVDataset\n_base:\n  type: x\n\"{name}_csv\":\n  type: y\nshuttles:\n  type: z\n"),
		mustParse(t, "model_options:\n  test_size: 0.2\n  features:\n    - a\nseed: 3\n"),
	)

	assert.Equal(t, []string{"companies", "shuttles"}, c.List())

	body, ok := c.Load("companies")
	require.True(t, ok)
	assert.Equal(t, "pandas.CSVDataset", body.(*model.Mapping).Values["type"])

	_, ok = c.Load("_base")
	assert.False(t, ok)
	_, ok = c.Load("{name}_csv")
	assert.False(t, ok)

	v, ok := c.Load("params:model_options.test_size")
	require.True(t, ok)
	assert.Equal(t, 0.2, v)

	v, ok = c.Load("parameters")
	require.True(t, ok)
	assert.Same(t, c.Params(), v)

	_, ok = c.Load("params:missing")
	assert.False(t, ok)

	assert.Equal(t, []string{
		"parameters",
		"params:model_options",
		"params:model_options.features",
		"params:model_options.test_size",
		"params:seed",
	}, c.FeedKeys())
	assert.Equal(t, 3, c.FeedDict()["params:seed"])
}

func TestCatalogEmpty(t *testing.T) {
	c := NewCatalog(nil, nil)
	assert.Empty(t, c.List())
	assert.Equal(t, []string{"parameters"}, c.FeedKeys())
}
