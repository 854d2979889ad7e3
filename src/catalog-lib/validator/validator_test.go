package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/dataset"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/dataset/datasetmock"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.uber.org/mock/gomock"
)

func parse(t *testing.T, text string) *model.Mapping {
	t.Helper()
	tree, err := parser.Parse(text)
	require.NoError(t, err)
	return model.Strip(tree)
}

func TestDatasetConfigValidate(t *testing.T) {
	ctx := context.Background()
	v := &DatasetConfig{Provider: dataset.NewBuiltinProvider(nil)}
	assert.Equal(t, "dataset_config", v.Name())

	t.Run("valid entries", func(t *testing.T) {
		text := "companies:\n  type: pandas.CSVDataset\n  filepath: data.csv\n"
		diags, err := v.Validate(ctx, parse(t, text), text)
		require.NoError(t, err)
		assert.Empty(t, diags)
	})

	t.Run("invalid entry anchored at name", func(t *testing.T) {
		text := "companies:\n  type: pandas.CSVDataset\n  filepath: data.csv\nshuttles:\n  type: pandas.Nope\n"
		diags, err := v.Validate(ctx, parse(t, text), text)
		require.NoError(t, err)
		require.Len(t, diags, 1)

		d := diags[0]
		assert.Equal(t, protocol.DiagnosticSeverityError, d.Severity)
		assert.Equal(t, Source, d.Source)
		assert.Equal(t, protocol.Range{
			Start: protocol.Position{Line: 3, Character: 0},
			End:   protocol.Position{Line: 3, Character: 8},
		}, d.Range)
		assert.Contains(t, d.Message, "Class 'pandas.Nope' not found")
	})

	t.Run("private and interpolated patterns skipped", func(t *testing.T) {
		text := "_base:\n  type: pandas.Nope\n\"{name}_data\":\n  type: pandas.Nope\n  filepath: ${globals:root}/{name}.csv\n"
		diags, err := v.Validate(ctx, parse(t, text), text)
		require.NoError(t, err)
		assert.Empty(t, diags)
	})

	t.Run("interpolated concrete entry still validated", func(t *testing.T) {
		text := "cars:\n  type: pandas.Nope\n  filepath: ${globals:root}/cars.csv\n"
		diags, err := v.Validate(ctx, parse(t, text), text)
		require.NoError(t, err)
		assert.Len(t, diags, 1)
	})

	t.Run("unlocatable entry produces no diagnostic", func(t *testing.T) {
		tree := model.NewMapping()
		body := model.NewMapping()
		body.Set("type", "pandas.Nope")
		tree.Set("ghost", body)

		diags, err := v.Validate(ctx, tree, "other:\n  type: x\n")
		require.NoError(t, err)
		assert.Empty(t, diags)
	})
}

func TestDatasetConfigProviderFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	provider := datasetmock.NewMockProvider(ctrl)
	catalog := datasetmock.NewMockCatalog(ctrl)
	v := &DatasetConfig{Provider: provider}

	text := "a:\n  type: x\nb:\n  type: y\n"

	t.Run("materialization failure", func(t *testing.T) {
		provider.EXPECT().Construct(gomock.Any(), gomock.Any()).Return(catalog, nil).Times(2)
		catalog.EXPECT().Dataset(gomock.Any(), "a").Return(dataset.NewConstructionError("a", "cannot load"))
		catalog.EXPECT().Dataset(gomock.Any(), "b").Return(nil)

		diags, err := v.Validate(ctx, parse(t, text), text)
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, uint32(0), diags[0].Range.Start.Line)
	})

	t.Run("unexpected provider error reported per entry", func(t *testing.T) {
		provider.EXPECT().Construct(gomock.Any(), gomock.Any()).Return(nil, errors.New("interpreter not found"))
		provider.EXPECT().Construct(gomock.Any(), gomock.Any()).Return(catalog, nil)
		catalog.EXPECT().Dataset(gomock.Any(), "b").Return(nil)

		diags, err := v.Validate(ctx, parse(t, text), text)
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, uint32(0), diags[0].Range.Start.Line)
		assert.Equal(t, `constructing "a": interpreter not found`, diags[0].Message)
	})

	t.Run("cancellation aborts", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		provider.EXPECT().Construct(gomock.Any(), gomock.Any()).Return(nil, context.Canceled)

		diags, err := v.Validate(cancelled, parse(t, text), text)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, diags)
	})
}

func TestFactoryPatternValidate(t *testing.T) {
	ctx := context.Background()
	v := &FactoryPattern{}
	assert.Equal(t, "factory_pattern", v.Name())

	tests := []struct {
		name     string
		text     string
		severity protocol.DiagnosticSeverity
		message  string
		line     uint32
	}{
		{
			name: "consistent pattern",
			text: "\"{layer}.{name}\":\n  type: pandas.CSVDataset\n  filepath: data/{layer}/{name}.csv\n",
		},
		{
			name:     "extra placeholder",
			text:     "\"{layer}\":\n  type: pandas.CSVDataset\n  filepath: data/{layer}/{extra}.csv\n",
			severity: protocol.DiagnosticSeverityWarning,
			message:  "Keys used in the configuration [extra] should be present in the dataset factory pattern name",
		},
		{
			name:     "extra placeholders sorted once each",
			text:     "\"{a}\":\n  type: x\n  filepath: \"{z}/{b}/{z}/{a}\"\n  load_args:\n    sep: \"{b}\"\n",
			severity: protocol.DiagnosticSeverityWarning,
			message:  "Keys used in the configuration [b, z] should be present in the dataset factory pattern name",
		},
		{
			name:     "open bracket only",
			text:     "plain:\n  type: x\nraw_{name:\n  type: pandas.CSVDataset\n",
			severity: protocol.DiagnosticSeverityError,
			message:  `Mismatched brackets in dataset factory pattern "raw_{name"`,
			line:     2,
		},
		{
			name:     "close bracket only with factory fields",
			text:     "raw_name}:\n  type: pandas.CSVDataset\n  layer: raw\n  tags: [a]\n",
			severity: protocol.DiagnosticSeverityError,
			message:  `Mismatched brackets in dataset factory pattern "raw_name}"; fields [layer, tags] are only valid in dataset factory patterns`,
		},
		{
			name:     "unbalanced counts",
			text:     "\"{a}}_{b}\":\n  type: x\n  filepath: \"{zzz}\"\n",
			severity: protocol.DiagnosticSeverityError,
			message:  `Unbalanced brackets in dataset factory pattern "{a}}_{b}": 2 '{' but 3 '}'`,
		},
		{
			name:     "closing bracket first",
			text:     "\"}x{\":\n  type: x\n",
			severity: protocol.DiagnosticSeverityError,
			message:  `Unbalanced brackets in dataset factory pattern "}x{": 1 '{' but 1 '}'`,
		},
		{
			name:     "mis-paired brackets",
			text:     "ok:\n  type: x\n\"a}_{b\":\n  type: x\n",
			severity: protocol.DiagnosticSeverityError,
			message:  `Unbalanced brackets in dataset factory pattern "a}_{b": 1 '{' but 1 '}'`,
			line:     2,
		},
		{
			name:     "nested brackets",
			text:     "\"{{x}}\":\n  type: x\n",
			severity: protocol.DiagnosticSeverityError,
			message:  `Unbalanced brackets in dataset factory pattern "{{x}}": 2 '{' but 2 '}'`,
		},
		{
			name: "interpolation skipped",
			text: "\"{a}\":\n  filepath: ${globals:root}/{other}.csv\n",
		},
		{
			name: "not a pattern",
			text: "companies:\n  filepath: data/{other}.csv\n",
		},
		{
			name: "private pattern",
			text: "\"_{a\":\n  filepath: x\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags, err := v.Validate(ctx, parse(t, tt.text), tt.text)
			require.NoError(t, err)
			if tt.message == "" {
				assert.Empty(t, diags)
				return
			}
			require.Len(t, diags, 1)
			assert.Equal(t, tt.severity, diags[0].Severity)
			assert.Equal(t, tt.message, diags[0].Message)
			assert.Equal(t, tt.line, diags[0].Range.Start.Line)
		})
	}

	t.Run("quoted key range covers the quotes", func(t *testing.T) {
		text := "\"{layer}\":\n  type: x\n  filepath: \"{extra}\"\n"
		diags, err := v.Validate(ctx, parse(t, text), text)
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 0, Character: 9},
		}, diags[0].Range)
	})
}

func TestFullCatalogValidate(t *testing.T) {
	ctx := context.Background()
	v := &FullCatalog{Provider: dataset.NewBuiltinProvider(nil)}
	assert.Equal(t, "full_catalog", v.Name())

	t.Run("valid", func(t *testing.T) {
		text := "companies:\n  type: pandas.CSVDataset\n  filepath: data.csv\n_private:\n  type: broken\n"
		diags, err := v.Validate(ctx, parse(t, text), text)
		require.NoError(t, err)
		assert.Empty(t, diags)
	})

	t.Run("inconsistent pattern", func(t *testing.T) {
		text := "\"{layer}\":\n  type: pandas.CSVDataset\n  filepath: data/{layer}/{extra}.csv\n"
		diags, err := v.Validate(ctx, parse(t, text), text)
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, protocol.Range{}, diags[0].Range)
		assert.Equal(t, protocol.DiagnosticSeverityError, diags[0].Severity)
		assert.Contains(t, diags[0].Message, "Catalog validation error: Incorrect dataset configuration provided.")
	})

	t.Run("interpolated pattern excluded", func(t *testing.T) {
		text := "\"{layer}\":\n  type: pandas.CSVDataset\n  filepath: ${globals:root}/{extra}.csv\n"
		diags, err := v.Validate(ctx, parse(t, text), text)
		require.NoError(t, err)
		assert.Empty(t, diags)
	})

	t.Run("provider error returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		provider := datasetmock.NewMockProvider(ctrl)
		provider.EXPECT().Construct(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tree *model.Mapping) (dataset.Catalog, error) {
			assert.Equal(t, []string{"a"}, tree.Keys)
			return nil, errors.New("boom")
		})

		text := "a:\n  type: x\n_b:\n  type: y\n"
		diags, err := (&FullCatalog{Provider: provider}).Validate(ctx, parse(t, text), text)
		assert.Error(t, err)
		assert.Nil(t, diags)
	})
}

func TestPrivateEntriesNeverReported(t *testing.T) {
	ctx := context.Background()
	provider := dataset.NewBuiltinProvider(nil)
	text := "_bad:\n  type: nope\n_{x:\n  filepath: \"{y}\"\n"
	tree := parse(t, text)

	for _, v := range []Validator{&DatasetConfig{Provider: provider}, &FactoryPattern{}, &FullCatalog{Provider: provider}} {
		diags, err := v.Validate(ctx, tree, text)
		require.NoError(t, err, v.Name())
		assert.Empty(t, diags, v.Name())
	}
}
