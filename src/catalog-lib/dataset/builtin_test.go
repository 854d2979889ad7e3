package dataset

import (
	"context"
	"testing"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapping(kv ...interface{}) *model.Mapping {
	m := model.NewMapping()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}

func TestBuiltinProviderCheck(t *testing.T) {
	p := NewBuiltinProvider(nil)

	tests := []struct {
		name    string
		body    interface{}
		wantErr string
	}{
		{
			name: "valid csv",
			body: mapping("type", "pandas.CSVDataset", "filepath", "data.csv", "load_args", mapping("sep", ",")),
		},
		{
			name: "fully qualified",
			body: mapping("type", "kedro_datasets.pandas.CSVDataset", "filepath", "data.csv"),
		},
		{
			name: "core dataset",
			body: mapping("type", "MemoryDataset"),
		},
		{
			name: "core dataset with package",
			body: mapping("type", "kedro.io.MemoryDataset", "copy_mode", "assign"),
		},
		{
			name: "custom dataset",
			body: mapping("type", "my_project.datasets.Custom", "anything", 1),
		},
		{
			name:    "not a mapping",
			body:    "pandas.CSVDataset",
			wantErr: "Catalog entry must be a mapping, found string",
		},
		{
			name:    "missing type",
			body:    mapping("filepath", "data.csv"),
			wantErr: "'type' is missing from dataset catalog configuration.",
		},
		{
			name:    "type not string",
			body:    mapping("type", 3),
			wantErr: "'type' class path does not support type 'integer'.",
		},
		{
			name:    "unknown type",
			body:    mapping("type", "pandas.CSVDatasett", "filepath", "data.csv"),
			wantErr: "Class 'pandas.CSVDatasett' not found, is this a typo?",
		},
		{
			name:    "unknown type under known package",
			body:    mapping("type", "kedro_datasets.pandas.Nope", "filepath", "data.csv"),
			wantErr: "Class 'kedro_datasets.pandas.Nope' not found, is this a typo?",
		},
		{
			name:    "missing argument",
			body:    mapping("type", "pandas.CSVDataset"),
			wantErr: "CSVDataset.__init__() missing 1 required keyword-only argument: 'filepath'",
		},
		{
			name:    "missing arguments",
			body:    mapping("type", "pandas.SQLTableDataset"),
			wantErr: "SQLTableDataset.__init__() missing 2 required keyword-only arguments: 'table_name' and 'credentials'",
		},
		{
			name:    "unexpected argument",
			body:    mapping("type", "pandas.CSVDataset", "filepath", "data.csv", "layer", "raw"),
			wantErr: "CSVDataset.__init__() got an unexpected keyword argument 'layer'",
		},
		{
			name:    "versioning unsupported",
			body:    mapping("type", "MemoryDataset", "versioned", true),
			wantErr: "'MemoryDataset' does not support versioning, please remove the 'versioned' flag from config",
		},
		{
			name:    "versioned not bool",
			body:    mapping("type", "pandas.CSVDataset", "filepath", "data.csv", "versioned", "yes"),
			wantErr: "'versioned' must be a boolean, found string",
		},
		{
			name: "versioned csv",
			body: mapping("type", "pandas.CSVDataset", "filepath", "data.csv", "versioned", true, "metadata", mapping()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.check("ds", tt.body)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var constructionErr *ConstructionError
			require.ErrorAs(t, err, &constructionErr)
			assert.Equal(t, "ds", constructionErr.Dataset)
			assert.Equal(t, tt.wantErr, constructionErr.Msg)
		})
	}
}

func TestBuiltinProviderConstruct(t *testing.T) {
	ctx := context.Background()
	p := NewBuiltinProvider(nil)

	t.Run("valid catalog with patterns", func(t *testing.T) {
		tree := mapping(
			"companies", mapping("type", "pandas.CSVDataset", "filepath", "companies.csv"),
			"{layer}.{name}", mapping("type", "pandas.CSVDataset", "filepath", "data/{layer}/{name}.csv"),
		)
		cat, err := p.Construct(ctx, tree)
		require.NoError(t, err)

		assert.NoError(t, cat.Dataset(ctx, "companies"))
		assert.NoError(t, cat.Dataset(ctx, "raw.shuttles"))
		assert.NoError(t, cat.Dataset(ctx, "{layer}.{name}"))

		err = cat.Dataset(ctx, "missing")
		assert.EqualError(t, err, "Dataset 'missing' not found in the catalog")
	})

	t.Run("pattern with extra key", func(t *testing.T) {
		tree := mapping("{layer}", mapping("type", "pandas.CSVDataset", "filepath", "data/{layer}/{extra}.csv"))
		_, err := p.Construct(ctx, tree)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Keys used in the configuration {'extra'} should present in the dataset factory pattern name {layer}.")
	})

	t.Run("multiple catch-all patterns", func(t *testing.T) {
		tree := mapping(
			"{default}", mapping("type", "MemoryDataset"),
			"{other}", mapping("type", "MemoryDataset"),
		)
		_, err := p.Construct(ctx, tree)
		assert.EqualError(t, err, "Multiple catch-all patterns found in the catalog: {default}, {other}. Only one catch-all pattern is allowed, remove the extras.")
	})

	t.Run("invalid entry", func(t *testing.T) {
		tree := mapping("bad", mapping("type", "pandas.Nope"))
		_, err := p.Construct(ctx, tree)
		assert.EqualError(t, err, "An exception occurred when parsing config for dataset 'bad':\nClass 'pandas.Nope' not found, is this a typo?")
	})

	t.Run("pattern resolution fails per dataset", func(t *testing.T) {
		tree := mapping("{name}_csv", mapping("type", "pandas.CSVDataset"))
		cat, err := p.Construct(ctx, tree)
		require.NoError(t, err)
		assert.Error(t, cat.Dataset(ctx, "cars_csv"))
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := p.Construct(cctx, mapping("a", mapping("type", "MemoryDataset")))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    map[string]string
	}{
		{pattern: "{layer}.{name}", name: "raw.companies", want: map[string]string{"layer": "raw", "name": "companies"}},
		{pattern: "{name}_csv", name: "cars_csv", want: map[string]string{"name": "cars"}},
		{pattern: "{a}-{a}", name: "x-x", want: map[string]string{"a": "x"}},
		{pattern: "{a}-{a}", name: "x-y"},
		{pattern: "pre_{x}", name: "post_y"},
		{pattern: "exact", name: "exact", want: map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.name, func(t *testing.T) {
			got, ok := matchPattern(tt.pattern, tt.name)
			assert.Equal(t, tt.want != nil, ok)
			if tt.want != nil {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry().Merge(Registry{"custom.Thing": {Open: true}})

	_, ok := r.Resolve("custom.Thing")
	assert.True(t, ok)
	_, ok = r.Resolve("kedro_datasets.pandas.CSVDataset")
	assert.True(t, ok)
	spec, ok := r.Resolve("a.b.C")
	assert.True(t, ok)
	assert.True(t, spec.Open)
	_, ok = r.Resolve("Unknown")
	assert.False(t, ok)

	names := r.Names()
	assert.Contains(t, names, "pandas.CSVDataset")
	assert.IsIncreasing(t, names)
}
