package kedro

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"github.com/kedro-org/kedro-lsp/src/catalog-lib/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader(files map[string]string, env string) *ConfigLoader {
	mapFS := fstest.MapFS{}
	for name, content := range files {
		mapFS[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return &ConfigLoader{
		FS:     mapFS,
		Layout: resolver.Layout{ConfSource: "conf", BaseEnv: "base", Env: env},
	}
}

func TestConfigLoaderLoad(t *testing.T) {
	t.Run("env overrides base per key", func(t *testing.T) {
		loader := newLoader(map[string]string{
			"conf/base/catalog.yml":  "cars:\n  type: pandas.CSVDataset\n  filepath: cars.csv\nboats:\n  type: MemoryDataset\n",
			"conf/local/catalog.yml": "cars:\n  type: pandas.ParquetDataset\n  filepath: cars.pq\n",
		}, "local")

		tree, err := loader.Load(context.Background(), resolver.CategoryCatalog)
		require.NoError(t, err)
		assert.Equal(t, []string{"cars", "boats"}, tree.Keys)

		cars, ok := tree.Get("cars")
		require.True(t, ok)
		carsType, _ := cars.(*model.Mapping).Get("type")
		assert.Equal(t, "pandas.ParquetDataset", carsType)
	})

	t.Run("base env only", func(t *testing.T) {
		loader := newLoader(map[string]string{
			"conf/base/parameters.yml":        "alpha: 1\n",
			"conf/base/parameters/model.yaml": "beta: 2\n",
		}, "base")

		tree, err := loader.Load(context.Background(), resolver.CategoryParameters)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"alpha", "beta"}, tree.Keys)
	})

	t.Run("missing env directory", func(t *testing.T) {
		loader := newLoader(map[string]string{
			"conf/base/catalog.yml": "cars:\n  type: MemoryDataset\n",
		}, "prod")

		tree, err := loader.Load(context.Background(), resolver.CategoryCatalog)
		require.NoError(t, err)
		assert.Equal(t, 1, tree.Len())
	})

	t.Run("duplicate keys within one env", func(t *testing.T) {
		loader := newLoader(map[string]string{
			"conf/base/catalog.yml":          "cars:\n  type: MemoryDataset\n",
			"conf/base/catalog_extra.yml":    "cars:\n  type: MemoryDataset\n",
			"conf/base/catalog/private.yaml": "_anchor: 1\n",
			"conf/base/catalog/shared.yaml":  "_anchor: 2\n",
		}, "local")

		_, err := loader.Load(context.Background(), resolver.CategoryCatalog)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Duplicate keys found in conf/base/catalog.yml and conf/base/catalog_extra.yml:\n- cars")
		assert.NotContains(t, err.Error(), "_anchor")
	})

	t.Run("parse errors name the file", func(t *testing.T) {
		loader := newLoader(map[string]string{
			"conf/base/catalog.yml": "cars: [unterminated\n",
		}, "local")

		_, err := loader.Load(context.Background(), resolver.CategoryCatalog)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "conf/base/catalog.yml: ")
	})

	t.Run("non config extensions are skipped", func(t *testing.T) {
		loader := newLoader(map[string]string{
			"conf/base/catalog.yml":    "cars:\n  type: MemoryDataset\n",
			"conf/base/catalog.md":     "# notes",
			"conf/base/.catalog.yml":   "hidden: {}\n",
			"conf/base/catalog/x.yaml": "planes:\n  type: MemoryDataset\n",
		}, "local")

		tree, err := loader.Load(context.Background(), resolver.CategoryCatalog)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"cars", "planes"}, tree.Keys)
	})

	t.Run("cancelled context", func(t *testing.T) {
		loader := newLoader(map[string]string{
			"conf/base/catalog.yml": "cars:\n  type: MemoryDataset\n",
		}, "local")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := loader.Load(ctx, resolver.CategoryCatalog)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDuplicateError(t *testing.T) {
	assert.NoError(t, duplicateError("b.yml", nil))

	err := duplicateError("c.yml", map[string][]string{
		"b.yml": {"z", "y"},
		"a.yml": {"x"},
	})
	require.Error(t, err)
	assert.Equal(t, "Duplicate keys found in a.yml and c.yml:\n- x\nDuplicate keys found in b.yml and c.yml:\n- y, z", err.Error())
}
