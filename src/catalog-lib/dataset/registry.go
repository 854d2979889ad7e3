package dataset

import (
	"sort"
	"strings"
)

// Prefixes tried when resolving a dataset type, mirroring how the framework imports them.
var _typePrefixes = []string{"kedro.io.", "kedro_datasets."}

// TypeSpec describes the constructor of a known dataset type.
type TypeSpec struct {
	Required []string `yaml:"required"`
	Optional []string `yaml:"optional"`
	// Open types accept arguments beyond Required and Optional.
	Open bool `yaml:"open"`
	// Versioned types accept the versioned flag.
	Versioned bool `yaml:"versioned"`
}

// Registry maps canonical type names to their specs.
type Registry map[string]TypeSpec

var _fileArgs = []string{"load_args", "save_args", "version", "credentials", "fs_args", "metadata"}

func fileSpec(extra ...string) TypeSpec {
	return TypeSpec{
		Required:  []string{"filepath"},
		Optional:  append(append([]string{}, _fileArgs...), extra...),
		Versioned: true,
	}
}

// DefaultRegistry returns the dataset types known without a Python environment.
func DefaultRegistry() Registry {
	return Registry{
		"MemoryDataset":       {Optional: []string{"data", "copy_mode", "metadata"}},
		"SharedMemoryDataset": {Optional: []string{"manager", "metadata"}},
		"CachedDataset":       {Required: []string{"dataset"}, Optional: []string{"version", "copy_mode", "metadata"}},
		"LambdaDataset":       {Required: []string{"load", "save"}, Optional: []string{"exists", "release", "metadata"}},

		"pandas.CSVDataset":     fileSpec(),
		"pandas.ExcelDataset":   fileSpec("engine"),
		"pandas.ParquetDataset": fileSpec(),
		"pandas.JSONDataset":    fileSpec(),
		"pandas.FeatherDataset": fileSpec(),
		"pandas.XMLDataset":     fileSpec(),
		"pandas.HDFDataset":     {Required: []string{"filepath", "key"}, Optional: _fileArgs, Versioned: true},
		"pandas.GenericDataset": {Required: []string{"filepath", "file_format"}, Optional: _fileArgs, Versioned: true},
		"pandas.SQLTableDataset": {
			Required: []string{"table_name", "credentials"},
			Optional: []string{"load_args", "save_args", "metadata"},
		},
		"pandas.SQLQueryDataset": {
			Required: []string{"credentials"},
			Optional: []string{"sql", "filepath", "load_args", "fs_args", "execution_options", "metadata"},
		},
		"pandas.GBQTableDataset": {
			Required: []string{"dataset", "table_name"},
			Optional: []string{"project", "credentials", "load_args", "save_args", "metadata"},
		},

		"json.JSONDataset":            fileSpec(),
		"yaml.YAMLDataset":            fileSpec(),
		"text.TextDataset":            fileSpec(),
		"pickle.PickleDataset":        fileSpec("backend"),
		"pillow.ImageDataset":         fileSpec(),
		"matplotlib.MatplotlibWriter": fileSpec("overwrite"),
		"plotly.JSONDataset":          fileSpec(),
		"plotly.PlotlyDataset":        fileSpec("plotly_args"),
		"networkx.JSONDataset":        fileSpec(),
		"polars.CSVDataset":           fileSpec(),
		"polars.EagerPolarsDataset":   fileSpec("file_format"),
		"polars.LazyPolarsDataset":    fileSpec("file_format"),
		"spark.SparkDataset":          fileSpec("file_format"),
		"spark.SparkHiveDataset": {
			Required: []string{"database", "table", "write_mode"},
			Optional: []string{"table_pk", "save_args", "metadata"},
		},
		"tensorflow.TensorFlowModelDataset": fileSpec(),

		"api.APIDataset": {
			Required: []string{"url"},
			Optional: []string{"method", "load_args", "save_args", "credentials", "metadata"},
		},
		"partitions.PartitionedDataset": {
			Required: []string{"path", "dataset"},
			Optional: []string{"filepath_arg", "filename_suffix", "credentials", "load_args", "fs_args", "overwrite", "metadata"},
		},
		"partitions.IncrementalDataset": {
			Required: []string{"path", "dataset"},
			Optional: []string{"checkpoint", "filepath_arg", "filename_suffix", "credentials", "load_args", "fs_args", "metadata"},
		},
	}
}

// Merge returns a registry with overrides applied on top of r.
func (r Registry) Merge(overrides Registry) Registry {
	out := make(Registry, len(r)+len(overrides))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Resolve finds the spec for a type name as written in a catalog.
// Names outside the registry with three or more dotted segments are treated as custom datasets.
func (r Registry) Resolve(typeName string) (TypeSpec, bool) {
	if spec, ok := r[typeName]; ok {
		return spec, true
	}
	for _, prefix := range _typePrefixes {
		if spec, ok := r[strings.TrimPrefix(typeName, prefix)]; ok && strings.HasPrefix(typeName, prefix) {
			return spec, true
		}
	}
	if strings.Count(typeName, ".") >= 2 && !hasKnownPrefix(typeName) {
		return TypeSpec{Open: true, Versioned: true}, true
	}
	return TypeSpec{}, false
}

// Names lists the canonical type names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func hasKnownPrefix(typeName string) bool {
	for _, prefix := range _typePrefixes {
		if strings.HasPrefix(typeName, prefix) {
			return true
		}
	}
	return false
}
