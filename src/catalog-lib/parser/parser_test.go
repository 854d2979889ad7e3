package parser

import (
	"errors"
	"testing"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const _catalogText = `companies:
  type: pandas.CSVDataset
  filepath: data/01_raw/companies.csv
  load_args:
    sep: ","

# comment
reviews:
  type: pandas.CSVDataset
  filepath: data/01_raw/reviews.csv
  versioned: true
  columns: [a, b]
`

func TestParse(t *testing.T) {
	tree, err := Parse(_catalogText)
	require.NoError(t, err)

	assert.Equal(t, []string{"companies", "reviews"}, tree.Keys)
	assert.Equal(t, 0, tree.KeyLine("companies"))
	assert.Equal(t, 7, tree.KeyLine("reviews"))

	companies := tree.Values["companies"].(*model.Mapping)
	assert.Equal(t, 1, companies.Provenance.Line)
	assert.Equal(t, 3, companies.KeyLine("load_args"))

	loadArgs := companies.Values["load_args"].(*model.Mapping)
	assert.Equal(t, 4, loadArgs.Provenance.Line)
	assert.Equal(t, ",", loadArgs.Values["sep"])

	reviews := tree.Values["reviews"].(*model.Mapping)
	assert.Equal(t, true, reviews.Values["versioned"])
	assert.Equal(t, []interface{}{"a", "b"}, reviews.Values["columns"])

	entries := tree.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 7, entries[1].SourceLine)
}

func TestParseScalars(t *testing.T) {
	tree, err := Parse("params:\n  rate: 0.5\n  count: 3\n  name: x\n  missing: ~\n  date: 2024-01-01\n")
	require.NoError(t, err)

	params := tree.Values["params"].(*model.Mapping)
	assert.Equal(t, 0.5, params.Values["rate"])
	assert.Equal(t, 3, params.Values["count"])
	assert.Equal(t, "x", params.Values["name"])
	assert.Nil(t, params.Values["missing"])
	assert.Equal(t, "2024-01-01", params.Values["date"])
}

func TestParseKeepsTimestampText(t *testing.T) {
	tree, err := Parse("run:\n  day: 2024-01-01\n  at: 2001-12-14t21:59:43.10-05:00\n  tagged: !!timestamp 2002-12-14\n")
	require.NoError(t, err)

	run := tree.Values["run"].(*model.Mapping)
	assert.Equal(t, "2024-01-01", run.Values["day"])
	assert.Equal(t, "2001-12-14t21:59:43.10-05:00", run.Values["at"])
	assert.Equal(t, "2002-12-14", run.Values["tagged"])
}

func TestParseDuplicateKeyLastWins(t *testing.T) {
	tree, err := Parse("a:\n  type: x\nb: 1\na:\n  type: y\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, tree.Keys)
	assert.Equal(t, "y", tree.Values["a"].(*model.Mapping).Values["type"])
	assert.Equal(t, 3, tree.KeyLine("a"))
}

func TestParseEmpty(t *testing.T) {
	for _, text := range []string{"", "# only a comment\n", "~\n"} {
		tree, err := Parse(text)
		require.NoError(t, err, text)
		assert.Equal(t, 0, tree.Len())
		assert.NotNil(t, tree.Provenance)
	}
}

func TestParseAnchorsAndMerge(t *testing.T) {
	text := `_csv: &csv
  type: pandas.CSVDataset
  load_args:
    sep: ";"

companies:
  <<: *csv
  filepath: companies.csv

shuttles:
  <<: *csv
  type: pandas.ExcelDataset
`
	tree, err := Parse(text)
	require.NoError(t, err)

	companies := tree.Values["companies"].(*model.Mapping)
	assert.Equal(t, []string{"type", "load_args", "filepath"}, companies.Keys)
	assert.Equal(t, "pandas.CSVDataset", companies.Values["type"])
	assert.Equal(t, 1, companies.KeyLine("type"))
	assert.Equal(t, 7, companies.KeyLine("filepath"))

	shuttles := tree.Values["shuttles"].(*model.Mapping)
	assert.Equal(t, "pandas.ExcelDataset", shuttles.Values["type"])
	assert.Equal(t, 11, shuttles.KeyLine("type"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLine int
		contains string
	}{
		{
			name:     "nested mapping value",
			text:     "companies: type: x\n",
			wantLine: 1,
			contains: "mapping values are not allowed",
		},
		{
			name:     "unclosed flow",
			text:     "companies: {type: x\n",
			contains: "yaml:",
		},
		{
			name:     "top level sequence",
			text:     "- a\n- b\n",
			wantLine: 1,
			contains: "expected a mapping at the top level, found sequence",
		},
		{
			name:     "top level scalar",
			text:     "just text\n",
			wantLine: 1,
			contains: "found scalar",
		},
		{
			name:     "multiple documents",
			text:     "a: 1\n---\nb: 2\n",
			contains: "expected a single document",
		},
		{
			name:     "merge of scalar",
			text:     "a:\n  <<: 3\n",
			wantLine: 2,
			contains: "map merge requires",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse(tt.text)
			assert.Nil(t, tree)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Contains(t, err.Error(), tt.contains)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, parseErr.Line)
			}
		})
	}
}

func TestToParseErrorExtractsLine(t *testing.T) {
	_, err := Parse("a:\n  b: c: d\n")
	require.Error(t, err)

	parseErr := err.(*ParseError)
	assert.Greater(t, parseErr.Line, 0)
	assert.NotContains(t, parseErr.Msg, "yaml:")
}

func TestToParseErrorWithoutLine(t *testing.T) {
	assert.Equal(t, &ParseError{Line: 1, Msg: "mapping values are not allowed in this context"},
		toParseError(errors.New("yaml: mapping values are not allowed in this context")))
	assert.Equal(t, &ParseError{Line: 4, Msg: "did not find expected key"},
		toParseError(errors.New("yaml: line 4: did not find expected key")))
}
