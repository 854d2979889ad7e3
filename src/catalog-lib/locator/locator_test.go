package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

const _catalog = `companies:
  type: pandas.CSVDataset
  filepath: data.csv

# shuttles:
shuttles:
  type: pandas.ExcelDataset

  load_args:
    engine: openpyxl
reviews:
  type: pandas.CSVDataset
`

func TestLocate(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		entry  string
		field  []string
		want   protocol.Position
		wantOK bool
	}{
		{
			name:   "simple entry",
			text:   "companies:\n  type: pandas.CSVDataset\n  filepath: data.csv\n",
			entry:  "companies",
			want:   protocol.Position{Line: 0, Character: 0},
			wantOK: true,
		},
		{
			name:   "simple field",
			text:   "companies:\n  type: pandas.CSVDataset\n  filepath: data.csv\n",
			entry:  "companies",
			field:  []string{"type"},
			want:   protocol.Position{Line: 1, Character: 2},
			wantOK: true,
		},
		{
			name:   "entry after comment",
			text:   _catalog,
			entry:  "shuttles",
			want:   protocol.Position{Line: 5, Character: 0},
			wantOK: true,
		},
		{
			name:   "field across blank line",
			text:   _catalog,
			entry:  "shuttles",
			field:  []string{"load_args"},
			want:   protocol.Position{Line: 8, Character: 2},
			wantOK: true,
		},
		{
			name:   "nested field",
			text:   _catalog,
			entry:  "shuttles",
			field:  []string{"engine"},
			want:   protocol.Position{Line: 9, Character: 4},
			wantOK: true,
		},
		{
			name:  "field outside entry",
			text:  _catalog,
			entry: "companies",
			field: []string{"load_args"},
		},
		{
			name:  "missing field",
			text:  _catalog,
			entry: "companies",
			field: []string{"missing"},
		},
		{
			name:  "missing entry",
			text:  _catalog,
			entry: "planes",
		},
		{
			name:   "indented entry",
			text:   "parent:\n    child:\n        type: x\n",
			entry:  "child",
			want:   protocol.Position{Line: 1, Character: 4},
			wantOK: true,
		},
		{
			name:   "empty field behaves like entry lookup",
			text:   _catalog,
			entry:  "reviews",
			field:  []string{""},
			want:   protocol.Position{Line: 10, Character: 0},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Locate(tt.text, tt.entry, tt.field...)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLocateTopLevelKeysAtColumnZero(t *testing.T) {
	text := "a:\n  x: 1\nb:\n  y: 2\nc: 3\n"
	for line, key := range []string{"a", "", "b", "", "c"} {
		if key == "" {
			continue
		}
		got, ok := Locate(text, key)
		assert.True(t, ok)
		assert.Equal(t, protocol.Position{Line: uint32(line), Character: 0}, got)
	}
}

func TestLocateKeyQuoted(t *testing.T) {
	text := "\"{layer}.{name}\":\n  type: x\n'{a}':\n  type: y\n"

	got, ok := LocateKey(text, "{layer}.{name}")
	assert.True(t, ok)
	assert.Equal(t, protocol.Position{Line: 0, Character: 0}, got)

	got, ok = LocateKey(text, "{a}")
	assert.True(t, ok)
	assert.Equal(t, protocol.Position{Line: 2, Character: 0}, got)

	_, ok = LocateKey(text, "{b}")
	assert.False(t, ok)
}

func TestLocateKeyRange(t *testing.T) {
	text := "plain:\n  type: x\n\"{layer}\":\n  type: y\n"

	got, ok := LocateKeyRange(text, "plain")
	require.True(t, ok)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 5},
	}, got)

	got, ok = LocateKeyRange(text, "{layer}")
	require.True(t, ok)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 2, Character: 0},
		End:   protocol.Position{Line: 2, Character: 9},
	}, got)

	_, ok = LocateKeyRange(text, "missing")
	assert.False(t, ok)
}

func TestNameRange(t *testing.T) {
	r := NameRange(protocol.Position{Line: 3, Character: 2}, "companies")
	assert.Equal(t, protocol.Position{Line: 3, Character: 2}, r.Start)
	assert.Equal(t, protocol.Position{Line: 3, Character: 11}, r.End)
}
