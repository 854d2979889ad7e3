package resolver

import (
	"sort"
	"strings"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
)

const _parametersKey = "parameters"

// Catalog is a read-only view of a project's merged datasets and parameters.
type Catalog struct {
	Datasets   *model.Mapping
	Parameters *model.Mapping
}

// NewCatalog builds a Catalog; nil trees are treated as empty.
func NewCatalog(datasets, params *model.Mapping) *Catalog {
	if datasets == nil {
		datasets = model.NewMapping()
	}
	if params == nil {
		params = model.NewMapping()
	}
	return &Catalog{Datasets: datasets, Parameters: params}
}

// List returns the concrete dataset names, excluding factory patterns and private entries.
func (c *Catalog) List() []string {
	var names []string
	for _, entry := range c.Datasets.Entries() {
		if entry.IsPrivate() || entry.IsFactoryPattern() {
			continue
		}
		names = append(names, entry.Name)
	}
	return names
}

// Load returns the configuration of a dataset, or the value of "parameters" and "params:" references.
func (c *Catalog) Load(name string) (interface{}, bool) {
	if name == _parametersKey {
		return c.Parameters, true
	}
	if strings.HasPrefix(name, ParamsPrefix) {
		return c.Parameters.Lookup(strings.TrimPrefix(name, ParamsPrefix))
	}
	entry, ok := c.Datasets.Entry(name)
	if !ok || entry.IsPrivate() || entry.IsFactoryPattern() {
		return nil, false
	}
	return entry.Body, true
}

// Params returns the whole parameter tree.
func (c *Catalog) Params() *model.Mapping {
	return c.Parameters
}

// FeedDict maps "parameters" and every "params:<dotted.path>" to its value, recursing into nested mappings.
func (c *Catalog) FeedDict() map[string]interface{} {
	feed := map[string]interface{}{_parametersKey: c.Parameters}
	var add func(prefix string, m *model.Mapping)
	add = func(prefix string, m *model.Mapping) {
		for _, k := range m.Keys {
			v, _ := m.Get(k)
			key := prefix + k
			feed[ParamsPrefix+key] = v
			if sub, ok := v.(*model.Mapping); ok {
				add(key+".", sub)
			}
		}
	}
	add("", c.Parameters)
	return feed
}

// FeedKeys returns the keys of FeedDict, sorted.
func (c *Catalog) FeedKeys() []string {
	feed := c.FeedDict()
	keys := make([]string, 0, len(feed))
	for k := range feed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
