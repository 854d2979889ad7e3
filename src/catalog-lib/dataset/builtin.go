package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
)

const (
	_typeKey      = "type"
	_versionedKey = "versioned"
)

// Arguments every dataset entry may carry regardless of its type.
var _catalogKeys = map[string]struct{}{_typeKey: {}, _versionedKey: {}, "metadata": {}}

// BuiltinProvider checks catalog entries against a registry of known dataset types.
type BuiltinProvider struct {
	Registry Registry
}

// NewBuiltinProvider creates a provider backed by the default registry plus overrides.
func NewBuiltinProvider(overrides Registry) *BuiltinProvider {
	return &BuiltinProvider{Registry: DefaultRegistry().Merge(overrides)}
}

type builtinCatalog struct {
	provider *BuiltinProvider
	tree     *model.Mapping
}

// Construct validates every concrete entry and every factory pattern of tree.
func (p *BuiltinProvider) Construct(ctx context.Context, tree *model.Mapping) (Catalog, error) {
	var catchAll []string
	for _, entry := range tree.Entries() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsFactoryPattern() {
			if err := validatePattern(entry); err != nil {
				return nil, err
			}
			if isCatchAll(entry.Name) {
				catchAll = append(catchAll, entry.Name)
			}
			continue
		}
		if err := p.check(entry.Name, entry.Body); err != nil {
			return nil, err
		}
	}

	if len(catchAll) > 1 {
		return nil, NewConstructionError("",
			"Multiple catch-all patterns found in the catalog: %s. Only one catch-all pattern is allowed, remove the extras.",
			strings.Join(catchAll, ", "))
	}
	return &builtinCatalog{provider: p, tree: tree}, nil
}

// Dataset materializes a dataset by exact name or through the first matching factory pattern.
func (c *builtinCatalog) Dataset(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if body, ok := c.tree.Get(name); ok {
		return c.provider.check(name, body)
	}
	for _, entry := range c.tree.Entries() {
		if !entry.IsFactoryPattern() {
			continue
		}
		if values, ok := matchPattern(entry.Name, name); ok {
			return c.provider.check(name, substitute(entry.Body, values))
		}
	}
	return NewConstructionError("", "Dataset '%s' not found in the catalog", name)
}

func (p *BuiltinProvider) check(name string, body interface{}) error {
	cfg, ok := body.(*model.Mapping)
	if !ok {
		return NewConstructionError(name, "Catalog entry must be a mapping, found %s", describe(body))
	}

	rawType, ok := cfg.Get(_typeKey)
	if !ok {
		return NewConstructionError(name, "'type' is missing from dataset catalog configuration.")
	}
	typeName, ok := rawType.(string)
	if !ok {
		return NewConstructionError(name, "'type' class path does not support type '%s'.", describe(rawType))
	}

	spec, ok := p.Registry.Resolve(typeName)
	if !ok {
		return NewConstructionError(name, "Class '%s' not found, is this a typo?", typeName)
	}
	className := typeName[strings.LastIndex(typeName, ".")+1:]

	if v, ok := cfg.Get(_versionedKey); ok {
		flag, isBool := v.(bool)
		if !isBool {
			return NewConstructionError(name, "'versioned' must be a boolean, found %s", describe(v))
		}
		if flag && !spec.Versioned {
			return NewConstructionError(name, "'%s' does not support versioning, please remove the 'versioned' flag from config", className)
		}
	}

	var missing []string
	for _, arg := range spec.Required {
		if _, ok := cfg.Get(arg); !ok {
			missing = append(missing, "'"+arg+"'")
		}
	}
	if len(missing) > 0 {
		return NewConstructionError(name, "%s.__init__() missing %d required keyword-only argument%s: %s",
			className, len(missing), plural(len(missing)), strings.Join(missing, " and "))
	}

	if !spec.Open {
		allowed := map[string]struct{}{}
		for _, arg := range append(append([]string{}, spec.Required...), spec.Optional...) {
			allowed[arg] = struct{}{}
		}
		for _, k := range cfg.Keys {
			if _, ok := _catalogKeys[k]; ok {
				continue
			}
			if _, ok := allowed[k]; !ok {
				return NewConstructionError(name, "%s.__init__() got an unexpected keyword argument '%s'", className, k)
			}
		}
	}
	return nil
}

func validatePattern(entry model.ConfigEntry) error {
	nameVars := map[string]struct{}{}
	for _, v := range model.NamePlaceholders(entry.Name) {
		nameVars[v] = struct{}{}
	}
	var extra []string
	for _, v := range model.BodyPlaceholders(entry.Body) {
		if _, ok := nameVars[v]; !ok {
			extra = append(extra, "'"+v+"'")
		}
	}
	if len(extra) == 0 {
		return nil
	}
	return NewConstructionError("",
		"Incorrect dataset configuration provided. Keys used in the configuration {%s} should present in the dataset factory pattern name %s.",
		strings.Join(extra, ", "), entry.Name)
}

// isCatchAll reports whether a pattern is a single placeholder, matching any dataset name.
func isCatchAll(name string) bool {
	return strings.HasPrefix(name, "{") && strings.HasSuffix(name, "}") && strings.Count(name, "{") == 1
}

// matchPattern matches name against a pattern like "{layer}.{name}".
// Placeholders match greedily-minimal non-empty text.
func matchPattern(pattern, name string) (map[string]string, bool) {
	values := map[string]string{}
	if matchFrom(pattern, name, values) {
		return values, true
	}
	return nil, false
}

func matchFrom(pattern, name string, values map[string]string) bool {
	open := strings.Index(pattern, "{")
	if open < 0 {
		return pattern == name
	}
	if !strings.HasPrefix(name, pattern[:open]) {
		return false
	}
	end := strings.Index(pattern[open:], "}")
	if end < 0 {
		return false
	}
	end += open
	key := pattern[open+1 : end]
	rest := pattern[end+1:]
	remaining := name[open:]

	for i := 1; i <= len(remaining); i++ {
		candidate := remaining[:i]
		if prev, ok := values[key]; ok && prev != candidate {
			continue
		}
		_, had := values[key]
		values[key] = candidate
		if matchFrom(rest, remaining[i:], values) {
			return true
		}
		if !had {
			delete(values, key)
		}
	}
	return false
}

func substitute(v interface{}, values map[string]string) interface{} {
	switch t := v.(type) {
	case string:
		for k, val := range values {
			t = strings.ReplaceAll(t, "{"+k+"}", val)
		}
		return t
	case *model.Mapping:
		out := model.NewMapping()
		for _, k := range t.Keys {
			out.Set(substitute(k, values).(string), substitute(t.Values[k], values))
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = substitute(item, values)
		}
		return out
	default:
		return v
	}
}

func describe(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case *model.Mapping:
		return "mapping"
	case []interface{}:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64:
		return "integer"
	case float64:
		return "float"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

