package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"go.lsp.dev/protocol"
)

// Body fields that only make sense on a dataset factory pattern.
var _factoryOnlyFields = []string{"layer", "tags"}

// FactoryPattern checks bracket structure and placeholder consistency of dataset factory patterns.
type FactoryPattern struct{}

// Name implements Validator.
func (v *FactoryPattern) Name() string {
	return "factory_pattern"
}

// Validate implements Validator. At most one diagnostic is produced per entry.
func (v *FactoryPattern) Validate(ctx context.Context, tree *model.Mapping, text string) ([]*protocol.Diagnostic, error) {
	var diagnostics []*protocol.Diagnostic

	for _, entry := range tree.Entries() {
		if entry.IsPrivate() {
			continue
		}
		if d := v.check(entry, text); d != nil {
			diagnostics = append(diagnostics, d)
		}
	}
	return diagnostics, nil
}

func (v *FactoryPattern) check(entry model.ConfigEntry, text string) *protocol.Diagnostic {
	name := entry.Name
	hasOpen, hasClose := strings.Contains(name, "{"), strings.Contains(name, "}")

	if hasOpen != hasClose {
		msg := fmt.Sprintf("Mismatched brackets in dataset factory pattern %q", name)
		if fields := factoryOnlyFields(entry.Body); len(fields) > 0 {
			msg += fmt.Sprintf("; fields [%s] are only valid in dataset factory patterns", strings.Join(fields, ", "))
		}
		return entryDiagnostic(text, name, msg, protocol.DiagnosticSeverityError)
	}

	if !balancedBrackets(name) {
		opens, closes := strings.Count(name, "{"), strings.Count(name, "}")
		msg := fmt.Sprintf("Unbalanced brackets in dataset factory pattern %q: %d '{' but %d '}'", name, opens, closes)
		return entryDiagnostic(text, name, msg, protocol.DiagnosticSeverityError)
	}

	if !hasOpen || entry.HasInterpolation() {
		return nil
	}

	nameVars := map[string]struct{}{}
	for _, placeholder := range model.NamePlaceholders(name) {
		nameVars[placeholder] = struct{}{}
	}
	var extra []string
	for _, placeholder := range model.BodyPlaceholders(entry.Body) {
		if _, ok := nameVars[placeholder]; !ok {
			extra = append(extra, placeholder)
		}
	}
	if len(extra) == 0 {
		return nil
	}

	msg := fmt.Sprintf("Keys used in the configuration [%s] should be present in the dataset factory pattern name", strings.Join(extra, ", "))
	return entryDiagnostic(text, name, msg, protocol.DiagnosticSeverityWarning)
}

// balancedBrackets reports whether every '{' is closed by a later '}' with no nesting.
func balancedBrackets(name string) bool {
	depth := 0
	for _, r := range name {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth < 0 || depth > 1 {
			return false
		}
	}
	return depth == 0
}

func factoryOnlyFields(body interface{}) []string {
	m, ok := body.(*model.Mapping)
	if !ok {
		return nil
	}
	var found []string
	for _, field := range _factoryOnlyFields {
		if _, ok := m.Get(field); ok {
			found = append(found, field)
		}
	}
	return found
}
