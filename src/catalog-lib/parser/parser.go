// Package parser builds line-annotated configuration trees from YAML text.
package parser

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"gopkg.in/yaml.v3"
)

const (
	_mergeTag     = "!!merge"
	_timestampTag = "!!timestamp"
	_maxDepth     = 512
)

var _yamlLinePattern = regexp.MustCompile(`^(?:yaml: )?line (\d+): (.*)$`)

// ParseError reports malformed configuration text.
type ParseError struct {
	// Line is the one-based line of the problem. YAML errors without a line are on the first line.
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("yaml: line %d: %s", e.Line, e.Msg)
	}
	return "yaml: " + e.Msg
}

// Parse parses a YAML mapping document, attaching the source line of every mapping and key.
// Empty documents produce an empty mapping.
func Parse(text string) (*model.Mapping, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return emptyTree(), nil
		}
		return nil, toParseError(err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, toParseError(err)
		}
		return nil, &ParseError{Line: extra.Line, Msg: "expected a single document in the stream"}
	}

	if len(doc.Content) == 0 {
		return emptyTree(), nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return emptyTree(), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Line: root.Line, Msg: fmt.Sprintf("expected a mapping at the top level, found %s", kindName(root))}
	}

	v, err := convert(root, 0)
	if err != nil {
		return nil, err
	}
	return v.(*model.Mapping), nil
}

func emptyTree() *model.Mapping {
	m := model.NewMapping()
	m.Provenance = &model.Provenance{KeyLines: map[string]int{}}
	return m
}

func convert(node *yaml.Node, depth int) (interface{}, error) {
	if depth > _maxDepth {
		return nil, &ParseError{Line: node.Line, Msg: "document is nested too deeply"}
	}

	switch node.Kind {
	case yaml.AliasNode:
		return convert(node.Alias, depth+1)
	case yaml.ScalarNode:
		if node.ShortTag() == _timestampTag {
			return node.Value, nil
		}
		var v interface{}
		if err := node.Decode(&v); err != nil {
			return nil, toParseError(err)
		}
		return v, nil
	case yaml.SequenceNode:
		out := make([]interface{}, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := convert(item, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return convertMapping(node, depth)
	default:
		return nil, &ParseError{Line: node.Line, Msg: fmt.Sprintf("unexpected %s", kindName(node))}
	}
}

func convertMapping(node *yaml.Node, depth int) (*model.Mapping, error) {
	m := model.NewMapping()
	m.Provenance = &model.Provenance{
		Line:     node.Line - 1,
		KeyLines: make(map[string]int, len(node.Content)/2),
	}
	// Keys contributed by a merge key may be overridden by explicit keys.
	merged := map[string]bool{}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Tag == _mergeTag {
			if err := mergeInto(m, merged, valueNode, depth); err != nil {
				return nil, err
			}
			continue
		}
		if keyNode.Kind != yaml.ScalarNode {
			return nil, &ParseError{Line: keyNode.Line, Msg: fmt.Sprintf("unsupported %s used as a mapping key", kindName(keyNode))}
		}

		// A repeated key keeps its first position and takes the last value and line.
		key := keyNode.Value
		v, err := convert(valueNode, depth+1)
		if err != nil {
			return nil, err
		}
		delete(merged, key)
		m.Set(key, v)
		m.Provenance.KeyLines[key] = keyNode.Line - 1
	}
	return m, nil
}

// mergeInto applies a YAML merge key whose value is a mapping or a sequence of mappings.
func mergeInto(m *model.Mapping, merged map[string]bool, value *yaml.Node, depth int) error {
	sources := []*yaml.Node{value}
	if value.Kind == yaml.SequenceNode {
		sources = value.Content
	}

	for _, src := range sources {
		v, err := convert(src, depth+1)
		if err != nil {
			return err
		}
		sm, ok := v.(*model.Mapping)
		if !ok {
			return &ParseError{Line: src.Line, Msg: "map merge requires map or sequence of maps as the value"}
		}
		for _, k := range sm.Keys {
			if _, exists := m.Values[k]; exists {
				continue
			}
			m.Set(k, sm.Values[k])
			m.Provenance.KeyLines[k] = sm.KeyLine(k)
			merged[k] = true
		}
	}
	return nil
}

func toParseError(err error) *ParseError {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		err = errors.New(typeErr.Errors[0])
	}

	msg := err.Error()
	if match := _yamlLinePattern.FindStringSubmatch(msg); match != nil {
		line, _ := strconv.Atoi(match[1])
		return &ParseError{Line: line, Msg: match[2]}
	}
	return &ParseError{Line: 1, Msg: strings.TrimPrefix(msg, "yaml: ")}
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}
