package model

import (
	"regexp"
	"sort"
	"strings"
)

var (
	_placeholderPattern   = regexp.MustCompile(`\{([^{}]+)\}`)
	_interpolationPattern = regexp.MustCompile(`\$\{[^{}]+:[^{}]+\}`)
)

// ConfigEntry is a named top-level node of a configuration mapping.
type ConfigEntry struct {
	Name string
	Body interface{}
	// SourceLine is the zero-based line of the entry key, or -1 when unknown.
	// It is only valid against the text that produced it.
	SourceLine int
}

// IsPrivate reports whether the entry is excluded from catalog construction.
func (e ConfigEntry) IsPrivate() bool {
	return strings.HasPrefix(e.Name, "_")
}

// IsFactoryPattern reports whether the name contains a {placeholder}.
func (e ConfigEntry) IsFactoryPattern() bool {
	return _placeholderPattern.MatchString(e.Name)
}

// HasInterpolation reports whether a mapping body holds a ${namespace:key} marker.
// Non-mapping bodies never do.
func (e ConfigEntry) HasInterpolation() bool {
	m, ok := e.Body.(*Mapping)
	if !ok {
		return false
	}
	found := false
	walkStrings(m, func(s string) bool {
		found = _interpolationPattern.MatchString(s)
		return !found
	})
	return found
}

// NamePlaceholders returns the distinct placeholder names of a name template, sorted.
func NamePlaceholders(name string) []string {
	set := map[string]struct{}{}
	for _, match := range _placeholderPattern.FindAllStringSubmatch(name, -1) {
		set[match[1]] = struct{}{}
	}
	return sortedKeys(set)
}

// BodyPlaceholders returns the distinct placeholder names used anywhere in a body, sorted.
// Both keys and string values are searched.
func BodyPlaceholders(body interface{}) []string {
	set := map[string]struct{}{}
	walkStrings(body, func(s string) bool {
		for _, match := range _placeholderPattern.FindAllStringSubmatch(s, -1) {
			set[match[1]] = struct{}{}
		}
		return true
	})
	return sortedKeys(set)
}

// walkStrings visits every key and string value under v until visit returns false.
func walkStrings(v interface{}, visit func(string) bool) bool {
	switch t := v.(type) {
	case string:
		return visit(t)
	case *Mapping:
		for _, k := range t.Keys {
			if !visit(k) || !walkStrings(t.Values[k], visit) {
				return false
			}
		}
	case []interface{}:
		for _, item := range t {
			if !walkStrings(item, visit) {
				return false
			}
		}
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
