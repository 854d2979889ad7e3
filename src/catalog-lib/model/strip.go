package model

// Strip returns a deep copy of m with all provenance removed.
// Stripping is idempotent.
func Strip(m *Mapping) *Mapping {
	if m == nil {
		return nil
	}
	return copyValue(m, false).(*Mapping)
}

// Clone returns a deep copy of m, provenance included.
func Clone(m *Mapping) *Mapping {
	if m == nil {
		return nil
	}
	return copyValue(m, true).(*Mapping)
}

func copyValue(v interface{}, keepProvenance bool) interface{} {
	switch t := v.(type) {
	case *Mapping:
		out := &Mapping{
			Keys:   make([]string, len(t.Keys)),
			Values: make(map[string]interface{}, len(t.Keys)),
		}
		copy(out.Keys, t.Keys)
		for _, k := range t.Keys {
			out.Values[k] = copyValue(t.Values[k], keepProvenance)
		}
		if keepProvenance && t.Provenance != nil {
			out.Provenance = &Provenance{
				Line:     t.Provenance.Line,
				KeyLines: make(map[string]int, len(t.Provenance.KeyLines)),
			}
			for k, line := range t.Provenance.KeyLines {
				out.Provenance.KeyLines[k] = line
			}
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = copyValue(item, keepProvenance)
		}
		return out
	default:
		return v
	}
}
