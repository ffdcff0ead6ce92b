package wire

// Link returns the graph edge pointing at soul.
func Link(soul string) map[string]any { return map[string]any{"#": soul} }

// LinkOf returns the soul a value points at. A link is an object whose only
// property is "#" holding a non-empty string.
func LinkOf(v any) (string, bool) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) != 1 {
			return "", false
		}
		s, ok := t["#"].(string)
		return s, ok && s != ""
	case map[string]string:
		if len(t) != 1 {
			return "", false
		}
		s, ok := t["#"]
		return s, ok && s != ""
	}
	return "", false
}
