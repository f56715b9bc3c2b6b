package snapshot

// CloneValue deep-copies the JSON-shaped containers a snapshot may hold so
// that callers can never reach into a Context's internal state.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = CloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = CloneValue(inner)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, inner := range t {
			out[k] = inner
		}
		return out
	default:
		return v
	}
}
