package component

// Payload values arrive from JSON, YAML, or Lua and carry mixed numeric
// types; these coercions keep every Deserialize tolerant of that.

func num(data map[string]any, key string) (float64, bool) {
	raw, ok := data[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func str(data map[string]any, key string) (string, bool) {
	v, ok := data[key].(string)
	return v, ok
}

func boolean(data map[string]any, key string) (bool, bool) {
	v, ok := data[key].(bool)
	return v, ok
}
