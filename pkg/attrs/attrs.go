// Package attrs reads values back out of the flat [key1, value1, key2,
// value2, ...] attribute slices used for slog calls, so audit emission can
// reuse the attributes a call site already builds for logging.
package attrs

// ExtractString returns the string value stored under key, or "" when the
// key is absent or its value is not a string. Non-string keys are skipped.
func ExtractString(attrs []any, key string) string {
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); !ok || k != key {
			continue
		}
		v, _ := attrs[i+1].(string)
		return v
	}
	return ""
}

// First returns the value of the first key in keys present in the attribute
// slice. Audit emission uses it to pick the event subject out of log
// attributes without each call site repeating the precedence.
func First(attrs []any, keys ...string) string {
	for _, key := range keys {
		if v := ExtractString(attrs, key); v != "" {
			return v
		}
	}
	return ""
}
