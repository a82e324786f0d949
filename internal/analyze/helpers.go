// Package analyze turns raw command results into typed health records and
// aggregates them into a report. Every parser is total: malformed or
// missing input produces an explicit unavailable record, never a panic and
// never a silently healthy default.
package analyze

// The value trees decoded from EOS JSON are loosely keyed; these helpers
// project fields without panicking on absent or mistyped values.

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func numberField(m map[string]any, key string) float64 {
	if m == nil {
		return 0
	}
	if f, ok := m[key].(float64); ok {
		return f
	}
	return 0
}

func objectField(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if o, ok := m[key].(map[string]any); ok {
		return o
	}
	return nil
}

func listField(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	if l, ok := m[key].([]any); ok {
		return l
	}
	return nil
}
