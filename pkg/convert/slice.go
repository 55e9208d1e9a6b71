package convert

// ToFloat64Slice converts slice types to []float64.
// Returns (slice, true) on success, (nil, false) on failure.
//
// A []any input, the shape list properties come back in from a result
// row, converts element-wise via ToFloat64 and fails when any element is
// not numeric.
//
// Example:
//
//	s, ok := ToFloat64Slice([]any{1, 2.5, "3"}) // ([1.0, 2.5, 3.0], true)
func ToFloat64Slice(v any) ([]float64, bool) {
	switch val := v.(type) {
	case []float64:
		return val, true
	case []float32:
		result := make([]float64, len(val))
		for i, f := range val {
			result[i] = float64(f)
		}
		return result, true
	case []any:
		result := make([]float64, len(val))
		for i, item := range val {
			f, ok := ToFloat64(item)
			if !ok {
				return nil, false
			}
			result[i] = f
		}
		return result, true
	}
	return nil, false
}

// ToStringSlice converts slice types to []string.
// Returns the slice on success, nil on failure.
//
// Backends disagree on whether a single-valued list column is a string
// or a list; a bare string input comes back as a one-element slice.
//
// Example:
//
//	s := ToStringSlice([]any{"a", "b"}) // ["a", "b"]
//	s := ToStringSlice("a")             // ["a"]
func ToStringSlice(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case string:
		return []string{val}
	case []any:
		result := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil
			}
			result[i] = s
		}
		return result
	}
	return nil
}
