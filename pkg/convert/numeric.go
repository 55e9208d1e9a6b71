// Package convert provides type conversion utilities for values crossing
// Bifrost's boundaries.
//
// Values arriving from a bolt result row or read back from the on-disk
// property store lose their precise Go type: drivers report integers as
// int64, JSON decoding turns every number into float64, and metadata rows
// mix strings with lists. The functions here normalize those values
// without callers repeating the same type switches.
//
// All conversion functions return a success boolean so callers can handle
// unconvertible values gracefully.
//
// Example:
//
//	if n, ok := convert.ToInt64(row["count"]); ok {
//		// n is usable regardless of how the driver encoded it
//	}
package convert

import (
	"strconv"
)

// ToFloat64 converts numeric types and numeric strings to float64.
// Returns (value, true) on success, (0, false) on failure.
//
// String parsing supports decimal notation, scientific notation and the
// special values "NaN", "Inf" and "-Inf".
//
// Example:
//
//	f, ok := ToFloat64(int64(99)) // (99.0, true)
//	f, ok := ToFloat64("1.5e-3")  // (0.0015, true)
//	f, ok := ToFloat64("hello")   // (0, false)
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	case uint32:
		return float64(val), true
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// ToInt64 converts numeric types and numeric strings to int64.
// Returns (value, true) on success, (0, false) on failure.
//
// Floats are truncated toward zero, which is what a caller reading back a
// JSON-decoded integer property wants. Very large uint64 values overflow.
//
// Example:
//
//	n, ok := ToInt64(float64(42)) // (42, true)
//	n, ok := ToInt64("3.7")       // (3, true)
//	n, ok := ToInt64(true)        // (0, false)
func ToInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case uint:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		return int64(val), true
	case float64:
		return int64(val), true
	case float32:
		return int64(val), true
	case string:
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return int64(f), true
		}
	}
	return 0, false
}
