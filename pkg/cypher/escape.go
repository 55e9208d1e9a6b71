// Package cypher provides the value codec between native Go values and
// Cypher literal text.
//
// Every property written by Bifrost travels through EscapeValue, which
// renders a Go value as the exact literal Memgraph and Neo4j expect inside
// a Cypher statement. The reverse direction (parsing tagged temporal
// literals back into Go values) lives in temporal.go; composite wire values
// such as nodes and paths are decoded by the ogm package instead.
//
// Supported value types:
//   - nil, bool, all integer widths, float32/float64, string
//   - []any and map[string]any (rendered recursively)
//   - time.Time (zoned datetime), LocalDateTime, LocalTime, Date
//   - time.Duration and Duration
//
// Example:
//
//	literal, err := cypher.EscapeValue(map[string]any{"name": "Alice", "age": 30})
//	// literal == "{age: 30, name: 'Alice'}"
//
// Anything outside this set fails with *UnsupportedTypeError. The codec
// never falls back to fmt.Sprintf: a value it cannot render faithfully is
// a caller bug, and silently stringifying it would corrupt the graph.
package cypher

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// UnsupportedTypeError reports a value the codec cannot render as a Cypher
// literal. It names the offending Go type so the caller can fix the model
// field rather than chase a malformed statement.
type UnsupportedTypeError struct {
	Value any
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf(
		"cypher: unsupported value type %T; supported types are nil, bool, integers, floats, strings, []any, map[string]any and the temporal types",
		e.Value,
	)
}

// EscapeValue renders a Go value as Cypher literal text.
//
// Scalars use their direct literal form, strings are repr-quoted so they
// are safe inside a statement, containers render recursively and temporal
// values use the tagged function forms (datetime(...), duration(...), ...).
//
// Example:
//
//	EscapeValue(nil)            // "Null"
//	EscapeValue(true)           // "True"
//	EscapeValue(4.5)            // "4.5"
//	EscapeValue("it's")         // `"it's"`
//	EscapeValue([]any{1, 2})    // "[1, 2]"
//	EscapeValue(26*time.Hour)   // "duration('P1DT2H0M0.0S')"
func EscapeValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "Null", nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return formatFloat(float64(v)), nil
	case float64:
		return formatFloat(v), nil
	case string:
		return escapeString(v), nil
	case []any:
		return escapeList(v)
	case map[string]any:
		return escapeMap(v)
	case time.Time:
		return escapeDateTime(v), nil
	case LocalDateTime:
		return fmt.Sprintf("localDateTime('%s')", v), nil
	case LocalTime:
		return fmt.Sprintf("localTime('%s')", v), nil
	case Date:
		return fmt.Sprintf("date('%s')", v), nil
	case time.Duration:
		return fmt.Sprintf("duration('%s')", formatTimeDuration(v)), nil
	case Duration:
		return fmt.Sprintf("duration('%s')", v), nil
	case *Duration:
		if v == nil {
			return "Null", nil
		}
		return fmt.Sprintf("duration('%s')", v), nil
	default:
		return "", &UnsupportedTypeError{Value: value}
	}
}

func escapeList(values []any) (string, error) {
	parts := make([]string, len(values))
	for i, v := range values {
		literal, err := EscapeValue(v)
		if err != nil {
			return "", err
		}
		parts[i] = literal
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

// Map keys are sorted so the same map always renders the same literal.
// Cypher map keys are bare identifiers and are emitted unquoted.
func escapeMap(values map[string]any) (string, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		literal, err := EscapeValue(values[k])
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s: %s", k, literal))
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

// escapeString quotes a string for use as a Cypher literal.
//
// Printable strings get repr-style quoting: single quotes by default,
// double quotes when the string contains a single quote but no double
// quote, backslashes and the active quote escaped. Strings with
// non-printable runes are emitted raw inside single quotes so control
// bytes pass through untouched.
func escapeString(s string) string {
	if !isPrintable(s) {
		return "'" + s + "'"
	}

	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte(quote)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || c == quote {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	sb.WriteByte(quote)
	return sb.String()
}

func isPrintable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// formatFloat renders a float with the shortest representation that
// round-trips, always keeping a decimal point or exponent so the database
// stores it as a float rather than an integer.
func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "Inf"
	}
	if math.IsInf(f, -1) {
		return "-Inf"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// escapeDateTime renders a zoned instant using the datetime-with-zone
// literal form: ISO local time, numeric UTC offset and zone name.
//
//	datetime('2024-03-01T12:30:00+0100[CET]')
func escapeDateTime(t time.Time) string {
	name, _ := t.Zone()
	return fmt.Sprintf("datetime('%s%s[%s]')", t.Format("2006-01-02T15:04:05"), t.Format("-0700"), name)
}

// formatTimeDuration converts a Go duration to the PnDTnHnMnS wire form by
// decomposing total seconds: days first, then successive remainder
// division by 3600 and 60. Every component is present, the seconds
// component keeps its fractional part.
//
//	formatTimeDuration(26*time.Hour + 3*time.Minute + 4500*time.Millisecond)
//	// "P1DT2H3M4.5S"
func formatTimeDuration(d time.Duration) string {
	total := d.Seconds()
	days := int64(math.Floor(total / 86400))
	remainder := total - float64(days)*86400
	hours := int64(remainder / 3600)
	remainder -= float64(hours) * 3600
	minutes := int64(remainder / 60)
	remainder -= float64(minutes) * 60

	return fmt.Sprintf("P%dDT%dH%dM%sS", days, hours, minutes, formatFloat(remainder))
}
