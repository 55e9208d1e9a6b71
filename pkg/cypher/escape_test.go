package cypher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeValueScalars(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"nil", nil, "Null"},
		{"true", true, "True"},
		{"false", false, "False"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"uint", uint(9), "9"},
		{"float", 3.14, "3.14"},
		{"float whole", 4.0, "4.0"},
		{"float32", float32(2.5), "2.5"},
		{"string plain", "hello", "'hello'"},
		{"string empty", "", "''"},
		{"string with single quote", "it's", `"it's"`},
		{"string with both quotes", `he said "it's"`, `'he said "it\'s"'`},
		{"string with backslash", `a\b`, `'a\\b'`},
		{"string non-printable", "line\nbreak", "'line\nbreak'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EscapeValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEscapeValueContainers(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		got, err := EscapeValue([]any{1, "two", true, nil})
		require.NoError(t, err)
		assert.Equal(t, "[1, 'two', True, Null]", got)
	})

	t.Run("nested list", func(t *testing.T) {
		got, err := EscapeValue([]any{[]any{1, 2}, []any{}})
		require.NoError(t, err)
		assert.Equal(t, "[[1, 2], []]", got)
	})

	t.Run("map keys sorted", func(t *testing.T) {
		got, err := EscapeValue(map[string]any{"b": 2, "a": "one"})
		require.NoError(t, err)
		assert.Equal(t, "{a: 'one', b: 2}", got)
	})

	t.Run("map nested", func(t *testing.T) {
		got, err := EscapeValue(map[string]any{"inner": map[string]any{"x": 1}})
		require.NoError(t, err)
		assert.Equal(t, "{inner: {x: 1}}", got)
	})

	t.Run("unsupported element propagates", func(t *testing.T) {
		_, err := EscapeValue([]any{struct{}{}})
		var unsupported *UnsupportedTypeError
		require.ErrorAs(t, err, &unsupported)
	})
}

func TestEscapeValueTemporal(t *testing.T) {
	t.Run("zoned datetime", func(t *testing.T) {
		loc := time.FixedZone("CET", 3600)
		got, err := EscapeValue(time.Date(2024, 3, 1, 12, 30, 0, 0, loc))
		require.NoError(t, err)
		assert.Equal(t, "datetime('2024-03-01T12:30:00+0100[CET]')", got)
	})

	t.Run("utc datetime", func(t *testing.T) {
		got, err := EscapeValue(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "datetime('2024-03-01T12:30:00+0000[UTC]')", got)
	})

	t.Run("local datetime", func(t *testing.T) {
		got, err := EscapeValue(LocalDateTimeOf(time.Date(2024, 3, 1, 12, 30, 15, 0, time.UTC)))
		require.NoError(t, err)
		assert.Equal(t, "localDateTime('2024-03-01T12:30:15')", got)
	})

	t.Run("local time", func(t *testing.T) {
		got, err := EscapeValue(LocalTime{Hour: 9, Minute: 5, Second: 1})
		require.NoError(t, err)
		assert.Equal(t, "localTime('09:05:01')", got)
	})

	t.Run("date", func(t *testing.T) {
		got, err := EscapeValue(Date{Year: 2024, Month: time.March, Day: 1})
		require.NoError(t, err)
		assert.Equal(t, "date('2024-03-01')", got)
	})

	t.Run("go duration with fraction", func(t *testing.T) {
		d := 24*time.Hour + 2*time.Hour + 3*time.Minute + 4500*time.Millisecond
		got, err := EscapeValue(d)
		require.NoError(t, err)
		assert.Equal(t, "duration('P1DT2H3M4.5S')", got)
	})

	t.Run("go duration whole seconds", func(t *testing.T) {
		got, err := EscapeValue(90 * time.Second)
		require.NoError(t, err)
		assert.Equal(t, "duration('P0DT0H1M30.0S')", got)
	})

	t.Run("component duration", func(t *testing.T) {
		got, err := EscapeValue(Duration{Years: 1, Months: 6, Days: 15, Hours: 2, Minutes: 30, Seconds: 45})
		require.NoError(t, err)
		assert.Equal(t, "duration('P1Y6M15DT2H30M45S')", got)
	})
}

func TestEscapeValueUnsupported(t *testing.T) {
	type opaque struct{ x int }

	_, err := EscapeValue(opaque{x: 1})
	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Contains(t, err.Error(), "opaque")
}

func TestDurationString(t *testing.T) {
	tests := []struct {
		name     string
		dur      Duration
		expected string
	}{
		{"zero", Duration{}, "PT0S"},
		{"days only", Duration{Days: 5}, "P5D"},
		{"clock only", Duration{Hours: 2, Minutes: 30}, "PT2H30M"},
		{"full", Duration{Years: 1, Months: 2, Days: 3, Hours: 4, Minutes: 5, Seconds: 6}, "P1Y2M3DT4H5M6S"},
		{"fractional seconds", Duration{Seconds: 4, Nanos: 500000000}, "PT4.5S"},
		{"millisecond fraction", Duration{Seconds: 4, Nanos: 123000000}, "PT4.123S"},
		{"single nanosecond", Duration{Nanos: 1}, "PT0.000000001S"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dur.String())
		})
	}
}

func TestParseDurationRoundTrip(t *testing.T) {
	tests := []string{"P5D", "PT2H30M", "P1Y2M3DT4H5M6S", "PT0S", "P1DT2H3M4.5S"}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			d, err := ParseDuration(s)
			require.NoError(t, err)
			assert.Equal(t, s, d.String())
		})
	}

	t.Run("fractional", func(t *testing.T) {
		d, err := ParseDuration("P1DT2H3M4.5S")
		require.NoError(t, err)
		assert.Equal(t, int64(1), d.Days)
		assert.Equal(t, int64(2), d.Hours)
		assert.Equal(t, int64(3), d.Minutes)
		assert.Equal(t, int64(4), d.Seconds)
		assert.Equal(t, int64(500000000), d.Nanos)
	})

	t.Run("quoted", func(t *testing.T) {
		d, err := ParseDuration("'PT45S'")
		require.NoError(t, err)
		assert.Equal(t, int64(45), d.Seconds)
	})

	t.Run("missing designator", func(t *testing.T) {
		_, err := ParseDuration("1DT2H")
		require.Error(t, err)
	})

	t.Run("no components", func(t *testing.T) {
		_, err := ParseDuration("Pxyz")
		require.Error(t, err)
		_, err = ParseDuration("P")
		require.Error(t, err)
	})
}

func TestDurationOf(t *testing.T) {
	d := DurationOf(26*time.Hour + 3*time.Minute + 4*time.Second)
	assert.Equal(t, Duration{Days: 1, Hours: 2, Minutes: 3, Seconds: 4}, d)
	assert.Equal(t, 26*time.Hour+3*time.Minute+4*time.Second, d.ToTimeDuration())
}

func TestTemporalRoundTrip(t *testing.T) {
	t.Run("local datetime", func(t *testing.T) {
		in := LocalDateTimeOf(time.Date(2025, 6, 15, 8, 45, 30, 0, time.UTC))
		out, err := ParseLocalDateTime(in.String())
		require.NoError(t, err)
		assert.Equal(t, in.Time(), out.Time())
	})

	t.Run("local time", func(t *testing.T) {
		in := LocalTime{Hour: 23, Minute: 59, Second: 59}
		out, err := ParseLocalTime(in.String())
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("date", func(t *testing.T) {
		in := Date{Year: 2025, Month: time.December, Day: 31}
		out, err := ParseDate(in.String())
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})
}
