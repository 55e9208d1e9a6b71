// Temporal types for the Cypher value codec.
//
// Go's time.Time always carries a location, so it maps onto the zoned
// datetime literal. The naive temporal kinds that Cypher distinguishes
// (local datetime, local time, bare date) and the component-based duration
// get their own types here, each with an ISO-8601 String form that slots
// directly into the tagged literal the codec emits.
package cypher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Duration is a Neo4j-compatible duration with separate calendar and clock
// components.
//
// Calendar units (years, months, days) are stored separately from clock
// units because they have variable lengths: a month is 28-31 days and a
// year is 365 or 366. Clock units are exact.
//
// # Example
//
//	dur := cypher.Duration{Days: 1, Hours: 2, Minutes: 30}
//	fmt.Println(dur.String()) // P1DT2H30M
type Duration struct {
	Years   int64
	Months  int64
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
	Nanos   int64
}

// DurationOf decomposes a Go duration into days, hours, minutes, seconds
// and nanoseconds. Calendar years and months are never produced because a
// time.Duration has no calendar context.
func DurationOf(d time.Duration) Duration {
	total := d.Nanoseconds()
	return Duration{
		Days:    total / (24 * int64(time.Hour)),
		Hours:   (total / int64(time.Hour)) % 24,
		Minutes: (total / int64(time.Minute)) % 60,
		Seconds: (total / int64(time.Second)) % 60,
		Nanos:   total % int64(time.Second),
	}
}

// String returns the duration in ISO 8601 format: P[n]Y[n]M[n]DT[n]H[n]M[n]S.
// Only non-zero components are included; the zero duration is "PT0S".
func (d Duration) String() string {
	var sb strings.Builder
	sb.WriteString("P")
	if d.Years > 0 {
		fmt.Fprintf(&sb, "%dY", d.Years)
	}
	if d.Months > 0 {
		fmt.Fprintf(&sb, "%dM", d.Months)
	}
	if d.Days > 0 {
		fmt.Fprintf(&sb, "%dD", d.Days)
	}
	if d.Hours > 0 || d.Minutes > 0 || d.Seconds > 0 || d.Nanos > 0 {
		sb.WriteString("T")
		if d.Hours > 0 {
			fmt.Fprintf(&sb, "%dH", d.Hours)
		}
		if d.Minutes > 0 {
			fmt.Fprintf(&sb, "%dM", d.Minutes)
		}
		if d.Seconds > 0 || d.Nanos > 0 {
			if d.Nanos > 0 {
				frac := strings.TrimRight(fmt.Sprintf("%09d", d.Nanos), "0")
				fmt.Fprintf(&sb, "%d.%sS", d.Seconds, frac)
			} else {
				fmt.Fprintf(&sb, "%dS", d.Seconds)
			}
		}
	}
	if sb.Len() == 1 {
		sb.WriteString("T0S")
	}
	return sb.String()
}

// ToTimeDuration converts the clock and day components to a time.Duration.
// Years and months are approximated the same way TotalSeconds does, since
// they need calendar context for an exact answer.
func (d Duration) ToTimeDuration() time.Duration {
	total := time.Duration(float64(d.Years) * 365.25 * 24 * float64(time.Hour))
	total += time.Duration(float64(d.Months) * 30.4375 * 24 * float64(time.Hour))
	total += time.Duration(d.Days) * 24 * time.Hour
	total += time.Duration(d.Hours) * time.Hour
	total += time.Duration(d.Minutes) * time.Minute
	total += time.Duration(d.Seconds) * time.Second
	total += time.Duration(d.Nanos) * time.Nanosecond
	return total
}

// TotalSeconds returns the approximate total number of seconds, assuming
// 1 year = 365.25 days and 1 month = 30.4375 days.
func (d Duration) TotalSeconds() float64 {
	return float64(d.Years)*365.25*86400 + float64(d.Months)*30.4375*86400 +
		float64(d.Days)*86400 + float64(d.Hours)*3600 + float64(d.Minutes)*60 +
		float64(d.Seconds) + float64(d.Nanos)/1e9
}

var (
	durationDateRE = regexp.MustCompile(`(\d+)([YMD])`)
	durationTimeRE = regexp.MustCompile(`(\d+\.?\d*)([HMS])`)
)

// ParseDuration parses an ISO 8601 duration string such as
// "P1Y2M3DT4H5M6S" or "P1DT2H3M4.5S" into a Duration.
func ParseDuration(s string) (Duration, error) {
	trimmed := strings.Trim(s, "'\"")
	if !strings.HasPrefix(strings.ToUpper(trimmed), "P") {
		return Duration{}, fmt.Errorf("invalid duration %q: missing P designator", s)
	}

	var d Duration
	body := strings.ToUpper(trimmed[1:])

	datePart := body
	timePart := ""
	if tIndex := strings.Index(body, "T"); tIndex >= 0 {
		datePart = body[:tIndex]
		timePart = body[tIndex+1:]
	}

	dateMatches := durationDateRE.FindAllStringSubmatch(datePart, -1)
	timeMatches := durationTimeRE.FindAllStringSubmatch(timePart, -1)
	if len(dateMatches) == 0 && len(timeMatches) == 0 {
		return Duration{}, fmt.Errorf("invalid duration %q: no components", s)
	}

	for _, match := range dateMatches {
		val, _ := strconv.ParseInt(match[1], 10, 64)
		switch match[2] {
		case "Y":
			d.Years = val
		case "M":
			d.Months = val
		case "D":
			d.Days = val
		}
	}

	for _, match := range timeMatches {
		switch match[2] {
		case "H":
			d.Hours, _ = strconv.ParseInt(match[1], 10, 64)
		case "M":
			d.Minutes, _ = strconv.ParseInt(match[1], 10, 64)
		case "S":
			if whole, frac, ok := strings.Cut(match[1], "."); ok {
				d.Seconds, _ = strconv.ParseInt(whole, 10, 64)
				for len(frac) < 9 {
					frac += "0"
				}
				d.Nanos, _ = strconv.ParseInt(frac[:9], 10, 64)
			} else {
				d.Seconds, _ = strconv.ParseInt(match[1], 10, 64)
			}
		}
	}

	return d, nil
}

// LocalDateTime is a datetime without a timezone, rendered with the
// localDateTime(...) literal form.
type LocalDateTime struct {
	t time.Time
}

// LocalDateTimeOf strips the location from an instant, keeping its wall
// clock reading.
func LocalDateTimeOf(t time.Time) LocalDateTime {
	return LocalDateTime{t: t}
}

// Time returns the wall-clock reading in UTC.
func (l LocalDateTime) Time() time.Time {
	return time.Date(l.t.Year(), l.t.Month(), l.t.Day(), l.t.Hour(), l.t.Minute(), l.t.Second(), l.t.Nanosecond(), time.UTC)
}

func (l LocalDateTime) String() string {
	return l.t.Format("2006-01-02T15:04:05") + fraction(l.t.Nanosecond())
}

// ParseLocalDateTime parses "2006-01-02T15:04:05" with an optional
// fractional second part.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, strings.Trim(s, "'\"")); err == nil {
			return LocalDateTime{t: t}, nil
		}
	}
	return LocalDateTime{}, fmt.Errorf("invalid local datetime %q", s)
}

// LocalTime is a time of day without a date or timezone, rendered with the
// localTime(...) literal form.
type LocalTime struct {
	Hour   int
	Minute int
	Second int
	Nanos  int
}

// LocalTimeOf extracts the time-of-day components of an instant.
func LocalTimeOf(t time.Time) LocalTime {
	return LocalTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nanos: t.Nanosecond()}
}

func (l LocalTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d%s", l.Hour, l.Minute, l.Second, fraction(l.Nanos))
}

// ParseLocalTime parses "15:04:05" with an optional fractional second part.
func ParseLocalTime(s string) (LocalTime, error) {
	for _, layout := range []string{"15:04:05.999999999", "15:04:05", "15:04"} {
		if t, err := time.Parse(layout, strings.Trim(s, "'\"")); err == nil {
			return LocalTimeOf(t), nil
		}
	}
	return LocalTime{}, fmt.Errorf("invalid local time %q", s)
}

// Date is a calendar date without a time or timezone, rendered with the
// date(...) literal form.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar date of an instant.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC on the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.Trim(s, "'\""))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return DateOf(t), nil
}

// fraction renders sub-second precision as microseconds, the way ISO
// formatting does, or nothing when the value is whole.
func fraction(nanos int) string {
	if nanos == 0 {
		return ""
	}
	return fmt.Sprintf(".%06d", nanos/1000)
}
