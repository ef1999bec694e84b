package task

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and input format of a due date.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// timestampLayouts are tried in order when decoding server timestamps. The
// backend emits naive UTC datetimes without an offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	DateLayout,
}

// Date is a calendar date with no time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf keeps the calendar date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts YYYY-MM-DD or a datetime, of which only the date is kept.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return DateOf(t), nil
	}
	t, err := parseTimestamp(raw)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals.
func MustParseDate(raw string) Date {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string { return d.Time().Format(DateLayout) }

// Format formats the date with a time layout.
func (d Date) Format(layout string) string { return d.Time().Format(layout) }

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Timestamp is a server-assigned instant. It decodes offsetless datetimes as
// UTC and always encodes RFC 3339.
type Timestamp struct {
	time.Time
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + ts.UTC().Format(time.RFC3339Nano) + `"`), nil
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	t, err := parseTimestamp(raw)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	ts.Time = t
	return nil
}

func parseTimestamp(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
