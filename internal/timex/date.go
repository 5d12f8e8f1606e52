package timex

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/common"
)

// Date is a calendar date. The underlying time is always midnight UTC, so
// dates compare with Before/After/Equal without time-of-day noise.
type Date struct {
	time.Time
}

// NewDate returns the date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(common.DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected %s", s, common.DateLayout)
	}
	return Date{t}, nil
}

// MinusYears moves the date back by n years. A Feb 29 that lands on a
// non-leap year is clamped to Feb 28 instead of rolling into March.
func (d Date) MinusYears(n int) Date {
	y, m, day := d.Date()
	y -= n
	if m == time.February && day == 29 && !isLeap(y) {
		day = 28
	}
	return NewDate(y, m, day)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(common.DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}
