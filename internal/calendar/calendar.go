// Package calendar generates the calendar dimension: one row per day from a
// fixed start date, bounded by an upstream watermark and a maximum span.
//
// Dates are represented as time.Time values at UTC midnight. Day of week uses
// 0 = Sunday through 6 = Saturday, matching time.Weekday.
package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the textual date format used in configuration and output.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Day is one row of the calendar dimension.
type Day struct {
	DateKey       time.Time `json:"date_key"`
	Year          int       `json:"year"`
	Month         int       `json:"month"`
	MonthName     string    `json:"month_name"`
	Quarter       int       `json:"quarter"`
	DayOfWeek     int       `json:"day_of_week"`
	DayName       string    `json:"day_name"`
	LoadTimestamp time.Time `json:"load_timestamp"`
}

// Watermark is the maximum date observed upstream. The zero value is an
// undefined watermark, which is what an empty upstream dataset yields.
type Watermark struct {
	Date  time.Time
	Valid bool
}

// At returns a defined watermark for the calendar day containing t.
func At(t time.Time) Watermark {
	return Watermark{Date: DateOf(t), Valid: true}
}

// Undefined returns the watermark of an empty upstream dataset.
func Undefined() Watermark {
	return Watermark{}
}

// String renders the watermark date, or "none" when undefined.
func (w Watermark) String() string {
	if !w.Valid {
		return "none"
	}
	return w.Date.Format(DateLayout)
}

// MarshalJSON encodes the watermark as a date string or null.
func (w Watermark) MarshalJSON() ([]byte, error) {
	if !w.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(w.Date.Format(DateLayout))
}

// DateOf returns the UTC midnight of t's calendar day.
// The year, month and day are taken in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// DaysBetween returns the number of whole days from a to b. Both must be
// UTC midnights; the result is negative when b is before a.
func DaysBetween(a, b time.Time) int64 {
	return (b.Unix() - a.Unix()) / secondsPerDay
}

func quarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}
