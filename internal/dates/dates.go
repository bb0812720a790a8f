// Package dates provides the calendar-date value type used across the
// service. A Date carries no time-of-day and no timezone, which keeps
// range comparisons free of off-by-one-day surprises.
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/hebcal/hebcal-go/hdate"
)

const Layout = "2006-01-02"

type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func Parse(s string) (Date, error) {
	const op = "dates.Parse"

	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%s: %w", op, err)
	}

	return FromTime(t), nil
}

// MustParse is for fixtures and tests only.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the calendar date of the given wall-clock instant.
func Today(now time.Time) Date {
	return FromTime(now)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

func (d Date) Equal(other Date) bool {
	return d == other
}

func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// WeekID returns the ISO 8601 week identifier of the date, e.g. "2024-W05".
// ISO weeks start on Monday and belong to the year of their Thursday.
func (d Date) WeekID() string {
	year, week := d.Time().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Hebrew renders the date in the Hebrew calendar, e.g. "15 Sh'vat 5784".
func (d Date) Hebrew() string {
	return hdate.FromGregorian(d.Year, d.Month, d.Day).String()
}

// FormatMinutes renders a minute count for display: "On Time" for zero or
// negative, otherwise "1h 5m" style.
func FormatMinutes(totalMinutes int) string {
	if totalMinutes <= 0 {
		return "On Time"
	}

	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}

	return strings.Join(parts, " ")
}
