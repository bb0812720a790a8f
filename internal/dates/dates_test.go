package dates

import (
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Date
		wantErr bool
	}{
		{name: "valid", in: "2024-01-05", want: Date{2024, time.January, 5}},
		{name: "leap day", in: "2024-02-29", want: Date{2024, time.February, 29}},
		{name: "not a date", in: "yesterday", wantErr: true},
		{name: "time component", in: "2024-01-05T10:00:00Z", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	d := MustParse("2023-11-09")
	if d.String() != "2023-11-09" {
		t.Errorf("String() = %q, want %q", d.String(), "2023-11-09")
	}
}

func TestOrdering(t *testing.T) {
	a := MustParse("2024-01-01")
	b := MustParse("2024-01-02")

	if !a.Before(b) || b.Before(a) {
		t.Error("Before misordered")
	}
	if !b.After(a) || a.After(b) {
		t.Error("After misordered")
	}
	if !a.Equal(a) || a.Equal(b) {
		t.Error("Equal broken")
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		in   string
		days int
		want string
	}{
		{"2024-01-31", 1, "2024-02-01"},
		{"2024-03-01", -1, "2024-02-29"},
		{"2023-12-31", 1, "2024-01-01"},
	}
	for _, tt := range tests {
		if got := MustParse(tt.in).AddDays(tt.days).String(); got != tt.want {
			t.Errorf("%s + %d days = %s, want %s", tt.in, tt.days, got, tt.want)
		}
	}
}

func TestWeekID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		// ISO weeks start Monday; week 1 contains the year's first Thursday.
		{"2024-01-01", "2024-W01"},
		{"2024-01-07", "2024-W01"},
		{"2024-01-08", "2024-W02"},
		{"2023-01-01", "2022-W52"}, // a Sunday belonging to the prior ISO year
		{"2026-12-31", "2026-W53"},
	}
	for _, tt := range tests {
		if got := MustParse(tt.in).WeekID(); got != tt.want {
			t.Errorf("WeekID(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2024, time.May, 17, 23, 59, 0, 0, time.UTC)
	if got := Today(now); got != MustParse("2024-05-17") {
		t.Errorf("Today() = %v", got)
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "On Time"},
		{-5, "On Time"},
		{9, "9m"},
		{60, "1h"},
		{75, "1h 15m"},
	}
	for _, tt := range tests {
		if got := FormatMinutes(tt.in); got != tt.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHebrew(t *testing.T) {
	// Spot check that the conversion lands in the right Hebrew year.
	got := MustParse("2024-01-15").Hebrew()
	if got == "" {
		t.Fatal("Hebrew() returned empty string")
	}
	if want := "5784"; !strings.Contains(got, want) {
		t.Errorf("Hebrew() = %q, want year %s", got, want)
	}
}
