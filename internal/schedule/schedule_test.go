package schedule

import (
	"testing"
	"time"

	"attendance-service/internal/dates"
	"attendance-service/internal/models"
)

var testSections = []models.Section{
	{ID: "s3", Name: "Class 3", StartTime: "11:00", Duration: 45},
	{ID: "s1", Name: "Class 1", StartTime: "09:00", Duration: 50},
	{ID: "s2", Name: "Class 2", StartTime: "10:00", Duration: 50},
}

func at(t *testing.T, day, clock string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", day+" "+clock)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func TestOrdered(t *testing.T) {
	got := Ordered(testSections)
	want := []string{"s1", "s2", "s3"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("Ordered()[%d] = %s, want %s", i, got[i].ID, id)
		}
	}

	// Ties on start time fall back to id for a stable total order.
	tied := []models.Section{
		{ID: "b", StartTime: "09:00"},
		{ID: "a", StartTime: "09:00"},
	}
	if got := Ordered(tied); got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("tie break by id failed: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestResolve(t *testing.T) {
	date := dates.MustParse("2024-01-10")
	overrides := []models.ScheduleOverride{
		{Date: date, SectionID: "s2", NewStartTime: "10:30"},
		{Date: dates.MustParse("2024-01-11"), SectionID: "s1", NewStartTime: "08:00"},
	}

	got := Resolve(testSections, overrides, date)

	if got[1].ID != "s2" || got[1].StartTime != "10:30" {
		t.Errorf("override not applied: %+v", got[1])
	}
	if got[0].StartTime != "09:00" {
		t.Errorf("other-date override leaked onto s1: %+v", got[0])
	}
	if got[1].Duration != 50 {
		t.Errorf("override must not change duration, got %d", got[1].Duration)
	}
}

func TestClassify(t *testing.T) {
	sec := models.Section{ID: "s1", StartTime: "09:00", Duration: 50}
	today := dates.MustParse("2024-01-10")

	tests := []struct {
		name  string
		date  dates.Date
		clock string
		want  State
	}{
		{name: "yesterday is past", date: today.AddDays(-1), clock: "08:00", want: Past},
		{name: "tomorrow is future", date: today.AddDays(1), clock: "23:00", want: Future},
		{name: "before start", date: today, clock: "08:59", want: Future},
		{name: "at start", date: today, clock: "09:00", want: Active},
		{name: "mid class", date: today, clock: "09:10", want: Active},
		{name: "last minute", date: today, clock: "09:49", want: Active},
		{name: "at end", date: today, clock: "09:50", want: Past},
		{name: "after end", date: today, clock: "12:00", want: Past},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := at(t, "2024-01-10", tt.clock)
			if got := Classify(sec, tt.date, now); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActiveSection(t *testing.T) {
	today := dates.MustParse("2024-01-10")

	tests := []struct {
		name  string
		date  dates.Date
		clock string
		want  string // "" means nil
	}{
		{name: "not today", date: today.AddDays(-1), clock: "10:30", want: ""},
		{name: "before first section", date: today, clock: "07:00", want: ""},
		{name: "first started", date: today, clock: "09:05", want: "s1"},
		{name: "latest started wins", date: today, clock: "10:30", want: "s2"},
		{name: "after all, still last", date: today, clock: "15:00", want: "s3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActiveSection(testSections, nil, tt.date, at(t, "2024-01-10", tt.clock))
			switch {
			case tt.want == "" && got != nil:
				t.Errorf("ActiveSection() = %s, want nil", got.ID)
			case tt.want != "" && (got == nil || got.ID != tt.want):
				t.Errorf("ActiveSection() = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestActiveSectionHonorsOverride(t *testing.T) {
	today := dates.MustParse("2024-01-10")
	overrides := []models.ScheduleOverride{
		{Date: today, SectionID: "s2", NewStartTime: "10:45"},
	}

	// At 10:30 the overridden s2 has not started yet, so s1 is still active.
	got := ActiveSection(testSections, overrides, today, at(t, "2024-01-10", "10:30"))
	if got == nil || got.ID != "s1" {
		t.Fatalf("ActiveSection() = %v, want s1", got)
	}
}

func TestApplyOverrideReplaces(t *testing.T) {
	date := dates.MustParse("2024-01-10")
	overrides := ApplyOverride(nil, models.ScheduleOverride{Date: date, SectionID: "s1", NewStartTime: "09:30"})
	overrides = ApplyOverride(overrides, models.ScheduleOverride{Date: date, SectionID: "s1", NewStartTime: "09:45"})

	if len(overrides) != 1 {
		t.Fatalf("want 1 override per (date, section), got %d", len(overrides))
	}
	if overrides[0].NewStartTime != "09:45" {
		t.Errorf("later save must replace: got %s", overrides[0].NewStartTime)
	}

	overrides = RemoveOverride(overrides, date, "s1")
	if len(overrides) != 0 {
		t.Errorf("RemoveOverride left %d entries", len(overrides))
	}
}

func TestStartMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"09:05", 545},
		{"23:59", 1439},
		{"garbage", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := StartMinutes(tt.in); got != tt.want {
			t.Errorf("StartMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
