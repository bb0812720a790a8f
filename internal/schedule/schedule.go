// Package schedule resolves the effective class schedule for a date and
// classifies sections against the wall clock.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"attendance-service/internal/dates"
	"attendance-service/internal/models"
)

type State int

const (
	Future State = iota
	Active
	Past
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Past:
		return "past"
	default:
		return "future"
	}
}

// StartMinutes parses an "HH:MM" start time into minutes since midnight.
// Malformed input resolves to 0 rather than failing a whole schedule pass.
func StartMinutes(hhmm string) int {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return h*60 + m
}

// Ordered returns a copy of sections in their canonical total order:
// by start time, ties broken by id. Absence-range section boundaries are
// interpreted via this ordering's index.
func Ordered(sections []models.Section) []models.Section {
	out := make([]models.Section, len(sections))
	copy(out, sections)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Resolve returns the ordered sections with start times replaced by the
// matching override for the exact date, else the base value. Duration is
// never overridden.
func Resolve(sections []models.Section, overrides []models.ScheduleOverride, date dates.Date) []models.Section {
	out := Ordered(sections)
	for i, sec := range out {
		for _, o := range overrides {
			if o.SectionID == sec.ID && o.Date.Equal(date) {
				out[i].StartTime = o.NewStartTime
			}
		}
	}
	return out
}

// Classify reports whether a section on a date is Past, Active or Future as
// of now. Pure function of the clock; callers that need live classification
// re-evaluate on a timer.
func Classify(sec models.Section, date dates.Date, now time.Time) State {
	today := dates.Today(now)
	nowMinutes := now.Hour()*60 + now.Minute()
	start := StartMinutes(sec.StartTime)

	switch {
	case date.Before(today):
		return Past
	case date.Equal(today) && nowMinutes >= start+sec.Duration:
		return Past
	case date.Equal(today) && nowMinutes >= start:
		return Active
	default:
		return Future
	}
}

// ActiveSection returns the last section (in start-time order) whose
// effective start time is <= now. Only meaningful for today's date; any
// other date, or a morning before the first section, yields nil.
func ActiveSection(sections []models.Section, overrides []models.ScheduleOverride, date dates.Date, now time.Time) *models.Section {
	if !date.Equal(dates.Today(now)) {
		return nil
	}

	nowMinutes := now.Hour()*60 + now.Minute()

	var active *models.Section
	for _, sec := range Resolve(sections, overrides, date) {
		if StartMinutes(sec.StartTime) <= nowMinutes {
			s := sec
			active = &s
		}
	}
	return active
}

// Find returns the section with the given id, or false for a stale id.
func Find(sections []models.Section, id string) (models.Section, bool) {
	for _, sec := range sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return models.Section{}, false
}

// ApplyOverride replaces any existing override for the same (date, section)
// pair, keeping at most one per pair.
func ApplyOverride(overrides []models.ScheduleOverride, o models.ScheduleOverride) []models.ScheduleOverride {
	out := overrides[:0:0]
	for _, existing := range overrides {
		if existing.SectionID == o.SectionID && existing.Date.Equal(o.Date) {
			continue
		}
		out = append(out, existing)
	}
	return append(out, o)
}

// RemoveOverride drops the override for (date, section) if present.
func RemoveOverride(overrides []models.ScheduleOverride, date dates.Date, sectionID string) []models.ScheduleOverride {
	out := overrides[:0:0]
	for _, existing := range overrides {
		if existing.SectionID == sectionID && existing.Date.Equal(date) {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// Label renders a section for display, e.g. "Class 1 (09:00)".
func Label(sec models.Section) string {
	return fmt.Sprintf("%s (%s)", sec.Name, sec.StartTime)
}
