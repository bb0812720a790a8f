// Package report turns daily attendance records into minutes-present /
// minutes-possible statistics per person, per class and per ISO week.
package report

import (
	"sort"
	"strconv"
	"time"

	"attendance-service/internal/absence"
	"attendance-service/internal/dates"
	"attendance-service/internal/models"
	"attendance-service/internal/schedule"
)

// NotAvailable is emitted when a person has zero possible minutes in range.
const NotAvailable = "N/A"

// Range optionally bounds a report to [Start, End], inclusive. Nil bounds
// are open.
type Range struct {
	Start *dates.Date
	End   *dates.Date
}

func (r Range) contains(d dates.Date) bool {
	if r.Start != nil && d.Before(*r.Start) {
		return false
	}
	if r.End != nil && d.After(*r.End) {
		return false
	}
	return true
}

type ClassStats struct {
	MinutesPossible int
	MinutesAttended int
	Percentage      string
}

type Summary struct {
	PresentPercentage string
	TotalMinutesLate  int
	PerClass          map[string]ClassStats
}

type WeekPoint struct {
	Week       string
	Percentage float64
}

// sortedDates gives a deterministic iteration order over the attendance map.
func sortedDates(all map[dates.Date]models.DayRecords, rng Range) []dates.Date {
	out := make([]dates.Date, 0, len(all))
	for d := range all {
		if rng.contains(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// ComputeSummary walks every in-range (date, section) pair and accumulates
// possible/attended minutes for the person.
//
// A pair contributes to the denominator only when the section is past or
// active as of now and at least one person has an explicit record for it;
// a class nobody was marked for never ran and counts for no one. Given it
// ran: exempt and Excused cells contribute nothing; OnTime, Late and Absent
// contribute their duration (Late crediting duration minus lateness); an
// unmarked cell counts as implicitly absent while the class is still in
// progress and as implicitly excused once it is past.
//
// TotalMinutesLate is the raw sum over the person's explicit Late records
// in range, deliberately unfiltered by the class-held and exemption rules.
func ComputeSummary(personID string, all map[dates.Date]models.DayRecords, sections []models.Section, overrides []models.ScheduleOverride, rng Range, outs []models.OutRecord, now time.Time) Summary {
	ordered := schedule.Ordered(sections)

	perClass := make(map[string]ClassStats, len(ordered))
	for _, sec := range ordered {
		perClass[sec.ID] = ClassStats{Percentage: NotAvailable}
	}

	totalPossible := 0
	totalAttended := 0
	totalLate := 0

	for _, date := range sortedDates(all, rng) {
		day := all[date]

		for _, rec := range day[personID] {
			if rec.Status == models.Late {
				totalLate += rec.MinutesLate
			}
		}

		for _, sec := range schedule.Resolve(sections, overrides, date) {
			state := schedule.Classify(sec, date, now)
			if state != schedule.Past && state != schedule.Active {
				continue
			}
			if !day.SectionHeld(sec.ID) {
				continue
			}

			rec, marked := day.Get(personID, sec.ID)
			exempt := absence.MarkedOut(personID, date, sec.ID, ordered, outs).Exempt

			possible, attended := 0, 0
			switch {
			case exempt || (marked && rec.Status == models.Excused):
				// Excused minutes exist in neither numerator nor
				// denominator.
			case marked && rec.Status == models.OnTime:
				possible, attended = sec.Duration, sec.Duration
			case marked && rec.Status == models.Late:
				possible = sec.Duration
				attended = sec.Duration - rec.MinutesLate
				if attended < 0 {
					attended = 0
				}
			case marked && rec.Status == models.Absent:
				possible = sec.Duration
			case !marked && state == schedule.Active:
				// Implicitly absent while the class is in progress.
				possible = sec.Duration
			default:
				// Not marked and past: implicitly excused.
			}

			if possible == 0 {
				continue
			}

			totalPossible += possible
			totalAttended += attended
			stats := perClass[sec.ID]
			stats.MinutesPossible += possible
			stats.MinutesAttended += attended
			perClass[sec.ID] = stats
		}
	}

	for id, stats := range perClass {
		if stats.MinutesPossible > 0 {
			stats.Percentage = formatPercentage(stats.MinutesAttended, stats.MinutesPossible)
			perClass[id] = stats
		}
	}

	overall := NotAvailable
	if totalPossible > 0 {
		overall = formatPercentage(totalAttended, totalPossible)
	}

	return Summary{
		PresentPercentage: overall,
		TotalMinutesLate:  totalLate,
		PerClass:          perClass,
	}
}

// WeeklySeries buckets held, non-exempt (date, section) pairs by the ISO
// week of the date and computes the same percentage per bucket. Unlike the
// summary, an unmarked cell of a held class always counts against the
// person here, which is what makes the weekly trend line drop for skipped
// days. Weeks with zero possible minutes are omitted; output is ascending
// by week identifier.
func WeeklySeries(personID string, all map[dates.Date]models.DayRecords, sections []models.Section, overrides []models.ScheduleOverride, rng Range, outs []models.OutRecord) []WeekPoint {
	ordered := schedule.Ordered(sections)

	type bucket struct{ possible, attended int }
	weeks := make(map[string]*bucket)

	for _, date := range sortedDates(all, rng) {
		day := all[date]
		weekID := date.WeekID()

		for _, sec := range schedule.Resolve(sections, overrides, date) {
			if !day.SectionHeld(sec.ID) {
				continue
			}

			rec, marked := day.Get(personID, sec.ID)
			if absence.MarkedOut(personID, date, sec.ID, ordered, outs).Exempt {
				continue
			}
			if marked && rec.Status == models.Excused {
				continue
			}

			b := weeks[weekID]
			if b == nil {
				b = &bucket{}
				weeks[weekID] = b
			}
			b.possible += sec.Duration

			switch {
			case marked && rec.Status == models.OnTime:
				b.attended += sec.Duration
			case marked && rec.Status == models.Late:
				credit := sec.Duration - rec.MinutesLate
				if credit > 0 {
					b.attended += credit
				}
			}
		}
	}

	out := make([]WeekPoint, 0, len(weeks))
	for weekID, b := range weeks {
		if b.possible == 0 {
			continue
		}
		out = append(out, WeekPoint{
			Week:       weekID,
			Percentage: 100 * float64(b.attended) / float64(b.possible),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

func formatPercentage(attended, possible int) string {
	return strconv.FormatFloat(100*float64(attended)/float64(possible), 'f', 1, 64)
}
