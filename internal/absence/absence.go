// Package absence decides whether a person is marked out (exempt) for a
// given date and section, based on absence-range records.
package absence

import (
	"attendance-service/internal/dates"
	"attendance-service/internal/models"
)

// Match is the result of an exemption lookup. Record points at the matching
// out record when Exempt is true.
type Match struct {
	Exempt bool
	Record *models.OutRecord
}

// MarkedOut checks the person's out records against a date and section.
// Sections must be in canonical order (schedule.Ordered); range boundaries
// are compared by index in that ordering. Dates are compared at calendar-day
// granularity. When several records overlap, the first match in input order
// wins.
func MarkedOut(personID string, date dates.Date, sectionID string, ordered []models.Section, records []models.OutRecord) Match {
	sectionIdx := indexOf(ordered, sectionID)
	if sectionIdx < 0 {
		// Stale section id: resolve to not exempt rather than failing.
		return Match{}
	}

	for i := range records {
		rec := &records[i]
		if rec.PersonID != personID {
			continue
		}
		if matches(rec, date, sectionIdx, ordered) {
			return Match{Exempt: true, Record: rec}
		}
	}
	return Match{}
}

func matches(rec *models.OutRecord, date dates.Date, sectionIdx int, ordered []models.Section) bool {
	if date.Before(rec.StartDate) || date.After(rec.EndDate) {
		return false
	}

	// Days strictly inside the range are fully exempt; only the boundary
	// days consult the section indexes.
	singleDay := rec.StartDate.Equal(rec.EndDate)
	first := date.Equal(rec.StartDate)
	last := date.Equal(rec.EndDate)
	if !first && !last {
		return true
	}

	startIdx := indexOf(ordered, rec.StartSectionID)
	endIdx := indexOf(ordered, rec.EndSectionID)

	switch {
	case singleDay:
		if startIdx < 0 || endIdx < 0 {
			return false
		}
		return sectionIdx >= startIdx && sectionIdx <= endIdx
	case first:
		if startIdx < 0 {
			return false
		}
		return sectionIdx >= startIdx
	default: // last
		if endIdx < 0 {
			return false
		}
		return sectionIdx <= endIdx
	}
}

func indexOf(ordered []models.Section, sectionID string) int {
	for i, sec := range ordered {
		if sec.ID == sectionID {
			return i
		}
	}
	return -1
}

// ValidateRange rejects records whose end date precedes their start date.
func ValidateRange(start, end dates.Date) bool {
	return !end.Before(start)
}
