package models

import (
	"time"

	"attendance-service/internal/dates"
)

type PersonType string

const (
	Student PersonType = "student"
	Staff   PersonType = "staff"
)

type Person struct {
	ID        string     `db:"person_id"`
	FirstName string     `db:"first_name"`
	LastName  string     `db:"last_name"`
	Type      PersonType `db:"person_type"`
	Email     string     `db:"email"`
}

// Section is a recurring daily class slot. StartTime is "HH:MM";
// Duration is in minutes.
type Section struct {
	ID        string `db:"section_id"`
	Name      string `db:"name"`
	StartTime string `db:"start_time"`
	Duration  int    `db:"duration_minutes"`
}

// ScheduleOverride replaces a section's start time on one date. At most one
// exists per (date, section); a later save replaces the earlier one.
type ScheduleOverride struct {
	Date         dates.Date `db:"override_date"`
	SectionID    string     `db:"section_id"`
	NewStartTime string     `db:"new_start_time"`
}

type Status string

const (
	OnTime  Status = "On Time"
	Late    Status = "Late"
	Excused Status = "Excused"
	Absent  Status = "Absent"

	// NotMarked means no record exists for a cell that can still be marked.
	NotMarked Status = "Not Marked"
	// Unmarked means a past class went by without a record for this person.
	Unmarked Status = "Unmarked"
)

// AttendanceRecord is the explicit mark for one (date, person, section) cell.
// Note is only meaningful for Excused; MinutesLate only for Late.
type AttendanceRecord struct {
	Status      Status    `db:"status"`
	RecordedAt  time.Time `db:"recorded_at"`
	Note        string    `db:"note"`
	MinutesLate int       `db:"minutes_late"`
}

// DayRecords holds one day's attendance map: personID -> sectionID -> record.
// A missing key means the cell is not marked.
type DayRecords map[string]map[string]AttendanceRecord

func (d DayRecords) Get(personID, sectionID string) (AttendanceRecord, bool) {
	rec, ok := d[personID][sectionID]
	return rec, ok
}

func (d DayRecords) Set(personID, sectionID string, rec AttendanceRecord) {
	if d[personID] == nil {
		d[personID] = make(map[string]AttendanceRecord)
	}
	d[personID][sectionID] = rec
}

// Delete removes a cell and prunes the person's map when it empties.
func (d DayRecords) Delete(personID, sectionID string) bool {
	cells, ok := d[personID]
	if !ok {
		return false
	}
	if _, ok := cells[sectionID]; !ok {
		return false
	}
	delete(cells, sectionID)
	if len(cells) == 0 {
		delete(d, personID)
	}
	return true
}

func (d DayRecords) Clone() DayRecords {
	out := make(DayRecords, len(d))
	for personID, cells := range d {
		cp := make(map[string]AttendanceRecord, len(cells))
		for sectionID, rec := range cells {
			cp[sectionID] = rec
		}
		out[personID] = cp
	}
	return out
}

// SectionHeld reports whether any person has an explicit record for the
// section, the operational signal that the class actually ran.
func (d DayRecords) SectionHeld(sectionID string) bool {
	for _, cells := range d {
		if _, ok := cells[sectionID]; ok {
			return true
		}
	}
	return false
}

// OutRecord marks a person exempt from startDate's startSection through
// endDate's endSection. Section boundaries only constrain the boundary days;
// days strictly between are fully exempt. GroupID links records created
// together for a group absence.
type OutRecord struct {
	ID             string     `db:"out_record_id"`
	PersonID       string     `db:"person_id"`
	StartDate      dates.Date `db:"start_date"`
	EndDate        dates.Date `db:"end_date"`
	StartSectionID string     `db:"start_section_id"`
	EndSectionID   string     `db:"end_section_id"`
	Note           string     `db:"note"`
	GroupID        string     `db:"group_id"`
}

// PersistentNote is a free-text annotation on (person, section) that is
// independent of any date.
type PersistentNote struct {
	PersonID  string `db:"person_id"`
	SectionID string `db:"section_id"`
	Note      string `db:"note"`
}
