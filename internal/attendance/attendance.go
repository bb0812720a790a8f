// Package attendance resolves the authoritative status for a cell and
// applies status changes to a day's records through an undoable editor.
package attendance

import (
	"time"

	"attendance-service/internal/absence"
	"attendance-service/internal/dates"
	"attendance-service/internal/models"
	"attendance-service/internal/schedule"
)

// MaxMinutesLate caps a stored late mark.
const MaxMinutesLate = 50

// StatusResult is the merged view of one (person, section, date) cell.
type StatusResult struct {
	Status      models.Status
	MinutesLate int
	Note        string

	// AbsenceExemption marks statuses sourced from an out record; such
	// cells cannot be overwritten by a direct status change.
	AbsenceExemption bool

	// ExcusedByDefault marks a past, held class the person was never
	// marked for. The aggregation engine treats these as non-possible.
	ExcusedByDefault bool
}

// ResolveStatus merges absence exemption, the explicit record and the
// was-the-class-held inference into one authoritative status.
//
// Precedence: exemption first, explicit record second. With neither, a past
// class resolves to Unmarked (flagged excused-by-default when other people
// were marked, i.e. the class did run); anything not yet past stays
// NotMarked.
func ResolveStatus(personID string, sec models.Section, date dates.Date, day models.DayRecords, ordered []models.Section, outs []models.OutRecord, now time.Time) StatusResult {
	if m := absence.MarkedOut(personID, date, sec.ID, ordered, outs); m.Exempt {
		return StatusResult{
			Status:           models.Excused,
			Note:             m.Record.Note,
			AbsenceExemption: true,
		}
	}

	if rec, ok := day.Get(personID, sec.ID); ok {
		return StatusResult{
			Status:      rec.Status,
			MinutesLate: rec.MinutesLate,
			Note:        rec.Note,
		}
	}

	if schedule.Classify(sec, date, now) == schedule.Past {
		return StatusResult{
			Status:           models.Unmarked,
			ExcusedByDefault: day.SectionHeld(sec.ID),
		}
	}

	return StatusResult{Status: models.NotMarked}
}

// DayEditor mutates one day's attendance map while keeping whole-day
// snapshots for undo/redo. History is per day: the service discards the
// editor when the selected date changes.
//
// Snapshots are captured synchronously at call time, before the caller
// issues the asynchronous store write, so a failed write still leaves the
// undo stack consistent with the attempted state.
type DayEditor struct {
	date     dates.Date
	records  models.DayRecords
	sections []models.Section // effective (override-resolved) for the date
	outs     []models.OutRecord

	undoStack []models.DayRecords
	redoStack []models.DayRecords
}

func NewDayEditor(date dates.Date, records models.DayRecords, effectiveSections []models.Section, outs []models.OutRecord) *DayEditor {
	if records == nil {
		records = make(models.DayRecords)
	}
	return &DayEditor{
		date:     date,
		records:  records,
		sections: effectiveSections,
		outs:     outs,
	}
}

func (e *DayEditor) Date() dates.Date { return e.date }

// Records returns the live day map. Callers persisting it must treat it as
// a snapshot and not retain it across further edits.
func (e *DayEditor) Records() models.DayRecords { return e.records }

func (e *DayEditor) CanUndo() bool { return len(e.undoStack) > 0 }
func (e *DayEditor) CanRedo() bool { return len(e.redoStack) > 0 }

// SetOutRecords refreshes the exemption data the editor checks on writes,
// used when a subscription delivers a newer absence snapshot.
func (e *DayEditor) SetOutRecords(outs []models.OutRecord) { e.outs = outs }

func (e *DayEditor) snapshot() {
	e.undoStack = append(e.undoStack, e.records.Clone())
	e.redoStack = nil
}

// SetStatus applies one status change. An absence-exempt cell is a silent
// no-op: the exemption is authoritative and must be edited through the out
// record instead. Setting NotMarked deletes the cell. Returns false when
// nothing was applied.
func (e *DayEditor) SetStatus(personID, sectionID string, status models.Status, note string, minutesLate int, now time.Time) bool {
	if absence.MarkedOut(personID, e.date, sectionID, e.sections, e.outs).Exempt {
		return false
	}

	e.snapshot()

	if status == models.NotMarked {
		e.records.Delete(personID, sectionID)
		return true
	}

	if status == models.Late {
		if minutesLate == 0 {
			minutesLate = e.defaultMinutesLate(sectionID, now)
		}
		if minutesLate > MaxMinutesLate {
			minutesLate = MaxMinutesLate
		}
		if minutesLate < 0 {
			minutesLate = 0
		}
	} else {
		minutesLate = 0
	}

	if status != models.Excused {
		note = ""
	}

	e.records.Set(personID, sectionID, models.AttendanceRecord{
		Status:      status,
		RecordedAt:  now,
		Note:        note,
		MinutesLate: minutesLate,
	})
	return true
}

// defaultMinutesLate backfills an unspecified late mark: distance from the
// section start when marking today, a quarter of the duration when marking
// a past day.
func (e *DayEditor) defaultMinutesLate(sectionID string, now time.Time) int {
	sec, ok := schedule.Find(e.sections, sectionID)
	if !ok {
		return 0
	}

	if e.date.Equal(dates.Today(now)) {
		nowMinutes := now.Hour()*60 + now.Minute()
		late := nowMinutes - schedule.StartMinutes(sec.StartTime)
		if late < 0 {
			return 0
		}
		return late
	}
	return sec.Duration / 4
}

// UnmarkAll removes every person's explicit record for the section in one
// batch, with a single undo snapshot for the whole operation.
func (e *DayEditor) UnmarkAll(sectionID string) int {
	e.snapshot()

	removed := 0
	for personID := range e.records {
		if e.records.Delete(personID, sectionID) {
			removed++
		}
	}
	return removed
}

// Undo replaces the day with the previous snapshot. The replacement is a
// full overwrite, not a merge: cells deleted since the snapshot reappear,
// cells added since it vanish.
func (e *DayEditor) Undo() (models.DayRecords, bool) {
	if len(e.undoStack) == 0 {
		return nil, false
	}

	e.redoStack = append(e.redoStack, e.records.Clone())
	last := e.undoStack[len(e.undoStack)-1]
	e.undoStack = e.undoStack[:len(e.undoStack)-1]
	e.records = last
	return e.records, true
}

// Redo is symmetric to Undo.
func (e *DayEditor) Redo() (models.DayRecords, bool) {
	if len(e.redoStack) == 0 {
		return nil, false
	}

	e.undoStack = append(e.undoStack, e.records.Clone())
	next := e.redoStack[len(e.redoStack)-1]
	e.redoStack = e.redoStack[:len(e.redoStack)-1]
	e.records = next
	return e.records, true
}
