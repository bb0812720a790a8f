package attendance

import (
	"reflect"
	"testing"
	"time"

	"attendance-service/internal/dates"
	"attendance-service/internal/models"
)

var sections = []models.Section{
	{ID: "s1", Name: "Class 1", StartTime: "09:00", Duration: 50},
	{ID: "s2", Name: "Class 2", StartTime: "10:00", Duration: 50},
	{ID: "s3", Name: "Class 3", StartTime: "11:00", Duration: 40},
}

func clock(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func TestResolveStatusExemptionPrecedence(t *testing.T) {
	date := dates.MustParse("2024-01-10")
	outs := []models.OutRecord{{
		ID: "out1", PersonID: "p1",
		StartDate: date, EndDate: date,
		StartSectionID: "s1", EndSectionID: "s3",
		Note: "medical",
	}}

	day := models.DayRecords{}
	day.Set("p1", "s1", models.AttendanceRecord{Status: models.Absent})

	got := ResolveStatus("p1", sections[0], date, day, sections, outs, clock(t, "2024-01-10 09:10"))

	if got.Status != models.Excused || !got.AbsenceExemption {
		t.Fatalf("exemption must win over explicit record: %+v", got)
	}
	if got.Note != "medical" {
		t.Errorf("note = %q, want absence note", got.Note)
	}
}

func TestResolveStatusExplicitRecord(t *testing.T) {
	date := dates.MustParse("2024-01-10")
	day := models.DayRecords{}
	day.Set("p1", "s1", models.AttendanceRecord{Status: models.Late, MinutesLate: 7})

	got := ResolveStatus("p1", sections[0], date, day, sections, nil, clock(t, "2024-01-10 09:10"))

	if got.Status != models.Late || got.MinutesLate != 7 || got.AbsenceExemption {
		t.Errorf("explicit record not returned verbatim: %+v", got)
	}
}

func TestResolveStatusUnmarkedPast(t *testing.T) {
	date := dates.MustParse("2024-01-09") // yesterday
	now := clock(t, "2024-01-10 08:00")

	t.Run("class never held", func(t *testing.T) {
		got := ResolveStatus("p1", sections[0], date, models.DayRecords{}, sections, nil, now)
		if got.Status != models.Unmarked || got.ExcusedByDefault {
			t.Errorf("got %+v, want plain Unmarked", got)
		}
	})

	t.Run("class held, this person skipped", func(t *testing.T) {
		day := models.DayRecords{}
		day.Set("p2", "s1", models.AttendanceRecord{Status: models.OnTime})

		got := ResolveStatus("p1", sections[0], date, day, sections, nil, now)
		if got.Status != models.Unmarked || !got.ExcusedByDefault {
			t.Errorf("got %+v, want Unmarked with ExcusedByDefault", got)
		}
	})
}

func TestResolveStatusActiveNoRecord(t *testing.T) {
	// Section 09:00+50 at 09:10 is active; with no record the cell is
	// simply not marked yet.
	date := dates.MustParse("2024-01-10")
	got := ResolveStatus("p1", sections[0], date, models.DayRecords{}, sections, nil, clock(t, "2024-01-10 09:10"))

	if got.Status != models.NotMarked {
		t.Errorf("status = %v, want NotMarked", got.Status)
	}
}

func newEditor(date dates.Date, outs []models.OutRecord) *DayEditor {
	return NewDayEditor(date, models.DayRecords{}, sections, outs)
}

func TestSetStatusExemptNoOp(t *testing.T) {
	date := dates.MustParse("2024-01-10")
	outs := []models.OutRecord{{
		ID: "out1", PersonID: "p1",
		StartDate: date, EndDate: date,
		StartSectionID: "s1", EndSectionID: "s3",
	}}
	e := newEditor(date, outs)

	if e.SetStatus("p1", "s2", models.Absent, "", 0, clock(t, "2024-01-10 10:30")) {
		t.Fatal("write to an exempt cell must be a no-op")
	}
	if e.CanUndo() {
		t.Error("no-op must not push an undo snapshot")
	}
	if len(e.Records()) != 0 {
		t.Error("no-op must not mutate records")
	}
}

func TestSetStatusLateClamp(t *testing.T) {
	e := newEditor(dates.MustParse("2024-01-10"), nil)

	if !e.SetStatus("p1", "s1", models.Late, "", 999, clock(t, "2024-01-10 09:10")) {
		t.Fatal("write rejected")
	}
	rec, _ := e.Records().Get("p1", "s1")
	if rec.MinutesLate != MaxMinutesLate {
		t.Errorf("minutesLate = %d, want clamp to %d", rec.MinutesLate, MaxMinutesLate)
	}
}

func TestSetStatusLateDefaults(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		clock string
		want  int
	}{
		{name: "today uses clock distance", date: "2024-01-10", clock: "2024-01-10 09:12", want: 12},
		{name: "today before start is zero", date: "2024-01-10", clock: "2024-01-10 08:50", want: 0},
		{name: "past day uses quarter duration", date: "2024-01-05", clock: "2024-01-10 09:12", want: 12}, // 50/4 = 12
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(dates.MustParse(tt.date), nil)
			e.SetStatus("p1", "s1", models.Late, "", 0, clock(t, tt.clock))
			rec, _ := e.Records().Get("p1", "s1")
			if rec.MinutesLate != tt.want {
				t.Errorf("minutesLate = %d, want %d", rec.MinutesLate, tt.want)
			}
		})
	}
}

func TestSetStatusNoteOnlyForExcused(t *testing.T) {
	e := newEditor(dates.MustParse("2024-01-10"), nil)
	now := clock(t, "2024-01-10 09:10")

	e.SetStatus("p1", "s1", models.Excused, "dentist", 0, now)
	rec, _ := e.Records().Get("p1", "s1")
	if rec.Note != "dentist" {
		t.Errorf("excused note dropped: %+v", rec)
	}

	e.SetStatus("p1", "s1", models.Absent, "should vanish", 0, now)
	rec, _ = e.Records().Get("p1", "s1")
	if rec.Note != "" {
		t.Errorf("non-excused status must force empty note: %+v", rec)
	}
}

func TestSetStatusNotMarkedDeletes(t *testing.T) {
	e := newEditor(dates.MustParse("2024-01-10"), nil)
	now := clock(t, "2024-01-10 09:10")

	e.SetStatus("p1", "s1", models.OnTime, "", 0, now)
	e.SetStatus("p1", "s1", models.NotMarked, "", 0, now)

	if _, ok := e.Records().Get("p1", "s1"); ok {
		t.Error("NotMarked must delete the cell")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	e := newEditor(dates.MustParse("2024-01-10"), nil)
	now := clock(t, "2024-01-10 09:10")

	m0 := e.Records().Clone()
	e.SetStatus("p1", "s1", models.OnTime, "", 0, now)
	m1 := e.Records().Clone()

	got, ok := e.Undo()
	if !ok || !reflect.DeepEqual(got, m0) {
		t.Fatalf("undo: got %v, want %v", got, m0)
	}

	got, ok = e.Redo()
	if !ok || !reflect.DeepEqual(got, m1) {
		t.Fatalf("redo: got %v, want %v", got, m1)
	}

	// A new change after undo clears the redo stack.
	e.Undo()
	e.SetStatus("p1", "s2", models.Absent, "", 0, now)
	if e.CanRedo() {
		t.Error("new write must clear the redo stack")
	}
}

func TestUndoIsFullOverwrite(t *testing.T) {
	start := models.DayRecords{}
	start.Set("p1", "s1", models.AttendanceRecord{Status: models.OnTime})
	e := NewDayEditor(dates.MustParse("2024-01-10"), start.Clone(), sections, nil)
	now := clock(t, "2024-01-10 09:10")

	// Delete one cell and add another; undo must restore the deleted cell
	// and remove the added one.
	e.SetStatus("p1", "s1", models.NotMarked, "", 0, now)
	e.SetStatus("p2", "s1", models.Absent, "", 0, now)

	e.Undo()
	e.Undo()

	if !reflect.DeepEqual(e.Records(), start) {
		t.Errorf("undo must fully overwrite: got %v, want %v", e.Records(), start)
	}
}

func TestUndoEmptyStack(t *testing.T) {
	e := newEditor(dates.MustParse("2024-01-10"), nil)
	if _, ok := e.Undo(); ok {
		t.Error("undo on empty stack must be a no-op")
	}
	if _, ok := e.Redo(); ok {
		t.Error("redo on empty stack must be a no-op")
	}
}

func TestUnmarkAll(t *testing.T) {
	e := newEditor(dates.MustParse("2024-01-09"), nil)
	now := clock(t, "2024-01-10 09:10")

	e.SetStatus("p1", "s1", models.OnTime, "", 0, now)
	e.SetStatus("p2", "s1", models.Absent, "", 0, now)
	e.SetStatus("p1", "s2", models.Late, "", 5, now)
	before := e.Records().Clone()

	if got := e.UnmarkAll("s1"); got != 2 {
		t.Fatalf("UnmarkAll removed %d cells, want 2", got)
	}
	if e.Records().SectionHeld("s1") {
		t.Error("s1 cells must all be gone")
	}
	if _, ok := e.Records().Get("p1", "s2"); !ok {
		t.Error("other sections must be untouched")
	}

	// The whole batch is one undo step.
	got, ok := e.Undo()
	if !ok || !reflect.DeepEqual(got, before) {
		t.Error("one undo must restore the whole batch")
	}
}
