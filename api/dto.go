package api

import "time"

type PersonRequest struct {
	// Name is the full name; everything after the first space becomes the
	// last name.
	Name  string `json:"name" validate:"required"`
	Type  string `json:"type" validate:"required,oneof=student staff"`
	Email string `json:"email"`
}

type PersonResponse struct {
	ID        string `json:"person_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Type      string `json:"type"`
	Email     string `json:"email"`
}

type SectionRequest struct {
	Name            string `json:"name" validate:"required"`
	StartTime       string `json:"start_time" validate:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1"`
}

type SectionResponse struct {
	ID              string `json:"section_id"`
	Name            string `json:"name"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

type OverrideRequest struct {
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	SectionID    string `json:"section_id" validate:"required"`
	NewStartTime string `json:"new_start_time" validate:"required,datetime=15:04"`
}

type StatusChangeRequest struct {
	PersonID    string `json:"person_id" validate:"required"`
	SectionID   string `json:"section_id" validate:"required"`
	Status      string `json:"status" validate:"required,oneof='On Time' Late Excused Absent 'Not Marked'"`
	Note        string `json:"note,omitempty"`
	MinutesLate int    `json:"minutes_late,omitempty"`
}

type RecordResponse struct {
	Status      string    `json:"status"`
	RecordedAt  time.Time `json:"recorded_at"`
	Note        string    `json:"note,omitempty"`
	MinutesLate int       `json:"minutes_late,omitempty"`
}

// DayResponse is one day's full attendance document plus its display dates
// and the undo/redo availability of the editing session.
type DayResponse struct {
	Date            string                               `json:"date"`
	HebrewDate      string                               `json:"hebrew_date"`
	ActiveSectionID string                               `json:"active_section_id,omitempty"`
	Records         map[string]map[string]RecordResponse `json:"records"`
	CanUndo         bool                                 `json:"can_undo"`
	CanRedo         bool                                 `json:"can_redo"`
}

type AbsenceRequest struct {
	ID             string `json:"out_record_id,omitempty"`
	PersonID       string `json:"person_id" validate:"required"`
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartSectionID string `json:"start_section_id" validate:"required"`
	EndSectionID   string `json:"end_section_id" validate:"required"`
	Note           string `json:"note"`
}

type GroupAbsenceRequest struct {
	// GroupID is set when editing: the whole existing group is replaced.
	GroupID        string   `json:"group_id,omitempty"`
	PersonIDs      []string `json:"person_ids" validate:"required,min=1"`
	StartDate      string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartSectionID string   `json:"start_section_id" validate:"required"`
	EndSectionID   string   `json:"end_section_id" validate:"required"`
	Note           string   `json:"note"`
}

type AbsenceResponse struct {
	ID             string `json:"out_record_id"`
	PersonID       string `json:"person_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	StartSectionID string `json:"start_section_id"`
	EndSectionID   string `json:"end_section_id"`
	Note           string `json:"note,omitempty"`
	GroupID        string `json:"group_id,omitempty"`
}

type NoteRequest struct {
	PersonID  string `json:"person_id" validate:"required"`
	SectionID string `json:"section_id" validate:"required"`
	Note      string `json:"note"`
}

type NoteResponse struct {
	PersonID  string `json:"person_id"`
	SectionID string `json:"section_id"`
	Note      string `json:"note"`
}

type ClassStatsResponse struct {
	SectionName     string `json:"section_name"`
	MinutesPossible int    `json:"minutes_possible"`
	MinutesAttended int    `json:"minutes_attended"`
	Percentage      string `json:"percentage"`
}

type SummaryResponse struct {
	PersonID          string                        `json:"person_id"`
	PresentPercentage string                        `json:"present_percentage"`
	TotalMinutesLate  int                           `json:"total_minutes_late"`
	TotalLateDisplay  string                        `json:"total_late_display"`
	PerClass          map[string]ClassStatsResponse `json:"per_class"`
}

type WeekPointResponse struct {
	Week       string  `json:"week"`
	Percentage float64 `json:"percentage"`
}
