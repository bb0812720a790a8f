package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"attendance-service/api"
	"attendance-service/internal/absence"
	"attendance-service/internal/attendance"
	"attendance-service/internal/dates"
	"attendance-service/internal/lock"
	"attendance-service/internal/models"
	"attendance-service/internal/report"
	"attendance-service/internal/schedule"
	"attendance-service/pkg/response"
)

// lockTTL bounds how long a crashed writer can hold a day or group lock.
const lockTTL = 10 * time.Second

type Store interface {
	// People
	SavePerson(ctx context.Context, p models.Person) error
	UpdatePerson(ctx context.Context, p models.Person) error
	DeletePerson(ctx context.Context, personID string) error
	ListPeople(ctx context.Context) ([]models.Person, error)

	// Sections
	SaveSection(ctx context.Context, sec models.Section) error
	UpdateSection(ctx context.Context, sec models.Section) error
	DeleteSection(ctx context.Context, sectionID string) error
	ListSections(ctx context.Context) ([]models.Section, error)

	// Schedule overrides
	SaveOverride(ctx context.Context, o models.ScheduleOverride) error
	DeleteOverride(ctx context.Context, date dates.Date, sectionID string) error
	ListOverrides(ctx context.Context) ([]models.ScheduleOverride, error)

	// Attendance
	GetDay(ctx context.Context, date dates.Date) (models.DayRecords, error)
	ListAttendance(ctx context.Context) (map[dates.Date]models.DayRecords, error)
	UpsertCell(ctx context.Context, date dates.Date, personID, sectionID string, rec models.AttendanceRecord) error
	DeleteCell(ctx context.Context, date dates.Date, personID, sectionID string) error
	ClearSection(ctx context.Context, date dates.Date, sectionID string) error
	ReplaceDay(ctx context.Context, date dates.Date, day models.DayRecords) error

	// Out records
	SaveOutRecord(ctx context.Context, rec models.OutRecord) error
	DeleteOutRecord(ctx context.Context, recordID string) error
	ListOutRecords(ctx context.Context) ([]models.OutRecord, error)
	ReplaceOutGroup(ctx context.Context, groupID string, records []models.OutRecord) error
	DeleteOutGroup(ctx context.Context, groupID string) error

	// Persistent notes
	SaveNote(ctx context.Context, n models.PersistentNote) error
	ListNotes(ctx context.Context) ([]models.PersistentNote, error)
}

// Service implements the attendance operations on top of the store. It
// holds at most one day editor at a time: selecting a different date
// discards the previous editor along with its undo/redo history.
type Service struct {
	store  Store
	locker lock.Locker
	now    func() time.Time

	mu     sync.Mutex
	editor *attendance.DayEditor
}

func NewService(store Store, locker lock.Locker) *Service {
	return &Service{store: store, locker: locker, now: time.Now}
}

// WithClock replaces the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// People

func (s *Service) CreatePerson(ctx context.Context, req *api.PersonRequest) (*api.PersonResponse, error) {
	const op = "service.CreatePerson"

	first, last := splitName(req.Name)
	p := models.Person{
		ID:        uuid.NewString(),
		FirstName: first,
		LastName:  last,
		Type:      models.PersonType(req.Type),
		Email:     req.Email,
	}

	if err := s.store.SavePerson(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return personResponse(p), nil
}

func (s *Service) UpdatePerson(ctx context.Context, id string, req *api.PersonRequest) (*api.PersonResponse, error) {
	const op = "service.UpdatePerson"

	first, last := splitName(req.Name)
	p := models.Person{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Type:      models.PersonType(req.Type),
		Email:     req.Email,
	}

	if err := s.store.UpdatePerson(ctx, p); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return personResponse(p), nil
}

func (s *Service) DeletePerson(ctx context.Context, id string) error {
	const op = "service.DeletePerson"

	if err := s.store.DeletePerson(ctx, id); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) ListPeople(ctx context.Context) ([]*api.PersonResponse, error) {
	const op = "service.ListPeople"

	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.PersonResponse, 0, len(people))
	for _, p := range people {
		result = append(result, personResponse(p))
	}

	return result, nil
}

// splitName separates a full name on the first space; a single word
// becomes the first name with an empty last name.
func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	idx := strings.Index(name, " ")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], strings.TrimSpace(name[idx+1:])
}

func personResponse(p models.Person) *api.PersonResponse {
	return &api.PersonResponse{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Type:      string(p.Type),
		Email:     p.Email,
	}
}

// Sections

func (s *Service) CreateSection(ctx context.Context, req *api.SectionRequest) (*api.SectionResponse, error) {
	const op = "service.CreateSection"

	sec := models.Section{
		ID:        uuid.NewString(),
		Name:      req.Name,
		StartTime: req.StartTime,
		Duration:  req.DurationMinutes,
	}

	if err := s.store.SaveSection(ctx, sec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateEditor()

	return sectionResponse(sec), nil
}

func (s *Service) UpdateSection(ctx context.Context, id string, req *api.SectionRequest) (*api.SectionResponse, error) {
	const op = "service.UpdateSection"

	sec := models.Section{
		ID:        id,
		Name:      req.Name,
		StartTime: req.StartTime,
		Duration:  req.DurationMinutes,
	}

	if err := s.store.UpdateSection(ctx, sec); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateEditor()

	return sectionResponse(sec), nil
}

func (s *Service) DeleteSection(ctx context.Context, id string) error {
	const op = "service.DeleteSection"

	if err := s.store.DeleteSection(ctx, id); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateEditor()

	return nil
}

func (s *Service) ListSections(ctx context.Context) ([]*api.SectionResponse, error) {
	const op = "service.ListSections"

	sections, err := s.store.ListSections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.SectionResponse, 0, len(sections))
	for _, sec := range schedule.Ordered(sections) {
		result = append(result, sectionResponse(sec))
	}

	return result, nil
}

func sectionResponse(sec models.Section) *api.SectionResponse {
	return &api.SectionResponse{
		ID:              sec.ID,
		Name:            sec.Name,
		StartTime:       sec.StartTime,
		DurationMinutes: sec.Duration,
	}
}

// Schedule overrides

func (s *Service) SaveOverride(ctx context.Context, req *api.OverrideRequest) error {
	const op = "service.SaveOverride"

	date, err := dates.Parse(req.Date)
	if err != nil {
		return fmt.Errorf("%s: %w", op, response.ErrValidation)
	}

	o := models.ScheduleOverride{
		Date:         date,
		SectionID:    req.SectionID,
		NewStartTime: req.NewStartTime,
	}

	if err := s.store.SaveOverride(ctx, o); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateEditor()

	return nil
}

func (s *Service) DeleteOverride(ctx context.Context, dateStr, sectionID string) error {
	const op = "service.DeleteOverride"

	date, err := dates.Parse(dateStr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, response.ErrValidation)
	}

	if err := s.store.DeleteOverride(ctx, date, sectionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateEditor()

	return nil
}

// Attendance day view and edits

// GetDay resolves every (person, section) cell for the date, merging out
// records and the was-the-class-held inference, and reports undo/redo
// availability of the current editing session.
func (s *Service) GetDay(ctx context.Context, dateStr string) (*api.DayResponse, error) {
	const op = "service.GetDay"

	date, err := dates.Parse(dateStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	editor, sections, overrides, outs, err := s.editorFor(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	effective := schedule.Resolve(sections, overrides, date)
	day := editor.Records()

	records := make(map[string]map[string]api.RecordResponse, len(people))
	for _, p := range people {
		cells := make(map[string]api.RecordResponse, len(effective))
		for _, sec := range effective {
			res := attendance.ResolveStatus(p.ID, sec, date, day, effective, outs, now)
			cell := api.RecordResponse{
				Status:      string(res.Status),
				Note:        res.Note,
				MinutesLate: res.MinutesLate,
			}
			if rec, ok := day.Get(p.ID, sec.ID); ok {
				cell.RecordedAt = rec.RecordedAt
			}
			cells[sec.ID] = cell
		}
		records[p.ID] = cells
	}

	resp := &api.DayResponse{
		Date:       date.String(),
		HebrewDate: date.Hebrew(),
		Records:    records,
		CanUndo:    editor.CanUndo(),
		CanRedo:    editor.CanRedo(),
	}
	if active := schedule.ActiveSection(sections, overrides, date, now); active != nil {
		resp.ActiveSectionID = active.ID
	}

	return resp, nil
}

// SetStatus applies one status change through the day editor and persists
// the affected cell. A write against an absence-exempt cell is accepted
// and ignored.
func (s *Service) SetStatus(ctx context.Context, dateStr string, req *api.StatusChangeRequest) error {
	const op = "service.SetStatus"

	date, err := dates.Parse(dateStr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, response.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	editor, _, _, _, err := s.editorFor(ctx, date)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	if !editor.SetStatus(req.PersonID, req.SectionID, models.Status(req.Status), req.Note, req.MinutesLate, now) {
		return nil
	}

	err = lock.WithLock(ctx, s.locker, lock.DayKey(date), lockTTL, func() error {
		rec, ok := editor.Records().Get(req.PersonID, req.SectionID)
		if !ok {
			return s.store.DeleteCell(ctx, date, req.PersonID, req.SectionID)
		}
		return s.store.UpsertCell(ctx, date, req.PersonID, req.SectionID, rec)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UnmarkAll clears every explicit record for a section on the date, as a
// single undoable batch.
func (s *Service) UnmarkAll(ctx context.Context, dateStr, sectionID string) (int, error) {
	const op = "service.UnmarkAll"

	date, err := dates.Parse(dateStr)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, response.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	editor, _, _, _, err := s.editorFor(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	removed := editor.UnmarkAll(sectionID)

	err = lock.WithLock(ctx, s.locker, lock.DayKey(date), lockTTL, func() error {
		return s.store.ClearSection(ctx, date, sectionID)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return removed, nil
}

// Undo restores the previous whole-day snapshot and overwrites the stored
// day with it. With no history for the date it reports ErrConflict.
func (s *Service) Undo(ctx context.Context, dateStr string) error {
	const op = "service.Undo"

	return s.replayHistory(ctx, op, dateStr, (*attendance.DayEditor).Undo)
}

// Redo is symmetric to Undo.
func (s *Service) Redo(ctx context.Context, dateStr string) error {
	const op = "service.Redo"

	return s.replayHistory(ctx, op, dateStr, (*attendance.DayEditor).Redo)
}

func (s *Service) replayHistory(ctx context.Context, op, dateStr string, step func(*attendance.DayEditor) (models.DayRecords, bool)) error {
	date, err := dates.Parse(dateStr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, response.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	editor, _, _, _, err := s.editorFor(ctx, date)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	day, ok := step(editor)
	if !ok {
		return fmt.Errorf("%s: %w", op, response.ErrConflict)
	}

	err = lock.WithLock(ctx, s.locker, lock.DayKey(date), lockTTL, func() error {
		return s.store.ReplaceDay(ctx, date, day.Clone())
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// editorFor returns the current day editor, building a fresh one when the
// selected date changes or schedule data was invalidated. Caller must hold
// s.mu.
func (s *Service) editorFor(ctx context.Context, date dates.Date) (*attendance.DayEditor, []models.Section, []models.ScheduleOverride, []models.OutRecord, error) {
	sections, err := s.store.ListSections(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	overrides, err := s.store.ListOverrides(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	outs, err := s.store.ListOutRecords(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	if s.editor != nil && s.editor.Date().Equal(date) {
		s.editor.SetOutRecords(outs)
		return s.editor, sections, overrides, outs, nil
	}

	day, err := s.store.GetDay(ctx, date)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	s.editor = attendance.NewDayEditor(date, day, schedule.Resolve(sections, overrides, date), outs)
	return s.editor, sections, overrides, outs, nil
}

// invalidateEditor drops the editing session after schedule or roster
// changes; the next day view rebuilds it from the store.
func (s *Service) invalidateEditor() {
	s.mu.Lock()
	s.editor = nil
	s.mu.Unlock()
}

// Absences

func (s *Service) CreateAbsence(ctx context.Context, req *api.AbsenceRequest) (*api.AbsenceResponse, error) {
	const op = "service.CreateAbsence"

	rec, err := s.absenceFromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.SaveOutRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateEditor()

	return absenceResponse(rec), nil
}

func (s *Service) DeleteAbsence(ctx context.Context, recordID string) error {
	const op = "service.DeleteAbsence"

	if err := s.store.DeleteOutRecord(ctx, recordID); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateEditor()

	return nil
}

func (s *Service) ListAbsences(ctx context.Context) ([]*api.AbsenceResponse, error) {
	const op = "service.ListAbsences"

	records, err := s.store.ListOutRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.AbsenceResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, absenceResponse(rec))
	}

	return result, nil
}

// CreateGroupAbsence replaces the whole group's records in one atomic
// batch under the group lock: editing a group absence never leaves a mix
// of old and new records behind.
func (s *Service) CreateGroupAbsence(ctx context.Context, req *api.GroupAbsenceRequest) ([]*api.AbsenceResponse, error) {
	const op = "service.CreateGroupAbsence"

	if len(req.PersonIDs) == 0 {
		return nil, fmt.Errorf("%s: %w", op, response.ErrValidation)
	}

	start, err := dates.Parse(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrValidation)
	}
	end, err := dates.Parse(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrValidation)
	}
	if !absence.ValidateRange(start, end) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrValidation)
	}

	groupID := req.GroupID
	if groupID == "" {
		groupID = uuid.NewString()
	}

	records := make([]models.OutRecord, 0, len(req.PersonIDs))
	for _, personID := range req.PersonIDs {
		records = append(records, models.OutRecord{
			ID:             uuid.NewString(),
			PersonID:       personID,
			StartDate:      start,
			EndDate:        end,
			StartSectionID: req.StartSectionID,
			EndSectionID:   req.EndSectionID,
			Note:           req.Note,
			GroupID:        groupID,
		})
	}

	err = lock.WithLock(ctx, s.locker, lock.GroupKey(groupID), lockTTL, func() error {
		return s.store.ReplaceOutGroup(ctx, groupID, records)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateEditor()

	result := make([]*api.AbsenceResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, absenceResponse(rec))
	}

	return result, nil
}

func (s *Service) DeleteGroupAbsence(ctx context.Context, groupID string) error {
	const op = "service.DeleteGroupAbsence"

	err := lock.WithLock(ctx, s.locker, lock.GroupKey(groupID), lockTTL, func() error {
		return s.store.DeleteOutGroup(ctx, groupID)
	})
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateEditor()

	return nil
}

func (s *Service) absenceFromRequest(req *api.AbsenceRequest) (models.OutRecord, error) {
	start, err := dates.Parse(req.StartDate)
	if err != nil {
		return models.OutRecord{}, response.ErrValidation
	}
	end, err := dates.Parse(req.EndDate)
	if err != nil {
		return models.OutRecord{}, response.ErrValidation
	}
	if !absence.ValidateRange(start, end) {
		return models.OutRecord{}, response.ErrValidation
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	return models.OutRecord{
		ID:             id,
		PersonID:       req.PersonID,
		StartDate:      start,
		EndDate:        end,
		StartSectionID: req.StartSectionID,
		EndSectionID:   req.EndSectionID,
		Note:           req.Note,
	}, nil
}

func absenceResponse(rec models.OutRecord) *api.AbsenceResponse {
	return &api.AbsenceResponse{
		ID:             rec.ID,
		PersonID:       rec.PersonID,
		StartDate:      rec.StartDate.String(),
		EndDate:        rec.EndDate.String(),
		StartSectionID: rec.StartSectionID,
		EndSectionID:   rec.EndSectionID,
		Note:           rec.Note,
		GroupID:        rec.GroupID,
	}
}

// Persistent notes

func (s *Service) SaveNote(ctx context.Context, req *api.NoteRequest) error {
	const op = "service.SaveNote"

	n := models.PersistentNote{
		PersonID:  req.PersonID,
		SectionID: req.SectionID,
		Note:      req.Note,
	}

	if err := s.store.SaveNote(ctx, n); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) ListNotes(ctx context.Context) ([]*api.NoteResponse, error) {
	const op = "service.ListNotes"

	notes, err := s.store.ListNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.NoteResponse, 0, len(notes))
	for _, n := range notes {
		result = append(result, &api.NoteResponse{
			PersonID:  n.PersonID,
			SectionID: n.SectionID,
			Note:      n.Note,
		})
	}

	return result, nil
}

// Reports

func (s *Service) Summary(ctx context.Context, personID, fromStr, toStr string) (*api.SummaryResponse, error) {
	const op = "service.Summary"

	rng, err := parseRange(fromStr, toStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrValidation)
	}

	all, sections, overrides, outs, err := s.reportInputs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summary := report.ComputeSummary(personID, all, sections, overrides, rng, outs, s.now())

	perClass := make(map[string]api.ClassStatsResponse, len(summary.PerClass))
	for sectionID, stats := range summary.PerClass {
		name := sectionID
		if sec, ok := schedule.Find(sections, sectionID); ok {
			name = sec.Name
		}
		perClass[sectionID] = api.ClassStatsResponse{
			SectionName:     name,
			MinutesPossible: stats.MinutesPossible,
			MinutesAttended: stats.MinutesAttended,
			Percentage:      stats.Percentage,
		}
	}

	return &api.SummaryResponse{
		PersonID:          personID,
		PresentPercentage: summary.PresentPercentage,
		TotalMinutesLate:  summary.TotalMinutesLate,
		TotalLateDisplay:  dates.FormatMinutes(summary.TotalMinutesLate),
		PerClass:          perClass,
	}, nil
}

func (s *Service) WeeklySeries(ctx context.Context, personID, fromStr, toStr string) ([]api.WeekPointResponse, error) {
	const op = "service.WeeklySeries"

	rng, err := parseRange(fromStr, toStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrValidation)
	}

	all, sections, overrides, outs, err := s.reportInputs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	series := report.WeeklySeries(personID, all, sections, overrides, rng, outs)

	result := make([]api.WeekPointResponse, 0, len(series))
	for _, point := range series {
		result = append(result, api.WeekPointResponse{
			Week:       point.Week,
			Percentage: point.Percentage,
		})
	}

	return result, nil
}

func (s *Service) reportInputs(ctx context.Context) (map[dates.Date]models.DayRecords, []models.Section, []models.ScheduleOverride, []models.OutRecord, error) {
	all, err := s.store.ListAttendance(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	sections, err := s.store.ListSections(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	overrides, err := s.store.ListOverrides(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	outs, err := s.store.ListOutRecords(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return all, sections, overrides, outs, nil
}

func parseRange(fromStr, toStr string) (report.Range, error) {
	var rng report.Range
	if fromStr != "" {
		from, err := dates.Parse(fromStr)
		if err != nil {
			return report.Range{}, err
		}
		rng.Start = &from
	}
	if toStr != "" {
		to, err := dates.Parse(toStr)
		if err != nil {
			return report.Range{}, err
		}
		rng.End = &to
	}
	return rng, nil
}
