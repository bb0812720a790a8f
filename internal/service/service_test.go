package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-service/api"
	"attendance-service/internal/dates"
	"attendance-service/internal/models"
	"attendance-service/pkg/response"
)

// memStore is an in-memory Store for exercising the service without
// Postgres.
type memStore struct {
	people    map[string]models.Person
	sections  map[string]models.Section
	overrides []models.ScheduleOverride
	days      map[dates.Date]models.DayRecords
	outs      []models.OutRecord
	notes     map[[2]string]models.PersistentNote
}

func newMemStore() *memStore {
	return &memStore{
		people:   make(map[string]models.Person),
		sections: make(map[string]models.Section),
		days:     make(map[dates.Date]models.DayRecords),
		notes:    make(map[[2]string]models.PersistentNote),
	}
}

func (m *memStore) SavePerson(_ context.Context, p models.Person) error {
	if _, ok := m.people[p.ID]; ok {
		return response.ErrConflict
	}
	m.people[p.ID] = p
	return nil
}

func (m *memStore) UpdatePerson(_ context.Context, p models.Person) error {
	if _, ok := m.people[p.ID]; !ok {
		return response.ErrNotFound
	}
	m.people[p.ID] = p
	return nil
}

func (m *memStore) DeletePerson(_ context.Context, id string) error {
	if _, ok := m.people[id]; !ok {
		return response.ErrNotFound
	}
	delete(m.people, id)
	return nil
}

func (m *memStore) ListPeople(_ context.Context) ([]models.Person, error) {
	out := make([]models.Person, 0, len(m.people))
	for _, p := range m.people {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) SaveSection(_ context.Context, sec models.Section) error {
	if _, ok := m.sections[sec.ID]; ok {
		return response.ErrConflict
	}
	m.sections[sec.ID] = sec
	return nil
}

func (m *memStore) UpdateSection(_ context.Context, sec models.Section) error {
	if _, ok := m.sections[sec.ID]; !ok {
		return response.ErrNotFound
	}
	m.sections[sec.ID] = sec
	return nil
}

func (m *memStore) DeleteSection(_ context.Context, id string) error {
	if _, ok := m.sections[id]; !ok {
		return response.ErrNotFound
	}
	delete(m.sections, id)
	return nil
}

func (m *memStore) ListSections(_ context.Context) ([]models.Section, error) {
	out := make([]models.Section, 0, len(m.sections))
	for _, sec := range m.sections {
		out = append(out, sec)
	}
	return out, nil
}

func (m *memStore) SaveOverride(_ context.Context, o models.ScheduleOverride) error {
	for i, existing := range m.overrides {
		if existing.SectionID == o.SectionID && existing.Date.Equal(o.Date) {
			m.overrides[i] = o
			return nil
		}
	}
	m.overrides = append(m.overrides, o)
	return nil
}

func (m *memStore) DeleteOverride(_ context.Context, date dates.Date, sectionID string) error {
	out := m.overrides[:0]
	for _, o := range m.overrides {
		if o.SectionID == sectionID && o.Date.Equal(date) {
			continue
		}
		out = append(out, o)
	}
	m.overrides = out
	return nil
}

func (m *memStore) ListOverrides(_ context.Context) ([]models.ScheduleOverride, error) {
	return append([]models.ScheduleOverride(nil), m.overrides...), nil
}

func (m *memStore) GetDay(_ context.Context, date dates.Date) (models.DayRecords, error) {
	if day, ok := m.days[date]; ok {
		return day.Clone(), nil
	}
	return models.DayRecords{}, nil
}

func (m *memStore) ListAttendance(_ context.Context) (map[dates.Date]models.DayRecords, error) {
	out := make(map[dates.Date]models.DayRecords, len(m.days))
	for date, day := range m.days {
		out[date] = day.Clone()
	}
	return out, nil
}

func (m *memStore) UpsertCell(_ context.Context, date dates.Date, personID, sectionID string, rec models.AttendanceRecord) error {
	if m.days[date] == nil {
		m.days[date] = models.DayRecords{}
	}
	m.days[date].Set(personID, sectionID, rec)
	return nil
}

func (m *memStore) DeleteCell(_ context.Context, date dates.Date, personID, sectionID string) error {
	if day, ok := m.days[date]; ok {
		day.Delete(personID, sectionID)
	}
	return nil
}

func (m *memStore) ClearSection(_ context.Context, date dates.Date, sectionID string) error {
	day, ok := m.days[date]
	if !ok {
		return nil
	}
	for personID := range day {
		day.Delete(personID, sectionID)
	}
	return nil
}

func (m *memStore) ReplaceDay(_ context.Context, date dates.Date, day models.DayRecords) error {
	m.days[date] = day.Clone()
	return nil
}

func (m *memStore) SaveOutRecord(_ context.Context, rec models.OutRecord) error {
	for i, existing := range m.outs {
		if existing.ID == rec.ID {
			m.outs[i] = rec
			return nil
		}
	}
	m.outs = append(m.outs, rec)
	return nil
}

func (m *memStore) DeleteOutRecord(_ context.Context, recordID string) error {
	for i, rec := range m.outs {
		if rec.ID == recordID {
			m.outs = append(m.outs[:i], m.outs[i+1:]...)
			return nil
		}
	}
	return response.ErrNotFound
}

func (m *memStore) ListOutRecords(_ context.Context) ([]models.OutRecord, error) {
	return append([]models.OutRecord(nil), m.outs...), nil
}

func (m *memStore) ReplaceOutGroup(_ context.Context, groupID string, records []models.OutRecord) error {
	out := m.outs[:0]
	for _, rec := range m.outs {
		if rec.GroupID == groupID {
			continue
		}
		out = append(out, rec)
	}
	m.outs = append(out, records...)
	return nil
}

func (m *memStore) DeleteOutGroup(_ context.Context, groupID string) error {
	found := false
	out := m.outs[:0]
	for _, rec := range m.outs {
		if rec.GroupID == groupID {
			found = true
			continue
		}
		out = append(out, rec)
	}
	m.outs = out
	if !found {
		return response.ErrNotFound
	}
	return nil
}

func (m *memStore) SaveNote(_ context.Context, n models.PersistentNote) error {
	m.notes[[2]string{n.PersonID, n.SectionID}] = n
	return nil
}

func (m *memStore) ListNotes(_ context.Context) ([]models.PersistentNote, error) {
	out := make([]models.PersistentNote, 0, len(m.notes))
	for _, n := range m.notes {
		out = append(out, n)
	}
	return out, nil
}

// memLocker grants every lock unless told otherwise.
type memLocker struct {
	held map[string]bool
}

func newMemLocker() *memLocker { return &memLocker{held: make(map[string]bool)} }

func (l *memLocker) Lock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *memLocker) Unlock(_ context.Context, key string) error {
	delete(l.held, key)
	return nil
}

func fixedClock(s string) func() time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()

	store := newMemStore()
	store.sections["s1"] = models.Section{ID: "s1", Name: "Class 1", StartTime: "09:00", Duration: 50}
	store.sections["s2"] = models.Section{ID: "s2", Name: "Class 2", StartTime: "10:00", Duration: 50}
	store.people["p1"] = models.Person{ID: "p1", FirstName: "Ada", LastName: "Stone", Type: models.Student}
	store.people["p2"] = models.Person{ID: "p2", FirstName: "Ben", LastName: "Reed", Type: models.Student}

	svc := NewService(store, newMemLocker()).WithClock(fixedClock("2024-01-15 12:00"))
	return svc, store
}

func TestCreatePersonSplitsName(t *testing.T) {
	svc, store := newTestService(t)

	resp, err := svc.CreatePerson(context.Background(), &api.PersonRequest{
		Name: "Maria Del Rio",
		Type: "student",
	})
	require.NoError(t, err)

	assert.Equal(t, "Maria", resp.FirstName)
	assert.Equal(t, "Del Rio", resp.LastName)
	assert.Contains(t, store.people, resp.ID)
}

func TestSetStatusPersistsCell(t *testing.T) {
	svc, store := newTestService(t)

	err := svc.SetStatus(context.Background(), "2024-01-15", &api.StatusChangeRequest{
		PersonID:  "p1",
		SectionID: "s1",
		Status:    "Late",
	})
	require.NoError(t, err)

	day := store.days[dates.MustParse("2024-01-15")]
	rec, ok := day.Get("p1", "s1")
	require.True(t, ok)
	assert.Equal(t, models.Late, rec.Status)
	// 12:00 against a 09:00 start, clamped to the maximum.
	assert.Equal(t, 50, rec.MinutesLate)
}

func TestSetStatusExemptCellIsIgnored(t *testing.T) {
	svc, store := newTestService(t)

	store.outs = append(store.outs, models.OutRecord{
		ID: "o1", PersonID: "p1",
		StartDate: dates.MustParse("2024-01-15"), EndDate: dates.MustParse("2024-01-15"),
		StartSectionID: "s1", EndSectionID: "s2",
	})

	err := svc.SetStatus(context.Background(), "2024-01-15", &api.StatusChangeRequest{
		PersonID:  "p1",
		SectionID: "s1",
		Status:    "Absent",
	})
	require.NoError(t, err)

	day := store.days[dates.MustParse("2024-01-15")]
	_, ok := day.Get("p1", "s1")
	assert.False(t, ok, "exempt cell must not be written")
}

func TestSetStatusNotMarkedDeletes(t *testing.T) {
	svc, store := newTestService(t)

	ctx := context.Background()
	require.NoError(t, svc.SetStatus(ctx, "2024-01-15", &api.StatusChangeRequest{
		PersonID: "p1", SectionID: "s1", Status: "Absent",
	}))
	require.NoError(t, svc.SetStatus(ctx, "2024-01-15", &api.StatusChangeRequest{
		PersonID: "p1", SectionID: "s1", Status: "Not Marked",
	}))

	day := store.days[dates.MustParse("2024-01-15")]
	_, ok := day.Get("p1", "s1")
	assert.False(t, ok)
}

func TestUndoOverwritesStoredDay(t *testing.T) {
	svc, store := newTestService(t)

	ctx := context.Background()
	require.NoError(t, svc.SetStatus(ctx, "2024-01-15", &api.StatusChangeRequest{
		PersonID: "p1", SectionID: "s1", Status: "On Time",
	}))
	require.NoError(t, svc.SetStatus(ctx, "2024-01-15", &api.StatusChangeRequest{
		PersonID: "p2", SectionID: "s1", Status: "Absent",
	}))

	require.NoError(t, svc.Undo(ctx, "2024-01-15"))

	day := store.days[dates.MustParse("2024-01-15")]
	_, ok := day.Get("p2", "s1")
	assert.False(t, ok, "second write must be rolled back")
	rec, ok := day.Get("p1", "s1")
	require.True(t, ok)
	assert.Equal(t, models.OnTime, rec.Status)

	require.NoError(t, svc.Redo(ctx, "2024-01-15"))
	day = store.days[dates.MustParse("2024-01-15")]
	_, ok = day.Get("p2", "s1")
	assert.True(t, ok)
}

func TestUndoWithoutHistory(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Undo(context.Background(), "2024-01-15")
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestHistoryClearedOnDateSwitch(t *testing.T) {
	svc, _ := newTestService(t)

	ctx := context.Background()
	require.NoError(t, svc.SetStatus(ctx, "2024-01-15", &api.StatusChangeRequest{
		PersonID: "p1", SectionID: "s1", Status: "On Time",
	}))

	// Viewing another date discards the session.
	_, err := svc.GetDay(ctx, "2024-01-14")
	require.NoError(t, err)

	err = svc.Undo(ctx, "2024-01-15")
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestUnmarkAll(t *testing.T) {
	svc, store := newTestService(t)

	ctx := context.Background()
	require.NoError(t, svc.SetStatus(ctx, "2024-01-15", &api.StatusChangeRequest{
		PersonID: "p1", SectionID: "s1", Status: "On Time",
	}))
	require.NoError(t, svc.SetStatus(ctx, "2024-01-15", &api.StatusChangeRequest{
		PersonID: "p2", SectionID: "s1", Status: "Absent",
	}))

	removed, err := svc.UnmarkAll(ctx, "2024-01-15", "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	day := store.days[dates.MustParse("2024-01-15")]
	assert.False(t, day.SectionHeld("s1"))

	// The whole batch reverts with one undo.
	require.NoError(t, svc.Undo(ctx, "2024-01-15"))
	day = store.days[dates.MustParse("2024-01-15")]
	assert.True(t, day.SectionHeld("s1"))
}

func TestGroupAbsenceValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateGroupAbsence(ctx, &api.GroupAbsenceRequest{
		PersonIDs: nil,
		StartDate: "2024-01-15", EndDate: "2024-01-16",
		StartSectionID: "s1", EndSectionID: "s2",
	})
	assert.ErrorIs(t, err, response.ErrValidation, "empty selection")

	_, err = svc.CreateGroupAbsence(ctx, &api.GroupAbsenceRequest{
		PersonIDs: []string{"p1"},
		StartDate: "2024-01-16", EndDate: "2024-01-15",
		StartSectionID: "s1", EndSectionID: "s2",
	})
	assert.ErrorIs(t, err, response.ErrValidation, "inverted range")
}

func TestGroupAbsenceReplaceAndDelete(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateGroupAbsence(ctx, &api.GroupAbsenceRequest{
		PersonIDs: []string{"p1", "p2"},
		StartDate: "2024-01-15", EndDate: "2024-01-16",
		StartSectionID: "s1", EndSectionID: "s2",
		Note: "field trip",
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	groupID := created[0].GroupID
	require.NotEmpty(t, groupID)

	// Editing the group swaps the member set in one batch; no old record
	// survives.
	_, err = svc.CreateGroupAbsence(ctx, &api.GroupAbsenceRequest{
		GroupID:   groupID,
		PersonIDs: []string{"p2"},
		StartDate: "2024-01-15", EndDate: "2024-01-17",
		StartSectionID: "s1", EndSectionID: "s1",
		Note: "field trip",
	})
	require.NoError(t, err)

	require.Len(t, store.outs, 1)
	assert.Equal(t, "p2", store.outs[0].PersonID)
	assert.Equal(t, groupID, store.outs[0].GroupID)

	require.NoError(t, svc.DeleteGroupAbsence(ctx, groupID))
	assert.Empty(t, store.outs)

	err = svc.DeleteGroupAbsence(ctx, groupID)
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestDayLockContention(t *testing.T) {
	store := newMemStore()
	store.sections["s1"] = models.Section{ID: "s1", Name: "Class 1", StartTime: "09:00", Duration: 50}
	store.people["p1"] = models.Person{ID: "p1", FirstName: "Ada", Type: models.Student}

	locker := newMemLocker()
	svc := NewService(store, locker).WithClock(fixedClock("2024-01-15 12:00"))

	ctx := context.Background()
	locker.held["attendance:2024-01-15"] = true

	err := svc.SetStatus(ctx, "2024-01-15", &api.StatusChangeRequest{
		PersonID: "p1", SectionID: "s1", Status: "Absent",
	})
	assert.ErrorIs(t, err, response.ErrLocked)
}

func TestGetDayResolvesImplicitStatuses(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	// Yesterday: p1 marked, p2 not. The class ran, so p2 resolves to
	// Unmarked.
	yesterday := dates.MustParse("2024-01-14")
	store.days[yesterday] = models.DayRecords{}
	store.days[yesterday].Set("p1", "s1", models.AttendanceRecord{Status: models.OnTime})

	resp, err := svc.GetDay(ctx, "2024-01-14")
	require.NoError(t, err)

	assert.Equal(t, "On Time", resp.Records["p1"]["s1"].Status)
	assert.Equal(t, "Unmarked", resp.Records["p2"]["s1"].Status)
	assert.NotEmpty(t, resp.HebrewDate)
	assert.Empty(t, resp.ActiveSectionID, "active section only applies to today")
}

func TestGetDayActiveSectionToday(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.GetDay(context.Background(), "2024-01-15")
	require.NoError(t, err)

	// At 12:00 the 10:00 class is the last one started.
	assert.Equal(t, "s2", resp.ActiveSectionID)
}

func TestSummaryEndpointShape(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	day := dates.MustParse("2024-01-10")
	store.days[day] = models.DayRecords{}
	store.days[day].Set("p1", "s1", models.AttendanceRecord{Status: models.Late, MinutesLate: 10})

	resp, err := svc.Summary(ctx, "p1", "", "")
	require.NoError(t, err)

	assert.Equal(t, "80.0", resp.PresentPercentage)
	assert.Equal(t, 10, resp.TotalMinutesLate)
	assert.Equal(t, "10m", resp.TotalLateDisplay)
	assert.Equal(t, "Class 1", resp.PerClass["s1"].SectionName)
	assert.Equal(t, "N/A", resp.PerClass["s2"].Percentage)
}
