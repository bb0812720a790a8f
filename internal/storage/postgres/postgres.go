package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"attendance-service/internal/dates"
	"attendance-service/internal/models"
	"attendance-service/pkg/response"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// #### people ####

func (s *Storage) SavePerson(ctx context.Context, p models.Person) error {
	const op = "storage.postgres.SavePerson"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO people (person_id, first_name, last_name, person_type, email)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.FirstName, p.LastName, string(p.Type), p.Email,
	)
	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		if ok && sqlErr.Code == "23505" {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) UpdatePerson(ctx context.Context, p models.Person) error {
	const op = "storage.postgres.UpdatePerson"

	res, err := s.db.ExecContext(ctx,
		`UPDATE people SET first_name=$2, last_name=$3, person_type=$4, email=$5
		WHERE person_id=$1`,
		p.ID, p.FirstName, p.LastName, string(p.Type), p.Email,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeletePerson(ctx context.Context, personID string) error {
	const op = "storage.postgres.DeletePerson"

	res, err := s.db.ExecContext(ctx, `DELETE FROM people WHERE person_id=$1`, personID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) ListPeople(ctx context.Context) ([]models.Person, error) {
	const op = "storage.postgres.ListPeople"

	rows, err := s.db.QueryContext(ctx,
		`SELECT person_id, first_name, last_name, person_type, email
		FROM people ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		var p models.Person
		var personType string
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &personType, &p.Email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.Type = models.PersonType(personType)
		people = append(people, p)
	}

	return people, rows.Err()
}

// #### sections ####

func (s *Storage) SaveSection(ctx context.Context, sec models.Section) error {
	const op = "storage.postgres.SaveSection"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sections (section_id, name, start_time, duration_minutes)
		VALUES ($1, $2, $3, $4)`,
		sec.ID, sec.Name, sec.StartTime, sec.Duration,
	)
	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		if ok && sqlErr.Code == "23505" {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) UpdateSection(ctx context.Context, sec models.Section) error {
	const op = "storage.postgres.UpdateSection"

	res, err := s.db.ExecContext(ctx,
		`UPDATE sections SET name=$2, start_time=$3, duration_minutes=$4
		WHERE section_id=$1`,
		sec.ID, sec.Name, sec.StartTime, sec.Duration,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteSection(ctx context.Context, sectionID string) error {
	const op = "storage.postgres.DeleteSection"

	res, err := s.db.ExecContext(ctx, `DELETE FROM sections WHERE section_id=$1`, sectionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) ListSections(ctx context.Context) ([]models.Section, error) {
	const op = "storage.postgres.ListSections"

	rows, err := s.db.QueryContext(ctx,
		`SELECT section_id, name, start_time, duration_minutes
		FROM sections ORDER BY start_time, section_id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		var sec models.Section
		if err := rows.Scan(&sec.ID, &sec.Name, &sec.StartTime, &sec.Duration); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sections = append(sections, sec)
	}

	return sections, rows.Err()
}

// #### schedule overrides ####

func (s *Storage) SaveOverride(ctx context.Context, o models.ScheduleOverride) error {
	const op = "storage.postgres.SaveOverride"

	// One override per (date, section): a later save replaces the earlier.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule_overrides (override_date, section_id, new_start_time)
		VALUES ($1, $2, $3)
		ON CONFLICT (override_date, section_id)
		DO UPDATE SET new_start_time = EXCLUDED.new_start_time`,
		o.Date.Time(), o.SectionID, o.NewStartTime,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteOverride(ctx context.Context, date dates.Date, sectionID string) error {
	const op = "storage.postgres.DeleteOverride"

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM schedule_overrides WHERE override_date=$1 AND section_id=$2`,
		date.Time(), sectionID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ListOverrides(ctx context.Context) ([]models.ScheduleOverride, error) {
	const op = "storage.postgres.ListOverrides"

	rows, err := s.db.QueryContext(ctx,
		`SELECT override_date, section_id, new_start_time FROM schedule_overrides`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var overrides []models.ScheduleOverride
	for rows.Next() {
		var o models.ScheduleOverride
		var day time.Time
		if err := rows.Scan(&day, &o.SectionID, &o.NewStartTime); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		o.Date = dates.FromTime(day)
		overrides = append(overrides, o)
	}

	return overrides, rows.Err()
}

// #### attendance ####

func (s *Storage) GetDay(ctx context.Context, date dates.Date) (models.DayRecords, error) {
	const op = "storage.postgres.GetDay"

	rows, err := s.db.QueryContext(ctx,
		`SELECT person_id, section_id, status, recorded_at, note, minutes_late
		FROM attendance_records WHERE att_date=$1`,
		date.Time(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	day := models.DayRecords{}
	for rows.Next() {
		var personID, sectionID, status string
		var rec models.AttendanceRecord
		if err := rows.Scan(&personID, &sectionID, &status, &rec.RecordedAt, &rec.Note, &rec.MinutesLate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rec.Status = models.Status(status)
		day.Set(personID, sectionID, rec)
	}

	return day, rows.Err()
}

func (s *Storage) ListAttendance(ctx context.Context) (map[dates.Date]models.DayRecords, error) {
	const op = "storage.postgres.ListAttendance"

	rows, err := s.db.QueryContext(ctx,
		`SELECT att_date, person_id, section_id, status, recorded_at, note, minutes_late
		FROM attendance_records`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	all := make(map[dates.Date]models.DayRecords)
	for rows.Next() {
		var day time.Time
		var personID, sectionID, status string
		var rec models.AttendanceRecord
		if err := rows.Scan(&day, &personID, &sectionID, &status, &rec.RecordedAt, &rec.Note, &rec.MinutesLate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rec.Status = models.Status(status)

		date := dates.FromTime(day)
		if all[date] == nil {
			all[date] = models.DayRecords{}
		}
		all[date].Set(personID, sectionID, rec)
	}

	return all, rows.Err()
}

func (s *Storage) UpsertCell(ctx context.Context, date dates.Date, personID, sectionID string, rec models.AttendanceRecord) error {
	const op = "storage.postgres.UpsertCell"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance_records (att_date, person_id, section_id, status, recorded_at, note, minutes_late)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (att_date, person_id, section_id)
		DO UPDATE SET status = EXCLUDED.status,
			recorded_at = EXCLUDED.recorded_at,
			note = EXCLUDED.note,
			minutes_late = EXCLUDED.minutes_late`,
		date.Time(), personID, sectionID, string(rec.Status), rec.RecordedAt, rec.Note, rec.MinutesLate,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteCell(ctx context.Context, date dates.Date, personID, sectionID string) error {
	const op = "storage.postgres.DeleteCell"

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM attendance_records WHERE att_date=$1 AND person_id=$2 AND section_id=$3`,
		date.Time(), personID, sectionID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ClearSection(ctx context.Context, date dates.Date, sectionID string) error {
	const op = "storage.postgres.ClearSection"

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM attendance_records WHERE att_date=$1 AND section_id=$2`,
		date.Time(), sectionID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ReplaceDay overwrites the whole day document in one transaction: rows
// absent from the new map are removed, which is what makes undo a full
// overwrite rather than a merge.
func (s *Storage) ReplaceDay(ctx context.Context, date dates.Date, day models.DayRecords) error {
	const op = "storage.postgres.ReplaceDay"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_records WHERE att_date=$1`, date.Time()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for personID, cells := range day {
		for sectionID, rec := range cells {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO attendance_records (att_date, person_id, section_id, status, recorded_at, note, minutes_late)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				date.Time(), personID, sectionID, string(rec.Status), rec.RecordedAt, rec.Note, rec.MinutesLate,
			)
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// #### out records ####

func (s *Storage) SaveOutRecord(ctx context.Context, rec models.OutRecord) error {
	const op = "storage.postgres.SaveOutRecord"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO out_records
		(out_record_id, person_id, start_date, end_date, start_section_id, end_section_id, note, group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (out_record_id)
		DO UPDATE SET start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			start_section_id = EXCLUDED.start_section_id,
			end_section_id = EXCLUDED.end_section_id,
			note = EXCLUDED.note`,
		rec.ID, rec.PersonID, rec.StartDate.Time(), rec.EndDate.Time(),
		rec.StartSectionID, rec.EndSectionID, rec.Note, rec.GroupID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteOutRecord(ctx context.Context, recordID string) error {
	const op = "storage.postgres.DeleteOutRecord"

	res, err := s.db.ExecContext(ctx, `DELETE FROM out_records WHERE out_record_id=$1`, recordID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// ListOutRecords returns records oldest-first, so an overlapping lookup
// resolves to the earliest created record.
func (s *Storage) ListOutRecords(ctx context.Context) ([]models.OutRecord, error) {
	const op = "storage.postgres.ListOutRecords"

	rows, err := s.db.QueryContext(ctx,
		`SELECT out_record_id, person_id, start_date, end_date, start_section_id, end_section_id, note, group_id
		FROM out_records ORDER BY created_at, out_record_id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var records []models.OutRecord
	for rows.Next() {
		var rec models.OutRecord
		var start, end time.Time
		if err := rows.Scan(&rec.ID, &rec.PersonID, &start, &end, &rec.StartSectionID, &rec.EndSectionID, &rec.Note, &rec.GroupID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rec.StartDate = dates.FromTime(start)
		rec.EndDate = dates.FromTime(end)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ReplaceOutGroup atomically swaps every record sharing the group id for
// the new set; either all constituent changes apply or none do.
func (s *Storage) ReplaceOutGroup(ctx context.Context, groupID string, records []models.OutRecord) error {
	const op = "storage.postgres.ReplaceOutGroup"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM out_records WHERE group_id=$1`, groupID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, rec := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO out_records
			(out_record_id, person_id, start_date, end_date, start_section_id, end_section_id, note, group_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			rec.ID, rec.PersonID, rec.StartDate.Time(), rec.EndDate.Time(),
			rec.StartSectionID, rec.EndSectionID, rec.Note, rec.GroupID,
		)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteOutGroup(ctx context.Context, groupID string) error {
	const op = "storage.postgres.DeleteOutGroup"

	res, err := s.db.ExecContext(ctx, `DELETE FROM out_records WHERE group_id=$1`, groupID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### persistent notes ####

func (s *Storage) SaveNote(ctx context.Context, n models.PersistentNote) error {
	const op = "storage.postgres.SaveNote"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO persistent_notes (person_id, section_id, note)
		VALUES ($1, $2, $3)
		ON CONFLICT (person_id, section_id)
		DO UPDATE SET note = EXCLUDED.note`,
		n.PersonID, n.SectionID, n.Note,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ListNotes(ctx context.Context) ([]models.PersistentNote, error) {
	const op = "storage.postgres.ListNotes"

	rows, err := s.db.QueryContext(ctx,
		`SELECT person_id, section_id, note FROM persistent_notes`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var notes []models.PersistentNote
	for rows.Next() {
		var n models.PersistentNote
		if err := rows.Scan(&n.PersonID, &n.SectionID, &n.Note); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}
