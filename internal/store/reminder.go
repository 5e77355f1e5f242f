package store

import (
	"database/sql"
	"fmt"

	"github.com/dosewell/dosewell/internal/model"
)

type ReminderStore struct {
	db *sql.DB
}

func NewReminderStore(db *sql.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

func scanReminder(scanner interface{ Scan(...any) error }) (*model.Reminder, error) {
	var r model.Reminder
	var familyMemberID sql.NullInt64
	var active int

	err := scanner.Scan(&r.ID, &r.SupplementID, &r.UserID, &familyMemberID,
		&r.TimeOfDay, &r.Days, &active, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	if familyMemberID.Valid {
		r.FamilyMemberID = &familyMemberID.Int64
	}
	r.Active = active != 0
	return &r, nil
}

const reminderCols = `id, supplement_id, user_id, family_member_id, time_of_day, days, active, created_at`

// Upsert creates the reminder for (supplement, owner) or, if one already
// exists, overwrites its time and days and re-activates it.
func (s *ReminderStore) Upsert(supplementID, userID int64, familyMemberID *int64, timeOfDay, days string) (*model.Reminder, error) {
	var fmID sql.NullInt64
	if familyMemberID != nil {
		fmID = sql.NullInt64{Int64: *familyMemberID, Valid: true}
	}

	var existingID int64
	var err error
	if familyMemberID != nil {
		err = s.db.QueryRow(
			`SELECT id FROM reminders WHERE supplement_id = ? AND family_member_id = ?`,
			supplementID, *familyMemberID,
		).Scan(&existingID)
	} else {
		err = s.db.QueryRow(
			`SELECT id FROM reminders WHERE supplement_id = ? AND user_id = ? AND family_member_id IS NULL`,
			supplementID, userID,
		).Scan(&existingID)
	}

	if err == nil {
		_, err = s.db.Exec(
			`UPDATE reminders SET time_of_day = ?, days = ?, active = 1 WHERE id = ?`,
			timeOfDay, days, existingID,
		)
		if err != nil {
			return nil, fmt.Errorf("update reminder: %w", err)
		}
		return s.GetByID(existingID)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("find reminder: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO reminders (supplement_id, user_id, family_member_id, time_of_day, days, active)
		 VALUES (?, ?, ?, ?, ?, 1)`,
		supplementID, userID, fmID, timeOfDay, days,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ReminderStore) GetByID(id int64) (*model.Reminder, error) {
	row := s.db.QueryRow(`SELECT `+reminderCols+` FROM reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return r, nil
}

// ListActiveByOwner returns the owner's active reminders. This is the input
// to schedule derivation.
func (s *ReminderStore) ListActiveByOwner(owner model.Owner) ([]model.Reminder, error) {
	where, args := ownerFilter(owner)
	rows, err := s.db.Query(
		`SELECT `+reminderCols+` FROM reminders WHERE `+where+` AND active = 1 ORDER BY id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list active reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

func (s *ReminderStore) ListBySupplement(supplementID int64) ([]model.Reminder, error) {
	rows, err := s.db.Query(
		`SELECT `+reminderCols+` FROM reminders WHERE supplement_id = ? ORDER BY id ASC`,
		supplementID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reminders by supplement: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

func (s *ReminderStore) Deactivate(id int64) error {
	_, err := s.db.Exec(`UPDATE reminders SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate reminder: %w", err)
	}
	return nil
}

func (s *ReminderStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reminders WHERE active = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reminders: %w", err)
	}
	return n, nil
}
