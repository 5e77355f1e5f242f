package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dosewell/dosewell/internal/model"
)

type IntakeStore struct {
	db *sql.DB
}

func NewIntakeStore(db *sql.DB) *IntakeStore {
	return &IntakeStore{db: db}
}

func scanIntake(scanner interface{ Scan(...any) error }) (*model.Intake, error) {
	var in model.Intake
	var familyMemberID sql.NullInt64

	err := scanner.Scan(&in.ID, &in.SupplementID, &in.UserID, &familyMemberID,
		&in.TakenAt, &in.DosageTaken, &in.Notes, &in.PhotoConfirmation)
	if err != nil {
		return nil, err
	}

	if familyMemberID.Valid {
		in.FamilyMemberID = &familyMemberID.Int64
	}
	return &in, nil
}

const intakeCols = `id, supplement_id, user_id, family_member_id, taken_at, dosage_taken, notes, photo_confirmation`

// Create appends an intake record. Records are never updated or deleted
// afterwards, apart from attaching a photo confirmation.
func (s *IntakeStore) Create(supplementID, userID int64, familyMemberID *int64, dosageTaken, notes string) (*model.Intake, error) {
	var fmID sql.NullInt64
	if familyMemberID != nil {
		fmID = sql.NullInt64{Int64: *familyMemberID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO supplement_intakes (supplement_id, user_id, family_member_id, taken_at, dosage_taken, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		supplementID, userID, fmID, time.Now().UTC(), dosageTaken, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert intake: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *IntakeStore) GetByID(id int64) (*model.Intake, error) {
	row := s.db.QueryRow(`SELECT `+intakeCols+` FROM supplement_intakes WHERE id = ?`, id)
	in, err := scanIntake(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get intake: %w", err)
	}
	return in, nil
}

func (s *IntakeStore) SetPhotoConfirmation(id int64, photo string) error {
	_, err := s.db.Exec(`UPDATE supplement_intakes SET photo_confirmation = ? WHERE id = ?`, photo, id)
	if err != nil {
		return fmt.Errorf("set photo confirmation: %w", err)
	}
	return nil
}

// CountRange counts the owner's intakes with taken_at inside [start, end],
// compared as timestamps.
func (s *IntakeStore) CountRange(owner model.Owner, start, end time.Time) (int, error) {
	where, args := ownerFilter(owner)
	args = append(args, start, end)

	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM supplement_intakes WHERE `+where+` AND taken_at >= ? AND taken_at <= ?`,
		args...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count intakes: %w", err)
	}
	return n, nil
}

// ListRange returns the owner's intakes with taken_at inside [start, end],
// most recent first.
func (s *IntakeStore) ListRange(owner model.Owner, start, end time.Time) ([]model.Intake, error) {
	where, args := ownerFilter(owner)
	args = append(args, start, end)

	rows, err := s.db.Query(
		`SELECT `+intakeCols+` FROM supplement_intakes WHERE `+where+` AND taken_at >= ? AND taken_at <= ? ORDER BY taken_at DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list intakes: %w", err)
	}
	defer rows.Close()

	var intakes []model.Intake
	for rows.Next() {
		in, err := scanIntake(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intake: %w", err)
		}
		intakes = append(intakes, *in)
	}
	return intakes, rows.Err()
}

// HistoryFilter narrows History results. Nil fields are ignored.
type HistoryFilter struct {
	SupplementID *int64
	Start        *time.Time
	End          *time.Time
}

// History returns the owner's intakes, most recent first, optionally filtered
// by supplement and date bounds.
func (s *IntakeStore) History(owner model.Owner, f HistoryFilter) ([]model.Intake, error) {
	where, args := ownerFilter(owner)
	query := `SELECT ` + intakeCols + ` FROM supplement_intakes WHERE ` + where

	if f.SupplementID != nil {
		query += ` AND supplement_id = ?`
		args = append(args, *f.SupplementID)
	}
	if f.Start != nil {
		query += ` AND taken_at >= ?`
		args = append(args, *f.Start)
	}
	if f.End != nil {
		query += ` AND taken_at <= ?`
		args = append(args, *f.End)
	}
	query += ` ORDER BY taken_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("intake history: %w", err)
	}
	defer rows.Close()

	var intakes []model.Intake
	for rows.Next() {
		in, err := scanIntake(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intake: %w", err)
		}
		intakes = append(intakes, *in)
	}
	return intakes, rows.Err()
}

// CountBySupplement counts all of the owner's intakes of one supplement.
func (s *IntakeStore) CountBySupplement(owner model.Owner, supplementID int64) (int, error) {
	where, args := ownerFilter(owner)
	args = append(args, supplementID)

	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM supplement_intakes WHERE `+where+` AND supplement_id = ?`,
		args...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count intakes by supplement: %w", err)
	}
	return n, nil
}

// LastTaken returns the most recent taken_at for the owner and supplement,
// or nil when no intake exists.
func (s *IntakeStore) LastTaken(owner model.Owner, supplementID int64) (*time.Time, error) {
	where, args := ownerFilter(owner)
	args = append(args, supplementID)

	var t time.Time
	err := s.db.QueryRow(
		`SELECT taken_at FROM supplement_intakes WHERE `+where+` AND supplement_id = ? ORDER BY taken_at DESC LIMIT 1`,
		args...,
	).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last taken: %w", err)
	}
	return &t, nil
}

func (s *IntakeStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM supplement_intakes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count intakes: %w", err)
	}
	return n, nil
}

// CountSince counts intakes logged at or after the given time, fleet-wide.
func (s *IntakeStore) CountSince(since time.Time) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM supplement_intakes WHERE taken_at >= ?`, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count intakes since: %w", err)
	}
	return n, nil
}
