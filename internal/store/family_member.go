package store

import (
	"database/sql"
	"fmt"

	"github.com/dosewell/dosewell/internal/model"
)

type FamilyMemberStore struct {
	db *sql.DB
}

func NewFamilyMemberStore(db *sql.DB) *FamilyMemberStore {
	return &FamilyMemberStore{db: db}
}

func scanFamilyMember(scanner interface{ Scan(...any) error }) (*model.FamilyMember, error) {
	var m model.FamilyMember
	err := scanner.Scan(&m.ID, &m.UserID, &m.Name, &m.Email, &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const familyMemberCols = `id, user_id, name, email, status, created_at`

func (s *FamilyMemberStore) Create(userID int64, name, email string) (*model.FamilyMember, error) {
	result, err := s.db.Exec(
		`INSERT INTO family_members (user_id, name, email, status) VALUES (?, ?, ?, ?)`,
		userID, name, email, model.MemberStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("insert family member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *FamilyMemberStore) GetByID(id int64) (*model.FamilyMember, error) {
	row := s.db.QueryRow(`SELECT `+familyMemberCols+` FROM family_members WHERE id = ?`, id)
	m, err := scanFamilyMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family member: %w", err)
	}
	return m, nil
}

// GetOwned returns the family member only when it belongs to the given user.
func (s *FamilyMemberStore) GetOwned(id, userID int64) (*model.FamilyMember, error) {
	row := s.db.QueryRow(
		`SELECT `+familyMemberCols+` FROM family_members WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	m, err := scanFamilyMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get owned family member: %w", err)
	}
	return m, nil
}

// ListByUser returns the user's family members in creation order. The
// leaderboard relies on this ordering as its tie-break.
func (s *FamilyMemberStore) ListByUser(userID int64) ([]model.FamilyMember, error) {
	rows, err := s.db.Query(
		`SELECT `+familyMemberCols+` FROM family_members WHERE user_id = ? ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	defer rows.Close()

	var members []model.FamilyMember
	for rows.Next() {
		m, err := scanFamilyMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *FamilyMemberStore) SetStatus(id int64, status string) error {
	_, err := s.db.Exec(`UPDATE family_members SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set family member status: %w", err)
	}
	return nil
}
