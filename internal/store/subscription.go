package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dosewell/dosewell/internal/model"
)

type SubscriptionStore struct {
	db *sql.DB
}

func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.Subscription, error) {
	var sub model.Subscription
	var pauseDate, resumeDate sql.NullTime

	err := scanner.Scan(&sub.ID, &sub.FamilyMemberID, &sub.Tier, &sub.Status,
		&sub.StartDate, &pauseDate, &resumeDate, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}

	if pauseDate.Valid {
		sub.PauseDate = &pauseDate.Time
	}
	if resumeDate.Valid {
		sub.ResumeDate = &resumeDate.Time
	}
	return &sub, nil
}

const subscriptionCols = `id, family_member_id, tier, status, start_date, pause_date, resume_date, created_at`

func (s *SubscriptionStore) Create(familyMemberID int64, tier string) (*model.Subscription, error) {
	result, err := s.db.Exec(
		`INSERT INTO subscriptions (family_member_id, tier, status, start_date) VALUES (?, ?, ?, ?)`,
		familyMemberID, tier, model.SubscriptionActive, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *SubscriptionStore) GetByID(id int64) (*model.Subscription, error) {
	row := s.db.QueryRow(`SELECT `+subscriptionCols+` FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (s *SubscriptionStore) Pause(id int64) (*model.Subscription, error) {
	_, err := s.db.Exec(
		`UPDATE subscriptions SET status = ?, pause_date = ?, resume_date = NULL WHERE id = ?`,
		model.SubscriptionPaused, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("pause subscription: %w", err)
	}
	return s.GetByID(id)
}

func (s *SubscriptionStore) Resume(id int64) (*model.Subscription, error) {
	_, err := s.db.Exec(
		`UPDATE subscriptions SET status = ?, resume_date = ? WHERE id = ?`,
		model.SubscriptionActive, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("resume subscription: %w", err)
	}
	return s.GetByID(id)
}

func (s *SubscriptionStore) UpdateTier(id int64, tier string) (*model.Subscription, error) {
	_, err := s.db.Exec(`UPDATE subscriptions SET tier = ? WHERE id = ?`, tier, id)
	if err != nil {
		return nil, fmt.Errorf("update subscription tier: %w", err)
	}
	return s.GetByID(id)
}

// ListByMember returns the member's subscriptions, newest first.
func (s *SubscriptionStore) ListByMember(familyMemberID int64) ([]model.Subscription, error) {
	rows, err := s.db.Query(
		`SELECT `+subscriptionCols+` FROM subscriptions WHERE family_member_id = ? ORDER BY id DESC`,
		familyMemberID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func scanSubscriptionItem(scanner interface{ Scan(...any) error }) (*model.SubscriptionItem, error) {
	var item model.SubscriptionItem
	err := scanner.Scan(&item.ID, &item.SubscriptionID, &item.SupplementID, &item.Quantity, &item.AddedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

const subscriptionItemCols = `id, subscription_id, supplement_id, quantity, added_at`

func (s *SubscriptionStore) AddItem(subscriptionID, supplementID int64, quantity int) (*model.SubscriptionItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO subscription_items (subscription_id, supplement_id, quantity) VALUES (?, ?, ?)`,
		subscriptionID, supplementID, quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscription item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+subscriptionItemCols+` FROM subscription_items WHERE id = ?`, id)
	item, err := scanSubscriptionItem(row)
	if err != nil {
		return nil, fmt.Errorf("get subscription item: %w", err)
	}
	return item, nil
}

func (s *SubscriptionStore) ListItems(subscriptionID int64) ([]model.SubscriptionItem, error) {
	rows, err := s.db.Query(
		`SELECT `+subscriptionItemCols+` FROM subscription_items WHERE subscription_id = ? ORDER BY id ASC`,
		subscriptionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscription items: %w", err)
	}
	defer rows.Close()

	var items []model.SubscriptionItem
	for rows.Next() {
		item, err := scanSubscriptionItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
