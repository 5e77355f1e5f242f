package store

import (
	"database/sql"
	"fmt"

	"github.com/dosewell/dosewell/internal/model"
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

func scanRewardTransaction(scanner interface{ Scan(...any) error }) (*model.RewardTransaction, error) {
	var tx model.RewardTransaction
	err := scanner.Scan(&tx.ID, &tx.UserID, &tx.Points, &tx.Kind, &tx.Description, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

const rewardTransactionCols = `id, user_id, points, kind, description, created_at`

// Append adds a transaction to the ledger. Spends carry negative points.
func (s *RewardStore) Append(userID int64, points int, kind, description string) (*model.RewardTransaction, error) {
	result, err := s.db.Exec(
		`INSERT INTO reward_transactions (user_id, points, kind, description) VALUES (?, ?, ?, ?)`,
		userID, points, kind, description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward transaction: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetTransaction(id)
}

func (s *RewardStore) GetTransaction(id int64) (*model.RewardTransaction, error) {
	row := s.db.QueryRow(`SELECT `+rewardTransactionCols+` FROM reward_transactions WHERE id = ?`, id)
	tx, err := scanRewardTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward transaction: %w", err)
	}
	return tx, nil
}

// Balance folds the user's ledger. The ledger is the only source of truth
// for point balances.
func (s *RewardStore) Balance(userID int64) (int, error) {
	var balance int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(points), 0) FROM reward_transactions WHERE user_id = ?`,
		userID,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("reward balance: %w", err)
	}
	return balance, nil
}

// History returns the user's transactions, most recent first.
func (s *RewardStore) History(userID int64) ([]model.RewardTransaction, error) {
	rows, err := s.db.Query(
		`SELECT `+rewardTransactionCols+` FROM reward_transactions WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("reward history: %w", err)
	}
	defer rows.Close()

	var txs []model.RewardTransaction
	for rows.Next() {
		tx, err := scanRewardTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward transaction: %w", err)
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

// SpendIfAffordable checks the balance and appends a negative transaction in
// a single database transaction. Returns false when the balance is too low.
func (s *RewardStore) SpendIfAffordable(userID int64, points int, description string) (*model.RewardTransaction, bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("begin spend: %w", err)
	}
	defer tx.Rollback()

	var balance int
	err = tx.QueryRow(
		`SELECT COALESCE(SUM(points), 0) FROM reward_transactions WHERE user_id = ?`,
		userID,
	).Scan(&balance)
	if err != nil {
		return nil, false, fmt.Errorf("spend balance: %w", err)
	}
	if balance < points {
		return nil, false, nil
	}

	result, err := tx.Exec(
		`INSERT INTO reward_transactions (user_id, points, kind, description) VALUES (?, ?, ?, ?)`,
		userID, -points, model.TransactionSpend, description,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert spend: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit spend: %w", err)
	}

	rt, err := s.GetTransaction(id)
	if err != nil {
		return nil, false, err
	}
	return rt, true, nil
}

func scanChallenge(scanner interface{ Scan(...any) error }) (*model.Challenge, error) {
	var c model.Challenge
	var active int
	err := scanner.Scan(&c.ID, &c.Description, &c.Points, &active, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Active = active != 0
	return &c, nil
}

const challengeCols = `id, description, points, active, created_at`

func (s *RewardStore) CreateChallenge(description string, points int) (*model.Challenge, error) {
	result, err := s.db.Exec(
		`INSERT INTO challenges (description, points, active) VALUES (?, ?, 1)`,
		description, points,
	)
	if err != nil {
		return nil, fmt.Errorf("insert challenge: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetChallenge(id)
}

func (s *RewardStore) GetChallenge(id int64) (*model.Challenge, error) {
	row := s.db.QueryRow(`SELECT `+challengeCols+` FROM challenges WHERE id = ?`, id)
	c, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	return c, nil
}

func (s *RewardStore) ListActiveChallenges() ([]model.Challenge, error) {
	rows, err := s.db.Query(`SELECT ` + challengeCols + ` FROM challenges WHERE active = 1 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []model.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

// DeactivateIfActive flips the challenge to inactive and reports whether this
// call was the one that did it. Concurrent claims race on this update, so
// exactly one caller sees true.
func (s *RewardStore) DeactivateIfActive(id int64) (bool, error) {
	result, err := s.db.Exec(`UPDATE challenges SET active = 0 WHERE id = ? AND active = 1`, id)
	if err != nil {
		return false, fmt.Errorf("deactivate challenge: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func scanReferral(scanner interface{ Scan(...any) error }) (*model.Referral, error) {
	var r model.Referral
	err := scanner.Scan(&r.ID, &r.ReferrerID, &r.ReferredEmail, &r.Status, &r.BonusPoints, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const referralCols = `id, referrer_id, referred_email, status, bonus_points, created_at`

// CreateReferralWithBonus records the referral and credits the bonus inside
// one database transaction, so a referral can never exist without its ledger
// entry.
func (s *RewardStore) CreateReferralWithBonus(referrerID int64, referredEmail string, bonusPoints int, description string) (*model.Referral, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin referral: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO referrals (referrer_id, referred_email, status, bonus_points) VALUES (?, ?, 'pending', ?)`,
		referrerID, referredEmail, bonusPoints,
	)
	if err != nil {
		return nil, fmt.Errorf("insert referral: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO reward_transactions (user_id, points, kind, description) VALUES (?, ?, ?, ?)`,
		referrerID, bonusPoints, model.TransactionReferral, description,
	); err != nil {
		return nil, fmt.Errorf("insert referral bonus: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit referral: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+referralCols+` FROM referrals WHERE id = ?`, id)
	r, err := scanReferral(row)
	if err != nil {
		return nil, fmt.Errorf("get referral: %w", err)
	}
	return r, nil
}

func (s *RewardStore) ListReferrals(referrerID int64) ([]model.Referral, error) {
	rows, err := s.db.Query(
		`SELECT `+referralCols+` FROM referrals WHERE referrer_id = ? ORDER BY id DESC`,
		referrerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	defer rows.Close()

	var referrals []model.Referral
	for rows.Next() {
		r, err := scanReferral(rows)
		if err != nil {
			return nil, fmt.Errorf("scan referral: %w", err)
		}
		referrals = append(referrals, *r)
	}
	return referrals, rows.Err()
}
