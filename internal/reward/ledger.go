// Package reward manages the points ledger. Balances are always derived by
// folding the ledger; no running total is stored anywhere.
package reward

import (
	"errors"
	"fmt"

	"github.com/dosewell/dosewell/internal/model"
	"github.com/dosewell/dosewell/internal/store"
)

var (
	ErrInvalidPoints       = errors.New("points must be positive")
	ErrInsufficientBalance = errors.New("insufficient point balance")
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrChallengeInactive   = errors.New("challenge is no longer active")
)

// DefaultReferralBonus is credited to the referrer when a referral is created.
const DefaultReferralBonus = 100

type Ledger struct {
	store *store.RewardStore
}

func NewLedger(s *store.RewardStore) *Ledger {
	return &Ledger{store: s}
}

func (l *Ledger) Earn(userID int64, points int, description string) (*model.RewardTransaction, error) {
	if points <= 0 {
		return nil, ErrInvalidPoints
	}
	return l.store.Append(userID, points, model.TransactionEarn, description)
}

// Spend debits points if the balance allows. The balance check and the debit
// happen in one database transaction, so concurrent spends cannot both pass
// on the same points.
func (l *Ledger) Spend(userID int64, points int, description string) (*model.RewardTransaction, error) {
	if points <= 0 {
		return nil, ErrInvalidPoints
	}
	tx, ok, err := l.store.SpendIfAffordable(userID, points, description)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientBalance
	}
	return tx, nil
}

// ClaimChallenge awards a challenge's points to the user and retires the
// challenge. Only the first claim wins.
func (l *Ledger) ClaimChallenge(userID, challengeID int64) (*model.RewardTransaction, error) {
	ch, err := l.store.GetChallenge(challengeID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChallengeNotFound
	}

	won, err := l.store.DeactivateIfActive(challengeID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrChallengeInactive
	}

	return l.store.Append(userID, ch.Points, model.TransactionChallenge,
		fmt.Sprintf("Challenge completed: %s", ch.Description))
}

// Refer records a referral and credits the bonus immediately. The bonus does
// not wait for the referred person to sign up, and the referral row and its
// ledger entry are written atomically.
func (l *Ledger) Refer(userID int64, referredEmail string) (*model.Referral, error) {
	return l.store.CreateReferralWithBonus(userID, referredEmail, DefaultReferralBonus,
		fmt.Sprintf("Referral bonus for %s", referredEmail))
}

func (l *Ledger) Balance(userID int64) (int, error) {
	return l.store.Balance(userID)
}

func (l *Ledger) History(userID int64) ([]model.RewardTransaction, error) {
	return l.store.History(userID)
}

func (l *Ledger) ActiveChallenges() ([]model.Challenge, error) {
	return l.store.ListActiveChallenges()
}

func (l *Ledger) Referrals(userID int64) ([]model.Referral, error) {
	return l.store.ListReferrals(userID)
}
