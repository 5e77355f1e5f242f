package model

import "time"

const (
	TransactionEarn      = "earn"
	TransactionSpend     = "spend"
	TransactionChallenge = "challenge"
	TransactionReferral  = "referral"
)

// RewardTransaction is one append-only ledger entry. Spend entries carry
// negative points; the owner's balance is the sum of all entries.
type RewardTransaction struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Points      int       `json:"points"`
	Kind        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Challenge struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Referral struct {
	ID            int64     `json:"id"`
	ReferrerID    int64     `json:"referrer_id"`
	ReferredEmail string    `json:"referred_email"`
	Status        string    `json:"status"`
	BonusPoints   int       `json:"bonus_points"`
	CreatedAt     time.Time `json:"created_at"`
}
