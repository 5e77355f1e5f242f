package model

import "time"

const (
	SubscriptionActive = "active"
	SubscriptionPaused = "paused"
)

// SubscriptionTiers are the offered plan names, cheapest first.
var SubscriptionTiers = []string{"basic", "premium", "family"}

type Subscription struct {
	ID             int64      `json:"id"`
	FamilyMemberID int64      `json:"family_member_id"`
	Tier           string     `json:"tier"`
	Status         string     `json:"status"`
	StartDate      time.Time  `json:"start_date"`
	PauseDate      *time.Time `json:"pause_date,omitempty"`
	ResumeDate     *time.Time `json:"resume_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type SubscriptionItem struct {
	ID             int64     `json:"id"`
	SubscriptionID int64     `json:"subscription_id"`
	SupplementID   int64     `json:"supplement_id"`
	Quantity       int       `json:"quantity"`
	AddedAt        time.Time `json:"added_at"`
}

// ValidTier reports whether tier is one of the offered plans.
func ValidTier(tier string) bool {
	for _, t := range SubscriptionTiers {
		if t == tier {
			return true
		}
	}
	return false
}
