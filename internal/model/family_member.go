package model

import "time"

const (
	MemberStatusPending  = "pending"
	MemberStatusAccepted = "accepted"
)

// FamilyMember is a dependent invited by a user. The owning user logs intake
// and manages reminders on the member's behalf.
type FamilyMember struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
