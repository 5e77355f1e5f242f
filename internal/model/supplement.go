package model

import "time"

type Supplement struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Dosage            string    `json:"dosage"`
	StockLevel        int       `json:"stock_level"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	ImageURL          string    `json:"image_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Intake is a logged dose. Records are append-only: once written they are
// never updated or deleted, so compliance history stays stable.
type Intake struct {
	ID                int64     `json:"id"`
	SupplementID      int64     `json:"supplement_id"`
	UserID            int64     `json:"user_id"`
	FamilyMemberID    *int64    `json:"family_member_id,omitempty"`
	TakenAt           time.Time `json:"taken_at"`
	DosageTaken       string    `json:"dosage_taken,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	PhotoConfirmation string    `json:"photo_confirmation,omitempty"`
}

// Reminder is a recurring weekly schedule entry: take the supplement at
// TimeOfDay on each weekday in Days. Days holds comma-separated short weekday
// names ("Mon,Wed,Fri") and must be non-empty.
type Reminder struct {
	ID             int64     `json:"id"`
	SupplementID   int64     `json:"supplement_id"`
	UserID         int64     `json:"user_id"`
	FamilyMemberID *int64    `json:"family_member_id,omitempty"`
	TimeOfDay      string    `json:"time"`
	Days           string    `json:"days"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Owner returns the reminder's owner as a tagged value.
func (r Reminder) Owner() Owner {
	if r.FamilyMemberID != nil {
		return FamilyMemberOwner(*r.FamilyMemberID)
	}
	return UserOwner(r.UserID)
}

// Owner returns the intake's owner as a tagged value.
func (i Intake) Owner() Owner {
	if i.FamilyMemberID != nil {
		return FamilyMemberOwner(*i.FamilyMemberID)
	}
	return UserOwner(i.UserID)
}
