package store

import "github.com/dosewell/dosewell/internal/model"

// ownerFilter builds the WHERE fragment that scopes reminders and intakes to
// a single owner. Rows owned by the account holder have a NULL
// family_member_id; rows owned by a family member are matched on that ID
// alone, keeping the two identity spaces separate.
func ownerFilter(o model.Owner) (string, []any) {
	if o.IsFamilyMember() {
		return "family_member_id = ?", []any{o.ID}
	}
	return "user_id = ? AND family_member_id IS NULL", []any{o.ID}
}
