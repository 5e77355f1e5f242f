package model

import "fmt"

// OwnerKind distinguishes the two identity spaces a dose record can belong to.
type OwnerKind int

const (
	OwnerUser OwnerKind = iota
	OwnerFamilyMember
)

// Owner is a tagged reference to either a user or a family member. Reminders,
// intakes, and compliance calculations are always scoped to exactly one owner,
// and the two ID spaces must never be mixed.
type Owner struct {
	Kind OwnerKind
	ID   int64
}

func UserOwner(id int64) Owner {
	return Owner{Kind: OwnerUser, ID: id}
}

func FamilyMemberOwner(id int64) Owner {
	return Owner{Kind: OwnerFamilyMember, ID: id}
}

// IsFamilyMember reports whether the owner is a family member rather than
// the account holder.
func (o Owner) IsFamilyMember() bool {
	return o.Kind == OwnerFamilyMember
}

func (o Owner) String() string {
	if o.Kind == OwnerFamilyMember {
		return fmt.Sprintf("family_member:%d", o.ID)
	}
	return fmt.Sprintf("user:%d", o.ID)
}
