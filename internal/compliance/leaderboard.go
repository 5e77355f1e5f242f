package compliance

import (
	"sort"
	"time"

	"github.com/dosewell/dosewell/internal/model"
)

// LeaderboardEntry ranks one household member by adherence.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	MemberID int64  `json:"member_id"`
	Name     string `json:"name"`
	IsUser   bool   `json:"is_user"`
	Summary
}

// Leaderboard ranks the account holder and their family members by adherence
// over [start, end]. Ties keep their original order: the account holder
// first, then members in creation order. Ranks are consecutive from 1.
func (c *Calculator) Leaderboard(user *model.User, members []model.FamilyMember, start, end time.Time) ([]LeaderboardEntry, error) {
	entries := make([]LeaderboardEntry, 0, len(members)+1)

	s, err := c.Range(model.UserOwner(user.ID), start, end)
	if err != nil {
		return nil, err
	}
	entries = append(entries, LeaderboardEntry{MemberID: user.ID, Name: user.Name, IsUser: true, Summary: s})

	for _, m := range members {
		s, err := c.Range(model.FamilyMemberOwner(m.ID), start, end)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LeaderboardEntry{MemberID: m.ID, Name: m.Name, Summary: s})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Rate > entries[j].Rate
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
