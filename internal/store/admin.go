package store

import (
	"database/sql"
	"fmt"
	"time"
)

// FleetStats is the aggregate view backing the admin reports endpoint.
type FleetStats struct {
	TotalUsers       int            `json:"total_users"`
	TotalMembers     int            `json:"total_family_members"`
	TotalSupplements int            `json:"total_supplements"`
	TotalIntakes     int            `json:"total_intakes"`
	ActiveReminders  int            `json:"active_reminders"`
	RecentIntakes    int            `json:"intakes_last_7_days"`
	UsersByRole      map[string]int `json:"users_by_role"`
}

// AdminStore answers fleet-wide aggregate queries.
type AdminStore struct {
	db *sql.DB
}

func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

func (s *AdminStore) Stats(now time.Time) (*FleetStats, error) {
	stats := &FleetStats{UsersByRole: make(map[string]int)}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM users`, &stats.TotalUsers},
		{`SELECT COUNT(*) FROM family_members`, &stats.TotalMembers},
		{`SELECT COUNT(*) FROM supplements`, &stats.TotalSupplements},
		{`SELECT COUNT(*) FROM supplement_intakes`, &stats.TotalIntakes},
		{`SELECT COUNT(*) FROM reminders WHERE active = 1`, &stats.ActiveReminders},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("fleet stats: %w", err)
		}
	}

	since := now.AddDate(0, 0, -7)
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM supplement_intakes WHERE taken_at >= ?`, since,
	).Scan(&stats.RecentIntakes)
	if err != nil {
		return nil, fmt.Errorf("fleet stats recent intakes: %w", err)
	}

	rows, err := s.db.Query(`SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("fleet stats roles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("scan role count: %w", err)
		}
		stats.UsersByRole[role] = n
	}
	return stats, rows.Err()
}
