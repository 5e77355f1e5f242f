package store

import (
	"database/sql"
	"testing"

	"github.com/dosewell/dosewell/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedUser creates a user directly so store tests don't depend on the auth
// package for password hashing.
func seedUser(t *testing.T, db *sql.DB, name, email string) int64 {
	t.Helper()
	us := NewUserStore(db)
	u, err := us.Create(name, email, "$2a$10$notarealhashnotarealhashnotarealhash")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u.ID
}
