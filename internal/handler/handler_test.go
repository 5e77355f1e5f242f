package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dosewell/dosewell/internal/auth"
	"github.com/dosewell/dosewell/internal/database"
	"github.com/dosewell/dosewell/internal/model"
	"github.com/dosewell/dosewell/internal/store"
)

func setupHandlerDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedHandlerUser(t *testing.T, db *sql.DB, name, email string) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := store.NewUserStore(db).Create(name, email, hash)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// jsonRequest builds a request with a JSON body and the given auth context.
func jsonRequest(method, target string, body any, user *model.User) *http.Request {
	var buf io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		buf = bytes.NewReader(b)
	}
	r := httptest.NewRequest(method, target, buf)
	if user != nil {
		ac := auth.AuthContext{UserID: user.ID, Role: user.Role, TokenID: "test-token"}
		r = r.WithContext(auth.WithAuth(r.Context(), ac))
	}
	return r
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
