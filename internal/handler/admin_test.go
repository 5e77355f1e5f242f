package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dosewell/dosewell/internal/model"
	"github.com/dosewell/dosewell/internal/store"
	ws "github.com/dosewell/dosewell/internal/websocket"
)

func setupAdminHandler(t *testing.T) (*AdminHandler, *sql.DB, *model.User) {
	t.Helper()
	db := setupHandlerDB(t)
	h := NewAdminHandler(db, store.NewUserStore(db), store.NewAdminStore(db), ws.NewHub(testLogger()), testLogger())

	admin := seedHandlerUser(t, db, "Admin", "admin@example.com")
	admin, err := store.NewUserStore(db).SetRole(admin.ID, "admin")
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	return h, db, admin
}

func TestAdminListUsers(t *testing.T) {
	h, db, admin := setupAdminHandler(t)
	seedHandlerUser(t, db, "Priya", "priya@example.com")

	w := httptest.NewRecorder()
	h.ListUsers(w, jsonRequest(http.MethodGet, "/api/admin/users", nil, admin))
	if w.Code != http.StatusOK {
		t.Fatalf("list users status = %d", w.Code)
	}
	users := decodeBody[[]model.User](t, w)
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

func TestAdminSetRole(t *testing.T) {
	h, db, admin := setupAdminHandler(t)
	user := seedHandlerUser(t, db, "Priya", "priya@example.com")

	w := httptest.NewRecorder()
	h.SetRole(w, withID(jsonRequest(http.MethodPut, "/api/admin/users/2/role", map[string]string{
		"role": "admin",
	}, admin), user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("set role status = %d: %s", w.Code, w.Body.String())
	}
	updated := decodeBody[model.User](t, w)
	if updated.Role != "admin" {
		t.Errorf("role = %s, want admin", updated.Role)
	}

	w = httptest.NewRecorder()
	h.SetRole(w, withID(jsonRequest(http.MethodPut, "/api/admin/users/2/role", map[string]string{
		"role": "superuser",
	}, admin), user.ID))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad role status = %d, want 400", w.Code)
	}

	w = httptest.NewRecorder()
	h.SetRole(w, withID(jsonRequest(http.MethodPut, "/api/admin/users/999/role", map[string]string{
		"role": "user",
	}, admin), 999))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", w.Code)
	}
}

func TestAdminReports(t *testing.T) {
	h, db, admin := setupAdminHandler(t)
	user := seedHandlerUser(t, db, "Priya", "priya@example.com")
	if _, err := store.NewSupplementStore(db).Create(user.ID, "Vitamin D", "", "500mg", 10, 2, ""); err != nil {
		t.Fatalf("create supplement: %v", err)
	}

	w := httptest.NewRecorder()
	h.Reports(w, jsonRequest(http.MethodGet, "/api/admin/reports", nil, admin))
	if w.Code != http.StatusOK {
		t.Fatalf("reports status = %d: %s", w.Code, w.Body.String())
	}
	stats := decodeBody[store.FleetStats](t, w)
	if stats.TotalUsers != 2 {
		t.Errorf("total users = %d, want 2", stats.TotalUsers)
	}
	if stats.TotalSupplements != 1 {
		t.Errorf("total supplements = %d, want 1", stats.TotalSupplements)
	}
	if stats.UsersByRole["admin"] != 1 {
		t.Errorf("admins = %d, want 1", stats.UsersByRole["admin"])
	}
}

func TestAdminBroadcast(t *testing.T) {
	h, _, admin := setupAdminHandler(t)

	w := httptest.NewRecorder()
	h.Broadcast(w, jsonRequest(http.MethodPost, "/api/admin/broadcast", map[string]string{
		"message": "Maintenance at midnight",
	}, admin))
	if w.Code != http.StatusOK {
		t.Fatalf("broadcast status = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody[map[string]any](t, w)
	if resp["recipients"] != float64(0) {
		t.Errorf("recipients = %v, want 0 with no clients connected", resp["recipients"])
	}

	w = httptest.NewRecorder()
	h.Broadcast(w, jsonRequest(http.MethodPost, "/api/admin/broadcast", map[string]string{
		"message": "   ",
	}, admin))
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank message status = %d, want 400", w.Code)
	}
}

func TestHealth(t *testing.T) {
	h, _, _ := setupAdminHandler(t)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	resp := decodeBody[map[string]string](t, w)
	if resp["status"] != "ok" {
		t.Errorf("status = %s, want ok", resp["status"])
	}
}

func TestAdminGetUser(t *testing.T) {
	h, db, admin := setupAdminHandler(t)
	user := seedHandlerUser(t, db, "Priya", "priya@example.com")

	w := httptest.NewRecorder()
	h.GetUser(w, withID(jsonRequest(http.MethodGet, "/api/admin/users/2", nil, admin), user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("get user status = %d", w.Code)
	}
	got := decodeBody[model.User](t, w)
	if got.Email != "priya@example.com" {
		t.Errorf("email = %s", got.Email)
	}

	w = httptest.NewRecorder()
	h.GetUser(w, withID(jsonRequest(http.MethodGet, "/api/admin/users/999", nil, admin), 999))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", w.Code)
	}
}
