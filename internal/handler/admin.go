package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dosewell/dosewell/internal/model"
	"github.com/dosewell/dosewell/internal/store"
	"github.com/dosewell/dosewell/internal/websocket"
)

type AdminHandler struct {
	db         *sql.DB
	userStore  *store.UserStore
	adminStore *store.AdminStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewAdminHandler(db *sql.DB, us *store.UserStore, as *store.AdminStore, hub *websocket.Hub, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		db:         db,
		userStore:  us,
		adminStore: as,
		hub:        hub,
		logger:     logger,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userStore.List()
	if err != nil {
		h.logger.Error("admin list users", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list users"})
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	user, err := h.userStore.GetByID(id)
	if err != nil {
		h.logger.Error("admin get user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get user"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Role != "user" && req.Role != "admin" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be user or admin"})
		return
	}

	existing, err := h.userStore.GetByID(id)
	if err != nil {
		h.logger.Error("admin set role lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update role"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	user, err := h.userStore.SetRole(id, req.Role)
	if err != nil {
		h.logger.Error("admin set role", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update role"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Reports returns fleet-wide usage counts.
func (h *AdminHandler) Reports(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminStore.Stats(time.Now().UTC())
	if err != nil {
		h.logger.Error("admin reports", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to build report"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type broadcastRequest struct {
	Message string `json:"message"`
}

// Broadcast pushes an announcement to every connected client and reports how
// many received it.
func (h *AdminHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	delivered := h.hub.Broadcast(websocket.Announcement(req.Message))
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    req.Message,
		"recipients": delivered,
	})
}

// Health is unauthenticated. It reports process liveness and database
// reachability.
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  "database unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
