package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dosewell/dosewell/internal/auth"
	"github.com/dosewell/dosewell/internal/email"
	"github.com/dosewell/dosewell/internal/model"
	"github.com/dosewell/dosewell/internal/store"
)

type UserHandler struct {
	userStore   *store.UserStore
	memberStore *store.FamilyMemberStore
	mailer      *email.Client
	logger      *slog.Logger
}

// NewUserHandler builds the handler. mailer may be nil when email is not
// configured.
func NewUserHandler(us *store.UserStore, ms *store.FamilyMemberStore, mailer *email.Client, logger *slog.Logger) *UserHandler {
	return &UserHandler{userStore: us, memberStore: ms, mailer: mailer, logger: logger}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userStore.GetByID(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load profile"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and email are required"})
		return
	}

	userID := auth.UserID(r.Context())

	// Another account may already hold the new email.
	existing, err := h.userStore.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("update profile lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update profile"})
		return
	}
	if existing != nil && existing.ID != userID {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "email already in use"})
		return
	}

	user, err := h.userStore.UpdateProfile(userID, req.Name, req.Email)
	if err != nil {
		h.logger.Error("update profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update profile"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type createMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *UserHandler) CreateFamilyMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and email are required"})
		return
	}

	userID := auth.UserID(r.Context())
	member, err := h.memberStore.Create(userID, req.Name, req.Email)
	if err != nil {
		h.logger.Error("create family member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create family member"})
		return
	}

	// The invitation email is best-effort.
	if h.mailer != nil && h.mailer.Configured() {
		if owner, err := h.userStore.GetByID(userID); err == nil && owner != nil {
			if err := h.mailer.SendInvitation(member.Email, member.Name, owner.Name); err != nil {
				h.logger.Error("send invitation email", "error", err)
			}
		}
	}

	writeJSON(w, http.StatusCreated, member)
}

func (h *UserHandler) ListFamilyMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.memberStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list family members", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list family members"})
		return
	}
	if members == nil {
		members = []model.FamilyMember{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *UserHandler) GetFamilyMember(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	member, err := h.memberStore.GetOwned(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get family member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get family member"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "family member not found"})
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// AcceptInvitation flips a pending member to accepted.
func (h *UserHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	member, err := h.memberStore.GetOwned(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("accept invitation", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to accept invitation"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "family member not found"})
		return
	}

	if err := h.memberStore.SetStatus(id, model.MemberStatusAccepted); err != nil {
		h.logger.Error("accept invitation", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to accept invitation"})
		return
	}

	member.Status = model.MemberStatusAccepted
	writeJSON(w, http.StatusOK, member)
}
