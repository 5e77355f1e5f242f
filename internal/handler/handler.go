package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dosewell/dosewell/internal/model"
	"github.com/dosewell/dosewell/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

// parseDateParam reads a YYYY-MM-DD query parameter, defaulting to today.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", raw)
}

// resolveOwner maps an optional family member ID to the acting owner. A
// member that does not exist is a 404; a member belonging to someone else is
// a 403. The bool reports whether the caller may proceed.
func resolveOwner(ms *store.FamilyMemberStore, w http.ResponseWriter, userID int64, familyMemberID *int64) (model.Owner, bool) {
	if familyMemberID == nil {
		return model.UserOwner(userID), true
	}

	member, err := ms.GetByID(*familyMemberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve family member"})
		return model.Owner{}, false
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "family member not found"})
		return model.Owner{}, false
	}
	if member.UserID != userID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "family member belongs to another account"})
		return model.Owner{}, false
	}
	return model.FamilyMemberOwner(member.ID), true
}

// memberIDFromQuery reads an optional family_member_id query parameter.
func memberIDFromQuery(r *http.Request) (*int64, error) {
	raw := r.URL.Query().Get("family_member_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
