package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dosewell/dosewell/internal/auth"
	"github.com/dosewell/dosewell/internal/compliance"
	"github.com/dosewell/dosewell/internal/report"
	"github.com/dosewell/dosewell/internal/store"
)

type ComplianceHandler struct {
	calculator  *compliance.Calculator
	userStore   *store.UserStore
	memberStore *store.FamilyMemberStore
	logger      *slog.Logger
}

func NewComplianceHandler(calc *compliance.Calculator, us *store.UserStore, ms *store.FamilyMemberStore, logger *slog.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		calculator:  calc,
		userStore:   us,
		memberStore: ms,
		logger:      logger,
	}
}

func (h *ComplianceHandler) Daily(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	memberID, err := memberIDFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid family_member_id"})
		return
	}
	owner, allowed := resolveOwner(h.memberStore, w, userID, memberID)
	if !allowed {
		return
	}

	date, err := parseDateParam(r, "date")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	rep, err := h.calculator.Daily(owner, date)
	if err != nil {
		h.logger.Error("daily compliance", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute compliance"})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ComplianceHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	memberID, err := memberIDFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid family_member_id"})
		return
	}
	owner, allowed := resolveOwner(h.memberStore, w, userID, memberID)
	if !allowed {
		return
	}

	anchor, err := parseDateParam(r, "date")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	rep, err := h.calculator.Weekly(owner, anchor)
	if err != nil {
		h.logger.Error("weekly compliance", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute compliance"})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Monthly accepts either a date anchor or explicit month and year parameters.
func (h *ComplianceHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	memberID, err := memberIDFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid family_member_id"})
		return
	}
	owner, allowed := resolveOwner(h.memberStore, w, userID, memberID)
	if !allowed {
		return
	}

	anchor, err := parseDateParam(r, "date")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}
	q := r.URL.Query()
	if q.Get("month") != "" || q.Get("year") != "" {
		month, merr := strconv.Atoi(q.Get("month"))
		year, yerr := strconv.Atoi(q.Get("year"))
		if merr != nil || yerr != nil || month < 1 || month > 12 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be 1-12 and year numeric"})
			return
		}
		anchor = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	}

	rep, err := h.calculator.Monthly(owner, anchor)
	if err != nil {
		h.logger.Error("monthly compliance", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute compliance"})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// MissedDoses lists scheduled doses with no matching intake over the lookback
// window. The days parameter defaults to 7 and is capped at 90.
func (h *ComplianceHandler) MissedDoses(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	memberID, err := memberIDFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid family_member_id"})
		return
	}
	owner, allowed := resolveOwner(h.memberStore, w, userID, memberID)
	if !allowed {
		return
	}

	days := compliance.DefaultMissedDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid days"})
			return
		}
	}

	missed, err := h.calculator.MissedDoses(owner, days, time.Now().UTC())
	if err != nil {
		if errors.Is(err, compliance.ErrLookbackOutOfRange) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be between 1 and 90"})
			return
		}
		h.logger.Error("missed doses", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute missed doses"})
		return
	}
	if missed == nil {
		missed = []compliance.MissedDose{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":         days,
		"missed_doses": missed,
	})
}

// Leaderboard ranks the account owner and every family member by compliance
// rate over the requested period, weekly by default.
func (h *ComplianceHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	user, err := h.userStore.GetByID(userID)
	if err != nil || user == nil {
		h.logger.Error("leaderboard user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute leaderboard"})
		return
	}

	members, err := h.memberStore.ListByUser(userID)
	if err != nil {
		h.logger.Error("leaderboard members", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute leaderboard"})
		return
	}

	anchor, err := parseDateParam(r, "date")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "weekly"
	}
	start, end, ok := compliance.PeriodRange(period, anchor)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "period must be daily, weekly, or monthly"})
		return
	}

	entries, err := h.calculator.Leaderboard(user, members, start, end)
	if err != nil {
		h.logger.Error("leaderboard", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute leaderboard"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period":      period,
		"start_date":  start.Format("2006-01-02"),
		"end_date":    end.Format("2006-01-02"),
		"leaderboard": entries,
	})
}

// Export renders a compliance report over an arbitrary date range as CSV or
// JSON.
func (h *ComplianceHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	memberID, err := memberIDFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid family_member_id"})
		return
	}
	owner, allowed := resolveOwner(h.memberStore, w, userID, memberID)
	if !allowed {
		return
	}

	memberName := ""
	if memberID != nil {
		member, err := h.memberStore.GetByID(*memberID)
		if err != nil || member == nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to build report"})
			return
		}
		memberName = member.Name
	} else {
		user, err := h.userStore.GetByID(userID)
		if err != nil || user == nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to build report"})
			return
		}
		memberName = user.Name
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "weekly"
	}

	var start, end time.Time
	if period == "custom" {
		q := r.URL.Query()
		start, err = time.Parse("2006-01-02", q.Get("start_date"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		end, err = time.Parse("2006-01-02", q.Get("end_date"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date must be YYYY-MM-DD"})
			return
		}
		if end.Before(start) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date must not be before start_date"})
			return
		}
	} else {
		anchor, derr := parseDateParam(r, "date")
		if derr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		var ok bool
		start, end, ok = compliance.PeriodRange(period, anchor)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "period must be daily, weekly, monthly, or custom"})
			return
		}
	}

	rep, err := report.Build(h.calculator, owner, memberName, period, start, end)
	if err != nil {
		h.logger.Error("export report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to build report"})
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+rep.Filename()+`"`)
		if err := rep.WriteCSV(w); err != nil {
			h.logger.Error("export csv", "error", err)
		}
	case "json":
		writeJSON(w, http.StatusOK, rep.JSONPayload())
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be csv or json"})
	}
}
