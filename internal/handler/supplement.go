package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dosewell/dosewell/internal/auth"
	"github.com/dosewell/dosewell/internal/model"
	"github.com/dosewell/dosewell/internal/reward"
	"github.com/dosewell/dosewell/internal/schedule"
	"github.com/dosewell/dosewell/internal/store"
	"github.com/dosewell/dosewell/internal/websocket"
)

// IntakePoints is credited to the account for every logged dose.
const IntakePoints = 10

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type SupplementHandler struct {
	supplementStore *store.SupplementStore
	intakeStore     *store.IntakeStore
	reminderStore   *store.ReminderStore
	memberStore     *store.FamilyMemberStore
	ledger          *reward.Ledger
	hub             *websocket.Hub
	logger          *slog.Logger
}

func NewSupplementHandler(
	ss *store.SupplementStore,
	is *store.IntakeStore,
	rs *store.ReminderStore,
	ms *store.FamilyMemberStore,
	ledger *reward.Ledger,
	hub *websocket.Hub,
	logger *slog.Logger,
) *SupplementHandler {
	return &SupplementHandler{
		supplementStore: ss,
		intakeStore:     is,
		reminderStore:   rs,
		memberStore:     ms,
		ledger:          ledger,
		hub:             hub,
		logger:          logger,
	}
}

// getOwned loads the supplement from the id path param and enforces that it
// belongs to the authenticated account.
func (h *SupplementHandler) getOwned(w http.ResponseWriter, r *http.Request) (*model.Supplement, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}

	sp, err := h.supplementStore.GetByID(id)
	if err != nil {
		h.logger.Error("get supplement", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get supplement"})
		return nil, false
	}
	if sp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "supplement not found"})
		return nil, false
	}
	if sp.UserID != auth.UserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "supplement belongs to another account"})
		return nil, false
	}
	return sp, true
}

type supplementRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	Dosage            string `json:"dosage"`
	StockLevel        int    `json:"stock_level"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	ImageURL          string `json:"image_url"`
}

func (h *SupplementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req supplementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.StockLevel < 0 || req.LowStockThreshold < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "stock values must not be negative"})
		return
	}

	userID := auth.UserID(r.Context())
	sp, err := h.supplementStore.Create(userID, req.Name, req.Description, req.Dosage,
		req.StockLevel, req.LowStockThreshold, req.ImageURL)
	if err != nil {
		h.logger.Error("create supplement", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create supplement"})
		return
	}

	h.hub.BroadcastToUser(userID, websocket.NewMessage("supplement", "created", sp.ID, nil))
	writeJSON(w, http.StatusCreated, sp)
}

func (h *SupplementHandler) List(w http.ResponseWriter, r *http.Request) {
	supplements, err := h.supplementStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list supplements", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list supplements"})
		return
	}
	if supplements == nil {
		supplements = []model.Supplement{}
	}
	writeJSON(w, http.StatusOK, supplements)
}

func (h *SupplementHandler) Get(w http.ResponseWriter, r *http.Request) {
	sp, ok := h.getOwned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (h *SupplementHandler) Update(w http.ResponseWriter, r *http.Request) {
	sp, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	var req supplementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.StockLevel < 0 || req.LowStockThreshold < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "stock values must not be negative"})
		return
	}

	sp.Name = req.Name
	sp.Description = req.Description
	sp.Dosage = req.Dosage
	sp.StockLevel = req.StockLevel
	sp.LowStockThreshold = req.LowStockThreshold
	if req.ImageURL != "" {
		sp.ImageURL = req.ImageURL
	}

	updated, err := h.supplementStore.Update(sp)
	if err != nil {
		h.logger.Error("update supplement", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update supplement"})
		return
	}

	h.hub.BroadcastToUser(sp.UserID, websocket.NewMessage("supplement", "updated", sp.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *SupplementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sp, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	if err := h.supplementStore.Delete(sp.ID); err != nil {
		h.logger.Error("delete supplement", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete supplement"})
		return
	}

	h.hub.BroadcastToUser(sp.UserID, websocket.NewMessage("supplement", "deleted", sp.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *SupplementHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	supplements, err := h.supplementStore.ListLowStock(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list low stock", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list low stock"})
		return
	}
	if supplements == nil {
		supplements = []model.Supplement{}
	}
	writeJSON(w, http.StatusOK, supplements)
}

type logIntakeRequest struct {
	FamilyMemberID *int64 `json:"family_member_id"`
	DosageTaken    string `json:"dosage_taken"`
	Notes          string `json:"notes"`
}

// LogIntake appends an intake record, decrements stock, and credits points to
// the account.
func (h *SupplementHandler) LogIntake(w http.ResponseWriter, r *http.Request) {
	sp, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	var req logIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	userID := auth.UserID(r.Context())
	if _, allowed := resolveOwner(h.memberStore, w, userID, req.FamilyMemberID); !allowed {
		return
	}

	intake, err := h.intakeStore.Create(sp.ID, userID, req.FamilyMemberID, req.DosageTaken, req.Notes)
	if err != nil {
		h.logger.Error("log intake", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to log intake"})
		return
	}

	if err := h.supplementStore.DecrementStock(sp.ID); err != nil {
		h.logger.Error("decrement stock", "error", err)
	}

	if _, err := h.ledger.Earn(userID, IntakePoints, "Logged intake of "+sp.Name); err != nil {
		h.logger.Error("intake points", "error", err)
	}

	h.hub.BroadcastToUser(userID, websocket.NewMessage("intake", "created", intake.ID,
		map[string]any{"supplement_id": sp.ID}))
	writeJSON(w, http.StatusCreated, intake)
}

func (h *SupplementHandler) History(w http.ResponseWriter, r *http.Request) {
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

	var filter store.HistoryFilter
	if raw := r.URL.Query().Get("supplement_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid supplement_id"})
			return
		}
		filter.SupplementID = &id
	}
	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start date"})
			return
		}
		filter.Start = &t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end date"})
			return
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.End = &end
	}

	intakes, err := h.intakeStore.History(owner, filter)
	if err != nil {
		h.logger.Error("intake history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load history"})
		return
	}
	if intakes == nil {
		intakes = []model.Intake{}
	}
	writeJSON(w, http.StatusOK, intakes)
}

type scheduleEntry struct {
	SupplementID int64  `json:"supplement_id"`
	ReminderID   int64  `json:"reminder_id"`
	Time         string `json:"time"`
	Taken        bool   `json:"taken"`
}

// Today lists the owner's scheduled doses for the current date with their
// taken state.
func (h *SupplementHandler) Today(w http.ResponseWriter, r *http.Request) {
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

	reminders, err := h.reminderStore.ListActiveByOwner(owner)
	if err != nil {
		h.logger.Error("today reminders", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load schedule"})
		return
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	occurrences := schedule.Occurrences(reminders, today, today)

	intakes, err := h.intakeStore.ListRange(owner, today, today.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		h.logger.Error("today intakes", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load schedule"})
		return
	}
	taken := make(map[int64]bool)
	for _, in := range intakes {
		taken[in.SupplementID] = true
	}

	entries := make([]scheduleEntry, 0, len(occurrences))
	for _, occ := range occurrences {
		entries = append(entries, scheduleEntry{
			SupplementID: occ.Reminder.SupplementID,
			ReminderID:   occ.Reminder.ID,
			Time:         occ.Reminder.TimeOfDay,
			Taken:        taken[occ.Reminder.SupplementID],
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":     today.Format("2006-01-02"),
		"schedule": entries,
	})
}

type statsResponse struct {
	SupplementID  int64      `json:"supplement_id"`
	TotalIntakes  int        `json:"total_intakes"`
	LastTaken     *time.Time `json:"last_taken,omitempty"`
	Intakes30Days int        `json:"intakes_last_30_days"`
}

func (h *SupplementHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sp, ok := h.getOwned(w, r)
	if !ok {
		return
	}

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

	total, err := h.intakeStore.CountBySupplement(owner, sp.ID)
	if err != nil {
		h.logger.Error("stats total", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}

	last, err := h.intakeStore.LastTaken(owner, sp.ID)
	if err != nil {
		h.logger.Error("stats last taken", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -30)
	recent, err := h.intakeStore.History(owner, store.HistoryFilter{SupplementID: &sp.ID, Start: &start})
	if err != nil {
		h.logger.Error("stats recent", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		SupplementID:  sp.ID,
		TotalIntakes:  total,
		LastTaken:     last,
		Intakes30Days: len(recent),
	})
}

type reminderRequest struct {
	FamilyMemberID *int64 `json:"family_member_id"`
	Time           string `json:"time"`
	Days           string `json:"days"`
}

// SetReminder creates or overwrites the reminder for this supplement and
// owner. One reminder per supplement per person.
func (h *SupplementHandler) SetReminder(w http.ResponseWriter, r *http.Request) {
	sp, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if !timeOfDayPattern.MatchString(req.Time) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "time must be HH:MM"})
		return
	}
	days, err := schedule.ParseDays(req.Days)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid days: " + err.Error()})
		return
	}

	userID := auth.UserID(r.Context())
	if _, allowed := resolveOwner(h.memberStore, w, userID, req.FamilyMemberID); !allowed {
		return
	}

	reminder, err := h.reminderStore.Upsert(sp.ID, userID, req.FamilyMemberID, req.Time, days.String())
	if err != nil {
		h.logger.Error("set reminder", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set reminder"})
		return
	}

	h.hub.BroadcastToUser(userID, websocket.NewMessage("reminder", "updated", reminder.ID,
		map[string]any{"supplement_id": sp.ID}))
	writeJSON(w, http.StatusOK, reminder)
}

func (h *SupplementHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	sp, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	reminders, err := h.reminderStore.ListBySupplement(sp.ID)
	if err != nil {
		h.logger.Error("list reminders", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list reminders"})
		return
	}
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

// DisableReminder deactivates a reminder without deleting its history.
func (h *SupplementHandler) DisableReminder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	reminder, err := h.reminderStore.GetByID(id)
	if err != nil {
		h.logger.Error("disable reminder", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to disable reminder"})
		return
	}
	if reminder == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "reminder not found"})
		return
	}
	if reminder.UserID != auth.UserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "reminder belongs to another account"})
		return
	}

	if err := h.reminderStore.Deactivate(id); err != nil {
		h.logger.Error("disable reminder", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to disable reminder"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
