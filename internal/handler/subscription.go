package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dosewell/dosewell/internal/auth"
	"github.com/dosewell/dosewell/internal/model"
	"github.com/dosewell/dosewell/internal/store"
)

type SubscriptionHandler struct {
	subscriptionStore *store.SubscriptionStore
	supplementStore   *store.SupplementStore
	memberStore       *store.FamilyMemberStore
	logger            *slog.Logger
}

func NewSubscriptionHandler(subs *store.SubscriptionStore, ss *store.SupplementStore, ms *store.FamilyMemberStore, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionStore: subs,
		supplementStore:   ss,
		memberStore:       ms,
		logger:            logger,
	}
}

// getOwned loads the subscription from the id path param and enforces that
// its family member belongs to the authenticated account.
func (h *SubscriptionHandler) getOwned(w http.ResponseWriter, r *http.Request) (*model.Subscription, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}

	sub, err := h.subscriptionStore.GetByID(id)
	if err != nil {
		h.logger.Error("get subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get subscription"})
		return nil, false
	}
	if sub == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "subscription not found"})
		return nil, false
	}

	member, err := h.memberStore.GetOwned(sub.FamilyMemberID, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get subscription member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get subscription"})
		return nil, false
	}
	if member == nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "subscription belongs to another account"})
		return nil, false
	}
	return sub, true
}

type createSubscriptionRequest struct {
	FamilyMemberID int64  `json:"family_member_id"`
	Tier           string `json:"tier"`
}

// Tiers lists the offered plan names.
func (h *SubscriptionHandler) Tiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tiers": model.SubscriptionTiers})
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if !model.ValidTier(req.Tier) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tier must be one of basic, premium, family"})
		return
	}

	member, err := h.memberStore.GetOwned(req.FamilyMemberID, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("create subscription member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create subscription"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "family member not found"})
		return
	}

	sub, err := h.subscriptionStore.Create(req.FamilyMemberID, req.Tier)
	if err != nil {
		h.logger.Error("create subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create subscription"})
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.getOwned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubscriptionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	updated, err := h.subscriptionStore.Pause(sub.ID)
	if err != nil {
		h.logger.Error("pause subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to pause subscription"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *SubscriptionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	updated, err := h.subscriptionStore.Resume(sub.ID)
	if err != nil {
		h.logger.Error("resume subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resume subscription"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type updateTierRequest struct {
	Tier string `json:"tier"`
}

func (h *SubscriptionHandler) UpdateTier(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	var req updateTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if !model.ValidTier(req.Tier) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tier must be one of basic, premium, family"})
		return
	}

	updated, err := h.subscriptionStore.UpdateTier(sub.ID, req.Tier)
	if err != nil {
		h.logger.Error("update subscription tier", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update subscription"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ListByMember returns a family member's subscriptions, newest first.
func (h *SubscriptionHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	member, err := h.memberStore.GetOwned(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list subscriptions member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list subscriptions"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "family member not found"})
		return
	}

	subs, err := h.subscriptionStore.ListByMember(id)
	if err != nil {
		h.logger.Error("list subscriptions", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list subscriptions"})
		return
	}
	if subs == nil {
		subs = []model.Subscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

type addItemRequest struct {
	SupplementID int64 `json:"supplement_id"`
	Quantity     int   `json:"quantity"`
}

func (h *SubscriptionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be positive"})
		return
	}

	sp, err := h.supplementStore.GetByID(req.SupplementID)
	if err != nil {
		h.logger.Error("add item supplement", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add item"})
		return
	}
	if sp == nil || sp.UserID != auth.UserID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "supplement not found"})
		return
	}

	item, err := h.subscriptionStore.AddItem(sub.ID, req.SupplementID, req.Quantity)
	if err != nil {
		h.logger.Error("add item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add item"})
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *SubscriptionHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	items, err := h.subscriptionStore.ListItems(sub.ID)
	if err != nil {
		h.logger.Error("list items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	if items == nil {
		items = []model.SubscriptionItem{}
	}
	writeJSON(w, http.StatusOK, items)
}
