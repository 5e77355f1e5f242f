package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dosewell/dosewell/internal/auth"
	"github.com/dosewell/dosewell/internal/model"
	"github.com/dosewell/dosewell/internal/reward"
)

type RewardHandler struct {
	ledger *reward.Ledger
	logger *slog.Logger
}

func NewRewardHandler(ledger *reward.Ledger, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{ledger: ledger, logger: logger}
}

func (h *RewardHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.ledger.Balance(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("reward balance", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load balance"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"balance": balance})
}

func (h *RewardHandler) History(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.ledger.History(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("reward history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load history"})
		return
	}
	if transactions == nil {
		transactions = []model.RewardTransaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}

type earnRequest struct {
	Points      int    `json:"points"`
	Description string `json:"description"`
}

func (h *RewardHandler) Earn(w http.ResponseWriter, r *http.Request) {
	var req earnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		req.Description = "Points earned"
	}

	tx, err := h.ledger.Earn(auth.UserID(r.Context()), req.Points, req.Description)
	if err != nil {
		if errors.Is(err, reward.ErrInvalidPoints) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "points must be positive"})
			return
		}
		h.logger.Error("reward earn", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to earn points"})
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

type spendRequest struct {
	Points      int    `json:"points"`
	Description string `json:"description"`
}

func (h *RewardHandler) Spend(w http.ResponseWriter, r *http.Request) {
	var req spendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		req.Description = "Points redeemed"
	}

	tx, err := h.ledger.Spend(auth.UserID(r.Context()), req.Points, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, reward.ErrInvalidPoints):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "points must be positive"})
		case errors.Is(err, reward.ErrInsufficientBalance):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "insufficient points"})
		default:
			h.logger.Error("reward spend", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to spend points"})
		}
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *RewardHandler) Challenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.ledger.ActiveChallenges()
	if err != nil {
		h.logger.Error("list challenges", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list challenges"})
		return
	}
	if challenges == nil {
		challenges = []model.Challenge{}
	}
	writeJSON(w, http.StatusOK, challenges)
}

// ClaimChallenge awards the challenge's points. Each challenge pays out once;
// the first claim wins.
func (h *RewardHandler) ClaimChallenge(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	tx, err := h.ledger.ClaimChallenge(auth.UserID(r.Context()), id)
	if err != nil {
		switch {
		case errors.Is(err, reward.ErrChallengeNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "challenge not found"})
		case errors.Is(err, reward.ErrChallengeInactive):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "challenge already claimed"})
		default:
			h.logger.Error("claim challenge", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to claim challenge"})
		}
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

type referRequest struct {
	Email string `json:"email"`
}

// Refer records a referral and credits the referral bonus.
func (h *RewardHandler) Refer(w http.ResponseWriter, r *http.Request) {
	var req referRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
		return
	}

	referral, err := h.ledger.Refer(auth.UserID(r.Context()), req.Email)
	if err != nil {
		h.logger.Error("create referral", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create referral"})
		return
	}
	writeJSON(w, http.StatusCreated, referral)
}

func (h *RewardHandler) Referrals(w http.ResponseWriter, r *http.Request) {
	referrals, err := h.ledger.Referrals(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list referrals", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list referrals"})
		return
	}
	if referrals == nil {
		referrals = []model.Referral{}
	}
	writeJSON(w, http.StatusOK, referrals)
}
