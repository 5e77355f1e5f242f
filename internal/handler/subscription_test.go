package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dosewell/dosewell/internal/model"
	"github.com/dosewell/dosewell/internal/store"
)

type subscriptionFixture struct {
	db     *sql.DB
	h      *SubscriptionHandler
	user   *model.User
	member *model.FamilyMember
}

func setupSubscriptionHandler(t *testing.T) *subscriptionFixture {
	t.Helper()
	db := setupHandlerDB(t)
	h := NewSubscriptionHandler(
		store.NewSubscriptionStore(db),
		store.NewSupplementStore(db),
		store.NewFamilyMemberStore(db),
		testLogger(),
	)
	user := seedHandlerUser(t, db, "Priya Sharma", "priya@example.com")
	member, err := store.NewFamilyMemberStore(db).Create(user.ID, "Arjun", "arjun@example.com")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return &subscriptionFixture{db: db, h: h, user: user, member: member}
}

func (f *subscriptionFixture) createSubscription(t *testing.T, tier string) model.Subscription {
	t.Helper()
	w := httptest.NewRecorder()
	f.h.Create(w, jsonRequest(http.MethodPost, "/api/subscriptions", map[string]any{
		"family_member_id": f.member.ID,
		"tier":             tier,
	}, f.user))
	if w.Code != http.StatusCreated {
		t.Fatalf("create subscription status = %d: %s", w.Code, w.Body.String())
	}
	return decodeBody[model.Subscription](t, w)
}

func TestCreateSubscription(t *testing.T) {
	f := setupSubscriptionHandler(t)

	sub := f.createSubscription(t, "premium")
	if sub.Tier != "premium" || sub.Status != "active" {
		t.Errorf("subscription = %+v", sub)
	}

	w := httptest.NewRecorder()
	f.h.Create(w, jsonRequest(http.MethodPost, "/api/subscriptions", map[string]any{
		"family_member_id": f.member.ID,
		"tier":             "platinum",
	}, f.user))
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown tier status = %d, want 400", w.Code)
	}

	w = httptest.NewRecorder()
	f.h.Create(w, jsonRequest(http.MethodPost, "/api/subscriptions", map[string]any{
		"family_member_id": 999,
		"tier":             "basic",
	}, f.user))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown member status = %d, want 404", w.Code)
	}
}

func TestPauseResume(t *testing.T) {
	f := setupSubscriptionHandler(t)
	sub := f.createSubscription(t, "basic")

	w := httptest.NewRecorder()
	f.h.Pause(w, withID(jsonRequest(http.MethodPost, "/api/subscriptions/1/pause", nil, f.user), sub.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("pause status = %d: %s", w.Code, w.Body.String())
	}
	paused := decodeBody[model.Subscription](t, w)
	if paused.Status != "paused" || paused.PauseDate == nil {
		t.Errorf("paused = %+v", paused)
	}

	w = httptest.NewRecorder()
	f.h.Resume(w, withID(jsonRequest(http.MethodPost, "/api/subscriptions/1/resume", nil, f.user), sub.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("resume status = %d", w.Code)
	}
	resumed := decodeBody[model.Subscription](t, w)
	if resumed.Status != "active" || resumed.ResumeDate == nil {
		t.Errorf("resumed = %+v", resumed)
	}
}

func TestUpdateTier(t *testing.T) {
	f := setupSubscriptionHandler(t)
	sub := f.createSubscription(t, "basic")

	w := httptest.NewRecorder()
	f.h.UpdateTier(w, withID(jsonRequest(http.MethodPut, "/api/subscriptions/1/tier", map[string]string{
		"tier": "family",
	}, f.user), sub.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("update tier status = %d", w.Code)
	}
	updated := decodeBody[model.Subscription](t, w)
	if updated.Tier != "family" {
		t.Errorf("tier = %s, want family", updated.Tier)
	}
}

func TestSubscriptionOwnership(t *testing.T) {
	f := setupSubscriptionHandler(t)
	sub := f.createSubscription(t, "basic")

	other := seedHandlerUser(t, f.db, "Raj", "raj@example.com")

	w := httptest.NewRecorder()
	f.h.Get(w, withID(jsonRequest(http.MethodGet, "/api/subscriptions/1", nil, other), sub.ID))
	if w.Code != http.StatusForbidden {
		t.Errorf("cross-account get status = %d, want 403", w.Code)
	}
}

func TestSubscriptionItems(t *testing.T) {
	f := setupSubscriptionHandler(t)
	sub := f.createSubscription(t, "premium")

	sp, err := store.NewSupplementStore(f.db).Create(f.user.ID, "Vitamin D", "", "500mg", 10, 2, "")
	if err != nil {
		t.Fatalf("create supplement: %v", err)
	}

	w := httptest.NewRecorder()
	f.h.AddItem(w, withID(jsonRequest(http.MethodPost, "/api/subscriptions/1/items", map[string]any{
		"supplement_id": sp.ID,
		"quantity":      2,
	}, f.user), sub.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("add item status = %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	f.h.AddItem(w, withID(jsonRequest(http.MethodPost, "/api/subscriptions/1/items", map[string]any{
		"supplement_id": sp.ID,
		"quantity":      0,
	}, f.user), sub.ID))
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero quantity status = %d, want 400", w.Code)
	}

	w = httptest.NewRecorder()
	f.h.ListItems(w, withID(jsonRequest(http.MethodGet, "/api/subscriptions/1/items", nil, f.user), sub.ID))
	items := decodeBody[[]model.SubscriptionItem](t, w)
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Errorf("items = %+v", items)
	}
}

func TestListByMember(t *testing.T) {
	f := setupSubscriptionHandler(t)
	f.createSubscription(t, "basic")
	f.createSubscription(t, "premium")

	w := httptest.NewRecorder()
	f.h.ListByMember(w, withID(jsonRequest(http.MethodGet, "/api/family-members/1/subscriptions", nil, f.user), f.member.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	subs := decodeBody[[]model.Subscription](t, w)
	if len(subs) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", len(subs))
	}
	// Newest first
	if subs[0].Tier != "premium" {
		t.Errorf("first = %s, want premium", subs[0].Tier)
	}
}

func TestTiers(t *testing.T) {
	f := setupSubscriptionHandler(t)

	w := httptest.NewRecorder()
	f.h.Tiers(w, jsonRequest(http.MethodGet, "/api/subscriptions/tiers", nil, f.user))
	if w.Code != http.StatusOK {
		t.Fatalf("tiers status = %d", w.Code)
	}
	body := decodeBody[map[string][]string](t, w)
	if got := body["tiers"]; len(got) != 3 || got[0] != "basic" {
		t.Errorf("tiers = %v", got)
	}
}
