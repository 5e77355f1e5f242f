package store

import (
	"database/sql"
	"testing"

	"github.com/dosewell/dosewell/internal/model"
)

func setupSubscriptionTest(t *testing.T) (*sql.DB, *SubscriptionStore, int64) {
	t.Helper()
	db := setupTestDB(t)
	userID := seedUser(t, db, "Priya", "priya@example.com")
	alice, err := NewFamilyMemberStore(db).Create(userID, "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return db, NewSubscriptionStore(db), alice.ID
}

func TestSubscriptionLifecycle(t *testing.T) {
	_, ss, memberID := setupSubscriptionTest(t)

	sub, err := ss.Create(memberID, "premium")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if sub.Status != model.SubscriptionActive {
		t.Errorf("status = %q, want %q", sub.Status, model.SubscriptionActive)
	}
	if sub.PauseDate != nil {
		t.Error("new subscription should have no pause date")
	}

	paused, err := ss.Pause(sub.ID)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if paused.Status != model.SubscriptionPaused {
		t.Errorf("status = %q, want %q", paused.Status, model.SubscriptionPaused)
	}
	if paused.PauseDate == nil {
		t.Error("paused subscription should record pause date")
	}

	resumed, err := ss.Resume(sub.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != model.SubscriptionActive {
		t.Errorf("status = %q, want %q", resumed.Status, model.SubscriptionActive)
	}
	if resumed.ResumeDate == nil {
		t.Error("resumed subscription should record resume date")
	}
}

func TestSubscriptionUpdateTier(t *testing.T) {
	_, ss, memberID := setupSubscriptionTest(t)

	sub, _ := ss.Create(memberID, "basic")
	updated, err := ss.UpdateTier(sub.ID, "family")
	if err != nil {
		t.Fatalf("update tier: %v", err)
	}
	if updated.Tier != "family" {
		t.Errorf("tier = %q, want family", updated.Tier)
	}
}

func TestSubscriptionListByMemberNewestFirst(t *testing.T) {
	_, ss, memberID := setupSubscriptionTest(t)

	ss.Create(memberID, "basic")
	ss.Create(memberID, "premium")

	subs, err := ss.ListByMember(memberID)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("subscriptions = %d, want 2", len(subs))
	}
	if subs[0].Tier != "premium" {
		t.Errorf("subs[0].Tier = %q, want newest first", subs[0].Tier)
	}
}

func TestSubscriptionItems(t *testing.T) {
	db, ss, memberID := setupSubscriptionTest(t)

	userID := seedUser(t, db, "Raj", "raj@example.com")
	sp, err := NewSupplementStore(db).Create(userID, "Vitamin D", "", "", 60, 10, "")
	if err != nil {
		t.Fatalf("seed supplement: %v", err)
	}

	sub, _ := ss.Create(memberID, "basic")
	item, err := ss.AddItem(sub.ID, sp.ID, 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if item.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", item.Quantity)
	}

	items, err := ss.ListItems(sub.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
}
