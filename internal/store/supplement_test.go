package store

import "testing"

func TestSupplementCRUD(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "Priya", "priya@example.com")
	ss := NewSupplementStore(db)

	sp, err := ss.Create(userID, "Vitamin D", "Daily vitamin", "1000 IU", 60, 10, "")
	if err != nil {
		t.Fatalf("create supplement: %v", err)
	}
	if sp.Name != "Vitamin D" {
		t.Errorf("name = %q, want %q", sp.Name, "Vitamin D")
	}
	if sp.StockLevel != 60 {
		t.Errorf("stock = %d, want 60", sp.StockLevel)
	}

	sp.Dosage = "2000 IU"
	updated, err := ss.Update(sp)
	if err != nil {
		t.Fatalf("update supplement: %v", err)
	}
	if updated.Dosage != "2000 IU" {
		t.Errorf("dosage = %q, want %q", updated.Dosage, "2000 IU")
	}

	if err := ss.Delete(sp.ID); err != nil {
		t.Fatalf("delete supplement: %v", err)
	}
	got, err := ss.GetByID(sp.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestSupplementListByUser(t *testing.T) {
	db := setupTestDB(t)
	priya := seedUser(t, db, "Priya", "priya@example.com")
	raj := seedUser(t, db, "Raj", "raj@example.com")
	ss := NewSupplementStore(db)

	ss.Create(priya, "Zinc", "", "", 30, 5, "")
	ss.Create(priya, "Iron", "", "", 30, 5, "")
	ss.Create(raj, "Magnesium", "", "", 30, 5, "")

	supplements, err := ss.ListByUser(priya)
	if err != nil {
		t.Fatalf("list supplements: %v", err)
	}
	if len(supplements) != 2 {
		t.Fatalf("expected 2 supplements, got %d", len(supplements))
	}
	if supplements[0].Name != "Iron" || supplements[1].Name != "Zinc" {
		t.Errorf("order = %q, %q; want name order", supplements[0].Name, supplements[1].Name)
	}
}

func TestSupplementDecrementStock(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "Priya", "priya@example.com")
	ss := NewSupplementStore(db)

	sp, _ := ss.Create(userID, "Vitamin C", "", "", 2, 5, "")

	ss.DecrementStock(sp.ID)
	ss.DecrementStock(sp.ID)
	ss.DecrementStock(sp.ID)

	got, _ := ss.GetByID(sp.ID)
	if got.StockLevel != 0 {
		t.Errorf("stock = %d, want 0 (never negative)", got.StockLevel)
	}
}

func TestSupplementListLowStock(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "Priya", "priya@example.com")
	ss := NewSupplementStore(db)

	ss.Create(userID, "Plenty", "", "", 50, 5, "")
	ss.Create(userID, "AtThreshold", "", "", 5, 5, "")
	ss.Create(userID, "Empty", "", "", 0, 5, "")

	low, err := ss.ListLowStock(userID)
	if err != nil {
		t.Fatalf("list low stock: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("expected 2 low-stock supplements, got %d", len(low))
	}
	for _, sp := range low {
		if sp.StockLevel > sp.LowStockThreshold {
			t.Errorf("%q not actually low on stock", sp.Name)
		}
	}
}
