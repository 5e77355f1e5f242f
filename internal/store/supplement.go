package store

import (
	"database/sql"
	"fmt"

	"github.com/dosewell/dosewell/internal/model"
)

type SupplementStore struct {
	db *sql.DB
}

func NewSupplementStore(db *sql.DB) *SupplementStore {
	return &SupplementStore{db: db}
}

func scanSupplement(scanner interface{ Scan(...any) error }) (*model.Supplement, error) {
	var sp model.Supplement
	err := scanner.Scan(&sp.ID, &sp.UserID, &sp.Name, &sp.Description, &sp.Dosage,
		&sp.StockLevel, &sp.LowStockThreshold, &sp.ImageURL, &sp.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

const supplementCols = `id, user_id, name, description, dosage, stock_level, low_stock_threshold, image_url, created_at`

func (s *SupplementStore) Create(userID int64, name, description, dosage string, stockLevel, lowStockThreshold int, imageURL string) (*model.Supplement, error) {
	result, err := s.db.Exec(
		`INSERT INTO supplements (user_id, name, description, dosage, stock_level, low_stock_threshold, image_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, name, description, dosage, stockLevel, lowStockThreshold, imageURL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert supplement: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *SupplementStore) GetByID(id int64) (*model.Supplement, error) {
	row := s.db.QueryRow(`SELECT `+supplementCols+` FROM supplements WHERE id = ?`, id)
	sp, err := scanSupplement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get supplement: %w", err)
	}
	return sp, nil
}

func (s *SupplementStore) ListByUser(userID int64) ([]model.Supplement, error) {
	rows, err := s.db.Query(
		`SELECT `+supplementCols+` FROM supplements WHERE user_id = ? ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list supplements: %w", err)
	}
	defer rows.Close()

	var supplements []model.Supplement
	for rows.Next() {
		sp, err := scanSupplement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplement: %w", err)
		}
		supplements = append(supplements, *sp)
	}
	return supplements, rows.Err()
}

func (s *SupplementStore) Update(sp *model.Supplement) (*model.Supplement, error) {
	_, err := s.db.Exec(
		`UPDATE supplements SET name = ?, description = ?, dosage = ?, stock_level = ?, low_stock_threshold = ?, image_url = ? WHERE id = ?`,
		sp.Name, sp.Description, sp.Dosage, sp.StockLevel, sp.LowStockThreshold, sp.ImageURL, sp.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update supplement: %w", err)
	}
	return s.GetByID(sp.ID)
}

func (s *SupplementStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM supplements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete supplement: %w", err)
	}
	return nil
}

func (s *SupplementStore) SetImageURL(id int64, imageURL string) error {
	_, err := s.db.Exec(`UPDATE supplements SET image_url = ? WHERE id = ?`, imageURL, id)
	if err != nil {
		return fmt.Errorf("set image url: %w", err)
	}
	return nil
}

// DecrementStock reduces the stock level by one, stopping at zero.
func (s *SupplementStore) DecrementStock(id int64) error {
	_, err := s.db.Exec(
		`UPDATE supplements SET stock_level = stock_level - 1 WHERE id = ? AND stock_level > 0`,
		id,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	return nil
}

// ListLowStock returns the user's supplements at or below their threshold.
func (s *SupplementStore) ListLowStock(userID int64) ([]model.Supplement, error) {
	rows, err := s.db.Query(
		`SELECT `+supplementCols+` FROM supplements WHERE user_id = ? AND stock_level <= low_stock_threshold ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	var supplements []model.Supplement
	for rows.Next() {
		sp, err := scanSupplement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplement: %w", err)
		}
		supplements = append(supplements, *sp)
	}
	return supplements, rows.Err()
}

func (s *SupplementStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM supplements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count supplements: %w", err)
	}
	return n, nil
}
