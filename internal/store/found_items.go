package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

const foundItemSelect = `SELECT f.id, f.title, f.description, f.category, f.location, f.date_found,
        f.status, f.finder_id, f.created_at, f.updated_at,
        u.name AS finder_name, u.email AS finder_email
 FROM found_items f
 JOIN users u ON u.id = f.finder_id`

func scanFoundItem(row interface{ Scan(...any) error }, item *model.FoundItem) error {
	var description sql.NullString
	err := row.Scan(&item.ID, &item.Title, &description, &item.Category, &item.Location, &item.DateFound,
		&item.Status, &item.FinderID, &item.CreatedAt, &item.UpdatedAt,
		&item.FinderName, &item.FinderEmail)
	item.Description = description.String
	return err
}

// CreateFoundItem records an item handed in by finderID. New items are
// always available.
func CreateFoundItem(ctx context.Context, db *sql.DB, finderID int64, r model.ItemReport) (*model.FoundItem, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO found_items (title, description, category, location, date_found, finder_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Title, r.Description, r.Category, r.Location, r.Date.UTC(), finderID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating found item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting found item id: %w", err)
	}

	return GetFoundItem(ctx, db, id)
}

// GetFoundItem returns a found item by ID.
func GetFoundItem(ctx context.Context, db *sql.DB, id int64) (*model.FoundItem, error) {
	item := &model.FoundItem{}
	err := scanFoundItem(db.QueryRowContext(ctx, foundItemSelect+` WHERE f.id = ?`, id), item)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting found item: %w", err)
	}
	return item, nil
}

// FoundItemFilter narrows ListFoundItems. Zero values match everything.
type FoundItemFilter struct {
	Status   model.FoundItemStatus
	Category string
	FinderID int64
	Limit    int
}

// ListFoundItems returns found items, newest report first.
func ListFoundItems(ctx context.Context, db *sql.DB, filter FoundItemFilter) ([]model.FoundItem, error) {
	query := foundItemSelect + ` WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND f.status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		query += ` AND f.category = ? COLLATE NOCASE`
		args = append(args, filter.Category)
	}
	if filter.FinderID > 0 {
		query += ` AND f.finder_id = ?`
		args = append(args, filter.FinderID)
	}

	query += ` ORDER BY f.created_at DESC, f.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing found items: %w", err)
	}
	defer rows.Close()

	var items []model.FoundItem
	for rows.Next() {
		var item model.FoundItem
		if err := scanFoundItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scanning found item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountFoundItems returns how many items finderID has reported.
func CountFoundItems(ctx context.Context, db *sql.DB, finderID int64) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM found_items WHERE finder_id = ?`, finderID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting found items: %w", err)
	}
	return n, nil
}
