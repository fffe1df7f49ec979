package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

const lostItemSelect = `SELECT l.id, l.title, l.description, l.category, l.location, l.date_lost,
        l.status, l.owner_id, l.created_at,
        u.name AS owner_name, u.email AS owner_email
 FROM lost_items l
 JOIN users u ON u.id = l.owner_id`

func scanLostItem(row interface{ Scan(...any) error }, item *model.LostItem) error {
	var description sql.NullString
	err := row.Scan(&item.ID, &item.Title, &description, &item.Category, &item.Location, &item.DateLost,
		&item.Status, &item.OwnerID, &item.CreatedAt,
		&item.OwnerName, &item.OwnerEmail)
	item.Description = description.String
	return err
}

// CreateLostItem records an item reported missing by ownerID.
func CreateLostItem(ctx context.Context, db *sql.DB, ownerID int64, r model.ItemReport) (*model.LostItem, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO lost_items (title, description, category, location, date_lost, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Title, r.Description, r.Category, r.Location, r.Date.UTC(), ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating lost item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting lost item id: %w", err)
	}

	return GetLostItem(ctx, db, id)
}

// GetLostItem returns a lost item by ID.
func GetLostItem(ctx context.Context, db *sql.DB, id int64) (*model.LostItem, error) {
	item := &model.LostItem{}
	err := scanLostItem(db.QueryRowContext(ctx, lostItemSelect+` WHERE l.id = ?`, id), item)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting lost item: %w", err)
	}
	return item, nil
}

// LostItemFilter narrows ListLostItems. Zero values match everything.
type LostItemFilter struct {
	Category string
	OwnerID  int64
	Limit    int
}

// ListLostItems returns lost item reports, newest first.
func ListLostItems(ctx context.Context, db *sql.DB, filter LostItemFilter) ([]model.LostItem, error) {
	query := lostItemSelect + ` WHERE 1=1`
	var args []any

	if filter.Category != "" {
		query += ` AND l.category = ? COLLATE NOCASE`
		args = append(args, filter.Category)
	}
	if filter.OwnerID > 0 {
		query += ` AND l.owner_id = ?`
		args = append(args, filter.OwnerID)
	}

	query += ` ORDER BY l.created_at DESC, l.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing lost items: %w", err)
	}
	defer rows.Close()

	var items []model.LostItem
	for rows.Next() {
		var item model.LostItem
		if err := scanLostItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scanning lost item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountLostItems returns how many lost item reports ownerID has filed.
func CountLostItems(ctx context.Context, db *sql.DB, ownerID int64) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lost_items WHERE owner_id = ?`, ownerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting lost items: %w", err)
	}
	return n, nil
}

// ResolveLostItem marks a lost item report as resolved. Only the reporter may
// resolve it, and only once.
func ResolveLostItem(ctx context.Context, db *sql.DB, id, ownerID int64) (*model.LostItem, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE lost_items SET status = ? WHERE id = ? AND owner_id = ? AND status = ?`,
		string(model.LostItemResolved), id, ownerID, string(model.LostItemOpen),
	)
	if err != nil {
		return nil, fmt.Errorf("resolving lost item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking affected rows: %w", err)
	}

	item, err := GetLostItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if n == 1 {
		return item, nil
	}

	switch {
	case item == nil:
		return nil, model.Errorf(model.ErrNotFound, "item not found")
	case item.OwnerID != ownerID:
		return nil, model.Errorf(model.ErrForbidden, "only the reporter can resolve this item")
	default:
		return nil, model.Errorf(model.ErrInvalidState, "item already resolved")
	}
}
