package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// CreateNotification adds a message to a user's feed.
func CreateNotification(ctx context.Context, db *sql.DB, n *model.Notification) error {
	result, err := db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, claim_id, item_id, type, title, message)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, n.ClaimID, n.ItemID, n.Type, n.Title, n.Message,
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting notification id: %w", err)
	}
	n.ID = id
	return nil
}

// ListNotifications returns a user's notifications, newest first.
func ListNotifications(ctx context.Context, db *sql.DB, userID int64, limit int) ([]model.Notification, error) {
	query := `SELECT id, user_id, claim_id, item_id, type, title, message, read, created_at
	          FROM notifications WHERE user_id = ?
	          ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.ClaimID, &n.ItemID, &n.Type, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CountUnreadNotifications returns how many unread notifications a user has.
func CountUnreadNotifications(ctx context.Context, db *sql.DB, userID int64) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return n, nil
}

// MarkNotificationRead marks one of the user's notifications as read.
// Notifications belonging to someone else are reported as not found.
func MarkNotificationRead(ctx context.Context, db *sql.DB, id, userID int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return requireOneRow(result, "notification")
}

// MarkAllNotificationsRead marks every notification of the user as read.
func MarkAllNotificationsRead(ctx context.Context, db *sql.DB, userID int64) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	return result.RowsAffected()
}
