package model

import "time"

// Notification is a message shown to a user in their feed.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ClaimID   *int64    `json:"claim_id,omitempty"`
	ItemID    *int64    `json:"item_id,omitempty"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification types.
const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)
