package model

import "time"

// FoundItem is an item handed in by a finder, waiting for its owner.
type FoundItem struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Location    string          `json:"location"`
	DateFound   time.Time       `json:"date_found"`
	Status      FoundItemStatus `json:"status"`
	FinderID    int64           `json:"finder_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Joined fields (not always populated).
	FinderName  string `json:"finder_name,omitempty"`
	FinderEmail string `json:"finder_email,omitempty"`
}

// FoundItemStatus is the availability of a found item.
type FoundItemStatus string

// Found item statuses. An item moves from available to claimed exactly once.
const (
	FoundItemAvailable FoundItemStatus = "available"
	FoundItemClaimed   FoundItemStatus = "claimed"
)

// ParseFoundItemStatus accepts exactly the known found item statuses.
func ParseFoundItemStatus(s string) (FoundItemStatus, error) {
	switch st := FoundItemStatus(s); st {
	case FoundItemAvailable, FoundItemClaimed:
		return st, nil
	}
	return "", Errorf(ErrValidation, "invalid status filter")
}

// LostItem is an item reported missing by its owner.
type LostItem struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category"`
	Location    string         `json:"location"`
	DateLost    time.Time      `json:"date_lost"`
	Status      LostItemStatus `json:"status"`
	OwnerID     int64          `json:"owner_id"`
	CreatedAt   time.Time      `json:"created_at"`

	// Joined fields (not always populated).
	OwnerName  string `json:"owner_name,omitempty"`
	OwnerEmail string `json:"owner_email,omitempty"`
}

// LostItemStatus is the state of a lost item report.
type LostItemStatus string

// Lost item statuses.
const (
	LostItemOpen     LostItemStatus = "open"
	LostItemResolved LostItemStatus = "resolved"
)

// ItemReport holds the fields a user submits when reporting a lost or found item.
type ItemReport struct {
	Title       string
	Description string
	Category    string
	Location    string
	Date        time.Time
}

// Validate checks the required report fields.
func (r ItemReport) Validate(now time.Time) error {
	switch {
	case len([]rune(r.Title)) < 3:
		return Errorf(ErrValidation, "title must be at least 3 characters")
	case r.Category == "":
		return Errorf(ErrValidation, "category required")
	case r.Location == "":
		return Errorf(ErrValidation, "location required")
	case r.Date.IsZero():
		return Errorf(ErrValidation, "date required")
	case r.Date.After(now):
		return Errorf(ErrValidation, "date cannot be in the future")
	}
	return nil
}
