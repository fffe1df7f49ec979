// Package notify delivers claim decisions to claimants.
package notify

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Feed writes claim events into the claimant's notification feed.
type Feed struct {
	DB *sql.DB
}

// Notify stores a notification describing ev for the claimant.
func (f *Feed) Notify(ctx context.Context, ev model.ClaimEvent) error {
	n, err := Message(ev)
	if err != nil {
		return err
	}
	return store.CreateNotification(ctx, f.DB, n)
}

// Message renders ev as a notification for the claimant.
func Message(ev model.ClaimEvent) (*model.Notification, error) {
	n := &model.Notification{
		UserID:  ev.ClaimantID,
		ClaimID: &ev.ClaimID,
		ItemID:  &ev.ItemID,
	}

	switch ev.NewStatus {
	case model.ClaimApproved:
		n.Type = model.NotificationSuccess
		n.Title = "Claim approved"
		n.Message = fmt.Sprintf("Your claim for %q has been approved. Visit the lost and found desk to collect it.", ev.ItemTitle)
	case model.ClaimRejected:
		n.Type = model.NotificationWarning
		n.Title = "Claim rejected"
		n.Message = fmt.Sprintf("Your claim for %q was not approved.", ev.ItemTitle)
	default:
		return nil, fmt.Errorf("no notification for claim status %q", ev.NewStatus)
	}
	return n, nil
}
