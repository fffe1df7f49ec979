package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestNotificationFeed(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := mustUser(t, database, "alice", model.RoleUser)
	bob := mustUser(t, database, "bob", model.RoleUser)

	for _, title := range []string{"First", "Second"} {
		n := &model.Notification{UserID: alice.ID, Type: model.NotificationInfo, Title: title, Message: "hello"}
		if err := CreateNotification(ctx, database, n); err != nil {
			t.Fatalf("CreateNotification: %v", err)
		}
		if n.ID == 0 {
			t.Error("expected notification ID to be set")
		}
	}

	list, err := ListNotifications(ctx, database, alice.ID, 0)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	if list[0].Title != "Second" {
		t.Errorf("expected newest first, got %q", list[0].Title)
	}
	if list[0].Read {
		t.Error("new notification should be unread")
	}

	if n, _ := CountUnreadNotifications(ctx, database, alice.ID); n != 2 {
		t.Errorf("expected 2 unread, got %d", n)
	}

	// Bob cannot touch Alice's feed.
	err = MarkNotificationRead(ctx, database, list[0].ID, bob.ID)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected not found for someone else's notification, got %v", err)
	}

	if err := MarkNotificationRead(ctx, database, list[0].ID, alice.ID); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	if n, _ := CountUnreadNotifications(ctx, database, alice.ID); n != 1 {
		t.Errorf("expected 1 unread, got %d", n)
	}

	marked, err := MarkAllNotificationsRead(ctx, database, alice.ID)
	if err != nil {
		t.Fatalf("MarkAllNotificationsRead: %v", err)
	}
	if marked != 1 {
		t.Errorf("expected 1 notification marked, got %d", marked)
	}
	if n, _ := CountUnreadNotifications(ctx, database, alice.ID); n != 0 {
		t.Errorf("expected 0 unread, got %d", n)
	}
}

func TestNotificationLinksClaim(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	finder := mustUser(t, database, "finder", model.RoleUser)
	a := mustUser(t, database, "a", model.RoleUser)
	item := mustFoundItem(t, database, finder, "Umbrella")
	claim, _ := CreateClaim(ctx, database, item.ID, a.ID, evidence("broken spoke"))

	n := &model.Notification{
		UserID:  a.ID,
		ClaimID: &claim.ID,
		ItemID:  &item.ID,
		Type:    model.NotificationSuccess,
		Title:   "Claim approved",
		Message: "Your claim was approved",
	}
	if err := CreateNotification(ctx, database, n); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	list, _ := ListNotifications(ctx, database, a.ID, 1)
	if len(list) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(list))
	}
	if list[0].ClaimID == nil || *list[0].ClaimID != claim.ID {
		t.Errorf("expected claim link %d, got %v", claim.ID, list[0].ClaimID)
	}
}
