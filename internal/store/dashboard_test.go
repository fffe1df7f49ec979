package store

import (
	"context"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestGetDashboardEmpty(t *testing.T) {
	database := db.NewTestDB(t)
	u := mustUser(t, database, "alice", model.RoleUser)

	d, err := GetDashboard(context.Background(), database, u)
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if d.Stats != (model.DashboardStats{}) {
		t.Errorf("expected zero stats, got %+v", d.Stats)
	}
	if d.RecentClaims == nil || d.RecentFoundItems == nil || d.RecentLostItems == nil {
		t.Error("expected empty slices, not nil")
	}
}

func TestGetDashboardCounts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := mustUser(t, database, "alice", model.RoleUser)
	bob := mustUser(t, database, "bob", model.RoleUser)
	admin := mustUser(t, database, "admin", model.RoleAdmin)

	if _, err := CreateLostItem(ctx, database, alice.ID, testReport("Lost scarf")); err != nil {
		t.Fatalf("CreateLostItem: %v", err)
	}
	mustFoundItem(t, database, alice, "Glasses")
	phone := mustFoundItem(t, database, bob, "Phone")
	wallet := mustFoundItem(t, database, bob, "Wallet")

	c1, _ := CreateClaim(ctx, database, phone.ID, alice.ID, evidence("cracked corner"))
	if _, err := CreateClaim(ctx, database, wallet.ID, alice.ID, evidence("brown")); err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	if _, err := DecideClaim(ctx, database, c1.ID, model.ClaimApproved, admin.ID); err != nil {
		t.Fatalf("DecideClaim: %v", err)
	}

	d, err := GetDashboard(ctx, database, alice)
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	want := model.DashboardStats{LostItems: 1, FoundItems: 1, ClaimsSubmitted: 2, ClaimsApproved: 1}
	if d.Stats != want {
		t.Errorf("stats = %+v, want %+v", d.Stats, want)
	}
	if len(d.RecentClaims) != 2 || len(d.RecentFoundItems) != 1 || len(d.RecentLostItems) != 1 {
		t.Errorf("unexpected recent lists: %d claims, %d found, %d lost",
			len(d.RecentClaims), len(d.RecentFoundItems), len(d.RecentLostItems))
	}
	if d.User.ID != alice.ID {
		t.Errorf("expected dashboard for alice, got user %d", d.User.ID)
	}
}
