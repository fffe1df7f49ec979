package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestCreateAndGetFoundItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	finder := mustUser(t, database, "finder", model.RoleUser)

	item, err := CreateFoundItem(ctx, database, finder.ID, testReport("Black umbrella"))
	if err != nil {
		t.Fatalf("CreateFoundItem: %v", err)
	}
	if item.Status != model.FoundItemAvailable {
		t.Errorf("expected new item to be available, got %q", item.Status)
	}
	if item.FinderName != "finder" || item.FinderEmail != "finder@example.edu" {
		t.Errorf("expected finder fields joined, got %q %q", item.FinderName, item.FinderEmail)
	}
	if item.DateFound.IsZero() {
		t.Error("expected date_found to round-trip")
	}

	missing, err := GetFoundItem(ctx, database, 999)
	if err != nil {
		t.Fatalf("GetFoundItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestListFoundItemsFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	a := mustUser(t, database, "a", model.RoleUser)
	b := mustUser(t, database, "b", model.RoleUser)

	first := mustFoundItem(t, database, a, "Laptop charger")
	second := mustFoundItem(t, database, b, "Water bottle")

	r := testReport("Scarf")
	r.Category = "clothing"
	CreateFoundItem(ctx, database, a.ID, r)

	all, _ := ListFoundItems(ctx, database, FoundItemFilter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
	if all[0].Title != "Scarf" || all[2].ID != first.ID {
		t.Errorf("expected newest first, got %q ... %q", all[0].Title, all[2].Title)
	}

	byCategory, _ := ListFoundItems(ctx, database, FoundItemFilter{Category: "Clothing"})
	if len(byCategory) != 1 {
		t.Errorf("expected 1 clothing item, got %d", len(byCategory))
	}

	byFinder, _ := ListFoundItems(ctx, database, FoundItemFilter{FinderID: b.ID})
	if len(byFinder) != 1 || byFinder[0].ID != second.ID {
		t.Errorf("expected only b's item, got %v", byFinder)
	}

	limited, _ := ListFoundItems(ctx, database, FoundItemFilter{Limit: 2})
	if len(limited) != 2 {
		t.Errorf("expected 2 items with limit, got %d", len(limited))
	}

	claimed, _ := ListFoundItems(ctx, database, FoundItemFilter{Status: model.FoundItemClaimed})
	if len(claimed) != 0 {
		t.Errorf("expected no claimed items, got %d", len(claimed))
	}

	n, _ := CountFoundItems(ctx, database, a.ID)
	if n != 2 {
		t.Errorf("expected a to have reported 2 items, got %d", n)
	}
}

func TestLostItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, database, "owner", model.RoleUser)
	other := mustUser(t, database, "other", model.RoleUser)

	item, err := CreateLostItem(ctx, database, owner.ID, testReport("Student ID card"))
	if err != nil {
		t.Fatalf("CreateLostItem: %v", err)
	}
	if item.Status != model.LostItemOpen {
		t.Errorf("expected open status, got %q", item.Status)
	}
	if item.OwnerName != "owner" {
		t.Errorf("expected owner name joined, got %q", item.OwnerName)
	}

	items, _ := ListLostItems(ctx, database, LostItemFilter{OwnerID: owner.ID})
	if len(items) != 1 {
		t.Errorf("expected 1 lost item, got %d", len(items))
	}

	if _, err := ResolveLostItem(ctx, database, item.ID, other.ID); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("expected forbidden for non-owner, got %v", err)
	}

	resolved, err := ResolveLostItem(ctx, database, item.ID, owner.ID)
	if err != nil {
		t.Fatalf("ResolveLostItem: %v", err)
	}
	if resolved.Status != model.LostItemResolved {
		t.Errorf("expected resolved, got %q", resolved.Status)
	}

	if _, err := ResolveLostItem(ctx, database, item.ID, owner.ID); !errors.Is(err, model.ErrInvalidState) {
		t.Errorf("expected invalid state resolving twice, got %v", err)
	}
	if _, err := ResolveLostItem(ctx, database, 999, owner.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
