package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

func mustUser(t *testing.T, database *sql.DB, name string, role model.Role) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, name, fmt.Sprintf("%s@example.edu", name), "hash", role)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return u
}

func testReport(title string) model.ItemReport {
	return model.ItemReport{
		Title:       title,
		Description: "left on a bench",
		Category:    "electronics",
		Location:    "Main library, 2nd floor",
		Date:        time.Now().Add(-24 * time.Hour),
	}
}

func mustFoundItem(t *testing.T, database *sql.DB, finder *model.User, title string) *model.FoundItem {
	t.Helper()
	item, err := CreateFoundItem(context.Background(), database, finder.ID, testReport(title))
	if err != nil {
		t.Fatalf("CreateFoundItem(%s): %v", title, err)
	}
	return item
}

func evidence(features string) model.VerificationDetails {
	return model.VerificationDetails{IdentifyingFeatures: features}
}
