package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/najdeno/internal/model"
)

// recentLimit is how many recent records of each kind the dashboard shows.
const recentLimit = 5

// GetDashboard aggregates a user's reports and claims.
func GetDashboard(ctx context.Context, db *sql.DB, user *model.User) (*model.Dashboard, error) {
	d := &model.Dashboard{User: user}
	var err error

	if d.Stats.LostItems, err = CountLostItems(ctx, db, user.ID); err != nil {
		return nil, err
	}
	if d.Stats.FoundItems, err = CountFoundItems(ctx, db, user.ID); err != nil {
		return nil, err
	}
	if d.Stats.ClaimsSubmitted, err = CountClaims(ctx, db, user.ID, ""); err != nil {
		return nil, err
	}
	if d.Stats.ClaimsApproved, err = CountClaims(ctx, db, user.ID, model.ClaimApproved); err != nil {
		return nil, err
	}

	if d.RecentLostItems, err = ListLostItems(ctx, db, LostItemFilter{OwnerID: user.ID, Limit: recentLimit}); err != nil {
		return nil, err
	}
	if d.RecentFoundItems, err = ListFoundItems(ctx, db, FoundItemFilter{FinderID: user.ID, Limit: recentLimit}); err != nil {
		return nil, err
	}
	if d.RecentClaims, err = ListClaims(ctx, db, ClaimFilter{ClaimantID: user.ID, Limit: recentLimit}); err != nil {
		return nil, err
	}

	if d.RecentLostItems == nil {
		d.RecentLostItems = []model.LostItem{}
	}
	if d.RecentFoundItems == nil {
		d.RecentFoundItems = []model.FoundItem{}
	}
	if d.RecentClaims == nil {
		d.RecentClaims = []model.Claim{}
	}
	return d, nil
}
