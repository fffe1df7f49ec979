package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

const claimSelect = `SELECT c.id, c.item_id, c.claimant_id,
        c.purchase_date, c.purchase_location, c.serial_number, c.identifying_features, c.additional_details,
        c.status, c.created_at, c.decided_at, c.decided_by,
        f.title AS item_title, f.category AS item_category, f.status AS item_status,
        u.name AS claimant_name, u.email AS claimant_email
 FROM claims c
 JOIN found_items f ON f.id = c.item_id
 JOIN users u ON u.id = c.claimant_id`

func scanClaim(row interface{ Scan(...any) error }, c *model.Claim) error {
	var purchaseDate, purchaseLocation, serial, additional sql.NullString
	err := row.Scan(&c.ID, &c.ItemID, &c.ClaimantID,
		&purchaseDate, &purchaseLocation, &serial, &c.Verification.IdentifyingFeatures, &additional,
		&c.Status, &c.CreatedAt, &c.DecidedAt, &c.DecidedBy,
		&c.ItemTitle, &c.ItemCategory, &c.ItemStatus,
		&c.ClaimantName, &c.ClaimantEmail)
	c.Verification.PurchaseDate = purchaseDate.String
	c.Verification.PurchaseLocation = purchaseLocation.String
	c.Verification.SerialNumber = serial.String
	c.Verification.AdditionalDetails = additional.String
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateClaim files a pending claim by claimantID against a found item.
//
// The insert only happens if the item is still available, and the partial
// unique index on pending claims rejects a second pending claim by the same
// claimant, so neither check can be raced by concurrent submissions.
func CreateClaim(ctx context.Context, database *sql.DB, itemID, claimantID int64, v model.VerificationDetails) (*model.Claim, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	result, err := database.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimant_id, purchase_date, purchase_location, serial_number,
		                     identifying_features, additional_details)
		 SELECT id, ?, ?, ?, ?, ?, ?
		 FROM found_items WHERE id = ? AND status = ?`,
		claimantID,
		nullIfEmpty(v.PurchaseDate), nullIfEmpty(v.PurchaseLocation), nullIfEmpty(v.SerialNumber),
		v.IdentifyingFeatures, nullIfEmpty(v.AdditionalDetails),
		itemID, string(model.FoundItemAvailable),
	)
	if db.IsUniqueViolation(err) {
		return nil, model.Errorf(model.ErrConflict, "duplicate pending claim: you already have a pending claim for this item")
	}
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		item, err := GetFoundItem(ctx, database, itemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, model.Errorf(model.ErrNotFound, "item not found")
		}
		return nil, model.Errorf(model.ErrInvalidState, "item no longer available for claiming")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	return GetClaim(ctx, database, id)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetClaim returns a claim by ID with item and claimant fields joined.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	return getClaim(ctx, db, id)
}

func getClaim(ctx context.Context, q queryer, id int64) (*model.Claim, error) {
	c := &model.Claim{}
	err := scanClaim(q.QueryRowContext(ctx, claimSelect+` WHERE c.id = ?`, id), c)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return c, nil
}

// ClaimFilter narrows ListClaims. Zero values match everything.
type ClaimFilter struct {
	Status     model.ClaimStatus
	ClaimantID int64
	ItemID     int64
	Limit      int
}

// ListClaims returns claims newest first.
func ListClaims(ctx context.Context, db *sql.DB, filter ClaimFilter) ([]model.Claim, error) {
	query := claimSelect + ` WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND c.status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ClaimantID > 0 {
		query += ` AND c.claimant_id = ?`
		args = append(args, filter.ClaimantID)
	}
	if filter.ItemID > 0 {
		query += ` AND c.item_id = ?`
		args = append(args, filter.ItemID)
	}

	query += ` ORDER BY c.created_at DESC, c.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		if err := scanClaim(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// CountClaims counts claims filed by claimantID, optionally only those in
// the given status.
func CountClaims(ctx context.Context, db *sql.DB, claimantID int64, status model.ClaimStatus) (int, error) {
	query := `SELECT COUNT(*) FROM claims WHERE claimant_id = ?`
	args := []any{claimantID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}

	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting claims: %w", err)
	}
	return n, nil
}

// Decision is the outcome of DecideClaim: the decided claim and one event per
// claim whose status changed, the decided claim first.
type Decision struct {
	Claim  *model.Claim
	Events []model.ClaimEvent
}

// DecideClaim moves a pending claim to approved or rejected.
//
// Approval runs as one transaction: the claim goes pending -> approved, the
// item goes available -> claimed, and every other pending claim on the item
// is rejected. Each write is conditional on the current status, so a second
// approval for the same item fails with a conflict and nothing is committed.
// Decisions on claims that are already approved or rejected are refused.
// A nil error means the decision is committed.
func DecideClaim(ctx context.Context, database *sql.DB, claimID int64, decision model.ClaimStatus, decidedBy int64) (*Decision, error) {
	if !decision.Terminal() {
		return nil, model.Errorf(model.ErrValidation, "invalid status: must be 'approved' or 'rejected'")
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemID, claimantID int64
	err = tx.QueryRowContext(ctx,
		`UPDATE claims SET status = ?, decided_at = CURRENT_TIMESTAMP, decided_by = ?
		 WHERE id = ? AND status = ?
		 RETURNING item_id, claimant_id`,
		string(decision), decidedBy, claimID, string(model.ClaimPending),
	).Scan(&itemID, &claimantID)
	if err == sql.ErrNoRows {
		return nil, explainUndecidable(ctx, tx, claimID, decision)
	}
	if db.IsUniqueViolation(err) {
		return nil, model.Errorf(model.ErrConflict, "item already claimed")
	}
	if err != nil {
		return nil, fmt.Errorf("updating claim: %w", err)
	}

	var itemTitle string
	if err := tx.QueryRowContext(ctx,
		`SELECT title FROM found_items WHERE id = ?`, itemID,
	).Scan(&itemTitle); err != nil {
		return nil, fmt.Errorf("reading claimed item: %w", err)
	}

	events := []model.ClaimEvent{{
		ClaimID:    claimID,
		ClaimantID: claimantID,
		ItemID:     itemID,
		ItemTitle:  itemTitle,
		NewStatus:  decision,
	}}

	if decision == model.ClaimApproved {
		result, err := tx.ExecContext(ctx,
			`UPDATE found_items SET status = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND status = ?`,
			string(model.FoundItemClaimed), itemID, string(model.FoundItemAvailable),
		)
		if err != nil {
			return nil, fmt.Errorf("marking item claimed: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("checking affected rows: %w", err)
		}
		if n == 0 {
			return nil, model.Errorf(model.ErrConflict, "item already claimed")
		}

		rejected, err := rejectOtherPending(ctx, tx, itemID, decidedBy)
		if err != nil {
			return nil, err
		}
		for _, r := range rejected {
			r.ItemTitle = itemTitle
			events = append(events, r)
		}
	}

	// Read the result before committing so that once the decision is
	// durable nothing is left that can fail and drop its events.
	claim, err := getClaim(ctx, tx, claimID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing decision: %w", err)
	}
	return &Decision{Claim: claim, Events: events}, nil
}

// rejectOtherPending rejects every remaining pending claim on itemID.
func rejectOtherPending(ctx context.Context, tx *sql.Tx, itemID, decidedBy int64) ([]model.ClaimEvent, error) {
	rows, err := tx.QueryContext(ctx,
		`UPDATE claims SET status = ?, decided_at = CURRENT_TIMESTAMP, decided_by = ?
		 WHERE item_id = ? AND status = ?
		 RETURNING id, claimant_id`,
		string(model.ClaimRejected), decidedBy, itemID, string(model.ClaimPending),
	)
	if err != nil {
		return nil, fmt.Errorf("rejecting competing claims: %w", err)
	}
	defer rows.Close()

	var events []model.ClaimEvent
	for rows.Next() {
		ev := model.ClaimEvent{ItemID: itemID, NewStatus: model.ClaimRejected}
		if err := rows.Scan(&ev.ClaimID, &ev.ClaimantID); err != nil {
			return nil, fmt.Errorf("scanning rejected claim: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rejecting competing claims: %w", err)
	}
	return events, nil
}

// explainUndecidable reports why a claim could not leave the pending state.
func explainUndecidable(ctx context.Context, tx *sql.Tx, claimID int64, decision model.ClaimStatus) error {
	var status model.ClaimStatus
	var itemStatus model.FoundItemStatus
	err := tx.QueryRowContext(ctx,
		`SELECT c.status, f.status FROM claims c JOIN found_items f ON f.id = c.item_id WHERE c.id = ?`,
		claimID,
	).Scan(&status, &itemStatus)
	if err == sql.ErrNoRows {
		return model.Errorf(model.ErrNotFound, "claim request not found")
	}
	if err != nil {
		return fmt.Errorf("reading claim: %w", err)
	}

	if decision == model.ClaimApproved && status == model.ClaimRejected && itemStatus == model.FoundItemClaimed {
		return model.Errorf(model.ErrConflict, "item already claimed")
	}
	return model.Errorf(model.ErrInvalidState, "claim already %s", status)
}
