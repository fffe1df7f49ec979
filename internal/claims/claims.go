// Package claims runs the claim workflow: claimants file claims against
// found items and admins approve or reject them.
package claims

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Notifier receives every claim status change made by a decision.
type Notifier interface {
	Notify(ctx context.Context, ev model.ClaimEvent) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, ev model.ClaimEvent) error

// Notify calls f(ctx, ev).
func (f NotifierFunc) Notify(ctx context.Context, ev model.ClaimEvent) error {
	return f(ctx, ev)
}

// Service wires the claim store to notifications and metrics. Notifier and
// Metrics are optional.
type Service struct {
	DB       *sql.DB
	Notifier Notifier
	Metrics  *metrics.Metrics
}

// Submit files a pending claim by claimantID on a found item.
func (s *Service) Submit(ctx context.Context, itemID, claimantID int64, v model.VerificationDetails) (*model.Claim, error) {
	claim, err := store.CreateClaim(ctx, s.DB, itemID, claimantID, v)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			s.Metrics.ClaimConflict("submit")
		}
		return nil, err
	}

	s.Metrics.ClaimSubmitted()
	slog.Info("claim submitted", "claim", claim.ID, "item", itemID, "claimant", claimantID)
	return claim, nil
}

// List returns claims matching filter, newest first. It never returns nil.
func (s *Service) List(ctx context.Context, filter store.ClaimFilter) ([]model.Claim, error) {
	claims, err := store.ListClaims(ctx, s.DB, filter)
	if err != nil {
		return nil, err
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	return claims, nil
}

// Decide applies an admin decision ("approved" or "rejected") to a pending
// claim. Every claimant whose claim changed status is notified once the
// decision is committed. A failed notification is logged and does not undo
// the decision.
func (s *Service) Decide(ctx context.Context, claimID int64, decision string, adminID int64) (*model.Claim, error) {
	status, err := model.ParseDecision(decision)
	if err != nil {
		return nil, err
	}

	d, err := store.DecideClaim(ctx, s.DB, claimID, status, adminID)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			s.Metrics.ClaimConflict("decide")
			slog.Warn("claim decision conflict", "claim", claimID, "admin", adminID, "error", err)
		}
		return nil, err
	}

	// The decision is committed. Claimants are told about it even if the
	// caller goes away now.
	notifyCtx := context.WithoutCancel(ctx)
	for _, ev := range d.Events {
		s.Metrics.ClaimDecided(ev.NewStatus)
		slog.Info("claim decided", "claim", ev.ClaimID, "item", ev.ItemID, "claimant", ev.ClaimantID,
			"status", ev.NewStatus, "admin", adminID)
		s.notify(notifyCtx, ev)
	}
	return d.Claim, nil
}

func (s *Service) notify(ctx context.Context, ev model.ClaimEvent) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, ev); err != nil {
		s.Metrics.NotificationFailed()
		slog.Error("failed to notify claimant", "claim", ev.ClaimID, "claimant", ev.ClaimantID, "error", err)
	}
}
