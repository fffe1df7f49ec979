package claims

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/notify"
	"github.com/erazemk/najdeno/internal/store"
)

type recorder struct {
	mu     sync.Mutex
	events []model.ClaimEvent
	err    error
}

func (r *recorder) Notify(_ context.Context, ev model.ClaimEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

type fixture struct {
	svc   *Service
	rec   *recorder
	db    *sql.DB
	admin *model.User
	item  *model.FoundItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	rec := &recorder{}

	admin := mustUser(t, database, "admin", model.RoleAdmin)
	finder := mustUser(t, database, "finder", model.RoleUser)
	item, err := store.CreateFoundItem(context.Background(), database, finder.ID, model.ItemReport{
		Title:    "Blue backpack",
		Category: "bags",
		Location: "Lecture hall 3",
		Date:     time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	return &fixture{
		svc:   &Service{DB: database, Notifier: rec, Metrics: metrics.New()},
		rec:   rec,
		db:    database,
		admin: admin,
		item:  item,
	}
}

func mustUser(t *testing.T, database *sql.DB, name string, role model.Role) *model.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), database, name, fmt.Sprintf("%s@example.edu", name), "hash", role)
	require.NoError(t, err)
	return u
}

func features(s string) model.VerificationDetails {
	return model.VerificationDetails{IdentifyingFeatures: s}
}

func TestApproveScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := mustUser(t, f.db, "a", model.RoleUser)
	b := mustUser(t, f.db, "b", model.RoleUser)

	claim, err := f.svc.Submit(ctx, f.item.ID, a.ID, features("red scratch on back"))
	require.NoError(t, err)
	assert.Equal(t, model.ClaimPending, claim.Status)

	decided, err := f.svc.Decide(ctx, claim.ID, "approved", f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClaimApproved, decided.Status)
	assert.Equal(t, model.FoundItemClaimed, decided.ItemStatus)

	_, err = f.svc.Submit(ctx, f.item.ID, b.ID, features("zip is broken"))
	assert.ErrorIs(t, err, model.ErrInvalidState)

	require.Len(t, f.rec.events, 1)
	assert.Equal(t, model.ClaimEvent{
		ClaimID:    claim.ID,
		ClaimantID: a.ID,
		ItemID:     f.item.ID,
		ItemTitle:  "Blue backpack",
		NewStatus:  model.ClaimApproved,
	}, f.rec.events[0])
}

func TestDuplicateSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := mustUser(t, f.db, "a", model.RoleUser)

	_, err := f.svc.Submit(ctx, f.item.ID, a.ID, features("keychain"))
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, f.item.ID, a.ID, features("keychain"))
	require.ErrorIs(t, err, model.ErrConflict)
	assert.Contains(t, err.Error(), "duplicate pending claim")
}

func TestDecideInvalidStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := mustUser(t, f.db, "a", model.RoleUser)
	claim, err := f.svc.Submit(ctx, f.item.ID, a.ID, features("keychain"))
	require.NoError(t, err)

	for _, decision := range []string{"pending", "", "APPROVED", "closed"} {
		_, err := f.svc.Decide(ctx, claim.ID, decision, f.admin.ID)
		assert.ErrorIs(t, err, model.ErrValidation, "decision %q", decision)
	}

	got, err := store.GetClaim(ctx, f.db, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClaimPending, got.Status)
	assert.Nil(t, got.DecidedAt)
	assert.Empty(t, f.rec.events)
}

func TestDecideNotifiesCompetingClaimants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := mustUser(t, f.db, "a", model.RoleUser)
	b := mustUser(t, f.db, "b", model.RoleUser)
	c := mustUser(t, f.db, "c", model.RoleUser)

	ca, err := f.svc.Submit(ctx, f.item.ID, a.ID, features("keychain"))
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.item.ID, b.ID, features("laptop inside"))
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.item.ID, c.ID, features("name tag"))
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, ca.ID, "approved", f.admin.ID)
	require.NoError(t, err)

	require.Len(t, f.rec.events, 3)
	notified := map[int64]model.ClaimStatus{}
	for _, ev := range f.rec.events {
		notified[ev.ClaimantID] = ev.NewStatus
	}
	assert.Equal(t, map[int64]model.ClaimStatus{
		a.ID: model.ClaimApproved,
		b.ID: model.ClaimRejected,
		c.ID: model.ClaimRejected,
	}, notified)

	pending, err := f.svc.List(ctx, store.ClaimFilter{Status: model.ClaimPending})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestNotifierFailureKeepsDecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.rec.err = errors.New("mailbox full")
	a := mustUser(t, f.db, "a", model.RoleUser)

	claim, err := f.svc.Submit(ctx, f.item.ID, a.ID, features("keychain"))
	require.NoError(t, err)

	decided, err := f.svc.Decide(ctx, claim.ID, "rejected", f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClaimRejected, decided.Status)

	got, err := store.GetClaim(ctx, f.db, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClaimRejected, got.Status)
}

func TestDecisionReachesClaimantsAfterCallerCancels(t *testing.T) {
	f := newFixture(t)
	a := mustUser(t, f.db, "a", model.RoleUser)
	b := mustUser(t, f.db, "b", model.RoleUser)

	ca, err := f.svc.Submit(context.Background(), f.item.ID, a.ID, features("keychain"))
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), f.item.ID, b.ID, features("laptop inside"))
	require.NoError(t, err)

	// The client goes away as soon as the first claimant is being notified.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	feed := &notify.Feed{DB: f.db}
	var seen []error
	f.svc.Notifier = NotifierFunc(func(nctx context.Context, ev model.ClaimEvent) error {
		cancel()
		seen = append(seen, nctx.Err())
		return feed.Notify(nctx, ev)
	})

	_, err = f.svc.Decide(ctx, ca.ID, "approved", f.admin.ID)
	require.NoError(t, err)
	require.Error(t, ctx.Err())

	assert.Equal(t, []error{nil, nil}, seen)
	for _, u := range []*model.User{a, b} {
		list, err := store.ListNotifications(context.Background(), f.db, u.ID, 10)
		require.NoError(t, err)
		assert.Len(t, list, 1, u.Name)
	}
}

func TestRedecideRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := mustUser(t, f.db, "a", model.RoleUser)

	claim, err := f.svc.Submit(ctx, f.item.ID, a.ID, features("keychain"))
	require.NoError(t, err)
	_, err = f.svc.Decide(ctx, claim.ID, "approved", f.admin.ID)
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, claim.ID, "rejected", f.admin.ID)
	require.ErrorIs(t, err, model.ErrInvalidState)

	item, err := store.GetFoundItem(ctx, f.db, f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FoundItemClaimed, item.Status)
}

func TestDecideMissingClaim(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Decide(context.Background(), 12345, "approved", f.admin.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestConcurrentApprovalsOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []int64
	for _, name := range []string{"a", "b", "c", "d"} {
		u := mustUser(t, f.db, name, model.RoleUser)
		claim, err := f.svc.Submit(ctx, f.item.ID, u.ID, features("mine"))
		require.NoError(t, err)
		ids = append(ids, claim.ID)
	}

	var wg sync.WaitGroup
	results := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = f.svc.Decide(ctx, id, "approved", f.admin.ID)
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, model.ErrConflict)
	}
	assert.Equal(t, 1, wins)

	approved, err := f.svc.List(ctx, store.ClaimFilter{ItemID: f.item.ID, Status: model.ClaimApproved})
	require.NoError(t, err)
	assert.Len(t, approved, 1)
}

func TestNilNotifierAndMetrics(t *testing.T) {
	f := newFixture(t)
	svc := &Service{DB: f.db}
	ctx := context.Background()
	a := mustUser(t, f.db, "a", model.RoleUser)

	claim, err := svc.Submit(ctx, f.item.ID, a.ID, features("keychain"))
	require.NoError(t, err)
	_, err = svc.Decide(ctx, claim.ID, "approved", f.admin.ID)
	require.NoError(t, err)
}

func TestNotifierFunc(t *testing.T) {
	var got model.ClaimEvent
	n := NotifierFunc(func(_ context.Context, ev model.ClaimEvent) error {
		got = ev
		return nil
	})

	require.NoError(t, n.Notify(context.Background(), model.ClaimEvent{ClaimID: 7}))
	assert.Equal(t, int64(7), got.ClaimID)
}
