package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"budgetbox-server/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func budgetAt(ts time.Time, amounts map[string]float64) models.Budget {
	return models.Budget{Amounts: amounts, UpdatedAt: ts}
}

func TestReconcileBootstrapAlwaysAccepts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	// Even an ancient claimed timestamp wins when no record exists.
	old := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	res, err := s.ReconcileBudget(ctx, 1, budgetAt(old, map[string]float64{"income": 100}))
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, old, res.Timestamp)

	rec, err := s.GetLatestBudget(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"income": 100}, rec.Budget.Amounts)
}

func TestReconcileBootstrapWithoutClaimUsesServerTime(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	before := time.Now().UTC()
	res, err := s.ReconcileBudget(ctx, 1, budgetAt(time.Time{}, map[string]float64{"income": 100}))
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.False(t, res.Timestamp.Before(before))
}

func TestReconcilePushIdempotence(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	budget := budgetAt(ts, map[string]float64{"income": 50000, "food": 10000})

	for i := 0; i < 2; i++ {
		res, err := s.ReconcileBudget(ctx, 1, budget)
		require.NoError(t, err)
		assert.True(t, res.Accepted, "push %d must be accepted (ties favor incoming)", i+1)
		assert.Equal(t, ts, res.Timestamp)
	}

	rec, err := s.GetLatestBudget(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"income": 50000, "food": 10000}, rec.Budget.Amounts)
	assert.Equal(t, ts, rec.UpdatedAt)
}

func TestReconcileLastWriterWinsOrdering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.ReconcileBudget(ctx, 1, budgetAt(t0, map[string]float64{"food": 100}))
	require.NoError(t, err)

	// Strictly older claim loses and gets the stored copy back.
	res, err := s.ReconcileBudget(ctx, 1, budgetAt(t0.Add(-time.Second), map[string]float64{"food": 50}))
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, t0, res.Timestamp)
	assert.Equal(t, map[string]float64{"food": 100}, res.Budget.Amounts)

	rec, err := s.GetLatestBudget(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"food": 100}, rec.Budget.Amounts)

	// Strictly newer claim wins.
	res, err = s.ReconcileBudget(ctx, 1, budgetAt(t0.Add(time.Second), map[string]float64{"food": 200}))
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	rec, err = s.GetLatestBudget(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"food": 200}, rec.Budget.Amounts)
	assert.Equal(t, t0.Add(time.Second), rec.UpdatedAt)
}

func TestReconcileExampleScenario(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.ReconcileBudget(ctx, 1, budgetAt(t0, map[string]float64{"income": 50000, "food": 10000}))
	require.NoError(t, err)

	// Client A edited on Jan 2.
	resA, err := s.ReconcileBudget(ctx, 1, budgetAt(
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		map[string]float64{"income": 50000, "food": 12000},
	))
	require.NoError(t, err)
	assert.True(t, resA.Accepted)

	// Client B was offline since before A's edit; its claim is older.
	resB, err := s.ReconcileBudget(ctx, 1, budgetAt(
		time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		map[string]float64{"income": 50000, "food": 8000},
	))
	require.NoError(t, err)
	assert.False(t, resB.Accepted)
	assert.Equal(t, float64(12000), resB.Budget.Amounts["food"], "B must be handed A's copy to adopt")

	rec, err := s.GetLatestBudget(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, float64(12000), rec.Budget.Amounts["food"])
}

func TestReconcileConcurrentRace(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.ReconcileBudget(ctx, 1, budgetAt(t0, map[string]float64{"income": 1}))
	require.NoError(t, err)

	older := map[string]float64{"income": 50000, "food": 8000, "transport": 300}
	newer := map[string]float64{"income": 50000, "food": 12000, "misc": 70}
	tOlder := t0.Add(time.Second)
	tNewer := t0.Add(2 * time.Second)

	var wg sync.WaitGroup
	results := make([]*models.SyncResult, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		res, err := s.ReconcileBudget(ctx, 1, budgetAt(tOlder, older))
		require.NoError(t, err)
		results[0] = res
	}()
	go func() {
		defer wg.Done()
		res, err := s.ReconcileBudget(ctx, 1, budgetAt(tNewer, newer))
		require.NoError(t, err)
		results[1] = res
	}()
	wg.Wait()

	// The later claim always wins and the stored record is exactly its
	// payload, never a mix of the two.
	assert.True(t, results[1].Accepted)
	rec, err := s.GetLatestBudget(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, newer, rec.Budget.Amounts)
	assert.Equal(t, tNewer, rec.UpdatedAt)

	// If the older claim arrived after the newer one committed, it must
	// have been rejected with the newer payload returned.
	if !results[0].Accepted {
		assert.Equal(t, newer, results[0].Budget.Amounts)
		assert.Equal(t, tNewer, results[0].Timestamp)
	}
}

func TestReconcileReturnedBudgetDoesNotAliasStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	res, err := s.ReconcileBudget(ctx, 1, budgetAt(ts, map[string]float64{"food": 1}))
	require.NoError(t, err)

	res.Budget.Amounts["food"] = 999

	rec, err := s.GetLatestBudget(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, float64(1), rec.Budget.Amounts["food"])
}

func TestGetLatestNoRecord(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetLatestBudget(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	budget := budgetAt(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		map[string]float64{"income": 50000, "food": 10000, "subscriptions": 499},
	)

	created, err := s.CreateSnapshot(ctx, 1, budget)
	require.NoError(t, err)

	got, err := s.GetSnapshot(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, budget.Amounts, got.Budget.Amounts)
	assert.Equal(t, budget.UpdatedAt, got.Budget.UpdatedAt)
}

func TestSnapshotListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	// Duplicate content is allowed.
	budget := budgetAt(time.Time{}, map[string]float64{"food": 1})
	first, err := s.CreateSnapshot(ctx, 1, budget)
	require.NoError(t, err)
	second, err := s.CreateSnapshot(ctx, 1, budget)
	require.NoError(t, err)

	// Another user's snapshots must not leak in.
	_, err = s.CreateSnapshot(ctx, 2, budget)
	require.NoError(t, err)

	snaps, err := s.ListSnapshots(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, second.ID, snaps[0].ID)
	assert.Equal(t, first.ID, snaps[1].ID)
}

func TestSnapshotDeleteIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.CreateSnapshot(ctx, 1, budgetAt(time.Time{}, map[string]float64{"food": 1}))
	require.NoError(t, err)

	deleted, err := s.DeleteSnapshot(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = s.DeleteSnapshot(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestSnapshotOwnershipEnforced(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.CreateSnapshot(ctx, 1, budgetAt(time.Time{}, map[string]float64{"food": 1}))
	require.NoError(t, err)

	_, err = s.GetSnapshot(ctx, 2, created.ID)
	assert.ErrorIs(t, err, ErrNoRecord)

	deleted, err := s.DeleteSnapshot(ctx, 2, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "a@b.com", []byte("hash"))
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "a@b.com", []byte("hash"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	u, err := s.GetUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)

	_, err = s.GetUserByEmail(ctx, "nobody@b.com")
	assert.ErrorIs(t, err, ErrNoRecord)
}
