package runs

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestStore(t *testing.T) (*Store, *sql.DB) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	store := NewStore(db, log)
	require.NoError(t, store.Init())

	return store, db
}

type testPayload struct {
	Total   float64
	Periods []string
}

func testRun(id string, createdAt time.Time) Run {
	return Run{
		ID:              id,
		CreatedAt:       createdAt,
		Model:           "baseline",
		Clients:         2,
		SeriesTotal:     10,
		SeriesFailed:    1,
		HistoricalTotal: 1200.5,
		ForecastTotal:   1350.25,
		GrowthPct:       12.47,
		ElapsedMs:       84,
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store, db := setupTestStore(t)
	defer db.Close()
	ctx := context.Background()

	created := time.Unix(1700000000, 0).UTC()
	require.NoError(t, store.Save(ctx, testRun("run-1", created), testPayload{Total: 99, Periods: []string{"2024-01"}}))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, "baseline", got.Model)
	assert.Equal(t, 2, got.Clients)
	assert.Equal(t, 10, got.SeriesTotal)
	assert.Equal(t, 1, got.SeriesFailed)
	assert.Equal(t, 1200.5, got.HistoricalTotal)
	assert.Equal(t, 1350.25, got.ForecastTotal)
	assert.Equal(t, 12.47, got.GrowthPct)
	assert.Equal(t, int64(84), got.ElapsedMs)
	assert.False(t, got.Archived)
	assert.Nil(t, got.ArchivedAt)
}

func TestStore_PayloadRoundTrip(t *testing.T) {
	store, db := setupTestStore(t)
	defer db.Close()
	ctx := context.Background()

	payload := testPayload{Total: 42.5, Periods: []string{"2024-01", "2024-02"}}
	require.NoError(t, store.Save(ctx, testRun("run-1", time.Now()), payload))

	blob, err := store.GetPayload(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, blob)

	var decoded testPayload
	require.NoError(t, DecodePayload(blob, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestStore_GetUnknownReturnsNil(t *testing.T) {
	store, db := setupTestStore(t)
	defer db.Close()
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	blob, err := store.GetPayload(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, blob)
}

func TestStore_ListNewestFirst(t *testing.T) {
	store, db := setupTestStore(t)
	defer db.Close()
	ctx := context.Background()

	base := time.Unix(1700000000, 0).UTC()
	require.NoError(t, store.Save(ctx, testRun("run-old", base), testPayload{}))
	require.NoError(t, store.Save(ctx, testRun("run-mid", base.Add(time.Hour)), testPayload{}))
	require.NoError(t, store.Save(ctx, testRun("run-new", base.Add(2*time.Hour)), testPayload{}))

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "run-new", list[0].ID)
	assert.Equal(t, "run-mid", list[1].ID)
	assert.Equal(t, "run-old", list[2].ID)

	list, err = store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "run-new", list[0].ID)
	assert.Equal(t, "run-mid", list[1].ID)
}

func TestStore_Delete(t *testing.T) {
	store, db := setupTestStore(t)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRun("run-1", time.Now()), testPayload{}))

	found, err := store.Delete(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, found)

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	blob, err := store.GetPayload(ctx, "run-1")
	require.NoError(t, err)
	assert.Nil(t, blob)

	found, err = store.Delete(ctx, "run-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_MarkArchived(t *testing.T) {
	store, db := setupTestStore(t)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRun("run-1", time.Now()), testPayload{}))

	when := time.Unix(1700003600, 0).UTC()
	require.NoError(t, store.MarkArchived(ctx, "run-1", when))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Archived)
	require.NotNil(t, got.ArchivedAt)
	assert.Equal(t, when, *got.ArchivedAt)

	err = store.MarkArchived(ctx, "missing", when)
	assert.Error(t, err)
}

func TestStore_DeleteOlderThan(t *testing.T) {
	store, db := setupTestStore(t)
	defer db.Close()
	ctx := context.Background()

	base := time.Unix(1700000000, 0).UTC()
	require.NoError(t, store.Save(ctx, testRun("run-old", base), testPayload{}))
	require.NoError(t, store.Save(ctx, testRun("run-mid", base.Add(time.Hour)), testPayload{}))
	require.NoError(t, store.Save(ctx, testRun("run-new", base.Add(48*time.Hour)), testPayload{}))

	deleted, err := store.DeleteOlderThan(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "run-new", list[0].ID)

	blob, err := store.GetPayload(ctx, "run-old")
	require.NoError(t, err)
	assert.Nil(t, blob)
}

func TestStore_ListUnarchivedOlderThan(t *testing.T) {
	store, db := setupTestStore(t)
	defer db.Close()
	ctx := context.Background()

	base := time.Unix(1700000000, 0).UTC()
	require.NoError(t, store.Save(ctx, testRun("run-archived", base), testPayload{}))
	require.NoError(t, store.Save(ctx, testRun("run-pending-old", base.Add(time.Minute)), testPayload{}))
	require.NoError(t, store.Save(ctx, testRun("run-pending-older", base.Add(time.Second)), testPayload{}))
	require.NoError(t, store.Save(ctx, testRun("run-recent", base.Add(24*time.Hour)), testPayload{}))
	require.NoError(t, store.MarkArchived(ctx, "run-archived", base.Add(time.Hour)))

	pending, err := store.ListUnarchivedOlderThan(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "run-pending-older", pending[0].ID)
	assert.Equal(t, "run-pending-old", pending[1].ID)
}

func TestStore_Count(t *testing.T) {
	store, db := setupTestStore(t)
	defer db.Close()
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, store.Save(ctx, testRun("run-1", time.Now()), testPayload{}))
	require.NoError(t, store.Save(ctx, testRun("run-2", time.Now()), testPayload{}))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestStore_SaveDuplicateIDFails(t *testing.T) {
	store, db := setupTestStore(t)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRun("run-1", time.Now()), testPayload{}))
	err := store.Save(ctx, testRun("run-1", time.Now()), testPayload{})
	assert.Error(t, err)

	// The failed transaction must not leave a second payload row behind.
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
