package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocksoup/mbtheme/internal/config"
	"github.com/rocksoup/mbtheme/internal/domain"
)

func openTestLedger(t *testing.T) *SQLiteLedger {
	t.Helper()
	ledger, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger
}

func TestSQLiteLedgerRoundTrip(t *testing.T) {
	t.Parallel()

	ledger := openTestLedger(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	ledger.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	ctx := context.Background()
	updated := domain.Updated(domain.Movie{Title: "Dune", Year: "2021"}, "https://img/d.jpg", "https://blog/1", true)
	skipped := domain.Skipped(domain.Movie{Title: "Heat"}, "https://blog/2", domain.SkipHasImage)
	failed := domain.Failed(domain.Movie{Title: "Ran"}, "https://blog/3", errors.New("HTTP 401"))

	require.NoError(t, ledger.Record(ctx, "run-a", updated))
	require.NoError(t, ledger.Record(ctx, "run-a", skipped))
	require.NoError(t, ledger.Record(ctx, "run-b", failed))

	entries, err := ledger.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "run-b", entries[0].RunID)
	assert.Equal(t, failed, entries[0].Result)
	assert.Equal(t, skipped, entries[1].Result)
	assert.Equal(t, updated, entries[2].Result)
	assert.Equal(t, base.Add(time.Second), entries[2].RecordedAt)
	assert.NotEmpty(t, entries[2].ID)
}

func TestSQLiteLedgerRecentLimit(t *testing.T) {
	t.Parallel()

	ledger := openTestLedger(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, ledger.Record(ctx, "run", domain.Skipped(domain.Movie{Title: "x"}, "u", domain.SkipNoPoster)))
	}

	entries, err := ledger.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSQLiteLedgerReopenKeepsData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Record(ctx, "run", domain.Skipped(domain.Movie{Title: "x"}, "u", domain.SkipNoPoster)))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	entries, err := second.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOpenDriverSelection(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), config.LedgerConfig{Driver: config.LedgerNone})
	assert.ErrorIs(t, err, ErrLedgerDisabled)

	_, err = Open(context.Background(), config.LedgerConfig{Driver: "redis"})
	assert.Error(t, err)

	ledger, err := Open(context.Background(), config.LedgerConfig{
		Driver: config.LedgerSQLite,
		DSN:    filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	assert.NoError(t, ledger.Close())
}
