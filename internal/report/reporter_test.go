package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocksoup/mbtheme/internal/domain"
)

func TestReportListsUpdatesAndErrors(t *testing.T) {
	t.Parallel()

	var s domain.Summary
	s.Add(domain.Updated(domain.Movie{Title: "Dune", Year: "2021"}, "https://img/d.jpg", "https://blog/1", false))
	s.Add(domain.Updated(domain.Movie{Title: "Heat"}, "https://img/h.jpg", "https://blog/2", true))
	s.Add(domain.Skipped(domain.Movie{Title: "Ran"}, "https://blog/3", domain.SkipNoPoster))
	s.Add(domain.Failed(domain.Movie{Title: "Alien", Year: "1979"}, "https://blog/4", errors.New("HTTP 500")))

	var buf bytes.Buffer
	require.NoError(t, New(&buf).Report(s))
	out := buf.String()

	assert.Contains(t, out, "SUMMARY")
	assert.Contains(t, out, "Updated: 2")
	assert.Contains(t, out, "Skipped: 1")
	assert.Contains(t, out, "Errors:  1")
	assert.Contains(t, out, "Dune (2021)")
	assert.Contains(t, out, "Heat")
	assert.Contains(t, out, "(dry run)")
	assert.Contains(t, out, "Alien (1979)")
	assert.Contains(t, out, "HTTP 500")
}

func TestReportEmptySummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, New(&buf).Report(domain.Summary{}))

	assert.Contains(t, buf.String(), "Updated: 0")
	assert.NotContains(t, buf.String(), "Updated posts:")
	assert.NotContains(t, buf.String(), "Errors:\n")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestReportWriteFailure(t *testing.T) {
	t.Parallel()

	assert.Error(t, New(failingWriter{}).Report(domain.Summary{}))
}

func TestHistory(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	entries := []domain.LedgerEntry{
		{RecordedAt: at, Result: domain.Skipped(domain.Movie{Title: "Ran"}, "https://blog/3", domain.SkipNoPoster)},
		{RecordedAt: at, Result: domain.Failed(domain.Movie{Title: "Alien"}, "https://blog/4", errors.New("HTTP 500"))},
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf).History(entries))

	out := buf.String()
	assert.Contains(t, out, "2024-05-01 12:30:00")
	assert.Contains(t, out, "skipped: no-poster")
	assert.Contains(t, out, "https://blog/4")
	assert.Contains(t, out, "HTTP 500")
}

func TestHistoryEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, New(&buf).History(nil))
	assert.Contains(t, buf.String(), "No recorded results.")
}
