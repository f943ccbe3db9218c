package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocksoup/mbtheme/internal/domain"
)

type stubShelves struct {
	mu      sync.Mutex
	shelves map[string][]domain.Book
	users   []string
}

func (s *stubShelves) FetchShelf(_ context.Context, username, shelf string) ([]domain.Book, error) {
	s.mu.Lock()
	s.users = append(s.users, username)
	s.mu.Unlock()

	books, ok := s.shelves[shelf]
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return books, nil
}

func TestBookshelfSyncPartialFailure(t *testing.T) {
	t.Parallel()

	source := &stubShelves{shelves: map[string][]domain.Book{
		"currently-reading": {{Title: "Dune", ISBN: "1"}},
		"finished-reading":  {},
	}}

	got, err := NewBookshelfSync(source, nil).
		Sync(context.Background(), "jared", []string{"currently-reading", "want-to-read", "finished-reading"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "want-to-read")
	assert.Equal(t, domain.Bookshelves{
		"currentlyreading": {{Title: "Dune", ISBN: "1"}},
		"wanttoread":       {},
		"finishedreading":  {},
	}, got)
	assert.ElementsMatch(t, []string{"jared", "jared", "jared"}, source.users)
}

func TestBookshelfSyncRequiresUsername(t *testing.T) {
	t.Parallel()

	_, err := NewBookshelfSync(&stubShelves{}, nil).Sync(context.Background(), "", []string{"x"})
	assert.Error(t, err)
}

func TestWriteAndLoadBookshelves(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "data")
	in := domain.Bookshelves{"wanttoread": {{Title: "Dune", Author: "Frank Herbert", ISBN: "1"}}, "finishedreading": {}}

	path, err := WriteBookshelves(dir, in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, BookshelvesFile), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"finishedreading": []`)
	assert.Contains(t, string(raw), `"cover_url": ""`)

	out, err := LoadBookshelves(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
