package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rocksoup/mbtheme/internal/domain"
	"github.com/rocksoup/mbtheme/internal/logging"
	"github.com/rocksoup/mbtheme/internal/ports"
)

// BookshelvesFile is the data file the theme reads shelves from.
const BookshelvesFile = "bookshelves.json"

// ShelfKey turns "want-to-read" into the template key "wanttoread".
func ShelfKey(shelf string) string {
	return strings.ReplaceAll(shelf, "-", "")
}

// BookshelfSync downloads every configured shelf for one user.
type BookshelfSync struct {
	source ports.ShelfSource
	logger *slog.Logger
}

// NewBookshelfSync wires the shelf source.
func NewBookshelfSync(source ports.ShelfSource, logger *slog.Logger) *BookshelfSync {
	return &BookshelfSync{source: source, logger: logging.OrDiscard(logger)}
}

// Sync fetches shelves concurrently. A failed shelf is kept as an empty list
// and its error is joined into the returned error, so callers can still write
// the shelves that did load.
func (s *BookshelfSync) Sync(ctx context.Context, username string, shelves []string) (domain.Bookshelves, error) {
	if username == "" {
		return nil, errors.New("bookshelves: username is required")
	}

	books := make([][]domain.Book, len(shelves))
	errs := make([]error, len(shelves))

	var g errgroup.Group
	g.SetLimit(4)
	for i, shelf := range shelves {
		i, shelf := i, shelf
		g.Go(func() error {
			list, err := s.source.FetchShelf(ctx, username, shelf)
			if err != nil {
				s.logger.Warn("shelf fetch failed", "shelf", shelf, "error", err)
				errs[i] = fmt.Errorf("shelf %s: %w", shelf, err)
				return nil
			}
			s.logger.Info("shelf fetched", "shelf", shelf, "books", len(list))
			books[i] = list
			return nil
		})
	}
	_ = g.Wait()

	out := make(domain.Bookshelves, len(shelves))
	for i, shelf := range shelves {
		list := books[i]
		if list == nil {
			list = []domain.Book{}
		}
		out[ShelfKey(shelf)] = list
	}
	return out, errors.Join(errs...)
}

// WriteBookshelves stores shelves as indented JSON in dir and returns the path.
func WriteBookshelves(dir string, shelves domain.Bookshelves) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	raw, err := json.MarshalIndent(shelves, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode bookshelves: %w", err)
	}
	path := filepath.Join(dir, BookshelvesFile)
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// LoadBookshelves reads a file written by WriteBookshelves.
func LoadBookshelves(path string) (domain.Bookshelves, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var shelves domain.Bookshelves
	if err := json.Unmarshal(raw, &shelves); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return shelves, nil
}
