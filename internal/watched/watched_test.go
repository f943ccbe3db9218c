package watched

import (
	"testing"

	"github.com/rocksoup/mbtheme/internal/domain"
)

func TestIsWatchedPost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		post domain.Post
		want bool
	}{
		{"title marker", domain.Post{Title: "Watched: Dune"}, true},
		{"content marker with empty title", domain.Post{ContentText: "watched: Heat (1995)"}, true},
		{"leading whitespace and upper case", domain.Post{Title: "   WATCHED: Alien"}, true},
		{"marker mid sentence", domain.Post{Title: "I Watched: Alien"}, false},
		{"marker at start of a later line", domain.Post{Title: "Weekend notes", ContentText: "Busy days.\nWatched: Alien"}, true},
		{"similar word", domain.Post{ContentText: "Rewatched: Alien"}, false},
		{"no marker", domain.Post{Title: "Reading list", ContentText: "Books I liked"}, false},
		{"empty post", domain.Post{}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsWatchedPost(tt.post); got != tt.want {
				t.Fatalf("IsWatchedPost(%+v) = %v, want %v", tt.post, got, tt.want)
			}
		})
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	t.Parallel()

	posts := []domain.Post{
		{URL: "1", Title: "Watched: A"},
		{URL: "2", Title: "Lunch"},
		{URL: "3", ContentText: "Watched: B"},
	}

	got := Filter(posts)
	if len(got) != 2 {
		t.Fatalf("expected 2 watched posts, got %d", len(got))
	}
	if got[0].URL != "1" || got[1].URL != "3" {
		t.Fatalf("unexpected order: %s, %s", got[0].URL, got[1].URL)
	}
}

func TestExtractMovie(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		post domain.Post
		want domain.Movie
	}{
		{"clean title", domain.Post{Title: "Dune"}, domain.Movie{Title: "Dune"}},
		{"year popcorn and notes", domain.Post{Title: "Watched: Dune (2021) 🍿 so good"}, domain.Movie{Title: "Dune", Year: "2021"}},
		{"lowercase marker trailing period", domain.Post{Title: "watched: The Matrix."}, domain.Movie{Title: "The Matrix"}},
		{"falls back to content text", domain.Post{ContentText: "Watched: Heat (1995)"}, domain.Movie{Title: "Heat", Year: "1995"}},
		{"repeated punctuation", domain.Post{Title: "Watched: Alien!?!"}, domain.Movie{Title: "Alien"}},
		{"popcorn without year", domain.Post{Title: "Watched: Arrival 🍿🍿 great"}, domain.Movie{Title: "Arrival"}},
		{"year after popcorn is dropped", domain.Post{Title: "Watched: Tenet 🍿 (2020)"}, domain.Movie{Title: "Tenet"}},
		{"blank title does not fall back", domain.Post{Title: "  ", ContentText: "Watched: Heat (1995)"}, domain.Movie{}},
		{"first line only", domain.Post{ContentText: "Watched: Heat.\nMann at his best."}, domain.Movie{Title: "Heat"}},
		{"non year parenthetical kept", domain.Post{Title: "Watched: Blade Runner (Final Cut)"}, domain.Movie{Title: "Blade Runner (Final Cut)"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractMovie(tt.post); got != tt.want {
				t.Fatalf("ExtractMovie() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractMovieIdempotent(t *testing.T) {
	t.Parallel()

	first := ExtractMovie(domain.Post{Title: "Watched: Dune (2021) 🍿 so good"})
	second := ExtractMovie(domain.Post{Title: first.Title})
	if second.Title != first.Title || second.Year != "" {
		t.Fatalf("second pass changed title: %+v -> %+v", first, second)
	}
}
