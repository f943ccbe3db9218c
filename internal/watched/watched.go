// Package watched recognises movie log posts ("Watched: Title (Year) 🍿 notes")
// and pulls the movie out of them.
package watched

import (
	"regexp"
	"strings"

	"github.com/rocksoup/mbtheme/internal/domain"
)

const popcorn = "🍿"

var (
	// multi-line: the marker also counts at the start of any line of the content.
	markerExpr    = regexp.MustCompile(`(?im)^\s*watched:`)
	leadingMarker = regexp.MustCompile(`(?i)^\s*watched:\s*`)
	yearExpr      = regexp.MustCompile(`\((\d{4})\)`)
	yearStrip     = regexp.MustCompile(`\s*\(\d{4}\)`)
	trailingPunct = regexp.MustCompile(`[.,!?]+$`)
)

// IsWatchedPost reports whether the marker starts the combined title and
// content text, or starts any line within it.
func IsWatchedPost(p domain.Post) bool {
	return markerExpr.MatchString(p.Title + " " + p.ContentText)
}

// Filter keeps watched posts in their original order.
func Filter(posts []domain.Post) []domain.Post {
	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if IsWatchedPost(p) {
			out = append(out, p)
		}
	}
	return out
}

// ExtractMovie derives the movie title and optional year from a post. Content
// text is consulted only when the post has no title at all.
func ExtractMovie(p domain.Post) domain.Movie {
	text := p.Title
	if text == "" {
		text = p.ContentText
	}

	title := strings.TrimSpace(leadingMarker.ReplaceAllString(text, ""))

	if line, _, ok := strings.Cut(title, "\n"); ok {
		title = strings.TrimSpace(line)
	}

	if before, _, ok := strings.Cut(title, popcorn); ok {
		title = strings.TrimSpace(before)
	}

	var year string
	if m := yearExpr.FindStringSubmatch(title); m != nil {
		year = m[1]
		loc := yearStrip.FindStringIndex(title)
		title = strings.TrimSpace(title[:loc[0]] + title[loc[1]:])
	}

	title = trailingPunct.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)

	return domain.Movie{Title: title, Year: year}
}
