package domain

import "regexp"

// Book is one entry on a Micro.blog bookshelf.
type Book struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	CoverURL string `json:"cover_url"`
	ISBN     string `json:"isbn"`
	URL      string `json:"url"`
}

// Bookshelves maps a shelf key (shelf name without dashes) to its books.
type Bookshelves map[string][]Book

// WatchedEntry is a movie log entry written to the theme's data directory.
type WatchedEntry struct {
	Title       string `json:"title"`
	WatchedDate string `json:"watched_date"`
	Year        string `json:"year,omitempty"`
	Notes       string `json:"notes,omitempty"`
	PosterURL   string `json:"poster_url,omitempty"`
	URL         string `json:"url"`
}

var (
	bookPathExpr = regexp.MustCompile(`/books/(\d+)`)
	googleIDExpr = regexp.MustCompile(`[?&]id=([^&]+)`)
)

// CoverID returns the ISBN, falling back to the numeric segment of a
// /books/<n> URL. Empty means the book has no usable identifier.
func (b Book) CoverID() string {
	if b.ISBN != "" {
		return b.ISBN
	}
	if m := bookPathExpr.FindStringSubmatch(b.URL); m != nil {
		return m[1]
	}
	return ""
}

// HighQualityCoverURL swaps a Google Books thumbnail for the full-size front
// cover. Cover URLs without an id parameter are returned unchanged.
func (b Book) HighQualityCoverURL() string {
	m := googleIDExpr.FindStringSubmatch(b.CoverURL)
	if m == nil {
		return b.CoverURL
	}
	return "https://books.google.com/books/content?id=" + m[1] +
		"&printsec=frontcover&img=1&zoom=0&source=gbs_api"
}
