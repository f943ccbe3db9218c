package domain

import "time"

// Post is a single feed item, immutable once fetched within a run.
// ContentText is plain text; ContentMarkdown keeps links and emphasis for
// data files the theme renders.
type Post struct {
	URL             string
	Title           string
	Content         string
	ContentText     string
	ContentMarkdown string
	Date            time.Time
	Categories      []string
	Images          []string
}

// HasImage reports whether the post already carries at least one image.
func (p Post) HasImage() bool {
	return len(p.Images) > 0
}

// HasCategory reports whether the category list contains name.
func (p Post) HasCategory(name string) bool {
	for _, c := range p.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Movie is what a watched post is about. Year is empty when the post names none.
type Movie struct {
	Title string
	Year  string
}

// Label renders "Title (Year)" or just the title.
func (m Movie) Label() string {
	if m.Year == "" {
		return m.Title
	}
	return m.Title + " (" + m.Year + ")"
}

// PostUpdate lists the fields replaced on the remote post.
type PostUpdate struct {
	Photo    string   `json:"photo,omitempty"`
	Category []string `json:"category,omitempty"`
}

// UpdateReceipt is returned by a post updater for both real and dry-run updates.
type UpdateReceipt struct {
	URL        string
	StatusCode int
	DryRun     bool
	Update     PostUpdate
}
