package domain

// SearchResult is one hit returned by the site search endpoint. Every field is optional.
type SearchResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Date    string `json:"date"`
}
