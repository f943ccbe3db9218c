package domain

import "time"

// Outcome is the terminal state of one watched post.
type Outcome string

const (
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
)

// SkipReason explains a skipped post.
type SkipReason string

const (
	SkipHasImage SkipReason = "has-image"
	SkipNoPoster SkipReason = "no-poster"
)

// EnrichmentResult is produced once per watched post.
type EnrichmentResult struct {
	Outcome   Outcome
	Reason    SkipReason
	Title     string
	Year      string
	PosterURL string
	PostURL   string
	Message   string
	DryRun    bool
}

// Updated builds a success result.
func Updated(movie Movie, posterURL, postURL string, dryRun bool) EnrichmentResult {
	return EnrichmentResult{
		Outcome:   OutcomeUpdated,
		Title:     movie.Title,
		Year:      movie.Year,
		PosterURL: posterURL,
		PostURL:   postURL,
		DryRun:    dryRun,
	}
}

// Skipped builds a skip result.
func Skipped(movie Movie, postURL string, reason SkipReason) EnrichmentResult {
	return EnrichmentResult{
		Outcome: OutcomeSkipped,
		Reason:  reason,
		Title:   movie.Title,
		Year:    movie.Year,
		PostURL: postURL,
	}
}

// Failed builds an error result.
func Failed(movie Movie, postURL string, err error) EnrichmentResult {
	res := EnrichmentResult{
		Outcome: OutcomeError,
		Title:   movie.Title,
		Year:    movie.Year,
		PostURL: postURL,
	}
	if err != nil {
		res.Message = err.Error()
	}
	return res
}

// LedgerEntry is an enrichment result persisted for audit.
type LedgerEntry struct {
	ID         string
	RunID      string
	RecordedAt time.Time
	Result     EnrichmentResult
}
