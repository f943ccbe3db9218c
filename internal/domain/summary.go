package domain

// Summary accumulates the terminal results of one enrichment run.
// It is append-only and scoped to a single run.
type Summary struct {
	Updated []EnrichmentResult
	Skipped []EnrichmentResult
	Errors  []EnrichmentResult
}

// Add files the result under its outcome.
func (s *Summary) Add(r EnrichmentResult) {
	switch r.Outcome {
	case OutcomeUpdated:
		s.Updated = append(s.Updated, r)
	case OutcomeSkipped:
		s.Skipped = append(s.Skipped, r)
	case OutcomeError:
		s.Errors = append(s.Errors, r)
	}
}

// Total is the number of results recorded.
func (s Summary) Total() int {
	return len(s.Updated) + len(s.Skipped) + len(s.Errors)
}

// HasErrors decides the run's exit status regardless of successes and skips.
func (s Summary) HasErrors() bool {
	return len(s.Errors) > 0
}
