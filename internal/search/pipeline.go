package search

import (
	"context"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/rocksoup/mbtheme/internal/logging"
	"github.com/rocksoup/mbtheme/internal/ports"
)

// Outcome describes what a pipeline run did to the page.
type Outcome string

const (
	OutcomeIdle        Outcome = "idle"
	OutcomeResults     Outcome = "results"
	OutcomeNoMatches   Outcome = "no-matches"
	OutcomeUnavailable Outcome = "unavailable"
)

// Pipeline reads the query from the page, searches, and renders the answer.
type Pipeline struct {
	client        ports.SearchClient
	inputSelector string
	renderer      *Renderer
	logger        *slog.Logger
}

// PipelineOptions select the page elements; empty selectors use the defaults.
type PipelineOptions struct {
	InputSelector  string
	ResultSelector string
	Logger         *slog.Logger
}

// NewPipeline wires a search client to the page elements.
func NewPipeline(client ports.SearchClient, opts PipelineOptions) *Pipeline {
	input := opts.InputSelector
	if input == "" {
		input = DefaultInputSelector
	}
	return &Pipeline{
		client:        client,
		inputSelector: input,
		renderer:      NewRenderer(opts.ResultSelector),
		logger:        logging.OrDiscard(opts.Logger),
	}
}

// Run never fails: an empty query leaves the page untouched, and any
// search failure is rendered as the unavailable message.
func (p *Pipeline) Run(ctx context.Context, doc *goquery.Document) Outcome {
	query := ExtractQuery(doc, p.inputSelector)
	if query == "" {
		p.logger.Debug("empty query, nothing to do")
		return OutcomeIdle
	}

	log := p.logger.With("query", query)
	results, err := p.client.Search(ctx, query)
	if err != nil {
		log.Warn("search failed", "error", err)
	}

	if renderErr := p.renderer.Render(doc, results, err); renderErr != nil {
		log.Error("render failed", "error", renderErr)
		return OutcomeUnavailable
	}

	switch {
	case err != nil:
		return OutcomeUnavailable
	case len(results) == 0:
		return OutcomeNoMatches
	default:
		log.Info("search rendered", "results", len(results))
		return OutcomeResults
	}
}
