// Package pipeline turns a search query into a ranked list of normalized
// restaurant items: text search, per-place detail lookups, field
// derivation, filtering and ranking.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mahmoudd2003/list/internal/apperr"
	"github.com/mahmoudd2003/list/internal/locale"
	"github.com/mahmoudd2003/list/internal/metrics"
	"github.com/mahmoudd2003/list/internal/model"
	"github.com/mahmoudd2003/list/internal/preset"
	"github.com/mahmoudd2003/list/pkg/google"
)

// DefaultMaxResults is used when a fetch asks for no explicit result count.
const DefaultMaxResults = 15

var tracer = otel.Tracer("github.com/mahmoudd2003/list/internal/pipeline")

// Pipeline runs searches and enrichment against one Places client.
type Pipeline struct {
	places  google.Client
	presets *preset.Registry
	format  *locale.Formatter
	now     func() time.Time
	partial bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the clock used to pick today's opening hours.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithPartialResults makes Fetch keep the items that were enriched
// successfully when some detail lookups fail, recording the failures on
// the run instead of aborting.
func WithPartialResults(enabled bool) Option {
	return func(p *Pipeline) {
		p.partial = enabled
	}
}

// New creates a Pipeline.
func New(places google.Client, presets *preset.Registry, f *locale.Formatter, opts ...Option) *Pipeline {
	if f == nil {
		f = locale.Arabic()
	}
	p := &Pipeline{
		places:  places,
		presets: presets,
		format:  f,
		now:     time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Search resolves cityKey and runs one text search around it. An unknown
// city fails before any request is sent. maxResults is clamped to the
// API's cap; zero or less means DefaultMaxResults.
func (p *Pipeline) Search(ctx context.Context, query, cityKey string, maxResults int) ([]google.PlaceRef, error) {
	city, err := p.presets.City(cityKey)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, apperr.NewConfigError("query", "search query is empty")
	}

	ctx, span := tracer.Start(ctx, "pipeline.Search", trace.WithAttributes(
		attribute.String("city", city.Key),
	))
	defer span.End()

	resp, err := p.places.SearchText(ctx, google.SearchRequest{
		Query:        query,
		RegionCode:   city.RegionCode,
		Center:       google.LatLng{Latitude: city.Latitude, Longitude: city.Longitude},
		RadiusMeters: city.RadiusMeters,
		MaxResults:   ClampResults(maxResults),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, eris.Wrap(err, "pipeline: search")
	}
	if resp.Places == nil {
		return []google.PlaceRef{}, nil
	}
	return resp.Places, nil
}

// ClampResults bounds a requested result count to [1, google.MaxResultCount].
func ClampResults(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxResults
	case n > google.MaxResultCount:
		return google.MaxResultCount
	default:
		return n
	}
}

// FetchRequest describes one search-and-enrich run. Query wins over
// Category when both are set.
type FetchRequest struct {
	Query      string `json:"query"`
	Category   string `json:"category"`
	City       string `json:"city"`
	MaxResults int    `json:"max_results"`
	MinReviews int    `json:"min_reviews"`
}

// Fetch searches, enriches and ranks, returning the run as a value the
// caller hands to the render and publish steps.
func (p *Pipeline) Fetch(ctx context.Context, req FetchRequest) (*model.Run, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		if req.Category == "" {
			return nil, apperr.NewConfigError("query", "either a query or a category is required")
		}
		q, err := p.presets.BuildQuery(req.Category, req.City)
		if err != nil {
			return nil, err
		}
		query = q
	}
	if req.MinReviews < 0 {
		return nil, apperr.NewConfigError("min_reviews", "must not be negative")
	}

	city, err := p.presets.City(req.City)
	if err != nil {
		return nil, err
	}

	run := model.NewRun(query, city.Key, req.MinReviews, p.now())
	log := zap.L().With(
		zap.String("run_id", run.ID.String()),
		zap.String("city", city.Key),
		zap.String("query", query),
	)
	log.Info("pipeline: starting fetch", zap.Int("min_reviews", req.MinReviews), zap.Bool("partial", p.partial))

	ctx, span := tracer.Start(ctx, "pipeline.Fetch", trace.WithAttributes(
		attribute.String("run_id", run.ID.String()),
	))
	defer span.End()

	start := time.Now()
	refs, err := p.Search(ctx, query, city.Key, req.MaxResults)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("failed").Inc()
		log.Error("pipeline: search failed", zap.Error(err))
		return nil, err
	}
	log.Info("pipeline: search complete", zap.Int("refs", len(refs)))

	if p.partial {
		outcomes, err := p.EnrichOutcomes(ctx, refs, city.RegionCode)
		if err != nil {
			metrics.PipelineRuns.WithLabelValues("failed").Inc()
			return nil, err
		}
		run.Items = Items(outcomes, req.MinReviews)
		for _, o := range outcomes {
			if o.Err != nil {
				run.Failures = append(run.Failures, model.Failure{PlaceID: o.PlaceID, Error: o.Err.Error()})
			}
		}
	} else {
		items, err := p.Enrich(ctx, refs, req.MinReviews, city.RegionCode)
		if err != nil {
			metrics.PipelineRuns.WithLabelValues("failed").Inc()
			log.Error("pipeline: enrichment failed", zap.Error(err))
			return nil, err
		}
		run.Items = items
	}

	result := "complete"
	if len(run.Failures) > 0 {
		result = "partial"
	}
	metrics.PipelineRuns.WithLabelValues(result).Inc()
	log.Info("pipeline: fetch complete",
		zap.Int("items", len(run.Items)),
		zap.Int("failures", len(run.Failures)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return &run, nil
}
