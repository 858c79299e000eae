package pipeline

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mahmoudd2003/list/internal/locale"
	"github.com/mahmoudd2003/list/internal/metrics"
	"github.com/mahmoudd2003/list/internal/model"
	"github.com/mahmoudd2003/list/pkg/google"
)

// Outcome is the result of enriching one place reference.
type Outcome struct {
	PlaceID string
	Item    *model.Item
	Err     error
}

// Enrich looks up details for each reference, one at a time and in order,
// and returns the normalized items that have at least minReviews reviews,
// ranked by rating then review count. References without a usable id are
// skipped. The first failed lookup aborts the whole call and no partial
// result is returned.
func (p *Pipeline) Enrich(ctx context.Context, refs []google.PlaceRef, minReviews int, regionCode string) ([]model.Item, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Enrich", trace.WithAttributes(
		attribute.Int("refs", len(refs)),
		attribute.Int("min_reviews", minReviews),
	))
	defer span.End()

	items := make([]model.Item, 0, len(refs))
	for i, ref := range refs {
		id := ref.PlaceID()
		if id == "" {
			metrics.PipelineItems.WithLabelValues(metrics.OutcomeSkipped).Inc()
			zap.L().Debug("pipeline: skipping reference without id", zap.Int("index", i))
			continue
		}

		item, err := p.enrichOne(ctx, id, regionCode)
		if err != nil {
			metrics.PipelineItems.WithLabelValues(metrics.OutcomeFailed).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "detail lookup failed")
			return nil, eris.Wrapf(err, "pipeline: enrich place %s", id)
		}
		items = append(items, item)
	}

	out := FilterAndRank(items, minReviews)
	recordKept(len(items), len(out))
	span.SetAttributes(attribute.Int("items", len(out)))
	return out, nil
}

// EnrichOutcomes performs the same traversal as Enrich but records a
// per-reference outcome instead of aborting on the first failed lookup.
// Only context cancellation stops it early.
func (p *Pipeline) EnrichOutcomes(ctx context.Context, refs []google.PlaceRef, regionCode string) ([]Outcome, error) {
	ctx, span := tracer.Start(ctx, "pipeline.EnrichOutcomes", trace.WithAttributes(
		attribute.Int("refs", len(refs)),
	))
	defer span.End()

	outcomes := make([]Outcome, 0, len(refs))
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "pipeline: enrich canceled")
		}

		id := ref.PlaceID()
		if id == "" {
			metrics.PipelineItems.WithLabelValues(metrics.OutcomeSkipped).Inc()
			zap.L().Debug("pipeline: skipping reference without id", zap.Int("index", i))
			continue
		}

		item, err := p.enrichOne(ctx, id, regionCode)
		if err != nil {
			metrics.PipelineItems.WithLabelValues(metrics.OutcomeFailed).Inc()
			zap.L().Warn("pipeline: detail lookup failed", zap.String("place_id", id), zap.Error(err))
			outcomes = append(outcomes, Outcome{PlaceID: id, Err: err})
			continue
		}
		outcomes = append(outcomes, Outcome{PlaceID: id, Item: &item})
	}
	return outcomes, nil
}

// Items filters and ranks the successful outcomes.
func Items(outcomes []Outcome, minReviews int) []model.Item {
	items := make([]model.Item, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err == nil && o.Item != nil {
			items = append(items, *o.Item)
		}
	}
	out := FilterAndRank(items, minReviews)
	recordKept(len(items), len(out))
	return out
}

// FilterAndRank keeps items with at least minReviews reviews (absent counts
// as 0) and sorts them by rating, then review count, both descending. Ties
// keep their input order.
func FilterAndRank(items []model.Item, minReviews int) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if it.RatingCountOrZero() >= minReviews {
			out = append(out, it)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Item) int {
		if c := cmp.Compare(b.RatingOrZero(), a.RatingOrZero()); c != 0 {
			return c
		}
		return cmp.Compare(b.RatingCountOrZero(), a.RatingCountOrZero())
	})
	return out
}

func (p *Pipeline) enrichOne(ctx context.Context, placeID, regionCode string) (model.Item, error) {
	ctx, span := tracer.Start(ctx, "pipeline.details", trace.WithAttributes(
		attribute.String("place_id", placeID),
	))
	defer span.End()

	start := time.Now()
	detail, err := p.places.PlaceDetails(ctx, placeID, regionCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "details failed")
		return model.Item{}, err
	}
	zap.L().Debug("pipeline: details fetched",
		zap.String("place_id", placeID),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return BuildItem(p.format, placeID, detail, p.now()), nil
}

// BuildItem derives the presentation fields of one place. Placeholder
// fields get their fixed estimate text.
func BuildItem(f *locale.Formatter, placeID string, d *google.PlaceDetail, now time.Time) model.Item {
	today, full := f.TodayHours(d.WeekdayDescriptions(), now)

	if d.ID != "" {
		placeID = d.ID
	}
	return model.Item{
		PlaceID:        placeID,
		Name:           d.Name(),
		Address:        d.FormattedAddress,
		Phone:          d.NationalPhoneNumber,
		Website:        d.WebsiteURI,
		MapsURI:        d.GoogleMapsURI,
		PriceRange:     f.PriceRange(d.PriceLevel.Tier()),
		TodayHours:     today,
		FullHours:      full,
		ServiceOptions: f.ServiceOptions(serviceTags(d)),
		FamilyFriendly: locale.FamilyFriendly,
		CrowdNote:      locale.CrowdNote,
		Rating:         d.Rating,
		RatingCount:    d.UserRatingCount.Int(),
	}
}

// serviceTags returns the place's type tags plus a synthetic tag for each
// service attribute the API reported as true.
func serviceTags(d *google.PlaceDetail) []string {
	tags := slices.Clone(d.Types)
	if d.Delivery != nil && *d.Delivery {
		tags = append(tags, "delivery")
	}
	if d.Takeout != nil && *d.Takeout {
		tags = append(tags, "takeout")
	}
	if d.DineIn != nil && *d.DineIn {
		tags = append(tags, "dine_in")
	}
	return tags
}

func recordKept(total, kept int) {
	metrics.PipelineItems.WithLabelValues(metrics.OutcomeKept).Add(float64(kept))
	metrics.PipelineItems.WithLabelValues(metrics.OutcomeFiltered).Add(float64(total - kept))
}
