package pipeline

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mahmoudd2003/list/internal/apperr"
	"github.com/mahmoudd2003/list/internal/locale"
	"github.com/mahmoudd2003/list/internal/model"
	"github.com/mahmoudd2003/list/pkg/google"
	"github.com/mahmoudd2003/list/pkg/google/mocks"
)

// monday is a Monday at noon, so today's hours are the first description.
var monday = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func detail(id, name string, rating float64, count int) *google.PlaceDetail {
	c := google.Count(count)
	return &google.PlaceDetail{
		ID:              id,
		DisplayName:     &google.DisplayName{Text: name},
		Rating:          &rating,
		UserRatingCount: &c,
	}
}

func newTestPipeline(t *testing.T, mc *mocks.MockClient, opts ...Option) *Pipeline {
	t.Helper()
	presets := testPresets(t)
	opts = append([]Option{WithClock(func() time.Time { return monday })}, opts...)
	return New(mc, presets, locale.Arabic(), opts...)
}

func names(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestEnrich_FiltersByMinReviews(t *testing.T) {
	mc := mocks.NewMockClient(t)
	mc.On("PlaceDetails", mock.Anything, "A", "SA").Return(detail("A", "Alpha", 4.5, 120), nil).Once()
	mc.On("PlaceDetails", mock.Anything, "B", "SA").Return(detail("B", "Beta", 4.8, 80), nil).Once()

	p := newTestPipeline(t, mc)
	items, err := p.Enrich(context.Background(), []google.PlaceRef{{ID: "A"}, {ID: "B"}}, 100, "SA")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, names(items))
}

func TestEnrich_RanksByRatingThenCount(t *testing.T) {
	mc := mocks.NewMockClient(t)
	mc.On("PlaceDetails", mock.Anything, "A", "SA").Return(detail("A", "Alpha", 4.5, 150), nil).Once()
	mc.On("PlaceDetails", mock.Anything, "C", "SA").Return(detail("C", "Gamma", 4.5, 300), nil).Once()

	p := newTestPipeline(t, mc)
	items, err := p.Enrich(context.Background(), []google.PlaceRef{{ID: "A"}, {ID: "C"}}, 0, "SA")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gamma", "Alpha"}, names(items))
}

func TestEnrich_SkipsReferencesWithoutID(t *testing.T) {
	mc := mocks.NewMockClient(t)
	mc.On("PlaceDetails", mock.Anything, "A", "SA").Return(detail("A", "Alpha", 4.1, 500), nil).Once()
	mc.On("PlaceDetails", mock.Anything, "N", "SA").Return(detail("N", "Named", 4.0, 500), nil).Once()

	refs := []google.PlaceRef{
		{},
		{ID: "A"},
		{Name: "places/"},
		{Name: "places/N"},
	}
	p := newTestPipeline(t, mc)
	items, err := p.Enrich(context.Background(), refs, 0, "SA")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Named"}, names(items))
}

func TestEnrich_EmptyInput(t *testing.T) {
	mc := mocks.NewMockClient(t)
	p := newTestPipeline(t, mc)

	items, err := p.Enrich(context.Background(), nil, 200, "SA")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestEnrich_AbortsOnFirstFailure(t *testing.T) {
	mc := mocks.NewMockClient(t)
	mc.On("PlaceDetails", mock.Anything, "A", "SA").Return(detail("A", "Alpha", 4.5, 300), nil).Once()
	mc.On("PlaceDetails", mock.Anything, "B", "SA").
		Return(nil, apperr.NewStatusError("google", "details", http.StatusInternalServerError, []byte("boom"))).Once()

	p := newTestPipeline(t, mc)
	items, err := p.Enrich(context.Background(), []google.PlaceRef{{ID: "A"}, {ID: "B"}, {ID: "C"}}, 0, "SA")
	require.Error(t, err)
	assert.Nil(t, items)
	assert.True(t, apperr.IsRemote(err))
	assert.Contains(t, err.Error(), "B")
	mc.AssertNotCalled(t, "PlaceDetails", mock.Anything, "C", "SA")
}

func TestEnrichOutcomes_KeepsGoing(t *testing.T) {
	mc := mocks.NewMockClient(t)
	mc.On("PlaceDetails", mock.Anything, "A", "SA").
		Return(nil, apperr.NewStatusError("google", "details", http.StatusNotFound, nil)).Once()
	mc.On("PlaceDetails", mock.Anything, "B", "SA").Return(detail("B", "Beta", 4.2, 250), nil).Once()

	p := newTestPipeline(t, mc)
	outcomes, err := p.EnrichOutcomes(context.Background(), []google.PlaceRef{{ID: "A"}, {}, {ID: "B"}}, "SA")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, "A", outcomes[0].PlaceID)
	assert.Error(t, outcomes[0].Err)
	assert.Nil(t, outcomes[0].Item)

	assert.Equal(t, "B", outcomes[1].PlaceID)
	require.NoError(t, outcomes[1].Err)
	assert.Equal(t, "Beta", outcomes[1].Item.Name)

	assert.Equal(t, []string{"Beta"}, names(Items(outcomes, 200)))
	assert.Empty(t, Items(outcomes, 300))
}

func TestEnrichOutcomes_Canceled(t *testing.T) {
	mc := mocks.NewMockClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(t, mc)
	_, err := p.EnrichOutcomes(ctx, []google.PlaceRef{{ID: "A"}}, "SA")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilterAndRank(t *testing.T) {
	r := func(v float64) *float64 { return &v }
	n := func(v int) *int { return &v }

	items := []model.Item{
		{Name: "no-count", Rating: r(5.0)},
		{Name: "tie-1", Rating: r(4.0), RatingCount: n(100)},
		{Name: "low", Rating: r(3.0), RatingCount: n(900)},
		{Name: "tie-2", Rating: r(4.0), RatingCount: n(100)},
		{Name: "no-rating", RatingCount: n(1000)},
		{Name: "top", Rating: r(4.9), RatingCount: n(100)},
		{Name: "more", Rating: r(4.0), RatingCount: n(400)},
	}

	t.Run("zero threshold keeps all", func(t *testing.T) {
		out := FilterAndRank(items, 0)
		assert.Equal(t, []string{"no-count", "top", "more", "tie-1", "tie-2", "low", "no-rating"}, names(out))
	})

	t.Run("threshold excludes absent counts", func(t *testing.T) {
		out := FilterAndRank(items, 100)
		assert.Equal(t, []string{"top", "more", "tie-1", "tie-2", "low", "no-rating"}, names(out))
		for _, it := range out {
			assert.GreaterOrEqual(t, it.RatingCountOrZero(), 100)
		}
	})

	t.Run("threshold boundary is inclusive", func(t *testing.T) {
		out := FilterAndRank(items, 400)
		assert.Equal(t, []string{"more", "low", "no-rating"}, names(out))
	})

	t.Run("input is not reordered", func(t *testing.T) {
		before := names(items)
		_ = FilterAndRank(items, 0)
		assert.Equal(t, before, names(items))
	})

	t.Run("empty", func(t *testing.T) {
		out := FilterAndRank(nil, 10)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})
}

func TestBuildItem_AllFields(t *testing.T) {
	yes := true
	no := false
	level := google.PriceLevel(2)
	d := detail("ChIJ-a", "Burger & Co", 4.5, 120)
	d.FormattedAddress = "طريق الملك فهد، الرياض"
	d.NationalPhoneNumber = "011 000 0000"
	d.WebsiteURI = "https://burger.example/"
	d.GoogleMapsURI = "https://maps.google.com/?cid=1"
	d.PriceLevel = &level
	d.Types = []string{"restaurant", "Meal_Takeaway"}
	d.Delivery = &yes
	d.DineIn = &no
	d.RegularOpeningHours = &google.OpeningHours{WeekdayDescriptions: []string{
		"Monday: 1:00 PM - 2:00 AM",
		"Tuesday: 9:00 AM - 11:00 PM",
	}}

	it := BuildItem(locale.Arabic(), "ignored", d, monday)

	assert.Equal(t, "ChIJ-a", it.PlaceID)
	assert.Equal(t, "Burger & Co", it.Name)
	assert.Equal(t, "طريق الملك فهد، الرياض", it.Address)
	assert.Equal(t, "011 000 0000", it.Phone)
	assert.Equal(t, "https://burger.example/", it.Website)
	assert.Equal(t, "https://maps.google.com/?cid=1", it.MapsURI)
	assert.Equal(t, "50 – 75 ر.س", it.PriceRange)
	assert.Equal(t, "1:00 م – 2:00 ص", it.TodayHours)
	assert.Equal(t, []string{"الاثنين: 1:00 م – 2:00 ص", "الثلاثاء: 9:00 ص – 11:00 م"}, it.FullHours)
	assert.Equal(t, []string{"توصيل", "سفري"}, it.ServiceOptions)
	assert.Equal(t, locale.FamilyFriendly, it.FamilyFriendly)
	assert.Equal(t, locale.CrowdNote, it.CrowdNote)
	assert.Empty(t, it.SignatureDish)
	require.NotNil(t, it.Rating)
	assert.InDelta(t, 4.5, *it.Rating, 0.0001)
	require.NotNil(t, it.RatingCount)
	assert.Equal(t, 120, *it.RatingCount)
}

func TestBuildItem_SparseDetail(t *testing.T) {
	it := BuildItem(locale.Arabic(), "X", &google.PlaceDetail{}, monday)

	assert.Equal(t, "X", it.PlaceID)
	assert.Empty(t, it.Name)
	assert.Equal(t, locale.Unspecified, it.PriceRange)
	assert.Equal(t, locale.Dash, it.TodayHours)
	assert.NotNil(t, it.FullHours)
	assert.Empty(t, it.FullHours)
	assert.NotNil(t, it.ServiceOptions)
	assert.Empty(t, it.ServiceOptions)
	assert.Nil(t, it.Rating)
	assert.Nil(t, it.RatingCount)
}

func TestBuildItem_FallsBackToCurrentHours(t *testing.T) {
	d := &google.PlaceDetail{
		CurrentOpeningHours: &google.OpeningHours{WeekdayDescriptions: []string{"Monday: Open 24 hours"}},
	}
	it := BuildItem(locale.Arabic(), "X", d, monday)
	assert.Equal(t, "Open 24 hours", it.TodayHours)
}
