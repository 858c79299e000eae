package model

import (
	"time"

	"github.com/google/uuid"
)

// Item is one normalized restaurant, ready for rendering. Items are built
// once by the enrichment pipeline and never mutated afterwards.
type Item struct {
	PlaceID        string   `json:"place_id,omitempty"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Phone          string   `json:"phone"`
	Website        string   `json:"website"`
	MapsURI        string   `json:"maps_uri"`
	PriceRange     string   `json:"price_range"`
	TodayHours     string   `json:"today_hours"`
	FullHours      []string `json:"full_hours"`
	ServiceOptions []string `json:"service_options"`
	FamilyFriendly string   `json:"family_friendly"`
	SignatureDish  string   `json:"signature_dish,omitempty"`
	CrowdNote      string   `json:"crowd_note"`
	Rating         *float64 `json:"rating,omitempty"`
	RatingCount    *int     `json:"rating_count,omitempty"`
}

// RatingOrZero returns the rating, treating an absent value as 0.
func (it Item) RatingOrZero() float64 {
	if it.Rating == nil {
		return 0
	}
	return *it.Rating
}

// RatingCountOrZero returns the review count, treating an absent value as 0.
func (it Item) RatingCountOrZero() int {
	if it.RatingCount == nil {
		return 0
	}
	return *it.RatingCount
}

// Run is the output of one fetch: the query that produced it and the
// filtered, ranked items. It is handed by value to the render and publish
// steps.
type Run struct {
	ID         uuid.UUID `json:"id"`
	Query      string    `json:"query"`
	City       string    `json:"city"`
	MinReviews int       `json:"min_reviews"`
	Items      []Item    `json:"items"`
	Failures   []Failure `json:"failures,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	// PostID and PostLink are set once the run has been saved as a draft.
	PostID     int64     `json:"post_id,omitempty"`
	PostLink   string    `json:"post_link,omitempty"`
}

// Failure records a detail lookup that failed during a run that was
// allowed to keep partial results.
type Failure struct {
	PlaceID string `json:"place_id"`
	Error   string `json:"error"`
}

// NewRun returns an empty run with a fresh ID.
func NewRun(query, city string, minReviews int, now time.Time) Run {
	return Run{
		ID:         uuid.New(),
		Query:      query,
		City:       city,
		MinReviews: minReviews,
		Items:      []Item{},
		CreatedAt:  now,
	}
}

// Document is a rendered HTML fragment plus the title it is published under.
type Document struct {
	Title       string    `json:"title"`
	HTML        string    `json:"html"`
	GeneratedAt time.Time `json:"generated_at"`
}
