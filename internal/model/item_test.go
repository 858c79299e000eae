package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_ZeroDefaults(t *testing.T) {
	var it Item
	assert.InDelta(t, 0.0, it.RatingOrZero(), 0.0001)
	assert.Equal(t, 0, it.RatingCountOrZero())

	r, c := 4.6, 310
	it = Item{Rating: &r, RatingCount: &c}
	assert.InDelta(t, 4.6, it.RatingOrZero(), 0.0001)
	assert.Equal(t, 310, it.RatingCountOrZero())
}

func TestItem_JSONOmitsAbsentRating(t *testing.T) {
	data, err := json.Marshal(Item{Name: "Shawarma House"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "rating")
	assert.Contains(t, string(data), `"maps_uri":""`)
}

func TestNewRun(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	a := NewRun("burger riyadh", "riyadh", 200, now)
	b := NewRun("burger riyadh", "riyadh", 200, now)

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotNil(t, a.Items)
	assert.Equal(t, now, a.CreatedAt)
	assert.Equal(t, 200, a.MinReviews)
}
