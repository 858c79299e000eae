package google

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SearchRequest describes one text search around a circle.
type SearchRequest struct {
	Query        string
	RegionCode   string
	Center       LatLng
	RadiusMeters float64
	MaxResults   int
}

type textSearchRequest struct {
	TextQuery      string       `json:"textQuery"`
	LanguageCode   string       `json:"languageCode"`
	RegionCode     string       `json:"regionCode,omitempty"`
	MaxResultCount int          `json:"maxResultCount"`
	LocationBias   locationBias `json:"locationBias"`
	IncludedType   string       `json:"includedType"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

// SearchResponse is the response from Places Text Search.
type SearchResponse struct {
	Places []PlaceRef `json:"places"`
}

// PlaceRef is a lightweight search hit, only good for a detail lookup.
type PlaceRef struct {
	ID              string       `json:"id,omitempty"`
	Name            string       `json:"name,omitempty"`
	DisplayName     *DisplayName `json:"displayName,omitempty"`
	Rating          *float64     `json:"rating,omitempty"`
	UserRatingCount *Count       `json:"userRatingCount,omitempty"`
}

// PlaceID returns the usable identifier of the hit: the id field, or the
// trailing segment of the "places/<id>" resource name.
func (p PlaceRef) PlaceID() string {
	if id := strings.TrimSpace(p.ID); id != "" {
		return id
	}
	if name := strings.TrimSpace(p.Name); name != "" {
		id := strings.TrimPrefix(name, "places/")
		if id != "" && !strings.Contains(id, "/") {
			return id
		}
	}
	return ""
}

// DisplayName holds a localized name.
type DisplayName struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// OpeningHours holds the subset of opening-hours data the pipeline reads.
type OpeningHours struct {
	OpenNow             *bool    `json:"openNow,omitempty"`
	WeekdayDescriptions []string `json:"weekdayDescriptions,omitempty"`
}

// PlaceDetail is the full attribute set returned by a details request.
// Every field is optional and left exactly as the API sent it.
type PlaceDetail struct {
	ID                  string        `json:"id,omitempty"`
	DisplayName         *DisplayName  `json:"displayName,omitempty"`
	FormattedAddress    string        `json:"formattedAddress,omitempty"`
	NationalPhoneNumber string        `json:"nationalPhoneNumber,omitempty"`
	WebsiteURI          string        `json:"websiteUri,omitempty"`
	GoogleMapsURI       string        `json:"googleMapsUri,omitempty"`
	PriceLevel          *PriceLevel   `json:"priceLevel,omitempty"`
	Rating              *float64      `json:"rating,omitempty"`
	UserRatingCount     *Count        `json:"userRatingCount,omitempty"`
	CurrentOpeningHours *OpeningHours `json:"currentOpeningHours,omitempty"`
	RegularOpeningHours *OpeningHours `json:"regularOpeningHours,omitempty"`
	Types               []string      `json:"types,omitempty"`
	Delivery            *bool         `json:"delivery,omitempty"`
	Takeout             *bool         `json:"takeout,omitempty"`
	DineIn              *bool         `json:"dineIn,omitempty"`
}

// Name returns the display name text, or "" when absent.
func (d *PlaceDetail) Name() string {
	if d.DisplayName == nil {
		return ""
	}
	return d.DisplayName.Text
}

// WeekdayDescriptions returns the regular weekly hours, falling back to the
// current-period hours when no regular schedule was sent.
func (d *PlaceDetail) WeekdayDescriptions() []string {
	if d.RegularOpeningHours != nil && len(d.RegularOpeningHours.WeekdayDescriptions) > 0 {
		return d.RegularOpeningHours.WeekdayDescriptions
	}
	if d.CurrentOpeningHours != nil {
		return d.CurrentOpeningHours.WeekdayDescriptions
	}
	return nil
}

// PriceLevel is a price tier code. The API sends enum strings; integer
// codes are accepted too.
type PriceLevel int

var priceLevelNames = map[string]int{
	"PRICE_LEVEL_FREE":           0,
	"PRICE_LEVEL_INEXPENSIVE":    1,
	"PRICE_LEVEL_MODERATE":       2,
	"PRICE_LEVEL_EXPENSIVE":      3,
	"PRICE_LEVEL_VERY_EXPENSIVE": 4,
}

// Tier returns the tier as *int, or nil when p is nil.
func (p *PriceLevel) Tier() *int {
	if p == nil {
		return nil
	}
	v := int(*p)
	return &v
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PriceLevel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "google: decode price level")
		}
		if v, ok := priceLevelNames[s]; ok {
			*p = PriceLevel(v)
			return nil
		}
		if v, err := strconv.Atoi(s); err == nil {
			*p = PriceLevel(v)
			return nil
		}
		// PRICE_LEVEL_UNSPECIFIED and unknown enum values carry no tier.
		*p = 0
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return eris.Wrap(err, "google: decode price level")
	}
	*p = PriceLevel(v)
	return nil
}

// Count is a review count. Numbers and numeric strings ("1,234") are both
// accepted; anything unparseable decodes as 0.
type Count int

// Int returns the count as *int, or nil when c is nil.
func (c *Count) Int() *int {
	if c == nil {
		return nil
	}
	v := int(*c)
	return &v
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "google: decode rating count")
		}
		v, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
		if err != nil {
			v = 0
		}
		*c = Count(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return eris.Wrap(err, "google: decode rating count")
	}
	*c = Count(int(f))
	return nil
}
