package google

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/mahmoudd2003/list/internal/apperr"
	"github.com/mahmoudd2003/list/internal/metrics"
)

const (
	defaultBaseURL  = "https://places.googleapis.com/v1"
	defaultLanguage = "ar"
	defaultTimeout  = 30 * time.Second

	// MaxResultCount is the API's hard cap on results per text search.
	MaxResultCount = 20

	searchFieldMask = "places.id,places.displayName,places.rating,places.userRatingCount"
	serviceName     = "places"
)

// DetailFields is the fixed field mask sent with every details request.
var DetailFields = []string{
	"id",
	"displayName",
	"formattedAddress",
	"nationalPhoneNumber",
	"websiteUri",
	"googleMapsUri",
	"priceLevel",
	"rating",
	"userRatingCount",
	"currentOpeningHours",
	"regularOpeningHours",
	"types",
	"delivery",
	"takeout",
	"dineIn",
}

// Client performs Google Places API (New) operations.
type Client interface {
	SearchText(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	PlaceDetails(ctx context.Context, placeID, regionCode string) (*PlaceDetail, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLanguage overrides the response language (default "ar").
func WithLanguage(code string) Option {
	return func(c *httpClient) {
		if code != "" {
			c.language = code
		}
	}
}

// WithRateLimit throttles outgoing requests to rps. Zero disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	language string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a Google Places API client. An empty API key is a
// configuration error.
func NewClient(apiKey string, opts ...Option) (Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperr.NewConfigError("places.api_key", "google api key not configured")
	}
	c := &httpClient{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: defaultLanguage,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SearchText runs a Text Search restricted to restaurants around a circle.
func (c *httpClient) SearchText(ctx context.Context, sr SearchRequest) (*SearchResponse, error) {
	count := sr.MaxResults
	if count <= 0 || count > MaxResultCount {
		count = MaxResultCount
	}

	body, err := json.Marshal(textSearchRequest{
		TextQuery:      sr.Query,
		LanguageCode:   c.language,
		RegionCode:     sr.RegionCode,
		MaxResultCount: count,
		LocationBias: locationBias{Circle: circle{
			Center: sr.Center,
			Radius: sr.RadiusMeters,
		}},
		IncludedType: "restaurant",
	})
	if err != nil {
		return nil, eris.Wrap(err, "google: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-FieldMask", searchFieldMask)

	var result SearchResponse
	if err := c.do(ctx, req, "search", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PlaceDetails fetches the fixed detail field set for one place.
func (c *httpClient) PlaceDetails(ctx context.Context, placeID, regionCode string) (*PlaceDetail, error) {
	if placeID == "" {
		return nil, eris.New("google: empty place id")
	}

	params := url.Values{"languageCode": {c.language}}
	if regionCode != "" {
		params.Set("regionCode", regionCode)
	}
	reqURL := c.baseURL + "/places/" + url.PathEscape(placeID) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}
	req.Header.Set("X-Goog-FieldMask", strings.Join(DetailFields, ","))

	var result PlaceDetail
	if err := c.do(ctx, req, "details", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do sends req once and decodes a 200 response into out. Failures are
// reported as apperr.RemoteError; nothing is retried.
func (c *httpClient) do(ctx context.Context, req *http.Request, op string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "google: rate limit")
		}
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RemoteDuration.WithLabelValues(serviceName, op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RemoteRequests.WithLabelValues(serviceName, op, metrics.StatusLabel(0)).Inc()
		return apperr.NewTransportError(serviceName, op, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	metrics.RemoteRequests.WithLabelValues(serviceName, op, metrics.StatusLabel(resp.StatusCode)).Inc()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.NewTransportError(serviceName, op, eris.Wrap(err, "read response"))
	}

	if resp.StatusCode != http.StatusOK {
		return apperr.NewStatusError(serviceName, op, resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrapf(err, "google: unmarshal %s response", op)
	}
	return nil
}
