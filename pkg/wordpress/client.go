// Package wordpress saves rendered lists as draft posts through the
// WordPress REST API.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/mahmoudd2003/list/internal/apperr"
	"github.com/mahmoudd2003/list/internal/metrics"
)

const (
	postsPath      = "/wp-json/wp/v2/posts"
	defaultTimeout = 60 * time.Second
	serviceName    = "wordpress"

	// StatusDraft is the only post status this client ever sends.
	StatusDraft = "draft"
)

// Client defines the WordPress operations used by this application.
type Client interface {
	// SaveDraft creates a draft post, or updates post postID when it is
	// non-zero. The post is always left in draft status.
	SaveDraft(ctx context.Context, title, content string, postID int64) (*Post, error)
}

// Post is the subset of the WordPress post resource we read back.
type Post struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Link   string `json:"link"`
}

// Option configures the client.
type Option func(*httpClient)

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

type httpClient struct {
	baseURL     string
	user        string
	appPassword string
	http        *http.Client
}

// NewClient creates a WordPress client authenticating with an application
// password. Missing settings are reported as configuration errors.
func NewClient(baseURL, user, appPassword string, opts ...Option) (Client, error) {
	switch {
	case strings.TrimSpace(baseURL) == "":
		return nil, apperr.NewConfigError("wordpress.base_url", "wordpress base url not configured")
	case strings.TrimSpace(user) == "":
		return nil, apperr.NewConfigError("wordpress.user", "wordpress user not configured")
	case strings.TrimSpace(appPassword) == "":
		return nil, apperr.NewConfigError("wordpress.app_password", "wordpress application password not configured")
	}

	c := &httpClient{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		user:        user,
		appPassword: appPassword,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

func (c *httpClient) SaveDraft(ctx context.Context, title, content string, postID int64) (*Post, error) {
	if postID < 0 {
		return nil, apperr.NewConfigError("post_id", "invalid post id %d", postID)
	}

	body, err := json.Marshal(postRequest{Title: title, Content: content, Status: StatusDraft})
	if err != nil {
		return nil, eris.Wrap(err, "wordpress: marshal request")
	}

	endpoint := c.baseURL + postsPath
	op := "create"
	if postID > 0 {
		endpoint += "/" + strconv.FormatInt(postID, 10)
		op = "update"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "wordpress: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.user, c.appPassword)

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RemoteDuration.WithLabelValues(serviceName, op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RemoteRequests.WithLabelValues(serviceName, op, metrics.StatusLabel(0)).Inc()
		return nil, apperr.NewTransportError(serviceName, op, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	metrics.RemoteRequests.WithLabelValues(serviceName, op, metrics.StatusLabel(resp.StatusCode)).Inc()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.NewTransportError(serviceName, op, eris.Wrap(err, "read response"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.NewStatusError(serviceName, op, resp.StatusCode, respBody)
	}

	var post Post
	if err := json.Unmarshal(respBody, &post); err != nil {
		return nil, eris.Wrap(err, "wordpress: unmarshal response")
	}
	return &post, nil
}
