package qmk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/keydraw/keydraw/pkg/httputil"
)

// DefaultBaseURL is the QMK keyboard metadata API.
const DefaultBaseURL = "https://keyboards.qmk.fm"

// DefaultCacheTTL is how long fetched info.json documents stay fresh.
// Physical layouts change rarely; a day avoids re-fetching per render.
const DefaultCacheTTL = 24 * time.Hour

// Client fetches keyboard metadata from the QMK API with file-backed
// caching and retry on transient failures.
//
// Safe for concurrent use as long as the underlying cache directory is
// not shared with concurrent writers for the same keyboard.
type Client struct {
	http    *http.Client
	cache   *httputil.Cache
	baseURL string
}

// NewClient creates a client using the given cache. A nil cache
// disables caching.
func NewClient(cache *httputil.Cache) *Client {
	if cache != nil {
		cache = cache.Namespace("qmk:")
	}
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		cache:   cache,
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL overrides the API endpoint; used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// apiResponse is the envelope returned by the keyboards API: the
// requested keyboard keyed by its own name.
type apiResponse struct {
	Keyboards map[string]Info `json:"keyboards"`
}

// FetchInfo retrieves the info.json document for a keyboard (e.g.
// "planck/rev6"). Cached responses are used unless refresh is true or
// the entry expired.
//
// Returns [ErrNotFound] for unknown keyboards and [ErrNetwork] for
// transport failures; 5xx responses are retried with backoff.
func (c *Client) FetchInfo(ctx context.Context, keyboard string, refresh bool) (*Info, error) {
	if keyboard == "" {
		return nil, fmt.Errorf("%w: empty keyboard name", ErrNotFound)
	}

	var info Info
	if c.cache != nil && !refresh {
		if ok, _ := c.cache.Get(keyboard, &info); ok {
			return &info, nil
		}
	}

	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.fetch(ctx, keyboard, &info)
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(keyboard, &info)
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, keyboard string, info *Info) error {
	// Keyboard names contain slashes ("planck/rev6") that must survive
	// as path segments, so only the segments themselves are escaped.
	segments := strings.Split(keyboard, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	u := fmt.Sprintf("%s/v1/keyboards/%s/info.json", c.baseURL, strings.Join(segments, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: keyboard %q", ErrNotFound, keyboard)
	case resp.StatusCode >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode info.json: %w", err)
	}
	kb, ok := envelope.Keyboards[keyboard]
	if !ok {
		return fmt.Errorf("%w: keyboard %q missing from API response", ErrNotFound, keyboard)
	}
	*info = kb
	return nil
}
