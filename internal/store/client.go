package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"wayfare/pkg/schema"
)

// Config contains configuration for the itinerary store client.
type Config struct {
	// BaseURL is the itinerary store base URL
	BaseURL string

	// APIKey authenticates requests to the store
	APIKey string

	// Timeout is the HTTP request timeout
	// Default: 15 seconds
	Timeout time.Duration

	// CacheTTL bounds how long fetched itineraries and lists are served
	// from cache before a fresh read
	// Default: 5 minutes
	CacheTTL time.Duration
}

// Validate checks that required config fields are set.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("BaseURL is required")
	}
	return nil
}

// SetDefaults fills in default values for optional fields.
func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
}

// Client reads itineraries from the authoritative store. Reads for the same
// resource are coalesced so repeated UI-triggered fetches collapse into one
// network operation, and settled results are cached with a TTL. The client
// never writes: merging a confirmed change is the store's own job, triggered
// by the agent follow-up; callers re-fetch afterwards.
type Client struct {
	config    *Config
	http      *http.Client
	coalescer *Coalescer
	cache     *gocache.Cache
}

// NewClient creates a new itinerary store client.
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	config.SetDefaults()

	return &Client{
		config:    config,
		http:      &http.Client{Timeout: config.Timeout},
		coalescer: NewCoalescer(),
		cache:     gocache.New(config.CacheTTL, 2*config.CacheTTL),
	}, nil
}

// GetItinerary fetches one itinerary by ID, served from cache when fresh.
func (c *Client) GetItinerary(ctx context.Context, id string) (*schema.Itinerary, error) {
	key := ItineraryKey(id)

	if cached, ok := c.cache.Get(key); ok {
		return cached.(*schema.Itinerary), nil
	}

	return FetchOnceTyped(c.coalescer, key, func() (*schema.Itinerary, error) {
		var it schema.Itinerary
		endpoint := c.config.BaseURL + "/itineraries/" + url.PathEscape(id)
		if err := c.getJSON(ctx, endpoint, &it); err != nil {
			return nil, err
		}
		c.cache.Set(key, &it, gocache.DefaultExpiration)
		return &it, nil
	})
}

// ListItineraries fetches the itineraries visible under an owner-or-session
// auth mode (e.g. a user ID or "anon").
func (c *Client) ListItineraries(ctx context.Context, authMode string) ([]schema.Itinerary, error) {
	key := ListKey(authMode)

	if cached, ok := c.cache.Get(key); ok {
		return cached.([]schema.Itinerary), nil
	}

	return FetchOnceTyped(c.coalescer, key, func() ([]schema.Itinerary, error) {
		var list []schema.Itinerary
		endpoint := c.config.BaseURL + "/itineraries?owner=" + url.QueryEscape(authMode)
		if err := c.getJSON(ctx, endpoint, &list); err != nil {
			return nil, err
		}
		c.cache.Set(key, list, gocache.DefaultExpiration)
		return list, nil
	})
}

// RefreshItinerary drops any cached copy and re-fetches the itinerary from
// the authoritative store. Used after the backend has merged a confirmed
// change.
func (c *Client) RefreshItinerary(ctx context.Context, id string) (*schema.Itinerary, error) {
	c.InvalidateItinerary(id)
	return c.GetItinerary(ctx, id)
}

// InvalidateItinerary drops the cached copy of one itinerary.
func (c *Client) InvalidateItinerary(id string) {
	c.cache.Delete(ItineraryKey(id))
}

// InvalidateList drops the cached itinerary list for an auth mode.
func (c *Client) InvalidateList(authMode string) {
	c.cache.Delete(ListKey(authMode))
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("store request failed",
			"url", endpoint,
			"error", err.Error(),
		)
		return fmt.Errorf("store request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	slog.Debug("store request completed",
		"url", endpoint,
		"status_code", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode != http.StatusOK {
		var errBody bytes.Buffer
		if _, readErr := errBody.ReadFrom(resp.Body); readErr != nil {
			return fmt.Errorf("store returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("store returned status %d: %s", resp.StatusCode, errBody.String())
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode store response: %w", err)
	}

	return nil
}
