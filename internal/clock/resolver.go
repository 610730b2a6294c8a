// Package clock resolves "what time is it in X" queries. Known location
// names are answered from a static timezone table with zero latency;
// unmapped ones fall back to a remote time-by-coordinates API behind a
// short-lived cache.
package clock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/waker/internal/domain"
	"github.com/hammamikhairi/waker/internal/logger"
)

// DefaultHomeZone is the timezone the engine's own wall clock runs in.
const DefaultHomeZone = "Asia/Ho_Chi_Minh"

// defaultBaseURL is the TimeZoneDB-compatible endpoint for the
// time-by-position fallback.
const defaultBaseURL = "https://api.timezonedb.com/v2.1"

// EnvAPIKey names the env var holding the remote time API key.
const EnvAPIKey = "TIMEZONEDB_API_KEY"

// Source identifies how a result was produced.
type Source int

const (
	// SourceTable means the static timezone table answered locally.
	SourceTable Source = iota
	// SourceCache means a previous API result was still fresh.
	SourceCache
	// SourceAPI means the remote API was queried.
	SourceAPI
)

// String returns a human-readable source name.
func (s Source) String() string {
	switch s {
	case SourceTable:
		return "table"
	case SourceCache:
		return "cache"
	case SourceAPI:
		return "api"
	default:
		return "unknown"
	}
}

// Result is a resolved time for a location.
type Result struct {
	Time   time.Time
	Zone   string
	Source Source
}

// Doer is the subset of http.Client the resolver needs. Tests
// substitute a fake.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures the resolver.
type Option func(*Resolver)

// WithHTTPClient sets the HTTP client for the API fallback.
func WithHTTPClient(d Doer) Option {
	return func(r *Resolver) {
		r.httpClient = d
	}
}

// WithBaseURL overrides the remote API base URL.
func WithBaseURL(u string) Option {
	return func(r *Resolver) {
		r.baseURL = u
	}
}

// WithClock sets the time source. Tests substitute a fake clock.
func WithClock(c domain.Clock) Option {
	return func(r *Resolver) {
		r.clock = c
	}
}

// WithCacheTTL sets how long a fetched API result stays fresh.
func WithCacheTTL(d time.Duration) Option {
	return func(r *Resolver) {
		r.cacheTTL = d
	}
}

// cacheEntry is one cached API result, keyed by rounded coordinates.
type cacheEntry struct {
	result    Result
	fetchedAt time.Time
}

// Resolver answers time queries. Safe for concurrent use.
type Resolver struct {
	home       *time.Location
	apiKey     string
	baseURL    string
	httpClient Doer
	clock      domain.Clock
	cacheTTL   time.Duration
	log        *logger.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewResolver creates a resolver with the given home timezone name.
// An empty apiKey disables the remote fallback (table lookups still work).
func NewResolver(homeZone, apiKey string, log *logger.Logger, opts ...Option) (*Resolver, error) {
	if homeZone == "" {
		homeZone = DefaultHomeZone
	}
	home, err := time.LoadLocation(homeZone)
	if err != nil {
		return nil, fmt.Errorf("loading home timezone %q: %w", homeZone, err)
	}

	r := &Resolver{
		home:       home,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		clock:      domain.SystemClock(),
		cacheTTL:   1 * time.Hour,
		cache:      make(map[string]cacheEntry),
		log:        log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Now returns the current time in the home timezone.
func (r *Resolver) Now() time.Time {
	return r.clock.Now().In(r.home)
}

// HomeZone returns the name of the configured home timezone.
func (r *Resolver) HomeZone() string {
	return r.home.String()
}

// Resolve returns the current time at the named location. The static
// timezone table is tried first; unmapped names go through the
// coordinate table and the remote API.
func (r *Resolver) Resolve(ctx context.Context, location string) (Result, error) {
	query := strings.ToLower(strings.TrimSpace(location))
	if query == "" {
		return Result{}, domain.ErrUnknownLocation
	}

	// First match in declared order wins; the table declares cities
	// before countries so "ho chi minh" beats "vietnam".
	for _, e := range zoneTable {
		if strings.Contains(query, e.name) {
			loc, err := time.LoadLocation(e.zone)
			if err != nil {
				return Result{}, fmt.Errorf("loading timezone %q: %w", e.zone, err)
			}
			r.log.Debug("resolved %q via table (%s)", location, e.zone)
			return Result{Time: r.clock.Now().In(loc), Zone: e.zone, Source: SourceTable}, nil
		}
	}

	for _, c := range coordTable {
		if strings.Contains(query, c.name) {
			return r.resolveByPosition(ctx, c.lat, c.lng)
		}
	}

	r.log.Debug("no table or coordinate entry for %q", location)
	return Result{}, domain.ErrUnknownLocation
}

// resolveByPosition answers through the cache or the remote API.
func (r *Resolver) resolveByPosition(ctx context.Context, lat, lng float64) (Result, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lng)
	now := r.clock.Now()

	r.mu.Lock()
	entry, ok := r.cache[key]
	if ok && now.Sub(entry.fetchedAt) < r.cacheTTL {
		r.mu.Unlock()
		r.log.Debug("time cache hit for %s", key)
		res := entry.result
		res.Source = SourceCache
		// Re-anchor the cached zone to the current instant.
		res.Time = now.In(res.Time.Location())
		return res, nil
	}
	// Expired entries are dropped lazily, right here.
	if ok {
		delete(r.cache, key)
	}
	r.mu.Unlock()

	if r.apiKey == "" {
		return Result{}, domain.ErrAPIKeyMissing
	}

	res, err := r.fetchByPosition(ctx, lat, lng)
	if err != nil {
		return Result{}, err
	}

	r.mu.Lock()
	r.cache[key] = cacheEntry{result: res, fetchedAt: now}
	r.mu.Unlock()

	return res, nil
}

// positionResponse mirrors the TimeZoneDB get-time-zone payload.
type positionResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ZoneName  string `json:"zoneName"`
	GmtOffset int64  `json:"gmtOffset"`
	Timestamp int64  `json:"timestamp"`
}

// fetchByPosition issues the remote get-time-zone request.
func (r *Resolver) fetchByPosition(ctx context.Context, lat, lng float64) (Result, error) {
	q := url.Values{}
	q.Set("key", r.apiKey)
	q.Set("format", "json")
	q.Set("by", "position")
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lng", fmt.Sprintf("%f", lng))
	reqURL := r.baseURL + "/get-time-zone?" + q.Encode()

	r.log.Debug("time api: fetching position %.4f,%.4f", lat, lng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("%w: status %d: %s", domain.ErrAPI, resp.StatusCode, string(body))
	}

	var pr positionResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return Result{}, fmt.Errorf("%w: decoding response: %v", domain.ErrAPI, err)
	}
	if pr.Status != "OK" {
		return Result{}, fmt.Errorf("%w: %s", domain.ErrAPI, pr.Message)
	}

	// The API's timestamp is the local unix time (UTC + gmtOffset).
	loc, err := time.LoadLocation(pr.ZoneName)
	if err != nil {
		// Unknown zone name in the local tz database; the offset
		// still gives a correct instant.
		loc = time.FixedZone(pr.ZoneName, int(pr.GmtOffset))
	}
	t := time.Unix(pr.Timestamp-pr.GmtOffset, 0).In(loc)

	r.log.Debug("time api: %s resolved to %s (%s)", pr.ZoneName, t.Format("15:04:05"), loc)
	return Result{Time: t, Zone: pr.ZoneName, Source: SourceAPI}, nil
}

// CacheLen returns the number of live cache entries.
func (r *Resolver) CacheLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}
