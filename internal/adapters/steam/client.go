// Package steam talks to the Steam Web API (profiles, owned games) and the
// Steam Store API (app details, search). Store calls are paced by a shared
// rate limiter; both hosts sit behind their own circuit breaker.
package steam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/okian/gametaste/pkg/logger"
	"github.com/okian/gametaste/pkg/metrics"
)

// OwnedGame is an entry of GetOwnedGames. Playtimes are in minutes.
type OwnedGame struct {
	AppID           int64  `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int64  `json:"playtime_forever"`
	Playtime2Weeks  int64  `json:"playtime_2weeks"`
}

// Price mirrors the store price_overview block; amounts are in minor units.
type Price struct {
	Currency        string `json:"currency"`
	Initial         int64  `json:"initial"`
	Final           int64  `json:"final"`
	DiscountPercent int    `json:"discount_percent"`
}

// AppDetails is the subset of the store appdetails payload we use.
type AppDetails struct {
	AppID            int64
	Name             string
	Genres           []string
	Categories       []string
	ShortDescription string
	IsFree           bool
	Price            *Price
}

// SearchItem is a store search hit.
type SearchItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Client provides access to the Steam APIs.
type Client struct {
	apiKey      string
	apiBase     string
	storeBase   string
	language    string
	country     string
	interval    time.Duration
	concurrency int
	httpClient  *http.Client
	log         logger.Logger

	limiter      *rate.Limiter
	apiBreaker   *gobreaker.CircuitBreaker[[]byte]
	storeBreaker *gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a Steam client. apiKey may be empty when only store
// endpoints are used.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		apiBase:     defaultAPIBaseURL,
		storeBase:   defaultStoreBaseURL,
		language:    defaultLanguage,
		country:     defaultCountry,
		interval:    defaultInterval,
		concurrency: defaultConcurrency,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		log:         logger.GetOrNop().Named("steam"),
	}
	for _, opt := range opts {
		opt(c)
	}

	limit := rate.Inf
	if c.interval > 0 {
		limit = rate.Every(c.interval)
	}
	c.limiter = rate.NewLimiter(limit, 1)
	c.apiBreaker = c.newBreaker("steam-api")
	c.storeBreaker = c.newBreaker("steam-store")
	return c
}

func (c *Client) newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	metrics.UpdateCircuitBreakerState(name, 0)
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return counts.ConsecutiveFailures >= 5
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn(context.Background(), "circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
			metrics.UpdateCircuitBreakerState(name, stateToFloat(to))
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			// a missing profile or app says nothing about upstream health
			var se *StatusError
			return errors.As(err, &se) && se.Code >= 400 && se.Code < 500 && se.Code != http.StatusTooManyRequests
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Concurrency returns the bound on parallel store lookups.
func (c *Client) Concurrency() int { return c.concurrency }

// ResolveVanity maps a custom profile name to a 64-bit Steam ID.
func (c *Client) ResolveVanity(ctx context.Context, vanity string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	q := url.Values{"key": {c.apiKey}, "vanityurl": {vanity}}
	body, err := c.get(ctx, c.apiBreaker, "resolve_vanity", c.apiBase+"/ISteamUser/ResolveVanityURL/v1/?"+q.Encode())
	if err != nil {
		return "", err
	}

	var payload struct {
		Response struct {
			SteamID string `json:"steamid"`
			Success int    `json:"success"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: decode resolve_vanity: %w", ErrUpstream, err)
	}
	if payload.Response.Success != 1 || payload.Response.SteamID == "" {
		return "", fmt.Errorf("%w: %q", ErrProfileNotFound, vanity)
	}
	return payload.Response.SteamID, nil
}

// Resolve returns the 64-bit Steam ID for ref.
func (c *Client) Resolve(ctx context.Context, ref ProfileRef) (string, error) {
	switch ref.Kind {
	case KindID64:
		return ref.Value, nil
	case KindVanity:
		return c.ResolveVanity(ctx, ref.Value)
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidProfile, ref.Kind)
}

// OwnedGames lists the owned games, free titles that were played included,
// ordered by playtime desc then app ID asc. An empty list means the profile
// or its game details are private.
func (c *Client) OwnedGames(ctx context.Context, steamID string) ([]OwnedGame, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	q := url.Values{
		"key":                       {c.apiKey},
		"steamid":                   {steamID},
		"include_appinfo":           {"true"},
		"include_played_free_games": {"true"},
		"format":                    {"json"},
	}
	body, err := c.get(ctx, c.apiBreaker, "owned_games", c.apiBase+"/IPlayerService/GetOwnedGames/v1/?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Response struct {
			GameCount int         `json:"game_count"`
			Games     []OwnedGame `json:"games"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode owned_games: %w", ErrUpstream, err)
	}
	games := payload.Response.Games
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPrivateProfile, steamID)
	}
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].PlaytimeForever != games[j].PlaytimeForever {
			return games[i].PlaytimeForever > games[j].PlaytimeForever
		}
		return games[i].AppID < games[j].AppID
	})
	return games, nil
}

// AppDetails fetches genres, categories, description and price for an app.
func (c *Client) AppDetails(ctx context.Context, appID int64) (*AppDetails, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	id := strconv.FormatInt(appID, 10)
	q := url.Values{"appids": {id}, "l": {c.language}, "cc": {c.country}}
	body, err := c.get(ctx, c.storeBreaker, "app_details", c.storeBase+"/api/appdetails?"+q.Encode())
	if err != nil {
		return nil, err
	}

	type described struct {
		Description string `json:"description"`
	}
	var payload map[string]struct {
		Success bool `json:"success"`
		Data    struct {
			Name             string      `json:"name"`
			IsFree           bool        `json:"is_free"`
			ShortDescription string      `json:"short_description"`
			Genres           []described `json:"genres"`
			Categories       []described `json:"categories"`
			PriceOverview    *Price      `json:"price_overview"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode app_details: %w", ErrUpstream, err)
	}
	entry, ok := payload[id]
	if !ok || !entry.Success {
		return nil, fmt.Errorf("%w: %d", ErrAppNotFound, appID)
	}

	d := &AppDetails{
		AppID:            appID,
		Name:             entry.Data.Name,
		ShortDescription: entry.Data.ShortDescription,
		IsFree:           entry.Data.IsFree,
		Price:            entry.Data.PriceOverview,
		Genres:           make([]string, 0, len(entry.Data.Genres)),
		Categories:       make([]string, 0, len(entry.Data.Categories)),
	}
	for _, g := range entry.Data.Genres {
		d.Genres = append(d.Genres, g.Description)
	}
	for _, cat := range entry.Data.Categories {
		d.Categories = append(d.Categories, cat.Description)
	}
	return d, nil
}

// SearchStore runs a store text search.
func (c *Client) SearchStore(ctx context.Context, term string) ([]SearchItem, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	q := url.Values{"term": {term}, "l": {c.language}, "cc": {c.country}}
	body, err := c.get(ctx, c.storeBreaker, "store_search", c.storeBase+"/api/storesearch/?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Total int          `json:"total"`
		Items []SearchItem `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode store_search: %w", ErrUpstream, err)
	}
	return payload.Items, nil
}

// get runs a GET through cb. endpoint names the call in logs and metrics;
// the URL is never logged because it may carry the API key.
func (c *Client) get(ctx context.Context, cb *gobreaker.CircuitBreaker[[]byte], endpoint, u string) ([]byte, error) {
	body, err := cb.Execute(func() ([]byte, error) {
		return c.fetch(ctx, endpoint, u)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordUpstreamRequest(endpoint, "rejected")
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, endpoint, err)
	}
	return body, err
}

func (c *Client) fetch(ctx context.Context, endpoint, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordUpstreamLatency(endpoint, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RecordUpstreamRequest(endpoint, strconv.Itoa(resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUpstream, endpoint, err)
	}
	return body, nil
}
