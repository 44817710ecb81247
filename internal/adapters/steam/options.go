package steam

import (
	"net/http"
	"strings"
	"time"

	"github.com/okian/gametaste/pkg/logger"
)

const (
	defaultAPIBaseURL   = "https://api.steampowered.com"
	defaultStoreBaseURL = "https://store.steampowered.com"
	defaultLanguage     = "english"
	defaultCountry      = "US"
	defaultTimeout      = 10 * time.Second
	defaultInterval     = 300 * time.Millisecond
	defaultConcurrency  = 4
	maxBodyBytes        = 8 << 20
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAPIBaseURL sets the Steam Web API root.
func WithAPIBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimSpace(u); u != "" {
			c.apiBase = strings.TrimRight(u, "/")
		}
	}
}

// WithStoreBaseURL sets the Steam Store root.
func WithStoreBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimSpace(u); u != "" {
			c.storeBase = strings.TrimRight(u, "/")
		}
	}
}

// WithLocale sets the store language and country code.
func WithLocale(language, country string) Option {
	return func(c *Client) {
		if language != "" {
			c.language = language
		}
		if country != "" {
			c.country = country
		}
	}
}

// WithStoreInterval sets the minimum spacing between store requests.
// Zero disables pacing.
func WithStoreInterval(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.interval = d
		}
	}
}

// WithConcurrency bounds parallel store lookups.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
