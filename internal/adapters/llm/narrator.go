// Package llm turns an assembled report into prose through an
// OpenAI-compatible chat completions endpoint.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/okian/gametaste/internal/domain/model"
	"github.com/okian/gametaste/pkg/logger"
	"github.com/okian/gametaste/pkg/metrics"
)

// Sentinel error kinds for this package.
var (
	ErrMisconfigured = errors.New("llm client misconfigured")
	ErrUpstream      = errors.New("llm upstream failure")
	ErrBadResponse   = errors.New("llm response malformed")
)

const (
	defaultTimeout     = 30 * time.Second
	defaultTemperature = 0.8
	maxResponseBytes   = 1 << 20
	maxErrorSnippet    = 256

	defaultSystemPrompt = `You profile players from their game library data.
You receive a JSON document with the player's playstyle labels, tier, top genres,
most played titles, library totals (owned, played and unplayed counts, games
played in the last two weeks) and a ranked list of recommended games with the
labels each shares with the player. Reply with a single JSON object with the keys:
gamer_type (a short creative title), summary (at most 20 words),
genre_analysis (3-5 sentences), play_pattern (3-5 sentences),
hidden_preference (2-3 sentences) and reasons (an array of {"id", "reason"},
one per recommendation, 1-2 sentences linking the game to the player's taste).
Do not recommend anything that is not in the list.`
)

// NarrativeInput is everything the model sees about one analysis.
type NarrativeInput struct {
	Tier      model.Tier         `json:"tier"`
	Metrics   model.Metrics      `json:"metrics"`
	Report    model.Report       `json:"report"`
	TopTitles []model.OwnedTitle `json:"top_titles"`
	Library   model.LibraryStats `json:"library"`
}

// RecommendationReason is prose for one recommendation.
type RecommendationReason struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// Narrative is the generated prose. Tier always mirrors the input.
type Narrative struct {
	GamerType        string                 `json:"gamer_type"`
	Tier             model.Tier             `json:"tier"`
	Summary          string                 `json:"summary"`
	GenreAnalysis    string                 `json:"genre_analysis"`
	PlayPattern      string                 `json:"play_pattern"`
	HiddenPreference string                 `json:"hidden_preference"`
	Reasons          []RecommendationReason `json:"reasons"`
}

// Narrator produces prose for a report.
type Narrator interface {
	Narrate(ctx context.Context, in NarrativeInput) (*Narrative, error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithSystemPrompt replaces the default instructions.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) {
		if p := strings.TrimSpace(prompt); p != "" {
			c.systemPrompt = p
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) {
		if t >= 0 && t <= 2 {
			c.temperature = t
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

// Client implements Narrator over a chat completions API.
type Client struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	temperature  float64
	httpClient   *http.Client
	log          logger.Logger
}

var _ Narrator = (*Client)(nil)

// New builds a client. All of endpoint, model and apiKey are required.
func New(endpoint, modelName, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" || strings.TrimSpace(modelName) == "" || strings.TrimSpace(apiKey) == "" {
		return nil, ErrMisconfigured
	}
	c := &Client{
		endpoint:     strings.TrimSpace(endpoint),
		model:        strings.TrimSpace(modelName),
		apiKey:       strings.TrimSpace(apiKey),
		systemPrompt: defaultSystemPrompt,
		temperature:  defaultTemperature,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		log:          logger.GetOrNop().Named("llm"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Narrate sends the input as JSON and decodes the JSON object the model returns.
func (c *Client) Narrate(ctx context.Context, in NarrativeInput) (*Narrative, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal narrative input: %w", err)
	}
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: string(payload)},
		},
		Temperature:    c.temperature,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordUpstreamLatency("llm", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamRequest("llm", "error")
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordUpstreamRequest("llm", strconv.Itoa(resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", ErrUpstream, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s: %s", ErrUpstream, resp.Status, snippet(raw, maxErrorSnippet))
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrBadResponse)
	}

	var n Narrative
	if err := json.Unmarshal([]byte(stripFence(cr.Choices[0].Message.Content)), &n); err != nil {
		return nil, fmt.Errorf("%w: content: %w", ErrBadResponse, err)
	}
	n.Tier = in.Tier
	n.Reasons = keepKnown(n.Reasons, in.Report.Recommendations)

	c.log.Debug(ctx, "narrative generated",
		logger.String("gamer_type", n.GamerType),
		logger.Int("reasons", len(n.Reasons)),
	)
	return &n, nil
}

// snippet trims an upstream body to at most n bytes without splitting a rune.
func snippet(raw []byte, n int) string {
	s := strings.TrimSpace(string(raw))
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for i := 0; i < utf8.UTFMax-1 && len(s) > 0; i++ {
		if r, size := utf8.DecodeLastRuneInString(s); r != utf8.RuneError || size != 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// keepKnown drops reasons for games that were not recommended.
func keepKnown(reasons []RecommendationReason, recs []model.ScoredRecommendation) []RecommendationReason {
	known := make(map[int64]struct{}, len(recs))
	for _, r := range recs {
		known[r.Candidate.ID] = struct{}{}
	}
	out := make([]RecommendationReason, 0, len(reasons))
	for _, r := range reasons {
		if _, ok := known[r.ID]; ok && strings.TrimSpace(r.Reason) != "" {
			out = append(out, r)
		}
	}
	return out
}
