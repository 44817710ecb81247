package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	app "github.com/okian/gametaste/internal/app"
)

const defaultRemoteTimeout = 90 * time.Second

func newRemoteCommand(opts *options) *cobra.Command {
	var (
		baseURL string
		limit   int
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "remote <steam-id|vanity|profile-url>",
		Short: "Ask a running server to analyze a Steam profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc := newRemoteClient(baseURL, timeout)
			if err := rc.checkHealth(cmd.Context()); err != nil {
				return err
			}
			a, err := rc.profileAnalysis(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return writeAnalysis(cmd, opts.format, a)
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:9080", "Base URL of the server")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Recommendation count (5-10, default from server)")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultRemoteTimeout, "HTTP request timeout")
	return cmd
}

// remoteClient talks to the HTTP API of a running server.
type remoteClient struct {
	baseURL string
	client  *http.Client
}

func newRemoteClient(baseURL string, timeout time.Duration) *remoteClient {
	return &remoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *remoteClient) checkHealth(ctx context.Context) error {
	resp, err := c.get(ctx, c.baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("server health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server health check failed: status %d", resp.StatusCode)
	}
	return nil
}

func (c *remoteClient) profileAnalysis(ctx context.Context, profile string, limit int) (*app.Analysis, error) {
	u := c.baseURL + "/profiles/" + url.PathEscape(profile) + "/analysis"
	if limit > 0 {
		u += "?limit=" + strconv.Itoa(limit)
	}
	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var re remoteError
		if json.Unmarshal(body, &re) == nil && re.Code != "" {
			return nil, fmt.Errorf("server returned %d %s: %s", resp.StatusCode, re.Code, re.Message)
		}
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var a app.Analysis
	if err := json.Unmarshal(body, &a); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &a, nil
}

func (c *remoteClient) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.client.Do(req)
}
