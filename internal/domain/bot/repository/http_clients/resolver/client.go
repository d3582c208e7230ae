// Package resolver is the HTTP client of the external link resolution service
package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/linkbot/config"
	"github.com/Conte777/linkbot/internal/domain/bot/deps"
	"github.com/Conte777/linkbot/internal/domain/bot/entities"
	boterrors "github.com/Conte777/linkbot/internal/domain/bot/errors"
	"github.com/Conte777/linkbot/internal/infrastructure/metrics"
)

// maxBodySize caps how much of a response is read
const maxBodySize = 1 << 20

// Client implements deps.LinkResolver
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// resolveResponse is the JSON contract of the resolution service
type resolveResponse struct {
	Success       any    `json:"success"`
	Message       any    `json:"message"`
	DownloadLink  string `json:"download_link"`
	StreamingLink string `json:"streaming_link"`
}

// ok reports whether the success indicator is truthy
func (r *resolveResponse) ok() bool {
	switch v := r.Success.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		v = strings.ToLower(strings.TrimSpace(v))
		return v != "" && v != "false" && v != "0"
	default:
		return false
	}
}

// message returns the provider message, "" when absent
func (r *resolveResponse) message() string {
	switch v := r.Message.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

// NewClient creates a resolver client
func NewClient(cfg *config.ResolverConfig, m *metrics.Metrics, logger zerolog.Logger) deps.LinkResolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger.Info().
		Str("base_url", cfg.BaseURL).
		Dur("timeout", timeout).
		Msg("Resolver client initialized")

	return &Client{
		baseURL:    cfg.BaseURL,
		timeout:    timeout,
		httpClient: &http.Client{},
		metrics:    m,
		logger:     logger,
	}
}

// Validate accepts only http(s) links
func (c *Client) Validate(rawLink string) error {
	link := strings.ToLower(strings.TrimSpace(rawLink))
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return nil
	}
	return boterrors.ErrInvalidLink
}

// Resolve calls GET <base>?url=<link> and classifies the response.
// It never returns nil.
func (c *Client) Resolve(ctx context.Context, rawLink string) *entities.ResolutionResult {
	started := time.Now()
	result := c.resolve(ctx, strings.TrimSpace(rawLink))
	c.metrics.Resolution(result.Kind.String(), time.Since(started).Seconds())

	event := c.logger.Info()
	if !result.OK() {
		event = c.logger.Warn()
	}
	event.
		Str("result", result.Kind.String()).
		Int("status_code", result.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("Link resolution completed")

	return result
}

func (c *Client) resolve(ctx context.Context, link string) *entities.ResolutionResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(link), nil)
	if err != nil {
		return transportError(0, fmt.Sprintf("failed to create request: %v", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return transportError(0, fmt.Sprintf("timed out after %s", c.timeout))
		}
		return transportError(0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return transportError(resp.StatusCode, fmt.Sprintf("failed to read body: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return transportError(resp.StatusCode, string(body))
	}

	var payload resolveResponse
	if !isJSONObject(body) || json.Unmarshal(body, &payload) != nil {
		res := transportError(resp.StatusCode, string(body))
		res.Malformed = true
		return res
	}

	if !payload.ok() {
		msg := payload.message()
		if msg == "" {
			msg = "Unknown error."
		}
		return &entities.ResolutionResult{Kind: entities.ResolutionAPIError, Message: msg}
	}

	return &entities.ResolutionResult{
		Kind:          entities.ResolutionSuccess,
		DownloadLink:  strings.TrimSpace(payload.DownloadLink),
		StreamingLink: strings.TrimSpace(payload.StreamingLink),
	}
}

// requestURL appends url=<link> to the base, keeping any query the base already has
func (c *Client) requestURL(link string) string {
	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
		if strings.HasSuffix(c.baseURL, "?") || strings.HasSuffix(c.baseURL, "&") {
			sep = ""
		}
	}
	return c.baseURL + sep + "url=" + url.QueryEscape(link)
}

func isJSONObject(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func transportError(status int, body string) *entities.ResolutionResult {
	return &entities.ResolutionResult{
		Kind:       entities.ResolutionTransportError,
		StatusCode: status,
		RawBody:    body,
	}
}
