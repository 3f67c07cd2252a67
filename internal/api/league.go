package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fabr-admin/internal/config"
	"fabr-admin/internal/constants"
	"fabr-admin/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// LeagueClient talks to the league REST API.
type LeagueClient struct {
	baseURL string
	client  *fasthttp.Client
	metrics *metrics.Recorder
	logger  zerolog.Logger
}

// Error is a non-success response from the league API.
type Error struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("league API %s %s: status %d", e.Method, e.Path, e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func NewLeagueClient(cfg *config.Config, rec *metrics.Recorder, logger zerolog.Logger) *LeagueClient {
	return New(cfg.LeagueAPIBaseURL, newHTTPClient(), rec, logger)
}

// newHTTPClient sizes connection timeouts for spreadsheet uploads. Per-call
// limits come from DoDeadline.
func newHTTPClient() *fasthttp.Client {
	return &fasthttp.Client{
		MaxConnsPerHost:     64,
		ReadTimeout:         constants.UploadTimeout,
		WriteTimeout:        constants.UploadTimeout,
		MaxIdleConnDuration: 1 * time.Minute,
	}
}

// New builds a client around an existing fasthttp client.
func New(baseURL string, hc *fasthttp.Client, rec *metrics.Recorder, logger zerolog.Logger) *LeagueClient {
	return &LeagueClient{
		baseURL: baseURL,
		client:  hc,
		metrics: rec,
		logger:  logger.With().Str("component", "league_api").Logger(),
	}
}

type request struct {
	endpoint    string // metrics label, e.g. "PUT /time/{id}"
	method      string
	path        string
	contentType string
	body        []byte
	// exactStatus, when set, is the only accepted status.
	exactStatus int
}

func (c *LeagueClient) do(ctx context.Context, r request) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + r.path)
	req.Header.SetMethod(r.method)
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.SetContentType(r.contentType)
		req.SetBody(r.body)
	}

	start := time.Now()
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = start.Add(constants.ExternalAPITimeout)
	}
	err := c.client.DoDeadline(req, resp, deadline)
	if err != nil {
		c.metrics.ObserveAPICall(r.endpoint, time.Since(start), err)
		c.logger.Error().Err(err).Str("endpoint", r.endpoint).Str("path", r.path).Msg("league API request failed")
		return nil, fmt.Errorf("league API %s %s: %w", r.method, r.path, err)
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)

	accepted := status >= 200 && status < 300
	if r.exactStatus != 0 {
		accepted = status == r.exactStatus
	}
	if !accepted {
		apiErr := &Error{Method: r.method, Path: r.path, Status: status, Body: truncate(string(body), 512)}
		c.metrics.ObserveAPICall(r.endpoint, time.Since(start), apiErr)
		c.logger.Error().
			Str("endpoint", r.endpoint).
			Str("path", r.path).
			Int("status", status).
			Str("body", apiErr.Body).
			Msg("league API returned an error")
		return nil, apiErr
	}

	c.metrics.ObserveAPICall(r.endpoint, time.Since(start), nil)
	c.logger.Debug().
		Str("endpoint", r.endpoint).
		Str("path", r.path).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("league API request completed")
	return body, nil
}

// doJSON sends in as JSON (when non-nil) and decodes the response into T.
// An empty or null body decodes to the zero T.
func doJSON[T any](ctx context.Context, c *LeagueClient, endpoint, method, path string, in any) (T, error) {
	var out T

	r := request{endpoint: endpoint, method: method, path: path}
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return out, fmt.Errorf("failed to encode %s payload: %w", endpoint, err)
		}
		r.body = payload
		r.contentType = "application/json"
	}

	body, err := c.do(ctx, r)
	if err != nil {
		return out, err
	}
	if err := decode(body, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return out, nil
}

// decode leaves out untouched for an empty or null body.
func decode(body []byte, out any) error {
	if isEmptyJSON(body) {
		return nil
	}
	return json.Unmarshal(body, out)
}

func isEmptyJSON(body []byte) bool {
	body = bytes.TrimSpace(body)
	return len(body) == 0 || bytes.Equal(body, []byte("null"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
