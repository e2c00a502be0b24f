// Package supabase implements the site backend against a hosted Supabase
// project: GoTrue for auth, PostgREST for the posts table, and Storage for
// uploaded images.
package supabase

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

	platformotel "github.com/alexisnsns/pfalexn/internal/platform/otel"
	"github.com/alexisnsns/pfalexn/internal/services/backend"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBucket = "images"
	postsTable    = "posts"
	maxErrorBody  = 64 << 10
)

// Config configures a Supabase client.
type Config struct {
	URL        string
	AnonKey    string
	Bucket     string
	HTTPClient *http.Client
}

// Client talks to one Supabase project.
type Client struct {
	baseURL    *url.URL
	anonKey    string
	bucket     string
	httpClient *http.Client
	tracer     trace.Tracer
}

var _ backend.Backend = (*Client)(nil)

// New validates cfg and builds a client.
func New(cfg Config) (*Client, error) {
	rawURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if rawURL == "" {
		return nil, errors.New("supabase url is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("supabase url must be absolute http(s), got %q", cfg.URL)
	}
	anonKey := strings.TrimSpace(cfg.AnonKey)
	if anonKey == "" {
		return nil, errors.New("supabase anon key is required")
	}
	bucket := strings.Trim(strings.TrimSpace(cfg.Bucket), "/")
	if bucket == "" {
		bucket = defaultBucket
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    parsed,
		anonKey:    anonKey,
		bucket:     bucket,
		httpClient: httpClient,
		tracer:     platformotel.Tracer("github.com/alexisnsns/pfalexn/internal/services/backend/supabase"),
	}, nil
}

// Close is a no-op; the client holds no resources of its own.
func (c *Client) Close() error {
	return nil
}

// StatusError is a non-2xx response the client could not map to a sentinel.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("supabase: status %d", e.Status)
	}
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Message)
}

type request struct {
	method      string
	path        string
	query       url.Values
	token       string
	body        any
	rawBody     io.Reader
	contentType string
	prefer      string
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends req and decodes a 2xx JSON response into out when out is non-nil.
// The bearer falls back to the anon key so anonymous reads pass row policies.
func (c *Client) do(ctx context.Context, spanName string, req request, out any) error {
	ctx, span := c.tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.request.method", req.method)))
	defer span.End()

	var body io.Reader = req.rawBody
	contentType := req.contentType
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", spanName, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.endpoint(req.path, req.query), body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", spanName, err)
	}
	token := strings.TrimSpace(req.token)
	if token == "" {
		token = c.anonKey
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.prefer != "" {
		httpReq.Header.Set("Prefer", req.prefer)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return fmt.Errorf("%s: %w", spanName, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", spanName, err)
	}
	return nil
}

// errorBody covers the error shapes returned by GoTrue, PostgREST, and Storage.
type errorBody struct {
	Error            any    `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (b errorBody) text() string {
	for _, candidate := range []string{b.ErrorDescription, b.Msg, b.Message} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	if s, ok := b.Error.(string); ok {
		return s
	}
	return ""
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var parsed errorBody
	message := ""
	if json.Unmarshal(raw, &parsed) == nil {
		message = parsed.text()
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	statusErr := &StatusError{Status: resp.StatusCode, Message: message}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", backend.ErrUnauthenticated, statusErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", backend.ErrNotFound, statusErr)
	}
	return statusErr
}
