// Package readme resolves project README text from a raw-content host by
// probing an ordered list of candidate locations.
package readme

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	platformotel "github.com/alexisnsns/pfalexn/internal/platform/otel"
	"github.com/alexisnsns/pfalexn/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NotFoundText is shown in place of a README that no candidate served.
const NotFoundText = "No README found."

const defaultMaxBodyBytes int64 = 1 << 20

// CandidateSource lists the locations to probe for a project, in order.
type CandidateSource interface {
	Candidates(id string) []string
}

// Result is the outcome of resolving one project.
type Result struct {
	ProjectID string
	Text      string
	Found     bool
	// Source is the candidate that answered, empty when not found.
	Source string
}

// Display returns the README text, or NotFoundText when nothing resolved.
func (r Result) Display() string {
	if !r.Found {
		return NotFoundText
	}
	return r.Text
}

// Preview returns the first limit characters followed by "...", or
// NotFoundText when nothing resolved.
func (r Result) Preview(limit int) string {
	if !r.Found {
		return NotFoundText
	}
	if limit <= 0 {
		return r.Text
	}
	text := r.Text
	if utf8.RuneCountInString(text) > limit {
		text = string([]rune(text)[:limit])
	}
	return text + "..."
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client used for probes.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithLogger sets the logger used for skipped candidates.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = logging.OrNop(logger)
	}
}

// WithMaxBodyBytes bounds how much of a README body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxBodyBytes = n
		}
	}
}

// Resolver fetches README text. It never retries and never caches.
type Resolver struct {
	candidates   CandidateSource
	client       *http.Client
	logger       *zap.Logger
	tracer       trace.Tracer
	maxBodyBytes int64
}

// NewResolver builds a resolver over the given candidate source.
func NewResolver(candidates CandidateSource, opts ...Option) *Resolver {
	r := &Resolver{
		candidates:   candidates,
		client:       http.DefaultClient,
		logger:       zap.NewNop(),
		tracer:       platformotel.Tracer("github.com/alexisnsns/pfalexn/internal/services/portfolio/readme"),
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve probes the candidates for id strictly in order and returns the
// first 2xx body. Transport failures and other statuses move on to the next
// candidate; when all are exhausted the result is not found.
func (r *Resolver) Resolve(ctx context.Context, id string) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	result := Result{ProjectID: id}
	if r == nil || r.candidates == nil {
		return result
	}
	candidates := r.candidates.Candidates(id)

	ctx, span := r.tracer.Start(ctx, "readme.Resolve", trace.WithAttributes(
		attribute.String("project.id", id),
		attribute.Int("readme.candidates", len(candidates)),
	))
	defer span.End()

	for i, candidate := range candidates {
		if ctx.Err() != nil {
			break
		}
		text, err := r.fetch(ctx, candidate)
		if err != nil {
			r.logger.Debug("readme candidate skipped",
				zap.String("project", id),
				zap.Int("candidate", i),
				zap.String("url", candidate),
				zap.Error(err),
			)
			continue
		}
		result.Text = text
		result.Found = true
		result.Source = candidate
		break
	}
	span.SetAttributes(attribute.Bool("readme.found", result.Found))
	return result
}

// ResolveAll resolves every id concurrently, one goroutine per project.
// Each goroutine writes only its own slot of the returned slice. When
// onResolved is non-nil it is called as each project finishes, possibly
// from several goroutines at once.
func (r *Resolver) ResolveAll(ctx context.Context, ids []string, onResolved func(index int, result Result)) []Result {
	results := make([]Result, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			res := r.Resolve(ctx, id)
			results[i] = res
			if onResolved != nil {
				onResolved(i, res)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

type statusError struct {
	status int
}

func (e statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

func (r *Resolver) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", statusError{status: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return strings.TrimPrefix(string(body), "\ufeff"), nil
}
