// Package rest is a catalog store backed by a PostgREST-style HTTP data
// API. Filterable queries map to table endpoints; ranked search calls an
// optional RPC function.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pocketnavi/pocketnavi/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const tracerName = "github.com/pocketnavi/pocketnavi/internal/db/rest"

// Config holds the connection settings of the data API.
type Config struct {
	URL    string
	APIKey string
	// SearchRPC names the ranked search function; empty disables ranked search.
	SearchRPC string
	// Timeout bounds one HTTP exchange. Zero leaves it to the caller's context.
	Timeout    time.Duration
	RatePerSec float64 // 0 = unlimited
	Burst      int
	// MaxFailures consecutive failures open the breaker for OpenTimeout.
	MaxFailures uint32
	OpenTimeout time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Store implements db.Store over HTTP.
type Store struct {
	base    *url.URL
	apiKey  string
	rpc     string
	timeout time.Duration
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a REST store. No request is made until first use.
func New(cfg *Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("url scheme must be http or https, got %q", base.Scheme)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "rest-store",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// cancellations belong to the caller, not the API
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Store{
		base:    base,
		apiKey:  cfg.APIKey,
		rpc:     cfg.SearchRPC,
		timeout: cfg.Timeout,
		client:  client,
		breaker: breaker,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}, nil
}

// Ping reads one building id.
func (s *Store) Ping(ctx context.Context) error {
	q := db.From(db.TableBuildings).Select(db.ColBuildingID).Limit(1).MustBuild()
	if _, err := s.query(ctx, db.OpPing, q); err != nil {
		return err
	}
	return nil
}

// Close releases idle connections.
func (s *Store) Close() {
	s.client.CloseIdleConnections()
}

// WaitForReady polls Ping until the API responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := s.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for data API: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// Query runs GET /rest/v1/{table} with the filter encoded as parameters.
func (s *Store) Query(ctx context.Context, q *db.RecordQuery) ([]db.Row, error) {
	return s.query(ctx, db.OpQuery, q)
}

func (s *Store) query(ctx context.Context, op string, q *db.RecordQuery) ([]db.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "rest.query", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("db.table", q.Table),
		attribute.String("db.filter", q.Filter.String()),
	)

	endpoint := s.endpoint("rest", "v1", q.Table)
	endpoint.RawQuery = encodeQuery(q).Encode()

	resp, err := s.exchange(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &db.Error{Op: op, Err: err}
	}

	rows, err := decodeRows(resp.body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &db.Error{Op: op, Err: err}
	}
	span.SetAttributes(attribute.Int("db.rows", len(rows)))
	return rows, nil
}

// SupportsRankedSearch reports whether a search RPC is configured.
func (s *Store) SupportsRankedSearch(_ context.Context) bool {
	return s.rpc != ""
}

type rpcRequest struct {
	Query        string     `json:"query"`
	Terms        [][]string `json:"terms,omitempty"`
	ResultLimit  int        `json:"result_limit"`
	ResultOffset int        `json:"result_offset"`
}

// SearchRanked calls POST /rest/v1/rpc/{fn}. Each returned row carries a
// "rank" column; the total comes from Content-Range.
func (s *Store) SearchRanked(ctx context.Context, q *db.TextQuery) (*db.RankedResult, error) {
	if s.rpc == "" {
		return nil, &db.Error{Op: db.OpSearchRanked, Err: db.ErrUnsupported}
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "rest.search_ranked", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("db.rpc", s.rpc))

	body, err := json.Marshal(rpcRequest{
		Query:        q.Query,
		Terms:        q.Terms,
		ResultLimit:  q.Limit,
		ResultOffset: q.Offset,
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpSearchRanked, Err: err}
	}

	endpoint := s.endpoint("rest", "v1", "rpc", s.rpc)
	resp, err := s.exchange(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "count=exact")
		return req, nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &db.Error{Op: db.OpSearchRanked, Err: err}
	}

	rows, err := decodeRows(resp.body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &db.Error{Op: db.OpSearchRanked, Err: err}
	}

	total, ok := parseContentRange(resp.header.Get("Content-Range"))
	if !ok {
		total = q.Offset + len(rows)
	}

	out := &db.RankedResult{Total: total, Rows: make([]db.RankedRow, 0, len(rows))}
	for _, row := range rows {
		rank := 0.0
		if f := row.Float(db.ColRank); f != nil {
			rank = min(max(*f, 0), 1)
		}
		delete(row, db.ColRank)
		out.Rows = append(out.Rows, db.RankedRow{Row: row, Rank: rank})
	}
	return out, nil
}

func (s *Store) endpoint(segments ...string) *url.URL {
	u := *s.base
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(escaped, "/")
	return &u
}

type response struct {
	header http.Header
	body   []byte
}

// exchange rate-limits, breaks and performs one request.
func (s *Store) exchange(ctx context.Context, build func(context.Context) (*http.Request, error)) (*response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if s.apiKey != "" {
			req.Header.Set("apikey", s.apiKey)
			req.Header.Set("Authorization", "Bearer "+s.apiKey)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
			return nil, fmt.Errorf("%w: %d %s", db.ErrBadStatus, resp.StatusCode, snippet(body))
		}
		return &response{header: resp.Header, body: body}, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", db.ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return out.(*response), nil
}

func decodeRows(body []byte) ([]db.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var rows []db.Row
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %w", db.ErrMalformed, err)
	}
	return rows, nil
}

func snippet(body []byte) string {
	const maxLen = 200
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..." + " (" + strconv.Itoa(len(s)) + " bytes)"
	}
	return s
}
