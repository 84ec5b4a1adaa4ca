// Package api is a thin typed client for the repository-ranking backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kevinmichaelchen/velocity-feed/internal/filter"
	"github.com/kevinmichaelchen/velocity-feed/internal/models"
)

// Timeouts bounds each kind of call. Admin jobs run synchronously on the
// backend before it answers, so their bounds are much longer.
type Timeouts struct {
	Page      time.Duration
	Search    time.Duration
	Readme    time.Duration
	Translate time.Duration
	Subscribe time.Duration
	Sync      time.Duration
	Backfill  time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Page:      30 * time.Second,
		Search:    30 * time.Second,
		Readme:    30 * time.Second,
		Translate: 60 * time.Second,
		Subscribe: 30 * time.Second,
		Sync:      180 * time.Second,
		Backfill:  600 * time.Second,
	}
}

const maxResponseBytes = 32 << 20

// Client talks to the backend over HTTP/JSON. It never retries; a failed
// call is reported once as an *Error.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeouts   Timeouts
	logger     *slog.Logger
	now        func() time.Time

	lastBreaker atomic.Int64
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeouts(t Timeouts) Option {
	return func(c *Client) { c.timeouts = t }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		timeouts:   DefaultTimeouts(),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage returns one page of the ranked feed for sel.
func (c *Client) FetchPage(ctx context.Context, sel filter.Selection, page, pageSize int) (*models.FeedPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(pageSize))
	query.Set("page", strconv.Itoa(page))
	query.Set("sort_by", string(sel.Sort))
	query.Set("_t", strconv.FormatInt(c.cacheBreaker(), 10))
	if sel.Sector != "" && sel.Sector != filter.AllSectors {
		query.Set("sector", sel.Sector)
	}
	if sel.TimeHorizon > 0 {
		query.Set("time_horizon", strconv.Itoa(sel.TimeHorizon))
	}
	if sel.Tag != "" {
		query.Set("tag", sel.Tag)
	}

	const op = "GET /api/repos"
	body, err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/api/repos",
		query:   query,
		timeout: c.timeouts.Page,
		noCache: true,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Sector    string           `json:"sector"`
		Timestamp string           `json:"timestamp"`
		Repos     *[]models.Repo   `json:"repos"`
		Analysis  *models.Analysis `json:"analysis"`
		Metadata  models.Metadata  `json:"metadata"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformed(op, fmt.Errorf("parsing response: %w", err))
	}
	if resp.Repos == nil {
		return nil, malformed(op, errors.New(`"repos" is missing`))
	}

	return &models.FeedPage{
		Sector:    resp.Sector,
		Timestamp: resp.Timestamp,
		Repos:     *resp.Repos,
		Analysis:  resp.Analysis,
		Metadata:  resp.Metadata,
	}, nil
}

// SemanticSearch runs a free-text query. The endpoint returns repos only;
// callers compute any aggregate themselves.
func (c *Client) SemanticSearch(ctx context.Context, q string) ([]models.Repo, error) {
	const op = "GET /api/search/semantic"
	body, err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/api/search/semantic",
		query:   url.Values{"q": {q}},
		timeout: c.timeouts.Search,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Repos *[]models.Repo `json:"repos"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformed(op, fmt.Errorf("parsing response: %w", err))
	}
	if resp.Repos == nil {
		return nil, malformed(op, errors.New(`"repos" is missing`))
	}
	return *resp.Repos, nil
}

// FetchReadme returns the README markdown for fullName ("owner/name"). An
// empty string means the backend found no README.
func (c *Client) FetchReadme(ctx context.Context, fullName string) (string, error) {
	const op = "GET /api/readme"
	body, err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/api/readme",
		query:   url.Values{"fullName": {fullName}},
		timeout: c.timeouts.Readme,
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		Markdown string `json:"markdown"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", malformed(op, fmt.Errorf("parsing response: %w", err))
	}
	return resp.Markdown, nil
}

func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	const op = "POST /api/translate"
	body, err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/api/translate",
		body:    map[string]string{"text": text},
		timeout: c.timeouts.Translate,
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", malformed(op, fmt.Errorf("parsing response: %w", err))
	}
	if resp.TranslatedText == "" {
		return "", malformed(op, errors.New(`"translatedText" is empty`))
	}
	return resp.TranslatedText, nil
}

// TriggerSync asks the backend to run a full database sync.
func (c *Client) TriggerSync(ctx context.Context) (*models.TriggerResult, error) {
	return c.trigger(ctx, "/api/update", c.timeouts.Sync)
}

// TriggerBackfill asks the backend to start the one-year deep scan.
func (c *Client) TriggerBackfill(ctx context.Context) (*models.TriggerResult, error) {
	return c.trigger(ctx, "/api/backfill", c.timeouts.Backfill)
}

func (c *Client) trigger(ctx context.Context, path string, timeout time.Duration) (*models.TriggerResult, error) {
	body, err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    path,
		timeout: timeout,
	})
	if err != nil {
		return nil, err
	}

	var result models.TriggerResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, malformed("POST "+path, fmt.Errorf("parsing response: %w", err))
	}
	return &result, nil
}

func (c *Client) Subscribe(ctx context.Context, email string) error {
	_, err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/api/subscribe",
		body:    map[string]string{"email": email},
		timeout: c.timeouts.Subscribe,
	})
	return err
}

// --- internal ---

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	timeout time.Duration
	// noCache asks every cache between us and the backend to revalidate.
	noCache bool
}

// cacheBreaker returns a millisecond timestamp that is strictly greater than
// any value it returned before, even when the clock stalls or steps back.
func (c *Client) cacheBreaker() int64 {
	for {
		last := c.lastBreaker.Load()
		next := c.now().UnixMilli()
		if next <= last {
			next = last + 1
		}
		if c.lastBreaker.CompareAndSwap(last, next) {
			return next
		}
	}
}

func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	op := r.method + " " + r.path

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	requestURL := c.baseURL + r.path
	if len(r.query) > 0 {
		requestURL += "?" + r.query.Encode()
	}

	var bodyReader io.Reader
	if r.body != nil {
		encoded, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.noCache {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(ctx, op, fmt.Errorf("reading response: %w", err))
	}

	c.logger.Debug("api request",
		"op", op,
		"status", resp.StatusCode,
		"duration", c.now().Sub(start),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	// The backend reports failures as {"error": "..."}; anything else is
	// still a server error, just without a message.
	var errBody struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(respBody, &errBody)

	return nil, &Error{
		Kind:       KindServer,
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    errBody.Error,
	}
}

func transportError(ctx context.Context, op string, err error) error {
	kind := KindTransport
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func malformed(op string, err error) error {
	return &Error{Kind: KindMalformed, Op: op, Err: err}
}
