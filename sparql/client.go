// Package sparql is a typed client for the SPARQL 1.1 protocol over HTTP.
// Query text is grammar-validated before it can be executed: either at run
// time through ParseSelect/ParseAsk, or ahead of the build by the sparqlgen
// code generator, which emits the same typed query strings with no runtime
// classification. Results decode into a structured RDF term model.
package sparql

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	libName    = "sparql-http-client"
	libVersion = "0.3.0"

	acceptSPARQLJSON = "application/sparql-results+json"
)

// UserAgent identifies the calling application to the endpoint. Public
// SPARQL services (e.g. Wikidata) require a descriptive User-Agent with a
// way to contact the operator.
type UserAgent struct {
	Name    string
	Version string
	Contact string
}

// headerValue composes "{name}/{version} ({contact})" followed by this
// library's own product token.
func (ua UserAgent) headerValue() string {
	return fmt.Sprintf("%s/%s (%s) %s/%s", ua.Name, ua.Version, ua.Contact, libName, libVersion)
}

// Client issues SPARQL protocol requests. It is immutable after
// construction and safe for concurrent use from any number of goroutines.
type Client struct {
	http    *http.Client
	agent   UserAgent
	logger  *slog.Logger
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. The default has no
// timeout; per-request deadlines come from the caller's context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a logger for per-request debug output. Without it the
// client is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit caps outgoing requests at rps requests per second with the
// given burst, blocking Run until the limiter or the context yields.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewClient creates a client that identifies itself with the given
// UserAgent on every request.
func NewClient(agent UserAgent, opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{},
		agent:  agent,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint pairs the client with one SPARQL service URL. The returned value
// is immutable and may be shared across concurrent executions.
func (c *Client) Endpoint(baseURL string) *Endpoint {
	return &Endpoint{url: baseURL, client: c}
}

// Endpoint is a SPARQL service bound to a client configuration.
type Endpoint struct {
	url    string
	client *Client
}

// URL returns the endpoint's base URL.
func (e *Endpoint) URL() string { return e.url }

// Select binds a validated SELECT query string to this endpoint for one
// execution.
func (e *Endpoint) Select(qs SelectQueryString) *SelectQuery {
	return &SelectQuery{endpoint: e, query: qs}
}

// Ask binds a validated ASK query string to this endpoint for one
// execution.
func (e *Endpoint) Ask(qs AskQueryString) *AskQuery {
	return &AskQuery{endpoint: e, query: qs}
}

// do posts the query as a form-encoded body and returns the raw body of a
// success response. A non-2xx status surfaces as *StatusError without any
// attempt to decode the body as a result.
func (e *Endpoint) do(ctx context.Context, query string) ([]byte, error) {
	c := e.client
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", acceptSPARQLJSON)
	req.Header.Set("User-Agent", c.agent.headerValue())

	requestID := uuid.NewString()
	c.logger.Debug("executing SPARQL query",
		slog.String("request_id", requestID),
		slog.String("endpoint", e.url))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("SPARQL query failed",
			slog.String("request_id", requestID),
			slog.Int("status", resp.StatusCode))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}
