package capital

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/capital-adapter/internal/metrics"
	"github.com/Checker-Finance/adapters/internal/httpclient"
)

// Client wraps the Capital.com REST API for a single session.
//
// The getters decode leniently: a failed request, an unexpected status or a
// malformed body all yield an empty map. Use Fetch when the status code or a
// strict decode is needed. Nothing is retried and an expired session is not
// renewed automatically; call Authenticate again.
type Client struct {
	logger    *zap.Logger
	transport httpclient.Transport
	baseURL   string
	session   *Session
	source    CredentialsSource
}

// CredentialsSource supplies the login credentials each time the client
// authenticates. Forget is called after the venue rejects a login so the
// next Load reads the current secret.
type CredentialsSource interface {
	Load(ctx context.Context) (Credentials, error)
	Forget()
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (demo environment, tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = normalizeBaseURL(baseURL)
	}
}

// WithCredentialsSource makes Authenticate load credentials from src before
// every login instead of reusing the ones given to NewClient.
func WithCredentialsSource(src CredentialsSource) Option {
	return func(c *Client) {
		c.source = src
	}
}

// NewClient constructs a client with its own Session.
func NewClient(logger *zap.Logger, transport httpclient.Transport, creds Credentials, opts ...Option) *Client {
	c := &Client{
		logger:  logger,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.transport = &meteredTransport{next: transport, baseURL: c.baseURL}
	c.session = NewSession(logger, c.baseURL, creds)
	return c
}

// Session returns the session owned by the client.
func (c *Client) Session() *Session { return c.session }

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// SetCredentials replaces the credentials used by the next Authenticate.
func (c *Client) SetCredentials(creds Credentials) { c.session.SetCredentials(creds) }

// Authenticate logs in; see Session.Authenticate. With a CredentialsSource the
// credentials are loaded first, and a rejected login makes the source forget
// them.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.source != nil {
		creds, err := c.source.Load(ctx)
		if err != nil {
			c.logger.Warn("capital.auth.credentials_unavailable", zap.Error(err))
			return fmt.Errorf("capital: load credentials: %w", err)
		}
		c.session.SetCredentials(creds)
	}

	err := c.session.Authenticate(ctx, c.transport)
	if c.source != nil && errors.Is(err, ErrAuthenticationFailed) {
		c.source.Forget()
		c.logger.Info("capital.auth.credentials_forgotten")
	}
	return err
}

// IsAuthenticated reports whether the session holds both tokens.
func (c *Client) IsAuthenticated() bool { return c.session.IsAuthenticated() }

// Invalidate clears the session tokens locally.
func (c *Client) Invalidate() { c.session.Invalidate() }

// Fetch issues a GET to endpoint, attaching the session headers when the
// endpoint requires them, and returns the raw response.
func (c *Client) Fetch(ctx context.Context, endpoint Endpoint) *httpclient.Response {
	var headers []string
	if endpoint.RequiresSession() {
		if !c.session.IsAuthenticated() {
			c.logger.Debug("capital.request_without_session", zap.String("endpoint", string(endpoint)))
		}
		headers = c.session.StandardHeaders()
	}
	return c.transport.Send(ctx, http.MethodGet, c.baseURL+string(endpoint), headers, nil)
}

// GetPositions lists open positions.
func (c *Client) GetPositions(ctx context.Context) any {
	return c.Fetch(ctx, EndpointPositions).DecodedJSON(true)
}

// GetOrders lists working orders.
func (c *Client) GetOrders(ctx context.Context) any {
	return c.Fetch(ctx, EndpointWorkingOrders).DecodedJSON(true)
}

// GetTopLevelMarketCategories returns the root of the market navigation tree.
func (c *Client) GetTopLevelMarketCategories(ctx context.Context) any {
	return c.Fetch(ctx, EndpointMarketNavigation).DecodedJSON(true)
}

// PingSession keeps the trading session alive.
func (c *Client) PingSession(ctx context.Context) any {
	return c.Fetch(ctx, EndpointPing).DecodedJSON(true)
}

// GetServerTime checks connectivity and returns the server time. No session is needed.
func (c *Client) GetServerTime(ctx context.Context) any {
	return c.Fetch(ctx, EndpointTime).DecodedJSON(true)
}

// meteredTransport records request counts and latency per endpoint.
type meteredTransport struct {
	next    httpclient.Transport
	baseURL string
}

func (t *meteredTransport) Send(ctx context.Context, method, url string, headers []string, body []byte) *httpclient.Response {
	endpoint := strings.TrimPrefix(url, t.baseURL)
	start := time.Now()
	resp := t.next.Send(ctx, method, url, headers, body)
	metrics.ObserveDuration(metrics.CapitalRequestDuration, start, endpoint, method)
	metrics.IncCapitalRequest(endpoint, method, resp.StatusCode())
	return resp
}

func normalizeBaseURL(u string) string {
	if u == "" {
		return DefaultBaseURL
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}
