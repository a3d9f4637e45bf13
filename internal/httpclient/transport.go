package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/pkg/utils"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Transport performs exactly one HTTP request per call. Network failures are
// reported inside the returned Response rather than as a Go error.
type Transport interface {
	Send(ctx context.Context, method, url string, headers []string, body []byte) *Response
}

// TransportOptions configures a RestyTransport.
type TransportOptions struct {
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate and hostname checks.
	InsecureSkipVerify bool
	// RoundTripper replaces the underlying HTTP transport (tests, proxies).
	RoundTripper http.RoundTripper
}

// RestyTransport is the Transport used against real venues.
type RestyTransport struct {
	logger *zap.Logger
	client *resty.Client
}

// NewRestyTransport builds a transport that never retries and never follows redirects.
func NewRestyTransport(logger *zap.Logger, opts TransportOptions) *RestyTransport {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetLogger(logger.Sugar()).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))

	if opts.RoundTripper != nil {
		client.SetTransport(opts.RoundTripper)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("httpclient.tls_verification_disabled")
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec
	}

	return &RestyTransport{logger: logger, client: client}
}

// Send implements Transport.
func (t *RestyTransport) Send(ctx context.Context, method, url string, headers []string, body []byte) *Response {
	method = strings.ToUpper(method)
	if method != http.MethodGet && method != http.MethodPost {
		return NewResponse(FailedExchange(fmt.Errorf("unsupported method %q", method)))
	}

	req := t.client.R().SetContext(ctx)
	for _, line := range headers {
		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			t.logger.Debug("httpclient.header_skipped", zap.String("line", line))
			continue
		}
		req.SetHeaderVerbatim(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, url)
	if err != nil {
		t.logger.Warn("httpclient.send_failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err))
		return NewResponse(FailedExchange(err))
	}

	t.logger.Debug("httpclient.exchange",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode()),
		zap.Strings("headers", utils.MaskHeaderLines(headers)),
		zap.Duration("latency", time.Since(start)))

	return NewResponse(Exchange{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		RawHeaders: renderHeaderBlock(resp.RawResponse),
	})
}

// renderHeaderBlock rebuilds the header block of resp: status line, one
// "Name: value" line per header value, and a terminating blank line.
func renderHeaderBlock(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(resp.Proto)
	b.WriteByte(' ')
	b.WriteString(resp.Status)
	b.WriteString("\r\n")

	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range resp.Header[name] {
			b.WriteString(name)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\r\n")
		}
	}
	b.WriteString("\r\n")
	return b.String()
}
