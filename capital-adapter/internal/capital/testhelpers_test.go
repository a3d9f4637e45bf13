package capital

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/internal/httpclient"
)

const testBaseURL = "https://capital.test/api/v1/"

// sentRequest is one call recorded by fakeTransport.
type sentRequest struct {
	Method  string
	URL     string
	Headers []string
	Body    []byte
}

// fakeTransport records requests and answers them with respond.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []sentRequest
	respond func(req sentRequest) httpclient.Exchange
}

func (f *fakeTransport) Send(_ context.Context, method, url string, headers []string, body []byte) *httpclient.Response {
	req := sentRequest{Method: method, URL: url, Headers: append([]string(nil), headers...), Body: body}
	f.mu.Lock()
	f.calls = append(f.calls, req)
	respond := f.respond
	f.mu.Unlock()

	if respond == nil {
		return httpclient.NewResponse(httpclient.Exchange{StatusCode: 200, Body: []byte("{}")})
	}
	return httpclient.NewResponse(respond(req))
}

func (f *fakeTransport) Calls() []sentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentRequest(nil), f.calls...)
}

// loginExchange builds a login response with the given header block and body.
func loginExchange(rawHeaders, body string) httpclient.Exchange {
	return httpclient.Exchange{
		StatusCode: 200,
		Body:       []byte(body),
		RawHeaders: "HTTP/1.1 200 OK\r\n" + rawHeaders + "\r\n",
	}
}

func validCreds() Credentials {
	return Credentials{Identifier: "trader@example.com", Password: "s3cret", APIKey: "api-key-123"}
}

func newTestClient(tr *fakeTransport) *Client {
	return NewClient(zap.NewNop(), tr, validCreds(), WithBaseURL(testBaseURL))
}

// authenticatedClient returns a client already holding the abc/xyz token pair.
func authenticatedClient(tr *fakeTransport) *Client {
	c := newTestClient(tr)
	c.session.tokens = SessionTokens{SecurityToken: "abc", CST: "xyz"}
	return c
}

// rotatingSource serves current until Forget, then switches to next.
type rotatingSource struct {
	current Credentials
	next    Credentials
	loadErr error
	loads   int
	forgets int
}

func (s *rotatingSource) Load(context.Context) (Credentials, error) {
	s.loads++
	return s.current, s.loadErr
}

func (s *rotatingSource) Forget() {
	s.forgets++
	s.current = s.next
}

// passwordCheckingLogin accepts logins whose body carries password.
func passwordCheckingLogin(password string) func(sentRequest) httpclient.Exchange {
	return func(req sentRequest) httpclient.Exchange {
		var body LoginRequest
		if err := json.Unmarshal(req.Body, &body); err != nil || body.Password != password {
			return httpclient.Exchange{StatusCode: 401, Body: []byte(`{"errorCode":"error.invalid.details"}`)}
		}
		return loginExchange("X-SECURITY-TOKEN: abc\r\nCST: xyz\r\n", `{"clientId":"42"}`)
	}
}
