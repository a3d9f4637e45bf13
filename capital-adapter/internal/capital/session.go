package capital

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/capital-adapter/internal/metrics"
	"github.com/Checker-Finance/adapters/internal/httpclient"
	"github.com/Checker-Finance/adapters/pkg/utils"
)

// Session holds the credentials and, once logged in, the session token pair.
//
// Logins are serialized. Token reads never block on an in-flight login and
// observe either the previous pair or the new one, never a mix.
type Session struct {
	logger  *zap.Logger
	baseURL string

	loginMu sync.Mutex

	mu      sync.RWMutex
	creds   Credentials
	tokens  SessionTokens
	account map[string]any
}

// NewSession creates an unauthenticated session against baseURL.
func NewSession(logger *zap.Logger, baseURL string, creds Credentials) *Session {
	return &Session{
		logger:  logger,
		baseURL: normalizeBaseURL(baseURL),
		creds:   creds,
	}
}

// SetCredentials replaces all three credential fields. Existing tokens are kept.
func (s *Session) SetCredentials(creds Credentials) {
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
}

// Credentials returns the current credentials.
func (s *Session) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// HasCompleteCredentials reports whether identifier, password and API key are all set.
func (s *Session) HasCompleteCredentials() bool {
	return s.Credentials().Complete()
}

// Authenticate logs in and stores the returned token pair.
//
// It returns ErrMissingCredentials without any network call when the
// credentials are incomplete. Any other failure clears the session and
// returns an error wrapping ErrAuthenticationFailed.
func (s *Session) Authenticate(ctx context.Context, transport httpclient.Transport) error {
	creds := s.Credentials()
	if !creds.Complete() {
		metrics.IncLogin("missing_credentials")
		return ErrMissingCredentials
	}

	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	body, err := json.Marshal(LoginRequest{Identifier: creds.Identifier, Password: creds.Password})
	if err != nil {
		return fmt.Errorf("capital: encode login request: %w", err)
	}
	headers := []string{
		HeaderAPIKey + ": " + creds.APIKey,
		"Content-Type: application/json",
	}

	resp := transport.Send(ctx, http.MethodPost, s.baseURL+string(EndpointSession), headers, body)

	decoded, _ := resp.DecodedJSON(true).(map[string]any)
	if !hasValue(decoded, "clientId") {
		s.clear()
		metrics.IncLogin("rejected")
		s.logger.Warn("capital.auth.login_rejected",
			zap.String("identifier", creds.Identifier),
			zap.Int("status", resp.StatusCode()),
			zap.NamedError("transport_error", resp.TransportError()))
		return fmt.Errorf("%w: %s", ErrAuthenticationFailed, failureReason(resp))
	}

	h := resp.HeaderMap()
	tokens := SessionTokens{
		SecurityToken: h.Get(HeaderSecurityToken),
		CST:           h.Get(HeaderCST),
	}
	if !tokens.Valid() {
		s.clear()
		metrics.IncLogin("rejected")
		s.logger.Warn("capital.auth.tokens_missing",
			zap.String("identifier", creds.Identifier),
			zap.Bool("has_security_token", tokens.SecurityToken != ""),
			zap.Bool("has_cst", tokens.CST != ""),
			zap.Strings("headers", h.Names()))
		return fmt.Errorf("%w: login response is missing %s or %s header",
			ErrAuthenticationFailed, HeaderSecurityToken, HeaderCST)
	}

	s.mu.Lock()
	s.tokens = tokens
	s.account = decoded
	s.mu.Unlock()

	metrics.IncLogin("success")
	metrics.SetAuthenticated(true)
	s.logger.Info("capital.auth.login_success",
		zap.String("identifier", creds.Identifier),
		zap.Any("client_id", decoded["clientId"]),
		zap.String("security_token", utils.MaskSecret(tokens.SecurityToken)),
		zap.String("cst", utils.MaskSecret(tokens.CST)))
	return nil
}

// IsAuthenticated reports whether both session tokens are currently set.
func (s *Session) IsAuthenticated() bool {
	return s.Tokens().Valid()
}

// Tokens returns the current token pair.
func (s *Session) Tokens() SessionTokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// AccountDetails returns a shallow copy of the login response of the current
// session, or nil when not authenticated.
func (s *Session) AccountDetails() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return nil
	}
	out := make(map[string]any, len(s.account))
	for k, v := range s.account {
		out[k] = v
	}
	return out
}

// Invalidate drops the token pair. No request is sent to the venue.
func (s *Session) Invalidate() {
	s.clear()
	s.logger.Info("capital.session.invalidated")
}

// StandardHeaders returns the session header lines using the current, possibly
// empty, token values.
func (s *Session) StandardHeaders() []string {
	t := s.Tokens()
	return []string{
		HeaderSecurityToken + ": " + t.SecurityToken,
		HeaderCST + ": " + t.CST,
	}
}

func (s *Session) clear() {
	s.mu.Lock()
	s.tokens = SessionTokens{}
	s.account = nil
	s.mu.Unlock()
	metrics.SetAuthenticated(false)
}

// hasValue reports whether m[key] holds a non-empty, non-zero JSON value.
func hasValue(m map[string]any, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	}
	return true
}

func failureReason(resp *httpclient.Response) string {
	if resp.Failed() {
		if err := resp.TransportError(); err != nil {
			return "transport error: " + err.Error()
		}
		return "request not performed"
	}
	return fmt.Sprintf("status %d without clientId", resp.StatusCode())
}
