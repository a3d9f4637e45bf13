package capital

import "errors"

var (
	// ErrMissingCredentials is returned before any I/O when identifier,
	// password or API key is empty.
	ErrMissingCredentials = errors.New("capital: missing required authentication options; set identifier, password and api key")

	// ErrAuthenticationFailed is returned when the login exchange did not yield
	// a client id and both session tokens.
	ErrAuthenticationFailed = errors.New("capital: authentication failed")
)
