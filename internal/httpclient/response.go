package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StatusNotPerformed is the status code of an exchange that never reached the server.
const StatusNotPerformed = -1

var (
	// ErrTransport wraps network-level failures in the strict decode path.
	ErrTransport = errors.New("transport failure")
	// ErrEmptyBody is returned by Decode when the response carried no body.
	ErrEmptyBody = errors.New("empty response body")
)

// Exchange is the outcome of a single HTTP request.
type Exchange struct {
	StatusCode int
	Body       []byte
	RawHeaders string
	Err        error
}

// FailedExchange builds the result of a request that never completed.
func FailedExchange(err error) Exchange {
	return Exchange{StatusCode: StatusNotPerformed, Err: err}
}

// Response wraps one completed (or failed) exchange. It is never mutated
// after construction.
type Response struct {
	ex Exchange
}

// NewResponse wraps ex. The body is copied so later changes by the caller
// are not observed.
func NewResponse(ex Exchange) *Response {
	if ex.Body != nil {
		body := make([]byte, len(ex.Body))
		copy(body, ex.Body)
		ex.Body = body
	}
	return &Response{ex: ex}
}

// StatusCode returns the HTTP status, or StatusNotPerformed.
func (r *Response) StatusCode() int { return r.ex.StatusCode }

// RawBody returns the body exactly as received.
func (r *Response) RawBody() string { return string(r.ex.Body) }

// RawHeaders returns the header block exactly as rendered by the transport.
func (r *Response) RawHeaders() string { return r.ex.RawHeaders }

// TransportError returns the network-level error, if any.
func (r *Response) TransportError() error { return r.ex.Err }

// Failed reports whether the request never produced an HTTP response.
func (r *Response) Failed() bool {
	return r.ex.Err != nil || r.ex.StatusCode == StatusNotPerformed
}

// HeaderMap parses the raw header block. The block is re-parsed on each call.
func (r *Response) HeaderMap() HeaderMap {
	return ParseHeaderBlock(r.ex.RawHeaders)
}

// Header returns a response header value, matching the name case-insensitively.
func (r *Response) Header(name string) string {
	return r.HeaderMap().Get(name)
}

// DecodedJSON decodes the body leniently. When the body is not valid JSON, or
// decodes to an empty or falsy value, it returns an empty map if associative
// is set and nil otherwise.
func (r *Response) DecodedJSON(associative bool) any {
	var v any
	if err := json.Unmarshal(r.ex.Body, &v); err == nil && !isEmptyJSON(v) {
		return v
	}
	if associative {
		return map[string]any{}
	}
	return nil
}

// Decode strictly decodes the body into v.
func (r *Response) Decode(v any) error {
	if r.ex.Err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, r.ex.Err)
	}
	if r.ex.StatusCode == StatusNotPerformed {
		return ErrTransport
	}
	if len(r.ex.Body) == 0 {
		return ErrEmptyBody
	}
	if err := json.Unmarshal(r.ex.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

func isEmptyJSON(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
