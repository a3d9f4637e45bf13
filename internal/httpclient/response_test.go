package httpclient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okResponse(body string) *Response {
	return NewResponse(Exchange{StatusCode: 200, Body: []byte(body)})
}

// ─── DecodedJSON ──────────────────────────────────────────────────────────────

func TestDecodedJSON_Object(t *testing.T) {
	r := okResponse(`{"positions":[{"dealId":"1"}]}`)

	got, ok := r.DecodedJSON(true).(map[string]any)
	require.True(t, ok)
	positions, ok := got["positions"].([]any)
	require.True(t, ok)
	assert.Len(t, positions, 1)
}

func TestDecodedJSON_Array(t *testing.T) {
	got := okResponse(`[1,2]`).DecodedJSON(false)
	assert.Equal(t, []any{float64(1), float64(2)}, got)
}

func TestDecodedJSON_NotJSON(t *testing.T) {
	r := okResponse("not json")

	assert.Equal(t, map[string]any{}, r.DecodedJSON(true))
	assert.Nil(t, r.DecodedJSON(false))
}

func TestDecodedJSON_EmptyAndFalsyValues(t *testing.T) {
	for _, body := range []string{"", "null", "false", "0", `""`, "{}", "[]"} {
		t.Run(body, func(t *testing.T) {
			r := okResponse(body)
			assert.Equal(t, map[string]any{}, r.DecodedJSON(true))
			assert.Nil(t, r.DecodedJSON(false))
		})
	}
}

func TestDecodedJSON_TransportFailureMatchesMalformedBody(t *testing.T) {
	failed := NewResponse(FailedExchange(errors.New("connection refused")))
	malformed := okResponse("<html>")

	assert.Equal(t, malformed.DecodedJSON(true), failed.DecodedJSON(true))
	assert.Equal(t, malformed.DecodedJSON(false), failed.DecodedJSON(false))
}

// ─── Decode (strict) ──────────────────────────────────────────────────────────

func TestDecode_Success(t *testing.T) {
	var out struct {
		ServerTime int64 `json:"serverTime"`
	}
	require.NoError(t, okResponse(`{"serverTime":1700000000000}`).Decode(&out))
	assert.Equal(t, int64(1700000000000), out.ServerTime)
}

func TestDecode_DistinguishesFailures(t *testing.T) {
	var out map[string]any

	err := NewResponse(FailedExchange(errors.New("dial tcp: refused"))).Decode(&out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "refused")

	err = okResponse("").Decode(&out)
	assert.ErrorIs(t, err, ErrEmptyBody)

	err = okResponse("not json").Decode(&out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "decode response body")
}

func TestDecode_EmptyObjectIsNotAnError(t *testing.T) {
	var out map[string]any
	require.NoError(t, okResponse("{}").Decode(&out))
	assert.Empty(t, out)
}

// ─── Accessors ────────────────────────────────────────────────────────────────

func TestResponse_Accessors(t *testing.T) {
	body := []byte(`{"a":1}`)
	r := NewResponse(Exchange{
		StatusCode: 401,
		Body:       body,
		RawHeaders: "HTTP/1.1 401 Unauthorized\r\nCST: x\r\n\r\n",
	})
	body[0] = 'X'

	assert.Equal(t, 401, r.StatusCode())
	assert.Equal(t, `{"a":1}`, r.RawBody(), "response keeps its own copy of the body")
	assert.Equal(t, "HTTP/1.1 401 Unauthorized\r\nCST: x\r\n\r\n", r.RawHeaders())
	assert.Equal(t, "x", r.Header("cst"))
	assert.False(t, r.Failed())
	assert.NoError(t, r.TransportError())
}

func TestFailedExchange(t *testing.T) {
	r := NewResponse(FailedExchange(errors.New("timeout")))

	assert.Equal(t, StatusNotPerformed, r.StatusCode())
	assert.True(t, r.Failed())
	assert.Equal(t, "", r.RawBody())
	assert.Equal(t, "", r.RawHeaders())
	assert.EqualError(t, r.TransportError(), "timeout")
}
