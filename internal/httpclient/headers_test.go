package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHeaderBlock_LoginHeaders(t *testing.T) {
	h := ParseHeaderBlock("X-SECURITY-TOKEN: abc\r\nCST: xyz\r\n")

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []string{"X-SECURITY-TOKEN", "CST"}, h.Names())
	assert.Equal(t, map[string]string{"X-SECURITY-TOKEN": "abc", "CST": "xyz"}, h.Values())
}

func TestParseHeaderBlock_FirstOccurrenceWins(t *testing.T) {
	h := ParseHeaderBlock("A: 1\nA: 2\n")

	assert.Equal(t, map[string]string{"A": "1"}, h.Values())
	assert.Equal(t, "1", h.Get("A"))
}

func TestParseHeaderBlock_Idempotent(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nB: 2\r\nA: 1\r\nB: 3\r\n\r\n"

	first := ParseHeaderBlock(raw)
	second := ParseHeaderBlock(raw)

	assert.Equal(t, first.Names(), second.Names())
	assert.Equal(t, first.Values(), second.Values())
	assert.Equal(t, []string{"B", "A"}, first.Names())
}

func TestParseHeaderBlock_DropsMalformedLines(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\n" +
		"no colon here\r\n" +
		": empty name\r\n" +
		"   : blank name\r\n" +
		"Location: https://example.com:8443/path\r\n" +
		"Empty:\r\n"

	h := ParseHeaderBlock(raw)

	assert.Equal(t, []string{"Location", "Empty"}, h.Names())
	assert.Equal(t, "https://example.com:8443/path", h.Get("Location"), "only the first colon splits")
	v, ok := h.Lookup("Empty")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestParseHeaderBlock_TrimsValues(t *testing.T) {
	h := ParseHeaderBlock("Content-Type:    application/json   \r\n")
	assert.Equal(t, "application/json", h.Get("Content-Type"))
}

func TestParseHeaderBlock_TrimsBlanksBeforeColon(t *testing.T) {
	h := ParseHeaderBlock("HTTP/1.1 200 OK\r\nCst : xyz\r\nX-Security-Token\t: abc\r\n")

	assert.Equal(t, []string{"Cst", "X-Security-Token"}, h.Names())
	assert.Equal(t, "xyz", h.Get("CST"))
	assert.Equal(t, "abc", h.Get("X-SECURITY-TOKEN"))
}

func TestHeaderMap_GetIsCaseInsensitive(t *testing.T) {
	h := ParseHeaderBlock("X-Security-Token: abc\r\nCst: xyz\r\n")

	assert.Equal(t, "abc", h.Get("X-SECURITY-TOKEN"))
	assert.Equal(t, "abc", h.Get("x-security-token"))
	assert.Equal(t, "xyz", h.Get("CST"))

	_, ok := h.Lookup("Missing")
	assert.False(t, ok)
}

func TestHeaderMap_CaseVariantsKeepReceivedOrder(t *testing.T) {
	h := ParseHeaderBlock("cst: lower\r\nCST: upper\r\n")

	// Exact-case names are distinct keys.
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "upper", h.Get("CST"))
	assert.Equal(t, "lower", h.Get("cst"))
	assert.Equal(t, "lower", h.Get("Cst"), "first case-insensitive match in received order")
}

func TestParseHeaderBlock_Empty(t *testing.T) {
	h := ParseHeaderBlock("")
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Values())
	assert.Equal(t, "", h.Get("anything"))
}
