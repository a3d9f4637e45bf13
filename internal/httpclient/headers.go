package httpclient

import "strings"

// HeaderMap is the parsed form of a raw response header block.
// Names keep the casing they were received with; when a name appears more
// than once only the first occurrence is kept.
type HeaderMap struct {
	names  []string
	values map[string]string
}

// ParseHeaderBlock splits a raw header block into a HeaderMap.
// Lines are split on "\n" (a trailing "\r" is dropped) and then on their first
// colon. Blanks between a name and its colon are dropped. Lines without a
// colon, such as the status line, and lines with an empty name are ignored.
func ParseHeaderBlock(raw string) HeaderMap {
	h := HeaderMap{values: make(map[string]string)}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		name := strings.TrimRight(line[:idx], " \t")
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, seen := h.values[name]; seen {
			continue
		}
		h.names = append(h.names, name)
		h.values[name] = strings.TrimSpace(line[idx+1:])
	}
	return h
}

// Get returns the value of the first header whose name matches name
// case-insensitively.
func (h HeaderMap) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

// Lookup is like Get but also reports whether the header was present.
func (h HeaderMap) Lookup(name string) (string, bool) {
	if v, ok := h.values[name]; ok {
		return v, true
	}
	for _, n := range h.names {
		if strings.EqualFold(n, name) {
			return h.values[n], true
		}
	}
	return "", false
}

// Names returns header names in the order they were first received.
func (h HeaderMap) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Values returns a copy of the exact-case name → value mapping.
func (h HeaderMap) Values() map[string]string {
	out := make(map[string]string, len(h.values))
	for k, v := range h.values {
		out[k] = v
	}
	return out
}

// Len returns the number of distinct header names.
func (h HeaderMap) Len() int {
	return len(h.names)
}
