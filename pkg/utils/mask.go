package utils

import "strings"

// MaskSecret hides all but the last four characters of a credential or
// session token so it can be logged. Values of four characters or fewer are
// fully masked.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "***"
	}
	return "***" + s[len(s)-4:]
}

// MaskHeaderLines masks the value of every "Name: Value" line.
func MaskHeaderLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			out[i] = line
			continue
		}
		out[i] = name + ": " + MaskSecret(strings.TrimSpace(value))
	}
	return out
}
