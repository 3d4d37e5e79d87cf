// File: httpd/query.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package httpd

import "strings"

// ParseQuery splits a raw query string into key/value pairs. Values
// get '+' translated to space and %XX sequences hex-decoded; keys are
// taken verbatim. The last occurrence of a duplicate key wins.
func ParseQuery(q string) map[string]string {
	out := make(map[string]string)
	if q == "" {
		return out
	}
	for _, pair := range strings.Split(q, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		out[key] = decodeValue(value)
	}
	return out
}

// decodeValue applies '+' → space, then %XX decoding. Malformed or
// truncated escapes are passed through untouched.
func decodeValue(v string) string {
	v = strings.ReplaceAll(v, "+", " ")
	if !strings.ContainsRune(v, '%') {
		return v
	}
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		if v[i] == '%' && i+2 < len(v) {
			hi, okHi := unhex(v[i+1])
			lo, okLo := unhex(v[i+2])
			if okHi && okLo {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		b.WriteByte(v[i])
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
