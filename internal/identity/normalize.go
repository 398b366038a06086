// Package identity canonicalizes candidate identifiers and profile
// URLs so the same real-world profile always maps to one key.
package identity

import (
	"net/url"
	"strings"
)

// NormalizeID strips everything but digits from a raw identifier.
// An empty result means the record cannot be keyed and must be
// skipped by the caller.
func NormalizeID(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeURL canonicalizes a profile URL: query string and fragment
// are dropped, exactly one trailing path slash is stripped, and
// scheme/host/path are preserved otherwise. Two URLs that normalize
// identically refer to the same profile. Returns "" for input that
// does not parse as an absolute URL.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	path := u.EscapedPath()
	if strings.HasSuffix(path, "/") && path != "/" {
		path = path[:len(path)-1]
	}
	if path == "/" {
		path = ""
	}

	return u.Scheme + "://" + u.Host + path
}
