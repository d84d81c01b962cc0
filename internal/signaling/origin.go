package signaling

import (
	"net/url"
	"strings"
)

// originAllowed implements the websocket Origin policy.
//
// With an empty allowlist every origin is accepted (dev posture, matching
// the permissive intake used across the service). A non-empty allowlist must
// contain "*" or the normalized scheme://host[:port] of the Origin header.
// Requests without an Origin header (non-browser clients) are accepted.
func originAllowed(originHeader string, allowed []string) bool {
	trimmed := strings.TrimSpace(originHeader)
	if trimmed == "" || len(allowed) == 0 {
		return true
	}

	normalized, ok := normalizeOrigin(trimmed)
	if !ok {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == normalized {
			return true
		}
	}
	return false
}

func normalizeOrigin(raw string) (string, bool) {
	if raw == "null" {
		return "null", true
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return "", false
	}
	if u.Path != "" && u.Path != "/" {
		return "", false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}

	host := strings.ToLower(u.Host)
	// Fold default ports so "https://a.example:443" matches "https://a.example".
	if (scheme == "http" && strings.HasSuffix(host, ":80")) ||
		(scheme == "https" && strings.HasSuffix(host, ":443")) {
		host = host[:strings.LastIndex(host, ":")]
	}
	return scheme + "://" + host, true
}
