package signaling

import "testing"

func TestOriginAllowed(t *testing.T) {
	allowlist := []string{"https://app.example.com", "http://localhost:3000"}

	cases := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{"no header", "", allowlist, true},
		{"empty allowlist accepts anything", "https://evil.example.com", nil, true},
		{"exact match", "https://app.example.com", allowlist, true},
		{"default port folded", "https://app.example.com:443", allowlist, true},
		{"case insensitive host", "https://APP.Example.com", allowlist, true},
		{"localhost with port", "http://localhost:3000", allowlist, true},
		{"not listed", "https://other.example.com", allowlist, false},
		{"scheme mismatch", "http://app.example.com", allowlist, false},
		{"wildcard", "https://anything.example.com", []string{"*"}, true},
		{"null origin rejected unless listed", "null", allowlist, false},
		{"null origin listed", "null", []string{"null"}, true},
		{"garbage", "not a url", allowlist, false},
		{"path not allowed", "https://app.example.com/login", allowlist, false},
		{"ftp scheme", "ftp://app.example.com", allowlist, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := originAllowed(tc.origin, tc.allowed); got != tc.want {
				t.Fatalf("originAllowed(%q, %v) = %v, want %v", tc.origin, tc.allowed, got, tc.want)
			}
		})
	}
}
