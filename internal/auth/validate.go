// Package auth resolves per-call Daktela credentials from HTTP headers,
// bearer tokens, or static configuration, and validates instance URLs.
package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL validates and normalizes a Daktela instance URL supplied by a
// client. Only HTTPS URLs whose hostname matches one of the allowed domain
// suffixes are accepted; IP literals are rejected outright so clients cannot
// point the server at internal addresses or metadata endpoints. Returns the
// URL with surrounding whitespace and trailing slashes stripped.
func ValidateURL(raw string, allowed []string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("X-Daktela-Url is not a valid URL: %v", err)
	}

	if u.Scheme != "https" {
		got := u.Scheme
		if got == "" {
			got = "empty"
		}
		return "", fmt.Errorf("X-Daktela-Url must use HTTPS (got '%s')", got)
	}

	hostname := strings.ToLower(u.Hostname())
	if hostname == "" {
		return "", errors.New("X-Daktela-Url has no hostname")
	}

	// IPv6 hostnames contain ":" once the brackets are stripped.
	if isIPLiteral(hostname) {
		return "", errors.New("X-Daktela-Url must use a domain name, not an IP address")
	}

	for _, domain := range allowed {
		d := strings.ToLower(strings.TrimSpace(domain))
		if d == "" {
			continue
		}
		if hostname == d || strings.HasSuffix(hostname, "."+d) {
			return raw, nil
		}
	}

	patterns := make([]string, 0, len(allowed))
	for _, d := range allowed {
		patterns = append(patterns, "*."+strings.TrimSpace(d))
	}
	return "", fmt.Errorf("X-Daktela-Url hostname '%s' is not allowed. Allowed domains: %s",
		hostname, strings.Join(patterns, ", "))
}

func isIPLiteral(hostname string) bool {
	if strings.Contains(hostname, ":") {
		return true
	}
	stripped := strings.ReplaceAll(hostname, ".", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
