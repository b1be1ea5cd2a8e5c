package trust

import (
	"net"
	"strings"

	"golang.org/x/net/idna"
)

// ExtractDomain returns the host part of rootURL: a leading http:// or
// https:// is stripped and everything from the first path separator on is
// dropped. Ports are removed and the result is normalized to lower-case
// ASCII. The second result is false when no domain can be derived.
func ExtractDomain(rootURL string) (string, bool) {
	rest := strings.TrimSpace(rootURL)
	lower := strings.ToLower(rest)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, scheme) {
			rest = rest[len(scheme):]
			break
		}
	}

	if idx := strings.IndexAny(rest, "/?#"); idx != -1 {
		rest = rest[:idx]
	}
	if idx := strings.LastIndex(rest, "@"); idx != -1 {
		rest = rest[idx+1:]
	}

	return NormalizeHost(rest)
}

// NormalizeHost strips an optional port and converts host to its lookup form
func NormalizeHost(host string) (string, bool) {
	if host == "" {
		return "", false
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.Trim(host, "[]"), ".")
	if host == "" {
		return "", false
	}

	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), true
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil || ascii == "" {
		return "", false
	}
	return ascii, true
}

// normalizeKey prepares a mapping key; wildcard patterns bypass IDNA validation
func normalizeKey(domain string) string {
	if containsGlob(domain) {
		return strings.ToLower(strings.TrimSpace(domain))
	}
	if host, ok := NormalizeHost(strings.TrimSpace(domain)); ok {
		return host
	}
	return strings.ToLower(strings.TrimSpace(domain))
}

func containsGlob(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
