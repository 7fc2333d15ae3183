package cookie

import (
	"net"
	"strings"
)

// IsLocalHost reports whether the hostname belongs to a local development setup.
// An empty hostname (no browsing context) counts as local.
func IsLocalHost(host string) bool {
	host = normalizeHost(host)
	return host == "" || strings.Contains(host, "localhost")
}

// NamespaceForHost derives a cookie namespace from a hostname.
//
//	example.com         -> example
//	www.example.co.in   -> www_example_co
//	app.example.com     -> app_example
func NamespaceForHost(host string) string {
	host = normalizeHost(host)
	parts := strings.Split(host, ".")

	if len(parts) == 2 {
		return parts[0]
	}

	// Remove the top-level domain
	if len(parts) > 2 {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "_")
}

// WildcardDomain returns the cookie domain shared by all subdomains of host:
// "." followed by the last two labels, or "." followed by host when it has two labels or fewer.
func WildcardDomain(host string) string {
	host = normalizeHost(host)
	parts := strings.Split(host, ".")
	if len(parts) > 2 {
		return "." + strings.Join(parts[len(parts)-2:], ".")
	}
	return "." + host
}

// normalizeHost lower-cases the host and strips ports and trailing dots.
func normalizeHost(raw string) string {
	host := strings.ToLower(strings.TrimSpace(raw))
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}
