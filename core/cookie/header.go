package cookie

import (
	"net/url"
	"strings"
)

// FromHeader extracts one cookie value from a raw Cookie header, as received by a server
// outside of any jar, and URL-decodes it. Returns an empty string if the cookie is absent.
// Values that fail to decode are returned as sent.
func FromHeader(name, header string) string {
	if name == "" || header == "" {
		return ""
	}

	for _, part := range strings.Split(header, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || key != name || value == "" {
			continue
		}
		decoded, err := url.PathUnescape(value)
		if err != nil {
			return value
		}
		return decoded
	}
	return ""
}
