package cookie_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/brokerage/core/cookie"
)

func TestFromHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		key    string
		header string
		want   string
	}{
		{"middle cookie", "myapp_access", "foo=1; myapp_access=XYZ; bar=2", "XYZ"},
		{"first cookie", "foo", "foo=1; bar=2", "1"},
		{"absent", "baz", "foo=1; bar=2", ""},
		{"empty header", "foo", "", ""},
		{"url encoded", "msg", "msg=hello%20world%21", "hello world!"},
		{"plus kept", "q", "q=a+b", "a+b"},
		{"suffix name does not match", "access", "myapp_access=XYZ", ""},
		{"empty value", "foo", "foo=; bar=2", ""},
		{"jwt value", "t", "t=aaa.bbb.ccc", "aaa.bbb.ccc"},
		{"bad escape kept", "t", "t=%zz", "%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cookie.FromHeader(tt.key, tt.header))
		})
	}
}

func TestIsLocalHost(t *testing.T) {
	t.Parallel()

	assert.True(t, cookie.IsLocalHost("localhost"))
	assert.True(t, cookie.IsLocalHost("localhost:3000"))
	assert.True(t, cookie.IsLocalHost("app.localhost"))
	assert.True(t, cookie.IsLocalHost(""))
	assert.False(t, cookie.IsLocalHost("www.example.com"))
	assert.False(t, cookie.IsLocalHost("example.com:8443"))
}

func TestNamespaceForHost(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"example.com":       "example",
		"app.example.com":   "app_example",
		"www.example.co.in": "www_example_co",
		"EXAMPLE.com.":      "example",
		"intranet":          "intranet",
		"app.example.com:8": "app_example",
	}

	for host, want := range tests {
		assert.Equal(t, want, cookie.NamespaceForHost(host), host)
	}
}

func TestWildcardDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".example.com", cookie.WildcardDomain("www.example.com"))
	assert.Equal(t, ".example.com", cookie.WildcardDomain("a.b.example.com"))
	assert.Equal(t, ".example.com", cookie.WildcardDomain("example.com"))
	assert.Equal(t, ".co.in", cookie.WildcardDomain("www.example.co.in"))
}
