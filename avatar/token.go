package avatar

import (
	"net/url"
	"strings"

	"github.com/vcrobe/adminnav/dom"
)

// TokenSource yields a CSRF token, or false when it has none.
type TokenSource interface {
	Token() (string, bool)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() (string, bool)

func (f TokenFunc) Token() (string, bool) { return f() }

// Static returns a source that always yields token when it is non-empty.
func Static(token string) TokenSource {
	return TokenFunc(func() (string, bool) { return token, token != "" })
}

// CookieToken reads the named cookie from a document.cookie style string
// returned by jar. Malformed neighbours are skipped and the value is
// percent-decoded.
func CookieToken(jar func() string, name string) TokenSource {
	return TokenFunc(func() (string, bool) {
		for _, pair := range strings.Split(jar(), ";") {
			k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
			if !ok || k != name {
				continue
			}
			if decoded, err := url.PathUnescape(v); err == nil {
				v = decoded
			}
			return v, v != ""
		}
		return "", false
	})
}

// MetaToken reads the content of <meta name="name"> in doc.
func MetaToken(doc dom.Document, name string) TokenSource {
	return TokenFunc(func() (string, bool) {
		meta := doc.Query(`meta[name="` + name + `"]`)
		if meta == nil {
			return "", false
		}
		v, ok := meta.Attr("content")
		return v, ok && v != ""
	})
}

// ResolveToken returns the first token yielded by sources, in order, or "".
func ResolveToken(sources ...TokenSource) string {
	for _, s := range sources {
		if s == nil {
			continue
		}
		if v, ok := s.Token(); ok {
			return v
		}
	}
	return ""
}
