package marker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// JarMarker keeps the marker as a cookie for the site URL in a cookie jar.
type JarMarker struct {
	jar    http.CookieJar
	site   *url.URL
	name   string
	secure bool
}

// Cookie builds the marker cookie sent to a browser
func (m *JarMarker) Cookie(ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    "1",
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		SameSite: http.SameSiteStrictMode,
		Secure:   m.secure,
	}
}

func (m *JarMarker) Mark(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m.jar.SetCookies(m.site, []*http.Cookie{m.Cookie(ttl)})
	return nil
}

func (m *JarMarker) Clear(ctx context.Context) error {
	cookie := m.Cookie(0)
	cookie.MaxAge = -1
	m.jar.SetCookies(m.site, []*http.Cookie{cookie})
	return nil
}

func (m *JarMarker) Present(ctx context.Context) (bool, error) {
	for _, cookie := range m.jar.Cookies(m.site) {
		if cookie.Name == m.name {
			return true, nil
		}
	}
	return false, nil
}

// NewJarMarker creates a cookie marker for siteURL
func NewJarMarker(jar http.CookieJar, siteURL string, options ...JarOption) (*JarMarker, error) {
	site, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse site URL %v: %w", siteURL, err)
	}
	ret := &JarMarker{jar: jar, site: site, name: DefaultName}
	for _, opt := range options {
		opt(ret)
	}
	return ret, nil
}

// JarOption configures a cookie marker
type JarOption func(m *JarMarker)

// WithName overrides the cookie name
func WithName(name string) JarOption {
	return func(m *JarMarker) {
		if name != "" {
			m.name = name
		}
	}
}

// WithSecure marks the cookie Secure, as in production deployments
func WithSecure(secure bool) JarOption {
	return func(m *JarMarker) {
		m.secure = secure
	}
}
