package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/viant/authsession/marker"
)

// DefaultLoginPath is the public page unauthenticated users are sent to.
const DefaultLoginPath = "/authenticate"

// RedirectParam carries the originally requested path through the login page.
const RedirectParam = "redirect"

// Guard redirects requests for protected pages based on the session
// marker cookie alone. It never validates the credential itself.
type Guard struct {
	cookieName string
	loginPath  string
	public     []string
	protected  []string
	bypass     []string
}

// Handler wraps next with the redirect rules
func (g *Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if target, ok := g.Redirect(r); ok {
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Redirect returns the redirect target for r, if any
func (g *Guard) Redirect(r *http.Request) (string, bool) {
	pathname := r.URL.Path
	authenticated := g.hasMarker(r)
	if pathname == g.loginPath {
		if authenticated {
			return localPath(r.URL.Query().Get(RedirectParam)), true
		}
		return "", false
	}
	if hasAnyPrefix(pathname, g.public) || g.isBypassed(pathname) {
		return "", false
	}
	if !authenticated && g.isProtected(pathname) {
		query := url.Values{RedirectParam: []string{pathname}}
		return g.loginPath + "?" + query.Encode(), true
	}
	return "", false
}

func (g *Guard) hasMarker(r *http.Request) bool {
	cookie, err := r.Cookie(g.cookieName)
	return err == nil && cookie.Value != ""
}

func (g *Guard) isBypassed(pathname string) bool {
	return hasAnyPrefix(pathname, g.bypass) || strings.Contains(pathname, ".")
}

func (g *Guard) isProtected(pathname string) bool {
	for _, candidate := range g.protected {
		if pathname == candidate || strings.HasPrefix(pathname, strings.TrimSuffix(candidate, "/")+"/") && candidate != "/" {
			return true
		}
	}
	return false
}

func hasAnyPrefix(pathname string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(pathname, prefix) {
			return true
		}
	}
	return false
}

// localPath keeps redirects on the same site
func localPath(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

// New creates a guard with the default page layout
func New(options ...Option) *Guard {
	ret := &Guard{
		cookieName: marker.DefaultName,
		loginPath:  DefaultLoginPath,
		public:     []string{DefaultLoginPath},
		protected:  []string{"/", "/dashboard", "/profile", "/settings"},
		bypass:     []string{"/_next", "/api"},
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
