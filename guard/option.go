package guard

// Option configures a guard
type Option func(g *Guard)

// WithCookieName sets the marker cookie name
func WithCookieName(name string) Option {
	return func(g *Guard) {
		g.cookieName = name
	}
}

// WithLoginPath sets the public login page
func WithLoginPath(path string) Option {
	return func(g *Guard) {
		g.loginPath = path
		g.public = append(g.public, path)
	}
}

// WithPublicPaths adds public path prefixes
func WithPublicPaths(paths ...string) Option {
	return func(g *Guard) {
		g.public = append(g.public, paths...)
	}
}

// WithProtectedPaths replaces the protected paths
func WithProtectedPaths(paths ...string) Option {
	return func(g *Guard) {
		g.protected = paths
	}
}
