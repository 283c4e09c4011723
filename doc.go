// Package authsession keeps an HTTP client signed in against a credential
// issuer that hands out short-lived bearer tokens and a long-lived refresh
// cookie.
//
// The package exposes two entry points:
//  1. NewClient – returns a session that renews its access token shortly
//     before expiry, recovers from a rejected token with a single shared
//     refresh and replays the rejected request once;
//  2. NewServer – returns a reference issuer speaking the same protocol.
//
// Both accept option structures that can be populated from CLI flags,
// configuration files or the environment.
//
// Example:
//
//	s, _ := authsession.NewClient(&authsession.ClientOptions{BaseURL: "http://localhost:8000/api"})
//	s.Start(ctx)
//	_ = s.Login(ctx, &schema.LoginForm{Email: email, Password: password})
//	resp, _ := s.HTTPClient().Get(url)
package authsession
