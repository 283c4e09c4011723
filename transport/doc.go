// Package transport implements the session interceptor: an http.RoundTripper
// that attaches the current access credential, and on `401 Unauthorized`
// renews it through the single-flight refresh coordinator and replays the
// request exactly once.
//
// Requests sent without a credential are never retried, so anonymous
// traffic cannot cause refresh storms. A refresh failure is returned in
// place of the 401 and classifies as schema.ErrRefreshExhausted.
//
// The package also provides FileJar, a cookie jar persisted to disk, used
// to keep the long-lived refresh cookie and the session marker across
// process restarts.
package transport
