package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/viant/authsession/credential"
	"github.com/viant/authsession/metrics"
	"github.com/viant/authsession/schema"
)

// Credentials is the capability the interceptor needs from a session.
type Credentials interface {
	// Credential returns the credential to attach, or nil.
	Credential() *credential.Credential
	// RefreshStale renews a credential that the server rejected.
	RefreshStale(ctx context.Context, stale *credential.Credential) (*credential.Credential, error)
}

// RoundTripper attaches the session credential to outbound requests and
// transparently renews it once when the server answers 401.
type RoundTripper struct {
	credentials Credentials
	transport   http.RoundTripper
	logger      *slog.Logger
}

func New(credentials Credentials, options ...Option) *RoundTripper {
	ret := &RoundTripper{
		credentials: credentials,
		transport:   http.DefaultTransport,
		logger:      slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// 1) Send with whatever credential is current, possibly none.
	attached := r.credentials.Credential()
	body, err := bodySource(req)
	if err != nil {
		return nil, err
	}
	resp, err := r.send(req, body, attached)
	if err != nil {
		return nil, err
	}

	// 2) Anything but 401 goes back untouched.
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	// Anonymous traffic never triggers a refresh.
	if attached == nil {
		return resp, nil
	}
	ctx := req.Context()
	if IsRetried(ctx) {
		return resp, nil
	}
	discard(resp)

	// 3) Renew (or join the renewal in flight), then replay exactly once.
	refreshed, err := r.credentials.RefreshStale(ctx, attached)
	if err != nil {
		r.logger.Debug("refresh after 401 failed", "url", req.URL.Redacted(), "error", err)
		return nil, err
	}
	metrics.RequestRetries.WithLabelValues("unauthorized").Inc()
	retry := req.WithContext(WithRetried(ctx))
	return r.send(retry, body, refreshed)
}

// send issues req with cred attached, retrying a transport failure once.
func (r *RoundTripper) send(req *http.Request, body func() (io.ReadCloser, error), cred *credential.Credential) (*http.Response, error) {
	outbound, err := clone(req, body)
	if err != nil {
		return nil, err
	}
	if cred != nil {
		cred.Token.SetAuthHeader(outbound)
	}
	resp, err := r.transport.RoundTrip(outbound)
	if err == nil {
		return resp, nil
	}
	if ctxErr := req.Context().Err(); ctxErr != nil {
		return nil, ctxErr
	}
	r.logger.Debug("transport failure, retrying once", "url", req.URL.Redacted(), "error", err)
	if outbound, err = clone(req, body); err != nil {
		return nil, err
	}
	if cred != nil {
		cred.Token.SetAuthHeader(outbound)
	}
	metrics.RequestRetries.WithLabelValues("network").Inc()
	if resp, err = r.transport.RoundTrip(outbound); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, schema.NewNetworkFailure(err)
	}
	return resp, nil
}

func discard(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
