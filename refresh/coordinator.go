package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/authsession/credential"
	"github.com/viant/authsession/metrics"
	"github.com/viant/authsession/schema"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds a single remote refresh call.
const DefaultTimeout = 30 * time.Second

// errSuperseded is reported when a logout or a new login committed while
// the refresh was in flight.
var errSuperseded = errors.New("session replaced while refreshing")

// Issuer renews the access credential with the credential-issuing endpoint.
type Issuer interface {
	Refresh(ctx context.Context) (*oauth2.Token, error)
}

// Callback receives the outcome of a refresh: a credential or an error
// wrapping schema.ErrRefreshExhausted.
type Callback func(cred *credential.Credential, err error)

// Coordinator collapses concurrent refresh requests into a single remote
// call and fans its outcome out to every caller in arrival order.
type Coordinator struct {
	store    *credential.Store
	issuer   Issuer
	timeout  time.Duration
	logger   *slog.Logger
	mux      sync.Mutex
	inFlight bool
	waiters  []Callback
}

type outcome struct {
	cred *credential.Credential
	err  error
}

// Refresh renews the credential, joining the in-flight call if any, and
// blocks until it settles or ctx is done. Abandoning the wait does not
// cancel the shared call.
func (c *Coordinator) Refresh(ctx context.Context) (*credential.Credential, error) {
	return c.await(ctx, nil)
}

// RefreshStale renews a credential that the server rejected. When the
// store already moved past stale and no refresh is running, the current
// credential is returned without a remote call; if the session ended
// meanwhile the call fails with schema.ErrRefreshExhausted.
func (c *Coordinator) RefreshStale(ctx context.Context, stale *credential.Credential) (*credential.Credential, error) {
	return c.await(ctx, stale)
}

// RefreshAsync enqueues callback for the next outcome. Callbacks are
// invoked one by one, in enqueue order, on the goroutine settling the
// refresh; they must not block.
func (c *Coordinator) RefreshAsync(callback Callback) {
	c.enqueue(nil, callback)
}

// Trigger starts or joins a refresh in the background. Failures are
// logged only: the session silently becomes unauthenticated.
func (c *Coordinator) Trigger() {
	c.RefreshAsync(func(cred *credential.Credential, err error) {
		switch {
		case err == nil:
			c.logger.Debug("background refresh completed", "generation", cred.Generation)
		case errors.Is(err, schema.ErrUnauthorized), errors.Is(err, errSuperseded):
			c.logger.Debug("background refresh ended session", "error", err)
		default:
			c.logger.Warn("background refresh failed", "error", err)
		}
	})
}

// InFlight reports whether a remote refresh is outstanding.
func (c *Coordinator) InFlight() bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.inFlight
}

func (c *Coordinator) await(ctx context.Context, stale *credential.Credential) (*credential.Credential, error) {
	done := make(chan outcome, 1)
	settled, immediate := c.enqueue(stale, func(cred *credential.Credential, err error) {
		done <- outcome{cred: cred, err: err}
	})
	if immediate {
		return settled.cred, settled.err
	}
	select {
	case result := <-done:
		return result.cred, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) enqueue(stale *credential.Credential, callback Callback) (outcome, bool) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if stale != nil && !c.inFlight && c.store.Generation() != stale.Generation {
		if current := c.store.Get(); current != nil {
			return outcome{cred: current}, true
		}
		return outcome{err: fmt.Errorf("%w: %w", schema.ErrRefreshExhausted, errSuperseded)}, true
	}
	c.waiters = append(c.waiters, callback)
	if c.inFlight {
		metrics.RefreshWaiters.Inc()
		c.logger.Debug("joined in-flight refresh", "waiters", len(c.waiters))
		return outcome{}, false
	}
	c.inFlight = true
	metrics.RefreshInFlight.Inc()
	go c.run(c.store.Generation())
	return outcome{}, false
}

func (c *Coordinator) run(generation uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	token, err := c.issuer.Refresh(ctx)
	cancel()
	if err == nil && token == nil {
		err = schema.NewError(schema.ErrRejected, 0, "refresh returned no credential")
	}

	var cred *credential.Credential
	if err == nil {
		stored, ok := c.store.SetIf(generation, token)
		if ok {
			cred = stored
			metrics.RefreshCalls.WithLabelValues("success").Inc()
			c.logger.Debug("credential refreshed", "generation", stored.Generation)
		} else {
			err = fmt.Errorf("%w: %w", schema.ErrRefreshExhausted, errSuperseded)
			metrics.RefreshCalls.WithLabelValues("superseded").Inc()
			c.logger.Debug("discarded superseded refresh result")
		}
	} else {
		if _, ok := c.store.SetIf(generation, nil); !ok {
			c.logger.Debug("refresh failed after session was replaced", "error", err)
		}
		err = fmt.Errorf("%w: %w", schema.ErrRefreshExhausted, err)
		metrics.RefreshCalls.WithLabelValues("failure").Inc()
	}
	c.drain(cred, err)
}

// drain releases waiters in FIFO order, including those that arrive
// while draining, and only then returns to idle.
func (c *Coordinator) drain(cred *credential.Credential, err error) {
	for {
		c.mux.Lock()
		waiters := c.waiters
		c.waiters = nil
		if len(waiters) == 0 {
			c.inFlight = false
			metrics.RefreshInFlight.Dec()
			c.mux.Unlock()
			return
		}
		c.mux.Unlock()
		for _, waiter := range waiters {
			waiter(cred, err)
		}
	}
}

// New creates a coordinator committing refreshed credentials to store.
func New(store *credential.Store, issuer Issuer, options ...Option) *Coordinator {
	ret := &Coordinator{
		store:   store,
		issuer:  issuer,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
