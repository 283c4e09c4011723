package transport

import "context"

type (
	contextRetryKey string
)

const (
	ContextRetriedKey contextRetryKey = "retried"
)

// WithRetried marks a request context as already replayed after a refresh.
func WithRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, ContextRetriedKey, true)
}

// IsRetried reports whether the request was already replayed once.
func IsRetried(ctx context.Context) bool {
	if v := ctx.Value(ContextRetriedKey); v != nil {
		retried, _ := v.(bool)
		return retried
	}
	return false
}
