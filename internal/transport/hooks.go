package transport

import "context"

type acceptedKey struct{}

// OnAccepted returns a context whose requests call fn once the backend has
// answered with a success status, before the response body is read.
func OnAccepted(ctx context.Context, fn func()) context.Context {
	return context.WithValue(ctx, acceptedKey{}, fn)
}

// NotifyAccepted runs the hook installed by OnAccepted, if any.
func NotifyAccepted(ctx context.Context) {
	if fn, ok := ctx.Value(acceptedKey{}).(func()); ok && fn != nil {
		fn()
	}
}
