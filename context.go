package cfgtree

import "context"

type ctxKey int

const failFastKey ctxKey = iota

// WithFailFast marks the context so validation stops at the first issue
// instead of collecting all of them.
func WithFailFast(ctx context.Context) context.Context {
	return context.WithValue(ctx, failFastKey, true)
}

func failFast(ctx context.Context) bool {
	v, _ := ctx.Value(failFastKey).(bool)
	return v
}
