package async

import "context"

type ctxKey string

const ctxSyncMode ctxKey = "sync-mode"

// WithSyncMode makes Dispatch run its handler inline on the calling
// goroutine. Tests use it to observe dispatched work deterministically.
func WithSyncMode(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxSyncMode, true)
}

func isSyncMode(ctx context.Context) bool {
	v, _ := ctx.Value(ctxSyncMode).(bool)
	return v
}
