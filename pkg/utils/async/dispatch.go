package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/utils/errors"
)

// Dispatch executes a handler function asynchronously with proper context and panic recovery
// If sync mode is enabled in the context, the handler will be executed synchronously
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	if isSyncMode(ctx) {
		if err := handler(ctx); err != nil {
			errors.Handle(ctx, err)
		}
		return
	}

	newCtx := newBackgroundContext(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				err := goerr.New("panic in async handler",
					goerr.V("recover", r),
					goerr.V("stack", string(stack)),
				)
				errors.Handle(newCtx, err)
			}
		}()

		if err := handler(newCtx); err != nil {
			errors.Handle(newCtx, err)
		}
	}()
}

// newBackgroundContext creates a new background context preserving important values
func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := context.Background()

	logger := ctxlog.From(ctx)
	newCtx = ctxlog.With(newCtx, logger)

	return newCtx
}
