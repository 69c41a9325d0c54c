package errors

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs an error that has no caller left to return it to, such as a
// failure on a dispatched background task. Values attached via goerr are
// promoted to log attributes.
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	attrs := []any{slog.Any("error", err)}
	if goErr := goerr.Unwrap(err); goErr != nil {
		for k, v := range goErr.Values() {
			attrs = append(attrs, slog.Any(k, v))
		}
	}

	ctxlog.From(ctx).Error("error occurred", attrs...)
}
