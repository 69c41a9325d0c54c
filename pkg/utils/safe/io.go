package safe

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/utils/errors"
)

// Close closes c and routes a close failure to the error handler instead of
// dropping it. Meant for defer sites where the error cannot be returned.
func Close(ctx context.Context, c io.Closer) {
	if err := c.Close(); err != nil {
		errors.Handle(ctx, goerr.Wrap(err, "close failed"))
	}
}

// Write writes data to w and routes a write failure to the error handler
func Write(ctx context.Context, w io.Writer, data []byte) {
	if _, err := w.Write(data); err != nil {
		errors.Handle(ctx, goerr.Wrap(err, "write failed",
			goerr.V("bytes", len(data))))
	}
}
