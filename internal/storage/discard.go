package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// CleanupTimeout bounds compensation deletes issued after a failed write.
const CleanupTimeout = 10 * time.Second

// Upload is one file received from a client.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Discard deletes handles on a context detached from ctx's cancellation, so
// an aborted request still removes what it stored. Empty handles are skipped.
func Discard(ctx context.Context, media Media, handles ...string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CleanupTimeout)
	defer cancel()

	var errs []error
	for _, handle := range handles {
		if handle == "" {
			continue
		}
		if err := media.Delete(ctx, handle); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
