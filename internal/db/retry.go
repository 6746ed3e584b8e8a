package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Operation is one attempt of a write. It is called again with a fresh attempt number
// when the previous attempt hit a unique index.
type Operation func(attempt int) error

const DefaultMaxRetries = 3

// Try runs op, retrying DefaultMaxRetries times on duplicate key errors.
func Try(ctx context.Context, op Operation) error {
	return WithRetries(ctx, op, DefaultMaxRetries, IsMongoDuplicateKeyError)
}

// WithRetries runs op up to maxRetries+1 times. Only errors matched by retryable are retried;
// anything else is returned immediately.
func WithRetries(ctx context.Context, op Operation, maxRetries int, retryable func(error) bool) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = op(attempt); err == nil {
			return nil
		}
		if attempt == maxRetries || !retryable(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(50*(attempt+1)) * time.Millisecond):
		}
	}
	return err
}

// IsMongoDuplicateKeyError reports whether err carries write error code 11000.
func IsMongoDuplicateKeyError(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}
