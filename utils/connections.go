package utils

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/cenkalti/backoff"
	log "github.com/sirupsen/logrus"
)

func CreateGcsConnection(ctx context.Context) (*storage.Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, pfx.Err(err)
	}

	log.Debug("Using Google Cloud Storage client")

	return client, nil
}

// NewRetryBackOff builds the exponential backoff used around object
// storage reads. maxRetries of 0 disables retrying.
func NewRetryBackOff(ctx context.Context, maxRetries uint64) backoff.BackOff {
	retryBackoff := backoff.NewExponentialBackOff()
	return backoff.WithContext(backoff.WithMaxRetries(retryBackoff, maxRetries), ctx)
}
