package bucket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
)

// toRemoveCh converts a string slice to a <-chan minio.ObjectInfo
func toRemoveCh(keys []string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		ch <- minio.ObjectInfo{Key: key}
	}
	close(ch)
	return ch
}

// DeleteFromBucket deletes objects from the bucket, reporting every failed key.
func (b *Bucket) DeleteFromBucket(ctx context.Context, objectKeys []string) error {
	var errs []error
	errorCh := b.cli.RemoveObjects(ctx, b.S3BucketName, toRemoveCh(objectKeys), minio.RemoveObjectsOptions{})
	for dErr := range errorCh {
		slog.Default().ErrorContext(ctx, "failed to delete object from s3 bucket",
			slog.String("object_key", dErr.ObjectName),
			slog.String("err", dErr.Err.Error()),
		)
		errs = append(errs, fmt.Errorf("%s: %w", dErr.ObjectName, dErr.Err))
	}
	return errors.Join(errs...)
}
