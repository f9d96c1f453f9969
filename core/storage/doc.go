// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small interface so that run reports can be
// archived to AWS S3 or a self-hosted MinIO instance, and so that storage interactions
// can be mocked in unit tests (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
package storage
