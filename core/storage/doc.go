// Package storage wraps the MinIO client used to back up the library document to any
// S3 compatible service.
//
// The Client interface narrows the MinIO API to the calls backups make, which keeps
// them mockable (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
