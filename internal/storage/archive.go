package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"homecare/models"
)

// Archive keeps a JSON copy of every matching result in S3-compatible
// storage, one object per request. Results are immutable: a key that already
// exists is never overwritten, so replays after a crash are harmless.
type Archive struct {
	client *minio.Client
	bucket string
	logger *log.Logger
}

func NewArchive(endpoint, accessKey, secretKey string, useSSL bool, bucket string, logger *log.Logger) (*Archive, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("archive storage is not fully configured")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create archive client: %w", err)
	}

	logger.Printf("connected to archive storage at %s", endpoint)
	return &Archive{client: client, bucket: bucket, logger: logger}, nil
}

// EnsureBucket creates the archive bucket if it does not exist yet.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", a.bucket, err)
		}
		a.logger.Printf("created archive bucket %s", a.bucket)
	}
	return nil
}

// StoreResult archives one matching result. Existing objects are left alone.
func (a *Archive) StoreResult(ctx context.Context, result models.MatchResult) error {
	key := objectKey(result.RequestID)

	_, err := a.client.StatObject(ctx, a.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		a.logger.Printf("result %s already archived, skipping", result.RequestID)
		return nil
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("check existing archive for %s: %w", result.RequestID, err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result %s: %w", result.RequestID, err)
	}

	_, err = a.client.PutObject(
		ctx,
		a.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("archive result %s: %w", result.RequestID, err)
	}

	a.logger.Printf("archived result %s under %s", result.RequestID, key)
	return nil
}

// LoadResult fetches a previously archived result.
func (a *Archive) LoadResult(ctx context.Context, requestID string) (*models.MatchResult, error) {
	object, err := a.client.GetObject(ctx, a.bucket, objectKey(requestID), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get archived result %s: %w", requestID, err)
	}
	defer object.Close()

	var result models.MatchResult
	if err := json.NewDecoder(object).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode archived result %s: %w", requestID, err)
	}
	return &result, nil
}

func objectKey(requestID string) string {
	return fmt.Sprintf("matches/%s.json", requestID)
}
