package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
)

var ErrNotInitialized = errors.New("minio archive not initialized")

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Archive mirrors downloaded files into an object store bucket, one prefix
// per user.
type Archive struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// New connects to MinIO and creates the bucket when missing.
func New(ctx context.Context, cfg Config, l *slog.Logger) (*Archive, error) {
	l = logger.Component(l, "minio")

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		l.Info("created bucket", "bucket", cfg.Bucket)
	}

	l.Info("connected to MinIO", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &Archive{client: client, bucket: cfg.Bucket, logger: l}, nil
}

// ObjectName is the key a user's stored file is archived under.
func ObjectName(userID uuid.UUID, stored string) string {
	return path.Join(userID.String(), stored)
}

// UserPrefix is the key prefix holding every object of a user.
func UserPrefix(userID uuid.UUID) string {
	return userID.String() + "/"
}

func (a *Archive) CheckConnection(ctx context.Context) error {
	if a == nil || a.client == nil {
		return ErrNotInitialized
	}
	_, err := a.client.BucketExists(ctx, a.bucket)
	return err
}

func (a *Archive) Upload(ctx context.Context, localPath, objectName, contentType string) error {
	if a == nil || a.client == nil {
		return ErrNotInitialized
	}
	_, err := a.client.FPutObject(ctx, a.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", objectName, err)
	}
	return nil
}

func (a *Archive) Remove(ctx context.Context, objectName string) error {
	if a == nil || a.client == nil {
		return ErrNotInitialized
	}
	return a.client.RemoveObject(ctx, a.bucket, objectName, minio.RemoveObjectOptions{})
}

// RemovePrefix deletes every object under prefix and returns how many were
// removed.
func (a *Archive) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	if a == nil || a.client == nil {
		return 0, ErrNotInitialized
	}

	objects := a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	toDelete := make(chan minio.ObjectInfo)
	listErr := make(chan error, 1)
	count := 0
	go func() {
		defer close(toDelete)
		for obj := range objects {
			if obj.Err != nil {
				listErr <- obj.Err
				return
			}
			count++
			toDelete <- obj
		}
		listErr <- nil
	}()

	var removeErr error
	for res := range a.client.RemoveObjects(ctx, a.bucket, toDelete, minio.RemoveObjectsOptions{}) {
		if res.Err != nil && removeErr == nil {
			a.logger.Error("failed to delete object", "object", res.ObjectName, "error", res.Err)
			removeErr = res.Err
		}
	}
	if err := <-listErr; err != nil {
		return count, fmt.Errorf("list %s: %w", prefix, err)
	}
	if removeErr != nil {
		return count, removeErr
	}

	a.logger.Info("deleted objects", "prefix", prefix, "count", count)
	return count, nil
}
