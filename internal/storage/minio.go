package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/clinicmgr/clinic-api/internal/config"
)

// uploads stream in 10 MB parts so payload size never needs to be known
// up front
const uploadPartSize = 10 * 1024 * 1024

// minioStore stores payloads in an S3-compatible bucket. With an
// IPFS-backed provider (Filebase) the public URL is built from the content
// CID the provider attaches to the object; otherwise it falls back to the
// plain bucket path.
type minioStore struct {
	client  *minio.Client
	bucket  string
	gateway string
}

func NewMinioStore(cfg config.ObjectStoreConfig) (ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	return &minioStore{
		client:  client,
		bucket:  cfg.Bucket,
		gateway: cfg.Gateway,
	}, nil
}

func (s *minioStore) Upload(ctx context.Context, objectName, contentType string, payload io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, payload, -1,
		minio.PutObjectOptions{
			ContentType: contentType,
			PartSize:    uploadPartSize,
		})
	if err != nil {
		return "", fmt.Errorf("object upload failed: %w", err)
	}

	if s.gateway == "" {
		return fmt.Sprintf("https://%s/%s/%s", s.client.EndpointURL().Host, s.bucket, objectName), nil
	}

	stat, err := s.client.StatObject(ctx, s.bucket, objectName, minio.StatObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to stat uploaded object: %w", err)
	}

	cid := stat.Metadata.Get("X-Amz-Meta-Cid")
	if cid == "" {
		return "", fmt.Errorf("uploaded object has no content CID")
	}

	return fmt.Sprintf("https://%s/ipfs/%s", s.gateway, cid), nil
}

func (s *minioStore) Remove(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("object removal failed: %w", err)
	}
	return nil
}
