package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the connection settings for object storage.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Minio stores documents as objects in a single bucket, implementing the
// same contract as the filesystem store with LastModified standing in for
// file mtime.
type Minio struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// NewMinio connects to object storage and ensures the bucket exists.
func NewMinio(ctx context.Context, cfg MinioConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &Minio{client: client, bucket: cfg.Bucket, now: time.Now}, nil
}

func (m *Minio) Save(ctx context.Context, data []byte) (string, error) {
	filename := fmt.Sprintf("document_%d.docx", m.now().UnixMilli())
	_, err := m.client.PutObject(ctx, m.bucket, filename, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: DocumentContentType,
	})
	if err != nil {
		return "", fmt.Errorf("put document: %w", err)
	}
	return filename, nil
}

func (m *Minio) Get(ctx context.Context, filename string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}

func (m *Minio) Latest(ctx context.Context) (string, error) {
	var latest string
	var latestMod time.Time
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: "document_"}) {
		if obj.Err != nil {
			log.Printf("store: list bucket %s: %v", m.bucket, obj.Err)
			return "", ErrEmpty
		}
		if !ValidFilename(obj.Key) {
			continue
		}
		if latest == "" || obj.LastModified.After(latestMod) {
			latest = obj.Key
			latestMod = obj.LastModified
		}
	}
	if latest == "" {
		return "", ErrEmpty
	}
	return latest, nil
}

func (m *Minio) Ping(ctx context.Context) error {
	if _, err := m.client.BucketExists(ctx, m.bucket); err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	return nil
}
