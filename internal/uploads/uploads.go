// Package uploads stores product images in S3-compatible object storage.
package uploads

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Provider stores an uploaded object and returns its public URL.
type Provider interface {
	Store(ctx context.Context, filename, contentType string, size int64, body io.Reader) (string, error)
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool

	// PublicURL overrides the URL base returned for stored objects, for
	// deployments where the bucket sits behind a CDN. Defaults to the
	// endpoint itself.
	PublicURL string
}

// MinioProvider implements Provider over any S3-compatible endpoint.
type MinioProvider struct {
	client  *minio.Client
	bucket  string
	urlBase string
}

func NewMinioProvider(cfg Config) (*MinioProvider, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	urlBase := cfg.PublicURL
	if urlBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		urlBase = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinioProvider{
		client:  client,
		bucket:  cfg.Bucket,
		urlBase: strings.TrimRight(urlBase, "/"),
	}, nil
}

// Store writes the object under a random name that keeps the original
// extension, so uploads never overwrite each other.
func (p *MinioProvider) Store(ctx context.Context, filename, contentType string, size int64, body io.Reader) (string, error) {
	objectName := uuid.NewString() + strings.ToLower(path.Ext(filename))

	_, err := p.client.PutObject(ctx, p.bucket, objectName, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object: %w", err)
	}

	return p.urlBase + "/" + objectName, nil
}
