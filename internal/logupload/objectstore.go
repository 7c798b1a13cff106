package logupload

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStoreConfig addresses the S3-compatible store backing latch:// paths.
type ObjectStoreConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
}

// Enabled reports whether an endpoint is configured.
func (c ObjectStoreConfig) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// Validate checks that every field needed to upload is present.
func (c ObjectStoreConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "endpoint")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "bucket")
	}
	if c.AccessKey == "" {
		missing = append(missing, "access_key")
	}
	if c.SecretKey == "" {
		missing = append(missing, "secret_key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("object store config missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// ObjectStoreUploader uploads latch:// locations into one bucket.
// latch://<host>/<path> maps to key "<host>/<path>"; latch:///<path> to "<path>".
type ObjectStoreUploader struct {
	client *minio.Client
	bucket string
}

// NewObjectStoreUploader creates an uploader backed by minio-go.
func NewObjectStoreUploader(cfg ObjectStoreConfig) (*ObjectStoreUploader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("object store client: %w", err)
	}
	return &ObjectStoreUploader{client: client, bucket: cfg.Bucket}, nil
}

// Upload puts localPath at the object key derived from remote.
func (u *ObjectStoreUploader) Upload(ctx context.Context, localPath, remote string) error {
	key, err := objectKey(remote)
	if err != nil {
		return err
	}
	_, err = u.client.FPutObject(ctx, u.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", u.bucket, key, err)
	}
	return nil
}

func objectKey(remote string) (string, error) {
	scheme, rest := ParseLocation(remote)
	if scheme != SchemeLatch {
		return "", fmt.Errorf("object store uploader: unsupported scheme %q", scheme)
	}
	host, p := splitHostPath(rest)
	key := path.Clean(path.Join(host, p))
	if key == "." || key == "" {
		return "", errors.New("object store uploader: empty object key")
	}
	return key, nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
