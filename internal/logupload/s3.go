package logupload

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures uploads to s3://bucket/key locations.
// Credentials come from the standard AWS chain.
type S3Config struct {
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"` // optional, for S3-compatible services
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// S3Uploader uploads through the AWS SDK transfer manager.
type S3Uploader struct {
	uploader *manager.Uploader
}

// NewS3Uploader loads the default AWS configuration and returns an uploader.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3Uploader{uploader: manager.NewUploader(client)}, nil
}

// Upload copies localPath to the s3:// location remote.
func (u *S3Uploader) Upload(ctx context.Context, localPath, remote string) error {
	bucket, key, err := s3BucketKey(remote)
	if err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("s3 uploader: %w", err)
	}
	defer f.Close()

	_, err = u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return fmt.Errorf("s3 put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func s3BucketKey(remote string) (bucket, key string, err error) {
	scheme, rest := ParseLocation(remote)
	if scheme != SchemeS3 {
		return "", "", fmt.Errorf("s3 uploader: unsupported scheme %q", scheme)
	}
	bucket, key = splitHostPath(rest)
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uploader: location %q needs both bucket and key", remote)
	}
	return bucket, key, nil
}
