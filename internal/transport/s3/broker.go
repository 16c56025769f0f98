// Package s3 brokers time-limited capability URLs for catalog blobs.
package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	uploadExpiry   = 5 * time.Minute
	downloadExpiry = time.Hour
)

// Config holds blob store connection settings.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// presigner is the subset of s3.PresignClient the broker uses.
type presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput,
		opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput,
		opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Broker issues presigned upload and download URLs for a single bucket.
type Broker struct {
	presign presigner
	bucket  string
	now     func() time.Time
}

// NewBroker creates a blob access broker for the configured bucket.
func NewBroker(ctx context.Context, cfg Config) (*Broker, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Broker{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		now:     time.Now,
	}, nil
}

// IssueUploadURL returns a presigned PUT URL valid for five minutes, scoped
// to one object and one content type, together with the derived storage key.
// The key embeds a millisecond timestamp, which is unique enough at expected
// request rates; no dedup check is performed.
func (b *Broker) IssueUploadURL(ctx context.Context, fileName, contentType string) (url, key string, err error) {
	key = b.objectKey(fileName)

	req, err := b.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(o *s3.PresignOptions) {
		o.Expires = uploadExpiry
	})
	if err != nil {
		return "", "", fmt.Errorf("presign upload for %s: %w", key, err)
	}
	return req.URL, key, nil
}

// IssueDownloadURL returns a presigned read-only GET URL valid for one hour.
func (b *Broker) IssueDownloadURL(ctx context.Context, key string) (string, error) {
	req, err := b.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = downloadExpiry
	})
	if err != nil {
		return "", fmt.Errorf("presign download for %s: %w", key, err)
	}
	return req.URL, nil
}

func (b *Broker) objectKey(fileName string) string {
	return fmt.Sprintf("documents/%d_%s", b.now().UnixMilli(), fileName)
}
