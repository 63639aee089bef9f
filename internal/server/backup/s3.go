// Package backup exports a user's stored credential records, still
// encrypted, to S3-compatible object storage.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// DefaultURLTTL is how long a download link stays valid.
const DefaultURLTTL = 15 * time.Minute

// Config addresses the bucket. Endpoint may point at MinIO; empty means AWS.
type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	Bucket    string
	URLTTL    time.Duration
}

// Result locates an uploaded snapshot.
type Result struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Exporter uploads snapshots and hands out presigned GET links.
type S3Exporter struct {
	client  objectPutter
	presign getPresigner
	bucket  string
	ttl     time.Duration
	now     func() time.Time
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3Exporter builds the S3 client with static credentials.
func NewS3Exporter(ctx context.Context, c Config) (*S3Exporter, error) {
	if c.Bucket == "" {
		return nil, fmt.Errorf("backup bucket is not configured")
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			// MinIO and most self-hosted stores do not do virtual-host buckets
			o.UsePathStyle = true
		}
	})

	ttl := c.URLTTL
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}

	return &S3Exporter{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  c.Bucket,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// StorageKey builds a unique object key for ownerID.
func StorageKey(ownerID string, now time.Time) string {
	return fmt.Sprintf("backups/%s/%d/%02d/%02d/%v.json", ownerID, now.Year(), now.Month(), now.Day(), uuid.New())
}

// Export stores data under a fresh key and returns a time-limited GET URL.
func (e *S3Exporter) Export(ctx context.Context, ownerID string, data []byte) (Result, error) {
	key := StorageKey(ownerID, e.now().UTC())

	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return Result{}, fmt.Errorf("put backup object: %w", err)
	}

	req, err := e.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(e.ttl))
	if err != nil {
		return Result{}, fmt.Errorf("presign backup object: %w", err)
	}

	return Result{Key: key, URL: req.URL}, nil
}
