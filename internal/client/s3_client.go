package client

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appConfig "signoff-api/internal/config"
)

// Capability lifetimes enforced by the object store, independent of
// the issuing request
const (
	UploadURLExpiry   = 10 * time.Minute
	DownloadURLExpiry = 1 * time.Hour
)

// S3ClientInterface defines the object store operations the service needs
type S3ClientInterface interface {
	GenerateFileKey(projectID uuid.UUID, fileName string) string
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key, fileName string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

// S3Client wraps the AWS S3 client and implements S3ClientInterface
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	region        string
}

// NewS3Client creates a new S3 client. When cfg.Endpoint is set
// (MinIO, Cloudflare R2) explicit credentials and path-style
// addressing are used.
func NewS3Client(cfg *appConfig.S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	var awsCfg aws.Config
	var err error

	if cfg.Endpoint != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret key are required for custom endpoint")
		}
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)),
		)
	} else {
		// Default credential chain: IAM role on EC2, ~/.aws/credentials locally
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Client{
		client:        s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
	}, nil
}

// GenerateFileKey builds a globally-unique storage key.
// Format: projects/{projectId}/{uuid}-{filename}
func (c *S3Client) GenerateFileKey(projectID uuid.UUID, fileName string) string {
	return fmt.Sprintf("projects/%s/%s-%s", projectID, uuid.New(), fileName)
}

// PresignUpload generates a presigned PUT URL for the given key,
// valid for 10 minutes
func (c *S3Client) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	req, err := c.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = UploadURLExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign upload URL: %w", err)
	}
	return req.URL, nil
}

// PresignDownload generates a presigned GET URL for the given key,
// valid for 1 hour. The content disposition forces the browser to
// download with the original file name.
func (c *S3Client) PresignDownload(ctx context.Context, key, fileName string) (string, error) {
	req, err := c.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(c.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", fileName)),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = DownloadURLExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign download URL: %w", err)
	}
	return req.URL, nil
}

// DeleteFile deletes an object from the store
func (c *S3Client) DeleteFile(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}
	return nil
}

// Ensure S3Client implements S3ClientInterface
var _ S3ClientInterface = (*S3Client)(nil)
