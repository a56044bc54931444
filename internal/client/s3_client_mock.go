package client

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MockS3Client implements S3ClientInterface for testing without AWS
// credentials. Function fields override the default behavior.
type MockS3Client struct {
	Bucket string
	Region string

	GenerateFileKeyFunc func(projectID uuid.UUID, fileName string) string
	PresignUploadFunc   func(ctx context.Context, key, contentType string) (string, error)
	PresignDownloadFunc func(ctx context.Context, key, fileName string) (string, error)
	DeleteFileFunc      func(ctx context.Context, key string) error

	// DeletedKeys records every key passed to DeleteFile
	DeletedKeys []string
}

// NewMockS3Client creates a new mock S3 client for testing
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Bucket: "test-bucket",
		Region: "us-east-1",
	}
}

// GenerateFileKey builds a storage key in the production format
func (m *MockS3Client) GenerateFileKey(projectID uuid.UUID, fileName string) string {
	if m.GenerateFileKeyFunc != nil {
		return m.GenerateFileKeyFunc(projectID, fileName)
	}
	return fmt.Sprintf("projects/%s/%s-%s", projectID, uuid.New(), fileName)
}

// PresignUpload returns a deterministic fake PUT URL
func (m *MockS3Client) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	if m.PresignUploadFunc != nil {
		return m.PresignUploadFunc(ctx, key, contentType)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s?X-Amz-Signature=mock", m.Bucket, m.Region, key), nil
}

// PresignDownload returns a deterministic fake GET URL
func (m *MockS3Client) PresignDownload(ctx context.Context, key, fileName string) (string, error) {
	if m.PresignDownloadFunc != nil {
		return m.PresignDownloadFunc(ctx, key, fileName)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s?X-Amz-Signature=mock&response-content-disposition=attachment", m.Bucket, m.Region, key), nil
}

// DeleteFile records the deleted key and succeeds unless overridden
func (m *MockS3Client) DeleteFile(ctx context.Context, key string) error {
	if m.DeleteFileFunc != nil {
		if err := m.DeleteFileFunc(ctx, key); err != nil {
			return err
		}
	}
	m.DeletedKeys = append(m.DeletedKeys, key)
	return nil
}

// Ensure MockS3Client implements S3ClientInterface
var _ S3ClientInterface = (*MockS3Client)(nil)
