package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signoff-api/internal/domain"
	"signoff-api/internal/dto"
	"signoff-api/internal/notifier"
	"signoff-api/internal/response"
)

// confirmRequest builds a ConfirmUploadRequest for tests
func confirmRequest(key, fileName, mimeType string, size int64) dto.ConfirmUploadRequest {
	return dto.ConfirmUploadRequest{
		Key:      key,
		FileName: fileName,
		MimeType: mimeType,
		Size:     size,
	}
}

func TestGetUploadURL(t *testing.T) {
	_, db, s3, n := newTestProjectService(t)
	storage := newTestStorageService(t, db, s3, n)
	projectID := uuid.New()

	result, err := storage.GetUploadURL(context.Background(), projectID, "logo.png", "image/png", 2048)
	require.NoError(t, err)

	assert.NotEmpty(t, result.UploadURL)
	assert.True(t, strings.HasPrefix(result.Key, "projects/"+projectID.String()+"/"))
	assert.True(t, strings.HasSuffix(result.Key, "-logo.png"))
	assert.Equal(t, 600, result.ExpiresIn)
}

func TestGetUploadURL_RejectsDisallowedMimeType(t *testing.T) {
	_, db, s3, n := newTestProjectService(t)
	storage := newTestStorageService(t, db, s3, n)

	_, err := storage.GetUploadURL(context.Background(), uuid.New(), "script.sh", "application/x-sh", 100)
	require.Error(t, err)

	appErr, ok := err.(*response.AppError)
	require.True(t, ok)
	assert.Equal(t, response.ErrCodeValidation, appErr.Code)
}

func TestGetUploadURL_RejectsOversizedFile(t *testing.T) {
	_, db, s3, n := newTestProjectService(t)
	storage := newTestStorageService(t, db, s3, n)

	_, err := storage.GetUploadURL(context.Background(), uuid.New(), "huge.pdf", "application/pdf", 51*1024*1024)
	require.Error(t, err)

	appErr, ok := err.(*response.AppError)
	require.True(t, ok)
	assert.Equal(t, response.ErrCodeValidation, appErr.Code)
}

func TestConfirmUpload_FirstFile(t *testing.T) {
	svc, db, s3, n := newTestProjectService(t)
	storage := newTestStorageService(t, db, s3, n)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "Brochure")
	require.NoError(t, err)

	attachment, err := storage.ConfirmUpload(ctx, project.ID, confirmRequest("projects/x/brochure.pdf", "brochure.pdf", "application/pdf", 1024))
	require.NoError(t, err)

	assert.Equal(t, project.ID, attachment.ProjectID)
	assert.Equal(t, "brochure.pdf", attachment.FileName)
	assert.Empty(t, s3.DeletedKeys)

	events := n.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, notifier.EventFileUpdated, events[len(events)-1].Event)
}

func TestConfirmUpload_ReplacesExistingFile(t *testing.T) {
	svc, db, s3, n := newTestProjectService(t)
	storage := newTestStorageService(t, db, s3, n)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "Brochure")
	require.NoError(t, err)

	_, err = storage.ConfirmUpload(ctx, project.ID, confirmRequest("projects/x/v1.pdf", "v1.pdf", "application/pdf", 1024))
	require.NoError(t, err)

	second, err := storage.ConfirmUpload(ctx, project.ID, confirmRequest("projects/x/v2.pdf", "v2.pdf", "application/pdf", 2048))
	require.NoError(t, err)

	// Exactly one attachment row survives, carrying the new metadata
	var attachments []domain.Attachment
	require.NoError(t, db.Where("project_id = ?", project.ID).Find(&attachments).Error)
	require.Len(t, attachments, 1)
	assert.Equal(t, second.ID, attachments[0].ID)
	assert.Equal(t, "v2.pdf", attachments[0].FileName)
	assert.Equal(t, "projects/x/v2.pdf", attachments[0].StorageKey)

	// The replaced object was deleted from the store
	assert.Equal(t, []string{"projects/x/v1.pdf"}, s3.DeletedKeys)
}

func TestConfirmUpload_FailedCleanupQueuesOrphan(t *testing.T) {
	svc, db, s3, n := newTestProjectService(t)
	storage := newTestStorageService(t, db, s3, n)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "Brochure")
	require.NoError(t, err)

	_, err = storage.ConfirmUpload(ctx, project.ID, confirmRequest("projects/x/v1.pdf", "v1.pdf", "application/pdf", 1024))
	require.NoError(t, err)

	s3.DeleteFileFunc = func(ctx context.Context, key string) error {
		return assert.AnError
	}

	// Replacement still succeeds; the stale key is queued for cleanup
	_, err = storage.ConfirmUpload(ctx, project.ID, confirmRequest("projects/x/v2.pdf", "v2.pdf", "application/pdf", 2048))
	require.NoError(t, err)

	var orphans []domain.OrphanedObject
	require.NoError(t, db.Find(&orphans).Error)
	require.Len(t, orphans, 1)
	assert.Equal(t, "projects/x/v1.pdf", orphans[0].StorageKey)

	var attachments []domain.Attachment
	require.NoError(t, db.Where("project_id = ?", project.ID).Find(&attachments).Error)
	require.Len(t, attachments, 1)
	assert.Equal(t, "projects/x/v2.pdf", attachments[0].StorageKey)
}

func TestConfirmUpload_RejectsMissingKey(t *testing.T) {
	_, db, s3, n := newTestProjectService(t)
	storage := newTestStorageService(t, db, s3, n)

	_, err := storage.ConfirmUpload(context.Background(), uuid.New(), confirmRequest("", "v1.pdf", "application/pdf", 1024))
	require.Error(t, err)

	appErr, ok := err.(*response.AppError)
	require.True(t, ok)
	assert.Equal(t, response.ErrCodeValidation, appErr.Code)
}

func TestGetDownloadURL(t *testing.T) {
	svc, db, s3, n := newTestProjectService(t)
	storage := newTestStorageService(t, db, s3, n)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "Brochure")
	require.NoError(t, err)

	attachment, err := storage.ConfirmUpload(ctx, project.ID, confirmRequest("projects/x/brochure.pdf", "brochure.pdf", "application/pdf", 1024))
	require.NoError(t, err)

	result, err := storage.GetDownloadURL(ctx, attachment.ID, project.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.URL)
	assert.Equal(t, "brochure.pdf", result.FileName)
}

func TestGetDownloadURL_CrossProjectIsNotFound(t *testing.T) {
	svc, db, s3, n := newTestProjectService(t)
	storage := newTestStorageService(t, db, s3, n)
	ctx := context.Background()

	owner, err := svc.CreateProject(ctx, "Owner")
	require.NoError(t, err)
	other, err := svc.CreateProject(ctx, "Other")
	require.NoError(t, err)

	attachment, err := storage.ConfirmUpload(ctx, owner.ID, confirmRequest("projects/x/file.pdf", "file.pdf", "application/pdf", 1024))
	require.NoError(t, err)

	// A file owned by another project is indistinguishable from a
	// missing one
	_, err = storage.GetDownloadURL(ctx, attachment.ID, other.ID)
	require.Error(t, err)

	appErr, ok := err.(*response.AppError)
	require.True(t, ok)
	assert.Equal(t, response.ErrCodeNotFound, appErr.Code)
}

func TestGetDownloadURL_PresignFailure(t *testing.T) {
	svc, db, s3, n := newTestProjectService(t)
	storage := newTestStorageService(t, db, s3, n)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "Brochure")
	require.NoError(t, err)

	attachment, err := storage.ConfirmUpload(ctx, project.ID, confirmRequest("projects/x/file.pdf", "file.pdf", "application/pdf", 1024))
	require.NoError(t, err)

	s3.PresignDownloadFunc = func(ctx context.Context, key, fileName string) (string, error) {
		return "", assert.AnError
	}

	_, err = storage.GetDownloadURL(ctx, attachment.ID, project.ID)
	require.Error(t, err)

	appErr, ok := err.(*response.AppError)
	require.True(t, ok)
	assert.Equal(t, response.ErrCodeStorage, appErr.Code)
}

func TestDeleteAttachment(t *testing.T) {
	svc, db, s3, n := newTestProjectService(t)
	storage := newTestStorageService(t, db, s3, n)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "Brochure")
	require.NoError(t, err)

	attachment, err := storage.ConfirmUpload(ctx, project.ID, confirmRequest("projects/x/file.pdf", "file.pdf", "application/pdf", 1024))
	require.NoError(t, err)

	require.NoError(t, storage.DeleteAttachment(ctx, attachment.ID, project.ID))

	var count int64
	require.NoError(t, db.Model(&domain.Attachment{}).Where("project_id = ?", project.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.Contains(t, s3.DeletedKeys, "projects/x/file.pdf")

	var auditCount int64
	require.NoError(t, db.Model(&domain.AuditLog{}).
		Where("project_id = ? AND action = ?", project.ID, domain.LogActionFileDeleted).
		Count(&auditCount).Error)
	assert.Equal(t, int64(1), auditCount)
}

func TestDeleteAttachment_FailedObjectDeleteStillRemovesRow(t *testing.T) {
	svc, db, s3, n := newTestProjectService(t)
	storage := newTestStorageService(t, db, s3, n)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "Brochure")
	require.NoError(t, err)

	attachment, err := storage.ConfirmUpload(ctx, project.ID, confirmRequest("projects/x/file.pdf", "file.pdf", "application/pdf", 1024))
	require.NoError(t, err)

	s3.DeleteFileFunc = func(ctx context.Context, key string) error {
		return assert.AnError
	}

	require.NoError(t, storage.DeleteAttachment(ctx, attachment.ID, project.ID))

	var count int64
	require.NoError(t, db.Model(&domain.Attachment{}).Count(&count).Error)
	assert.Zero(t, count)

	var orphans []domain.OrphanedObject
	require.NoError(t, db.Find(&orphans).Error)
	require.Len(t, orphans, 1)
	assert.Equal(t, "projects/x/file.pdf", orphans[0].StorageKey)
}

func TestListAttachments(t *testing.T) {
	svc, db, s3, n := newTestProjectService(t)
	storage := newTestStorageService(t, db, s3, n)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "Brochure")
	require.NoError(t, err)

	files, err := storage.ListAttachments(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = storage.ConfirmUpload(ctx, project.ID, confirmRequest("projects/x/file.pdf", "file.pdf", "application/pdf", 1024))
	require.NoError(t, err)

	files, err = storage.ListAttachments(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "file.pdf", files[0].FileName)
}
