package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"signoff-api/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.Project{},
		&domain.Attachment{},
		&domain.Decision{},
		&domain.AuditLog{},
		&domain.OrphanedObject{},
	))

	return db
}

func seedProject(t *testing.T, db *gorm.DB, name string) *domain.Project {
	t.Helper()

	project := &domain.Project{
		BaseModel:   domain.BaseModel{ID: uuid.New()},
		Name:        name,
		AdminToken:  domain.NewCapabilityToken(),
		PublicToken: domain.NewCapabilityToken(),
		Status:      domain.ProjectStatusPending,
	}
	require.NoError(t, NewProjectRepository(db).Create(context.Background(), project))
	return project
}

func TestProjectRepository_FindByEitherToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	project := seedProject(t, db, "Logo Redesign")

	byAdmin, err := repo.FindByEitherToken(ctx, project.AdminToken)
	require.NoError(t, err)
	assert.Equal(t, project.ID, byAdmin.ID)

	byPublic, err := repo.FindByEitherToken(ctx, project.PublicToken)
	require.NoError(t, err)
	assert.Equal(t, project.ID, byPublic.ID)

	_, err = repo.FindByEitherToken(ctx, "no-such-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProjectRepository_FindByAdminTokenWithRelations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepository(db)
	auditRepo := NewAuditLogRepository(db)
	ctx := context.Background()

	project := seedProject(t, db, "Logo Redesign")

	require.NoError(t, db.Create(&domain.Attachment{
		BaseModel:  domain.BaseModel{ID: uuid.New()},
		ProjectID:  project.ID,
		FileName:   "logo.png",
		MimeType:   "image/png",
		Size:       2048,
		StorageKey: "projects/x/logo.png",
	}).Error)

	older := &domain.AuditLog{
		BaseModel: domain.BaseModel{ID: uuid.New(), CreatedAt: time.Now().UTC().Add(-time.Hour)},
		ProjectID: project.ID,
		Action:    domain.LogActionProjectCreated,
		ActorRole: domain.ActorRoleAdmin,
	}
	newer := &domain.AuditLog{
		BaseModel: domain.BaseModel{ID: uuid.New(), CreatedAt: time.Now().UTC()},
		ProjectID: project.ID,
		Action:    domain.LogActionClientViewed,
		ActorRole: domain.ActorRoleClient,
	}
	require.NoError(t, auditRepo.Create(ctx, older))
	require.NoError(t, auditRepo.Create(ctx, newer))

	loaded, err := repo.FindByAdminTokenWithRelations(ctx, project.AdminToken)
	require.NoError(t, err)

	require.NotNil(t, loaded.Attachment)
	assert.Equal(t, "logo.png", loaded.Attachment.FileName)

	// Audit trail comes back newest first
	require.Len(t, loaded.AuditLogs, 2)
	assert.Equal(t, domain.LogActionClientViewed, loaded.AuditLogs[0].Action)
	assert.Equal(t, domain.LogActionProjectCreated, loaded.AuditLogs[1].Action)
}

func TestDecisionRepository_FindLatestByProjectID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDecisionRepository(db)
	ctx := context.Background()

	project := seedProject(t, db, "Logo Redesign")

	_, err := repo.FindLatestByProjectID(ctx, project.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	first := &domain.Decision{
		BaseModel: domain.BaseModel{ID: uuid.New(), CreatedAt: time.Now().UTC().Add(-time.Minute)},
		ProjectID: project.ID,
		Type:      domain.DecisionChangesRequested,
		Comment:   "Bigger logo",
		ActorRole: domain.ActorRoleClient,
	}
	second := &domain.Decision{
		BaseModel: domain.BaseModel{ID: uuid.New(), CreatedAt: time.Now().UTC()},
		ProjectID: project.ID,
		Type:      domain.DecisionApproved,
		Comment:   "Great",
		ActorRole: domain.ActorRoleClient,
	}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	latest, err := repo.FindLatestByProjectID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionApproved, latest.Type)
}

func TestAttachmentRepository_ScopedLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttachmentRepository(db)
	ctx := context.Background()

	owner := seedProject(t, db, "Owner")
	other := seedProject(t, db, "Other")

	attachment := &domain.Attachment{
		BaseModel:  domain.BaseModel{ID: uuid.New()},
		ProjectID:  owner.ID,
		FileName:   "file.pdf",
		MimeType:   "application/pdf",
		Size:       1024,
		StorageKey: "projects/x/file.pdf",
	}
	require.NoError(t, repo.Create(ctx, attachment))

	found, err := repo.FindByIDAndProjectID(ctx, attachment.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, attachment.ID, found.ID)

	_, err = repo.FindByIDAndProjectID(ctx, attachment.ID, other.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrphanedObjectRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrphanedObjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, "projects/x/stale.png"))

	pending, err := repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 0, pending[0].Attempts)

	require.NoError(t, repo.MarkAttempt(ctx, pending[0].ID))

	pending, err = repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)

	require.NoError(t, repo.Delete(ctx, pending[0].ID))

	pending, err = repo.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
