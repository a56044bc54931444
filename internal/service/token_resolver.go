package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"signoff-api/internal/domain"
	"signoff-api/internal/repository"
	"signoff-api/internal/response"
)

// Identity is the typed result of resolving a capability token. It is
// threaded explicitly into subsequent calls instead of being attached
// to ambient request state.
type Identity struct {
	ProjectID uuid.UUID
	Role      domain.ActorRole
}

// TokenResolver maps an opaque capability token to a project identity
// and role
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}

// tokenResolverImpl resolves tokens against the project table
type tokenResolverImpl struct {
	projectRepo repository.ProjectRepository
}

// NewTokenResolver creates a new TokenResolver
func NewTokenResolver(projectRepo repository.ProjectRepository) TokenResolver {
	return &tokenResolverImpl{projectRepo: projectRepo}
}

// Resolve looks up a project whose admin or public token matches.
// The returned NotFound error deliberately does not reveal which token
// type was tried; callers map it to an authorization failure.
func (r *tokenResolverImpl) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, response.NewAppError(response.ErrCodeUnauthorized, "Token is required", "")
	}

	project, err := r.projectRepo.FindByEitherToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, response.NewAppError(response.ErrCodeNotFound, "Project not found", "")
		}
		return Identity{}, err
	}

	role := domain.ActorRoleClient
	if token == project.AdminToken {
		role = domain.ActorRoleAdmin
	}

	return Identity{ProjectID: project.ID, Role: role}, nil
}
