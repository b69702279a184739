package service

import (
	"context"

	"github.com/google/uuid"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/validation"
)

// UserService exposes administrative user operations.
type UserService interface {
	List(ctx context.Context, page model.Page) (*model.PagedUsers, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	Update(ctx context.Context, id uuid.UUID, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo     repository.UserRepository
	sessions auth.SessionStoreInterface
}

// NewUserService builds a UserService with repository. Sessions of users
// who are demoted or deleted are revoked through sessions.
func NewUserService(repo repository.UserRepository, sessions auth.SessionStoreInterface) UserService {
	return &userService{repo: repo, sessions: sessions}
}

func (s *userService) List(ctx context.Context, page model.Page) (*model.PagedUsers, error) {
	users, total, err := s.repo.List(ctx, page.Offset(), page.Limit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.PagedUsers{Items: users, Pagination: model.NewPagination(page, total)}, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, MsgUserNotFound)
	}
	if !user.IsActive {
		return nil, apperrors.NotFound(MsgUserNotFound)
	}
	return user, nil
}

// Update applies patch to an active user. A new e-mail must not belong to
// another active user. A role change signs the user out everywhere.
func (s *userService) Update(ctx context.Context, id uuid.UUID, patch model.UserPatch) (*model.User, error) {
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		patch.Email = &email
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	if patch.Email != nil {
		taken, err := s.repo.EmailTaken(ctx, *patch.Email, &id)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if taken {
			return nil, apperrors.Conflict(MsgEmailExists, nil)
		}
	}

	var roleChanged bool
	if patch.Role != nil {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		roleChanged = current.Role != *patch.Role
	}

	user, err := s.repo.Patch(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, MsgUserNotFound)
	}
	if roleChanged {
		if err := s.sessions.RevokeUser(ctx, id); err != nil {
			return nil, apperrors.Internal(err)
		}
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return storeError(err, MsgUserNotFound)
	}
	if err := s.sessions.RevokeUser(ctx, id); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
