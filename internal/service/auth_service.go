package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/validation"
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Name            string `json:"name" form:"name" validate:"required,min=2,max=50"`
	Email           string `json:"email" form:"email" validate:"required,email,max=254"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"required"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User      model.PublicUser `json:"user"`
	Token     string           `json:"token"`
	SessionID string           `json:"-"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Profile(ctx context.Context, id uuid.UUID) (*model.PublicUser, error)
	// Logout destroys the session and revokes the bearer token. Either may
	// be absent.
	Logout(ctx context.Context, sessionID string, claims *auth.Claims) error
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	sessions   auth.SessionStoreInterface
	bcryptCost int
	dummyHash  []byte
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, sessions auth.SessionStoreInterface, bcryptCost int) (AuthService, error) {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	// Compared against when the e-mail is unknown so both failure paths
	// spend the same time in bcrypt.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &authService{
		users:      users,
		jwtService: jwtService,
		sessions:   sessions,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with the "user" role and signs it in.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperrors.Validation("", apperrors.FieldError{
			Field:   "confirmPassword",
			Message: MsgPasswordMismatch,
		})
	}

	taken, err := s.users.EmailTaken(ctx, in.Email, nil)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if taken {
		return nil, apperrors.Conflict(MsgUserExists, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			return nil, apperrors.Conflict(MsgUserExists, err)
		}
		return nil, apperrors.Internal(err)
	}

	return s.signIn(ctx, user)
}

// Login authenticates by e-mail and password. Unknown e-mails and wrong
// passwords fail identically.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindActiveByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, apperrors.AuthenticationFailed()
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.AuthenticationFailed()
	}

	return s.signIn(ctx, user)
}

func (s *authService) signIn(ctx context.Context, user *model.User) (*AuthResult, error) {
	public := user.Public()

	token, err := s.jwtService.GenerateToken(public.SessionUser())
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("generate token: %w", err))
	}
	sessionID, err := s.sessions.Create(ctx, public.SessionUser())
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &AuthResult{User: public, Token: token, SessionID: sessionID}, nil
}

// Profile returns the public projection of an active user.
func (s *authService) Profile(ctx context.Context, id uuid.UUID) (*model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, MsgUserNotFound)
	}
	if !user.IsActive {
		return nil, apperrors.NotFound(MsgUserNotFound)
	}
	public := user.Public()
	return &public, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string, claims *auth.Claims) error {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return apperrors.Internal(err)
	}
	if claims != nil && claims.ID != "" {
		ttl := s.jwtService.RemainingLifetime(claims)
		if err := s.sessions.BlacklistToken(ctx, claims.ID, ttl); err != nil {
			return apperrors.Internal(err)
		}
	}
	return nil
}
