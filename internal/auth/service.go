package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/config"
	"wanderly/internal/users"
	"wanderly/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error
	Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error)

	// ValidateToken parses an access token
	ValidateToken(token string) (*Claims, error)
}

type service struct {
	repo   users.Repository
	tokens *tokenIssuer
	log    *logger.Logger
}

func NewService(repo users.Repository, cfg *config.Config) Service {
	return &service{
		repo: repo,
		tokens: &tokenIssuer{
			secret:     []byte(cfg.JWT.Secret),
			accessTTL:  cfg.JWT.JWTExpiresIn,
			refreshTTL: cfg.JWT.RefreshExpiresIn,
			now:        time.Now,
		},
		log: logger.GetDefault(),
	}
}

func (s *service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	role, ok := req.role()
	if !ok {
		return nil, apperrors.InvalidArgument("role must be USER or VENDOR")
	}

	email := normalizeEmail(req.Email)
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("user with this email already exists")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &users.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Password:  hash,
		Role:      role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.session(user)
}

func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !passwordMatches(user.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	s.log.LogAuthSuccess(ctx, user.ID.String(), "password")
	return s.session(user)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.parse(refreshToken, TokenRefresh)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// re-read so a changed role or a deleted account takes effect
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	return s.tokens.issue(user)
}

func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !passwordMatches(user.Password, req.CurrentPassword) {
		return ErrInvalidCredentials
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	me := toUserResponse(user)
	return &me, nil
}

func (s *service) ValidateToken(token string) (*Claims, error) {
	return s.tokens.parse(token, TokenAccess)
}

func (s *service) session(user *users.User) (*AuthResponse, error) {
	pair, err := s.tokens.issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &AuthResponse{User: toUserResponse(user), TokenPair: *pair}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
