// Package user handles registration and authentication for clients and
// providers. Both account kinds share the token format; the role claim
// decides which routes and read models a token can reach.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	providerRepo "helper/database/repository/provider"
	userRepo "helper/database/repository/user"
	"helper/models"
	"helper/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// RegisterInput is shared by client and provider sign-up.
type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`

	// Provider-only fields.
	ServiceCategories []string         `json:"serviceCategories,omitempty"`
	Location          *models.GeoPoint `json:"location,omitempty"`
}

// AuthResult carries the signed token back to the app.
type AuthResult struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Service covers account lifecycle for both roles.
type Service interface {
	RegisterClient(ctx context.Context, in RegisterInput) (*AuthResult, error)
	RegisterProvider(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password, role string) (*AuthResult, error)
	GetClient(ctx context.Context, id string) (*models.User, error)
	GetProvider(ctx context.Context, id string) (*models.Provider, error)
	UpdateFCMToken(ctx context.Context, id, role, token string) error
}

type DefaultUserService struct {
	Users     userRepo.Repository
	Providers providerRepo.Repository
	Logger    *zap.Logger
}

func NewUserService(users userRepo.Repository, providers providerRepo.Repository, logger *zap.Logger) *DefaultUserService {
	return &DefaultUserService{Users: users, Providers: providers, Logger: logger}
}

func (s *DefaultUserService) RegisterClient(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, userRepo.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         models.RoleClient,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.Logger.Info("client registered", zap.String("userId", u.ID))
	return s.issueToken(ctx, u.ID, u.Name, models.RoleClient)
}

func (s *DefaultUserService) RegisterProvider(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.Providers.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, providerRepo.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if len(in.ServiceCategories) == 0 {
		return nil, errors.New("provider needs at least one service category")
	}
	if in.Location == nil || !in.Location.Valid() {
		return nil, errors.New("provider needs a valid location")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	p := &models.Provider{
		ID:                uuid.NewString(),
		Name:              strings.TrimSpace(in.Name),
		Email:             email,
		Phone:             strings.TrimSpace(in.Phone),
		Status:            models.ProviderActive,
		ServiceCategories: in.ServiceCategories,
		LocationGeo:       *in.Location,
		PasswordHash:      hash,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Providers.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	s.Logger.Info("provider registered", zap.String("providerId", p.ID))
	return s.issueToken(ctx, p.ID, p.Name, models.RoleProvider)
}

func (s *DefaultUserService) Login(ctx context.Context, email, password, role string) (*AuthResult, error) {
	email = normalizeEmail(email)

	var (
		id, name, hash string
	)
	switch role {
	case models.RoleProvider:
		p, err := s.Providers.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, providerRepo.ErrNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}
		id, name, hash = p.ID, p.Name, p.PasswordHash
	default:
		u, err := s.Users.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, userRepo.ErrNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}
		id, name, hash = u.ID, u.Name, u.PasswordHash
		role = models.RoleClient
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(ctx, id, name, role)
}

func (s *DefaultUserService) GetClient(ctx context.Context, id string) (*models.User, error) {
	return s.Users.GetByID(ctx, id)
}

func (s *DefaultUserService) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	return s.Providers.GetByID(ctx, id)
}

func (s *DefaultUserService) UpdateFCMToken(ctx context.Context, id, role, token string) error {
	if role == models.RoleProvider {
		return s.Providers.UpdateFCMToken(ctx, id, token)
	}
	return s.Users.UpdateFCMToken(ctx, id, token)
}

// issueToken signs a JWT and registers its hash in the auth cache so the
// middleware can reject revoked tokens.
func (s *DefaultUserService) issueToken(ctx context.Context, id, name, role string) (*AuthResult, error) {
	token, err := utils.GenerateToken(id, role, tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	key := utils.AuthCachePrefix + utils.HashToken(token)
	if err := utils.GetAuthCacheClient().Set(ctx, key, id, tokenTTL).Err(); err != nil {
		return nil, fmt.Errorf("cache token: %w", err)
	}
	return &AuthResult{Token: token, ID: id, Name: name, Role: role}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
