package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
	"github.com/Nickflanagn24/bookstore/repository"
)

const accessTokenTTL = 24 * time.Hour

// RegisterInput carries the signup form.
type RegisterInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required,max=50"`
	LastName  string `json:"last_name" binding:"required,max=50"`
}

// LoginInput carries the login form.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResult is a signed token and the account it belongs to.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// AuthService handles account registration and login.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, *ServiceError)
	Login(ctx context.Context, input LoginInput) (*AuthResult, *ServiceError)
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, *ServiceError)
}

type authServiceImpl struct {
	users     repository.UserRepository
	jwtSecret string
	logger    *zap.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(users repository.UserRepository, jwtSecret string, logger *zap.Logger) AuthService {
	return &authServiceImpl{users: users, jwtSecret: jwtSecret, logger: logger}
}

func (s *authServiceImpl) Register(ctx context.Context, input RegisterInput) (*AuthResult, *ServiceError) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, &ServiceError{StatusCode: 409, Message: "An account with this email already exists"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to check existing account", zap.Error(err))
		return nil, internal("Failed to register")
	}

	user := &models.User{
		Email:     email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}
	if err := user.SetPassword(input.Password); err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, internal("Failed to register")
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ServiceError{StatusCode: 409, Message: "An account with this email already exists"}
		}
		s.logger.Error("Failed to create account", zap.Error(err))
		return nil, internal("Failed to register")
	}

	s.logger.Info("Account registered", zap.String("user_id", user.ID.String()))
	return s.issueToken(user)
}

func (s *authServiceImpl) Login(ctx context.Context, input LoginInput) (*AuthResult, *ServiceError) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 401, Message: "Invalid email or password"}
		}
		s.logger.Error("Failed to load account", zap.Error(err))
		return nil, internal("Failed to log in")
	}

	if !user.CheckPassword(input.Password) {
		return nil, &ServiceError{StatusCode: 401, Message: "Invalid email or password"}
	}

	return s.issueToken(user)
}

func (s *authServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, *ServiceError) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Account not found")
		}
		s.logger.Error("Failed to load account", zap.Error(err))
		return nil, internal("Failed to load account")
	}
	return user, nil
}

func (s *authServiceImpl) issueToken(user *models.User) (*AuthResult, *ServiceError) {
	expiresAt := time.Now().Add(accessTokenTTL)
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"staff": user.IsStaff,
		"typ":   "access",
		"iat":   time.Now().Unix(),
		"exp":   expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		return nil, internal("Failed to issue token")
	}

	return &AuthResult{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}
