package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/jp3/expedientes-api/internal/models"
	appErrors "github.com/jp3/expedientes-api/pkg/errors"
)

// authProvider is the external authentication collaborator. Credentials and
// user records live there; this service only wraps its calls and mints the
// application token.
type authProvider interface {
	CreateUser(ctx context.Context, req models.RegisterRequest) (*models.AuthUser, error)
	SignIn(ctx context.Context, email, password string) (*models.AuthUser, error)
	ListUsers(ctx context.Context) ([]models.AuthUser, error)
}

// AuthConfig defines token issuance parameters and the seed username aliases.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	AdminAlias  string
	AdminEmail  string
	UserAlias   string
	UserEmail   string
}

// AuthService delegates credential checks to the auth collaborator and issues
// application-signed JWTs carrying {userId, username, role}.
type AuthService struct {
	provider  authProvider
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService.
func NewAuthService(provider authProvider, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TokenExpiry <= 0 {
		config.TokenExpiry = 7 * 24 * time.Hour
	}
	return &AuthService{provider: provider, validator: validate, logger: logger, config: config}
}

// Register creates a user at the collaborator and returns it with a token.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthUser, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username, email and password are required")
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if !req.Role.Valid() {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, `invalid role: only "admin" or "user" are allowed`)
	}

	user, err := s.provider.CreateUser(ctx, req)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return user, token, nil
}

// Login resolves the username (alias or email), verifies credentials against
// the collaborator and returns the user plus a fresh token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthUser, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username and password are required")
	}

	user, err := s.provider.SignIn(ctx, s.resolveEmail(req.Username), req.Password)
	if err != nil {
		s.logger.Info("login rejected", zap.String("username", req.Username))
		return nil, "", appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return user, token, nil
}

// ListUsers returns every user known to the collaborator.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.AuthUser, error) {
	users, err := s.provider.ListUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// resolveEmail maps the seeded short aliases onto full login emails; anything
// containing '@' passes through untouched.
func (s *AuthService) resolveEmail(username string) string {
	username = strings.TrimSpace(username)
	if strings.Contains(username, "@") {
		return username
	}
	switch username {
	case s.config.AdminAlias:
		if s.config.AdminEmail != "" {
			return s.config.AdminEmail
		}
	case s.config.UserAlias:
		if s.config.UserEmail != "" {
			return s.config.UserEmail
		}
	}
	return username
}

func (s *AuthService) issueToken(user *models.AuthUser) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.TokenSecret))
}
