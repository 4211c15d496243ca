package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	authModel "kanisa_backend/internals/features/users/auth/model"
	authRepo "kanisa_backend/internals/features/users/auth/repository"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/logger"
)

type Service struct {
	db     *gorm.DB
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func New(db *gorm.DB, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{db: db, secret: secret, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *authModel.UserModel
}

// ========================== LOGIN ==========================
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.Invalid("email and password are required")
	}

	user, err := authRepo.FindUserByEmail(s.db.WithContext(ctx), email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, apperr.FromDB(err, "failed to load user")
	}
	if err := CheckPasswordHash(user.Password, password); err != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.Forbidden("account is disabled")
	}

	token, exp, err := IssueToken(user, s.secret, s.ttl, s.now())
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}
	logger.L.Info("[AUTH] login", zap.String("user_id", user.ID.String()), zap.String("role", user.Role))
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// ========================== LOGOUT ==========================
// Logout blacklists the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := ParseToken(token, s.secret)
	if err != nil {
		return apperr.Unauthorized("invalid token")
	}
	exp := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	if err := authRepo.BlacklistToken(s.db.WithContext(ctx), token, exp); err != nil {
		return apperr.FromDB(err, "failed to revoke token")
	}
	return nil
}

// ========================== ME ==========================
func (s *Service) Me(ctx context.Context, claims *Claims) (*authModel.UserModel, error) {
	id, err := claims.UserID()
	if err != nil {
		return nil, apperr.Unauthorized("invalid token subject")
	}
	user, err := authRepo.FindUserByID(s.db.WithContext(ctx), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.FromDB(err, "failed to load user")
	}
	return user, nil
}

type CreateUserInput struct {
	Email    string
	FullName string
	Password string
	Role     string
}

// ========================== CREATE USER (admin / CLI) ==========================
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*authModel.UserModel, error) {
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if in.Role == "" {
		in.Role = authModel.RoleAdmin
	}
	if !authModel.ValidRole(in.Role) {
		return nil, apperr.Invalid("invalid role").WithDetails(map[string]any{"allowed": authModel.Roles})
	}
	if strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.FullName) == "" {
		return nil, apperr.Invalid("email and full_name are required")
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, apperr.Invalid(err.Error())
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}
	user := &authModel.UserModel{
		Email:    in.Email,
		FullName: strings.TrimSpace(in.FullName),
		Password: hash,
		Role:     in.Role,
		IsActive: true,
	}
	if err := authRepo.CreateUser(s.db.WithContext(ctx), user); err != nil {
		return nil, apperr.FromDB(err, "user already exists or could not be created")
	}
	return user, nil
}
