package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	authModel "kanisa_backend/internals/features/users/auth/model"
	authRepo "kanisa_backend/internals/features/users/auth/repository"
	authService "kanisa_backend/internals/features/users/auth/service"
	"kanisa_backend/internals/helpers/logger"
)

type UserSeed struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SeedUsersFromJSON inserts staff accounts; existing emails are skipped.
func SeedUsersFromJSON(ctx context.Context, db *gorm.DB, filePath string) (inserted, skipped int, err error) {
	logger.L.Info("📥 reading users seed", zap.String("file", filePath))

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", filePath, err)
	}
	var inputs []UserSeed
	if err := json.Unmarshal(raw, &inputs); err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", filePath, err)
	}

	tx := db.WithContext(ctx)
	for _, data := range inputs {
		if _, err := authRepo.FindUserByEmail(tx, data.Email); err == nil {
			logger.L.Info("ℹ️ user exists, skipped", zap.String("email", data.Email))
			skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return inserted, skipped, err
		}

		role := strings.ToLower(strings.TrimSpace(data.Role))
		if !authModel.ValidRole(role) {
			return inserted, skipped, fmt.Errorf("user %s: invalid role %q", data.Email, data.Role)
		}
		hash, err := authService.HashPassword(data.Password)
		if err != nil {
			return inserted, skipped, fmt.Errorf("user %s: %w", data.Email, err)
		}
		u := &authModel.UserModel{
			Email:    data.Email,
			FullName: data.FullName,
			Password: hash,
			Role:     role,
			IsActive: true,
		}
		if err := authRepo.CreateUser(tx, u); err != nil {
			return inserted, skipped, fmt.Errorf("insert user %s: %w", data.Email, err)
		}
		logger.L.Info("✅ user inserted", zap.String("email", u.Email), zap.String("role", u.Role))
		inserted++
	}
	return inserted, skipped, nil
}
