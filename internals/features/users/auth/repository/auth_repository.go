package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authModel "kanisa_backend/internals/features/users/auth/model"
)

/* ====================== USER ====================== */

func FindUserByEmail(db *gorm.DB, email string) (*authModel.UserModel, error) {
	var user authModel.UserModel
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(db *gorm.DB, userID uuid.UUID) (*authModel.UserModel, error) {
	var user authModel.UserModel
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(db *gorm.DB, user *authModel.UserModel) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return db.Create(user).Error
}

func UpdateUserPassword(db *gorm.DB, userID uuid.UUID, hash string) error {
	return db.Model(&authModel.UserModel{}).Where("id = ?", userID).Update("password", hash).Error
}

// IsUserActive reports gorm.ErrRecordNotFound for unknown (or deleted) users.
func IsUserActive(db *gorm.DB, userID uuid.UUID) (bool, error) {
	var user authModel.UserModel
	if err := db.Select("id", "is_active").First(&user, "id = ?", userID).Error; err != nil {
		return false, err
	}
	return user.IsActive, nil
}

/* ====================== TOKEN BLACKLIST ====================== */

func BlacklistToken(db *gorm.DB, token string, expiredAt time.Time) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&authModel.TokenBlacklistModel{Token: token, ExpiredAt: expiredAt.UTC()}).Error
}

func IsTokenBlacklisted(db *gorm.DB, token string) (bool, error) {
	var row authModel.TokenBlacklistModel
	err := db.Select("id").Where("token = ?", token).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// DeleteExpiredBlacklist removes entries whose token expired before cutoff.
func DeleteExpiredBlacklist(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Where("expired_at < ?", cutoff.UTC()).Delete(&authModel.TokenBlacklistModel{})
	return res.RowsAffected, res.Error
}
