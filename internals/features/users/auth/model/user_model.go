package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin     = "admin"
	RolePastor    = "pastor"
	RoleSecretary = "secretary"
	RoleTreasurer = "treasurer"
)

var Roles = []string{RoleAdmin, RolePastor, RoleSecretary, RoleTreasurer}

func ValidRole(r string) bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

type UserModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	Email     string         `gorm:"type:varchar(160);not null;uniqueIndex:uq_users_email;column:email" json:"email"`
	FullName  string         `gorm:"type:varchar(120);not null;column:full_name" json:"full_name"`
	Password  string         `gorm:"type:varchar(250);not null;column:password" json:"-"`
	Role      string         `gorm:"type:varchar(20);not null;column:role" json:"role"`
	IsActive  bool           `gorm:"not null;column:is_active" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index;column:deleted_at" json:"-"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
