package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================================
   Model: departments
========================================= */

type DepartmentModel struct {
	DepartmentID             uuid.UUID  `gorm:"type:uuid;primaryKey;column:department_id" json:"department_id"`
	DepartmentName           string     `gorm:"type:varchar(120);not null;column:department_name" json:"department_name"`
	DepartmentSlug           string     `gorm:"type:varchar(140);not null;uniqueIndex:uq_departments_slug;column:department_slug" json:"department_slug"`
	DepartmentDescription    *string    `gorm:"type:text;column:department_description" json:"department_description,omitempty"`
	DepartmentLeaderMemberID *uuid.UUID `gorm:"type:uuid;column:department_leader_member_id" json:"department_leader_member_id,omitempty"`
	DepartmentIsActive       bool       `gorm:"not null;column:department_is_active" json:"department_is_active"`

	DepartmentCreatedAt time.Time      `gorm:"autoCreateTime;column:department_created_at" json:"department_created_at"`
	DepartmentUpdatedAt time.Time      `gorm:"autoUpdateTime;column:department_updated_at" json:"department_updated_at"`
	DepartmentDeletedAt gorm.DeletedAt `gorm:"index;column:department_deleted_at" json:"department_deleted_at,omitempty"`
}

func (DepartmentModel) TableName() string { return "departments" }

func (d *DepartmentModel) BeforeCreate(tx *gorm.DB) error {
	if d.DepartmentID == uuid.Nil {
		d.DepartmentID = uuid.New()
	}
	return nil
}

/* =========================================
   Model: department_members
========================================= */

type DepartmentMemberModel struct {
	DepartmentMemberID           uuid.UUID `gorm:"type:uuid;primaryKey;column:department_member_id" json:"department_member_id"`
	DepartmentMemberDepartmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_department_member,priority:1;column:department_member_department_id" json:"department_member_department_id"`
	DepartmentMemberMemberID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_department_member,priority:2;index:idx_department_members_member;column:department_member_member_id" json:"department_member_member_id"`
	DepartmentMemberRole         *string   `gorm:"type:varchar(60);column:department_member_role" json:"department_member_role,omitempty"`
	DepartmentMemberJoinedAt     time.Time `gorm:"autoCreateTime;column:department_member_joined_at" json:"department_member_joined_at"`
}

func (DepartmentMemberModel) TableName() string { return "department_members" }

func (m *DepartmentMemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.DepartmentMemberID == uuid.Nil {
		m.DepartmentMemberID = uuid.New()
	}
	return nil
}
