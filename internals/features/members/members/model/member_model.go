package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Enums
========================= */

type MemberStatus string

const (
	MemberStatusActive      MemberStatus = "active"
	MemberStatusInactive    MemberStatus = "inactive"
	MemberStatusTransferred MemberStatus = "transferred"
	MemberStatusDeceased    MemberStatus = "deceased"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusActive, MemberStatusInactive, MemberStatusTransferred, MemberStatusDeceased:
		return true
	}
	return false
}

/* =========================================
   Model: members
========================================= */

type MemberModel struct {
	MemberID     uuid.UUID `gorm:"type:uuid;primaryKey;column:member_id" json:"member_id"`
	MemberNumber string    `gorm:"type:varchar(40);not null;uniqueIndex:uq_members_number;column:member_number" json:"member_number"`

	MemberFirstName  string  `gorm:"type:varchar(80);not null;column:member_first_name" json:"member_first_name"`
	MemberMiddleName *string `gorm:"type:varchar(80);column:member_middle_name" json:"member_middle_name,omitempty"`
	MemberLastName   string  `gorm:"type:varchar(80);not null;column:member_last_name" json:"member_last_name"`
	MemberGender     *string `gorm:"type:varchar(10);column:member_gender" json:"member_gender,omitempty"`

	MemberPhone   *string `gorm:"type:varchar(30);index:idx_members_phone;column:member_phone" json:"member_phone,omitempty"`
	MemberEmail   *string `gorm:"type:varchar(160);column:member_email" json:"member_email,omitempty"`
	MemberAddress *string `gorm:"type:text;column:member_address" json:"member_address,omitempty"`

	MemberDateOfBirth *time.Time `gorm:"type:date;column:member_date_of_birth" json:"member_date_of_birth,omitempty"`
	MemberJoinDate    *time.Time `gorm:"type:date;column:member_join_date" json:"member_join_date,omitempty"`

	MemberStatus   MemberStatus `gorm:"type:varchar(20);not null;index:idx_members_status;column:member_status" json:"member_status"`
	MemberPhotoURL *string      `gorm:"type:text;column:member_photo_url" json:"member_photo_url,omitempty"`

	MemberCreatedAt time.Time      `gorm:"autoCreateTime;column:member_created_at" json:"member_created_at"`
	MemberUpdatedAt time.Time      `gorm:"autoUpdateTime;column:member_updated_at" json:"member_updated_at"`
	MemberDeletedAt gorm.DeletedAt `gorm:"index;column:member_deleted_at" json:"member_deleted_at,omitempty"`
}

func (MemberModel) TableName() string { return "members" }

func (m *MemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.MemberID == uuid.Nil {
		m.MemberID = uuid.New()
	}
	if m.MemberStatus == "" {
		m.MemberStatus = MemberStatusActive
	}
	return nil
}

func (m *MemberModel) FullName() string {
	parts := []string{m.MemberFirstName}
	if m.MemberMiddleName != nil && strings.TrimSpace(*m.MemberMiddleName) != "" {
		parts = append(parts, strings.TrimSpace(*m.MemberMiddleName))
	}
	parts = append(parts, m.MemberLastName)
	return strings.Join(parts, " ")
}

// ActiveScope restricts a query to members counted by attendance.
func ActiveScope(db *gorm.DB) *gorm.DB {
	return db.Where("member_status = ?", MemberStatusActive)
}
