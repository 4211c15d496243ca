package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Attendance types
========================= */

type AttendanceType string

const (
	TypeSundayService     AttendanceType = "sunday_service"
	TypeMidweekFellowship AttendanceType = "midweek_fellowship"
	TypeSpecialEvent      AttendanceType = "special_event"
	TypeDepartmentMeeting AttendanceType = "department_meeting"
)

var AttendanceTypes = []AttendanceType{
	TypeSundayService,
	TypeMidweekFellowship,
	TypeSpecialEvent,
	TypeDepartmentMeeting,
}

func (t AttendanceType) Valid() bool {
	for _, v := range AttendanceTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (t AttendanceType) Label() string {
	switch t {
	case TypeSundayService:
		return "Sunday Service"
	case TypeMidweekFellowship:
		return "Midweek Fellowship"
	case TypeSpecialEvent:
		return "Special Event"
	case TypeDepartmentMeeting:
		return "Department Meeting"
	}
	return string(t)
}

/* =========================================
   Model: attendance (flat, one row per member per date/type)
   Uniqueness of (member, date, type) is kept by the services.
========================================= */

type AttendanceModel struct {
	AttendanceID       uuid.UUID      `gorm:"type:uuid;primaryKey;column:attendance_id" json:"attendance_id"`
	AttendanceMemberID uuid.UUID      `gorm:"type:uuid;not null;index:idx_attendance_member_date_type,priority:1;column:attendance_member_id" json:"attendance_member_id"`
	AttendanceEventID  *uuid.UUID     `gorm:"type:uuid;column:attendance_event_id" json:"attendance_event_id,omitempty"`
	AttendanceType     AttendanceType `gorm:"type:varchar(40);not null;index:idx_attendance_member_date_type,priority:3;index:idx_attendance_date_type,priority:2;column:attendance_type" json:"attendance_type"`
	AttendanceDate     time.Time      `gorm:"type:date;not null;index:idx_attendance_member_date_type,priority:2;index:idx_attendance_date_type,priority:1;column:attendance_date" json:"attendance_date"`
	AttendancePresent  bool           `gorm:"not null;column:attendance_present" json:"attendance_present"`
	AttendanceNotes    *string        `gorm:"type:text;column:attendance_notes" json:"attendance_notes,omitempty"`

	AttendanceRecordedBy  *uuid.UUID `gorm:"type:uuid;column:attendance_recorded_by" json:"attendance_recorded_by,omitempty"`
	AttendanceCheckedInAt *time.Time `gorm:"column:attendance_checked_in_at" json:"attendance_checked_in_at,omitempty"`

	AttendanceCreatedAt time.Time `gorm:"autoCreateTime;column:attendance_created_at" json:"attendance_created_at"`
	AttendanceUpdatedAt time.Time `gorm:"autoUpdateTime;column:attendance_updated_at" json:"attendance_updated_at"`
}

func (AttendanceModel) TableName() string { return "attendance" }

func (a *AttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if a.AttendanceID == uuid.Nil {
		a.AttendanceID = uuid.New()
	}
	return nil
}
