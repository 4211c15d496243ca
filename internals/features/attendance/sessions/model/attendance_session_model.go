package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	recordModel "kanisa_backend/internals/features/attendance/records/model"
	"kanisa_backend/internals/helpers/dbtime"
)

/* =========================================
   Model: attendance_sessions
========================================= */

type AttendanceSessionModel struct {
	AttendanceSessionID uuid.UUID `gorm:"type:uuid;primaryKey;column:attendance_session_id" json:"attendance_session_id"`

	// date|type|department|event, empty segment when unset
	AttendanceSessionKey string `gorm:"type:varchar(200);not null;uniqueIndex:uq_attendance_sessions_key;column:attendance_session_key" json:"-"`

	AttendanceSessionDate         time.Time                  `gorm:"type:date;not null;index:idx_attendance_sessions_date_type,priority:1;column:attendance_session_date" json:"attendance_session_date"`
	AttendanceSessionType         recordModel.AttendanceType `gorm:"type:varchar(40);not null;index:idx_attendance_sessions_date_type,priority:2;column:attendance_session_type" json:"attendance_session_type"`
	AttendanceSessionEventID      *uuid.UUID                 `gorm:"type:uuid;column:attendance_session_event_id" json:"attendance_session_event_id,omitempty"`
	AttendanceSessionDepartmentID *uuid.UUID                 `gorm:"type:uuid;column:attendance_session_department_id" json:"attendance_session_department_id,omitempty"`
	AttendanceSessionTitle        *string                    `gorm:"type:varchar(200);column:attendance_session_title" json:"attendance_session_title,omitempty"`

	// Denormalized counters (refreshed best-effort)
	AttendanceSessionTotalMembers int     `gorm:"not null;column:attendance_session_total_members" json:"attendance_session_total_members"`
	AttendanceSessionPresentCount int     `gorm:"not null;column:attendance_session_present_count" json:"attendance_session_present_count"`
	AttendanceSessionAbsentCount  int     `gorm:"not null;column:attendance_session_absent_count" json:"attendance_session_absent_count"`
	AttendanceSessionRate         float64 `gorm:"not null;column:attendance_session_rate" json:"attendance_session_rate"`

	// QR sub-record
	AttendanceSessionQRID           *string    `gorm:"type:varchar(80);uniqueIndex:uq_attendance_sessions_qr_id;column:attendance_session_qr_id" json:"attendance_session_qr_id,omitempty"`
	AttendanceSessionQRURL          *string    `gorm:"type:text;column:attendance_session_qr_url" json:"attendance_session_qr_url,omitempty"`
	AttendanceSessionQRExpiresAt    *time.Time `gorm:"column:attendance_session_qr_expires_at" json:"attendance_session_qr_expires_at,omitempty"`
	AttendanceSessionQRIsActive     bool       `gorm:"not null;column:attendance_session_qr_is_active" json:"attendance_session_qr_is_active"`
	AttendanceSessionQRCheckinCount int        `gorm:"not null;column:attendance_session_qr_checkin_count" json:"attendance_session_qr_checkin_count"`

	AttendanceSessionCreatedBy *uuid.UUID `gorm:"type:uuid;column:attendance_session_created_by" json:"attendance_session_created_by,omitempty"`
	AttendanceSessionCreatedAt time.Time  `gorm:"autoCreateTime;column:attendance_session_created_at" json:"attendance_session_created_at"`
	AttendanceSessionUpdatedAt time.Time  `gorm:"autoUpdateTime;column:attendance_session_updated_at" json:"attendance_session_updated_at"`
}

func (AttendanceSessionModel) TableName() string { return "attendance_sessions" }

func (s *AttendanceSessionModel) BeforeCreate(tx *gorm.DB) error {
	if s.AttendanceSessionID == uuid.Nil {
		s.AttendanceSessionID = uuid.New()
	}
	if s.AttendanceSessionKey == "" {
		s.AttendanceSessionKey = SessionKey(s.AttendanceSessionDate, s.AttendanceSessionType, s.AttendanceSessionDepartmentID, s.AttendanceSessionEventID)
	}
	return nil
}

// SessionKey is the uniqueness key of a session. NULL department/event map
// to an empty segment so the unique index also covers them.
func SessionKey(date time.Time, t recordModel.AttendanceType, departmentID, eventID *uuid.UUID) string {
	seg := func(id *uuid.UUID) string {
		if id == nil {
			return ""
		}
		return id.String()
	}
	return strings.Join([]string{dbtime.FormatDate(date), string(t), seg(departmentID), seg(eventID)}, "|")
}

// HasQR reports whether a QR code was ever issued for the session.
func (s *AttendanceSessionModel) HasQR() bool {
	return s.AttendanceSessionQRID != nil && *s.AttendanceSessionQRID != ""
}

// QRAcceptsAt is the check-in gate: issued, active and not expired.
func (s *AttendanceSessionModel) QRAcceptsAt(now time.Time) bool {
	if !s.HasQR() || !s.AttendanceSessionQRIsActive || s.AttendanceSessionQRExpiresAt == nil {
		return false
	}
	return s.AttendanceSessionQRExpiresAt.After(now)
}
