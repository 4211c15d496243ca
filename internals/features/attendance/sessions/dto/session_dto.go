package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"kanisa_backend/internals/features/attendance/qrcode"
	recordModel "kanisa_backend/internals/features/attendance/records/model"
	"kanisa_backend/internals/features/attendance/sessions/model"
	"kanisa_backend/internals/features/attendance/sessions/service"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
)

/* =========================================================
   Requests
========================================================= */

type CreateSessionRequest struct {
	Date            string     `json:"date" validate:"required"`
	AttendanceType  string     `json:"attendance_type" validate:"required"`
	EventID         *uuid.UUID `json:"event_id"`
	DepartmentID    *uuid.UUID `json:"department_id"`
	Title           *string    `json:"title" validate:"omitempty,max=200"`
	PopulateMembers bool       `json:"populate_members"`
	GenerateQR      *bool      `json:"generate_qr"`
	ValidityHours   *float64   `json:"validity_hours" validate:"omitempty,gt=0,lte=72"`
}

// ToOptions maps the body; issueQR is used when generate_qr is absent.
func (r *CreateSessionRequest) ToOptions(issueQR bool, createdBy *uuid.UUID) (service.CreateSessionOptions, error) {
	date, err := dbtime.ParseDate(r.Date)
	if err != nil {
		return service.CreateSessionOptions{}, apperr.Invalid(err.Error())
	}
	if r.GenerateQR != nil {
		issueQR = *r.GenerateQR
	}
	opt := service.CreateSessionOptions{
		Date:            date,
		Type:            recordModel.AttendanceType(strings.TrimSpace(r.AttendanceType)),
		EventID:         nonNil(r.EventID),
		DepartmentID:    nonNil(r.DepartmentID),
		Title:           r.Title,
		CreatedBy:       createdBy,
		PopulateMembers: r.PopulateMembers,
		IssueQR:         issueQR,
	}
	if r.ValidityHours != nil {
		opt.QRValidity = HoursToDuration(*r.ValidityHours)
	}
	return opt, nil
}

type UpdateQRRequest struct {
	SessionID string     `json:"session_id" validate:"required"`
	Action    string     `json:"action" validate:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
	Hours     *float64   `json:"hours" validate:"omitempty,gt=0,lte=72"`
}

func (r *UpdateQRRequest) ToOptions() (uuid.UUID, service.UpdateQROptions, error) {
	id, err := uuid.Parse(strings.TrimSpace(r.SessionID))
	if err != nil {
		return uuid.Nil, service.UpdateQROptions{}, apperr.Invalid("session_id is not a valid UUID")
	}
	return id, service.UpdateQROptions{
		Action:    service.QRAction(strings.ToLower(strings.TrimSpace(r.Action))),
		ExpiresAt: r.ExpiresAt,
		Hours:     r.Hours,
	}, nil
}

type GenerateQRRequest struct {
	ValidityHours *float64 `json:"validity_hours" validate:"omitempty,gt=0,lte=72"`
}

type MigrateLegacyRequest struct {
	DelayMS *int `json:"delay_ms" validate:"omitempty,min=0,max=10000"`
}

func (r *MigrateLegacyRequest) ToOptions(createdBy *uuid.UUID) service.MigrateOptions {
	opt := service.MigrateOptions{CreatedBy: createdBy}
	if r.DelayMS != nil {
		d := time.Duration(*r.DelayMS) * time.Millisecond
		opt.Delay = &d
	}
	return opt
}

func HoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

func nonNil(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}

/* =========================================================
   Responses
========================================================= */

type QRResponse struct {
	QRSessionID  string     `json:"qr_session_id"`
	CheckinURL   string     `json:"qr_checkin_url"`
	ExpiresAt    *time.Time `json:"qr_expires_at"`
	IsActive     bool       `json:"qr_is_active"`
	IsExpired    bool       `json:"qr_is_expired"`
	CheckinCount int        `json:"qr_checkin_count"`
	Image        string     `json:"qr_code_image,omitempty"` // data URL
}

type SessionResponse struct {
	ID                  uuid.UUID                  `json:"id"`
	Date                string                     `json:"date"`
	AttendanceType      recordModel.AttendanceType `json:"attendance_type"`
	AttendanceTypeLabel string                     `json:"attendance_type_label"`
	EventID             *uuid.UUID                 `json:"event_id,omitempty"`
	DepartmentID        *uuid.UUID                 `json:"department_id,omitempty"`
	Title               *string                    `json:"title,omitempty"`

	TotalMembers   int     `json:"total_members"`
	PresentCount   int     `json:"present_count"`
	AbsentCount    int     `json:"absent_count"`
	AttendanceRate float64 `json:"attendance_rate"`

	QR *QRResponse `json:"qr,omitempty"`

	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func FromModel(m *model.AttendanceSessionModel, now time.Time) SessionResponse {
	out := SessionResponse{
		ID:                  m.AttendanceSessionID,
		Date:                dbtime.FormatDate(m.AttendanceSessionDate),
		AttendanceType:      m.AttendanceSessionType,
		AttendanceTypeLabel: m.AttendanceSessionType.Label(),
		EventID:             m.AttendanceSessionEventID,
		DepartmentID:        m.AttendanceSessionDepartmentID,
		Title:               m.AttendanceSessionTitle,
		TotalMembers:        m.AttendanceSessionTotalMembers,
		PresentCount:        m.AttendanceSessionPresentCount,
		AbsentCount:         m.AttendanceSessionAbsentCount,
		AttendanceRate:      m.AttendanceSessionRate,
		CreatedBy:           m.AttendanceSessionCreatedBy,
		CreatedAt:           m.AttendanceSessionCreatedAt,
		UpdatedAt:           m.AttendanceSessionUpdatedAt,
	}
	if m.HasQR() {
		qr := &QRResponse{
			QRSessionID:  *m.AttendanceSessionQRID,
			ExpiresAt:    m.AttendanceSessionQRExpiresAt,
			IsActive:     m.AttendanceSessionQRIsActive,
			IsExpired:    m.AttendanceSessionQRExpiresAt == nil || !m.AttendanceSessionQRExpiresAt.After(now),
			CheckinCount: m.AttendanceSessionQRCheckinCount,
		}
		if m.AttendanceSessionQRURL != nil {
			qr.CheckinURL = *m.AttendanceSessionQRURL
		}
		out.QR = qr
	}
	return out
}

func FromModels(rows []model.AttendanceSessionModel, now time.Time) []SessionResponse {
	out := make([]SessionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i], now))
	}
	return out
}

// WithImage attaches the QR PNG as a data URL; a nil QR section is left
// alone.
func (r *SessionResponse) WithImage(png []byte) *SessionResponse {
	if r.QR != nil {
		r.QR.Image = qrcode.DataURL(png)
	}
	return r
}

// PublicSessionResponse is what the check-in page may see.
type PublicSessionResponse struct {
	QRSessionID         string     `json:"qr_session_id"`
	Date                string     `json:"date"`
	AttendanceType      string     `json:"attendance_type"`
	AttendanceTypeLabel string     `json:"attendance_type_label"`
	Title               *string    `json:"title,omitempty"`
	ExpiresAt           *time.Time `json:"qr_expires_at"`
	IsOpen              bool       `json:"is_open"`
}

func ToPublic(m *model.AttendanceSessionModel, now time.Time) PublicSessionResponse {
	out := PublicSessionResponse{
		Date:                dbtime.FormatDate(m.AttendanceSessionDate),
		AttendanceType:      string(m.AttendanceSessionType),
		AttendanceTypeLabel: m.AttendanceSessionType.Label(),
		Title:               m.AttendanceSessionTitle,
		ExpiresAt:           m.AttendanceSessionQRExpiresAt,
		IsOpen:              m.QRAcceptsAt(now),
	}
	if m.AttendanceSessionQRID != nil {
		out.QRSessionID = *m.AttendanceSessionQRID
	}
	return out
}
