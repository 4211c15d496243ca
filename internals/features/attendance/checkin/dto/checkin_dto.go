package dto

import (
	"strings"

	"github.com/google/uuid"

	"kanisa_backend/internals/features/attendance/checkin/service"
	sessionService "kanisa_backend/internals/features/attendance/sessions/service"
	"kanisa_backend/internals/helpers/dbtime"
)

// CheckInRequest accepts either session_id (UUID or QR id) or qr_session_id.
type CheckInRequest struct {
	SessionID    string `json:"session_id" form:"session_id"`
	QRSessionID  string `json:"qr_session_id" form:"qr_session_id"`
	MemberID     string `json:"member_id" form:"member_id"`
	Phone        string `json:"phone" form:"phone" validate:"omitempty,max=30"`
	MemberNumber string `json:"member_number" form:"member_number" validate:"omitempty,max=40"`
	Notes        string `json:"notes" form:"notes" validate:"omitempty,max=500"`
}

func (r *CheckInRequest) ToService() service.CheckInRequest {
	ref := strings.TrimSpace(r.QRSessionID)
	if ref == "" {
		ref = strings.TrimSpace(r.SessionID)
	}
	return service.CheckInRequest{
		SessionRef:   ref,
		MemberID:     r.MemberID,
		Phone:        r.Phone,
		MemberNumber: r.MemberNumber,
		Notes:        r.Notes,
	}
}

type MemberSummary struct {
	ID           uuid.UUID `json:"id"`
	MemberNumber string    `json:"member_number"`
	FullName     string    `json:"full_name"`
}

type SessionSummary struct {
	ID             uuid.UUID `json:"id"`
	Date           string    `json:"date"`
	AttendanceType string    `json:"attendance_type"`
	Title          *string   `json:"title,omitempty"`
	CheckinCount   int       `json:"qr_checkin_count"`

	sessionService.Counts
}

// CheckInResponse uses the camelCase keys the check-in page reads.
type CheckInResponse struct {
	Member             MemberSummary  `json:"member"`
	AttendanceRecordID uuid.UUID      `json:"attendanceRecordId"`
	AlreadyPresent     bool           `json:"alreadyPresent"`
	Session            SessionSummary `json:"session"`
}

func FromResult(r *service.CheckInResult) CheckInResponse {
	return CheckInResponse{
		Member: MemberSummary{
			ID:           r.Member.MemberID,
			MemberNumber: r.Member.MemberNumber,
			FullName:     r.Member.FullName(),
		},
		AttendanceRecordID: r.Record.AttendanceID,
		AlreadyPresent:     r.AlreadyPresent,
		Session: SessionSummary{
			ID:             r.Session.AttendanceSessionID,
			Date:           dbtime.FormatDate(r.Session.AttendanceSessionDate),
			AttendanceType: string(r.Session.AttendanceSessionType),
			Title:          r.Session.AttendanceSessionTitle,
			CheckinCount:   r.Session.AttendanceSessionQRCheckinCount,
			Counts:         r.Counts,
		},
	}
}
