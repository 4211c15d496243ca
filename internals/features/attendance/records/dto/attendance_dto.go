package dto

import (
	"strings"

	"github.com/google/uuid"

	"kanisa_backend/internals/features/attendance/records/model"
	"kanisa_backend/internals/features/attendance/records/service"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
)

// Roster body keeps the camelCase envelope the admin UI already posts.
type RosterRequest struct {
	AttendanceRecords []RosterRecord `json:"attendanceRecords" validate:"required,min=1,dive"`
	SessionInfo       SessionInfo    `json:"sessionInfo"`
}

type RosterRecord struct {
	MemberID uuid.UUID `json:"member_id" validate:"required"`
	Present  bool      `json:"present"`
	Notes    *string   `json:"notes" validate:"omitempty,max=500"`
}

type SessionInfo struct {
	Date           string     `json:"date" validate:"required"`
	AttendanceType string     `json:"attendance_type" validate:"required"`
	EventID        *uuid.UUID `json:"event_id"`
	RecordedBy     *uuid.UUID `json:"recorded_by"`
}

// ToSubmission falls back to the caller for recorded_by.
func (r *RosterRequest) ToSubmission(caller *uuid.UUID) (service.RosterSubmission, error) {
	date, err := dbtime.ParseDate(r.SessionInfo.Date)
	if err != nil {
		return service.RosterSubmission{}, apperr.Invalid(err.Error())
	}
	sub := service.RosterSubmission{
		Date:       date,
		Type:       model.AttendanceType(strings.TrimSpace(r.SessionInfo.AttendanceType)),
		EventID:    r.SessionInfo.EventID,
		RecordedBy: r.SessionInfo.RecordedBy,
		Records:    make([]service.RosterEntry, 0, len(r.AttendanceRecords)),
	}
	if sub.RecordedBy == nil {
		sub.RecordedBy = caller
	}
	for _, rec := range r.AttendanceRecords {
		sub.Records = append(sub.Records, service.RosterEntry{
			MemberID: rec.MemberID,
			Present:  rec.Present,
			Notes:    rec.Notes,
		})
	}
	return sub, nil
}
