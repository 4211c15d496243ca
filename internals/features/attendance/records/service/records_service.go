package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kanisa_backend/internals/features/attendance/records/model"
	sessionService "kanisa_backend/internals/features/attendance/sessions/service"
	memberModel "kanisa_backend/internals/features/members/members/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
)

type Service struct {
	db       *gorm.DB
	sessions *sessionService.Service
}

func New(db *gorm.DB, sessions *sessionService.Service) *Service {
	return &Service{db: db, sessions: sessions}
}

type RosterEntry struct {
	MemberID uuid.UUID
	Present  bool
	Notes    *string
}

type RosterSubmission struct {
	Date       time.Time
	Type       model.AttendanceType
	EventID    *uuid.UUID
	RecordedBy *uuid.UUID
	Records    []RosterEntry
}

// ReplaceRoster swaps every record of the date/type for the submitted ones
// in a single transaction. Duplicate members keep their last entry.
func (s *Service) ReplaceRoster(ctx context.Context, sub RosterSubmission) (int, error) {
	if sub.Date.IsZero() {
		return 0, apperr.Invalid("date is required")
	}
	if !sub.Type.Valid() {
		return 0, apperr.Invalid("invalid attendance_type").
			WithDetails(map[string]any{"attendance_type": sub.Type, "allowed": model.AttendanceTypes})
	}
	if len(sub.Records) == 0 {
		return 0, apperr.Invalid("records must not be empty")
	}
	date := dbtime.DateOf(sub.Date, time.UTC)

	order := make([]uuid.UUID, 0, len(sub.Records))
	last := make(map[uuid.UUID]RosterEntry, len(sub.Records))
	for _, r := range sub.Records {
		if r.MemberID == uuid.Nil {
			return 0, apperr.Invalid("member_id is required for every record")
		}
		if _, seen := last[r.MemberID]; !seen {
			order = append(order, r.MemberID)
		}
		last[r.MemberID] = r
	}

	rows := make([]model.AttendanceModel, 0, len(order))
	for _, id := range order {
		r := last[id]
		rows = append(rows, model.AttendanceModel{
			AttendanceMemberID:   id,
			AttendanceEventID:    sub.EventID,
			AttendanceType:       sub.Type,
			AttendanceDate:       date,
			AttendancePresent:    r.Present,
			AttendanceNotes:      trimmed(r.Notes),
			AttendanceRecordedBy: sub.RecordedBy,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attendance_date = ? AND attendance_type = ?", date, sub.Type).
			Delete(&model.AttendanceModel{}).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return 0, apperr.FromDB(err, "failed to save attendance")
	}

	if s.sessions != nil {
		s.sessions.RefreshDateType(ctx, date, sub.Type)
	}
	return len(rows), nil
}

type RecordView struct {
	AttendanceID   uuid.UUID            `json:"attendance_id"`
	MemberID       uuid.UUID            `json:"member_id"`
	MemberNumber   string               `json:"member_number"`
	MemberName     string               `json:"member_name"`
	AttendanceType model.AttendanceType `json:"attendance_type"`
	AttendanceDate string               `json:"attendance_date"`
	Present        bool                 `json:"present"`
	Notes          *string              `json:"notes,omitempty"`
	CheckedInAt    *time.Time           `json:"checked_in_at,omitempty"`
	RecordedBy     *uuid.UUID           `json:"recorded_by,omitempty"`
}

// List returns the records of a date/type with member names, sorted by
// member name.
func (s *Service) List(ctx context.Context, date time.Time, t model.AttendanceType) ([]RecordView, error) {
	if !t.Valid() {
		return nil, apperr.Invalid("invalid attendance_type")
	}
	date = dbtime.DateOf(date, time.UTC)

	var recs []model.AttendanceModel
	if err := s.db.WithContext(ctx).
		Where("attendance_date = ? AND attendance_type = ?", date, t).
		Find(&recs).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to list attendance")
	}
	if len(recs) == 0 {
		return []RecordView{}, nil
	}

	ids := make([]uuid.UUID, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.AttendanceMemberID)
	}
	var members []memberModel.MemberModel
	if err := s.db.WithContext(ctx).Unscoped().
		Where("member_id IN ?", ids).
		Find(&members).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to load members")
	}
	byID := make(map[uuid.UUID]*memberModel.MemberModel, len(members))
	for i := range members {
		byID[members[i].MemberID] = &members[i]
	}

	out := make([]RecordView, 0, len(recs))
	for _, r := range recs {
		v := RecordView{
			AttendanceID:   r.AttendanceID,
			MemberID:       r.AttendanceMemberID,
			AttendanceType: r.AttendanceType,
			AttendanceDate: dbtime.FormatDate(r.AttendanceDate),
			Present:        r.AttendancePresent,
			Notes:          r.AttendanceNotes,
			CheckedInAt:    r.AttendanceCheckedInAt,
			RecordedBy:     r.AttendanceRecordedBy,
		}
		if m := byID[r.AttendanceMemberID]; m != nil {
			v.MemberNumber = m.MemberNumber
			v.MemberName = m.FullName()
		}
		out = append(out, v)
	}
	sortByName(out)
	return out, nil
}

func sortByName(v []RecordView) {
	sort.SliceStable(v, func(i, j int) bool {
		return strings.ToLower(v[i].MemberName) < strings.ToLower(v[j].MemberName)
	})
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}
