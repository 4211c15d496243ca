package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	recordModel "kanisa_backend/internals/features/attendance/records/model"
	sessionModel "kanisa_backend/internals/features/attendance/sessions/model"
	sessionService "kanisa_backend/internals/features/attendance/sessions/service"
	memberModel "kanisa_backend/internals/features/members/members/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/logger"
)

const (
	ViaQRNote   = "Checked in via QR"
	phoneSuffix = 9

	// stored phones normalized in SQL the same way NormalizePhone does in Go
	normalizedPhoneSQL = "REPLACE(REPLACE(REPLACE(member_phone, ' ', ''), '-', ''), '+', '')"
)

type Service struct {
	db       *gorm.DB
	sessions *sessionService.Service
	now      func() time.Time
}

func New(db *gorm.DB, sessions *sessionService.Service) *Service {
	return &Service{
		db:       db,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) SetClock(now func() time.Time) { s.now = now }

type CheckInRequest struct {
	SessionRef   string // session UUID or QR session id
	MemberID     string
	Phone        string
	MemberNumber string
	Notes        string
}

type CheckInResult struct {
	Member         *memberModel.MemberModel
	Record         *recordModel.AttendanceModel
	AlreadyPresent bool
	Session        *sessionModel.AttendanceSessionModel
	Counts         sessionService.Counts
}

// CheckIn marks a member present for the session's date and type. A second
// scan for the same member is reported, not recorded again.
func (s *Service) CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResult, error) {
	req = trimRequest(req)
	if req.SessionRef == "" {
		return nil, apperr.Invalid("session_id is required")
	}
	if req.MemberID == "" && req.Phone == "" && req.MemberNumber == "" {
		return nil, apperr.Invalid("member identification is required").
			WithHint("send member_id, phone or member_number")
	}

	sess, err := s.sessions.Resolve(ctx, req.SessionRef)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !sess.QRAcceptsAt(now) {
		return nil, apperr.Expired("QR check-in session has expired or been closed").
			WithDetails(map[string]any{
				"qr_session_id": sess.AttendanceSessionQRID,
				"is_active":     sess.AttendanceSessionQRIsActive,
				"expires_at":    sess.AttendanceSessionQRExpiresAt,
			}).
			WithHint("ask an administrator to extend or reactivate the QR code")
	}

	member, err := s.ResolveMember(ctx, req.MemberID, req.Phone, req.MemberNumber)
	if err != nil {
		return nil, err
	}

	rec, already, err := s.markPresent(ctx, sess, member, req.Notes, now)
	if err != nil {
		return nil, err
	}

	// both are best-effort and log their own failures
	_ = s.sessions.IncrementCheckinCount(ctx, sess.AttendanceSessionID)
	sess.AttendanceSessionQRCheckinCount++
	counts := s.sessions.Refresh(ctx, sess)

	return &CheckInResult{
		Member:         member,
		Record:         rec,
		AlreadyPresent: already,
		Session:        sess,
		Counts:         counts,
	}, nil
}

func (s *Service) markPresent(ctx context.Context, sess *sessionModel.AttendanceSessionModel, member *memberModel.MemberModel, notes string, now time.Time) (*recordModel.AttendanceModel, bool, error) {
	db := s.db.WithContext(ctx)

	var rec recordModel.AttendanceModel
	err := db.Where("attendance_member_id = ? AND attendance_date = ? AND attendance_type = ?",
		member.MemberID, sess.AttendanceSessionDate, sess.AttendanceSessionType).
		Order("attendance_present DESC").
		Order("attendance_created_at").
		First(&rec).Error

	switch {
	case err == nil && rec.AttendancePresent:
		return &rec, true, nil

	case err == nil:
		note := AppendNote(rec.AttendanceNotes, ViaQRNote, notes)
		if err := db.Model(&rec).Updates(map[string]any{
			"attendance_present":       true,
			"attendance_checked_in_at": now,
			"attendance_notes":         note,
		}).Error; err != nil {
			return nil, false, apperr.FromDB(err, "failed to record attendance")
		}
		rec.AttendancePresent = true
		rec.AttendanceCheckedInAt = &now
		rec.AttendanceNotes = note
		return &rec, false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = recordModel.AttendanceModel{
			AttendanceMemberID:    member.MemberID,
			AttendanceEventID:     sess.AttendanceSessionEventID,
			AttendanceType:        sess.AttendanceSessionType,
			AttendanceDate:        sess.AttendanceSessionDate,
			AttendancePresent:     true,
			AttendanceNotes:       AppendNote(nil, ViaQRNote, notes),
			AttendanceCheckedInAt: &now,
		}
		if err := db.Create(&rec).Error; err != nil {
			return nil, false, apperr.FromDB(err, "failed to record attendance")
		}
		return &rec, false, nil

	default:
		return nil, false, apperr.FromDB(err, "failed to load attendance")
	}
}

/* =========================================================
   Member resolution
   id -> phone (exact, normalized, last 9 digits) -> member number
========================================================= */

func (s *Service) ResolveMember(ctx context.Context, memberID, phone, number string) (*memberModel.MemberModel, error) {
	memberID, phone, number = strings.TrimSpace(memberID), strings.TrimSpace(phone), strings.TrimSpace(number)

	if memberID != "" {
		if id, err := uuid.Parse(memberID); err == nil {
			if m, err := s.findActive(ctx, "member_id = ?", id); m != nil || err != nil {
				return m, err
			}
		}
	}

	if phone != "" {
		if m, err := s.findActive(ctx, "member_phone = ?", phone); m != nil || err != nil {
			return m, err
		}
		normalized := NormalizePhone(phone)
		if normalized != "" {
			if m, err := s.findActive(ctx, normalizedPhoneSQL+" = ?", normalized); m != nil || err != nil {
				return m, err
			}
		}
		if digits := digitsOnly(phone); len(digits) >= phoneSuffix {
			suffix := digits[len(digits)-phoneSuffix:]
			if m, err := s.findActiveBySuffix(ctx, suffix); m != nil || err != nil {
				return m, err
			}
		}
	}

	if number != "" {
		if m, err := s.findActive(ctx, "member_number = ?", number); m != nil || err != nil {
			return m, err
		}
	}

	criteria := map[string]string{}
	if memberID != "" {
		criteria["member_id"] = memberID
	}
	if phone != "" {
		criteria["phone"] = phone
	}
	if number != "" {
		criteria["member_number"] = number
	}
	return nil, apperr.NotFound("active member not found").
		WithDetails(map[string]any{"search_criteria": criteria}).
		WithHint("check the phone number or member number, or contact the church office")
}

// findActive returns (nil, nil) on a miss.
func (s *Service) findActive(ctx context.Context, where string, arg any) (*memberModel.MemberModel, error) {
	var m memberModel.MemberModel
	err := s.db.WithContext(ctx).
		Scopes(memberModel.ActiveScope).
		Where(where, arg).
		Order("member_created_at").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.FromDB(err, "failed to look up member")
	}
	return &m, nil
}

// findActiveBySuffix matches the last digits of the stored phone. Numbers
// differing only in country code collide here; the oldest member wins and the
// collision is logged.
func (s *Service) findActiveBySuffix(ctx context.Context, suffix string) (*memberModel.MemberModel, error) {
	var rows []memberModel.MemberModel
	err := s.db.WithContext(ctx).
		Scopes(memberModel.ActiveScope).
		Where(normalizedPhoneSQL+" LIKE ?", "%"+suffix).
		Order("member_created_at").
		Limit(2).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.FromDB(err, "failed to look up member")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		logger.L.Warn("ambiguous phone suffix match, using oldest member",
			zap.String("suffix", suffix),
			zap.String("member_id", rows[0].MemberID.String()),
			zap.String("other_member_id", rows[1].MemberID.String()))
	}
	return &rows[0], nil
}

// NormalizePhone strips spaces, dashes and plus signs.
func NormalizePhone(p string) string {
	return strings.NewReplacer(" ", "", "-", "", "+", "").Replace(strings.TrimSpace(p))
}

func digitsOnly(p string) string {
	var b strings.Builder
	for _, r := range p {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AppendNote joins the non-empty notes with "; ".
func AppendNote(existing *string, notes ...string) *string {
	parts := []string{}
	if existing != nil && strings.TrimSpace(*existing) != "" {
		parts = append(parts, strings.TrimSpace(*existing))
	}
	for _, n := range notes {
		if n = strings.TrimSpace(n); n != "" {
			parts = append(parts, n)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	out := strings.Join(parts, "; ")
	return &out
}

func trimRequest(r CheckInRequest) CheckInRequest {
	r.SessionRef = strings.TrimSpace(r.SessionRef)
	r.MemberID = strings.TrimSpace(r.MemberID)
	r.Phone = strings.TrimSpace(r.Phone)
	r.MemberNumber = strings.TrimSpace(r.MemberNumber)
	r.Notes = strings.TrimSpace(r.Notes)
	return r
}
