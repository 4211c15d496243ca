package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kanisa_backend/internals/features/attendance/qrcode"
	recordModel "kanisa_backend/internals/features/attendance/records/model"
	"kanisa_backend/internals/features/attendance/sessions/model"
	deptModel "kanisa_backend/internals/features/members/departments/model"
	memberModel "kanisa_backend/internals/features/members/members/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
	"kanisa_backend/internals/helpers/logger"
)

const migrateHint = "run POST /api/a/attendance/sessions/migrate-legacy to convert the existing records into a session"

// MaxQRHours bounds every hour-based QR validity or extension.
const MaxQRHours = 72

/* =========================================================
   Create
========================================================= */

type CreateSessionOptions struct {
	Date            time.Time
	Type            recordModel.AttendanceType
	EventID         *uuid.UUID
	DepartmentID    *uuid.UUID
	Title           *string
	CreatedBy       *uuid.UUID
	PopulateMembers bool
	IssueQR         bool
	QRValidity      time.Duration // zero = configured default
}

type CreateResult struct {
	Session   *model.AttendanceSessionModel
	QR        *qrcode.QRCode // nil when IssueQR was false
	Populated int            // absent records inserted by PopulateMembers
}

func (s *Service) Create(ctx context.Context, opt CreateSessionOptions) (*CreateResult, error) {
	if opt.Date.IsZero() {
		return nil, apperr.Invalid("date is required")
	}
	if !opt.Type.Valid() {
		return nil, invalidType(opt.Type)
	}
	if opt.Title != nil {
		t := strings.TrimSpace(*opt.Title)
		if t == "" {
			opt.Title = nil
		} else {
			opt.Title = &t
		}
	}
	date := dbtime.DateOf(opt.Date, time.UTC)
	db := s.db.WithContext(ctx)

	if err := s.checkConflict(db, date, opt); err != nil {
		return nil, err
	}

	sess := &model.AttendanceSessionModel{
		AttendanceSessionDate:         date,
		AttendanceSessionType:         opt.Type,
		AttendanceSessionEventID:      opt.EventID,
		AttendanceSessionDepartmentID: opt.DepartmentID,
		AttendanceSessionTitle:        opt.Title,
		AttendanceSessionCreatedBy:    opt.CreatedBy,
	}

	var qr *qrcode.QRCode
	if opt.IssueQR {
		var err error
		if qr, err = s.issue(opt.QRValidity); err != nil {
			return nil, err
		}
		applyQR(sess, qr, true)
	}

	populated := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sess).Error; err != nil {
			return err
		}
		if !opt.PopulateMembers {
			return nil
		}
		inserted, roster, err := populateRoster(tx, sess)
		if err != nil {
			return err
		}
		populated = inserted
		sess.AttendanceSessionTotalMembers = roster
		return tx.Model(sess).UpdateColumn("attendance_session_total_members", roster).Error
	})
	if err != nil {
		if apperr.Is(apperr.FromDB(err, ""), apperr.KindConflict) {
			return nil, duplicateSession(date, opt.Type, opt.DepartmentID, opt.EventID)
		}
		return nil, apperr.FromDB(err, "failed to create attendance session")
	}

	s.Refresh(ctx, sess)
	return &CreateResult{Session: sess, QR: qr, Populated: populated}, nil
}

// checkConflict rejects a second session for the same key, and a first
// session for a date/type that still only has flat attendance rows.
func (s *Service) checkConflict(db *gorm.DB, date time.Time, opt CreateSessionOptions) error {
	key := model.SessionKey(date, opt.Type, opt.DepartmentID, opt.EventID)

	var same int64
	if err := db.Model(&model.AttendanceSessionModel{}).
		Where("attendance_session_key = ?", key).
		Count(&same).Error; err != nil {
		return apperr.FromDB(err, "failed to check existing sessions")
	}
	if same > 0 {
		return duplicateSession(date, opt.Type, opt.DepartmentID, opt.EventID)
	}

	if opt.DepartmentID != nil {
		return nil
	}

	var sameDay int64
	if err := db.Model(&model.AttendanceSessionModel{}).
		Where("attendance_session_date = ? AND attendance_session_type = ?", date, opt.Type).
		Count(&sameDay).Error; err != nil {
		return apperr.FromDB(err, "failed to check existing sessions")
	}
	if sameDay > 0 {
		return nil
	}

	q := db.Model(&recordModel.AttendanceModel{}).
		Where("attendance_date = ? AND attendance_type = ?", date, opt.Type)
	if opt.EventID != nil {
		q = q.Where("attendance_event_id = ?", *opt.EventID)
	}
	var legacy int64
	if err := q.Count(&legacy).Error; err != nil {
		return apperr.FromDB(err, "failed to check existing attendance")
	}
	if legacy > 0 {
		return apperr.Conflict("attendance has already been recorded for this date and type").
			WithDetails(map[string]any{
				"date":             dbtime.FormatDate(date),
				"attendance_type":  opt.Type,
				"existing_records": legacy,
			}).
			WithHint(migrateHint)
	}
	return nil
}

// populateRoster inserts an absent record for every active roster member that
// has none yet for the session's date/type.
func populateRoster(tx *gorm.DB, sess *model.AttendanceSessionModel) (inserted, roster int, err error) {
	var memberIDs []uuid.UUID
	q := tx.Model(&memberModel.MemberModel{}).Scopes(memberModel.ActiveScope)
	if sess.AttendanceSessionDepartmentID != nil {
		q = q.Where("member_id IN (?)", departmentMembers(tx, *sess.AttendanceSessionDepartmentID))
	}
	if err := q.Order("member_id").Pluck("member_id", &memberIDs).Error; err != nil {
		return 0, 0, err
	}

	var existing []uuid.UUID
	if err := tx.Model(&recordModel.AttendanceModel{}).
		Where("attendance_date = ? AND attendance_type = ?", sess.AttendanceSessionDate, sess.AttendanceSessionType).
		Pluck("attendance_member_id", &existing).Error; err != nil {
		return 0, 0, err
	}
	has := make(map[uuid.UUID]struct{}, len(existing))
	for _, id := range existing {
		has[id] = struct{}{}
	}

	rows := make([]recordModel.AttendanceModel, 0, len(memberIDs))
	for _, id := range memberIDs {
		if _, ok := has[id]; ok {
			continue
		}
		rows = append(rows, recordModel.AttendanceModel{
			AttendanceMemberID:   id,
			AttendanceEventID:    sess.AttendanceSessionEventID,
			AttendanceType:       sess.AttendanceSessionType,
			AttendanceDate:       sess.AttendanceSessionDate,
			AttendancePresent:    false,
			AttendanceRecordedBy: sess.AttendanceSessionCreatedBy,
		})
	}
	if len(rows) > 0 {
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return 0, 0, err
		}
	}
	return len(rows), len(memberIDs), nil
}

func departmentMembers(db *gorm.DB, departmentID uuid.UUID) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&deptModel.DepartmentMemberModel{}).
		Select("department_member_member_id").
		Where("department_member_department_id = ?", departmentID)
}

/* =========================================================
   Lookups
========================================================= */

// Get loads a session by id with live counts attached.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.AttendanceSessionModel, error) {
	sess, err := s.find(ctx, "attendance_session_id = ?", id)
	if err != nil {
		return nil, err
	}
	s.Refresh(ctx, sess)
	return sess, nil
}

func (s *Service) GetByQRSessionID(ctx context.Context, qrSessionID string) (*model.AttendanceSessionModel, error) {
	sess, err := s.FindByQRSessionID(ctx, qrSessionID)
	if err != nil {
		return nil, err
	}
	s.Refresh(ctx, sess)
	return sess, nil
}

// FindByQRSessionID is the read-only lookup behind the public endpoints:
// stored counters, no refresh and no write.
func (s *Service) FindByQRSessionID(ctx context.Context, qrSessionID string) (*model.AttendanceSessionModel, error) {
	qrSessionID = strings.TrimSpace(qrSessionID)
	if qrSessionID == "" {
		return nil, apperr.Invalid("qr_session_id is required")
	}
	return s.find(ctx, "attendance_session_qr_id = ?", qrSessionID)
}

// GetByDateType prefers the plain session (no department, no event) when
// several share the date and type.
func (s *Service) GetByDateType(ctx context.Context, date time.Time, t recordModel.AttendanceType) (*model.AttendanceSessionModel, error) {
	if !t.Valid() {
		return nil, invalidType(t)
	}
	var sess model.AttendanceSessionModel
	err := s.db.WithContext(ctx).
		Where("attendance_session_date = ? AND attendance_session_type = ?", dbtime.DateOf(date, time.UTC), t).
		Order("attendance_session_department_id IS NOT NULL").
		Order("attendance_session_event_id IS NOT NULL").
		Order("attendance_session_created_at").
		First(&sess).Error
	if err != nil {
		return nil, lookupError(err, map[string]any{
			"date":            dbtime.FormatDate(date),
			"attendance_type": t,
		})
	}
	s.Refresh(ctx, &sess)
	return &sess, nil
}

// Resolve accepts either the session UUID or its QR session id. Counts are
// not refreshed.
func (s *Service) Resolve(ctx context.Context, ref string) (*model.AttendanceSessionModel, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperr.Invalid("session_id is required")
	}
	if id, err := uuid.Parse(ref); err == nil {
		return s.find(ctx, "attendance_session_id = ?", id)
	}
	return s.find(ctx, "attendance_session_qr_id = ?", ref)
}

func (s *Service) find(ctx context.Context, where string, arg any) (*model.AttendanceSessionModel, error) {
	var sess model.AttendanceSessionModel
	if err := s.db.WithContext(ctx).Where(where, arg).First(&sess).Error; err != nil {
		return nil, lookupError(err, map[string]any{"session_id": arg})
	}
	return &sess, nil
}

type ListFilter struct {
	From         *time.Time
	To           *time.Time
	Type         recordModel.AttendanceType
	DepartmentID *uuid.UUID
	Offset       int
	Limit        int
}

// List returns sessions newest first, each with live counts.
func (s *Service) List(ctx context.Context, f ListFilter) ([]model.AttendanceSessionModel, int64, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, 0, invalidType(f.Type)
	}
	q := s.db.WithContext(ctx).Model(&model.AttendanceSessionModel{})
	if f.From != nil {
		q = q.Where("attendance_session_date >= ?", dbtime.DateOf(*f.From, time.UTC))
	}
	if f.To != nil {
		q = q.Where("attendance_session_date <= ?", dbtime.DateOf(*f.To, time.UTC))
	}
	if f.Type != "" {
		q = q.Where("attendance_session_type = ?", f.Type)
	}
	if f.DepartmentID != nil {
		q = q.Where("attendance_session_department_id = ?", *f.DepartmentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "failed to count attendance sessions")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	var rows []model.AttendanceSessionModel
	if err := q.Order("attendance_session_date DESC").
		Order("attendance_session_created_at DESC").
		Offset(f.Offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "failed to list attendance sessions")
	}
	for i := range rows {
		s.Refresh(ctx, &rows[i])
	}
	return rows, total, nil
}

/* =========================================================
   QR management
========================================================= */

type QRAction string

const (
	QRActionClose    QRAction = "close"
	QRActionExtend   QRAction = "extend"
	QRActionActivate QRAction = "activate"
)

type UpdateQROptions struct {
	Action    QRAction
	ExpiresAt *time.Time
	Hours     *float64
}

func (s *Service) UpdateQR(ctx context.Context, id uuid.UUID, opt UpdateQROptions) (*model.AttendanceSessionModel, error) {
	sess, err := s.find(ctx, "attendance_session_id = ?", id)
	if err != nil {
		return nil, err
	}
	if !sess.HasQR() {
		return nil, apperr.Invalid("attendance session has no QR code").
			WithHint("generate one with POST /api/a/attendance/sessions/" + id.String() + "/generate-qr")
	}

	now := s.now()
	updates := map[string]any{}

	switch opt.Action {
	case QRActionClose:
		updates["attendance_session_qr_is_active"] = false

	case QRActionExtend:
		exp, err := s.resolveExpiry(now, opt)
		if err != nil {
			return nil, err
		}
		updates["attendance_session_qr_expires_at"] = exp

	case QRActionActivate:
		updates["attendance_session_qr_is_active"] = true
		expired := sess.AttendanceSessionQRExpiresAt == nil || !sess.AttendanceSessionQRExpiresAt.After(now)
		if expired || opt.ExpiresAt != nil || opt.Hours != nil {
			exp, err := s.resolveExpiry(now, opt)
			if err != nil {
				return nil, err
			}
			updates["attendance_session_qr_expires_at"] = exp
		}

	default:
		return nil, apperr.Invalid("invalid action").
			WithDetails(map[string]any{"allowed": []QRAction{QRActionClose, QRActionExtend, QRActionActivate}})
	}

	if err := s.db.WithContext(ctx).Model(sess).Updates(updates).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to update QR session")
	}
	return s.Get(ctx, id)
}

// resolveExpiry: explicit timestamp, else now+hours, else now+default extend.
func (s *Service) resolveExpiry(now time.Time, opt UpdateQROptions) (time.Time, error) {
	switch {
	case opt.ExpiresAt != nil:
		exp := opt.ExpiresAt.UTC()
		if !exp.After(now) {
			return time.Time{}, apperr.Invalid("expires_at must be in the future")
		}
		return exp, nil
	case opt.Hours != nil:
		if *opt.Hours <= 0 || *opt.Hours > MaxQRHours {
			return time.Time{}, apperr.Invalid(fmt.Sprintf("hours must be greater than 0 and at most %d", MaxQRHours))
		}
		return now.Add(time.Duration(*opt.Hours * float64(time.Hour))), nil
	default:
		return now.Add(s.opt.QRExtend), nil
	}
}

// RegenerateQR replaces the QR sub-record with a fresh, active one. The
// check-in counter is kept.
func (s *Service) RegenerateQR(ctx context.Context, id uuid.UUID, validity time.Duration) (*model.AttendanceSessionModel, *qrcode.QRCode, error) {
	sess, err := s.find(ctx, "attendance_session_id = ?", id)
	if err != nil {
		return nil, nil, err
	}
	qr, err := s.issue(validity)
	if err != nil {
		return nil, nil, err
	}
	applyQR(sess, qr, true)

	if err := s.db.WithContext(ctx).Model(sess).Updates(map[string]any{
		"attendance_session_qr_id":         sess.AttendanceSessionQRID,
		"attendance_session_qr_url":        sess.AttendanceSessionQRURL,
		"attendance_session_qr_expires_at": sess.AttendanceSessionQRExpiresAt,
		"attendance_session_qr_is_active":  true,
	}).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "failed to save QR code")
	}
	s.Refresh(ctx, sess)
	return sess, qr, nil
}

// IncrementCheckinCount bumps the scan counter atomically.
func (s *Service) IncrementCheckinCount(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Model(&model.AttendanceSessionModel{}).
		Where("attendance_session_id = ?", id).
		UpdateColumn("attendance_session_qr_checkin_count", gorm.Expr("attendance_session_qr_checkin_count + 1")).
		Error
	if err != nil {
		logger.L.Warn("qr checkin counter not updated", zap.String("session_id", id.String()), zap.Error(err))
	}
	return err
}

func (s *Service) issue(validity time.Duration) (*qrcode.QRCode, error) {
	if validity <= 0 {
		validity = s.opt.QRValidity
	}
	return qrcode.Issue(qrcode.IssueOptions{
		BaseURL:  s.opt.SiteURL,
		Validity: validity,
		Now:      s.now(),
	})
}

func applyQR(sess *model.AttendanceSessionModel, qr *qrcode.QRCode, active bool) {
	id, url, exp := qr.SessionID, qr.URL, qr.ExpiresAt
	sess.AttendanceSessionQRID = &id
	sess.AttendanceSessionQRURL = &url
	sess.AttendanceSessionQRExpiresAt = &exp
	sess.AttendanceSessionQRIsActive = active
}

/* =========================================================
   Errors
========================================================= */

func invalidType(t recordModel.AttendanceType) error {
	return apperr.Invalid("invalid attendance_type").
		WithDetails(map[string]any{"attendance_type": t, "allowed": recordModel.AttendanceTypes})
}

func duplicateSession(date time.Time, t recordModel.AttendanceType, departmentID, eventID *uuid.UUID) error {
	return apperr.Conflict("an attendance session already exists for this date and type").
		WithDetails(map[string]any{
			"date":            dbtime.FormatDate(date),
			"attendance_type": t,
			"department_id":   departmentID,
			"event_id":        eventID,
		})
}

func lookupError(err error, details map[string]any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("attendance session not found").WithDetails(details)
	}
	return apperr.FromDB(err, "failed to load attendance session")
}
