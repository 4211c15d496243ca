package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	recordModel "kanisa_backend/internals/features/attendance/records/model"
	"kanisa_backend/internals/features/attendance/sessions/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
	"kanisa_backend/internals/helpers/logger"
)

const migrateLockKey = "attendance:migrate-legacy"

/* =========================================================
   Legacy migrator
   flat attendance rows grouped by (date, type) -> one session each
========================================================= */

type MigrateOptions struct {
	// Delay between groups; nil uses MIGRATION_GROUP_DELAY.
	Delay     *time.Duration
	CreatedBy *uuid.UUID
}

type MigratedSession struct {
	SessionID    uuid.UUID                  `json:"session_id"`
	Date         string                     `json:"date"`
	Type         recordModel.AttendanceType `json:"attendance_type"`
	Records      int64                      `json:"records"`
	PresentCount int                        `json:"present_count"`
	QRSessionID  string                     `json:"qr_session_id"`
}

type MigrationError struct {
	Date  string                     `json:"date"`
	Type  recordModel.AttendanceType `json:"attendance_type"`
	Error string                     `json:"error"`
}

type MigrationResult struct {
	GroupsFound int               `json:"groups_found"`
	Migrated    int               `json:"migrated"`
	Skipped     int               `json:"skipped"`
	Failed      int               `json:"failed"`
	Cancelled   bool              `json:"cancelled,omitempty"`
	Sessions    []MigratedSession `json:"sessions"`
	Errors      []MigrationError  `json:"errors,omitempty"`
}

type legacyGroup struct {
	Date    dbtime.Date
	Type    recordModel.AttendanceType
	Records int64
	Present int64
}

// MigrateLegacy is idempotent: groups that already have any session for
// their date/type are skipped. Only one run may hold the lock at a time.
func (s *Service) MigrateLegacy(ctx context.Context, opt MigrateOptions) (*MigrationResult, error) {
	ok, err := s.locker.TryLock(ctx, migrateLockKey, s.opt.MigrationLockTTL)
	if err != nil {
		return nil, apperr.Internal("failed to acquire migration lock", err)
	}
	if !ok {
		return nil, apperr.Conflict("a legacy migration is already running")
	}
	defer func() {
		if err := s.locker.Unlock(context.Background(), migrateLockKey); err != nil {
			logger.L.Warn("migration lock not released", zap.Error(err))
		}
	}()

	delay := s.opt.MigrationDelay
	if opt.Delay != nil {
		delay = *opt.Delay
	}

	groups, err := s.legacyGroups(ctx)
	if err != nil {
		return nil, err
	}
	res := &MigrationResult{GroupsFound: len(groups), Sessions: []MigratedSession{}}
	if len(groups) == 0 {
		return res, nil
	}

	active, err := ActiveMembers(s.db.WithContext(ctx))
	if err != nil {
		return nil, apperr.FromDB(err, "failed to count active members")
	}

	for i, g := range groups {
		if i > 0 && !sleepCtx(ctx, delay) {
			res.Cancelled = true
			break
		}
		date := g.Date.Time

		var existing int64
		if err := s.db.WithContext(ctx).Model(&model.AttendanceSessionModel{}).
			Where("attendance_session_date = ? AND attendance_session_type = ?", date, g.Type).
			Count(&existing).Error; err != nil {
			res.fail(g, err)
			continue
		}
		if existing > 0 {
			res.Skipped++
			continue
		}

		sess, err := s.migrateGroup(ctx, g, active, opt.CreatedBy)
		if err != nil {
			if apperr.Is(err, apperr.KindConflict) {
				res.Skipped++
				continue
			}
			res.fail(g, err)
			continue
		}
		res.Migrated++
		res.Sessions = append(res.Sessions, MigratedSession{
			SessionID:    sess.AttendanceSessionID,
			Date:         dbtime.FormatDate(date),
			Type:         g.Type,
			Records:      g.Records,
			PresentCount: sess.AttendanceSessionPresentCount,
			QRSessionID:  *sess.AttendanceSessionQRID,
		})
	}

	logger.L.Info("legacy attendance migration finished",
		zap.Int("groups", res.GroupsFound),
		zap.Int("migrated", res.Migrated),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
		zap.Bool("cancelled", res.Cancelled))
	return res, nil
}

func (s *Service) legacyGroups(ctx context.Context) ([]legacyGroup, error) {
	rows, err := s.db.WithContext(ctx).
		Model(&recordModel.AttendanceModel{}).
		Select("attendance_date, attendance_type, COUNT(*), SUM(CASE WHEN attendance_present THEN 1 ELSE 0 END)").
		Group("attendance_date, attendance_type").
		Order("attendance_date, attendance_type").
		Rows()
	if err != nil {
		return nil, apperr.FromDB(err, "failed to read legacy attendance")
	}
	defer rows.Close()

	var out []legacyGroup
	for rows.Next() {
		var g legacyGroup
		if err := rows.Scan(&g.Date, &g.Type, &g.Records, &g.Present); err != nil {
			return nil, apperr.Internal("failed to read legacy attendance", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.FromDB(err, "failed to read legacy attendance")
	}
	return out, nil
}

// migrateGroup creates the session with an inactive QR code; past dates are
// not open for check-in until an admin activates them.
func (s *Service) migrateGroup(ctx context.Context, g legacyGroup, active int64, createdBy *uuid.UUID) (*model.AttendanceSessionModel, error) {
	qr, err := s.issue(0)
	if err != nil {
		return nil, err
	}
	c := NewCounts(g.Present, active)
	sess := &model.AttendanceSessionModel{
		AttendanceSessionDate:         g.Date.Time,
		AttendanceSessionType:         g.Type,
		AttendanceSessionTotalMembers: c.TotalMembers,
		AttendanceSessionPresentCount: c.PresentCount,
		AttendanceSessionAbsentCount:  c.AbsentCount,
		AttendanceSessionRate:         c.AttendanceRate,
		AttendanceSessionCreatedBy:    createdBy,
	}
	applyQR(sess, qr, false)

	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to create migrated session")
	}
	return sess, nil
}

func (r *MigrationResult) fail(g legacyGroup, err error) {
	r.Failed++
	r.Errors = append(r.Errors, MigrationError{
		Date:  dbtime.FormatDate(g.Date.Time),
		Type:  g.Type,
		Error: err.Error(),
	})
	logger.L.Warn("legacy group not migrated",
		zap.String("date", dbtime.FormatDate(g.Date.Time)),
		zap.String("type", string(g.Type)),
		zap.Error(err))
}

// sleepCtx waits d and reports false when ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
