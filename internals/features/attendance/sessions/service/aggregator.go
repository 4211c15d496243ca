package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	recordModel "kanisa_backend/internals/features/attendance/records/model"
	"kanisa_backend/internals/features/attendance/sessions/model"
	memberModel "kanisa_backend/internals/features/members/members/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
	"kanisa_backend/internals/helpers/logger"
)

/* =========================================================
   Aggregator
   rate = present / active members now * 100
========================================================= */

type Counts struct {
	TotalMembers   int     `json:"total_members"`
	PresentCount   int     `json:"present_count"`
	AbsentCount    int     `json:"absent_count"`
	AttendanceRate float64 `json:"attendance_rate"`
}

func NewCounts(present, total int64) Counts {
	absent := total - present
	if absent < 0 {
		absent = 0
	}
	return Counts{
		TotalMembers:   int(total),
		PresentCount:   int(present),
		AbsentCount:    int(absent),
		AttendanceRate: Rate(present, total),
	}
}

// Rate is a percentage rounded to two decimals, 0 without members.
func Rate(present, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(present)/float64(total)*10000) / 100
}

// Compute counts present records for the date/type against every active
// member.
func (s *Service) Compute(ctx context.Context, date time.Time, t recordModel.AttendanceType) (Counts, error) {
	return s.compute(ctx, dbtime.DateOf(date, time.UTC), t, nil)
}

// ComputeForSession scopes both sides to the department for department
// sessions.
func (s *Service) ComputeForSession(ctx context.Context, sess *model.AttendanceSessionModel) (Counts, error) {
	return s.compute(ctx, sess.AttendanceSessionDate, sess.AttendanceSessionType, sess.AttendanceSessionDepartmentID)
}

func (s *Service) compute(ctx context.Context, date time.Time, t recordModel.AttendanceType, departmentID *uuid.UUID) (Counts, error) {
	db := s.db.WithContext(ctx)

	present := db.Model(&recordModel.AttendanceModel{}).
		Where("attendance_date = ? AND attendance_type = ? AND attendance_present = ?", date, t, true)
	total := db.Model(&memberModel.MemberModel{}).Scopes(memberModel.ActiveScope)
	if departmentID != nil {
		present = present.Where("attendance_member_id IN (?)", departmentMembers(db, *departmentID))
		total = total.Where("member_id IN (?)", departmentMembers(db, *departmentID))
	}

	var p, m int64
	if err := present.Distinct("attendance_member_id").Count(&p).Error; err != nil {
		return Counts{}, apperr.FromDB(err, "failed to count attendance")
	}
	if err := total.Count(&m).Error; err != nil {
		return Counts{}, apperr.FromDB(err, "failed to count active members")
	}
	return NewCounts(p, m), nil
}

// Refresh recomputes the session counters and writes them back. Failures are
// logged and the stored counters are kept.
func (s *Service) Refresh(ctx context.Context, sess *model.AttendanceSessionModel) Counts {
	c, err := s.ComputeForSession(ctx, sess)
	if err != nil {
		logger.L.Warn("session counters not computed",
			zap.String("session_id", sess.AttendanceSessionID.String()), zap.Error(err))
		return StoredCounts(sess)
	}
	sess.AttendanceSessionTotalMembers = c.TotalMembers
	sess.AttendanceSessionPresentCount = c.PresentCount
	sess.AttendanceSessionAbsentCount = c.AbsentCount
	sess.AttendanceSessionRate = c.AttendanceRate

	err = s.db.WithContext(ctx).
		Model(&model.AttendanceSessionModel{}).
		Where("attendance_session_id = ?", sess.AttendanceSessionID).
		UpdateColumns(map[string]any{
			"attendance_session_total_members": c.TotalMembers,
			"attendance_session_present_count": c.PresentCount,
			"attendance_session_absent_count":  c.AbsentCount,
			"attendance_session_rate":          c.AttendanceRate,
		}).Error
	if err != nil {
		logger.L.Warn("session counters not saved",
			zap.String("session_id", sess.AttendanceSessionID.String()), zap.Error(err))
	}
	return c
}

// RefreshDateType refreshes every session on the date/type. Used after a
// roster replace.
func (s *Service) RefreshDateType(ctx context.Context, date time.Time, t recordModel.AttendanceType) {
	var rows []model.AttendanceSessionModel
	if err := s.db.WithContext(ctx).
		Where("attendance_session_date = ? AND attendance_session_type = ?", dbtime.DateOf(date, time.UTC), t).
		Find(&rows).Error; err != nil {
		logger.L.Warn("sessions not refreshed", zap.Time("date", date), zap.String("type", string(t)), zap.Error(err))
		return
	}
	for i := range rows {
		s.Refresh(ctx, &rows[i])
	}
}

func StoredCounts(sess *model.AttendanceSessionModel) Counts {
	return Counts{
		TotalMembers:   sess.AttendanceSessionTotalMembers,
		PresentCount:   sess.AttendanceSessionPresentCount,
		AbsentCount:    sess.AttendanceSessionAbsentCount,
		AttendanceRate: sess.AttendanceSessionRate,
	}
}

// ActiveMembers counts members with status active.
func ActiveMembers(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(&memberModel.MemberModel{}).Scopes(memberModel.ActiveScope).Count(&n).Error
	return n, err
}
