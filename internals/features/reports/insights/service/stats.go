package service

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"

	recordModel "kanisa_backend/internals/features/attendance/records/model"
	sessionModel "kanisa_backend/internals/features/attendance/sessions/model"
	txService "kanisa_backend/internals/features/finance/transactions/service"
	deptService "kanisa_backend/internals/features/members/departments/service"
	memberModel "kanisa_backend/internals/features/members/members/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
)

type Collector struct {
	db          *gorm.DB
	churchName  string
	currency    string
	finance     *txService.Service
	departments *deptService.Service
}

func NewCollector(db *gorm.DB, churchName, currency string) *Collector {
	return &Collector{
		db:          db,
		churchName:  churchName,
		currency:    currency,
		finance:     txService.New(db, currency),
		departments: deptService.New(db),
	}
}

// Collect gathers period statistics. Attendance and finance stay nil when
// the period has no sessions or completed transactions.
func (c *Collector) Collect(ctx context.Context, from, to time.Time) (*ReportData, error) {
	from = dbtime.DateOf(from, time.UTC)
	to = dbtime.DateOf(to, time.UTC)
	if to.Before(from) {
		return nil, apperr.Invalid("to must not be before from")
	}
	out := &ReportData{ChurchName: c.churchName, From: from, To: to}

	var err error
	if out.Members, err = c.memberStats(ctx, from, to); err != nil {
		return nil, err
	}
	if out.Attendance, err = c.attendanceStats(ctx, from, to); err != nil {
		return nil, err
	}
	if out.Finance, err = c.financeStats(ctx, from, to); err != nil {
		return nil, err
	}
	if out.Departments, err = c.departmentStats(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collector) memberStats(ctx context.Context, from, to time.Time) (*MemberStats, error) {
	var st MemberStats
	base := func() *gorm.DB { return c.db.WithContext(ctx).Model(&memberModel.MemberModel{}) }

	if err := base().Count(&st.Total).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to count members")
	}
	if err := base().Scopes(memberModel.ActiveScope).Count(&st.Active).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to count active members")
	}
	if err := base().
		Where("member_join_date >= ? AND member_join_date <= ?", from, to).
		Count(&st.NewInPeriod).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to count new members")
	}
	return &st, nil
}

func (c *Collector) attendanceStats(ctx context.Context, from, to time.Time) (*AttendanceStats, error) {
	type sessionRow struct {
		Type     string
		Sessions int64
		AvgRate  float64
	}
	var sessions []sessionRow
	err := c.db.WithContext(ctx).
		Model(&sessionModel.AttendanceSessionModel{}).
		Select("attendance_session_type AS type, COUNT(*) AS sessions, COALESCE(AVG(attendance_session_rate), 0) AS avg_rate").
		Where("attendance_session_date >= ? AND attendance_session_date <= ?", from, to).
		Group("attendance_session_type").
		Scan(&sessions).Error
	if err != nil {
		return nil, apperr.FromDB(err, "failed to summarize sessions")
	}

	type presentRow struct {
		Type    string
		Present int64
	}
	var present []presentRow
	err = c.db.WithContext(ctx).
		Model(&recordModel.AttendanceModel{}).
		Select("attendance_type AS type, COUNT(*) AS present").
		Where("attendance_present = ? AND attendance_date >= ? AND attendance_date <= ?", true, from, to).
		Group("attendance_type").
		Scan(&present).Error
	if err != nil {
		return nil, apperr.FromDB(err, "failed to count attendance")
	}
	if len(sessions) == 0 && len(present) == 0 {
		return nil, nil
	}

	st := &AttendanceStats{ByType: map[string]TypeAttendance{}}
	var rateSum float64
	for _, s := range sessions {
		t := st.ByType[s.Type]
		t.Sessions = s.Sessions
		t.AverageRate = round1(s.AvgRate)
		st.ByType[s.Type] = t
		st.Sessions += s.Sessions
		rateSum += s.AvgRate * float64(s.Sessions)
	}
	for _, p := range present {
		t := st.ByType[p.Type]
		t.Present = p.Present
		st.ByType[p.Type] = t
		st.TotalPresent += p.Present
	}
	if st.Sessions > 0 {
		st.AverageRate = round1(rateSum / float64(st.Sessions))
	}
	return st, nil
}

func (c *Collector) financeStats(ctx context.Context, from, to time.Time) (*FinanceStats, error) {
	sum, err := c.finance.Summarize(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if sum.TransactionCount == 0 {
		return nil, nil
	}
	st := &FinanceStats{
		Currency:     c.currency,
		TotalIncome:  sum.TotalIncome,
		TotalExpense: sum.TotalExpense,
		Net:          sum.Net,
		ByCategory:   map[string]int64{},
	}
	for _, ct := range sum.IncomeByCategory {
		st.ByCategory["income:"+ct.Category] = ct.Total
	}
	for _, ct := range sum.ExpenseByCategory {
		st.ByCategory["expense:"+ct.Category] = ct.Total
	}
	return st, nil
}

func (c *Collector) departmentStats(ctx context.Context) (map[string]int64, error) {
	rows, counts, err := c.departments.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make(map[string]int64, len(rows))
	for _, d := range rows {
		out[d.DepartmentName] = counts[d.DepartmentID]
	}
	return out, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
