package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	recordModel "kanisa_backend/internals/features/attendance/records/model"
	"kanisa_backend/internals/features/attendance/sessions/model"
	deptModel "kanisa_backend/internals/features/members/departments/model"
	memberModel "kanisa_backend/internals/features/members/members/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/lock"
	"kanisa_backend/internals/testutil"
)

var (
	sunday = testutil.Date(2025, 1, 5)
	clock  = time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := New(db, Options{SiteURL: "https://church.example"}, lock.NewLocalLocker())
	svc.SetClock(func() time.Time { return clock })
	return svc, db
}

func noDelay() *time.Duration {
	d := time.Duration(0)
	return &d
}

/* ========== Create ========== */

func TestCreate_IssuesQRWithDefaultValidity(t *testing.T) {
	svc, db := newTestService(t)
	testutil.SeedMembers(t, db, 5)

	res, err := svc.Create(context.Background(), CreateSessionOptions{
		Date:    sunday,
		Type:    recordModel.TypeSundayService,
		IssueQR: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.QR)

	s := res.Session
	assert.True(t, s.HasQR())
	assert.True(t, s.AttendanceSessionQRIsActive)
	assert.Equal(t, clock.Add(4*time.Hour), *s.AttendanceSessionQRExpiresAt)
	assert.Equal(t, "https://church.example/checkin/"+res.QR.SessionID, *s.AttendanceSessionQRURL)
	assert.Equal(t, 5, s.AttendanceSessionTotalMembers)
	assert.Equal(t, 0, s.AttendanceSessionPresentCount)
}

func TestCreate_DuplicateIsConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	opt := CreateSessionOptions{Date: sunday, Type: recordModel.TypeSundayService}

	_, err := svc.Create(ctx, opt)
	require.NoError(t, err)

	_, err = svc.Create(ctx, opt)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	var n int64
	require.NoError(t, svc.DB().Model(&model.AttendanceSessionModel{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCreate_SameDateOtherDepartmentIsAllowed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	dept := uuid.New()

	_, err := svc.Create(ctx, CreateSessionOptions{Date: sunday, Type: recordModel.TypeDepartmentMeeting})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateSessionOptions{Date: sunday, Type: recordModel.TypeDepartmentMeeting, DepartmentID: &dept})
	require.NoError(t, err)
}

func TestCreate_LegacyRowsConflict(t *testing.T) {
	svc, db := newTestService(t)
	members := testutil.SeedMembers(t, db, 3)
	testutil.SeedAttendance(t, db, sunday, recordModel.TypeSundayService, members, func(int) bool { return true })

	_, err := svc.Create(context.Background(), CreateSessionOptions{Date: sunday, Type: recordModel.TypeSundayService})
	require.Error(t, err)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindConflict, ae.Kind)
	assert.Contains(t, ae.Hint, "migrate-legacy")

	// department sessions are not blocked by flat rows
	dept := uuid.New()
	_, err = svc.Create(context.Background(), CreateSessionOptions{Date: sunday, Type: recordModel.TypeSundayService, DepartmentID: &dept})
	require.NoError(t, err)
}

func TestCreate_InvalidInput(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateSessionOptions{Type: recordModel.TypeSundayService})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	_, err = svc.Create(context.Background(), CreateSessionOptions{Date: sunday, Type: "picnic"})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestCreate_PopulateMembers(t *testing.T) {
	svc, db := newTestService(t)
	members := testutil.SeedMembers(t, db, 10)
	require.NoError(t, db.Model(&memberModel.MemberModel{}).
		Where("member_id IN ?", []uuid.UUID{members[0].MemberID, members[1].MemberID}).
		Update("member_status", memberModel.MemberStatusInactive).Error)

	res, err := svc.Create(context.Background(), CreateSessionOptions{
		Date:            sunday,
		Type:            recordModel.TypeSundayService,
		PopulateMembers: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, res.Populated)
	assert.Equal(t, 8, res.Session.AttendanceSessionTotalMembers)
	assert.Equal(t, 8, res.Session.AttendanceSessionAbsentCount)
	assert.False(t, res.Session.HasQR())

	var absent int64
	require.NoError(t, db.Model(&recordModel.AttendanceModel{}).
		Where("attendance_present = ?", false).Count(&absent).Error)
	assert.EqualValues(t, 8, absent)
}

func TestCreate_PopulateDepartmentOnly(t *testing.T) {
	svc, db := newTestService(t)
	members := testutil.SeedMembers(t, db, 6)

	dept := deptModel.DepartmentModel{DepartmentName: "Choir", DepartmentSlug: "choir", DepartmentIsActive: true}
	require.NoError(t, db.Create(&dept).Error)
	for _, m := range members[:2] {
		require.NoError(t, db.Create(&deptModel.DepartmentMemberModel{
			DepartmentMemberDepartmentID: dept.DepartmentID,
			DepartmentMemberMemberID:     m.MemberID,
		}).Error)
	}

	res, err := svc.Create(context.Background(), CreateSessionOptions{
		Date:            sunday,
		Type:            recordModel.TypeDepartmentMeeting,
		DepartmentID:    &dept.DepartmentID,
		PopulateMembers: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Populated)
	assert.Equal(t, 2, res.Session.AttendanceSessionTotalMembers)
}

/* ========== Lookups ========== */

func TestGetAndResolve(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateSessionOptions{Date: sunday, Type: recordModel.TypeSundayService, IssueQR: true})
	require.NoError(t, err)
	id := res.Session.AttendanceSessionID

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.AttendanceSessionID)

	byQR, err := svc.GetByQRSessionID(ctx, res.QR.SessionID)
	require.NoError(t, err)
	assert.Equal(t, id, byQR.AttendanceSessionID)

	byDate, err := svc.GetByDateType(ctx, sunday, recordModel.TypeSundayService)
	require.NoError(t, err)
	assert.Equal(t, id, byDate.AttendanceSessionID)

	r1, err := svc.Resolve(ctx, id.String())
	require.NoError(t, err)
	r2, err := svc.Resolve(ctx, res.QR.SessionID)
	require.NoError(t, err)
	assert.Equal(t, r1.AttendanceSessionID, r2.AttendanceSessionID)

	_, err = svc.Get(ctx, uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.GetByDateType(ctx, sunday.AddDate(0, 0, 7), recordModel.TypeSundayService)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestFindByQRSessionID_DoesNotWriteCounters(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	members := testutil.SeedMembers(t, db, 3)

	res, err := svc.Create(ctx, CreateSessionOptions{Date: sunday, Type: recordModel.TypeSundayService, IssueQR: true})
	require.NoError(t, err)
	id := res.Session.AttendanceSessionID
	testutil.SeedAttendance(t, db, sunday, recordModel.TypeSundayService, members, func(i int) bool { return i < 2 })

	storedPresent := func() int {
		var row model.AttendanceSessionModel
		require.NoError(t, db.First(&row, "attendance_session_id = ?", id).Error)
		return row.AttendanceSessionPresentCount
	}

	found, err := svc.FindByQRSessionID(ctx, res.QR.SessionID)
	require.NoError(t, err)
	assert.Equal(t, id, found.AttendanceSessionID)
	assert.Equal(t, 0, found.AttendanceSessionPresentCount)
	assert.Equal(t, 0, storedPresent())

	refreshed, err := svc.GetByQRSessionID(ctx, res.QR.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, refreshed.AttendanceSessionPresentCount)
	assert.Equal(t, 2, storedPresent())

	_, err = svc.FindByQRSessionID(ctx, "  ")
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	_, err = svc.FindByQRSessionID(ctx, "qr_missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestList_FiltersAndPaging(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateSessionOptions{Date: sunday.AddDate(0, 0, 7*i), Type: recordModel.TypeSundayService})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, CreateSessionOptions{Date: sunday.AddDate(0, 0, 3), Type: recordModel.TypeMidweekFellowship})
	require.NoError(t, err)

	rows, total, err := svc.List(ctx, ListFilter{Type: recordModel.TypeSundayService, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].AttendanceSessionDate.After(rows[1].AttendanceSessionDate))

	from := sunday.AddDate(0, 0, 1)
	rows, total, err = svc.List(ctx, ListFilter{From: &from})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, rows, 3)
}

/* ========== QR updates ========== */

func TestUpdateQR_Actions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateSessionOptions{Date: sunday, Type: recordModel.TypeSundayService, IssueQR: true})
	require.NoError(t, err)
	id := res.Session.AttendanceSessionID

	s, err := svc.UpdateQR(ctx, id, UpdateQROptions{Action: QRActionClose})
	require.NoError(t, err)
	assert.False(t, s.AttendanceSessionQRIsActive)

	s, err = svc.UpdateQR(ctx, id, UpdateQROptions{Action: QRActionExtend})
	require.NoError(t, err)
	assert.Equal(t, clock.Add(2*time.Hour), s.AttendanceSessionQRExpiresAt.UTC())

	hours := 1.5
	s, err = svc.UpdateQR(ctx, id, UpdateQROptions{Action: QRActionExtend, Hours: &hours})
	require.NoError(t, err)
	assert.Equal(t, clock.Add(90*time.Minute), s.AttendanceSessionQRExpiresAt.UTC())

	at := clock.Add(6 * time.Hour)
	s, err = svc.UpdateQR(ctx, id, UpdateQROptions{Action: QRActionActivate, ExpiresAt: &at})
	require.NoError(t, err)
	assert.True(t, s.AttendanceSessionQRIsActive)
	assert.Equal(t, at, s.AttendanceSessionQRExpiresAt.UTC())
}

func TestUpdateQR_ActivateExpiredSetsNewExpiry(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateSessionOptions{Date: sunday, Type: recordModel.TypeSundayService, IssueQR: true})
	require.NoError(t, err)
	id := res.Session.AttendanceSessionID

	later := clock.Add(10 * time.Hour)
	svc.SetClock(func() time.Time { return later })

	s, err := svc.UpdateQR(ctx, id, UpdateQROptions{Action: QRActionActivate})
	require.NoError(t, err)
	assert.True(t, s.QRAcceptsAt(later))
	assert.Equal(t, later.Add(2*time.Hour), s.AttendanceSessionQRExpiresAt.UTC())
}

func TestUpdateQR_Rejections(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	plain, err := svc.Create(ctx, CreateSessionOptions{Date: sunday, Type: recordModel.TypeSundayService})
	require.NoError(t, err)
	_, err = svc.UpdateQR(ctx, plain.Session.AttendanceSessionID, UpdateQROptions{Action: QRActionClose})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	withQR, err := svc.Create(ctx, CreateSessionOptions{Date: sunday, Type: recordModel.TypeMidweekFellowship, IssueQR: true})
	require.NoError(t, err)
	id := withQR.Session.AttendanceSessionID

	_, err = svc.UpdateQR(ctx, id, UpdateQROptions{Action: "pause"})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	past := clock.Add(-time.Hour)
	_, err = svc.UpdateQR(ctx, id, UpdateQROptions{Action: QRActionExtend, ExpiresAt: &past})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	// oversized hours would overflow the duration into the past
	for _, h := range []float64{0, -1, MaxQRHours + 0.5, 1e7} {
		hours := h
		_, err = svc.UpdateQR(ctx, id, UpdateQROptions{Action: QRActionExtend, Hours: &hours})
		assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err), "hours=%v", h)
	}
	var stored model.AttendanceSessionModel
	require.NoError(t, db.First(&stored, "attendance_session_id = ?", id).Error)
	assert.Equal(t, clock.Add(4*time.Hour), stored.AttendanceSessionQRExpiresAt.UTC())
	assert.True(t, stored.AttendanceSessionQRIsActive)

	maxHours := float64(MaxQRHours)
	extended, err := svc.UpdateQR(ctx, id, UpdateQROptions{Action: QRActionExtend, Hours: &maxHours})
	require.NoError(t, err)
	assert.Equal(t, clock.Add(MaxQRHours*time.Hour), extended.AttendanceSessionQRExpiresAt.UTC())

	_, err = svc.UpdateQR(ctx, uuid.New(), UpdateQROptions{Action: QRActionClose})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRegenerateQR(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateSessionOptions{Date: sunday, Type: recordModel.TypeSundayService, IssueQR: true})
	require.NoError(t, err)
	id := res.Session.AttendanceSessionID
	_, err = svc.UpdateQR(ctx, id, UpdateQROptions{Action: QRActionClose})
	require.NoError(t, err)
	require.NoError(t, svc.IncrementCheckinCount(ctx, id))

	s, qr, err := svc.RegenerateQR(ctx, id, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, res.QR.SessionID, qr.SessionID)
	assert.True(t, s.AttendanceSessionQRIsActive)
	assert.Equal(t, clock.Add(time.Hour), *s.AttendanceSessionQRExpiresAt)

	stored, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, qr.SessionID, *stored.AttendanceSessionQRID)
	assert.Equal(t, 1, stored.AttendanceSessionQRCheckinCount)
}

/* ========== Aggregator ========== */

func TestRate(t *testing.T) {
	cases := []struct {
		present, total int64
		want           float64
	}{
		{42, 100, 42},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{0, 0, 0},
		{5, 0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Rate(tc.present, tc.total), "%d/%d", tc.present, tc.total)
	}

	c := NewCounts(5, 3)
	assert.Equal(t, 0, c.AbsentCount)
}

func TestCompute_LiveDenominator(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	members := testutil.SeedMembers(t, db, 20)
	testutil.SeedAttendance(t, db, sunday, recordModel.TypeSundayService, members, func(i int) bool { return i < 5 })

	c, err := svc.Compute(ctx, sunday, recordModel.TypeSundayService)
	require.NoError(t, err)
	assert.Equal(t, Counts{TotalMembers: 20, PresentCount: 5, AbsentCount: 15, AttendanceRate: 25}, c)

	// deactivating members changes the historical rate
	require.NoError(t, db.Model(&memberModel.MemberModel{}).
		Where("member_number > ?", "M-0010").
		Update("member_status", memberModel.MemberStatusInactive).Error)

	c, err = svc.Compute(ctx, sunday, recordModel.TypeSundayService)
	require.NoError(t, err)
	assert.Equal(t, 10, c.TotalMembers)
	assert.Equal(t, 50.0, c.AttendanceRate)
}

/* ========== Legacy migrator ========== */

func TestMigrateLegacy_IsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	members := testutil.SeedMembers(t, db, 10)

	testutil.SeedAttendance(t, db, sunday, recordModel.TypeSundayService, members, func(i int) bool { return i < 7 })
	testutil.SeedAttendance(t, db, sunday.AddDate(0, 0, 7), recordModel.TypeSundayService, members, func(i int) bool { return i < 4 })
	testutil.SeedAttendance(t, db, sunday.AddDate(0, 0, 3), recordModel.TypeMidweekFellowship, members[:3], func(int) bool { return true })

	// one group already has an event session
	event := uuid.New()
	_, err := svc.Create(ctx, CreateSessionOptions{Date: sunday.AddDate(0, 0, 3), Type: recordModel.TypeMidweekFellowship, EventID: &event})
	require.NoError(t, err)

	res, err := svc.MigrateLegacy(ctx, MigrateOptions{Delay: noDelay()})
	require.NoError(t, err)
	assert.Equal(t, 3, res.GroupsFound)
	assert.Equal(t, 2, res.Migrated)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Failed)
	require.Len(t, res.Sessions, 2)
	assert.Equal(t, "2025-01-05", res.Sessions[0].Date)
	assert.Equal(t, 7, res.Sessions[0].PresentCount)

	first, err := svc.GetByDateType(ctx, sunday, recordModel.TypeSundayService)
	require.NoError(t, err)
	assert.True(t, first.HasQR())
	assert.False(t, first.AttendanceSessionQRIsActive)
	assert.Equal(t, 70.0, first.AttendanceSessionRate)

	again, err := svc.MigrateLegacy(ctx, MigrateOptions{Delay: noDelay()})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Migrated)
	assert.Equal(t, 3, again.Skipped)

	var n int64
	require.NoError(t, db.Model(&model.AttendanceSessionModel{}).Count(&n).Error)
	assert.EqualValues(t, 3, n)
}

func TestMigrateLegacy_LockHeldIsConflict(t *testing.T) {
	db := testutil.NewDB(t)
	locker := lock.NewLocalLocker()
	svc := New(db, Options{}, locker)

	ok, err := locker.TryLock(context.Background(), migrateLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.MigrateLegacy(context.Background(), MigrateOptions{Delay: noDelay()})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestMigrateLegacy_StopsOnCancel(t *testing.T) {
	svc, db := newTestService(t)
	members := testutil.SeedMembers(t, db, 2)
	testutil.SeedAttendance(t, db, sunday, recordModel.TypeSundayService, members, func(int) bool { return true })
	testutil.SeedAttendance(t, db, sunday.AddDate(0, 0, 7), recordModel.TypeSundayService, members, func(int) bool { return true })

	ctx, cancel := context.WithCancel(context.Background())
	delay := time.Hour
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	res, err := svc.MigrateLegacy(ctx, MigrateOptions{Delay: &delay})
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Equal(t, 1, res.Migrated)
}
