package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	recordModel "kanisa_backend/internals/features/attendance/records/model"
	sessionService "kanisa_backend/internals/features/attendance/sessions/service"
	memberModel "kanisa_backend/internals/features/members/members/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/lock"
	"kanisa_backend/internals/helpers/logger"
	"kanisa_backend/internals/testutil"
)

var (
	sunday = testutil.Date(2025, 1, 5)
	clock  = time.Date(2025, 1, 5, 8, 30, 0, 0, time.UTC)
)

type fixture struct {
	db       *gorm.DB
	sessions *sessionService.Service
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	sessions := sessionService.New(db, sessionService.Options{SiteURL: "https://church.example"}, lock.NewLocalLocker())
	sessions.SetClock(func() time.Time { return clock })
	svc := New(db, sessions)
	svc.SetClock(func() time.Time { return clock })
	return &fixture{db: db, sessions: sessions, svc: svc}
}

func (f *fixture) openSession(t *testing.T, populate bool) *sessionService.CreateResult {
	t.Helper()
	res, err := f.sessions.Create(context.Background(), sessionService.CreateSessionOptions{
		Date:            sunday,
		Type:            recordModel.TypeSundayService,
		PopulateMembers: populate,
		IssueQR:         true,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) countRecords(t *testing.T, present bool) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&recordModel.AttendanceModel{}).
		Where("attendance_date = ? AND attendance_type = ? AND attendance_present = ?", sunday, recordModel.TypeSundayService, present).
		Count(&n).Error)
	return n
}

func TestCheckIn_SundayScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	members := testutil.SeedMembers(t, f.db, 100)
	res := f.openSession(t, true)
	qrID := res.QR.SessionID

	for i := 0; i < 42; i++ {
		req := CheckInRequest{SessionRef: qrID}
		switch i % 3 {
		case 0:
			req.MemberID = members[i].MemberID.String()
		case 1:
			req.Phone = *members[i].MemberPhone
		default:
			req.MemberNumber = members[i].MemberNumber
		}
		out, err := f.svc.CheckIn(ctx, req)
		require.NoError(t, err, "check-in %d", i)
		require.False(t, out.AlreadyPresent)
		require.Equal(t, members[i].MemberID, out.Member.MemberID)
	}

	dup, err := f.svc.CheckIn(ctx, CheckInRequest{SessionRef: qrID, MemberID: members[0].MemberID.String()})
	require.NoError(t, err)
	assert.True(t, dup.AlreadyPresent)

	assert.EqualValues(t, 42, f.countRecords(t, true))
	assert.EqualValues(t, 58, f.countRecords(t, false))

	sess, err := f.sessions.Get(ctx, res.Session.AttendanceSessionID)
	require.NoError(t, err)
	assert.Equal(t, 100, sess.AttendanceSessionTotalMembers)
	assert.Equal(t, 42, sess.AttendanceSessionPresentCount)
	assert.Equal(t, 58, sess.AttendanceSessionAbsentCount)
	assert.Equal(t, 42.0, sess.AttendanceSessionRate)
	assert.Equal(t, 43, sess.AttendanceSessionQRCheckinCount)
}

func TestCheckIn_IdempotentWithoutRoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := testutil.SeedMembers(t, f.db, 1)[0]
	res := f.openSession(t, false)

	first, err := f.svc.CheckIn(ctx, CheckInRequest{SessionRef: res.QR.SessionID, MemberID: m.MemberID.String()})
	require.NoError(t, err)
	assert.False(t, first.AlreadyPresent)
	require.NotNil(t, first.Record.AttendanceNotes)
	assert.Equal(t, ViaQRNote, *first.Record.AttendanceNotes)
	assert.Equal(t, 100.0, first.Counts.AttendanceRate)

	second, err := f.svc.CheckIn(ctx, CheckInRequest{SessionRef: res.Session.AttendanceSessionID.String(), MemberID: m.MemberID.String()})
	require.NoError(t, err)
	assert.True(t, second.AlreadyPresent)
	assert.Equal(t, first.Record.AttendanceID, second.Record.AttendanceID)

	var n int64
	require.NoError(t, f.db.Model(&recordModel.AttendanceModel{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCheckIn_FlipsAbsentRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := testutil.SeedMembers(t, f.db, 1)[0]
	res := f.openSession(t, true)

	out, err := f.svc.CheckIn(ctx, CheckInRequest{SessionRef: res.QR.SessionID, MemberNumber: m.MemberNumber, Notes: "late"})
	require.NoError(t, err)

	var rec recordModel.AttendanceModel
	require.NoError(t, f.db.First(&rec, "attendance_id = ?", out.Record.AttendanceID).Error)
	assert.True(t, rec.AttendancePresent)
	require.NotNil(t, rec.AttendanceCheckedInAt)
	assert.Equal(t, clock, rec.AttendanceCheckedInAt.UTC())
	require.NotNil(t, rec.AttendanceNotes)
	assert.Equal(t, "Checked in via QR; late", *rec.AttendanceNotes)
}

func TestCheckIn_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, CheckInRequest{MemberID: uuid.NewString()})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	_, err = f.svc.CheckIn(ctx, CheckInRequest{SessionRef: "qr_1_abcdef"})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	_, err = f.svc.CheckIn(ctx, CheckInRequest{SessionRef: "qr_1_abcdef", Phone: "0712345678"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCheckIn_ExpiredEvenWhenActive(t *testing.T) {
	f := newFixture(t)
	m := testutil.SeedMembers(t, f.db, 1)[0]
	res := f.openSession(t, false)

	f.svc.SetClock(func() time.Time { return clock.Add(5 * time.Hour) })
	_, err := f.svc.CheckIn(context.Background(), CheckInRequest{SessionRef: res.QR.SessionID, MemberID: m.MemberID.String()})
	require.Error(t, err)
	assert.Equal(t, apperr.KindExpired, apperr.KindOf(err))

	var n int64
	require.NoError(t, f.db.Model(&recordModel.AttendanceModel{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCheckIn_ClosedIsExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := testutil.SeedMembers(t, f.db, 1)[0]
	res := f.openSession(t, false)

	_, err := f.sessions.UpdateQR(ctx, res.Session.AttendanceSessionID, sessionService.UpdateQROptions{Action: sessionService.QRActionClose})
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, CheckInRequest{SessionRef: res.QR.SessionID, MemberID: m.MemberID.String()})
	assert.Equal(t, apperr.KindExpired, apperr.KindOf(err))
}

func TestResolveMember_PhoneForms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stored := "+255712345678"
	m := testutil.SeedMember(t, f.db, memberModel.MemberModel{MemberNumber: "M-0100", MemberPhone: &stored})
	spaced := "0755 123-456"
	other := testutil.SeedMember(t, f.db, memberModel.MemberModel{MemberNumber: "M-0200", MemberPhone: &spaced})

	for _, phone := range []string{"+255712345678", "255712345678", "+255 712-345-678", "0712345678", "712345678"} {
		got, err := f.svc.ResolveMember(ctx, "", phone, "")
		require.NoError(t, err, phone)
		assert.Equal(t, m.MemberID, got.MemberID, phone)
	}

	got, err := f.svc.ResolveMember(ctx, "", "0755123456", "")
	require.NoError(t, err)
	assert.Equal(t, other.MemberID, got.MemberID)
}

func TestResolveMember_SuffixCollisionTakesOldestAndWarns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	core, logs := observer.New(zap.WarnLevel)
	prev := logger.L
	logger.L = zap.New(core)
	t.Cleanup(func() { logger.L = prev })

	tz, ke := "+255712345678", "+254712345678"
	older := testutil.SeedMember(t, f.db, memberModel.MemberModel{
		MemberNumber: "M-0300", MemberPhone: &tz, MemberCreatedAt: clock.Add(-48 * time.Hour),
	})
	newer := testutil.SeedMember(t, f.db, memberModel.MemberModel{
		MemberNumber: "M-0301", MemberPhone: &ke, MemberCreatedAt: clock.Add(-24 * time.Hour),
	})

	got, err := f.svc.ResolveMember(ctx, "", "0712345678", "")
	require.NoError(t, err)
	assert.Equal(t, older.MemberID, got.MemberID)

	warnings := logs.FilterMessage("ambiguous phone suffix match, using oldest member").All()
	require.Len(t, warnings, 1)
	fields := warnings[0].ContextMap()
	assert.Equal(t, "712345678", fields["suffix"])
	assert.Equal(t, newer.MemberID.String(), fields["other_member_id"])

	// an exact match never reaches the suffix step
	got, err = f.svc.ResolveMember(ctx, "", ke, "")
	require.NoError(t, err)
	assert.Equal(t, newer.MemberID, got.MemberID)
	assert.Len(t, logs.FilterMessage("ambiguous phone suffix match, using oldest member").All(), 1)
}

func TestResolveMember_OrderAndMisses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	members := testutil.SeedMembers(t, f.db, 2)

	// id wins over a phone that belongs to someone else
	got, err := f.svc.ResolveMember(ctx, members[0].MemberID.String(), *members[1].MemberPhone, "")
	require.NoError(t, err)
	assert.Equal(t, members[0].MemberID, got.MemberID)

	// unknown id falls through to member number
	got, err = f.svc.ResolveMember(ctx, uuid.NewString(), "", members[1].MemberNumber)
	require.NoError(t, err)
	assert.Equal(t, members[1].MemberID, got.MemberID)

	require.NoError(t, f.db.Model(&memberModel.MemberModel{}).
		Where("member_id = ?", members[1].MemberID).
		Update("member_status", memberModel.MemberStatusInactive).Error)

	_, err = f.svc.ResolveMember(ctx, "", "", members[1].MemberNumber)
	require.Error(t, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindNotFound, ae.Kind)
	details, ok := ae.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"member_number": members[1].MemberNumber}, details["search_criteria"])
}

func TestNormalizePhoneAndNotes(t *testing.T) {
	assert.Equal(t, "255712345678", NormalizePhone(" +255 712-345-678 "))

	assert.Nil(t, AppendNote(nil, " ", ""))
	prev := "came with family"
	assert.Equal(t, fmt.Sprintf("%s; %s", prev, ViaQRNote), *AppendNote(&prev, ViaQRNote))
}
