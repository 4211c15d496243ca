package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recordModel "kanisa_backend/internals/features/attendance/records/model"
	sessionModel "kanisa_backend/internals/features/attendance/sessions/model"
	txModel "kanisa_backend/internals/features/finance/transactions/model"
	txService "kanisa_backend/internals/features/finance/transactions/service"
	deptModel "kanisa_backend/internals/features/members/departments/model"
	memberModel "kanisa_backend/internals/features/members/members/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/testutil"
)

func TestCollectAssemblesSections(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	members := testutil.SeedMembers(t, db, 4)
	require.NoError(t, db.Model(&members[3]).Update("member_status", memberModel.MemberStatusInactive).Error)
	joined := testutil.Date(2025, 3, 2)
	testutil.SeedMember(t, db, memberModel.MemberModel{MemberJoinDate: &joined})

	day := testutil.Date(2025, 3, 9)
	require.NoError(t, db.Create(&sessionModel.AttendanceSessionModel{
		AttendanceSessionDate:         day,
		AttendanceSessionType:         recordModel.TypeSundayService,
		AttendanceSessionTotalMembers: 4,
		AttendanceSessionPresentCount: 3,
		AttendanceSessionRate:         75,
	}).Error)
	testutil.SeedAttendance(t, db, day, recordModel.TypeSundayService, members[:4], func(i int) bool { return i < 3 })

	tx := txService.New(db, "TZS")
	require.NoError(t, tx.Create(ctx, &txModel.FinancialTransactionModel{
		TransactionKind: txModel.KindIncome, TransactionCategory: "tithe", TransactionAmount: 800, TransactionDate: day,
	}))

	dept := deptModel.DepartmentModel{DepartmentName: "Choir", DepartmentSlug: "choir", DepartmentIsActive: true}
	require.NoError(t, db.Create(&dept).Error)
	require.NoError(t, db.Create(&deptModel.DepartmentMemberModel{
		DepartmentMemberDepartmentID: dept.DepartmentID,
		DepartmentMemberMemberID:     members[0].MemberID,
	}).Error)

	c := NewCollector(db, "Grace Chapel", "TZS")
	data, err := c.Collect(ctx, testutil.Date(2025, 3, 1), testutil.Date(2025, 3, 31))
	require.NoError(t, err)

	require.NotNil(t, data.Members)
	assert.EqualValues(t, 5, data.Members.Total)
	assert.EqualValues(t, 4, data.Members.Active)
	assert.EqualValues(t, 1, data.Members.NewInPeriod)

	require.NotNil(t, data.Attendance)
	assert.EqualValues(t, 1, data.Attendance.Sessions)
	assert.EqualValues(t, 3, data.Attendance.TotalPresent)
	assert.Equal(t, 75.0, data.Attendance.AverageRate)
	assert.EqualValues(t, 3, data.Attendance.ByType["sunday_service"].Present)

	require.NotNil(t, data.Finance)
	assert.EqualValues(t, 800, data.Finance.Net)
	assert.EqualValues(t, 800, data.Finance.ByCategory["income:tithe"])

	assert.Equal(t, map[string]int64{"Choir": 1}, data.Departments)
}

func TestCollectEmptyPeriod(t *testing.T) {
	db := testutil.NewDB(t)
	c := NewCollector(db, "Grace Chapel", "TZS")

	data, err := c.Collect(context.Background(), testutil.Date(2025, 1, 1), testutil.Date(2025, 1, 31))
	require.NoError(t, err)
	assert.NotNil(t, data.Members)
	assert.Nil(t, data.Attendance)
	assert.Nil(t, data.Finance)
	assert.Nil(t, data.Departments)

	_, err = c.Collect(context.Background(), testutil.Date(2025, 2, 1), testutil.Date(2025, 1, 1))
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
}
