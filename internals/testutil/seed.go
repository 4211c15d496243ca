package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	recordModel "kanisa_backend/internals/features/attendance/records/model"
	memberModel "kanisa_backend/internals/features/members/members/model"
)

// SeedMembers inserts n active members numbered M-0001.. with phones
// +2557000000NN.
func SeedMembers(t *testing.T, db *gorm.DB, n int) []memberModel.MemberModel {
	t.Helper()
	out := make([]memberModel.MemberModel, 0, n)
	for i := 1; i <= n; i++ {
		phone := fmt.Sprintf("+255700%06d", i)
		out = append(out, memberModel.MemberModel{
			MemberNumber:    fmt.Sprintf("M-%04d", i),
			MemberFirstName: fmt.Sprintf("Member%d", i),
			MemberLastName:  "Test",
			MemberPhone:     &phone,
			MemberStatus:    memberModel.MemberStatusActive,
		})
	}
	require.NoError(t, db.CreateInBatches(out, 100).Error)
	return out
}

func SeedMember(t *testing.T, db *gorm.DB, m memberModel.MemberModel) memberModel.MemberModel {
	t.Helper()
	if m.MemberNumber == "" {
		m.MemberNumber = fmt.Sprintf("M-X%d", time.Now().UnixNano())
	}
	if m.MemberFirstName == "" {
		m.MemberFirstName = "Test"
	}
	if m.MemberLastName == "" {
		m.MemberLastName = "Member"
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

// SeedAttendance writes flat attendance rows the way the roster endpoint does.
func SeedAttendance(t *testing.T, db *gorm.DB, date time.Time, typ recordModel.AttendanceType, members []memberModel.MemberModel, present func(i int) bool) {
	t.Helper()
	rows := make([]recordModel.AttendanceModel, 0, len(members))
	for i, m := range members {
		rows = append(rows, recordModel.AttendanceModel{
			AttendanceMemberID: m.MemberID,
			AttendanceType:     typ,
			AttendanceDate:     date,
			AttendancePresent:  present(i),
		})
	}
	require.NoError(t, db.CreateInBatches(rows, 100).Error)
}

func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
