package exports

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	recordModel "kanisa_backend/internals/features/attendance/records/model"
	sessionService "kanisa_backend/internals/features/attendance/sessions/service"
	"kanisa_backend/internals/helpers/lock"
	"kanisa_backend/internals/testutil"
)

func TestBuildWorkbook(t *testing.T) {
	db := testutil.NewDB(t)
	sunday := testutil.Date(2025, 1, 5)
	members := testutil.SeedMembers(t, db, 4)
	testutil.SeedAttendance(t, db, sunday, recordModel.TypeSundayService, members[:3], func(i int) bool { return i != 1 })

	exp := New(db, sessionService.New(db, sessionService.Options{}, lock.NewLocalLocker()))
	data, err := exp.BuildWorkbook(context.Background(), sunday, recordModel.TypeSundayService)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)

	assert.Equal(t, "Sunday Service attendance, 2025-01-05", rows[0][0])
	assert.Equal(t, "Member Number", rows[2][1])

	statuses := map[string]string{}
	for _, r := range rows[3:7] {
		statuses[r[1]] = r[4]
	}
	assert.Equal(t, map[string]string{
		"M-0001": "Present",
		"M-0002": "Absent",
		"M-0003": "Present",
		"M-0004": "Absent",
	}, statuses)

	last := rows[len(rows)-1]
	assert.Equal(t, []string{"", "Attendance rate (%)", "50"}, last)
	assert.Equal(t, "attendance_2025-01-05_sunday_service.xlsx", FileName(sunday, recordModel.TypeSundayService))
}
