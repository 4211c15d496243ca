package controller

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanisa_backend/internals/features/attendance/exports"
	"kanisa_backend/internals/features/attendance/records/service"
	sessionService "kanisa_backend/internals/features/attendance/sessions/service"
	"kanisa_backend/internals/helpers/lock"
	"kanisa_backend/internals/testutil"
)

func TestRosterEndpoints(t *testing.T) {
	db := testutil.NewDB(t)
	members := testutil.SeedMembers(t, db, 3)
	sessions := sessionService.New(db, sessionService.Options{}, lock.NewLocalLocker())
	ctl := NewAttendanceController(service.New(db, sessions), exports.New(db, sessions))

	app := fiber.New()
	app.Post("/attendance", ctl.SaveRoster)
	app.Get("/attendance", ctl.List)
	app.Get("/attendance/export", ctl.Export)

	body := fmt.Sprintf(`{
		"attendanceRecords": [
			{"member_id":"%s","present":true},
			{"member_id":"%s","present":false,"notes":"travelling"}
		],
		"sessionInfo": {"date":"2025-01-05","attendance_type":"sunday_service"}
	}`, members[0].MemberID, members[1].MemberID)

	req := httptest.NewRequest(fiber.MethodPost, "/attendance", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/attendance?date=2025-01-05&attendance_type=sunday_service", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list struct {
		Data []service.RecordView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Data, 2)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/attendance/export?date=2025-01-05&attendance_type=sunday_service", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attendance_2025-01-05_sunday_service.xlsx")
}

func TestRosterValidation(t *testing.T) {
	db := testutil.NewDB(t)
	ctl := NewAttendanceController(service.New(db, nil), exports.New(db, nil))
	app := fiber.New()
	app.Post("/attendance", ctl.SaveRoster)
	app.Get("/attendance", ctl.List)

	req := httptest.NewRequest(fiber.MethodPost, "/attendance", strings.NewReader(`{"attendanceRecords":[],"sessionInfo":{"date":"2025-01-05","attendance_type":"sunday_service"}}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/attendance?date=2025-01-05&attendance_type=wedding", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
