package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"kanisa_backend/internals/features/attendance/checkin/service"
	"kanisa_backend/internals/features/attendance/checkin/templates"
	recordModel "kanisa_backend/internals/features/attendance/records/model"
	sessionModel "kanisa_backend/internals/features/attendance/sessions/model"
	sessionService "kanisa_backend/internals/features/attendance/sessions/service"
	"kanisa_backend/internals/helpers/lock"
	"kanisa_backend/internals/testutil"
)

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
	Data      json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*fiber.App, *gorm.DB, *sessionService.CreateResult) {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.SeedMembers(t, db, 3)

	sessions := sessionService.New(db, sessionService.Options{SiteURL: "https://church.example"}, lock.NewLocalLocker())
	res, err := sessions.Create(context.Background(), sessionService.CreateSessionOptions{
		Date:    testutil.Date(2025, 1, 5),
		Type:    recordModel.TypeSundayService,
		IssueQR: true,
	})
	require.NoError(t, err)

	ctl := NewCheckinController(service.New(db, sessions), sessions, "Grace Chapel")
	app := fiber.New(fiber.Config{Views: templates.Engine()})
	app.Post(CheckinEndpoint, ctl.CheckIn)
	app.Get("/checkin/:qr_session_id", ctl.Page)
	return app, db, res
}

func postJSON(t *testing.T, app *fiber.App, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, CheckinEndpoint, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestCheckInEndpoint(t *testing.T) {
	app, _, res := setup(t)
	body := `{"qr_session_id":"` + res.QR.SessionID + `","phone":"0700000002"}`

	status, env := postJSON(t, app, body)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Success)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, false, data["alreadyPresent"])
	assert.NotEmpty(t, data["attendanceRecordId"])
	member := data["member"].(map[string]any)
	assert.Equal(t, "M-0002", member["member_number"])

	status, env = postJSON(t, app, body)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, true, data["alreadyPresent"])
	assert.Equal(t, "Already checked in", env.Message)
}

func TestCheckInEndpointErrors(t *testing.T) {
	app, db, res := setup(t)

	status, env := postJSON(t, app, `{"qr_session_id":"`+res.QR.SessionID+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.Success)

	status, _ = postJSON(t, app, `{"qr_session_id":"qr_missing","member_number":"M-0001"}`)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = postJSON(t, app, `{"qr_session_id":"`+res.QR.SessionID+`","member_number":"M-9999"}`)
	assert.Equal(t, fiber.StatusNotFound, status)

	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, db.Model(&sessionModel.AttendanceSessionModel{}).
		Where("attendance_session_id = ?", res.Session.AttendanceSessionID).
		Update("attendance_session_qr_expires_at", past).Error)

	status, env = postJSON(t, app, `{"qr_session_id":"`+res.QR.SessionID+`","member_number":"M-0001"}`)
	assert.Equal(t, fiber.StatusGone, status)
	assert.Equal(t, "GONE", env.ErrorCode)
}

func TestCheckinPage(t *testing.T) {
	app, _, res := setup(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/checkin/"+res.QR.SessionID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	html, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(html), "Grace Chapel")
	assert.Contains(t, string(html), res.QR.SessionID)
	assert.Contains(t, string(html), "Sunday Service")

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/checkin/qr_unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
