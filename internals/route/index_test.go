package routes

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanisa_backend/internals/configs"
	"kanisa_backend/internals/features/attendance/checkin/templates"
	"kanisa_backend/internals/helpers/lock"
	"kanisa_backend/internals/testutil"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := configs.Default()
	cfg.JWTSecret = "test-secret"
	cfg.MidtransServerKey = "SB-test"

	app := fiber.New(fiber.Config{Views: templates.Engine()})
	SetupRoutes(app, Deps{DB: testutil.NewDB(t), Config: cfg, Locker: lock.NewLocalLocker()})
	return app
}

func TestHealth(t *testing.T) {
	app := newApp(t)
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	app := newApp(t)
	for _, path := range []string{
		"/api/a/members",
		"/api/a/attendance/sessions",
		"/api/a/finance/transactions",
		"/api/a/reports/summary",
	} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestPublicRoutesAreOpen(t *testing.T) {
	app := newApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/public/finance/giving/notification",
		strings.NewReader(`{"order_id":"TX-1","status_code":"200","gross_amount":"1.00","signature_key":"x"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode) // signature, not bearer

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/public/attendance/qr-session/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
