package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanisa_backend/internals/features/finance/giving/service"
	"kanisa_backend/internals/features/finance/transactions/model"
	txService "kanisa_backend/internals/features/finance/transactions/service"
	"kanisa_backend/internals/testutil"
)

const serverKey = "SB-Mid-server-test"

type okGateway struct{}

func (okGateway) CreateCheckout(_ context.Context, req service.CheckoutRequest) (*service.Checkout, error) {
	return &service.Checkout{Token: "tok", RedirectURL: "https://pay.example/" + req.OrderID}, nil
}

func setup(t *testing.T) (*fiber.App, *service.Service, *txService.Service) {
	t.Helper()
	tx := txService.New(testutil.NewDB(t), "TZS")
	svc := service.New(tx, okGateway{}, serverKey)
	ctl := NewGivingController(svc)

	app := fiber.New()
	app.Post("/finance/giving", ctl.Give)
	app.Post("/public/finance/giving/notification", ctl.Notification)
	return app, svc, tx
}

func post(t *testing.T, app *fiber.App, path string, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(string(raw)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestGiveReturnsCheckout(t *testing.T) {
	app, _, _ := setup(t)

	status, body := post(t, app, "/finance/giving", map[string]any{"amount": 10000, "category": "building_fund"})
	require.Equal(t, fiber.StatusCreated, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "tok", data["snap_token"])
	assert.Contains(t, data["redirect_url"], "https://pay.example/TX-")

	status, _ = post(t, app, "/finance/giving", map[string]any{"amount": 0})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestNotificationFlow(t *testing.T) {
	app, svc, tx := setup(t)
	m, err := svc.Give(context.Background(), service.GiveInput{Amount: 7000})
	require.NoError(t, err)

	notif := map[string]any{
		"order_id":           m.TransactionReference,
		"status_code":        "200",
		"gross_amount":       "7000.00",
		"transaction_status": "settlement",
		"payment_type":       "bank_transfer",
		"signature_key":      "bad",
	}
	status, _ := post(t, app, "/public/finance/giving/notification", notif)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	notif["signature_key"] = service.Signature(m.TransactionReference, "200", "7000.00", serverKey)
	status, body := post(t, app, "/public/finance/giving/notification", notif)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, string(model.StatusCompleted), body["transaction_status"])

	got, err := tx.Get(context.Background(), m.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "bank_transfer", got.TransactionGatewayPayload["payment_type"])

	notif["order_id"] = "TX-unknown"
	notif["signature_key"] = service.Signature("TX-unknown", "200", "7000.00", serverKey)
	status, body = post(t, app, "/public/finance/giving/notification", notif)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ignored", body["status"])
}
