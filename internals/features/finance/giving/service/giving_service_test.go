package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanisa_backend/internals/features/finance/transactions/model"
	txService "kanisa_backend/internals/features/finance/transactions/service"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/testutil"
)

const serverKey = "SB-Mid-server-test"

type fakeGateway struct {
	got CheckoutRequest
	err error
}

func (f *fakeGateway) CreateCheckout(_ context.Context, req CheckoutRequest) (*Checkout, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &Checkout{Token: "snap-token", RedirectURL: "https://pay.example/" + req.OrderID}, nil
}

func newService(t *testing.T, gw Gateway) (*Service, *txService.Service) {
	t.Helper()
	tx := txService.New(testutil.NewDB(t), "TZS")
	s := New(tx, gw, serverKey)
	s.now = func() time.Time { return time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC) }
	return s, tx
}

func signed(n Notification) Notification {
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return n
}

func TestGiveCreatesPendingTransaction(t *testing.T) {
	gw := &fakeGateway{}
	s, tx := newService(t, gw)

	m, err := s.Give(context.Background(), GiveInput{Amount: 25000, Category: "Tithe"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, m.TransactionStatus)
	assert.Equal(t, model.MethodOnline, m.TransactionPaymentMethod)
	assert.Equal(t, m.TransactionReference, gw.got.OrderID)
	assert.EqualValues(t, 25000, gw.got.Amount)

	got, err := tx.Get(context.Background(), m.TransactionID)
	require.NoError(t, err)
	require.NotNil(t, got.TransactionPaymentToken)
	assert.Equal(t, "snap-token", *got.TransactionPaymentToken)
	require.NotNil(t, got.TransactionGateway)
	assert.Equal(t, GatewayMidtrans, *got.TransactionGateway)
	assert.Equal(t, "tithe", got.TransactionCategory)
}

func TestGiveGatewayFailureMarksFailed(t *testing.T) {
	s, tx := newService(t, &fakeGateway{err: errors.New("401 unauthorized")})

	_, err := s.Give(context.Background(), GiveInput{Amount: 1000})
	assert.True(t, apperr.Is(err, apperr.KindUpstream))

	rows, _, err := tx.List(context.Background(), txService.ListFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.StatusFailed, rows[0].TransactionStatus)
	assert.Equal(t, "offering", rows[0].TransactionCategory)
}

func TestGiveRejectsExpenseCategory(t *testing.T) {
	s, _ := newService(t, &fakeGateway{})
	_, err := s.Give(context.Background(), GiveInput{Amount: 1000, Category: "salary"})
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
}

func TestNotificationSettlementCompletes(t *testing.T) {
	s, tx := newService(t, &fakeGateway{})
	ctx := context.Background()
	m, err := s.Give(ctx, GiveInput{Amount: 5000})
	require.NoError(t, err)

	res, err := s.HandleNotification(ctx, signed(Notification{
		OrderID:           m.TransactionReference,
		StatusCode:        "200",
		GrossAmount:       "5000.00",
		TransactionStatus: "settlement",
		TransactionID:     "mid-123",
	}))
	require.NoError(t, err)
	assert.False(t, res.Ignored)
	assert.Equal(t, model.StatusCompleted, res.Transaction.TransactionStatus)

	got, err := tx.Get(ctx, m.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.TransactionStatus)
	require.NotNil(t, got.TransactionPaidAt)
	assert.Equal(t, "mid-123", got.TransactionGatewayPayload["transaction_id"])

	// a late "pending" callback does not reopen it
	res, err = s.HandleNotification(ctx, signed(Notification{
		OrderID: m.TransactionReference, StatusCode: "201", GrossAmount: "5000.00", TransactionStatus: "pending",
	}))
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, res.Transaction.TransactionStatus)
}

func TestNotificationRejectsBadSignature(t *testing.T) {
	s, _ := newService(t, &fakeGateway{})
	n := Notification{OrderID: "TX-1", StatusCode: "200", GrossAmount: "10.00", TransactionStatus: "settlement", SignatureKey: "deadbeef"}

	_, err := s.HandleNotification(context.Background(), n)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestNotificationUnknownOrderIgnored(t *testing.T) {
	s, _ := newService(t, &fakeGateway{})
	res, err := s.HandleNotification(context.Background(), signed(Notification{
		OrderID: "TX-404", StatusCode: "200", GrossAmount: "10.00", TransactionStatus: "settlement",
	}))
	require.NoError(t, err)
	assert.True(t, res.Ignored)
}

func TestMapStatus(t *testing.T) {
	cases := []struct {
		current model.Status
		status  string
		fraud   string
		want    model.Status
	}{
		{model.StatusPending, "settlement", "", model.StatusCompleted},
		{model.StatusPending, "capture", "accept", model.StatusCompleted},
		{model.StatusPending, "capture", "challenge", model.StatusPending},
		{model.StatusPending, "capture", "deny", model.StatusFailed},
		{model.StatusPending, "deny", "", model.StatusFailed},
		{model.StatusPending, "expire", "", model.StatusFailed},
		{model.StatusPending, "failure", "", model.StatusFailed},
		{model.StatusPending, "cancel", "", model.StatusCancelled},
		{model.StatusPending, "refund", "", model.StatusPending},
		{model.StatusCompleted, "expire", "", model.StatusCompleted},
		{model.StatusCompleted, "cancel", "", model.StatusCancelled},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MapStatus(tc.current, tc.status, tc.fraud), "%s/%s/%s", tc.current, tc.status, tc.fraud)
	}
}

func TestMidtransGatewayWithoutKey(t *testing.T) {
	g := NewMidtransGateway("", false)
	_, err := g.CreateCheckout(context.Background(), CheckoutRequest{OrderID: "TX-1", Amount: 10})
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)
}
