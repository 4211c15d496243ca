package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"kanisa_backend/internals/features/finance/transactions/model"
	txService "kanisa_backend/internals/features/finance/transactions/service"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/logger"
)

const GatewayMidtrans = "midtrans"

type Service struct {
	tx        *txService.Service
	gateway   Gateway
	serverKey string
	now       func() time.Time
}

func New(tx *txService.Service, gateway Gateway, serverKey string) *Service {
	return &Service{tx: tx, gateway: gateway, serverKey: serverKey, now: time.Now}
}

/* =========================================================
   Give
========================================================= */

type GiveInput struct {
	Amount      int64
	Currency    string
	Category    string
	MemberID    *uuid.UUID
	Description string
	Customer    Customer
	RecordedBy  *uuid.UUID
}

// Give records a pending online income transaction and opens a checkout
// for it. A gateway failure leaves the transaction failed.
func (s *Service) Give(ctx context.Context, in GiveInput) (*model.FinancialTransactionModel, error) {
	if s.gateway == nil {
		return nil, apperr.Internal("payment gateway is not configured", ErrGatewayNotConfigured).
			WithHint("set MIDTRANS_SERVER_KEY")
	}
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if category == "" {
		category = "offering"
	}
	gw := GatewayMidtrans
	m := &model.FinancialTransactionModel{
		TransactionKind:          model.KindIncome,
		TransactionCategory:      category,
		TransactionAmount:        in.Amount,
		TransactionCurrency:      in.Currency,
		TransactionDate:          s.now().UTC(),
		TransactionMemberID:      in.MemberID,
		TransactionPaymentMethod: model.MethodOnline,
		TransactionStatus:        model.StatusPending,
		TransactionGateway:       &gw,
		TransactionRecordedBy:    in.RecordedBy,
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		m.TransactionDescription = &d
	}
	if err := s.tx.Create(ctx, m); err != nil {
		return nil, err
	}

	co, err := s.gateway.CreateCheckout(ctx, CheckoutRequest{
		OrderID:     m.TransactionReference,
		Amount:      m.TransactionAmount,
		ItemName:    "Giving - " + strings.ReplaceAll(category, "_", " "),
		Category:    category,
		Description: in.Description,
		Customer:    in.Customer,
	})
	db := s.tx.DB().WithContext(ctx).Model(m)
	if err != nil {
		m.TransactionStatus = model.StatusFailed
		if uerr := db.Update("transaction_status", model.StatusFailed).Error; uerr != nil {
			logger.L.Warn("[GIVING] mark failed", zap.String("reference", m.TransactionReference), zap.Error(uerr))
		}
		return nil, apperr.Upstream("payment gateway rejected the request", err)
	}

	m.TransactionPaymentToken = &co.Token
	m.TransactionRedirectURL = &co.RedirectURL
	if err := db.Updates(map[string]any{
		"transaction_payment_token": co.Token,
		"transaction_redirect_url":  co.RedirectURL,
	}).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to store checkout")
	}
	logger.L.Info("[GIVING] checkout created",
		zap.String("reference", m.TransactionReference),
		zap.Int64("amount", m.TransactionAmount))
	return m, nil
}

/* =========================================================
   Notification
========================================================= */

type Notification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, failure, refund
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"` // accept, challenge, deny
	TransactionID     string `json:"transaction_id"`
	SettlementTime    string `json:"settlement_time"`

	Raw map[string]any `json:"-"`
}

type NotificationResult struct {
	Ignored     bool
	Transaction *model.FinancialTransactionModel
}

// Signature is hex(sha512(order_id + status_code + gross_amount + server_key)).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

func (s *Service) VerifySignature(n Notification) bool {
	if s.serverKey == "" || n.SignatureKey == "" {
		return false
	}
	return strings.ToLower(n.SignatureKey) == Signature(n.OrderID, n.StatusCode, n.GrossAmount, s.serverKey)
}

// HandleNotification applies a verified gateway callback. Unknown orders
// are reported as ignored so the gateway stops retrying.
func (s *Service) HandleNotification(ctx context.Context, n Notification) (*NotificationResult, error) {
	if !s.VerifySignature(n) {
		return nil, apperr.Unauthorized("invalid signature")
	}

	m, err := s.tx.GetByReference(ctx, n.OrderID)
	if err != nil {
		if apperr.IsNotFound(err) {
			logger.L.Warn("[GIVING] notification for unknown order", zap.String("order_id", n.OrderID))
			return &NotificationResult{Ignored: true}, nil
		}
		return nil, err
	}

	now := s.now().UTC()
	next := MapStatus(m.TransactionStatus, n.TransactionStatus, n.FraudStatus)
	updates := map[string]any{
		"transaction_status":          next,
		"transaction_gateway_payload": datatypes.JSONMap(payloadOf(n)),
	}
	if next == model.StatusCompleted && m.TransactionPaidAt == nil {
		updates["transaction_paid_at"] = now
		m.TransactionPaidAt = &now
	}
	if err := s.tx.DB().WithContext(ctx).Model(m).Updates(updates).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to update transaction")
	}
	logger.L.Info("[GIVING] notification applied",
		zap.String("reference", m.TransactionReference),
		zap.String("gateway_status", n.TransactionStatus),
		zap.String("from", string(m.TransactionStatus)),
		zap.String("to", string(next)))

	m.TransactionStatus = next
	m.TransactionGatewayPayload = payloadOf(n)
	return &NotificationResult{Transaction: m}, nil
}

// MapStatus translates a gateway status. A completed transaction only
// leaves that state on cancel; unknown statuses keep the current one.
func MapStatus(current model.Status, gatewayStatus, fraudStatus string) model.Status {
	var next model.Status
	switch strings.ToLower(gatewayStatus) {
	case "settlement":
		next = model.StatusCompleted
	case "capture":
		switch strings.ToLower(fraudStatus) {
		case "", "accept":
			next = model.StatusCompleted
		case "challenge":
			next = model.StatusPending
		default:
			next = model.StatusFailed
		}
	case "pending":
		next = model.StatusPending
	case "deny", "failure", "expire":
		next = model.StatusFailed
	case "cancel":
		next = model.StatusCancelled
	default:
		return current
	}
	if current == model.StatusCompleted && next != model.StatusCancelled {
		return current
	}
	return next
}

func payloadOf(n Notification) map[string]any {
	if len(n.Raw) > 0 {
		return n.Raw
	}
	return map[string]any{
		"transaction_time":   n.TransactionTime,
		"transaction_status": n.TransactionStatus,
		"status_code":        n.StatusCode,
		"order_id":           n.OrderID,
		"gross_amount":       n.GrossAmount,
		"payment_type":       n.PaymentType,
		"fraud_status":       n.FraudStatus,
		"transaction_id":     n.TransactionID,
		"settlement_time":    n.SettlementTime,
	}
}
