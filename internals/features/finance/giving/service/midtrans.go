package service

import (
	"context"
	"errors"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

/* =========================================================
   Gateway
========================================================= */

type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type CheckoutRequest struct {
	OrderID     string
	Amount      int64
	ItemName    string
	Category    string
	Description string
	Customer    Customer
}

type Checkout struct {
	Token       string
	RedirectURL string
}

// Gateway creates a hosted checkout for one order.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
}

// ErrGatewayNotConfigured is returned when MIDTRANS_SERVER_KEY is empty.
var ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

type MidtransGateway struct {
	client    snap.Client
	serverKey string
}

// NewMidtransGateway selects Sandbox unless useProduction is set.
func NewMidtransGateway(serverKey string, useProduction bool) *MidtransGateway {
	g := &MidtransGateway{serverKey: serverKey}
	if useProduction {
		g.client.New(serverKey, midtrans.Production)
	} else {
		g.client.New(serverKey, midtrans.Sandbox)
	}
	return g
}

func (g *MidtransGateway) CreateCheckout(_ context.Context, in CheckoutRequest) (*Checkout, error) {
	if g.serverKey == "" {
		return nil, ErrGatewayNotConfigured
	}
	if in.Amount <= 0 {
		return nil, errors.New("invalid amount")
	}
	if in.OrderID == "" {
		return nil, errors.New("order id is required")
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  in.OrderID,
			GrossAmt: in.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: in.Customer.FirstName,
			LName: in.Customer.LastName,
			Email: in.Customer.Email,
			Phone: in.Customer.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       in.OrderID,
				Price:    in.Amount,
				Qty:      1,
				Name:     truncate(defaultString(in.ItemName, "Giving"), 50),
				Category: in.Category,
			},
		},
	}
	if in.Description != "" {
		req.CustomField1 = truncate(in.Description, 40)
	}

	resp, mErr := g.client.CreateTransaction(req)
	if mErr != nil {
		return nil, mErr
	}
	return &Checkout{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
