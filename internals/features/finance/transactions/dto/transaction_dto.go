package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"kanisa_backend/internals/features/finance/transactions/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
)

/* ===================== REQUESTS ===================== */

type CreateTransactionRequest struct {
	Kind          string     `json:"kind" validate:"required,oneof=income expense"`
	Category      string     `json:"category" validate:"required,max=40"`
	Amount        int64      `json:"amount" validate:"required,gt=0"`
	Currency      string     `json:"currency" validate:"omitempty,len=3"`
	Date          string     `json:"date" validate:"omitempty"`
	MemberID      *uuid.UUID `json:"member_id"`
	Description   *string    `json:"description" validate:"omitempty,max=500"`
	PaymentMethod string     `json:"payment_method" validate:"omitempty,oneof=cash mobile_money bank card online"`
	Status        string     `json:"status" validate:"omitempty,oneof=pending completed failed cancelled"`
}

func (r *CreateTransactionRequest) ToModel(recordedBy *uuid.UUID) (*model.FinancialTransactionModel, error) {
	m := &model.FinancialTransactionModel{
		TransactionKind:          model.Kind(r.Kind),
		TransactionCategory:      r.Category,
		TransactionAmount:        r.Amount,
		TransactionCurrency:      strings.TrimSpace(r.Currency),
		TransactionMemberID:      r.MemberID,
		TransactionDescription:   optString(r.Description),
		TransactionPaymentMethod: r.PaymentMethod,
		TransactionStatus:        model.Status(r.Status),
		TransactionRecordedBy:    recordedBy,
	}
	if strings.TrimSpace(r.Date) != "" {
		d, err := dbtime.ParseDate(r.Date)
		if err != nil {
			return nil, apperr.Invalid("date: " + err.Error())
		}
		m.TransactionDate = d
	}
	return m, nil
}

type UpdateTransactionRequest struct {
	Kind          *string    `json:"kind" validate:"omitempty,oneof=income expense"`
	Category      *string    `json:"category" validate:"omitempty,max=40"`
	Amount        *int64     `json:"amount" validate:"omitempty,gt=0"`
	Currency      *string    `json:"currency" validate:"omitempty,len=3"`
	Date          *string    `json:"date"`
	MemberID      *uuid.UUID `json:"member_id"`
	Description   *string    `json:"description" validate:"omitempty,max=500"`
	PaymentMethod *string    `json:"payment_method" validate:"omitempty,oneof=cash mobile_money bank card online"`
	Status        *string    `json:"status" validate:"omitempty,oneof=pending completed failed cancelled"`
}

func (r *UpdateTransactionRequest) ApplyToModel(m *model.FinancialTransactionModel) error {
	if r.Kind != nil {
		m.TransactionKind = model.Kind(*r.Kind)
	}
	if r.Category != nil {
		m.TransactionCategory = *r.Category
	}
	if r.Amount != nil {
		m.TransactionAmount = *r.Amount
	}
	if r.Currency != nil {
		m.TransactionCurrency = strings.TrimSpace(*r.Currency)
	}
	if r.Date != nil {
		d, err := dbtime.ParseDate(*r.Date)
		if err != nil {
			return apperr.Invalid("date: " + err.Error())
		}
		m.TransactionDate = d
	}
	if r.MemberID != nil {
		m.TransactionMemberID = r.MemberID
	}
	if r.Description != nil {
		m.TransactionDescription = optString(r.Description)
	}
	if r.PaymentMethod != nil {
		m.TransactionPaymentMethod = *r.PaymentMethod
	}
	if r.Status != nil {
		m.TransactionStatus = model.Status(*r.Status)
	}
	return nil
}

/* ===================== RESPONSE ===================== */

type TransactionResponse struct {
	ID            uuid.UUID    `json:"transaction_id"`
	Reference     string       `json:"reference"`
	Kind          model.Kind   `json:"kind"`
	Category      string       `json:"category"`
	Amount        int64        `json:"amount"`
	Currency      string       `json:"currency"`
	Date          string       `json:"date"`
	MemberID      *uuid.UUID   `json:"member_id,omitempty"`
	Description   *string      `json:"description,omitempty"`
	PaymentMethod string       `json:"payment_method"`
	Status        model.Status `json:"status"`
	Gateway       *string      `json:"gateway,omitempty"`
	RedirectURL   *string      `json:"redirect_url,omitempty"`
	PaidAt        *time.Time   `json:"paid_at,omitempty"`
	RecordedBy    *uuid.UUID   `json:"recorded_by,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func NewTransactionResponse(m *model.FinancialTransactionModel) TransactionResponse {
	return TransactionResponse{
		ID:            m.TransactionID,
		Reference:     m.TransactionReference,
		Kind:          m.TransactionKind,
		Category:      m.TransactionCategory,
		Amount:        m.TransactionAmount,
		Currency:      m.TransactionCurrency,
		Date:          dbtime.FormatDate(m.TransactionDate),
		MemberID:      m.TransactionMemberID,
		Description:   m.TransactionDescription,
		PaymentMethod: m.TransactionPaymentMethod,
		Status:        m.TransactionStatus,
		Gateway:       m.TransactionGateway,
		RedirectURL:   m.TransactionRedirectURL,
		PaidAt:        m.TransactionPaidAt,
		RecordedBy:    m.TransactionRecordedBy,
		CreatedAt:     m.TransactionCreatedAt,
		UpdatedAt:     m.TransactionUpdatedAt,
	}
}

func NewTransactionResponses(rows []model.FinancialTransactionModel) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, NewTransactionResponse(&rows[i]))
	}
	return out
}

func optString(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}
