package dto

import (
	"strings"

	"github.com/google/uuid"

	"kanisa_backend/internals/features/finance/giving/service"
	txDto "kanisa_backend/internals/features/finance/transactions/dto"
	"kanisa_backend/internals/features/finance/transactions/model"
)

type GiveRequest struct {
	Amount      int64      `json:"amount" validate:"required,gt=0"`
	Currency    string     `json:"currency" validate:"omitempty,len=3"`
	Category    string     `json:"category" validate:"omitempty,max=40"`
	MemberID    *uuid.UUID `json:"member_id"`
	Description string     `json:"description" validate:"omitempty,max=500"`
	FirstName   string     `json:"first_name" validate:"omitempty,max=80"`
	LastName    string     `json:"last_name" validate:"omitempty,max=80"`
	Email       string     `json:"email" validate:"omitempty,email,max=160"`
	Phone       string     `json:"phone" validate:"omitempty,max=30"`
}

func (r *GiveRequest) ToInput(recordedBy *uuid.UUID) service.GiveInput {
	return service.GiveInput{
		Amount:      r.Amount,
		Currency:    strings.TrimSpace(r.Currency),
		Category:    r.Category,
		MemberID:    r.MemberID,
		Description: r.Description,
		Customer: service.Customer{
			FirstName: strings.TrimSpace(r.FirstName),
			LastName:  strings.TrimSpace(r.LastName),
			Email:     strings.TrimSpace(r.Email),
			Phone:     strings.TrimSpace(r.Phone),
		},
		RecordedBy: recordedBy,
	}
}

type GiveResponse struct {
	Transaction txDto.TransactionResponse `json:"transaction"`
	SnapToken   string                    `json:"snap_token"`
	RedirectURL string                    `json:"redirect_url"`
}

func NewGiveResponse(m *model.FinancialTransactionModel) GiveResponse {
	out := GiveResponse{Transaction: txDto.NewTransactionResponse(m)}
	if m.TransactionPaymentToken != nil {
		out.SnapToken = *m.TransactionPaymentToken
	}
	if m.TransactionRedirectURL != nil {
		out.RedirectURL = *m.TransactionRedirectURL
	}
	return out
}
