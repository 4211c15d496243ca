package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* =========================
   Enums
========================= */

type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

const (
	MethodCash        = "cash"
	MethodMobileMoney = "mobile_money"
	MethodBank        = "bank"
	MethodCard        = "card"
	MethodOnline      = "online"
)

var IncomeCategories = []string{"tithe", "offering", "donation", "pledge", "thanksgiving", "building_fund", "other"}
var ExpenseCategories = []string{"salary", "utilities", "maintenance", "outreach", "other"}

func ValidCategory(k Kind, category string) bool {
	list := IncomeCategories
	if k == KindExpense {
		list = ExpenseCategories
	}
	for _, c := range list {
		if c == category {
			return true
		}
	}
	return false
}

/* =========================================
   Model: financial_transactions
========================================= */

type FinancialTransactionModel struct {
	TransactionID        uuid.UUID `gorm:"type:uuid;primaryKey;column:transaction_id" json:"transaction_id"`
	TransactionReference string    `gorm:"type:varchar(40);not null;uniqueIndex:uq_financial_transactions_reference;column:transaction_reference" json:"transaction_reference"`

	TransactionKind     Kind      `gorm:"type:varchar(10);not null;index:idx_financial_transactions_kind;column:transaction_kind" json:"transaction_kind"`
	TransactionCategory string    `gorm:"type:varchar(40);not null;column:transaction_category" json:"transaction_category"`
	TransactionAmount   int64     `gorm:"not null;column:transaction_amount" json:"transaction_amount"` // minor units
	TransactionCurrency string    `gorm:"type:varchar(3);not null;column:transaction_currency" json:"transaction_currency"`
	TransactionDate     time.Time `gorm:"type:date;not null;index:idx_financial_transactions_date;column:transaction_date" json:"transaction_date"`

	TransactionMemberID      *uuid.UUID `gorm:"type:uuid;column:transaction_member_id" json:"transaction_member_id,omitempty"`
	TransactionDescription   *string    `gorm:"type:text;column:transaction_description" json:"transaction_description,omitempty"`
	TransactionPaymentMethod string     `gorm:"type:varchar(20);not null;column:transaction_payment_method" json:"transaction_payment_method"`
	TransactionStatus        Status     `gorm:"type:varchar(20);not null;column:transaction_status" json:"transaction_status"`

	// Gateway (online giving)
	TransactionGateway        *string           `gorm:"type:varchar(30);column:transaction_gateway" json:"transaction_gateway,omitempty"`
	TransactionPaymentToken   *string           `gorm:"type:text;column:transaction_payment_token" json:"transaction_payment_token,omitempty"`
	TransactionRedirectURL    *string           `gorm:"type:text;column:transaction_redirect_url" json:"transaction_redirect_url,omitempty"`
	TransactionPaidAt         *time.Time        `gorm:"column:transaction_paid_at" json:"transaction_paid_at,omitempty"`
	TransactionGatewayPayload datatypes.JSONMap `gorm:"column:transaction_gateway_payload" json:"transaction_gateway_payload,omitempty"`

	TransactionRecordedBy *uuid.UUID     `gorm:"type:uuid;column:transaction_recorded_by" json:"transaction_recorded_by,omitempty"`
	TransactionCreatedAt  time.Time      `gorm:"autoCreateTime;column:transaction_created_at" json:"transaction_created_at"`
	TransactionUpdatedAt  time.Time      `gorm:"autoUpdateTime;column:transaction_updated_at" json:"transaction_updated_at"`
	TransactionDeletedAt  gorm.DeletedAt `gorm:"index;column:transaction_deleted_at" json:"transaction_deleted_at,omitempty"`
}

func (FinancialTransactionModel) TableName() string { return "financial_transactions" }

func (t *FinancialTransactionModel) BeforeCreate(tx *gorm.DB) error {
	if t.TransactionID == uuid.Nil {
		t.TransactionID = uuid.New()
	}
	return nil
}
