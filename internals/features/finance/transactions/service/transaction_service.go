package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kanisa_backend/internals/features/finance/transactions/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
	"kanisa_backend/internals/helpers/idgen"
)

type Service struct {
	db       *gorm.DB
	currency string
}

func New(db *gorm.DB, defaultCurrency string) *Service {
	if defaultCurrency == "" {
		defaultCurrency = "TZS"
	}
	return &Service{db: db, currency: strings.ToUpper(defaultCurrency)}
}

func (s *Service) DB() *gorm.DB { return s.db }

// Prepare validates m and fills defaults (reference, currency, method,
// status, date). Giving reuses it for pending gateway transactions.
func (s *Service) Prepare(m *model.FinancialTransactionModel) error {
	if m.TransactionKind != model.KindIncome && m.TransactionKind != model.KindExpense {
		return apperr.Invalid("kind must be income or expense")
	}
	m.TransactionCategory = strings.ToLower(strings.TrimSpace(m.TransactionCategory))
	if !model.ValidCategory(m.TransactionKind, m.TransactionCategory) {
		allowed := model.IncomeCategories
		if m.TransactionKind == model.KindExpense {
			allowed = model.ExpenseCategories
		}
		return apperr.Invalid("invalid category").WithDetails(map[string]any{"allowed": allowed})
	}
	if m.TransactionAmount <= 0 {
		return apperr.Invalid("amount must be positive")
	}
	if m.TransactionReference == "" {
		m.TransactionReference = idgen.TransactionReference()
	}
	if m.TransactionCurrency == "" {
		m.TransactionCurrency = s.currency
	}
	m.TransactionCurrency = strings.ToUpper(m.TransactionCurrency)
	if m.TransactionPaymentMethod == "" {
		m.TransactionPaymentMethod = model.MethodCash
	}
	if m.TransactionStatus == "" {
		m.TransactionStatus = model.StatusCompleted
	}
	if m.TransactionDate.IsZero() {
		m.TransactionDate = time.Now().UTC()
	}
	m.TransactionDate = dbtime.DateOf(m.TransactionDate, time.UTC)
	return nil
}

// ========================== CREATE ==========================
func (s *Service) Create(ctx context.Context, m *model.FinancialTransactionModel) error {
	if err := s.Prepare(m); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperr.FromDB(err, "failed to record transaction")
	}
	return nil
}

// ========================== READ ==========================
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.FinancialTransactionModel, error) {
	return s.find(ctx, "transaction_id = ?", id)
}

func (s *Service) GetByReference(ctx context.Context, ref string) (*model.FinancialTransactionModel, error) {
	return s.find(ctx, "transaction_reference = ?", strings.TrimSpace(ref))
}

func (s *Service) find(ctx context.Context, where string, arg any) (*model.FinancialTransactionModel, error) {
	var m model.FinancialTransactionModel
	if err := s.db.WithContext(ctx).Where(where, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("transaction not found")
		}
		return nil, apperr.FromDB(err, "failed to load transaction")
	}
	return &m, nil
}

type ListFilter struct {
	From     *time.Time
	To       *time.Time
	Kind     model.Kind
	Category string
	Status   model.Status
	MemberID *uuid.UUID
	Offset   int
	Limit    int
}

func (f ListFilter) apply(q *gorm.DB) *gorm.DB {
	if f.From != nil {
		q = q.Where("transaction_date >= ?", dbtime.DateOf(*f.From, time.UTC))
	}
	if f.To != nil {
		q = q.Where("transaction_date <= ?", dbtime.DateOf(*f.To, time.UTC))
	}
	if f.Kind != "" {
		q = q.Where("transaction_kind = ?", f.Kind)
	}
	if f.Category != "" {
		q = q.Where("transaction_category = ?", strings.ToLower(f.Category))
	}
	if f.Status != "" {
		q = q.Where("transaction_status = ?", f.Status)
	}
	if f.MemberID != nil {
		q = q.Where("transaction_member_id = ?", *f.MemberID)
	}
	return q
}

// List orders newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]model.FinancialTransactionModel, int64, error) {
	q := f.apply(s.db.WithContext(ctx).Model(&model.FinancialTransactionModel{}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "failed to count transactions")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var rows []model.FinancialTransactionModel
	if err := q.Order("transaction_date DESC, transaction_created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "failed to list transactions")
	}
	return rows, total, nil
}

// ========================== UPDATE / DELETE ==========================
func (s *Service) Update(ctx context.Context, m *model.FinancialTransactionModel) error {
	if err := s.Prepare(m); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return apperr.FromDB(err, "failed to update transaction")
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(m).Error; err != nil {
		return apperr.FromDB(err, "failed to delete transaction")
	}
	return nil
}
