package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanisa_backend/internals/features/finance/transactions/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/testutil"
)

func tx(kind model.Kind, category string, amount int64, day int, status model.Status) *model.FinancialTransactionModel {
	return &model.FinancialTransactionModel{
		TransactionKind:     kind,
		TransactionCategory: category,
		TransactionAmount:   amount,
		TransactionDate:     testutil.Date(2025, 3, day),
		TransactionStatus:   status,
	}
}

func TestCreateFillsDefaults(t *testing.T) {
	s := New(testutil.NewDB(t), "tzs")
	m := tx(model.KindIncome, "Tithe", 50000, 2, "")

	require.NoError(t, s.Create(context.Background(), m))
	assert.True(t, strings.HasPrefix(m.TransactionReference, "TX-"))
	assert.Equal(t, "TZS", m.TransactionCurrency)
	assert.Equal(t, "tithe", m.TransactionCategory)
	assert.Equal(t, model.MethodCash, m.TransactionPaymentMethod)
	assert.Equal(t, model.StatusCompleted, m.TransactionStatus)

	got, err := s.GetByReference(context.Background(), m.TransactionReference)
	require.NoError(t, err)
	assert.Equal(t, m.TransactionID, got.TransactionID)
}

func TestCreateRejectsBadInput(t *testing.T) {
	s := New(testutil.NewDB(t), "")
	ctx := context.Background()

	err := s.Create(ctx, tx(model.KindExpense, "tithe", 100, 1, ""))
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	err = s.Create(ctx, tx(model.KindIncome, "offering", 0, 1, ""))
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	err = s.Create(ctx, tx("gift", "offering", 10, 1, ""))
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
}

func TestListFiltersAndDelete(t *testing.T) {
	s := New(testutil.NewDB(t), "TZS")
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, tx(model.KindIncome, "tithe", 100, 1, "")))
	require.NoError(t, s.Create(ctx, tx(model.KindIncome, "offering", 200, 10, "")))
	exp := tx(model.KindExpense, "utilities", 50, 20, "")
	require.NoError(t, s.Create(ctx, exp))

	rows, total, err := s.List(ctx, ListFilter{Kind: model.KindIncome})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "offering", rows[0].TransactionCategory) // newest first

	from, to := testutil.Date(2025, 3, 5), testutil.Date(2025, 3, 20)
	_, total, err = s.List(ctx, ListFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	rows, total, err = s.List(ctx, ListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, rows, 1)

	require.NoError(t, s.Delete(ctx, exp.TransactionID))
	_, err = s.Get(ctx, exp.TransactionID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(s.Delete(ctx, exp.TransactionID), apperr.KindNotFound))
}

func TestUpdateRevalidates(t *testing.T) {
	s := New(testutil.NewDB(t), "TZS")
	ctx := context.Background()
	m := tx(model.KindIncome, "tithe", 100, 1, "")
	require.NoError(t, s.Create(ctx, m))

	m.TransactionAmount = 300
	require.NoError(t, s.Update(ctx, m))
	got, err := s.Get(ctx, m.TransactionID)
	require.NoError(t, err)
	assert.EqualValues(t, 300, got.TransactionAmount)

	got.TransactionKind = model.KindExpense
	assert.True(t, apperr.Is(s.Update(ctx, got), apperr.KindInvalid))
}

func TestSummarizeCountsCompletedOnly(t *testing.T) {
	s := New(testutil.NewDB(t), "TZS")
	ctx := context.Background()

	for _, m := range []*model.FinancialTransactionModel{
		tx(model.KindIncome, "tithe", 1000, 2, ""),
		tx(model.KindIncome, "tithe", 500, 9, ""),
		tx(model.KindIncome, "offering", 700, 9, ""),
		tx(model.KindIncome, "offering", 9999, 9, model.StatusPending),
		tx(model.KindExpense, "utilities", 300, 15, ""),
		tx(model.KindIncome, "donation", 4000, 31, ""),
	} {
		require.NoError(t, s.Create(ctx, m))
	}

	sum, err := s.Summarize(ctx, testutil.Date(2025, 3, 1), testutil.Date(2025, 3, 30))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", sum.From)
	assert.EqualValues(t, 2200, sum.TotalIncome)
	assert.EqualValues(t, 300, sum.TotalExpense)
	assert.EqualValues(t, 1900, sum.Net)
	assert.EqualValues(t, 4, sum.TransactionCount)
	require.Len(t, sum.IncomeByCategory, 2)
	assert.Equal(t, CategoryTotal{Category: "tithe", Total: 1500, Count: 2}, sum.IncomeByCategory[0])
	assert.Equal(t, "offering", sum.IncomeByCategory[1].Category)
	require.Len(t, sum.ExpenseByCategory, 1)

	_, err = s.Summarize(ctx, testutil.Date(2025, 3, 30), testutil.Date(2025, 3, 1))
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
}
