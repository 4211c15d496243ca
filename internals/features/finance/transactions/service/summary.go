package service

import (
	"context"
	"sort"
	"time"

	"kanisa_backend/internals/features/finance/transactions/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
)

type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
	Count    int64  `json:"count"`
}

// Summary covers completed transactions only; amounts are minor units.
type Summary struct {
	From              string          `json:"from"`
	To                string          `json:"to"`
	TotalIncome       int64           `json:"total_income"`
	TotalExpense      int64           `json:"total_expense"`
	Net               int64           `json:"net"`
	TransactionCount  int64           `json:"transaction_count"`
	IncomeByCategory  []CategoryTotal `json:"income_by_category"`
	ExpenseByCategory []CategoryTotal `json:"expense_by_category"`
}

// Summarize aggregates [from, to] inclusive.
func (s *Service) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	from = dbtime.DateOf(from, time.UTC)
	to = dbtime.DateOf(to, time.UTC)
	if to.Before(from) {
		return nil, apperr.Invalid("to must not be before from")
	}

	type row struct {
		Kind     model.Kind
		Category string
		Total    int64
		Count    int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&model.FinancialTransactionModel{}).
		Select("transaction_kind AS kind, transaction_category AS category, COALESCE(SUM(transaction_amount), 0) AS total, COUNT(*) AS count").
		Where("transaction_status = ? AND transaction_date >= ? AND transaction_date <= ?", model.StatusCompleted, from, to).
		Group("transaction_kind, transaction_category").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.FromDB(err, "failed to summarize transactions")
	}

	out := &Summary{
		From:              dbtime.FormatDate(from),
		To:                dbtime.FormatDate(to),
		IncomeByCategory:  []CategoryTotal{},
		ExpenseByCategory: []CategoryTotal{},
	}
	for _, r := range rows {
		ct := CategoryTotal{Category: r.Category, Total: r.Total, Count: r.Count}
		out.TransactionCount += r.Count
		switch r.Kind {
		case model.KindIncome:
			out.TotalIncome += r.Total
			out.IncomeByCategory = append(out.IncomeByCategory, ct)
		case model.KindExpense:
			out.TotalExpense += r.Total
			out.ExpenseByCategory = append(out.ExpenseByCategory, ct)
		}
	}
	out.Net = out.TotalIncome - out.TotalExpense
	byTotal := func(v []CategoryTotal) {
		sort.Slice(v, func(i, j int) bool {
			if v[i].Total != v[j].Total {
				return v[i].Total > v[j].Total
			}
			return v[i].Category < v[j].Category
		})
	}
	byTotal(out.IncomeByCategory)
	byTotal(out.ExpenseByCategory)
	return out, nil
}
