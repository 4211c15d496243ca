package dto

import (
	"strings"
	"time"

	"kanisa_backend/internals/features/reports/insights/service"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
)

// PeriodRequest carries an optional [from, to]; missing bounds default to
// the current month up to today.
type PeriodRequest struct {
	From string `json:"from" query:"from"`
	To   string `json:"to" query:"to"`
}

func (r PeriodRequest) Resolve(now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := dbtime.DateOf(now, time.UTC)
	if s := strings.TrimSpace(r.From); s != "" {
		d, err := dbtime.ParseDate(s)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.Invalid("from: " + err.Error())
		}
		from = d
	}
	if s := strings.TrimSpace(r.To); s != "" {
		d, err := dbtime.ParseDate(s)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.Invalid("to: " + err.Error())
		}
		to = d
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperr.Invalid("to must not be before from")
	}
	return from, to, nil
}

type SummaryResponse struct {
	From   string              `json:"from"`
	To     string              `json:"to"`
	Report *service.ReportData `json:"report"`
}

type InsightsResponse struct {
	From     string              `json:"from"`
	To       string              `json:"to"`
	Report   *service.ReportData `json:"report"`
	Insights *service.Insights   `json:"insights"`
}

func NewSummaryResponse(data *service.ReportData) SummaryResponse {
	return SummaryResponse{From: dbtime.FormatDate(data.From), To: dbtime.FormatDate(data.To), Report: data}
}

func NewInsightsResponse(data *service.ReportData, in *service.Insights) InsightsResponse {
	return InsightsResponse{
		From:     dbtime.FormatDate(data.From),
		To:       dbtime.FormatDate(data.To),
		Report:   data,
		Insights: in,
	}
}
