package controller

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"kanisa_backend/internals/features/reports/insights/dto"
	"kanisa_backend/internals/features/reports/insights/service"
	helper "kanisa_backend/internals/helpers"
)

type InsightsGenerator interface {
	GenerateInsights(ctx context.Context, data service.ReportData) (*service.Insights, error)
}

type ReportController struct {
	Collector *service.Collector
	Generator InsightsGenerator
	Now       func() time.Time
}

func NewReportController(collector *service.Collector, gen InsightsGenerator) *ReportController {
	return &ReportController{Collector: collector, Generator: gen, Now: time.Now}
}

// ========== Summary ==========
// GET /reports/summary?from=&to=
func (h *ReportController) Summary(c *fiber.Ctx) error {
	var req dto.PeriodRequest
	if err := c.QueryParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	data, err := h.collect(c, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.NewSummaryResponse(data))
}

// ========== Insights ==========
// POST /reports/insights {from?, to?}
func (h *ReportController) Insights(c *fiber.Ctx) error {
	var req dto.PeriodRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
		}
	}
	data, err := h.collect(c, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	in, err := h.Generator.GenerateInsights(c.UserContext(), *data)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Insights generated", dto.NewInsightsResponse(data, in))
}

func (h *ReportController) collect(c *fiber.Ctx, req dto.PeriodRequest) (*service.ReportData, error) {
	from, to, err := req.Resolve(h.Now())
	if err != nil {
		return nil, err
	}
	return h.Collector.Collect(c.UserContext(), from, to)
}
