package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kanisa_backend/internals/features/finance/transactions/dto"
	"kanisa_backend/internals/features/finance/transactions/model"
	"kanisa_backend/internals/features/finance/transactions/service"
	helper "kanisa_backend/internals/helpers"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
)

type TransactionController struct {
	Svc *service.Service
	Now func() time.Time
}

func NewTransactionController(svc *service.Service) *TransactionController {
	return &TransactionController{Svc: svc, Now: time.Now}
}

// ========== Create ==========
// POST /finance/transactions
func (h *TransactionController) Create(c *fiber.Ctx) error {
	var req dto.CreateTransactionRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m, err := req.ToModel(helper.CurrentUserID(c))
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := h.Svc.Create(c.UserContext(), m); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Transaction recorded", dto.NewTransactionResponse(m))
}

// ========== List ==========
// GET /finance/transactions?from=&to=&kind=&category=&status=&member_id=&page=&per_page=
func (h *TransactionController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 200)
	f := service.ListFilter{
		Kind:     model.Kind(strings.ToLower(strings.TrimSpace(c.Query("kind")))),
		Category: strings.TrimSpace(c.Query("category")),
		Status:   model.Status(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Offset:   p.Offset,
		Limit:    p.Limit,
	}
	if f.Kind != "" && f.Kind != model.KindIncome && f.Kind != model.KindExpense {
		return helper.JsonError(c, fiber.StatusBadRequest, "kind must be income or expense")
	}
	var err error
	if f.From, err = optDateQuery(c, "from"); err != nil {
		return helper.JsonAppError(c, err)
	}
	if f.To, err = optDateQuery(c, "to"); err != nil {
		return helper.JsonAppError(c, err)
	}
	if v := strings.TrimSpace(c.Query("member_id")); v != "" {
		id, perr := uuid.Parse(v)
		if perr != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "member_id is not a valid UUID")
		}
		f.MemberID = &id
	}

	rows, total, err := h.Svc.List(c.UserContext(), f)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.NewTransactionResponses(rows), helper.BuildPagination(total, p))
}

// ========== Detail ==========
// GET /finance/transactions/:id
func (h *TransactionController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.NewTransactionResponse(m))
}

// ========== Update ==========
// PATCH /finance/transactions/:id
func (h *TransactionController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateTransactionRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := req.ApplyToModel(m); err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := h.Svc.Update(c.UserContext(), m); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Transaction updated", dto.NewTransactionResponse(m))
}

// ========== Delete ==========
// DELETE /finance/transactions/:id
func (h *TransactionController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := h.Svc.Delete(c.UserContext(), id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Transaction deleted", fiber.Map{"transaction_id": id})
}

// ========== Summary ==========
// GET /finance/summary?from=&to= (defaults to the current month)
func (h *TransactionController) Summary(c *fiber.Ctx) error {
	from, err := optDateQuery(c, "from")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	to, err := optDateQuery(c, "to")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	now := h.Now().UTC()
	if from == nil {
		d := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		from = &d
	}
	if to == nil {
		d := dbtime.DateOf(now, time.UTC)
		to = &d
	}
	sum, err := h.Svc.Summarize(c.UserContext(), *from, *to)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", sum)
}

func optDateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	d, err := dbtime.ParseDate(v)
	if err != nil {
		return nil, apperr.Invalid(key + ": " + err.Error())
	}
	return &d, nil
}
