package controller

import (
	"github.com/gofiber/fiber/v2"

	"kanisa_backend/internals/features/finance/giving/dto"
	"kanisa_backend/internals/features/finance/giving/service"
	helper "kanisa_backend/internals/helpers"
)

type GivingController struct {
	Svc *service.Service
}

func NewGivingController(svc *service.Service) *GivingController {
	return &GivingController{Svc: svc}
}

// ========== Give ==========
// POST /finance/giving
func (h *GivingController) Give(c *fiber.Ctx) error {
	var req dto.GiveRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m, err := h.Svc.Give(c.UserContext(), req.ToInput(helper.CurrentUserID(c)))
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Checkout created", dto.NewGiveResponse(m))
}

// ========== Notification ==========
// POST /public/finance/giving/notification
func (h *GivingController) Notification(c *fiber.Ctx) error {
	var n service.Notification
	if err := c.BodyParser(&n); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload: "+err.Error())
	}
	raw := map[string]any{}
	if err := c.App().Config().JSONDecoder(c.Body(), &raw); err == nil {
		n.Raw = raw
	}

	res, err := h.Svc.HandleNotification(c.UserContext(), n)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if res.Ignored {
		return c.JSON(fiber.Map{"status": "ignored", "reason": "transaction not found"})
	}
	return c.JSON(fiber.Map{
		"status":                "ok",
		"transaction_id":        res.Transaction.TransactionID,
		"transaction_reference": res.Transaction.TransactionReference,
		"transaction_status":    res.Transaction.TransactionStatus,
		"gateway_status":        n.TransactionStatus,
		"fraud_status":          n.FraudStatus,
	})
}
