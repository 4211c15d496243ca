package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"kanisa_backend/internals/features/attendance/checkin/dto"
	"kanisa_backend/internals/features/attendance/checkin/service"
	sessionDTO "kanisa_backend/internals/features/attendance/sessions/dto"
	sessionService "kanisa_backend/internals/features/attendance/sessions/service"
	helper "kanisa_backend/internals/helpers"
	"kanisa_backend/internals/helpers/apperr"
)

const CheckinEndpoint = "/api/public/attendance/qr-checkin"

type CheckinController struct {
	Svc        *service.Service
	Sessions   *sessionService.Service
	ChurchName string
	Now        func() time.Time
}

func NewCheckinController(svc *service.Service, sessions *sessionService.Service, churchName string) *CheckinController {
	return &CheckinController{
		Svc:        svc,
		Sessions:   sessions,
		ChurchName: churchName,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// ========== POST /api/public/attendance/qr-checkin ==========
func (ctl *CheckinController) CheckIn(c *fiber.Ctx) error {
	var req dto.CheckInRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	res, err := ctl.Svc.CheckIn(c.UserContext(), req.ToService())
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	msg := "Checked in"
	if res.AlreadyPresent {
		msg = "Already checked in"
	}
	return helper.JsonOK(c, msg, dto.FromResult(res))
}

// ========== GET /checkin/:qr_session_id ==========
func (ctl *CheckinController) Page(c *fiber.Ctx) error {
	data := fiber.Map{
		"ChurchName":      ctl.ChurchName,
		"CheckinEndpoint": CheckinEndpoint,
	}
	sess, err := ctl.Sessions.FindByQRSessionID(c.UserContext(), c.Params("qr_session_id"))
	if err != nil {
		status := helper.StatusFor(apperr.KindOf(err))
		data["Error"] = "This check-in code was not found."
		if status >= fiber.StatusInternalServerError {
			data["Error"] = "Check-in is unavailable right now. Please try again."
		}
		return c.Status(status).Render("checkin", data)
	}
	data["Session"] = sessionDTO.ToPublic(sess, ctl.Now())
	return c.Render("checkin", data)
}
