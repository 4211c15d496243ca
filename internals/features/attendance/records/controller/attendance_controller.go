package controller

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"kanisa_backend/internals/features/attendance/exports"
	"kanisa_backend/internals/features/attendance/records/dto"
	"kanisa_backend/internals/features/attendance/records/model"
	"kanisa_backend/internals/features/attendance/records/service"
	helper "kanisa_backend/internals/helpers"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceController struct {
	Svc      *service.Service
	Exporter *exports.Exporter
}

func NewAttendanceController(svc *service.Service, exp *exports.Exporter) *AttendanceController {
	return &AttendanceController{Svc: svc, Exporter: exp}
}

// ========== POST /attendance ==========
func (ctl *AttendanceController) SaveRoster(c *fiber.Ctx) error {
	var req dto.RosterRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	sub, err := req.ToSubmission(helper.CurrentUserID(c))
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	n, err := ctl.Svc.ReplaceRoster(c.UserContext(), sub)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Attendance saved", fiber.Map{
		"date":            dbtime.FormatDate(sub.Date),
		"attendance_type": sub.Type,
		"records_saved":   n,
	})
}

// ========== GET /attendance?date=&attendance_type= ==========
func (ctl *AttendanceController) List(c *fiber.Ctx) error {
	date, typ, err := dateTypeQuery(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := ctl.Svc.List(c.UserContext(), date, typ)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", rows, nil)
}

// ========== GET /attendance/export?date=&attendance_type= ==========
func (ctl *AttendanceController) Export(c *fiber.Ctx) error {
	date, typ, err := dateTypeQuery(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	body, err := ctl.Exporter.BuildWorkbook(c.UserContext(), date, typ)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, exports.FileName(date, typ)))
	return c.Send(body)
}

func dateTypeQuery(c *fiber.Ctx) (time.Time, model.AttendanceType, error) {
	rawDate := strings.TrimSpace(c.Query("date"))
	typ := model.AttendanceType(strings.TrimSpace(c.Query("attendance_type")))
	if rawDate == "" || typ == "" {
		return time.Time{}, "", apperr.Invalid("date and attendance_type are required")
	}
	date, err := dbtime.ParseDate(rawDate)
	if err != nil {
		return time.Time{}, "", apperr.Invalid(err.Error())
	}
	if !typ.Valid() {
		return time.Time{}, "", apperr.Invalid("invalid attendance_type").
			WithDetails(map[string]any{"allowed": model.AttendanceTypes})
	}
	return date, typ, nil
}
