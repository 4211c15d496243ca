package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kanisa_backend/internals/features/attendance/qrcode"
	recordModel "kanisa_backend/internals/features/attendance/records/model"
	"kanisa_backend/internals/features/attendance/sessions/dto"
	"kanisa_backend/internals/features/attendance/sessions/model"
	"kanisa_backend/internals/features/attendance/sessions/service"
	helper "kanisa_backend/internals/helpers"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
)

type SessionController struct {
	Svc *service.Service
	Now func() time.Time
}

func NewSessionController(svc *service.Service) *SessionController {
	return &SessionController{
		Svc: svc,
		Now: func() time.Time { return time.Now().UTC() },
	}
}

// ========== POST /attendance/qr-session ==========
func (ctl *SessionController) CreateQRSession(c *fiber.Ctx) error {
	return ctl.create(c, true)
}

// ========== POST /attendance/sessions ==========
func (ctl *SessionController) CreateSession(c *fiber.Ctx) error {
	return ctl.create(c, false)
}

func (ctl *SessionController) create(c *fiber.Ctx, issueQR bool) error {
	var req dto.CreateSessionRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	opt, err := req.ToOptions(issueQR, helper.CurrentUserID(c))
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	res, err := ctl.Svc.Create(c.UserContext(), opt)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	out := dto.FromModel(res.Session, ctl.Now())
	if res.QR != nil {
		out.WithImage(res.QR.PNG)
	}
	return helper.JsonCreated(c, "Attendance session created", fiber.Map{
		"session":           out,
		"populated_records": res.Populated,
	})
}

// ========== GET /attendance/qr-session ==========
// ?id= | ?qr_session_id= | ?date=&attendance_type=
func (ctl *SessionController) GetQRSession(c *fiber.Ctx) error {
	sess, err := ctl.lookup(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out := dto.FromModel(sess, ctl.Now())
	if sess.HasQR() && sess.AttendanceSessionQRURL != nil {
		png, err := qrcode.Render(*sess.AttendanceSessionQRURL)
		if err != nil {
			return helper.JsonAppError(c, err)
		}
		out.WithImage(png)
	}
	return helper.JsonOK(c, "ok", out)
}

func (ctl *SessionController) lookup(c *fiber.Ctx) (*model.AttendanceSessionModel, error) {
	ctx := c.UserContext()
	id := strings.TrimSpace(c.Query("id", c.Query("session_id")))
	qrID := strings.TrimSpace(c.Query("qr_session_id"))
	date := strings.TrimSpace(c.Query("date"))
	typ := strings.TrimSpace(c.Query("attendance_type"))

	switch {
	case id != "":
		uid, err := uuid.Parse(id)
		if err != nil {
			return nil, apperr.Invalid("id is not a valid UUID")
		}
		return ctl.Svc.Get(ctx, uid)
	case qrID != "":
		return ctl.Svc.GetByQRSessionID(ctx, qrID)
	case date != "" && typ != "":
		d, err := dbtime.ParseDate(date)
		if err != nil {
			return nil, apperr.Invalid(err.Error())
		}
		return ctl.Svc.GetByDateType(ctx, d, recordModel.AttendanceType(typ))
	default:
		return nil, apperr.Invalid("provide id, qr_session_id, or date and attendance_type")
	}
}

// ========== PUT /attendance/qr-session ==========
func (ctl *SessionController) UpdateQRSession(c *fiber.Ctx) error {
	var req dto.UpdateQRRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	id, opt, err := req.ToOptions()
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	sess, err := ctl.Svc.UpdateQR(c.UserContext(), id, opt)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "QR session updated", dto.FromModel(sess, ctl.Now()))
}

// ========== GET /attendance/sessions ==========
func (ctl *SessionController) ListSessions(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	f := service.ListFilter{
		Type:   recordModel.AttendanceType(strings.TrimSpace(c.Query("attendance_type"))),
		Offset: p.Offset,
		Limit:  p.Limit,
	}
	if v := strings.TrimSpace(c.Query("from")); v != "" {
		d, err := dbtime.ParseDate(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "from: "+err.Error())
		}
		f.From = &d
	}
	if v := strings.TrimSpace(c.Query("to")); v != "" {
		d, err := dbtime.ParseDate(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "to: "+err.Error())
		}
		f.To = &d
	}
	if v := strings.TrimSpace(c.Query("department_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "department_id is not a valid UUID")
		}
		f.DepartmentID = &id
	}

	rows, total, err := ctl.Svc.List(c.UserContext(), f)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows, ctl.Now()), helper.BuildPagination(total, p))
}

// ========== GET /attendance/sessions/:id ==========
func (ctl *SessionController) GetSession(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	sess, err := ctl.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(sess, ctl.Now()))
}

// ========== POST /attendance/sessions/:id/generate-qr ==========
func (ctl *SessionController) GenerateQR(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.GenerateQRRequest
	if len(c.Body()) > 0 {
		if ok, err := helper.BindAndValidate(c, &req); !ok {
			return err
		}
	}
	var validity time.Duration
	if req.ValidityHours != nil {
		validity = dto.HoursToDuration(*req.ValidityHours)
	}

	sess, qr, err := ctl.Svc.RegenerateQR(c.UserContext(), id, validity)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out := dto.FromModel(sess, ctl.Now())
	out.WithImage(qr.PNG)
	return helper.JsonCreated(c, "QR code generated", out)
}

// ========== POST /attendance/sessions/migrate-legacy ==========
func (ctl *SessionController) MigrateLegacy(c *fiber.Ctx) error {
	var req dto.MigrateLegacyRequest
	if len(c.Body()) > 0 {
		if ok, err := helper.BindAndValidate(c, &req); !ok {
			return err
		}
	}
	res, err := ctl.Svc.MigrateLegacy(c.UserContext(), req.ToOptions(helper.CurrentUserID(c)))
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Legacy attendance migrated", res)
}

// ========== GET /public/attendance/qr-session/:qr_session_id ==========
func (ctl *SessionController) PublicSession(c *fiber.Ctx) error {
	sess, err := ctl.Svc.FindByQRSessionID(c.UserContext(), c.Params("qr_session_id"))
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToPublic(sess, ctl.Now()))
}
