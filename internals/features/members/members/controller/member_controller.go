package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kanisa_backend/internals/constants"
	"kanisa_backend/internals/features/members/members/dto"
	"kanisa_backend/internals/features/members/members/model"
	"kanisa_backend/internals/features/members/members/service"
	helper "kanisa_backend/internals/helpers"
	"kanisa_backend/internals/helpers/apperr"
)

type MemberController struct {
	Svc *service.Service
}

func NewMemberController(svc *service.Service) *MemberController {
	return &MemberController{Svc: svc}
}

// ========== Create ==========
// POST /members
func (h *MemberController) Create(c *fiber.Ctx) error {
	var req dto.CreateMemberRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m, err := req.ToModel()
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := h.Svc.Create(c.UserContext(), m); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Member created", dto.NewMemberResponse(m))
}

// ========== List ==========
// GET /members?status=&department_id=&q=&page=&per_page=
func (h *MemberController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 200)
	f := service.ListFilter{
		Status: model.MemberStatus(strings.TrimSpace(c.Query("status"))),
		Q:      c.Query("q"),
		Offset: p.Offset,
		Limit:  p.Limit,
	}
	if f.Status != "" && !f.Status.Valid() {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid status")
	}
	if v := strings.TrimSpace(c.Query("department_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "department_id is not a valid UUID")
		}
		f.DepartmentID = &id
	}

	rows, total, err := h.Svc.List(c.UserContext(), f)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.NewMemberResponses(rows), helper.BuildPagination(total, p))
}

// ========== Detail ==========
// GET /members/:id
func (h *MemberController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.NewMemberResponse(m))
}

// ========== Update ==========
// PATCH /members/:id
func (h *MemberController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateMemberRequest
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
	return helper.JsonUpdated(c, "Member updated", dto.NewMemberResponse(m))
}

// ========== Delete ==========
// DELETE /members/:id
func (h *MemberController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := h.Svc.Delete(c.UserContext(), id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Member deleted", fiber.Map{"member_id": id})
}

// ========== Photo ==========
// POST /members/:id/photo (multipart "photo")
func (h *MemberController) UploadPhoto(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return helper.JsonAppError(c, apperr.Invalid("photo file is required"))
	}
	if !constants.IsImageFile(fh.Filename) {
		return helper.JsonAppError(c, apperr.Invalid("photo must be a jpeg, png or webp image"))
	}
	f, err := fh.Open()
	if err != nil {
		return helper.JsonAppError(c, apperr.Invalid("cannot read photo"))
	}
	defer f.Close()

	m, err := h.Svc.UploadPhoto(c.UserContext(), id, f, fh.Filename)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Photo uploaded", dto.NewMemberResponse(m))
}
