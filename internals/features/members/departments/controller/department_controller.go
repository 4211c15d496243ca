package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"kanisa_backend/internals/features/members/departments/dto"
	"kanisa_backend/internals/features/members/departments/service"
	memberDTO "kanisa_backend/internals/features/members/members/dto"
	helper "kanisa_backend/internals/helpers"
)

type DepartmentController struct {
	Svc *service.Service
}

func NewDepartmentController(svc *service.Service) *DepartmentController {
	return &DepartmentController{Svc: svc}
}

// POST /departments
func (h *DepartmentController) Create(c *fiber.Ctx) error {
	var req dto.CreateDepartmentRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m := req.ToModel()
	if err := h.Svc.Create(c.UserContext(), m); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Department created", dto.NewDepartmentResponse(m, 0))
}

// GET /departments?active=true
func (h *DepartmentController) List(c *fiber.Ctx) error {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))
	rows, counts, err := h.Svc.List(c.UserContext(), activeOnly)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out := make([]dto.DepartmentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.NewDepartmentResponse(&rows[i], counts[rows[i].DepartmentID]))
	}
	return helper.JsonList(c, "ok", out, nil)
}

// GET /departments/:id
func (h *DepartmentController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	counts, err := h.Svc.MemberCounts(c.UserContext())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.NewDepartmentResponse(m, counts[m.DepartmentID]))
}

// PATCH /departments/:id
func (h *DepartmentController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateDepartmentRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	renamed := req.ApplyToModel(m)
	if err := h.Svc.Update(c.UserContext(), m, renamed); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Department updated", dto.NewDepartmentResponse(m, 0))
}

// DELETE /departments/:id
func (h *DepartmentController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := h.Svc.Delete(c.UserContext(), id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Department deleted", fiber.Map{"department_id": id})
}

// GET /departments/:id/members
func (h *DepartmentController) Members(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := h.Svc.Members(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", memberDTO.NewMemberResponses(rows), nil)
}

// POST /departments/:id/members
func (h *DepartmentController) AddMember(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.AddMemberRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	link, err := h.Svc.AddMember(c.UserContext(), id, req.MemberID, req.Role)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Member added to department", link)
}

// DELETE /departments/:id/members/:member_id
func (h *DepartmentController) RemoveMember(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	memberID, err := helper.ParseUUIDParam(c, "member_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := h.Svc.RemoveMember(c.UserContext(), id, memberID); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Member removed from department", nil)
}
