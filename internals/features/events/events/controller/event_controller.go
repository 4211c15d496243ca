// internals/features/events/events/controller/event_controller.go
package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"kanisa_backend/internals/features/events/events/dto"
	"kanisa_backend/internals/features/events/events/model"
	helper "kanisa_backend/internals/helpers"
	"kanisa_backend/internals/helpers/apperr"
)

type EventController struct {
	DB *gorm.DB
}

func NewEventController(db *gorm.DB) *EventController {
	return &EventController{DB: db}
}

/* ===================== HANDLERS ===================== */

// POST /events
func (h *EventController) Create(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m := req.ToModel()
	if m.EventEndsAt != nil && m.EventEndsAt.Before(m.EventStartsAt) {
		return helper.JsonError(c, fiber.StatusBadRequest, "ends_at must not be before starts_at")
	}

	ctx := c.UserContext()
	slug, err := helper.EnsureUniqueSlug(ctx, h.DB, "events", "event_slug", helper.Slugify(m.EventTitle, 200))
	if err != nil {
		return helper.JsonAppError(c, apperr.FromDB(err, "failed to generate slug"))
	}
	m.EventSlug = slug

	if err := h.DB.WithContext(ctx).Create(m).Error; err != nil {
		return helper.JsonAppError(c, apperr.FromDB(err, "failed to create event"))
	}
	return helper.JsonCreated(c, "Event created", dto.NewEventResponse(m))
}

// PATCH /events/:id
func (h *EventController) Update(c *fiber.Ctx) error {
	m, err := h.findByID(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateEventRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	renamed := req.ApplyToModel(m)
	if m.EventEndsAt != nil && m.EventEndsAt.Before(m.EventStartsAt) {
		return helper.JsonError(c, fiber.StatusBadRequest, "ends_at must not be before starts_at")
	}

	ctx := c.UserContext()
	if renamed {
		slug, err := helper.EnsureUniqueSlug(ctx, h.DB, "events", "event_slug", helper.Slugify(m.EventTitle, 200))
		if err != nil {
			return helper.JsonAppError(c, apperr.FromDB(err, "failed to generate slug"))
		}
		m.EventSlug = slug
	}
	if err := h.DB.WithContext(ctx).Save(m).Error; err != nil {
		return helper.JsonAppError(c, apperr.FromDB(err, "failed to update event"))
	}
	return helper.JsonUpdated(c, "Event updated", dto.NewEventResponse(m))
}

// DELETE /events/:id (soft delete)
func (h *EventController) Delete(c *fiber.Ctx) error {
	m, err := h.findByID(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := h.DB.WithContext(c.UserContext()).Delete(m).Error; err != nil {
		return helper.JsonAppError(c, apperr.FromDB(err, "failed to delete event"))
	}
	return helper.JsonDeleted(c, "Event deleted", fiber.Map{"event_id": m.EventID})
}

// GET /events/:id
func (h *EventController) Detail(c *fiber.Ctx) error {
	m, err := h.findByID(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.NewEventResponse(m))
}

// GET /events?from=&to=&q=&page=&per_page=
func (h *EventController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	dbq := h.DB.WithContext(c.UserContext()).Model(&model.EventModel{})

	if v := strings.TrimSpace(c.Query("from")); v != "" {
		t, err := parseBound(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "from must be RFC3339 or YYYY-MM-DD")
		}
		dbq = dbq.Where("event_starts_at >= ?", t)
	}
	if v := strings.TrimSpace(c.Query("to")); v != "" {
		t, err := parseBound(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "to must be RFC3339 or YYYY-MM-DD")
		}
		dbq = dbq.Where("event_starts_at < ?", t)
	}
	if v := strings.ToLower(strings.TrimSpace(c.Query("q"))); v != "" {
		dbq = dbq.Where("LOWER(event_title) LIKE ?", "%"+v+"%")
	}

	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return helper.JsonAppError(c, apperr.FromDB(err, "failed to count events"))
	}
	var rows []model.EventModel
	if err := dbq.Order("event_starts_at ASC").Limit(p.Limit).Offset(p.Offset).Find(&rows).Error; err != nil {
		return helper.JsonAppError(c, apperr.FromDB(err, "failed to list events"))
	}

	out := make([]dto.EventResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.NewEventResponse(&rows[i]))
	}
	return helper.JsonList(c, "ok", out, helper.BuildPagination(total, p))
}

func (h *EventController) findByID(c *fiber.Ctx) (*model.EventModel, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return nil, apperr.Invalid("id is not a valid UUID")
	}
	var m model.EventModel
	if err := h.DB.WithContext(c.UserContext()).First(&m, "event_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("event not found")
		}
		return nil, apperr.FromDB(err, "failed to load event")
	}
	return &m, nil
}

// parseBound accepts a timestamp or a plain date (start of day, UTC).
func parseBound(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", v)
}
