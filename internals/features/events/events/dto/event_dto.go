package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"kanisa_backend/internals/features/events/events/model"
)

/* ===================== REQUESTS ===================== */

type CreateEventRequest struct {
	Title       string     `json:"title" validate:"required,min=2,max=200"`
	Description *string    `json:"description"`
	Location    *string    `json:"location" validate:"omitempty,max=200"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      *time.Time `json:"ends_at"`
}

func (r *CreateEventRequest) ToModel() *model.EventModel {
	return &model.EventModel{
		EventTitle:       strings.TrimSpace(r.Title),
		EventDescription: r.Description,
		EventLocation:    r.Location,
		EventStartsAt:    r.StartsAt.UTC(),
		EventEndsAt:      utc(r.EndsAt),
	}
}

type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string    `json:"description"`
	Location    *string    `json:"location" validate:"omitempty,max=200"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// ApplyToModel reports whether the title changed.
func (r *UpdateEventRequest) ApplyToModel(m *model.EventModel) bool {
	renamed := false
	if r.Title != nil && strings.TrimSpace(*r.Title) != m.EventTitle {
		m.EventTitle = strings.TrimSpace(*r.Title)
		renamed = true
	}
	if r.Description != nil {
		m.EventDescription = r.Description
	}
	if r.Location != nil {
		m.EventLocation = r.Location
	}
	if r.StartsAt != nil {
		m.EventStartsAt = r.StartsAt.UTC()
	}
	if r.EndsAt != nil {
		m.EventEndsAt = utc(r.EndsAt)
	}
	return renamed
}

/* ===================== RESPONSE ===================== */

type EventResponse struct {
	ID          uuid.UUID  `json:"event_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewEventResponse(m *model.EventModel) EventResponse {
	return EventResponse{
		ID:          m.EventID,
		Title:       m.EventTitle,
		Slug:        m.EventSlug,
		Description: m.EventDescription,
		Location:    m.EventLocation,
		StartsAt:    m.EventStartsAt,
		EndsAt:      m.EventEndsAt,
		CreatedAt:   m.EventCreatedAt,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
