package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"kanisa_backend/internals/features/members/departments/model"
)

type CreateDepartmentRequest struct {
	Name           string     `json:"name" validate:"required,min=2,max=120"`
	Description    *string    `json:"description"`
	LeaderMemberID *uuid.UUID `json:"leader_member_id"`
	IsActive       *bool      `json:"is_active"`
}

func (r *CreateDepartmentRequest) ToModel() *model.DepartmentModel {
	m := &model.DepartmentModel{
		DepartmentName:           strings.TrimSpace(r.Name),
		DepartmentDescription:    r.Description,
		DepartmentLeaderMemberID: r.LeaderMemberID,
		DepartmentIsActive:       true,
	}
	if r.IsActive != nil {
		m.DepartmentIsActive = *r.IsActive
	}
	return m
}

type UpdateDepartmentRequest struct {
	Name           *string    `json:"name" validate:"omitempty,min=2,max=120"`
	Description    *string    `json:"description"`
	LeaderMemberID *uuid.UUID `json:"leader_member_id"`
	IsActive       *bool      `json:"is_active"`
}

// ApplyToModel reports whether the name changed (the slug follows it).
func (r *UpdateDepartmentRequest) ApplyToModel(m *model.DepartmentModel) bool {
	renamed := false
	if r.Name != nil && strings.TrimSpace(*r.Name) != m.DepartmentName {
		m.DepartmentName = strings.TrimSpace(*r.Name)
		renamed = true
	}
	if r.Description != nil {
		m.DepartmentDescription = r.Description
	}
	if r.LeaderMemberID != nil {
		m.DepartmentLeaderMemberID = r.LeaderMemberID
	}
	if r.IsActive != nil {
		m.DepartmentIsActive = *r.IsActive
	}
	return renamed
}

type AddMemberRequest struct {
	MemberID uuid.UUID `json:"member_id" validate:"required"`
	Role     *string   `json:"role" validate:"omitempty,max=60"`
}

type DepartmentResponse struct {
	ID             uuid.UUID  `json:"department_id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Description    *string    `json:"description,omitempty"`
	LeaderMemberID *uuid.UUID `json:"leader_member_id,omitempty"`
	IsActive       bool       `json:"is_active"`
	MemberCount    int64      `json:"member_count"`
	CreatedAt      time.Time  `json:"created_at"`
}

func NewDepartmentResponse(m *model.DepartmentModel, memberCount int64) DepartmentResponse {
	return DepartmentResponse{
		ID:             m.DepartmentID,
		Name:           m.DepartmentName,
		Slug:           m.DepartmentSlug,
		Description:    m.DepartmentDescription,
		LeaderMemberID: m.DepartmentLeaderMemberID,
		IsActive:       m.DepartmentIsActive,
		MemberCount:    memberCount,
		CreatedAt:      m.DepartmentCreatedAt,
	}
}
