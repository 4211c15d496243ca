package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"kanisa_backend/internals/features/members/members/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/dbtime"
)

/* ===================== REQUESTS ===================== */

type CreateMemberRequest struct {
	MemberNumber string  `json:"member_number" validate:"omitempty,max=40"`
	FirstName    string  `json:"first_name" validate:"required,min=1,max=80"`
	MiddleName   *string `json:"middle_name" validate:"omitempty,max=80"`
	LastName     string  `json:"last_name" validate:"required,min=1,max=80"`
	Gender       *string `json:"gender" validate:"omitempty,oneof=male female"`
	Phone        *string `json:"phone" validate:"omitempty,max=30"`
	Email        *string `json:"email" validate:"omitempty,email,max=160"`
	Address      *string `json:"address" validate:"omitempty"`
	DateOfBirth  *string `json:"date_of_birth" validate:"omitempty"`
	JoinDate     *string `json:"join_date" validate:"omitempty"`
	Status       string  `json:"status" validate:"omitempty,oneof=active inactive transferred deceased"`
}

func (r *CreateMemberRequest) ToModel() (*model.MemberModel, error) {
	dob, err := optDate("date_of_birth", r.DateOfBirth)
	if err != nil {
		return nil, err
	}
	join, err := optDate("join_date", r.JoinDate)
	if err != nil {
		return nil, err
	}
	return &model.MemberModel{
		MemberNumber:      strings.TrimSpace(r.MemberNumber),
		MemberFirstName:   strings.TrimSpace(r.FirstName),
		MemberMiddleName:  optString(r.MiddleName),
		MemberLastName:    strings.TrimSpace(r.LastName),
		MemberGender:      optString(r.Gender),
		MemberPhone:       optString(r.Phone),
		MemberEmail:       optString(r.Email),
		MemberAddress:     optString(r.Address),
		MemberDateOfBirth: dob,
		MemberJoinDate:    join,
		MemberStatus:      model.MemberStatus(r.Status),
	}, nil
}

type UpdateMemberRequest struct {
	MemberNumber *string `json:"member_number" validate:"omitempty,min=1,max=40"`
	FirstName    *string `json:"first_name" validate:"omitempty,min=1,max=80"`
	MiddleName   *string `json:"middle_name" validate:"omitempty,max=80"`
	LastName     *string `json:"last_name" validate:"omitempty,min=1,max=80"`
	Gender       *string `json:"gender" validate:"omitempty,oneof=male female"`
	Phone        *string `json:"phone" validate:"omitempty,max=30"`
	Email        *string `json:"email" validate:"omitempty,email,max=160"`
	Address      *string `json:"address"`
	DateOfBirth  *string `json:"date_of_birth"`
	JoinDate     *string `json:"join_date"`
	Status       *string `json:"status" validate:"omitempty,oneof=active inactive transferred deceased"`
}

// ApplyToModel copies only the fields that were sent.
func (r *UpdateMemberRequest) ApplyToModel(m *model.MemberModel) error {
	if r.MemberNumber != nil {
		m.MemberNumber = strings.TrimSpace(*r.MemberNumber)
	}
	if r.FirstName != nil {
		m.MemberFirstName = strings.TrimSpace(*r.FirstName)
	}
	if r.MiddleName != nil {
		m.MemberMiddleName = optString(r.MiddleName)
	}
	if r.LastName != nil {
		m.MemberLastName = strings.TrimSpace(*r.LastName)
	}
	if r.Gender != nil {
		m.MemberGender = optString(r.Gender)
	}
	if r.Phone != nil {
		m.MemberPhone = optString(r.Phone)
	}
	if r.Email != nil {
		m.MemberEmail = optString(r.Email)
	}
	if r.Address != nil {
		m.MemberAddress = optString(r.Address)
	}
	if r.DateOfBirth != nil {
		d, err := optDate("date_of_birth", r.DateOfBirth)
		if err != nil {
			return err
		}
		m.MemberDateOfBirth = d
	}
	if r.JoinDate != nil {
		d, err := optDate("join_date", r.JoinDate)
		if err != nil {
			return err
		}
		m.MemberJoinDate = d
	}
	if r.Status != nil {
		m.MemberStatus = model.MemberStatus(*r.Status)
	}
	return nil
}

/* ===================== RESPONSE ===================== */

type MemberResponse struct {
	ID           uuid.UUID          `json:"member_id"`
	MemberNumber string             `json:"member_number"`
	FullName     string             `json:"full_name"`
	FirstName    string             `json:"first_name"`
	MiddleName   *string            `json:"middle_name,omitempty"`
	LastName     string             `json:"last_name"`
	Gender       *string            `json:"gender,omitempty"`
	Phone        *string            `json:"phone,omitempty"`
	Email        *string            `json:"email,omitempty"`
	Address      *string            `json:"address,omitempty"`
	DateOfBirth  *string            `json:"date_of_birth,omitempty"`
	JoinDate     *string            `json:"join_date,omitempty"`
	Status       model.MemberStatus `json:"status"`
	PhotoURL     *string            `json:"photo_url,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func NewMemberResponse(m *model.MemberModel) MemberResponse {
	return MemberResponse{
		ID:           m.MemberID,
		MemberNumber: m.MemberNumber,
		FullName:     m.FullName(),
		FirstName:    m.MemberFirstName,
		MiddleName:   m.MemberMiddleName,
		LastName:     m.MemberLastName,
		Gender:       m.MemberGender,
		Phone:        m.MemberPhone,
		Email:        m.MemberEmail,
		Address:      m.MemberAddress,
		DateOfBirth:  fmtDate(m.MemberDateOfBirth),
		JoinDate:     fmtDate(m.MemberJoinDate),
		Status:       m.MemberStatus,
		PhotoURL:     m.MemberPhotoURL,
		CreatedAt:    m.MemberCreatedAt,
		UpdatedAt:    m.MemberUpdatedAt,
	}
}

func NewMemberResponses(rows []model.MemberModel) []MemberResponse {
	out := make([]MemberResponse, 0, len(rows))
	for i := range rows {
		out = append(out, NewMemberResponse(&rows[i]))
	}
	return out
}

/* ===================== helpers ===================== */

func optString(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

func optDate(field string, p *string) (*time.Time, error) {
	s := optString(p)
	if s == nil {
		return nil, nil
	}
	d, err := dbtime.ParseDate(*s)
	if err != nil {
		return nil, apperr.Invalid(field + ": " + err.Error())
	}
	return &d, nil
}

func fmtDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := dbtime.FormatDate(*t)
	return &s
}
