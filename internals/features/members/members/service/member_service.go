package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	deptModel "kanisa_backend/internals/features/members/departments/model"
	"kanisa_backend/internals/features/members/members/model"
	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/idgen"
	"kanisa_backend/internals/helpers/logger"
)

// PhotoUploader is satisfied by *oss.Service.
type PhotoUploader interface {
	UploadImageAsWebP(ctx context.Context, r io.Reader, filename, keyPrefix string) (string, error)
}

type Service struct {
	db     *gorm.DB
	photos PhotoUploader
}

// New accepts a nil uploader; photo upload then reports storage as
// unavailable.
func New(db *gorm.DB, photos PhotoUploader) *Service {
	return &Service{db: db, photos: photos}
}

// ========================== CREATE ==========================
func (s *Service) Create(ctx context.Context, m *model.MemberModel) error {
	if err := validate(m); err != nil {
		return err
	}
	if m.MemberNumber == "" {
		m.MemberNumber = idgen.MemberNumber()
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperr.FromDB(err, "member number already exists or member could not be saved")
	}
	return nil
}

// ========================== READ ==========================
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.MemberModel, error) {
	var m model.MemberModel
	if err := s.db.WithContext(ctx).First(&m, "member_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("member not found")
		}
		return nil, apperr.FromDB(err, "failed to load member")
	}
	return &m, nil
}

type ListFilter struct {
	Status       model.MemberStatus
	DepartmentID *uuid.UUID
	Q            string
	Offset       int
	Limit        int
}

// List orders by last then first name.
func (s *Service) List(ctx context.Context, f ListFilter) ([]model.MemberModel, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.MemberModel{})
	if f.Status != "" {
		q = q.Where("member_status = ?", f.Status)
	}
	if f.DepartmentID != nil {
		q = q.Where("member_id IN (?)", s.db.Session(&gorm.Session{NewDB: true}).
			Model(&deptModel.DepartmentMemberModel{}).
			Select("department_member_member_id").
			Where("department_member_department_id = ?", *f.DepartmentID))
	}
	if term := strings.ToLower(strings.TrimSpace(f.Q)); term != "" {
		like := "%" + term + "%"
		q = q.Where(
			"LOWER(member_first_name) LIKE ? OR LOWER(member_last_name) LIKE ? OR LOWER(member_number) LIKE ? OR member_phone LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "failed to count members")
	}

	var rows []model.MemberModel
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Order("member_last_name ASC, member_first_name ASC").Find(&rows).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "failed to list members")
	}
	return rows, total, nil
}

// ========================== UPDATE ==========================
// Update saves the already-mutated model.
func (s *Service) Update(ctx context.Context, m *model.MemberModel) error {
	if err := validate(m); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return apperr.FromDB(err, "failed to update member")
	}
	return nil
}

// ========================== DELETE ==========================
// Delete soft-deletes the member and drops department links. Attendance
// history is kept.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("department_member_member_id = ?", m.MemberID).
			Delete(&deptModel.DepartmentMemberModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
	if err != nil {
		return apperr.FromDB(err, "failed to delete member")
	}
	return nil
}

// ========================== PHOTO ==========================
func (s *Service) UploadPhoto(ctx context.Context, id uuid.UUID, r io.Reader, filename string) (*model.MemberModel, error) {
	if s.photos == nil {
		return nil, apperr.Internal("photo storage is not configured", nil).
			WithHint("set ALI_OSS_ENDPOINT, ALI_OSS_ACCESS_KEY, ALI_OSS_SECRET_KEY and ALI_OSS_BUCKET")
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.photos.UploadImageAsWebP(ctx, r, filename, m.MemberID.String())
	if err != nil {
		logger.L.Warn("[MEMBER] photo upload failed", zap.String("member_id", id.String()), zap.Error(err))
		return nil, apperr.Upstream("failed to upload photo", err)
	}

	if err := s.db.WithContext(ctx).Model(m).Update("member_photo_url", url).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to save photo url")
	}
	m.MemberPhotoURL = &url
	return m, nil
}

func validate(m *model.MemberModel) error {
	if strings.TrimSpace(m.MemberFirstName) == "" || strings.TrimSpace(m.MemberLastName) == "" {
		return apperr.Invalid("first_name and last_name are required")
	}
	if m.MemberStatus != "" && !m.MemberStatus.Valid() {
		return apperr.Invalid("invalid member status")
	}
	return nil
}
