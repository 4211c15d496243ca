package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kanisa_backend/internals/features/members/departments/model"
	memberModel "kanisa_backend/internals/features/members/members/model"
	helper "kanisa_backend/internals/helpers"
	"kanisa_backend/internals/helpers/apperr"
)

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) Create(ctx context.Context, m *model.DepartmentModel) error {
	if m.DepartmentName == "" {
		return apperr.Invalid("name is required")
	}
	slug, err := helper.EnsureUniqueSlug(ctx, s.db, "departments", "department_slug", helper.Slugify(m.DepartmentName, 120))
	if err != nil {
		return apperr.FromDB(err, "failed to generate slug")
	}
	m.DepartmentSlug = slug
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperr.FromDB(err, "failed to create department")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.DepartmentModel, error) {
	var m model.DepartmentModel
	if err := s.db.WithContext(ctx).First(&m, "department_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("department not found")
		}
		return nil, apperr.FromDB(err, "failed to load department")
	}
	return &m, nil
}

// List returns departments by name with their member counts.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]model.DepartmentModel, map[uuid.UUID]int64, error) {
	q := s.db.WithContext(ctx).Order("department_name ASC")
	if activeOnly {
		q = q.Where("department_is_active = ?", true)
	}
	var rows []model.DepartmentModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "failed to list departments")
	}
	counts, err := s.MemberCounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return rows, counts, nil
}

// MemberCounts counts active members per department.
func (s *Service) MemberCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	type row struct {
		DepartmentID uuid.UUID
		Total        int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Table("department_members AS dm").
		Select("dm.department_member_department_id AS department_id, COUNT(*) AS total").
		Joins("JOIN members m ON m.member_id = dm.department_member_member_id AND m.member_deleted_at IS NULL").
		Where("m.member_status = ?", memberModel.MemberStatusActive).
		Group("dm.department_member_department_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.FromDB(err, "failed to count department members")
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		out[r.DepartmentID] = r.Total
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, m *model.DepartmentModel, renamed bool) error {
	if renamed {
		slug, err := helper.EnsureUniqueSlug(ctx, s.db, "departments", "department_slug", helper.Slugify(m.DepartmentName, 120))
		if err != nil {
			return apperr.FromDB(err, "failed to generate slug")
		}
		m.DepartmentSlug = slug
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return apperr.FromDB(err, "failed to update department")
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("department_member_department_id = ?", id).
			Delete(&model.DepartmentMemberModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
	if err != nil {
		return apperr.FromDB(err, "failed to delete department")
	}
	return nil
}

/* ========== membership ========== */

func (s *Service) AddMember(ctx context.Context, deptID, memberID uuid.UUID, role *string) (*model.DepartmentMemberModel, error) {
	if _, err := s.Get(ctx, deptID); err != nil {
		return nil, err
	}
	var member memberModel.MemberModel
	if err := s.db.WithContext(ctx).Select("member_id").First(&member, "member_id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("member not found")
		}
		return nil, apperr.FromDB(err, "failed to load member")
	}

	link := &model.DepartmentMemberModel{
		DepartmentMemberDepartmentID: deptID,
		DepartmentMemberMemberID:     memberID,
		DepartmentMemberRole:         role,
	}
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		return nil, apperr.FromDB(err, "member is already in this department")
	}
	return link, nil
}

func (s *Service) RemoveMember(ctx context.Context, deptID, memberID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("department_member_department_id = ? AND department_member_member_id = ?", deptID, memberID).
		Delete(&model.DepartmentMemberModel{})
	if res.Error != nil {
		return apperr.FromDB(res.Error, "failed to remove member")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("member is not in this department")
	}
	return nil
}

// Members lists the department's members (any status) by name.
func (s *Service) Members(ctx context.Context, deptID uuid.UUID) ([]memberModel.MemberModel, error) {
	if _, err := s.Get(ctx, deptID); err != nil {
		return nil, err
	}
	var rows []memberModel.MemberModel
	err := s.db.WithContext(ctx).
		Where("member_id IN (?)", s.db.Session(&gorm.Session{NewDB: true}).
			Model(&model.DepartmentMemberModel{}).
			Select("department_member_member_id").
			Where("department_member_department_id = ?", deptID)).
		Order("member_last_name ASC, member_first_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.FromDB(err, "failed to list department members")
	}
	return rows, nil
}
