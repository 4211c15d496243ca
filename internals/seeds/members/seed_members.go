package members

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	deptModel "kanisa_backend/internals/features/members/departments/model"
	deptService "kanisa_backend/internals/features/members/departments/service"
	memberDto "kanisa_backend/internals/features/members/members/dto"
	memberModel "kanisa_backend/internals/features/members/members/model"
	memberService "kanisa_backend/internals/features/members/members/service"
	"kanisa_backend/internals/helpers/logger"
)

type DepartmentSeed struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type MemberSeed struct {
	memberDto.CreateMemberRequest
	Departments []string `json:"departments"`
}

type File struct {
	Departments []DepartmentSeed `json:"departments"`
	Members     []MemberSeed     `json:"members"`
}

type Result struct {
	DepartmentsInserted int
	MembersInserted     int
	MembersSkipped      int
}

// SeedMembersFromJSON loads departments first, then members and their
// department links. Rows that already exist (by name or member number) are
// skipped.
func SeedMembersFromJSON(ctx context.Context, db *gorm.DB, filePath string) (*Result, error) {
	logger.L.Info("📥 reading members seed", zap.String("file", filePath))

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	var in File
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}

	depts := deptService.New(db)
	members := memberService.New(db, nil)
	res := &Result{}

	byName := map[string]uuid.UUID{}
	for _, d := range in.Departments {
		id, created, err := ensureDepartment(ctx, db, depts, d)
		if err != nil {
			return res, err
		}
		byName[strings.ToLower(d.Name)] = id
		if created {
			res.DepartmentsInserted++
		}
	}

	for _, s := range in.Members {
		if num := strings.TrimSpace(s.MemberNumber); num != "" {
			var n int64
			if err := db.WithContext(ctx).Model(&memberModel.MemberModel{}).
				Where("member_number = ?", num).Count(&n).Error; err != nil {
				return res, err
			}
			if n > 0 {
				res.MembersSkipped++
				continue
			}
		}

		m, err := s.ToModel()
		if err != nil {
			return res, fmt.Errorf("member %s %s: %w", s.FirstName, s.LastName, err)
		}
		if err := members.Create(ctx, m); err != nil {
			return res, fmt.Errorf("member %s %s: %w", s.FirstName, s.LastName, err)
		}
		res.MembersInserted++

		for _, name := range s.Departments {
			id, ok := byName[strings.ToLower(name)]
			if !ok {
				return res, fmt.Errorf("member %s: unknown department %q", m.MemberNumber, name)
			}
			if _, err := depts.AddMember(ctx, id, m.MemberID, nil); err != nil {
				return res, err
			}
		}
	}
	logger.L.Info("✅ members seeded",
		zap.Int("departments", res.DepartmentsInserted),
		zap.Int("members", res.MembersInserted),
		zap.Int("skipped", res.MembersSkipped))
	return res, nil
}

func ensureDepartment(ctx context.Context, db *gorm.DB, svc *deptService.Service, d DepartmentSeed) (uuid.UUID, bool, error) {
	var existing deptModel.DepartmentModel
	err := db.WithContext(ctx).Where("LOWER(department_name) = ?", strings.ToLower(d.Name)).First(&existing).Error
	if err == nil {
		return existing.DepartmentID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, err
	}
	m := &deptModel.DepartmentModel{
		DepartmentName:        d.Name,
		DepartmentDescription: d.Description,
		DepartmentIsActive:    true,
	}
	if err := svc.Create(ctx, m); err != nil {
		return uuid.Nil, false, fmt.Errorf("department %s: %w", d.Name, err)
	}
	return m.DepartmentID, true, nil
}
