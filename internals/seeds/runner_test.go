package seeds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deptModel "kanisa_backend/internals/features/members/departments/model"
	memberModel "kanisa_backend/internals/features/members/members/model"
	authModel "kanisa_backend/internals/features/users/auth/model"
	authService "kanisa_backend/internals/features/users/auth/service"
	"kanisa_backend/internals/testutil"
)

func TestRunAllSeedsIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	require.NoError(t, RunAllSeeds(ctx, db, "data"))
	require.NoError(t, RunAllSeeds(ctx, db, "data"))

	var users, members, depts, links int64
	require.NoError(t, db.Model(&authModel.UserModel{}).Count(&users).Error)
	require.NoError(t, db.Model(&memberModel.MemberModel{}).Count(&members).Error)
	require.NoError(t, db.Model(&deptModel.DepartmentModel{}).Count(&depts).Error)
	require.NoError(t, db.Model(&deptModel.DepartmentMemberModel{}).Count(&links).Error)
	assert.EqualValues(t, 2, users)
	assert.EqualValues(t, 3, members)
	assert.EqualValues(t, 3, depts)
	assert.EqualValues(t, 3, links)

	var admin authModel.UserModel
	require.NoError(t, db.Where("email = ?", "admin@church.local").First(&admin).Error)
	assert.True(t, admin.IsActive)
	assert.NoError(t, authService.CheckPasswordHash(admin.Password, "ChangeMe123"))
}

func TestRunAllSeedsSkipsMissingFiles(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, RunAllSeeds(context.Background(), db, t.TempDir()))
}
