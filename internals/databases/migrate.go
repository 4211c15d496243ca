package database

import (
	"gorm.io/gorm"

	recordModel "kanisa_backend/internals/features/attendance/records/model"
	sessionModel "kanisa_backend/internals/features/attendance/sessions/model"
	eventModel "kanisa_backend/internals/features/events/events/model"
	financeModel "kanisa_backend/internals/features/finance/transactions/model"
	departmentModel "kanisa_backend/internals/features/members/departments/model"
	memberModel "kanisa_backend/internals/features/members/members/model"
	authModel "kanisa_backend/internals/features/users/auth/model"
)

// Models lists every table owned by the service, parents first.
func Models() []any {
	return []any{
		&authModel.UserModel{},
		&authModel.TokenBlacklistModel{},
		&memberModel.MemberModel{},
		&departmentModel.DepartmentModel{},
		&departmentModel.DepartmentMemberModel{},
		&eventModel.EventModel{},
		&recordModel.AttendanceModel{},
		&sessionModel.AttendanceSessionModel{},
		&financeModel.FinancialTransactionModel{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
