package constants

import (
	"fmt"

	authModel "kanisa_backend/internals/features/users/auth/model"
)

// Role error templates
const (
	ErrOnlyAdminsCanAccess  = "Only admins can access %s"
	ErrOnlyFinanceCanAccess = "Only admins and treasurers can access %s"
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorFinance(feature string) string {
	return fmt.Sprintf(ErrOnlyFinanceCanAccess, feature)
}

// ==========================
// Grouped role slices
// ==========================
var (
	AdminOnly = []string{
		authModel.RoleAdmin,
	}

	FinanceRoles = []string{
		authModel.RoleAdmin,
		authModel.RoleTreasurer,
	}
)
