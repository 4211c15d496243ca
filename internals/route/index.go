// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanisa_backend/internals/configs"
	"kanisa_backend/internals/constants"
	checkinRoute "kanisa_backend/internals/features/attendance/checkin/route"
	recordRoute "kanisa_backend/internals/features/attendance/records/route"
	sessionRoute "kanisa_backend/internals/features/attendance/sessions/route"
	sessionService "kanisa_backend/internals/features/attendance/sessions/service"
	eventRoute "kanisa_backend/internals/features/events/events/route"
	givingRoute "kanisa_backend/internals/features/finance/giving/route"
	givingService "kanisa_backend/internals/features/finance/giving/service"
	txRoute "kanisa_backend/internals/features/finance/transactions/route"
	txService "kanisa_backend/internals/features/finance/transactions/service"
	departmentRoute "kanisa_backend/internals/features/members/departments/route"
	memberRoute "kanisa_backend/internals/features/members/members/route"
	memberService "kanisa_backend/internals/features/members/members/service"
	reportRoute "kanisa_backend/internals/features/reports/insights/route"
	authRoute "kanisa_backend/internals/features/users/auth/route"
	"kanisa_backend/internals/helpers/lock"
	middlewares "kanisa_backend/internals/middlewares"
	authMw "kanisa_backend/internals/middlewares/auth"
)

var startTime time.Time

// Deps is everything the route tree needs from main.
type Deps struct {
	DB     *gorm.DB
	Config *configs.Config
	Locker lock.Locker
	// Photos is nil when object storage is not configured.
	Photos memberService.PhotoUploader
	// Gateway is nil when MIDTRANS_SERVER_KEY is empty.
	Gateway givingService.Gateway
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()
	cfg := d.Config

	BaseRoutes(app, d.DB)

	// ===================== SHARED SERVICES =====================
	sessions := sessionService.New(d.DB, sessionService.OptionsFrom(cfg), d.Locker)
	transactions := txService.New(d.DB, cfg.DefaultCurrency)
	giving := givingService.New(transactions, d.Gateway, cfg.MidtransServerKey)

	// ===================== AUTH =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	api := app.Group("/api")
	authRoute.AuthRoutes(api, d.DB, cfg)

	// ===================== GROUPS =====================
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")

	log.Println("[INFO] Setting up ADMIN group (Auth + RateLimit)...")
	admin := app.Group("/api/a",
		authMw.AuthMiddleware(d.DB, cfg.JWTSecret),
		middlewares.GlobalRateLimiter(),
	)

	finance := admin.Group("/finance",
		authMw.OnlyRoles(constants.RoleErrorFinance("finance"), constants.FinanceRoles...),
	)

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting Attendance routes...")
	sessionRoute.SessionAdminRoutes(admin, sessions)
	sessionRoute.SessionPublicRoutes(public, sessions)
	recordRoute.AttendanceAdminRoutes(admin, d.DB, sessions)
	checkinRoute.CheckinRoutes(app, public, d.DB, sessions, cfg.ChurchName)

	log.Println("[INFO] Mounting Member routes...")
	memberRoute.MemberAdminRoutes(admin, d.DB, d.Photos)
	departmentRoute.DepartmentAdminRoutes(admin, d.DB)

	log.Println("[INFO] Mounting Event routes...")
	eventRoute.EventAdminRoutes(admin, d.DB)

	log.Println("[INFO] Mounting Finance routes...")
	txRoute.TransactionAdminRoutes(finance, transactions)
	givingRoute.GivingAdminRoutes(finance, giving)
	givingRoute.GivingPublicRoutes(public, giving)

	log.Println("[INFO] Mounting Report routes...")
	reportRoute.ReportAdminRoutes(admin, d.DB, cfg)
}
