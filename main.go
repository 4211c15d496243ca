package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"go.uber.org/zap"

	"kanisa_backend/internals/configs"
	database "kanisa_backend/internals/databases"
	"kanisa_backend/internals/features/attendance/checkin/templates"
	qrScheduler "kanisa_backend/internals/features/attendance/scheduler"
	givingService "kanisa_backend/internals/features/finance/giving/service"
	authScheduler "kanisa_backend/internals/features/users/auth/scheduler"
	"kanisa_backend/internals/helpers/idgen"
	"kanisa_backend/internals/helpers/lock"
	"kanisa_backend/internals/helpers/logger"
	"kanisa_backend/internals/helpers/oss"
	middlewares "kanisa_backend/internals/middlewares"
	routes "kanisa_backend/internals/route"
)

func main() {
	cfg, err := configs.LoadEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.Init(cfg)
	defer logger.Sync()

	if err := idgen.Init(cfg.SnowflakeNode); err != nil {
		logger.L.Fatal("snowflake node", zap.Error(err))
	}

	// 🔌 DB connect + pool + warm-up
	db, err := database.Connect(cfg)
	if err != nil {
		logger.L.Fatal("database", zap.Error(err))
	}
	database.WarmUp(db)
	if cfg.IsDevelopment() {
		if err := database.AutoMigrate(db); err != nil {
			logger.L.Fatal("auto-migrate", zap.Error(err))
		}
	}

	// 🔒 migrator lock (Redis when configured)
	locker, closeLocker, err := lock.FromConfig(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
	if err != nil {
		logger.L.Warn("redis unavailable, using in-process lock", zap.Error(err))
	}
	defer closeLocker()

	deps := routes.Deps{DB: db, Config: cfg, Locker: locker}

	// 🖼 member photos (optional)
	if photos, err := oss.NewService(cfg, "members"); err == nil {
		deps.Photos = photos
	} else {
		logger.L.Warn("member photo upload disabled", zap.Error(err))
	}

	// ✅ MIDTRANS
	if cfg.MidtransServerKey != "" {
		deps.Gateway = givingService.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransUseProd)
	} else {
		logger.L.Warn("MIDTRANS_SERVER_KEY is not set, online giving is disabled")
	}

	// ⏱ schedulers after DB is ready
	blacklistCron, err := authScheduler.StartBlacklistCleanupScheduler(db, cfg.TokenBlacklistTTLDays)
	if err != nil {
		logger.L.Fatal("blacklist cleanup scheduler", zap.Error(err))
	}
	qrCron, err := qrScheduler.StartQRCloser(db, cfg.QRCloseCron)
	if err != nil {
		logger.L.Fatal("qr close scheduler", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		Views:                 templates.Engine(),
		BodyLimit:             8 * 1024 * 1024, // member photos
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app, cfg)

	// ✅ Routes
	routes.SetupRoutes(app, deps)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		logger.L.Info("✅ listening", zap.String("port", cfg.Port))
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			logger.L.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	<-blacklistCron.Stop().Done()
	<-qrCron.Stop().Done()
	database.Close(db)
}
