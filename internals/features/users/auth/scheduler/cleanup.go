package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authRepo "kanisa_backend/internals/features/users/auth/repository"
	"kanisa_backend/internals/helpers/logger"
)

// CleanupBlacklist drops revoked tokens that expired more than ttlDays ago.
func CleanupBlacklist(ctx context.Context, db *gorm.DB, ttlDays int, now time.Time) (int64, error) {
	if ttlDays < 0 {
		ttlDays = 0
	}
	cutoff := now.Add(-time.Duration(ttlDays) * 24 * time.Hour)
	return authRepo.DeleteExpiredBlacklist(db.WithContext(ctx), cutoff)
}

// StartBlacklistCleanupScheduler runs daily at 03:00.
func StartBlacklistCleanupScheduler(db *gorm.DB, ttlDays int) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	_, err := c.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		logger.L.Info("[CLEANUP] running token_blacklist cleanup")
		n, err := CleanupBlacklist(ctx, db, ttlDays, time.Now())
		if err != nil {
			logger.L.Error("[CLEANUP] failed to delete expired tokens", zap.Error(err))
			return
		}
		logger.L.Info("[CLEANUP] expired tokens deleted", zap.Int64("count", n))
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
