package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kanisa_backend/internals/features/attendance/sessions/model"
	"kanisa_backend/internals/helpers/logger"
)

// CloseExpiredQR deactivates QR codes whose expiry has passed. Check-in
// already rejects them; this keeps qr_is_active honest for listings.
func CloseExpiredQR(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&model.AttendanceSessionModel{}).
		Where("attendance_session_qr_is_active = ? AND attendance_session_qr_expires_at < ?", true, now.UTC()).
		Updates(map[string]any{"attendance_session_qr_is_active": false})
	return res.RowsAffected, res.Error
}

// StartQRCloser runs CloseExpiredQR on schedule (standard 5-field cron). The
// caller stops the returned cron on shutdown.
func StartQRCloser(db *gorm.DB, schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := CloseExpiredQR(ctx, db, time.Now())
		if err != nil {
			logger.L.Error("[QR-CLOSE] failed", zap.Error(err))
			return
		}
		if n > 0 {
			logger.L.Info("[QR-CLOSE] expired QR sessions closed", zap.Int64("count", n))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.L.Info("[QR-CLOSE] scheduler started", zap.String("schedule", schedule))
	return c, nil
}
