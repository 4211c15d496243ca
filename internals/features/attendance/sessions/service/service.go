package service

import (
	"time"

	"gorm.io/gorm"

	"kanisa_backend/internals/configs"
	"kanisa_backend/internals/helpers/lock"
)

/* =========================================================
   Service wiring
========================================================= */

type Options struct {
	SiteURL          string
	QRValidity       time.Duration
	QRExtend         time.Duration
	MigrationDelay   time.Duration
	MigrationLockTTL time.Duration
}

func OptionsFrom(cfg *configs.Config) Options {
	return Options{
		SiteURL:          cfg.SiteURL,
		QRValidity:       cfg.QRDefaultValidity,
		QRExtend:         cfg.QRExtendDefault,
		MigrationDelay:   cfg.MigrationGroupDelay,
		MigrationLockTTL: 15 * time.Minute,
	}
}

// Service owns attendance sessions: the registry, the aggregator and the
// legacy migrator share it.
type Service struct {
	db     *gorm.DB
	opt    Options
	locker lock.Locker
	now    func() time.Time
}

func New(db *gorm.DB, opt Options, locker lock.Locker) *Service {
	if opt.QRValidity <= 0 {
		opt.QRValidity = 4 * time.Hour
	}
	if opt.QRExtend <= 0 {
		opt.QRExtend = 2 * time.Hour
	}
	if opt.MigrationLockTTL <= 0 {
		opt.MigrationLockTTL = 15 * time.Minute
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &Service{
		db:     db,
		opt:    opt,
		locker: locker,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Tests only.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) DB() *gorm.DB { return s.db }
