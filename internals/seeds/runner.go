package seeds

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"kanisa_backend/internals/helpers/logger"
	"kanisa_backend/internals/seeds/members"
	"kanisa_backend/internals/seeds/users"
)

const (
	UsersFile   = "users.json"
	MembersFile = "members.json"
)

// RunAllSeeds loads every seed file present in dir. Missing files are
// skipped; any other error stops the run.
func RunAllSeeds(ctx context.Context, db *gorm.DB, dir string) error {
	//* Staff accounts
	if path := filepath.Join(dir, UsersFile); exists(path) {
		if _, _, err := users.SeedUsersFromJSON(ctx, db, path); err != nil {
			return err
		}
	}

	//* Departments + members
	if path := filepath.Join(dir, MembersFile); exists(path) {
		if _, err := members.SeedMembersFromJSON(ctx, db, path); err != nil {
			return err
		}
	}

	logger.L.Info("🌱 seeding finished", zap.String("dir", dir))
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
