package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kanisa_backend/internals/configs"
	database "kanisa_backend/internals/databases"
	qrScheduler "kanisa_backend/internals/features/attendance/scheduler"
	sessionService "kanisa_backend/internals/features/attendance/sessions/service"
	authScheduler "kanisa_backend/internals/features/users/auth/scheduler"
	authService "kanisa_backend/internals/features/users/auth/service"
	"kanisa_backend/internals/helpers/idgen"
	"kanisa_backend/internals/helpers/lock"
	"kanisa_backend/internals/helpers/logger"
	"kanisa_backend/internals/seeds"
)

type env struct {
	cfg *configs.Config
	db  *gorm.DB
}

// open loads config and connects; the caller closes the db.
func open() (*env, error) {
	cfg, err := configs.LoadEnv()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg)
	if err := idgen.Init(cfg.SnowflakeNode); err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "churchctl",
		Short:         "Maintenance commands for the church admin backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newMigrateLegacyCmd(),
		newCreateAdminCmd(),
		newCloseExpiredQRCmd(),
		newCleanupTokensCmd(),
		newSeedCmd(),
	)
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer database.Close(e.db)

			if err := database.AutoMigrate(e.db.WithContext(cmd.Context())); err != nil {
				return err
			}
			logger.L.Info("✅ schema migrated")
			return nil
		},
	}
}

func newMigrateLegacyCmd() *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "migrate-legacy",
		Short: "Backfill attendance sessions from flat attendance rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer database.Close(e.db)

			locker, closeLocker, err := lock.FromConfig(cmd.Context(), e.cfg.RedisAddr, e.cfg.RedisPassword, e.cfg.RedisDB, e.cfg.RedisPrefix)
			if err != nil {
				logger.L.Warn("redis unavailable, using in-process lock", zap.Error(err))
			}
			defer closeLocker()

			svc := sessionService.New(e.db, sessionService.OptionsFrom(e.cfg), locker)
			opt := sessionService.MigrateOptions{}
			if cmd.Flags().Changed("delay") {
				opt.Delay = &delay
			}
			res, err := svc.MigrateLegacy(cmd.Context(), opt)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 200*time.Millisecond, "pause between groups")
	return cmd
}

func newCreateAdminCmd() *cobra.Command {
	var in authService.CreateUserInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a staff account (admin by default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				in.Password = os.Getenv("ADMIN_PASSWORD")
			}
			e, err := open()
			if err != nil {
				return err
			}
			defer database.Close(e.db)

			u, err := authService.New(e.db, e.cfg.JWTSecret, e.cfg.JWTTTL).CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", u.Email, u.Role, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (or ADMIN_PASSWORD)")
	cmd.Flags().StringVar(&in.Role, "role", "admin", "admin, pastor, secretary or treasurer")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCloseExpiredQRCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close-expired-qr",
		Short: "Deactivate QR codes past their expiry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer database.Close(e.db)

			n, err := qrScheduler.CloseExpiredQR(cmd.Context(), e.db, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "closed %d session(s)\n", n)
			return nil
		},
	}
}

func newCleanupTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-tokens",
		Short: "Delete expired entries from the token blacklist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer database.Close(e.db)

			n, err := authScheduler.CleanupBlacklist(cmd.Context(), e.db, e.cfg.TokenBlacklistTTLDays, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d token(s)\n", n)
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load staff, departments and members from JSON files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer database.Close(e.db)
			return seeds.RunAllSeeds(cmd.Context(), e.db, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "internals/seeds/data", "directory holding users.json and members.json")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
