// The migrate command applies the goose SQL migrations. It shares the API
// server's config, so the same FARMFRESH_DB_* variables point it at the
// right database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/config"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/db"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	if err := run(*cmd, *dir, *version); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd, dir, version string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": cmd,
		"dir": dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	switch cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, dir, cmd); err != nil {
			return err
		}
	case "version":
		if version == "" {
			return fmt.Errorf("missing -version for version command")
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, dir, version); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown -cmd value %q", cmd)
	}

	logg.Info(ctx, "migrate complete")
	return nil
}
