// Command migrate applies or reverts the profile store schema.
//
//	migrate            apply pending migrations
//	migrate -down 1    revert one migration
//	migrate -version   print the current schema version
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/accounthub/account-service/internal/config"
	"github.com/accounthub/account-service/internal/database"
	"github.com/accounthub/account-service/pkg/logger"
)

func main() {
	var down int
	var version bool
	flag.IntVar(&down, "down", 0, "number of migrations to revert")
	flag.BoolVar(&version, "version", false, "print the current schema version and exit")
	flag.Parse()

	cfg := config.Load()
	logger.InitDev(cfg.Log.Level, cfg.Log.Dev)
	defer logger.Sync()

	if err := run(cfg, down, version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, down int, version bool) error {
	switch cfg.Database.Driver {
	case config.DriverPostgres, config.DriverSQLite:
	case config.DriverMongo:
		return fmt.Errorf("the mongo store has no schema migrations; indexes are created at startup")
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	db, err := database.OpenSQL(context.Background(), cfg.Database.Driver, cfg.Database.URL, cfg.Database.Timeout, cfg.Database.Debug)
	if err != nil {
		return err
	}
	defer db.Close()

	switch {
	case version:
	case down > 0:
		if err := database.Rollback(db.DB, cfg.Database.Driver, down); err != nil {
			return err
		}
		logger.Infof("reverted %d migration(s)", down)
	default:
		if err := database.Migrate(db.DB, cfg.Database.Driver); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	v, dirty, err := database.Version(db.DB, cfg.Database.Driver)
	if err != nil {
		return err
	}
	fmt.Printf("schema version %d (dirty=%v)\n", v, dirty)
	return nil
}
