package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/bloomly/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
//
// With --status it lists migrations instead; with --rollback it reverts the latest one.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		r.logger.Info("initializing database", "path", r.config.Database.Path)
	}

	if cmd.Bool("rollback") {
		db, err := r.openRaw()
		if err != nil {
			return err
		}
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		return r.writePlain("✓ Rolled back the latest migration\n")
	}

	db, err := r.database()
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if !cmd.Bool("status") {
		r.logger.Info("setup complete", "database", r.config.Database.Path)
		return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
	}

	statuses, err := shared.MigrationStatuses(db)
	if err != nil {
		return err
	}
	r.writePlainHeader("Migrations")
	for _, s := range statuses {
		mark := " "
		if s.Applied {
			mark = "✓"
		}
		r.writePlain("[%s] %04d %s\n", mark, s.Version, s.Name)
	}
	return nil
}

// openRaw opens the configured database without applying pending migrations.
func (r *Runner) openRaw() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	r.db, r.ownsDB = db, true
	return db, nil
}

// SetupConfig writes the config template to the --config path. An existing file is left untouched.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}
	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set credentials.perenual.api_key and credentials.jamendo.client_id (or BLOOMLY_PERENUAL_KEY / BLOOMLY_JAMENDO_KEY)\n")
	r.writePlain("2. Set server.session_secret\n")
	r.writePlain("3. Run 'bloomly setup database'\n")
	return nil
}
