package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/vidhub/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the embedded example config to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", r.configPath)
	return r.writePlain("✓ Config written to %s\nSet youtube.api_key (or %s) before adding playlists.\n", r.configPath, shared.EnvYouTubeAPIKey)
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "driver", r.config.Database.Driver, "path", r.config.Database.Path)

	db, err := r.openDB(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	m, err := shared.NewMigrator(db)
	if err != nil {
		return err
	}

	r.logger.Info("running database migrations")
	if err := m.Up(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return r.writePlain("✓ Database ready (%s)\n", db.Driver)
}

// SetupRollback rolls back the latest applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	m, err := shared.NewMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Down(ctx); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return r.writePlain("✓ Rolled back latest migration\n")
}

// SetupStatus lists the embedded migrations and when they were applied.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	m, err := shared.NewMigrator(db)
	if err != nil {
		return err
	}
	statuses, err := m.Status(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(statuses, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Migrations")
	for _, s := range statuses {
		applied := "pending"
		if s.Applied {
			applied = "applied " + s.AppliedAt.Format("2006-01-02 15:04")
		}
		r.writePlain("%04d  %-24s %s\n", s.Version, s.Name, applied)
	}
	return nil
}
