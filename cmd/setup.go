package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotpin/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates config.toml from the template when absent, then initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("using existing config", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		// the template holds the defaults Before already resolved
		r.writePlain("✓ Created %s\n", configPath)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	db, err := r.database()
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}
	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)

	r.writePlainln("Next steps:")
	if !r.config.Spotify.HasCredentials() {
		r.writePlain("1. Set %s and %s in .env or %s\n", shared.EnvClientID, shared.EnvClientSecret, configPath)
		r.writePlain("2. Run 'spotpin login --save' to obtain a refresh token\n")
		r.writePlain("3. Run 'spotpin playlist-create' to register a playlist\n")
		return nil
	}
	return r.writePlain("Run 'spotpin playlist-create' to register a playlist\n")
}
