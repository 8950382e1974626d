package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/floodjoin/internal/shared"
	"github.com/desertthunder/floodjoin/internal/ui"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the embedded template when missing, then initializes the
// history database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err := shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
			} else {
				r.config = config
			}
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.openDB(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)

	if err := r.config.Validate(); err != nil {
		r.writePlain("%s %v\n", ui.Styles.Warn("!"), err)
		r.writePlainln("Next steps:")
		r.writePlain("1. Create an application at https://my.telegram.org and set telegram.api_id and telegram.api_hash in %s\n", configPath)
		r.writePlain("2. Point telegram.session_file at a logged-in gotd session, or set telegram.session to a Telethon string session\n")
		r.writePlain("3. Run 'floodjoin join @channel'\n")
		return nil
	}

	r.writePlain("%s Configuration and database ready\n", ui.Styles.OK("✓"))
	return nil
}
