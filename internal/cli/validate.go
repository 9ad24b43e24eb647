package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sharkusmanch/modrinth-updater/internal/config"
	"github.com/sharkusmanch/modrinth-updater/internal/modfs"
	"github.com/sharkusmanch/modrinth-updater/internal/modrinth"
	"github.com/sharkusmanch/modrinth-updater/internal/notify"
)

var (
	writeExample bool
	forceExample bool
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and test connectivity",
		Long: `Validate the configuration file and test connectivity to external services.

This checks:
- Config file syntax
- Mods folder presence
- Override table file (if set)
- Modrinth API connectivity
- Apprise server connectivity (if enabled)

With --write-example an annotated config file is written first.`,
		RunE: runValidate,
	}

	cmd.Flags().BoolVar(&writeExample, "write-example", false, "write an example config file to the config path")
	cmd.Flags().BoolVar(&forceExample, "force", false, "overwrite an existing file with --write-example")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	configPath := cfgFile
	if configPath == "" {
		configPath, _ = config.DefaultConfigPath()
	}

	if writeExample {
		if err := writeExampleConfig(configPath); err != nil {
			return err
		}
		fmt.Printf("Wrote example config to %s\n\n", configPath)
	}

	fmt.Println("Configuration:")
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  ✗ Config file: %v\n", err)
		return err
	}
	fmt.Printf("  ✓ Config file syntax valid\n")

	fmt.Printf("  Config file: %s\n", configPath)
	fmt.Printf("  Mods folder: %s\n", cfg.ModsDir)
	fmt.Printf("  Target: %s %s\n", orUnset(cfg.Loader), orUnset(cfg.GameVersion))
	fmt.Printf("  Backup folder name: %s\n", cfg.BackupName)
	fmt.Printf("  Catalog: %s\n", cfg.APIURL)
	fmt.Printf("  Search fallback: %t\n", cfg.SearchFallback)
	if cfg.Apprise.Enabled {
		fmt.Printf("  Notifications: enabled\n")
		fmt.Printf("  Apprise URL: %s\n", cfg.Apprise.URL)
		fmt.Printf("  Notification level: %s\n", cfg.Apprise.Notify)
	} else {
		fmt.Printf("  Notifications: disabled\n")
	}
	fmt.Printf("  Diagnostics: %s\n", cfg.Diag.Path)
	fmt.Println()

	fmt.Println("Checks:")
	logger, _ := setupLogging(cfg)
	failed := false

	fs := afero.NewOsFs()
	if mods, err := modfs.Scan(fs, cfg.ModsDir); err != nil {
		fmt.Printf("  ✗ Mods folder: %v\n", err)
		failed = true
	} else {
		fmt.Printf("  ✓ Mods folder contains %d jar files\n", len(mods))
	}

	if overrides, err := loadOverrides(cfg); err != nil {
		fmt.Printf("  ✗ Overrides: %v\n", err)
		failed = true
	} else {
		fmt.Printf("  ✓ Overrides: %d entries\n", len(overrides))
	}

	// no retries for validation
	hc := newHTTPClient(cfg, config.RetryConfig{MaxAttempts: 1, InitialDelay: time.Second, MaxDelay: time.Second}, logger)

	catalog := modrinth.NewClient(cfg.APIURL, modrinth.WithHTTPClient(hc), modrinth.WithLogger(logger))
	if err := catalog.Validate(ctx); err != nil {
		fmt.Printf("  ✗ Modrinth API: %v\n", err)
		failed = true
	} else {
		fmt.Printf("  ✓ Modrinth API reachable\n")
	}

	if cfg.Apprise.Enabled {
		appriseClient := notify.NewAppriseClient(
			cfg.Apprise.URL,
			cfg.Apprise.Key,
			notify.WithHTTPClient(hc),
			notify.WithLogger(logger),
		)

		if err := appriseClient.Validate(ctx); err != nil {
			fmt.Printf("  ✗ Apprise server: %v\n", err)
			failed = true
		} else {
			fmt.Printf("  ✓ Apprise server reachable\n")
		}
	}

	fmt.Println()
	if failed {
		return errors.New("validation failed")
	}
	fmt.Println("Validation complete.")
	return nil
}

func writeExampleConfig(path string) error {
	if path == "" {
		return errors.New("cannot determine config path, pass --config")
	}
	if _, err := os.Stat(path); err == nil && !forceExample {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	return config.WriteExampleConfig(path)
}

func orUnset(s string) string {
	if s == "" {
		return "(ask)"
	}
	return s
}
