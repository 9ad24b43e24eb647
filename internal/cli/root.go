// Package cli provides the command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sharkusmanch/modrinth-updater/internal/app"
	"github.com/sharkusmanch/modrinth-updater/internal/config"
	"github.com/sharkusmanch/modrinth-updater/internal/console"
	"github.com/sharkusmanch/modrinth-updater/internal/diag"
	"github.com/sharkusmanch/modrinth-updater/internal/domain"
	"github.com/sharkusmanch/modrinth-updater/internal/modfs"
	"github.com/sharkusmanch/modrinth-updater/internal/prompt"
	"github.com/sharkusmanch/modrinth-updater/pkg/version"
)

// ErrRunFailures is returned when the run completed but some mods failed.
var ErrRunFailures = errors.New("some mods could not be updated")

var (
	cfgFile     string
	dryRun      bool
	logLevel    string
	gameVersion string
	loaderName  string
	modsDir     string

	// diagPath is the diagnostic file of the loaded config, if any.
	diagPath string
)

// NewRootCmd creates the root command. Running it without a subcommand
// performs an update.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modrinth-updater",
		Short: "Update Minecraft mods from Modrinth",
		Long: `modrinth-updater matches the jar files in your mods folder against the
Modrinth catalog, picks the newest compatible version for a game version and
loader, pulls in required dependencies and replaces the old files. Replaced
files are moved to a backup folder next to the mods folder.

Use --dry-run to see what would change without touching any file.`,
		Version: version.Get().String(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE:          runUpdate,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file path")
	pf.BoolVar(&dryRun, "dry-run", false, "report what would change without downloading or moving files")
	pf.BoolVar(&dryRun, "test", false, "alias for --dry-run")
	_ = pf.MarkHidden("test")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVarP(&gameVersion, "game-version", "v", "", "target Minecraft version, e.g. 1.21.1")
	pf.StringVarP(&loaderName, "loader", "p", "", "target loader ("+strings.Join(config.Loaders, ", ")+")")
	pf.StringVar(&modsDir, "mods-dir", "", "mods folder (defaults to <minecraft dir>/mods)")

	rootCmd.AddCommand(NewResolveCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// DiagPath returns the diagnostic file path of the loaded config, falling
// back to the default location.
func DiagPath() string {
	if diagPath != "" {
		return diagPath
	}
	p, _ := config.DefaultDiagPath()
	return p
}

// initConfig sets up basic logging to stderr until the config is loaded.
func initConfig() error {
	level := parseLevel(logLevel, slog.LevelWarn)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	return nil
}

func parseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

// setupLogging configures logging based on the loaded config.
func setupLogging(cfg *config.Config) (*slog.Logger, error) {
	level := parseLevel(cfg.Log.Level, slog.LevelInfo)

	var output io.Writer = os.Stderr
	if cfg.Log.Output != "" {
		dir := filepath.Dir(cfg.Log.Output)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		output = &lumberjack.Logger{
			Filename:   cfg.Log.Output,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
	}

	handler := slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, nil
}

// loadConfig loads the application configuration with flag overrides.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()

	if cfgFile != "" {
		loader = loader.WithConfigPath(cfgFile)
	}

	if dryRun {
		loader.Set("dry_run", true)
	}
	if logLevel != "" {
		loader.Set("log.level", logLevel)
	}
	if gameVersion != "" {
		loader.Set("game_version", gameVersion)
	}
	if loaderName != "" {
		loader.Set("loader", loaderName)
	}
	if modsDir != "" {
		loader.Set("mods_dir", modsDir)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	diagPath = cfg.Diag.Path

	return cfg, nil
}

// resolveTarget prompts for a missing game version or loader.
func resolveTarget(cfg *config.Config) error {
	err := cfg.ValidateTarget()
	if !errors.Is(err, config.ErrTargetMissing) {
		return err
	}

	if err := prompt.New(config.Loaders).Target(&cfg.GameVersion, &cfg.Loader); err != nil {
		if errors.Is(err, prompt.ErrNotInteractive) {
			return fmt.Errorf("%w: pass --game-version and --loader", config.ErrTargetMissing)
		}
		return err
	}
	cfg.Loader = strings.ToLower(cfg.Loader)

	return cfg.ValidateTarget()
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	if err := resolveTarget(cfg); err != nil {
		return err
	}

	fs := afero.NewOsFs()
	mods, err := modfs.Scan(fs, cfg.ModsDir)
	if err != nil {
		return err
	}

	svc, err := newServices(cfg, fs, logger)
	if err != nil {
		return err
	}

	stager := modfs.NewStager(cfg.ModsDir,
		modfs.WithFs(fs),
		modfs.WithBackupName(cfg.BackupName),
		modfs.WithDryRun(cfg.DryRun),
		modfs.WithLogger(logger),
	)

	printer := console.NewPrinter(cmd.OutOrStdout(), cfg.DryRun)
	printer.Header(cfg.ModsDir, cfg.GameVersion, cfg.Loader)

	updater := app.NewUpdater(cfg, svc.catalog, stager,
		app.WithResolver(svc.resolver),
		app.WithNotifier(svc.notifier),
		app.WithObserver(printer),
		app.WithRecorder(diag.New(cfg.Diag.Path)),
		app.WithLogger(logger),
	)

	report, err := updater.Run(cmd.Context(), mods)
	if report != nil {
		printer.Summary(report)
	}
	if err != nil {
		return fmt.Errorf("update interrupted: %w", err)
	}

	if report.HasFailures() {
		return fmt.Errorf("%w (%d failed)", ErrRunFailures, report.Count(domain.ActionFailed))
	}
	return nil
}
