package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sharkusmanch/modrinth-updater/internal/modfs"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show which Modrinth project each mod file maps to",
		Long: `Resolve every jar in the mods folder to a Modrinth project and print the
result. Nothing is selected, downloaded or moved.

Use this to find files that need an entry in the override table.`,
		RunE: runResolve,
	}

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := setupLogging(cfg)
	if err != nil {
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

	out := cmd.OutOrStdout()
	unresolved := 0
	for _, mod := range mods {
		res, err := svc.resolver.Resolve(cmd.Context(), mod)
		switch {
		case err != nil:
			_, _ = fmt.Fprintf(out, "%s %s: %v\n", color.RedString("✗"), mod.Filename, err)
			unresolved++
		case !res.Resolved():
			_, _ = fmt.Fprintf(out, "%s %s: tried %s\n", color.YellowString("?"), mod.Filename, strings.Join(res.Tried, ", "))
			unresolved++
		default:
			_, _ = fmt.Fprintf(out, "%s %s -> %s (%s, via %s)\n",
				color.GreenString("✓"), mod.Filename, res.Project.Slug, res.Project.Name(), res.Method)
		}
	}

	_, _ = fmt.Fprintf(out, "\n%d of %d files resolved\n", len(mods)-unresolved, len(mods))
	return nil
}
