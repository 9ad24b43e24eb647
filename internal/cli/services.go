package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/sharkusmanch/modrinth-updater/internal/config"
	"github.com/sharkusmanch/modrinth-updater/internal/domain"
	"github.com/sharkusmanch/modrinth-updater/internal/http"
	"github.com/sharkusmanch/modrinth-updater/internal/modrinth"
	"github.com/sharkusmanch/modrinth-updater/internal/notify"
	"github.com/sharkusmanch/modrinth-updater/internal/resolve"
	"github.com/sharkusmanch/modrinth-updater/pkg/version"
)

// services are the collaborators shared by the commands.
type services struct {
	catalog  *modrinth.Client
	resolver *resolve.Resolver
	notifier domain.Notifier
}

func newServices(cfg *config.Config, fs afero.Fs, logger *slog.Logger) (*services, error) {
	hc := newHTTPClient(cfg, cfg.Retry, logger)

	catalog := modrinth.NewClient(cfg.APIURL,
		modrinth.WithHTTPClient(hc),
		modrinth.WithHashVerification(cfg.VerifyHashes),
		modrinth.WithLogger(logger),
	)

	overrides, err := loadOverrides(cfg)
	if err != nil {
		return nil, err
	}

	resolver := resolve.NewResolver(catalog,
		resolve.WithOverrides(overrides),
		resolve.WithMetadata(fs),
		resolve.WithSearchFallback(cfg.SearchFallback),
		resolve.WithLogger(logger),
	)

	var notifier domain.Notifier = &domain.NopNotifier{}
	if cfg.Apprise.Enabled {
		notifier = notify.NewAppriseClient(
			cfg.Apprise.URL,
			cfg.Apprise.Key,
			notify.WithTag(cfg.Apprise.Tag),
			notify.WithHTTPClient(hc),
			notify.WithLogger(logger),
		)
	}

	return &services{
		catalog:  catalog,
		resolver: resolver,
		notifier: notifier,
	}, nil
}

func newHTTPClient(cfg *config.Config, retry config.RetryConfig, logger *slog.Logger) *http.Client {
	ua := cfg.UserAgent
	if ua == config.DefaultUserAgent {
		ua = version.UserAgent(ua)
	}

	return http.NewClient(
		http.WithRetryConfig(http.RetryConfig{
			MaxAttempts:  retry.MaxAttempts,
			InitialDelay: retry.InitialDelay,
			MaxDelay:     retry.MaxDelay,
		}),
		http.WithUserAgent(ua),
		http.WithLogger(logger),
	)
}

// loadOverrides layers the config table and the overrides file over the
// built-in table.
func loadOverrides(cfg *config.Config) (resolve.Overrides, error) {
	overrides := resolve.DefaultOverrides().Merge(resolve.Overrides(cfg.Overrides))

	if cfg.OverridesFile != "" {
		fromFile, err := resolve.LoadOverrides(cfg.OverridesFile)
		if err != nil {
			return nil, fmt.Errorf("overrides_file: %w", err)
		}
		overrides = overrides.Merge(fromFile)
	}

	return overrides, nil
}
