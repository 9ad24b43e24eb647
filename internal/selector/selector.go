// Package selector picks the best version of a project for a game version and
// loader.
package selector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sharkusmanch/modrinth-updater/internal/domain"
)

// Best returns the preferred version among versions that support both
// gameVersion and loader, or nil when none does.
//
// Preference is strict by channel (release, then beta, then alpha), then by
// publish date, newest first. Versions with equal channel and date keep the
// order in which the catalog returned them.
func Best(versions []domain.VersionRecord, gameVersion, loader string) *domain.VersionRecord {
	loader = strings.ToLower(loader)

	candidates := make([]domain.VersionRecord, 0, len(versions))
	for _, v := range versions {
		if v.Supports(gameVersion, loader) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := candidates[i].Channel.Rank(), candidates[j].Channel.Rank()
		if ri != rj {
			return ri < rj
		}
		return candidates[i].DatePublished.After(candidates[j].DatePublished)
	})

	best := candidates[0]
	return &best
}

// Selector fetches versions from a catalog and applies Best.
type Selector struct {
	catalog domain.Catalog
	logger  *slog.Logger
}

// NewSelector creates a Selector.
func NewSelector(catalog domain.Catalog, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{catalog: catalog, logger: logger}
}

// Select returns the selection for project. A project without a compatible
// version yields a result whose Found is false, not an error.
func (s *Selector) Select(ctx context.Context, project *domain.Project, gameVersion, loader string) (domain.SelectionResult, error) {
	result := domain.SelectionResult{Project: project}

	versions, err := s.catalog.ListVersions(ctx, project.ID)
	if err != nil {
		return result, fmt.Errorf("failed to list versions: %w", err)
	}

	result.Version = Best(versions, gameVersion, loader)

	if result.Found() {
		s.logger.Debug("selected version",
			"project", project.Slug,
			"version", result.Version.VersionNumber,
			"channel", result.Version.Channel,
			"published", result.Version.DatePublished,
		)
	} else {
		s.logger.Debug("no compatible version",
			"project", project.Slug,
			"versions", len(versions),
			"game_version", gameVersion,
			"loader", loader,
		)
	}

	return result, nil
}
