package modrinth

import (
	"context"
	"fmt"

	"github.com/sharkusmanch/modrinth-updater/internal/domain"
)

// MockCatalog is an in-memory domain.Catalog for testing. The Func hooks take
// precedence over the canned data when set.
type MockCatalog struct {
	GetProjectFunc    func(ctx context.Context, idOrSlug string) (*domain.Project, error)
	SearchProjectFunc func(ctx context.Context, query string) (*domain.Project, error)
	ListVersionsFunc  func(ctx context.Context, projectID string) ([]domain.VersionRecord, error)
	GetVersionFunc    func(ctx context.Context, versionID string) (*domain.VersionRecord, error)
	DownloadFunc      func(ctx context.Context, file *domain.VersionFile) ([]byte, error)
	ValidateFunc      func(ctx context.Context) error

	// Projects are matched by id or slug.
	Projects []domain.Project
	// Search maps a query to its top hit.
	Search map[string]domain.Project
	// Versions maps a project id to its versions in catalog order.
	Versions map[string][]domain.VersionRecord
	// Files maps a download URL to its content.
	Files map[string][]byte

	// Recorded calls.
	ProjectLookups []string
	VersionLookups []string
	Downloads      []string
}

// GetProject returns the project whose id or slug matches.
func (m *MockCatalog) GetProject(ctx context.Context, idOrSlug string) (*domain.Project, error) {
	m.ProjectLookups = append(m.ProjectLookups, idOrSlug)
	if m.GetProjectFunc != nil {
		return m.GetProjectFunc(ctx, idOrSlug)
	}
	for i := range m.Projects {
		if m.Projects[i].ID == idOrSlug || m.Projects[i].Slug == idOrSlug {
			p := m.Projects[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", idOrSlug, domain.ErrProjectNotFound)
}

// SearchProject returns the canned search hit for query.
func (m *MockCatalog) SearchProject(ctx context.Context, query string) (*domain.Project, error) {
	if m.SearchProjectFunc != nil {
		return m.SearchProjectFunc(ctx, query)
	}
	if p, ok := m.Search[query]; ok {
		return &p, nil
	}
	return nil, fmt.Errorf("search %q: %w", query, domain.ErrProjectNotFound)
}

// ListVersions returns the canned versions for projectID.
func (m *MockCatalog) ListVersions(ctx context.Context, projectID string) ([]domain.VersionRecord, error) {
	m.VersionLookups = append(m.VersionLookups, projectID)
	if m.ListVersionsFunc != nil {
		return m.ListVersionsFunc(ctx, projectID)
	}
	return m.Versions[projectID], nil
}

// GetVersion returns the canned version with the given id from Versions.
func (m *MockCatalog) GetVersion(ctx context.Context, versionID string) (*domain.VersionRecord, error) {
	if m.GetVersionFunc != nil {
		return m.GetVersionFunc(ctx, versionID)
	}
	for _, versions := range m.Versions {
		for i := range versions {
			if versions[i].ID == versionID {
				v := versions[i]
				return &v, nil
			}
		}
	}
	return nil, fmt.Errorf("%s: %w", versionID, domain.ErrVersionNotFound)
}

// Download returns the canned content for the file URL.
func (m *MockCatalog) Download(ctx context.Context, file *domain.VersionFile) ([]byte, error) {
	m.Downloads = append(m.Downloads, file.URL)
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, file)
	}
	data, ok := m.Files[file.URL]
	if !ok {
		return nil, fmt.Errorf("no content for %s", file.URL)
	}
	return data, nil
}

// Validate calls the mock ValidateFunc.
func (m *MockCatalog) Validate(ctx context.Context) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx)
	}
	return nil
}

// Ensure MockCatalog implements domain.Catalog.
var _ domain.Catalog = (*MockCatalog)(nil)
