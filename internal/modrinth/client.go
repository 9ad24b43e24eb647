// Package modrinth implements domain.Catalog against the Modrinth v2 API.
package modrinth

import (
	"context"
	"crypto/sha1" // #nosec G505 -- catalog publishes sha1 digests for integrity, not security
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sharkusmanch/modrinth-updater/internal/domain"
	xhttp "github.com/sharkusmanch/modrinth-updater/internal/http"
)

// DefaultAPIURL is the public Modrinth API base URL.
const DefaultAPIURL = "https://api.modrinth.com/v2"

// apiProject is the subset of /project/{id} used here.
type apiProject struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// apiSearchResult is the /search response.
type apiSearchResult struct {
	Hits []struct {
		ProjectID string `json:"project_id"`
		Slug      string `json:"slug"`
		Title     string `json:"title"`
	} `json:"hits"`
}

// apiVersion is one entry of /project/{id}/version.
type apiVersion struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	Name          string    `json:"name"`
	VersionNumber string    `json:"version_number"`
	GameVersions  []string  `json:"game_versions"`
	Loaders       []string  `json:"loaders"`
	VersionType   string    `json:"version_type"`
	DatePublished time.Time `json:"date_published"`
	Files         []struct {
		URL      string            `json:"url"`
		Filename string            `json:"filename"`
		Primary  bool              `json:"primary"`
		Size     int64             `json:"size"`
		Hashes   map[string]string `json:"hashes"`
	} `json:"files"`
	Dependencies []struct {
		ProjectID      string `json:"project_id"`
		VersionID      string `json:"version_id"`
		DependencyType string `json:"dependency_type"`
	} `json:"dependencies"`
}

// Client queries the Modrinth API.
type Client struct {
	baseURL      string
	httpClient   *xhttp.Client
	verifyHashes bool
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *xhttp.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithHashVerification enables or disables checking downloads against
// published hashes.
func WithHashVerification(enabled bool) Option {
	return func(c *Client) {
		c.verifyHashes = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Client. An empty baseURL selects DefaultAPIURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   xhttp.NewClient(),
		verifyHashes: true,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetProject looks up a project by slug or id.
func (c *Client) GetProject(ctx context.Context, idOrSlug string) (*domain.Project, error) {
	if idOrSlug == "" {
		return nil, domain.ErrProjectNotFound
	}

	var p apiProject
	if err := c.getJSON(ctx, c.baseURL+"/project/"+url.PathEscape(idOrSlug), nil, &p); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", idOrSlug, domain.ErrProjectNotFound)
		}
		return nil, fmt.Errorf("failed to get project %s: %w", idOrSlug, err)
	}

	return &domain.Project{ID: p.ID, Slug: p.Slug, Title: p.Title}, nil
}

// SearchProject returns the top search hit for query.
func (c *Client) SearchProject(ctx context.Context, query string) (*domain.Project, error) {
	if query == "" {
		return nil, domain.ErrProjectNotFound
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", "1")

	var res apiSearchResult
	if err := c.getJSON(ctx, c.baseURL+"/search", params, &res); err != nil {
		return nil, fmt.Errorf("failed to search for %q: %w", query, err)
	}
	if len(res.Hits) == 0 {
		return nil, fmt.Errorf("search %q: %w", query, domain.ErrProjectNotFound)
	}

	hit := res.Hits[0]
	return &domain.Project{ID: hit.ProjectID, Slug: hit.Slug, Title: hit.Title}, nil
}

// ListVersions returns every published version of a project in API order.
func (c *Client) ListVersions(ctx context.Context, projectID string) ([]domain.VersionRecord, error) {
	var raw []apiVersion
	endpoint := c.baseURL + "/project/" + url.PathEscape(projectID) + "/version"
	if err := c.getJSON(ctx, endpoint, nil, &raw); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", projectID, domain.ErrProjectNotFound)
		}
		return nil, fmt.Errorf("failed to list versions of %s: %w", projectID, err)
	}

	versions := make([]domain.VersionRecord, 0, len(raw))
	for _, v := range raw {
		versions = append(versions, toVersionRecord(v))
	}

	c.logger.Debug("listed versions", "project", projectID, "count", len(versions))
	return versions, nil
}

// GetVersion looks up one version by id.
func (c *Client) GetVersion(ctx context.Context, versionID string) (*domain.VersionRecord, error) {
	if versionID == "" {
		return nil, domain.ErrVersionNotFound
	}

	var v apiVersion
	if err := c.getJSON(ctx, c.baseURL+"/version/"+url.PathEscape(versionID), nil, &v); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", versionID, domain.ErrVersionNotFound)
		}
		return nil, fmt.Errorf("failed to get version %s: %w", versionID, err)
	}

	rec := toVersionRecord(v)
	return &rec, nil
}

// Download fetches a version file and verifies its hash when one is published.
func (c *Client) Download(ctx context.Context, file *domain.VersionFile) ([]byte, error) {
	if file == nil || file.URL == "" {
		return nil, domain.ErrNoFile
	}

	c.logger.Debug("downloading file", "filename", file.Filename, "url", file.URL)

	resp, err := c.httpClient.GetOK(ctx, file.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", file.Filename, err)
	}

	if c.verifyHashes {
		if err := verify(file, resp.Body); err != nil {
			return nil, err
		}
	}

	return resp.Body, nil
}

// Validate checks that the API root answers.
func (c *Client) Validate(ctx context.Context) error {
	root := strings.TrimSuffix(c.baseURL, "/v2")
	if err := c.httpClient.CheckConnectivity(ctx, root); err != nil {
		return fmt.Errorf("catalog not reachable at %s: %w", root, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	resp, err := c.httpClient.GetOK(ctx, endpoint, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to parse JSON from %s: %w", endpoint, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var statusErr *xhttp.StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

func toVersionRecord(v apiVersion) domain.VersionRecord {
	rec := domain.VersionRecord{
		ID:            v.ID,
		ProjectID:     v.ProjectID,
		Name:          v.Name,
		VersionNumber: v.VersionNumber,
		GameVersions:  v.GameVersions,
		Loaders:       make([]string, 0, len(v.Loaders)),
		Channel:       domain.Channel(strings.ToLower(v.VersionType)),
		DatePublished: v.DatePublished,
	}
	for _, l := range v.Loaders {
		rec.Loaders = append(rec.Loaders, strings.ToLower(l))
	}
	for _, f := range v.Files {
		rec.Files = append(rec.Files, domain.VersionFile{
			URL:      f.URL,
			Filename: f.Filename,
			Primary:  f.Primary,
			Size:     f.Size,
			Hashes:   f.Hashes,
		})
	}
	for _, d := range v.Dependencies {
		rec.Dependencies = append(rec.Dependencies, domain.Dependency{
			ProjectID: d.ProjectID,
			VersionID: d.VersionID,
			Type:      domain.DependencyType(d.DependencyType),
		})
	}
	return rec
}

// verify checks data against the strongest published hash.
func verify(file *domain.VersionFile, data []byte) error {
	var h hash.Hash
	var want string
	switch {
	case file.Hashes["sha512"] != "":
		h, want = sha512.New(), file.Hashes["sha512"]
	case file.Hashes["sha1"] != "":
		h, want = sha1.New(), file.Hashes["sha1"] // #nosec G401
	default:
		return nil
	}

	h.Write(data)
	if got := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(got, want) {
		return fmt.Errorf("%s: %w", file.Filename, domain.ErrChecksumMismatch)
	}
	return nil
}

// Ensure Client implements domain.Catalog.
var _ domain.Catalog = (*Client)(nil)
