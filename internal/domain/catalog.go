package domain

import "context"

// Catalog is the read-only view of the mod-hosting service.
type Catalog interface {
	// GetProject looks up a project by slug or id. Returns ErrProjectNotFound
	// when the catalog has no such project.
	GetProject(ctx context.Context, idOrSlug string) (*Project, error)

	// SearchProject returns the best search hit for a query, or
	// ErrProjectNotFound when there are no hits.
	SearchProject(ctx context.Context, query string) (*Project, error)

	// ListVersions returns all published versions of a project in catalog order.
	ListVersions(ctx context.Context, projectID string) ([]VersionRecord, error)

	// GetVersion looks up a single version by id. Returns ErrVersionNotFound
	// when the catalog has no such version.
	GetVersion(ctx context.Context, versionID string) (*VersionRecord, error)

	// Download fetches the content of a version file.
	Download(ctx context.Context, file *VersionFile) ([]byte, error)

	// Validate checks that the catalog is reachable.
	Validate(ctx context.Context) error
}

// StageAction describes what the stager did, or would do in a dry run.
type StageAction struct {
	// BackupPath is where the original file was moved, empty if there was none.
	BackupPath string
	// TargetPath is where the new file was written.
	TargetPath string
	// DryRun is true when no filesystem change was made.
	DryRun bool
}

// Stager places new mod files, backing up the originals first.
type Stager interface {
	// Stage backs up original (may be nil for a new file) and writes data under
	// filename in the mods folder.
	Stage(original *LocalMod, filename string, data []byte) (*StageAction, error)

	// BackupDir returns the backup folder created in this run, or "".
	BackupDir() string

	// DryRun reports whether the stager performs no writes.
	DryRun() bool
}
