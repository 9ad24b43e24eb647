// Package domain defines core business types and interfaces.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrProjectNotFound is returned by a Catalog when a project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrVersionNotFound is returned by a Catalog when a version id does not exist.
	ErrVersionNotFound = errors.New("version not found")
	// ErrNoCompatibleVersion means no version matched the target game version and loader.
	ErrNoCompatibleVersion = errors.New("no compatible version found")
	// ErrNoFile means a version has no downloadable file.
	ErrNoFile = errors.New("version has no downloadable file")
	// ErrChecksumMismatch means downloaded bytes do not match the catalog hash.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// LocalMod is a mod file found in the mods folder.
type LocalMod struct {
	// Filename is the base name of the file, e.g. "sodium-fabric-0.5.jar".
	Filename string `json:"filename"`
	// Path is the full path to the file.
	Path string `json:"path"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
	// Loader is the loader tag inferred from the filename, if any.
	Loader string `json:"loader,omitempty"`
}

// Project is a catalog project. ID is the canonical identity used for
// deduplication; Slug is the human-readable identifier.
type Project struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Name returns the best display name for the project.
func (p *Project) Name() string {
	switch {
	case p == nil:
		return ""
	case p.Title != "":
		return p.Title
	case p.Slug != "":
		return p.Slug
	default:
		return p.ID
	}
}

// Channel is a release channel.
type Channel string

const (
	ChannelRelease Channel = "release"
	ChannelBeta    Channel = "beta"
	ChannelAlpha   Channel = "alpha"
)

// Rank orders channels by preference; lower is preferred. Unknown channels
// rank after alpha.
func (c Channel) Rank() int {
	switch c {
	case ChannelRelease:
		return 0
	case ChannelBeta:
		return 1
	case ChannelAlpha:
		return 2
	default:
		return 3
	}
}

// String returns the string representation of the channel.
func (c Channel) String() string {
	return string(c)
}

// VersionFile is a downloadable file attached to a version.
type VersionFile struct {
	URL      string            `json:"url"`
	Filename string            `json:"filename"`
	Primary  bool              `json:"primary"`
	Size     int64             `json:"size"`
	Hashes   map[string]string `json:"hashes,omitempty"`
}

// DependencyType is how a version depends on another project.
type DependencyType string

const (
	DependencyRequired     DependencyType = "required"
	DependencyOptional     DependencyType = "optional"
	DependencyIncompatible DependencyType = "incompatible"
	DependencyEmbedded     DependencyType = "embedded"
)

// Dependency is a dependency declared by a version.
type Dependency struct {
	ProjectID string         `json:"project_id"`
	VersionID string         `json:"version_id,omitempty"`
	Type      DependencyType `json:"dependency_type"`
}

// VersionRecord is an immutable snapshot of a published version.
type VersionRecord struct {
	ID            string        `json:"id"`
	ProjectID     string        `json:"project_id"`
	Name          string        `json:"name"`
	VersionNumber string        `json:"version_number"`
	GameVersions  []string      `json:"game_versions"`
	Loaders       []string      `json:"loaders"`
	Channel       Channel       `json:"version_type"`
	DatePublished time.Time     `json:"date_published"`
	Files         []VersionFile `json:"files"`
	Dependencies  []Dependency  `json:"dependencies"`
}

// Supports reports whether the version lists both the game version and the loader.
func (v *VersionRecord) Supports(gameVersion, loader string) bool {
	return contains(v.GameVersions, gameVersion) && contains(v.Loaders, loader)
}

// PrimaryFile returns the file flagged primary, or the first file when none
// is flagged.
func (v *VersionRecord) PrimaryFile() (*VersionFile, error) {
	if len(v.Files) == 0 {
		return nil, ErrNoFile
	}
	for i := range v.Files {
		if v.Files[i].Primary {
			return &v.Files[i], nil
		}
	}
	return &v.Files[0], nil
}

// RequiredDependencies returns the project ids of required dependencies, in
// declaration order and without duplicates.
func (v *VersionRecord) RequiredDependencies() []string {
	var ids []string
	seen := make(map[string]bool)
	for _, d := range v.Dependencies {
		if d.Type != DependencyRequired || d.ProjectID == "" || seen[d.ProjectID] {
			continue
		}
		seen[d.ProjectID] = true
		ids = append(ids, d.ProjectID)
	}
	return ids
}

// PinnedDependencies returns the version ids of required dependencies that
// name a version but no project.
func (v *VersionRecord) PinnedDependencies() []string {
	var ids []string
	for _, d := range v.Dependencies {
		if d.Type == DependencyRequired && d.ProjectID == "" && d.VersionID != "" {
			ids = append(ids, d.VersionID)
		}
	}
	return ids
}

// SelectionResult is the outcome of version selection for one project.
// Version is nil when no compatible version was found.
type SelectionResult struct {
	Project *Project
	Version *VersionRecord
}

// Found reports whether a version was selected.
func (s SelectionResult) Found() bool {
	return s.Version != nil
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
