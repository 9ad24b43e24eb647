package resolve

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/sharkusmanch/modrinth-updater/internal/domain"
)

// Method records how a file was resolved.
type Method string

const (
	MethodOverride Method = "override"
	MethodMetadata Method = "metadata"
	MethodFilename Method = "filename"
	MethodSearch   Method = "search"
)

// Resolution is the result of resolving one local file. Project is nil when
// the file is unresolved.
type Resolution struct {
	Project *domain.Project
	Method  Method
	// Name is the normalized filename.
	Name string
	// Tried lists the slugs that were looked up.
	Tried []string
}

// Resolved reports whether a project was found.
func (r Resolution) Resolved() bool {
	return r.Project != nil
}

type candidate struct {
	slug   string
	method Method
}

// Resolver maps local mod files to catalog projects.
type Resolver struct {
	catalog        domain.Catalog
	overrides      Overrides
	fs             afero.Fs
	readMetadata   bool
	searchFallback bool
	logger         *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithOverrides sets the override table.
func WithOverrides(o Overrides) Option {
	return func(r *Resolver) {
		r.overrides = o.normalized()
	}
}

// WithMetadata enables reading mod ids embedded in jars on fs.
func WithMetadata(fs afero.Fs) Option {
	return func(r *Resolver) {
		r.fs = fs
		r.readMetadata = fs != nil
	}
}

// WithSearchFallback enables a catalog search when no slug matches.
func WithSearchFallback(enabled bool) Option {
	return func(r *Resolver) {
		r.searchFallback = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver. Without options only the default override
// table and the normalized filename are used.
func NewResolver(catalog domain.Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:   catalog,
		overrides: DefaultOverrides(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve maps mod to a project. An unresolved file is not an error; errors
// are returned only for catalog failures other than "not found".
func (r *Resolver) Resolve(ctx context.Context, mod domain.LocalMod) (Resolution, error) {
	res := Resolution{Name: Normalize(mod.Filename)}

	var embedded []string
	if r.readMetadata && mod.Path != "" {
		ids, err := EmbeddedIDs(r.fs, mod.Path)
		if err != nil {
			r.logger.Debug("no readable jar metadata", "file", mod.Filename, "error", err)
		}
		embedded = ids
	}

	names := append([]string{res.Name}, embedded...)
	if slug, match, ok := r.overrides.Lookup(mod.Filename, names...); ok {
		r.logger.Debug("override matched", "file", mod.Filename, "slug", slug, "match", match)
		res.Method = MethodOverride
		p, err := r.lookup(ctx, &res, slug)
		if err != nil {
			return res, err
		}
		res.Project = p
		return res, nil
	}

	var candidates []candidate
	for _, id := range embedded {
		candidates = append(candidates, candidate{id, MethodMetadata})
	}
	candidates = append(candidates, candidate{res.Name, MethodFilename})

	for _, c := range candidates {
		if contains(res.Tried, c.slug) {
			continue
		}
		p, err := r.lookup(ctx, &res, c.slug)
		if err != nil {
			return res, err
		}
		if p != nil {
			res.Project = p
			res.Method = c.method
			return res, nil
		}
	}

	if r.searchFallback {
		p, err := r.catalog.SearchProject(ctx, res.Name)
		switch {
		case err == nil && matchesName(p, res.Name):
			res.Project = p
			res.Method = MethodSearch
		case err == nil && p != nil:
			r.logger.Debug("ignoring search hit", "file", mod.Filename, "query", res.Name, "hit", p.Slug)
		case !errors.Is(err, domain.ErrProjectNotFound):
			return res, err
		}
	}

	return res, nil
}

// lookup returns nil, nil when the catalog has no such project.
func (r *Resolver) lookup(ctx context.Context, res *Resolution, slug string) (*domain.Project, error) {
	res.Tried = append(res.Tried, slug)
	p, err := r.catalog.GetProject(ctx, slug)
	if errors.Is(err, domain.ErrProjectNotFound) {
		return nil, nil
	}
	return p, err
}

// matchesName reports whether a search hit's slug or title names the same
// mod as the file.
func matchesName(p *domain.Project, name string) bool {
	if p == nil {
		return false
	}
	return p.Slug == name || Slugify(p.Slug) == name || Slugify(p.Title) == name
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
