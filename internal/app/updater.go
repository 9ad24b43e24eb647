// Package app provides the core application logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/sharkusmanch/modrinth-updater/internal/config"
	"github.com/sharkusmanch/modrinth-updater/internal/domain"
	"github.com/sharkusmanch/modrinth-updater/internal/resolve"
	"github.com/sharkusmanch/modrinth-updater/internal/selector"
)

// Resolver maps a local file to a catalog project.
type Resolver interface {
	Resolve(ctx context.Context, mod domain.LocalMod) (resolve.Resolution, error)
}

// Selector picks the version to install for a project.
type Selector interface {
	Select(ctx context.Context, project *domain.Project, gameVersion, loader string) (domain.SelectionResult, error)
}

// Observer is told about every outcome as soon as it is reported.
type Observer interface {
	OnOutcome(o domain.Outcome)
}

// Recorder receives diagnostic detail for failures that end a mod's processing.
type Recorder interface {
	Record(subject string, err error, stack []byte) error
}

// Updater orchestrates one update run over the local mods.
type Updater struct {
	catalog  domain.Catalog
	resolver Resolver
	selector Selector
	stager   domain.Stager
	notifier domain.Notifier
	observer Observer
	recorder Recorder
	config   *config.Config
	logger   *slog.Logger
}

// UpdaterOption configures an Updater.
type UpdaterOption func(*Updater)

// WithResolver sets the resolver.
func WithResolver(r Resolver) UpdaterOption {
	return func(u *Updater) {
		u.resolver = r
	}
}

// WithSelector sets the version selector.
func WithSelector(s Selector) UpdaterOption {
	return func(u *Updater) {
		u.selector = s
	}
}

// WithNotifier sets the notifier.
func WithNotifier(n domain.Notifier) UpdaterOption {
	return func(u *Updater) {
		u.notifier = n
	}
}

// WithObserver sets the progress observer.
func WithObserver(o Observer) UpdaterOption {
	return func(u *Updater) {
		u.observer = o
	}
}

// WithRecorder sets the diagnostic recorder.
func WithRecorder(r Recorder) UpdaterOption {
	return func(u *Updater) {
		u.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) UpdaterOption {
	return func(u *Updater) {
		u.logger = l
	}
}

// NewUpdater creates a new Updater. The resolver and selector default to the
// standard implementations over catalog.
func NewUpdater(cfg *config.Config, catalog domain.Catalog, stager domain.Stager, opts ...UpdaterOption) *Updater {
	u := &Updater{
		catalog:  catalog,
		stager:   stager,
		config:   cfg,
		logger:   slog.Default(),
		notifier: &domain.NopNotifier{},
	}

	for _, opt := range opts {
		opt(u)
	}

	if u.resolver == nil {
		u.resolver = resolve.NewResolver(catalog, resolve.WithLogger(u.logger))
	}
	if u.selector == nil {
		u.selector = selector.NewSelector(catalog, u.logger)
	}

	return u
}

// work is a project waiting to be selected and staged. local is nil for
// dependencies.
type work struct {
	project *domain.Project
	local   *domain.LocalMod
	origin  string
}

// Run processes mods strictly in order, then the dependencies they require.
// Per-mod failures become outcomes in the report; Run itself only fails when
// the context is cancelled.
func (u *Updater) Run(ctx context.Context, mods []domain.LocalMod) (*domain.RunReport, error) {
	report := domain.NewRunReport(u.config.GameVersion, u.config.Loader, u.stager.DryRun())
	queue := NewQueue()

	u.logger.Info("starting update run",
		"mods", len(mods),
		"game_version", u.config.GameVersion,
		"loader", u.config.Loader,
		"dry_run", report.DryRun,
	)

	// Resolve every local file first so that dependencies already installed
	// are never queued.
	var pending []work
	owners := make(map[string]string)
	broken := make(map[string]string)
	for i := range mods {
		if err := ctx.Err(); err != nil {
			return u.finish(ctx, report, err)
		}

		mod := &mods[i]
		w, out, ok := u.resolveLocal(ctx, mod, broken)
		if !ok {
			u.add(report, out)
			continue
		}
		if !queue.Mark(w.project.ID) {
			u.add(report, domain.Outcome{
				Identity:  w.project.Slug,
				Title:     w.project.Name(),
				Action:    domain.ActionSkipped,
				Reason:    fmt.Sprintf("duplicate of %s", owners[w.project.ID]),
				LocalFile: mod.Filename,
			})
			continue
		}
		owners[w.project.ID] = mod.Filename
		pending = append(pending, w)
	}

	for _, w := range pending {
		if err := ctx.Err(); err != nil {
			return u.finish(ctx, report, err)
		}
		u.add(report, u.process(ctx, queue, w))
	}

	for {
		entry, ok := queue.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return u.finish(ctx, report, err)
		}
		u.logger.Debug("processing dependency", "project", entry.ProjectID, "origin", entry.Origin, "pending", queue.Len())
		u.add(report, u.processDependency(ctx, queue, entry, broken))
	}

	return u.finish(ctx, report, nil)
}

// finish completes the report and sends notifications.
func (u *Updater) finish(ctx context.Context, report *domain.RunReport, runErr error) (*domain.RunReport, error) {
	report.BackupDir = u.stager.BackupDir()
	report.Complete()

	if runErr != nil {
		u.logger.Warn("update run interrupted", "error", runErr, "outcomes", len(report.Outcomes))
		return report, runErr
	}

	if err := u.sendNotifications(ctx, report); err != nil {
		u.logger.Error("failed to send notification", "error", err)
	}

	u.logger.Info("update run completed",
		"updated", report.Count(domain.ActionUpdated),
		"skipped", report.Count(domain.ActionSkipped),
		"unresolved", report.Count(domain.ActionUnresolved),
		"failed", report.Count(domain.ActionFailed),
		"backup_dir", report.BackupDir,
		"duration", report.Duration,
	)

	return report, nil
}

func (u *Updater) add(report *domain.RunReport, o domain.Outcome) {
	report.Add(o)
	if u.observer != nil {
		u.observer.OnOutcome(o)
	}
}

// resolveLocal maps mod to a project. When it cannot, the returned outcome
// is the mod's final outcome and ok is false. When resolution fails, the names
// the file was looked up under are recorded in broken so that the project is
// not installed a second time as a dependency.
func (u *Updater) resolveLocal(ctx context.Context, mod *domain.LocalMod, broken map[string]string) (w work, out domain.Outcome, ok bool) {
	out = domain.Outcome{Identity: mod.Filename, Title: mod.Filename, LocalFile: mod.Filename}

	var tried []string
	out = u.guard(mod.Filename, out, func() domain.Outcome {
		res, err := u.resolver.Resolve(ctx, *mod)
		tried = res.Tried
		if err != nil {
			return u.failed(mod.Filename, out, fmt.Errorf("resolve: %w", err))
		}
		if !res.Resolved() {
			u.logger.Info("unresolved mod", "file", mod.Filename, "tried", res.Tried)
			out.Action = domain.ActionUnresolved
			out.Reason = fmt.Sprintf("no catalog project matches (tried %s)", strings.Join(res.Tried, ", "))
			return out
		}

		u.logger.Debug("resolved mod", "file", mod.Filename, "project", res.Project.Slug, "method", res.Method)
		w = work{project: res.Project, local: mod}
		return out
	})

	if out.Action == domain.ActionFailed {
		for _, name := range append(tried, resolve.Normalize(mod.Filename)) {
			if _, exists := broken[name]; !exists {
				broken[name] = mod.Filename
			}
		}
	}

	return w, out, w.project != nil
}

// processDependency looks up a queued dependency and processes it. A
// dependency that is installed under a file which failed to resolve is
// skipped.
func (u *Updater) processDependency(ctx context.Context, queue *Queue, entry QueueEntry, broken map[string]string) domain.Outcome {
	out := domain.Outcome{
		Identity:   entry.ProjectID,
		Title:      entry.ProjectID,
		Dependency: true,
		Origin:     entry.Origin,
	}

	var project *domain.Project
	out = u.guard(entry.ProjectID, out, func() domain.Outcome {
		p, err := u.catalog.GetProject(ctx, entry.ProjectID)
		switch {
		case errors.Is(err, domain.ErrProjectNotFound):
			out.Action = domain.ActionUnresolved
			out.Reason = fmt.Sprintf("dependency of %s not found in catalog", entry.Origin)
			return out
		case err != nil:
			return u.failed(entry.ProjectID, out, fmt.Errorf("dependency lookup: %w", err))
		}
		project = p
		return out
	})
	if project == nil {
		return out
	}

	for _, key := range []string{project.Slug, project.ID} {
		if file, ok := broken[key]; ok {
			u.logger.Warn("dependency already installed but not resolved", "project", project.Slug, "file", file)
			out.Identity = project.Slug
			out.Title = project.Name()
			out.Action = domain.ActionSkipped
			out.Reason = fmt.Sprintf("installed as %s, resolution failed", file)
			return out
		}
	}

	return u.process(ctx, queue, work{project: project, origin: entry.Origin})
}

// process runs select, expand and stage for one project.
func (u *Updater) process(ctx context.Context, queue *Queue, w work) domain.Outcome {
	out := domain.Outcome{
		Identity:   w.project.Slug,
		Title:      w.project.Name(),
		Dependency: w.local == nil,
		Origin:     w.origin,
	}
	if w.local != nil {
		out.LocalFile = w.local.Filename
	}

	return u.guard(w.project.Slug, out, func() domain.Outcome {
		sel, err := u.selector.Select(ctx, w.project, u.config.GameVersion, u.config.Loader)
		if err != nil {
			return u.failed(w.project.Slug, out, err)
		}
		if !sel.Found() {
			out.Action = domain.ActionSkipped
			out.Reason = fmt.Sprintf("%s for %s %s", domain.ErrNoCompatibleVersion, u.config.Loader, u.config.GameVersion)
			return out
		}

		out.Version = sel.Version.VersionNumber
		file, err := sel.Version.PrimaryFile()
		if err != nil {
			return u.failed(w.project.Slug, out, fmt.Errorf("version %s: %w", sel.Version.VersionNumber, err))
		}
		out.NewFile = file.Filename

		if queued := queue.Expand(sel.Version, w.project.Slug); len(queued) > 0 {
			u.logger.Debug("queued dependencies", "project", w.project.Slug, "dependencies", queued)
		}
		for _, versionID := range sel.Version.PinnedDependencies() {
			u.expandPinned(ctx, queue, versionID, w.project.Slug)
		}

		if w.local != nil && w.local.Filename == file.Filename {
			out.Action = domain.ActionSkipped
			out.Reason = "already up to date"
			return out
		}

		var data []byte
		if !u.stager.DryRun() {
			data, err = u.catalog.Download(ctx, file)
			if err != nil {
				return u.failed(w.project.Slug, out, fmt.Errorf("download: %w", err))
			}
		}

		action, err := u.stager.Stage(w.local, file.Filename, data)
		if err != nil {
			return u.failed(w.project.Slug, out, err)
		}

		out.Action = domain.ActionUpdated
		if w.local != nil {
			out.Reason = fmt.Sprintf("replaces %s", w.local.Filename)
		} else {
			out.Reason = fmt.Sprintf("required by %s", w.origin)
		}

		u.logger.Info("staged mod",
			"project", w.project.Slug,
			"version", out.Version,
			"file", file.Filename,
			"backup", action.BackupPath,
			"dry_run", action.DryRun,
		)
		return out
	})
}

// expandPinned queues the project of a dependency that names only a version.
// The dependency then gets the newest compatible version like any other.
func (u *Updater) expandPinned(ctx context.Context, queue *Queue, versionID, origin string) {
	v, err := u.catalog.GetVersion(ctx, versionID)
	if err != nil {
		u.logger.Warn("cannot resolve required dependency", "project", origin, "version_id", versionID, "error", err)
		return
	}
	if queue.Push(v.ProjectID, origin) {
		u.logger.Debug("queued dependencies", "project", origin, "dependencies", []string{v.ProjectID})
	}
}

// guard runs fn, turning a panic into a Failed outcome.
func (u *Updater) guard(subject string, out domain.Outcome, fn func() domain.Outcome) (result domain.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("internal error: %v", rec)
			u.logger.Error("panic while processing mod", "mod", subject, "panic", rec)
			u.record(subject, err, debug.Stack())
			out.Action = domain.ActionFailed
			out.Reason = err.Error()
			result = out
		}
	}()
	return fn()
}

func (u *Updater) failed(subject string, out domain.Outcome, err error) domain.Outcome {
	u.logger.Error("mod failed", "mod", subject, "error", err)
	u.record(subject, err, nil)
	out.Action = domain.ActionFailed
	out.Reason = err.Error()
	return out
}

func (u *Updater) record(subject string, err error, stack []byte) {
	if u.recorder == nil {
		return
	}
	if rerr := u.recorder.Record(subject, err, stack); rerr != nil {
		u.logger.Warn("failed to write diagnostic entry", "error", rerr)
	}
}

// sendNotifications sends notifications based on the report and config.
func (u *Updater) sendNotifications(ctx context.Context, report *domain.RunReport) error {
	if u.notifier == nil {
		return nil
	}

	notifyLevel := u.config.Apprise.Notify
	problems := report.HasFailures() || report.Count(domain.ActionUnresolved) > 0

	shouldNotify := false
	switch notifyLevel {
	case config.NotifyAlways:
		shouldNotify = true
	case config.NotifyWarning:
		shouldNotify = problems
	case config.NotifyError:
		shouldNotify = report.HasFailures()
	}

	if !shouldNotify {
		return nil
	}

	return u.notifier.Notify(ctx, domain.ReportNotification(report))
}
