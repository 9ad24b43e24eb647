package modfs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"

	"github.com/sharkusmanch/modrinth-updater/internal/domain"
)

// DefaultBackupName is the base name of the backup folder.
const DefaultBackupName = "old mods"

// Stager moves originals into a backup folder next to the mods folder and
// writes replacement files. The backup folder is created lazily, at most once.
type Stager struct {
	fs           afero.Fs
	modsDir      string
	backupParent string
	backupName   string
	dryRun       bool
	backupDir    string
	logger       *slog.Logger
}

// StagerOption configures a Stager.
type StagerOption func(*Stager)

// WithFs sets the filesystem. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) StagerOption {
	return func(s *Stager) {
		s.fs = fs
	}
}

// WithBackupName sets the backup folder base name.
func WithBackupName(name string) StagerOption {
	return func(s *Stager) {
		if name != "" {
			s.backupName = name
		}
	}
}

// WithDryRun disables all filesystem writes.
func WithDryRun(dryRun bool) StagerOption {
	return func(s *Stager) {
		s.dryRun = dryRun
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) StagerOption {
	return func(s *Stager) {
		s.logger = logger
	}
}

// NewStager creates a Stager for modsDir.
func NewStager(modsDir string, opts ...StagerOption) *Stager {
	s := &Stager{
		fs:           afero.NewOsFs(),
		modsDir:      modsDir,
		backupParent: filepath.Dir(filepath.Clean(modsDir)),
		backupName:   DefaultBackupName,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// BackupDir returns the backup folder created during this run, or "".
func (s *Stager) BackupDir() string {
	return s.backupDir
}

// DryRun reports whether the stager performs no writes.
func (s *Stager) DryRun() bool {
	return s.dryRun
}

// Stage backs up original (nil for a new mod) and writes data as filename in
// the mods folder. A file already occupying the target path is backed up as
// well. If a backup move fails nothing is written; if the write fails the
// original is moved back.
func (s *Stager) Stage(original *domain.LocalMod, filename string, data []byte) (*domain.StageAction, error) {
	if filename == "" || filepath.Base(filename) != filename {
		return nil, fmt.Errorf("invalid target filename %q", filename)
	}

	target := filepath.Join(s.modsDir, filename)
	action := &domain.StageAction{TargetPath: target, DryRun: s.dryRun}

	toMove := s.displaced(original, target)

	if s.dryRun {
		if len(toMove) > 0 {
			dir := s.backupDir
			if dir == "" {
				dir = s.nextBackupDir()
			}
			action.BackupPath = filepath.Join(dir, filepath.Base(toMove[0]))
		}
		s.logger.Debug("dry run: would stage", "target", target, "backup", action.BackupPath)
		return action, nil
	}

	var moved [][2]string
	if len(toMove) > 0 {
		dir, err := s.ensureBackupDir()
		if err != nil {
			return nil, err
		}
		for _, src := range toMove {
			dst := filepath.Join(dir, filepath.Base(src))
			if err := s.fs.Rename(src, dst); err != nil {
				s.restore(moved)
				return nil, fmt.Errorf("failed to back up %s: %w", filepath.Base(src), err)
			}
			moved = append(moved, [2]string{src, dst})
		}
		action.BackupPath = moved[0][1]
	}

	if err := s.write(target, data); err != nil {
		s.restore(moved)
		return nil, err
	}

	s.logger.Debug("staged file", "target", target, "backup", action.BackupPath)
	return action, nil
}

// displaced returns the paths that must be moved away before writing target:
// the original file and any different file already at target.
func (s *Stager) displaced(original *domain.LocalMod, target string) []string {
	var paths []string
	if original != nil {
		paths = append(paths, original.Path)
	}
	if original == nil || filepath.Clean(original.Path) != filepath.Clean(target) {
		if _, err := s.fs.Stat(target); err == nil {
			paths = append(paths, target)
		}
	}
	return paths
}

func (s *Stager) write(target string, data []byte) error {
	tmp, err := afero.TempFile(s.fs, s.modsDir, ".staging-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(target), err)
	}

	if err := s.fs.Rename(tmpName, target); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to place %s: %w", filepath.Base(target), err)
	}
	return nil
}

// restore moves backed-up files back, newest first.
func (s *Stager) restore(moved [][2]string) {
	for i := len(moved) - 1; i >= 0; i-- {
		if err := s.fs.Rename(moved[i][1], moved[i][0]); err != nil {
			s.logger.Error("failed to restore file from backup",
				"backup", moved[i][1],
				"original", moved[i][0],
				"error", err,
			)
		}
	}
}

func (s *Stager) ensureBackupDir() (string, error) {
	if s.backupDir != "" {
		return s.backupDir, nil
	}

	dir := s.nextBackupDir()
	if err := s.fs.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create backup folder: %w", err)
	}

	s.backupDir = dir
	s.logger.Info("created backup folder", "path", dir)
	return dir, nil
}

// nextBackupDir returns "<parent>/<name>", or the first free
// "<parent>/<name>-N" when that exists.
func (s *Stager) nextBackupDir() string {
	base := filepath.Join(s.backupParent, s.backupName)
	if !s.exists(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if !s.exists(candidate) {
			return candidate
		}
	}
}

func (s *Stager) exists(path string) bool {
	_, err := s.fs.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// Ensure Stager implements domain.Stager.
var _ domain.Stager = (*Stager)(nil)
