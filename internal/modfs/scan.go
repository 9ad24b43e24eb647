// Package modfs scans the mods folder and stages replacement files with
// backups.
package modfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/sharkusmanch/modrinth-updater/internal/domain"
	"github.com/sharkusmanch/modrinth-updater/internal/resolve"
)

// ErrModsDirNotFound is returned when the mods folder does not exist.
var ErrModsDirNotFound = errors.New("mods folder not found")

// ModExt is the extension of mod files.
const ModExt = ".jar"

// Scan lists the mod files in dir, sorted by name.
func Scan(fs afero.Fs, dir string) ([]domain.LocalMod, error) {
	info, err := fs.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrModsDirNotFound)
		}
		return nil, fmt.Errorf("failed to stat mods folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mods folder: %w", err)
	}

	mods := make([]domain.LocalMod, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ModExt) {
			continue
		}
		mods = append(mods, domain.LocalMod{
			Filename: e.Name(),
			Path:     filepath.Join(dir, e.Name()),
			Size:     e.Size(),
			Loader:   resolve.LoaderTag(e.Name()),
		})
	}

	return mods, nil
}
