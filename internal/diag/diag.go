// Package diag appends diagnostic entries for unexpected errors to a plain
// text file that users can attach to bug reports.
package diag

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/sharkusmanch/modrinth-updater/pkg/version"
)

// Writer appends entries to the diagnostic file. The file is created on the
// first entry. A zero path disables the writer.
type Writer struct {
	fs   afero.Fs
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// Option configures a Writer.
type Option func(*Writer)

// WithFs sets the filesystem.
func WithFs(fs afero.Fs) Option {
	return func(w *Writer) {
		w.fs = fs
	}
}

// New creates a Writer for path.
func New(path string, opts ...Option) *Writer {
	w := &Writer{
		fs:   afero.NewOsFs(),
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the diagnostic file path.
func (w *Writer) Path() string {
	return w.path
}

// Record appends an entry for subject. stack may be nil.
func (w *Writer) Record(subject string, err error, stack []byte) error {
	if w == nil || w.path == "" {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if mkErr := w.fs.MkdirAll(filepath.Dir(w.path), 0750); mkErr != nil {
		return fmt.Errorf("failed to create diagnostic directory: %w", mkErr)
	}

	f, openErr := w.fs.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if openErr != nil {
		return fmt.Errorf("failed to open diagnostic file: %w", openErr)
	}
	defer func() { _ = f.Close() }()

	if _, writeErr := f.WriteString(w.format(subject, err, stack)); writeErr != nil {
		return fmt.Errorf("failed to write diagnostic file: %w", writeErr)
	}
	return nil
}

func (w *Writer) format(subject string, err error, stack []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n", w.now().Format(time.RFC3339))
	fmt.Fprintf(&b, "version: %s (%s/%s)\n", version.Get().Short(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&b, "subject: %s\n", subject)
	if err != nil {
		fmt.Fprintf(&b, "error: %v\n", err)
	}
	if len(stack) > 0 {
		b.WriteString("stack:\n")
		b.Write(stack)
		if stack[len(stack)-1] != '\n' {
			b.WriteByte('\n')
		}
	}
	b.WriteByte('\n')
	return b.String()
}
