package diag

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Record(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := New("/state/modrinth-updater/debug.txt", WithFs(fs))
	w.now = func() time.Time { return time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, w.Record("sodium", errors.New("download: connection reset"), nil))
	require.NoError(t, w.Record("lithium", errors.New("internal error: boom"), []byte("goroutine 1 [running]:\nmain.main()")))

	data, err := afero.ReadFile(fs, "/state/modrinth-updater/debug.txt")
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "=== 2024-08-01T12:00:00Z ===")
	assert.Contains(t, content, "subject: sodium\nerror: download: connection reset\n")
	assert.Contains(t, content, "subject: lithium\nerror: internal error: boom\nstack:\ngoroutine 1 [running]:\nmain.main()\n")
	assert.Less(t, strings.Index(content, "sodium"), strings.Index(content, "lithium"))
}

func TestWriter_Disabled(t *testing.T) {
	var nilWriter *Writer
	assert.NoError(t, nilWriter.Record("x", errors.New("y"), nil))

	fs := afero.NewMemMapFs()
	w := New("", WithFs(fs))
	assert.NoError(t, w.Record("x", errors.New("y"), nil))
	assert.Empty(t, w.Path())
}

func TestWriter_ReadOnlyFs(t *testing.T) {
	w := New("/state/debug.txt", WithFs(afero.NewReadOnlyFs(afero.NewMemMapFs())))
	assert.Error(t, w.Record("x", errors.New("y"), nil))
}
