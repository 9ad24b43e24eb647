package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverrides_Lookup_Precedence(t *testing.T) {
	o := Overrides{
		"Special-Mod-1.0.jar": "by-filename",
		"special-mod":         "by-name",
		"embedded_id":         "by-embedded",
	}.normalized()

	slug, match, ok := o.Lookup("special-mod-1.0.jar", "special-mod")
	require.True(t, ok)
	assert.Equal(t, "by-filename", slug)
	assert.Equal(t, MatchFilename, match)

	slug, match, ok = o.Lookup("special-mod-2.0.jar", "special-mod", "embedded_id")
	require.True(t, ok)
	assert.Equal(t, "by-name", slug)
	assert.Equal(t, MatchName, match)

	slug, _, ok = o.Lookup("other-2.0.jar", "other", "embedded_id")
	require.True(t, ok)
	assert.Equal(t, "by-embedded", slug)

	_, _, ok = o.Lookup("unknown-1.0.jar", "unknown")
	assert.False(t, ok)
}

func TestOverrides_Merge(t *testing.T) {
	merged := DefaultOverrides().Merge(Overrides{"VoiceChat": "my-fork", "extra": "extra-slug"})

	assert.Equal(t, "my-fork", merged["voicechat"])
	assert.Equal(t, "simple-voice-chat", merged["voicechat-fabric"])
	assert.Equal(t, "extra-slug", merged["extra"])
	// original untouched
	assert.Equal(t, "simple-voice-chat", DefaultOverrides()["voicechat"])
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.toml")
	content := `
[overrides]
"Create-1.20.1.jar" = "create-fabric"
emi = "emi"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	o, err := LoadOverrides(path)
	require.NoError(t, err)

	assert.Equal(t, "create-fabric", o["create-1.20.1.jar"])
	assert.Equal(t, "emi", o["emi"])
}

func TestLoadOverrides_Errors(t *testing.T) {
	_, err := LoadOverrides(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "failed to read overrides file")

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[overrides\nx="), 0600))
	_, err = LoadOverrides(path)
	assert.ErrorContains(t, err, "failed to parse overrides file")
}
