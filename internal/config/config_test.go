package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyLevel_IsValid(t *testing.T) {
	tests := []struct {
		level NotifyLevel
		want  bool
	}{
		{NotifyError, true},
		{NotifyWarning, true},
		{NotifyAlways, true},
		{NotifyLevel("invalid"), false},
		{NotifyLevel(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.IsValid())
		})
	}
}

func TestIsValidLoader(t *testing.T) {
	for _, l := range []string{"fabric", "forge", "quilt", "neoforge"} {
		assert.True(t, IsValidLoader(l), l)
	}
	assert.False(t, IsValidLoader("Fabric"))
	assert.False(t, IsValidLoader("rift"))
	assert.False(t, IsValidLoader(""))
}

func TestConfig_Validate(t *testing.T) {
	validConfig := func() *Config {
		return &Config{
			ModsDir:     "/games/.minecraft/mods",
			GameVersion: "1.21.1",
			Loader:      "fabric",
			APIURL:      DefaultAPIURL,
			BackupName:  DefaultBackupName,
			Retry: RetryConfig{
				MaxAttempts:  1,
				InitialDelay: 2 * time.Second,
				MaxDelay:     10 * time.Second,
			},
			Apprise: AppriseConfig{
				Enabled: true,
				URL:     "http://localhost:8000",
				Key:     "minecraft",
				Notify:  NotifyError,
			},
			Log: LogConfig{
				Level:     "info",
				MaxSizeMB: 10,
			},
		}
	}

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("empty target is allowed", func(t *testing.T) {
		cfg := validConfig()
		cfg.GameVersion = ""
		cfg.Loader = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown loader", func(t *testing.T) {
		cfg := validConfig()
		cfg.Loader = "rift"
		assert.ErrorContains(t, cfg.Validate(), "loader must be one of")
	})

	t.Run("bad api url", func(t *testing.T) {
		cfg := validConfig()
		cfg.APIURL = "api.modrinth.com/v2"
		assert.ErrorContains(t, cfg.Validate(), "api_url must be an http(s) URL")
	})

	t.Run("backup name with separator", func(t *testing.T) {
		cfg := validConfig()
		cfg.BackupName = "../old"
		assert.ErrorContains(t, cfg.Validate(), "backup_name must be a plain directory name")
	})

	t.Run("empty backup name", func(t *testing.T) {
		cfg := validConfig()
		cfg.BackupName = ""
		assert.ErrorContains(t, cfg.Validate(), "backup_name")
	})

	t.Run("retry max_attempts less than 1", func(t *testing.T) {
		cfg := validConfig()
		cfg.Retry.MaxAttempts = 0
		assert.ErrorContains(t, cfg.Validate(), "retry.max_attempts must be at least 1")
	})

	t.Run("retry max_delay less than initial_delay", func(t *testing.T) {
		cfg := validConfig()
		cfg.Retry.MaxDelay = 1 * time.Second
		cfg.Retry.InitialDelay = 5 * time.Second
		assert.ErrorContains(t, cfg.Validate(), "retry.max_delay must be >= retry.initial_delay")
	})

	t.Run("apprise enabled without URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Apprise.URL = ""
		assert.ErrorContains(t, cfg.Validate(), "apprise.url is required")
	})

	t.Run("apprise enabled without key", func(t *testing.T) {
		cfg := validConfig()
		cfg.Apprise.Key = ""
		assert.ErrorContains(t, cfg.Validate(), "apprise.key is required")
	})

	t.Run("invalid apprise notify level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Apprise.Notify = NotifyLevel("invalid")
		assert.ErrorContains(t, cfg.Validate(), "apprise.notify must be one of")
	})

	t.Run("apprise disabled skips validation", func(t *testing.T) {
		cfg := validConfig()
		cfg.Apprise = AppriseConfig{}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.Level = "invalid"
		assert.ErrorContains(t, cfg.Validate(), "log.level must be one of")
	})

	t.Run("log max_size_mb less than 1", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.MaxSizeMB = 0
		assert.ErrorContains(t, cfg.Validate(), "log.max_size_mb must be at least 1")
	})
}

func TestConfig_ValidateTarget(t *testing.T) {
	cfg := &Config{GameVersion: "1.21.1", Loader: "fabric"}
	assert.NoError(t, cfg.ValidateTarget())

	cfg.Loader = ""
	assert.ErrorIs(t, cfg.ValidateTarget(), ErrTargetMissing)

	cfg = &Config{Loader: "quilt"}
	assert.ErrorIs(t, cfg.ValidateTarget(), ErrTargetMissing)
}

// fakeHome points the home directory at a temp dir for the test.
func fakeHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	return home
}

func TestLoader_Load_Defaults(t *testing.T) {
	home := fakeHome(t)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, DefaultBackupName, cfg.BackupName)
	assert.True(t, cfg.SearchFallback)
	assert.True(t, cfg.VerifyHashes)
	assert.False(t, cfg.DryRun)
	assert.Empty(t, cfg.GameVersion)
	assert.Empty(t, cfg.Loader)
	assert.Equal(t, DefaultRetryMaxAttempts, cfg.Retry.MaxAttempts)
	assert.Equal(t, DefaultRetryInitialDelay, cfg.Retry.InitialDelay)
	assert.Equal(t, DefaultRetryMaxDelay, cfg.Retry.MaxDelay)
	assert.Equal(t, DefaultAppriseEnabled, cfg.Apprise.Enabled)
	assert.Equal(t, DefaultAppriseNotify, cfg.Apprise.Notify)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogMaxSizeMB, cfg.Log.MaxSizeMB)
	assert.Contains(t, cfg.Log.Output, AppName)
	assert.Equal(t, DiagFileName, filepath.Base(cfg.Diag.Path))

	if runtime.GOOS == "linux" {
		assert.Equal(t, filepath.Join(home, ".minecraft", "mods"), cfg.ModsDir)
	}
}

func TestLoader_Load_FromFile(t *testing.T) {
	home := fakeHome(t)
	configPath := filepath.Join(t.TempDir(), "config.toml")

	content := `
game_version = " 1.21.1 "
loader = "Fabric"
minecraft_dir = "~/instances/survival"
dry_run = true
backup_name = "mods backup"
search_fallback = false
overrides_file = "~/overrides.toml"

[overrides]
voicechat = "simple-voice-chat"
iris-mc = "iris"

[retry]
max_attempts = 3
initial_delay = "1s"
max_delay = "5s"

[apprise]
enabled = true
url = "http://apprise:8000"
key = "mc"
tag = "games"
notify = "always"

[log]
level = "debug"
max_size_mb = 20

[diag]
path = "/tmp/modrinth-debug.txt"
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	loader := NewLoader().WithConfigPath(configPath)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, configPath, loader.ConfigFileUsed())
	assert.Equal(t, "1.21.1", cfg.GameVersion)
	assert.Equal(t, "fabric", cfg.Loader)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "mods backup", cfg.BackupName)
	assert.False(t, cfg.SearchFallback)
	assert.Equal(t, filepath.Join(home, "instances", "survival"), cfg.MinecraftDir)
	assert.Equal(t, filepath.Join(home, "instances", "survival", "mods"), cfg.ModsDir)
	assert.Equal(t, filepath.Join(home, "overrides.toml"), cfg.OverridesFile)
	assert.Equal(t, map[string]string{"voicechat": "simple-voice-chat", "iris-mc": "iris"}, cfg.Overrides)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, 5*time.Second, cfg.Retry.MaxDelay)
	assert.True(t, cfg.Apprise.Enabled)
	assert.Equal(t, "games", cfg.Apprise.Tag)
	assert.Equal(t, NotifyAlways, cfg.Apprise.Notify)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 20, cfg.Log.MaxSizeMB)
	assert.Equal(t, filepath.Clean("/tmp/modrinth-debug.txt"), cfg.Diag.Path)
}

func TestLoader_Load_ModsDirWins(t *testing.T) {
	fakeHome(t)
	modsDir := t.TempDir()

	loader := NewLoader()
	loader.Set("mods_dir", modsDir)
	loader.Set("minecraft_dir", "/elsewhere")

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, modsDir, cfg.ModsDir)
}

func TestLoader_Load_InvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("loader = \"rift\"\n"), 0600))

	_, err := NewLoader().WithConfigPath(configPath).Load()
	assert.ErrorContains(t, err, "invalid config")
}

func TestLoader_Load_EnvOverrides(t *testing.T) {
	fakeHome(t)
	t.Setenv("MODRINTH_UPDATER_GAME_VERSION", "1.20.1")
	t.Setenv("MODRINTH_UPDATER_LOADER", "forge")
	t.Setenv("MODRINTH_UPDATER_DRY_RUN", "true")
	t.Setenv("MODRINTH_UPDATER_LOG_LEVEL", "debug")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "1.20.1", cfg.GameVersion)
	assert.Equal(t, "forge", cfg.Loader)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoader_Set(t *testing.T) {
	fakeHome(t)
	t.Setenv("MODRINTH_UPDATER_LOADER", "forge")

	loader := NewLoader()
	loader.Set("loader", "quilt")
	loader.Set("log.level", "error")

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "quilt", cfg.Loader)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestWriteExampleConfig(t *testing.T) {
	fakeHome(t)
	configPath := filepath.Join(t.TempDir(), "subdir", "config.toml")

	require.NoError(t, WriteExampleConfig(configPath))

	_, err := os.Stat(configPath)
	require.NoError(t, err)

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultBackupName, cfg.BackupName)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts)
	assert.Equal(t, "simple-voice-chat", cfg.Overrides["voicechat"])
}

func TestExpandPath(t *testing.T) {
	home := fakeHome(t)

	p, err := ExpandPath("~/mods/")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "mods"), p)

	p, err = ExpandPath("")
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestDefaultPaths(t *testing.T) {
	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Contains(t, dir, AppName)

	path, err := DefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, ConfigFileName, filepath.Base(path))

	logPath, err := DefaultLogPath()
	require.NoError(t, err)
	assert.Equal(t, AppName+".log", filepath.Base(logPath))

	mc, err := DefaultMinecraftDir()
	require.NoError(t, err)
	assert.Contains(t, []string{".minecraft", "minecraft"}, filepath.Base(mc))
}
