package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrTargetMissing is returned by ValidateTarget when the game version or
// loader has not been provided.
var ErrTargetMissing = errors.New("game version and loader are required")

// Config holds all application configuration.
type Config struct {
	ModsDir        string            `mapstructure:"mods_dir"`
	MinecraftDir   string            `mapstructure:"minecraft_dir"`
	GameVersion    string            `mapstructure:"game_version"`
	Loader         string            `mapstructure:"loader"`
	DryRun         bool              `mapstructure:"dry_run"`
	APIURL         string            `mapstructure:"api_url"`
	UserAgent      string            `mapstructure:"user_agent"`
	BackupName     string            `mapstructure:"backup_name"`
	SearchFallback bool              `mapstructure:"search_fallback"`
	VerifyHashes   bool              `mapstructure:"verify_hashes"`
	OverridesFile  string            `mapstructure:"overrides_file"`
	Overrides      map[string]string `mapstructure:"overrides"`
	Retry          RetryConfig       `mapstructure:"retry"`
	Apprise        AppriseConfig     `mapstructure:"apprise"`
	Log            LogConfig         `mapstructure:"log"`
	Diag           DiagConfig        `mapstructure:"diag"`
}

// RetryConfig holds HTTP retry configuration.
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

// AppriseConfig holds Apprise notification configuration.
type AppriseConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	URL     string      `mapstructure:"url"`
	Key     string      `mapstructure:"key"`
	Tag     string      `mapstructure:"tag"`
	Notify  NotifyLevel `mapstructure:"notify"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
}

// DiagConfig holds the diagnostic artifact location.
type DiagConfig struct {
	Path string `mapstructure:"path"`
}

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configPath string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// WithConfigPath sets a specific config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// Load reads configuration from all sources and returns the merged config.
// Precedence (highest to lowest): CLI flags > environment > config file > defaults.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()
	l.setupEnvBindings()

	if err := l.loadConfigFile(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	cfg.GameVersion = strings.TrimSpace(cfg.GameVersion)
	cfg.Loader = strings.ToLower(strings.TrimSpace(cfg.Loader))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// resolvePaths expands user paths and fills in the OS defaults that depend on
// the environment.
func (c *Config) resolvePaths() error {
	var err error
	for _, p := range []*string{&c.ModsDir, &c.MinecraftDir, &c.OverridesFile, &c.Log.Output, &c.Diag.Path} {
		if *p, err = ExpandPath(*p); err != nil {
			return fmt.Errorf("failed to expand path: %w", err)
		}
	}

	if c.ModsDir == "" {
		if c.MinecraftDir == "" {
			if c.MinecraftDir, err = DefaultMinecraftDir(); err != nil {
				return fmt.Errorf("failed to locate minecraft directory: %w", err)
			}
		}
		c.ModsDir = filepath.Join(c.MinecraftDir, "mods")
	}

	// Without a state dir the log goes to stderr and diagnostics are dropped.
	if c.Log.Output == "" {
		if p, err := DefaultLogPath(); err == nil {
			c.Log.Output = p
		}
	}
	if c.Diag.Path == "" {
		if p, err := DefaultDiagPath(); err == nil {
			c.Diag.Path = p
		}
	}
	return nil
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	l.v.SetDefault("mods_dir", "")
	l.v.SetDefault("minecraft_dir", "")
	l.v.SetDefault("game_version", "")
	l.v.SetDefault("loader", "")
	l.v.SetDefault("dry_run", false)
	l.v.SetDefault("api_url", DefaultAPIURL)
	l.v.SetDefault("user_agent", DefaultUserAgent)
	l.v.SetDefault("backup_name", DefaultBackupName)
	l.v.SetDefault("search_fallback", DefaultSearchFallback)
	l.v.SetDefault("verify_hashes", DefaultVerifyHashes)
	l.v.SetDefault("overrides_file", "")

	l.v.SetDefault("retry.max_attempts", DefaultRetryMaxAttempts)
	l.v.SetDefault("retry.initial_delay", DefaultRetryInitialDelay)
	l.v.SetDefault("retry.max_delay", DefaultRetryMaxDelay)

	l.v.SetDefault("apprise.enabled", DefaultAppriseEnabled)
	l.v.SetDefault("apprise.url", DefaultAppriseURL)
	l.v.SetDefault("apprise.key", DefaultAppriseKey)
	l.v.SetDefault("apprise.tag", DefaultAppriseTag)
	l.v.SetDefault("apprise.notify", string(DefaultAppriseNotify))

	l.v.SetDefault("log.level", DefaultLogLevel)
	l.v.SetDefault("log.output", "")
	l.v.SetDefault("log.max_size_mb", DefaultLogMaxSizeMB)

	l.v.SetDefault("diag.path", "")
}

// setupEnvBindings configures environment variable bindings.
func (l *Loader) setupEnvBindings() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

// loadConfigFile loads configuration from a file.
func (l *Loader) loadConfigFile() error {
	if l.configPath != "" {
		l.v.SetConfigFile(l.configPath)
	} else {
		configDir, err := DefaultConfigDir()
		if err != nil {
			return nil
		}

		l.v.SetConfigName("config")
		l.v.SetConfigType("toml")
		l.v.AddConfigPath(configDir)
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// Set sets a configuration value (for CLI flag overrides).
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Validate checks if the configuration is valid. The game version and loader
// may still be empty here; see ValidateTarget.
func (c *Config) Validate() error {
	if c.Loader != "" && !IsValidLoader(c.Loader) {
		return fmt.Errorf("loader must be one of: %s, got %q", strings.Join(Loaders, ", "), c.Loader)
	}

	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}

	if c.BackupName == "" || strings.ContainsAny(c.BackupName, `/\`) || c.BackupName == "." || c.BackupName == ".." {
		return fmt.Errorf("backup_name must be a plain directory name, got %q", c.BackupName)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}

	if c.Retry.InitialDelay < 0 {
		return fmt.Errorf("retry.initial_delay cannot be negative")
	}

	if c.Retry.MaxDelay < c.Retry.InitialDelay {
		return fmt.Errorf("retry.max_delay must be >= retry.initial_delay")
	}

	if c.Apprise.Enabled {
		if c.Apprise.URL == "" {
			return fmt.Errorf("apprise.url is required when apprise is enabled")
		}
		if c.Apprise.Key == "" {
			return fmt.Errorf("apprise.key is required when apprise is enabled")
		}
		if !c.Apprise.Notify.IsValid() {
			return fmt.Errorf("apprise.notify must be one of: error, warning, always")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	if c.Log.MaxSizeMB < 1 {
		return fmt.Errorf("log.max_size_mb must be at least 1")
	}

	return nil
}

// ValidateTarget checks that a run target is complete.
func (c *Config) ValidateTarget() error {
	if c.GameVersion == "" || c.Loader == "" {
		return ErrTargetMissing
	}
	if !IsValidLoader(c.Loader) {
		return fmt.Errorf("loader must be one of: %s, got %q", strings.Join(Loaders, ", "), c.Loader)
	}
	return nil
}

// WriteExampleConfig writes an example config file to the given path.
func WriteExampleConfig(path string) error {
	content := `# Modrinth Updater Configuration

# Target game version and loader. When empty you are asked interactively.
# game_version = "1.21.1"
# loader = "fabric"        # fabric, forge, quilt or neoforge

# Mods folder (defaults to <minecraft_dir>/mods)
# mods_dir = "~/.minecraft/mods"
# minecraft_dir = "~/.minecraft"

# Report what would change without downloading or moving files
dry_run = false

# Replaced files are moved to this folder next to the mods folder.
# A numeric suffix is added when it already exists.
backup_name = "old mods"

# Search the catalog when no slug matches a file name
search_fallback = true

# Check downloads against the catalog's sha512/sha1 hashes
verify_hashes = true

# api_url = "https://api.modrinth.com/v2"

# Extra override table file, format:
#   [overrides]
#   "voicechat-fabric-2.5.jar" = "simple-voice-chat"
# overrides_file = ""

# Inline overrides from normalized name to catalog slug.
# Keys containing dots (file names) belong in overrides_file.
[overrides]
voicechat = "simple-voice-chat"

# HTTP retry configuration. One attempt means no retries.
[retry]
max_attempts = 1
initial_delay = "2s"
max_delay = "10s"

# Apprise notifications (optional, disabled by default)
[apprise]
enabled = false
url = "http://localhost:8000"
key = "minecraft"
# tag = ""
# Notification level: "error", "warning", "always"
notify = "error"

# Logging configuration
[log]
# Level: debug, info, warn, error
level = "info"
# Output file path (defaults to modrinth-updater.log in the state directory)
# output = ""
# Max log file size before rotation (MB)
max_size_mb = 10

# Diagnostic file for unexpected errors
[diag]
# path = ""
`
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0600)
}
