// Package config handles application configuration loading and validation.
package config

import "time"

// Default configuration values.
const (
	DefaultAPIURL         = "https://api.modrinth.com/v2"
	DefaultUserAgent      = "sharkusmanch/modrinth-updater"
	DefaultBackupName     = "old mods"
	DefaultSearchFallback = true
	DefaultVerifyHashes   = true

	// A single attempt: failed requests fail the mod, not the run.
	DefaultRetryMaxAttempts  = 1
	DefaultRetryInitialDelay = 2 * time.Second
	DefaultRetryMaxDelay     = 10 * time.Second

	DefaultAppriseEnabled = false
	DefaultAppriseURL     = ""
	DefaultAppriseKey     = ""
	DefaultAppriseTag     = ""
	DefaultAppriseNotify  = NotifyError

	DefaultLogLevel     = "info"
	DefaultLogMaxSizeMB = 10
)

// Loaders lists the supported mod loaders.
var Loaders = []string{"fabric", "forge", "quilt", "neoforge"}

// IsValidLoader reports whether loader is one of Loaders.
func IsValidLoader(loader string) bool {
	for _, l := range Loaders {
		if l == loader {
			return true
		}
	}
	return false
}

// NotifyLevel represents when to send notifications.
type NotifyLevel string

const (
	// NotifyError sends notifications only when a mod failed.
	NotifyError NotifyLevel = "error"
	// NotifyWarning also notifies when mods were left unresolved.
	NotifyWarning NotifyLevel = "warning"
	// NotifyAlways sends a notification after every run.
	NotifyAlways NotifyLevel = "always"
)

// IsValid returns true if the notify level is valid.
func (n NotifyLevel) IsValid() bool {
	switch n {
	case NotifyError, NotifyWarning, NotifyAlways:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notify level.
func (n NotifyLevel) String() string {
	return string(n)
}
