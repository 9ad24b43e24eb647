package domain

import (
	"context"
	"fmt"
	"strings"
)

// NotificationLevel represents the severity of a notification.
type NotificationLevel string

const (
	// NotificationLevelInfo is for informational messages.
	NotificationLevelInfo NotificationLevel = "info"
	// NotificationLevelWarning is for runs that left mods unresolved.
	NotificationLevelWarning NotificationLevel = "warning"
	// NotificationLevelError is for error messages.
	NotificationLevelError NotificationLevel = "error"
)

// Notification represents a notification to be sent.
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Level NotificationLevel `json:"level"`
}

// ReportNotification summarizes a run report. The level is error when any mod
// failed and warning when any mod was unresolved.
func ReportNotification(r *RunReport) *Notification {
	n := &Notification{
		Title: "Mod update completed",
		Level: NotificationLevelInfo,
	}
	if r.DryRun {
		n.Title = "Mod update dry run completed"
	}
	if r.Count(ActionUnresolved) > 0 {
		n.Title = "Mod update left mods unresolved"
		n.Level = NotificationLevelWarning
	}
	if r.HasFailures() {
		n.Title = "Mod update finished with failures"
		n.Level = NotificationLevelError
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Target: %s / %s\n", r.GameVersion, r.Loader)
	fmt.Fprintf(&b, "Updated: %d, skipped: %d, unresolved: %d, failed: %d\n",
		r.Count(ActionUpdated), r.Count(ActionSkipped), r.Count(ActionUnresolved), r.Count(ActionFailed))
	for _, o := range r.Outcomes {
		if o.Action != ActionFailed && o.Action != ActionUnresolved {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", o.Identity, o.Reason)
	}
	if r.BackupDir != "" {
		fmt.Fprintf(&b, "Backup: %s\n", r.BackupDir)
	}
	n.Body = strings.TrimSuffix(b.String(), "\n")
	return n
}

// Notifier defines the interface for sending notifications.
type Notifier interface {
	// Notify sends a notification.
	Notify(ctx context.Context, notification *Notification) error

	// Validate checks if the notifier is properly configured.
	Validate(ctx context.Context) error
}

// NopNotifier is a no-op notifier that does nothing.
type NopNotifier struct{}

// Notify does nothing.
func (n *NopNotifier) Notify(_ context.Context, _ *Notification) error {
	return nil
}

// Validate always returns nil.
func (n *NopNotifier) Validate(_ context.Context) error {
	return nil
}
