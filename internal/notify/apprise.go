// Package notify sends run summaries to an Apprise API server.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sharkusmanch/modrinth-updater/internal/domain"
	"github.com/sharkusmanch/modrinth-updater/internal/http"
)

const (
	maxBodyLength = 1000
)

// AppriseClient sends notifications via an Apprise server.
type AppriseClient struct {
	url        string
	key        string
	tag        string
	httpClient *http.Client
	logger     *slog.Logger
}

// AppriseOption configures an AppriseClient.
type AppriseOption func(*AppriseClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) AppriseOption {
	return func(a *AppriseClient) {
		a.httpClient = client
	}
}

// WithTag restricts delivery to the services tagged tag on the Apprise server.
func WithTag(tag string) AppriseOption {
	return func(a *AppriseClient) {
		a.tag = tag
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AppriseOption {
	return func(a *AppriseClient) {
		a.logger = logger
	}
}

// NewAppriseClient creates a new AppriseClient for the stateful endpoint
// <url>/notify/<key>.
func NewAppriseClient(url, key string, opts ...AppriseOption) *AppriseClient {
	a := &AppriseClient{
		url:        strings.TrimSuffix(url, "/"),
		key:        key,
		httpClient: http.NewClient(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

type appriseRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`
	Tag    string `json:"tag,omitempty"`
}

// Notify posts the notification. Bodies longer than maxBodyLength are cut
// at a line boundary where possible.
func (a *AppriseClient) Notify(ctx context.Context, notification *domain.Notification) error {
	req := appriseRequest{
		Title:  notification.Title,
		Body:   truncateBody(notification.Body),
		Type:   mapLevel(notification.Level),
		Format: "text",
		Tag:    a.tag,
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	notifyURL := fmt.Sprintf("%s/notify/%s", a.url, a.key)

	a.logger.Debug("sending run summary via apprise",
		"url", notifyURL,
		"title", notification.Title,
		"level", notification.Level,
	)

	resp, err := a.httpClient.Post(ctx, notifyURL, "application/json", payload)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("apprise returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}

	return nil
}

// Validate checks that the Apprise server answers for the configured key.
func (a *AppriseClient) Validate(ctx context.Context) error {
	if a.url == "" || a.key == "" {
		return fmt.Errorf("apprise url and key are required")
	}

	detailsURL := fmt.Sprintf("%s/details/%s", a.url, a.key)
	if err := a.httpClient.CheckConnectivity(ctx, detailsURL); err != nil {
		if err2 := a.httpClient.CheckConnectivity(ctx, a.url); err2 != nil {
			return fmt.Errorf("apprise server not reachable at %s: %w", a.url, err)
		}
	}

	return nil
}

func truncateBody(body string) string {
	if len(body) <= maxBodyLength {
		return body
	}
	cut := body[:maxBodyLength-3]
	if i := strings.LastIndexByte(cut, '\n'); i > maxBodyLength/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

// mapLevel maps a notification level to an Apprise message type.
func mapLevel(level domain.NotificationLevel) string {
	switch level {
	case domain.NotificationLevelWarning:
		return "warning"
	case domain.NotificationLevelError:
		return "failure"
	default:
		return "info"
	}
}

// Ensure AppriseClient implements domain.Notifier.
var _ domain.Notifier = (*AppriseClient)(nil)
