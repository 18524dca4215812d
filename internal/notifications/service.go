package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sleeve/internal/config"
)

const userAgent = "sleeve/0.1"

// Service defines the notification surface exposed to the workflow.
type Service interface {
	NotifyRunStarted(ctx context.Context, count int) error
	NotifyRunCompleted(ctx context.Context, saved, failed int, duration time.Duration) error
	NotifyItemFailed(ctx context.Context, label string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// Without an ntfy topic a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:   topic,
		client:     &http.Client{Timeout: timeout},
		sendBatch:  cfg.Notifications.Batch,
		sendErrors: cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	sendBatch  bool
	sendErrors bool
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, count int) error {
	if !n.sendBatch {
		return nil
	}
	data := payload{
		title:   "Sleeve - Run Started",
		message: fmt.Sprintf("Resolving covers for %d albums", count),
		tags:    []string{"sleeve", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, saved, failed int, duration time.Duration) error {
	if !n.sendBatch {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var title, message string
	if failed == 0 {
		title = "Sleeve - Run Complete"
		message = fmt.Sprintf("Run complete: %d covers saved in %s", saved, duration)
	} else {
		title = "Sleeve - Run Complete (with errors)"
		message = fmt.Sprintf("Run complete: %d saved, %d failed in %s", saved, failed, duration)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"sleeve", "run", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyItemFailed(ctx context.Context, label string, err error) error {
	if !n.sendErrors {
		return nil
	}
	message := "Failed: " + strings.TrimSpace(label)
	if err != nil {
		message += "\n" + strings.TrimSpace(err.Error())
	}
	data := payload{
		title:    "Sleeve - Item Failed",
		message:  message,
		tags:     []string{"sleeve", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Sleeve - Test",
		message:  "Notification system test",
		tags:     []string{"sleeve", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, int) error                       { return nil }
func (noopService) NotifyRunCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyItemFailed(context.Context, string, error) error             { return nil }
func (noopService) TestNotification(context.Context) error                            { return nil }
