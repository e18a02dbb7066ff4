package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"batchenc/internal/config"
)

const userAgent = "batchenc/0.1.0"

// Event names a milestone worth a push notification.
type Event string

const (
	EventCommandsGenerated Event = "commands_generated"
	EventExecuteCompleted  Event = "execute_completed"
	EventError             Event = "error"
	EventTest              Event = "test"
)

// Payload carries the event details. Keys are event specific.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed service, or a no-op when no topic is
// configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil || strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:   strings.TrimSpace(cfg.Notifications.NtfyTopic),
		client:     &http.Client{Timeout: timeout},
		onGenerate: cfg.Notifications.OnGenerate,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	onGenerate bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if event == EventCommandsGenerated && !n.onGenerate {
		return nil
	}
	msg, ok := format(event, payload)
	if !ok {
		return fmt.Errorf("notifications: unsupported event %q", event)
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventCommandsGenerated:
		return message{
			title: "batchenc - Commands Ready",
			body: fmt.Sprintf("📝 %d commands for %d cuts written to %s",
				intValue(payload, "commands"), intValue(payload, "cuts"), stringValue(payload, "file")),
			tags: []string{"batchenc", "generate"},
		}, true
	case EventExecuteCompleted:
		executed := intValue(payload, "executed")
		failed := intValue(payload, "failed")
		msg := message{
			title: "batchenc - Encodes Finished",
			body:  fmt.Sprintf("🎞️ %d commands finished", executed),
			tags:  []string{"batchenc", "execute", "completed"},
		}
		if d, ok := payload["duration"].(time.Duration); ok && d > 0 {
			msg.body += " in " + d.Round(time.Second).String()
		}
		if failed > 0 {
			msg.title = "batchenc - Encodes Finished With Failures"
			msg.body += fmt.Sprintf("\n%d failed", failed)
			msg.tags = append(msg.tags, "warning")
			msg.priority = "high"
		}
		return msg, true
	case EventError:
		var b strings.Builder
		b.WriteString("❌ Error")
		if label := stringValue(payload, "context"); label != "" {
			b.WriteString(" during ")
			b.WriteString(label)
		}
		b.WriteString(": ")
		switch v := payload["error"].(type) {
		case error:
			b.WriteString(strings.TrimSpace(v.Error()))
		case string:
			b.WriteString(strings.TrimSpace(v))
		default:
			b.WriteString("unknown")
		}
		return message{
			title:    "batchenc - Error",
			body:     b.String(),
			tags:     []string{"batchenc", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "batchenc - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"batchenc", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
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

func intValue(p Payload, key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func stringValue(p Payload, key string) string {
	if v, ok := p[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
