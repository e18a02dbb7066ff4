package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"batchenc/internal/config"
	"batchenc/internal/notifications"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, requests *[]capturedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		*requests = append(*requests, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventExecuteCompleted, notifications.Payload{"executed": 4}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:          "commands generated",
			event:         notifications.EventCommandsGenerated,
			payload:       notifications.Payload{"commands": 4, "cuts": 1, "file": "commands.txt"},
			expectTitle:   "batchenc - Commands Ready",
			expectMessage: "📝 4 commands for 1 cuts written to commands.txt",
			expectTags:    "batchenc,generate",
		},
		{
			name:          "execute completed",
			event:         notifications.EventExecuteCompleted,
			payload:       notifications.Payload{"executed": 4, "failed": 0, "duration": 90 * time.Second},
			expectTitle:   "batchenc - Encodes Finished",
			expectMessage: "🎞️ 4 commands finished in 1m30s",
			expectTags:    "batchenc,execute,completed",
		},
		{
			name:           "execute with failures",
			event:          notifications.EventExecuteCompleted,
			payload:        notifications.Payload{"executed": 4, "failed": 1},
			expectTitle:    "batchenc - Encodes Finished With Failures",
			expectMessage:  "🎞️ 4 commands finished\n1 failed",
			expectTags:     "batchenc,execute,completed,warning",
			expectPriority: "high",
		},
		{
			name:           "error",
			event:          notifications.EventError,
			payload:        notifications.Payload{"context": "execute", "error": errors.New("disk full")},
			expectTitle:    "batchenc - Error",
			expectMessage:  "❌ Error during execute: disk full",
			expectTags:     "batchenc,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "batchenc - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "batchenc,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var requests []capturedRequest
			server := newCaptureServer(t, &requests)

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.OnGenerate = true

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}
			if len(requests) != 1 {
				t.Fatalf("expected one request, got %d", len(requests))
			}
			got := requests[0]
			if got.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, got.title)
			}
			if got.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, got.body)
			}
			if got.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, got.tags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, got.priority)
			}
		})
	}
}

func TestNtfyServiceSkipsGenerateUnlessEnabled(t *testing.T) {
	var requests []capturedRequest
	server := newCaptureServer(t, &requests)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventCommandsGenerated, notifications.Payload{"commands": 4}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(requests) != 0 {
		t.Fatalf("expected generate event to be suppressed, got %+v", requests)
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic closed", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil || !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "topic closed") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}

func TestNtfyServiceRejectsUnknownEvent(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = "http://127.0.0.1:1"
	if err := notifications.NewService(&cfg).Publish(context.Background(), notifications.Event("bogus"), nil); err == nil {
		t.Fatal("expected error for unknown event")
	}
}
