package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"jobgrid.org/internal/board"
	"jobgrid.org/internal/obs"
	"jobgrid.org/internal/session"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	logger := obs.Logger()
	orig := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(orig) })
	return &buf
}

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
}

func TestLogEventIncludesActorAndRequestID(t *testing.T) {
	buf := captureLog(t)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = session.ContextWithActor(ctx, &board.User{ID: "u-9", UserType: board.UserTypeEmployer})

	if err := LogEvent(ctx, "application.status.update", map[string]any{"application_id": "a-1"}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("audit entry is not valid JSON: %v", err)
	}
	if entry["event"] != "application.status.update" {
		t.Fatalf("unexpected event: %v", entry["event"])
	}
	if entry["request_id"] != "req-1" {
		t.Fatalf("missing request_id: %v", entry)
	}
	if entry["user_id"] != "u-9" || entry["user_type"] != "employer" {
		t.Fatalf("missing actor fields: %v", entry)
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["application_id"] != "a-1" {
		t.Fatalf("missing custom fields: %v", entry)
	}
}
