package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newTextLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_LevelsCarryAttachmentAttrs(t *testing.T) {
	log, buf := newTextLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "store opened", "driver", "sqlite")
	log.Info(ctx, "attachment delete retry", "attempt", 2)
	log.Warn(ctx, "attachment payload not removed", "path", "/data/c1/a1")
	log.Error(ctx, "attachment delete failed after retries", "attempts", 11)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		attr  string
	}{
		{"DEBUG", `msg="store opened"`, "driver=sqlite"},
		{"INFO", `msg="attachment delete retry"`, "attempt=2"},
		{"WARN", `msg="attachment payload not removed"`, "path=/data/c1/a1"},
		{"ERROR", `msg="attachment delete failed after retries"`, "attempts=11"},
	}

	for _, tc := range tests {
		if !strings.Contains(out, "level="+tc.level) {
			t.Fatalf("expected level=%s in output:\n%s", tc.level, out)
		}
		if !strings.Contains(out, tc.msg) {
			t.Fatalf("expected %s in output:\n%s", tc.msg, out)
		}
		if !strings.Contains(out, tc.attr) {
			t.Fatalf("expected attribute %s in output:\n%s", tc.attr, out)
		}
	}
}

func TestSlogLogger_WithTagsEveryRecord(t *testing.T) {
	log, buf := newTextLogger(t)
	ctx := context.Background()

	child := log.With("module", "attachments", "cipher_uuid", "c1")
	child.Info(ctx, "purge started")
	child.Info(ctx, "purge finished", "deleted", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 records, got %d:\n%s", len(lines), buf.String())
	}
	for _, line := range lines {
		for _, want := range []string{"module=attachments", "cipher_uuid=c1"} {
			if !strings.Contains(line, want) {
				t.Fatalf("expected %q in %q", want, line)
			}
		}
	}
	if !strings.Contains(lines[1], "deleted=3") {
		t.Fatalf("expected deleted=3 in %q", lines[1])
	}
}

func TestNewJSONLogger_WritesToGivenSinkAtLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, slog.LevelWarn)
	ctx := context.Background()

	log.Info(ctx, "attachment saved", "id", "a1")
	log.Warn(ctx, "attachment payload not removed", "id", "a1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want only the warning, got:\n%s", buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["level"] != "WARN" || rec["msg"] != "attachment payload not removed" || rec["id"] != "a1" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNopLogger_DiscardsOutput(t *testing.T) {
	var l Logger = NewNopLogger()
	ctx := context.TODO()

	l.Debug(ctx, "store opened")
	l.Warn(ctx, "attachment payload not removed")
	l.With("module", "attachments").Error(ctx, "attachment delete failed after retries")
}
