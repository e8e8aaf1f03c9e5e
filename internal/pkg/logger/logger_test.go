package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithRequestIDTagsEvents(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithContext(context.Background(), &base)
	ctx = WithRequestID(ctx, "req-42")

	LogInfo(ctx, "wallet credited", "owner_id", "abc", "change", 5, "dangling")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["request_id"] != "req-42" {
		t.Fatalf("expected request_id req-42, got %v", entry["request_id"])
	}
	if entry["owner_id"] != "abc" {
		t.Fatalf("expected owner_id abc, got %v", entry["owner_id"])
	}
	if _, ok := entry["dangling"]; ok {
		t.Fatalf("unpaired key must be dropped")
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatalf("expected global logger")
	}
}
