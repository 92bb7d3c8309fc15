package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerTagsServiceAndFiltersLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "api", "warn")

	logger.Info("should be filtered")
	logger.Warn("quota nearly exhausted", "owner_id", "user-1")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Fatalf("info record leaked through warn level: %s", out)
	}
	if !strings.Contains(out, `"service":"api"`) {
		t.Fatalf("missing service attribute: %s", out)
	}
	if !strings.Contains(out, `"owner_id":"user-1"`) {
		t.Fatalf("missing structured attribute: %s", out)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "worker", "not-a-level")

	logger.Debug("hidden")
	logger.Info("visible")

	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("debug record leaked through default level")
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Fatal("info record missing at default level")
	}
}
