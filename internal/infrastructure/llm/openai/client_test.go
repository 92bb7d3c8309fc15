package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
	"github.com/quoteflowhq/quoteflow/internal/infrastructure/resilience"
)

func newFailingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad request","type":"invalid_request_error"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateDraftFailureFiresHook(t *testing.T) {
	srv := newFailingServer(t)

	c := New("test-key", srv.URL, "gpt-4o", "whisper-1", resilience.NewExecutor(resilience.Config{MaxAttempts: 1}))
	var operations []string
	c.SetFailureHook(func(operation string) { operations = append(operations, operation) })

	_, err := c.GenerateDraft(context.Background(), "replace the back fence", nil, "")
	if !domain.IsKind(err, domain.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
	if len(operations) != 1 || operations[0] != "generate_draft" {
		t.Fatalf("unexpected failure hook calls: %v", operations)
	}
}

func TestGenerateDraftFailureWithoutHook(t *testing.T) {
	srv := newFailingServer(t)

	c := New("test-key", srv.URL, "gpt-4o", "whisper-1", resilience.NewExecutor(resilience.Config{MaxAttempts: 1}))
	if _, err := c.GenerateDraft(context.Background(), "replace the back fence", nil, ""); err == nil {
		t.Fatal("expected error")
	}
}
