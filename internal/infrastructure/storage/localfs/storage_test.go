package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenNestedKey(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Save(ctx, "pdfs/fence-quote-123.pdf", strings.NewReader("%PDF-1.4 data")); err != nil {
		t.Fatalf("save: %v", err)
	}

	rc, err := store.Open(ctx, "pdfs/fence-quote-123.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.4 data" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestOpenMissingKey(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	if _, err := store.Open(context.Background(), "pdfs/nope.pdf"); err == nil {
		t.Fatal("expected error for missing object")
	}
}
