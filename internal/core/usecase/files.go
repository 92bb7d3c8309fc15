package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/quoteflowhq/quoteflow/internal/core/ports"
)

// sanitizeTitle lowercases, hyphenates whitespace and strips everything
// outside [a-z0-9-]. An empty result falls back to "quote".
func sanitizeTitle(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	lowered = strings.Join(strings.Fields(lowered), "-")
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return -1
		}
	}, lowered)
	if cleaned == "" {
		return "quote"
	}
	return cleaned
}

// pdfKey builds the storage key for a rendered document. The millisecond
// timestamp makes collisions structurally impossible without existence
// checks.
func pdfKey(title string, now time.Time) string {
	return fmt.Sprintf("pdfs/%s-%d.pdf", sanitizeTitle(title), now.UnixMilli())
}

func photoKey(id, mimeType string, now time.Time) string {
	ext := ".img"
	switch mimeType {
	case "image/png":
		ext = ".png"
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	case "image/gif":
		ext = ".gif"
	case "image/webp":
		ext = ".webp"
	}
	return fmt.Sprintf("photos/%s-%d%s", id, now.UnixMilli(), ext)
}

// publicURL prefixes a storage key with the externally reachable base.
func publicURL(baseURL, key string) string {
	if baseURL == "" {
		return key
	}
	return strings.TrimRight(baseURL, "/") + "/" + key
}

// loadObject reads a stored blob in full. Missing or unreadable objects
// come back as nil so letterhead assets stay optional.
func loadObject(ctx context.Context, storage ports.ObjectStorage, key string) []byte {
	if key == "" {
		return nil
	}
	rc, err := storage.Open(ctx, key)
	if err != nil {
		slog.Warn("stored object not readable", "key", key, "error", err)
		return nil
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		slog.Warn("stored object read failed", "key", key, "error", err)
		return nil
	}
	return data
}
