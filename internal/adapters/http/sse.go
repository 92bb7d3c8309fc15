package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
)

// eventWriter serializes stream events as server-sent events, flushing
// after every event so sections reach the client as they complete.
type eventWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventWriter(w http.ResponseWriter) (*eventWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &eventWriter{w: w, flusher: flusher}, nil
}

func (ew *eventWriter) WriteEvent(ev domain.StreamEvent) error {
	payload, err := json.Marshal(eventPayload(ev))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(ew.w, "event: %s\ndata: %s\n\n", ev.Type, payload); err != nil {
		return err
	}
	ew.flusher.Flush()
	return nil
}

func eventPayload(ev domain.StreamEvent) any {
	switch ev.Type {
	case domain.EventSectionCompleted:
		return map[string]string{
			"title":   ev.Title,
			"content": ev.Content,
		}
	case domain.EventDone:
		return map[string]string{
			"message": ev.Message,
			"quoteId": ev.QuoteID,
			"pdfUrl":  ev.DocumentURL,
		}
	default:
		return map[string]string{"message": ev.Message}
	}
}
