package domain

type StreamEventType string

const (
	EventSectionCompleted StreamEventType = "section_completed"
	EventError            StreamEventType = "error"
	EventDone             StreamEventType = "done"
)

// StreamEvent is one unit of progressive delivery during finalization.
// Exactly one of the terminal types (error, done) ends every stream.
type StreamEvent struct {
	Type StreamEventType

	// section_completed
	Title   string
	Content string

	// error / done
	Message string

	// done
	QuoteID     string
	DocumentURL string
}

func SectionEvent(title, content string) StreamEvent {
	return StreamEvent{Type: EventSectionCompleted, Title: title, Content: content}
}

func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventError, Message: message}
}

func DoneEvent(quoteID, documentURL string) StreamEvent {
	return StreamEvent{
		Type:        EventDone,
		Message:     "Quote has been finalized successfully.",
		QuoteID:     quoteID,
		DocumentURL: documentURL,
	}
}

// Terminal reports whether the event ends the stream.
func (e StreamEvent) Terminal() bool {
	return e.Type == EventError || e.Type == EventDone
}
