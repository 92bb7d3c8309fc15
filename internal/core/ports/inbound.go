package ports

import (
	"context"
	"io"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
)

// DraftRequest is the inbound payload for draft generation. Audio, when
// present, is transcribed and replaces JobDescription.
type DraftRequest struct {
	OwnerID        string
	OwnerEmail     string
	JobDescription string
	Image          []byte
	ImageMime      string
	Audio          io.Reader
	AudioFilename  string
	AudioMime      string
}

type DraftResponse struct {
	QuoteID        string                `json:"quoteId"`
	Title          string                `json:"title"`
	Message        string                `json:"message"`
	DocumentURL    string                `json:"pdfUrl"`
	RequiredInputs []domain.InputSection `json:"requiredInputs"`
}

type HistoryPage struct {
	Quotes      []domain.Quote `json:"quotes"`
	TotalQuotes int            `json:"totalQuotes"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

type SourceResponse struct {
	Markdown string `json:"markdown"`
	Terms    string `json:"terms"`
	HTML     string `json:"html"`
}

type RegenerateResponse struct {
	DocumentURL string `json:"newPdfUrl"`
}

// QuoteDrafter is the inbound contract for draft generation.
type QuoteDrafter interface {
	Draft(ctx context.Context, req DraftRequest) (*DraftResponse, error)
}

// QuoteFinalizer runs the streaming finalization pipeline. The returned
// channel delivers section events in completion order and is always
// closed after exactly one terminal event (done or error).
type QuoteFinalizer interface {
	Finalize(ctx context.Context, ownerID, quoteID string, details map[string]string, title string) <-chan domain.StreamEvent
}

// QuoteReader is the inbound read/maintenance surface for quotes.
type QuoteReader interface {
	History(ctx context.Context, ownerID string, page, limit int) (*HistoryPage, error)
	Source(ctx context.Context, ownerID, quoteID string) (*SourceResponse, error)
	Regenerate(ctx context.Context, ownerID, quoteID, updatedMarkdown string, updatedTerms *string) (*RegenerateResponse, error)
}
