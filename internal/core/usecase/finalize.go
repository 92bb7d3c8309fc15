package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
	"github.com/quoteflowhq/quoteflow/internal/core/ports"
	"github.com/quoteflowhq/quoteflow/internal/markdown"
)

// FinalizeQuoteUseCase runs the streaming finalization pipeline: it
// replays the preserved scope of work into a fresh model pass, emits
// sections as they complete, renders the final PDF and persists the
// result. The caller consumes events from the returned channel; the
// pipeline itself never depends on the consumer staying connected.
type FinalizeQuoteUseCase struct {
	repo     ports.QuoteRepository
	profiles ports.CompanyProfileRepository
	storage  ports.ObjectStorage
	streamer ports.FinalStreamer
	renderer ports.DocumentRenderer
	queue    ports.MessageQueue
	baseURL  string
}

func NewFinalizeQuoteUseCase(
	repo ports.QuoteRepository,
	profiles ports.CompanyProfileRepository,
	storage ports.ObjectStorage,
	streamer ports.FinalStreamer,
	renderer ports.DocumentRenderer,
	queue ports.MessageQueue,
	baseURL string,
) *FinalizeQuoteUseCase {
	return &FinalizeQuoteUseCase{
		repo:     repo,
		profiles: profiles,
		storage:  storage,
		streamer: streamer,
		renderer: renderer,
		queue:    queue,
		baseURL:  baseURL,
	}
}

func (uc *FinalizeQuoteUseCase) Finalize(ctx context.Context, ownerID, quoteID string, details map[string]string, title string) <-chan domain.StreamEvent {
	events := make(chan domain.StreamEvent, 16)
	go uc.run(ctx, ownerID, quoteID, details, title, events)
	return events
}

func (uc *FinalizeQuoteUseCase) run(ctx context.Context, ownerID, quoteID string, details map[string]string, title string, events chan<- domain.StreamEvent) {
	defer close(events)

	quote, err := uc.repo.GetByOwner(ctx, quoteID, ownerID)
	if err != nil {
		events <- domain.ErrorEvent(userMessage(err))
		return
	}

	scope, ok := markdown.ExtractScope(quote.GeneratedContent)
	if !ok {
		err := domain.WrapError(domain.ErrMissingScope, "finalize quote", fmt.Errorf("quote %s", quoteID))
		events <- domain.ErrorEvent(userMessage(err))
		return
	}

	profile, err := uc.profiles.GetByOwner(ctx, ownerID)
	if err != nil {
		events <- domain.ErrorEvent("Failed to load company profile.")
		return
	}
	var logo []byte
	if profile != nil {
		logo = loadObject(ctx, uc.storage, profile.LogoURL)
	}
	photo := loadObject(ctx, uc.storage, quote.ImageURL)

	finalTitle := title
	if finalTitle == "" {
		finalTitle = quote.Title
	}

	prompt := domain.FinalizePrompt{
		JobDescription: quote.JobDescription,
		Details:        details,
		Profile:        profile,
		HasSitePhoto:   len(photo) > 0,
		QuoteTitle:     finalTitle,
		PreservedScope: scope,
	}
	stream, err := uc.streamer.StreamFinal(ctx, prompt)
	if err != nil {
		events <- domain.ErrorEvent("Failed to start quote generation.")
		return
	}
	defer stream.Close()

	splitter := markdown.NewSectionStream()
	for stream.Next() {
		for _, section := range splitter.Feed(stream.Current()) {
			events <- domain.SectionEvent(section.Title, section.Content)
		}
	}
	if err := stream.Err(); err != nil {
		slog.Error("finalize stream failed", "quote_id", quoteID, "error", err)
		events <- domain.ErrorEvent("Quote generation was interrupted.")
		return
	}
	if section, ok := splitter.Flush(); ok {
		events <- domain.SectionEvent(section.Title, section.Content)
	}

	full := splitter.Full()
	pdfBytes, err := uc.renderer.RenderFinal(markdown.Sanitize(full), profile, logo, photo, quote.ImageURL)
	if err != nil {
		slog.Error("finalize render failed", "quote_id", quoteID, "error", err)
		events <- domain.ErrorEvent("Failed to render the final document.")
		return
	}

	companyName := ""
	if profile != nil {
		companyName = profile.Name
	}
	documentKey := pdfKey(companyName, time.Now().UTC())
	if err := uc.storage.Save(ctx, documentKey, bytes.NewReader(pdfBytes)); err != nil {
		slog.Error("finalize pdf store failed", "quote_id", quoteID, "error", err)
		events <- domain.ErrorEvent("Failed to store the final document.")
		return
	}

	documentURL := publicURL(uc.baseURL, documentKey)
	if err := uc.repo.Finalize(ctx, quoteID, ownerID, finalTitle, full, documentURL); err != nil {
		slog.Error("finalize persist failed", "quote_id", quoteID, "error", err)
		events <- domain.ErrorEvent(userMessage(err))
		return
	}

	uc.notifyFinalized(ctx, profile, finalTitle, documentURL)
	events <- domain.DoneEvent(quoteID, documentURL)
}

// notifyFinalized queues the "your quote is ready" email when the profile
// carries an address. Delivery is best-effort and never fails the stream.
func (uc *FinalizeQuoteUseCase) notifyFinalized(ctx context.Context, profile *domain.CompanyProfile, title, documentURL string) {
	if profile == nil || profile.Email == "" {
		return
	}
	msg := domain.EmailMessage{
		Kind: domain.EmailQuoteFinalized,
		To:   profile.Email,
		Params: map[string]string{
			"quote_title":  title,
			"document_url": documentURL,
		},
	}
	if err := uc.queue.PublishEmailRequested(ctx, msg); err != nil {
		slog.Warn("publish finalized email failed", "to", profile.Email, "error", err)
	}
}

// userMessage maps internal errors to text safe to show the caller.
func userMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrQuoteNotFound), domain.IsKind(err, domain.ErrForbidden):
		return "Quote not found."
	case domain.IsKind(err, domain.ErrMissingScope):
		return "Could not find 'Scope of Work' in the original draft."
	case domain.IsKind(err, domain.ErrInvalidInput):
		return fmt.Sprintf("Invalid request: %v", err)
	default:
		return "Failed to finalize quote."
	}
}
