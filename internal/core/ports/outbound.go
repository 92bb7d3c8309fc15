package ports

import (
	"context"
	"io"
	"time"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
)

// QuoteRepository persists and reads quote state. Finalize must update
// title, content and document reference as a single atomic write.
type QuoteRepository interface {
	Create(ctx context.Context, quote *domain.Quote) error
	GetByID(ctx context.Context, id string) (*domain.Quote, error)
	GetByOwner(ctx context.Context, id, ownerID string) (*domain.Quote, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Quote, int, error)
	Finalize(ctx context.Context, id, ownerID, title, content, documentURL string) error
	CountCreatedSince(ctx context.Context, ownerID string, since time.Time) (int, error)
}

// CompanyProfileRepository reads letterhead data. A missing profile is
// returned as (nil, nil); quotes render fine without one.
type CompanyProfileRepository interface {
	GetByOwner(ctx context.Context, ownerID string) (*domain.CompanyProfile, error)
}

// SubscriptionRepository reads the billing provider's mirrored state.
// A missing row is returned as (nil, nil) and means the free tier.
type SubscriptionRepository interface {
	GetByOwner(ctx context.Context, ownerID string) (*domain.Subscription, error)
}

// ObjectStorage stores uploaded images and rendered documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// DraftGenerator produces the structured draft from a job description,
// optionally grounded on a site photo.
type DraftGenerator interface {
	GenerateDraft(ctx context.Context, jobDescription string, image []byte, imageMime string) (*domain.DraftResult, error)
}

// TokenStream is an ordered sequence of text fragments from the model.
type TokenStream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// FinalStreamer opens the incremental finalization stream.
type FinalStreamer interface {
	StreamFinal(ctx context.Context, prompt domain.FinalizePrompt) (TokenStream, error)
}

// Transcriber converts an uploaded voice note to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, mimeType string) (string, error)
}

// DocumentRenderer turns finalized markdown into PDF bytes.
type DocumentRenderer interface {
	RenderFinal(md string, profile *domain.CompanyProfile, logo, photo []byte, photoRef string) ([]byte, error)
	RenderDraft(md string, profile *domain.CompanyProfile, logo []byte) ([]byte, error)
}

// MessageQueue publishes/consumes outbound email events.
type MessageQueue interface {
	PublishEmailRequested(ctx context.Context, msg domain.EmailMessage) error
	SubscribeEmailRequested(ctx context.Context, handler func(context.Context, domain.EmailMessage) error) error
}

// EmailSender delivers one rendered email.
type EmailSender interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}

// TokenVerifier validates a bearer token and yields the caller's user id.
// Token issuance lives with the external auth service.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
