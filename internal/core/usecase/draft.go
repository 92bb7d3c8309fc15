package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
	"github.com/quoteflowhq/quoteflow/internal/core/ports"
	"github.com/quoteflowhq/quoteflow/internal/markdown"
)

type DraftQuoteUseCase struct {
	repo        ports.QuoteRepository
	profiles    ports.CompanyProfileRepository
	subs        ports.SubscriptionRepository
	storage     ports.ObjectStorage
	generator   ports.DraftGenerator
	transcriber ports.Transcriber
	renderer    ports.DocumentRenderer
	queue       ports.MessageQueue

	baseURL   string
	freeLimit int
}

func NewDraftQuoteUseCase(
	repo ports.QuoteRepository,
	profiles ports.CompanyProfileRepository,
	subs ports.SubscriptionRepository,
	storage ports.ObjectStorage,
	generator ports.DraftGenerator,
	transcriber ports.Transcriber,
	renderer ports.DocumentRenderer,
	queue ports.MessageQueue,
	baseURL string,
	freeLimit int,
) *DraftQuoteUseCase {
	return &DraftQuoteUseCase{
		repo:        repo,
		profiles:    profiles,
		subs:        subs,
		storage:     storage,
		generator:   generator,
		transcriber: transcriber,
		renderer:    renderer,
		queue:       queue,
		baseURL:     baseURL,
		freeLimit:   freeLimit,
	}
}

func (uc *DraftQuoteUseCase) Draft(ctx context.Context, req ports.DraftRequest) (*ports.DraftResponse, error) {
	if req.OwnerID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "draft quote", errors.New("owner id is required"))
	}

	if err := uc.checkQuoteLimit(ctx, req); err != nil {
		return nil, err
	}

	jobDescription := strings.TrimSpace(req.JobDescription)
	if req.Audio != nil {
		transcript, err := uc.transcriber.Transcribe(ctx, req.Audio, req.AudioFilename, req.AudioMime)
		if err != nil {
			return nil, fmt.Errorf("transcribe voice note: %w", err)
		}
		jobDescription = strings.TrimSpace(transcript)
	}
	if jobDescription == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "draft quote", errors.New("a job description is required"))
	}

	draft, err := uc.generator.GenerateDraft(ctx, jobDescription, req.Image, req.ImageMime)
	if err != nil {
		return nil, fmt.Errorf("generate draft: %w", err)
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	quoteID := uuid.NewString()

	var imageURL string
	if len(req.Image) > 0 {
		key := photoKey(quoteID, req.ImageMime, now)
		if err := uc.storage.Save(ctx, key, bytes.NewReader(req.Image)); err != nil {
			return nil, fmt.Errorf("store site photo: %w", err)
		}
		imageURL = key
	}

	profile, err := uc.profiles.GetByOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("load company profile: %w", err)
	}
	var logo []byte
	if profile != nil {
		logo = loadObject(ctx, uc.storage, profile.LogoURL)
	}

	pdfBytes, err := uc.renderer.RenderDraft(markdown.Sanitize(draft.Body), profile, logo)
	if err != nil {
		return nil, fmt.Errorf("render draft pdf: %w", err)
	}
	documentKey := pdfKey(draft.Title, now)
	if err := uc.storage.Save(ctx, documentKey, bytes.NewReader(pdfBytes)); err != nil {
		return nil, fmt.Errorf("store draft pdf: %w", err)
	}

	quote := &domain.Quote{
		ID:               quoteID,
		OwnerID:          req.OwnerID,
		Title:            draft.Title,
		JobDescription:   jobDescription,
		GeneratedContent: draft.Body,
		ImageURL:         imageURL,
		DocumentURL:      publicURL(uc.baseURL, documentKey),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}

	return &ports.DraftResponse{
		QuoteID:        quote.ID,
		Title:          draft.Title,
		Message:        draft.Message,
		DocumentURL:    quote.DocumentURL,
		RequiredInputs: draft.RequiredInputs,
	}, nil
}

// checkQuoteLimit enforces the free-tier monthly cap. Hitting the cap
// queues a notification email and fails the request; the email itself is
// best-effort.
func (uc *DraftQuoteUseCase) checkQuoteLimit(ctx context.Context, req ports.DraftRequest) error {
	sub, err := uc.subs.GetByOwner(ctx, req.OwnerID)
	if err != nil {
		return fmt.Errorf("load subscription: %w", err)
	}
	if sub.ActiveTier(time.Now().UTC()) != domain.PlanFree {
		return nil
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	count, err := uc.repo.CountCreatedSince(ctx, req.OwnerID, monthStart)
	if err != nil {
		return fmt.Errorf("count quotes this month: %w", err)
	}
	if count < uc.freeLimit {
		return nil
	}

	if req.OwnerEmail != "" {
		msg := domain.EmailMessage{
			Kind: domain.EmailQuoteLimitReached,
			To:   req.OwnerEmail,
			Params: map[string]string{
				"quote_limit": strconv.Itoa(uc.freeLimit),
			},
		}
		if err := uc.queue.PublishEmailRequested(ctx, msg); err != nil {
			slog.Warn("publish limit email failed", "owner_id", req.OwnerID, "error", err)
		}
	}
	return domain.WrapError(domain.ErrQuoteLimit, "check quote limit",
		fmt.Errorf("%d quotes created this month", count))
}
