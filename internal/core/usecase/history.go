package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
	"github.com/quoteflowhq/quoteflow/internal/core/ports"
	"github.com/quoteflowhq/quoteflow/internal/markdown"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// QuoteReadUseCase serves quote history, markdown source for editing and
// one-off PDF regeneration from edited source.
type QuoteReadUseCase struct {
	repo     ports.QuoteRepository
	profiles ports.CompanyProfileRepository
	storage  ports.ObjectStorage
	renderer ports.DocumentRenderer
	baseURL  string

	md goldmark.Markdown
}

func NewQuoteReadUseCase(
	repo ports.QuoteRepository,
	profiles ports.CompanyProfileRepository,
	storage ports.ObjectStorage,
	renderer ports.DocumentRenderer,
	baseURL string,
) *QuoteReadUseCase {
	return &QuoteReadUseCase{
		repo:     repo,
		profiles: profiles,
		storage:  storage,
		renderer: renderer,
		baseURL:  baseURL,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

func (uc *QuoteReadUseCase) History(ctx context.Context, ownerID string, page, limit int) (*ports.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	quotes, total, err := uc.repo.ListByOwner(ctx, ownerID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	if quotes == nil {
		quotes = []domain.Quote{}
	}
	return &ports.HistoryPage{
		Quotes:      quotes,
		TotalQuotes: total,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
	}, nil
}

func (uc *QuoteReadUseCase) Source(ctx context.Context, ownerID, quoteID string) (*ports.SourceResponse, error) {
	quote, err := uc.repo.GetByOwner(ctx, quoteID, ownerID)
	if err != nil {
		return nil, err
	}
	profile, err := uc.profiles.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load company profile: %w", err)
	}
	terms := ""
	if profile != nil {
		terms = profile.TermsAndConditions
	}

	var buf bytes.Buffer
	if err := uc.md.Convert([]byte(quote.GeneratedContent), &buf); err != nil {
		return nil, fmt.Errorf("render markdown preview: %w", err)
	}
	return &ports.SourceResponse{
		Markdown: quote.GeneratedContent,
		Terms:    terms,
		HTML:     buf.String(),
	}, nil
}

func (uc *QuoteReadUseCase) Regenerate(ctx context.Context, ownerID, quoteID, updatedMarkdown string, updatedTerms *string) (*ports.RegenerateResponse, error) {
	if strings.TrimSpace(updatedMarkdown) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "regenerate quote", errors.New("updated markdown is required"))
	}
	quote, err := uc.repo.GetByOwner(ctx, quoteID, ownerID)
	if err != nil {
		return nil, err
	}
	profile, err := uc.profiles.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load company profile: %w", err)
	}
	if updatedTerms != nil {
		if profile == nil {
			profile = &domain.CompanyProfile{OwnerID: ownerID}
		} else {
			clone := *profile
			profile = &clone
		}
		profile.TermsAndConditions = *updatedTerms
	}

	var logo []byte
	companyName := ""
	if profile != nil {
		logo = loadObject(ctx, uc.storage, profile.LogoURL)
		companyName = profile.Name
	}
	photo := loadObject(ctx, uc.storage, quote.ImageURL)

	pdfBytes, err := uc.renderer.RenderFinal(markdown.Sanitize(updatedMarkdown), profile, logo, photo, quote.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("render updated pdf: %w", err)
	}
	documentKey := pdfKey(companyName, time.Now().UTC())
	if err := uc.storage.Save(ctx, documentKey, bytes.NewReader(pdfBytes)); err != nil {
		return nil, fmt.Errorf("store updated pdf: %w", err)
	}

	documentURL := publicURL(uc.baseURL, documentKey)
	if err := uc.repo.Finalize(ctx, quoteID, ownerID, quote.Title, updatedMarkdown, documentURL); err != nil {
		return nil, err
	}
	return &ports.RegenerateResponse{DocumentURL: documentURL}, nil
}
