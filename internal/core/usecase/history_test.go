package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
)

func newReadUseCase(repo *fakeQuoteRepo, profiles *fakeProfileRepo, renderer *fakeRenderer) (*QuoteReadUseCase, *fakeStorage) {
	storage := newFakeStorage()
	uc := NewQuoteReadUseCase(repo, profiles, storage, renderer, "https://api.example.com")
	return uc, storage
}

func TestHistoryPaging(t *testing.T) {
	repo := newFakeQuoteRepo()
	for _, id := range []string{"q-1", "q-2", "q-3"} {
		repo.quotes[id] = &domain.Quote{ID: id, OwnerID: "user-1", CreatedAt: time.Now().UTC()}
	}
	uc, _ := newReadUseCase(repo, &fakeProfileRepo{}, &fakeRenderer{})

	page, err := uc.History(context.Background(), "user-1", 1, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if page.TotalQuotes != 3 {
		t.Fatalf("expected 3 total, got %d", page.TotalQuotes)
	}
	if page.TotalPages != 2 {
		t.Fatalf("expected 2 pages, got %d", page.TotalPages)
	}
	if page.CurrentPage != 1 {
		t.Fatalf("expected page 1, got %d", page.CurrentPage)
	}
	if len(page.Quotes) != 2 {
		t.Fatalf("expected 2 quotes on page, got %d", len(page.Quotes))
	}
}

func TestHistoryDefaultsAndEmpty(t *testing.T) {
	uc, _ := newReadUseCase(newFakeQuoteRepo(), &fakeProfileRepo{}, &fakeRenderer{})

	page, err := uc.History(context.Background(), "user-1", 0, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if page.CurrentPage != 1 {
		t.Fatalf("page must default to 1, got %d", page.CurrentPage)
	}
	if page.Quotes == nil {
		t.Fatal("quotes must serialize as an empty list, not null")
	}
}

func TestSourceIncludesHTMLPreviewAndTerms(t *testing.T) {
	repo := newFakeQuoteRepo()
	seedQuote(repo)
	profiles := &fakeProfileRepo{profile: &domain.CompanyProfile{
		OwnerID:            "user-1",
		TermsAndConditions: "Payment due within 14 days.",
	}}
	uc, _ := newReadUseCase(repo, profiles, &fakeRenderer{})

	src, err := uc.Source(context.Background(), "user-1", "q-1")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if !strings.Contains(src.Markdown, "### Scope of Work") {
		t.Fatal("markdown source must be returned as stored")
	}
	if src.Terms != "Payment due within 14 days." {
		t.Fatalf("unexpected terms: %q", src.Terms)
	}
	if !strings.Contains(src.HTML, "<h3") {
		t.Fatalf("expected rendered headings in preview: %s", src.HTML)
	}
	if !strings.Contains(src.HTML, "<table>") {
		t.Fatalf("expected GFM table in preview: %s", src.HTML)
	}
}

func TestRegenerateRejectsEmptyMarkdown(t *testing.T) {
	repo := newFakeQuoteRepo()
	seedQuote(repo)
	uc, _ := newReadUseCase(repo, &fakeProfileRepo{}, &fakeRenderer{})

	_, err := uc.Regenerate(context.Background(), "user-1", "q-1", "   ", nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestRegenerateRendersWithTermsOverride(t *testing.T) {
	repo := newFakeQuoteRepo()
	seedQuote(repo)
	renderer := &fakeRenderer{}
	uc, storage := newReadUseCase(repo, &fakeProfileRepo{}, renderer)

	updated := "### Scope of Work\n- Remove old fence\n- Install new fence\n- Paint the fence"
	terms := "Deposit of 50% required."
	resp, err := uc.Regenerate(context.Background(), "user-1", "q-1", updated, &terms)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if !strings.HasPrefix(resp.DocumentURL, "https://api.example.com/pdfs/") {
		t.Fatalf("unexpected document url: %s", resp.DocumentURL)
	}
	if renderer.gotTerms != terms {
		t.Fatalf("terms override not applied: %q", renderer.gotTerms)
	}
	if repo.finalizedMD != updated {
		t.Fatal("updated markdown must be persisted")
	}
	if _, ok := storage.keyWithPrefix("pdfs/"); !ok {
		t.Fatal("expected stored regenerated pdf")
	}
}
