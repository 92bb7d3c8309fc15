package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
	"github.com/quoteflowhq/quoteflow/internal/core/ports"
)

const draftBody = "### Scope of Work\n- Remove old fence\n- Install new fence\n\n### Summary\n| Items | Cost |\n|---|---|\n| Fence | $500 |\n| Total Cost | $500 |"

func validDraftResult() *domain.DraftResult {
	return &domain.DraftResult{
		Title:   "Fence Replacement",
		Body:    draftBody,
		Message: "Draft ready, fill in the client details.",
	}
}

func newDraftUseCase(repo *fakeQuoteRepo, subs *fakeSubsRepo, gen *fakeGenerator, tr *fakeTranscriber, queue *fakeQueue) (*DraftQuoteUseCase, *fakeStorage, *fakeRenderer) {
	storage := newFakeStorage()
	renderer := &fakeRenderer{}
	uc := NewDraftQuoteUseCase(repo, &fakeProfileRepo{}, subs, storage, gen, tr, renderer, queue, "https://api.example.com", 2)
	return uc, storage, renderer
}

func TestDraftSuccess(t *testing.T) {
	repo := newFakeQuoteRepo()
	gen := &fakeGenerator{result: validDraftResult()}
	uc, storage, _ := newDraftUseCase(repo, &fakeSubsRepo{}, gen, &fakeTranscriber{}, &fakeQueue{})

	resp, err := uc.Draft(context.Background(), ports.DraftRequest{
		OwnerID:        "user-1",
		JobDescription: "Replace the back fence",
		Image:          []byte{0x89, 0x50, 0x4e, 0x47},
		ImageMime:      "image/png",
	})
	if err != nil {
		t.Fatalf("draft: %v", err)
	}

	if resp.QuoteID == "" {
		t.Fatal("expected a quote id")
	}
	if !strings.HasPrefix(resp.DocumentURL, "https://api.example.com/pdfs/fence-replacement-") {
		t.Fatalf("unexpected document url: %s", resp.DocumentURL)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 created quote, got %d", len(repo.created))
	}
	if repo.created[0].GeneratedContent != draftBody {
		t.Fatal("stored content must be the raw draft body")
	}
	if _, ok := storage.keyWithPrefix("pdfs/"); !ok {
		t.Fatal("expected stored draft pdf")
	}
	if _, ok := storage.keyWithPrefix("photos/"); !ok {
		t.Fatal("expected stored site photo")
	}
	if _, ok := domainSection(resp.RequiredInputs, "Bill To"); !ok {
		t.Fatal("expected repaired Bill To section")
	}
	if _, ok := domainSection(resp.RequiredInputs, "Quote Details"); !ok {
		t.Fatal("expected repaired Quote Details section")
	}
}

func domainSection(sections []domain.InputSection, label string) (domain.InputSection, bool) {
	for _, s := range sections {
		if s.Label == label {
			return s, true
		}
	}
	return domain.InputSection{}, false
}

func TestDraftTranscribesVoiceNote(t *testing.T) {
	repo := newFakeQuoteRepo()
	gen := &fakeGenerator{result: validDraftResult()}
	tr := &fakeTranscriber{text: "Paint two bedrooms and the hallway"}
	uc, _, _ := newDraftUseCase(repo, &fakeSubsRepo{}, gen, tr, &fakeQueue{})

	_, err := uc.Draft(context.Background(), ports.DraftRequest{
		OwnerID:       "user-1",
		Audio:         strings.NewReader("fake-ogg-bytes"),
		AudioFilename: "note.ogg",
		AudioMime:     "audio/ogg",
	})
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if gen.gotDesc != "Paint two bedrooms and the hallway" {
		t.Fatalf("generator got %q, want transcript", gen.gotDesc)
	}
}

func TestDraftRejectsEmptyDescription(t *testing.T) {
	repo := newFakeQuoteRepo()
	gen := &fakeGenerator{result: validDraftResult()}
	uc, _, _ := newDraftUseCase(repo, &fakeSubsRepo{}, gen, &fakeTranscriber{}, &fakeQueue{})

	_, err := uc.Draft(context.Background(), ports.DraftRequest{
		OwnerID:        "user-1",
		JobDescription: "   ",
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatal("generator must not run without a description")
	}
}

func TestDraftFreeTierLimit(t *testing.T) {
	repo := newFakeQuoteRepo()
	repo.count = 2
	gen := &fakeGenerator{result: validDraftResult()}
	queue := &fakeQueue{}
	uc, _, _ := newDraftUseCase(repo, &fakeSubsRepo{}, gen, &fakeTranscriber{}, queue)

	_, err := uc.Draft(context.Background(), ports.DraftRequest{
		OwnerID:        "user-1",
		OwnerEmail:     "owner@example.com",
		JobDescription: "Replace the back fence",
	})
	if !domain.IsKind(err, domain.ErrQuoteLimit) {
		t.Fatalf("expected quote limit error, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatal("generator must not run past the limit")
	}
	if len(queue.published) != 1 || queue.published[0].Kind != domain.EmailQuoteLimitReached {
		t.Fatalf("expected limit email, got %+v", queue.published)
	}
}

func TestDraftProTierSkipsLimit(t *testing.T) {
	repo := newFakeQuoteRepo()
	repo.count = 50
	gen := &fakeGenerator{result: validDraftResult()}
	subs := &fakeSubsRepo{sub: &domain.Subscription{OwnerID: "user-1", Tier: domain.PlanPro}}
	uc, _, _ := newDraftUseCase(repo, subs, gen, &fakeTranscriber{}, &fakeQueue{})

	_, err := uc.Draft(context.Background(), ports.DraftRequest{
		OwnerID:        "user-1",
		JobDescription: "Replace the back fence",
	})
	if err != nil {
		t.Fatalf("pro tier must not be limited: %v", err)
	}
}

func TestDraftRejectsEmptyModelReply(t *testing.T) {
	repo := newFakeQuoteRepo()
	gen := &fakeGenerator{result: &domain.DraftResult{Title: "", Body: ""}}
	uc, _, _ := newDraftUseCase(repo, &fakeSubsRepo{}, gen, &fakeTranscriber{}, &fakeQueue{})

	_, err := uc.Draft(context.Background(), ports.DraftRequest{
		OwnerID:        "user-1",
		JobDescription: "Replace the back fence",
	})
	if !domain.IsKind(err, domain.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("nothing must be persisted on a bad draft")
	}
}
