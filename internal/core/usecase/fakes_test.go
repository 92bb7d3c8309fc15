package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
	"github.com/quoteflowhq/quoteflow/internal/core/ports"
)

type fakeQuoteRepo struct {
	quotes map[string]*domain.Quote
	count  int

	created      []*domain.Quote
	finalized    bool
	finalizedMD  string
	finalizedDoc string
	countErr     error
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{quotes: map[string]*domain.Quote{}}
}

func (r *fakeQuoteRepo) Create(_ context.Context, quote *domain.Quote) error {
	r.created = append(r.created, quote)
	r.quotes[quote.ID] = quote
	return nil
}

func (r *fakeQuoteRepo) GetByID(_ context.Context, id string) (*domain.Quote, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrQuoteNotFound, "get quote", errors.New("missing"))
	}
	return q, nil
}

func (r *fakeQuoteRepo) GetByOwner(ctx context.Context, id, ownerID string) (*domain.Quote, error) {
	q, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.OwnerID != ownerID {
		return nil, domain.WrapError(domain.ErrForbidden, "get quote", errors.New("foreign quote"))
	}
	return q, nil
}

func (r *fakeQuoteRepo) ListByOwner(_ context.Context, ownerID string, limit, offset int) ([]domain.Quote, int, error) {
	var all []domain.Quote
	for _, q := range r.quotes {
		if q.OwnerID == ownerID {
			all = append(all, *q)
		}
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *fakeQuoteRepo) Finalize(_ context.Context, id, ownerID, title, content, documentURL string) error {
	q, ok := r.quotes[id]
	if !ok || q.OwnerID != ownerID {
		return domain.WrapError(domain.ErrQuoteNotFound, "finalize quote", errors.New("missing"))
	}
	r.finalized = true
	r.finalizedMD = content
	r.finalizedDoc = documentURL
	q.Title = title
	q.GeneratedContent = content
	q.DocumentURL = documentURL
	return nil
}

func (r *fakeQuoteRepo) CountCreatedSince(_ context.Context, _ string, _ time.Time) (int, error) {
	return r.count, r.countErr
}

type fakeProfileRepo struct {
	profile *domain.CompanyProfile
	err     error
}

func (r *fakeProfileRepo) GetByOwner(context.Context, string) (*domain.CompanyProfile, error) {
	return r.profile, r.err
}

type fakeSubsRepo struct {
	sub *domain.Subscription
	err error
}

func (r *fakeSubsRepo) GetByOwner(context.Context, string) (*domain.Subscription, error) {
	return r.sub, r.err
}

type fakeStorage struct {
	objects map[string][]byte
	saveErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.objects[key] = buf
	return nil
}

func (s *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) keyWithPrefix(prefix string) (string, bool) {
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			return key, true
		}
	}
	return "", false
}

type fakeGenerator struct {
	result   *domain.DraftResult
	err      error
	gotDesc  string
	gotImage []byte
	calls    int
}

func (g *fakeGenerator) GenerateDraft(_ context.Context, jobDescription string, image []byte, _ string) (*domain.DraftResult, error) {
	g.calls++
	g.gotDesc = jobDescription
	g.gotImage = image
	if g.err != nil {
		return nil, g.err
	}
	clone := *g.result
	return &clone, nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (t *fakeTranscriber) Transcribe(context.Context, io.Reader, string, string) (string, error) {
	return t.text, t.err
}

type fakeRenderer struct {
	finalErr error
	draftErr error
	gotMD    string
	gotTerms string
	gotPhoto []byte
	calls    int
}

func (r *fakeRenderer) RenderFinal(md string, profile *domain.CompanyProfile, _, photo []byte, _ string) ([]byte, error) {
	r.calls++
	r.gotMD = md
	r.gotPhoto = photo
	if profile != nil {
		r.gotTerms = profile.TermsAndConditions
	}
	if r.finalErr != nil {
		return nil, r.finalErr
	}
	return []byte("%PDF-final"), nil
}

func (r *fakeRenderer) RenderDraft(md string, _ *domain.CompanyProfile, _ []byte) ([]byte, error) {
	r.calls++
	r.gotMD = md
	if r.draftErr != nil {
		return nil, r.draftErr
	}
	return []byte("%PDF-draft"), nil
}

type fakeQueue struct {
	published []domain.EmailMessage
	err       error
}

func (q *fakeQueue) PublishEmailRequested(_ context.Context, msg domain.EmailMessage) error {
	if q.err != nil {
		return q.err
	}
	q.published = append(q.published, msg)
	return nil
}

func (q *fakeQueue) SubscribeEmailRequested(context.Context, func(context.Context, domain.EmailMessage) error) error {
	return nil
}

type fakeTokenStream struct {
	tokens []string
	err    error
	pos    int
}

func (s *fakeTokenStream) Next() bool {
	if s.pos >= len(s.tokens) {
		return false
	}
	s.pos++
	return true
}

func (s *fakeTokenStream) Current() string { return s.tokens[s.pos-1] }
func (s *fakeTokenStream) Err() error      { return s.err }
func (s *fakeTokenStream) Close() error    { return nil }

type fakeStreamer struct {
	stream   *fakeTokenStream
	openErr  error
	calls    int
	gotScope string
}

func (f *fakeStreamer) StreamFinal(_ context.Context, prompt domain.FinalizePrompt) (ports.TokenStream, error) {
	f.calls++
	f.gotScope = prompt.PreservedScope
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.stream, nil
}
