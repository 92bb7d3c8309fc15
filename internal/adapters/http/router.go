package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
	"github.com/quoteflowhq/quoteflow/internal/core/ports"
	"github.com/quoteflowhq/quoteflow/internal/observability/metrics"
)

const maxUploadBytes = 20 << 20

type RouterConfig struct {
	Drafter       ports.QuoteDrafter
	Finalizer     ports.QuoteFinalizer
	Reader        ports.QuoteReader
	Verifier      ports.TokenVerifier
	Storage       ports.ObjectStorage
	Subscriptions ports.SubscriptionRepository
	Metrics       *metrics.HTTPServerMetrics
	Service       string

	FreeTierRPS float64
	ProTierRPS  float64
	RateBurst   int
}

type Router struct {
	drafter   ports.QuoteDrafter
	finalizer ports.QuoteFinalizer
	reader    ports.QuoteReader
	verifier  ports.TokenVerifier
	storage   ports.ObjectStorage
	metrics   *metrics.HTTPServerMetrics
	service   string
	limiter   *tierLimiter
}

func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		drafter:   cfg.Drafter,
		finalizer: cfg.Finalizer,
		reader:    cfg.Reader,
		verifier:  cfg.Verifier,
		storage:   cfg.Storage,
		metrics:   cfg.Metrics,
		service:   cfg.Service,
		limiter:   newTierLimiter(cfg.Subscriptions, cfg.FreeTierRPS, cfg.ProTierRPS, cfg.RateBurst),
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.HandleFunc("GET /pdfs/{object...}", rt.serveObject("pdfs/"))
	mux.HandleFunc("GET /photos/{object...}", rt.serveObject("photos/"))

	protected := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(rt.verifier, rateLimitMiddleware(rt.limiter, h))
	}
	mux.Handle("POST /v1/quotes/draft", protected(rt.draftQuote))
	mux.Handle("GET /v1/quotes", protected(rt.listQuotes))
	mux.Handle("POST /v1/quotes/{quote_id}/finalize", protected(rt.finalizeQuote))
	mux.Handle("GET /v1/quotes/{quote_id}/source", protected(rt.quoteSource))
	mux.Handle("POST /v1/quotes/{quote_id}/pdf", protected(rt.regeneratePDF))

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) draftQuote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, cleanup, err := rt.parseDraftRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	defer cleanup()
	req.OwnerID = userIDFromContext(r.Context())

	resp, err := rt.drafter.Draft(r.Context(), *req)
	if err != nil {
		rt.recordDraft(draftOutcome(err), start)
		writeError(w, err)
		return
	}

	rt.recordDraft("success", start)
	writeJSON(w, http.StatusCreated, resp)
}

func (rt *Router) parseDraftRequest(r *http.Request) (*ports.DraftRequest, func(), error) {
	cleanup := func() {}
	req := &ports.DraftRequest{}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var body struct {
			JobDescription string `json:"jobDescription"`
			Email          string `json:"email"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&body); err != nil {
			return nil, cleanup, domain.WrapError(domain.ErrInvalidInput, "parse draft request", err)
		}
		req.JobDescription = body.JobDescription
		req.OwnerEmail = body.Email
		return req, cleanup, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, cleanup, domain.WrapError(domain.ErrInvalidInput, "parse draft request", err)
	}
	req.JobDescription = r.FormValue("job_description")
	req.OwnerEmail = r.FormValue("email")

	if file, header, err := r.FormFile("image"); err == nil {
		data, readErr := io.ReadAll(file)
		file.Close()
		if readErr != nil {
			return nil, cleanup, domain.WrapError(domain.ErrInvalidInput, "read image upload", readErr)
		}
		req.Image = data
		req.ImageMime = header.Header.Get("Content-Type")
	}

	if file, header, err := r.FormFile("audio"); err == nil {
		cleanup = func() { file.Close() }
		req.Audio = file
		req.AudioFilename = header.Filename
		req.AudioMime = header.Header.Get("Content-Type")
	}
	return req, cleanup, nil
}

func (rt *Router) listQuotes(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	pageData, err := rt.reader.History(r.Context(), userIDFromContext(r.Context()), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageData)
}

func (rt *Router) finalizeQuote(w http.ResponseWriter, r *http.Request) {
	quoteID := r.PathValue("quote_id")

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	title, details := splitFinalizeBody(body)

	ew, err := newEventWriter(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// The pipeline keeps running after a client disconnect so the quote
	// still gets finalized and stored; remaining events are drained.
	detached := context.WithoutCancel(r.Context())
	events := rt.finalizer.Finalize(detached, userIDFromContext(r.Context()), quoteID, details, title)

	start := time.Now()
	sections := 0
	outcome := "error"
	clientGone := false
	for ev := range events {
		switch ev.Type {
		case domain.EventSectionCompleted:
			sections++
		case domain.EventDone:
			outcome = "success"
		}
		if !clientGone {
			if err := ew.WriteEvent(ev); err != nil {
				clientGone = true
			}
		}
	}
	if rt.metrics != nil {
		rt.metrics.RecordFinalizeStream(rt.service, outcome, sections, time.Since(start))
	}
}

func splitFinalizeBody(body map[string]any) (title string, details map[string]string) {
	details = make(map[string]string, len(body))
	for key, value := range body {
		str, ok := stringifyDetail(value)
		if !ok {
			continue
		}
		if key == "title" {
			title = str
			continue
		}
		details[key] = str
	}
	return title, details
}

func stringifyDetail(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func (rt *Router) quoteSource(w http.ResponseWriter, r *http.Request) {
	src, err := rt.reader.Source(r.Context(), userIDFromContext(r.Context()), r.PathValue("quote_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, src)
}

func (rt *Router) regeneratePDF(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Markdown string  `json:"markdown"`
		Terms    *string `json:"terms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	resp, err := rt.reader.Regenerate(r.Context(), userIDFromContext(r.Context()), r.PathValue("quote_id"), body.Markdown, body.Terms)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// serveObject streams stored documents and photos. Keys are confined to
// the given prefix.
func (rt *Router) serveObject(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean(r.PathValue("object"))
		if name == "." || strings.HasPrefix(name, "..") || strings.HasPrefix(name, "/") {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid object name"})
			return
		}

		rc, err := rt.storage.Open(r.Context(), prefix+name)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "object not found"})
			return
		}
		defer rc.Close()

		contentType := mime.TypeByExtension(path.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = io.Copy(w, rc)
	}
}

func draftOutcome(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrQuoteLimit):
		return "limit"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

func (rt *Router) recordDraft(outcome string, start time.Time) {
	if rt.metrics != nil {
		rt.metrics.RecordDraft(rt.service, outcome, time.Since(start))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
