package httpadapter

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
	"github.com/quoteflowhq/quoteflow/internal/core/ports"
)

const requestIDHeader = "X-Request-Id"

type requestIDContextKey struct{}

type userIDContextKey struct{}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}

func userIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey{}).(string)
	return userID
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDContextKey{}, requestID)
		r = r.WithContext(ctx)
		w.Header().Set(requestIDHeader, requestID)

		next.ServeHTTP(w, r)
	})
}

func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(recorder, r)

		remoteAddr := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			remoteAddr = host
		}

		logAttrs := []any{
			"request_id", requestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.statusCode,
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"bytes", recorder.bytesWritten,
			"remote_addr", remoteAddr,
			"user_agent", r.UserAgent(),
		}

		switch {
		case recorder.statusCode >= 500:
			slog.Error("http_request", logAttrs...)
		case recorder.statusCode >= 400:
			slog.Warn("http_request", logAttrs...)
		default:
			slog.Info("http_request", logAttrs...)
		}
	})
}

// authMiddleware resolves the bearer token to a user id and stores it in
// the request context. Every quote route requires it.
func authMiddleware(verifier ports.TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			return
		}

		userID, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tierLimiter rate-limits per user with a tier-dependent refill rate.
// Tier lookups are cached so billing reads stay off the hot path.
type tierLimiter struct {
	subs     ports.SubscriptionRepository
	freeRate rate.Limit
	proRate  rate.Limit
	burst    int
	cacheTTL time.Duration

	mu    sync.Mutex
	users map[string]*userLimiter
}

type userLimiter struct {
	limiter   *rate.Limiter
	tier      domain.PlanTier
	fetchedAt time.Time
}

func newTierLimiter(subs ports.SubscriptionRepository, freeRPS, proRPS float64, burst int) *tierLimiter {
	return &tierLimiter{
		subs:     subs,
		freeRate: rate.Limit(freeRPS),
		proRate:  rate.Limit(proRPS),
		burst:    burst,
		cacheTTL: 5 * time.Minute,
		users:    make(map[string]*userLimiter),
	}
}

func (t *tierLimiter) allow(ctx context.Context, userID string) bool {
	t.mu.Lock()
	entry, ok := t.users[userID]
	t.mu.Unlock()

	if !ok || time.Since(entry.fetchedAt) > t.cacheTTL {
		entry = t.refresh(ctx, userID, entry)
	}
	return entry.limiter.Allow()
}

func (t *tierLimiter) refresh(ctx context.Context, userID string, prev *userLimiter) *userLimiter {
	tier := domain.PlanFree
	sub, err := t.subs.GetByOwner(ctx, userID)
	if err == nil {
		tier = sub.ActiveTier(time.Now().UTC())
	} else {
		slog.Warn("tier lookup failed, assuming free", "user_id", userID, "error", err)
	}

	limit := t.freeRate
	if tier == domain.PlanPro {
		limit = t.proRate
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if prev != nil && prev.tier == tier {
		prev.fetchedAt = time.Now()
		t.users[userID] = prev
		return prev
	}
	entry := &userLimiter{
		limiter:   rate.NewLimiter(limit, t.burst),
		tier:      tier,
		fetchedAt: time.Now(),
	}
	t.users[userID] = entry
	return entry
}

func rateLimitMiddleware(limiter *tierLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r.Context())
		if userID != "" && !limiter.allow(r.Context(), userID) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
