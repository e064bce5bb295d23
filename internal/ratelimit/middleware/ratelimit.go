// Package middleware throttles authenticated callers per address.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"crowdsale/internal/ratelimit/models"
	dErrors "crowdsale/pkg/domain-errors"
	"crowdsale/pkg/platform/httputil"
	request "crowdsale/pkg/platform/middleware/request"
	"crowdsale/pkg/requestcontext"
)

// BucketStore is implemented by bucket.InMemoryBucketStore and bucket.RedisBucketStore.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

type Middleware struct {
	store    BucketStore
	policies map[models.EndpointClass]models.Policy
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithPolicy sets the limit for one endpoint class.
func WithPolicy(class models.EndpointClass, policy models.Policy) Option {
	return func(m *Middleware) {
		m.policies[class] = policy
	}
}

func New(store BucketStore, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:    store,
		policies: map[models.EndpointClass]models.Policy{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// PerCaller limits requests by the authenticated caller address, so it must be
// mounted after the auth middleware. Store failures let the request through.
func (m *Middleware) PerCaller(class models.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy, ok := m.policies[class]
			if m.disabled || !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			caller := requestcontext.Caller(ctx)
			if caller.IsZero() {
				next.ServeHTTP(w, r)
				return
			}

			key := string(class) + ":" + caller.Hex()
			result, err := m.store.Allow(ctx, key, policy.Limit, policy.Window)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check caller rate limit",
					"error", err,
					"caller", caller,
					"request_id", request.GetRequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				m.logger.InfoContext(ctx, "caller rate limited",
					"caller", caller,
					"class", string(class),
					"request_id", request.GetRequestID(ctx),
				)
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests from this address"))
}
