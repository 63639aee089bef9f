package guard

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/securepass/internal/logging"
	"golang.org/x/time/rate"
)

const (
	// LoginPath is the only path the rate limiter applies to.
	LoginPath = "/auth/login"

	DefaultLoginLimit  = 5
	DefaultLoginWindow = 60 * time.Second
)

var errTooManyRequests = ErrorBody{
	Error:   "Too Many Requests",
	Message: "Too many login attempts. Please try again later.",
}

// RateLimit throttles POST /auth/login per client key.
type RateLimit struct {
	store  CounterStore
	policy Policy
	now    func() time.Time
	log    logging.Logger
	warn   rate.Sometimes
}

func NewRateLimit(store CounterStore, p Policy, log logging.Logger) *RateLimit {
	if p.Limit <= 0 {
		p.Limit = DefaultLoginLimit
	}
	if p.Window <= 0 {
		p.Window = DefaultLoginWindow
	}
	return &RateLimit{
		store:  store,
		policy: p,
		now:    time.Now,
		log:    log.With("module", "ratelimit"),
		warn:   rate.Sometimes{Interval: 10 * time.Second},
	}
}

func (g *RateLimit) Decide(ctx context.Context, req *Request) Decision {
	if req.Method != http.MethodPost || req.Path != LoginPath {
		return Pass(ctx)
	}

	now := g.now()
	res, err := g.store.Hit(ctx, req.ClientKey, now, g.policy)
	if err != nil {
		// an unavailable counter store must not lock everybody out
		g.log.Error(ctx, "rate limit store failed, allowing request", "error", err)
		return Pass(ctx)
	}
	if res.Allowed {
		return Pass(ctx)
	}

	g.warn.Do(func() {
		g.log.Warn(ctx, "login rate limit exceeded", "client", req.ClientKey, "count", res.Counter.Count)
	})

	return Reject(http.StatusTooManyRequests, errTooManyRequests).
		WithHeader("Retry-After", strconv.Itoa(retryAfter(res.Counter.WindowStart, g.policy.Window, now)))
}

func retryAfter(start time.Time, window time.Duration, now time.Time) int {
	left := start.Add(window).Sub(now).Seconds()
	if left < 1 {
		return 1
	}
	return int(math.Ceil(left))
}
