package middleware

import (
	"log/slog"
	"sync"
	"time"

	"foodbridge/config"
	"foodbridge/internal/delivery/api/response"
	deliverycontext "foodbridge/internal/delivery/context"
	domainerrors "foodbridge/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long an unused per-IP limiter is kept.
const idleLimiterTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterParams holds dependencies for RateLimiter, injected by Fx.
type RateLimiterParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// RateLimiter throttles requests per client IP with a token bucket.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
	enabled  bool
	logger   *slog.Logger
	now      func() time.Time
}

// NewRateLimiter builds the limiter. Without a rateLimit section it lets everything through.
func NewRateLimiter(params RateLimiterParams) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		logger:   params.Logger,
		now:      time.Now,
	}

	if cfg := params.Config.RateLimit; cfg != nil && cfg.RequestsPerSecond > 0 {
		rl.enabled = true
		rl.rate = rate.Limit(cfg.RequestsPerSecond)
		rl.burst = max(cfg.Burst, 1)
	}

	return rl
}

// Limit is the echo middleware. Throttled requests get 429.
func (rl *RateLimiter) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !rl.enabled {
			return next(c)
		}

		ip := c.RealIP()
		if !rl.allow(ip) {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), rl.logger).Warn("Rate limit exceeded",
				slog.String("remote_ip", ip),
				slog.String("path", c.Request().URL.Path),
			)

			return response.AppError(c, domainerrors.ErrRateLimited)
		}

		return next(c)
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now

	for ip, other := range rl.visitors {
		if now.Sub(other.lastSeen) > idleLimiterTTL {
			delete(rl.visitors, ip)
		}
	}

	return v.limiter.AllowN(now, 1)
}
