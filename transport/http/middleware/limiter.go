package middleware

import (
	"math"
	"net"
	"net/http"
	"localguide/shared"
	"localguide/shared/constant"
	"localguide/transport/http/response"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeyRateLimit = "limiter"
	headerRetryAfter  = "Retry-After"
)

// RateLimit allows MaxRequests per client and user agent in each fixed window. A failing store lets traffic through.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := a.config.App.RateLimiter
			if !limiter.Enable || limiter.MaxRequests <= 0 || limiter.WindowSeconds <= 0 {
				next.ServeHTTP(w, r)

				return
			}

			window := time.Duration(limiter.WindowSeconds) * time.Second
			cacheKey := shared.BuildCacheKey(cacheKeyRateLimit, a.getClientIP(r), a.getUA(r))

			counter, err := a.cache.Increment(r.Context(), cacheKey, window)
			if err != nil {
				log.Warn().Err(err).Str("key", cacheKey).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)

				return
			}

			maxReqs := int64(limiter.MaxRequests)

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.FormatInt(maxReqs, 10))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.FormatInt(max(0, maxReqs-counter.Hits), 10))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(limiter.WindowSeconds))

			if counter.Hits > maxReqs {
				w.Header().Set(headerRetryAfter, strconv.Itoa(int(math.Ceil(counter.ResetIn.Seconds()))))
				response.WithRequestLimitExceeded(w)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (a *appMiddleware) getUA(r *http.Request) string {
	if ua := r.Header.Get(constant.RequestHeaderUserAgent); ua != "" {
		return ua
	}

	return "unknown"
}

// getClientIP prefers the first forwarded hop and drops the port of RemoteAddr.
func (a *appMiddleware) getClientIP(r *http.Request) string {
	if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get(constant.RequestHeaderRealIP); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
