package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"localguide/config"
	"localguide/infras/otel/mocks"
	"localguide/shared/cache"
	cacheMocks "localguide/shared/cache/mocks"
	"localguide/shared/constant"
	"localguide/transport/http/middleware"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func limiterConfig(enable bool) *config.Config {
	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = enable
	cfg.App.RateLimiter.MaxRequests = 3
	cfg.App.RateLimiter.WindowSeconds = 60

	return cfg
}

func TestRateLimit(t *testing.T) {
	const key = "limiter:203.0.113.7:probe"

	tests := []struct {
		name          string
		enable        bool
		counter       cache.Counter
		counterErr    error
		wantCode      int
		wantRemaining string
		wantRetry     string
	}{
		{name: "disabled", wantCode: http.StatusNoContent},
		{name: "first hit", enable: true, counter: cache.Counter{Hits: 1, ResetIn: time.Minute}, wantCode: http.StatusNoContent, wantRemaining: "2"},
		{name: "last allowed hit", enable: true, counter: cache.Counter{Hits: 3, ResetIn: 10 * time.Second}, wantCode: http.StatusNoContent, wantRemaining: "0"},
		{name: "over the limit", enable: true, counter: cache.Counter{Hits: 4, ResetIn: 1500 * time.Millisecond}, wantCode: http.StatusTooManyRequests, wantRemaining: "0", wantRetry: "2"},
		{name: "store down fails open", enable: true, counterErr: errors.New("dial tcp: refused"), wantCode: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := cacheMocks.NewMockRedisCache(ctrl)

			if tt.enable {
				store.EXPECT().Increment(gomock.Any(), key, time.Minute).Return(tt.counter, tt.counterErr)
			}

			limiter := middleware.NewAppMiddleware(mocks.NewOtel(), limiterConfig(tt.enable), store).RateLimit()

			req := httptest.NewRequest(http.MethodGet, "/v1/listings", nil)
			req.Header.Set(constant.RequestHeaderForwardedFor, "203.0.113.7, 10.0.0.1")
			req.Header.Set(constant.RequestHeaderUserAgent, "probe")

			rec := httptest.NewRecorder()
			limiter(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantRemaining, rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
			assert.Equal(t, tt.wantRetry, rec.Header().Get("Retry-After"))
		})
	}
}
