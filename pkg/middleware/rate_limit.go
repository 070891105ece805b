package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	httputil "fitstudio/pkg/http"
	"fitstudio/pkg/logger"
)

// KeyExtractor derives the rate-limiting key for a request. An empty key
// exempts the request.
type KeyExtractor func(r *http.Request) string

// RemoteAddrExtractor keys requests by caller IP, the booking API's default.
func RemoteAddrExtractor(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequestRateLimiter is a sliding-window in-memory limiter. It throttles the
// anonymous booking endpoints the way the studio throttles walk-in traffic:
// per caller, not globally.
type RequestRateLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor KeyExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewRequestRateLimiter(limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *RequestRateLimiter {
	limiter := &RequestRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *RequestRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RequestRateLimiter) Stop() {
	close(rl.stopCh)
}

// Allow records one request for key and reports whether it fits the window.
func (rl *RequestRateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.requests[key][:0]
	for _, ts := range rl.requests[key] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

func RateLimit(limiter *RequestRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.extractor(r)
			if !limiter.Allow(key) {
				limiter.log.Warn("Request rate limited",
					"key", key,
					"path", r.URL.Path,
					"method", r.Method,
				)
				_ = httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorResponse{
					Error: "Too many requests, please slow down",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
