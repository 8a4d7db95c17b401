package middleware

import (
	"net/http"
	"staybook/pkg/logger"
	"sync"
	"time"
)

// UserRateLimiter limits requests per caller within a fixed window. Callers
// are keyed by the identity header; anonymous requests share one bucket per
// remote address.
type UserRateLimiter struct {
	requests int
	window   time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	buckets map[string]*rateBucket
	done    chan struct{}
	once    sync.Once
}

type rateBucket struct {
	count       int
	windowStart time.Time
}

func NewUserRateLimiter(requests int, window time.Duration, log *logger.Logger) *UserRateLimiter {
	rl := &UserRateLimiter{
		requests: requests,
		window:   window,
		log:      log,
		buckets:  make(map[string]*rateBucket),
		done:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *UserRateLimiter) Allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.buckets[key]
	if !ok || now.Sub(bucket.windowStart) >= rl.window {
		rl.buckets[key] = &rateBucket{count: 1, windowStart: now}
		return true
	}

	if bucket.count >= rl.requests {
		return false
	}
	bucket.count++
	return true
}

func (rl *UserRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.window)
			rl.mu.Lock()
			for key, bucket := range rl.buckets {
				if bucket.windowStart.Before(cutoff) {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *UserRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

func UserRateLimit(rl *UserRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderUserID)
			if key == "" {
				key = r.RemoteAddr
			}

			if !rl.Allow(key) {
				rl.log.Warn("Rate limit exceeded",
					"request_id", requestIDFromContext(r.Context()),
					"key", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
