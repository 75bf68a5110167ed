package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/DioGolang/GoPlaces/pkg/logger"
)

type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration
	ClientTimeout     time.Duration
}

// IPRateLimiter keeps one token bucket per client address. It protects the
// resolver from a single client hammering the search endpoint; the provider
// itself is protected separately.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	config   RateLimiterConfig
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(conf RateLimiterConfig) *IPRateLimiter {
	if conf.CleanupInterval <= 0 {
		conf.CleanupInterval = time.Minute
	}
	if conf.ClientTimeout <= 0 {
		conf.ClientTimeout = 3 * time.Minute
	}
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		config:   conf,
	}
}

// RunCleanup evicts idle visitors until ctx is done.
func (d *IPRateLimiter) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(d.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.evictIdle(time.Now())
		}
	}
}

func (d *IPRateLimiter) evictIdle(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for ip, v := range d.visitors {
		if now.Sub(v.lastSeen) > d.config.ClientTimeout {
			delete(d.visitors, ip)
		}
	}
}

func (d *IPRateLimiter) Handler(log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !d.getVisitor(ip).Allow() {
				log.Warn(r.Context(), "Rate limit exceeded",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests - Slow down", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (d *IPRateLimiter) getVisitor(ip string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, exists := d.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(d.config.RequestsPerSecond), d.config.Burst)
		d.visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// clientIP prefers the first X-Forwarded-For hop, then the remote host.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
