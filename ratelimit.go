package jsonapi

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures the RateLimit middleware.
// A zero Rate disables limiting.
type RateLimitConfig struct {
	Rate            float64                                      `yaml:"rate"`             // requests per second
	Burst           int                                          `yaml:"burst"`            // max burst, at least 1
	CleanupInterval time.Duration                                `yaml:"cleanup_interval"` // default: 1m
	MaxIdle         time.Duration                                `yaml:"max_idle"`         // default: 5m
	KeyFunc         func(r *http.Request) string                 `yaml:"-"`                // default: ClientKey
	OnLimit         func(w http.ResponseWriter, r *http.Request) `yaml:"-"`                // default: 429 envelope
}

// ClientKey identifies the client a request is rate limited as: the ID of an
// authenticated Identity when one is attached, otherwise the remote IP.
func ClientKey(r *http.Request) string {
	if u, ok := UserFrom(r.Context()); ok && u.IsAuthenticated() {
		if id, ok := u.(Identity); ok && id.UserID() != "" {
			return "user:" + id.UserID()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

// RateLimit returns middleware that limits each client, as named by
// KeyFunc, to Rate requests per second. Rejected requests carry a
// Retry-After header and, by default, a 429 envelope written with the
// serving router's codec.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Rate <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientKey
	}
	if cfg.OnLimit == nil {
		cfg.OnLimit = func(w http.ResponseWriter, r *http.Request) {
			writeResponse(w, r, TooManyRequests(nil), SettingsFrom(r))
		}
	}

	clients := newClientLimiters(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.KeyFunc(r)

			wait, ok := clients.allow(key, time.Now())
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			SettingsFrom(r).Logger.Debug("rate limited",
				zap.String("key", key),
				zap.String("path", r.URL.Path),
				zap.String("request_id", GetRequestID(r)),
				zap.Duration("retry_after", wait),
			)
			w.Header().Set("Retry-After", retryAfter(wait))
			cfg.OnLimit(w, r)
		})
	}
}

// retryAfter renders wait as whole seconds, never less than one.
func retryAfter(wait time.Duration) string {
	secs := math.Max(1, math.Ceil(wait.Seconds()))
	return strconv.FormatFloat(secs, 'f', 0, 64)
}

// clientLimiters holds one token bucket per client key. Buckets idle longer
// than maxIdle are dropped on the first call after each cleanup interval.
type clientLimiters struct {
	limit   rate.Limit
	burst   int
	every   time.Duration
	maxIdle time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	pruned  time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(cfg RateLimitConfig) *clientLimiters {
	c := &clientLimiters{
		limit:   rate.Limit(cfg.Rate),
		burst:   max(cfg.Burst, 1),
		every:   cfg.CleanupInterval,
		maxIdle: cfg.MaxIdle,
		buckets: make(map[string]*bucket),
	}
	if c.every <= 0 {
		c.every = time.Minute
	}
	if c.maxIdle <= 0 {
		c.maxIdle = 5 * time.Minute
	}
	return c
}

// allow takes a token for key at now. When none is available it reports how
// long until one will be.
func (c *clientLimiters) allow(key string, now time.Time) (time.Duration, bool) {
	b := c.bucket(key, now)

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return time.Duration(float64(time.Second) / float64(c.limit)), false
	}
	wait := res.DelayFrom(now)
	if wait == 0 {
		return 0, true
	}
	res.CancelAt(now)
	return wait, false
}

func (c *clientLimiters) bucket(key string, now time.Time) *bucket {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.pruned) >= c.every {
		for k, b := range c.buckets {
			if now.Sub(b.lastSeen) > c.maxIdle {
				delete(c.buckets, k)
			}
		}
		c.pruned = now
	}

	b, ok := c.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.buckets[key] = b
	}
	b.lastSeen = now
	return b
}
