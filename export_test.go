package jsonapi

import "time"

// Test-only exports for internal functions.
var (
	PanicError        = panicError
	NewRequestID      = newRequestID
	BodyMethods       = bodyMethods
	NewClientLimiters = newClientLimiters
	RetryAfter        = retryAfter
)

func (c *clientLimiters) Allow(key string, now time.Time) (time.Duration, bool) {
	return c.allow(key, now)
}

func (c *clientLimiters) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets)
}
