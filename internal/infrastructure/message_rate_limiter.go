package infrastructure

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

// MessageRateLimiter keeps one token bucket per chat
type MessageRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*chatLimiter
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

type chatLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMessageRateLimiter allows perSecond messages per chat with the given burst
func NewMessageRateLimiter(perSecond float64, burst int) *MessageRateLimiter {
	return &MessageRateLimiter{
		limiters: make(map[string]*chatLimiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow consumes one token for chatID when available
func (rl *MessageRateLimiter) Allow(chatID string) bool {
	now := rl.now()
	return rl.get(chatID, now).AllowN(now, 1)
}

// WaitTime returns how long chatID must wait for the next token
func (rl *MessageRateLimiter) WaitTime(chatID string) time.Duration {
	now := rl.now()
	r := rl.get(chatID, now).ReserveN(now, 1)
	if !r.OK() {
		return 0
	}
	d := r.DelayFrom(now)
	r.CancelAt(now)
	return d
}

// Cleanup drops buckets idle for longer than limiterIdleTTL
func (rl *MessageRateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-limiterIdleTTL)
	removed := 0
	for id, cl := range rl.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.limiters, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked chats
func (rl *MessageRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *MessageRateLimiter) get(chatID string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[chatID]
	if !ok {
		cl = &chatLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[chatID] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}
