package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a token budget per one-minute window. It is used to
// stay under the model provider's token-per-minute quota; callers Wait with
// the token cost of the request before sending it.
type TokenLimiter struct {
	mu          sync.Mutex
	maxTokens   int
	usedTokens  int
	windowStart time.Time
}

// NewTokenLimiter creates a limiter with the given tokens-per-minute budget.
func NewTokenLimiter(maxTokensPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		maxTokens:   maxTokensPerMinute,
		windowStart: time.Now(),
	}
}

// Wait blocks until the given number of tokens fits in the current window,
// or the context is done. Requests larger than the whole budget are admitted
// alone in a fresh window.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.mu.Lock()
		now := time.Now()
		if now.Sub(l.windowStart) >= time.Minute {
			l.usedTokens = 0
			l.windowStart = now
		}

		if l.usedTokens == 0 || l.usedTokens+tokens <= l.maxTokens {
			l.usedTokens += tokens
			l.mu.Unlock()
			return nil
		}

		sleep := time.Minute - now.Sub(l.windowStart)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// GetRemaining returns the tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.windowStart) >= time.Minute {
		return l.maxTokens
	}
	remaining := l.maxTokens - l.usedTokens
	if remaining < 0 {
		return 0
	}
	return remaining
}
