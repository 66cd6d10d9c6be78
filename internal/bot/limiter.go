package bot

import (
	"sync"

	"golang.org/x/time/rate"
)

// chatLimiter keeps a token bucket per chat.
type chatLimiter struct {
	limiters sync.Map
	rps      float64
	burst    int
}

func newChatLimiter(rps float64, burst int) *chatLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &chatLimiter{rps: rps, burst: burst}
}

func (l *chatLimiter) allow(chatID int64) bool {
	return l.getLimiter(chatID).Allow()
}

func (l *chatLimiter) getLimiter(chatID int64) *rate.Limiter {
	if v, ok := l.limiters.Load(chatID); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	lim := rate.NewLimiter(rate.Limit(l.rps), l.burst)
	actual, loaded := l.limiters.LoadOrStore(chatID, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}
