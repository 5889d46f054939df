package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited оборачивает Provider token-bucket лимитером.
type RateLimited struct {
	next    Provider
	limiter *rate.Limiter
}

// NewRateLimited создаёт обёртку с лимитом perMinute запросов в минуту.
// При perMinute <= 0 возвращает next без изменений.
func NewRateLimited(next Provider, perMinute, burst int) Provider {
	if perMinute <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
	}
}

// Generate ждёт токен лимитера и делегирует вызов.
func (r *RateLimited) Generate(ctx context.Context, messages []Message, opts ...any) (Message, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Message{}, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Generate(ctx, messages, opts...)
}
