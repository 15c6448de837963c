package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// RetryPolicy define reintentos con backoff exponencial.
// Delay es una función pura del número de intento; el jitter se suma aparte
// para que los tests puedan fijarlo en cero.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Jitter      float64
}

// DefaultRetryPolicy: 3 intentos, 1s base, duplicando (1s, 2s, 4s).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2.0,
	}
}

// Delay devuelve la espera tras el intento fallido `attempt` (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2.0
	}
	return time.Duration(float64(base) * math.Pow(mult, float64(attempt-1)))
}

// DelayFor ajusta el Delay según el error: una firma de rate limit duplica la espera.
func (p RetryPolicy) DelayFor(attempt int, err error) time.Duration {
	d := p.Delay(attempt)
	if IsRateLimited(err) {
		d *= 2
	}
	if p.Jitter > 0 {
		d += time.Duration(rand.Float64() * p.Jitter * float64(d))
	}
	return d
}

// IsRateLimited detecta firmas de rate limiting en el mensaje de error.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests")
}

// Do ejecuta fn bajo la política. La espera entre intentos respeta ctx.
// Al agotar los intentos devuelve el último error envuelto.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.DelayFor(attempt, lastErr)):
		}
	}
	return fmt.Errorf("%s: exhausted %d attempts: %w", op, attempts, lastErr)
}
