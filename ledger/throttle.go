package ledger

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttled limits the rate of ledger round trips.
type Throttled struct {
	client  Client
	limiter *rate.Limiter
}

var _ Client = (*Throttled)(nil)

// Throttle wraps client so that at most perSecond calls are issued per second,
// with bursts of up to burst calls. A non-positive perSecond disables limiting.
func Throttle(client Client, perSecond float64, burst int) Client {
	if perSecond <= 0 {
		return client
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttled{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Evaluate waits for a token, then delegates.
func (t *Throttled) Evaluate(ctx context.Context, fn string, args ...string) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.Evaluate(ctx, fn, args...)
}

// Submit waits for a token, then delegates.
func (t *Throttled) Submit(ctx context.Context, fn string, args ...string) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.Submit(ctx, fn, args...)
}
