package transport

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited wraps a transport, limiting the rate at which requests are sent.
type RateLimited struct {
	transport Transport
	limiter   *rate.Limiter
}

var _ Transport = (*RateLimited)(nil)

// NewRateLimited returns a transport which sends at most 'requestsPerSecond' requests per second (with the given
// burst) using the given transport.
func NewRateLimited(transport Transport, requestsPerSecond float64, burst int) *RateLimited {
	return &RateLimited{transport: transport, limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), max(burst, 1))}
}

// Send waits until the rate limit allows another request, then sends it.
func (r *RateLimited) Send(ctx context.Context, request *Request) (*Response, error) {
	err := r.limiter.Wait(ctx)
	if err == nil {
		return r.transport.Send(ctx, request)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", ctxErr)
	}

	// The limiter refuses to wait past the deadline of the context
	return nil, fmt.Errorf("failed to wait for rate limiter: %w: %w", context.DeadlineExceeded, err)
}

func (r *RateLimited) Close() {
	r.transport.Close()
}
