package bedrock

import (
	"context"
	"math/rand"
	"time"
)

// Retryer retries Bedrock operations with exponential backoff.
//
// Retries on throttling (429) and server errors (5xx). Client errors,
// validation errors, and anything unclassified propagate immediately.
type Retryer struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     bool

	// Injectable for tests
	sleep func(context.Context, time.Duration) error
	randf func() float64
}

// NewRetryer creates a retryer from the given configuration
func NewRetryer(cfg Config) *Retryer {
	return &Retryer{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryBaseDelay,
		MaxDelay:   cfg.RetryMaxDelay,
		Jitter:     true,
		sleep:      sleepContext,
		randf:      rand.Float64,
	}
}

// Do runs op, retrying retryable errors up to MaxRetries additional attempts.
// The last classified error is returned after exhaustion.
func (r *Retryer) Do(ctx context.Context, op func() error) error {
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		err = Classify(err)
		if !Retryable(err) {
			return err
		}

		lastErr = err
		if attempt >= r.MaxRetries {
			break
		}

		if serr := sleep(ctx, r.delay(attempt)); serr != nil {
			return serr
		}
	}
	return lastErr
}

// delay computes the backoff before the retry following the given attempt:
// min(base * 2^attempt, max), scaled by a uniform factor in [0.5, 1.0)
// when jitter is enabled.
func (r *Retryer) delay(attempt int) time.Duration {
	d := r.BaseDelay << uint(attempt)
	if d > r.MaxDelay || d <= 0 {
		d = r.MaxDelay
	}
	if r.Jitter {
		randf := r.randf
		if randf == nil {
			randf = rand.Float64
		}
		d = time.Duration(float64(d) * (0.5 + randf()*0.5))
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
