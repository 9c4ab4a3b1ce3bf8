package bedrock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRetryer(maxRetries int) (*Retryer, *[]time.Duration) {
	var delays []time.Duration
	r := &Retryer{
		MaxRetries: maxRetries,
		BaseDelay:  1 * time.Second,
		MaxDelay:   60 * time.Second,
		Jitter:     false,
		sleep: func(ctx context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}
	return r, &delays
}

func TestDoSucceedsFirstTry(t *testing.T) {
	r, delays := newTestRetryer(3)

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *delays)
}

func TestDoClientErrorNotRetried(t *testing.T) {
	r, delays := newTestRetryer(3)

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return &ClientError{Message: "bad request", StatusCode: 400}
	})

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *delays)
}

func TestDoValidationErrorNotRetried(t *testing.T) {
	r, _ := newTestRetryer(3)

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return &ValidationError{Message: "schema mismatch"}
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 1, calls)
}

func TestDoUnclassifiedErrorFailsClosed(t *testing.T) {
	r, _ := newTestRetryer(3)

	calls := 0
	boom := errors.New("something unexpected")
	err := r.Do(context.Background(), func() error {
		calls++
		return boom
	})

	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesThrottlingUntilExhausted(t *testing.T) {
	r, delays := newTestRetryer(3)

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return &ThrottlingError{Message: "slow down"}
	})

	var throttle *ThrottlingError
	require.ErrorAs(t, err, &throttle)
	assert.Equal(t, 4, calls) // initial attempt + 3 retries
	assert.Len(t, *delays, 3)
}

func TestDoRecoversAfterTransientServerError(t *testing.T) {
	r, _ := newTestRetryer(3)

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &ServerError{Message: "flaky", StatusCode: 503}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDelaySequenceWithoutJitter(t *testing.T) {
	r, delays := newTestRetryer(3)

	_ = r.Do(context.Background(), func() error {
		return &ServerError{Message: "down", StatusCode: 500}
	})

	assert.Equal(t, []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
	}, *delays)
}

func TestDelayCappedAtMaxDelay(t *testing.T) {
	r, delays := newTestRetryer(8)
	r.MaxDelay = 5 * time.Second

	_ = r.Do(context.Background(), func() error {
		return &ThrottlingError{Message: "still throttled"}
	})

	require.Len(t, *delays, 8)
	assert.Equal(t, 1*time.Second, (*delays)[0])
	assert.Equal(t, 2*time.Second, (*delays)[1])
	assert.Equal(t, 4*time.Second, (*delays)[2])
	for _, d := range (*delays)[3:] {
		assert.Equal(t, 5*time.Second, d)
	}
}

func TestDelayJitterBounds(t *testing.T) {
	r := &Retryer{
		MaxRetries: 1,
		BaseDelay:  10 * time.Second,
		MaxDelay:   60 * time.Second,
		Jitter:     true,
	}

	r.randf = func() float64 { return 0 }
	assert.Equal(t, 5*time.Second, r.delay(0))

	r.randf = func() float64 { return 0.999999 }
	d := r.delay(0)
	assert.Greater(t, d, 9*time.Second)
	assert.Less(t, d, 10*time.Second)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	r := &Retryer{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   60 * time.Second,
		sleep:      sleepContext,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Do(ctx, func() error {
		return &ThrottlingError{Message: "throttled"}
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRetryerUsesConfig(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRetryer(cfg)

	assert.Equal(t, 3, r.MaxRetries)
	assert.Equal(t, 1*time.Second, r.BaseDelay)
	assert.Equal(t, 60*time.Second, r.MaxDelay)
	assert.True(t, r.Jitter)
}
