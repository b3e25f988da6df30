package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veryresto/pingmo/internal/models"
)

var errLost = errors.New("i/o timeout")

// fakePinger answers from a script of latencies; a negative entry is a loss.
type fakePinger struct {
	mu      sync.Mutex
	script  []float64
	calls   int
	delay   time.Duration
	ctxErrs []error
}

func (f *fakePinger) Name() string { return "fake" }

func (f *fakePinger) Ping(ctx context.Context, target string) (float64, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if err := ctx.Err(); err != nil {
		f.calls++
		return 0, err
	}

	latency := 10.0
	if len(f.script) > 0 {
		latency = f.script[f.calls%len(f.script)]
	}
	f.calls++
	if latency < 0 {
		return 0, errLost
	}
	return latency, nil
}

type sliceRecorder struct {
	got []models.Observation
	err error
}

func (r *sliceRecorder) Record(obs models.Observation) error {
	r.got = append(r.got, obs)
	return r.err
}

func TestSamplerAttemptCount(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	const interval = 50 * time.Millisecond
	const duration = 525 * time.Millisecond

	s := New(Config{Target: "1.1.1.1", Interval: interval}, &fakePinger{})

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	rec, err := s.Run(ctx)
	require.NoError(t, err)

	expected := int(duration / interval)
	assert.InDelta(t, expected, len(rec.Observations), 1)
}

func TestSamplerRecordsFailures(t *testing.T) {
	assert := assert.New(t)

	pinger := &fakePinger{script: []float64{12.5, -1, 30}}
	recorder := &sliceRecorder{}
	s := New(Config{Target: "example.com", Interval: time.Millisecond}, pinger, recorder)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for {
			pinger.mu.Lock()
			calls := pinger.calls
			pinger.mu.Unlock()
			if calls >= 3 {
				cancel()
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	rec, err := s.Run(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rec.Observations), 3)

	first, second := rec.Observations[0], rec.Observations[1]
	assert.True(first.Success)
	assert.Equal(12.5, *first.LatencyMS)
	assert.Equal(models.StatusSuccess, first.Status)

	assert.False(second.Success)
	assert.Nil(second.LatencyMS)
	assert.Equal(models.StatusTimeout, second.Status)
	assert.Equal("example.com", second.Target)

	assert.Equal(rec.Observations, recorder.got)
	for i := 1; i < len(rec.Observations); i++ {
		assert.False(rec.Observations[i].Timestamp.Before(rec.Observations[i-1].Timestamp))
	}
}

func TestSamplerInterruptCompletesAttempt(t *testing.T) {
	pinger := &fakePinger{delay: 100 * time.Millisecond}
	s := New(Config{Target: "1.1.1.1", Interval: time.Second}, pinger)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	rec, err := s.Run(ctx)
	require.NoError(t, err)

	require.Len(t, rec.Observations, 1)
	assert.True(t, rec.Observations[0].Success)
	assert.NoError(t, pinger.ctxErrs[0])
}

func TestSamplerAttemptTimeout(t *testing.T) {
	pinger := &fakePinger{delay: time.Hour}
	s := New(Config{Target: "1.1.1.1", Interval: time.Second, Timeout: 20 * time.Millisecond}, pinger)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(5*time.Millisecond, cancel)

	rec, err := s.Run(ctx)
	require.NoError(t, err)

	require.Len(t, rec.Observations, 1)
	assert.False(t, rec.Observations[0].Success)
	assert.ErrorIs(t, pinger.ctxErrs[0], context.DeadlineExceeded)
}

func TestSamplerDefaultTimeout(t *testing.T) {
	s := New(Config{Target: "1.1.1.1", Interval: 3 * time.Second}, &fakePinger{})
	assert.Equal(t, 6*time.Second, s.config.Timeout)
}

func TestSamplerRecorderErrorDoesNotStop(t *testing.T) {
	recorder := &sliceRecorder{err: errors.New("disk full")}
	var calls atomic.Int32
	pinger := &countingPinger{calls: &calls}
	s := New(Config{Target: "1.1.1.1", Interval: time.Millisecond}, pinger, recorder)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for calls.Load() < 3 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	rec, err := s.Run(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(rec.Observations), 3)
	assert.Len(t, recorder.got, len(rec.Observations))
}

func TestSamplerRunsOnce(t *testing.T) {
	s := New(Config{Target: "1.1.1.1", Interval: time.Second}, &fakePinger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, rec.Observations)

	_, err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrSealed)
}

type countingPinger struct {
	calls *atomic.Int32
}

func (c *countingPinger) Name() string { return "counting" }

func (c *countingPinger) Ping(ctx context.Context, target string) (float64, error) {
	c.calls.Add(1)
	return 1, nil
}
