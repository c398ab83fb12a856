package poll

import (
	"context"
	"errors"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

func TestMain(m *testing.M) {
	try.To(flag.Set("logtostderr", "true"))
	try.To(flag.Set("v", "3"))
	flag.Parse()
	os.Exit(m.Run())
}

var fast = Config{Interval: 5 * time.Millisecond, Timeout: 50 * time.Millisecond}

func TestConfig_Retries(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want uint64
	}{
		{"default demo ceiling", Config{Interval: time.Second, Timeout: 10 * time.Second}, 10},
		{"partial interval", Config{Interval: 3 * time.Second, Timeout: 10 * time.Second}, 3},
		{"zero interval", Config{Timeout: 10 * time.Second}, 0},
		{"zero timeout", Config{Interval: time.Second}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PushTester(t)
			defer assert.PopTester()
			assert.Equal(tt.cfg.Retries(), tt.want)
		})
	}
}

func TestUntil_ReturnsWhenDone(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	calls := 0
	err := Until(context.Background(), fast, func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	assert.NoError(err)
	assert.Equal(calls, 3)
}

func TestUntil_FirstTryIsImmediate(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	slow := Config{Interval: time.Hour, Timeout: 10 * time.Hour}
	start := time.Now()
	err := Until(context.Background(), slow, func(context.Context) (bool, error) {
		return true, nil
	})
	assert.NoError(err)
	assert.That(time.Since(start) < time.Second)
}

func TestUntil_Timeout(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	calls := 0
	start := time.Now()
	err := Until(context.Background(), fast, func(context.Context) (bool, error) {
		calls++
		return false, nil
	})
	assert.Error(err)
	assert.That(errors.Is(err, ErrTimeout))
	assert.Equal(uint64(calls), fast.Retries()+1)
	assert.That(time.Since(start) >= fast.Timeout)
}

func TestUntil_ErrorStopsImmediately(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	failure := errors.New("unexpected status")
	calls := 0
	err := Until(context.Background(), fast, func(context.Context) (bool, error) {
		calls++
		return false, failure
	})
	assert.That(errors.Is(err, failure))
	assert.That(!errors.Is(err, ErrTimeout))
	assert.Equal(calls, 1)
}

func TestUntil_ContextCancel(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	ctx, cancel := context.WithCancel(context.Background())
	slow := Config{Interval: time.Hour, Timeout: 10 * time.Hour}
	err := Until(ctx, slow, func(context.Context) (bool, error) {
		cancel()
		return false, nil
	})
	assert.That(errors.Is(err, context.Canceled))
}
