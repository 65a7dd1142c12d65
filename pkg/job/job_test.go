package job

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestService_RunsImmediatelyAndOnTick(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := NewService().RegisterJob("counter", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	svc.Start(ctx)

	require.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	svc.Stop()
}

func TestService_RecoversPanickingJob(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := NewService().RegisterJob("flaky", 10*time.Millisecond, func(context.Context) error {
		if runs.Add(1) == 1 {
			panic("boom")
		}
		return nil
	})
	svc.Start(ctx)

	// the first run panics; the ticker must keep firing regardless
	require.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	svc.Stop()
}

func TestService_TryRegisterJobDisabled(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := NewService().TryRegisterJob(false, "disabled", time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	svc.Start(ctx)

	time.Sleep(30 * time.Millisecond)
	cancel()
	svc.Stop()

	require.Zero(t, runs.Load())
}
