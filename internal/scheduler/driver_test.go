package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-overdue-reminder/internal/app"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/scheduler"
)

// never fires during a test run
const farSpec = "0 0 1 1 *"

type fakeRunner struct {
	calls   atomic.Int32
	active  atomic.Int32
	overlap atomic.Bool
	run     func(ctx context.Context) (app.PassOutput, error)
}

func (r *fakeRunner) RunPass(ctx context.Context) (app.PassOutput, error) {
	r.calls.Add(1)

	if r.active.Add(1) > 1 {
		r.overlap.Store(true)
	}
	defer r.active.Add(-1)

	if r.run == nil {
		return app.PassOutput{}, nil
	}

	return r.run(ctx)
}

// blockingRunner blocks every pass until release is closed.
func blockingRunner() (*fakeRunner, chan struct{}, chan struct{}) {
	started := make(chan struct{}, 8)
	release := make(chan struct{})

	return &fakeRunner{
		run: func(_ context.Context) (app.PassOutput, error) {
			started <- struct{}{}
			<-release

			return app.PassOutput{Sent: 1}, nil
		},
	}, started, release
}

func newDriver(t *testing.T, r scheduler.Runner, cfg scheduler.Config) *scheduler.Driver {
	t.Helper()

	if cfg.Spec == "" {
		cfg.Spec = farSpec
	}

	d, err := scheduler.New(r, cfg, nil)
	require.NoError(t, err)

	return d
}

func TestNewError(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{name: "garbage", spec: "every hour"},
		{name: "too many fields", spec: "0 0 * * * * *"},
		{name: "minute out of range", spec: "61 * * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := scheduler.New(&fakeRunner{}, scheduler.Config{Spec: tt.spec}, nil)

			assert.ErrorIs(t, err, scheduler.ErrInvalidSpec)
			assert.Nil(t, d)
		})
	}
}

func TestNewDefaultsSuccess(t *testing.T) {
	d, err := scheduler.New(&fakeRunner{}, scheduler.Config{}, nil)

	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestTickSkipsWhileRunningSuccess(t *testing.T) {
	r, started, release := blockingRunner()
	d := newDriver(t, r, scheduler.Config{})

	ctx := context.Background()

	firstDone := make(chan bool)
	go func() { firstDone <- d.Tick(ctx) }()

	<-started

	assert.False(t, d.Tick(ctx))

	close(release)
	assert.True(t, <-firstDone)

	assert.Equal(t, int32(1), r.calls.Load())
	assert.True(t, d.Tick(ctx))
	assert.Equal(t, int32(2), r.calls.Load())
}

func TestTickRecoversPanicSuccess(t *testing.T) {
	var n atomic.Int32

	r := &fakeRunner{
		run: func(_ context.Context) (app.PassOutput, error) {
			if n.Add(1) == 1 {
				panic("nil map write")
			}

			return app.PassOutput{}, nil
		},
	}
	d := newDriver(t, r, scheduler.Config{})

	assert.NotPanics(t, func() {
		assert.True(t, d.Tick(context.Background()))
	})

	// The slot is released after a panic.
	assert.True(t, d.Tick(context.Background()))
	assert.Equal(t, int32(2), r.calls.Load())
}

func TestTriggerSuccess(t *testing.T) {
	r := &fakeRunner{
		run: func(_ context.Context) (app.PassOutput, error) {
			return app.PassOutput{Eligible: 3, Sent: 2, Failed: 1}, nil
		},
	}
	d := newDriver(t, r, scheduler.Config{})

	res := d.Trigger(context.Background())

	assert.True(t, res.Success)
	assert.Equal(t, "reminder pass completed: 3 eligible, 2 sent, 1 failed", res.Message)
}

func TestTriggerError(t *testing.T) {
	tests := []struct {
		name     string
		run      func(ctx context.Context) (app.PassOutput, error)
		contains string
	}{
		{
			name: "pass returns error",
			run: func(_ context.Context) (app.PassOutput, error) {
				return app.PassOutput{}, errors.New("internal error: database is down")
			},
			contains: "database is down",
		},
		{
			name: "pass panics",
			run: func(_ context.Context) (app.PassOutput, error) {
				panic("boom")
			},
			contains: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDriver(t, &fakeRunner{run: tt.run}, scheduler.Config{})

			res := d.Trigger(context.Background())

			assert.False(t, res.Success)
			assert.Contains(t, res.Message, tt.contains)
		})
	}
}

func TestTriggerWaitsForRunningPassSuccess(t *testing.T) {
	r, started, release := blockingRunner()
	d := newDriver(t, r, scheduler.Config{})

	ctx := context.Background()

	go d.Tick(ctx)
	<-started

	results := make(chan scheduler.TriggerResult)
	go func() { results <- d.Trigger(ctx) }()

	select {
	case <-results:
		t.Fatal("trigger overlapped a running pass")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)

	res := <-results
	assert.True(t, res.Success)
	assert.Equal(t, int32(2), r.calls.Load())
	assert.False(t, r.overlap.Load())
}

func TestTriggerCanceledWhileWaitingError(t *testing.T) {
	r, started, release := blockingRunner()
	defer close(release)

	d := newDriver(t, r, scheduler.Config{})

	go d.Tick(context.Background())
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := d.Trigger(ctx)

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "canceled")
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestStartRunsStartupPassSuccess(t *testing.T) {
	r := &fakeRunner{}
	d := newDriver(t, r, scheduler.Config{StartupDelay: 10 * time.Millisecond})

	require.NoError(t, d.Start(context.Background()))

	assert.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, d.Stop(context.Background()))

	// Exactly one startup pass.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestStartTwiceError(t *testing.T) {
	d := newDriver(t, &fakeRunner{}, scheduler.Config{StartupDelay: time.Hour})

	require.NoError(t, d.Start(context.Background()))
	defer d.Stop(context.Background())

	assert.ErrorIs(t, d.Start(context.Background()), scheduler.ErrAlreadyStarted)
}

func TestStopCancelsPendingStartupPassSuccess(t *testing.T) {
	r := &fakeRunner{}
	d := newDriver(t, r, scheduler.Config{StartupDelay: time.Hour})

	require.NoError(t, d.Start(context.Background()))
	require.NoError(t, d.Stop(context.Background()))

	assert.Zero(t, r.calls.Load())
}

func TestStopWaitsForRunningPassSuccess(t *testing.T) {
	r, started, release := blockingRunner()
	d := newDriver(t, r, scheduler.Config{StartupDelay: time.Millisecond})

	require.NoError(t, d.Start(context.Background()))
	<-started

	var stopped atomic.Bool

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		assert.NoError(t, d.Stop(context.Background()))
		stopped.Store(true)
	}()

	time.Sleep(30 * time.Millisecond)
	assert.False(t, stopped.Load())

	close(release)
	wg.Wait()

	assert.True(t, stopped.Load())
}

func TestStopTimeoutError(t *testing.T) {
	r, started, release := blockingRunner()
	defer close(release)

	d := newDriver(t, r, scheduler.Config{StartupDelay: time.Millisecond})

	require.NoError(t, d.Start(context.Background()))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, d.Stop(ctx), context.DeadlineExceeded)
}

func TestStopWithoutStartSuccess(t *testing.T) {
	d := newDriver(t, &fakeRunner{}, scheduler.Config{})

	assert.NoError(t, d.Stop(context.Background()))
}
