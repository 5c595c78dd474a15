package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/KasumiMercury/primind-overdue-reminder/internal/app"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/observability/logging"
)

const (
	DefaultSpec         = "0 * * * *"
	DefaultStartupDelay = 30 * time.Second
)

var (
	ErrInvalidSpec    = errors.New("invalid cron spec")
	ErrAlreadyStarted = errors.New("driver already started")
	ErrPassPanicked   = errors.New("reminder pass panicked")
)

type Runner interface {
	RunPass(ctx context.Context) (app.PassOutput, error)
}

type Config struct {
	Spec         string
	Location     *time.Location
	StartupDelay time.Duration
}

type TriggerResult struct {
	Success bool
	Message string
}

// Driver runs reminder passes on a cron schedule, once shortly after start,
// and on demand. At most one pass runs at a time.
type Driver struct {
	runner Runner
	cfg    Config
	logger *slog.Logger

	// pass is a one-slot semaphore held for the duration of a pass.
	pass chan struct{}

	mu            sync.Mutex
	cron          *cron.Cron
	cancelStartup context.CancelFunc
	startupDone   chan struct{}
}

func New(runner Runner, cfg Config, logger *slog.Logger) (*Driver, error) {
	if cfg.Spec == "" {
		cfg.Spec = DefaultSpec
	}

	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	if cfg.StartupDelay < 0 {
		cfg.StartupDelay = 0
	}

	if _, err := cron.ParseStandard(cfg.Spec); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSpec, cfg.Spec, err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Driver{
		runner: runner,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "reminder_driver")),
		pass:   make(chan struct{}, 1),
	}, nil
}

// Start registers the cron schedule and arms the startup pass. Passes started
// by the schedule run with ctx.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cron != nil {
		return ErrAlreadyStarted
	}

	cl := cronLogger{logger: d.logger}

	c := cron.New(
		cron.WithLocation(d.cfg.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.SkipIfStillRunning(cl)),
	)

	if _, err := c.AddFunc(d.cfg.Spec, func() { d.Tick(ctx) }); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSpec, d.cfg.Spec, err)
	}

	startupCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		timer := time.NewTimer(d.cfg.StartupDelay)
		defer timer.Stop()

		select {
		case <-timer.C:
			d.Tick(ctx)
		case <-startupCtx.Done():
		}
	}()

	c.Start()

	d.cron = c
	d.cancelStartup = cancel
	d.startupDone = done

	d.logger.InfoContext(ctx, "reminder driver started",
		slog.String("event", "scheduler.start"),
		slog.String("spec", d.cfg.Spec),
		slog.String("location", d.cfg.Location.String()),
		slog.Duration("startup_delay", d.cfg.StartupDelay),
	)

	return nil
}

// Stop halts the schedule, drops a startup pass that has not fired yet and
// waits for a running pass to finish or ctx to expire.
func (d *Driver) Stop(ctx context.Context) error {
	d.mu.Lock()
	c, cancel, done := d.cron, d.cancelStartup, d.startupDone
	d.cron, d.cancelStartup, d.startupDone = nil, nil, nil
	d.mu.Unlock()

	if c == nil {
		return nil
	}

	cancel()
	cronDone := c.Stop()

	for _, wait := range []<-chan struct{}{done, cronDone.Done()} {
		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// A manual trigger may still hold the slot.
	select {
	case d.pass <- struct{}{}:
		<-d.pass
	case <-ctx.Done():
		return ctx.Err()
	}

	d.logger.InfoContext(ctx, "reminder driver stopped",
		slog.String("event", "scheduler.stop"),
	)

	return nil
}

// Tick runs a pass unless one is already in progress. It reports whether a
// pass ran.
func (d *Driver) Tick(ctx context.Context) bool {
	select {
	case d.pass <- struct{}{}:
	default:
		d.logger.InfoContext(ctx, "reminder pass still running, tick skipped",
			slog.String("event", "reminder.tick.skip"),
		)

		return false
	}
	defer func() { <-d.pass }()

	_, _ = d.run(ctx, "tick")

	return true
}

// Trigger runs one pass synchronously, waiting for an in-flight pass first.
func (d *Driver) Trigger(ctx context.Context) TriggerResult {
	select {
	case d.pass <- struct{}{}:
	case <-ctx.Done():
		return TriggerResult{
			Success: false,
			Message: "trigger canceled while waiting for the running pass: " + ctx.Err().Error(),
		}
	}
	defer func() { <-d.pass }()

	out, err := d.run(ctx, "manual")
	if err != nil {
		return TriggerResult{
			Success: false,
			Message: err.Error(),
		}
	}

	return TriggerResult{
		Success: true,
		Message: fmt.Sprintf("reminder pass completed: %d eligible, %d sent, %d failed",
			out.Eligible, out.Sent, out.Failed),
	}
}

func (d *Driver) run(ctx context.Context, source string) (out app.PassOutput, err error) {
	ctx = logging.WithModule(ctx, logging.ModuleScheduler)

	defer func() {
		if rec := recover(); rec != nil {
			d.logger.ErrorContext(ctx, "panic recovered during reminder pass",
				slog.String("event", "app.panic"),
				slog.String("source", source),
				slog.Any("error", rec),
				slog.String("stack", string(debug.Stack())),
			)

			out = app.PassOutput{}
			err = fmt.Errorf("%w: %v", ErrPassPanicked, rec)
		}
	}()

	out, err = d.runner.RunPass(ctx)
	if err != nil {
		d.logger.ErrorContext(ctx, "reminder pass failed",
			slog.String("event", "reminder.pass.fail"),
			slog.String("source", source),
			slog.String("error", err.Error()),
		)
	}

	return out, err
}
