package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/KasumiMercury/primind-overdue-reminder/internal/domain"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/infra/notifier"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/observability/logging"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/observability/metrics"
)

const (
	DefaultSendInterval = time.Second
	DefaultSendTimeout  = 30 * time.Second

	tracerName = "github.com/KasumiMercury/primind-overdue-reminder/internal/app"
)

type Options struct {
	// SendInterval separates two consecutive sends within a pass. Zero
	// disables pacing.
	SendInterval time.Duration
	SendTimeout  time.Duration
	Metrics      *metrics.ReminderMetrics
}

type reminderUseCaseImpl struct {
	repo         domain.ReminderRepository
	notifier     notifier.Notifier
	clock        domain.Clock
	policy       domain.ReminderPolicy
	metrics      *metrics.ReminderMetrics
	sendInterval time.Duration
	sendTimeout  time.Duration
	tracer       trace.Tracer
}

func NewReminderUseCase(
	repo domain.ReminderRepository,
	n notifier.Notifier,
	clock domain.Clock,
	policy domain.ReminderPolicy,
	opts Options,
) ReminderUseCase {
	if clock == nil {
		clock = domain.SystemClock{}
	}

	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}

	if opts.SendInterval < 0 {
		opts.SendInterval = 0
	}

	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNoopReminderMetrics()
	}

	return &reminderUseCaseImpl{
		repo:         repo,
		notifier:     n,
		clock:        clock,
		policy:       policy,
		metrics:      opts.Metrics,
		sendInterval: opts.SendInterval,
		sendTimeout:  opts.SendTimeout,
		tracer:       otel.Tracer(tracerName),
	}
}

func (uc *reminderUseCaseImpl) RunPass(ctx context.Context) (PassOutput, error) {
	ctx = logging.WithModule(ctx, logging.ModuleReminder)

	ctx, span := uc.tracer.Start(ctx, "reminder.pass")
	defer span.End()

	begin := time.Now()
	now := uc.clock.Now()
	out := PassOutput{StartedAt: now}

	slog.InfoContext(ctx, "reminder pass started",
		slog.String("event", "reminder.pass.start"),
		slog.Time("now", now),
	)

	candidates, err := uc.repo.FindOverdueCandidates(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load reminder candidates",
			slog.String("event", "reminder.pass.abort"),
			slog.String("error", err.Error()),
		)

		span.RecordError(err)
		span.SetStatus(codes.Error, "candidate query failed")

		out.Duration = time.Since(begin)
		uc.metrics.RecordPass(ctx, out.Duration, true)

		return out, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	eligible := uc.selectEligible(ctx, candidates, now)

	out.Candidates = len(candidates)
	out.Eligible = len(eligible)

	span.SetAttributes(
		attribute.Int("reminder.candidates", out.Candidates),
		attribute.Int("reminder.eligible", out.Eligible),
	)

	var passErr error

	for i, c := range eligible {
		if i > 0 {
			if err := uc.pause(ctx); err != nil {
				passErr = err

				break
			}
		} else if err := ctx.Err(); err != nil {
			passErr = err

			break
		}

		uc.dispatch(ctx, c, &out)
	}

	out.Duration = time.Since(begin)
	uc.metrics.RecordPass(ctx, out.Duration, passErr != nil)

	span.SetAttributes(
		attribute.Int("reminder.sent", out.Sent),
		attribute.Int("reminder.failed", out.Failed),
	)

	slog.InfoContext(ctx, "reminder pass finished",
		slog.String("event", "reminder.pass.finish"),
		slog.Int("candidates", out.Candidates),
		slog.Int("eligible", out.Eligible),
		slog.Int("sent", out.Sent),
		slog.Int("failed", out.Failed),
		slog.Int("bookkeeping_failed", out.BookkeepingFailed),
		slog.Duration("duration", out.Duration),
	)

	if passErr != nil {
		span.RecordError(passErr)

		return out, fmt.Errorf("%w: %w", ErrCanceled, passErr)
	}

	return out, nil
}

func (uc *reminderUseCaseImpl) ListEligible(ctx context.Context) (EligibleOutput, error) {
	ctx = logging.WithModule(ctx, logging.ModuleReminder)
	now := uc.clock.Now()

	candidates, err := uc.repo.FindOverdueCandidates(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load reminder candidates",
			slog.String("error", err.Error()),
		)

		return EligibleOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return FromCandidates(uc.policy.SelectEligible(candidates, now), now), nil
}

func (uc *reminderUseCaseImpl) selectEligible(ctx context.Context, candidates []*domain.ReminderCandidate, now time.Time) []*domain.ReminderCandidate {
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		for _, c := range candidates {
			if c == nil {
				continue
			}

			if reason := uc.policy.Evaluate(c, now); reason != domain.Eligible {
				slog.DebugContext(ctx, "task not eligible for reminder",
					slog.String("task_id", c.Task().ID().String()),
					slog.String("reason", string(reason)),
				)
			}
		}
	}

	return uc.policy.SelectEligible(candidates, now)
}

// pause blocks for one send interval measured from the moment it is called,
// so a slow or failed send still leaves a full gap before the next one.
func (uc *reminderUseCaseImpl) pause(ctx context.Context) error {
	if uc.sendInterval == 0 {
		return ctx.Err()
	}

	limiter := rate.NewLimiter(rate.Every(uc.sendInterval), 1)
	limiter.Allow()

	if err := limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// the interval outlives the context deadline
		return context.DeadlineExceeded
	}

	return nil
}

func (uc *reminderUseCaseImpl) dispatch(ctx context.Context, c *domain.ReminderCandidate, out *PassOutput) {
	task := c.Task()
	recipient := c.Recipient()
	due, _ := task.DueDate()
	days := domain.DaysOverdue(due, uc.clock.Now())

	msg := notifier.ReminderMessage{
		To:            recipient.Email(),
		RecipientName: recipient.Name(),
		TaskID:        task.ID().String(),
		TaskTitle:     task.Title(),
		DaysOverdue:   days,
		DueDate:       due,
	}

	sendCtx, cancel := context.WithTimeout(ctx, uc.sendTimeout)
	err := uc.notifier.Send(sendCtx, msg)
	cancel()

	if err != nil {
		slog.WarnContext(ctx, "failed to send reminder",
			slog.String("event", "reminder.send.fail"),
			slog.String("task_id", msg.TaskID),
			slog.String("task_title", msg.TaskTitle),
			slog.String("recipient", msg.To),
			slog.Bool("timeout", errors.Is(err, context.DeadlineExceeded)),
			slog.String("error", err.Error()),
		)

		out.Failed++
		uc.metrics.RecordFailed(ctx, days)

		return
	}

	out.Sent++
	uc.metrics.RecordSent(ctx, days)

	sentAt := uc.clock.Now()

	// The message is already out; record it even if the pass is being cancelled.
	bookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.sendTimeout)
	defer cancel()

	if err := uc.repo.RecordReminderSent(bookCtx, task.ID(), sentAt); err != nil {
		slog.ErrorContext(ctx, "reminder sent but task row not updated",
			slog.String("event", "reminder.bookkeeping.fail"),
			slog.String("delivery_guarantee", "at_least_once"),
			slog.String("task_id", msg.TaskID),
			slog.String("recipient", msg.To),
			slog.String("error", err.Error()),
		)

		out.BookkeepingFailed++
		uc.metrics.RecordBookkeepingFailed(ctx)

		return
	}

	if err := task.RecordReminder(sentAt, uc.policy.MaxReminders); err != nil {
		slog.DebugContext(ctx, "in-memory reminder count already at limit",
			slog.String("task_id", msg.TaskID),
		)
	}

	slog.InfoContext(ctx, "reminder sent",
		slog.String("event", "reminder.send.success"),
		slog.String("task_id", msg.TaskID),
		slog.String("user_id", task.UserID().String()),
		slog.Int("days_overdue", days),
		slog.Int("reminder_count", task.ReminderCount()),
	)
}
