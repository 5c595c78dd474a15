package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-overdue-reminder/internal/app"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/scheduler"
)

type PassTrigger interface {
	Trigger(ctx context.Context) scheduler.TriggerResult
}

type ReminderHandler struct {
	trigger PassTrigger
	useCase app.ReminderUseCase
}

func NewReminderHandler(trigger PassTrigger, useCase app.ReminderUseCase) *ReminderHandler {
	return &ReminderHandler{
		trigger: trigger,
		useCase: useCase,
	}
}

func (h *ReminderHandler) TriggerPass(c *gin.Context) {
	slog.InfoContext(c.Request.Context(), "handling manual reminder trigger",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	result := h.trigger.Trigger(c.Request.Context())
	if !result.Success {
		slog.WarnContext(c.Request.Context(), "manual reminder pass failed",
			"message", result.Message,
		)
		c.JSON(http.StatusInternalServerError, FromTriggerResult(result))

		return
	}

	slog.InfoContext(c.Request.Context(), "manual reminder pass completed",
		"message", result.Message,
	)
	c.JSON(http.StatusOK, FromTriggerResult(result))
}

func (h *ReminderHandler) ListEligible(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		h.handleError(c, err)

		return
	}

	output, err := h.useCase.ListEligible(c.Request.Context())
	if err != nil {
		h.handleError(c, err)

		return
	}

	slog.DebugContext(c.Request.Context(), "eligible reminders listed",
		"count", output.Count,
	)
	c.JSON(http.StatusOK, FromEligibleOutput(output, limit))
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, app.NewValidationError("limit", "must be a positive integer")
	}

	return limit, nil
}

func (h *ReminderHandler) handleError(c *gin.Context, err error) {
	var validationErr *app.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Message,
			Field:   validationErr.Field,
		})

		return
	}

	if errors.Is(err, app.ErrCanceled) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "request canceled",
		})

		return
	}

	slog.ErrorContext(c.Request.Context(), "request failed",
		"error", err,
		"path", c.Request.URL.Path,
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}

func (h *ReminderHandler) RegisterRoutes(router *gin.RouterGroup) {
	reminders := router.Group("/reminders")
	{
		reminders.POST("/trigger", h.TriggerPass)
		reminders.GET("/eligible", h.ListEligible)
	}
}
