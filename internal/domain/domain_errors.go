package domain

import "errors"

var (
	ErrTaskNotFound = errors.New("task not found")

	ErrEmptyEmail   = errors.New("recipient email cannot be empty")
	ErrInvalidEmail = errors.New("recipient email is not a valid address")

	ErrReminderLimitReached = errors.New("reminder limit reached for task")
)
