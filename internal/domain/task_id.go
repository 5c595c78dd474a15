package domain

import (
	"errors"

	"github.com/google/uuid"
)

// TaskID identifies a task row owned by the host application. Tasks are
// created outside this service, so any non-nil UUID version is accepted.
type TaskID struct {
	value uuid.UUID
}

var ErrInvalidTaskID = errors.New("invalid task ID: must be a non-nil UUID")

func TaskIDFromString(s string) (TaskID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return TaskID{}, ErrInvalidTaskID
	}

	return TaskIDFromUUID(id)
}

func TaskIDFromUUID(id uuid.UUID) (TaskID, error) {
	if id == uuid.Nil {
		return TaskID{}, ErrInvalidTaskID
	}

	return TaskID{value: id}, nil
}

func (t TaskID) String() string {
	return t.value.String()
}

func (t TaskID) UUID() uuid.UUID {
	return t.value
}

func (t TaskID) IsZero() bool {
	return t.value == uuid.Nil
}

func (t TaskID) Equals(other TaskID) bool {
	return t.value == other.value
}
