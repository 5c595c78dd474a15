package domain

// Status is the workflow state stored on a task. Only StatusDone closes a
// task; every other value, including ones this service does not know about,
// is treated as open.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

func NewStatus(s string) Status {
	return Status(s)
}

func (s Status) IsDone() bool {
	return s == StatusDone
}
