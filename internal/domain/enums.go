package domain

import "fmt"

// ObjectStatus is the coarse state of a workflow object as tracked by the
// workflow engine. Labels are the upper-case names used by the engine.
type ObjectStatus string

const (
	StatusInitial   ObjectStatus = "INITIAL"
	StatusRunning   ObjectStatus = "RUNNING"
	StatusHalted    ObjectStatus = "HALTED"
	StatusWaiting   ObjectStatus = "WAITING"
	StatusError     ObjectStatus = "ERROR"
	StatusCompleted ObjectStatus = "COMPLETED"
)

// AllStatuses lists every known status label in engine order.
var AllStatuses = []ObjectStatus{
	StatusInitial,
	StatusRunning,
	StatusHalted,
	StatusWaiting,
	StatusError,
	StatusCompleted,
}

func (s ObjectStatus) Valid() bool {
	switch s {
	case StatusInitial, StatusRunning, StatusHalted, StatusWaiting, StatusError, StatusCompleted:
		return true
	}
	return false
}

// Finished reports whether the engine will not advance the object on its own.
func (s ObjectStatus) Finished() bool {
	return s == StatusCompleted
}

// ParseObjectStatus converts a status label into an ObjectStatus.
func ParseObjectStatus(label string) (ObjectStatus, error) {
	s := ObjectStatus(label)
	if !s.Valid() {
		return "", fmt.Errorf("unknown object status: %q", label)
	}
	return s, nil
}

// RestartPoint tells the engine where to pick up a continued object.
type RestartPoint string

const (
	RestartTask  RestartPoint = "restart_task"
	ContinueNext RestartPoint = "continue_next"
	RestartPrev  RestartPoint = "restart_prev"
)

func (r RestartPoint) Valid() bool {
	switch r {
	case RestartTask, ContinueNext, RestartPrev:
		return true
	}
	return false
}
