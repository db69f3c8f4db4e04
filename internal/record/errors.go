package record

import (
	"errors"

	"github.com/finops-claw-gang/holdingpen/internal/store"
)

var (
	// ErrSkipIndexing means the object is deliberately not indexed: it has
	// no registered workflow definition or is still INITIAL.
	ErrSkipIndexing = errors.New("record: object not indexable")
	// ErrMissingModel is returned by operations that need a bound object.
	ErrMissingModel = errors.New("record: no workflow object bound")
	// ErrNotFound is returned when the object does not exist.
	ErrNotFound = store.ErrNotFound
	// ErrUnknownAction is returned when the object's action has no handler.
	ErrUnknownAction = errors.New("record: unknown action")
	// ErrUnknownVerb is returned by Apply for verbs outside the dispatch table.
	ErrUnknownVerb = errors.New("record: unknown verb")
	// ErrInvalidField is returned when a partial update carries a bad value.
	ErrInvalidField = errors.New("record: invalid field")
)
