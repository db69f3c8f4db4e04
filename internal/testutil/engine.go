package testutil

import (
	"context"
	"sync"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
)

// StubEngine satisfies engine.Continuer by recording calls.
type StubEngine struct {
	mu    sync.Mutex
	Calls []ResumeCall
	Err   error
}

func (e *StubEngine) Continue(_ context.Context, objectID int64, restartPoint domain.RestartPoint) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls = append(e.Calls, ResumeCall{ObjectID: objectID, RestartPoint: restartPoint})
	return e.Err
}
