package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrBudgetExceeded is returned when a user has used up their window.
var ErrBudgetExceeded = errors.New("action budget exceeded")

// ActionBudget tracks per-user bulk action counts within time windows.
type ActionBudget struct {
	mu     sync.Mutex
	counts map[string]*windowCounter

	maxPerWindow int
	windowSize   time.Duration
	now          func() time.Time
}

type windowCounter struct {
	count     int
	windowEnd time.Time
}

// NewActionBudget creates a budget limiter.
// maxPerWindow limits calls per (user, verb) within windowSize.
func NewActionBudget(maxPerWindow int, windowSize time.Duration) *ActionBudget {
	return &ActionBudget{
		counts:       make(map[string]*windowCounter),
		maxPerWindow: maxPerWindow,
		windowSize:   windowSize,
		now:          time.Now,
	}
}

func budgetKey(user, verb string) string {
	return user + "|" + verb
}

// Check returns an error wrapping ErrBudgetExceeded if the user has
// exhausted the budget for the verb.
func (b *ActionBudget) Check(user, verb string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.checkLocked(user, verb)
}

func (b *ActionBudget) checkLocked(user, verb string) error {
	wc, ok := b.counts[budgetKey(user, verb)]
	if !ok || b.now().After(wc.windowEnd) {
		return nil // no window or expired window
	}
	if wc.count >= b.maxPerWindow {
		return fmt.Errorf("%w: user %s verb %s (%d/%d in window)",
			ErrBudgetExceeded, user, verb, wc.count, b.maxPerWindow)
	}
	return nil
}

// Record records a call for the user.
func (b *ActionBudget) Record(user, verb string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recordLocked(user, verb)
}

func (b *ActionBudget) recordLocked(user, verb string) {
	key := budgetKey(user, verb)
	wc, ok := b.counts[key]
	if !ok || b.now().After(wc.windowEnd) {
		b.counts[key] = &windowCounter{
			count:     1,
			windowEnd: b.now().Add(b.windowSize),
		}
		return
	}
	wc.count++
}

// Take checks and records in one step.
func (b *ActionBudget) Take(user, verb string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLocked(user, verb); err != nil {
		return err
	}
	b.recordLocked(user, verb)
	return nil
}
