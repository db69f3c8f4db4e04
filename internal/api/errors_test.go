package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finops-claw-gang/holdingpen/internal/actions"
	"github.com/finops-claw-gang/holdingpen/internal/ratelimit"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/search"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{record.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", record.ErrNotFound), http.StatusNotFound},
		{record.ErrSkipIndexing, http.StatusConflict},
		{record.ErrMissingModel, http.StatusConflict},
		{record.ErrUnknownAction, http.StatusBadRequest},
		{fmt.Errorf("%w: %q", record.ErrUnknownVerb, "fly"), http.StatusBadRequest},
		{record.ErrInvalidField, http.StatusBadRequest},
		{actions.ErrInvalidArgument, http.StatusBadRequest},
		{search.ErrTooManyResults, http.StatusBadRequest},
		{ratelimit.ErrBudgetExceeded, http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
