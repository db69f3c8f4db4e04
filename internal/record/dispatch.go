package record

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Verb is an operator action on a record.
type Verb string

const (
	VerbResolve Verb = "resolve"
	VerbRestart Verb = "restart"
	VerbResume  Verb = "resume"
)

// Verbs lists the dispatchable verbs.
var Verbs = []Verb{VerbResolve, VerbRestart, VerbResume}

// ParseVerb validates a verb name.
func ParseVerb(name string) (Verb, error) {
	v := Verb(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := verbTable[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVerb, name)
	}
	return v, nil
}

type verbFunc func(a *Adapter, ctx context.Context, rec *Record, args map[string]any) (any, error)

var verbTable = map[Verb]verbFunc{
	VerbResolve: func(a *Adapter, ctx context.Context, rec *Record, args map[string]any) (any, error) {
		return a.Resolve(ctx, rec, args)
	},
	VerbRestart: func(a *Adapter, ctx context.Context, rec *Record, args map[string]any) (any, error) {
		opts, err := restartOptions(args)
		if err != nil {
			return nil, err
		}
		return a.Restart(ctx, rec, opts)
	},
	VerbResume: func(a *Adapter, ctx context.Context, rec *Record, args map[string]any) (any, error) {
		opts, err := restartOptions(args)
		if err != nil {
			return nil, err
		}
		return a.Resume(ctx, rec, opts)
	},
}

func restartOptions(args map[string]any) (RestartOptions, error) {
	raw, ok := args["callback_pos"]
	if !ok || raw == nil {
		return RestartOptions{}, nil
	}
	pos, ok := toIntSlice(raw)
	if !ok {
		return RestartOptions{}, fmt.Errorf("%w: callback_pos must be a list of non-negative integers", ErrInvalidField)
	}
	return RestartOptions{CallbackPos: pos}, nil
}

// Apply dispatches verb against rec. Unknown verbs fail with ErrUnknownVerb.
func (a *Adapter) Apply(ctx context.Context, rec *Record, verb Verb, args map[string]any) (any, error) {
	fn, ok := verbTable[verb]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVerb, verb)
	}
	action := ""
	if rec.model != nil {
		action = rec.model.Action()
	}
	a.metrics.RecordDispatch(ctx, string(verb), action)
	return fn(a, ctx, rec, args)
}

// ApplyByID loads the object with id and applies verb to it.
func (a *Adapter) ApplyByID(ctx context.Context, id int64, verb Verb, args map[string]any) (any, error) {
	if _, ok := verbTable[verb]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVerb, verb)
	}
	rec, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.Apply(ctx, rec, verb, args)
}

// BulkResult summarises a verb applied to many objects.
type BulkResult struct {
	Applied []int64          `json:"applied"`
	Missing []int64          `json:"missing"`
	Failed  map[int64]string `json:"failed"`
}

// ApplyMany applies verb to every id. Missing objects are skipped; other
// errors are collected per id.
func (a *Adapter) ApplyMany(ctx context.Context, ids []int64, verb Verb, args map[string]any) (BulkResult, error) {
	if _, ok := verbTable[verb]; !ok {
		return BulkResult{}, fmt.Errorf("%w: %q", ErrUnknownVerb, verb)
	}
	res := BulkResult{Failed: map[int64]string{}}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		_, err := a.ApplyByID(ctx, id, verb, args)
		switch {
		case err == nil:
			res.Applied = append(res.Applied, id)
		case errors.Is(err, ErrNotFound):
			res.Missing = append(res.Missing, id)
		default:
			res.Failed[id] = err.Error()
		}
	}
	return res, nil
}
