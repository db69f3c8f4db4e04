package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds OTel metric instruments for the holding pen.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	IndexWrites       metric.Int64Counter
	IndexFailures     metric.Int64Counter
	ActionsDispatched metric.Int64Counter
	TasksEnqueued     metric.Int64Counter
}

// NewMetrics creates the holding pen metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsFromMeter(otel.Meter("holdingpen"))
}

// NewMetricsFromMeter creates the instruments on the given meter.
func NewMetricsFromMeter(meter metric.Meter) (*Metrics, error) {
	indexWrites, err := meter.Int64Counter("holdingpen.index.writes",
		metric.WithDescription("Search index writes and deletes issued"),
	)
	if err != nil {
		return nil, err
	}

	indexFailures, err := meter.Int64Counter("holdingpen.index.failures",
		metric.WithDescription("Search index operations that failed and were suppressed"),
	)
	if err != nil {
		return nil, err
	}

	actionsDispatched, err := meter.Int64Counter("holdingpen.actions.dispatched",
		metric.WithDescription("Verbs dispatched against workflow records"),
	)
	if err != nil {
		return nil, err
	}

	tasksEnqueued, err := meter.Int64Counter("holdingpen.tasks.enqueued",
		metric.WithDescription("Continuation tasks submitted to the task queue"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		IndexWrites:       indexWrites,
		IndexFailures:     indexFailures,
		ActionsDispatched: actionsDispatched,
		TasksEnqueued:     tasksEnqueued,
	}, nil
}

// RecordIndexWrite records an index operation ("index" or "delete") on an index.
func (m *Metrics) RecordIndexWrite(ctx context.Context, op, index string) {
	if m == nil {
		return
	}
	m.IndexWrites.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("index", index),
	))
}

// RecordIndexFailure records a suppressed index failure.
func (m *Metrics) RecordIndexFailure(ctx context.Context, op, index string) {
	if m == nil {
		return
	}
	m.IndexFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("index", index),
	))
}

// RecordDispatch records a verb dispatched against a record.
func (m *Metrics) RecordDispatch(ctx context.Context, verb, action string) {
	if m == nil {
		return
	}
	m.ActionsDispatched.Add(ctx, 1, metric.WithAttributes(
		attribute.String("verb", verb),
		attribute.String("action", action),
	))
}

// RecordTask records a task submitted to the continuation queue.
func (m *Metrics) RecordTask(ctx context.Context, workflow string) {
	if m == nil {
		return
	}
	m.TasksEnqueued.Add(ctx, 1, metric.WithAttributes(attribute.String("workflow", workflow)))
}
