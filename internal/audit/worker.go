package audit

import (
	"context"
	"log/slog"
)

// Sink receives every persisted event; the optional Kafka mirror
// implements it.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker drains the event channel into the store and the optional sink.
type Worker struct {
	store  Store
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, sink: sink, inbox: inbox, logger: logger}
}

// Run consumes events until ctx is canceled, then drains whatever is
// already buffered.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case event := <-w.inbox:
			w.handle(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	// Persist with a background context: the run context is already done.
	ctx := context.Background()
	for {
		select {
		case event := <-w.inbox:
			w.handle(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) handle(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to persist audit event",
			"error", err, "action", event.Action)
	}
	if w.sink != nil {
		if err := w.sink.Publish(ctx, event); err != nil {
			w.logger.WarnContext(ctx, "failed to mirror audit event",
				"error", err, "action", event.Action)
		}
	}
}
