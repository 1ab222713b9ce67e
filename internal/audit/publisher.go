package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Publisher hands events to a buffered channel consumed by the Worker,
// keeping audit writes off the request path. A full buffer drops the
// event with a log line; auditing must never block or fail a request.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action, "actor", event.Actor)
	}
}

// EmitEnrichment records the outcome of a backfill run.
func (p *Publisher) EmitEnrichment(ctx context.Context, resolved, failed int) {
	p.Emit(ctx, Event{
		Actor:  "scheduler",
		Action: ActionEnrichCompleted,
		Detail: fmt.Sprintf("resolved=%d failed=%d", resolved, failed),
	})
}
