package app

import "github.com/edd34/nft-marketplace/internal/domain"

// EventSink receives events after the transaction that recorded them has
// committed. Implementations must not block; slow consumers are their own
// problem.
type EventSink interface {
	Publish(e domain.Event)
}

type nopSink struct{}

func (nopSink) Publish(domain.Event) {}

// publishAll forwards committed events to the sink. The persisted event log
// is the source of truth; the sink is best-effort fan-out.
func publishAll(sink EventSink, events []domain.Event) {
	for _, e := range events {
		sink.Publish(e)
	}
}
