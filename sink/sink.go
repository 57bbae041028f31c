// Package sink holds the transports a crash report can leave the host by:
// a log pipeline, a Kafka topic, or a collector service. The broadcaster
// drives any of them through the one Sink interface.
package sink

import (
	"context"

	"pandump/outbox"
)

// Sink is one way a crash report leaves the host. Publish must be safe to
// call again for the same report; delivery is at-least-once end to end.
type Sink interface {
	Publish(ctx context.Context, rep *outbox.Report) error
	Close() error
}
