package amqp

import (
	"context"

	"pennywise/internal/events"
	"pennywise/internal/logger"
)

// Publisher is the part of Client the forwarder needs.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Forwarder relays broker changes to an exchange, one message per change,
// routed by table name.
type Forwarder struct {
	pub Publisher
	sub *events.Subscription
}

// NewForwarder subscribes to every table on broker.
func NewForwarder(pub Publisher, broker *events.Broker) *Forwarder {
	return &Forwarder{pub: pub, sub: broker.Subscribe()}
}

// Run forwards changes until ctx is done or the broker closes. Publish
// failures are logged and the change is skipped.
func (f *Forwarder) Run(ctx context.Context) error {
	log := logger.Named("amqp")
	defer f.sub.Close()

	for {
		select {
		case <-ctx.Done():
			log.Infow("Stopping change forwarder", "reason", ctx.Err())
			return nil
		case change, ok := <-f.sub.Events():
			if !ok {
				return nil
			}
			body, err := NewChangeMessage(change).ToJSON()
			if err != nil {
				log.Errorw("Failed to marshal change", "error", err, "seq", change.Seq)
				continue
			}
			if err := f.pub.Publish(ctx, change.Table, body); err != nil {
				log.Errorw("Failed to publish change", "error", err, "seq", change.Seq, "table", change.Table)
				continue
			}
			log.Debugw("Published change", "seq", change.Seq, "table", change.Table, "op", change.Op)
		}
	}
}
