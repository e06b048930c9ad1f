package event

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ops/pkg/messaging"
	"github.com/jwalitptl/clinic-ops/pkg/metrics"
)

// Publisher emits domain events. Emission is best effort: failures are
// logged and counted but never returned to the caller.
type Publisher interface {
	Emit(ctx context.Context, eventType EventType, payload interface{})
}

type BrokerPublisher struct {
	broker  messaging.Broker
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewPublisher(broker messaging.Broker, m *metrics.Metrics) *BrokerPublisher {
	return &BrokerPublisher{
		broker:  broker,
		metrics: m,
		now:     time.Now,
	}
}

func (p *BrokerPublisher) Emit(ctx context.Context, eventType EventType, payload interface{}) {
	evt, err := New(eventType, payload, p.now())
	if err == nil {
		err = p.broker.Publish(ctx, string(eventType), evt)
	}
	p.metrics.EventPublished(string(eventType), err)
	if err != nil {
		log.Warn().Err(err).Str("event_type", string(eventType)).Msg("failed to publish event")
		return
	}
	log.Debug().Str("event_type", string(eventType)).Str("event_id", evt.ID.String()).Msg("event published")
}

// Discard drops every event.
type Discard struct{}

func (Discard) Emit(context.Context, EventType, interface{}) {}
