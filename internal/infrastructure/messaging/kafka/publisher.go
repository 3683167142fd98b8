package kafka

import (
	"context"

	"github.com/tckdb/tckdb-go/internal/domain/species"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
	"github.com/tckdb/tckdb-go/pkg/errors"
)

// eventSource identifies this service in event envelopes.
const eventSource = "tckdb-backend"

// EventPublisher maps species domain events onto lifecycle topics.  It is
// the Kafka implementation of the domain service's publisher port.
type EventPublisher struct {
	producer    *Producer
	topicPrefix string
	logger      logging.Logger
}

var _ species.EventPublisher = (*EventPublisher)(nil)

// NewEventPublisher wraps producer.  topicPrefix, when non-empty, is
// prepended verbatim to every topic name.
func NewEventPublisher(producer *Producer, topicPrefix string, log logging.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, topicPrefix: topicPrefix, logger: log}
}

// Publish serializes event into an envelope and writes it to the topic
// matching its type.  Events are keyed on the species id where one exists,
// so per-record ordering is preserved; rejected submissions have no id and
// key on the label.
func (p *EventPublisher) Publish(ctx context.Context, event species.DomainEvent) error {
	var (
		payload interface{}
		key     string
	)
	switch e := event.(type) {
	case species.AcceptedEvent:
		payload = SpeciesAcceptedPayload{
			SpeciesID: string(e.SpeciesID),
			Label:     e.Label,
			InChIKey:  e.InChIKey,
		}
		key = string(e.SpeciesID)
	case species.RejectedEvent:
		payload = SpeciesRejectedPayload{
			Label:      e.Label,
			Violations: e.Violations,
		}
		key = e.Label
	case species.ReviewedEvent:
		payload = SpeciesReviewedPayload{
			SpeciesID: string(e.SpeciesID),
			Approved:  e.Approved,
		}
		key = string(e.SpeciesID)
	case species.RetractedEvent:
		payload = SpeciesRetractedPayload{
			SpeciesID: string(e.SpeciesID),
			Reason:    e.Reason,
		}
		key = string(e.SpeciesID)
	default:
		return errors.Newf(errors.ErrCodeInternal, "unknown domain event type %q", event.EventType())
	}

	envelope, err := NewEventEnvelope(event.EventType(), eventSource, payload)
	if err != nil {
		return err
	}
	msg, err := envelope.ToMessage(p.topicPrefix+event.EventType(), []byte(key))
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		return err
	}

	p.logger.Debug("Domain event published",
		logging.String("event_type", event.EventType()),
		logging.String("event_id", envelope.EventID))
	return nil
}
