// Package kafka publishes species lifecycle events and provides the
// consumer used by the operator tooling to follow them.
package kafka

import (
	"context"
	"time"
)

// ProducerMessage is a message handed to the Producer.  The partition is
// chosen by the writer's hash balancer from Key.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Message is a message delivered to a consumer handler.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// MessageHandler processes one delivered message.  A non-nil error triggers
// the consumer's retry and dead-letter handling.
type MessageHandler func(ctx context.Context, msg *Message) error

// BatchPublishResult reports the per-message outcome of PublishBatch.
type BatchPublishResult struct {
	Succeeded int
	Failed    int
	Errors    []BatchItemError
}

// BatchItemError locates a failed message inside a batch.  Index is -1 when
// the whole batch failed with a single error.
type BatchItemError struct {
	Index int
	Topic string
	Error error
}
