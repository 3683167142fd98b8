package kafka

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
)

type mockKafkaReader struct {
	messages  chan kafka.Message
	committed atomic.Int64
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case msg := <-m.messages:
		return msg, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (m *mockKafkaReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.committed.Add(int64(len(msgs)))
	return nil
}

func (m *mockKafkaReader) Close() error { return nil }

func newTestConsumer(reader ReaderInterface, retry RetryConfig) *Consumer {
	return &Consumer{
		reader: reader,
		config: ConsumerConfig{
			Brokers: []string{"localhost:9092"},
			GroupID: "tckdb-test",
			Topics:  []string{TopicSpeciesAccepted},
			Retry:   retry,
		},
		logger:   logging.NewNopLogger(),
		handlers: make(map[string]MessageHandler),
		metrics:  &ConsumerMetrics{},
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	valid := ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "g",
		Topics:  []string{"t"},
	}
	assert.NoError(t, ValidateConsumerConfig(valid))

	noGroup := valid
	noGroup.GroupID = ""
	assert.Error(t, ValidateConsumerConfig(noGroup))

	noTopics := valid
	noTopics.Topics = nil
	assert.Error(t, ValidateConsumerConfig(noTopics))

	badOffset := valid
	badOffset.AutoOffsetReset = "newest"
	assert.Error(t, ValidateConsumerConfig(badOffset))
}

func TestConsumer_DispatchesToHandler(t *testing.T) {
	reader := &mockKafkaReader{messages: make(chan kafka.Message, 1)}
	c := newTestConsumer(reader, RetryConfig{})

	received := make(chan *Message, 1)
	c.Subscribe(TopicSpeciesAccepted, func(ctx context.Context, msg *Message) error {
		received <- msg
		return nil
	})

	reader.messages <- kafka.Message{
		Topic:  TopicSpeciesAccepted,
		Key:    []byte("id-1"),
		Value:  []byte(`{"event_type":"species.accepted"}`),
		Offset: 42,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("species.accepted")},
		},
	}

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	select {
	case msg := <-received:
		assert.Equal(t, "id-1", string(msg.Key))
		assert.Equal(t, int64(42), msg.Offset)
		assert.Equal(t, "species.accepted", msg.Headers["event_type"])
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	assert.Eventually(t, func() bool {
		return c.metrics.MessagesProcessed.Load() == 1 && reader.committed.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsumer_StartTwice(t *testing.T) {
	reader := &mockKafkaReader{messages: make(chan kafka.Message)}
	c := newTestConsumer(reader, RetryConfig{})

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyRunning)
}

func TestConsumer_CommitsUnhandledTopics(t *testing.T) {
	reader := &mockKafkaReader{messages: make(chan kafka.Message, 1)}
	c := newTestConsumer(reader, RetryConfig{})

	reader.messages <- kafka.Message{Topic: "unknown.topic", Value: []byte("x")}

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	assert.Eventually(t, func() bool {
		return reader.committed.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProcessMessage_RetriesThenSucceeds(t *testing.T) {
	c := newTestConsumer(&mockKafkaReader{}, RetryConfig{
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	})

	attempts := 0
	handler := func(ctx context.Context, msg *Message) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}

	err := c.processMessage(context.Background(), &Message{Topic: "t"}, handler)
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, int64(2), c.metrics.MessagesRetried.Load())
}

func TestProcessMessage_DeadLettersAfterRetries(t *testing.T) {
	var dlMsgs []kafka.Message
	dlWriter := &mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			dlMsgs = append(dlMsgs, msgs...)
			return nil
		},
	}
	c := newTestConsumer(&mockKafkaReader{}, RetryConfig{
		MaxRetries:      1,
		RetryBackoff:    time.Millisecond,
		DeadLetterTopic: TopicDeadLetter,
	})
	c.deadLetterProducer = newTestProducer(dlWriter)

	permanent := errors.New("malformed payload")
	handler := func(ctx context.Context, msg *Message) error { return permanent }

	msg := &Message{
		Topic:   TopicSpeciesAccepted,
		Key:     []byte("id-1"),
		Value:   []byte("garbage"),
		Headers: map[string]string{"event_type": "species.accepted"},
	}
	err := c.processMessage(context.Background(), msg, handler)
	assert.Error(t, err)

	require.Len(t, dlMsgs, 1)
	assert.Equal(t, TopicDeadLetter, dlMsgs[0].Topic)
	assert.Equal(t, "garbage", string(dlMsgs[0].Value))

	headers := make(map[string]string)
	for _, h := range dlMsgs[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, TopicSpeciesAccepted, headers["original_topic"])
	assert.Equal(t, "malformed payload", headers["error_message"])
	assert.Equal(t, int64(1), c.metrics.MessagesDeadLettered.Load())
}
