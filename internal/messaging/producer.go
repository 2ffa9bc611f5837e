package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/storefront/internal/model"
)

var producerTracer = otel.Tracer("messaging/producer")

// MessageWriter is the subset of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes order events keyed by user id, so one user's orders stay on one partition.
type Producer struct {
	writer MessageWriter
	topic  string
}

// NewProducer creates a Producer writing to topic on the given brokers.
func NewProducer(brokers []string, topic string) *Producer {
	return NewProducerWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           100 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
	}, topic)
}

// NewProducerWithWriter creates a Producer over an existing writer.
func NewProducerWithWriter(w MessageWriter, topic string) *Producer {
	return &Producer{writer: w, topic: topic}
}

// PublishOrderPlaced sends the event with the current trace context in its headers.
func (p *Producer) PublishOrderPlaced(ctx context.Context, event model.OrderPlacedEvent) error {
	msg, err := p.orderPlacedMessage(event)
	if err != nil {
		return err
	}
	key := string(msg.Key)

	ctx, span := producerTracer.Start(ctx, "send "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingKafkaMessageKey(key),
			semconv.MessagingMessageID(event.EventID),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, NewMessageCarrier(&msg))

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("write order event: %w", err)
	}
	return nil
}

func (p *Producer) orderPlacedMessage(event model.OrderPlacedEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal order event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(model.EventTypeOrderPlaced)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}, nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
