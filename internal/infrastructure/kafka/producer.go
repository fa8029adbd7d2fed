package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
)

//go:generate mockgen -destination=mocks/mock_kafka_producer.go -package=mocks . KafkaProducer,EventPublisher

type KafkaProducer interface {
	Send(ctx context.Context, topic string, key string, value []byte) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

func (p *Producer) Send(ctx context.Context, topic string, key string, value []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		slog.Error("failed to send Kafka message", "topic", topic, "key", key, "error", err)
		return err
	}
	slog.Debug("Kafka message sent", "topic", topic, "key", key)
	return nil
}

func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		slog.Error("failed to close Kafka writer", "error", err)
		return err
	}
	slog.Info("Kafka writer closed")
	return nil
}

// EventPublisher emits domain events. Delivery is best effort and never fails
// the operation that produced the event.
type EventPublisher interface {
	PublishSwap(ctx context.Context, event models.SwapEvent)
	PublishItem(ctx context.Context, event models.ItemEvent)
}

type Topics struct {
	Swaps string
	Items string
}

// Publisher sends events in the background, retrying with a linear backoff.
type Publisher struct {
	producer KafkaProducer
	topics   Topics
	retries  int
	backoff  time.Duration
	wg       sync.WaitGroup
}

func NewPublisher(producer KafkaProducer, topics Topics) *Publisher {
	return &Publisher{producer: producer, topics: topics, retries: 3, backoff: time.Second}
}

func (p *Publisher) PublishSwap(ctx context.Context, event models.SwapEvent) {
	p.publish(ctx, p.topics.Swaps, event.SwapID.String(), event.EventType, event)
}

func (p *Publisher) PublishItem(ctx context.Context, event models.ItemEvent) {
	p.publish(ctx, p.topics.Items, event.ItemID.String(), event.EventType, event)
}

func (p *Publisher) publish(ctx context.Context, topic, key, eventType string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal kafka event", "event_type", eventType, "error", err)
		return
	}

	// the request context is cancelled once the handler returns
	sendCtx := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for i := 0; i < p.retries; i++ {
			if err := p.producer.Send(sendCtx, topic, key, payload); err == nil {
				slog.Info("event sent", "topic", topic, "event_type", eventType, "key", key)
				return
			}
			time.Sleep(p.backoff * time.Duration(i+1))
		}
		slog.Error("failed to send event after retries", "topic", topic, "event_type", eventType, "key", key)
	}()
}

// Wait blocks until every in-flight event has been sent or given up on.
func (p *Publisher) Wait() {
	p.wg.Wait()
}
