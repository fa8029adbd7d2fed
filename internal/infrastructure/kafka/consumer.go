package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	stderrors "errors"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
	"github.com/Hemantgithubpro/rewear-1/internal/models"
)

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer keeps the Redis item and balance caches in step with swap and
// item events, including events produced by other instances.
type Consumer struct {
	reader      MessageReader
	redisClient redis.RedisClient
	topics      Topics
}

func NewConsumer(brokers []string, topics Topics, groupID string, redisClient redis.RedisClient) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: []string{topics.Swaps, topics.Items},
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return NewConsumerWithReader(reader, topics, redisClient)
}

func NewConsumerWithReader(reader MessageReader, topics Topics, redisClient redis.RedisClient) *Consumer {
	return &Consumer{reader: reader, redisClient: redisClient, topics: topics}
}

// Consume reads messages until ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, context.Canceled) {
				slog.Info("Kafka consumer stopped")
				return
			}
			slog.Error("failed to read Kafka message", "error", err)
			continue
		}

		slog.Debug("Kafka message received", "topic", msg.Topic, "key", string(msg.Key))
		if err := c.handle(ctx, msg); err != nil {
			slog.Error("failed to handle Kafka message", "topic", msg.Topic, "key", string(msg.Key), "error", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	switch msg.Topic {
	case c.topics.Swaps:
		var event models.SwapEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal swap event: %w", err)
		}
		return c.onSwap(ctx, event)

	case c.topics.Items:
		var event models.ItemEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal item event: %w", err)
		}
		if event.ItemID == uuid.Nil {
			return fmt.Errorf("item event without item_id")
		}
		return c.redisClient.Del(ctx, redis.ItemKey(event.ItemID))

	default:
		slog.Warn("unexpected topic", "topic", msg.Topic)
		return nil
	}
}

func (c *Consumer) onSwap(ctx context.Context, event models.SwapEvent) error {
	if !strings.HasPrefix(event.EventType, "swap.") || event.SwapID == uuid.Nil {
		return fmt.Errorf("malformed swap event %q", event.EventType)
	}
	if event.Status != models.SwapCompleted {
		return nil
	}

	if err := redis.BumpBalances(ctx, c.redisClient, event.OwnerID, event.RequesterID); err != nil {
		return fmt.Errorf("failed to invalidate balances: %w", err)
	}
	keys := []string{redis.ItemKey(event.OwnerItemID)}
	if event.RequesterItemID != nil {
		keys = append(keys, redis.ItemKey(*event.RequesterItemID))
	}
	if err := c.redisClient.Del(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate caches: %w", err)
	}
	slog.Info("caches invalidated after settlement", "swap_id", event.SwapID)
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
