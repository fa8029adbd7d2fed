package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/kafka/mocks"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
	redismocks "github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis/mocks"
	"github.com/Hemantgithubpro/rewear-1/internal/models"
)

var testTopics = Topics{Swaps: "swaps", Items: "items"}

func TestPublisher_PublishSwap(t *testing.T) {
	ctrl := gomock.NewController(t)
	producer := mocks.NewMockKafkaProducer(ctrl)
	publisher := NewPublisher(producer, testTopics)
	publisher.backoff = time.Millisecond

	event := models.SwapEvent{
		EventType: "swap.completed",
		SwapID:    uuid.New(),
		Status:    models.SwapCompleted,
	}

	var sent []byte
	gomock.InOrder(
		producer.EXPECT().Send(gomock.Any(), "swaps", event.SwapID.String(), gomock.Any()).Return(errors.New("leader not available")),
		producer.EXPECT().Send(gomock.Any(), "swaps", event.SwapID.String(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _, _ string, value []byte) error {
				sent = value
				return nil
			}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	publisher.PublishSwap(ctx, event)
	cancel()
	publisher.Wait()

	var got models.SwapEvent
	require.NoError(t, json.Unmarshal(sent, &got))
	assert.Equal(t, event.SwapID, got.SwapID)
	assert.Equal(t, models.SwapCompleted, got.Status)
}

func TestPublisher_GivesUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	producer := mocks.NewMockKafkaProducer(ctrl)
	publisher := NewPublisher(producer, testTopics)
	publisher.backoff = time.Millisecond

	itemID := uuid.New()
	producer.EXPECT().Send(gomock.Any(), "items", itemID.String(), gomock.Any()).Return(errors.New("broker down")).Times(3)

	publisher.PublishItem(context.Background(), models.ItemEvent{EventType: models.ItemApproved, ItemID: itemID})
	publisher.Wait()
}

// sliceReader replays msgs, then cancels the consumer.
type sliceReader struct {
	msgs   []kafka.Message
	cancel context.CancelFunc
}

func (r *sliceReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *sliceReader) Close() error { return nil }

func message(t *testing.T, topic string, event any) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Topic: topic, Value: value}
}

func TestConsumer_Consume(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisClient := redismocks.NewMockRedisClient(ctrl)

	owner, requester := uuid.New(), uuid.New()
	ownerItem, requesterItem, approved := uuid.New(), uuid.New(), uuid.New()

	completed := models.SwapEvent{
		EventType:       "swap.completed",
		SwapID:          uuid.New(),
		OwnerItemID:     ownerItem,
		RequesterItemID: &requesterItem,
		OwnerID:         owner,
		RequesterID:     requester,
		SwapType:        models.SwapTypeDirect,
		Status:          models.SwapCompleted,
	}
	pending := completed
	pending.EventType = "swap.pending"
	pending.Status = models.SwapPending

	ctx, cancel := context.WithCancel(context.Background())
	reader := &sliceReader{cancel: cancel, msgs: []kafka.Message{
		message(t, "swaps", pending),
		message(t, "swaps", completed),
		message(t, "items", models.ItemEvent{EventType: models.ItemApproved, ItemID: approved}),
		{Topic: "swaps", Value: []byte("{broken")},
		message(t, "items", models.ItemEvent{EventType: models.ItemApproved}),
		message(t, "audit", completed),
	}}

	gomock.InOrder(
		redisClient.EXPECT().Incr(gomock.Any(), redis.BalanceVersionKey(owner)).Return(int64(1), nil),
		redisClient.EXPECT().Incr(gomock.Any(), redis.BalanceVersionKey(requester)).Return(int64(1), nil),
		redisClient.EXPECT().Del(gomock.Any(), redis.ItemKey(ownerItem), redis.ItemKey(requesterItem)).Return(nil),
		redisClient.EXPECT().Del(gomock.Any(), redis.ItemKey(approved)).Return(nil),
	)

	done := make(chan struct{})
	go func() {
		NewConsumerWithReader(reader, testTopics, redisClient).Consume(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
