package redis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis/mocks"
)

func TestBalanceKey(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "user:"+id.String()+":balance:v7", redis.BalanceKey(id, "7"))
	assert.NotEqual(t, redis.BalanceKey(id, "7"), redis.BalanceKey(id, "8"))
	assert.Equal(t, "user:"+id.String()+":balance:version", redis.BalanceVersionKey(id))
}

func TestBumpBalances(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockRedisClient(ctrl)
	owner, requester := uuid.New(), uuid.New()

	t.Run("bumps every user", func(t *testing.T) {
		client.EXPECT().Incr(gomock.Any(), redis.BalanceVersionKey(owner)).Return(int64(2), nil)
		client.EXPECT().Incr(gomock.Any(), redis.BalanceVersionKey(requester)).Return(int64(1), nil)

		assert.NoError(t, redis.BumpBalances(context.Background(), client, owner, requester))
	})

	t.Run("keeps going after a failure", func(t *testing.T) {
		client.EXPECT().Incr(gomock.Any(), redis.BalanceVersionKey(owner)).Return(int64(0), errors.New("connection refused"))
		client.EXPECT().Incr(gomock.Any(), redis.BalanceVersionKey(requester)).Return(int64(3), nil)

		err := redis.BumpBalances(context.Background(), client, owner, requester)
		assert.ErrorContains(t, err, owner.String())
	})
}
