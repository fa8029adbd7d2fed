package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkamocks "github.com/Hemantgithubpro/rewear-1/internal/infrastructure/kafka/mocks"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
	redismocks "github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis/mocks"
	"github.com/Hemantgithubpro/rewear-1/internal/models"
	repositorymocks "github.com/Hemantgithubpro/rewear-1/internal/repository/mocks"
	"github.com/Hemantgithubpro/rewear-1/internal/validation"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

type catalogFixture struct {
	items   *repositorymocks.MockItemRepository
	redis   *redismocks.MockRedisClient
	events  *kafkamocks.MockEventPublisher
	service *catalogService
}

func newCatalogFixture(t *testing.T) catalogFixture {
	ctrl := gomock.NewController(t)
	f := catalogFixture{
		items:  repositorymocks.NewMockItemRepository(ctrl),
		redis:  redismocks.NewMockRedisClient(ctrl),
		events: kafkamocks.NewMockEventPublisher(ctrl),
	}
	f.service = NewCatalogService(f.items, f.redis, f.events, time.Hour)
	return f
}

func jacketInput() validation.ItemInput {
	return validation.ItemInput{
		Title:       "Vintage Denim Jacket",
		Description: "Classic blue denim jacket from the 90s.",
		Category:    models.CategoryOuterwear,
		Type:        "Jacket",
		Size:        models.SizeM,
		Condition:   models.ConditionExcellent,
		Tags:        []string{"vintage", "denim"},
		Images:      []string{"https://images.example.com/jacket.jpg"},
		PointsValue: 25,
	}
}

var admin = models.Principal{UserID: uuid.New(), Role: models.RoleAdmin}

func TestCatalogService_Create(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("new items start unapproved and available", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.items.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, item *models.Item) error {
			assert.False(t, item.IsApproved)
			assert.True(t, item.Available)
			assert.Equal(t, ownerID, item.OwnerID)
			item.ID = uuid.New()
			return nil
		})
		f.events.EXPECT().PublishItem(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e models.ItemEvent) {
			assert.Equal(t, models.ItemCreated, e.EventType)
		})

		item, err := f.service.Create(ctx, ownerID, jacketInput())
		require.NoError(t, err)
		assert.Equal(t, int32(25), item.PointsValue)
	})

	t.Run("short description is rejected before persistence", func(t *testing.T) {
		f := newCatalogFixture(t)
		in := jacketInput()
		in.Description = "Too short"

		_, err := f.service.Create(ctx, ownerID, in)
		assert.ErrorIs(t, err, pkgerrors.ErrValidation)
	})

	t.Run("padding does not count toward minimum lengths", func(t *testing.T) {
		f := newCatalogFixture(t)
		in := jacketInput()
		in.Title = "   ab   "
		in.Description = "short" + strings.Repeat(" ", 20)
		in.Type = " x "

		_, err := f.service.Create(ctx, ownerID, in)
		var ve *pkgerrors.ValidationError
		require.ErrorAs(t, err, &ve)
		fields := map[string]bool{}
		for _, fe := range ve.Fields {
			fields[fe.Field] = true
		}
		assert.Equal(t, map[string]bool{"title": true, "description": true, "type": true}, fields)
	})

	t.Run("stores trimmed text", func(t *testing.T) {
		f := newCatalogFixture(t)
		in := jacketInput()
		in.Title = "  Vintage Denim Jacket  "
		in.Type = "\tJacket "
		f.items.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, item *models.Item) error {
			assert.Equal(t, "Vintage Denim Jacket", item.Title)
			assert.Equal(t, "Jacket", item.Type)
			item.ID = uuid.New()
			return nil
		})
		f.events.EXPECT().PublishItem(gomock.Any(), gomock.Any())

		_, err := f.service.Create(ctx, ownerID, in)
		require.NoError(t, err)
	})
}

func TestCatalogService_Get(t *testing.T) {
	ctx := context.Background()
	item := &models.Item{ID: uuid.New(), Title: "Floral Summer Dress", PointsValue: 20, IsApproved: true, Available: true}
	key := redis.ItemKey(item.ID)

	t.Run("cache miss loads and caches", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.redis.EXPECT().Get(gomock.Any(), key).Return("", redis.ErrKeyNotFound)
		f.items.EXPECT().GetByID(gomock.Any(), item.ID).Return(item, nil)
		raw, _ := json.Marshal(item)
		f.redis.EXPECT().Set(gomock.Any(), key, string(raw), time.Hour).Return(nil)

		got, err := f.service.Get(ctx, nil, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item, got)
	})

	t.Run("cache hit skips postgres", func(t *testing.T) {
		f := newCatalogFixture(t)
		raw, _ := json.Marshal(item)
		f.redis.EXPECT().Get(gomock.Any(), key).Return(string(raw), nil)

		got, err := f.service.Get(ctx, nil, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.Title, got.Title)
	})

	t.Run("not found", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.redis.EXPECT().Get(gomock.Any(), key).Return("", redis.ErrKeyNotFound)
		f.items.EXPECT().GetByID(gomock.Any(), item.ID).Return(nil, pkgerrors.ErrItemNotFound)

		_, err := f.service.Get(ctx, nil, item.ID)
		assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
	})
}

func TestCatalogService_GetUnapproved(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	pending := &models.Item{ID: uuid.New(), OwnerID: ownerID, Title: "Leather Ankle Boots", PointsValue: 30, Available: true}
	key := redis.ItemKey(pending.ID)
	raw, _ := json.Marshal(pending)

	owner := &models.Principal{UserID: ownerID, Role: models.RoleUser}
	stranger := &models.Principal{UserID: uuid.New(), Role: models.RoleUser}

	cases := []struct {
		name    string
		viewer  *models.Principal
		visible bool
	}{
		{"anonymous", nil, false},
		{"another user", stranger, false},
		{"owner", owner, true},
		{"admin", &admin, true},
	}
	for _, tc := range cases {
		t.Run(tc.name+" from postgres", func(t *testing.T) {
			f := newCatalogFixture(t)
			f.redis.EXPECT().Get(gomock.Any(), key).Return("", redis.ErrKeyNotFound)
			f.items.EXPECT().GetByID(gomock.Any(), pending.ID).Return(pending, nil)
			f.redis.EXPECT().Set(gomock.Any(), key, string(raw), time.Hour).Return(nil)

			got, err := f.service.Get(ctx, tc.viewer, pending.ID)
			if tc.visible {
				require.NoError(t, err)
				assert.Equal(t, pending.ID, got.ID)
				return
			}
			assert.ErrorIs(t, err, pkgerrors.ErrItemNotFound)
			assert.Nil(t, got)
		})

		t.Run(tc.name+" from cache", func(t *testing.T) {
			f := newCatalogFixture(t)
			f.redis.EXPECT().Get(gomock.Any(), key).Return(string(raw), nil)

			_, err := f.service.Get(ctx, tc.viewer, pending.ID)
			if tc.visible {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, pkgerrors.ErrItemNotFound)
			}
		})
	}

	t.Run("swapped away items are hidden too", func(t *testing.T) {
		f := newCatalogFixture(t)
		gone := *pending
		gone.IsApproved = true
		gone.Available = false
		goneRaw, _ := json.Marshal(&gone)
		f.redis.EXPECT().Get(gomock.Any(), key).Return(string(goneRaw), nil)

		_, err := f.service.Get(ctx, stranger, pending.ID)
		assert.ErrorIs(t, err, pkgerrors.ErrItemNotFound)
	})
}

func TestCatalogService_List(t *testing.T) {
	f := newCatalogFixture(t)
	category := models.CategoryShoes

	f.items.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter models.ItemFilter) ([]models.Item, error) {
		require.NotNil(t, filter.Approved)
		require.NotNil(t, filter.Available)
		assert.True(t, *filter.Approved)
		assert.True(t, *filter.Available)
		assert.Equal(t, &category, filter.Category)
		assert.Nil(t, filter.OwnerID)
		return []models.Item{{Title: "Leather Ankle Boots"}}, nil
	})

	owner := uuid.New()
	items, err := f.service.List(context.Background(), models.ItemFilter{Category: &category, OwnerID: &owner})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCatalogService_Approve(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("admin approves", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.items.EXPECT().SetApproved(gomock.Any(), id, true).Return(nil)
		f.items.EXPECT().GetByID(gomock.Any(), id).Return(&models.Item{ID: id, IsApproved: true, Available: true}, nil)
		f.redis.EXPECT().Del(gomock.Any(), redis.ItemKey(id)).Return(nil)
		f.events.EXPECT().PublishItem(gomock.Any(), gomock.Any())

		item, err := f.service.Approve(ctx, admin, id)
		require.NoError(t, err)
		assert.True(t, item.IsApproved)
	})

	t.Run("regular user is refused", func(t *testing.T) {
		f := newCatalogFixture(t)
		_, err := f.service.Approve(ctx, models.Principal{UserID: uuid.New(), Role: models.RoleUser}, id)
		assert.ErrorIs(t, err, pkgerrors.ErrForbidden)
		assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)
	})
}

func TestCatalogService_Reject(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("removes unapproved listing", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.items.EXPECT().GetByID(gomock.Any(), id).Return(&models.Item{ID: id}, nil)
		f.items.EXPECT().Delete(gomock.Any(), id).Return(nil)
		f.redis.EXPECT().Del(gomock.Any(), redis.ItemKey(id)).Return(nil)
		f.events.EXPECT().PublishItem(gomock.Any(), gomock.Any())

		assert.NoError(t, f.service.Reject(ctx, admin, id))
	})

	t.Run("approved listing stays", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.items.EXPECT().GetByID(gomock.Any(), id).Return(&models.Item{ID: id, IsApproved: true}, nil)

		assert.ErrorIs(t, f.service.Reject(ctx, admin, id), pkgerrors.ErrConflict)
	})
}

func TestCatalogService_Relist(t *testing.T) {
	ctx := context.Background()
	owner := models.Principal{UserID: uuid.New(), Role: models.RoleUser}
	id := uuid.New()

	t.Run("owner relists a swapped item for re-approval", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.items.EXPECT().GetByID(gomock.Any(), id).Return(&models.Item{ID: id, OwnerID: owner.UserID, IsApproved: true, Available: false}, nil)
		f.items.EXPECT().Relist(gomock.Any(), id).Return(nil)
		f.redis.EXPECT().Del(gomock.Any(), redis.ItemKey(id)).Return(nil)
		f.events.EXPECT().PublishItem(gomock.Any(), gomock.Any())

		item, err := f.service.Relist(ctx, owner, id)
		require.NoError(t, err)
		assert.True(t, item.Available)
		assert.False(t, item.IsApproved)
	})

	t.Run("only the owner", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.items.EXPECT().GetByID(gomock.Any(), id).Return(&models.Item{ID: id, OwnerID: uuid.New()}, nil)

		_, err := f.service.Relist(ctx, owner, id)
		assert.ErrorIs(t, err, pkgerrors.ErrForbidden)
	})

	t.Run("already available", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.items.EXPECT().GetByID(gomock.Any(), id).Return(&models.Item{ID: id, OwnerID: owner.UserID, Available: true}, nil)

		_, err := f.service.Relist(ctx, owner, id)
		assert.ErrorIs(t, err, pkgerrors.ErrConflict)
	})
}

func TestCatalogService_ListPending(t *testing.T) {
	f := newCatalogFixture(t)
	f.items.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter models.ItemFilter) ([]models.Item, error) {
		require.NotNil(t, filter.Approved)
		assert.False(t, *filter.Approved)
		return []models.Item{}, nil
	})

	_, err := f.service.ListPending(context.Background(), admin)
	require.NoError(t, err)

	_, err = f.service.ListPending(context.Background(), models.Principal{UserID: uuid.New(), Role: models.RoleUser})
	assert.ErrorIs(t, err, pkgerrors.ErrForbidden)
}

func TestLedgerService_GetBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledgerRepo := repositorymocks.NewMockLedgerRepository(ctrl)
	redisClient := redismocks.NewMockRedisClient(ctrl)
	service := NewLedgerService(ledgerRepo, redisClient, time.Minute)
	userID := uuid.New()
	versionKey := redis.BalanceVersionKey(userID)

	t.Run("cache miss", func(t *testing.T) {
		redisClient.EXPECT().Get(gomock.Any(), versionKey).Return("", redis.ErrKeyNotFound)
		redisClient.EXPECT().Get(gomock.Any(), redis.BalanceKey(userID, "0")).Return("", redis.ErrKeyNotFound)
		ledgerRepo.EXPECT().GetBalance(gomock.Any(), userID).Return(int32(150), nil)
		redisClient.EXPECT().Set(gomock.Any(), redis.BalanceKey(userID, "0"), int32(150), time.Minute).Return(nil)

		balance, err := service.GetBalance(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int32(150), balance)
	})

	t.Run("cache hit", func(t *testing.T) {
		redisClient.EXPECT().Get(gomock.Any(), versionKey).Return("2", nil)
		redisClient.EXPECT().Get(gomock.Any(), redis.BalanceKey(userID, "2")).Return("125", nil)

		balance, err := service.GetBalance(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int32(125), balance)
	})

	t.Run("value loaded before a settlement is not served after it", func(t *testing.T) {
		// the read starts at version 3, settlement commits and bumps to 4
		// while Postgres still answers with the old balance
		gomock.InOrder(
			redisClient.EXPECT().Get(gomock.Any(), versionKey).Return("3", nil),
			redisClient.EXPECT().Get(gomock.Any(), redis.BalanceKey(userID, "3")).Return("", redis.ErrKeyNotFound),
			ledgerRepo.EXPECT().GetBalance(gomock.Any(), userID).Return(int32(150), nil),
			redisClient.EXPECT().Set(gomock.Any(), redis.BalanceKey(userID, "3"), int32(150), time.Minute).Return(nil),

			redisClient.EXPECT().Get(gomock.Any(), versionKey).Return("4", nil),
			redisClient.EXPECT().Get(gomock.Any(), redis.BalanceKey(userID, "4")).Return("", redis.ErrKeyNotFound),
			ledgerRepo.EXPECT().GetBalance(gomock.Any(), userID).Return(int32(125), nil),
			redisClient.EXPECT().Set(gomock.Any(), redis.BalanceKey(userID, "4"), int32(125), time.Minute).Return(nil),
		)

		stale, err := service.GetBalance(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int32(150), stale)

		fresh, err := service.GetBalance(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int32(125), fresh)
	})

	t.Run("redis down skips the cache", func(t *testing.T) {
		redisClient.EXPECT().Get(gomock.Any(), versionKey).Return("", errors.New("connection refused"))
		ledgerRepo.EXPECT().GetBalance(gomock.Any(), userID).Return(int32(90), nil)

		balance, err := service.GetBalance(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int32(90), balance)
	})
}
