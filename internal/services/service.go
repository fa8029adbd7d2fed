package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
	"github.com/Hemantgithubpro/rewear-1/internal/models"
)

var tracer = otel.Tracer("rewear-service")

//go:generate mockgen -destination=mocks/mock_settler.go -package=mocks . Settler
//go:generate mockgen -destination=mocks/mock_services.go -package=mocks . AuthService,CatalogService,LedgerService,SwapService

// Settler completes an accepted swap request.
type Settler interface {
	Settle(ctx context.Context, swapID uuid.UUID) (*models.SwapRequest, error)
}

// spanError records err on span and returns it unchanged.
func spanError(span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return err
}

// cachedJSON reads key into dst. It reports false on a miss or an unreadable
// entry, in which case the caller falls back to Postgres.
func cachedJSON(ctx context.Context, client redis.RedisClient, key string, dst any) bool {
	raw, err := client.Get(ctx, key)
	if err != nil {
		if !stderrors.Is(err, redis.ErrKeyNotFound) {
			slog.Warn("failed to read from Redis", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.Warn("failed to unmarshal cached value", "key", key, "error", err)
		return false
	}
	return true
}

func cacheJSON(ctx context.Context, client redis.RedisClient, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		slog.Error("failed to marshal value for cache", "key", key, "error", err)
		return
	}
	if err := client.Set(ctx, key, string(raw), ttl); err != nil {
		slog.Warn("failed to cache value", "key", key, "error", err)
	}
}

func invalidate(ctx context.Context, client redis.RedisClient, keys ...string) {
	if err := client.Del(ctx, keys...); err != nil {
		slog.Warn("failed to invalidate cache", "keys", keys, "error", err)
	}
}
