package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
	"github.com/Hemantgithubpro/rewear-1/internal/models"
	"github.com/Hemantgithubpro/rewear-1/internal/repository"
)

// LedgerService is the read side of the points ledger. Balances only change
// through settlement.
type LedgerService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int32, error)
	History(ctx context.Context, userID uuid.UUID) ([]models.LedgerEntry, error)
}

type ledgerService struct {
	ledgerRepo  repository.LedgerRepository
	redisClient redis.RedisClient
	balanceTTL  time.Duration
}

func NewLedgerService(ledgerRepo repository.LedgerRepository, redisClient redis.RedisClient, balanceTTL time.Duration) *ledgerService {
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		redisClient: redisClient,
		balanceTTL:  balanceTTL,
	}
}

func (s *ledgerService) GetBalance(ctx context.Context, userID uuid.UUID) (int32, error) {
	ctx, span := tracer.Start(ctx, "GetBalance")
	defer span.End()

	key, cacheable := s.balanceKey(ctx, userID)
	if cacheable {
		if raw, err := s.redisClient.Get(ctx, key); err == nil {
			if balance, err := strconv.ParseInt(raw, 10, 32); err == nil {
				return int32(balance), nil
			}
			slog.Warn("unreadable cached balance", "user_id", userID, "value", raw)
		}
	}

	balance, err := s.ledgerRepo.GetBalance(ctx, userID)
	if err != nil {
		return 0, spanError(span, err, "balance lookup failed")
	}
	if !cacheable {
		return balance, nil
	}
	if err := s.redisClient.Set(ctx, key, balance, s.balanceTTL); err != nil {
		slog.Warn("failed to cache balance", "user_id", userID, "error", err)
	}
	return balance, nil
}

// balanceKey resolves the cache key for the user's current balance version.
// The version is read before Postgres, so a value loaded before a settlement
// lands under the old version and is never served after the bump.
func (s *ledgerService) balanceKey(ctx context.Context, userID uuid.UUID) (string, bool) {
	version, err := s.redisClient.Get(ctx, redis.BalanceVersionKey(userID))
	switch {
	case err == nil:
		return redis.BalanceKey(userID, version), true
	case stderrors.Is(err, redis.ErrKeyNotFound):
		return redis.BalanceKey(userID, "0"), true
	default:
		slog.Warn("balance cache unavailable", "user_id", userID, "error", err)
		return "", false
	}
}

func (s *ledgerService) History(ctx context.Context, userID uuid.UUID) ([]models.LedgerEntry, error) {
	ctx, span := tracer.Start(ctx, "LedgerHistory")
	defer span.End()

	entries, err := s.ledgerRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, spanError(span, err, "ledger lookup failed")
	}
	return entries, nil
}
