// Package settlement applies the balance and ownership changes of an accepted
// swap request in a single database transaction.
package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/observability"
	"github.com/Hemantgithubpro/rewear-1/internal/models"
	"github.com/Hemantgithubpro/rewear-1/internal/repository"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

type SwapStore interface {
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.SwapStatus, reason string) error
}

type ItemStore interface {
	LockItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Item, error)
	TransferOwnership(ctx context.Context, itemID, newOwner uuid.UUID) error
}

type Config struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

type Settler struct {
	txManager repository.TxManager
	swaps     SwapStore
	items     ItemStore
	ledger    ledger
	cfg       Config
}

func NewSettler(txManager repository.TxManager, swaps SwapStore, items ItemStore, balances BalanceStore, cfg Config) *Settler {
	return &Settler{
		txManager: txManager,
		swaps:     swaps,
		items:     items,
		ledger:    ledger{store: balances},
		cfg:       cfg,
	}
}

// Settle completes an ACCEPTED swap request. Concurrency conflicts are retried
// up to MaxRetries times. When settlement cannot succeed the request is moved
// to FAILED and returned together with the cause. A request that is no longer
// ACCEPTED, or a cancelled ctx, leaves the stored request untouched.
func (s *Settler) Settle(ctx context.Context, swapID uuid.UUID) (*models.SwapRequest, error) {
	tracer := otel.Tracer("settlement")
	ctx, span := tracer.Start(ctx, "Settle")
	defer span.End()
	span.SetAttributes(attribute.String("swap_id", swapID.String()))

	start := time.Now()
	req, err := s.settleWithRetry(ctx, swapID)
	if err == nil {
		observability.SettlementDuration.WithLabelValues("completed").Observe(time.Since(start).Seconds())
		observability.SwapTransitions.WithLabelValues(string(req.SwapType), string(models.SwapCompleted)).Inc()
		slog.Info("swap settled", "swap_id", swapID, "swap_type", req.SwapType)
		return req, nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "settlement failed")

	if aborted(err) {
		observability.SettlementDuration.WithLabelValues("aborted").Observe(time.Since(start).Seconds())
		slog.Warn("settlement aborted", "swap_id", swapID, "error", err)
		return nil, err
	}

	observability.SettlementDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
	failed, markErr := s.markFailed(ctx, swapID, failureReason(err))
	if markErr != nil {
		slog.Error("failed to mark swap as failed", "swap_id", swapID, "error", markErr, "cause", err)
		return nil, fmt.Errorf("%w (marking failed: %v)", err, markErr)
	}
	return failed, err
}

func (s *Settler) settleWithRetry(ctx context.Context, swapID uuid.UUID) (*models.SwapRequest, error) {
	for attempt := 0; ; attempt++ {
		req, err := s.settleOnce(ctx, swapID)
		if err == nil {
			return req, nil
		}
		if !stderrors.Is(err, pkgerrors.ErrConcurrencyConflict) || attempt >= s.cfg.MaxRetries {
			return nil, err
		}

		observability.SettlementRetries.Inc()
		wait := s.cfg.RetryBackoff * time.Duration(attempt+1)
		slog.Warn("settlement conflict, retrying", "swap_id", swapID, "attempt", attempt+1, "backoff", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Settler) settleOnce(ctx context.Context, swapID uuid.UUID) (*models.SwapRequest, error) {
	var settled *models.SwapRequest
	err := s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		req, err := s.swaps.GetByIDForUpdate(ctx, swapID)
		if err != nil {
			return err
		}
		if req.Status != models.SwapAccepted {
			return fmt.Errorf("%w: swap is %s", pkgerrors.ErrInvalidTransition, req.Status)
		}

		balances, err := s.ledger.store.LockUsers(ctx, []uuid.UUID{req.OwnerID, req.RequesterID})
		if err != nil {
			return err
		}
		for _, id := range []uuid.UUID{req.OwnerID, req.RequesterID} {
			if _, ok := balances[id]; !ok {
				return pkgerrors.ErrUserNotFound
			}
		}

		items, err := s.items.LockItems(ctx, req.ItemIDs())
		if err != nil {
			return err
		}
		ownerItem, err := lockedItem(items, req.OwnerItemID, req.OwnerID)
		if err != nil {
			return err
		}

		switch req.SwapType {
		case models.SwapTypePointsRedemption:
			if req.PointsUsed == nil {
				return pkgerrors.InvalidSwap("pointsUsed is required")
			}
			points := *req.PointsUsed
			if balances[req.RequesterID] < points {
				return fmt.Errorf("%w: balance %d, need %d", pkgerrors.ErrInsufficientPoints, balances[req.RequesterID], points)
			}
			if _, err := s.ledger.debit(ctx, req.RequesterID, req.ID, points); err != nil {
				return err
			}
			if _, err := s.ledger.credit(ctx, req.OwnerID, req.ID, points); err != nil {
				return err
			}
			if err := s.items.TransferOwnership(ctx, ownerItem.ID, req.RequesterID); err != nil {
				return err
			}

		case models.SwapTypeDirect:
			if req.RequesterItemID == nil {
				return pkgerrors.InvalidSwap("requesterItemId is required")
			}
			requesterItem, err := lockedItem(items, *req.RequesterItemID, req.RequesterID)
			if err != nil {
				return err
			}
			if err := s.items.TransferOwnership(ctx, ownerItem.ID, req.RequesterID); err != nil {
				return err
			}
			if err := s.items.TransferOwnership(ctx, requesterItem.ID, req.OwnerID); err != nil {
				return err
			}

		default:
			return pkgerrors.InvalidSwap(fmt.Sprintf("unknown swap type %q", req.SwapType))
		}

		if err := s.swaps.UpdateStatus(ctx, req.ID, models.SwapAccepted, models.SwapCompleted, ""); err != nil {
			return err
		}
		req.Status = models.SwapCompleted
		settled = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// lockedItem returns the item if it is still held by owner and on the market.
func lockedItem(items map[uuid.UUID]*models.Item, id, owner uuid.UUID) (*models.Item, error) {
	item, ok := items[id]
	if !ok {
		return nil, pkgerrors.ErrItemNotFound
	}
	if item.OwnerID != owner {
		return nil, fmt.Errorf("%w: item %s changed owner", pkgerrors.ErrItemUnavailable, id)
	}
	if !item.Available {
		return nil, fmt.Errorf("%w: item %s is no longer available", pkgerrors.ErrItemUnavailable, id)
	}
	return item, nil
}

func (s *Settler) markFailed(ctx context.Context, swapID uuid.UUID, reason string) (*models.SwapRequest, error) {
	var failed *models.SwapRequest
	err := s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		req, err := s.swaps.GetByIDForUpdate(ctx, swapID)
		if err != nil {
			return err
		}
		if err := s.swaps.UpdateStatus(ctx, swapID, models.SwapAccepted, models.SwapFailed, reason); err != nil {
			return err
		}
		req.Status = models.SwapFailed
		req.FailureReason = reason
		failed = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.SwapTransitions.WithLabelValues(string(failed.SwapType), string(models.SwapFailed)).Inc()
	slog.Warn("swap marked as failed", "swap_id", swapID, "reason", reason)
	return failed, nil
}

// aborted reports whether err leaves the request as it is instead of failing it.
// A cancelled settlement stays ACCEPTED and is picked up again on restart.
func aborted(err error) bool {
	return stderrors.Is(err, pkgerrors.ErrInvalidTransition) ||
		stderrors.Is(err, pkgerrors.ErrSwapNotFound) ||
		stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, context.DeadlineExceeded)
}

func failureReason(err error) string {
	switch {
	case stderrors.Is(err, pkgerrors.ErrInsufficientPoints):
		return "insufficient points"
	case stderrors.Is(err, pkgerrors.ErrItemUnavailable):
		return "item no longer available"
	case stderrors.Is(err, pkgerrors.ErrItemNotFound):
		return "item not found"
	case stderrors.Is(err, pkgerrors.ErrConcurrencyConflict):
		return "concurrency conflict"
	case stderrors.Is(err, pkgerrors.ErrInvalidSwapRequest):
		return "invalid swap request"
	default:
		return "settlement error"
	}
}
