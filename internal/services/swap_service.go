package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/kafka"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/observability"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
	"github.com/Hemantgithubpro/rewear-1/internal/models"
	"github.com/Hemantgithubpro/rewear-1/internal/repository"
	"github.com/Hemantgithubpro/rewear-1/internal/validation"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

type SwapService interface {
	Create(ctx context.Context, requesterID uuid.UUID, in validation.SwapRequestInput) (*models.SwapRequest, error)
	Accept(ctx context.Context, actorID, swapID uuid.UUID) (*models.SwapRequest, error)
	Reject(ctx context.Context, actorID, swapID uuid.UUID) (*models.SwapRequest, error)
	Cancel(ctx context.Context, actorID, swapID uuid.UUID) (*models.SwapRequest, error)
	Get(ctx context.Context, actorID, swapID uuid.UUID) (*models.SwapRequest, error)
	ListForUser(ctx context.Context, actorID uuid.UUID, direction models.SwapDirection, status *models.SwapStatus) ([]models.SwapRequest, error)
	ResumeAccepted(ctx context.Context) (int, error)
}

type swapService struct {
	txManager   repository.TxManager
	swapRepo    repository.SwapRepository
	itemRepo    repository.ItemRepository
	ledgerRepo  repository.LedgerRepository
	redisClient redis.RedisClient
	events      kafka.EventPublisher
	settler     Settler
	lockTTL     time.Duration
}

func NewSwapService(
	txManager repository.TxManager,
	swapRepo repository.SwapRepository,
	itemRepo repository.ItemRepository,
	ledgerRepo repository.LedgerRepository,
	redisClient redis.RedisClient,
	events kafka.EventPublisher,
	settler Settler,
	lockTTL time.Duration,
) *swapService {
	return &swapService{
		txManager:   txManager,
		swapRepo:    swapRepo,
		itemRepo:    itemRepo,
		ledgerRepo:  ledgerRepo,
		redisClient: redisClient,
		events:      events,
		settler:     settler,
		lockTTL:     lockTTL,
	}
}

func (s *swapService) Create(ctx context.Context, requesterID uuid.UUID, in validation.SwapRequestInput) (*models.SwapRequest, error) {
	ctx, span := tracer.Start(ctx, "CreateSwap")
	defer span.End()

	if err := validation.ValidateSwapRequest(in); err != nil {
		return nil, spanError(span, err, "invalid swap payload")
	}
	ownerItemID, err := uuid.Parse(in.OwnerItemID)
	if err != nil {
		return nil, spanError(span, pkgerrors.InvalidSwap("ownerItemId is not a valid id"), "bad owner item id")
	}

	ownerItem, err := s.itemRepo.GetByID(ctx, ownerItemID)
	if err != nil {
		return nil, spanError(span, err, "owner item lookup failed")
	}
	if !ownerItem.Visible() {
		return nil, spanError(span, pkgerrors.InvalidSwap("item is not available for swapping"), "owner item unavailable")
	}
	if ownerItem.OwnerID == requesterID {
		return nil, spanError(span, pkgerrors.InvalidSwap("you cannot request your own item"), "self swap")
	}

	req := &models.SwapRequest{
		OwnerItemID: ownerItem.ID,
		OwnerID:     ownerItem.OwnerID,
		RequesterID: requesterID,
		SwapType:    in.SwapType,
		Status:      models.SwapPending,
		Message:     in.Message,
	}

	switch in.SwapType {
	case models.SwapTypePointsRedemption:
		if in.RequesterItemID != nil {
			return nil, spanError(span, pkgerrors.InvalidSwap("requesterItemId is not allowed for POINTS_REDEMPTION"), "unexpected requester item")
		}
		if in.PointsUsed == nil {
			return nil, spanError(span, pkgerrors.InvalidSwap("pointsUsed is required for POINTS_REDEMPTION"), "missing points")
		}
		if *in.PointsUsed != ownerItem.PointsValue {
			return nil, spanError(span, pkgerrors.InvalidSwap(fmt.Sprintf("pointsUsed must equal the item's points value of %d", ownerItem.PointsValue)), "points mismatch")
		}
		balance, err := s.ledgerRepo.GetBalance(ctx, requesterID)
		if err != nil {
			return nil, spanError(span, err, "balance lookup failed")
		}
		if balance < *in.PointsUsed {
			slog.Warn("insufficient points for swap", "user_id", requesterID, "balance", balance, "points", *in.PointsUsed)
			return nil, spanError(span, fmt.Errorf("%w: balance %d, need %d", pkgerrors.ErrInsufficientPoints, balance, *in.PointsUsed), "insufficient points")
		}
		points := *in.PointsUsed
		req.PointsUsed = &points

	case models.SwapTypeDirect:
		if in.PointsUsed != nil {
			return nil, spanError(span, pkgerrors.InvalidSwap("pointsUsed is not allowed for DIRECT_SWAP"), "unexpected points")
		}
		if in.RequesterItemID == nil {
			return nil, spanError(span, pkgerrors.InvalidSwap("requesterItemId is required for DIRECT_SWAP"), "missing requester item")
		}
		requesterItemID, err := uuid.Parse(*in.RequesterItemID)
		if err != nil {
			return nil, spanError(span, pkgerrors.InvalidSwap("requesterItemId is not a valid id"), "bad requester item id")
		}
		requesterItem, err := s.itemRepo.GetByID(ctx, requesterItemID)
		if err != nil {
			return nil, spanError(span, err, "requester item lookup failed")
		}
		if requesterItem.OwnerID != requesterID {
			return nil, spanError(span, pkgerrors.InvalidSwap("requesterItemId must be one of your items"), "requester item not owned")
		}
		if !requesterItem.Visible() {
			return nil, spanError(span, pkgerrors.InvalidSwap("your item is not available for swapping"), "requester item unavailable")
		}
		req.RequesterItemID = &requesterItem.ID
	}

	pending, err := s.swapRepo.HasPending(ctx, requesterID, ownerItem.ID)
	if err != nil {
		return nil, spanError(span, err, "pending check failed")
	}
	if pending {
		return nil, spanError(span, fmt.Errorf("%w: you already have a pending request for this item", pkgerrors.ErrConflict), "duplicate request")
	}

	if err := s.swapRepo.Create(ctx, req); err != nil {
		return nil, spanError(span, err, "swap creation failed")
	}

	span.SetAttributes(attribute.String("swap_id", req.ID.String()))
	observability.SwapTransitions.WithLabelValues(string(req.SwapType), string(models.SwapPending)).Inc()
	s.events.PublishSwap(ctx, models.NewSwapEvent(req))
	slog.Info("swap requested", "swap_id", req.ID, "swap_type", req.SwapType, "owner_item_id", req.OwnerItemID, "requester_id", requesterID)
	return req, nil
}

// Accept moves a PENDING request to ACCEPTED, rejects every other PENDING
// request touching the same items, then settles it. When settlement fails the
// FAILED request is returned along with the cause.
func (s *swapService) Accept(ctx context.Context, actorID, swapID uuid.UUID) (*models.SwapRequest, error) {
	ctx, span := tracer.Start(ctx, "AcceptSwap")
	defer span.End()
	span.SetAttributes(attribute.String("swap_id", swapID.String()))

	req, err := s.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return nil, spanError(span, err, "swap lookup failed")
	}
	if req.OwnerID != actorID {
		slog.Warn("non-owner tried to accept swap", "swap_id", swapID, "user_id", actorID)
		return nil, spanError(span, fmt.Errorf("%w: only the item owner can accept", pkgerrors.ErrForbidden), "not the owner")
	}
	if req.Status != models.SwapPending {
		return nil, spanError(span, fmt.Errorf("%w: swap is %s", pkgerrors.ErrInvalidTransition, req.Status), "not pending")
	}

	lockKey := redis.ItemLockKey(req.OwnerItemID)
	locked, err := s.redisClient.SetNX(ctx, lockKey, swapID.String(), s.lockTTL)
	switch {
	case err != nil:
		// the partial unique index on accepted requests still holds without the lock
		slog.Warn("failed to acquire accept lock", "swap_id", swapID, "error", err)
	case !locked:
		slog.Warn("item is being accepted concurrently", "swap_id", swapID, "item_id", req.OwnerItemID)
		return nil, spanError(span, fmt.Errorf("%w: another request for this item is being accepted", pkgerrors.ErrConcurrencyConflict), "item locked")
	default:
		defer s.releaseLock(context.WithoutCancel(ctx), lockKey, swapID)
	}

	var rejected []uuid.UUID
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.swapRepo.GetByIDForUpdate(ctx, swapID)
		if err != nil {
			return err
		}
		if current.Status != models.SwapPending {
			return fmt.Errorf("%w: swap is %s", pkgerrors.ErrInvalidTransition, current.Status)
		}
		if err := s.swapRepo.UpdateStatus(ctx, swapID, models.SwapPending, models.SwapAccepted, ""); err != nil {
			return err
		}
		rejected, err = s.swapRepo.RejectPending(ctx, current.ItemIDs(), swapID)
		return err
	})
	if err != nil {
		slog.Error("failed to accept swap", "swap_id", swapID, "error", err)
		return nil, spanError(span, err, "accept failed")
	}

	req.Status = models.SwapAccepted
	observability.SwapTransitions.WithLabelValues(string(req.SwapType), string(models.SwapAccepted)).Inc()
	s.events.PublishSwap(ctx, models.NewSwapEvent(req))
	s.publishRejected(ctx, rejected)
	slog.Info("swap accepted", "swap_id", swapID, "rejected_others", len(rejected))

	settled, err := s.settle(ctx, req)
	if err != nil {
		return settled, spanError(span, err, "settlement failed")
	}
	return settled, nil
}

// releaseLock drops the accept lock only while this request still holds it. A
// lock that expired and was taken by another accept is left alone.
func (s *swapService) releaseLock(ctx context.Context, lockKey string, swapID uuid.UUID) {
	released, err := s.redisClient.DelIfEqual(ctx, lockKey, swapID.String())
	switch {
	case err != nil:
		slog.Warn("failed to release accept lock", "swap_id", swapID, "error", err)
	case !released:
		slog.Warn("accept lock expired before release", "swap_id", swapID, "key", lockKey)
	}
}

func (s *swapService) publishRejected(ctx context.Context, ids []uuid.UUID) {
	for _, id := range ids {
		other, err := s.swapRepo.GetByID(ctx, id)
		if err != nil {
			slog.Warn("failed to load auto-rejected swap", "swap_id", id, "error", err)
			continue
		}
		observability.SwapTransitions.WithLabelValues(string(other.SwapType), string(models.SwapRejected)).Inc()
		s.events.PublishSwap(ctx, models.NewSwapEvent(other))
	}
}

// settle runs settlement for an ACCEPTED request and publishes the outcome.
func (s *swapService) settle(ctx context.Context, req *models.SwapRequest) (*models.SwapRequest, error) {
	settled, err := s.settler.Settle(ctx, req.ID)
	if settled != nil {
		s.events.PublishSwap(ctx, models.NewSwapEvent(settled))
	}
	if settled != nil && settled.Status == models.SwapCompleted {
		if err := redis.BumpBalances(ctx, s.redisClient, settled.OwnerID, settled.RequesterID); err != nil {
			slog.Warn("failed to invalidate cached balances", "swap_id", settled.ID, "error", err)
		}
		var keys []string
		for _, id := range settled.ItemIDs() {
			keys = append(keys, redis.ItemKey(id))
		}
		invalidate(ctx, s.redisClient, keys...)
	}
	return settled, err
}

func (s *swapService) Reject(ctx context.Context, actorID, swapID uuid.UUID) (*models.SwapRequest, error) {
	ctx, span := tracer.Start(ctx, "RejectSwap")
	defer span.End()

	req, err := s.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return nil, spanError(span, err, "swap lookup failed")
	}
	if req.OwnerID != actorID {
		return nil, spanError(span, fmt.Errorf("%w: only the item owner can reject", pkgerrors.ErrForbidden), "not the owner")
	}
	return s.closePending(ctx, req, models.SwapRejected)
}

func (s *swapService) Cancel(ctx context.Context, actorID, swapID uuid.UUID) (*models.SwapRequest, error) {
	ctx, span := tracer.Start(ctx, "CancelSwap")
	defer span.End()

	req, err := s.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return nil, spanError(span, err, "swap lookup failed")
	}
	if req.RequesterID != actorID {
		return nil, spanError(span, fmt.Errorf("%w: only the requester can cancel", pkgerrors.ErrForbidden), "not the requester")
	}
	return s.closePending(ctx, req, models.SwapCancelled)
}

// closePending ends a PENDING request without touching balances or items.
func (s *swapService) closePending(ctx context.Context, req *models.SwapRequest, to models.SwapStatus) (*models.SwapRequest, error) {
	if err := s.swapRepo.UpdateStatus(ctx, req.ID, models.SwapPending, to, ""); err != nil {
		return nil, err
	}
	req.Status = to
	observability.SwapTransitions.WithLabelValues(string(req.SwapType), string(to)).Inc()
	s.events.PublishSwap(ctx, models.NewSwapEvent(req))
	slog.Info("swap closed", "swap_id", req.ID, "status", to)
	return req, nil
}

func (s *swapService) Get(ctx context.Context, actorID, swapID uuid.UUID) (*models.SwapRequest, error) {
	ctx, span := tracer.Start(ctx, "GetSwap")
	defer span.End()

	req, err := s.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return nil, spanError(span, err, "swap lookup failed")
	}
	if req.OwnerID != actorID && req.RequesterID != actorID {
		return nil, spanError(span, fmt.Errorf("%w: not a party to this swap", pkgerrors.ErrForbidden), "not a party")
	}
	return req, nil
}

func (s *swapService) ListForUser(ctx context.Context, actorID uuid.UUID, direction models.SwapDirection, status *models.SwapStatus) ([]models.SwapRequest, error) {
	ctx, span := tracer.Start(ctx, "ListSwaps")
	defer span.End()

	if direction == "" {
		direction = models.DirectionAll
	}
	err := validation.Validate(
		validation.OneOf("direction", direction, []models.SwapDirection{models.DirectionIncoming, models.DirectionOutgoing, models.DirectionAll}),
		validation.When(status != nil, func() []pkgerrors.FieldError {
			if status.Valid() {
				return nil
			}
			return []pkgerrors.FieldError{{Field: "status", Message: fmt.Sprintf("Unknown status '%s'", *status)}}
		}),
	)
	if err != nil {
		return nil, spanError(span, err, "invalid list filter")
	}

	swaps, err := s.swapRepo.ListForUser(ctx, actorID, direction, status)
	if err != nil {
		return nil, spanError(span, err, "swap listing failed")
	}
	return swaps, nil
}

// ResumeAccepted settles requests left ACCEPTED by an interrupted process and
// returns how many completed.
func (s *swapService) ResumeAccepted(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "ResumeAccepted")
	defer span.End()

	accepted, err := s.swapRepo.ListByStatus(ctx, models.SwapAccepted)
	if err != nil {
		return 0, spanError(span, err, "accepted lookup failed")
	}

	completed := 0
	for i := range accepted {
		settled, err := s.settle(ctx, &accepted[i])
		if err != nil {
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
				return completed, err
			}
			slog.Warn("resumed settlement did not complete", "swap_id", accepted[i].ID, "error", err)
			continue
		}
		if settled.Status == models.SwapCompleted {
			completed++
		}
	}

	if len(accepted) > 0 {
		slog.Info("resumed accepted swaps", "found", len(accepted), "completed", completed)
	}
	return completed, nil
}
