package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/kafka"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
	"github.com/Hemantgithubpro/rewear-1/internal/models"
	"github.com/Hemantgithubpro/rewear-1/internal/repository"
	"github.com/Hemantgithubpro/rewear-1/internal/validation"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

type CatalogService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in validation.ItemInput) (*models.Item, error)
	Get(ctx context.Context, viewer *models.Principal, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error)
	ListPending(ctx context.Context, actor models.Principal) ([]models.Item, error)
	Approve(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Item, error)
	Reject(ctx context.Context, actor models.Principal, id uuid.UUID) error
	Relist(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Item, error)
}

type catalogService struct {
	itemRepo    repository.ItemRepository
	redisClient redis.RedisClient
	events      kafka.EventPublisher
	itemTTL     time.Duration
}

func NewCatalogService(itemRepo repository.ItemRepository, redisClient redis.RedisClient, events kafka.EventPublisher, itemTTL time.Duration) *catalogService {
	return &catalogService{
		itemRepo:    itemRepo,
		redisClient: redisClient,
		events:      events,
		itemTTL:     itemTTL,
	}
}

func (s *catalogService) Create(ctx context.Context, ownerID uuid.UUID, in validation.ItemInput) (*models.Item, error) {
	ctx, span := tracer.Start(ctx, "CreateItem")
	defer span.End()

	in = in.Normalize()
	if err := validation.ValidateItem(in); err != nil {
		return nil, spanError(span, err, "invalid item")
	}

	item := &models.Item{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Type:        in.Type,
		Size:        in.Size,
		Condition:   in.Condition,
		Tags:        in.Tags,
		Images:      in.Images,
		PointsValue: in.PointsValue,
		IsApproved:  false,
		Available:   true,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, spanError(span, err, "item creation failed")
	}

	span.SetAttributes(attribute.String("item_id", item.ID.String()))
	s.events.PublishItem(ctx, models.NewItemEvent(models.ItemCreated, item))
	slog.Info("item listed", "item_id", item.ID, "owner_id", ownerID, "points_value", item.PointsValue)
	return item, nil
}

// Get returns an item by id. Items that are not approved and available are
// reported as missing unless the viewer owns the item or is an admin. viewer
// is nil for anonymous callers.
func (s *catalogService) Get(ctx context.Context, viewer *models.Principal, id uuid.UUID) (*models.Item, error) {
	ctx, span := tracer.Start(ctx, "GetItem")
	defer span.End()

	key := redis.ItemKey(id)
	var item *models.Item
	var cached models.Item
	if cachedJSON(ctx, s.redisClient, key, &cached) {
		item = &cached
	} else {
		loaded, err := s.itemRepo.GetByID(ctx, id)
		if err != nil {
			return nil, spanError(span, err, "item lookup failed")
		}
		cacheJSON(ctx, s.redisClient, key, loaded, s.itemTTL)
		item = loaded
	}

	if !canView(viewer, item) {
		return nil, spanError(span, pkgerrors.ErrItemNotFound, "item hidden from viewer")
	}
	return item, nil
}

func canView(viewer *models.Principal, item *models.Item) bool {
	if item.Visible() {
		return true
	}
	return viewer != nil && (viewer.IsAdmin() || viewer.UserID == item.OwnerID)
}

// List browses the catalog. Only approved items are ever returned, and only
// available ones unless the filter says otherwise.
func (s *catalogService) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	ctx, span := tracer.Start(ctx, "ListItems")
	defer span.End()

	approved := true
	filter.Approved = &approved
	filter.OwnerID = nil
	if filter.Available == nil {
		available := true
		filter.Available = &available
	}

	items, err := s.itemRepo.List(ctx, filter)
	if err != nil {
		return nil, spanError(span, err, "item listing failed")
	}
	return items, nil
}

func (s *catalogService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error) {
	ctx, span := tracer.Start(ctx, "ListOwnerItems")
	defer span.End()

	items, err := s.itemRepo.List(ctx, models.ItemFilter{OwnerID: &ownerID})
	if err != nil {
		return nil, spanError(span, err, "item listing failed")
	}
	return items, nil
}

func (s *catalogService) ListPending(ctx context.Context, actor models.Principal) ([]models.Item, error) {
	ctx, span := tracer.Start(ctx, "ListPendingItems")
	defer span.End()

	if !actor.IsAdmin() {
		return nil, spanError(span, fmt.Errorf("%w: admin access required", pkgerrors.ErrForbidden), "not an admin")
	}

	approved := false
	items, err := s.itemRepo.List(ctx, models.ItemFilter{Approved: &approved})
	if err != nil {
		return nil, spanError(span, err, "item listing failed")
	}
	return items, nil
}

func (s *catalogService) Approve(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Item, error) {
	ctx, span := tracer.Start(ctx, "ApproveItem")
	defer span.End()
	span.SetAttributes(attribute.String("item_id", id.String()))

	if !actor.IsAdmin() {
		slog.Warn("non-admin tried to approve item", "user_id", actor.UserID, "item_id", id)
		return nil, spanError(span, fmt.Errorf("%w: admin access required", pkgerrors.ErrForbidden), "not an admin")
	}

	if err := s.itemRepo.SetApproved(ctx, id, true); err != nil {
		return nil, spanError(span, err, "approval failed")
	}
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, spanError(span, err, "item lookup failed")
	}

	invalidate(ctx, s.redisClient, redis.ItemKey(id))
	s.events.PublishItem(ctx, models.NewItemEvent(models.ItemApproved, item))
	slog.Info("item approved", "item_id", id, "admin_id", actor.UserID)
	return item, nil
}

// Reject removes an unapproved listing. Items referenced by a swap request
// cannot be removed.
func (s *catalogService) Reject(ctx context.Context, actor models.Principal, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "RejectItem")
	defer span.End()
	span.SetAttributes(attribute.String("item_id", id.String()))

	if !actor.IsAdmin() {
		return spanError(span, fmt.Errorf("%w: admin access required", pkgerrors.ErrForbidden), "not an admin")
	}

	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return spanError(span, err, "item lookup failed")
	}
	if item.IsApproved {
		return spanError(span, fmt.Errorf("%w: only unapproved items can be rejected", pkgerrors.ErrConflict), "item already approved")
	}

	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return spanError(span, err, "item removal failed")
	}

	invalidate(ctx, s.redisClient, redis.ItemKey(id))
	s.events.PublishItem(ctx, models.NewItemEvent(models.ItemRemoved, item))
	slog.Info("item rejected", "item_id", id, "admin_id", actor.UserID)
	return nil
}

// Relist puts an item the actor received through a swap back on the market.
// It needs approval again before it shows up when browsing.
func (s *catalogService) Relist(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Item, error) {
	ctx, span := tracer.Start(ctx, "RelistItem")
	defer span.End()
	span.SetAttributes(attribute.String("item_id", id.String()))

	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, spanError(span, err, "item lookup failed")
	}
	if item.OwnerID != actor.UserID {
		return nil, spanError(span, fmt.Errorf("%w: only the owner can relist an item", pkgerrors.ErrForbidden), "not the owner")
	}
	if item.Available {
		return nil, spanError(span, fmt.Errorf("%w: item is already listed", pkgerrors.ErrConflict), "already listed")
	}

	if err := s.itemRepo.Relist(ctx, id); err != nil {
		return nil, spanError(span, err, "relist failed")
	}
	item.Available = true
	item.IsApproved = false

	invalidate(ctx, s.redisClient, redis.ItemKey(id))
	s.events.PublishItem(ctx, models.NewItemEvent(models.ItemRelisted, item))
	slog.Info("item relisted", "item_id", id, "owner_id", actor.UserID)
	return item, nil
}
