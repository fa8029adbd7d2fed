package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
)

//go:generate mockgen -destination=mocks/mock_item_repository.go -package=mocks . ItemRepository

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
	// Relist makes an item available again and sends it back to moderation.
	Relist(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
