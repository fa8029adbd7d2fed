package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
)

//go:generate mockgen -destination=mocks/mock_swap_repository.go -package=mocks . SwapRepository

type SwapRepository interface {
	Create(ctx context.Context, req *models.SwapRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error)
	// UpdateStatus moves a request from one status to another. It fails with
	// ErrInvalidTransition when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.SwapStatus, reason string) error
	// RejectPending rejects every PENDING request that references any of the
	// items, except the request identified by except, and returns the rejected ids.
	RejectPending(ctx context.Context, itemIDs []uuid.UUID, except uuid.UUID) ([]uuid.UUID, error)
	HasPending(ctx context.Context, requesterID, ownerItemID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID, direction models.SwapDirection, status *models.SwapStatus) ([]models.SwapRequest, error)
	ListByStatus(ctx context.Context, status models.SwapStatus) ([]models.SwapRequest, error)
}
