package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
)

//go:generate mockgen -destination=mocks/mock_user_repository.go -package=mocks . UserRepository

// UserRepository stores accounts. It deliberately exposes no way to change a
// points balance; that is reserved for settlement.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}
