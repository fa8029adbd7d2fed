package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

const userColumns = `id, name, email, password_hash, image, role, points_balance, created_at, updated_at`

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, done := observe(ctx, "user-repository", "CreateUser")
	defer func() { done(err) }()

	if user == nil {
		err = pkgerrors.ErrNilEntity
		slog.Error("failed to create user", "method", "Create", "error", err)
		return err
	}
	if user.PointsBalance < 0 {
		err = fmt.Errorf("%w: negative starting balance", pkgerrors.ErrValidation)
		return err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	query := `INSERT INTO users (id, name, email, password_hash, image, role, points_balance) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`
	err = querier(ctx, r.db).QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Image, user.Role, user.PointsBalance,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		err = mapError(err)
		if stderrors.Is(err, pkgerrors.ErrConflict) {
			err = pkgerrors.ErrEmailExists
			slog.Warn("email already registered", "method", "Create", "email", user.Email)
			return err
		}
		slog.Error("failed to create user", "method", "Create", "email", user.Email, "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "method", "Create", "user_id", user.ID, "role", user.Role)
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user *models.User, err error) {
	ctx, done := observe(ctx, "user-repository", "GetUserByID", attribute.String("user_id", id.String()))
	defer func() { done(err) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err = scanUser(querier(ctx, r.db).QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrUserNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get user by id", "method", "GetByID", "user_id", id, "error", err)
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user *models.User, err error) {
	ctx, done := observe(ctx, "user-repository", "GetUserByEmail")
	defer func() { done(err) }()

	if email == "" {
		err = fmt.Errorf("%w: email cannot be empty", pkgerrors.ErrValidation)
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err = scanUser(querier(ctx, r.db).QueryRowContext(ctx, query, email))
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		err = pkgerrors.ErrUserNotFound
		return nil, err
	case err != nil:
		slog.Error("failed to get user by email", "method", "GetByEmail", "error", err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, user *models.User) (err error) {
	ctx, done := observe(ctx, "user-repository", "UpdateUserProfile")
	defer func() { done(err) }()

	if user == nil {
		err = pkgerrors.ErrNilEntity
		return err
	}

	query := `UPDATE users SET name = $1, email = $2, image = $3, updated_at = now() WHERE id = $4 RETURNING updated_at`
	err = querier(ctx, r.db).QueryRowContext(ctx, query, user.Name, user.Email, user.Image, user.ID).Scan(&user.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrUserNotFound
		return err
	}
	if err != nil {
		err = mapError(err)
		if stderrors.Is(err, pkgerrors.ErrConflict) {
			err = pkgerrors.ErrEmailExists
			return err
		}
		slog.Error("failed to update profile", "method", "UpdateProfile", "user_id", user.ID, "error", err)
		return fmt.Errorf("failed to update profile: %w", err)
	}

	slog.Info("profile updated", "method", "UpdateProfile", "user_id", user.ID)
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user  models.User
		image sql.NullString
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &image, &user.Role, &user.PointsBalance, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if image.Valid {
		user.Image = &image.String
	}
	return &user, nil
}
