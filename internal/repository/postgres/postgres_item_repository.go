package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

var itemColumns = []string{
	"id", "owner_id", "title", "description", "category", "type", "size", "condition",
	"tags", "images", "points_value", "is_approved", "available", "created_at", "updated_at",
}

type PostgresItemRepository struct {
	db *sql.DB
}

func NewPostgresItemRepository(db *sql.DB) *PostgresItemRepository {
	return &PostgresItemRepository{db: db}
}

func (r *PostgresItemRepository) Create(ctx context.Context, item *models.Item) (err error) {
	ctx, done := observe(ctx, "item-repository", "CreateItem")
	defer func() { done(err) }()

	if item == nil {
		err = pkgerrors.ErrNilEntity
		slog.Error("failed to create item", "method", "Create", "error", err)
		return err
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}

	query := `INSERT INTO items (id, owner_id, title, description, category, type, size, condition, tags, images, points_value, is_approved, available) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING created_at, updated_at`
	err = querier(ctx, r.db).QueryRowContext(ctx, query,
		item.ID, item.OwnerID, item.Title, item.Description, string(item.Category), item.Type,
		string(item.Size), string(item.Condition), pq.Array(item.Tags), pq.Array(item.Images),
		item.PointsValue, item.IsApproved, item.Available,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		err = mapError(err)
		slog.Error("failed to create item", "method", "Create", "owner_id", item.OwnerID, "error", err)
		return fmt.Errorf("failed to create item: %w", err)
	}

	slog.Info("item created", "method", "Create", "item_id", item.ID, "owner_id", item.OwnerID)
	return nil
}

func (r *PostgresItemRepository) GetByID(ctx context.Context, id uuid.UUID) (item *models.Item, err error) {
	ctx, done := observe(ctx, "item-repository", "GetItemByID", attribute.String("item_id", id.String()))
	defer func() { done(err) }()

	query, args, err := sq.Select(itemColumns...).From("items").Where(sq.Eq{"id": id}).PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	item, err = scanItem(querier(ctx, r.db).QueryRowContext(ctx, query, args...))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrItemNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get item by id", "method", "GetByID", "item_id", id, "error", err)
		return nil, fmt.Errorf("failed to get item by id: %w", err)
	}
	return item, nil
}

func (r *PostgresItemRepository) List(ctx context.Context, filter models.ItemFilter) (items []models.Item, err error) {
	ctx, done := observe(ctx, "item-repository", "ListItems")
	defer func() { done(err) }()

	q := sq.Select(itemColumns...).From("items").PlaceholderFormat(sq.Dollar)
	if filter.OwnerID != nil {
		q = q.Where(sq.Eq{"owner_id": *filter.OwnerID})
	}
	if filter.Category != nil {
		q = q.Where(sq.Eq{"category": string(*filter.Category)})
	}
	if filter.Size != nil {
		q = q.Where(sq.Eq{"size": string(*filter.Size)})
	}
	if filter.Condition != nil {
		q = q.Where(sq.Eq{"condition": string(*filter.Condition)})
	}
	if filter.Approved != nil {
		q = q.Where(sq.Eq{"is_approved": *filter.Approved})
	}
	if filter.Available != nil {
		q = q.Where(sq.Eq{"available": *filter.Available})
	}
	query, args, err := q.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := querier(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		slog.Error("failed to list items", "method", "List", "error", err)
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items = []models.Item{}
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			err = fmt.Errorf("failed to scan item: %w", scanErr)
			return nil, err
		}
		items = append(items, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func (r *PostgresItemRepository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) (err error) {
	ctx, done := observe(ctx, "item-repository", "SetItemApproved", attribute.String("item_id", id.String()))
	defer func() { done(err) }()

	err = r.execOne(ctx, `UPDATE items SET is_approved = $1, updated_at = now() WHERE id = $2`, approved, id)
	if err != nil {
		return err
	}
	slog.Info("item approval changed", "method", "SetApproved", "item_id", id, "approved", approved)
	return nil
}

func (r *PostgresItemRepository) Relist(ctx context.Context, id uuid.UUID) (err error) {
	ctx, done := observe(ctx, "item-repository", "RelistItem", attribute.String("item_id", id.String()))
	defer func() { done(err) }()

	err = r.execOne(ctx, `UPDATE items SET available = TRUE, is_approved = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	slog.Info("item relisted", "method", "Relist", "item_id", id)
	return nil
}

func (r *PostgresItemRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, done := observe(ctx, "item-repository", "DeleteItem", attribute.String("item_id", id.String()))
	defer func() { done(err) }()

	err = r.execOne(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	slog.Info("item deleted", "method", "Delete", "item_id", id)
	return nil
}

// LockItems loads the items and holds row locks on them until the surrounding
// transaction ends. Rows are locked in id order.
func (r *PostgresItemRepository) LockItems(ctx context.Context, ids []uuid.UUID) (items map[uuid.UUID]*models.Item, err error) {
	ctx, done := observe(ctx, "item-repository", "LockItems")
	defer func() { done(err) }()

	query := `SELECT id, owner_id, title, description, category, type, size, condition, tags, images, points_value, is_approved, available, created_at, updated_at FROM items WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`
	rows, err := querier(ctx, r.db).QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		err = mapError(err)
		slog.Error("failed to lock items", "method", "LockItems", "error", err)
		return nil, fmt.Errorf("failed to lock items: %w", err)
	}
	defer rows.Close()

	items = make(map[uuid.UUID]*models.Item, len(ids))
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			err = fmt.Errorf("failed to scan item: %w", scanErr)
			return nil, err
		}
		items[item.ID] = item
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", mapError(err))
	}
	return items, nil
}

// TransferOwnership hands the item to newOwner and takes it off the market.
func (r *PostgresItemRepository) TransferOwnership(ctx context.Context, itemID, newOwner uuid.UUID) (err error) {
	ctx, done := observe(ctx, "item-repository", "TransferItemOwnership", attribute.String("item_id", itemID.String()))
	defer func() { done(err) }()

	err = r.execOne(ctx, `UPDATE items SET owner_id = $1, available = FALSE, updated_at = now() WHERE id = $2`, newOwner, itemID)
	if err != nil {
		return err
	}
	slog.Info("item ownership transferred", "method", "TransferOwnership", "item_id", itemID, "new_owner_id", newOwner)
	return nil
}

func (r *PostgresItemRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := querier(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		err = mapError(err)
		slog.Error("failed to update item", "error", err)
		return fmt.Errorf("failed to update item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return pkgerrors.ErrItemNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID, &item.OwnerID, &item.Title, &item.Description, &item.Category, &item.Type,
		&item.Size, &item.Condition, pq.Array(&item.Tags), pq.Array(&item.Images),
		&item.PointsValue, &item.IsApproved, &item.Available, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return &item, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
