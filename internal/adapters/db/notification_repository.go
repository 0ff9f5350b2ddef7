// internal/adapters/db/notification_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
)

const notificationsTable = "notifications"

var notificationColumns = []string{
	"id", "user_id", "type", "resource_id", "config", "notification_status",
	"created_at", "updated_at",
}

// NotificationRepository implements ports.NotificationRepository
type NotificationRepository struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.NotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *Database, logger *slog.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "notifications")),
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	cfg, err := json.Marshal(n.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal notification config: %w", err)
	}

	query, args, err := psql.Insert(notificationsTable).
		Columns(notificationColumns...).
		Values(n.ID, n.UserID, string(n.Type), n.ResourceID, cfg,
			string(n.NotificationStatus), n.CreatedAt, n.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create notification: %w", mapPgError(err))
	}
	return nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	query, args, err := psql.Select(notificationColumns...).
		From(notificationsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	n, err := scanNotification(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return n, nil
}

func (r *NotificationRepository) FindAll(ctx context.Context, filter ports.NotificationFilter) ([]*domain.Notification, int64, error) {
	where := squirrel.And{}
	if filter.UserID != "" {
		where = append(where, squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"notification_status": string(filter.Status)})
	}

	total, err := countWhere(ctx, r.db, notificationsTable, where)
	if err != nil {
		return nil, 0, err
	}

	qb := psql.Select(notificationColumns...).
		From(notificationsTable).
		Where(where).
		OrderBy("created_at DESC", "id ASC")
	qb = paginate(qb, filter.Limit, filter.Offset)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}

	items, err := ScanMany(rows, scanNotification)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan notifications: %w", err)
	}
	return items, total, nil
}

// UpdateStatus sets the read state and returns the updated row.
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id string, status domain.NotificationStatus) (*domain.Notification, error) {
	query, args, err := psql.Update(notificationsTable).
		Set("notification_status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(notificationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}

	n, err := scanNotification(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return n, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	n := &domain.Notification{}
	var typ, status string
	var cfg []byte
	if err := row.Scan(
		&n.ID, &n.UserID, &typ, &n.ResourceID, &cfg, &status,
		&n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return nil, err
	}

	n.Type = domain.NotificationType(typ)
	n.NotificationStatus = domain.NotificationStatus(status)
	if err := json.Unmarshal(cfg, &n.Config); err != nil {
		return nil, fmt.Errorf("failed to decode notification config: %w", err)
	}
	return n, nil
}
