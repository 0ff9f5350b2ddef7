// internal/adapters/db/report_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
)

const reportsTable = "reports"

var reportColumns = []string{
	"id", "user_id", "type", "resource_id", "reason", "description",
	"status", "created_at", "updated_at",
}

// ReportRepository implements ports.ReportRepository
type ReportRepository struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.ReportRepository = (*ReportRepository)(nil)

func NewReportRepository(db *Database, logger *slog.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "reports")),
	}
}

func (r *ReportRepository) Create(ctx context.Context, rep *domain.Report) error {
	query, args, err := psql.Insert(reportsTable).
		Columns(reportColumns...).
		Values(rep.ID, rep.UserID, string(rep.Type), rep.ResourceID, rep.Reason,
			rep.Description, string(rep.Status), rep.CreatedAt, rep.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create report: %w", mapPgError(err))
	}

	r.logger.DebugContext(ctx, "report created",
		slog.String("id", rep.ID),
		slog.String("type", string(rep.Type)))
	return nil
}

// Update persists the mutable fields. Type and resource are fixed at creation.
func (r *ReportRepository) Update(ctx context.Context, rep *domain.Report) error {
	rep.UpdatedAt = time.Now().UTC()

	query, args, err := psql.Update(reportsTable).
		Set("reason", rep.Reason).
		Set("description", rep.Description).
		Set("status", string(rep.Status)).
		Set("updated_at", rep.UpdatedAt).
		Where(squirrel.Eq{"id": rep.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	query, args, err := psql.Select(reportColumns...).
		From(reportsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rep, err := scanReport(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return rep, nil
}

func (r *ReportRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Report, error) {
	items, _, err := r.FindAll(ctx, ports.ReportFilter{UserID: userID})
	return items, err
}

// FindAll retrieves reports with filtering and pagination, newest first.
func (r *ReportRepository) FindAll(ctx context.Context, filter ports.ReportFilter) ([]*domain.Report, int64, error) {
	where := squirrel.And{}
	if filter.UserID != "" {
		where = append(where, squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.Type != "" {
		where = append(where, squirrel.Eq{"type": string(filter.Type)})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": string(filter.Status)})
	}
	if filter.ResourceID != "" {
		where = append(where, squirrel.Eq{"resource_id": filter.ResourceID})
	}

	total, err := countWhere(ctx, r.db, reportsTable, where)
	if err != nil {
		return nil, 0, err
	}

	qb := psql.Select(reportColumns...).
		From(reportsTable).
		Where(where).
		OrderBy("created_at DESC", "id ASC")
	qb = paginate(qb, filter.Limit, filter.Offset)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reports: %w", err)
	}

	items, err := ScanMany(rows, scanReport)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan reports: %w", err)
	}
	return items, total, nil
}

func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	r.logger.InfoContext(ctx, "report deleted", slog.String("id", id))
	return nil
}

func scanReport(row pgx.Row) (*domain.Report, error) {
	rep := &domain.Report{}
	var typ, status string
	if err := row.Scan(
		&rep.ID, &rep.UserID, &typ, &rep.ResourceID, &rep.Reason,
		&rep.Description, &status, &rep.CreatedAt, &rep.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rep.Type = domain.ReportType(typ)
	rep.Status = domain.ReportStatus(status)
	return rep, nil
}
