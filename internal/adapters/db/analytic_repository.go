// internal/adapters/db/analytic_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
)

const analyticsTable = "user_analytics"

var analyticColumns = []string{
	"id", "user_id", "resource_id", "itinerary_analytic", "publication_analytic",
	"analysis_date", "created_at", "updated_at",
}

// AnalyticRepository implements ports.AnalyticRepository on PostgreSQL.
type AnalyticRepository struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.AnalyticRepository = (*AnalyticRepository)(nil)

// NewAnalyticRepository creates a new analytics repository
func NewAnalyticRepository(db *Database, logger *slog.Logger) *AnalyticRepository {
	return &AnalyticRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "analytics")),
	}
}

// Create inserts a new analytic. A second record for the same user and
// resource is rejected with domain.ErrConflict.
func (r *AnalyticRepository) Create(ctx context.Context, a *domain.UserAnalytic) error {
	itinerary, publication, err := marshalAggregates(a)
	if err != nil {
		return err
	}

	query, args, err := psql.Insert(analyticsTable).
		Columns(analyticColumns...).
		Values(a.ID, a.UserID, nullableString(a.ResourceID), itinerary, publication,
			a.AnalysisDate, a.CreatedAt, a.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create analytic: %w", mapPgError(err))
	}

	r.logger.DebugContext(ctx, "analytic created",
		slog.String("id", a.ID),
		slog.String("user_id", a.UserID))

	return nil
}

// Update overwrites the aggregates and analysis date of an existing analytic.
func (r *AnalyticRepository) Update(ctx context.Context, a *domain.UserAnalytic) error {
	return r.update(ctx, r.db.Exec, a)
}

type execFunc func(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)

func (r *AnalyticRepository) update(ctx context.Context, exec execFunc, a *domain.UserAnalytic) error {
	itinerary, publication, err := marshalAggregates(a)
	if err != nil {
		return err
	}

	a.UpdatedAt = time.Now().UTC()
	query, args, err := psql.Update(analyticsTable).
		Set("itinerary_analytic", itinerary).
		Set("publication_analytic", publication).
		Set("analysis_date", a.AnalysisDate).
		Set("updated_at", a.UpdatedAt).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	tag, err := exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update analytic: %w", mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	r.logger.DebugContext(ctx, "analytic updated", slog.String("id", a.ID))
	return nil
}

// FindByID retrieves an analytic by id
func (r *AnalyticRepository) FindByID(ctx context.Context, id string) (*domain.UserAnalytic, error) {
	query, args, err := psql.Select(analyticColumns...).
		From(analyticsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	a, err := scanAnalytic(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return a, nil
}

// FindByUserID lists every analytic that belongs to userID, newest first.
func (r *AnalyticRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.UserAnalytic, error) {
	items, _, err := r.FindAll(ctx, ports.AnalyticFilter{UserID: userID})
	return items, err
}

// FindByUserAndResource returns the unique analytic for the pair. An empty
// resourceID selects the user-wide record.
func (r *AnalyticRepository) FindByUserAndResource(ctx context.Context, userID, resourceID string) (*domain.UserAnalytic, error) {
	qb := psql.Select(analyticColumns...).
		From(analyticsTable).
		Where(squirrel.Eq{"user_id": userID})
	if resourceID == "" {
		qb = qb.Where(squirrel.Eq{"resource_id": nil})
	} else {
		qb = qb.Where(squirrel.Eq{"resource_id": resourceID})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	a, err := scanAnalytic(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return a, nil
}

// FindAll retrieves analytics with filtering and pagination
func (r *AnalyticRepository) FindAll(ctx context.Context, filter ports.AnalyticFilter) ([]*domain.UserAnalytic, int64, error) {
	where := analyticWhere(filter)

	total, err := countWhere(ctx, r.db, analyticsTable, where)
	if err != nil {
		return nil, 0, err
	}

	qb := psql.Select(analyticColumns...).
		From(analyticsTable).
		Where(where).
		OrderBy("analysis_date DESC", "id ASC")
	qb = paginate(qb, filter.Limit, filter.Offset)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query analytics: %w", err)
	}

	items, err := ScanMany(rows, scanAnalytic)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan analytics: %w", err)
	}

	return items, total, nil
}

// FindStale returns analytics whose analysis date is before the cutoff,
// oldest first.
func (r *AnalyticRepository) FindStale(ctx context.Context, filter ports.StaleFilter) ([]*domain.UserAnalytic, error) {
	where := squirrel.And{squirrel.Lt{"analysis_date": filter.Cutoff}}
	if filter.ID != "" {
		where = append(where, squirrel.Eq{"id": filter.ID})
	}
	if filter.UserID != "" {
		where = append(where, squirrel.Eq{"user_id": filter.UserID})
	}

	query, args, err := psql.Select(analyticColumns...).
		From(analyticsTable).
		Where(where).
		OrderBy("analysis_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale analytics: %w", err)
	}

	return ScanMany(rows, scanAnalytic)
}

// Delete performs a hard delete
func (r *AnalyticRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_analytics WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analytic: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	r.logger.InfoContext(ctx, "analytic deleted", slog.String("id", id))
	return nil
}

// Modify runs fn against the row locked with SELECT ... FOR UPDATE, so two
// concurrent saves of the same record serialize instead of both seeing it stale.
func (r *AnalyticRepository) Modify(ctx context.Context, id string, fn ports.ModifyFunc) (*domain.UserAnalytic, error) {
	var result *domain.UserAnalytic

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		query, args, err := psql.Select(analyticColumns...).
			From(analyticsTable).
			Where(squirrel.Eq{"id": id}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}

		a, err := scanAnalytic(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return mapPgError(err)
		}

		changed, err := fn(a)
		if err != nil {
			return err
		}
		if changed {
			if err := r.update(ctx, tx.Exec, a); err != nil {
				return err
			}
		}

		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func analyticWhere(f ports.AnalyticFilter) squirrel.And {
	where := squirrel.And{}
	if f.UserID != "" {
		where = append(where, squirrel.Eq{"user_id": f.UserID})
	}
	if f.ResourceID != "" {
		where = append(where, squirrel.Eq{"resource_id": f.ResourceID})
	}
	if f.StaleBefore != nil {
		where = append(where, squirrel.Lt{"analysis_date": *f.StaleBefore})
	}
	return where
}

func marshalAggregates(a *domain.UserAnalytic) ([]byte, []byte, error) {
	itinerary, err := json.Marshal(a.UserItineraryAnalytic)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal itinerary analytic: %w", err)
	}
	publication, err := json.Marshal(a.UserPublicationAnalytic)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal publication analytic: %w", err)
	}
	return itinerary, publication, nil
}

func scanAnalytic(row pgx.Row) (*domain.UserAnalytic, error) {
	a := &domain.UserAnalytic{}
	var resourceID *string
	var itinerary, publication []byte

	if err := row.Scan(
		&a.ID, &a.UserID, &resourceID, &itinerary, &publication,
		&a.AnalysisDate, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.ResourceID = derefString(resourceID)
	if err := json.Unmarshal(itinerary, &a.UserItineraryAnalytic); err != nil {
		return nil, fmt.Errorf("failed to decode itinerary analytic: %w", err)
	}
	if err := json.Unmarshal(publication, &a.UserPublicationAnalytic); err != nil {
		return nil, fmt.Errorf("failed to decode publication analytic: %w", err)
	}

	return a, nil
}
