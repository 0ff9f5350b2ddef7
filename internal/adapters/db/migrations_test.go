package db_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/analytics-reports/internal/adapters/db"
	"github.com/ammerola/analytics-reports/test/helpers"
)

func TestStatusFromDB(t *testing.T) {
	tests := []struct {
		name        string
		rows        *sqlmock.Rows
		wantVersion uint
		wantDirty   bool
		wantApplied int
	}{
		{
			name:        "no_migrations_applied",
			rows:        sqlmock.NewRows([]string{"version", "dirty"}),
			wantVersion: 0,
		},
		{
			name:        "clean_version",
			rows:        sqlmock.NewRows([]string{"version", "dirty"}).AddRow(3, false),
			wantVersion: 3,
			wantApplied: 1,
		},
		{
			name:        "dirty_version",
			rows:        sqlmock.NewRows([]string{"version", "dirty"}).AddRow(2, true),
			wantVersion: 2,
			wantDirty:   true,
			wantApplied: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, sqlDB := helpers.SetupMockDB(t)
			mock.ExpectQuery(`SELECT version, dirty FROM public.schema_migrations`).
				WillReturnRows(tt.rows)

			status, err := db.StatusFromDB(context.Background(), sqlDB, "public", "schema_migrations")
			require.NoError(t, err)

			assert.Equal(t, tt.wantVersion, status.CurrentVersion)
			assert.Equal(t, tt.wantDirty, status.IsDirty)
			assert.Len(t, status.Applied, tt.wantApplied)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStatusFromDB_QueryError(t *testing.T) {
	mock, sqlDB := helpers.SetupMockDB(t)
	mock.ExpectQuery(`SELECT version, dirty`).WillReturnError(assert.AnError)

	_, err := db.StatusFromDB(context.Background(), sqlDB, "public", "schema_migrations")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPendingVersions(t *testing.T) {
	all, err := db.PendingVersions(0)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3}, all)

	rest, err := db.PendingVersions(2)
	require.NoError(t, err)
	assert.Equal(t, []uint{3}, rest)

	none, err := db.PendingVersions(3)
	require.NoError(t, err)
	assert.Empty(t, none)
}
