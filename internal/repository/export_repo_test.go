package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/veritrack/veritrack-api/internal/models"
)

func TestExportRepositoryApprovedAggregates(t *testing.T) {
	db := setupTestDB(t)
	records := NewRecordRepository(db)
	repo := NewExportRepository(db)

	owner := seedUser(t, db, "Kiran", "kiran@example.com", models.RoleStudent)

	approve := func(category models.Category, fields datatypes.JSONMap) {
		record := seedRecord(t, db, records, owner.ID, category, fields)
		_, err := records.ApplyDecision(context.Background(), record.ID, models.StatusApproved, "", 1)
		require.NoError(t, err)
	}

	approve(models.CategoryTechnical, datatypes.JSONMap{"title": "a", "organizer": "x", "event_date": "2025-01-01"})
	approve(models.CategoryTechnical, datatypes.JSONMap{"title": "b", "organizer": "y", "event_date": "2025-01-02"})
	approve(models.CategoryCultural, datatypes.JSONMap{"title": "c", "venue": "hall", "event_date": "2025-01-03"})

	// Pending records never reach the export queries.
	seedRecord(t, db, records, owner.ID, models.CategoryTechnical, datatypes.JSONMap{"title": "d", "organizer": "z", "event_date": "2025-01-04"})

	counts, err := repo.ApprovedCountsByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, models.CategoryCultural, counts[0].Category)
	require.EqualValues(t, 1, counts[0].Total)
	require.Equal(t, models.CategoryTechnical, counts[1].Category)
	require.EqualValues(t, 2, counts[1].Total)

	rows, err := repo.ApprovedRecords(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, owner.Email, rows[0].Owner.Email)

	category := models.CategoryCultural
	rows, err = repo.ApprovedRecords(context.Background(), &category)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "c", rows[0].Fields["title"])
}
