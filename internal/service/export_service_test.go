package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/internal/repository"
)

type exportRepoStub struct {
	counts     []repository.CategoryCount
	records    []models.ActivityRecord
	countCalls int
}

func (e *exportRepoStub) ApprovedCountsByCategory(context.Context) ([]repository.CategoryCount, error) {
	e.countCalls++
	return e.counts, nil
}

func (e *exportRepoStub) ApprovedRecords(_ context.Context, category *models.Category) ([]models.ActivityRecord, error) {
	if category == nil {
		return e.records, nil
	}
	var out []models.ActivityRecord
	for _, record := range e.records {
		if record.Category == *category {
			out = append(out, record)
		}
	}
	return out, nil
}

func TestExportServiceSummaryCachesResult(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	repo := &exportRepoStub{counts: []repository.CategoryCount{
		{Category: models.CategoryCultural, Total: 1},
		{Category: models.CategoryTechnical, Total: 2},
	}}
	svc := NewExportService(repo, client, time.Minute, testLogger())
	admin := Principal{ID: 1, Role: models.RoleAdmin}

	summary, err := svc.Summary(context.Background(), admin)
	require.NoError(t, err)
	require.EqualValues(t, 3, summary.Total)
	require.Len(t, summary.Counts, 2)
	require.Equal(t, 1, repo.countCalls)

	// Second call is served from the cache.
	again, err := svc.Summary(context.Background(), admin)
	require.NoError(t, err)
	require.EqualValues(t, 3, again.Total)
	require.Equal(t, 1, repo.countCalls)

	server.FastForward(2 * time.Minute)
	_, err = svc.Summary(context.Background(), admin)
	require.NoError(t, err)
	require.Equal(t, 2, repo.countCalls)
}

func TestExportServiceSummaryWithoutCache(t *testing.T) {
	repo := &exportRepoStub{counts: []repository.CategoryCount{{Category: models.CategoryClub, Total: 4}}}
	svc := NewExportService(repo, nil, time.Minute, testLogger())

	summary, err := svc.Summary(context.Background(), Principal{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	require.EqualValues(t, 4, summary.Total)
}

func TestExportServiceAdminOnly(t *testing.T) {
	svc := NewExportService(&exportRepoStub{}, nil, time.Minute, testLogger())

	_, err := svc.Summary(context.Background(), Principal{ID: 7, Role: models.RoleFaculty})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Rows(context.Background(), Principal{ID: 1, Role: models.RoleStudent}, nil)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestExportServiceRows(t *testing.T) {
	reviewer := uint(7)
	repo := &exportRepoStub{records: []models.ActivityRecord{
		{
			ID:         1,
			Category:   models.CategoryTechnical,
			Status:     models.StatusApproved,
			ReviewedBy: &reviewer,
			Fields:     datatypes.JSONMap{"title": "Hackathon"},
			Owner:      models.User{ID: 2, Name: "Lena", Email: "lena@example.com"},
		},
		{
			ID:       2,
			Category: models.CategoryCultural,
			Status:   models.StatusApproved,
			Owner:    models.User{ID: 3, Name: "Mohan", Email: "mohan@example.com"},
		},
	}}
	svc := NewExportService(repo, nil, time.Minute, testLogger())
	admin := Principal{ID: 1, Role: models.RoleAdmin}

	resp, err := svc.Rows(context.Background(), admin, nil)
	require.NoError(t, err)
	require.Len(t, resp.Rows, 2)
	require.Equal(t, "Lena", resp.Rows[0].OwnerName)
	require.Equal(t, "Hackathon", resp.Rows[0].Fields["title"])

	category := models.CategoryCultural
	resp, err = svc.Rows(context.Background(), admin, &category)
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	require.Equal(t, "mohan@example.com", resp.Rows[0].OwnerEmail)

	bad := models.Category("sports")
	_, err = svc.Rows(context.Background(), admin, &bad)
	require.ErrorIs(t, err, ErrCategoryUnknown)
}
