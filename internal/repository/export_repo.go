package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/veritrack/veritrack-api/internal/models"
)

// CategoryCount is one row of the approved-records aggregate.
type CategoryCount struct {
	Category models.Category `json:"category"`
	Total    int64           `json:"total"`
}

// ExportRepository exposes the read-side queries used to build aggregated
// exports of approved records.
type ExportRepository interface {
	ApprovedCountsByCategory(ctx context.Context) ([]CategoryCount, error)
	ApprovedRecords(ctx context.Context, category *models.Category) ([]models.ActivityRecord, error)
}

type exportRepository struct {
	db *gorm.DB
}

// NewExportRepository constructs the export repository.
func NewExportRepository(db *gorm.DB) ExportRepository {
	return &exportRepository{db: db}
}

func (r *exportRepository) ApprovedCountsByCategory(ctx context.Context) ([]CategoryCount, error) {
	var counts []CategoryCount
	err := r.db.WithContext(ctx).Model(&models.ActivityRecord{}).
		Select("category, COUNT(*) AS total").
		Where("status = ?", models.StatusApproved).
		Group("category").
		Order("category ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *exportRepository) ApprovedRecords(ctx context.Context, category *models.Category) ([]models.ActivityRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityRecord{}).
		Preload("Owner").
		Where("status = ?", models.StatusApproved)
	if category != nil {
		query = query.Where("category = ?", *category)
	}

	var records []models.ActivityRecord
	if err := query.Order("updated_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
