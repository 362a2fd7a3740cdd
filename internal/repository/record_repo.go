package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/veritrack/veritrack-api/internal/models"
)

// ErrStatusConflict indicates a guarded update found the record in a different
// state than the one it required.
var ErrStatusConflict = errors.New("record status conflict")

// RecordFilter narrows record queries.
type RecordFilter struct {
	Category *models.Category
	Status   *models.VerificationStatus
}

// ReviewerScope identifies the reviewer issuing a queue query. Faculty see only
// records owned by students assigned to them; admins see everything.
type ReviewerScope struct {
	ReviewerID uint
	Role       string
}

// RecordRepository defines data operations for activity records.
type RecordRepository interface {
	Create(ctx context.Context, record *models.ActivityRecord) error
	GetByID(ctx context.Context, id uint) (models.ActivityRecord, error)
	GetByOwner(ctx context.Context, ownerID uint, filter RecordFilter) ([]models.ActivityRecord, error)
	GetForReview(ctx context.Context, scope ReviewerScope, filter RecordFilter) ([]models.ActivityRecord, error)
	UpdateFields(ctx context.Context, id, ownerID uint, fields datatypes.JSONMap, documentID *uint) (models.ActivityRecord, error)
	ApplyDecision(ctx context.Context, id uint, status models.VerificationStatus, comment string, reviewerID uint) (models.ActivityRecord, error)
}

type recordRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRecordRepository instantiates the repository.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db, now: time.Now}
}

func (r *recordRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ActivityRecord{}).
		Preload("Owner").
		Preload("Document")
}

func applyRecordFilter(query *gorm.DB, filter RecordFilter) *gorm.DB {
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

func (r *recordRepository) Create(ctx context.Context, record *models.ActivityRecord) error {
	record.Status = models.StatusPending
	record.ReviewerComment = nil
	record.ReviewedBy = nil
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *recordRepository) GetByID(ctx context.Context, id uint) (models.ActivityRecord, error) {
	var record models.ActivityRecord
	if err := r.baseQuery(ctx).First(&record, id).Error; err != nil {
		return models.ActivityRecord{}, err
	}
	return record, nil
}

func (r *recordRepository) GetByOwner(ctx context.Context, ownerID uint, filter RecordFilter) ([]models.ActivityRecord, error) {
	query := applyRecordFilter(r.baseQuery(ctx), filter).Where("owner_id = ?", ownerID)

	var records []models.ActivityRecord
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *recordRepository) GetForReview(ctx context.Context, scope ReviewerScope, filter RecordFilter) ([]models.ActivityRecord, error) {
	query := applyRecordFilter(r.baseQuery(ctx), filter)

	switch scope.Role {
	case models.RoleAdmin:
		// admins see every record
	case models.RoleFaculty:
		query = query.Where(
			"owner_id IN (?)",
			r.db.Model(&models.FacultyAssignment{}).Select("student_id").Where("faculty_id = ?", scope.ReviewerID),
		)
	default:
		return []models.ActivityRecord{}, nil
	}

	var records []models.ActivityRecord
	if err := query.Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *recordRepository) UpdateFields(ctx context.Context, id, ownerID uint, fields datatypes.JSONMap, documentID *uint) (models.ActivityRecord, error) {
	updates := map[string]interface{}{
		"fields":     fields,
		"updated_at": r.now(),
	}
	if documentID != nil {
		updates["document_id"] = *documentID
	}

	result := r.db.WithContext(ctx).Model(&models.ActivityRecord{}).
		Where("id = ? AND owner_id = ? AND status = ?", id, ownerID, models.StatusPending).
		Updates(updates)
	if result.Error != nil {
		return models.ActivityRecord{}, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return models.ActivityRecord{}, err
		}
		return models.ActivityRecord{}, ErrStatusConflict
	}

	return r.GetByID(ctx, id)
}

func (r *recordRepository) ApplyDecision(ctx context.Context, id uint, status models.VerificationStatus, comment string, reviewerID uint) (models.ActivityRecord, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ActivityRecord{}).
			Where("id = ? AND status = ?", id, models.StatusPending).
			Updates(map[string]interface{}{
				"status":           status,
				"reviewer_comment": comment,
				"reviewed_by":      reviewerID,
				"updated_at":       r.now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var current models.ActivityRecord
			if err := tx.First(&current, id).Error; err != nil {
				return err
			}
			return ErrStatusConflict
		}
		return nil
	})
	if err != nil {
		return models.ActivityRecord{}, err
	}

	return r.GetByID(ctx, id)
}
