package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veritrack/veritrack-api/internal/models"
)

// AccountFilter defines filters for listing user accounts from the admin panel.
type AccountFilter struct {
	Search         string
	Role           string
	Status         string
	Sort           string
	Page           int
	PageSize       int
	IncludeDeleted bool
}

// AccountRepository exposes persistence helpers for account administration and
// the faculty-to-student assignments that define reviewer scope.
type AccountRepository interface {
	List(ctx context.Context, filter AccountFilter) ([]models.User, int64, error)
	GetByID(ctx context.Context, id uint) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error)
	SoftDelete(ctx context.Context, id uint) error
	AssignStudent(ctx context.Context, facultyID, studentID uint) error
	UnassignStudent(ctx context.Context, facultyID, studentID uint) error
	IsAssigned(ctx context.Context, facultyID, studentID uint) (bool, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository constructs the account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if !filter.IncludeDeleted {
		query = query.Where("deleted_at IS NULL")
	}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := filter.Sort
	if sort == "" {
		sort = "created_at DESC"
	}
	query = query.Order(sort)

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *accountRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *accountRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ? AND deleted_at IS NULL", id).
			Updates(updates)
		if result.Error != nil {
			return models.User{}, result.Error
		}
		if result.RowsAffected == 0 {
			return models.User{}, gorm.ErrRecordNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *accountRepository) SoftDelete(ctx context.Context, id uint) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{"deleted_at": now, "status": models.AccountStatusInactive})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *accountRepository) AssignStudent(ctx context.Context, facultyID, studentID uint) error {
	assignment := models.FacultyAssignment{FacultyID: facultyID, StudentID: studentID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&assignment).Error
}

func (r *accountRepository) UnassignStudent(ctx context.Context, facultyID, studentID uint) error {
	return r.db.WithContext(ctx).
		Where("faculty_id = ? AND student_id = ?", facultyID, studentID).
		Delete(&models.FacultyAssignment{}).Error
}

func (r *accountRepository) IsAssigned(ctx context.Context, facultyID, studentID uint) (bool, error) {
	var assignment models.FacultyAssignment
	err := r.db.WithContext(ctx).
		Where("faculty_id = ? AND student_id = ?", facultyID, studentID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
