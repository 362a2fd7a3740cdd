package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/veritrack/veritrack-api/internal/models"
)

// DocumentRepository persists metadata for uploaded proof documents.
type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id uint) (models.Document, error)
	GetByPublicID(ctx context.Context, publicID string) (models.Document, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository instantiates the repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *documentRepository) GetByID(ctx context.Context, id uint) (models.Document, error) {
	var document models.Document
	if err := r.db.WithContext(ctx).First(&document, id).Error; err != nil {
		return models.Document{}, err
	}
	return document, nil
}

func (r *documentRepository) GetByPublicID(ctx context.Context, publicID string) (models.Document, error) {
	var document models.Document
	if err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&document).Error; err != nil {
		return models.Document{}, err
	}
	return document, nil
}
