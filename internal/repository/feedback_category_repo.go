package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-interpret-api/internal/models"
)

// FeedbackCategoryRepository reads feedback categories.
type FeedbackCategoryRepository interface {
	FindByIDs(ctx context.Context, ids []uint) ([]models.FeedbackCategory, error)
	Create(ctx context.Context, category *models.FeedbackCategory) error
}

type feedbackCategoryRepository struct {
	db *gorm.DB
}

// NewFeedbackCategoryRepository instantiates the repository.
func NewFeedbackCategoryRepository(db *gorm.DB) FeedbackCategoryRepository {
	return &feedbackCategoryRepository{db: db}
}

func (r *feedbackCategoryRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.FeedbackCategory, error) {
	if len(ids) == 0 {
		return []models.FeedbackCategory{}, nil
	}

	var categories []models.FeedbackCategory
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *feedbackCategoryRepository) Create(ctx context.Context, category *models.FeedbackCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}
