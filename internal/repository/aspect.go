package repository

import (
	"context"
	"errors"

	"qacollect/internal/models"

	"gorm.io/gorm"
)

// AspectRepository defines the interface for standalone aspect operations.
// Ownership is enforced by joining through the comment to the parent post.
type AspectRepository interface {
	Create(ctx context.Context, aspect *models.Aspect) error
	GetOwned(ctx context.Context, id, userID uint) (*models.Aspect, error)
	ListOwned(ctx context.Context, userID uint, commentID *uint, limit, offset int) ([]*models.Aspect, error)
	Update(ctx context.Context, aspect *models.Aspect) error
	Delete(ctx context.Context, id uint) error
}

type aspectRepository struct {
	db *gorm.DB
}

// NewAspectRepository creates a new AspectRepository
func NewAspectRepository(db *gorm.DB) AspectRepository {
	return &aspectRepository{db: db}
}

func (r *aspectRepository) Create(ctx context.Context, aspect *models.Aspect) error {
	return r.db.WithContext(ctx).Create(aspect).Error
}

func (r *aspectRepository) GetOwned(ctx context.Context, id, userID uint) (*models.Aspect, error) {
	var aspect models.Aspect
	err := r.db.WithContext(ctx).
		Joins("JOIN comments ON comments.id = aspects.comment_id").
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("aspects.id = ? AND posts.user_id = ?", id, userID).
		First(&aspect).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Aspect", id)
		}
		return nil, err
	}
	return &aspect, nil
}

func (r *aspectRepository) ListOwned(ctx context.Context, userID uint, commentID *uint, limit, offset int) ([]*models.Aspect, error) {
	var aspects []*models.Aspect
	q := r.db.WithContext(ctx).
		Joins("JOIN comments ON comments.id = aspects.comment_id").
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.user_id = ?", userID)
	if commentID != nil {
		q = q.Where("aspects.comment_id = ?", *commentID)
	}
	err := q.Order("aspects.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&aspects).Error
	return aspects, err
}

func (r *aspectRepository) Update(ctx context.Context, aspect *models.Aspect) error {
	return r.db.WithContext(ctx).Save(aspect).Error
}

func (r *aspectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Aspect{}, id).Error
}
