package repository

import (
	"context"
	"errors"

	"qacollect/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for standalone comment operations.
// Ownership is enforced through an explicit join to the parent post.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetOwned(ctx context.Context, id, userID uint) (*models.Comment, error)
	ListOwned(ctx context.Context, userID uint, postID *uint, limit, offset int) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetOwned(ctx context.Context, id, userID uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("Aspects", func(db *gorm.DB) *gorm.DB {
			return db.Order("aspects.id ASC")
		}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("comments.id = ? AND posts.user_id = ?", id, userID).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListOwned(ctx context.Context, userID uint, postID *uint, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	q := r.db.WithContext(ctx).
		Preload("Aspects", func(db *gorm.DB) *gorm.DB {
			return db.Order("aspects.id ASC")
		}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.user_id = ?", userID)
	if postID != nil {
		q = q.Where("comments.post_id = ?", *postID)
	}
	err := q.Order("comments.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// Delete removes the comment and its aspects in one transaction.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&models.Aspect{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, id).Error
	})
}
