package repository

import (
	"context"
	"errors"
	"time"

	"qacollect/internal/models"

	"gorm.io/gorm"
)

// exportBatchSize bounds memory during CSV export streaming.
const exportBatchSize = 100

// PostRepository defines the interface for post data operations. All reads are
// scoped to an owner; staff callers bypass scoping via GetByID.
type PostRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetOwned(ctx context.Context, id, userID uint) (*models.Post, error)
	List(ctx context.Context, userID uint, status string, limit, offset int) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
	ForEachOwned(ctx context.Context, userID uint, fn func(posts []*models.Post) error) error

	CountByUser(ctx context.Context, userID uint) (int64, error)
	CountCommentsByUser(ctx context.Context, userID uint) (int64, error)
	CountDistinctSourcesByUser(ctx context.Context, userID uint) (int64, error)
	TopSourcesByUser(ctx context.Context, userID uint, limit int) ([]models.SourceCount, error)
	CreatedAtsSince(ctx context.Context, userID uint, since time.Time) ([]time.Time, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withDetails preloads the full post hierarchy in a deterministic order:
// comments by insertion, aspects by creation.
func (r *postRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Source").
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.id ASC")
		}).
		Preload("Comments.Aspects", func(db *gorm.DB) *gorm.DB {
			return db.Order("aspects.id ASC")
		})
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.withDetails(r.db.WithContext(ctx)).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return &post, nil
}

// GetOwned returns the post only when it belongs to userID; a foreign owner's
// post is indistinguishable from a missing one.
func (r *postRepository) GetOwned(ctx context.Context, id, userID uint) (*models.Post, error) {
	var post models.Post
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("posts.id = ? AND posts.user_id = ?", id, userID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, userID uint, status string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.withDetails(r.db.WithContext(ctx)).Where("posts.user_id = ?", userID)
	if status != "" {
		q = q.Where("posts.status = ?", status)
	}
	err := q.Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// Delete removes a post together with its comments and aspects. The child
// deletes are explicit so the behavior does not depend on FK enforcement
// being enabled in the underlying store.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).
			Where("post_id = ?", id).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.Aspect{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// ForEachOwned walks the owner's posts in id order, fully preloaded, in
// batches, invoking fn for each batch. Used by the CSV export stream.
func (r *postRepository) ForEachOwned(ctx context.Context, userID uint, fn func(posts []*models.Post) error) error {
	var batch []*models.Post
	result := r.withDetails(r.db.WithContext(ctx)).
		Where("posts.user_id = ?", userID).
		Order("posts.id ASC").
		FindInBatches(&batch, exportBatchSize, func(_ *gorm.DB, _ int) error {
			return fn(batch)
		})
	return result.Error
}

func (r *postRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *postRepository) CountCommentsByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *postRepository) CountDistinctSourcesByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("user_id = ?", userID).
		Distinct("source_id").
		Count(&count).Error
	return count, err
}

func (r *postRepository) TopSourcesByUser(ctx context.Context, userID uint, limit int) ([]models.SourceCount, error) {
	var top []models.SourceCount
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("sources.name AS name, COUNT(posts.id) AS count").
		Joins("JOIN sources ON sources.id = posts.source_id").
		Where("posts.user_id = ?", userID).
		Group("sources.name").
		Order("count DESC").
		Limit(limit).
		Scan(&top).Error
	return top, err
}

// CreatedAtsSince returns creation timestamps of the owner's posts at or after
// `since`; bucketing into daily counts happens in the service layer so the
// query stays portable across stores.
func (r *postRepository) CreatedAtsSince(ctx context.Context, userID uint, since time.Time) ([]time.Time, error) {
	var stamps []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").
		Pluck("created_at", &stamps).Error
	return stamps, err
}
