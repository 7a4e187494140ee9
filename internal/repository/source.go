package repository

import (
	"context"
	"errors"
	"time"

	"qacollect/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SourceRepository defines the interface for source registry operations.
// Construct it over a transaction handle when resolution must join a larger
// atomic write (post create/update).
type SourceRepository interface {
	Resolve(ctx context.Context, name string) (*models.Source, error)
	Search(ctx context.Context, prefix string, limit int) ([]*models.Source, error)
	List(ctx context.Context, limit, offset int) ([]*models.Source, error)
	GetByID(ctx context.Context, id uint) (*models.Source, error)
}

type sourceRepository struct {
	db *gorm.DB
}

// NewSourceRepository creates a new source repository
func NewSourceRepository(db *gorm.DB) SourceRepository {
	return &sourceRepository{db: db}
}

// Resolve finds or creates the source with the given name (case-insensitive via
// uppercase normalization). A fresh name yields usage_count = 1; a known name is
// bumped with a single atomic upsert, so concurrent resolutions of the same
// name never lose increments.
func (r *sourceRepository) Resolve(ctx context.Context, name string) (*models.Source, error) {
	normalized := models.NormalizeSourceName(name)
	if normalized == "" {
		return nil, models.NewValidationError("Source name is required")
	}

	now := time.Now()
	src := models.Source{
		Name:       normalized,
		UsageCount: 1,
		CreatedAt:  now,
		LastUsed:   now,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"last_used":   now,
		}),
	}).Create(&src).Error
	if err != nil {
		return nil, err
	}

	// The upsert does not report the surviving row's fields; fetch it.
	var out models.Source
	if err := r.db.WithContext(ctx).Where("name = ?", normalized).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// Search performs a case-insensitive prefix match on the normalized name,
// most-used sources first.
func (r *sourceRepository) Search(ctx context.Context, prefix string, limit int) ([]*models.Source, error) {
	var sources []*models.Source
	err := r.db.WithContext(ctx).
		Where("name LIKE ?", models.NormalizeSourceName(prefix)+"%").
		Order("usage_count DESC").
		Limit(limit).
		Find(&sources).Error
	return sources, err
}

func (r *sourceRepository) List(ctx context.Context, limit, offset int) ([]*models.Source, error) {
	var sources []*models.Source
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&sources).Error
	return sources, err
}

func (r *sourceRepository) GetByID(ctx context.Context, id uint) (*models.Source, error) {
	var src models.Source
	if err := r.db.WithContext(ctx).First(&src, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Source", id)
		}
		return nil, err
	}
	return &src, nil
}
