package repository

import (
	"context"
	"testing"
	"time"

	"qacollect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPostTree(t *testing.T, db *gorm.DB, userID uint, caption string) *models.Post {
	t.Helper()

	src := models.Source{Name: models.NormalizeSourceName(caption + "-src"), UsageCount: 1, LastUsed: time.Now()}
	require.NoError(t, db.Create(&src).Error)

	post := models.Post{
		Caption:  caption,
		SourceID: src.ID,
		UserID:   userID,
		Status:   models.PostStatusUnreviewed,
	}
	require.NoError(t, db.Create(&post).Error)

	comment := models.Comment{PostID: post.ID, Text: "great video", GeneralSentiment: models.SentimentPositive}
	require.NoError(t, db.Create(&comment).Error)
	aspect := models.Aspect{CommentID: comment.ID, AspectName: "audio", Sentiment: models.SentimentNegative}
	require.NoError(t, db.Create(&aspect).Error)

	return &post
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestGetOwnedHidesForeignPosts(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")
	post := seedPostTree(t, db, owner.ID, "caption one")

	got, err := repo.GetOwned(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	require.Len(t, got.Comments, 1)
	require.Len(t, got.Comments[0].Aspects, 1)

	_, err = repo.GetOwned(ctx, post.ID, other.ID)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestListFiltersByStatus(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	seedPostTree(t, db, owner.ID, "first")
	reviewed := seedPostTree(t, db, owner.ID, "second")
	require.NoError(t, db.Model(&models.Post{}).
		Where("id = ?", reviewed.ID).
		Update("status", models.PostStatusReviewed).Error)

	all, err := repo.List(ctx, owner.ID, "", 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unreviewed, err := repo.List(ctx, owner.ID, models.PostStatusUnreviewed, 50, 0)
	require.NoError(t, err)
	require.Len(t, unreviewed, 1)
	assert.Equal(t, "first", unreviewed[0].Caption)
}

func TestDeleteRemovesCommentsAndAspects(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	post := seedPostTree(t, db, owner.ID, "doomed")

	require.NoError(t, repo.Delete(ctx, post.ID))

	var comments, aspects int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, db.Model(&models.Aspect{}).Count(&aspects).Error)
	assert.Zero(t, comments)
	assert.Zero(t, aspects)
}

func TestDashboardCounters(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")
	seedPostTree(t, db, owner.ID, "alpha")
	seedPostTree(t, db, owner.ID, "beta")
	seedPostTree(t, db, other.ID, "gamma")

	posts, err := repo.CountByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), posts)

	comments, err := repo.CountCommentsByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), comments)

	sources, err := repo.CountDistinctSourcesByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sources)

	top, err := repo.TopSourcesByUser(ctx, owner.ID, 5)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	stamps, err := repo.CreatedAtsSince(ctx, owner.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, stamps, 2)
}
