// Package service implements the application's business rules on top of the
// repository layer.
package service

import (
	"context"
	"strings"
	"time"

	"qacollect/internal/cache"
	"qacollect/internal/models"
	"qacollect/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostService orchestrates post writes: source resolution, the nested
// comment/aspect reconciliation and the review state machine. Every write
// entry point runs inside a single transaction, so a failure anywhere rolls
// back the whole request (including the source usage_count bump).
type PostService struct {
	db       *gorm.DB
	postRepo repository.PostRepository
	isStaff  func(ctx context.Context, userID uint) (bool, error)
}

// AspectPayload is an incoming aspect record. Nil fields were absent from the
// request and leave the stored value unchanged on update.
type AspectPayload struct {
	ID         *uint   `json:"id,omitempty"`
	AspectName *string `json:"aspect_name,omitempty"`
	AspectText *string `json:"aspect_text,omitempty"`
	Sentiment  *string `json:"sentiment,omitempty"`
}

// CommentPayload is an incoming comment record with its nested aspects.
type CommentPayload struct {
	ID               *uint           `json:"id,omitempty"`
	Text             *string         `json:"text,omitempty"`
	GeneralSentiment *string         `json:"general_sentiment,omitempty"`
	Aspects          []AspectPayload `json:"aspects"`
}

type CreatePostInput struct {
	UserID   uint
	Caption  string
	Source   string
	Comments []CommentPayload
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Caption *string
	Source  *string
	// Comments nil means the field was absent: existing comments are left
	// untouched. A present (possibly empty) list is reconciled as a full
	// replace, so [] deletes every comment.
	Comments *[]CommentPayload
}

type ReviewPostInput struct {
	ReviewerID uint
	PostID     uint
	Caption    *string
	Source     *string
	Comments   *[]CommentPayload
}

// postPatch carries the optional field changes shared by Update and Review.
type postPatch struct {
	Caption  *string
	Source   *string
	Comments *[]CommentPayload
}

func NewPostService(
	db *gorm.DB,
	postRepo repository.PostRepository,
	isStaff func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		db:       db,
		postRepo: postRepo,
		isStaff:  isStaff,
	}
}

// Create resolves the source, inserts the post as unreviewed and creates the
// nested comments and aspects, all in one transaction.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Caption) == "" {
		return nil, models.NewValidationError("Caption is required")
	}
	if models.NormalizeSourceName(in.Source) == "" {
		return nil, models.NewValidationError("Source is required")
	}

	var postID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		src, err := repository.NewSourceRepository(tx).Resolve(ctx, in.Source)
		if err != nil {
			return err
		}

		post := models.Post{
			Caption:  in.Caption,
			SourceID: src.ID,
			UserID:   in.UserID,
			Status:   models.PostStatusUnreviewed,
		}
		if err := tx.Create(&post).Error; err != nil {
			return err
		}

		for i := range in.Comments {
			if _, err := createComment(tx, post.ID, in.Comments[i]); err != nil {
				return err
			}
		}

		postID = post.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateStats(ctx, in.UserID)
	return s.postRepo.GetByID(ctx, postID)
}

// Update applies partial field changes and reconciles the comments list.
// A reviewed post is locked for non-staff callers before any mutation.
func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetOwned(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if post.Status == models.PostStatusReviewed {
		staff, err := s.isStaff(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		if !staff {
			return nil, models.NewForbiddenError("Cannot modify a reviewed post")
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyPatch(ctx, tx, post, postPatch{
			Caption:  in.Caption,
			Source:   in.Source,
			Comments: in.Comments,
		})
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateStats(ctx, in.UserID)
	return s.postRepo.GetByID(ctx, post.ID)
}

// Review transitions an unreviewed post to reviewed, recording reviewer and
// timestamp. Optional field edits are applied first through the same
// reconciliation as Update. A post can only be reviewed once; the guarded
// status update makes the transition race-safe, and a lost race rolls back
// any edits applied in the same request.
func (s *PostService) Review(ctx context.Context, in ReviewPostInput) (*models.Post, error) {
	post, err := s.postRepo.GetOwned(ctx, in.PostID, in.ReviewerID)
	if err != nil {
		return nil, err
	}
	if post.Status == models.PostStatusReviewed {
		return nil, models.NewConflictError("Post is already reviewed")
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyPatch(ctx, tx, post, postPatch{
			Caption:  in.Caption,
			Source:   in.Source,
			Comments: in.Comments,
		}); err != nil {
			return err
		}

		res := tx.Model(&models.Post{}).
			Where("id = ? AND status = ?", post.ID, models.PostStatusUnreviewed).
			Updates(map[string]interface{}{
				"status":         models.PostStatusReviewed,
				"reviewed_by_id": in.ReviewerID,
				"reviewed_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("Post is already reviewed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateStats(ctx, in.ReviewerID)
	return s.postRepo.GetByID(ctx, post.ID)
}

// Delete removes an owned post with its comments and aspects. Source usage
// counters are intentionally left alone: they track how often a source was
// cited, not how many posts currently reference it.
func (s *PostService) Delete(ctx context.Context, postID, userID uint) error {
	if _, err := s.postRepo.GetOwned(ctx, postID, userID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	cache.InvalidateStats(ctx, userID)
	return nil
}

// applyPatch applies scalar field changes and delegates the comments list to
// the reconciler. Must run inside the caller's transaction.
func applyPatch(ctx context.Context, tx *gorm.DB, post *models.Post, patch postPatch) error {
	if patch.Source != nil {
		src, err := repository.NewSourceRepository(tx).Resolve(ctx, *patch.Source)
		if err != nil {
			return err
		}
		post.SourceID = src.ID
	}
	if patch.Caption != nil {
		if strings.TrimSpace(*patch.Caption) == "" {
			return models.NewValidationError("Caption cannot be empty")
		}
		post.Caption = *patch.Caption
	}

	if err := tx.Omit(clause.Associations).Save(post).Error; err != nil {
		return err
	}

	if patch.Comments != nil {
		return reconcileComments(tx, post.ID, *patch.Comments)
	}
	return nil
}

// reconcileComments diffs the incoming list against the post's stored
// comments: matching ids are patched in place (then their aspects
// reconciled), unknown or absent ids become new comments, and stored comments
// missing from the list are deleted together with their aspects.
func reconcileComments(tx *gorm.DB, postID uint, payloads []CommentPayload) error {
	var existing []models.Comment
	if err := tx.Where("post_id = ?", postID).Find(&existing).Error; err != nil {
		return err
	}

	byID := make(map[uint]*models.Comment, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}

	kept := make(map[uint]struct{}, len(payloads))
	for _, p := range payloads {
		if p.ID != nil {
			if cur, ok := byID[*p.ID]; ok {
				if err := patchComment(tx, cur, p); err != nil {
					return err
				}
				if err := reconcileAspects(tx, cur.ID, p.Aspects); err != nil {
					return err
				}
				kept[cur.ID] = struct{}{}
				continue
			}
		}
		// No id, or an id this post does not own: create fresh.
		created, err := createComment(tx, postID, p)
		if err != nil {
			return err
		}
		kept[created.ID] = struct{}{}
	}

	var stale []uint
	for id := range byID {
		if _, ok := kept[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := tx.Where("comment_id IN ?", stale).Delete(&models.Aspect{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", stale).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// reconcileAspects applies the same full-replace-by-diff policy to a
// comment's aspects.
func reconcileAspects(tx *gorm.DB, commentID uint, payloads []AspectPayload) error {
	var existing []models.Aspect
	if err := tx.Where("comment_id = ?", commentID).Find(&existing).Error; err != nil {
		return err
	}

	byID := make(map[uint]*models.Aspect, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}

	kept := make(map[uint]struct{}, len(payloads))
	for _, p := range payloads {
		if p.ID != nil {
			if cur, ok := byID[*p.ID]; ok {
				if err := patchAspect(tx, cur, p); err != nil {
					return err
				}
				kept[cur.ID] = struct{}{}
				continue
			}
		}
		created, err := createAspect(tx, commentID, p)
		if err != nil {
			return err
		}
		kept[created.ID] = struct{}{}
	}

	var stale []uint
	for id := range byID {
		if _, ok := kept[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := tx.Where("id IN ?", stale).Delete(&models.Aspect{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func createComment(tx *gorm.DB, postID uint, p CommentPayload) (*models.Comment, error) {
	if p.Text == nil || strings.TrimSpace(*p.Text) == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if p.GeneralSentiment == nil || !models.ValidSentiment(*p.GeneralSentiment) {
		return nil, models.NewValidationError("general_sentiment must be positive, neutral or negative")
	}

	comment := models.Comment{
		PostID:           postID,
		Text:             *p.Text,
		GeneralSentiment: *p.GeneralSentiment,
	}
	if err := tx.Create(&comment).Error; err != nil {
		return nil, err
	}

	// Nothing pre-exists under a new comment, so its aspects are created
	// directly without diffing.
	for _, ap := range p.Aspects {
		if _, err := createAspect(tx, comment.ID, ap); err != nil {
			return nil, err
		}
	}
	return &comment, nil
}

func patchComment(tx *gorm.DB, comment *models.Comment, p CommentPayload) error {
	if p.Text != nil {
		if strings.TrimSpace(*p.Text) == "" {
			return models.NewValidationError("Comment text cannot be empty")
		}
		comment.Text = *p.Text
	}
	if p.GeneralSentiment != nil {
		if !models.ValidSentiment(*p.GeneralSentiment) {
			return models.NewValidationError("general_sentiment must be positive, neutral or negative")
		}
		comment.GeneralSentiment = *p.GeneralSentiment
	}
	return tx.Omit(clause.Associations).Save(comment).Error
}

func createAspect(tx *gorm.DB, commentID uint, p AspectPayload) (*models.Aspect, error) {
	if p.AspectName == nil || strings.TrimSpace(*p.AspectName) == "" {
		return nil, models.NewValidationError("aspect_name is required")
	}
	if p.Sentiment == nil || !models.ValidSentiment(*p.Sentiment) {
		return nil, models.NewValidationError("sentiment must be positive, neutral or negative")
	}

	aspect := models.Aspect{
		CommentID:  commentID,
		AspectName: *p.AspectName,
		Sentiment:  *p.Sentiment,
	}
	if p.AspectText != nil {
		aspect.AspectText = *p.AspectText
	}
	if err := tx.Create(&aspect).Error; err != nil {
		return nil, err
	}
	return &aspect, nil
}

func patchAspect(tx *gorm.DB, aspect *models.Aspect, p AspectPayload) error {
	if p.AspectName != nil {
		if strings.TrimSpace(*p.AspectName) == "" {
			return models.NewValidationError("aspect_name cannot be empty")
		}
		aspect.AspectName = *p.AspectName
	}
	if p.AspectText != nil {
		aspect.AspectText = *p.AspectText
	}
	if p.Sentiment != nil {
		if !models.ValidSentiment(*p.Sentiment) {
			return models.NewValidationError("sentiment must be positive, neutral or negative")
		}
		aspect.Sentiment = *p.Sentiment
	}
	return tx.Save(aspect).Error
}
