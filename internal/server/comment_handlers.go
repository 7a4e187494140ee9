// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"strings"

	"qacollect/internal/cache"
	"qacollect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/comments?post=...
func (s *Server) ListComments(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 50)

	postID, err := s.parseQueryID(c, "post")
	if err != nil {
		return nil
	}

	comments, err := s.commentRepo.ListOwned(ctx, userID, postID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(comments)
}

// CreateComment handles POST /api/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		PostID           uint   `json:"post"`
		Text             string `json:"text"`
		GeneralSentiment string `json:"general_sentiment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post is required"))
	}
	if strings.TrimSpace(req.Text) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Comment text is required"))
	}
	if !models.ValidSentiment(req.GeneralSentiment) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("general_sentiment must be positive, neutral or negative"))
	}

	// The parent must exist, belong to the caller and accept writes.
	post, err := s.postRepo.GetOwned(ctx, req.PostID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := s.ensurePostMutable(ctx, post, userID); err != nil {
		return respondServiceError(c, err)
	}

	comment := &models.Comment{
		PostID:           req.PostID,
		Text:             req.Text,
		GeneralSentiment: req.GeneralSentiment,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.InvalidateStats(ctx, userID)
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentRepo.GetOwned(ctx, commentID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(comment)
}

// UpdateComment handles PUT /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text             *string `json:"text"`
		GeneralSentiment *string `json:"general_sentiment"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentRepo.GetOwned(ctx, commentID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.postRepo.GetOwned(ctx, comment.PostID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := s.ensurePostMutable(ctx, post, userID); err != nil {
		return respondServiceError(c, err)
	}

	if req.Text != nil {
		if strings.TrimSpace(*req.Text) == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Comment text cannot be empty"))
		}
		comment.Text = *req.Text
	}
	if req.GeneralSentiment != nil {
		if !models.ValidSentiment(*req.GeneralSentiment) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("general_sentiment must be positive, neutral or negative"))
		}
		comment.GeneralSentiment = *req.GeneralSentiment
	}

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentRepo.GetOwned(ctx, commentID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.postRepo.GetOwned(ctx, comment.PostID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := s.ensurePostMutable(ctx, post, userID); err != nil {
		return respondServiceError(c, err)
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.InvalidateStats(ctx, userID)
	return c.SendStatus(fiber.StatusNoContent)
}
