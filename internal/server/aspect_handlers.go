// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"strings"

	"qacollect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListAspects handles GET /api/aspects?comment=...
func (s *Server) ListAspects(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 50)

	commentID, err := s.parseQueryID(c, "comment")
	if err != nil {
		return nil
	}

	aspects, err := s.aspectRepo.ListOwned(ctx, userID, commentID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(aspects)
}

// CreateAspect handles POST /api/aspects
func (s *Server) CreateAspect(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		CommentID  uint   `json:"comment"`
		AspectName string `json:"aspect_name"`
		AspectText string `json:"aspect_text"`
		Sentiment  string `json:"sentiment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.CommentID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("comment is required"))
	}
	if strings.TrimSpace(req.AspectName) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("aspect_name is required"))
	}
	if !models.ValidSentiment(req.Sentiment) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("sentiment must be positive, neutral or negative"))
	}

	comment, err := s.commentRepo.GetOwned(ctx, req.CommentID, userID)
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

	aspect := &models.Aspect{
		CommentID:  req.CommentID,
		AspectName: req.AspectName,
		AspectText: req.AspectText,
		Sentiment:  req.Sentiment,
	}
	if err := s.aspectRepo.Create(ctx, aspect); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(aspect)
}

// GetAspect handles GET /api/aspects/:id
func (s *Server) GetAspect(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	aspectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	aspect, err := s.aspectRepo.GetOwned(ctx, aspectID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(aspect)
}

// UpdateAspect handles PUT /api/aspects/:id
func (s *Server) UpdateAspect(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	aspectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		AspectName *string `json:"aspect_name"`
		AspectText *string `json:"aspect_text"`
		Sentiment  *string `json:"sentiment"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	aspect, err := s.aspectRepo.GetOwned(ctx, aspectID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	comment, err := s.commentRepo.GetOwned(ctx, aspect.CommentID, userID)
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

	if req.AspectName != nil {
		if strings.TrimSpace(*req.AspectName) == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("aspect_name cannot be empty"))
		}
		aspect.AspectName = *req.AspectName
	}
	if req.AspectText != nil {
		aspect.AspectText = *req.AspectText
	}
	if req.Sentiment != nil {
		if !models.ValidSentiment(*req.Sentiment) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("sentiment must be positive, neutral or negative"))
		}
		aspect.Sentiment = *req.Sentiment
	}

	if err := s.aspectRepo.Update(ctx, aspect); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(aspect)
}

// DeleteAspect handles DELETE /api/aspects/:id
func (s *Server) DeleteAspect(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	aspectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	aspect, err := s.aspectRepo.GetOwned(ctx, aspectID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	comment, err := s.commentRepo.GetOwned(ctx, aspect.CommentID, userID)
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

	if err := s.aspectRepo.Delete(ctx, aspectID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
