// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"fmt"
	"time"

	"qacollect/internal/models"
	"qacollect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/posts
func (s *Server) ListPosts(c *fiber.Ctx) error {
	return s.listPostsByStatus(c, "")
}

// ListUnreviewedPosts handles GET /api/posts/unreviewed
func (s *Server) ListUnreviewedPosts(c *fiber.Ctx) error {
	return s.listPostsByStatus(c, models.PostStatusUnreviewed)
}

// ListReviewedPosts handles GET /api/posts/reviewed
func (s *Server) ListReviewedPosts(c *fiber.Ctx) error {
	return s.listPostsByStatus(c, models.PostStatusReviewed)
}

func (s *Server) listPostsByStatus(c *fiber.Ctx, status string) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	posts, err := s.postRepo.List(ctx, userID, status, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Caption  string                   `json:"caption"`
		Source   string                   `json:"source"`
		Comments []service.CommentPayload `json:"comments"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(ctx, service.CreatePostInput{
		UserID:   userID,
		Caption:  req.Caption,
		Source:   req.Source,
		Comments: req.Comments,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetOwned(ctx, postID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Caption  *string                   `json:"caption"`
		Source   *string                   `json:"source"`
		Comments *[]service.CommentPayload `json:"comments"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Update(ctx, service.UpdatePostInput{
		UserID:   userID,
		PostID:   postID,
		Caption:  req.Caption,
		Source:   req.Source,
		Comments: req.Comments,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(ctx, postID, userID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ReviewPost handles POST /api/posts/:id/review. The body may carry the same
// partial edits as UpdatePost; they are applied atomically with the review
// transition.
func (s *Server) ReviewPost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Caption  *string                   `json:"caption"`
		Source   *string                   `json:"source"`
		Comments *[]service.CommentPayload `json:"comments"`
	}
	// An empty body is a plain review with no edits.
	if len(c.Body()) > 0 {
		if parseErr := c.BodyParser(&req); parseErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	post, err := s.postService.Review(ctx, service.ReviewPostInput{
		ReviewerID: userID,
		PostID:     postID,
		Caption:    req.Caption,
		Source:     req.Source,
		Comments:   req.Comments,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// ExportCSV handles GET /api/posts/export_csv. The caller's whole dataset is
// streamed, one row per comment.
func (s *Server) ExportCSV(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="posts_export_%s.csv"`, time.Now().Format("2006-01-02")))

	if err := s.reportService.WriteCSV(ctx, userID, c.Response().BodyWriter()); err != nil {
		// Headers may already be committed; too late for a JSON error body.
		return err
	}
	return nil
}

// DashboardStats handles GET /api/posts/dashboard_stats
func (s *Server) DashboardStats(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	stats, err := s.reportService.DashboardStats(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(stats)
}
