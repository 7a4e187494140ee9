// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"qacollect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListSources handles GET /api/sources
func (s *Server) ListSources(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 50)

	sources, err := s.sourceRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(sources)
}

// maxSourceSearchResults caps autocomplete responses regardless of any
// pagination parameters the caller sends.
const maxSourceSearchResults = 5

// SearchSources handles GET /api/sources/search?q=... with a case-insensitive
// prefix match, most-used sources first, capped at 5 results.
func (s *Server) SearchSources(c *fiber.Ctx) error {
	ctx := c.Context()
	q := c.Query("q")
	if q == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	sources, err := s.sourceRepo.Search(ctx, q, maxSourceSearchResults)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(sources)
}

// GetSource handles GET /api/sources/:id
func (s *Server) GetSource(c *fiber.Ctx) error {
	ctx := c.Context()
	sourceID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	src, err := s.sourceRepo.GetByID(ctx, sourceID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(src)
}
