package server

import (
	"fmt"
	"net/http"
	"testing"

	"qacollect/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentCRUD(t *testing.T) {
	app, _, _ := setupHandlerTest(t)
	token := signupUser(t, app, "commenter")

	post := createNestedPost(t, app, token, "comment target")

	// Create a standalone comment.
	resp := doJSON(t, app, http.MethodPost, "/api/comments", token, fiber.Map{
		"post":              post.ID,
		"text":              "standalone comment",
		"general_sentiment": "negative",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment models.Comment
	decodeJSON(t, resp, &comment)
	assert.Equal(t, post.ID, comment.PostID)

	// List filtered by post.
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/comments?post=%d", post.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var comments []models.Comment
	decodeJSON(t, resp, &comments)
	assert.Len(t, comments, 2)

	// Update.
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/comments/%d", comment.ID), token, fiber.Map{
		"text": "edited text",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var edited models.Comment
	decodeJSON(t, resp, &edited)
	assert.Equal(t, "edited text", edited.Text)
	assert.Equal(t, "negative", edited.GeneralSentiment)

	// Delete.
	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/comments/%d", comment.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/comments/%d", comment.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommentValidationAndScoping(t *testing.T) {
	app, _, _ := setupHandlerTest(t)
	token := signupUser(t, app, "commentowner")
	post := createNestedPost(t, app, token, "scoped post")

	// Bad sentiment.
	resp := doJSON(t, app, http.MethodPost, "/api/comments", token, fiber.Map{
		"post":              post.ID,
		"text":              "hello",
		"general_sentiment": "furious",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A stranger cannot attach comments to someone else's post.
	strangerToken := signupUser(t, app, "commentthief")
	resp = doJSON(t, app, http.MethodPost, "/api/comments", strangerToken, fiber.Map{
		"post":              post.ID,
		"text":              "sneaky",
		"general_sentiment": "neutral",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommentLockedAfterReview(t *testing.T) {
	app, _, _ := setupHandlerTest(t)
	token := signupUser(t, app, "lockedout")
	post := createNestedPost(t, app, token, "soon reviewed")
	commentID := post.Comments[0].ID

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/review", post.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/comments", token, fiber.Map{
		"post":              post.ID,
		"text":              "too late",
		"general_sentiment": "neutral",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/comments/%d", commentID), token, fiber.Map{
		"text": "too late",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/comments/%d", commentID), token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAspectCRUD(t *testing.T) {
	app, _, _ := setupHandlerTest(t)
	token := signupUser(t, app, "aspectuser")
	post := createNestedPost(t, app, token, "aspect target")
	commentID := post.Comments[0].ID

	resp := doJSON(t, app, http.MethodPost, "/api/aspects", token, fiber.Map{
		"comment":     commentID,
		"aspect_name": "battery",
		"aspect_text": "dies by noon",
		"sentiment":   "negative",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var aspect models.Aspect
	decodeJSON(t, resp, &aspect)
	assert.Equal(t, commentID, aspect.CommentID)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/aspects?comment=%d", commentID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var aspects []models.Aspect
	decodeJSON(t, resp, &aspects)
	assert.Len(t, aspects, 2)

	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/aspects/%d", aspect.ID), token, fiber.Map{
		"sentiment": "neutral",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Aspect
	decodeJSON(t, resp, &updated)
	assert.Equal(t, "neutral", updated.Sentiment)
	assert.Equal(t, "battery", updated.AspectName)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/aspects/%d", aspect.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSourceEndpoints(t *testing.T) {
	app, _, _ := setupHandlerTest(t)
	token := signupUser(t, app, "sourcefan")

	createNestedPost(t, app, token, "first video")
	createNestedPost(t, app, token, "second video")

	resp := doJSON(t, app, http.MethodGet, "/api/sources", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sources []models.Source
	decodeJSON(t, resp, &sources)
	require.Len(t, sources, 1)
	assert.Equal(t, "YOUTUBE", sources[0].Name)
	assert.Equal(t, 2, sources[0].UsageCount)

	resp = doJSON(t, app, http.MethodGet, "/api/sources/search?q=you", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &sources)
	require.Len(t, sources, 1)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/sources/%d", sources[0].ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/sources/search", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchSourcesCappedAtFive(t *testing.T) {
	app, _, db := setupHandlerTest(t)
	token := signupUser(t, app, "channelsurfer")

	for i := 1; i <= 7; i++ {
		src := models.Source{Name: fmt.Sprintf("CHANNEL%d", i), UsageCount: i}
		require.NoError(t, db.Create(&src).Error)
	}

	resp := doJSON(t, app, http.MethodGet, "/api/sources/search?q=chan", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sources []models.Source
	decodeJSON(t, resp, &sources)
	require.Len(t, sources, 5)
	assert.Equal(t, "CHANNEL7", sources[0].Name)
	assert.Equal(t, "CHANNEL3", sources[4].Name)

	// The cap holds even when the caller asks for more.
	resp = doJSON(t, app, http.MethodGet, "/api/sources/search?q=chan&limit=100", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &sources)
	assert.Len(t, sources, 5)
}
