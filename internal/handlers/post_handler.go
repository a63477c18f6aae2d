package handlers

import (
	"net/http"

	"github.com/anonto42/twittor/backend/internal/middleware"
	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles tweet submissions from the home page
type PostHandler struct {
	feedService *services.FeedService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(feedService *services.FeedService) *PostHandler {
	return &PostHandler{feedService: feedService}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/", h.CreatePost, middleware.RequireLogin)
}

// CreatePost publishes a tweet and redirects back to the timeline. An invalid form
// re-renders the timeline with the error and writes nothing.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var form models.TweetForm
	fields, err := bindForm(c, &form)
	if err != nil {
		return err
	}
	if fields != nil {
		return renderHome(c, h.feedService, form, fields)
	}

	user := middleware.CurrentUser(c)
	if _, err := h.feedService.CreatePost(c.Request().Context(), user.ID, form.Tweet); err != nil {
		if fields, _, ok := formErrors(err); ok {
			return renderHome(c, h.feedService, form, fields)
		}
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}
