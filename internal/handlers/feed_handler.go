package handlers

import (
	"net/http"

	"github.com/anonto42/twittor/backend/internal/middleware"
	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/services"
	"github.com/anonto42/twittor/backend/internal/views"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the home timeline and the explore page
type FeedHandler struct {
	feedService *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/", h.Home, middleware.RequireLogin)
	g.GET("/explore", h.Explore, middleware.RequireLogin)
}

// Home shows the current user's posts and those of everyone they follow.
func (h *FeedHandler) Home(c echo.Context) error {
	return renderHome(c, h.feedService, models.TweetForm{}, nil)
}

// Explore shows every post in the system.
func (h *FeedHandler) Explore(c echo.Context) error {
	feed, err := h.feedService.ExploreFeed(c.Request().Context(), pageParam(c))
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "explore.html", &views.Page{
		Title: "Explore",
		Feed:  feedView("/explore", feed),
	})
}

func renderHome(c echo.Context, feeds *services.FeedService, form models.TweetForm, fields map[string]string) error {
	user := middleware.CurrentUser(c)
	feed, err := feeds.HomeFeed(c.Request().Context(), user.ID, pageParam(c))
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "index.html", &views.Page{
		Title:  "Home",
		Form:   form,
		Errors: fields,
		Feed:   feedView("/", feed),
	})
}
