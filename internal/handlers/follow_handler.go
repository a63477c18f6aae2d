package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/twittor/backend/internal/middleware"
	"github.com/anonto42/twittor/backend/internal/services"
	"github.com/anonto42/twittor/backend/internal/session"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles the buttons on a profile page
type FollowHandler struct {
	socialService  *services.SocialService
	accountService *services.AccountService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(socialService *services.SocialService, accountService *services.AccountService) *FollowHandler {
	return &FollowHandler{socialService: socialService, accountService: accountService}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/user/:username", h.ProfileAction, middleware.RequireLogin)
}

// ProfileAction dispatches on request_button: Follow, Unfollow or Activate.
func (h *FollowHandler) ProfileAction(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.CurrentUser(c)
	sess := session.Get(c)
	username := c.Param("username")

	switch c.FormValue("request_button") {
	case "Follow":
		if _, err := h.socialService.Follow(ctx, actor.ID, username); err != nil {
			if !errors.Is(err, services.ErrSelfFollow) {
				return err
			}
			sess.AddFlash("You cannot follow yourself")
		}
	case "Unfollow":
		if _, err := h.socialService.Unfollow(ctx, actor.ID, username); err != nil {
			if !errors.Is(err, services.ErrSelfFollow) {
				return err
			}
			sess.AddFlash("You cannot unfollow yourself")
		}
	case "Activate":
		if actor.IsActivated {
			sess.AddFlash("Your account is already activated")
			break
		}
		if err := h.accountService.SendActivation(ctx, actor); err != nil {
			return err
		}
		sess.AddFlash("Send an email to your email address, please check!")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown action")
	}

	return c.Redirect(http.StatusFound, profilePath(username))
}
