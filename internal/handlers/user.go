package handlers

import (
	"net/http"
	"net/url"

	"github.com/anonto42/twittor/backend/internal/middleware"
	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/services"
	"github.com/anonto42/twittor/backend/internal/views"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile pages and profile edits
type UserHandler struct {
	feedService    *services.FeedService
	socialService  *services.SocialService
	accountService *services.AccountService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(feedService *services.FeedService, socialService *services.SocialService, accountService *services.AccountService) *UserHandler {
	return &UserHandler{
		feedService:    feedService,
		socialService:  socialService,
		accountService: accountService,
	}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/user/:username", h.GetProfile, middleware.RequireLogin)
	g.GET("/edit_profile", h.EditProfileForm, middleware.RequireLogin)
	g.POST("/edit_profile", h.UpdateProfile, middleware.RequireLogin)
}

// GetProfile shows a user's posts and follow counters.
func (h *UserHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	viewer := middleware.CurrentUser(c)

	user, feed, err := h.feedService.ProfileFeed(ctx, c.Param("username"), pageParam(c))
	if err != nil {
		return err
	}
	stats, err := h.socialService.Stats(ctx, viewer.ID, user)
	if err != nil {
		return err
	}

	return render(c, http.StatusOK, "user.html", &views.Page{
		Title: "Profile",
		Feed:  feedView(profilePath(user.Username), feed),
		Profile: &views.ProfileView{
			User:        user,
			Posts:       stats.Posts,
			Followers:   stats.Followers,
			Following:   stats.Following,
			IsFollowing: stats.IsFollowing,
			IsOwner:     user.ID == viewer.ID,
		},
	})
}

func (h *UserHandler) EditProfileForm(c echo.Context) error {
	user := middleware.CurrentUser(c)
	return render(c, http.StatusOK, "edit_profile.html", &views.Page{
		Title: "Edit Profile",
		Form:  models.EditProfileForm{AboutMe: user.AboutMe},
	})
}

// UpdateProfile saves the about-me text and returns to the profile page.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var form models.EditProfileForm
	fields, err := bindForm(c, &form)
	if err != nil {
		return err
	}
	if fields == nil {
		err = h.accountService.UpdateProfile(c.Request().Context(), user.ID, form.AboutMe)
		if err == nil {
			return c.Redirect(http.StatusFound, profilePath(user.Username))
		}
		var ok bool
		if fields, _, ok = formErrors(err); !ok {
			return err
		}
	}
	return render(c, http.StatusOK, "edit_profile.html", &views.Page{
		Title:  "Edit Profile",
		Form:   form,
		Errors: fields,
	})
}

func profilePath(username string) string {
	return "/user/" + url.PathEscape(username)
}
