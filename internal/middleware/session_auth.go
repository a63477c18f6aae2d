package middleware

import (
	"net/http"
	"net/url"
	"time"

	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/repositories"
	"github.com/anonto42/twittor/backend/internal/session"
	"github.com/anonto42/twittor/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const currentUserKey = "currentUser"

// lastSeenInterval bounds how often last_seen is written for an active user.
const lastSeenInterval = time.Minute

// LoadCurrentUser resolves the session's user and stores it on the context.
// Sessions pointing at a deleted user are dropped.
func LoadCurrentUser(userRepo repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := session.Get(c)
			id := s.UserID()
			if id == 0 {
				return next(c)
			}

			ctx := c.Request().Context()
			user, err := userRepo.GetByID(ctx, id)
			if err != nil {
				if models.IsCode(err, models.CodeNotFound) {
					s.Logout()
					return next(c)
				}
				return err
			}

			now := time.Now()
			if now.Sub(user.LastSeen) >= lastSeenInterval {
				if err := userRepo.Touch(ctx, user.ID, now); err != nil {
					logger.Log.Warn("failed to update last seen", zap.Uint("user_id", user.ID), zap.Error(err))
				} else {
					user.LastSeen = now
				}
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the logged-in user, or nil for anonymous requests.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(currentUserKey).(*models.User)
	return user
}

// RequireLogin sends anonymous requests to the login page, remembering where they were going.
func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request().URL.RequestURI()))
		}
		return next(c)
	}
}

// RedirectIfAuthenticated keeps logged-in users away from login and signup pages.
func RedirectIfAuthenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) != nil {
			return c.Redirect(http.StatusFound, "/")
		}
		return next(c)
	}
}
