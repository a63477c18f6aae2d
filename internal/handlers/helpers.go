package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/twittor/backend/internal/middleware"
	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/services"
	"github.com/anonto42/twittor/backend/internal/session"
	"github.com/anonto42/twittor/backend/internal/views"
	"github.com/anonto42/twittor/backend/pkg/config"
	"github.com/anonto42/twittor/backend/validators"
	"github.com/labstack/echo/v4"
)

// render fills in the per-request parts of page and renders the named template.
func render(c echo.Context, status int, name string, page *views.Page) error {
	page.CurrentUser = middleware.CurrentUser(c)
	page.Flashes = session.Get(c).Flashes()
	if tok, ok := c.Get(config.CSRFContextKey).(string); ok {
		page.CSRFToken = tok
	}
	if page.Errors == nil {
		page.Errors = map[string]string{}
	}
	return c.Render(status, name, page)
}

// bindForm binds and validates form. Validation problems come back as field
// messages; anything else is returned as an error.
func bindForm(c echo.Context, form interface{}) (map[string]string, error) {
	if err := c.Bind(form); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	if err := c.Validate(form); err != nil {
		if fields := validators.FieldErrors(err); fields != nil {
			return fields, nil
		}
		return nil, err
	}
	return nil, nil
}

// formErrors turns a validation AppError into field messages. ok is false for
// any other error, which the caller should return as is.
func formErrors(err error) (fields map[string]string, message string, ok bool) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeValidation {
		return nil, "", false
	}
	if appErr.Field != "" {
		return map[string]string{appErr.Field: appErr.Message}, "", true
	}
	return nil, appErr.Message, true
}

// pageParam reads ?page=, falling back to 1 for anything that is not a positive integer.
func pageParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil {
		return 1
	}
	return services.NormalizePage(n)
}

func pageURL(base string, page int) string {
	return base + "?page=" + strconv.Itoa(page)
}

// feedView converts a service feed into template data with links rooted at base.
func feedView(base string, feed *services.Feed) *views.FeedView {
	view := &views.FeedView{Posts: feed.Posts, Total: feed.Total}
	if feed.HasPrev {
		view.PrevURL = pageURL(base, feed.PrevPage)
	}
	if feed.HasNext {
		view.NextURL = pageURL(base, feed.NextPage)
	}
	return view
}

// safeNext accepts only local absolute paths as post-login targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
