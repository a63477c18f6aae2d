package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/views"
	"github.com/anonto42/twittor/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HTTPErrorHandler renders errors as HTML pages. Not-found errors get the 404 page,
// everything at or above 500 is logged and shown without details.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := http.StatusText(status)

	var appErr *models.AppError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status = appErr.Status()
		message = appErr.Message
	case errors.As(err, &httpErr):
		status = httpErr.Code
		message = fmt.Sprint(httpErr.Message)
	}

	if status >= http.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
		message = http.StatusText(status)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}

	name := "error.html"
	if status == http.StatusNotFound {
		name = "404.html"
	}
	page := &views.Page{Title: http.StatusText(status), Status: status, Message: message}
	if rerr := render(c, status, name, page); rerr != nil {
		logger.Log.Error("failed to render error page", zap.Error(rerr))
		_ = c.String(status, message)
	}
}
