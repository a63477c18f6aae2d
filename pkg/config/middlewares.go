package config

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// CSRFContextKey is where echo's CSRF middleware stores the token for templates.
const CSRFContextKey = "csrf"

// CSRFConfig maps the app config onto echo's CSRF middleware. The token travels in the
// "_csrf" form field of every HTML form.
func (c *Config) CSRFConfig() middleware.CSRFConfig {
	return middleware.CSRFConfig{
		Skipper: func(ctx echo.Context) bool {
			return !c.CSRFEnabled || ctx.Path() == "/health"
		},
		TokenLookup:    "form:_csrf",
		ContextKey:     CSRFContextKey,
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   c.IsProduction(),
		CookieSameSite: http.SameSiteLaxMode,
	}
}
