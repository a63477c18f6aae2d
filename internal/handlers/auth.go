package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/twittor/backend/internal/middleware"
	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/services"
	"github.com/anonto42/twittor/backend/internal/session"
	"github.com/anonto42/twittor/backend/internal/views"
	"github.com/anonto42/twittor/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler handles sign in, sign out and registration
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.GET("/login", h.LoginForm, middleware.RedirectIfAuthenticated)
	g.POST("/login", h.Login, middleware.RedirectIfAuthenticated)
	g.GET("/logout", h.Logout)
	g.GET("/register", h.RegisterForm, middleware.RedirectIfAuthenticated)
	g.POST("/register", h.Register, middleware.RedirectIfAuthenticated)
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
	return render(c, http.StatusOK, "login.html", &views.Page{Title: "Sign In", Form: models.LoginForm{}})
}

// Login checks the credentials and starts a fresh session for the user.
func (h *AuthHandler) Login(c echo.Context) error {
	var form models.LoginForm
	fields, err := bindForm(c, &form)
	if err != nil {
		return err
	}
	password := form.Password
	form.Password = "" // never echoed back into the page
	if fields != nil {
		return render(c, http.StatusOK, "login.html", &views.Page{Title: "Sign In", Form: form, Errors: fields})
	}

	user, err := h.authService.Authenticate(c.Request().Context(), form.Username, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			logger.Log.Info("invalid login attempt", zap.String("username", form.Username))
			return render(c, http.StatusOK, "login.html", &views.Page{
				Title:   "Sign In",
				Form:    form,
				Message: "Invalid username or password",
			})
		}
		return err
	}

	session.Get(c).Login(user.ID, form.RememberMe)
	return c.Redirect(http.StatusFound, safeNext(c.QueryParam("next")))
}

func (h *AuthHandler) Logout(c echo.Context) error {
	session.Get(c).Logout()
	return c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return render(c, http.StatusOK, "register.html", &views.Page{Title: "Register", Form: models.RegisterForm{}})
}

// Register creates an inactive account and sends the user to the login page.
func (h *AuthHandler) Register(c echo.Context) error {
	var form models.RegisterForm
	fields, err := bindForm(c, &form)
	if err != nil {
		return err
	}
	if fields != nil {
		return h.registerError(c, form, fields, "")
	}

	user, err := h.authService.Register(c.Request().Context(), form)
	if err != nil {
		if fields, msg, ok := formErrors(err); ok {
			return h.registerError(c, form, fields, msg)
		}
		return err
	}

	logger.Log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	session.Get(c).AddFlash("Registration successful, please sign in")
	return c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) registerError(c echo.Context, form models.RegisterForm, fields map[string]string, msg string) error {
	form.Password, form.Password2 = "", ""
	return render(c, http.StatusOK, "register.html", &views.Page{
		Title:   "Register",
		Form:    form,
		Errors:  fields,
		Message: msg,
	})
}
