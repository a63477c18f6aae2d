package handlers

import (
	"net/http"

	"github.com/anonto42/twittor/backend/internal/middleware"
	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/services"
	"github.com/anonto42/twittor/backend/internal/session"
	"github.com/anonto42/twittor/backend/internal/token"
	"github.com/anonto42/twittor/backend/internal/views"
	"github.com/labstack/echo/v4"
)

const (
	msgActivated      = "User has been activated!"
	msgActivateFailed = "Token has expired, please try to re-send email."
	msgResetRequested = "You should soon receive an email allowing you to reset your password. " +
		"Please make sure to check your spam and trash if you can't find the email."
	msgPasswordReset = "Your password has been reset"
)

// AccountHandler handles the email-token flows: activation and password reset
type AccountHandler struct {
	accountService *services.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// RegisterAccountRoutes registers activation and password reset routes
func (h *AccountHandler) RegisterAccountRoutes(g *echo.Group) {
	g.GET("/user_activate/:token", h.Activate)
	g.GET("/reset_password_request", h.ResetRequestForm, middleware.RedirectIfAuthenticated)
	g.POST("/reset_password_request", h.RequestReset, middleware.RedirectIfAuthenticated)
	g.GET("/password_reset/:token", h.ResetForm, middleware.RedirectIfAuthenticated)
	g.POST("/password_reset/:token", h.ResetPassword, middleware.RedirectIfAuthenticated)
}

// Activate consumes an activation token from an email link.
func (h *AccountHandler) Activate(c echo.Context) error {
	if user := middleware.CurrentUser(c); user != nil && user.IsActivated {
		return c.Redirect(http.StatusFound, "/")
	}

	user, err := h.accountService.Activate(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	msg := msgActivated
	if user == nil {
		msg = msgActivateFailed
	}
	return render(c, http.StatusOK, "activated.html", &views.Page{Title: "Activation", Message: msg})
}

func (h *AccountHandler) ResetRequestForm(c echo.Context) error {
	return render(c, http.StatusOK, "password_reset_request.html", &views.Page{
		Title: "Reset Password",
		Form:  models.PasswordResetRequestForm{},
	})
}

// RequestReset emails a reset link. The reply is the same whether or not the
// address is registered.
func (h *AccountHandler) RequestReset(c echo.Context) error {
	var form models.PasswordResetRequestForm
	fields, err := bindForm(c, &form)
	if err != nil {
		return err
	}
	if fields != nil {
		return render(c, http.StatusOK, "password_reset_request.html", &views.Page{
			Title:  "Reset Password",
			Form:   form,
			Errors: fields,
		})
	}

	if err := h.accountService.RequestPasswordReset(c.Request().Context(), form.Email); err != nil {
		return err
	}
	session.Get(c).AddFlash(msgResetRequested)
	return c.Redirect(http.StatusFound, "/login")
}

func (h *AccountHandler) ResetForm(c echo.Context) error {
	user, err := h.accountService.VerifyToken(c.Request().Context(), c.Param("token"), token.PurposeReset)
	if err != nil {
		return err
	}
	if user == nil {
		return c.Redirect(http.StatusFound, "/login")
	}
	return renderResetForm(c, nil)
}

// ResetPassword sets the new password of the token's user.
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	tok := c.Param("token")

	user, err := h.accountService.VerifyToken(ctx, tok, token.PurposeReset)
	if err != nil {
		return err
	}
	if user == nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	var form models.PasswordResetForm
	fields, err := bindForm(c, &form)
	if err != nil {
		return err
	}
	if fields != nil {
		return renderResetForm(c, fields)
	}

	user, err = h.accountService.ResetPassword(ctx, tok, form.Password)
	if err != nil {
		return err
	}
	if user == nil {
		return c.Redirect(http.StatusFound, "/login")
	}
	session.Get(c).AddFlash(msgPasswordReset)
	return c.Redirect(http.StatusFound, "/login")
}

func renderResetForm(c echo.Context, fields map[string]string) error {
	return render(c, http.StatusOK, "password_reset.html", &views.Page{
		Title:  "Password Reset",
		Form:   models.PasswordResetForm{},
		Errors: fields,
	})
}
