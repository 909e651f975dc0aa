package auth

import (
	"net/http"
	"time"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/config"
	"MentorDesk/internal/principal"

	"github.com/labstack/echo/v4"
)

const CookieName = "token"

type AuthHandler struct {
	service *AuthService
	secure  bool
}

func NewAuthHandler(service *AuthService, cfg *config.AppConfig) *AuthHandler {
	return &AuthHandler{service: service, secure: !cfg.IsDevelopment()}
}

func (h *AuthHandler) setCookie(c echo.Context, value string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperror.Validation("Invalid request")
	}
	return c.Validate(req)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	sess, err := h.service.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	h.setCookie(c, sess.Token, sess.ExpiresAt)
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "User registered successfully",
		"token":   sess.Token,
		"user":    sess.Admin,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	sess, err := h.service.Login(c.Request().Context(), req, c.RealIP())
	if err != nil {
		return err
	}
	h.setCookie(c, sess.Token, sess.ExpiresAt)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged in successfully",
		"token":   sess.Token,
		"user":    sess.Admin,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if p, err := principal.From(c); err == nil {
		if err := h.service.Logout(c.Request().Context(), p.TokenID, p.ExpiresAt); err != nil {
			return err
		}
	}
	h.setCookie(c, "", time.Unix(0, 0))
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if err := h.service.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Reset password link sent to " + req.Email,
	})
}

// ResetPassword returns a handler for PUT /api/auth/<kind>/resetpassword/:token.
func (h *AuthHandler) ResetPassword(kind string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req ResetPasswordRequest
		if err := bindValid(c, &req); err != nil {
			return err
		}
		if err := h.service.ResetPassword(c.Request().Context(), kind, c.Param("token"), req.Password); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Password reset successful"})
	}
}

func (h *AuthHandler) Profile(c echo.Context) error {
	p, err := principal.From(c)
	if err != nil {
		return err
	}
	admin, err := h.service.Profile(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "user": admin})
}
