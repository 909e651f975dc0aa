package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/principal"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zap.NewNop())
	e.GET("/conflict", func(echo.Context) error {
		return fmt.Errorf("student 1: %w", apperror.Conflict("Student already allocated to a mentor"))
	})
	e.GET("/boom", func(echo.Context) error { return errors.New("db password leaked") })
	e.GET("/dep", func(echo.Context) error {
		return apperror.Dependency("Failed to load mentor", errors.New("connection refused"))
	})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"success":false,"kind":"conflict","message":"student 1: Student already allocated to a mentor"}`, rec.Body.String())

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "leaked")

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/dep", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to load mentor")
	assert.NotContains(t, rec.Body.String(), "refused")

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type payload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=3"`
}

func TestValidator(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&payload{Email: "a@b.co", Name: "Ada"}))

	err := v.Validate(&payload{Email: "nope", Name: "Al"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	assert.Contains(t, err.Error(), "Email must be a valid email")
	assert.Contains(t, err.Error(), "Name must be at least 3 characters")
}

type stubResolver map[string]*principal.Principal

func (s stubResolver) Resolve(_ context.Context, raw string) (*principal.Principal, error) {
	if p, ok := s[raw]; ok {
		return p, nil
	}
	return nil, principal.ErrNotAuthenticated
}

func TestJWTAndRBAC(t *testing.T) {
	rbac, err := NewRBAC(zap.NewNop())
	require.NoError(t, err)
	resolver := stubResolver{
		"admin-token":   {ID: primitive.NewObjectID(), Role: principal.RoleAdmin},
		"teacher-token": {ID: primitive.NewObjectID(), Role: "teacher"},
	}

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zap.NewNop())
	g := e.Group("/api/batch", JWT(resolver, "token"), rbac.Authorize())
	g.GET("/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/api/batch/1", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/batch/1", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "admin-token"})
	assert.Equal(t, http.StatusNoContent, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/batch/1", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer teacher-token")
	rec := serve(e, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You don't have permission to perform this action")
}

func TestRequireRole(t *testing.T) {
	rbac, err := NewRBAC(zap.NewNop())
	require.NoError(t, err)

	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	for role, want := range map[string]int{
		principal.RoleSuperAdmin: http.StatusNoContent,
		principal.RoleAdmin:      http.StatusNoContent,
		"teacher":                http.StatusForbidden,
	} {
		e := echo.New()
		e.HTTPErrorHandler = ErrorHandler(zap.NewNop())
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		principal.Set(c, &principal.Principal{Role: role})
		err := rbac.RequireRole(principal.RoleAdmin)(ok)(c)
		if want == http.StatusForbidden {
			assert.ErrorIs(t, err, ErrPermissionDenied, role)
		} else {
			assert.NoError(t, err, role)
		}
	}
}
