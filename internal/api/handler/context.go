package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// Context keys set by middleware.Auth.
const (
	CtxUsername = "username"
	CtxRoles    = "roles"
)

// ErrorBody is the canonical error envelope for all API errors.
type ErrorBody struct {
	Error string `json:"error"`
}

// ctxUsername extracts the subject injected by the Auth middleware. An empty
// value means the route was mounted without authentication.
func ctxUsername(c echo.Context) (string, error) {
	username, _ := c.Get(CtxUsername).(string)
	if username == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return username, nil
}

// CtxRolesOf returns the roles injected by the Auth middleware, if any.
func CtxRolesOf(c echo.Context) []domain.RoleName {
	roles, _ := c.Get(CtxRoles).([]domain.RoleName)
	return roles
}
