package middleware

import (
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/api/handler"
	"github.com/99minutos/auth-service/internal/core/domain"
)

// RBAC lets the request through when the caller holds any of allowedRoles.
// It must run after Auth.
func RBAC(allowedRoles ...domain.RoleName) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, r := range handler.CtxRolesOf(c) {
				if slices.Contains(allowedRoles, r) {
					return next(c)
				}
			}
			return domain.ErrForbidden
		}
	}
}
