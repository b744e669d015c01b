package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// UserHandler serves profile lookups for authenticated callers.
type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type profileResponse struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"created_at"`
}

func toProfileResponse(u *domain.User) profileResponse {
	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = string(r)
	}
	return profileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Roles:     roles,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Me returns the profile of the token's subject.
//
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  ErrorBody
// @Failure      404  {object}  ErrorBody
// @Router       /v1/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(user))
}

// GetUser returns any user's profile. Mounted behind ROLE_ADMIN.
//
// @Summary      Look up a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  profileResponse
// @Failure      401       {object}  ErrorBody
// @Failure      403       {object}  ErrorBody
// @Failure      404       {object}  ErrorBody
// @Router       /v1/admin/users/{username} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}

	user, err := h.authService.Profile(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(user))
}
