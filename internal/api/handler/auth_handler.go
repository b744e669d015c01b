package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/api/metrics"
	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

const (
	opLogin    = "login"
	opRegister = "register"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// credentialsRequest is the body of both /auth/register and /auth/login.
// bcrypt ignores input beyond 72 bytes, so longer passwords are rejected.
type credentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresAt string `json:"expires_at"`
	Username  string `json:"username"`
}

// Register creates a new account and returns an access token for it.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Username and password"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  ErrorBody
// @Failure      409   {object}  ErrorBody
// @Failure      422   {object}  ErrorBody
// @Failure      503   {object}  ErrorBody
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	return h.handle(c, opRegister, http.StatusCreated, h.authService.Register)
}

// Login authenticates a username/password pair and returns an access token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Username and password"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  ErrorBody
// @Failure      401   {object}  ErrorBody
// @Failure      422   {object}  ErrorBody
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	return h.handle(c, opLogin, http.StatusOK, h.authService.Login)
}

type credentialsFunc func(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error)

func (h *AuthHandler) handle(c echo.Context, op string, status int, call credentialsFunc) error {
	start := time.Now()
	defer func() {
		metrics.AuthRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues(op, "invalid_request").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues(op, "invalid_request").Inc()
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := call(c.Request().Context(), ports.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues(op, outcome(err)).Inc()
		return err
	}

	metrics.AuthRequestsTotal.WithLabelValues(op, "success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues(op).Inc()
	return c.JSON(status, tokenResponse{
		Token:     res.Token,
		TokenType: res.TokenType,
		ExpiresAt: res.ExpiresAt.UTC().Format(time.RFC3339),
		Username:  res.Username,
	})
}

// outcome maps a service error to the metrics outcome label.
func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrUsernameTaken):
		return "username_taken"
	case errors.Is(err, domain.ErrTokenIssuance):
		return "token_issuance"
	case errors.Is(err, domain.ErrInvalidUser):
		return "invalid_request"
	default:
		return "error"
	}
}
