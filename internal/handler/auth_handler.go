package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"communication/internal/service"
)

// AuthHandler handles the credential check endpoint.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents a user login request. Username is the email address.
// Password follows the same rule as UserRequest so any stored password can log in.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"max=72"`
}

// LoginResponse reports a successful credential check.
type LoginResponse struct {
	LoginSuccess bool `json:"loginsuccess"`
}

// Login godoc
// @Summary Check user credentials
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ok, err := h.authService.CheckLogin(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, LoginResponse{LoginSuccess: ok})
}
