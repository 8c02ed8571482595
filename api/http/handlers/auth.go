package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/blog/api/http/presenter"
	"github.com/artem13815/blog/pkg/auth"
	"github.com/artem13815/blog/pkg/security"
)

type AuthHandler struct {
	useCase auth.AuthUseCase
}

func NewAuthHandler(useCase auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{useCase: useCase}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Register handles user registration.
// @Summary Register user
// @Description Creates the account and its first session. Tokens are returned in the x-refresh-token and x-access-token headers.
// @Tags    users
// @Accept  json
// @Produce json
// @Param   input body credentialsRequest true "registration payload"
// @Success 200 {object} auth.User
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /users [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON payload")
	}

	result, err := h.useCase.Register(c.UserContext(), auth.RegisterInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return presenter.Fail(c, err)
	}
	return sendAuthResult(c, result)
}

// Login handles user login.
// @Summary Login
// @Tags    users
// @Accept  json
// @Produce json
// @Param   input body credentialsRequest true "login payload"
// @Success 200 {object} auth.User
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /users/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON payload")
	}

	result, err := h.useCase.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return sendAuthResult(c, result)
}

// AccessToken issues a fresh access token for a verified session.
// @Summary Refresh access token
// @Tags    users
// @Produce json
// @Param   _id header string true "user id"
// @Param   x-refresh-token header string true "refresh token"
// @Success 200 {object} accessTokenResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /users/me/access-token [get]
func (h *AuthHandler) AccessToken(c *fiber.Ctx) error {
	user, ok := security.User(c)
	if !ok {
		return security.Unauthorized(c, auth.ErrSessionNotFound)
	}
	token, err := h.useCase.RefreshAccessToken(c.UserContext(), user)
	if err != nil {
		return presenter.Fail(c, err)
	}
	c.Set(security.HeaderAccessToken, token)
	return presenter.JSON(c, http.StatusOK, accessTokenResponse{AccessToken: token})
}

// Logout removes the session of the presented refresh token.
// @Summary Logout
// @Tags    users
// @Param   _id header string true "user id"
// @Param   x-refresh-token header string true "refresh token"
// @Success 200
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /users/session [delete]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, ok := security.UserID(c)
	if !ok {
		return security.Unauthorized(c, auth.ErrSessionNotFound)
	}
	if err := h.useCase.Logout(c.UserContext(), userID, security.RefreshToken(c)); err != nil {
		return presenter.Fail(c, err)
	}
	return c.SendStatus(http.StatusOK)
}

// UpdateUser changes the caller's own email or password.
// @Summary Update user
// @Tags    users
// @Accept  json
// @Produce json
// @Param   id path string true "user id (UUID)"
// @Param   x-access-token header string true "access token"
// @Param   input body updateUserRequest true "fields to change"
// @Success 200 {object} auth.User
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /users/{id} [patch]
func (h *AuthHandler) UpdateUser(c *fiber.Ctx) error {
	callerID, ok := security.UserID(c)
	if !ok {
		return security.Unauthorized(c, auth.ErrInvalidSignature)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "validation_error", "invalid user id")
	}
	if id != callerID {
		return presenter.Error(c, http.StatusForbidden, "forbidden", "a user may only update their own account")
	}
	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON payload")
	}

	user, err := h.useCase.UpdateUser(c.UserContext(), id, auth.UserPatch{Email: req.Email, Password: req.Password})
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, user)
}

func sendAuthResult(c *fiber.Ctx, result auth.AuthResult) error {
	c.Set(security.HeaderRefreshToken, result.RefreshToken)
	c.Set(security.HeaderAccessToken, result.AccessToken)
	return presenter.JSON(c, http.StatusOK, result.User)
}
