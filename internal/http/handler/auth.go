package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"medstock/internal/http/middleware"
	"medstock/internal/http/response"
	"medstock/internal/model"
	"medstock/internal/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse carries the token at top level next to the usual envelope fields.
type loginResponse struct {
	Status  bool      `json:"status"`
	Token   string    `json:"token"`
	Data    loginData `json:"data"`
	Message string    `json:"message,omitempty"`
}

type loginData struct {
	User      model.User `json:"user"`
	ExpiresAt string     `json:"expires_at"`
}

// Login exchanges credentials for a bearer token.
//
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credentials"
// @Success 200 {object} loginResponse
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /api/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		res, err := svc.Login(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(loginResponse{
			Status:  true,
			Token:   res.Token,
			Message: "login successful",
			Data: loginData{
				User:      res.User,
				ExpiresAt: res.ExpiresAt.UTC().Format(time.RFC3339),
			},
		})
	}
}

// Logout revokes the presented token.
//
// @Summary Log out
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/logout [post]
func Logout(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Logout(c.UserContext(), middleware.CurrentClaims(c)); err != nil {
			return writeServiceError(c, err)
		}
		return response.Message(c, fiber.StatusOK, "logged out")
	}
}

// Profile returns the authenticated account.
//
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope{data=model.User}
// @Router /api/profile [get]
func Profile(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		if u := middleware.CurrentUser(c); u != nil {
			id = u.ID
		}
		u, err := svc.Profile(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return response.OK(c, fiber.StatusOK, u)
	}
}
