package server

import (
	"strconv"
	"time"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	SessionID    string `json:"session_id"`
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	SessionID    string       `json:"session_id"`
	User         *models.User `json:"user,omitempty"`
}

// Register creates a new account and opens its first session.
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	resp, err := s.openSession(c, user)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login authenticates the user and opens a session.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp, err := s.openSession(c, user)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(resp)
}

// Refresh rotates the session's refresh token and issues a fresh JWT.
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid session id"))
	}

	session, err := s.sessionService.RefreshSession(c.UserContext(), sessionID, req.RefreshToken)
	if err != nil {
		return respondServiceError(c, err)
	}

	token, err := s.generateToken(session.UserID, session.ID)
	if err != nil {
		return respondServiceError(c, models.NewInternalError(err))
	}

	return c.JSON(authResponse{
		Token:        token,
		RefreshToken: *session.RefreshToken,
		SessionID:    session.ID.String(),
	})
}

// Logout ends the current session.
func (s *Server) Logout(c *fiber.Ctx) error {
	userID := currentUserID(c)

	sessionID, ok := c.Locals("sessionID").(uuid.UUID)
	if !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Token carries no session"))
	}

	if err := s.sessionService.DeleteSession(c.UserContext(), sessionID, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// LogoutAll ends every session of the current user.
func (s *Server) LogoutAll(c *fiber.Ctx) error {
	if err := s.sessionService.ClearSessions(c.UserContext(), currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "All sessions closed"})
}

func (s *Server) openSession(c *fiber.Ctx, user *models.User) (*authResponse, error) {
	session, err := s.sessionService.CreateSession(c.UserContext(), user.ID, c.IP())
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken(user.ID, session.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &authResponse{
		Token:        token,
		RefreshToken: *session.RefreshToken,
		SessionID:    session.ID.String(),
		User:         user,
	}, nil
}

// generateToken issues a short-lived access token bound to the session.
func (s *Server) generateToken(userID uint, sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"sid": sessionID.String(),
		"iat": now.Unix(),
		"exp": now.Add(time.Duration(s.config.AccessTokenMinutes) * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
