package server

import (
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommunityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsClosed    bool   `json:"is_closed"`
}

// GetCommunities lists all communities.
func (s *Server) GetCommunities(c *fiber.Ctx) error {
	communities, err := s.communityService.ListCommunities(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(communities)
}

// GetCommunity returns a single community.
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	community, err := s.communityService.GetCommunity(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(community)
}

// CreateCommunity opens a new community with the caller as creator.
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	var req createCommunityRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	community, err := s.communityService.CreateCommunity(c.UserContext(), service.CreateCommunityInput{
		CreatorID:   currentUserID(c),
		Name:        req.Name,
		Description: req.Description,
		IsClosed:    req.IsClosed,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(community)
}

// Subscribe adds the caller to a community as a subscriber.
func (s *Server) Subscribe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.communityService.Subscribe(c.UserContext(), id, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Subscribed"})
}

// Unsubscribe removes the caller from a community.
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.communityService.Unsubscribe(c.UserContext(), id, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unsubscribed"})
}

// PromoteAdmin grants the admin role to a community member. Creator only.
func (s *Server) PromoteAdmin(c *fiber.Ctx) error {
	communityID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	memberID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.communityService.PromoteAdmin(c.UserContext(), communityID, currentUserID(c), memberID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Member promoted to admin"})
}
