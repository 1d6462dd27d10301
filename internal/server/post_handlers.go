package server

import (
	"errors"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type createPostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ReadingTime int    `json:"reading_time"`
	ImageURL    string `json:"image_url"`
	AddressID   string `json:"address_id"`
	CommunityID *uint  `json:"community_id"`
	TagIDs      []uint `json:"tags"`
}

// GetPosts lists posts visible to the viewer with filtering, sorting and
// pagination.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	q, err := parseListPostsQuery(c)
	if err != nil {
		if errors.Is(err, errResponseWritten) {
			return nil
		}
		return respondServiceError(c, err)
	}

	page, err := s.postService.ListPosts(c.UserContext(), q)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetPost returns a single post if the viewer may see it.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id, viewerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost publishes a post, optionally into a community.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.CreatePostInput{
		AuthorID:    currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		ReadingTime: req.ReadingTime,
		ImageURL:    req.ImageURL,
		CommunityID: req.CommunityID,
		TagIDs:      req.TagIDs,
	}
	if req.AddressID != "" {
		addressID, err := uuid.Parse(req.AddressID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid address id"))
		}
		in.AddressID = &addressID
	}

	id, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// LikePost records the caller's like on a post.
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.LikePost(c.UserContext(), id, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post liked"})
}

// DislikePost removes the caller's like from a post.
func (s *Server) DislikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DislikePost(c.UserContext(), id, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Like removed"})
}
