package server

import (
	"errors"
	"strconv"
	"strings"

	"quill/internal/models"
	"quill/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil in that case so Fiber's
// ErrorHandler does not overwrite the response.
var errResponseWritten = errors.New("response already written")

const maxPageSize = 100

// parseID extracts a route parameter as a positive uint. On failure it
// writes a 400 response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the authenticated user's ID from Fiber locals.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// viewerID returns the authenticated user's ID as a pointer, or nil when the
// request is anonymous.
func viewerID(c *fiber.Ctx) *uint {
	if id, ok := c.Locals("userID").(uint); ok && id != 0 {
		return &id
	}
	return nil
}

// parseListPostsQuery builds the post listing query from query parameters.
// On invalid input it writes a 400 response and returns errResponseWritten.
func parseListPostsQuery(c *fiber.Ctx) (repository.ListPostsQuery, error) {
	q := repository.ListPostsQuery{
		ViewerID:          viewerID(c),
		Author:            c.Query("author"),
		OnlyMyCommunities: c.QueryBool("onlyMyCommunities"),
		Page:              c.QueryInt("page", 1),
		Size:              c.QueryInt("size", 5),
	}

	if q.Size > maxPageSize {
		q.Size = maxPageSize
	}

	if raw := c.Query("min"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q, badQueryParam(c, "min")
		}
		q.MinReadingTime = &v
	}
	if raw := c.Query("max"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q, badQueryParam(c, "max")
		}
		q.MaxReadingTime = &v
	}
	if raw := c.Query("communityId"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return q, badQueryParam(c, "communityId")
		}
		id := uint(v)
		q.CommunityID = &id
	}

	// Tags arrive as a comma-separated list: ?tags=1,2,3
	if raw := c.Query("tags"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.ParseUint(part, 10, 32)
			if err != nil {
				return q, badQueryParam(c, "tags")
			}
			q.TagIDs = append(q.TagIDs, uint(v))
		}
	}

	sorting, err := models.ParsePostSorting(c.Query("sorting"))
	if err != nil {
		return q, badQueryParam(c, "sorting")
	}
	q.Sorting = sorting

	return q, nil
}

func badQueryParam(c *fiber.Ctx, name string) error {
	_ = models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("Invalid query parameter: "+name))
	return errResponseWritten
}

// respondServiceError maps a service error onto the HTTP response.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}
