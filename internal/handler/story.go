package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pitchroast/api/internal/model"
	"github.com/pitchroast/api/internal/service"
	"github.com/pitchroast/api/internal/store"
	"github.com/pitchroast/api/pkg/response"
)

const defaultStoryLimit = 50

type StoryHandler struct {
	service   *service.StoryService
	validator *validator.Validate
}

func NewStoryHandler(svc *service.StoryService, v *validator.Validate) *StoryHandler {
	return &StoryHandler{
		service:   svc,
		validator: v,
	}
}

// List handles GET /api/stories — rejection stories, newest first.
func (h *StoryHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultStoryLimit)

	stories, err := h.service.List(c.Context(), limit)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, stories)
}

// Create handles POST /api/stories.
func (h *StoryHandler) Create(c *fiber.Ctx) error {
	var req model.CreateStoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Story text is required (3-2000 characters)", nil)
	}

	story, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.Created(c, story)
}

// Like handles POST /api/stories/:storyId/like.
func (h *StoryHandler) Like(c *fiber.Ctx) error {
	storyID, err := c.ParamsInt("storyId")
	if err != nil || storyID <= 0 {
		return response.ValidationError(c, "Invalid story ID", nil)
	}

	likes, err := h.service.Like(c.Context(), int64(storyID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Story not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, fiber.Map{"id": storyID, "likes": likes})
}

// Signup handles POST /api/signup — email capture for the investor list.
func (h *StoryHandler) Signup(c *fiber.Ctx) error {
	var req model.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "A valid email is required", nil)
	}

	if err := h.service.Signup(c.Context(), req.Email); err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Created(c, fiber.Map{"email": req.Email})
}
