package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pitchroast/api/internal/client"
	"github.com/pitchroast/api/internal/model"
	"github.com/pitchroast/api/internal/service"
	"github.com/pitchroast/api/pkg/response"
)

type RoastHandler struct {
	service   *service.RoastService
	validator *validator.Validate
}

func NewRoastHandler(svc *service.RoastService, v *validator.Validate) *RoastHandler {
	return &RoastHandler{
		service:   svc,
		validator: v,
	}
}

// Roast handles POST /api/roast.
// Runs the whole pipeline synchronously; the request stays open until the
// assistant finishes or the poll budget runs out.
func (h *RoastHandler) Roast(c *fiber.Ctx) error {
	var req model.RoastRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Missing pitch deck ID", nil)
	}

	result, err := h.service.Roast(c.Context(), req.PitchdeckID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return response.NotFound(c, "Pitch deck not found")
		case errors.Is(err, client.ErrRunTimedOut),
			errors.Is(err, client.ErrRunFailed),
			errors.Is(err, client.ErrRunExpired):
			return response.AIError(c, "Assistant did not complete the analysis")
		case errors.Is(err, client.ErrNoAssistantMessage),
			errors.Is(err, client.ErrEmptyMessageContent):
			return response.AIError(c, "No response from assistant")
		default:
			return response.ServiceError(c, err.Error())
		}
	}

	return response.OK(c, result)
}

// Get handles GET /api/roast/:submissionId — the latest stored roast.
func (h *RoastHandler) Get(c *fiber.Ctx) error {
	submissionID := c.Params("submissionId")
	if submissionID == "" {
		return response.ValidationError(c, "Submission ID is required", nil)
	}

	roast, err := h.service.GetRoast(c.Context(), submissionID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return response.NotFound(c, "No roast found for this pitch deck")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, roast)
}
