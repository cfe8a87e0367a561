package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pitchroast/api/internal/middleware"
	"github.com/pitchroast/api/internal/model"
	"github.com/pitchroast/api/internal/service"
	"github.com/pitchroast/api/internal/store"
	"github.com/pitchroast/api/pkg/response"
)

type UploadHandler struct {
	service *service.UploadService
}

func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{service: svc}
}

// Deck handles POST /api/upload/deck.
// Accepts a single PDF up to 10MB; the uploader identity comes from the
// optional auth token, otherwise the submission is anonymous.
func (h *UploadHandler) Deck(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, "File is required", nil)
	}

	// Checked here and again in the service before any side effect.
	if file.Size > service.MaxDeckSize {
		return response.ValidationError(c, "File size exceeds 10MB limit", map[string]interface{}{
			"maxSize":  service.MaxDeckSize,
			"fileSize": file.Size,
		})
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "application/pdf" {
		return response.ValidationError(c, "Invalid file type. Only PDF is supported", map[string]interface{}{
			"contentType": contentType,
		})
	}

	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open file")
	}
	defer f.Close()

	identity := middleware.GetEmail(c)
	if identity == "" {
		identity = model.AnonymousUploader
	}

	result, err := h.service.UploadDeck(c.Context(), identity, file.Filename, contentType, file.Size, f)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFileType), errors.Is(err, service.ErrFileTooLarge):
			return response.ValidationError(c, err.Error(), nil)
		default:
			return response.ServiceError(c, err.Error())
		}
	}

	return response.Created(c, result)
}

// Remove handles DELETE /api/upload/deck/:submissionId.
// Deletes the stored object only; the submission record is kept.
func (h *UploadHandler) Remove(c *fiber.Ctx) error {
	submissionID := c.Params("submissionId")
	if submissionID == "" {
		return response.ValidationError(c, "Submission ID is required", nil)
	}

	if err := h.service.RemoveDeck(c.Context(), submissionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Submission not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.NoContent(c)
}
