package uploads

import (
	"strings"

	"gatherly-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	bucketEventCovers = "event-covers"
	bucketGiftImages  = "gift-images"
)

type Handlers struct {
	Service *Service
}

// POST /api/v1/uploads/event-cover
func (h *Handlers) UploadEventCover(c *fiber.Ctx) error {
	return h.signedUpload(c, bucketEventCovers)
}

// POST /api/v1/uploads/gift-image
func (h *Handlers) UploadGiftImage(c *fiber.Ctx) error {
	return h.signedUpload(c, bucketGiftImages)
}

func (h *Handlers) signedUpload(c *fiber.Ctx, bucket string) error {
	var body struct {
		FileName string `json:"file_name"`
	}
	if err := c.BodyParser(&body); err != nil || body.FileName == "" {
		return response.Error(c, "file_name is required", 400)
	}
	fileName := sanitizeFileName(body.FileName)
	if fileName == "" {
		return response.Error(c, "Invalid file_name", 400)
	}

	result, err := h.Service.GetSignedUploadURL(c.Context(), bucket, fileName)
	if err != nil {
		return response.Error(c, "Failed to create upload URL", 500)
	}
	return response.Success(c, "Upload URL created successfully", result)
}

// sanitizeFileName strips path separators and spaces from the client name.
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	name = strings.ReplaceAll(name, " ", "-")
	return name
}
