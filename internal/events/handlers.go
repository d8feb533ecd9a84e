package events

import (
	"time"

	"gatherly-backend/internal/middleware"
	"gatherly-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

type eventBody struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Location      *string `json:"location"`
	EventDate     *string `json:"event_date"`
	CoverImageURL *string `json:"cover_image_url"`
}

// POST /api/v1/events
func (h *Handlers) CreateEvent(c *fiber.Ctx) error {
	var body eventBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400)
	}
	if body.Name == nil || *body.Name == "" {
		return response.Error(c, "Event name is required", 400)
	}
	date, err := parseDate(body.EventDate)
	if err != nil {
		return response.Error(c, "Invalid event_date format", 400)
	}

	ev, err := h.Service.CreateEvent(c.Context(), CreateEventInput{
		OrganizerID:   middleware.ActorID(c),
		Name:          *body.Name,
		Description:   strOrEmpty(body.Description),
		Location:      strOrEmpty(body.Location),
		EventDate:     date,
		CoverImageURL: body.CoverImageURL,
	})
	if err != nil {
		return response.Error(c, err.Error(), 400)
	}
	return response.Created(c, "Event created successfully", ev)
}

// GET /api/v1/events
func (h *Handlers) ListEvents(c *fiber.Ctx) error {
	evs, err := h.Service.ListEvents(c.Context(), middleware.ActorID(c))
	if err != nil {
		return response.Error(c, "Internal Server Error", 500)
	}
	return response.SuccessCount(c, "Events fetched successfully", evs, len(evs))
}

// GET /api/v1/events/:event_id
func (h *Handlers) GetEvent(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid event_id format", 400)
	}
	ev, err := h.Service.FindOwned(c.Context(), eventID, middleware.ActorID(c))
	if err != nil {
		if err == ErrEventNotFound {
			return response.Error(c, err.Error(), 404)
		}
		return response.Error(c, "Internal Server Error", 500)
	}
	return response.Success(c, "Event fetched successfully", ev)
}

// GET /api/v1/events/:event_id/public — guest-facing read, no auth.
func (h *Handlers) GetEventPublic(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid event_id format", 400)
	}
	ev, err := h.Service.FindByID(c.Context(), eventID)
	if err != nil {
		if err == ErrEventNotFound {
			return response.Error(c, err.Error(), 404)
		}
		return response.Error(c, "Internal Server Error", 500)
	}
	return response.Success(c, "Event fetched successfully", fiber.Map{
		"event_id":        ev.EventID,
		"name":            ev.Name,
		"description":     ev.Description,
		"location":        ev.Location,
		"event_date":      ev.EventDate,
		"cover_image_url": ev.CoverImageURL,
	})
}

// PUT /api/v1/events/:event_id
func (h *Handlers) UpdateEvent(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid event_id format", 400)
	}
	var body eventBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400)
	}
	date, err := parseDate(body.EventDate)
	if err != nil {
		return response.Error(c, "Invalid event_date format", 400)
	}

	ev, err := h.Service.UpdateEvent(c.Context(), UpdateEventInput{
		EventID:       eventID,
		OrganizerID:   middleware.ActorID(c),
		Name:          body.Name,
		Description:   body.Description,
		Location:      body.Location,
		EventDate:     date,
		CoverImageURL: body.CoverImageURL,
	})
	if err != nil {
		if err == ErrEventNotFound {
			return response.Error(c, err.Error(), 404)
		}
		return response.Error(c, err.Error(), 400)
	}
	return response.Success(c, "Event updated successfully", ev)
}

// DELETE /api/v1/events/:event_id
func (h *Handlers) DeleteEvent(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid event_id format", 400)
	}
	if err := h.Service.DeleteEvent(c.Context(), eventID, middleware.ActorID(c)); err != nil {
		if err == ErrEventNotFound {
			return response.Error(c, err.Error(), 404)
		}
		return response.Error(c, "Internal Server Error", 500)
	}
	return response.Success(c, "Event deleted successfully", nil)
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		// Date-only input from the frontend date picker
		t, err = time.Parse("2006-01-02", *s)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
