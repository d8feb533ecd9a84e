package guests

import (
	"gatherly-backend/internal/events"
	"gatherly-backend/internal/middleware"
	"gatherly-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

type guestBody struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// POST /api/v1/events/:event_id/guests
func (h *Handlers) CreateGuest(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid event_id format", 400)
	}
	var body guestBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400)
	}
	if body.Name == nil || *body.Name == "" {
		return response.Error(c, "Guest name is required", 400)
	}

	g, err := h.Service.CreateGuest(c.Context(), CreateGuestInput{
		EventID:     eventID,
		OrganizerID: middleware.ActorID(c),
		Name:        *body.Name,
		Email:       strOrEmpty(body.Email),
		Phone:       strOrEmpty(body.Phone),
	})
	if err != nil {
		return guestError(c, err)
	}
	return response.Created(c, "Guest created successfully", g)
}

// GET /api/v1/events/:event_id/guests
func (h *Handlers) ListGuests(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid event_id format", 400)
	}
	gs, err := h.Service.ListGuests(c.Context(), eventID, middleware.ActorID(c))
	if err != nil {
		return guestError(c, err)
	}
	return response.SuccessCount(c, "Guests fetched successfully", gs, len(gs))
}

// GET /api/v1/events/:event_id/guests/:guest_id
func (h *Handlers) GetGuest(c *fiber.Ctx) error {
	eventID, guestID, err := parseIDs(c)
	if err != nil {
		return response.Error(c, err.Error(), 400)
	}
	if _, err := h.Service.Events.FindOwned(c.Context(), eventID, middleware.ActorID(c)); err != nil {
		return guestError(c, err)
	}
	g, err := h.Service.FindByID(c.Context(), eventID, guestID)
	if err != nil {
		return guestError(c, err)
	}
	return response.Success(c, "Guest fetched successfully", g)
}

// PUT /api/v1/events/:event_id/guests/:guest_id
func (h *Handlers) UpdateGuest(c *fiber.Ctx) error {
	eventID, guestID, err := parseIDs(c)
	if err != nil {
		return response.Error(c, err.Error(), 400)
	}
	var body guestBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400)
	}

	g, err := h.Service.UpdateGuest(c.Context(), UpdateGuestInput{
		EventID:     eventID,
		GuestID:     guestID,
		OrganizerID: middleware.ActorID(c),
		Name:        body.Name,
		Email:       body.Email,
		Phone:       body.Phone,
	})
	if err != nil {
		return guestError(c, err)
	}
	return response.Success(c, "Guest updated successfully", g)
}

// DELETE /api/v1/events/:event_id/guests/:guest_id
func (h *Handlers) DeleteGuest(c *fiber.Ctx) error {
	eventID, guestID, err := parseIDs(c)
	if err != nil {
		return response.Error(c, err.Error(), 400)
	}
	if err := h.Service.DeleteGuest(c.Context(), eventID, guestID, middleware.ActorID(c)); err != nil {
		return guestError(c, err)
	}
	return response.Success(c, "Guest deleted successfully", nil)
}

func guestError(c *fiber.Ctx, err error) error {
	switch err {
	case events.ErrEventNotFound, ErrGuestNotFound:
		return response.Error(c, err.Error(), 404)
	case nil:
		return nil
	default:
		if err.Error() == "Guest name is required" {
			return response.Error(c, err.Error(), 400)
		}
		return response.Error(c, "Internal Server Error", 500)
	}
}

func parseIDs(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, errInvalidEventID
	}
	guestID, err := uuid.Parse(c.Params("guest_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, errInvalidGuestID
	}
	return eventID, guestID, nil
}

var (
	errInvalidEventID = fiber.NewError(400, "Invalid event_id format")
	errInvalidGuestID = fiber.NewError(400, "Invalid guest_id format")
)

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
