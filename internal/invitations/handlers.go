package invitations

import (
	"gatherly-backend/internal/events"
	"gatherly-backend/internal/guests"
	"gatherly-backend/internal/middleware"
	"gatherly-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// POST /api/v1/events/:event_id/invitations
func (h *Handlers) SendInvite(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid event_id format", 400)
	}
	var body struct {
		GuestID string `json:"guest_id"`
		Channel string `json:"channel"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil || body.GuestID == "" {
		return response.Error(c, "guest_id is required", 400)
	}
	guestID, err := uuid.Parse(body.GuestID)
	if err != nil {
		return response.Error(c, "Invalid guest_id format", 400)
	}

	inv, err := h.Service.SendInvite(c.Context(), SendInviteInput{
		EventID:     eventID,
		OrganizerID: middleware.ActorID(c),
		GuestID:     guestID,
		Channel:     body.Channel,
		Message:     body.Message,
	})
	if err != nil {
		switch err {
		case events.ErrEventNotFound, guests.ErrGuestNotFound:
			return response.Error(c, err.Error(), 404)
		case ErrInvalidChannel, ErrGuestContact:
			return response.Error(c, err.Error(), 400)
		default:
			return response.Error(c, "Internal Server Error", 500)
		}
	}
	return response.Created(c, "Invitation sent successfully", inv)
}

// GET /api/v1/events/:event_id/invitations
func (h *Handlers) ListInvitations(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid event_id format", 400)
	}
	invs, err := h.Service.ListInvitations(c.Context(), ListInvitesInput{
		EventID:     eventID,
		OrganizerID: middleware.ActorID(c),
		Status:      c.Query("status"),
	})
	if err != nil {
		if err == events.ErrEventNotFound {
			return response.Error(c, err.Error(), 404)
		}
		return response.Error(c, "Internal Server Error", 500)
	}
	return response.SuccessCount(c, "Invitations fetched successfully", invs, len(invs))
}

// GET /api/v1/rsvp/:token (public)
func (h *Handlers) CheckToken(c *fiber.Ctx) error {
	result, err := h.Service.CheckToken(c.Context(), c.Params("token"))
	if err != nil {
		if err == ErrInvalidToken {
			return response.Error(c, err.Error(), 404)
		}
		return response.Error(c, "Internal Server Error", 500)
	}
	return response.Success(c, "Invitation fetched successfully", result)
}

// POST /api/v1/rsvp/:token (public)
func (h *Handlers) Respond(c *fiber.Ctx) error {
	var body struct {
		Response string `json:"response"`
		Message  string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil || body.Response == "" {
		return response.Error(c, "response is required", 400)
	}

	inv, err := h.Service.Respond(c.Context(), RespondInput{
		Token:    c.Params("token"),
		Response: body.Response,
		Message:  body.Message,
	})
	if err != nil {
		switch err {
		case ErrInvalidToken:
			return response.Error(c, err.Error(), 404)
		case ErrInvalidResponse, ErrEventPassed:
			return response.Error(c, err.Error(), 400)
		default:
			return response.Error(c, "Internal Server Error", 500)
		}
	}
	return response.Success(c, "Response recorded successfully", inv)
}
