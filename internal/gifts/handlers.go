package gifts

import (
	"gatherly-backend/internal/events"
	"gatherly-backend/internal/guests"
	"gatherly-backend/internal/invitations"
	"gatherly-backend/internal/middleware"
	"gatherly-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

type itemBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Quantity    *int    `json:"quantity"`
	IsEssential *bool   `json:"is_essential"`
	ImageURL    *string `json:"image_url"`
}

// POST /api/v1/events/:event_id/gifts (organizer)
func (h *Handlers) CreateItem(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid event_id format", 400)
	}
	var body itemBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400)
	}
	if body.Name == nil || *body.Name == "" {
		return response.Error(c, ErrNameRequired.Error(), 400)
	}
	if body.Quantity == nil {
		return response.Error(c, ErrInvalidQuantity.Error(), 400)
	}

	view, err := h.Service.CreateItem(c.Context(), CreateItemInput{
		EventID:     eventID,
		OrganizerID: middleware.ActorID(c),
		Name:        *body.Name,
		Description: strOrEmpty(body.Description),
		Quantity:    *body.Quantity,
		IsEssential: body.IsEssential != nil && *body.IsEssential,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		return giftError(c, err)
	}
	return response.Created(c, "Gift item created successfully", view)
}

// GET /api/v1/events/:event_id/gifts?status=&guest_id= (public)
func (h *Handlers) ListItems(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid event_id format", 400)
	}
	guestID, err := optionalGuestID(c.Query("guest_id"))
	if err != nil {
		return response.Error(c, "Invalid guest_id format", 400)
	}

	views, err := h.Service.ListItems(c.Context(), ListItemsInput{
		EventID:  eventID,
		ViewerID: middleware.ActorID(c),
		Status:   c.Query("status"),
		GuestID:  guestID,
	})
	if err != nil {
		return giftError(c, err)
	}
	return response.SuccessCount(c, "Gift items fetched successfully", views, len(views))
}

// GET /api/v1/events/:event_id/gifts/:gift_id (public)
func (h *Handlers) GetItem(c *fiber.Ctx) error {
	eventID, giftID, err := parseIDs(c)
	if err != nil {
		return response.Error(c, err.Error(), 400)
	}
	guestID, err := optionalGuestID(c.Query("guest_id"))
	if err != nil {
		return response.Error(c, "Invalid guest_id format", 400)
	}

	view, err := h.Service.GetItem(c.Context(), GetItemInput{
		EventID:  eventID,
		GiftID:   giftID,
		ViewerID: middleware.ActorID(c),
		GuestID:  guestID,
	})
	if err != nil {
		return giftError(c, err)
	}
	return response.Success(c, "Gift item fetched successfully", view)
}

// PUT /api/v1/events/:event_id/gifts/:gift_id (organizer)
func (h *Handlers) UpdateItem(c *fiber.Ctx) error {
	eventID, giftID, err := parseIDs(c)
	if err != nil {
		return response.Error(c, err.Error(), 400)
	}
	var body itemBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400)
	}

	view, err := h.Service.UpdateItem(c.Context(), UpdateItemInput{
		EventID:     eventID,
		GiftID:      giftID,
		OrganizerID: middleware.ActorID(c),
		Name:        body.Name,
		Description: body.Description,
		Quantity:    body.Quantity,
		IsEssential: body.IsEssential,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		return giftError(c, err)
	}
	return response.Success(c, "Gift item updated successfully", view)
}

// DELETE /api/v1/events/:event_id/gifts/:gift_id (organizer)
func (h *Handlers) DeleteItem(c *fiber.Ctx) error {
	eventID, giftID, err := parseIDs(c)
	if err != nil {
		return response.Error(c, err.Error(), 400)
	}
	if err := h.Service.DeleteItem(c.Context(), eventID, giftID, middleware.ActorID(c)); err != nil {
		return giftError(c, err)
	}
	return response.Success(c, "Gift item deleted successfully", nil)
}

// PUT /api/v1/events/:event_id/gifts/reorder (organizer)
func (h *Handlers) Reorder(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid event_id format", 400)
	}
	var body struct {
		Items []ReorderEntry `json:"items"`
	}
	if err := c.BodyParser(&body); err != nil || len(body.Items) == 0 {
		return response.Error(c, "items is required", 400)
	}

	views, err := h.Service.Reorder(c.Context(), eventID, middleware.ActorID(c), body.Items)
	if err != nil {
		return giftError(c, err)
	}
	return response.SuccessCount(c, "Gift items reordered successfully", views, len(views))
}

// POST /api/v1/events/:event_id/gifts/:gift_id/assign (public, guest_id in body)
func (h *Handlers) Assign(c *fiber.Ctx) error {
	eventID, giftID, err := parseIDs(c)
	if err != nil {
		return response.Error(c, err.Error(), 400)
	}
	var body struct {
		GuestID  string `json:"guest_id"`
		Quantity int    `json:"quantity"`
		Message  string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil || body.GuestID == "" || body.Quantity == 0 {
		return response.Error(c, "guest_id and quantity are required", 400)
	}
	guestID, err := uuid.Parse(body.GuestID)
	if err != nil {
		return response.Error(c, "Invalid guest_id format", 400)
	}

	view, err := h.Service.Assign(c.Context(), AssignInput{
		EventID:  eventID,
		GiftID:   giftID,
		GuestID:  guestID,
		Quantity: body.Quantity,
		Message:  body.Message,
	})
	if err != nil {
		return giftError(c, err)
	}
	return response.Success(c, "Gift reserved successfully", view)
}

// POST /api/v1/events/:event_id/gifts/:gift_id/unassign (public, guest_id in body)
func (h *Handlers) Unassign(c *fiber.Ctx) error {
	eventID, giftID, err := parseIDs(c)
	if err != nil {
		return response.Error(c, err.Error(), 400)
	}
	var body struct {
		GuestID string `json:"guest_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.GuestID == "" {
		return response.Error(c, "guest_id is required", 400)
	}
	guestID, err := uuid.Parse(body.GuestID)
	if err != nil {
		return response.Error(c, "Invalid guest_id format", 400)
	}

	view, err := h.Service.Unassign(c.Context(), UnassignInput{
		EventID: eventID,
		GiftID:  giftID,
		GuestID: guestID,
	})
	if err != nil {
		return giftError(c, err)
	}
	return response.Success(c, "Reservation cancelled successfully", view)
}

// GET /api/v1/events/:event_id/gifts/reservations/:guest_id (public)
func (h *Handlers) GuestReservations(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid event_id format", 400)
	}
	guestID, err := uuid.Parse(c.Params("guest_id"))
	if err != nil {
		return response.Error(c, "Invalid guest_id format", 400)
	}

	views, err := h.Service.GuestReservations(c.Context(), eventID, guestID)
	if err != nil {
		return giftError(c, err)
	}
	return response.SuccessCount(c, "Guest reservations fetched successfully", views, len(views))
}

// giftError maps service errors to the status codes of the API contract.
// Conflicts surface as 400 so the guest UI can show the message directly.
func giftError(c *fiber.Ctx, err error) error {
	switch err {
	case events.ErrEventNotFound, guests.ErrGuestNotFound, ErrGiftNotFound, invitations.ErrNoAcceptedInvite:
		return response.Error(c, err.Error(), 404)
	case ErrNameRequired, ErrInvalidQuantity, ErrInvalidStatusFilter,
		ErrAlreadyReserved, ErrInsufficientQuantity, ErrNotReserved, ErrReservationConflict:
		return response.Error(c, err.Error(), 400)
	default:
		return response.Error(c, "Internal Server Error", 500)
	}
}

func parseIDs(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, errInvalidEventID
	}
	giftID, err := uuid.Parse(c.Params("gift_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, errInvalidGiftID
	}
	return eventID, giftID, nil
}

var (
	errInvalidEventID = fiber.NewError(400, "Invalid event_id format")
	errInvalidGiftID  = fiber.NewError(400, "Invalid gift_id format")
)

func optionalGuestID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
