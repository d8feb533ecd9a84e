package gifts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gatherly-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserHeader = "X-Test-User"

// newGiftApp mounts the gift routes the way the app does, with a stub session
// middleware that trusts a test header instead of Redis.
func newGiftApp(f *giftFixture) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get(testUserHeader); id != "" {
			c.Locals("user", map[string]interface{}{"user_id": id})
		}
		return c.Next()
	})

	h := &Handlers{Service: f.svc}
	app.Get("/api/v1/events/:event_id/gifts", h.ListItems)
	app.Get("/api/v1/events/:event_id/gifts/reservations/:guest_id", h.GuestReservations)
	app.Get("/api/v1/events/:event_id/gifts/:gift_id", h.GetItem)
	app.Post("/api/v1/events/:event_id/gifts/:gift_id/assign", h.Assign)
	app.Post("/api/v1/events/:event_id/gifts/:gift_id/unassign", h.Unassign)

	grp := app.Group("/api/v1/events", middleware.RequireAuth())
	grp.Post("/:event_id/gifts", h.CreateItem)
	grp.Put("/:event_id/gifts/reorder", h.Reorder)
	grp.Put("/:event_id/gifts/:gift_id", h.UpdateItem)
	grp.Delete("/:event_id/gifts/:gift_id", h.DeleteItem)
	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
}

func doRequest(t *testing.T, app *fiber.App, method, url, userID string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(testUserHeader, userID)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestCreateItemEndpoint(t *testing.T) {
	f := setupGiftTest(t)
	app := newGiftApp(f)
	url := fmt.Sprintf("/api/v1/events/%s/gifts", f.event.EventID)

	status, env := doRequest(t, app, http.MethodPost, url, f.organizer.UserID.String(), fiber.Map{
		"name":     "Toaster",
		"quantity": 2,
	})
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)
	assert.Equal(t, "Gift item created successfully", env.Message)

	var item map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, float64(1), item["order"])
	assert.Equal(t, "available", item["status"])
	assert.Equal(t, float64(0), item["quantity_reserved"])
}

func TestCreateItemEndpointRequiresAuth(t *testing.T) {
	f := setupGiftTest(t)
	app := newGiftApp(f)
	url := fmt.Sprintf("/api/v1/events/%s/gifts", f.event.EventID)

	status, env := doRequest(t, app, http.MethodPost, url, "", fiber.Map{"name": "Toaster", "quantity": 1})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
}

func TestAssignEndpointConflicts(t *testing.T) {
	f := setupGiftTest(t)
	app := newGiftApp(f)
	item := f.createItem(t, "Fondue set", 2)
	url := fmt.Sprintf("/api/v1/events/%s/gifts/%s/assign", f.event.EventID, item.GiftID)

	status, env := doRequest(t, app, http.MethodPost, url, "", fiber.Map{
		"guest_id": f.maria.GuestID.String(),
		"quantity": 2,
	})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	// Same guest again
	status, env = doRequest(t, app, http.MethodPost, url, "", fiber.Map{
		"guest_id": f.maria.GuestID.String(),
		"quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You have already reserved this item", env.Message)

	// Another guest, but nothing is left
	status, env = doRequest(t, app, http.MethodPost, url, "", fiber.Map{
		"guest_id": f.sam.GuestID.String(),
		"quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Insufficient available quantity", env.Message)
}

func TestAssignEndpointRequiresAcceptedInvite(t *testing.T) {
	f := setupGiftTest(t)
	app := newGiftApp(f)
	item := f.createItem(t, "Toaster", 1)
	url := fmt.Sprintf("/api/v1/events/%s/gifts/%s/assign", f.event.EventID, item.GiftID)

	status, env := doRequest(t, app, http.MethodPost, url, "", fiber.Map{
		"guest_id": f.lena.GuestID.String(),
		"quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, env.Message, "has not accepted")
}

func TestListEndpointRedaction(t *testing.T) {
	f := setupGiftTest(t)
	app := newGiftApp(f)
	item := f.createItem(t, "Wine glasses", 6)

	assignURL := fmt.Sprintf("/api/v1/events/%s/gifts/%s/assign", f.event.EventID, item.GiftID)
	status, _ := doRequest(t, app, http.MethodPost, assignURL, "", fiber.Map{
		"guest_id": f.maria.GuestID.String(),
		"quantity": 2,
		"message":  "private note",
	})
	require.Equal(t, http.StatusOK, status)

	// Anonymous listing: first name and quantity only.
	listURL := fmt.Sprintf("/api/v1/events/%s/gifts", f.event.EventID)
	status, env := doRequest(t, app, http.MethodGet, listURL, "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	reservations := items[0]["reservations"].([]interface{})
	require.Len(t, reservations, 1)
	r := reservations[0].(map[string]interface{})
	assert.Equal(t, "Maria", r["guest_name"])
	assert.Equal(t, float64(2), r["quantity"])
	assert.NotContains(t, r, "guest_id")
	assert.NotContains(t, r, "message")
	assert.NotContains(t, string(env.Data), "private note")

	// With guest_id the same listing annotates the guest's own reservation.
	status, env = doRequest(t, app, http.MethodGet, listURL+"?guest_id="+f.maria.GuestID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Equal(t, true, items[0]["is_reserved_by_current_guest"])
	own := items[0]["current_guest_reservation"].(map[string]interface{})
	assert.Equal(t, "private note", own["message"])

	// Organizer listing keeps full detail.
	status, env = doRequest(t, app, http.MethodGet, listURL, f.organizer.UserID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &items))
	reservations = items[0]["reservations"].([]interface{})
	r = reservations[0].(map[string]interface{})
	assert.Equal(t, f.maria.GuestID.String(), r["guest_id"])
	assert.Equal(t, "private note", r["message"])
}

func TestDeleteEndpointRenumbers(t *testing.T) {
	f := setupGiftTest(t)
	app := newGiftApp(f)
	f.createItem(t, "A", 1)
	b := f.createItem(t, "B", 1)
	f.createItem(t, "C", 1)

	url := fmt.Sprintf("/api/v1/events/%s/gifts/%s", f.event.EventID, b.GiftID)
	status, env := doRequest(t, app, http.MethodDelete, url, f.organizer.UserID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	listURL := fmt.Sprintf("/api/v1/events/%s/gifts", f.event.EventID)
	status, env = doRequest(t, app, http.MethodGet, listURL, "", nil)
	require.Equal(t, http.StatusOK, status)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0]["name"])
	assert.Equal(t, float64(1), items[0]["order"])
	assert.Equal(t, "C", items[1]["name"])
	assert.Equal(t, float64(2), items[1]["order"])
}

func TestGuestReservationsEndpoint(t *testing.T) {
	f := setupGiftTest(t)
	app := newGiftApp(f)
	item := f.createItem(t, "Toaster", 1)

	assignURL := fmt.Sprintf("/api/v1/events/%s/gifts/%s/assign", f.event.EventID, item.GiftID)
	status, _ := doRequest(t, app, http.MethodPost, assignURL, "", fiber.Map{
		"guest_id": f.maria.GuestID.String(),
		"quantity": 1,
	})
	require.Equal(t, http.StatusOK, status)

	url := fmt.Sprintf("/api/v1/events/%s/gifts/reservations/%s", f.event.EventID, f.maria.GuestID)
	status, env := doRequest(t, app, http.MethodGet, url, "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	url = fmt.Sprintf("/api/v1/events/%s/gifts/reservations/%s", f.event.EventID, f.sam.GuestID)
	status, env = doRequest(t, app, http.MethodGet, url, "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)
}

func TestInvalidIDFormats(t *testing.T) {
	f := setupGiftTest(t)
	app := newGiftApp(f)

	status, env := doRequest(t, app, http.MethodGet, "/api/v1/events/not-a-uuid/gifts", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid event_id format", env.Message)

	url := fmt.Sprintf("/api/v1/events/%s/gifts/not-a-uuid", f.event.EventID)
	status, env = doRequest(t, app, http.MethodGet, url, "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid gift_id format", env.Message)
}
