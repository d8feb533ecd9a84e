package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sender sends WhatsApp invitations. Missing credentials make it a no-op so
// local setups without a Business account still work.
type Sender interface {
	SendInvite(ctx context.Context, toPhone, guestName, eventName, rsvpLink string) error
}

// CloudClient sends text messages via the WhatsApp Cloud API
// (graph.facebook.com). Env: WHATSAPP_TOKEN, WHATSAPP_PHONE_ID.
type CloudClient struct {
	Token   string
	PhoneID string
	BaseURL string // override for tests; default graph API
	Client  *http.Client
}

type cloudMessageRequest struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Text             cloudText `json:"text"`
}

type cloudText struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

func (c *CloudClient) endpoint() string {
	base := c.BaseURL
	if base == "" {
		base = "https://graph.facebook.com/v19.0"
	}
	return fmt.Sprintf("%s/%s/messages", base, c.PhoneID)
}

// SendInvite sends the invitation text with the RSVP link.
func (c *CloudClient) SendInvite(ctx context.Context, toPhone, guestName, eventName, rsvpLink string) error {
	if c.Token == "" || c.PhoneID == "" {
		return nil
	}
	if guestName == "" {
		guestName = "there"
	}
	body := cloudMessageRequest{
		MessagingProduct: "whatsapp",
		To:               toPhone,
		Type:             "text",
		Text: cloudText{
			Body:       fmt.Sprintf("Hi %s! You're invited to %s. Respond here: %s", guestName, eventName, rsvpLink),
			PreviewURL: true,
		},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp send failed: status %d", resp.StatusCode)
	}
	return nil
}
